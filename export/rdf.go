package export

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/vocabulary"
)

// Standard namespace IRIs used by the graph writers.
const (
	RDFNS = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	XSDNS = "http://www.w3.org/2001/XMLSchema#"

	RDFType = RDFNS + "type"
)

// XSD datatypes.
const (
	XSDString   = XSDNS + "string"
	XSDDate     = XSDNS + "date"
	XSDDateTime = XSDNS + "dateTime"
	XSDInteger  = XSDNS + "integer"
	XSDDecimal  = XSDNS + "decimal"
	XSDBoolean  = XSDNS + "boolean"
)

// TermKind discriminates RDF terms.
type TermKind int

const (
	IRITerm TermKind = iota
	BlankTerm
	LiteralTerm
)

// Term is an RDF node: an IRI, a blank node or a literal.
type Term struct {
	Kind     TermKind
	Value    string
	Datatype string
	Lang     string
}

// IRI returns an IRI term.
func IRI(v string) Term { return Term{Kind: IRITerm, Value: v} }

// Blank returns a blank node term with the given label.
func Blank(label string) Term { return Term{Kind: BlankTerm, Value: label} }

// Literal returns a plain string literal.
func Literal(v string) Term { return Term{Kind: LiteralTerm, Value: v} }

// TypedLiteral returns a literal with a datatype IRI.
func TypedLiteral(v, datatype string) Term {
	return Term{Kind: LiteralTerm, Value: v, Datatype: datatype}
}

// Triple is one graph statement. Predicate is a full IRI.
type Triple struct {
	Subject   Term
	Predicate string
	Object    Term
}

// Graph is an ordered set of triples with namespace prefixes. Order is the
// order of insertion; writers rely on it for stable output.
type Graph struct {
	prefixes map[string]string
	triples  []Triple
	seen     map[Triple]bool
}

// NewGraph creates an empty graph with the rdf and xsd prefixes bound.
func NewGraph() *Graph {
	return &Graph{
		prefixes: map[string]string{"rdf": RDFNS, "xsd": XSDNS},
		seen:     make(map[Triple]bool),
	}
}

// Bind declares a namespace prefix.
func (g *Graph) Bind(prefix, namespace string) {
	g.prefixes[prefix] = namespace
}

// Prefixes returns a copy of the prefix map.
func (g *Graph) Prefixes() map[string]string {
	out := make(map[string]string, len(g.prefixes))
	for k, v := range g.prefixes {
		out[k] = v
	}
	return out
}

// Add appends a triple. Exact duplicates are dropped.
func (g *Graph) Add(s Term, p string, o Term) {
	t := Triple{Subject: s, Predicate: p, Object: o}
	if g.seen[t] {
		return
	}
	g.seen[t] = true
	g.triples = append(g.triples, t)
}

// Triples returns the triples in insertion order.
func (g *Graph) Triples() []Triple {
	return append([]Triple(nil), g.triples...)
}

// Len returns the number of triples.
func (g *Graph) Len() int {
	return len(g.triples)
}

// Subjects returns the distinct subjects in first-appearance order.
func (g *Graph) Subjects() []Term {
	var out []Term
	seen := make(map[Term]bool)
	for _, t := range g.triples {
		if !seen[t.Subject] {
			seen[t.Subject] = true
			out = append(out, t.Subject)
		}
	}
	return out
}

// AddMessage adds a vocabulary triple. The predicate is a registered
// vocabulary name whose standard IRI becomes the RDF predicate, and whose
// data type decides how a plain object value is typed.
func (g *Graph) AddMessage(t message.Triple) error {
	meta := vocabulary.GetPredicateMetadata(t.Predicate)
	if meta == nil || meta.StandardIRI == "" {
		return fmt.Errorf("predicate %q has no registered IRI", t.Predicate)
	}
	obj, err := objectTerm(t.Object, meta.DataType)
	if err != nil {
		return fmt.Errorf("predicate %q: %w", t.Predicate, err)
	}
	g.Add(subjectTerm(t.Subject), meta.StandardIRI, obj)
	return nil
}

func subjectTerm(s string) Term {
	if label, ok := strings.CutPrefix(s, "_:"); ok {
		return Blank(label)
	}
	return IRI(s)
}

// objectTerm types a plain value from the predicate's data type.
func objectTerm(v any, dataType string) (Term, error) {
	switch t := v.(type) {
	case Term:
		return t, nil
	case string:
		switch dataType {
		case "iri", "entity_id":
			return subjectTerm(t), nil
		case "date":
			return TypedLiteral(t, XSDDate), nil
		case "datetime":
			return TypedLiteral(t, XSDDateTime), nil
		}
		return Literal(t), nil
	case int:
		return TypedLiteral(strconv.Itoa(t), XSDInteger), nil
	case int64:
		return TypedLiteral(strconv.FormatInt(t, 10), XSDInteger), nil
	case float64:
		return TypedLiteral(strconv.FormatFloat(t, 'f', -1, 64), XSDDecimal), nil
	case bool:
		return TypedLiteral(strconv.FormatBool(t), XSDBoolean), nil
	}
	return Term{}, fmt.Errorf("unsupported object type %T", v)
}

// compact shortens an IRI to prefix:local when a bound namespace matches
// and the local part needs no escaping. The longest namespace wins.
func compact(iri string, prefixes map[string]string) (string, bool) {
	best, bestNS := "", ""
	for p, ns := range prefixes {
		if strings.HasPrefix(iri, ns) && len(ns) > len(bestNS) {
			best, bestNS = p, ns
		}
	}
	if bestNS == "" {
		return iri, false
	}
	local := iri[len(bestNS):]
	if !safeLocal(local) {
		return iri, false
	}
	return best + ":" + local, true
}

func safeLocal(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case (r >= '0' && r <= '9') || r == '-':
			if i == 0 && r == '-' {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func sortedPrefixes(prefixes map[string]string) []string {
	keys := make([]string, 0, len(prefixes))
	for k := range prefixes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// escapeString escapes special characters in literals.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}
