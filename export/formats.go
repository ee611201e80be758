package export

import (
	"fmt"
	"strings"
)

// Format names an RDF serialization.
type Format string

const (
	// FormatTurtle produces Turtle (.ttl) output.
	FormatTurtle Format = "turtle"

	// FormatNTriples produces N-Triples (.nt) output.
	FormatNTriples Format = "ntriples"

	// FormatJSONLD produces JSON-LD (.jsonld) output.
	FormatJSONLD Format = "jsonld"
)

// FormatInfo provides metadata about a serialization.
type FormatInfo struct {
	Name        Format
	MIMEType    string
	Extension   string
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatTurtle: {
		Name:        FormatTurtle,
		MIMEType:    "text/turtle",
		Extension:   ".ttl",
		Description: "Turtle - Terse RDF Triple Language",
	},
	FormatNTriples: {
		Name:        FormatNTriples,
		MIMEType:    "application/n-triples",
		Extension:   ".nt",
		Description: "N-Triples - Line-based RDF format",
	},
	FormatJSONLD: {
		Name:        FormatJSONLD,
		MIMEType:    "application/ld+json",
		Extension:   ".jsonld",
		Description: "JSON-LD - JSON for Linked Data",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// RDFWriter serializes a graph.
type RDFWriter interface {
	Format() Format
	Write(g *Graph) ([]byte, error)
}

// NewWriter returns the writer for a format.
func NewWriter(format Format) (RDFWriter, error) {
	switch format {
	case FormatTurtle:
		return TurtleWriter{}, nil
	case FormatNTriples:
		return NTriplesWriter{}, nil
	case FormatJSONLD:
		return JSONLDWriter{}, nil
	}
	return nil, fmt.Errorf("unsupported format: %s", format)
}

// TurtleWriter writes Turtle with sorted prefixes and one block per
// subject.
type TurtleWriter struct{}

// Format implements RDFWriter.
func (TurtleWriter) Format() Format { return FormatTurtle }

// Write implements RDFWriter.
func (TurtleWriter) Write(g *Graph) ([]byte, error) {
	var sb strings.Builder
	prefixes := g.Prefixes()
	for _, p := range sortedPrefixes(prefixes) {
		fmt.Fprintf(&sb, "@prefix %s: <%s> .\n", p, prefixes[p])
	}

	for _, s := range g.Subjects() {
		sb.WriteString("\n")
		sb.WriteString(turtleTerm(s, prefixes))
		preds, objs := groupBySubject(g, s)
		for i, p := range preds {
			pred := "a"
			if p != RDFType {
				pred = turtleIRI(p, prefixes)
			}
			rendered := make([]string, len(objs[p]))
			for j, o := range objs[p] {
				rendered[j] = turtleTerm(o, prefixes)
			}
			sep := " ;"
			if i == len(preds)-1 {
				sep = " ."
			}
			fmt.Fprintf(&sb, "\n    %s %s%s", pred, strings.Join(rendered, ", "), sep)
		}
		sb.WriteString("\n")
	}
	return []byte(sb.String()), nil
}

func turtleIRI(iri string, prefixes map[string]string) string {
	if c, ok := compact(iri, prefixes); ok {
		return c
	}
	return "<" + iri + ">"
}

func turtleTerm(t Term, prefixes map[string]string) string {
	switch t.Kind {
	case BlankTerm:
		return "_:" + t.Value
	case LiteralTerm:
		lit := "\"" + escapeString(t.Value) + "\""
		switch {
		case t.Lang != "":
			return lit + "@" + t.Lang
		case t.Datatype != "" && t.Datatype != XSDString:
			return lit + "^^" + turtleIRI(t.Datatype, prefixes)
		}
		return lit
	}
	return turtleIRI(t.Value, prefixes)
}

// NTriplesWriter writes one fully expanded triple per line.
type NTriplesWriter struct{}

// Format implements RDFWriter.
func (NTriplesWriter) Format() Format { return FormatNTriples }

// Write implements RDFWriter.
func (NTriplesWriter) Write(g *Graph) ([]byte, error) {
	var sb strings.Builder
	for _, t := range g.triples {
		fmt.Fprintf(&sb, "%s <%s> %s .\n", ntriplesTerm(t.Subject), t.Predicate, ntriplesTerm(t.Object))
	}
	return []byte(sb.String()), nil
}

func ntriplesTerm(t Term) string {
	switch t.Kind {
	case BlankTerm:
		return "_:" + t.Value
	case LiteralTerm:
		lit := "\"" + escapeString(t.Value) + "\""
		switch {
		case t.Lang != "":
			return lit + "@" + t.Lang
		case t.Datatype != "" && t.Datatype != XSDString:
			return lit + "^^<" + t.Datatype + ">"
		}
		return lit
	}
	return "<" + t.Value + ">"
}

// JSONLDWriter writes a flattened JSON-LD document: a context of the
// graph's prefixes and one @graph node per subject.
type JSONLDWriter struct{}

// Format implements RDFWriter.
func (JSONLDWriter) Format() Format { return FormatJSONLD }

// Write implements RDFWriter.
func (JSONLDWriter) Write(g *Graph) ([]byte, error) {
	prefixes := g.Prefixes()
	ctx := NewObject()
	for _, p := range sortedPrefixes(prefixes) {
		ctx.Set(p, prefixes[p])
	}

	nodes := make([]*Object, 0)
	for _, s := range g.Subjects() {
		node := NewObject().Set("@id", jsonldID(s))
		preds, objs := groupBySubject(g, s)
		for _, p := range preds {
			if p == RDFType {
				types := make([]string, len(objs[p]))
				for i, o := range objs[p] {
					types[i] = jsonldIRI(o.Value, prefixes)
				}
				node.Set("@type", types)
				continue
			}
			vals := make([]any, len(objs[p]))
			for i, o := range objs[p] {
				vals[i] = jsonldValue(o, prefixes)
			}
			key := jsonldIRI(p, prefixes)
			if len(vals) == 1 {
				node.Set(key, vals[0])
			} else {
				node.Set(key, vals)
			}
		}
		nodes = append(nodes, node)
	}

	doc := NewObject().Set("@context", ctx).Set("@graph", nodes)
	return MarshalIndent(doc)
}

func jsonldIRI(iri string, prefixes map[string]string) string {
	c, _ := compact(iri, prefixes)
	return c
}

func jsonldID(t Term) string {
	if t.Kind == BlankTerm {
		return "_:" + t.Value
	}
	return t.Value
}

func jsonldValue(t Term, prefixes map[string]string) any {
	switch t.Kind {
	case BlankTerm:
		return NewObject().Set("@id", "_:"+t.Value)
	case LiteralTerm:
		switch {
		case t.Lang != "":
			return NewObject().Set("@value", t.Value).Set("@language", t.Lang)
		case t.Datatype != "" && t.Datatype != XSDString:
			return NewObject().Set("@value", t.Value).Set("@type", jsonldIRI(t.Datatype, prefixes))
		}
		return t.Value
	}
	return NewObject().Set("@id", t.Value)
}

// groupBySubject returns the predicates of s in first-appearance order and
// their objects in insertion order.
func groupBySubject(g *Graph, s Term) ([]string, map[string][]Term) {
	var preds []string
	objs := make(map[string][]Term)
	for _, t := range g.triples {
		if t.Subject != s {
			continue
		}
		if _, ok := objs[t.Predicate]; !ok {
			preds = append(preds, t.Predicate)
		}
		objs[t.Predicate] = append(objs[t.Predicate], t.Object)
	}
	return preds, objs
}
