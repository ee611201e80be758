package geodcat

import (
	"strconv"
	"strings"

	"github.com/c360studio/geocrosswalk/jsondoc"
	"github.com/c360studio/geocrosswalk/record"
	vocab "github.com/c360studio/geocrosswalk/vocabulary/geodcat"
)

// term is one object value: a node reference or a literal.
type term struct {
	ref   string
	value string
}

// node is a graph node with expanded predicate IRIs.
type node struct {
	id    string
	types map[string]bool
	props map[string][]term
	keys  []string
}

// nodeGraph indexes the nodes of a JSON-LD document by @id.
type nodeGraph struct {
	prefixes map[string]string
	nodes    map[string]*node
	order    []*node
	anon     int
}

func newGraph(doc jsondoc.Value) *nodeGraph {
	g := &nodeGraph{prefixes: make(map[string]string), nodes: make(map[string]*node)}
	for _, m := range doc.Get("@context").Members() {
		if ns := m.Value.Str(); ns != "" {
			g.prefixes[m.Key] = ns
		}
	}
	for _, it := range doc.Get("@graph").Items() {
		g.add(it)
	}
	return g
}

// expand resolves a compact IRI against the context prefixes.
func (g *nodeGraph) expand(s string) string {
	if strings.HasPrefix(s, "_:") || strings.Contains(s, "://") {
		return s
	}
	if p, local, ok := strings.Cut(s, ":"); ok {
		if ns, found := g.prefixes[p]; found {
			return ns + local
		}
	}
	return s
}

// add registers an object as a node and returns its id. Embedded nodes
// are registered recursively and replaced by references.
func (g *nodeGraph) add(v jsondoc.Value) string {
	id := g.expand(v.Get("@id").Str())
	if id == "" {
		g.anon++
		id = "_:anon" + strconv.Itoa(g.anon)
	}
	n, ok := g.nodes[id]
	if !ok {
		n = &node{id: id, types: make(map[string]bool), props: make(map[string][]term)}
		g.nodes[id] = n
		g.order = append(g.order, n)
	}
	for _, m := range v.Members() {
		switch m.Key {
		case "@id", "@context":
			continue
		case "@type":
			for _, t := range m.Value.Strings() {
				n.types[g.expand(t)] = true
			}
			continue
		}
		key := g.expand(m.Key)
		if _, seen := n.props[key]; !seen {
			n.keys = append(n.keys, m.Key)
		}
		for _, item := range m.Value.List() {
			n.props[key] = append(n.props[key], g.term(item))
		}
	}
	return id
}

func (g *nodeGraph) term(v jsondoc.Value) term {
	if !v.IsObject() {
		return term{value: v.Str()}
	}
	if v.Has("@value") {
		return term{value: v.Get("@value").Str()}
	}
	if len(v.Keys()) == 1 && v.Has("@id") {
		return term{ref: g.expand(v.Get("@id").Str())}
	}
	return term{ref: g.add(v)}
}

func (g *nodeGraph) get(id string) *node {
	if id == "" {
		return nil
	}
	return g.nodes[id]
}

// first returns the first node of a class in document order.
func (g *nodeGraph) first(class string) *node {
	for _, n := range g.order {
		if n.types[class] {
			return n
		}
	}
	return nil
}

// follow returns the nodes linked from n by a predicate, in order.
// Dangling references are skipped.
func (g *nodeGraph) follow(n *node, predicate string) []*node {
	var out []*node
	for _, id := range n.links(predicate) {
		if target := g.get(id); target != nil {
			out = append(out, target)
		}
	}
	return out
}

func (n *node) terms(predicate string) []term {
	if n == nil {
		return nil
	}
	return n.props[vocab.IRI(predicate)]
}

func (n *node) str(predicate string) string {
	for _, t := range n.terms(predicate) {
		if t.value != "" {
			return t.value
		}
	}
	return ""
}

func (n *node) strs(predicate string) []string {
	var out []string
	for _, t := range n.terms(predicate) {
		if t.value != "" {
			out = append(out, t.value)
		}
	}
	return out
}

// link reads an IRI or, for relative paths written as literals, the
// literal itself.
func (n *node) link(predicate string) string {
	if ls := n.links(predicate); len(ls) > 0 {
		return ls[0]
	}
	return ""
}

func (n *node) links(predicate string) []string {
	var out []string
	for _, t := range n.terms(predicate) {
		switch {
		case t.ref != "":
			out = append(out, t.ref)
		case t.value != "":
			out = append(out, t.value)
		}
	}
	return out
}

func (n *node) float(predicate string) record.Optional[float64] {
	f, err := strconv.ParseFloat(n.str(predicate), 64)
	if err != nil {
		return record.None[float64]()
	}
	return record.Some(f)
}

func (n *node) integer(predicate string) record.Optional[int64] {
	i, err := strconv.ParseInt(n.str(predicate), 10, 64)
	if err != nil {
		return record.None[int64]()
	}
	return record.Some(i)
}

func (n *node) boolean(predicate string) record.Optional[bool] {
	b, err := strconv.ParseBool(n.str(predicate))
	if err != nil {
		return record.None[bool]()
	}
	return record.Some(b)
}
