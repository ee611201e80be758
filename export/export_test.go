package export_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/vocabulary"

	"github.com/c360studio/geocrosswalk/export"
	"github.com/c360studio/geocrosswalk/record"
)

type stubExporter struct{ name string }

func (s stubExporter) Name() string        { return s.name }
func (s stubExporter) Description() string { return "stub" }
func (s stubExporter) MediaType() string   { return "text/plain" }
func (s stubExporter) Extension() string   { return ".txt" }
func (s stubExporter) Export(rec record.Record) (export.Document, error) {
	return export.Document{Exporter: s.name, Body: []byte(rec.Identity.ID)}, nil
}

func TestRegistry(t *testing.T) {
	r := export.NewRegistry()
	if err := r.Register(stubExporter{name: "b"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(stubExporter{name: "a"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(stubExporter{name: "a"}); err == nil {
		t.Error("duplicate registration should fail")
	}

	if got := r.Names(); strings.Join(got, ",") != "a,b" {
		t.Errorf("Names() = %v, want [a b]", got)
	}

	if _, err := r.Get("missing"); !errors.Is(err, export.ErrUnknownExporter) {
		t.Errorf("Get(missing) error = %v, want ErrUnknownExporter", err)
	}
}

func TestObject_KeyOrder(t *testing.T) {
	o := export.NewObject().
		Set("z", 1).
		Set("a", "x").
		SetString("empty", "").
		Set("m", []string{"b", "a"})
	o.Set("z", 2)

	got, err := export.MarshalIndent(o)
	if err != nil {
		t.Fatalf("MarshalIndent failed: %v", err)
	}
	want := "{\n  \"z\": 2,\n  \"a\": \"x\",\n  \"m\": [\n    \"b\",\n    \"a\"\n  ]\n}\n"
	if string(got) != want {
		t.Errorf("MarshalIndent() =\n%s\nwant\n%s", got, want)
	}
}

func TestObject_NoHTMLEscaping(t *testing.T) {
	o := export.NewObject().Set("href", "https://example.com/a.tif?x=1&y=<2>")
	got, err := o.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if !strings.Contains(string(got), "x=1&y=<2>") {
		t.Errorf("expected unescaped URL, got %s", got)
	}
}

func TestMarshalIndent_NoHTMLEscaping(t *testing.T) {
	o := export.NewObject().Set("assets", []*export.Object{
		export.NewObject().Set("href", "s3://bucket/a.tif?X-Amz-Signature=ab&X-Amz-Expires=60"),
	})
	got, err := export.MarshalIndent(o)
	if err != nil {
		t.Fatalf("MarshalIndent failed: %v", err)
	}
	if !strings.Contains(string(got), "ab&X-Amz-Expires=60") {
		t.Errorf("expected unescaped href, got %s", got)
	}
	if strings.Contains(string(got), `\u0026`) {
		t.Errorf("href was HTML-escaped: %s", got)
	}
}

func TestObject_Nested(t *testing.T) {
	inner := export.NewObject().Set("@id", "repo")
	o := export.NewObject().
		Set("containedIn", inner).
		Set("list", []*export.Object{inner, inner}).
		Set("mixed", []any{1.5, "s", true, nil})
	got, err := o.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	want := `{"containedIn":{"@id":"repo"},"list":[{"@id":"repo"},{"@id":"repo"}],"mixed":[1.5,"s",true,null]}`
	if string(got) != want {
		t.Errorf("MarshalJSON() = %s, want %s", got, want)
	}
}

func sampleGraph() *export.Graph {
	g := export.NewGraph()
	g.Bind("dct", "http://purl.org/dc/terms/")
	g.Bind("dcat", "http://www.w3.org/ns/dcat#")

	ds := export.IRI("https://example.org/ds")
	g.Add(ds, export.RDFType, export.IRI("http://www.w3.org/ns/dcat#Dataset"))
	g.Add(ds, "http://purl.org/dc/terms/title", export.Literal("Scene \"A\""))
	g.Add(ds, "http://www.w3.org/ns/dcat#keyword", export.Literal("optical"))
	g.Add(ds, "http://www.w3.org/ns/dcat#keyword", export.Literal("sentinel"))
	g.Add(ds, "http://purl.org/dc/terms/issued", export.TypedLiteral("2024-06-01", export.XSDDate))
	g.Add(ds, "http://purl.org/dc/terms/spatial", export.Blank("b0"))
	g.Add(export.Blank("b0"), "http://www.w3.org/ns/dcat#bbox", export.Literal("POLYGON((0 0, 1 0, 1 1, 0 1, 0 0))"))
	// Duplicate statements are dropped.
	g.Add(ds, "http://www.w3.org/ns/dcat#keyword", export.Literal("optical"))
	return g
}

func TestGraph_Dedupes(t *testing.T) {
	if n := sampleGraph().Len(); n != 7 {
		t.Errorf("Len() = %d, want 7", n)
	}
}

func TestTurtleWriter(t *testing.T) {
	out, err := export.TurtleWriter{}.Write(sampleGraph())
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	s := string(out)

	for _, want := range []string{
		"@prefix dcat: <http://www.w3.org/ns/dcat#> .\n@prefix dct: <http://purl.org/dc/terms/> .",
		"<https://example.org/ds>\n    a dcat:Dataset ;",
		`dct:title "Scene \"A\"" ;`,
		`dcat:keyword "optical", "sentinel" ;`,
		`dct:issued "2024-06-01"^^xsd:date ;`,
		"dct:spatial _:b0 .",
		"_:b0\n    dcat:bbox",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("Turtle output missing %q:\n%s", want, s)
		}
	}
}

func TestNTriplesWriter(t *testing.T) {
	out, err := export.NTriplesWriter{}.Write(sampleGraph())
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 7 {
		t.Fatalf("expected 7 lines, got %d", len(lines))
	}
	want := `<https://example.org/ds> <http://purl.org/dc/terms/issued> "2024-06-01"^^<http://www.w3.org/2001/XMLSchema#date> .`
	if lines[4] != want {
		t.Errorf("line 5 = %s, want %s", lines[4], want)
	}
	for _, line := range lines {
		if !strings.HasSuffix(line, " .") {
			t.Errorf("line should end with ' .': %s", line)
		}
	}
}

func TestJSONLDWriter(t *testing.T) {
	out, err := export.JSONLDWriter{}.Write(sampleGraph())
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	s := string(out)
	for _, want := range []string{
		`"@context": {`,
		`"dcat": "http://www.w3.org/ns/dcat#"`,
		`"@id": "https://example.org/ds"`,
		`"@type": [`,
		`"dcat:Dataset"`,
		`"dcat:keyword": [`,
		`"@type": "xsd:date"`,
		`"@id": "_:b0"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("JSON-LD output missing %q:\n%s", want, s)
		}
	}
}

func TestWriters_Deterministic(t *testing.T) {
	for _, f := range []export.Format{export.FormatTurtle, export.FormatNTriples, export.FormatJSONLD} {
		w, err := export.NewWriter(f)
		if err != nil {
			t.Fatalf("NewWriter(%s) failed: %v", f, err)
		}
		a, _ := w.Write(sampleGraph())
		b, _ := w.Write(sampleGraph())
		if string(a) != string(b) {
			t.Errorf("%s output differs between runs", f)
		}
	}
	if _, err := export.NewWriter("rdfxml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestGraph_AddMessage(t *testing.T) {
	vocabulary.Register("exporttest.dataset.issued",
		vocabulary.WithDescription("Issue date"),
		vocabulary.WithDataType("date"),
		vocabulary.WithIRI("http://purl.org/dc/terms/issued"))
	vocabulary.Register("exporttest.dataset.license",
		vocabulary.WithDescription("License"),
		vocabulary.WithDataType("iri"),
		vocabulary.WithIRI("http://purl.org/dc/terms/license"))

	g := export.NewGraph()
	subject := "https://example.org/ds"
	for _, tr := range []message.Triple{
		{Subject: subject, Predicate: "exporttest.dataset.issued", Object: "2024-06-01"},
		{Subject: subject, Predicate: "exporttest.dataset.license", Object: "https://spdx.org/licenses/CC-BY-4.0"},
	} {
		if err := g.AddMessage(tr); err != nil {
			t.Fatalf("AddMessage failed: %v", err)
		}
	}
	triples := g.Triples()
	if triples[0].Object.Datatype != export.XSDDate {
		t.Errorf("issued datatype = %q, want xsd:date", triples[0].Object.Datatype)
	}
	if triples[1].Object.Kind != export.IRITerm {
		t.Errorf("license should be an IRI, got kind %d", triples[1].Object.Kind)
	}

	err := g.AddMessage(message.Triple{Subject: subject, Predicate: "exporttest.unregistered.thing", Object: "x"})
	if err == nil {
		t.Error("expected error for unregistered predicate")
	}
}

func TestGetProfileConfig(t *testing.T) {
	if !export.GetProfileConfig(export.ProfileFull).IncludeRecordSets {
		t.Error("full profile should include record sets")
	}
	if export.GetProfileConfig(export.ProfileCore).IncludeBands {
		t.Error("core profile should not include bands")
	}
	if export.GetProfileConfig("unknown").Name != export.ProfileFull {
		t.Error("unknown profile should fall back to full")
	}
}
