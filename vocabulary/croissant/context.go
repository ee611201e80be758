// Package croissant defines the namespaces and the JSON-LD context shared by
// every exporter that writes GeoCroissant documents.
//
// The context is defined once at package level and only handed out as
// copies, so concurrent runs can read it without coordination.
package croissant

// Namespace IRIs.
const (
	CroissantNS = "http://mlcommons.org/croissant/"
	GeoNS       = "http://mlcommons.org/croissant/geo/"
	RAINS       = "http://mlcommons.org/croissant/RAI/"
	DCTermsNS   = "http://purl.org/dc/terms/"
	SchemaNS    = "https://schema.org/"
)

// Conformance profiles a GeoCroissant document declares.
const (
	ConformsCroissant = "http://mlcommons.org/croissant/1.1"
	ConformsGeo       = "http://mlcommons.org/croissant/geo/1.0"
)

// ConformsTo returns the conformance declarations in output order.
func ConformsTo() []string {
	return []string{ConformsCroissant, ConformsGeo}
}

// Term is one context entry. A term with a Type renders as an expanded
// definition ({"@id": ..., "@type": ...}); otherwise it maps straight to
// IRI.
type Term struct {
	Name string
	IRI  string
	Type string
}

var context = []Term{
	{Name: "@language", IRI: "en"},
	{Name: "@vocab", IRI: SchemaNS},
	{Name: "citeAs", IRI: "cr:citeAs"},
	{Name: "column", IRI: "cr:column"},
	{Name: "conformsTo", IRI: "dct:conformsTo"},
	{Name: "cr", IRI: CroissantNS},
	{Name: "geocr", IRI: GeoNS},
	{Name: "rai", IRI: RAINS},
	{Name: "dct", IRI: DCTermsNS},
	{Name: "sc", IRI: SchemaNS},
	{Name: "data", IRI: "cr:data", Type: "@json"},
	{Name: "examples", IRI: "cr:examples", Type: "@json"},
	{Name: "dataBiases", IRI: "cr:dataBiases"},
	{Name: "dataCollection", IRI: "cr:dataCollection"},
	{Name: "dataType", IRI: "cr:dataType", Type: "@vocab"},
	{Name: "extract", IRI: "cr:extract"},
	{Name: "field", IRI: "cr:field"},
	{Name: "fileProperty", IRI: "cr:fileProperty"},
	{Name: "fileObject", IRI: "cr:fileObject"},
	{Name: "fileSet", IRI: "cr:fileSet"},
	{Name: "format", IRI: "cr:format"},
	{Name: "includes", IRI: "cr:includes"},
	{Name: "isLiveDataset", IRI: "cr:isLiveDataset"},
	{Name: "jsonPath", IRI: "cr:jsonPath"},
	{Name: "key", IRI: "cr:key"},
	{Name: "md5", IRI: "cr:md5"},
	{Name: "parentField", IRI: "cr:parentField"},
	{Name: "path", IRI: "cr:path"},
	{Name: "personalSensitiveInformation", IRI: "cr:personalSensitiveInformation"},
	{Name: "recordSet", IRI: "cr:recordSet"},
	{Name: "references", IRI: "cr:references"},
	{Name: "regex", IRI: "cr:regex"},
	{Name: "repeated", IRI: "cr:repeated"},
	{Name: "replace", IRI: "cr:replace"},
	{Name: "samplingRate", IRI: "cr:samplingRate"},
	{Name: "separator", IRI: "cr:separator"},
	{Name: "source", IRI: "cr:source"},
	{Name: "subField", IRI: "cr:subField"},
	{Name: "transform", IRI: "cr:transform"},
}

// Context returns a copy of the JSON-LD context terms in output order.
func Context() []Term {
	return append([]Term(nil), context...)
}

// Prefixes returns the namespace prefixes declared by the context.
func Prefixes() map[string]string {
	return map[string]string{
		"cr":    CroissantNS,
		"geocr": GeoNS,
		"rai":   RAINS,
		"dct":   DCTermsNS,
		"sc":    SchemaNS,
	}
}

// Expand resolves a compact "prefix:name" against the context prefixes.
// Values that are not compact IRIs are returned unchanged.
func Expand(compact string) string {
	for prefix, ns := range Prefixes() {
		if len(compact) > len(prefix) && compact[:len(prefix)+1] == prefix+":" {
			return ns + compact[len(prefix)+1:]
		}
	}
	return compact
}
