package geodcat

import (
	"strings"

	"github.com/c360studio/geocrosswalk/vocabulary/croissant"
)

// Namespace IRIs bound as prefixes in every exported graph.
const (
	DCTNS    = "http://purl.org/dc/terms/"
	DCATNS   = "http://www.w3.org/ns/dcat#"
	FOAFNS   = "http://xmlns.com/foaf/0.1/"
	GeoNS    = "http://www.opengis.net/ont/geosparql#"
	SchemaNS = "https://schema.org/"
	SPDXNS   = "http://spdx.org/rdf/terms#"
	PROVNS   = "http://www.w3.org/ns/prov#"
	SKOSNS   = "http://www.w3.org/2004/02/skos/core#"
	CRNS     = croissant.CroissantNS
	GeoCRNS  = croissant.GeoNS
)

// Prefixes returns the prefix bindings for a GeoDCAT graph.
func Prefixes() map[string]string {
	return map[string]string{
		"dct":    DCTNS,
		"dcat":   DCATNS,
		"foaf":   FOAFNS,
		"geo":    GeoNS,
		"schema": SchemaNS,
		"spdx":   SPDXNS,
		"prov":   PROVNS,
		"skos":   SKOSNS,
		"cr":     CRNS,
		"geocr":  GeoCRNS,
	}
}

// CRSBase prefixes an OGC reference system path ("EPSG/0/4326").
const CRSBase = "http://www.opengis.net/def/crs/"

// WKTLiteral is the datatype of geometry literals.
const WKTLiteral = GeoNS + "wktLiteral"

// Class IRIs.
const (
	ClassDataset           = DCATNS + "Dataset"
	ClassSchemaDataset     = SchemaNS + "Dataset"
	ClassDistribution      = DCATNS + "Distribution"
	ClassFileObject        = CRNS + "FileObject"
	ClassFileSet           = CRNS + "FileSet"
	ClassLocation          = DCTNS + "Location"
	ClassPeriodOfTime      = DCTNS + "PeriodOfTime"
	ClassQuantitativeValue = SchemaNS + "QuantitativeValue"
	ClassChecksum          = SPDXNS + "Checksum"
	ClassRecordSet         = CRNS + "RecordSet"
	ClassField             = CRNS + "Field"
	ClassSpectralBand      = GeoCRNS + "SpectralBand"
	ClassAgent             = PROVNS + "Agent"
	ClassDocument          = FOAFNS + "Document"
)

// SPDX checksum algorithm individuals, keyed by lower-case algorithm name.
var checksumAlgorithms = map[string]string{
	"md5":    SPDXNS + "checksumAlgorithm_md5",
	"sha1":   SPDXNS + "checksumAlgorithm_sha1",
	"sha256": SPDXNS + "checksumAlgorithm_sha256",
	"sha512": SPDXNS + "checksumAlgorithm_sha512",
}

// ChecksumAlgorithmIRI returns the SPDX individual for an algorithm name.
// Unknown algorithms map to a geocr term carrying the name.
func ChecksumAlgorithmIRI(algorithm string) string {
	if iri, ok := checksumAlgorithms[algorithm]; ok {
		return iri
	}
	return GeoCRNS + "checksumAlgorithm_" + algorithm
}

// ChecksumAlgorithmName is the inverse of ChecksumAlgorithmIRI.
func ChecksumAlgorithmName(iri string) string {
	for name, v := range checksumAlgorithms {
		if v == iri {
			return name
		}
	}
	if name, ok := strings.CutPrefix(iri, GeoCRNS+"checksumAlgorithm_"); ok {
		return name
	}
	return ""
}
