package geodcat

import (
	"strings"
	"testing"

	"github.com/c360studio/semstreams/vocabulary"
)

func TestPredicatesRegistered(t *testing.T) {
	predicates := []string{
		ResourceType,
		DatasetTitle,
		DatasetDescription,
		DatasetIdentifier,
		DatasetLicense,
		DatasetVersion,
		DatasetIssued,
		DatasetCreated,
		DatasetModified,
		DatasetConformsTo,
		DatasetKeyword,
		DatasetLandingPage,
		DatasetCitation,
		DatasetAlternateName,
		DatasetSpatial,
		DatasetTemporal,
		DatasetCRS,
		DatasetCRSText,
		DatasetSpatialResolution,
		DatasetTemporalResolution,
		DatasetBand,
		DatasetDistribution,
		DatasetRecordSet,
		DatasetCreator,
		DatasetReference,
		DatasetPlatform,
		DatasetInstrument,
		DatasetSamplingStrategy,
		DatasetLive,
		LocationGeometry,
		LocationLabel,
		PeriodStart,
		PeriodEnd,
		QuantityValue,
		QuantityUnit,
		QuantityText,
		BandName,
		BandDescription,
		BandIndex,
		BandCenter,
		BandBandwidth,
		BandQuantity,
		DistributionIdentifier,
		DistributionTitle,
		DistributionDescription,
		DistributionAccessURL,
		DistributionMediaType,
		DistributionByteSize,
		DistributionChecksum,
		DistributionContainedIn,
		DistributionIncludes,
		DistributionBands,
		ChecksumAlgorithm,
		ChecksumValue,
		ChecksumVerified,
		RecordSetIdentifier,
		RecordSetName,
		RecordSetDescription,
		RecordSetKey,
		RecordSetField,
		FieldIdentifier,
		FieldName,
		FieldDescription,
		FieldDataType,
		FieldSource,
		FieldFileProperty,
		FieldColumn,
		FieldRegex,
		FieldBands,
		AgentName,
		AgentHomepage,
		ReferenceTitle,
		ReferencePage,
		ReferenceMediaType,
	}

	for _, pred := range predicates {
		t.Run(pred, func(t *testing.T) {
			meta := vocabulary.GetPredicateMetadata(pred)
			if meta == nil {
				t.Fatalf("predicate %s not registered", pred)
			}
			if meta.Description == "" {
				t.Errorf("predicate %s missing description", pred)
			}
			if meta.StandardIRI == "" {
				t.Errorf("predicate %s missing IRI", pred)
			}
			if parts := strings.Split(pred, "."); len(parts) != 3 || parts[0] != "geodcat" {
				t.Errorf("predicate %s is not a three-level geodcat name", pred)
			}
		})
	}
}

func TestStandardIRIMappings(t *testing.T) {
	tests := []struct {
		predicate string
		wantIRI   string
	}{
		{DatasetTitle, vocabulary.DcTitle},
		{DatasetIdentifier, vocabulary.DcIdentifier},
		{DatasetCreator, vocabulary.ProvWasAttributedTo},
		{ResourceType, RDFType},
		{DatasetDistribution, "http://www.w3.org/ns/dcat#distribution"},
		{LocationGeometry, "http://www.opengis.net/ont/geosparql#asWKT"},
		{DistributionChecksum, "http://spdx.org/rdf/terms#checksum"},
		{DatasetCRS, "http://mlcommons.org/croissant/geo/coordinateReferenceSystem"},
		{FieldSource, "http://mlcommons.org/croissant/source"},
	}

	for _, tt := range tests {
		t.Run(tt.predicate, func(t *testing.T) {
			if got := IRI(tt.predicate); got != tt.wantIRI {
				t.Errorf("IRI(%s) = %q, want %q", tt.predicate, got, tt.wantIRI)
			}
		})
	}
}

func TestIRI_Unknown(t *testing.T) {
	if got := IRI("geodcat.unknown.thing"); got != "" {
		t.Errorf("IRI(unknown) = %q, want empty", got)
	}
}

func TestLinkPredicatesAreIRIs(t *testing.T) {
	for _, pred := range []string{DatasetSpatial, DatasetTemporal, DatasetBand, DatasetDistribution, DatasetRecordSet, RecordSetField, DistributionContainedIn} {
		meta := vocabulary.GetPredicateMetadata(pred)
		if meta == nil || meta.DataType != "iri" {
			t.Errorf("predicate %s should have data type iri", pred)
		}
	}
}

func TestChecksumAlgorithmIRI(t *testing.T) {
	for _, alg := range []string{"md5", "sha1", "sha256", "sha512", "crc32c"} {
		iri := ChecksumAlgorithmIRI(alg)
		if got := ChecksumAlgorithmName(iri); got != alg {
			t.Errorf("ChecksumAlgorithmName(ChecksumAlgorithmIRI(%s)) = %q", alg, got)
		}
	}
	if got := ChecksumAlgorithmIRI("sha256"); got != "http://spdx.org/rdf/terms#checksumAlgorithm_sha256" {
		t.Errorf("sha256 IRI = %q", got)
	}
	if got := ChecksumAlgorithmName("http://example.org/other"); got != "" {
		t.Errorf("unknown IRI name = %q, want empty", got)
	}
}

func TestPrefixes(t *testing.T) {
	p := Prefixes()
	if p["dcat"] != DCATNS || p["geocr"] != GeoCRNS {
		t.Errorf("unexpected prefixes: %v", p)
	}
	p["dcat"] = "changed"
	if Prefixes()["dcat"] != DCATNS {
		t.Error("Prefixes should return a fresh map")
	}
}
