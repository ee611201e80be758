package geodcat

import "github.com/c360studio/semstreams/vocabulary"

// RDFType is the rdf:type property.
const RDFType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

// Resource predicates apply to every node.
const (
	ResourceType = "geodcat.resource.type"
)

// Dataset predicates describe the dataset node.
const (
	DatasetTitle              = "geodcat.dataset.title"
	DatasetDescription        = "geodcat.dataset.description"
	DatasetIdentifier         = "geodcat.dataset.identifier"
	DatasetLicense            = "geodcat.dataset.license"
	DatasetVersion            = "geodcat.dataset.version"
	DatasetIssued             = "geodcat.dataset.issued"
	DatasetCreated            = "geodcat.dataset.created"
	DatasetModified           = "geodcat.dataset.modified"
	DatasetConformsTo         = "geodcat.dataset.conforms_to"
	DatasetKeyword            = "geodcat.dataset.keyword"
	DatasetLandingPage        = "geodcat.dataset.landing_page"
	DatasetCitation           = "geodcat.dataset.citation"
	DatasetAlternateName      = "geodcat.dataset.alternate_name"
	DatasetSpatial            = "geodcat.dataset.spatial"
	DatasetTemporal           = "geodcat.dataset.temporal"
	DatasetCRS                = "geodcat.dataset.crs"
	DatasetCRSText            = "geodcat.dataset.crs_text"
	DatasetSpatialResolution  = "geodcat.dataset.spatial_resolution"
	DatasetTemporalResolution = "geodcat.dataset.temporal_resolution"
	DatasetBand               = "geodcat.dataset.band"
	DatasetDistribution       = "geodcat.dataset.distribution"
	DatasetRecordSet          = "geodcat.dataset.record_set"
	DatasetCreator            = "geodcat.dataset.creator"
	DatasetReference          = "geodcat.dataset.reference"
	DatasetPlatform           = "geodcat.dataset.platform"
	DatasetInstrument         = "geodcat.dataset.instrument"
	DatasetSamplingStrategy   = "geodcat.dataset.sampling_strategy"
	DatasetLive               = "geodcat.dataset.live"
)

// Location predicates describe the spatial coverage node.
const (
	LocationGeometry = "geodcat.location.geometry"
	LocationLabel    = "geodcat.location.label"
)

// Period predicates describe the temporal coverage node.
const (
	PeriodStart = "geodcat.period.start"
	PeriodEnd   = "geodcat.period.end"
)

// Quantity predicates describe a resolution or wavelength value.
const (
	QuantityValue = "geodcat.quantity.value"
	QuantityUnit  = "geodcat.quantity.unit"
	QuantityText  = "geodcat.quantity.text"
)

// Band predicates describe a spectral band node.
const (
	BandName        = "geodcat.band.name"
	BandDescription = "geodcat.band.description"
	BandIndex       = "geodcat.band.index"
	BandCenter      = "geodcat.band.center"
	BandBandwidth   = "geodcat.band.bandwidth"
	BandQuantity    = "geodcat.band.quantity"
)

// Distribution predicates describe a file object or file set node.
const (
	DistributionIdentifier  = "geodcat.distribution.identifier"
	DistributionTitle       = "geodcat.distribution.title"
	DistributionDescription = "geodcat.distribution.description"
	DistributionAccessURL   = "geodcat.distribution.access_url"
	DistributionMediaType   = "geodcat.distribution.media_type"
	DistributionByteSize    = "geodcat.distribution.byte_size"
	DistributionChecksum    = "geodcat.distribution.checksum"
	DistributionContainedIn = "geodcat.distribution.contained_in"
	DistributionIncludes    = "geodcat.distribution.includes"
	DistributionBands       = "geodcat.distribution.bands"
)

// Checksum predicates describe a checksum node.
const (
	ChecksumAlgorithm = "geodcat.checksum.algorithm"
	ChecksumValue     = "geodcat.checksum.value"
	ChecksumVerified  = "geodcat.checksum.verified"
)

// Record set predicates describe a record set node.
const (
	RecordSetIdentifier  = "geodcat.recordset.identifier"
	RecordSetName        = "geodcat.recordset.name"
	RecordSetDescription = "geodcat.recordset.description"
	RecordSetKey         = "geodcat.recordset.key"
	RecordSetField       = "geodcat.recordset.field"
)

// Field predicates describe a field node.
const (
	FieldIdentifier   = "geodcat.field.identifier"
	FieldName         = "geodcat.field.name"
	FieldDescription  = "geodcat.field.description"
	FieldDataType     = "geodcat.field.data_type"
	FieldSource       = "geodcat.field.source"
	FieldFileProperty = "geodcat.field.file_property"
	FieldColumn       = "geodcat.field.column"
	FieldRegex        = "geodcat.field.regex"
	FieldBands        = "geodcat.field.bands"
)

// Agent predicates describe a creator node.
const (
	AgentName     = "geodcat.agent.name"
	AgentHomepage = "geodcat.agent.homepage"
)

// Reference predicates describe a related resource node.
const (
	ReferenceTitle     = "geodcat.reference.title"
	ReferencePage      = "geodcat.reference.page"
	ReferenceMediaType = "geodcat.reference.media_type"
)

func init() {
	// Register resource predicates
	vocabulary.Register(ResourceType,
		vocabulary.WithDescription("Node class"),
		vocabulary.WithDataType("iri"),
		vocabulary.WithIRI(RDFType))

	// Register dataset predicates
	vocabulary.Register(DatasetTitle,
		vocabulary.WithDescription("Dataset title"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(vocabulary.DcTitle))

	vocabulary.Register(DatasetDescription,
		vocabulary.WithDescription("Dataset description"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(DCTNS + "description"))

	vocabulary.Register(DatasetIdentifier,
		vocabulary.WithDescription("Dataset identifier, unique within a batch"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(vocabulary.DcIdentifier))

	vocabulary.Register(DatasetLicense,
		vocabulary.WithDescription("License document or SPDX identifier IRI"),
		vocabulary.WithDataType("iri"),
		vocabulary.WithIRI(DCTNS + "license"))

	vocabulary.Register(DatasetVersion,
		vocabulary.WithDescription("Semantic version of the dataset"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(DCATNS + "version"))

	vocabulary.Register(DatasetIssued,
		vocabulary.WithDescription("Publication date"),
		vocabulary.WithDataType("date"),
		vocabulary.WithIRI(DCTNS + "issued"))

	vocabulary.Register(DatasetCreated,
		vocabulary.WithDescription("Creation date"),
		vocabulary.WithDataType("date"),
		vocabulary.WithIRI(DCTNS + "created"))

	vocabulary.Register(DatasetModified,
		vocabulary.WithDescription("Last modification date"),
		vocabulary.WithDataType("date"),
		vocabulary.WithIRI(DCTNS + "modified"))

	vocabulary.Register(DatasetConformsTo,
		vocabulary.WithDescription("Specification the description conforms to"),
		vocabulary.WithDataType("iri"),
		vocabulary.WithIRI(DCTNS + "conformsTo"))

	vocabulary.Register(DatasetKeyword,
		vocabulary.WithDescription("Free-text keyword"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(DCATNS + "keyword"))

	vocabulary.Register(DatasetLandingPage,
		vocabulary.WithDescription("Web page describing the dataset"),
		vocabulary.WithDataType("iri"),
		vocabulary.WithIRI(DCATNS + "landingPage"))

	vocabulary.Register(DatasetCitation,
		vocabulary.WithDescription("Preferred citation"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(SchemaNS + "citation"))

	vocabulary.Register(DatasetAlternateName,
		vocabulary.WithDescription("Alternative dataset name"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(vocabulary.SkosAltLabel))

	vocabulary.Register(DatasetSpatial,
		vocabulary.WithDescription("Links the dataset to its spatial coverage"),
		vocabulary.WithDataType("iri"),
		vocabulary.WithIRI(DCTNS + "spatial"))

	vocabulary.Register(DatasetTemporal,
		vocabulary.WithDescription("Links the dataset to its temporal coverage"),
		vocabulary.WithDataType("iri"),
		vocabulary.WithIRI(DCTNS + "temporal"))

	vocabulary.Register(DatasetCRS,
		vocabulary.WithDescription("Coordinate reference system IRI"),
		vocabulary.WithDataType("iri"),
		vocabulary.WithIRI(GeoCRNS + "coordinateReferenceSystem"))

	vocabulary.Register(DatasetCRSText,
		vocabulary.WithDescription("Textual description of a non-EPSG reference system"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(GeoCRNS + "crsDescription"))

	vocabulary.Register(DatasetSpatialResolution,
		vocabulary.WithDescription("Links the dataset to its spatial resolution"),
		vocabulary.WithDataType("iri"),
		vocabulary.WithIRI(GeoCRNS + "spatialResolution"))

	vocabulary.Register(DatasetTemporalResolution,
		vocabulary.WithDescription("Links the dataset to its temporal resolution"),
		vocabulary.WithDataType("iri"),
		vocabulary.WithIRI(GeoCRNS + "temporalResolution"))

	vocabulary.Register(DatasetBand,
		vocabulary.WithDescription("Links the dataset to a spectral band"),
		vocabulary.WithDataType("iri"),
		vocabulary.WithIRI(GeoCRNS + "spectralBand"))

	vocabulary.Register(DatasetDistribution,
		vocabulary.WithDescription("Links the dataset to a distribution"),
		vocabulary.WithDataType("iri"),
		vocabulary.WithIRI(DCATNS + "distribution"))

	vocabulary.Register(DatasetRecordSet,
		vocabulary.WithDescription("Links the dataset to a record set"),
		vocabulary.WithDataType("iri"),
		vocabulary.WithIRI(CRNS + "recordSet"))

	vocabulary.Register(DatasetCreator,
		vocabulary.WithDescription("Agent the dataset is attributed to"),
		vocabulary.WithDataType("iri"),
		vocabulary.WithIRI(vocabulary.ProvWasAttributedTo))

	vocabulary.Register(DatasetReference,
		vocabulary.WithDescription("Related resource"),
		vocabulary.WithDataType("iri"),
		vocabulary.WithIRI(DCTNS + "references"))

	vocabulary.Register(DatasetPlatform,
		vocabulary.WithDescription("Observing platform"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(GeoCRNS + "platform"))

	vocabulary.Register(DatasetInstrument,
		vocabulary.WithDescription("Observing instrument"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(GeoCRNS + "instrument"))

	vocabulary.Register(DatasetSamplingStrategy,
		vocabulary.WithDescription("How samples were selected"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(GeoCRNS + "samplingStrategy"))

	vocabulary.Register(DatasetLive,
		vocabulary.WithDescription("Whether the dataset is continuously updated"),
		vocabulary.WithDataType("bool"),
		vocabulary.WithIRI(GeoCRNS + "live"))

	// Register location predicates
	vocabulary.Register(LocationGeometry,
		vocabulary.WithDescription("Coverage polygon as a WKT literal"),
		vocabulary.WithDataType("wkt"),
		vocabulary.WithIRI(GeoNS + "asWKT"))

	vocabulary.Register(LocationLabel,
		vocabulary.WithDescription("Textual place description"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(vocabulary.SkosPrefLabel))

	// Register period predicates
	vocabulary.Register(PeriodStart,
		vocabulary.WithDescription("Start of the period"),
		vocabulary.WithDataType("datetime"),
		vocabulary.WithIRI(DCATNS + "startDate"))

	vocabulary.Register(PeriodEnd,
		vocabulary.WithDescription("End of the period"),
		vocabulary.WithDataType("datetime"),
		vocabulary.WithIRI(DCATNS + "endDate"))

	// Register quantity predicates
	vocabulary.Register(QuantityValue,
		vocabulary.WithDescription("Numeric value"),
		vocabulary.WithDataType("float"),
		vocabulary.WithIRI(SchemaNS + "value"))

	vocabulary.Register(QuantityUnit,
		vocabulary.WithDescription("Unit text"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(SchemaNS + "unitText"))

	vocabulary.Register(QuantityText,
		vocabulary.WithDescription("Original rendering of a non-numeric value"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(SchemaNS + "description"))

	// Register band predicates
	vocabulary.Register(BandName,
		vocabulary.WithDescription("Band name, unique within the dataset"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(SchemaNS + "name"))

	vocabulary.Register(BandDescription,
		vocabulary.WithDescription("Band description"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(DCTNS + "description"))

	vocabulary.Register(BandIndex,
		vocabulary.WithDescription("Zero-based position in the dataset band order"),
		vocabulary.WithDataType("int"),
		vocabulary.WithIRI(GeoCRNS + "bandIndex"))

	vocabulary.Register(BandCenter,
		vocabulary.WithDescription("Links the band to its center wavelength"),
		vocabulary.WithDataType("iri"),
		vocabulary.WithIRI(GeoCRNS + "centerWavelength"))

	vocabulary.Register(BandBandwidth,
		vocabulary.WithDescription("Links the band to its bandwidth"),
		vocabulary.WithDataType("iri"),
		vocabulary.WithIRI(GeoCRNS + "bandwidth"))

	vocabulary.Register(BandQuantity,
		vocabulary.WithDescription("Physical quantity of a non-spectral channel"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(GeoCRNS + "physicalQuantity"))

	// Register distribution predicates
	vocabulary.Register(DistributionIdentifier,
		vocabulary.WithDescription("Entry identifier"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(vocabulary.DcIdentifier))

	vocabulary.Register(DistributionTitle,
		vocabulary.WithDescription("Entry name"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(vocabulary.DcTitle))

	vocabulary.Register(DistributionDescription,
		vocabulary.WithDescription("Entry description"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(DCTNS + "description"))

	vocabulary.Register(DistributionAccessURL,
		vocabulary.WithDescription("Content URL"),
		vocabulary.WithDataType("iri"),
		vocabulary.WithIRI(DCATNS + "accessURL"))

	vocabulary.Register(DistributionMediaType,
		vocabulary.WithDescription("Encoding format"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(DCATNS + "mediaType"))

	vocabulary.Register(DistributionByteSize,
		vocabulary.WithDescription("Content size in bytes"),
		vocabulary.WithDataType("int"),
		vocabulary.WithIRI(DCATNS + "byteSize"))

	vocabulary.Register(DistributionChecksum,
		vocabulary.WithDescription("Links a file object to its checksum"),
		vocabulary.WithDataType("iri"),
		vocabulary.WithIRI(SPDXNS + "checksum"))

	vocabulary.Register(DistributionContainedIn,
		vocabulary.WithDescription("Container file object of a file set"),
		vocabulary.WithDataType("iri"),
		vocabulary.WithIRI(CRNS + "containedIn"))

	vocabulary.Register(DistributionIncludes,
		vocabulary.WithDescription("Glob pattern a file set matches"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(CRNS + "includes"))

	vocabulary.Register(DistributionBands,
		vocabulary.WithDescription("Comma-separated band order of the entry"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(GeoCRNS + "bands"))

	// Register checksum predicates
	vocabulary.Register(ChecksumAlgorithm,
		vocabulary.WithDescription("Hash algorithm individual"),
		vocabulary.WithDataType("iri"),
		vocabulary.WithIRI(SPDXNS + "algorithm"))

	vocabulary.Register(ChecksumValue,
		vocabulary.WithDescription("Hex digest or the unavailable sentinel"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(SPDXNS + "checksumValue"))

	vocabulary.Register(ChecksumVerified,
		vocabulary.WithDescription("Whether the digest came from the source"),
		vocabulary.WithDataType("bool"),
		vocabulary.WithIRI(GeoCRNS + "verified"))

	// Register recordset predicates
	vocabulary.Register(RecordSetIdentifier,
		vocabulary.WithDescription("Record set identifier"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(vocabulary.DcIdentifier))

	vocabulary.Register(RecordSetName,
		vocabulary.WithDescription("Record set name"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(SchemaNS + "name"))

	vocabulary.Register(RecordSetDescription,
		vocabulary.WithDescription("Record set description"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(DCTNS + "description"))

	vocabulary.Register(RecordSetKey,
		vocabulary.WithDescription("Field that orders the records"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(CRNS + "key"))

	vocabulary.Register(RecordSetField,
		vocabulary.WithDescription("Links a record set to a field"),
		vocabulary.WithDataType("iri"),
		vocabulary.WithIRI(CRNS + "field"))

	// Register field predicates
	vocabulary.Register(FieldIdentifier,
		vocabulary.WithDescription("Field identifier"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(vocabulary.DcIdentifier))

	vocabulary.Register(FieldName,
		vocabulary.WithDescription("Field name"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(SchemaNS + "name"))

	vocabulary.Register(FieldDescription,
		vocabulary.WithDescription("Field description"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(DCTNS + "description"))

	vocabulary.Register(FieldDataType,
		vocabulary.WithDescription("Value type of the field"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(CRNS + "dataType"))

	vocabulary.Register(FieldSource,
		vocabulary.WithDescription("Distribution entry the field reads from"),
		vocabulary.WithDataType("iri"),
		vocabulary.WithIRI(CRNS + "source"))

	vocabulary.Register(FieldFileProperty,
		vocabulary.WithDescription("File property the value is extracted from"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(CRNS + "fileProperty"))

	vocabulary.Register(FieldColumn,
		vocabulary.WithDescription("Column the value is extracted from"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(CRNS + "column"))

	vocabulary.Register(FieldRegex,
		vocabulary.WithDescription("Pattern applied to the extracted value"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(CRNS + "regex"))

	vocabulary.Register(FieldBands,
		vocabulary.WithDescription("Comma-separated band order of the field"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(GeoCRNS + "bands"))

	// Register agent predicates
	vocabulary.Register(AgentName,
		vocabulary.WithDescription("Agent name"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(FOAFNS + "name"))

	vocabulary.Register(AgentHomepage,
		vocabulary.WithDescription("Agent web page"),
		vocabulary.WithDataType("iri"),
		vocabulary.WithIRI(FOAFNS + "homepage"))

	// Register reference predicates
	vocabulary.Register(ReferenceTitle,
		vocabulary.WithDescription("Reference title"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(vocabulary.DcTitle))

	vocabulary.Register(ReferencePage,
		vocabulary.WithDescription("Reference URL"),
		vocabulary.WithDataType("iri"),
		vocabulary.WithIRI(FOAFNS + "page"))

	vocabulary.Register(ReferenceMediaType,
		vocabulary.WithDescription("Reference encoding format"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(DCATNS + "mediaType"))
}

// IRI returns the standard IRI registered for a predicate, or "" when the
// predicate is unknown.
func IRI(predicate string) string {
	meta := vocabulary.GetPredicateMetadata(predicate)
	if meta == nil {
		return ""
	}
	return meta.StandardIRI
}
