// Package geodcat exports records as GeoDCAT-AP linked data. One graph
// builder feeds three serializations: JSON-LD, Turtle and N-Triples.
//
// Triples are produced as semstreams vocabulary messages whose predicates
// are registered by vocabulary/geodcat, so the registry decides both the
// RDF predicate IRI and how each plain value is typed.
package geodcat

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/c360studio/semstreams/message"

	"github.com/c360studio/geocrosswalk/export"
	"github.com/c360studio/geocrosswalk/record"
	"github.com/c360studio/geocrosswalk/spatial"
	"github.com/c360studio/geocrosswalk/temporal"
	vocab "github.com/c360studio/geocrosswalk/vocabulary/geodcat"
)

// Exporter names, one per serialization.
const (
	Name         = "geodcat"
	TurtleName   = "geodcat-turtle"
	NTriplesName = "geodcat-ntriples"
)

// DatasetBase prefixes dataset identifiers that are not already IRIs.
const DatasetBase = "urn:geocrosswalk:dataset:"

// LicenseBase prefixes bare SPDX license identifiers.
const LicenseBase = "https://spdx.org/licenses/"

// GeoDCATAP is the application profile every exported dataset conforms to.
const GeoDCATAP = "http://data.europa.eu/930/"

func init() {
	export.Register(New(export.FormatJSONLD))
	export.Register(New(export.FormatTurtle))
	export.Register(New(export.FormatNTriples))
}

// Exporter writes a GeoDCAT-AP graph in one serialization.
type Exporter struct {
	format  export.Format
	profile export.Profile
}

// New returns an exporter for a serialization using the full profile.
func New(format export.Format) Exporter {
	return Exporter{format: format, profile: export.ProfileFull}
}

// WithProfile returns a copy of e that exports the given profile.
func (e Exporter) WithProfile(p export.Profile) Exporter {
	e.profile = p
	return e
}

// Name implements export.Exporter.
func (e Exporter) Name() string {
	switch e.format {
	case export.FormatTurtle:
		return TurtleName
	case export.FormatNTriples:
		return NTriplesName
	}
	return Name
}

// Description implements export.Exporter.
func (e Exporter) Description() string {
	info, _ := export.GetFormatInfo(e.format)
	return "GeoDCAT-AP linked data (" + info.Description + ")"
}

// MediaType implements export.Exporter.
func (e Exporter) MediaType() string {
	info, _ := export.GetFormatInfo(e.format)
	return info.MIMEType
}

// Extension implements export.Exporter.
func (e Exporter) Extension() string {
	info, _ := export.GetFormatInfo(e.format)
	return info.Extension
}

// Export implements export.Exporter.
func (e Exporter) Export(rec record.Record) (export.Document, error) {
	if err := export.CheckSealed(&rec); err != nil {
		return export.Document{}, err
	}
	g, err := Build(&rec, export.GetProfileConfig(e.profile))
	if err != nil {
		return export.Document{}, fmt.Errorf("%s: %w", e.Name(), err)
	}
	w, err := export.NewWriter(e.format)
	if err != nil {
		return export.Document{}, fmt.Errorf("%s: %w", e.Name(), err)
	}
	body, err := w.Write(g)
	if err != nil {
		return export.Document{}, fmt.Errorf("%s: write graph: %w", e.Name(), err)
	}
	return export.Document{Exporter: e.Name(), MediaType: e.MediaType(), Extension: e.Extension(), Body: body}, nil
}

// DatasetIRI returns the subject IRI of the dataset node.
func DatasetIRI(rec *record.Record) string {
	id := rec.Identity.ID
	if strings.Contains(id, "://") || strings.HasPrefix(id, "urn:") {
		return id
	}
	return DatasetBase + url.PathEscape(id)
}

// LicenseIRI turns a bare SPDX identifier into its license IRI. Other
// values are returned unchanged.
func LicenseIRI(license string) string {
	if license == "" || strings.ContainsAny(license, ": \t") {
		return license
	}
	return LicenseBase + license
}

// CRSIRI returns the OGC IRI of an EPSG reference system.
func CRSIRI(code int) string {
	return vocab.CRSBase + "EPSG/0/" + strconv.Itoa(code)
}

// graph wraps the export graph and keeps the first AddMessage error.
type graph struct {
	g   *export.Graph
	err error
}

func (b *graph) add(subject, predicate string, object any) {
	if b.err != nil {
		return
	}
	if s, ok := object.(string); ok && s == "" {
		return
	}
	b.err = b.g.AddMessage(message.Triple{Subject: subject, Predicate: predicate, Object: object})
}

func (b *graph) typed(subject string, classes ...string) {
	for _, c := range classes {
		b.add(subject, vocab.ResourceType, c)
	}
}

// Build assembles the graph of a record for a profile. Blank node labels
// are derived from positions so the output is stable.
func Build(rec *record.Record, cfg export.ProfileConfig) (*export.Graph, error) {
	b := &graph{g: export.NewGraph()}
	for p, ns := range vocab.Prefixes() {
		b.g.Bind(p, ns)
	}

	ds := DatasetIRI(rec)
	id := rec.Identity
	b.typed(ds, vocab.ClassDataset, vocab.ClassSchemaDataset)
	b.add(ds, vocab.DatasetIdentifier, id.ID)
	b.add(ds, vocab.DatasetTitle, id.Name)
	b.add(ds, vocab.DatasetDescription, id.Description)
	b.add(ds, vocab.DatasetVersion, id.Version)
	b.add(ds, vocab.DatasetLicense, link(LicenseIRI(id.License)))
	b.add(ds, vocab.DatasetConformsTo, GeoDCATAP)
	b.add(ds, vocab.DatasetLandingPage, link(id.URL))
	b.add(ds, vocab.DatasetCitation, id.Citation)
	for _, n := range id.AlternateNames {
		b.add(ds, vocab.DatasetAlternateName, n)
	}
	addDate(b, ds, vocab.DatasetCreated, id.Created)
	addDate(b, ds, vocab.DatasetIssued, id.Published)
	addDate(b, ds, vocab.DatasetModified, id.Modified)
	for _, k := range rec.Keywords {
		b.add(ds, vocab.DatasetKeyword, k)
	}
	if live, ok := rec.Live.Get(); ok {
		b.add(ds, vocab.DatasetLive, live)
	}

	if box, ok := rec.Spatial.Box.Get(); ok || rec.Spatial.Description != "" {
		loc := "_:location"
		b.add(ds, vocab.DatasetSpatial, loc)
		b.typed(loc, vocab.ClassLocation)
		if ok {
			b.add(loc, vocab.LocationGeometry, export.TypedLiteral(spatial.WKT(box), vocab.WKTLiteral))
		}
		b.add(loc, vocab.LocationLabel, rec.Spatial.Description)
	}
	if iv, ok := rec.Temporal.Get(); ok {
		period := "_:period"
		b.add(ds, vocab.DatasetTemporal, period)
		b.typed(period, vocab.ClassPeriodOfTime)
		addDate(b, period, vocab.PeriodStart, iv.Start)
		addDate(b, period, vocab.PeriodEnd, iv.End)
	}

	if cfg.IncludeGeo {
		addGeo(b, ds, rec)
	}
	if cfg.IncludeBands {
		addBands(b, ds, rec.Bands)
	}

	labels := make(map[string]string, len(rec.Distribution))
	for i, e := range rec.Distribution {
		labels[e.ID] = "_:dist" + strconv.Itoa(i)
	}
	for _, e := range rec.Distribution {
		addEntry(b, ds, labels, e, cfg.IncludeRecordSets)
	}

	if cfg.IncludeRecordSets {
		for i, rs := range rec.RecordSets {
			addRecordSet(b, ds, labels, i, rs)
		}
	}
	if cfg.IncludeProvenance {
		for i, c := range rec.Creators {
			agent := "_:agent" + strconv.Itoa(i)
			b.add(ds, vocab.DatasetCreator, agent)
			b.typed(agent, vocab.ClassAgent)
			b.add(agent, vocab.AgentName, c.Name)
			b.add(agent, vocab.AgentHomepage, link(c.URL))
		}
		for i, r := range rec.References {
			ref := "_:ref" + strconv.Itoa(i)
			b.add(ds, vocab.DatasetReference, ref)
			b.typed(ref, vocab.ClassDocument)
			b.add(ref, vocab.ReferenceTitle, r.Name)
			b.add(ref, vocab.ReferencePage, link(r.URL))
			b.add(ref, vocab.ReferenceMediaType, r.EncodingFormat)
		}
	}
	if b.err != nil {
		return nil, b.err
	}
	return b.g, nil
}

func addGeo(b *graph, ds string, rec *record.Record) {
	switch rec.Spatial.CRS.Kind {
	case record.CRSEPSG:
		b.add(ds, vocab.DatasetCRS, CRSIRI(rec.Spatial.CRS.Code))
	case record.CRSText:
		b.add(ds, vocab.DatasetCRSText, rec.Spatial.CRS.Text)
	}
	if q, ok := rec.SpatialResolution.Get(); ok {
		addQuantity(b, ds, vocab.DatasetSpatialResolution, "_:spatialResolution", q)
	}
	if q, ok := rec.TemporalResolution.Get(); ok {
		addQuantity(b, ds, vocab.DatasetTemporalResolution, "_:temporalResolution", q)
	}
	if inst, ok := rec.Instrument.Get(); ok {
		b.add(ds, vocab.DatasetPlatform, inst.Platform)
		b.add(ds, vocab.DatasetInstrument, inst.Instrument)
	}
	b.add(ds, vocab.DatasetSamplingStrategy, rec.SamplingStrategy)
}

func addBands(b *graph, ds string, bands []record.Band) {
	for i, band := range bands {
		node := "_:band" + strconv.Itoa(i)
		b.add(ds, vocab.DatasetBand, node)
		b.typed(node, vocab.ClassSpectralBand)
		b.add(node, vocab.BandName, band.Name)
		b.add(node, vocab.BandIndex, i)
		b.add(node, vocab.BandDescription, band.Description)
		if q, ok := band.Center.Get(); ok {
			addQuantity(b, node, vocab.BandCenter, node+"-center", q)
		}
		if q, ok := band.Bandwidth.Get(); ok {
			addQuantity(b, node, vocab.BandBandwidth, node+"-bandwidth", q)
		}
		b.add(node, vocab.BandQuantity, band.Quantity)
	}
}

func addQuantity(b *graph, subject, predicate, node string, q record.Quantity) {
	b.add(subject, predicate, node)
	b.typed(node, vocab.ClassQuantitativeValue)
	if !q.IsTextual() {
		b.add(node, vocab.QuantityValue, q.Value)
		b.add(node, vocab.QuantityUnit, q.Unit)
	}
	b.add(node, vocab.QuantityText, q.Text)
}

func addEntry(b *graph, ds string, labels map[string]string, e record.Entry, withBands bool) {
	node := labels[e.ID]
	b.add(ds, vocab.DatasetDistribution, node)
	class := vocab.ClassFileObject
	if e.Kind == record.FileSet {
		class = vocab.ClassFileSet
	}
	b.typed(node, vocab.ClassDistribution, class)
	b.add(node, vocab.DistributionIdentifier, e.ID)
	b.add(node, vocab.DistributionTitle, e.Name)
	b.add(node, vocab.DistributionDescription, e.Description)
	b.add(node, vocab.DistributionAccessURL, link(e.ContentURL))
	b.add(node, vocab.DistributionMediaType, e.EncodingFormat)
	if size, ok := e.ContentSize.Get(); ok {
		b.add(node, vocab.DistributionByteSize, size)
	}
	if e.Kind == record.FileSet {
		if c, ok := labels[e.ContainedIn]; ok {
			b.add(node, vocab.DistributionContainedIn, c)
		}
		b.add(node, vocab.DistributionIncludes, e.Includes)
	} else if e.Checksum.Value != "" {
		sum := node + "-checksum"
		b.add(node, vocab.DistributionChecksum, sum)
		b.typed(sum, vocab.ClassChecksum)
		b.add(sum, vocab.ChecksumAlgorithm, vocab.ChecksumAlgorithmIRI(e.Checksum.Algorithm))
		b.add(sum, vocab.ChecksumValue, e.Checksum.Value)
		b.add(sum, vocab.ChecksumVerified, e.Checksum.Verified)
	}
	if withBands && e.Bands != nil {
		for _, n := range e.Bands.Names {
			b.add(node, vocab.DistributionBands, n)
		}
	}
}

func addRecordSet(b *graph, ds string, labels map[string]string, i int, rs record.RecordSet) {
	node := "_:rs" + strconv.Itoa(i)
	b.add(ds, vocab.DatasetRecordSet, node)
	b.typed(node, vocab.ClassRecordSet)
	b.add(node, vocab.RecordSetIdentifier, rs.ID)
	b.add(node, vocab.RecordSetName, rs.Name)
	b.add(node, vocab.RecordSetDescription, rs.Description)
	b.add(node, vocab.RecordSetKey, rs.OrderingKey)
	for j, f := range rs.Fields {
		field := node + "-f" + strconv.Itoa(j)
		b.add(node, vocab.RecordSetField, field)
		b.typed(field, vocab.ClassField)
		b.add(field, vocab.FieldIdentifier, f.ID)
		b.add(field, vocab.FieldName, f.Name)
		b.add(field, vocab.FieldDescription, f.Description)
		b.add(field, vocab.FieldDataType, f.DataType)
		if src, ok := labels[f.Source]; ok {
			b.add(field, vocab.FieldSource, src)
		}
		b.add(field, vocab.FieldFileProperty, f.Extract.FileProperty)
		b.add(field, vocab.FieldColumn, f.Extract.Column)
		b.add(field, vocab.FieldRegex, f.Regex)
		if f.Bands != nil {
			for _, n := range f.Bands.Names {
				b.add(field, vocab.FieldBands, n)
			}
		}
	}
}

func addDate(b *graph, subject, predicate string, ts record.Optional[record.Timestamp]) {
	t, ok := ts.Get()
	if !ok {
		return
	}
	datatype := export.XSDDateTime
	if t.Precision == record.PrecisionDate {
		datatype = export.XSDDate
	}
	b.add(subject, predicate, export.TypedLiteral(temporal.Format(t), datatype))
}

// link returns an IRI term for an absolute URL and a plain literal for a
// relative path, which N-Triples cannot carry as an IRI.
func link(v string) any {
	if v == "" {
		return ""
	}
	if u, err := url.Parse(v); err == nil && u.IsAbs() {
		return export.IRI(v)
	}
	return export.Literal(v)
}
