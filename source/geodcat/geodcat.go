// Package geodcat extracts GeoDCAT-AP datasets from JSON-LD graphs. It
// reads the flattened form the geodcat exporter writes as well as graphs
// with embedded nodes.
package geodcat

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/c360studio/geocrosswalk/bands"
	"github.com/c360studio/geocrosswalk/distribution"
	sink "github.com/c360studio/geocrosswalk/export/geodcat"
	"github.com/c360studio/geocrosswalk/jsondoc"
	"github.com/c360studio/geocrosswalk/record"
	"github.com/c360studio/geocrosswalk/source"
	"github.com/c360studio/geocrosswalk/spatial"
	vocab "github.com/c360studio/geocrosswalk/vocabulary/geodcat"
)

// Schema is the name the adapter registers under.
const Schema = "geodcat"

func init() {
	source.Register(Catalog{})
}

// datasetPredicates are the dataset properties with a canonical home.
var datasetPredicates = []string{
	vocab.ResourceType, vocab.DatasetTitle, vocab.DatasetDescription, vocab.DatasetIdentifier,
	vocab.DatasetLicense, vocab.DatasetVersion, vocab.DatasetIssued, vocab.DatasetCreated,
	vocab.DatasetModified, vocab.DatasetConformsTo, vocab.DatasetKeyword, vocab.DatasetLandingPage,
	vocab.DatasetCitation, vocab.DatasetAlternateName, vocab.DatasetSpatial, vocab.DatasetTemporal,
	vocab.DatasetCRS, vocab.DatasetCRSText, vocab.DatasetSpatialResolution, vocab.DatasetTemporalResolution,
	vocab.DatasetBand, vocab.DatasetDistribution, vocab.DatasetRecordSet, vocab.DatasetCreator,
	vocab.DatasetReference, vocab.DatasetPlatform, vocab.DatasetInstrument, vocab.DatasetSamplingStrategy,
	vocab.DatasetLive,
}

// Catalog is the GeoDCAT adapter.
type Catalog struct{}

// Name implements source.Adapter.
func (Catalog) Name() string { return Schema }

// Description implements source.Adapter.
func (Catalog) Description() string { return "GeoDCAT-AP dataset graph (JSON-LD)" }

// Detect implements source.Detector.
func (Catalog) Detect(doc jsondoc.Value) bool {
	if !doc.Get("@graph").IsArray() {
		return false
	}
	return newGraph(doc).first(vocab.ClassDataset) != nil
}

// Extract implements source.Adapter.
func (Catalog) Extract(raw []byte) (*source.Intermediate, record.Warnings, error) {
	doc, err := source.Parse(Schema, raw)
	if err != nil {
		return nil, nil, err
	}
	if !doc.Get("@graph").IsArray() {
		return nil, nil, record.NewShapeError(Schema, "@graph", "document has no @graph array")
	}
	g := newGraph(doc)
	ds := g.first(vocab.ClassDataset)
	if ds == nil {
		return nil, nil, record.NewShapeError(Schema, "@graph", "graph has no dcat:Dataset node")
	}
	id := ds.str(vocab.DatasetIdentifier)
	if id == "" {
		id = strings.TrimPrefix(ds.id, sink.DatasetBase)
	}
	if id == "" || strings.HasPrefix(id, "_:") {
		return nil, nil, record.NewShapeError(Schema, "@graph", "dataset node has no identifier")
	}

	var warnings record.Warnings
	known := make(map[string]bool, len(datasetPredicates))
	for _, p := range datasetPredicates {
		known[vocab.IRI(p)] = true
	}
	for _, k := range ds.keys {
		if !known[g.expand(k)] {
			warnings = append(warnings, record.Warn(record.CodeUnmappedField, k, "no canonical field for %q", k))
		}
	}

	in := &source.Intermediate{Schema: Schema}
	in.Identity = source.Identity{
		ID:             id,
		Name:           ds.str(vocab.DatasetTitle),
		Description:    ds.str(vocab.DatasetDescription),
		Version:        ds.str(vocab.DatasetVersion),
		License:        strings.TrimPrefix(ds.link(vocab.DatasetLicense), sink.LicenseBase),
		Citation:       ds.str(vocab.DatasetCitation),
		URL:            ds.link(vocab.DatasetLandingPage),
		AlternateNames: ds.strs(vocab.DatasetAlternateName),
		Created:        ds.str(vocab.DatasetCreated),
		Published:      ds.str(vocab.DatasetIssued),
		Modified:       ds.str(vocab.DatasetModified),
	}
	in.Keywords = ds.strs(vocab.DatasetKeyword)
	in.Live = ds.boolean(vocab.DatasetLive)
	in.Platform = ds.str(vocab.DatasetPlatform)
	in.Instrument = ds.str(vocab.DatasetInstrument)
	in.SamplingStrategy = ds.str(vocab.DatasetSamplingStrategy)

	readSpatial(g, ds, &in.Spatial)
	if p := g.get(ds.link(vocab.DatasetTemporal)); p != nil {
		in.Temporal.Start = p.str(vocab.PeriodStart)
		in.Temporal.End = p.str(vocab.PeriodEnd)
	}
	in.SpatialResolution = quantity(g.get(ds.link(vocab.DatasetSpatialResolution)))
	in.TemporalResolution = quantity(g.get(ds.link(vocab.DatasetTemporalResolution)))
	in.Bands.Explicit = readBands(g, ds)

	entryIDs := make(map[string]string)
	dists := g.follow(ds, vocab.DatasetDistribution)
	for _, n := range dists {
		entryIDs[n.id] = n.str(vocab.DistributionIdentifier)
	}
	for i, n := range dists {
		a, err := asset(g, i, n, entryIDs)
		if err != nil {
			return nil, nil, err
		}
		in.Assets = append(in.Assets, a)
	}
	for i, n := range g.follow(ds, vocab.DatasetRecordSet) {
		rs, ws := recordSet(g, i, n, entryIDs)
		warnings = append(warnings, ws...)
		in.RecordSets = append(in.RecordSets, rs)
	}

	for _, a := range g.follow(ds, vocab.DatasetCreator) {
		in.Creators = append(in.Creators, record.Agent{
			Name: a.str(vocab.AgentName),
			URL:  a.link(vocab.AgentHomepage),
		})
	}
	for _, r := range g.follow(ds, vocab.DatasetReference) {
		in.References = append(in.References, record.Reference{
			Name:           r.str(vocab.ReferenceTitle),
			URL:            r.link(vocab.ReferencePage),
			EncodingFormat: r.str(vocab.ReferenceMediaType),
		})
	}
	return in, warnings, nil
}

func readSpatial(g *nodeGraph, ds *node, sp *source.Spatial) {
	if loc := g.get(ds.link(vocab.DatasetSpatial)); loc != nil {
		sp.Ring = spatial.ParseWKT(loc.str(vocab.LocationGeometry))
		sp.Description = loc.str(vocab.LocationLabel)
	}
	crs := ds.link(vocab.DatasetCRS)
	if code, ok := strings.CutPrefix(crs, vocab.CRSBase+"EPSG/0/"); ok {
		sp.CRSCode = "EPSG:" + code
		return
	}
	if text := ds.str(vocab.DatasetCRSText); text != "" {
		sp.CRSCode = text
		return
	}
	sp.CRSText = crs
}

func quantity(n *node) source.Quantity {
	if n == nil {
		return source.Quantity{}
	}
	return source.Quantity{
		Value: n.float(vocab.QuantityValue),
		Unit:  n.str(vocab.QuantityUnit),
		Text:  n.str(vocab.QuantityText),
	}
}

// measure reads a wavelength node. A textual value goes to the
// descriptor's combined wavelength string.
func measure(n *node) (record.Optional[record.Quantity], string) {
	if n == nil {
		return record.None[record.Quantity](), ""
	}
	if v, ok := n.float(vocab.QuantityValue).Get(); ok {
		return record.Some(record.Quantity{Value: v, Unit: n.str(vocab.QuantityUnit)}), ""
	}
	return record.None[record.Quantity](), n.str(vocab.QuantityText)
}

func readBands(g *nodeGraph, ds *node) []bands.Descriptor {
	nodes := g.follow(ds, vocab.DatasetBand)
	// Bands without an index keep their document order after the indexed
	// ones.
	index := func(n *node) int64 { return n.integer(vocab.BandIndex).OrElse(math.MaxInt64) }
	sort.SliceStable(nodes, func(i, j int) bool { return index(nodes[i]) < index(nodes[j]) })
	out := make([]bands.Descriptor, 0, len(nodes))
	for i, n := range nodes {
		d := bands.Descriptor{
			Name:        n.str(vocab.BandName),
			Description: n.str(vocab.BandDescription),
			Quantity:    n.str(vocab.BandQuantity),
		}
		if d.Name == "" {
			d.Name = fmt.Sprintf("Band_%d", i+1)
		}
		d.Center, d.Wavelength = measure(g.get(n.link(vocab.BandCenter)))
		d.Bandwidth, _ = measure(g.get(n.link(vocab.BandBandwidth)))
		out = append(out, d)
	}
	return out
}

func asset(g *nodeGraph, i int, n *node, entryIDs map[string]string) (distribution.Asset, error) {
	id := entryIDs[n.id]
	if id == "" {
		return distribution.Asset{}, record.NewShapeError(Schema, fmt.Sprintf("distribution[%d]", i), "distribution has no identifier")
	}
	a := distribution.Asset{
		ID:          id,
		Name:        n.str(vocab.DistributionTitle),
		Description: n.str(vocab.DistributionDescription),
		Href:        n.link(vocab.DistributionAccessURL),
		Format:      n.str(vocab.DistributionMediaType),
		Size:        n.integer(vocab.DistributionByteSize),
		Bands:       n.strs(vocab.DistributionBands),
	}
	if n.types[vocab.ClassFileSet] {
		a.ContainedIn = entryIDs[n.link(vocab.DistributionContainedIn)]
		a.Includes = n.str(vocab.DistributionIncludes)
		return a, nil
	}
	if sum := g.get(n.link(vocab.DistributionChecksum)); sum != nil {
		a.Checksum = sum.str(vocab.ChecksumValue)
		a.ChecksumAlgorithm = vocab.ChecksumAlgorithmName(sum.link(vocab.ChecksumAlgorithm))
	}
	return a, nil
}

func recordSet(g *nodeGraph, i int, n *node, entryIDs map[string]string) (record.RecordSet, record.Warnings) {
	rs := record.RecordSet{
		ID:          n.str(vocab.RecordSetIdentifier),
		Name:        n.str(vocab.RecordSetName),
		Description: n.str(vocab.RecordSetDescription),
		OrderingKey: n.str(vocab.RecordSetKey),
	}
	if rs.ID == "" {
		rs.ID = fmt.Sprintf("recordSet_%d", i)
	}
	var warnings record.Warnings
	for j, f := range g.follow(n, vocab.RecordSetField) {
		field := record.Field{
			ID:          f.str(vocab.FieldIdentifier),
			Name:        f.str(vocab.FieldName),
			Description: f.str(vocab.FieldDescription),
			DataType:    f.str(vocab.FieldDataType),
			Source:      entryIDs[f.link(vocab.FieldSource)],
			Extract: record.Extract{
				FileProperty: f.str(vocab.FieldFileProperty),
				Column:       f.str(vocab.FieldColumn),
			},
			Regex: f.str(vocab.FieldRegex),
			Bands: bands.Config(f.strs(vocab.FieldBands)),
		}
		if field.ID == "" {
			warnings = append(warnings, record.Warn(record.CodeFieldMissing,
				fmt.Sprintf("recordSet[%d].field[%d]", i, j), "field has no identifier"))
			continue
		}
		rs.Fields = append(rs.Fields, field)
	}
	return rs, warnings
}
