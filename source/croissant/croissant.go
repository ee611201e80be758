// Package croissant extracts GeoCroissant JSON-LD documents, the
// canonical form every other schema crosswalks through.
package croissant

import (
	"fmt"
	"strings"

	"github.com/c360studio/geocrosswalk/bands"
	"github.com/c360studio/geocrosswalk/distribution"
	"github.com/c360studio/geocrosswalk/jsondoc"
	"github.com/c360studio/geocrosswalk/record"
	"github.com/c360studio/geocrosswalk/source"
	"github.com/c360studio/geocrosswalk/spatial"
)

// Schema is the name the adapter registers under.
const Schema = "croissant"

func init() {
	source.Register(Dataset{})
}

var datasetTypes = map[string]bool{
	"sc:Dataset": true, "Dataset": true, "schema:Dataset": true, "https://schema.org/Dataset": true,
}

var datasetKeys = keySet("@context", "@type", "@id", "@language", "identifier", "name", "alternateName",
	"description", "version", "license", "url", "citeAs", "citation", "creator", "keywords",
	"conformsTo", "dct:conformsTo", "dateCreated", "datePublished", "dateModified", "isLiveDataset",
	"references", "spatialCoverage", "temporalCoverage", "geocr:coordinateReferenceSystem",
	"geocr:spatialResolution", "geocr:temporalResolution", "geocr:samplingStrategy",
	"geocr:instrumentCharacteristics", "geocr:solarInstrumentCharacteristics",
	"geocr:bandConfiguration", "geocr:spectralBandMetadata", "distribution", "recordSet")

// Dataset is the GeoCroissant adapter.
type Dataset struct{}

// Name implements source.Adapter.
func (Dataset) Name() string { return Schema }

// Description implements source.Adapter.
func (Dataset) Description() string { return "GeoCroissant JSON-LD dataset" }

// Detect implements source.Detector.
func (Dataset) Detect(doc jsondoc.Value) bool {
	if !datasetTypes[doc.Get("@type").Str()] {
		return false
	}
	for _, c := range doc.First("conformsTo", "dct:conformsTo").Strings() {
		if strings.HasPrefix(c, "http://mlcommons.org/croissant/") {
			return true
		}
	}
	return doc.Get("@context").Has("cr")
}

// Extract implements source.Adapter.
func (Dataset) Extract(raw []byte) (*source.Intermediate, record.Warnings, error) {
	doc, err := source.Parse(Schema, raw)
	if err != nil {
		return nil, nil, err
	}
	if t := doc.Get("@type").Str(); t != "" && !datasetTypes[t] {
		return nil, nil, record.NewShapeError(Schema, "@type", "expected a Dataset, got %q", t)
	}
	name := doc.Get("name").Str()
	id := firstNonEmpty(doc.Get("@id").Str(), identifier(doc.Get("identifier")), name)
	if id == "" {
		return nil, nil, record.NewShapeError(Schema, "name", "dataset has no name or identifier")
	}

	var warnings record.Warnings
	for _, k := range doc.Keys() {
		if !datasetKeys[k] {
			warnings = append(warnings, record.Warn(record.CodeUnmappedField, k, "no canonical field for %q", k))
		}
	}

	in := &source.Intermediate{Schema: Schema}
	in.Identity = source.Identity{
		ID:             id,
		Name:           name,
		Description:    doc.Get("description").Str(),
		Version:        doc.Get("version").Str(),
		License:        first(doc.Get("license")),
		URL:            doc.Get("url").Str(),
		Citation:       doc.First("citeAs", "citation").Str(),
		AlternateNames: doc.Get("alternateName").Strings(),
		Created:        doc.Get("dateCreated").Str(),
		Published:      doc.Get("datePublished").Str(),
		Modified:       doc.Get("dateModified").Str(),
	}
	for _, c := range doc.Get("creator").List() {
		if s := c.Str(); s != "" {
			in.Creators = append(in.Creators, record.Agent{Name: s})
			continue
		}
		in.Creators = append(in.Creators, record.Agent{Name: c.Get("name").Str(), URL: c.Get("url").Str()})
	}
	in.Keywords = doc.Get("keywords").Strings()
	for _, r := range doc.Get("references").List() {
		if s := r.Str(); s != "" {
			in.References = append(in.References, record.Reference{URL: s})
			continue
		}
		in.References = append(in.References, record.Reference{
			Name:           r.Get("name").Str(),
			URL:            r.Get("url").Str(),
			EncodingFormat: r.Get("encodingFormat").Str(),
		})
	}
	in.Live = doc.Get("isLiveDataset").Bool()

	readSpatial(doc, &in.Spatial)
	in.Temporal.Range = doc.Get("temporalCoverage").Str()
	in.SpatialResolution = quantity(doc.Get("geocr:spatialResolution"))
	in.TemporalResolution = quantity(doc.Get("geocr:temporalResolution"))
	in.SamplingStrategy = doc.Get("geocr:samplingStrategy").Str()
	if ic := doc.Get("geocr:instrumentCharacteristics"); ic.IsObject() {
		in.Platform = ic.Get("geocr:platform").Str()
		in.Instrument = ic.Get("geocr:instrument").Str()
	} else if sc := doc.Get("geocr:solarInstrumentCharacteristics"); sc.IsObject() {
		in.Platform = sc.Get("geocr:observatory").Str()
		in.Instrument = sc.Get("geocr:instrument").Str()
	}

	in.Bands.Explicit = readBands(doc)

	for i, d := range doc.Get("distribution").List() {
		a, err := asset(i, d)
		if err != nil {
			return nil, nil, err
		}
		in.Assets = append(in.Assets, a)
	}
	for i, rs := range doc.Get("recordSet").List() {
		set, ws := recordSet(i, rs)
		warnings = append(warnings, ws...)
		in.RecordSets = append(in.RecordSets, set)
	}
	return in, warnings, nil
}

func readSpatial(doc jsondoc.Value, sp *source.Spatial) {
	sp.CRSCode = doc.Get("geocr:coordinateReferenceSystem").Str()
	cov := doc.Get("spatialCoverage")
	if s := cov.Str(); s != "" {
		sp.Description = s
		return
	}
	geo := cov.Get("geo")
	if !geo.Exists() && cov.Get("@type").Str() == "GeoShape" {
		geo = cov
	}
	if box := geo.Get("box").Str(); box != "" {
		sp.Order = spatial.SWNE
		sp.BoxText = box
	}
	sp.Description = cov.Get("description").Str()
}

// quantity reads a QuantitativeValue or a bare "10m" string.
func quantity(v jsondoc.Value) source.Quantity {
	if s, ok := v.Text().Get(); ok {
		return source.Quantity{Text: s}
	}
	return source.Quantity{Value: v.Get("value").Float(), Unit: v.Get("unitText").Str()}
}

// measure reads a wavelength or bandwidth into a band descriptor field.
func measure(v jsondoc.Value) (record.Optional[record.Quantity], string) {
	if s := v.Str(); s != "" {
		return record.None[record.Quantity](), s
	}
	if val, ok := v.Get("value").Float().Get(); ok {
		return record.Some(record.Quantity{Value: val, Unit: v.Get("unitText").Str()}), ""
	}
	return record.None[record.Quantity](), ""
}

func readBands(doc jsondoc.Value) []bands.Descriptor {
	var out []bands.Descriptor
	for i, b := range doc.Get("geocr:spectralBandMetadata").List() {
		d := bands.Descriptor{
			Name:        firstNonEmpty(b.Get("name").Str(), fmt.Sprintf("Band_%d", i+1)),
			Description: b.Get("description").Str(),
			Quantity:    b.Get("geocr:physicalQuantity").Str(),
		}
		d.Center, d.Wavelength = measure(b.Get("geocr:centerWavelength"))
		d.Bandwidth, _ = measure(b.Get("geocr:bandwidth"))
		out = append(out, d)
	}
	if len(out) > 0 {
		return out
	}
	for _, n := range bandNames(doc.Get("geocr:bandConfiguration")) {
		out = append(out, bands.Descriptor{Name: n})
	}
	return out
}

// bandNames reads a band configuration. Both list spellings occur in the
// wild.
func bandNames(v jsondoc.Value) []string {
	return v.First("geocr:bandNameList", "geocr:bandNamesList").Strings()
}

func asset(i int, d jsondoc.Value) (distribution.Asset, error) {
	id := firstNonEmpty(d.Get("@id").Str(), d.Get("name").Str())
	if id == "" {
		return distribution.Asset{}, record.NewShapeError(Schema, fmt.Sprintf("distribution[%d]", i), "entry has no @id or name")
	}
	a := distribution.Asset{
		ID:          id,
		Name:        d.Get("name").Str(),
		Description: d.Get("description").Str(),
		Href:        d.Get("contentUrl").Str(),
		Format:      first(d.Get("encodingFormat")),
		Size:        d.Get("contentSize").Int(),
		Bands:       bandNames(d.Get("geocr:bandConfiguration")),
	}
	if strings.HasSuffix(d.Get("@type").Str(), "FileSet") {
		a.ContainedIn = ref(d.Get("containedIn"))
		a.Includes = first(d.Get("includes"))
		return a, nil
	}
	for _, algo := range []string{"sha256", "md5", "sha512", "sha1"} {
		if v := d.Get(algo).Str(); v != "" {
			a.Checksum, a.ChecksumAlgorithm = v, algo
			break
		}
	}
	return a, nil
}

func recordSet(i int, v jsondoc.Value) (record.RecordSet, record.Warnings) {
	rs := record.RecordSet{
		ID:          firstNonEmpty(v.Get("@id").Str(), v.Get("name").Str(), fmt.Sprintf("recordSet_%d", i)),
		Name:        v.Get("name").Str(),
		Description: v.Get("description").Str(),
		OrderingKey: v.Get("geocr:timeSeriesIndex").Str(),
	}
	var warnings record.Warnings
	for j, f := range v.Get("field").List() {
		src := f.Get("source")
		field := record.Field{
			ID:          firstNonEmpty(f.Get("@id").Str(), f.Get("name").Str()),
			Name:        f.Get("name").Str(),
			Description: f.Get("description").Str(),
			DataType:    first(f.Get("dataType")),
			Source:      ref(src.First("fileSet", "fileObject")),
			Extract: record.Extract{
				FileProperty: src.At("extract", "fileProperty").Str(),
				Column:       src.At("extract", "column").Str(),
			},
			Bands: bands.Config(bandNames(f.Get("geocr:bandConfiguration"))),
		}
		if tr := src.Get("transform").List(); len(tr) > 0 {
			field.Regex = tr[0].Get("regex").Str()
		}
		if field.ID == "" {
			warnings = append(warnings, record.Warn(record.CodeFieldMissing,
				fmt.Sprintf("recordSet[%d].field[%d]", i, j), "field has no @id or name"))
			continue
		}
		rs.Fields = append(rs.Fields, field)
	}
	return rs, warnings
}

// ref reads a node reference: {"@id": x}, a bare string or a list of
// either.
func ref(v jsondoc.Value) string {
	for _, r := range v.List() {
		if s := r.Str(); s != "" {
			return s
		}
		if s := r.Get("@id").Str(); s != "" {
			return s
		}
	}
	return ""
}

// identifier reads a string or PropertyValue identifier.
func identifier(v jsondoc.Value) string {
	for _, r := range v.List() {
		if s := r.Str(); s != "" {
			return s
		}
		if s := r.Get("value").Str(); s != "" {
			return s
		}
	}
	return ""
}

func first(v jsondoc.Value) string {
	if ss := v.Strings(); len(ss) > 0 {
		return strings.TrimSpace(ss[0])
	}
	return ""
}

func keySet(keys ...string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
