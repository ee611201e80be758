// Package umm extracts granule records in NASA's Unified Metadata Model
// (UMM-G), as returned by the CMR search API.
package umm

import (
	"fmt"
	"path"
	"strings"

	"github.com/c360studio/geocrosswalk/distribution"
	"github.com/c360studio/geocrosswalk/jsondoc"
	"github.com/c360studio/geocrosswalk/record"
	"github.com/c360studio/geocrosswalk/source"
	"github.com/c360studio/geocrosswalk/spatial"
)

// Schema is the name the adapter registers under.
const Schema = "umm-g"

// ConceptURL is the CMR landing page of a concept.
const ConceptURL = "https://cmr.earthdata.nasa.gov/search/concepts/%s.html"

func init() {
	source.Register(Granule{})
}

// Granule extracts one UMM-G granule. Both the CMR {meta, umm} envelope
// and a bare umm object are accepted.
type Granule struct{}

// Name implements source.Adapter.
func (Granule) Name() string { return Schema }

// Description implements source.Adapter.
func (Granule) Description() string { return "NASA CMR UMM-G granule metadata" }

// Detect implements source.Detector.
func (Granule) Detect(doc jsondoc.Value) bool {
	return doc.At("umm", "GranuleUR").Exists() || doc.Has("GranuleUR")
}

// Additional attribute names read from AdditionalAttributes.
const (
	attrCRS        = "HORIZONTAL_CS_CODE"
	attrResolution = "SPATIAL_RESOLUTION"
	attrCoverage   = "SPATIAL_COVERAGE"
)

var envelopeKeys = map[string]bool{"meta": true, "umm": true}

var ummKeys = map[string]bool{
	"GranuleUR": true, "CollectionReference": true, "AdditionalAttributes": true,
	"SpatialExtent": true, "TemporalExtent": true, "Platforms": true, "RelatedUrls": true,
	"ProviderDates": true, "DataGranule": true, "MetadataSpecification": true,
	"PGEVersionClass": true, "CloudCover": true, "MeasuredParameters": true,
}

// Extract implements source.Adapter.
func (Granule) Extract(raw []byte) (*source.Intermediate, record.Warnings, error) {
	doc, err := source.Parse(Schema, raw)
	if err != nil {
		return nil, nil, err
	}
	meta, umm := doc.Get("meta"), doc.Get("umm")
	if !umm.IsObject() {
		meta, umm = jsondoc.Value{}, doc
	}
	granuleUR := umm.Get("GranuleUR").Str()
	if granuleUR == "" {
		return nil, nil, record.NewShapeError(Schema, umm.Get("GranuleUR").Path(), "granule has no GranuleUR")
	}

	var warnings record.Warnings
	if meta.Exists() {
		warnings = append(warnings, unmapped(doc, envelopeKeys)...)
	}
	warnings = append(warnings, unmapped(umm, ummKeys)...)

	conceptID := meta.Get("concept-id").Str()
	in := &source.Intermediate{Schema: Schema}
	in.Identity = source.Identity{
		ID:          firstNonEmpty(conceptID, granuleUR),
		Name:        granuleUR,
		Description: umm.At("CollectionReference", "EntryTitle").Str(),
		Version:     meta.Get("revision-id").Str(),
		Published:   meta.Get("revision-date").Str(),
	}
	if conceptID != "" {
		in.Identity.URL = fmt.Sprintf(ConceptURL, conceptID)
		in.Identity.Citation = citation(granuleUR, meta.Get("provider-id").Str(), in.Identity.URL)
	}
	if short := umm.At("CollectionReference", "ShortName").Str(); short != "" {
		in.Identity.AlternateNames = []string{short}
	}
	for _, d := range umm.Get("ProviderDates").Items() {
		switch d.Get("Type").Str() {
		case "Create", "Insert":
			in.Identity.Created = firstNonEmpty(in.Identity.Created, d.Get("Date").Str())
		case "Update":
			in.Identity.Modified = d.Get("Date").Str()
		}
	}

	attrs := umm.Get("AdditionalAttributes")
	in.Spatial.CRSCode = attribute(attrs, attrCRS)
	if res := attribute(attrs, attrResolution); res != "" {
		in.SpatialResolution = source.Quantity{Text: res, Unit: "m"}
	}
	if cov := attribute(attrs, attrCoverage); cov != "" {
		in.SamplingStrategy = "Spatial coverage: " + cov + "%"
	}

	geometry := umm.At("SpatialExtent", "HorizontalSpatialDomain", "Geometry")
	for _, p := range geometry.Get("GPolygons").Index(0).At("Boundary", "Points").Items() {
		lon, okLon := p.Get("Longitude").Float().Get()
		lat, okLat := p.Get("Latitude").Float().Get()
		if !okLon || !okLat {
			in.Spatial.Ring = nil
			break
		}
		in.Spatial.Ring = append(in.Spatial.Ring, spatial.Point{Lon: lon, Lat: lat})
	}
	if rect := geometry.Get("BoundingRectangles").Index(0); rect.IsObject() {
		west, w := rect.Get("WestBoundingCoordinate").Float().Get()
		south, s := rect.Get("SouthBoundingCoordinate").Float().Get()
		east, e := rect.Get("EastBoundingCoordinate").Float().Get()
		north, n := rect.Get("NorthBoundingCoordinate").Float().Get()
		if w && s && e && n {
			in.Spatial.Order = spatial.WSEN
			in.Spatial.BBox = []float64{west, south, east, north}
		}
	}

	temporalExtent := umm.Get("TemporalExtent")
	if r := temporalExtent.Get("RangeDateTime"); r.Exists() {
		in.Temporal.Start = r.Get("BeginningDateTime").Str()
		in.Temporal.End = r.Get("EndingDateTime").Str()
	} else {
		in.Temporal.Start = temporalExtent.Get("SingleDateTime").Str()
	}

	platform := umm.Get("Platforms").Index(0)
	in.Platform = platform.Get("ShortName").Str()
	in.Instrument = platform.Get("Instruments").Index(0).Get("ShortName").Str()
	in.Bands.WholeTable = in.Platform != "" || in.Instrument != ""

	in.Assets = relatedURLs(umm.Get("RelatedUrls"))
	in.RecordSets = []record.RecordSet{{
		ID:          in.Identity.ID,
		Name:        granuleUR,
		Description: in.Identity.Description,
	}}
	return in, warnings, nil
}

// attribute returns the first value of a named additional attribute.
func attribute(attrs jsondoc.Value, name string) string {
	for _, a := range attrs.Items() {
		if a.Get("Name").Str() == name {
			return a.Get("Values").Index(0).Str()
		}
	}
	return ""
}

func citation(granuleUR, provider, url string) string {
	if provider == "" {
		return granuleUR + ". " + url
	}
	return fmt.Sprintf("%s. %s. %s", granuleUR, provider, url)
}

// relatedURLs turns RelatedUrls into file objects named after the last
// path segment. The same file is often listed once per access protocol, so
// repeated names get a numeric suffix on their ID.
func relatedURLs(urls jsondoc.Value) []distribution.Asset {
	var out []distribution.Asset
	used := make(map[string]int)
	for _, u := range urls.Items() {
		href := u.Get("URL").Str()
		if href == "" {
			continue
		}
		name := path.Base(distribution.StripQuery(strings.TrimRight(href, "/")))
		if name == "." || name == "/" {
			name = "data_file"
		}
		id := name
		used[name]++
		if n := used[name]; n > 1 {
			id = fmt.Sprintf("%s_%d", name, n)
		}
		out = append(out, distribution.Asset{
			ID:          id,
			Name:        name,
			Description: firstNonEmpty(u.Get("Description").Str(), "Download "+name),
			Href:        href,
		})
	}
	return out
}

func unmapped(doc jsondoc.Value, known map[string]bool) record.Warnings {
	var ws record.Warnings
	for _, k := range doc.Keys() {
		if !known[k] {
			ws = append(ws, record.Warn(record.CodeUnmappedField, doc.Get(k).Path(), "field %q has no canonical mapping", k))
		}
	}
	return ws
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
