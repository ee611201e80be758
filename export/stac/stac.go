// Package stac exports records as STAC Items.
//
// Every distribution entry becomes an asset. A file set keeps its include
// pattern in file_pattern and names its container in geocr:containedIn so
// the item adapter can rebuild the entry. Record sets have no STAC home
// and are not exported.
package stac

import (
	"fmt"
	"strings"

	"github.com/c360studio/geocrosswalk/distribution"
	"github.com/c360studio/geocrosswalk/export"
	"github.com/c360studio/geocrosswalk/record"
	"github.com/c360studio/geocrosswalk/spatial"
	"github.com/c360studio/geocrosswalk/temporal"
)

// Name is the exporter name.
const Name = "stac-item"

// Version is the STAC version items declare.
const Version = "1.0.0"

// Extension schema URLs.
const (
	ExtEO   = "https://stac-extensions.github.io/eo/v1.1.0/schema.json"
	ExtProj = "https://stac-extensions.github.io/projection/v1.1.0/schema.json"
	ExtFile = "https://stac-extensions.github.io/file/v2.1.0/schema.json"
	ExtSci  = "https://stac-extensions.github.io/scientific/v1.0.0/schema.json"
)

func init() {
	export.Register(Exporter{})
}

// Exporter writes STAC Items.
type Exporter struct{}

// Name implements export.Exporter.
func (Exporter) Name() string { return Name }

// Description implements export.Exporter.
func (Exporter) Description() string { return "STAC Item (GeoJSON Feature)" }

// MediaType implements export.Exporter.
func (Exporter) MediaType() string { return "application/geo+json" }

// Extension implements export.Exporter.
func (Exporter) Extension() string { return ".json" }

// Export implements export.Exporter.
func (e Exporter) Export(rec record.Record) (export.Document, error) {
	if err := export.CheckSealed(&rec); err != nil {
		return export.Document{}, err
	}
	body, err := export.MarshalIndent(Build(&rec))
	if err != nil {
		return export.Document{}, fmt.Errorf("stac: %w", err)
	}
	return export.Document{Exporter: Name, MediaType: e.MediaType(), Extension: e.Extension(), Body: body}, nil
}

// Build assembles the item.
func Build(rec *record.Record) *export.Object {
	var extensions []string
	use := func(ext string) {
		for _, e := range extensions {
			if e == ext {
				return
			}
		}
		extensions = append(extensions, ext)
	}

	props := properties(rec, use)
	assets := assets(rec, use)

	item := export.NewObject().
		Set("type", "Feature").
		Set("stac_version", Version)
	if len(extensions) > 0 {
		item.Set("stac_extensions", extensions)
	}
	item.Set("id", rec.Identity.ID)
	if box, ok := rec.Spatial.Box.Get(); ok {
		item.Set("geometry", export.NewObject().
			Set("type", "Polygon").
			Set("coordinates", [][][]float64{spatial.Polygon(box)}))
		item.Set("bbox", spatial.ToBBox(box, spatial.WSEN))
	} else {
		item.Set("geometry", nil)
	}
	item.Set("properties", props)
	item.Set("links", links(rec))
	item.Set("assets", assets)
	return item
}

func properties(rec *record.Record, use func(string)) *export.Object {
	id := rec.Identity
	p := export.NewObject().
		SetString("title", id.Name).
		SetString("description", id.Description).
		SetString("license", license(id.License)).
		SetString("version", id.Version).
		SetStrings("keywords", rec.Keywords)
	if id.Citation != "" {
		use(ExtSci)
		p.Set("sci:citation", id.Citation)
	}
	if len(rec.Creators) > 0 {
		providers := make([]*export.Object, len(rec.Creators))
		for i, c := range rec.Creators {
			providers[i] = export.NewObject().Set("name", c.Name).SetString("url", c.URL)
		}
		p.Set("providers", providers)
	}

	p.Set("datetime", nil)
	if iv, ok := rec.Temporal.Get(); ok {
		if mid, ok := temporal.Midpoint(iv).Get(); ok {
			p.Set("datetime", Datetime(mid))
		}
		if end, ok := iv.End.Get(); ok {
			start, _ := iv.Start.Get()
			p.Set("start_datetime", Datetime(start))
			p.Set("end_datetime", Datetime(end))
		}
	}
	setTime(p, "created", id.Created)
	setTime(p, "published", id.Published)
	setTime(p, "updated", id.Modified)
	if live, ok := rec.Live.Get(); ok {
		p.Set("deprecated", !live)
	}

	switch rec.Spatial.CRS.Kind {
	case record.CRSEPSG:
		use(ExtProj)
		p.Set("proj:epsg", rec.Spatial.CRS.Code)
	case record.CRSText:
		use(ExtProj)
		p.Set("proj:code", rec.Spatial.CRS.Text)
	}
	if q, ok := rec.SpatialResolution.Get(); ok {
		if !q.IsTextual() && (q.Unit == "m" || q.Unit == "") {
			p.Set("gsd", q.Value)
		} else {
			p.Set("geocr:spatialResolution", quantityText(q))
		}
	}
	if q, ok := rec.TemporalResolution.Get(); ok {
		p.Set("geocr:temporalResolution", quantityText(q))
	}
	p.SetString("geocr:samplingStrategy", rec.SamplingStrategy)
	if inst, ok := rec.Instrument.Get(); ok {
		p.SetString("platform", inst.Platform)
		if inst.Instrument != "" {
			p.Set("instruments", []string{inst.Instrument})
		}
	}

	if len(rec.Bands) > 0 {
		use(ExtEO)
		bands := make([]*export.Object, len(rec.Bands))
		for i, b := range rec.Bands {
			o := export.NewObject().Set("name", b.Name).SetString("description", b.Description)
			if v, ok := Micrometres(b.Center); ok {
				o.Set("center_wavelength", v)
			}
			if v, ok := Micrometres(b.Bandwidth); ok {
				o.Set("full_width_half_max", v)
			}
			bands[i] = o
		}
		p.Set("eo:bands", bands)
	}
	return p
}

func links(rec *record.Record) []*export.Object {
	out := make([]*export.Object, 0, len(rec.References)+1)
	if rec.Identity.URL != "" {
		out = append(out, export.NewObject().Set("rel", "self").Set("href", rec.Identity.URL).Set("type", "application/geo+json"))
	}
	for _, r := range rec.References {
		if r.URL == "" {
			continue
		}
		out = append(out, export.NewObject().
			Set("rel", "related").
			Set("href", r.URL).
			SetString("type", r.EncodingFormat).
			SetString("title", r.Name))
	}
	return out
}

func assets(rec *record.Record, use func(string)) *export.Object {
	out := export.NewObject()
	for _, e := range rec.Distribution {
		a := export.NewObject()
		href := e.ContentURL
		if e.Kind == record.FileSet && href == "" {
			if c, ok := rec.Entry(e.ContainedIn); ok {
				href = c.ContentURL
			}
		}
		a.Set("href", href)
		a.SetString("type", e.EncodingFormat)
		a.SetString("title", e.Name)
		a.SetString("description", e.Description)
		a.Set("roles", roles(e))
		if size, ok := e.ContentSize.Get(); ok {
			use(ExtFile)
			a.Set("file:size", size)
		}
		if e.Kind == record.FileSet {
			a.Set("file_pattern", e.Includes)
			a.Set("geocr:containedIn", e.ContainedIn)
		} else if e.Checksum.Value != "" {
			use(ExtFile)
			if mh, ok := distribution.Multihash(e.Checksum.Algorithm, e.Checksum.Value); ok {
				a.Set("file:checksum", mh)
			} else {
				a.Set("file:checksum", e.Checksum.Value)
			}
		}
		if e.Bands != nil {
			use(ExtEO)
			bands := make([]*export.Object, len(e.Bands.Names))
			for i, n := range e.Bands.Names {
				bands[i] = export.NewObject().Set("name", n)
			}
			a.Set("eo:bands", bands)
		}
		out.Set(e.ID, a)
	}
	return out
}

func roles(e record.Entry) []string {
	switch {
	case e.Kind == record.FileSet:
		return []string{"data", "collection"}
	case e.EncodingFormat == distribution.FormatDirectory:
		return []string{"data", "directory"}
	case e.EncodingFormat == distribution.FormatPNG, e.EncodingFormat == distribution.FormatJPEG:
		return []string{"thumbnail"}
	case e.EncodingFormat == distribution.FormatJSON, e.EncodingFormat == distribution.FormatXML:
		return []string{"metadata"}
	}
	return []string{"data"}
}

// license maps a free-text license onto the STAC rule that non-SPDX
// licenses are "other" and missing ones "proprietary".
func license(l string) string {
	switch {
	case l == "":
		return "proprietary"
	case strings.ContainsAny(l, " /:"):
		return "other"
	}
	return l
}

// Micrometres converts a wavelength to the micrometres STAC uses. Values
// in an unknown unit are not converted.
func Micrometres(q record.Optional[record.Quantity]) (float64, bool) {
	v, ok := q.Get()
	if !ok || v.IsTextual() {
		return 0, false
	}
	switch strings.ToLower(v.Unit) {
	case "nm", "nanometer", "nanometers", "nanometre", "nanometres":
		return v.Value / 1000, true
	case "um", "µm", "μm", "micrometer", "micrometers", "micrometre", "micrometres", "micron", "microns":
		return v.Value, true
	case "a", "å", "angstrom", "angstroms":
		return v.Value / 10000, true
	}
	return 0, false
}

// Datetime renders a timestamp as the RFC 3339 instant STAC requires. Dates
// and unzoned values are read as UTC.
func Datetime(ts record.Timestamp) string {
	if ts.Precision == record.PrecisionDate || !ts.Zoned {
		return ts.Time.UTC().Format("2006-01-02T15:04:05Z")
	}
	return temporal.Format(ts)
}

func setTime(p *export.Object, key string, ts record.Optional[record.Timestamp]) {
	if t, ok := ts.Get(); ok {
		p.Set(key, Datetime(t))
	}
}

func quantityText(q record.Quantity) string {
	if q.IsTextual() {
		return q.Text
	}
	return strings.TrimSpace(fmt.Sprintf("%g %s", q.Value, q.Unit))
}
