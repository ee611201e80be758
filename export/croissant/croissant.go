// Package croissant exports records as GeoCroissant JSON-LD, the
// canonical document of the crosswalk.
package croissant

import (
	"fmt"

	"github.com/c360studio/geocrosswalk/export"
	"github.com/c360studio/geocrosswalk/record"
	"github.com/c360studio/geocrosswalk/spatial"
	"github.com/c360studio/geocrosswalk/temporal"
	vocab "github.com/c360studio/geocrosswalk/vocabulary/croissant"
)

// Name is the exporter name.
const Name = "croissant"

func init() {
	export.Register(Exporter{})
}

// Exporter writes GeoCroissant.
type Exporter struct{}

// Name implements export.Exporter.
func (Exporter) Name() string { return Name }

// Description implements export.Exporter.
func (Exporter) Description() string { return "GeoCroissant JSON-LD (Croissant 1.1 with geo extension)" }

// MediaType implements export.Exporter.
func (Exporter) MediaType() string { return "application/ld+json" }

// Extension implements export.Exporter.
func (Exporter) Extension() string { return ".json" }

// Export implements export.Exporter.
func (e Exporter) Export(rec record.Record) (export.Document, error) {
	if err := export.CheckSealed(&rec); err != nil {
		return export.Document{}, err
	}
	body, err := export.MarshalIndent(Build(&rec))
	if err != nil {
		return export.Document{}, fmt.Errorf("croissant: %w", err)
	}
	return export.Document{Exporter: Name, MediaType: e.MediaType(), Extension: e.Extension(), Body: body}, nil
}

// Context renders the shared JSON-LD context.
func Context() *export.Object {
	ctx := export.NewObject()
	for _, t := range vocab.Context() {
		if t.Type != "" {
			ctx.Set(t.Name, export.NewObject().Set("@id", t.IRI).Set("@type", t.Type))
			continue
		}
		ctx.Set(t.Name, t.IRI)
	}
	return ctx
}

// Build assembles the dataset object. Keys are written in a fixed order.
func Build(rec *record.Record) *export.Object {
	id := rec.Identity
	doc := export.NewObject().
		Set("@context", Context()).
		Set("@type", "sc:Dataset").
		SetString("@id", id.ID).
		SetString("name", id.Name).
		SetStrings("alternateName", id.AlternateNames).
		SetString("description", id.Description).
		SetString("version", id.Version).
		SetString("license", id.License).
		SetString("url", id.URL).
		SetString("citeAs", id.Citation)

	if len(rec.Creators) > 0 {
		creators := make([]*export.Object, len(rec.Creators))
		for i, c := range rec.Creators {
			creators[i] = export.NewObject().Set("@type", "Organization").Set("name", c.Name).SetString("url", c.URL)
		}
		if len(creators) == 1 {
			doc.Set("creator", creators[0])
		} else {
			doc.Set("creator", creators)
		}
	}
	doc.SetStrings("keywords", rec.Keywords)
	doc.Set("conformsTo", vocab.ConformsTo())
	setDate(doc, "dateCreated", id.Created)
	setDate(doc, "datePublished", id.Published)
	setDate(doc, "dateModified", id.Modified)
	if live, ok := rec.Live.Get(); ok {
		doc.Set("isLiveDataset", live)
	}

	if len(rec.References) > 0 {
		refs := make([]*export.Object, len(rec.References))
		for i, r := range rec.References {
			refs[i] = export.NewObject().
				Set("@type", "CreativeWork").
				SetString("name", r.Name).
				SetString("url", r.URL).
				SetString("encodingFormat", r.EncodingFormat)
		}
		doc.Set("references", refs)
	}

	if place := spatialCoverage(rec.Spatial); place != nil {
		doc.Set("spatialCoverage", place)
	}
	if iv, ok := rec.Temporal.Get(); ok {
		doc.SetString("temporalCoverage", FormatInterval(iv))
	}
	doc.SetString("geocr:coordinateReferenceSystem", spatial.FormatCRS(rec.Spatial.CRS))
	if q, ok := rec.SpatialResolution.Get(); ok {
		doc.Set("geocr:spatialResolution", quantity(q))
	}
	if q, ok := rec.TemporalResolution.Get(); ok {
		doc.Set("geocr:temporalResolution", quantity(q))
	}
	doc.SetString("geocr:samplingStrategy", rec.SamplingStrategy)
	if inst, ok := rec.Instrument.Get(); ok {
		doc.Set("geocr:instrumentCharacteristics", export.NewObject().
			Set("@type", "geocr:InstrumentCharacteristics").
			SetString("geocr:platform", inst.Platform).
			SetString("geocr:instrument", inst.Instrument))
	}

	if len(rec.Bands) > 0 {
		doc.Set("geocr:bandConfiguration", bandConfig(rec.BandNames()))
		meta := make([]*export.Object, len(rec.Bands))
		for i, b := range rec.Bands {
			meta[i] = spectralBand(b)
		}
		doc.Set("geocr:spectralBandMetadata", meta)
	}

	if len(rec.Distribution) > 0 {
		dist := make([]*export.Object, len(rec.Distribution))
		for i, e := range rec.Distribution {
			dist[i] = entry(e)
		}
		doc.Set("distribution", dist)
	}
	if len(rec.RecordSets) > 0 {
		sets := make([]*export.Object, len(rec.RecordSets))
		for i, rs := range rec.RecordSets {
			sets[i] = recordSet(rec, rs)
		}
		doc.Set("recordSet", sets)
	}
	return doc
}

// FormatInterval renders "start/end", or the start alone for an instant.
func FormatInterval(iv record.Interval) string {
	start, ok := iv.Start.Get()
	if !ok {
		return ""
	}
	if end, ok := iv.End.Get(); ok {
		return temporal.Format(start) + "/" + temporal.Format(end)
	}
	return temporal.Format(start)
}

func setDate(o *export.Object, key string, ts record.Optional[record.Timestamp]) {
	if t, ok := ts.Get(); ok {
		o.Set(key, temporal.Format(t))
	}
}

func spatialCoverage(s record.Spatial) *export.Object {
	box, hasBox := s.Box.Get()
	if !hasBox && s.Description == "" {
		return nil
	}
	place := export.NewObject().Set("@type", "Place")
	if hasBox {
		place.Set("geo", export.NewObject().
			Set("@type", "GeoShape").
			Set("box", spatial.FormatBox(box, spatial.SWNE)))
	}
	return place.SetString("description", s.Description)
}

// quantity renders a QuantitativeValue, or the bare text of a textual
// quantity.
func quantity(q record.Quantity) any {
	if q.IsTextual() {
		return q.Text
	}
	return export.NewObject().
		Set("@type", "QuantitativeValue").
		Set("value", q.Value).
		SetString("unitText", q.Unit)
}

func bandConfig(names []string) *export.Object {
	return export.NewObject().
		Set("@type", "geocr:BandConfiguration").
		Set("geocr:totalBands", len(names)).
		Set("geocr:bandNameList", append([]string{}, names...))
}

func spectralBand(b record.Band) *export.Object {
	o := export.NewObject().
		Set("@type", "geocr:SpectralBand").
		Set("name", b.Name).
		SetString("description", b.Description)
	if c, ok := b.Center.Get(); ok {
		o.Set("geocr:centerWavelength", quantity(c))
	}
	if w, ok := b.Bandwidth.Get(); ok {
		o.Set("geocr:bandwidth", quantity(w))
	}
	return o.SetString("geocr:physicalQuantity", b.Quantity)
}

func entry(e record.Entry) *export.Object {
	o := export.NewObject().
		Set("@type", "cr:"+e.Kind.String()).
		Set("@id", e.ID).
		SetString("name", e.Name).
		SetString("description", e.Description)
	if e.Kind == record.FileSet {
		o.Set("containedIn", export.NewObject().Set("@id", e.ContainedIn))
	}
	o.SetString("contentUrl", e.ContentURL).
		SetString("encodingFormat", e.EncodingFormat)
	if size, ok := e.ContentSize.Get(); ok {
		o.Set("contentSize", size)
	}
	if e.Kind == record.FileSet {
		o.Set("includes", e.Includes)
	} else if e.Checksum.Value != "" {
		o.Set(e.Checksum.Algorithm, e.Checksum.Value)
	}
	if e.Bands != nil {
		o.Set("geocr:bandConfiguration", bandConfig(e.Bands.Names))
	}
	return o
}

func recordSet(rec *record.Record, rs record.RecordSet) *export.Object {
	o := export.NewObject().
		Set("@type", "cr:RecordSet").
		Set("@id", rs.ID).
		SetString("name", rs.Name).
		SetString("description", rs.Description).
		SetString("geocr:timeSeriesIndex", rs.OrderingKey)
	fields := make([]*export.Object, len(rs.Fields))
	for i, f := range rs.Fields {
		fields[i] = field(rec, f)
	}
	return o.Set("field", fields)
}

func field(rec *record.Record, f record.Field) *export.Object {
	o := export.NewObject().
		Set("@type", "cr:Field").
		Set("@id", f.ID).
		SetString("name", f.Name).
		SetString("description", f.Description).
		SetString("dataType", f.DataType)
	if f.Source != "" {
		kind := "fileObject"
		if e, ok := rec.Entry(f.Source); ok && e.Kind == record.FileSet {
			kind = "fileSet"
		}
		src := export.NewObject().Set(kind, export.NewObject().Set("@id", f.Source))
		switch {
		case f.Extract.Column != "":
			src.Set("extract", export.NewObject().Set("column", f.Extract.Column))
		case f.Extract.FileProperty != "":
			src.Set("extract", export.NewObject().Set("fileProperty", f.Extract.FileProperty))
		}
		if f.Regex != "" {
			src.Set("transform", export.NewObject().Set("regex", f.Regex))
		}
		o.Set("source", src)
	}
	if f.Bands != nil {
		o.Set("geocr:bandConfiguration", bandConfig(f.Bands.Names))
	}
	return o
}
