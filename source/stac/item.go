package stac

import (
	"github.com/c360studio/geocrosswalk/bands"
	"github.com/c360studio/geocrosswalk/jsondoc"
	"github.com/c360studio/geocrosswalk/record"
	"github.com/c360studio/geocrosswalk/source"
	"github.com/c360studio/geocrosswalk/spatial"
)

// Item extracts a single STAC Item.
type Item struct{}

// Name implements source.Adapter.
func (Item) Name() string { return ItemSchema }

// Description implements source.Adapter.
func (Item) Description() string { return "STAC Item (GeoJSON Feature with assets)" }

// Detect implements source.Detector.
func (Item) Detect(doc jsondoc.Value) bool {
	return doc.Get("type").Str() == "Feature" && (doc.Has("stac_version") || doc.Has("assets"))
}

var itemKeys = keySet(
	"type", "stac_version", "stac_extensions", "id", "geometry", "bbox", "properties",
	"links", "assets", "collection", "title", "description", "license", "version",
	"providers", "keywords", "sci:citation", "deprecated", "renders", "summaries",
	"item_assets", "extent",
)

// Extract implements source.Adapter.
func (Item) Extract(raw []byte) (*source.Intermediate, record.Warnings, error) {
	doc, err := source.Parse(ItemSchema, raw)
	if err != nil {
		return nil, nil, err
	}
	if t := doc.Get("type").Str(); t != "" && t != "Feature" {
		return nil, nil, record.NewShapeError(ItemSchema, "type", "expected a Feature, got %q", t)
	}
	id := doc.Get("id").Str()
	if id == "" {
		return nil, nil, record.NewShapeError(ItemSchema, "id", "item has no id")
	}
	props := doc.Get("properties")
	// Fields may sit in properties or at the top level.
	field := func(key string) jsondoc.Value {
		if v := props.Get(key); v.Exists() {
			return v
		}
		return doc.Get(key)
	}

	in := &source.Intermediate{Schema: ItemSchema}
	self, refs := readLinks(doc.Get("links"))
	in.Identity = source.Identity{
		ID:          id,
		Name:        firstNonEmpty(field("title").Str(), id),
		Description: field("description").Str(),
		Version:     field("version").Str(),
		License:     field("license").Str(),
		Citation:    field("sci:citation").Str(),
		URL:         self,
		Created:     props.Get("created").Str(),
		Published:   props.Get("published").Str(),
		Modified:    props.Get("updated").Str(),
	}
	in.References = refs
	in.Keywords = field("keywords").Strings()
	in.Creators = readProviders(field("providers"))
	if dep, ok := field("deprecated").Bool().Get(); ok {
		in.Live = record.Some(!dep)
	}

	in.Spatial = source.Spatial{Order: spatial.WSEN, BBox: doc.Get("bbox").Floats()}
	if len(in.Spatial.BBox) == 0 {
		in.Spatial.Ring = readRing(doc.Get("geometry"))
	}
	readCRS(props, &in.Spatial)

	if props.Has("start_datetime") || props.Has("end_datetime") {
		in.Temporal.Start = props.Get("start_datetime").Str()
		in.Temporal.End = props.Get("end_datetime").Str()
	} else {
		in.Temporal.Start = props.Get("datetime").Str()
	}

	if gsd, ok := props.Get("gsd").Float().Get(); ok {
		in.SpatialResolution = source.Quantity{Value: record.Some(gsd), Unit: "m"}
	}
	in.TemporalResolution = source.Quantity{Text: props.Get("geocr:temporalResolution").Str()}
	in.SamplingStrategy = props.Get("geocr:samplingStrategy").Str()
	in.Platform = props.Get("platform").Str()
	in.Instrument = firstNonEmpty(props.Get("instruments").Strings()...)

	in.Bands.Explicit = readBands(props.First("eo:bands", "bands"))
	in.Assets = readAssets(doc.Get("assets"))
	if len(in.Bands.Explicit) == 0 {
		in.Bands.Explicit = assetBands(doc.Get("assets"))
	}

	return in, unmapped(doc, itemKeys), nil
}

// assetBands collects the bands declared on individual assets, in asset
// order, for items that carry no item-level band list.
func assetBands(assets jsondoc.Value) []bands.Descriptor {
	var out []bands.Descriptor
	for _, m := range assets.Members() {
		out = append(out, readBands(m.Value.First("eo:bands", "bands"))...)
	}
	return out
}
