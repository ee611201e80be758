package stac

import (
	"fmt"

	"github.com/c360studio/geocrosswalk/jsondoc"
	"github.com/c360studio/geocrosswalk/record"
	"github.com/c360studio/geocrosswalk/source"
	"github.com/c360studio/geocrosswalk/spatial"
)

// Collection extracts a STAC Collection. Item asset templates describe
// members of the collection rather than the collection itself and are not
// carried.
type Collection struct{}

// Name implements source.Adapter.
func (Collection) Name() string { return CollectionSchema }

// Description implements source.Adapter.
func (Collection) Description() string { return "STAC Collection" }

// Detect implements source.Detector.
func (Collection) Detect(doc jsondoc.Value) bool {
	return doc.Get("type").Str() == "Collection" && doc.Has("extent")
}

var collectionKeys = keySet(
	"type", "stac_version", "stac_extensions", "id", "title", "description", "license",
	"version", "keywords", "providers", "links", "extent", "summaries", "assets",
	"item_assets", "sci:citation", "deprecated", "renders",
)

// Extract implements source.Adapter.
func (Collection) Extract(raw []byte) (*source.Intermediate, record.Warnings, error) {
	doc, err := source.Parse(CollectionSchema, raw)
	if err != nil {
		return nil, nil, err
	}
	id := doc.Get("id").Str()
	if id == "" {
		return nil, nil, record.NewShapeError(CollectionSchema, "id", "collection has no id")
	}
	if !doc.Get("extent").IsObject() {
		return nil, nil, record.NewShapeError(CollectionSchema, "extent", "collection has no extent")
	}

	in := &source.Intermediate{Schema: CollectionSchema}
	self, refs := readLinks(doc.Get("links"))
	in.Identity = source.Identity{
		ID:          id,
		Name:        firstNonEmpty(doc.Get("title").Str(), id),
		Description: doc.Get("description").Str(),
		Version:     doc.Get("version").Str(),
		License:     doc.Get("license").Str(),
		Citation:    doc.Get("sci:citation").Str(),
		URL:         self,
	}
	in.References = refs
	in.Keywords = doc.Get("keywords").Strings()
	in.Creators = readProviders(doc.Get("providers"))
	if dep, ok := doc.Get("deprecated").Bool().Get(); ok {
		in.Live = record.Some(!dep)
	}

	// The first box is the overall extent; later ones refine it.
	in.Spatial = source.Spatial{
		Order: spatial.WSEN,
		BBox:  doc.At("extent", "spatial", "bbox").Index(0).Floats(),
	}
	interval := doc.At("extent", "temporal", "interval").Index(0)
	in.Temporal.Start = interval.Index(0).Str()
	in.Temporal.End = interval.Index(1).Str()

	summaries := doc.Get("summaries")
	if code, ok := summaries.Get("proj:epsg").Index(0).Int().Get(); ok {
		in.Spatial.CRSCode = fmt.Sprintf("EPSG:%d", code)
	} else {
		in.Spatial.CRSCode = summaries.Get("proj:code").Index(0).Str()
	}
	if gsd, ok := summaries.Get("gsd").Index(0).Float().Get(); ok {
		in.SpatialResolution = source.Quantity{Value: record.Some(gsd), Unit: "m"}
	}
	in.Platform = summaries.Get("platform").Index(0).Str()
	in.Instrument = summaries.Get("instruments").Index(0).Str()
	in.Bands.Explicit = readBands(summaries.First("eo:bands", "bands"))
	in.Assets = readAssets(doc.Get("assets"))

	return in, unmapped(doc, collectionKeys), nil
}
