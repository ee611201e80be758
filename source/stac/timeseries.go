package stac

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

// ObservationsRecordSet is the record set a time series describes its
// granules with.
const ObservationsRecordSet = "time_series_observations"

// TimeSeries extracts an item collection (a FeatureCollection of items,
// usually a search result) as one time series record.
type TimeSeries struct{}

// Name implements source.Adapter.
func (TimeSeries) Name() string { return TimeSeriesSchema }

// Description implements source.Adapter.
func (TimeSeries) Description() string { return "STAC item collection as a time series" }

// Detect implements source.Detector.
func (TimeSeries) Detect(doc jsondoc.Value) bool {
	return doc.Get("type").Str() == "FeatureCollection" && doc.Get("features").IsArray()
}

var timeSeriesKeys = keySet(
	"type", "features", "links", "context", "numberMatched", "numberReturned",
	"id", "title", "description", "geocr:temporalResolution", "stac_version", "stac_extensions",
)

// Extract implements source.Adapter.
func (TimeSeries) Extract(raw []byte) (*source.Intermediate, record.Warnings, error) {
	doc, err := source.Parse(TimeSeriesSchema, raw)
	if err != nil {
		return nil, nil, err
	}
	features := doc.Get("features").Items()
	if len(features) == 0 {
		return nil, nil, record.NewShapeError(TimeSeriesSchema, "features", "item collection has no features")
	}
	first := features[0]
	firstProps := first.Get("properties")

	collection := first.Get("collection").Str()
	id := doc.Get("id").Str()
	if id == "" {
		id = firstNonEmpty(collection, "stac") + "_timeseries"
	}

	in := &source.Intermediate{
		Schema: TimeSeriesSchema,
		Policy: source.Policy{DefaultCRS: record.CRS{Kind: record.CRSEPSG, Code: 4326}},
	}
	self, refs := readLinks(doc.Get("links"))
	in.Identity = source.Identity{
		ID:   id,
		Name: firstNonEmpty(doc.Get("title").Str(), id),
		Description: firstNonEmpty(doc.Get("description").Str(),
			fmt.Sprintf("Time series of %d observations from %s", len(features), firstNonEmpty(collection, "a STAC catalog"))),
		URL: self,
	}
	in.References = refs
	in.Platform = firstProps.Get("platform").Str()
	in.Instrument = firstNonEmpty(firstProps.Get("instruments").Strings()...)
	in.TemporalResolution = source.Quantity{Text: doc.Get("geocr:temporalResolution").Str()}

	in.Spatial.Order = spatial.WSEN
	readCRS(firstProps, &in.Spatial)

	var warnings record.Warnings
	for i, f := range features {
		props := f.Get("properties")
		when := props.First("datetime", "start_datetime").Str()
		if when == "" {
			warnings = append(warnings, record.Warn(record.CodeFieldMissing,
				fmt.Sprintf("features[%d].properties.datetime", i), "item %q has no datetime", f.Get("id").Str()))
		} else {
			in.Temporal.Instants = append(in.Temporal.Instants, when)
		}
		if box := f.Get("bbox").Floats(); len(box) > 0 {
			in.Spatial.Boxes = append(in.Spatial.Boxes, box)
		}
	}

	in.Bands.Explicit = bandAssets(first)
	if len(in.Bands.Explicit) == 0 {
		in.Bands.Explicit = readBands(firstProps.First("eo:bands", "bands"))
	}

	fileSet := ""
	for i, f := range features {
		container, set, ok := granuleAssets(i, f)
		if !ok {
			continue
		}
		in.Assets = append(in.Assets, container, set)
		if fileSet == "" {
			fileSet = set.ID
		}
	}
	in.RecordSets = []record.RecordSet{observations(fileSet)}

	return in, append(warnings, unmapped(doc, timeSeriesKeys)...), nil
}

// bandAssets describes the band assets of one item: every asset that
// declares its own band list, named by its asset key.
func bandAssets(item jsondoc.Value) []bands.Descriptor {
	var out []bands.Descriptor
	for _, m := range item.Get("assets").Members() {
		bs := m.Value.First("eo:bands", "bands")
		if !bs.IsArray() || bs.Len() == 0 {
			continue
		}
		d := readBands(bs)[0]
		d.Name = m.Key
		d.Description = firstNonEmpty(bs.Index(0).Get("common_name").Str(), m.Value.Get("title").Str(), d.Description)
		out = append(out, d)
	}
	return out
}

// granuleAssets returns the directory container of one item's band files
// and the file set of its bands.
func granuleAssets(i int, item jsondoc.Value) (distribution.Asset, distribution.Asset, bool) {
	var names []string
	href := ""
	for _, m := range item.Get("assets").Members() {
		if bs := m.Value.First("eo:bands", "bands"); !bs.IsArray() || bs.Len() == 0 {
			continue
		}
		names = append(names, m.Key)
		if href == "" {
			href = distribution.StripQuery(m.Value.Get("href").Str())
		}
	}
	if len(names) == 0 || href == "" {
		return distribution.Asset{}, distribution.Asset{}, false
	}
	dir := href
	if j := strings.LastIndex(href, "/"); j >= 0 {
		dir = href[:j+1]
	}
	itemID := item.Get("id").Str()
	container := distribution.Asset{
		ID:          fmt.Sprintf("granule_%d", i),
		Name:        firstNonEmpty(itemID, fmt.Sprintf("granule_%d", i)),
		Description: "Asset directory of " + firstNonEmpty(itemID, "granule"),
		Href:        dir,
		Format:      distribution.FormatDirectory,
	}
	set := distribution.Asset{
		ID:          fmt.Sprintf("granule_%d_bands", i),
		Name:        firstNonEmpty(itemID, container.ID) + "_spectral_bands",
		Description: "Spectral band files of " + firstNonEmpty(itemID, "granule"),
		Href:        dir,
		Format:      distribution.FormatTIFF,
		ContainedIn: container.ID,
		Includes:    "*.tif",
		Bands:       names,
	}
	return container, set, true
}

func observations(fileSet string) record.RecordSet {
	field := func(name, desc, dataType string) record.Field {
		return record.Field{
			ID:          ObservationsRecordSet + "/" + name,
			Name:        name,
			Description: desc,
			DataType:    dataType,
			Source:      fileSet,
			Extract:     record.Extract{Column: name},
		}
	}
	return record.RecordSet{
		ID:          ObservationsRecordSet,
		Name:        ObservationsRecordSet,
		Description: "One record per observation, ordered by acquisition time",
		OrderingKey: "observation_datetime",
		Fields: []record.Field{
			field("granule_id", "Item identifier", "sc:Text"),
			field("observation_datetime", "Acquisition time", "sc:DateTime"),
			field("month", "Acquisition month (YYYY-MM)", "sc:Text"),
			field("platform", "Observing platform", "sc:Text"),
			field("cloud_cover", "Scene cloud cover in percent", "sc:Float"),
		},
	}
}
