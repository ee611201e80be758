// Package ceda extracts climate model output records from the CEDA
// archive: a CMIP6 catalog item together with the cloud products that
// serve it.
package ceda

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
const Schema = "ceda-cmip6"

// DataRecordSet is the record set describing the gridded variable.
const DataRecordSet = "climate_data"

// DefaultLicense applies to CMIP6 output that does not state its terms.
const DefaultLicense = "CC-BY-4.0"

func init() {
	source.Register(Record{})
}

// Record extracts a document of the form {"item": {...}, "products":
// [{"id", "href"}]}.
type Record struct{}

// Name implements source.Adapter.
func (Record) Name() string { return Schema }

// Description implements source.Adapter.
func (Record) Description() string { return "CEDA CMIP6 catalog item with cloud products" }

// Detect implements source.Detector.
func (Record) Detect(doc jsondoc.Value) bool {
	if !doc.Get("item").IsObject() || !doc.Get("products").IsArray() {
		return false
	}
	props := doc.At("item", "properties")
	for _, k := range props.Keys() {
		if strings.HasPrefix(k, "cmip6:") {
			return true
		}
	}
	return false
}

// frequencies maps CMIP6 output frequencies to temporal resolutions. Fixed
// fields ("fx") have none.
var frequencies = map[string]string{
	"1hr":  "1 hour",
	"3hr":  "3 hour",
	"6hr":  "6 hour",
	"day":  "1 day",
	"mon":  "1 month",
	"monC": "1 month",
	"yr":   "1 year",
	"yrPt": "1 year",
	"dec":  "10 year",
}

var itemKeys = map[string]bool{
	"type": true, "stac_version": true, "stac_extensions": true, "id": true, "bbox": true,
	"geometry": true, "properties": true, "links": true, "assets": true, "collection": true,
}

// Extract implements source.Adapter.
func (Record) Extract(raw []byte) (*source.Intermediate, record.Warnings, error) {
	doc, err := source.Parse(Schema, raw)
	if err != nil {
		return nil, nil, err
	}
	item := doc.Get("item")
	if !item.IsObject() {
		return nil, nil, record.NewShapeError(Schema, "item", "document has no catalog item")
	}
	id := item.Get("id").Str()
	if id == "" {
		return nil, nil, record.NewShapeError(Schema, "item.id", "catalog item has no id")
	}

	var warnings record.Warnings
	for _, k := range doc.Keys() {
		if k != "item" && k != "products" {
			warnings = append(warnings, record.Warn(record.CodeUnmappedField, k, "field %q has no canonical mapping", k))
		}
	}
	for _, k := range item.Keys() {
		if !itemKeys[k] {
			warnings = append(warnings, record.Warn(record.CodeUnmappedField, "item."+k, "field %q has no canonical mapping", k))
		}
	}

	props := item.Get("properties")
	variable := props.Get("cmip6:variable_id").Str()
	longName := firstNonEmpty(props.Get("cmip6:variable_long_name").Str(), variable)

	in := &source.Intermediate{
		Schema: Schema,
		Policy: source.Policy{
			DefaultExtent: record.Some(spatial.World),
			DefaultCRS:    record.CRS{Kind: record.CRSEPSG, Code: 4326},
		},
	}
	in.Identity = source.Identity{
		ID:          id,
		Name:        firstNonEmpty(props.Get("title").Str(), id),
		Description: props.Get("description").Str(),
		License:     firstNonEmpty(props.Get("license").Str(), DefaultLicense),
		Version:     props.Get("cmip6:version").Str(),
		Published:   props.Get("created").Str(),
		Modified:    props.Get("updated").Str(),
	}
	if longName != "" {
		in.Identity.Description = firstNonEmpty(in.Identity.Description, "CMIP6 dataset for "+longName)
		in.Identity.Citation = fmt.Sprintf("@dataset{ceda_cmip6_%s, title={CEDA CMIP6 %s}, url={https://catalogue.ceda.ac.uk/}}",
			firstNonEmpty(variable, id), longName)
	}

	in.Spatial = source.Spatial{Order: spatial.WSEN, BBox: item.Get("bbox").Floats()}
	if props.Has("start_datetime") {
		in.Temporal.Start = props.Get("start_datetime").Str()
		in.Temporal.End = props.Get("end_datetime").Str()
	} else {
		in.Temporal.Start = props.Get("datetime").Str()
	}

	freq := props.Get("cmip6:frequency").Str()
	if res, ok := frequencies[freq]; ok {
		in.TemporalResolution = source.Quantity{Text: res}
	} else if freq != "" && freq != "fx" {
		warnings = append(warnings, record.Warn(record.CodeUnitUnparsed, "item.properties.cmip6:frequency",
			"unknown output frequency %q", freq))
	}
	in.SpatialResolution = source.Quantity{Text: props.Get("cmip6:nominal_resolution").Str()}
	in.Platform = props.Get("cmip6:source_id").Str()

	in.Keywords = append(in.Keywords, variable, "cmip6", "climate", "ceda",
		props.Get("cmip6:experiment_id").Str(), props.Get("cmip6:source_id").Str())
	in.Keywords = compact(in.Keywords)

	if variable != "" {
		in.Bands.Explicit = []bands.Descriptor{{Name: variable, Description: longName}}
	}

	in.Assets = products(doc.Get("products"))
	if len(in.Assets) > 0 {
		in.RecordSets = []record.RecordSet{climateData(in.Assets[0].ID, variable, longName)}
	}
	return in, warnings, nil
}

// products reads the product list. The asset name is the last dash
// separated part of the product ID.
func products(v jsondoc.Value) []distribution.Asset {
	var out []distribution.Asset
	used := make(map[string]int)
	for _, p := range v.Items() {
		href := p.Get("href").Str()
		if href == "" {
			continue
		}
		pid := p.Get("id").Str()
		name := pid
		if i := strings.LastIndex(pid, "-"); i >= 0 {
			name = pid[i+1:]
		}
		id := name
		used[name]++
		if n := used[name]; n > 1 {
			id = fmt.Sprintf("%s_%d", name, n)
		}
		out = append(out, distribution.Asset{
			ID:          id,
			Name:        name,
			Description: pid,
			Href:        href,
			Checksum:    p.Get("checksum").Str(),
		})
	}
	return out
}

func climateData(fileObject, variable, longName string) record.RecordSet {
	field := func(name, desc, dataType string) record.Field {
		return record.Field{
			ID:          DataRecordSet + "/" + name,
			Name:        name,
			Description: desc,
			DataType:    dataType,
			Source:      fileObject,
			Extract:     record.Extract{Column: name},
		}
	}
	var fields []record.Field
	if variable != "" {
		v := field(variable, longName, "sc:Float")
		v.Bands = bands.Config([]string{variable})
		fields = append(fields, v)
	}
	fields = append(fields,
		field("latitude", "Latitude coordinate", "sc:Float"),
		field("longitude", "Longitude coordinate", "sc:Float"),
		field("time", "Time coordinate", "sc:Text"),
	)
	return record.RecordSet{
		ID:          DataRecordSet,
		Name:        DataRecordSet,
		Description: "Gridded model output",
		Fields:      fields,
	}
}

func compact(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
