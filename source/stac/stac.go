// Package stac extracts SpatioTemporal Asset Catalog documents: single
// items, collections, and item collections treated as a time series.
//
// Importing the package registers the three adapters with the default
// source registry.
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

// Schema names the adapters register under.
const (
	ItemSchema       = "stac-item"
	CollectionSchema = "stac-collection"
	TimeSeriesSchema = "stac-timeseries"
)

func init() {
	source.Register(Item{})
	source.Register(Collection{})
	source.Register(TimeSeries{})
}

// linkNames titles the relations a catalog link carries when the link has
// no title of its own.
var linkNames = map[string]string{
	"root":                "STAC root catalog",
	"parent":              "STAC parent catalog",
	"collection":          "STAC collection",
	"items":               "STAC item list",
	"about":               "GitHub Repository",
	"predecessor-version": "Previous version",
	"license":             "License",
	"http://www.opengis.net/def/rel/ogc/1.0/queryables": "Queryables",
}

// readLinks returns the self link and the remaining links as references.
func readLinks(links jsondoc.Value) (self string, refs []record.Reference) {
	for _, l := range links.Items() {
		rel := l.Get("rel").Str()
		href := l.Get("href").Str()
		if href == "" {
			continue
		}
		if rel == "self" {
			if self == "" {
				self = href
			}
			continue
		}
		name := l.Get("title").Str()
		if name == "" {
			name = linkNames[rel]
		}
		if name == "" {
			name = rel
		}
		format := l.Get("type").Str()
		if format == "" {
			format = distribution.FormatJSON
		}
		refs = append(refs, record.Reference{Name: name, URL: href, EncodingFormat: format})
	}
	return self, refs
}

func readProviders(v jsondoc.Value) []record.Agent {
	var out []record.Agent
	for _, p := range v.Items() {
		name := p.Get("name").Str()
		if name == "" {
			continue
		}
		out = append(out, record.Agent{Name: name, URL: p.Get("url").Str()})
	}
	return out
}

// readBands reads an eo:bands or bands list. Catalog wavelengths are in
// micrometres.
func readBands(v jsondoc.Value) []bands.Descriptor {
	var out []bands.Descriptor
	for i, b := range v.Items() {
		d := bands.Descriptor{
			Name:        b.Get("name").Str(),
			Description: b.First("description", "common_name").Str(),
		}
		if d.Name == "" {
			d.Name = b.Get("common_name").Str()
		}
		if d.Name == "" {
			d.Name = fmt.Sprintf("Band%d", i+1)
		}
		if c, ok := b.First("eo:center_wavelength", "center_wavelength").Float().Get(); ok {
			d.Center = record.Some(record.Quantity{Value: c, Unit: "um"})
		}
		if w, ok := b.First("eo:full_width_half_max", "full_width_half_max").Float().Get(); ok {
			d.Bandwidth = record.Some(record.Quantity{Value: w, Unit: "um"})
		}
		out = append(out, d)
	}
	return out
}

func bandNames(ds []bands.Descriptor) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Name
	}
	return out
}

// readAssets reads an assets object in document order. An asset with a
// file_pattern is a file set inside the asset named by geocr:containedIn.
func readAssets(assets jsondoc.Value) []distribution.Asset {
	var out []distribution.Asset
	for _, m := range assets.Members() {
		a := m.Value
		asset := distribution.Asset{
			ID:          m.Key,
			Name:        a.Get("title").Str(),
			Description: a.First("description", "title").Str(),
			Href:        a.Get("href").Str(),
			Format:      a.Get("type").Str(),
			Size:        a.Get("file:size").Int(),
		}
		switch {
		case a.Has("file:checksum"):
			asset.Checksum = a.Get("file:checksum").Str()
		case a.Has("checksum:multihash"):
			asset.Checksum = a.Get("checksum:multihash").Str()
		case a.Has("checksum:md5"):
			asset.Checksum = a.Get("checksum:md5").Str()
			asset.ChecksumAlgorithm = "md5"
		}
		if pattern := a.Get("file_pattern").Str(); pattern != "" {
			asset.Includes = pattern
			asset.ContainedIn = a.Get("geocr:containedIn").Str()
		}
		if bs := a.First("eo:bands", "bands", "raster:bands"); bs.IsArray() {
			asset.Bands = bandNames(readBands(bs))
		}
		out = append(out, asset)
	}
	return out
}

// readCRS copies the projection extension fields. A numeric EPSG code wins
// over a coded string, which wins over a WKT2 description.
func readCRS(props jsondoc.Value, sp *source.Spatial) {
	if code, ok := props.Get("proj:epsg").Int().Get(); ok {
		sp.CRSCode = fmt.Sprintf("EPSG:%d", code)
		return
	}
	if code := props.Get("proj:code").Str(); code != "" {
		sp.CRSCode = code
		return
	}
	sp.CRSText = props.Get("proj:wkt2").Str()
}

// readRing returns the outer ring of a GeoJSON Polygon or the first polygon
// of a MultiPolygon.
func readRing(geometry jsondoc.Value) []spatial.Point {
	coords := geometry.Get("coordinates")
	ring := coords.Index(0)
	if geometry.Get("type").Str() == "MultiPolygon" {
		ring = coords.Index(0).Index(0)
	}
	var out []spatial.Point
	for _, p := range ring.Items() {
		xy := p.Floats()
		if len(xy) < 2 {
			return nil
		}
		out = append(out, spatial.Point{Lon: xy[0], Lat: xy[1]})
	}
	return out
}

// unmapped reports top-level keys outside known.
func unmapped(doc jsondoc.Value, known map[string]bool) record.Warnings {
	var ws record.Warnings
	for _, k := range doc.Keys() {
		if known[k] || strings.HasPrefix(k, "@") {
			continue
		}
		ws = append(ws, record.Warn(record.CodeUnmappedField, k, "field %q has no canonical mapping", k))
	}
	return ws
}

func keySet(keys ...string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

// firstNonEmpty returns the first non-empty string.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
