// Package earthengine extracts image asset metadata as returned by the
// Earth Engine asset API (ee.data.getAsset).
package earthengine

import (
	"fmt"
	"math"
	"strings"

	"github.com/c360studio/geocrosswalk/bands"
	"github.com/c360studio/geocrosswalk/distribution"
	"github.com/c360studio/geocrosswalk/instrument"
	"github.com/c360studio/geocrosswalk/jsondoc"
	"github.com/c360studio/geocrosswalk/record"
	"github.com/c360studio/geocrosswalk/source"
	"github.com/c360studio/geocrosswalk/spatial"
)

// Schema is the name the adapter registers under.
const Schema = "earthengine"

// AssetURL is the REST location of a public asset.
const AssetURL = "https://earthengine.googleapis.com/v1alpha/projects/earthengine-public/assets/%s"

func init() {
	source.Register(Image{})
}

var assetKeys = map[string]bool{
	"type": true, "name": true, "id": true, "startTime": true, "endTime": true,
	"updateTime": true, "geometry": true, "bands": true, "properties": true,
	"sizeBytes": true, "title": true, "description": true,
}

var sentinel2Keywords = []string{
	"Sentinel-2", "satellite imagery", "remote sensing", "multispectral",
	"Earth observation", "Level-1C", "ESA", "Copernicus",
}

// Image is the Earth Engine image asset adapter.
type Image struct {
	// Catalog resolves the sensor's instrument table. Nil means
	// instrument.Global.
	Catalog *instrument.Catalog
}

// WithCatalog implements source.CatalogUser.
func (img Image) WithCatalog(c *instrument.Catalog) source.Adapter {
	img.Catalog = c
	return img
}

// Name implements source.Adapter.
func (Image) Name() string { return Schema }

// Description implements source.Adapter.
func (Image) Description() string { return "Earth Engine image asset metadata" }

// Detect implements source.Detector.
func (Image) Detect(doc jsondoc.Value) bool {
	switch doc.Get("type").Str() {
	case "IMAGE", "IMAGE_COLLECTION":
		return doc.Get("bands").IsArray() || doc.Has("startTime")
	}
	return false
}

// Extract implements source.Adapter.
func (img Image) Extract(raw []byte) (*source.Intermediate, record.Warnings, error) {
	doc, err := source.Parse(Schema, raw)
	if err != nil {
		return nil, nil, err
	}
	assetID := doc.Get("id").Str()
	if assetID == "" {
		_, assetID, _ = strings.Cut(doc.Get("name").Str(), "/assets/")
	}
	if assetID == "" {
		return nil, nil, record.NewShapeError(Schema, "id", "asset has no id or name")
	}
	flat := strings.ReplaceAll(assetID, "/", "_")
	dashed := strings.ReplaceAll(assetID, "/", "-")
	props := doc.Get("properties")

	var warnings record.Warnings
	for _, k := range doc.Keys() {
		if !assetKeys[k] {
			warnings = append(warnings, record.Warn(record.CodeUnmappedField, k, "no canonical field for %q", k))
		}
	}

	in := &source.Intermediate{Schema: Schema}
	url := fmt.Sprintf(AssetURL, assetID)
	start := doc.Get("startTime").Str()
	in.Identity = source.Identity{
		ID:             flat,
		Name:           flat,
		Description:    firstNonEmpty(doc.Get("description").Str(), props.Get("description").Str()),
		URL:            url,
		Citation:       url,
		AlternateNames: []string{dashed},
		Modified:       doc.Get("updateTime").Str(),
	}
	if len(start) >= 10 {
		in.Identity.Published = start[:10]
	}
	in.Temporal.Start = start
	in.Temporal.End = doc.Get("endTime").Str()

	in.Spatial.Ring = ring(doc.Get("geometry"))
	in.Spatial.CRSCode = "EPSG:4326"

	in.Platform = props.First("SPACECRAFT_NAME", "platform").Str()
	in.Instrument = props.First("SENSOR", "instrument").Str()
	catalog := img.Catalog
	if catalog == nil {
		catalog = instrument.Global()
	}
	table, known := catalog.Resolve(in.Platform, in.Instrument)
	sentinel2 := known && table.ID == "sentinel-2-msi"

	mgrs := props.Get("MGRS_TILE").Str()
	if sentinel2 {
		in.Keywords = append(in.Keywords, sentinel2Keywords...)
		in.Creators = []record.Agent{{Name: "European Space Agency (ESA)", URL: "https://www.esa.int/"}}
		in.Identity.License = "https://creativecommons.org/licenses/by/4.0/"
		if mgrs != "" {
			in.Keywords = append(in.Keywords, "MGRS-"+mgrs)
			in.Identity.AlternateNames = append(in.Identity.AlternateNames, "Sentinel-2-"+mgrs)
		}
	} else {
		in.Keywords = append(in.Keywords, "Earth Engine", strings.Split(assetID, "/")[0])
	}

	var names []string
	minRes, maxRes := math.Inf(1), math.Inf(-1)
	for i, b := range doc.Get("bands").Items() {
		id := b.Get("id").Str()
		if id == "" {
			id = fmt.Sprintf("band_%d", i+1)
			warnings = append(warnings, record.Warn(record.CodeFieldMissing, fmt.Sprintf("bands[%d].id", i), "band has no id"))
		}
		d := bands.Descriptor{Name: id}
		if ch, ok := channel(table, known, id); ok {
			d.Description = ch.Description
			d.Center = record.Some(record.Quantity{Value: ch.Center, Unit: ch.Unit})
			if ch.Bandwidth > 0 {
				d.Bandwidth = record.Some(record.Quantity{Value: ch.Bandwidth, Unit: ch.Unit})
			}
		}
		in.Bands.Explicit = append(in.Bands.Explicit, d)
		names = append(names, id)
		if res, ok := b.At("grid", "affineTransform", "scaleX").Float().Get(); ok {
			res = math.Abs(res)
			minRes, maxRes = math.Min(minRes, res), math.Max(maxRes, res)
		}
	}
	switch {
	case math.IsInf(minRes, 1):
	case minRes == maxRes:
		in.SpatialResolution = source.Quantity{Value: record.Some(minRes), Unit: "m"}
	default:
		in.SpatialResolution = source.Quantity{Text: fmt.Sprintf("%g-%gm", minRes, maxRes)}
	}

	if in.Identity.Description == "" {
		in.Identity.Description = describe(assetID, mgrs, start, len(names), in.SpatialResolution, sentinel2)
	}

	prefix := "ee"
	if sentinel2 {
		prefix = "sentinel2"
	}
	containerID := prefix + "-bands-" + dashed
	setID := containerID + "-tif"
	container := distribution.Asset{
		ID:          containerID,
		Name:        "Bands for " + assetID,
		Description: "Downloadable spectral bands for " + assetID,
		Href:        url,
		Format:      distribution.FormatJSON,
		Size:        doc.Get("sizeBytes").Int(),
	}
	in.Assets = []distribution.Asset{container, {
		ID:          setID,
		Name:        setID,
		Description: "Spectral band GeoTIFFs of " + assetID,
		Href:        url,
		Format:      distribution.FormatTIFF,
		ContainedIn: containerID,
		Includes:    "*.tif",
		Bands:       names,
	}}

	rs := record.RecordSet{
		ID:          prefix + "_bands_" + flat,
		Name:        prefix + "_bands_" + flat,
		Description: "Spectral bands for image " + assetID,
		Fields: []record.Field{
			{
				ID:          flat + "/asset_id",
				Name:        flat + "/asset_id",
				Description: "Asset identifier",
				DataType:    "sc:Text",
				Source:      setID,
				Extract:     record.Extract{FileProperty: "fullpath"},
			},
			{
				ID:          flat + "/image_data",
				Name:        flat + "/image_data",
				Description: "Satellite imagery data",
				DataType:    "sc:ImageObject",
				Source:      setID,
				Extract:     record.Extract{FileProperty: "content"},
				Bands:       bands.Config(names),
			},
		},
	}
	in.RecordSets = []record.RecordSet{rs}
	return in, warnings, nil
}

func channel(t *instrument.Table, known bool, id string) (instrument.Channel, bool) {
	if !known {
		return instrument.Channel{}, false
	}
	return t.Channel(id)
}

func describe(id, mgrs, start string, n int, res source.Quantity, sentinel2 bool) string {
	date := start
	if len(date) >= 10 {
		date = date[:10]
	}
	if sentinel2 && mgrs != "" {
		s := fmt.Sprintf("Sentinel-2 Level-1C image over MGRS tile %s acquired on %s. This dataset contains %d spectral bands", mgrs, date, n)
		if res.Text != "" {
			s += " with spatial resolutions ranging from " + strings.Replace(strings.TrimSuffix(res.Text, "m"), "-", "m to ", 1) + "m"
		}
		return s + "."
	}
	return fmt.Sprintf("Earth Engine image %s acquired on %s with %d bands.", id, date, n)
}

// ring reads the outer ring of a GeoJSON polygon.
func ring(geom jsondoc.Value) []spatial.Point {
	coords := geom.Get("coordinates")
	if geom.Get("type").Str() == "MultiPolygon" {
		coords = coords.Index(0)
	}
	var out []spatial.Point
	for _, c := range coords.Index(0).Items() {
		xy := c.Floats()
		if len(xy) < 2 {
			continue
		}
		out = append(out, spatial.Point{Lon: xy[0], Lat: xy[1]})
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
