package stac

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/geocrosswalk/jsondoc"
	"github.com/c360studio/geocrosswalk/record"
	"github.com/c360studio/geocrosswalk/source"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	raw, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return raw
}

func TestItem_Extract(t *testing.T) {
	in, warnings, err := Item{}.Extract(readFixture(t, "item.json"))
	require.NoError(t, err)

	assert.Equal(t, ItemSchema, in.Schema)
	assert.Equal(t, "S2B_33UUP_20240601_0_L2A", in.Identity.ID)
	assert.Equal(t, "Sentinel-2 scene over Bavaria", in.Identity.Name)
	assert.Contains(t, in.Identity.URL, "/items/S2B_33UUP_20240601_0_L2A")

	require.Len(t, in.References, 2)
	assert.Equal(t, record.Reference{Name: "STAC root catalog", URL: "https://earth-search.example.com/", EncodingFormat: "application/json"}, in.References[0])
	assert.Equal(t, "License", in.References[1].Name)
	assert.Equal(t, "text/html", in.References[1].EncodingFormat)

	assert.Equal(t, []float64{12.0, 48.0, 13.5, 49.0}, in.Spatial.BBox)
	assert.Empty(t, in.Spatial.Ring, "ring is only read when bbox is absent")
	assert.Equal(t, "EPSG:32633", in.Spatial.CRSCode)
	assert.Equal(t, "2024-06-01T10:20:30Z", in.Temporal.Start)
	assert.Empty(t, in.Temporal.End)

	gsd, ok := in.SpatialResolution.Value.Get()
	require.True(t, ok)
	assert.Equal(t, 10.0, gsd)
	assert.Equal(t, "m", in.SpatialResolution.Unit)
	assert.Equal(t, "sentinel-2b", in.Platform)
	assert.Equal(t, "msi", in.Instrument)

	require.Len(t, in.Bands.Explicit, 2)
	assert.Equal(t, "B04", in.Bands.Explicit[0].Name)
	assert.Equal(t, "red", in.Bands.Explicit[0].Description)
	center, ok := in.Bands.Explicit[0].Center.Get()
	require.True(t, ok)
	assert.Equal(t, record.Quantity{Value: 0.665, Unit: "um"}, center)
	assert.False(t, in.Bands.Explicit[1].Bandwidth.IsSet())

	require.Len(t, in.Assets, 3)
	assert.Equal(t, []string{"B04", "B08", "thumbnail"}, []string{in.Assets[0].ID, in.Assets[1].ID, in.Assets[2].ID})
	assert.Equal(t, "Red", in.Assets[0].Name)
	assert.Equal(t, "1220d2a84f4b8b650937ec8f73cd8be2c74add5a911ba64df27458ed8229da804a26", in.Assets[0].Checksum)
	assert.Equal(t, []string{"B04"}, in.Assets[0].Bands)
	assert.Empty(t, in.Assets[1].Checksum)
	assert.Nil(t, in.Assets[2].Bands)

	assert.Equal(t, 1, warnings.Count(record.CodeUnmappedField))
	assert.Equal(t, "processing:level", warnings[0].Path)
}

func TestItem_GeometryFallback(t *testing.T) {
	raw := []byte(`{
		"type": "Feature", "stac_version": "1.0.0", "id": "ring-only",
		"geometry": {"type": "MultiPolygon", "coordinates": [[[[1, 2], [3, 2], [3, 4], [1, 2]]]]},
		"properties": {"start_datetime": "2020-01-01", "end_datetime": "2020-12-31", "proj:code": "EPSG:3857", "deprecated": true},
		"assets": {}
	}`)
	in, warnings, err := Item{}.Extract(raw)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "ring-only", in.Identity.Name, "name falls back to the id")
	require.Len(t, in.Spatial.Ring, 4)
	assert.Equal(t, 3.0, in.Spatial.Ring[1].Lon)
	assert.Equal(t, "EPSG:3857", in.Spatial.CRSCode)
	assert.Equal(t, "2020-01-01", in.Temporal.Start)
	assert.Equal(t, "2020-12-31", in.Temporal.End)
	live, ok := in.Live.Get()
	require.True(t, ok)
	assert.False(t, live)
}

func TestItem_ShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		path string
	}{
		{"no id", `{"type": "Feature", "properties": {}}`, "id"},
		{"wrong type", `{"type": "Collection", "id": "x"}`, "type"},
		{"not an object", `[1, 2]`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Item{}.Extract([]byte(tt.raw))
			var se *record.ShapeError
			require.True(t, errors.As(err, &se), "got %v", err)
			assert.Equal(t, ItemSchema, se.Schema)
			assert.Equal(t, tt.path, se.Path)
		})
	}
}

func TestCollection_Extract(t *testing.T) {
	in, warnings, err := Collection{}.Extract(readFixture(t, "collection.json"))
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, "hls-s30", in.Identity.ID)
	assert.Equal(t, "HLS Sentinel-2 Surface Reflectance", in.Identity.Name)
	assert.Equal(t, "CC-BY-4.0", in.Identity.License)
	assert.Equal(t, []float64{-180, -90, 180, 90}, in.Spatial.BBox)
	assert.Equal(t, "EPSG:4326", in.Spatial.CRSCode)
	assert.Equal(t, "2015-11-28T00:00:00Z", in.Temporal.Start)
	assert.Empty(t, in.Temporal.End, "open interval end")
	assert.Equal(t, "sentinel-2a", in.Platform)
	assert.Equal(t, "msi", in.Instrument)
	assert.Len(t, in.Creators, 2, "duplicates are removed by the normalizer, not the adapter")
	assert.Empty(t, in.Assets, "item asset templates are not distribution entries")

	require.Len(t, in.References, 2)
	assert.Equal(t, "STAC item list", in.References[0].Name)
	assert.Equal(t, "HLS project", in.References[1].Name)

	live, ok := in.Live.Get()
	require.True(t, ok)
	assert.True(t, live)
}

func TestCollection_RequiresExtent(t *testing.T) {
	_, _, err := Collection{}.Extract([]byte(`{"type": "Collection", "id": "x"}`))
	var se *record.ShapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "extent", se.Path)
}

func stacItem(id, when string, bbox string) []byte {
	return []byte(fmt.Sprintf(`{
		"type": "Feature", "stac_version": "1.0.0", "id": %q, "collection": "hls-s30",
		"bbox": %s,
		"properties": {"datetime": %q, "platform": "sentinel-2a", "proj:code": "EPSG:32611", "eo:cloud_cover": 3},
		"assets": {
			"B04": {"href": "https://data.example.com/%s/%s.B04.tif?sig=1", "eo:bands": [{"name": "B04", "common_name": "red", "center_wavelength": 0.665}]},
			"B8A": {"href": "https://data.example.com/%s/%s.B8A.tif", "eo:bands": [{"name": "B8A", "common_name": "nir08", "center_wavelength": 0.865}]},
			"Fmask": {"href": "https://data.example.com/%s/%s.Fmask.tif"}
		}
	}`, id, bbox, when, id, id, id, id, id, id))
}

func TestTimeSeries_Extract(t *testing.T) {
	raw := []byte(fmt.Sprintf(`{"type": "FeatureCollection", "features": [%s, %s], "numberMatched": 2}`,
		stacItem("g1", "2024-03-02T18:00:00Z", "[-118, 34, -117, 35]"),
		stacItem("g2", "2024-01-05T18:00:00Z", "[-119, 33.5, -117.5, 34.5]")))

	in, warnings, err := TimeSeries{}.Extract(raw)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, "hls-s30_timeseries", in.Identity.ID)
	assert.Equal(t, "Time series of 2 observations from hls-s30", in.Identity.Description)
	assert.Equal(t, []string{"2024-03-02T18:00:00Z", "2024-01-05T18:00:00Z"}, in.Temporal.Instants)
	assert.Len(t, in.Spatial.Boxes, 2)
	assert.Equal(t, "EPSG:32611", in.Spatial.CRSCode)
	assert.Equal(t, record.CRS{Kind: record.CRSEPSG, Code: 4326}, in.Policy.DefaultCRS)

	require.Len(t, in.Bands.Explicit, 2)
	assert.Equal(t, "B04", in.Bands.Explicit[0].Name)
	assert.Equal(t, "nir08", in.Bands.Explicit[1].Description)

	require.Len(t, in.Assets, 4)
	assert.Equal(t, "granule_0", in.Assets[0].ID)
	assert.Equal(t, "https://data.example.com/g1/", in.Assets[0].Href)
	assert.Equal(t, "granule_0_bands", in.Assets[1].ID)
	assert.Equal(t, "granule_0", in.Assets[1].ContainedIn)
	assert.Equal(t, "*.tif", in.Assets[1].Includes)
	assert.Equal(t, "g1_spectral_bands", in.Assets[1].Name)
	assert.Equal(t, []string{"B04", "B8A"}, in.Assets[1].Bands)

	require.Len(t, in.RecordSets, 1)
	rs := in.RecordSets[0]
	assert.Equal(t, "observation_datetime", rs.OrderingKey)
	require.Len(t, rs.Fields, 5)
	for _, f := range rs.Fields {
		assert.Equal(t, "granule_0_bands", f.Source)
		assert.Equal(t, f.Name, f.Extract.Column)
	}
}

func TestTimeSeries_Empty(t *testing.T) {
	_, _, err := TimeSeries{}.Extract([]byte(`{"type": "FeatureCollection", "features": []}`))
	var se *record.ShapeError
	require.ErrorAs(t, err, &se)
}

func TestTimeSeries_MissingDatetime(t *testing.T) {
	raw := []byte(`{"type": "FeatureCollection", "features": [{"type": "Feature", "id": "a", "properties": {}}]}`)
	in, warnings, err := TimeSeries{}.Extract(raw)
	require.NoError(t, err)
	assert.Equal(t, 1, warnings.Count(record.CodeFieldMissing))
	assert.Empty(t, in.Temporal.Instants)
	assert.Empty(t, in.Assets)
	assert.Equal(t, "stac_timeseries", in.Identity.ID)
}

func fixtureClient() *FixtureClient {
	return &FixtureClient{Items: [][]byte{
		stacItem("jan-b", "2024-01-20T10:00:00Z", "[10, 40, 11, 41]"),
		stacItem("mar", "2024-03-01T10:00:00Z", "[10, 40, 11, 41]"),
		stacItem("jan-a", "2024-01-05T10:00:00Z", "[10, 40, 11, 41]"),
		stacItem("feb", "2024-02-10T10:00:00Z", "[50, 10, 51, 11]"),
	}}
}

func ids(t *testing.T, items [][]byte) []string {
	t.Helper()
	out := make([]string, len(items))
	for i, raw := range items {
		doc, err := jsondoc.Parse(raw)
		require.NoError(t, err)
		out[i] = doc.Get("id").Str()
	}
	return out
}

func TestFixtureClient_Search(t *testing.T) {
	ctx := context.Background()
	c := fixtureClient()

	tests := []struct {
		name string
		q    Query
		want []string
	}{
		{"all", Query{}, []string{"jan-b", "mar", "jan-a", "feb"}},
		{"bbox", Query{BBox: []float64{9, 39, 10.5, 40.5}}, []string{"jan-b", "mar", "jan-a"}},
		{"datetime", Query{Datetime: "2024-02-01/2024-03-31"}, []string{"mar", "feb"}},
		{"open start", Query{Datetime: "../2024-01-10"}, []string{"jan-a"}},
		{"collection", Query{Collections: []string{"other"}}, []string{}},
		{"limit", Query{Limit: 2}, []string{"jan-b", "mar"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Search(ctx, tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(t, got))
		})
	}
}

func TestSelectMonthly(t *testing.T) {
	got, err := SelectMonthly(fixtureClient().Items)
	require.NoError(t, err)
	assert.Equal(t, []string{"jan-b", "feb", "mar"}, ids(t, got), "first item seen per month, months in order")
}

func TestCollectTimeSeries(t *testing.T) {
	raw, err := CollectTimeSeries(context.Background(), fixtureClient(), Query{BBox: []float64{9, 39, 12, 42}})
	require.NoError(t, err)

	in, _, err := TimeSeries{}.Extract(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-20T10:00:00Z", "2024-03-01T10:00:00Z"}, in.Temporal.Instants)
	assert.Equal(t, "1 month", in.TemporalResolution.Text)

	_, err = CollectTimeSeries(context.Background(), fixtureClient(), Query{Collections: []string{"none"}})
	assert.ErrorIs(t, err, ErrNoItems)
}

func TestDetect(t *testing.T) {
	reg := source.NewRegistry()
	for _, a := range []source.Adapter{Item{}, Collection{}, TimeSeries{}} {
		require.NoError(t, reg.Register(a))
	}
	tests := []struct {
		name string
		raw  []byte
		want string
	}{
		{"item", readFixture(t, "item.json"), ItemSchema},
		{"collection", readFixture(t, "collection.json"), CollectionSchema},
		{"time series", []byte(`{"type": "FeatureCollection", "features": []}`), TimeSeriesSchema},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := reg.Detect(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.Name())
		})
	}
}
