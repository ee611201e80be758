package earthengine

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/geocrosswalk/record"
	"github.com/c360studio/geocrosswalk/source"
	"github.com/c360studio/geocrosswalk/spatial"
)

const s2ID = "COPERNICUS/S2/20170430T190351_20170430T190351_T10SEG"

func TestImage_Extract(t *testing.T) {
	raw, err := os.ReadFile("testdata/s2_asset.json")
	require.NoError(t, err)

	in, warnings, err := Image{}.Extract(raw)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, "quota", warnings[0].Path)

	assert.Equal(t, "COPERNICUS_S2_20170430T190351_20170430T190351_T10SEG", in.Identity.ID)
	assert.Equal(t, in.Identity.ID, in.Identity.Name)
	assert.Equal(t, []string{"COPERNICUS-S2-20170430T190351_20170430T190351_T10SEG", "Sentinel-2-10SEG"}, in.Identity.AlternateNames)
	assert.Equal(t, "2017-04-30", in.Identity.Published)
	assert.Equal(t, "https://earthengine.googleapis.com/v1alpha/projects/earthengine-public/assets/"+s2ID, in.Identity.URL)
	assert.Equal(t, in.Identity.URL, in.Identity.Citation)
	assert.Equal(t, "Sentinel-2 Level-1C image over MGRS tile 10SEG acquired on 2017-04-30. This dataset contains 3 spectral bands with spatial resolutions ranging from 10m to 60m.", in.Identity.Description)
	assert.Contains(t, in.Keywords, "MGRS-10SEG")
	require.Len(t, in.Creators, 1)
	assert.Equal(t, "European Space Agency (ESA)", in.Creators[0].Name)

	assert.Equal(t, "EPSG:4326", in.Spatial.CRSCode)
	require.Len(t, in.Spatial.Ring, 5)
	assert.Equal(t, spatial.Point{Lon: -123.0, Lat: 37.8}, in.Spatial.Ring[0])
	assert.Equal(t, "2017-04-30T19:08:07.000Z", in.Temporal.Start)

	assert.Equal(t, "10-60m", in.SpatialResolution.Text)

	require.Len(t, in.Bands.Explicit, 3)
	b1 := in.Bands.Explicit[0]
	assert.Equal(t, "B1", b1.Name)
	assert.Equal(t, "Coastal aerosol", b1.Description)
	center, ok := b1.Center.Get()
	require.True(t, ok)
	assert.Equal(t, record.Quantity{Value: 443, Unit: "nm"}, center)
	assert.False(t, in.Bands.Explicit[2].Center.IsSet(), "QA60 is not a table channel")

	require.Len(t, in.Assets, 2)
	container, set := in.Assets[0], in.Assets[1]
	assert.Equal(t, "sentinel2-bands-COPERNICUS-S2-20170430T190351_20170430T190351_T10SEG", container.ID)
	assert.Equal(t, int64(1830000000), container.Size.OrElse(0))
	assert.Equal(t, container.ID, set.ContainedIn)
	assert.Equal(t, "*.tif", set.Includes)
	assert.Equal(t, []string{"B1", "B2", "QA60"}, set.Bands)

	rs := in.RecordSets[0]
	assert.Equal(t, "sentinel2_bands_COPERNICUS_S2_20170430T190351_20170430T190351_T10SEG", rs.ID)
	require.Len(t, rs.Fields, 2)
	assert.Equal(t, set.ID, rs.Fields[1].Source)
	assert.Equal(t, []string{"B1", "B2", "QA60"}, rs.Fields[1].Bands.Names)
}

func TestImage_GenericAsset(t *testing.T) {
	raw := []byte(`{"type": "IMAGE", "name": "projects/earthengine-public/assets/USGS/SRTMGL1_003",
		"startTime": "2000-02-11T00:00:00Z", "bands": [{"id": "elevation", "grid": {"affineTransform": {"scaleX": 30}}}]}`)
	in, warnings, err := Image{}.Extract(raw)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, "USGS_SRTMGL1_003", in.Identity.ID)
	assert.Equal(t, "Earth Engine image USGS/SRTMGL1_003 acquired on 2000-02-11 with 1 bands.", in.Identity.Description)
	assert.Equal(t, []string{"Earth Engine", "USGS"}, in.Keywords)
	assert.Equal(t, 30.0, in.SpatialResolution.Value.OrElse(0))
	assert.Equal(t, "m", in.SpatialResolution.Unit)
	assert.Equal(t, "ee-bands-USGS-SRTMGL1_003", in.Assets[0].ID)
	assert.Empty(t, in.Creators)
}

func TestImage_MissingID(t *testing.T) {
	_, _, err := Image{}.Extract([]byte(`{"type": "IMAGE", "bands": []}`))
	var se *record.ShapeError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "id", se.Path)
}

func TestImage_Detect(t *testing.T) {
	reg := source.NewRegistry()
	require.NoError(t, reg.Register(Image{}))
	a, err := reg.Detect([]byte(`{"type": "IMAGE", "bands": []}`))
	require.NoError(t, err)
	assert.Equal(t, Schema, a.Name())

	_, err = reg.Detect([]byte(`{"type": "TABLE"}`))
	assert.Error(t, err)
}
