package umm

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/geocrosswalk/jsondoc"
	"github.com/c360studio/geocrosswalk/record"
)

func TestGranule_Extract(t *testing.T) {
	raw, err := os.ReadFile("testdata/granule.json")
	require.NoError(t, err)

	in, warnings, err := Granule{}.Extract(raw)
	require.NoError(t, err)

	assert.Equal(t, "G2970583412-LPCLOUD", in.Identity.ID)
	assert.Equal(t, "HLS.S30.T33UUP.2024153T101559.v2.0", in.Identity.Name)
	assert.Contains(t, in.Identity.Description, "HLS Sentinel-2")
	assert.Equal(t, "https://cmr.earthdata.nasa.gov/search/concepts/G2970583412-LPCLOUD.html", in.Identity.URL)
	assert.Equal(t, "HLS.S30.T33UUP.2024153T101559.v2.0. LPCLOUD. "+in.Identity.URL, in.Identity.Citation)
	assert.Equal(t, "2", in.Identity.Version)
	assert.Equal(t, "2024-06-03T14:21:09.541Z", in.Identity.Published)
	assert.Equal(t, "2024-06-02T08:00:00Z", in.Identity.Created)
	assert.Equal(t, "2024-06-03T14:00:00Z", in.Identity.Modified)
	assert.Equal(t, []string{"HLSS30"}, in.Identity.AlternateNames)

	assert.Equal(t, "EPSG:32633", in.Spatial.CRSCode)
	assert.Equal(t, "30.0", in.SpatialResolution.Text)
	assert.Equal(t, "m", in.SpatialResolution.Unit)
	assert.Equal(t, "Spatial coverage: 87%", in.SamplingStrategy)

	require.Len(t, in.Spatial.Ring, 5)
	assert.Equal(t, 13.52, in.Spatial.Ring[1].Lon)
	assert.Empty(t, in.Spatial.BBox)

	assert.Equal(t, "2024-06-01T10:15:59.024Z", in.Temporal.Start)
	assert.Equal(t, "2024-06-01T10:16:03.140Z", in.Temporal.End)

	assert.Equal(t, "Sentinel-2A", in.Platform)
	assert.Equal(t, "Sentinel-2 MSI", in.Instrument)
	assert.True(t, in.Bands.WholeTable)

	require.Len(t, in.Assets, 3)
	b04 := "HLS.S30.T33UUP.2024153T101559.v2.0.B04.tif"
	assert.Equal(t, b04, in.Assets[0].ID)
	assert.Equal(t, "Download B04", in.Assets[0].Description)
	assert.Equal(t, b04+"_2", in.Assets[1].ID, "the same file over another protocol gets a distinct id")
	assert.Equal(t, b04, in.Assets[1].Name)
	assert.Equal(t, "Download "+b04, in.Assets[1].Description)
	assert.Equal(t, "s3credentials", in.Assets[2].ID)

	require.Len(t, in.RecordSets, 1)
	assert.Equal(t, "G2970583412-LPCLOUD", in.RecordSets[0].ID)

	require.Equal(t, 1, warnings.Count(record.CodeUnmappedField))
	assert.Equal(t, "umm.Projects", warnings[0].Path)
}

func TestGranule_BareUMM(t *testing.T) {
	raw := []byte(`{
		"GranuleUR": "SC:MOD09GA.061:2023",
		"SpatialExtent": {"HorizontalSpatialDomain": {"Geometry": {"BoundingRectangles": [
			{"WestBoundingCoordinate": -10, "SouthBoundingCoordinate": 30, "EastBoundingCoordinate": 5, "NorthBoundingCoordinate": 45}
		]}}},
		"TemporalExtent": {"SingleDateTime": "2023-01-01T00:00:00Z"}
	}`)
	in, warnings, err := Granule{}.Extract(raw)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "SC:MOD09GA.061:2023", in.Identity.ID, "id falls back to the granule UR")
	assert.Empty(t, in.Identity.URL)
	assert.Equal(t, []float64{-10, 30, 5, 45}, in.Spatial.BBox)
	assert.Equal(t, "2023-01-01T00:00:00Z", in.Temporal.Start)
	assert.False(t, in.Bands.WholeTable)
}

func TestGranule_MissingGranuleUR(t *testing.T) {
	_, _, err := Granule{}.Extract([]byte(`{"meta": {"concept-id": "G1"}, "umm": {}}`))
	var se *record.ShapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "umm.GranuleUR", se.Path)
}

func TestGranule_Detect(t *testing.T) {
	for raw, want := range map[string]bool{
		`{"umm": {"GranuleUR": "x"}}`: true,
		`{"GranuleUR": "x"}`:          true,
		`{"type": "Feature"}`:         false,
	} {
		doc, err := jsondoc.Parse([]byte(raw))
		require.NoError(t, err)
		assert.Equal(t, want, Granule{}.Detect(doc), raw)
	}
}
