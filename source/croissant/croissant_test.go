package croissant

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

func TestDataset_Extract(t *testing.T) {
	raw, err := os.ReadFile("testdata/l4s.json")
	require.NoError(t, err)

	in, warnings, err := Dataset{}.Extract(raw)
	require.NoError(t, err)

	assert.Equal(t, []record.Code{record.CodeUnmappedField, record.CodeFieldMissing}, warnings.Codes())
	assert.Equal(t, "variableMeasured", warnings[0].Path)

	assert.Equal(t, "10.1109/TGRS.2022.3215209", in.Identity.ID)
	assert.Equal(t, "Landslide4Sense", in.Identity.Name)
	assert.Equal(t, "https://creativecommons.org/licenses/by/4.0/", in.Identity.License)
	assert.Equal(t, "2022-06-01", in.Identity.Published)
	assert.Equal(t, []record.Agent{
		{Name: "IARAI", URL: "https://www.iarai.ac.at/"},
		{Name: "Omid Ghorbanzadeh"},
	}, in.Creators)
	assert.Equal(t, []string{"landslide", "sentinel-2"}, in.Keywords)
	assert.Equal(t, record.Some(false), in.Live)

	assert.Equal(t, spatial.SWNE, in.Spatial.Order)
	assert.Equal(t, "-10 70 45 145", in.Spatial.BoxText)
	assert.Equal(t, "Global coverage with focus on landslide-prone regions", in.Spatial.Description)
	assert.Equal(t, "EPSG:4326", in.Spatial.CRSCode)
	assert.Equal(t, "2015-01-01/2021-12-31", in.Temporal.Range)

	assert.Equal(t, 10.0, in.SpatialResolution.Value.OrElse(0))
	assert.Equal(t, "m", in.SpatialResolution.Unit)
	assert.Equal(t, "single acquisition", in.TemporalResolution.Text)
	assert.Equal(t, "Sentinel-2", in.Platform)
	assert.Equal(t, "MSI", in.Instrument)

	require.Len(t, in.Bands.Explicit, 2)
	blue := in.Bands.Explicit[0]
	assert.Equal(t, "B2_Blue", blue.Name)
	assert.Equal(t, record.Some(record.Quantity{Value: 490, Unit: "nm"}), blue.Center)
	assert.Equal(t, record.Some(record.Quantity{Value: 65, Unit: "nm"}), blue.Bandwidth)
	assert.Equal(t, "slope", in.Bands.Explicit[1].Quantity)

	require.Len(t, in.Assets, 2)
	repo, set := in.Assets[0], in.Assets[1]
	assert.Equal(t, "md5", repo.ChecksumAlgorithm)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", repo.Checksum)
	assert.Equal(t, "repo", set.ContainedIn)
	assert.Equal(t, "**/*.h5", set.Includes)
	assert.Equal(t, []string{"B2_Blue", "Slope"}, set.Bands)

	require.Len(t, in.RecordSets, 1)
	rs := in.RecordSets[0]
	require.Len(t, rs.Fields, 1)
	f := rs.Fields[0]
	assert.Equal(t, "samples/image", f.ID)
	assert.Equal(t, "sc:ImageObject", f.DataType)
	assert.Equal(t, "h5-files", f.Source)
	assert.Equal(t, "content", f.Extract.FileProperty)
	assert.Equal(t, `^img/.*\.h5$`, f.Regex)
	assert.Equal(t, []string{"B2_Blue", "Slope"}, f.Bands.Names)
}

func TestDataset_BandConfigurationOnly(t *testing.T) {
	raw := []byte(`{"@type": "sc:Dataset", "name": "x",
		"geocr:bandConfiguration": {"geocr:totalBands": 2, "geocr:bandNameList": ["AIA_171", "AIA_193"]},
		"spatialCoverage": "Full solar disk"}`)
	in, _, err := Dataset{}.Extract(raw)
	require.NoError(t, err)
	assert.Equal(t, "x", in.Identity.ID)
	assert.Equal(t, "Full solar disk", in.Spatial.Description)
	assert.Empty(t, in.Spatial.BoxText)
	require.Len(t, in.Bands.Explicit, 2)
	assert.Equal(t, "AIA_193", in.Bands.Explicit[1].Name)
}

func TestDataset_ShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		path string
	}{
		{"wrong type", `{"@type": "sc:ImageObject", "name": "x"}`, "@type"},
		{"no name", `{"@type": "sc:Dataset"}`, "name"},
		{"anonymous entry", `{"name": "x", "distribution": [{"@type": "cr:FileObject"}]}`, "distribution[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Dataset{}.Extract([]byte(tt.raw))
			var se *record.ShapeError
			require.True(t, errors.As(err, &se), "got %v", err)
			assert.Equal(t, tt.path, se.Path)
		})
	}
}

func TestDataset_Detect(t *testing.T) {
	reg := source.NewRegistry()
	require.NoError(t, reg.Register(Dataset{}))

	raw, err := os.ReadFile("testdata/l4s.json")
	require.NoError(t, err)
	a, err := reg.Detect(raw)
	require.NoError(t, err)
	assert.Equal(t, Schema, a.Name())

	_, err = reg.Detect([]byte(`{"@type": "sc:Dataset", "name": "plain schema.org"}`))
	assert.Error(t, err)
}
