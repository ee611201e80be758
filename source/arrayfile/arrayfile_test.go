package arrayfile

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/geocrosswalk/distribution"
	"github.com/c360studio/geocrosswalk/instrument"
	"github.com/c360studio/geocrosswalk/record"
	"github.com/c360studio/geocrosswalk/source"
	"github.com/c360studio/geocrosswalk/spatial"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	raw, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return raw
}

func fieldNames(rs record.RecordSet) []string {
	var out []string
	for _, f := range rs.Fields {
		out = append(out, f.Name)
	}
	return out
}

func TestExtract_SolarSeries(t *testing.T) {
	in, warnings, err := Adapter{}.Extract(readFixture(t, "sdo_series.json"))
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, Schema, in.Schema)
	assert.Equal(t, "sdoml_aia_2011", in.Identity.ID)
	assert.Equal(t, "SDOML AIA Subset", in.Identity.Name)
	assert.Equal(t, []string{"solar", "euv", "ml-ready"}, in.Keywords)
	assert.Equal(t, "Helioprojective-Cartesian (HPC)", in.Spatial.CRSCode)
	assert.Equal(t, "Full solar disk", in.Spatial.Description)
	assert.Equal(t, "0.6 arcsec", in.SpatialResolution.Text)
	assert.Equal(t, "12 minute", in.TemporalResolution.Text)

	assert.Equal(t, []string{"2011-01-01T00:00:00Z", "2011-01-01T00:12:00Z", "2011-01-01T00:24:00Z"}, in.Temporal.Instants)

	assert.Equal(t, "sdo-aia", in.Bands.Table)
	assert.Equal(t, []string{"aia171", "aia193"}, in.Bands.Channels)
	assert.Empty(t, in.Bands.Shapes)

	require.Len(t, in.Assets, 2)
	repo, files := in.Assets[0], in.Assets[1]
	assert.Equal(t, RepoID, repo.ID)
	assert.Equal(t, distribution.FormatDirectory, repo.Format)
	assert.Equal(t, "data/sdomlv2", repo.Href)
	assert.Equal(t, "nc-files", files.ID)
	assert.Equal(t, "*.nc", files.Includes)
	assert.Equal(t, RepoID, files.ContainedIn)
	assert.Equal(t, distribution.FormatNetCDF, files.Format)

	require.Len(t, in.RecordSets, 1)
	rs := in.RecordSets[0]
	assert.Equal(t, []string{"aia171", "aia193", "x", "y"}, fieldNames(rs), "scalars are skipped and coordinates come last")
	assert.Equal(t, "sdoml_aia_2011/aia171", rs.Fields[0].ID)
	assert.Equal(t, "AIA 171 Angstrom intensity (DN/s)", rs.Fields[0].Description)
	assert.Equal(t, "nc-files", rs.Fields[0].Source)
	assert.Equal(t, "aia171", rs.Fields[0].Extract.Column)
	assert.Equal(t, "sc:Float", rs.Fields[0].DataType)
	require.NotNil(t, rs.Fields[0].Bands)
	assert.Equal(t, []string{"AIA_171"}, rs.Fields[0].Bands.Names)
	assert.Nil(t, rs.Fields[2].Bands)
}

func TestExtract_DeclaredBands(t *testing.T) {
	in, warnings, err := Adapter{}.Extract(readFixture(t, "l4s.json"))
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, spatial.SWNE, in.Spatial.Order)
	assert.Equal(t, "30 80 45 145", in.Spatial.BoxText)
	assert.Equal(t, "2022-06-01", in.Identity.Created)

	require.Len(t, in.Bands.Explicit, 3)
	assert.Equal(t, "red", in.Bands.Explicit[0].Name)
	assert.Equal(t, "665nm", in.Bands.Explicit[0].Wavelength)
	require.Len(t, in.Bands.Shapes, 1)
	assert.Equal(t, "mask", in.Bands.Shapes[0].Name)
	assert.Nil(t, in.Bands.Shapes[0].Shape, "a y/x grid has no band axis")

	require.Len(t, in.Assets, 2)
	assert.Equal(t, "h5-files", in.Assets[1].ID)
	assert.Equal(t, "**/*.h5", in.Assets[1].Includes)
	assert.Equal(t, distribution.FormatHDF5, in.Assets[1].Format)

	rs := in.RecordSets[0]
	assert.Equal(t, []string{"red", "green", "blue"}, rs.Fields[0].Bands.Names)
	assert.Equal(t, []string{"mask"}, rs.Fields[1].Bands.Names)
	assert.Equal(t, "sc:Integer", rs.Fields[1].DataType)
	assert.Equal(t, "Landslide mask", rs.Fields[1].Description)
}

func TestExtract_Datacube(t *testing.T) {
	in, _, err := Adapter{}.Extract(readFixture(t, "datacube.json"))
	require.NoError(t, err)

	assert.Equal(t, "power_merra2_monthly_temporal_utc", in.Identity.ID)
	assert.Equal(t, "-90 -180 90 180", in.Spatial.BoxText)
	assert.Contains(t, in.Spatial.CRSText, "EPSG")
	assert.Equal(t, "1981-01-01", in.Temporal.Start)
	assert.Equal(t, "2023-12-31", in.Temporal.End)
	assert.Empty(t, in.Temporal.Instants)
	assert.Equal(t, "1 month", in.TemporalResolution.Text)

	require.Len(t, in.Assets, 1)
	a := in.Assets[0]
	assert.Equal(t, "power_merra2_monthly_temporal_utc.zarr", a.ID)
	assert.Equal(t, distribution.FormatZarr, a.Format)
	assert.Empty(t, a.Includes)

	require.Len(t, in.Bands.Shapes, 1)
	assert.Nil(t, in.Bands.Shapes[0].Shape, "time/lat/lon cube is one band")

	rs := in.RecordSets[0]
	assert.Equal(t, []string{"T2M", "time", "lat", "lon"}, fieldNames(rs))
	assert.Equal(t, []string{"T2M"}, rs.Fields[0].Bands.Names)
	assert.Equal(t, "sc:DateTime", rs.Fields[1].DataType)
}

func TestExtract_BandCountMismatch(t *testing.T) {
	raw := []byte(`{"format": "hdf5", "path": "scene.h5", "variables": [
		{"name": "img", "dimensions": ["y", "x", "band"], "shape": [64, 64, 14],
		 "bands": [{"name": "b1"}, {"name": "b2"}]}]}`)
	in, warnings, err := Adapter{}.Extract(raw)
	require.NoError(t, err)
	assert.Equal(t, "scene", in.Identity.ID)
	assert.True(t, warnings.Has(record.CodeBandAxisAmbiguous))
	assert.Len(t, in.Bands.Explicit, 2)
}

const goesHeader = `{"format": "netcdf", "path": "OR_ABI-L1b-RadF.nc",
	"attributes": {"platform": "GOES-16", "instrument": "ABI"},
	"variables": [
		{"name": "C01", "dimensions": ["y", "x"], "shape": [500, 500]},
		{"name": "C02", "dimensions": ["y", "x"], "shape": [500, 500]}]}`

func goesCatalog() *instrument.Catalog {
	return instrument.NewCatalog(&instrument.Table{
		ID: "goes-16-abi", Platform: "GOES-16", Instrument: "ABI", Aliases: []string{"ABI"},
		Channels: []instrument.Channel{
			{ID: "C01", Description: "Blue", Center: 470, Unit: "nm"},
			{ID: "C02", Description: "Red", Center: 640, Unit: "nm"},
		},
	})
}

func TestExtract_ConfiguredCatalog(t *testing.T) {
	in, _, err := Adapter{Catalog: goesCatalog()}.Extract([]byte(goesHeader))
	require.NoError(t, err)
	assert.Equal(t, "goes-16-abi", in.Bands.Table)
	assert.Equal(t, []string{"C01", "C02"}, in.Bands.Channels)
	assert.Empty(t, in.Bands.Shapes)

	// The built-in tables know nothing about ABI.
	in, _, err = Adapter{Catalog: instrument.NewDefaultCatalog()}.Extract([]byte(goesHeader))
	require.NoError(t, err)
	assert.Empty(t, in.Bands.Channels)
	assert.Len(t, in.Bands.Shapes, 2)
}

func TestExtract_NonPositiveShape(t *testing.T) {
	raw := []byte(`{"format": "hdf5", "path": "scene.h5", "variables": [
		{"name": "img", "dimensions": ["band", "y", "x"], "shape": [-1, 4, 4]},
		{"name": "mask", "dimensions": ["band", "y", "x"], "shape": [0, 4, 4],
		 "bands": [{"name": "m1"}]}]}`)
	var (
		in  *source.Intermediate
		err error
	)
	require.NotPanics(t, func() {
		in, _, err = Adapter{}.Extract(raw)
	})
	require.NoError(t, err)
	require.Len(t, in.RecordSets, 1)
	assert.Equal(t, []string{"img"}, in.RecordSets[0].Fields[0].Bands.Names)
}

func TestExtract_ShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		path string
	}{
		{"not json", `{`, ""},
		{"array", `[]`, ""},
		{"no variables", `{"format": "netcdf", "path": "a.nc"}`, "variables"},
		{"unnamed variable", `{"format": "netcdf", "path": "a.nc", "variables": [{"shape": [1]}]}`, "variables[0].name"},
		{"no identity", `{"format": "netcdf", "variables": []}`, "attributes.id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Adapter{}.Extract([]byte(tt.raw))
			var se *record.ShapeError
			require.True(t, errors.As(err, &se), "got %v", err)
			assert.Equal(t, Schema, se.Schema)
			assert.Equal(t, tt.path, se.Path)
		})
	}
}

func TestFormatFromName(t *testing.T) {
	h, err := ParseHeader([]byte(`{"path": "cube.zarr/", "variables": []}`))
	require.NoError(t, err)
	assert.Equal(t, "zarr", h.Format)
}

func TestIsoDuration(t *testing.T) {
	for in, want := range map[string]string{
		"P1M":     "1 month",
		"P1D":     "1 day",
		"PT1H":    "1 hour",
		"PT12M":   "12 minute",
		"monthly": "monthly",
		"P1Y2M":   "P1Y2M",
		"":        "",
	} {
		assert.Equal(t, want, isoDuration(in), in)
	}
}

func TestDetect(t *testing.T) {
	reg := source.NewRegistry()
	require.NoError(t, reg.Register(Adapter{}))
	a, err := reg.Detect(readFixture(t, "datacube.json"))
	require.NoError(t, err)
	assert.Equal(t, Schema, a.Name())

	_, err = reg.Detect([]byte(`{"format": "geotiff", "variables": []}`))
	assert.Error(t, err)
}
