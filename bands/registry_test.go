package bands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/geocrosswalk/instrument"
	"github.com/c360studio/geocrosswalk/record"
)

func TestInferFromShape(t *testing.T) {
	tests := []struct {
		name      string
		shape     []int
		axis      Axis
		count     int
		ambiguous bool
	}{
		{"bands first", []int{13, 512, 512}, AxisFirst, 13, false},
		{"bands last", []int{512, 512, 13}, AxisLast, 13, false},
		{"bands middle", []int{512, 4, 512}, AxisMiddle, 4, false},
		{"two dimensional", []int{512, 512}, AxisNone, 1, false},
		{"one dimensional", []int{96}, AxisNone, 1, false},
		{"no strictly smallest", []int{4, 4, 512}, AxisNone, 1, true},
		{"cube", []int{8, 8, 8}, AxisNone, 1, true},
		{"negative dimension", []int{-1, 4, 4}, AxisNone, 1, true},
		{"zero dimension", []int{0, 4, 4}, AxisNone, 1, true},
		{"zero in two dimensions", []int{0, 512}, AxisNone, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, ws := InferFromShape("img", tt.shape)
			assert.Equal(t, tt.axis, l.Axis)
			assert.Equal(t, tt.count, l.Count)
			assert.Len(t, l.Names, tt.count)
			assert.Equal(t, tt.ambiguous, ws.Has(record.CodeBandAxisAmbiguous))
		})
	}
}

func TestInferFromShape_Names(t *testing.T) {
	l, _ := InferFromShape("img", []int{3, 64, 64})
	assert.Equal(t, []string{"img_band1", "img_band2", "img_band3"}, l.Names)

	l, _ = InferFromShape("aia171", []int{512, 512})
	assert.Equal(t, []string{"aia171"}, l.Names)

	l, _ = InferFromShape("mask", []int{1, 128, 128})
	assert.Equal(t, []string{"mask"}, l.Names)
}

func TestSplitValueUnit(t *testing.T) {
	tests := []struct {
		in    string
		value float64
		unit  string
		ok    bool
	}{
		{"865nm", 865, "nm", true},
		{"10.5 m", 10.5, "m", true},
		{"1600", 1600, "", true},
		{".5um", 0.5, "um", true},
		{"-3dB", -3, "dB", true},
		{"nm", 0, "", false},
		{"", 0, "", false},
		{"10-60m", 0, "", false},
		{"B8A", 0, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			q, ok := SplitValueUnit(tt.in)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.value, q.Value)
			assert.Equal(t, tt.unit, q.Unit)
		})
	}
}

func TestRegistry_NameCollision(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, "B1", r.Add(record.Band{Name: "B1"}))
	assert.Equal(t, "B1_2", r.Add(record.Band{Name: "B1"}))
	assert.Equal(t, "B1_3", r.Add(record.Band{Name: "B1"}))

	names := make([]string, 0, r.Len())
	for _, b := range r.Bands() {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"B1", "B1_2", "B1_3"}, names)
	assert.Equal(t, 2, r.Warnings().Count(record.CodeBandRenamed))
}

func TestRegistry_AddExplicit(t *testing.T) {
	r := NewRegistry()
	names := r.AddExplicit([]Descriptor{
		{Name: "red", Wavelength: "665nm"},
		{Description: "unnamed"},
		{Name: "nir", Wavelength: "broad"},
	})
	assert.Equal(t, []string{"red", "Band2", "nir"}, names)

	bands := r.Bands()
	center, ok := bands[0].Center.Get()
	require.True(t, ok)
	assert.Equal(t, record.Quantity{Value: 665, Unit: "nm"}, center)
	assert.False(t, bands[2].Center.IsSet())
	assert.True(t, r.Warnings().Has(record.CodeUnitUnparsed))
}

func TestRegistry_AddFromInstrument(t *testing.T) {
	s2, ok := instrument.NewDefaultCatalog().Get("sentinel-2-msi")
	require.True(t, ok)

	r := NewRegistry()
	names := r.AddFromInstrument(s2, []string{"B04", "B8A", "B99"})
	assert.Equal(t, []string{"B04", "B8A", "B99"}, names)

	bands := r.Bands()
	center, ok := bands[1].Center.Get()
	require.True(t, ok)
	assert.Equal(t, 865.0, center.Value)
	assert.Equal(t, "nm", center.Unit)
	assert.True(t, r.Warnings().Has(record.CodeFieldMissing))

	all := NewRegistry()
	assert.Len(t, all.AddFromInstrument(s2, nil), 13)
}

func TestRegistry_AddLayout(t *testing.T) {
	r := NewRegistry()
	l, _ := InferFromShape("img", []int{512, 512, 3})
	r.AddLayout(l, "image stack")
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, "image stack", r.Bands()[2].Description)
}

func TestConfig(t *testing.T) {
	assert.Nil(t, Config(nil))

	names := []string{"B02", "B03"}
	c := Config(names)
	require.NotNil(t, c)
	assert.Equal(t, 2, c.Total())
	names[0] = "changed"
	assert.Equal(t, "B02", c.Names[0])
}
