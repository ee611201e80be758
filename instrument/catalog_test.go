package instrument

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultCatalog(t *testing.T) {
	c := NewDefaultCatalog()
	assert.Equal(t, []string{"sdo-aia", "sentinel-2-msi"}, c.List())

	s2, ok := c.Get("sentinel-2a")
	require.True(t, ok)
	assert.Len(t, s2.Channels, 13)

	ch, ok := s2.Channel("b8a")
	require.True(t, ok)
	assert.Equal(t, 865.0, ch.Center)
	assert.Equal(t, "B8A", ch.BandName())

	aia, ok := c.Get("AIA")
	require.True(t, ok)
	ch, ok = aia.Channel("aia171")
	require.True(t, ok)
	assert.Equal(t, "AIA_171", ch.BandName())
	assert.Equal(t, "Angstrom", ch.Unit)
}

func TestCatalogResolve(t *testing.T) {
	c := NewDefaultCatalog()

	tbl, ok := c.Resolve("Sentinel-2B", "unknown")
	require.True(t, ok)
	assert.Equal(t, "sentinel-2-msi", tbl.ID)

	_, ok = c.Resolve("Landsat-9", "OLI")
	assert.False(t, ok)
}

func TestCatalogLoadYAML(t *testing.T) {
	c := NewCatalog()
	err := c.LoadYAML([]byte(`
instruments:
  - id: landsat-oli
    platform: Landsat-8
    instrument: OLI
    aliases: [OLI]
    channels:
      - {id: B1, center: 443, bandwidth: 16, unit: nm, description: Coastal}
      - {id: B2, center: 482, bandwidth: 60, unit: nm}
`))
	require.NoError(t, err)

	tbl, ok := c.Get("oli")
	require.True(t, ok)
	assert.Equal(t, []string{"B1", "B2"}, tbl.ChannelIDs())
}

func TestCatalogLoadYAML_Invalid(t *testing.T) {
	c := NewCatalog()
	assert.Error(t, c.LoadYAML([]byte("instruments: [{platform: x}]")))
	assert.Error(t, c.LoadYAML([]byte(`instruments: [{id: x, channels: [{id: a}, {id: a}]}]`)))
	assert.Error(t, c.LoadYAML([]byte("instruments: [unclosed")))
}

func TestGlobal(t *testing.T) {
	ResetGlobal()
	defer ResetGlobal()

	custom := NewCatalog(&Table{ID: "only"})
	InitGlobal(custom)
	assert.Same(t, custom, Global())

	InitGlobal(NewDefaultCatalog())
	assert.Same(t, custom, Global())
}

func TestTableChannel_ZeroPadding(t *testing.T) {
	s2, ok := NewDefaultCatalog().Get("sentinel-2-msi")
	require.True(t, ok)

	for _, id := range []string{"B01", "B1", "b1", "B8A", "b8a"} {
		_, ok := s2.Channel(id)
		assert.True(t, ok, id)
	}
	_, ok = s2.Channel("B13")
	assert.False(t, ok)

	ch, ok := s2.Channel("B4")
	require.True(t, ok)
	assert.Equal(t, "B04", ch.BandName())
}
