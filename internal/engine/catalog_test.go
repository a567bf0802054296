package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	crops := c.Crops()
	require.Len(t, crops, 15)
	assert.Equal(t, "Wheat", crops[0].Name)

	crops[0].Name = "changed"
	assert.Equal(t, "Wheat", c.Crops()[0].Name, "Crops must return a copy")

	rice, ok := c.Lookup("  RICE ")
	require.True(t, ok)
	assert.Equal(t, Kharif, rice.Season)
	assert.Equal(t, "High", rice.WaterNeed)

	_, ok = c.Lookup("quinoa")
	assert.False(t, ok)
}

func TestCatalogHeatLimits(t *testing.T) {
	c := DefaultCatalog()
	assert.Equal(t, HeatLimits{Optimal: Range{Min: 15, Max: 25}, Ceiling: 32}, c.HeatLimits("wheat"))
	assert.Equal(t, DefaultHeatLimits, c.HeatLimits("quinoa"))
	assert.Equal(t, DefaultHeatLimits, c.HeatLimits(""))
}

func TestParseCatalogRejectsBadInput(t *testing.T) {
	tests := map[string]string{
		"empty": `crops: []`,
		"not yaml": `crops: [`,
		"range arity": `
crops:
  - name: A
    season: rabi
    temperature: [10, 20, 30]
    humidity: [30, 60]
    water_need: Low`,
		"inverted range": `
crops:
  - name: A
    season: rabi
    temperature: [30, 10]
    humidity: [30, 60]
    water_need: Low`,
		"bad water need": `
crops:
  - name: A
    season: rabi
    temperature: [10, 20]
    humidity: [30, 60]
    water_need: Plenty`,
		"capitalised season": `
crops:
  - name: A
    season: Rabi
    temperature: [10, 20]
    humidity: [30, 60]
    water_need: Low`,
		"padded season": `
crops:
  - name: A
    season: "kharif "
    temperature: [10, 20]
    humidity: [30, 60]
    water_need: Low`,
		"season outside the cycle": `
crops:
  - name: A
    season: annual
    temperature: [10, 20]
    humidity: [30, 60]
    water_need: Low`,
		"missing name": `
crops:
  - season: rabi
    temperature: [10, 20]
    humidity: [30, 60]
    water_need: Low`,
		"duplicate": `
crops:
  - name: A
    season: rabi
    temperature: [10, 20]
    humidity: [30, 60]
    water_need: Low
  - name: a
    season: zaid
    temperature: [10, 20]
    humidity: [30, 60]
    water_need: Low`,
		"ceiling below band": `
crops:
  - name: A
    season: rabi
    temperature: [10, 20]
    humidity: [30, 60]
    water_need: Low
    heat: { optimal: [10, 20], ceiling: 18 }`,
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crops.yaml")
	doc := `
crops:
  - name: Millet
    season: kharif
    temperature: [25, 35]
    humidity: [30, 60]
    water_need: Low
    msp: 2500
    heat: { optimal: [25, 35], ceiling: 42 }
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, c.Crops(), 1)
	assert.Equal(t, 42.0, c.HeatLimits("millet").Ceiling)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	builtin, err := LoadCatalog("")
	require.NoError(t, err)
	assert.Len(t, builtin.Crops(), 15)
}
