package analytics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRegionsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "regions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRegions(t *testing.T) {
	path := writeRegionsFile(t, `
regions:
  - name: Downtown
    min_lat: 40.70
    max_lat: 40.75
    min_lon: -74.02
    max_lon: -73.97
  - name: City
    min_lat: 40.5
    max_lat: 41.0
    min_lon: -74.3
    max_lon: -73.7
`)

	regions, err := LoadRegions(path)
	require.NoError(t, err)
	require.Len(t, regions, 2)

	// File order is classification priority: the broad City box also
	// contains this point but Downtown is listed first.
	name, ok := Classify(regions, 40.71, -74.0)
	require.True(t, ok)
	assert.Equal(t, "Downtown", name)

	name, ok = Classify(regions, 40.9, -74.2)
	require.True(t, ok)
	assert.Equal(t, "City", name)
}

func TestLoadRegions_Invalid(t *testing.T) {
	_, err := LoadRegions(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadRegions(writeRegionsFile(t, "regions: []"))
	assert.Error(t, err)

	_, err = LoadRegions(writeRegionsFile(t, `
regions:
  - name: Inverted
    min_lat: 50
    max_lat: 40
    min_lon: 0
    max_lon: 1
`))
	assert.Error(t, err)

	_, err = LoadRegions(writeRegionsFile(t, `
regions:
  - min_lat: 1
    max_lat: 2
    min_lon: 1
    max_lon: 2
`))
	assert.Error(t, err)
}
