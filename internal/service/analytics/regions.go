package analytics

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Region is a named coarse geographic bounding box. Boxes may overlap; the
// classifier evaluates them in slice order and the first containing box wins,
// so the order of a region table is part of its meaning.
type Region struct {
	Name   string  `yaml:"name" json:"name"`
	MinLat float64 `yaml:"min_lat" json:"-"`
	MaxLat float64 `yaml:"max_lat" json:"-"`
	MinLon float64 `yaml:"min_lon" json:"-"`
	MaxLon float64 `yaml:"max_lon" json:"-"`
}

// Contains reports whether the coordinate falls inside the box. Bounds are
// inclusive.
func (r Region) Contains(lat, lon float64) bool {
	return lat >= r.MinLat && lat <= r.MaxLat && lon >= r.MinLon && lon <= r.MaxLon
}

// DefaultRegions returns the built-in coarse US region table.
func DefaultRegions() []Region {
	return []Region{
		{Name: "Northeast", MinLat: 38.8, MaxLat: 47.5, MinLon: -80.5, MaxLon: -66.9},
		{Name: "Southeast", MinLat: 24.5, MaxLat: 38.8, MinLon: -92.0, MaxLon: -75.0},
		{Name: "Midwest", MinLat: 36.0, MaxLat: 49.4, MinLon: -104.0, MaxLon: -80.5},
		{Name: "Southwest", MinLat: 26.0, MaxLat: 37.0, MinLon: -114.8, MaxLon: -94.0},
		{Name: "West", MinLat: 31.3, MaxLat: 49.1, MinLon: -125.0, MaxLon: -102.0},
	}
}

type regionsFile struct {
	Regions []Region `yaml:"regions"`
}

// LoadRegions reads a region table from a YAML file. The file's ordering is
// preserved because it determines classification priority.
func LoadRegions(path string) ([]Region, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read regions file: %w", err)
	}

	var file regionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse regions file %s: %w", path, err)
	}
	if len(file.Regions) == 0 {
		return nil, fmt.Errorf("regions file %s defines no regions", path)
	}

	for i, region := range file.Regions {
		if region.Name == "" {
			return nil, fmt.Errorf("regions file %s: region %d has no name", path, i)
		}
		if region.MinLat > region.MaxLat || region.MinLon > region.MaxLon {
			return nil, fmt.Errorf("regions file %s: region %q has inverted bounds", path, region.Name)
		}
	}
	return file.Regions, nil
}

// Classify maps a coordinate to the first containing region. The second
// return value is false when no box contains the coordinate.
func Classify(regions []Region, lat, lon float64) (string, bool) {
	for _, region := range regions {
		if region.Contains(lat, lon) {
			return region.Name, true
		}
	}
	return "", false
}
