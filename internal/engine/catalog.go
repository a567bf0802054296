package engine

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// DefaultHeatLimits apply to crops without their own heat entry.
var DefaultHeatLimits = HeatLimits{Optimal: Range{Min: 20, Max: 30}, Ceiling: 35}

var validate = validator.New()

// Range is an inclusive [Min, Max] band, written as a two-element list in
// the catalog file.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max" validate:"gtefield=Min"`
}

func (r *Range) UnmarshalYAML(value *yaml.Node) error {
	var pair []float64
	if err := value.Decode(&pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("line %d: range needs exactly 2 values, got %d", value.Line, len(pair))
	}
	r.Min, r.Max = pair[0], pair[1]
	return nil
}

func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

func (r Range) Mid() float64 {
	return (r.Min + r.Max) / 2
}

// distance is how far v lies outside the range, 0 inside it.
func (r Range) distance(v float64) float64 {
	switch {
	case v < r.Min:
		return r.Min - v
	case v > r.Max:
		return v - r.Max
	}
	return 0
}

type HeatLimits struct {
	Optimal Range   `json:"optimal" yaml:"optimal"`
	Ceiling float64 `json:"ceiling" yaml:"ceiling"`
}

type CropProfile struct {
	Name        string      `json:"name" yaml:"name" validate:"required"`
	Season      Season      `json:"season" yaml:"season" validate:"required,oneof=kharif rabi zaid"`
	Temperature Range       `json:"temperature" yaml:"temperature"`
	Humidity    Range       `json:"humidity" yaml:"humidity"`
	WaterNeed   string      `json:"water_need" yaml:"water_need" validate:"oneof=Low Medium High"`
	Duration    string      `json:"duration" yaml:"duration"`
	Soil        string      `json:"soil" yaml:"soil"`
	MSP         float64     `json:"msp" yaml:"msp" validate:"gte=0"`
	Heat        *HeatLimits `json:"heat,omitempty" yaml:"heat"`
}

type catalogFile struct {
	Crops []CropProfile `yaml:"crops" validate:"required,min=1,dive"`
}

// Catalog is the static crop table, indexed by case-insensitive name.
type Catalog struct {
	crops  []CropProfile
	byName map[string]int
}

// ParseCatalog decodes and validates a YAML crop catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding crop catalog: %w", err)
	}
	if err := validate.Struct(file); err != nil {
		return nil, fmt.Errorf("invalid crop catalog: %w", err)
	}

	c := &Catalog{
		crops:  file.Crops,
		byName: make(map[string]int, len(file.Crops)),
	}
	for i, crop := range file.Crops {
		key := strings.ToLower(crop.Name)
		if _, dup := c.byName[key]; dup {
			return nil, fmt.Errorf("invalid crop catalog: duplicate crop %q", crop.Name)
		}
		if h := crop.Heat; h != nil && h.Ceiling <= h.Optimal.Max {
			return nil, fmt.Errorf("invalid crop catalog: %s heat ceiling %.1f must exceed optimal max %.1f",
				crop.Name, h.Ceiling, h.Optimal.Max)
		}
		c.byName[key] = i
	}
	return c, nil
}

// LoadCatalog reads a catalog file, or the built-in catalog when path is
// empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return ParseCatalog(defaultCatalogYAML)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading crop catalog: %w", err)
	}
	return ParseCatalog(data)
}

// DefaultCatalog returns the built-in catalog. It panics if the embedded
// file is invalid, which only a broken build can cause.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(err)
	}
	return c
}

// Crops returns a copy of the catalog in file order.
func (c *Catalog) Crops() []CropProfile {
	out := make([]CropProfile, len(c.crops))
	copy(out, c.crops)
	return out
}

func (c *Catalog) Lookup(name string) (CropProfile, bool) {
	i, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return CropProfile{}, false
	}
	return c.crops[i], true
}

// HeatLimits returns the heat-stress band for a crop, falling back to
// DefaultHeatLimits for unknown crops.
func (c *Catalog) HeatLimits(name string) HeatLimits {
	crop, ok := c.Lookup(name)
	if !ok || crop.Heat == nil {
		return DefaultHeatLimits
	}
	return *crop.Heat
}
