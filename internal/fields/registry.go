package fields

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Defaults is the product form vocabulary: type and size-metric labels, the
// metrics each product type starts with, and the option lists.
type Defaults struct {
	ProductTypes   map[string]string   `yaml:"productTypes" json:"productTypes"`
	TypeOrder      []string            `yaml:"typeOrder" json:"typeOrder"`
	SizeMetrics    map[string]string   `yaml:"sizeMetrics" json:"sizeMetrics"`
	DefaultMetrics map[string][]string `yaml:"defaultMetrics" json:"defaultMetrics"`
	SizeOptions    []string            `yaml:"sizeOptions" json:"sizeOptions"`
	ColorOptions   []string            `yaml:"colorOptions" json:"colorOptions"`
	Categories     []string            `yaml:"categories" json:"categories"`
}

func Builtin() Defaults {
	return Defaults{
		ProductTypes: map[string]string{
			"top":   "女性上著",
			"pants": "女性下著",
			"dress": "洋裝",
			"coat":  "外套",
			"skirt": "裙子",
		},
		TypeOrder: []string{"top", "pants", "dress", "coat", "skirt"},
		SizeMetrics: map[string]string{
			"shoulder":    "肩寬",
			"chest":       "胸圍",
			"length":      "衣長",
			"sleeve":      "袖長",
			"waist":       "腰圍",
			"skirtLength": "裙長",
		},
		DefaultMetrics: map[string][]string{
			"top":   {"shoulder", "chest", "length"},
			"pants": {"waist", "length"},
			"dress": {"shoulder", "chest", "waist", "skirtLength"},
			"coat":  {"shoulder", "chest", "sleeve", "length"},
			"skirt": {"waist", "skirtLength"},
		},
		SizeOptions:  []string{"S", "M", "L", "XL", "Free"},
		ColorOptions: []string{"紅", "黃", "藍", "黑", "白"},
		Categories:   []string{"top", "pants", "dress", "coat", "skirt"},
	}
}

// Metric is one size measurement prepared for display.
type Metric struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

type Registry struct {
	d Defaults
}

func NewRegistry(d Defaults) *Registry {
	return &Registry{d: d}
}

// Load returns the built-in registry, overlaid with the sections present in
// the YAML file at path. An empty path means built-ins only.
func Load(path string) (*Registry, error) {
	d := Builtin()
	if path == "" {
		return NewRegistry(d), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read field defaults: %w", err)
	}
	var override Defaults
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse field defaults: %w", err)
	}

	if len(override.ProductTypes) > 0 {
		d.ProductTypes = override.ProductTypes
		d.TypeOrder = nil
	}
	if len(override.TypeOrder) > 0 {
		d.TypeOrder = override.TypeOrder
	}
	if len(override.SizeMetrics) > 0 {
		d.SizeMetrics = override.SizeMetrics
	}
	if len(override.DefaultMetrics) > 0 {
		d.DefaultMetrics = override.DefaultMetrics
	}
	if len(override.SizeOptions) > 0 {
		d.SizeOptions = override.SizeOptions
	}
	if len(override.ColorOptions) > 0 {
		d.ColorOptions = override.ColorOptions
	}
	if len(override.Categories) > 0 {
		d.Categories = override.Categories
	}
	if len(d.TypeOrder) == 0 {
		d.TypeOrder = sortedKeys(d.ProductTypes)
	}
	return NewRegistry(d), nil
}

func (r *Registry) Defaults() Defaults {
	return r.d
}

// MetricLabel returns the label of a metric key, or the key itself.
func (r *Registry) MetricLabel(key string) string {
	if label, ok := r.d.SizeMetrics[key]; ok {
		return label
	}
	return key
}

// MetricKey returns the key whose label is label, or label itself.
func (r *Registry) MetricKey(label string) string {
	for _, key := range sortedKeys(r.d.SizeMetrics) {
		if r.d.SizeMetrics[key] == label {
			return key
		}
	}
	return label
}

func (r *Registry) DefaultMetricsFor(productType string) []string {
	return append([]string(nil), r.d.DefaultMetrics[productType]...)
}

func (r *Registry) TypeLabel(productType string) string {
	if label, ok := r.d.ProductTypes[productType]; ok {
		return label
	}
	return productType
}

func (r *Registry) Categories() []string {
	return append([]string(nil), r.d.Categories...)
}

// OrderedMetrics lists metrics the way the form shows them: the type's
// default metrics first, in their configured order, then any other keys
// sorted.
func (r *Registry) OrderedMetrics(productType string, metrics map[string]string) []Metric {
	out := make([]Metric, 0, len(metrics))
	seen := make(map[string]bool, len(metrics))
	for _, key := range r.d.DefaultMetrics[productType] {
		value, ok := metrics[key]
		if !ok {
			continue
		}
		out = append(out, Metric{Key: key, Label: r.MetricLabel(key), Value: value})
		seen[key] = true
	}
	for _, key := range sortedKeys(metrics) {
		if seen[key] {
			continue
		}
		out = append(out, Metric{Key: key, Label: r.MetricLabel(key), Value: metrics[key]})
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
