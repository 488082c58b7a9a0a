package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/vending-machine-simulator/internal/model"
)

type seedFile struct {
	Products []model.Product `yaml:"products"`
}

// ParseSeed decodes a YAML product list.
func ParseSeed(data []byte) ([]model.Product, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog seed: %w", err)
	}
	return f.Products, nil
}

// LoadSeedFile reads products from path. An empty path yields DefaultSeed.
func LoadSeedFile(path string) ([]model.Product, error) {
	if path == "" {
		return DefaultSeed(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog seed: %w", err)
	}
	return ParseSeed(data)
}
