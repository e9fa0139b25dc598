package yaml

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Victor-armando18/marketplace-rules/internal/interfaces"
)

// LoadPack reads a rule pack from a YAML file.
func LoadPack(path string) (interfaces.PackDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return interfaces.PackDefinition{}, err
	}

	var pack interfaces.PackDefinition
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return interfaces.PackDefinition{}, err
	}
	return pack, nil
}
