package workload

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads and validates the workload template at the given path.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workload template: %w", err)
	}

	spec, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return spec, nil
}

// Parse decodes and validates a workload template.
func Parse(data []byte) (*Spec, error) {
	doc := yaml.Node{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse workload template: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("workload template is empty")
	}

	spec := &Spec{}
	if err := doc.Content[0].Decode(spec); err != nil {
		return nil, fmt.Errorf("invalid workload template: %w", err)
	}

	return spec, nil
}
