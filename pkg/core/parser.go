package core

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadWorkflowFromFile reads a YAML (or JSON) workflow and validates its
// structure.
func LoadWorkflowFromFile(path string) (*Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workflow file %q: %w", path, err)
	}

	wf, err := ParseWorkflow(data)
	if err != nil {
		return nil, fmt.Errorf("loading workflow file %q: %w", path, err)
	}
	return wf, nil
}

func ParseWorkflow(data []byte) (*Workflow, error) {
	var wf Workflow
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("parsing workflow YAML: %w", err)
	}

	if err := ValidateWorkflowStructure(&wf); err != nil {
		return nil, fmt.Errorf("invalid workflow: %w", err)
	}

	return &wf, nil
}

// SaveWorkflowToFile writes wf back as YAML.
func SaveWorkflowToFile(path string, wf *Workflow) error {
	data, err := yaml.Marshal(wf)
	if err != nil {
		return fmt.Errorf("encoding workflow: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing workflow file %q: %w", path, err)
	}
	return nil
}
