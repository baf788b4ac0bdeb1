// Package config loads the optional project configuration file. Values from
// the file sit below environment variables and command-line flags in the
// precedence order; the cli package resolves the final deployment request.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/LuiseFreese/mermaid-sub004/pkg/mdv"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// EnvironmentConfig identifies the target environment and the credentials
// used against it. The client secret is never read from the file; it comes
// from the environment (DATAVERSE_CLIENT_SECRET or AZURE_CLIENT_SECRET).
type EnvironmentConfig struct {
	URL      string `yaml:"url"`
	TenantID string `yaml:"tenant_id,omitempty"`
	ClientID string `yaml:"client_id,omitempty"`
}

type SolutionConfig struct {
	UniqueName  string `yaml:"unique_name"`
	DisplayName string `yaml:"display_name,omitempty"`
}

type PublisherConfig struct {
	UniqueName  string `yaml:"unique_name"`
	DisplayName string `yaml:"display_name,omitempty"`
	Prefix      string `yaml:"prefix"`
}

type ChoiceOptionConfig struct {
	Label string `yaml:"label"`
	Value int    `yaml:"value,omitempty"`
}

type ChoiceSetConfig struct {
	Name    string               `yaml:"name"`
	Options []ChoiceOptionConfig `yaml:"options"`
}

type ProjectConfig struct {
	Environment  EnvironmentConfig `yaml:"environment"`
	Solution     SolutionConfig    `yaml:"solution"`
	Publisher    PublisherConfig   `yaml:"publisher"`
	IntegrateCDM bool              `yaml:"integrate_cdm"`
	ChoiceSets   []ChoiceSetConfig `yaml:"choice_sets"`
}

const ConfigFileName = "mdv.yaml"

// Load reads the config file from the given directory.
func Load(sourcePath string) (*ProjectConfig, error) {
	configPath := filepath.Join(sourcePath, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ChoiceSetsForRequest converts the configured choice sets to request form,
// assigning sequential option values from the conventional base where the
// file does not specify them.
func (c *ProjectConfig) ChoiceSetsForRequest() []mdv.ChoiceSet {
	if len(c.ChoiceSets) == 0 {
		return nil
	}

	sets := make([]mdv.ChoiceSet, 0, len(c.ChoiceSets))
	for _, cs := range c.ChoiceSets {
		options := make([]mdv.ChoiceOption, 0, len(cs.Options))
		for i, opt := range cs.Options {
			value := opt.Value
			if value == 0 {
				value = mdv.ChoiceValueBase + i
			}
			options = append(options, mdv.ChoiceOption{Label: opt.Label, Value: value})
		}
		sets = append(sets, mdv.ChoiceSet{Name: cs.Name, Options: options, Global: true})
	}
	return sets
}
