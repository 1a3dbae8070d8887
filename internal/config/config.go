package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML configuration shape for Strata. All fields
// are pointers so absence is distinguishable from a zero value; resolution
// order is CLI flag > local config > global config.
type FileConfig struct {
	Out           *string  `yaml:"out"`
	Store         *string  `yaml:"store"`
	Exclude       *string  `yaml:"exclude"`
	Include       *string  `yaml:"include"`
	MaxFiles      *int     `yaml:"max_files"`
	MaxTotalBytes *int64   `yaml:"max_total_bytes"`
	MaxReadBytes  *int64   `yaml:"max_read_bytes"`
	MinEvidence   *int     `yaml:"min_evidence"`
	Similarity    *float64 `yaml:"similarity"`
	NoNarrative   *bool    `yaml:"no_narrative"`
	NoCache       *bool    `yaml:"no_cache"`
	Tickets       *bool    `yaml:"tickets"`

	// SignatureFiles lists extra YAML signature-registry files merged over
	// the built-in registry.
	SignatureFiles []string `yaml:"signature_files"`
}

const localName = ".strata.yaml"

// LoadLocal reads <root>/.strata.yaml.
func LoadLocal(root string) (FileConfig, error) {
	return load(filepath.Join(root, localName))
}

// LoadGlobal reads ~/.config/strata/config.yaml.
func LoadGlobal() (FileConfig, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return FileConfig{}, err
	}
	return load(filepath.Join(home, ".config", "strata", "config.yaml"))
}

func load(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fc, errors.New("invalid config " + path + ": " + err.Error())
	}
	return fc, nil
}

// PickString resolves flag > local > global for string options.
func PickString(flag string, local, global *string) string {
	if flag != "" {
		return flag
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return ""
}

// PickInt resolves flag > local > global; the flag wins when nonzero.
func PickInt(flag int, local, global *int) int {
	if flag != 0 {
		return flag
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return 0
}

// PickInt64 resolves flag > local > global; the flag wins when nonzero.
func PickInt64(flag int64, local, global *int64) int64 {
	if flag != 0 {
		return flag
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return 0
}

// PickFloat resolves flag > local > global; the flag wins when nonzero.
func PickFloat(flag float64, local, global *float64) float64 {
	if flag != 0 {
		return flag
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return 0
}

// PickBool returns true when any layer enables the option.
func PickBool(flag bool, local, global *bool) bool {
	if flag {
		return true
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return false
}
