package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"stubforge"
)

// fileConfig is the optional YAML layout file. Every field has a default so
// the tool runs unconfigured against the conventional resources/ layout.
type fileConfig struct {
	StdlibRoot   string `yaml:"stdlib_root"`
	StubsRoot    string `yaml:"stubs_root"`
	CustomRoot   string `yaml:"custom_root"`
	ImporterFile string `yaml:"importer_file"`
	Database     string `yaml:"database"`
	DebugDir     string `yaml:"debug_dir"`
}

func defaultConfig() fileConfig {
	return fileConfig{
		StdlibRoot:   "resources/typeshed/stdlib",
		StubsRoot:    "resources/typeshed/stubs",
		CustomRoot:   "resources/custom",
		ImporterFile: "resources/importer/" + stubforge.ImporterModule + ".pyi",
		Database:     "symbols.db",
		DebugDir:     "output",
	}
}

// loadConfig reads path when it is non-empty, layering it over the defaults.
func loadConfig(path string) (fileConfig, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c fileConfig) layout() stubforge.Layout {
	return stubforge.Layout{
		StdlibRoot:   c.StdlibRoot,
		StubsRoot:    c.StubsRoot,
		CustomRoot:   c.CustomRoot,
		ImporterFile: c.ImporterFile,
	}
}
