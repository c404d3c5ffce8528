package vcp

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed registry.yaml
var registryYAML []byte

// Access describes how a feature may be used.
type Access string

const (
	// AccessReadOnly marks features the host can only read.
	AccessReadOnly Access = "ro"

	// AccessReadWrite marks features the host can read and write.
	AccessReadWrite Access = "rw"

	// AccessWriteOnly marks features the host can only write.
	AccessWriteOnly Access = "wo"
)

// FeatureDef is a registry entry describing a well-known VCP feature.
type FeatureDef struct {
	Code   Code   `yaml:"code"`
	Name   string `yaml:"name"`
	Kind   string `yaml:"kind"`
	Access Access `yaml:"access"`
}

// registryFile is the YAML shape of the embedded feature table.
type registryFile struct {
	Version  string       `yaml:"version"`
	Features []FeatureDef `yaml:"features"`
}

var (
	registryOnce sync.Once
	registryErr  error
	registryVer  string
	registry     map[Code]FeatureDef
)

func loadRegistry() {
	var file registryFile
	if err := yaml.Unmarshal(registryYAML, &file); err != nil {
		registryErr = fmt.Errorf("parsing embedded feature registry: %w", err)
		return
	}
	registry = make(map[Code]FeatureDef, len(file.Features))
	for _, def := range file.Features {
		registry[def.Code] = def
	}
	registryVer = file.Version
}

// Lookup returns the registry entry for a feature code.
func Lookup(code Code) (FeatureDef, bool) {
	registryOnce.Do(loadRegistry)
	if registryErr != nil {
		return FeatureDef{}, false
	}
	def, ok := registry[code]
	return def, ok
}

// LookupName returns the registry entry with the given name.
func LookupName(name string) (FeatureDef, bool) {
	registryOnce.Do(loadRegistry)
	for _, def := range registry {
		if def.Name == name {
			return def, true
		}
	}
	return FeatureDef{}, false
}

// RegistryVersion returns the MCCS version the embedded table was taken from.
func RegistryVersion() string {
	registryOnce.Do(loadRegistry)
	return registryVer
}
