// Package sources loads the fetch-source list: the named feeds and search
// queries a run pulls candidate articles from. A built-in list is embedded;
// SOURCES_PATH points at a YAML file that replaces it.
package sources

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"outbreak-feed/internal/domain/entity"
)

//go:embed data/sources.yaml
var builtinYAML []byte

type sourcesFile struct {
	Sources []entity.FetchSource `yaml:"sources"`
}

// Load returns the configured source list. When SOURCES_PATH is set the file
// it names replaces the embedded defaults entirely; otherwise the embedded
// list is used. Every descriptor is validated before the list is returned.
func Load() ([]entity.FetchSource, error) {
	raw := builtinYAML
	if path := os.Getenv("SOURCES_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("Load: read %s: %w", path, err)
		}
		raw = data
	}
	return parse(raw)
}

func parse(raw []byte) ([]entity.FetchSource, error) {
	var sf sourcesFile
	if err := yaml.Unmarshal(raw, &sf); err != nil {
		return nil, fmt.Errorf("Load: parse source list: %w", err)
	}
	if len(sf.Sources) == 0 {
		return nil, fmt.Errorf("Load: source list is empty")
	}
	for i := range sf.Sources {
		if err := sf.Sources[i].Validate(); err != nil {
			return nil, fmt.Errorf("Load: %w", err)
		}
	}
	return sf.Sources, nil
}
