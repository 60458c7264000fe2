package trends

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/regions.yaml
var regionsYAML []byte

type regionsFile struct {
	Regions map[string]string `yaml:"regions"`
}

// loadRegionMap parses the embedded provider-name normalization table.
func loadRegionMap() (map[string]string, error) {
	var rf regionsFile
	if err := yaml.Unmarshal(regionsYAML, &rf); err != nil {
		return nil, fmt.Errorf("loadRegionMap: %w", err)
	}
	return rf.Regions, nil
}

// normalizeRegion maps a provider region name onto our canonical country
// naming. Unmapped names pass through trimmed.
func (s *Service) normalizeRegion(region string) string {
	region = strings.TrimSpace(region)
	if canonical, ok := s.regionMap[region]; ok {
		return canonical
	}
	return region
}
