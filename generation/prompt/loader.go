package prompt

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/BaSui01/creativeflow/types"
)

// archetypeFile is the on-disk layout of custom archetypes.
type archetypeFile struct {
	Archetypes []Archetype `yaml:"archetypes"`
}

// LoadArchetypes reads custom archetypes from a YAML file. Entries with the name of a
// built-in archetype replace it once passed to the assembler through Config.Extra.
func LoadArchetypes(path string) ([]Archetype, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read archetype file: %w", err)
	}
	return ParseArchetypes(data)
}

// ParseArchetypes decodes and checks archetypes from YAML.
func ParseArchetypes(data []byte) ([]Archetype, error) {
	var f archetypeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse archetype file: %w", err)
	}
	seen := make(map[string]bool, len(f.Archetypes))
	for i, a := range f.Archetypes {
		switch {
		case strings.TrimSpace(a.Name) == "":
			return nil, fmt.Errorf("archetypes[%d]: name is required", i)
		case seen[a.Name]:
			return nil, fmt.Errorf("archetypes[%d]: duplicate name %q", i, a.Name)
		case a.ContentType != types.ContentImage && a.ContentType != types.ContentVideo:
			return nil, fmt.Errorf("archetype %s: content_type must be image or video", a.Name)
		case strings.TrimSpace(a.Base.Subject) == "":
			return nil, fmt.Errorf("archetype %s: base.subject is required", a.Name)
		}
		seen[a.Name] = true
	}
	return f.Archetypes, nil
}
