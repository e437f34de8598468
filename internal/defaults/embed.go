// Package defaults provides the embedded starter configuration written by
// shipver init.
package defaults

import (
	_ "embed"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed starter.yml
var starterYAML string

// Placeholders substituted by Starter
const (
	appPlaceholder      = "__APP__"
	appLowerPlaceholder = "__APP_LOWER__"
)

// Summary is the part of the starter config checked by tests and init output.
type Summary struct {
	VersionFile string `yaml:"version_file"`
	TagPrefix   string `yaml:"tag_prefix"`
	Artifacts   []struct {
		Name     string   `yaml:"name"`
		Kind     string   `yaml:"kind"`
		Optional bool     `yaml:"optional"`
		Files    []string `yaml:"files"`
	} `yaml:"artifacts"`
}

// Starter returns the starter configuration for an application name,
// keeping the template's comments intact.
func Starter(app string) string {
	if app == "" {
		app = "app"
	}
	out := strings.ReplaceAll(starterYAML, appLowerPlaceholder, strings.ToLower(app))
	return strings.ReplaceAll(out, appPlaceholder, app)
}

// Load parses the starter configuration for app.
func Load(app string) (*Summary, error) {
	var s Summary
	if err := yaml.Unmarshal([]byte(Starter(app)), &s); err != nil {
		return nil, err
	}
	return &s, nil
}
