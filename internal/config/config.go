package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rubrical-studios/shipver/internal/release"
	"github.com/rubrical-studios/shipver/internal/runner"
	"gopkg.in/yaml.v3"
)

// Config represents the .shipver.yml configuration file
type Config struct {
	VersionFile string     `yaml:"version_file,omitempty"` // Stored version (default: VERSION)
	TagPrefix   *string    `yaml:"tag_prefix,omitempty"`   // Prepended to tags (default: "v")
	Remote      string     `yaml:"remote,omitempty"`       // Push target (default: origin)
	Push        *bool      `yaml:"push,omitempty"`         // Push commits and tags (default: true)
	Prepare     [][]string `yaml:"prepare,omitempty"`      // Commands run before patching, as argv lists
	Stage       []string   `yaml:"stage,omitempty"`        // Extra manifests staged when present
	Artifacts   []Artifact `yaml:"artifacts,omitempty"`
	GitHub      GitHub     `yaml:"github,omitempty"`
	NextSteps   []string   `yaml:"next_steps,omitempty"`
	Log         *bool      `yaml:"log,omitempty"` // Write .shipver/logs/release.log (default: true)
}

// Artifact describes a set of files sharing one version pattern
type Artifact struct {
	Name     string   `yaml:"name"`
	Kind     string   `yaml:"kind"`               // inno, desktop, go-const or regex
	Define   string   `yaml:"define,omitempty"`   // inno: #define name (default: MyAppVersion)
	App      string   `yaml:"app,omitempty"`      // desktop: application name in StartupWMClass
	Const    string   `yaml:"const,omitempty"`    // go-const: identifier (default: Version)
	Pattern  string   `yaml:"pattern,omitempty"`  // regex: expression with a (?P<version>...) group
	Optional bool     `yaml:"optional,omitempty"` // Missing files are skipped with a warning
	Files    []string `yaml:"files"`
}

// GitHub contains settings for publishing a GitHub release after the tag push
type GitHub struct {
	Release    bool   `yaml:"release,omitempty"`
	Repository string `yaml:"repository,omitempty"` // owner/name (default: detected from git remote)
	Host       string `yaml:"host,omitempty"`
	Draft      bool   `yaml:"draft,omitempty"`
}

// ConfigFileName is the default configuration file name
const ConfigFileName = ".shipver.yml"

// DefaultVersionFile is used when version_file is not set
const DefaultVersionFile = "VERSION"

// DefaultTagPrefix is used when tag_prefix is not set
const DefaultTagPrefix = "v"

// Default returns the configuration used when no .shipver.yml exists:
// VERSION file, go mod tidy, go.mod/go.sum staged, no artifacts.
func Default() *Config {
	return &Config{
		Prepare: [][]string{{"go", "mod", "tidy"}},
		Stage:   []string{"go.mod", "go.sum"},
		NextSteps: []string{
			"Build the application",
			"Test the application",
			"Create the installer",
		},
	}
}

// Load reads and parses a configuration file from the given path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// FindConfigFile searches for .shipver.yml starting from dir and walking up
// the directory tree until found or filesystem root is reached.
func FindConfigFile(startDir string) (string, error) {
	return findUp(startDir, ConfigFileName)
}

// FindProjectRoot returns the directory holding .shipver.yml, or failing
// that the nearest directory holding go.mod.
func FindProjectRoot(startDir string) (string, error) {
	if path, err := findUp(startDir, ConfigFileName); err == nil {
		return filepath.Dir(path), nil
	}
	path, err := findUp(startDir, "go.mod")
	if err != nil {
		return "", fmt.Errorf("could not find project root (no %s or go.mod in %s or any parent directory)", ConfigFileName, startDir)
	}
	return filepath.Dir(path), nil
}

// LoadProject locates the project root from startDir and returns it with its
// configuration. Without a config file the defaults are used.
func LoadProject(startDir string) (string, *Config, error) {
	root, err := FindProjectRoot(startDir)
	if err != nil {
		return "", nil, err
	}

	cfg := Default()
	path := filepath.Join(root, ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		cfg, err = Load(path)
		if err != nil {
			return "", nil, err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return "", nil, fmt.Errorf("invalid %s: %w", ConfigFileName, err)
	}
	return root, cfg, nil
}

func findUp(startDir, name string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	for {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", fmt.Errorf("no %s found in %s or any parent directory", name, startDir)
		}
		dir = parent
	}
}

// Validate checks artifact definitions and command lists
func (c *Config) Validate() error {
	names := map[string]bool{}
	for i, a := range c.Artifacts {
		if a.Name == "" {
			return fmt.Errorf("artifacts[%d]: name is required", i)
		}
		if names[a.Name] {
			return fmt.Errorf("artifacts[%d]: duplicate name %q", i, a.Name)
		}
		names[a.Name] = true
		if len(a.Files) == 0 {
			return fmt.Errorf("artifact %s: at least one file is required", a.Name)
		}
		if _, err := a.pattern(); err != nil {
			return fmt.Errorf("artifact %s: %w", a.Name, err)
		}
	}

	for i, argv := range c.Prepare {
		if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
			return fmt.Errorf("prepare[%d]: command is empty", i)
		}
	}

	if c.GitHub.Repository != "" {
		if _, _, err := SplitRepository(c.GitHub.Repository); err != nil {
			return fmt.Errorf("github.repository: %w", err)
		}
	}

	return nil
}

// ApplyEnvOverrides applies environment variable overrides to the config.
// Supported environment variables:
//   - SHIPVER_REMOTE: overrides remote
//   - SHIPVER_TAG_PREFIX: overrides tag_prefix (may be empty only via the file)
func (c *Config) ApplyEnvOverrides() {
	if remote := os.Getenv("SHIPVER_REMOTE"); remote != "" {
		c.Remote = remote
	}

	if prefix, ok := os.LookupEnv("SHIPVER_TAG_PREFIX"); ok && prefix != "" {
		c.TagPrefix = &prefix
	}
}

// GetVersionFile returns the version file path relative to the project root
func (c *Config) GetVersionFile() string {
	if c.VersionFile == "" {
		return DefaultVersionFile
	}
	return c.VersionFile
}

// GetTagPrefix returns the tag prefix. An explicit empty string disables it.
func (c *Config) GetTagPrefix() string {
	if c.TagPrefix == nil {
		return DefaultTagPrefix
	}
	return *c.TagPrefix
}

// GetRemote returns the push remote (default: origin)
func (c *Config) GetRemote() string {
	if c.Remote == "" {
		return "origin"
	}
	return c.Remote
}

// ShouldPush returns whether commits and tags are pushed (default: true)
func (c *Config) ShouldPush() bool {
	return c.Push == nil || *c.Push
}

// IsLogEnabled returns whether the run log is written (default: true)
func (c *Config) IsLogEnabled() bool {
	return c.Log == nil || *c.Log
}

// ArtifactSpecs converts the artifact definitions into patcher specs
func (c *Config) ArtifactSpecs() ([]release.ArtifactSpec, error) {
	specs := make([]release.ArtifactSpec, 0, len(c.Artifacts))
	for _, a := range c.Artifacts {
		re, err := a.pattern()
		if err != nil {
			return nil, fmt.Errorf("artifact %s: %w", a.Name, err)
		}
		files := make([]release.ArtifactFile, 0, len(a.Files))
		for _, f := range a.Files {
			files = append(files, release.ArtifactFile{Path: f, Optional: a.Optional})
		}
		specs = append(specs, release.ArtifactSpec{Name: a.Name, Files: files, Pattern: re})
	}
	return specs, nil
}

// PrepareCommands converts the prepare argv lists into runner commands
func (c *Config) PrepareCommands() []runner.Command {
	cmds := make([]runner.Command, 0, len(c.Prepare))
	for _, argv := range c.Prepare {
		cmd := runner.Command{Name: argv[0], Args: argv[1:]}
		cmd.Description = "Running " + cmd.String()
		cmds = append(cmds, cmd)
	}
	return cmds
}

// pattern builds the version pattern for the artifact's kind
func (a Artifact) pattern() (*regexp.Regexp, error) {
	switch a.Kind {
	case release.KindInno:
		return release.PatternFor(a.Kind, a.Define)
	case release.KindDesktop:
		return release.PatternFor(a.Kind, a.App)
	case release.KindGoConst:
		return release.PatternFor(a.Kind, a.Const)
	case release.KindRegex:
		if a.Pattern == "" {
			return nil, fmt.Errorf("regex artifacts need a pattern")
		}
		return release.PatternFor(a.Kind, a.Pattern)
	case "":
		return nil, fmt.Errorf("kind is required")
	default:
		return release.PatternFor(a.Kind, "")
	}
}

// SplitRepository splits "owner/name"
func SplitRepository(repo string) (string, string, error) {
	parts := strings.SplitN(repo, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository format: %s (expected owner/name)", repo)
	}
	return parts[0], parts[1], nil
}
