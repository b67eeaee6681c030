// Package config loads the static index definition for the codemap server.
//
// The whole index (subsystems, agents, drift options) lives in one YAML
// file. It is read once at startup, defaulted, validated, and then compiled
// into the immutable tables in internal/index. Nothing re-reads it at query
// time.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config filename looked up in the working directory
// when no -config flag is given.
const DefaultFile = "codemap.yaml"

// Config is the full static configuration for the server.
type Config struct {
	// BasePath qualifies relative code patterns into full paths for display.
	BasePath string `yaml:"base_path"`
	// DocsDir is the directory of context documents searched on demand.
	DocsDir string `yaml:"docs_dir"`

	Subsystems []Subsystem `yaml:"subsystems"`
	Agents     []Agent     `yaml:"agents"`

	Drift Drift `yaml:"drift"`

	// Docs maps a document basename stem to a short description shown by
	// the document listing. Optional.
	Docs map[string]string `yaml:"docs"`
}

// Subsystem is one indexed slice of the codebase.
type Subsystem struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords"`
	// Files holds exact relative paths, directory prefixes ending in "/",
	// and documentation paths under DocsDir.
	Files []string `yaml:"files"`
}

// Agent is one specialized helper with its trigger phrases.
type Agent struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Triggers    []string `yaml:"triggers"`
	// Tier is an opaque capability/cost label, e.g. a model-size hint.
	Tier string `yaml:"tier"`
}

// Drift holds options for the context drift checker.
type Drift struct {
	// StateDir is where the dismiss-state database lives.
	StateDir string `yaml:"state_dir"`
	// SessionsDir is scanned for session transcripts (JSONL).
	SessionsDir string `yaml:"sessions_dir"`
	// ProjectFilter keeps only session directories whose name contains it.
	ProjectFilter string `yaml:"project_filter"`
	// BuildCommands mark a Bash tool use as a build for edit-build cycle
	// detection in session scoring.
	BuildCommands []string `yaml:"build_commands"`
	// Priorities maps subsystem key to high/medium/low. Unlisted
	// subsystems default to low and are suppressed.
	Priorities map[string]string `yaml:"priorities"`
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &cfg, nil
}

// expandEnvVars substitutes ${VAR} references with environment values.
// Unset variables expand to the empty string.
func expandEnvVars(data []byte) []byte {
	return envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		name := envVarPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(name)))
	})
}

func (c *Config) applyDefaults() {
	if c.DocsDir == "" {
		c.DocsDir = "docs/context"
	}
	if c.Drift.StateDir == "" {
		c.Drift.StateDir = ".codemap"
	}
	if c.Drift.SessionsDir == "" {
		home, _ := os.UserHomeDir()
		c.Drift.SessionsDir = filepath.Join(home, ".claude", "projects")
	}
	if len(c.Drift.BuildCommands) == 0 {
		c.Drift.BuildCommands = []string{"go build", "go test", "make"}
	}
}

// Validate checks structural invariants: keys and ids must be unique and
// non-empty, drift priorities must reference known subsystems.
func (c *Config) Validate() error {
	if len(c.Subsystems) == 0 {
		return fmt.Errorf("no subsystems defined")
	}

	seenKeys := make(map[string]bool, len(c.Subsystems))
	for i, s := range c.Subsystems {
		if s.Key == "" {
			return fmt.Errorf("subsystem %d has an empty key", i)
		}
		if seenKeys[s.Key] {
			return fmt.Errorf("duplicate subsystem key %q", s.Key)
		}
		seenKeys[s.Key] = true
		if s.Name == "" {
			return fmt.Errorf("subsystem %q has an empty name", s.Key)
		}
	}

	seenIDs := make(map[string]bool, len(c.Agents))
	for i, a := range c.Agents {
		if a.ID == "" {
			return fmt.Errorf("agent %d has an empty id", i)
		}
		if seenIDs[a.ID] {
			return fmt.Errorf("duplicate agent id %q", a.ID)
		}
		seenIDs[a.ID] = true
		if a.Name == "" {
			return fmt.Errorf("agent %q has an empty name", a.ID)
		}
	}

	for key, prio := range c.Drift.Priorities {
		if !seenKeys[key] {
			return fmt.Errorf("drift priority for unknown subsystem %q", key)
		}
		switch prio {
		case "high", "medium", "low":
		default:
			return fmt.Errorf("drift priority for %q must be high, medium, or low, got %q", key, prio)
		}
	}

	return nil
}
