package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Server        Server        `yaml:"server"`
	Reddit        Reddit        `yaml:"reddit"`
	Summarization Summarization `yaml:"summarization"`
	Presentation  Presentation  `yaml:"presentation"`
	Logging       Logging       `yaml:"logging"`
}

type Server struct {
	Port       int    `yaml:"port"`
	CORSOrigin string `yaml:"cors_origin"`
}

type Reddit struct {
	Domain      string   `yaml:"domain"`
	UserAgent   string   `yaml:"user_agent"`
	FetchLimit  int      `yaml:"fetch_limit"`
	MaxComments int      `yaml:"max_comments"`
	Timeout     Duration `yaml:"timeout"`
}

type Summarization struct {
	Provider  string   `yaml:"provider"`
	Model     string   `yaml:"model"`
	APIKeyEnv string   `yaml:"api_key_env"`
	BaseURL   string   `yaml:"base_url"`
	OllamaURL string   `yaml:"ollama_url"`
	Timeout   Duration `yaml:"timeout"`

	// APIKey is resolved from the environment variable named by APIKeyEnv.
	// It is never read from the YAML file.
	APIKey string `yaml:"-"`
}

type Presentation struct {
	Presenter string `yaml:"presenter"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// Duration is a time.Duration that unmarshals from strings like "30s".
// An empty string decodes to zero, which means no timeout.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Value == "" || value.Value == "0" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// ConfigDir returns the XDG config directory for redditsum.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "redditsum")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/redditsum/config.yaml > ./config.yaml
//
// Unlike an explicit path, the implicit locations are optional: when neither
// exists ResolveConfigPath returns "" and the built-in defaults apply.
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", nil
}

// Load reads the config file at path (or only defaults when path is empty),
// loads .env from the working directory if present and applies environment
// overrides.
func Load(path string) (*Config, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}

	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration with environment overrides applied.
func Default() *Config {
	cfg, _ := parse(nil)
	_ = cfg.applyEnv(os.Getenv)
	return cfg
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Server: Server{Port: 5000, CORSOrigin: "*"},
		Reddit: Reddit{
			Domain:      "reddit.com",
			UserAgent:   "RedditSummarizer/1.0",
			FetchLimit:  100,
			MaxComments: 20,
		},
		Summarization: Summarization{
			Provider:  "gemini",
			Model:     "gemini-2.0-flash",
			APIKeyEnv: "GEMINI_API_KEY",
			OllamaURL: "http://localhost:11434",
		},
		Presentation: Presentation{Presenter: "auto"},
		Logging:      Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if port := getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		c.Server.Port = p
	}
	if level := getenv("LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if c.Summarization.APIKeyEnv != "" {
		c.Summarization.APIKey = getenv(c.Summarization.APIKeyEnv)
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
