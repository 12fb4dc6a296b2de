package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/carson-networks/ledger-server/internal/bankfeed"
)

type Config struct {
	PostgresAddress  string `yaml:"postgres_address"`
	PostgresPort     string `yaml:"postgres_port"`
	PostgresDB       string `yaml:"postgres_db"`
	PostgresUsername string `yaml:"postgres_username"`
	PostgresPassword string `yaml:"postgres_password"`

	HTTPPort        string `yaml:"http_port"`
	LogLevel        string `yaml:"log_level"`
	OperatorWorkers int    `yaml:"operator_workers"`
	AutoMigrate     bool   `yaml:"auto_migrate"`

	BankFeedURL            string              `yaml:"bankfeed_url"`
	BankFeedAPIKey         string              `yaml:"bankfeed_api_key"`
	BankFeedTimeoutSeconds int                 `yaml:"bankfeed_timeout_seconds"`
	BankFeedPaths          bankfeed.FieldPaths `yaml:"bankfeed_paths"`

	GenAIAPIKey string `yaml:"genai_api_key"`
	GenAIModel  string `yaml:"genai_model"`

	MatchWindowDays int `yaml:"match_window_days"`
}

// Default is the configuration for the docker compose setup.
func Default() Config {
	return Config{
		PostgresAddress:  "localhost",
		PostgresPort:     "5433",
		PostgresDB:       "postgres",
		PostgresUsername: "postgres",
		PostgresPassword: "testpassword",

		HTTPPort:        "9446",
		LogLevel:        "info",
		OperatorWorkers: 4,

		BankFeedTimeoutSeconds: 30,
		BankFeedPaths:          bankfeed.DefaultFieldPaths(),

		GenAIModel:      "gemini-2.5-flash",
		MatchWindowDays: 7,
	}
}

// BankFeedTimeout is the HTTP timeout for bank feed requests.
func (c *Config) BankFeedTimeout() time.Duration {
	return time.Duration(c.BankFeedTimeoutSeconds) * time.Second
}

// ProcessEnvironmentVariables builds the config from the defaults, the YAML file
// named by CONFIG_FILE if set, and then the environment.
func ProcessEnvironmentVariables() (*Config, error) {
	return Load(os.Getenv("CONFIG_FILE"), os.LookupEnv)
}

// Load is ProcessEnvironmentVariables with the file path and environment lookup
// passed in.
func Load(path string, lookup func(string) (string, bool)) (*Config, error) {
	env := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	stringVars := map[string]*string{
		"POSTGRES_ADDRESS":  &env.PostgresAddress,
		"POSTGRES_PORT":     &env.PostgresPort,
		"POSTGRES_DB":       &env.PostgresDB,
		"POSTGRES_USERNAME": &env.PostgresUsername,
		"POSTGRES_PASSWORD": &env.PostgresPassword,
		"HTTP_PORT":         &env.HTTPPort,
		"LOG_LEVEL":         &env.LogLevel,
		"BANKFEED_URL":      &env.BankFeedURL,
		"BANKFEED_API_KEY":  &env.BankFeedAPIKey,
		"GENAI_API_KEY":     &env.GenAIAPIKey,
		"GENAI_MODEL":       &env.GenAIModel,
	}
	for key, field := range stringVars {
		if v, ok := lookup(key); ok && len(v) != 0 {
			*field = v
		}
	}

	intVars := map[string]*int{
		"OPERATOR_WORKERS":         &env.OperatorWorkers,
		"BANKFEED_TIMEOUT_SECONDS": &env.BankFeedTimeoutSeconds,
		"MATCH_WINDOW_DAYS":        &env.MatchWindowDays,
	}
	for key, field := range intVars {
		v, ok := lookup(key)
		if !ok || len(v) == 0 {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		*field = n
	}

	if v, ok := lookup("AUTO_MIGRATE"); ok && len(v) != 0 {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("AUTO_MIGRATE: %w", err)
		}
		env.AutoMigrate = b
	}

	if env.OperatorWorkers < 1 {
		return nil, fmt.Errorf("operator workers must be at least 1, got %d", env.OperatorWorkers)
	}
	if env.MatchWindowDays < 0 {
		return nil, fmt.Errorf("match window must not be negative, got %d", env.MatchWindowDays)
	}
	return &env, nil
}
