package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v2"
)

var GatewayConfig *Config

type (
	// Config -.
	Config struct {
		App         `yaml:"app"`
		HTTP        `yaml:"http"`
		Log         `yaml:"logger"`
		Redis       `yaml:"redis"`
		Auth        `yaml:"auth"`
		Tokens      `yaml:"tokens"`
		Pairing     `yaml:"pairing"`
		Connections `yaml:"connections"`
	}

	// App -.
	App struct {
		Name    string `env-required:"true" yaml:"name" env:"APP_NAME"`
		Version string `env-required:"true"`
		// ProcessID names this gateway instance in shared connection
		// locations. Left empty it is generated at startup, which is what
		// you want: a restarted process must not inherit stale locations.
		ProcessID string `yaml:"process_id" env:"APP_PROCESS_ID"`
	}

	// HTTP -.
	HTTP struct {
		Host           string   `env-required:"true" yaml:"host" env:"HTTP_HOST"`
		Port           string   `env-required:"true" yaml:"port" env:"HTTP_PORT"`
		AllowedOrigins []string `env-required:"true" yaml:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS"`
		AllowedHeaders []string `env-required:"true" yaml:"allowed_headers" env:"HTTP_ALLOWED_HEADERS"`
		WSCompression  bool     `yaml:"ws_compression" env:"WS_COMPRESSION"`
		TLS            TLS      `yaml:"tls"`
	}

	// TLS -.
	TLS struct {
		Enabled  bool   `yaml:"enabled" env:"HTTP_TLS_ENABLED"`
		CertFile string `yaml:"certFile" env:"HTTP_TLS_CERT_FILE"`
		KeyFile  string `yaml:"keyFile" env:"HTTP_TLS_KEY_FILE"`
	}

	// Log -.
	Log struct {
		Level string `env-required:"true" yaml:"log_level"   env:"LOG_LEVEL"`
	}

	// Redis holds the shared store connection. An empty address selects the
	// in-memory stores, which only make sense for a single-instance
	// deployment.
	Redis struct {
		Addr      string `yaml:"addr" env:"REDIS_ADDR"`
		Password  string `yaml:"password" env:"REDIS_PASSWORD"`
		DB        int    `yaml:"db" env:"REDIS_DB"`
		KeyPrefix string `yaml:"key_prefix" env:"REDIS_KEY_PREFIX"`
	}

	// Auth -.
	Auth struct {
		Disabled  bool   `yaml:"disabled" env:"AUTH_DISABLED"`
		JWTSecret string `env-required:"true" yaml:"jwtSecret" env:"AUTH_JWT_SECRET"`
		// OAUTH CONFIG, if provided will not use the shared secret
		ClientID string `yaml:"clientId" env:"AUTH_CLIENT_ID"`
		Issuer   string `yaml:"issuer" env:"AUTH_ISSUER"`
	}

	// Tokens configures the device tokens handed to displays at pairing.
	Tokens struct {
		SigningKey string        `env-required:"true" yaml:"signingKey" env:"TOKENS_SIGNING_KEY"`
		TTL        time.Duration `yaml:"ttl" env:"TOKENS_TTL"`
	}

	// Pairing -.
	Pairing struct {
		CodeLength   int           `yaml:"code_length" env:"PAIRING_CODE_LENGTH"`
		CodeTTL      time.Duration `yaml:"code_ttl" env:"PAIRING_CODE_TTL"`
		ClaimURLBase string        `yaml:"claim_url_base" env:"PAIRING_CLAIM_URL_BASE"`
		GracePeriod  time.Duration `yaml:"grace_period" env:"PAIRING_GRACE_PERIOD"`
		StoreTimeout time.Duration `yaml:"store_timeout" env:"PAIRING_STORE_TIMEOUT"`
		ClaimLimit   int           `yaml:"claim_limit" env:"PAIRING_CLAIM_LIMIT"`
		ClaimWindow  time.Duration `yaml:"claim_window" env:"PAIRING_CLAIM_WINDOW"`
	}

	// Connections -.
	Connections struct {
		HeartbeatInterval time.Duration `yaml:"heartbeat_interval" env:"CONN_HEARTBEAT_INTERVAL"`
		MissedThreshold   int           `yaml:"missed_threshold" env:"CONN_MISSED_THRESHOLD"`
		MaxPerAddr        int           `yaml:"max_per_addr" env:"CONN_MAX_PER_ADDR"`
	}
)

// defaultConfig constructs the in-memory default configuration.
func defaultConfig() *Config {
	return &Config{
		App: App{
			Name:      "signage-gateway",
			Version:   "DEVELOPMENT",
			ProcessID: "",
		},
		HTTP: HTTP{
			Host:           "localhost",
			Port:           "8181",
			AllowedOrigins: []string{"*"},
			AllowedHeaders: []string{"*"},
			WSCompression:  true,
			TLS: TLS{
				Enabled:  false,
				CertFile: "",
				KeyFile:  "",
			},
		},
		Log: Log{
			Level: "info",
		},
		Redis: Redis{
			Addr:      "",
			Password:  "",
			DB:        0,
			KeyPrefix: "signage",
		},
		Auth: Auth{
			Disabled:  false,
			JWTSecret: "your_secret_jwt_key",
			// OAUTH CONFIG, if provided will not use the shared secret
			ClientID: "",
			Issuer:   "",
		},
		Tokens: Tokens{
			SigningKey: "your_secret_token_key",
			TTL:        0,
		},
		Pairing: Pairing{
			CodeLength:   6,
			CodeTTL:      10 * time.Minute,
			ClaimURLBase: "",
			GracePeriod:  90 * time.Second,
			StoreTimeout: 500 * time.Millisecond,
			ClaimLimit:   10,
			ClaimWindow:  time.Minute,
		},
		Connections: Connections{
			HeartbeatInterval: 30 * time.Second,
			MissedThreshold:   2,
			MaxPerAddr:        32,
		},
	}
}

// resolveConfigPath determines the effective config file path based on a flag value or default location.
func resolveConfigPath(configPathFlag string) (string, error) {
	if configPathFlag != "" {
		return configPathFlag, nil
	}

	ex, err := os.Executable()
	if err != nil {
		return "", err
	}

	exPath := filepath.Dir(ex)

	return filepath.Join(exPath, "config", "config.yml"), nil
}

// readOrInitConfig attempts to read the config file; if it doesn't exist, writes the provided cfg to disk.
func readOrInitConfig(configPath string, cfg *Config) error {
	err := cleanenv.ReadConfig(configPath, cfg)
	if err == nil {
		return nil
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		// Write config file out to disk
		configDir := filepath.Dir(configPath)
		if mkErr := os.MkdirAll(configDir, os.ModePerm); mkErr != nil {
			return mkErr
		}

		file, cErr := os.Create(configPath)
		if cErr != nil {
			return cErr
		}
		defer file.Close()

		encoder := yaml.NewEncoder(file)
		defer encoder.Close()

		if encErr := encoder.Encode(cfg); encErr != nil {
			return encErr
		}

		return nil
	}

	return err
}

// NewConfig returns app config.
func NewConfig() (*Config, error) {
	// set defaults
	GatewayConfig = defaultConfig()

	// Define a command line flag for the config path
	var configPathFlag string
	if flag.Lookup("config") == nil {
		flag.StringVar(&configPathFlag, "config", "", "path to config file")
	}

	if !flag.Parsed() {
		flag.Parse()
	}

	// Determine the config path
	configPath, err := resolveConfigPath(configPathFlag)
	if err != nil {
		return nil, err
	}

	if err := readOrInitConfig(configPath, GatewayConfig); err != nil {
		return nil, err
	}

	if err := cleanenv.ReadEnv(GatewayConfig); err != nil {
		return nil, err
	}

	return GatewayConfig, nil
}
