// Package config assembles the service configuration from defaults,
// command line flags and environment variables (including a .env file),
// and validates the result.
package config

import (
	"flag"
	"log"
	"os"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the service.
// Values are resolved in priority order: flags > environment > defaults.
type Config struct {
	RunAddr             string        `env:"SERVER_ADDRESS" validate:"hostname_port"`
	LogLevel            string        `env:"LOG_LEVEL" validate:"loglevel"`
	DBFileName          string        `env:"FILE_STORAGE_PATH" validate:"filepath"`
	DatabaseDSN         string        `env:"DATABASE_DSN"`
	DBConnectionTimeout time.Duration `env:"DB_CONNECTION_TIMEOUT"`
	MigrationsDir       string        `env:"MIGRATIONS_DIR"`

	// JWTSigningSecretKey is the base64 encoded secret used to sign
	// identity tokens. It is decoded once during application wiring.
	JWTSigningSecretKey string        `env:"JWT_SIGNING_SECRET_KEY" validate:"required,base64url"`
	JWTTimeToLive       time.Duration `env:"JWT_TIME_TO_LIVE"`

	GithubAPIBaseURL     string        `env:"GITHUB_API_BASE_URL" validate:"url"`
	GithubToken          string        `env:"GITHUB_TOKEN"`
	GithubRequestTimeout time.Duration `env:"GITHUB_REQUEST_TIMEOUT"`

	// TrustedSubnet is a CIDR; requests to the internal stats endpoint
	// are allowed only from it. Empty disables the endpoint.
	TrustedSubnet string `env:"TRUSTED_SUBNET"`
}

var defaultConfig = Config{
	RunAddr:              ":8080",
	LogLevel:             "info",
	DBFileName:           "",
	DatabaseDSN:          "",
	DBConnectionTimeout:  10 * time.Second,
	MigrationsDir:        "./migrations",
	JWTSigningSecretKey:  "c3VwZXJzZWNyZXQ=",
	JWTTimeToLive:        time.Hour,
	GithubAPIBaseURL:     "https://api.github.com",
	GithubToken:          "",
	GithubRequestTimeout: 5 * time.Second,
	TrustedSubnet:        "",
}

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	if path == "" {
		return true
	}
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	return allowedLogLevels[value]
}

func (c *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("filepath", validateFilePath)
	if err != nil {
		return err
	}

	return validate.Struct(c)
}

// InitOption is a functional option for New.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
}

// WithDisableFlagsParsing disables command line flag parsing.
// Tests use it to keep the global flag set untouched.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

func applyDefaults(target *Config, defaults Config) {
	*target = defaults
}

// New builds a validated Config from defaults, flags and environment.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	values := &Config{}
	applyDefaults(values, defaultConfig)

	if !options.disableFlagsParsing {
		flag.StringVar(&values.RunAddr, "a", values.RunAddr, "address and port to run server")
		flag.StringVar(&values.LogLevel, "l", values.LogLevel, "logger level")
		flag.StringVar(&values.DBFileName, "f", values.DBFileName, "JSON file name with database")
		flag.StringVar(&values.DatabaseDSN, "d", values.DatabaseDSN, "A string with the database connection details")
		flag.StringVar(&values.MigrationsDir, "m", values.MigrationsDir, "directory with goose migrations")
		flag.StringVar(&values.TrustedSubnet, "t", values.TrustedSubnet, "trusted subnet for the internal stats endpoint (CIDR)")
		flag.Parse()
	}

	var valuesFromEnv Config
	if err := env.Parse(&valuesFromEnv); err != nil {
		return nil, err
	}

	if valuesFromEnv.RunAddr != "" {
		values.RunAddr = valuesFromEnv.RunAddr
	}

	if valuesFromEnv.LogLevel != "" {
		values.LogLevel = valuesFromEnv.LogLevel
	}

	if valuesFromEnv.DBFileName != "" {
		values.DBFileName = valuesFromEnv.DBFileName
	}

	if valuesFromEnv.DatabaseDSN != "" {
		values.DatabaseDSN = valuesFromEnv.DatabaseDSN
	}

	if valuesFromEnv.DBConnectionTimeout != 0 {
		values.DBConnectionTimeout = valuesFromEnv.DBConnectionTimeout
	}

	if valuesFromEnv.MigrationsDir != "" {
		values.MigrationsDir = valuesFromEnv.MigrationsDir
	}

	if valuesFromEnv.JWTSigningSecretKey != "" {
		values.JWTSigningSecretKey = valuesFromEnv.JWTSigningSecretKey
	}

	if valuesFromEnv.JWTTimeToLive != 0 {
		values.JWTTimeToLive = valuesFromEnv.JWTTimeToLive
	}

	if valuesFromEnv.GithubAPIBaseURL != "" {
		values.GithubAPIBaseURL = valuesFromEnv.GithubAPIBaseURL
	}

	if valuesFromEnv.GithubToken != "" {
		values.GithubToken = valuesFromEnv.GithubToken
	}

	if valuesFromEnv.GithubRequestTimeout != 0 {
		values.GithubRequestTimeout = valuesFromEnv.GithubRequestTimeout
	}

	if valuesFromEnv.TrustedSubnet != "" {
		values.TrustedSubnet = valuesFromEnv.TrustedSubnet
	}

	if err := values.validate(); err != nil {
		return nil, err
	}

	return values, nil
}
