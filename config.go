package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	qhttp "grocerysales/http"
	"grocerysales/logging"
	"grocerysales/ml"
)

type Config struct {
	Http struct {
		Port           int           `yaml:"port"`
		Timeout        time.Duration `yaml:"timeout"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
		CacheSize      *int          `yaml:"cache_size"`
		MaxBodyBytes   int64         `yaml:"max_body_bytes"`
	} `yaml:"http"`
	Log logging.Config `yaml:"log"`
	ML  struct {
		ModelType string `yaml:"model_type"`
		ModelPath string `yaml:"model_path"`
		// Required makes a missing or broken artifact fatal at startup.
		// Otherwise the server starts degraded and every prediction fails.
		Required bool `yaml:"required"`
		Watch    bool `yaml:"watch"`
	} `yaml:"ml"`
	Display struct {
		Locale         string `yaml:"locale"`
		CurrencySymbol string `yaml:"currency_symbol"`
	} `yaml:"display"`
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	config.applyDefaults()
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	defaults := qhttp.DefaultServerConfig()
	if c.Http.Port == 0 {
		c.Http.Port = defaults.Port
	}
	if c.Http.Timeout == 0 {
		c.Http.Timeout = defaults.Timeout
	}
	if len(c.Http.AllowedOrigins) == 0 {
		c.Http.AllowedOrigins = defaults.AllowedOrigins
	}
	if c.Http.CacheSize == nil {
		size := defaults.CacheSize
		c.Http.CacheSize = &size
	}
	if c.Http.MaxBodyBytes == 0 {
		c.Http.MaxBodyBytes = defaults.MaxBodyBytes
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.ML.ModelType == "" {
		c.ML.ModelType = ml.ModelRandomForest
	}
	if c.ML.ModelPath == "" {
		c.ML.ModelPath = "models/sales_forest.json"
	}
	if c.Display.Locale == "" {
		c.Display.Locale = defaults.Locale
	}
	if c.Display.CurrencySymbol == "" {
		c.Display.CurrencySymbol = defaults.CurrencySymbol
	}
}

func (c *Config) validate() error {
	if c.Http.Port < 0 || c.Http.Port > 65535 {
		return fmt.Errorf("http.port %d out of range", c.Http.Port)
	}
	switch c.ML.ModelType {
	case ml.ModelDecisionTree, ml.ModelRandomForest, ml.ModelLinear:
	default:
		return fmt.Errorf("ml.model_type %q: %w", c.ML.ModelType, ml.ErrUnsupportedModel)
	}
	return nil
}

func (c *Config) serverConfig() qhttp.ServerConfig {
	return qhttp.ServerConfig{
		Port:           c.Http.Port,
		Timeout:        c.Http.Timeout,
		AllowedOrigins: c.Http.AllowedOrigins,
		CacheSize:      *c.Http.CacheSize,
		MaxBodyBytes:   c.Http.MaxBodyBytes,
		Locale:         c.Display.Locale,
		CurrencySymbol: c.Display.CurrencySymbol,
	}
}
