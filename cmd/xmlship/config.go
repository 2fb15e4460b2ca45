package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type yamlConfig struct {
	Endpoint  string            `yaml:"endpoint"`
	Timeout   string            `yaml:"timeout"`
	Accept    string            `yaml:"accept"`
	Headers   map[string]string `yaml:"headers"`
	OutputDir string            `yaml:"output_dir"`
	Retries   int               `yaml:"retries"`
	Database  yamlDatabase      `yaml:"database"`
}

type yamlDatabase struct {
	Driver  string `yaml:"driver"`
	DSN     string `yaml:"dsn"`
	OrderBy string `yaml:"order_by"`
	Limit   int    `yaml:"limit"`
}

type appConfig struct {
	Endpoint  string
	Timeout   time.Duration
	Accept    string
	Headers   map[string]string
	OutputDir string
	Retries   int
	Database  dbConfig
}

type dbConfig struct {
	Driver  string
	DSN     string
	OrderBy string
	Limit   int
}

func loadConfig(path string) (appConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return appConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var dto yamlConfig
	if err := yaml.Unmarshal(b, &dto); err != nil {
		return appConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	return mapConfig(dto)
}

func mapConfig(dto yamlConfig) (appConfig, error) {
	cfg := appConfig{
		Endpoint:  dto.Endpoint,
		Accept:    dto.Accept,
		Headers:   dto.Headers,
		OutputDir: dto.OutputDir,
		Retries:   dto.Retries,
		Database: dbConfig{
			Driver:  dto.Database.Driver,
			DSN:     dto.Database.DSN,
			OrderBy: dto.Database.OrderBy,
			Limit:   dto.Database.Limit,
		},
	}

	if dto.Timeout != "" {
		timeout, err := time.ParseDuration(dto.Timeout)
		if err != nil {
			return appConfig{}, fmt.Errorf("parse timeout %q: %w", dto.Timeout, err)
		}
		cfg.Timeout = timeout
	}

	switch cfg.Database.Driver {
	case "mysql", "sqlite", "sqlite3":
	case "":
		return appConfig{}, fmt.Errorf("database driver is required")
	default:
		return appConfig{}, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	if cfg.Database.DSN == "" {
		return appConfig{}, fmt.Errorf("database dsn is required")
	}

	return cfg, nil
}
