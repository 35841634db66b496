package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"` // mysql | postgres
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	OpenAI struct {
		APIKey string `yaml:"apiKey"`
		Model  string `yaml:"model"`
	} `yaml:"openai"`

	Monitor struct {
		Interval                time.Duration `yaml:"interval"`     // between scheduled batches
		BatchBudget             time.Duration `yaml:"batchBudget"`  // wall-clock cap per batch
		FetchTimeout            time.Duration `yaml:"fetchTimeout"` // per-document HTTP timeout
		MinContentLength        int           `yaml:"minContentLength"`
		StaleBaselineDays       int           `yaml:"staleBaselineDays"`
		ReplacementRatio        float64       `yaml:"replacementRatio"`
		ReplacementMinSentences int           `yaml:"replacementMinSentences"`
	} `yaml:"monitor"`

	Notify struct {
		ProductBaseURL string `yaml:"productBaseURL"`
	} `yaml:"notify"`
}

// Load baca file config.yaml
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Monitor.Interval <= 0 {
		c.Monitor.Interval = 6 * time.Hour
	}
	if c.Monitor.BatchBudget <= 0 {
		c.Monitor.BatchBudget = 300 * time.Second
	}
	if c.Monitor.FetchTimeout <= 0 {
		c.Monitor.FetchTimeout = 15 * time.Second
	}
	if c.Monitor.MinContentLength <= 0 {
		c.Monitor.MinContentLength = 200
	}
	if c.Monitor.StaleBaselineDays <= 0 {
		c.Monitor.StaleBaselineDays = 30
	}
	if c.Monitor.ReplacementRatio <= 0 {
		c.Monitor.ReplacementRatio = 0.8
	}
	if c.Monitor.ReplacementMinSentences <= 0 {
		c.Monitor.ReplacementMinSentences = 100
	}
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds a lib/pq connection string.
func (c *Config) PostgresDSN() string {
	ssl := c.Database.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		ssl,
	)
}
