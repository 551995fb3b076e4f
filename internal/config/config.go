package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/transcriptomics-backend/internal/platform/envutil"
)

// Config is assembled from environment variables once at startup and handed
// to the components that need it.
type Config struct {
	LogMode string
	Port    string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresName     string

	// AuthzMode selects the request authorizer: "allow-all", "api-key",
	// "jwt" or "remote".
	AuthzMode         string
	APIKeyHash        string
	JWTSecret         string
	RemotePolicyURL   string
	CORSAllowOrigins  []string
	ServiceInfoPath   string
	NormalizeParallel int
}

func Load() *Config {
	return &Config{
		LogMode:          envutil.String("LOG_MODE", "development"),
		Port:             envutil.String("PORT", "5000"),
		PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
		PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
		PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
		PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
		PostgresName:     envutil.String("POSTGRES_NAME", "transcriptomics"),
		AuthzMode:        envutil.String("AUTHZ_MODE", "allow-all"),
		APIKeyHash:       envutil.String("AUTHZ_API_KEY_HASH", ""),
		JWTSecret:        envutil.String("AUTHZ_JWT_SECRET", ""),
		RemotePolicyURL:  envutil.String("AUTHZ_POLICY_URL", ""),
		CORSAllowOrigins: []string{envutil.String("CORS_ALLOW_ORIGIN", "http://localhost:3000")},
		ServiceInfoPath:  envutil.String("SERVICE_INFO_PATH", ""),
		// 0 means one worker per sample column, capped at GOMAXPROCS.
		NormalizeParallel: envutil.Int("NORMALIZE_PARALLEL", 0),
	}
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.PostgresUser, c.PostgresPassword, c.PostgresHost, c.PostgresPort, c.PostgresName)
}

// ServiceInfo is the document served by GET /service-info.
type ServiceInfo struct {
	ID           string `yaml:"id" json:"id"`
	Name         string `yaml:"name" json:"name"`
	Description  string `yaml:"description" json:"description"`
	Version      string `yaml:"version" json:"version"`
	Environment  string `yaml:"environment" json:"environment"`
	Organization struct {
		Name string `yaml:"name" json:"name"`
		URL  string `yaml:"url" json:"url"`
	} `yaml:"organization" json:"organization"`
}

const Version = "1.1.0"

func defaultServiceInfo() ServiceInfo {
	si := ServiceInfo{
		ID:          "transcriptomics-backend",
		Name:        "Transcriptomics Data Service",
		Description: "Stores per-gene per-sample expression quantities and recomputes normalized values on demand.",
		Version:     Version,
		Environment: "prod",
	}
	si.Organization.Name = "yungbote"
	si.Organization.URL = "https://github.com/yungbote"
	return si
}

// LoadServiceInfo returns the default service-info document, overridden by
// the YAML file at path when it exists.
func (c *Config) LoadServiceInfo() (ServiceInfo, error) {
	si := defaultServiceInfo()
	if c.ServiceInfoPath == "" {
		return si, nil
	}
	raw, err := os.ReadFile(c.ServiceInfoPath)
	if err != nil {
		if os.IsNotExist(err) {
			return si, nil
		}
		return si, err
	}
	if err := yaml.Unmarshal(raw, &si); err != nil {
		return si, fmt.Errorf("parsing service-info override: %w", err)
	}
	return si, nil
}
