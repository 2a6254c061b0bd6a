package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"sagemaker-deployer/internal/core/domain"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	AWS        AWSConfig
	Deploy     DeployConfig
	Retry      RetryConfig
	Lock       LockConfig
	Kubernetes KubernetesConfig
	Logger     LoggerConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the PostgreSQL connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type AWSConfig struct {
	Region string
}

// DeployConfig is the platform-facing configuration of one model
type DeployConfig struct {
	ModelName     string
	ModelDesc     string
	RoleARN       string
	Bucket        string
	InstanceType  string
	InstanceCount int
	PollInterval  time.Duration
	ReadyTimeout  time.Duration
}

type RetryConfig struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
	MaxRetries      uint64
}

const (
	LockBackendMemory     = "memory"
	LockBackendPostgres   = "postgres"
	LockBackendKubernetes = "kubernetes"
)

type LockConfig struct {
	Backend string
}

type KubernetesConfig struct {
	InCluster      bool
	KubeConfigPath string
	Namespace      string
	Identity       string
	LeaseDuration  time.Duration
}

type LoggerConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("DB_ENABLED", false)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "sagemaker_deployer")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("BUCKET", "circleci-sagemaker")
	v.SetDefault("ENDPOINT_INSTANCE_TYPE", "ml.t2.medium")
	v.SetDefault("ENDPOINT_INSTANCE_COUNT", 1)
	v.SetDefault("POLL_INTERVAL", "60s")
	v.SetDefault("READY_TIMEOUT", "30m")
	v.SetDefault("RETRY_INITIAL_INTERVAL", "1s")
	v.SetDefault("RETRY_MAX_INTERVAL", "30s")
	v.SetDefault("RETRY_MAX_ELAPSED_TIME", "2m")
	v.SetDefault("RETRY_MAX_RETRIES", 5)
	v.SetDefault("LOCK_BACKEND", LockBackendMemory)
	v.SetDefault("K8S_IN_CLUSTER", false)
	v.SetDefault("K8S_KUBECONFIG", "")
	v.SetDefault("K8S_NAMESPACE", "default")
	v.SetDefault("K8S_IDENTITY", "")
	v.SetDefault("K8S_LEASE_DURATION", "1h")
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")

	// Env
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Enabled:         v.GetBool("DB_ENABLED"),
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		AWS: AWSConfig{
			Region: v.GetString("AWS_REGION"),
		},
		Deploy: DeployConfig{
			ModelName:     v.GetString("MODEL_NAME"),
			ModelDesc:     v.GetString("MODEL_DESC"),
			RoleARN:       v.GetString("SAGEMAKER_EXECUTION_ROLE_ARN"),
			Bucket:        v.GetString("BUCKET"),
			InstanceType:  v.GetString("ENDPOINT_INSTANCE_TYPE"),
			InstanceCount: v.GetInt("ENDPOINT_INSTANCE_COUNT"),
			PollInterval:  v.GetDuration("POLL_INTERVAL"),
			ReadyTimeout:  v.GetDuration("READY_TIMEOUT"),
		},
		Retry: RetryConfig{
			InitialInterval: v.GetDuration("RETRY_INITIAL_INTERVAL"),
			MaxInterval:     v.GetDuration("RETRY_MAX_INTERVAL"),
			MaxElapsedTime:  v.GetDuration("RETRY_MAX_ELAPSED_TIME"),
			MaxRetries:      v.GetUint64("RETRY_MAX_RETRIES"),
		},
		Lock: LockConfig{
			Backend: strings.ToLower(v.GetString("LOCK_BACKEND")),
		},
		Kubernetes: KubernetesConfig{
			InCluster:      v.GetBool("K8S_IN_CLUSTER"),
			KubeConfigPath: v.GetString("K8S_KUBECONFIG"),
			Namespace:      v.GetString("K8S_NAMESPACE"),
			Identity:       v.GetString("K8S_IDENTITY"),
			LeaseDuration:  v.GetDuration("K8S_LEASE_DURATION"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
	}

	switch cfg.Lock.Backend {
	case LockBackendMemory, LockBackendPostgres, LockBackendKubernetes:
	default:
		return nil, fmt.Errorf("%w: LOCK_BACKEND %q", domain.ErrInvalidConfig, cfg.Lock.Backend)
	}

	return cfg, nil
}

// ============================================================================
// Validation
// ============================================================================

var validate = validator.New()

type requirement struct {
	env   string
	value interface{}
	tag   string
}

// ValidateDeploy checks every setting a register or deploy run needs.
func (c *Config) ValidateDeploy() error {
	return check([]requirement{
		{"MODEL_NAME", c.Deploy.ModelName, "required"},
		{"MODEL_DESC", c.Deploy.ModelDesc, "required"},
		{"SAGEMAKER_EXECUTION_ROLE_ARN", c.Deploy.RoleARN, "required"},
		{"AWS_REGION", c.AWS.Region, "required"},
		{"BUCKET", c.Deploy.Bucket, "required"},
		{"ENDPOINT_INSTANCE_TYPE", c.Deploy.InstanceType, "required"},
		{"ENDPOINT_INSTANCE_COUNT", c.Deploy.InstanceCount, "min=1"},
	})
}

// ValidateStage checks the settings dataset staging needs.
func (c *Config) ValidateStage() error {
	return check([]requirement{
		{"MODEL_NAME", c.Deploy.ModelName, "required"},
		{"AWS_REGION", c.AWS.Region, "required"},
		{"BUCKET", c.Deploy.Bucket, "required"},
	})
}

// check reports every failing setting by its environment name. Missing values
// take precedence over malformed ones.
func check(reqs []requirement) error {
	var missing, invalid []string
	for _, r := range reqs {
		if err := validate.Var(r.value, r.tag); err != nil {
			if r.tag == "required" {
				missing = append(missing, r.env)
			} else {
				invalid = append(invalid, r.env)
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrMissingConfig, strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, strings.Join(invalid, ", "))
	}
	return nil
}
