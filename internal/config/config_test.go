package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sagemaker-deployer/internal/core/domain"
)

func setDeployEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MODEL_NAME", "churn")
	t.Setenv("MODEL_DESC", "customer churn classifier")
	t.Setenv("SAGEMAKER_EXECUTION_ROLE_ARN", "arn:aws:iam::123456789012:role/sagemaker")
}

func TestLoad_Defaults(t *testing.T) {
	setDeployEnv(t)
	// Empty values count as unset.
	for _, env := range []string{"AWS_REGION", "BUCKET", "ENDPOINT_INSTANCE_TYPE", "LOCK_BACKEND", "READY_TIMEOUT"} {
		t.Setenv(env, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "us-east-1", cfg.AWS.Region)
	assert.Equal(t, "circleci-sagemaker", cfg.Deploy.Bucket)
	assert.Equal(t, "ml.t2.medium", cfg.Deploy.InstanceType)
	assert.Equal(t, 1, cfg.Deploy.InstanceCount)
	assert.Equal(t, 60*time.Second, cfg.Deploy.PollInterval)
	assert.Equal(t, 30*time.Minute, cfg.Deploy.ReadyTimeout)
	assert.Equal(t, LockBackendMemory, cfg.Lock.Backend)
	assert.Equal(t, uint64(5), cfg.Retry.MaxRetries)
	assert.NoError(t, cfg.ValidateDeploy())
}

func TestLoad_EnvOverrides(t *testing.T) {
	setDeployEnv(t)
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("ENDPOINT_INSTANCE_COUNT", "3")
	t.Setenv("READY_TIMEOUT", "45m")
	t.Setenv("LOCK_BACKEND", "Kubernetes")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "eu-west-1", cfg.AWS.Region)
	assert.Equal(t, 3, cfg.Deploy.InstanceCount)
	assert.Equal(t, 45*time.Minute, cfg.Deploy.ReadyTimeout)
	assert.Equal(t, LockBackendKubernetes, cfg.Lock.Backend)
}

func TestLoad_UnknownLockBackend(t *testing.T) {
	t.Setenv("LOCK_BACKEND", "redis")

	_, err := Load()
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestValidateDeploy(t *testing.T) {
	t.Run("reports every missing variable", func(t *testing.T) {
		cfg := &Config{
			AWS:    AWSConfig{Region: "us-east-1"},
			Deploy: DeployConfig{ModelName: "churn", Bucket: "b", InstanceType: "ml.t2.medium", InstanceCount: 1},
		}
		err := cfg.ValidateDeploy()
		assert.ErrorIs(t, err, domain.ErrMissingConfig)
		assert.Contains(t, err.Error(), "MODEL_DESC")
		assert.Contains(t, err.Error(), "SAGEMAKER_EXECUTION_ROLE_ARN")
		assert.NotContains(t, err.Error(), "MODEL_NAME")
	})

	t.Run("rejects zero instances", func(t *testing.T) {
		cfg := &Config{
			AWS: AWSConfig{Region: "us-east-1"},
			Deploy: DeployConfig{
				ModelName: "churn", ModelDesc: "d", RoleARN: "arn", Bucket: "b",
				InstanceType: "ml.t2.medium", InstanceCount: 0,
			},
		}
		err := cfg.ValidateDeploy()
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "ENDPOINT_INSTANCE_COUNT")
	})
}

func TestValidateStage(t *testing.T) {
	cfg := &Config{AWS: AWSConfig{Region: "us-east-1"}, Deploy: DeployConfig{Bucket: "b"}}
	err := cfg.ValidateStage()
	assert.ErrorIs(t, err, domain.ErrMissingConfig)
	assert.Contains(t, err.Error(), "MODEL_NAME")

	cfg.Deploy.ModelName = "churn"
	assert.NoError(t, cfg.ValidateStage())
}
