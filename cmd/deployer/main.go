package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"sagemaker-deployer/internal/adapters/secondary/postgres"
	"sagemaker-deployer/internal/adapters/secondary/s3"
	"sagemaker-deployer/internal/adapters/secondary/sagemaker"
	"sagemaker-deployer/internal/bootstrap"
	"sagemaker-deployer/internal/config"
	"sagemaker-deployer/internal/core/domain"
	output "sagemaker-deployer/internal/core/ports/output"
	"sagemaker-deployer/internal/core/services"
)

type stageCmd struct {
	Objects []string `arg:"--object,separate,help:remote source as s3://bucket/key=channel[/file]"`
	Files   []string `arg:"--file,separate,help:local source as path=channel[/file]"`
}

type registerCmd struct {
	Image              string   `arg:"--image,required,help:inference container image"`
	ModelDataURL       string   `arg:"--model-data-url,required,help:s3 URI of the trained model archive"`
	PackageDescription string   `arg:"--package-description,help:description of this package version"`
	ApprovalStatus     string   `arg:"--approval-status,help:Approved or Rejected or PendingManualApproval"`
	ContentTypes       []string `arg:"--content-type,separate,help:supported request content types"`
}

type deployCmd struct {
	RoleARN       string        `arg:"--role-arn,help:execution role (overrides SAGEMAKER_EXECUTION_ROLE_ARN)"`
	InstanceType  string        `arg:"--instance-type,help:endpoint instance type (overrides ENDPOINT_INSTANCE_TYPE)"`
	InstanceCount int           `arg:"--instance-count,help:endpoint instance count (overrides ENDPOINT_INSTANCE_COUNT)"`
	PollInterval  time.Duration `arg:"--poll-interval,help:readiness poll interval (overrides POLL_INTERVAL)"`
	ReadyTimeout  time.Duration `arg:"--ready-timeout,help:readiness deadline (overrides READY_TIMEOUT)"`
}

type args struct {
	Stage    *stageCmd    `arg:"subcommand:stage" help:"copy datasets into the model's bucket prefix"`
	Register *registerCmd `arg:"subcommand:register" help:"register a trained model package"`
	Deploy   *deployCmd   `arg:"subcommand:deploy" help:"deploy the latest approved package behind the model endpoint"`

	ModelName string `arg:"--model-name,help:logical model name (overrides MODEL_NAME)"`
	ModelDesc string `arg:"--model-desc,help:model description (overrides MODEL_DESC)"`
	Region    string `arg:"--region,help:AWS region (overrides AWS_REGION)"`
	Bucket    string `arg:"--bucket,help:staging bucket (overrides BUCKET)"`
	LogLevel  string `arg:"--log-level,help:log level (overrides LOGGER_LEVEL)"`
}

func (args) Description() string {
	return "sagemaker-deployer stages datasets, registers model packages and cuts endpoints over to the latest approved package"
}

func main() {
	var a args
	p := arg.MustParse(&a)
	if p.Subcommand() == nil {
		p.Fail("missing subcommand: stage, register or deploy")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	applyOverrides(cfg, &a)
	initLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch {
	case a.Stage != nil:
		err = runStage(ctx, cfg, a.Stage)
	case a.Register != nil:
		err = runRegister(ctx, cfg, a.Register)
	case a.Deploy != nil:
		err = runDeploy(ctx, cfg)
	}
	if err != nil {
		log.WithError(err).Error("command failed")
		stop()
		os.Exit(1)
	}
}

func applyOverrides(cfg *config.Config, a *args) {
	if a.ModelName != "" {
		cfg.Deploy.ModelName = a.ModelName
	}
	if a.ModelDesc != "" {
		cfg.Deploy.ModelDesc = a.ModelDesc
	}
	if a.Region != "" {
		cfg.AWS.Region = a.Region
	}
	if a.Bucket != "" {
		cfg.Deploy.Bucket = a.Bucket
	}
	if a.LogLevel != "" {
		cfg.Logger.Level = a.LogLevel
	}
	if d := a.Deploy; d != nil {
		if d.RoleARN != "" {
			cfg.Deploy.RoleARN = d.RoleARN
		}
		if d.InstanceType != "" {
			cfg.Deploy.InstanceType = d.InstanceType
		}
		if d.InstanceCount != 0 {
			cfg.Deploy.InstanceCount = d.InstanceCount
		}
		if d.PollInterval != 0 {
			cfg.Deploy.PollInterval = d.PollInterval
		}
		if d.ReadyTimeout != 0 {
			cfg.Deploy.ReadyTimeout = d.ReadyTimeout
		}
	}
}

func runStage(ctx context.Context, cfg *config.Config, cmd *stageCmd) error {
	if err := cfg.ValidateStage(); err != nil {
		return err
	}

	var objects []services.StageObject
	for _, spec := range cmd.Objects {
		obj, err := parseObject(spec)
		if err != nil {
			return err
		}
		objects = append(objects, obj)
	}
	for _, spec := range cmd.Files {
		obj, err := parseFile(spec)
		if err != nil {
			return err
		}
		objects = append(objects, obj)
	}
	if len(objects) == 0 {
		return errors.New("nothing to stage: pass --object or --file")
	}

	store, err := s3.NewClient(&cfg.AWS)
	if err != nil {
		return err
	}

	result, err := services.NewStagingService(store).Stage(ctx, services.StageRequest{
		ModelName: cfg.Deploy.ModelName,
		Bucket:    cfg.Deploy.Bucket,
		Objects:   objects,
	})
	if err != nil {
		return err
	}
	for channel, uri := range result.Channels {
		log.WithFields(log.Fields{"channel": channel, "uri": uri}).Info("channel ready")
	}
	return nil
}

func runRegister(ctx context.Context, cfg *config.Config, cmd *registerCmd) error {
	if err := cfg.ValidateDeploy(); err != nil {
		return err
	}

	client, err := sagemaker.NewClient(&cfg.AWS)
	if err != nil {
		return err
	}

	result, err := services.NewRegistrationService(client, bootstrap.RetryPolicy(cfg.Retry)).Register(ctx, services.RegisterRequest{
		ModelName:          cfg.Deploy.ModelName,
		Description:        cfg.Deploy.ModelDesc,
		PackageDescription: cmd.PackageDescription,
		Image:              cmd.Image,
		ModelDataURL:       cmd.ModelDataURL,
		ContentTypes:       cmd.ContentTypes,
		ApprovalStatus:     domain.ApprovalStatus(cmd.ApprovalStatus),
	})
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"group_arn":         result.GroupARN,
		"group_created":     result.GroupCreated,
		"model_package_arn": result.ModelPackageARN,
	}).Info("model package registered")
	return nil
}

func runDeploy(ctx context.Context, cfg *config.Config) error {
	if err := cfg.ValidateDeploy(); err != nil {
		return err
	}

	client, err := sagemaker.NewClient(&cfg.AWS)
	if err != nil {
		return err
	}

	var (
		pool   *pgxpool.Pool
		ledger output.DeploymentRepository
	)
	if cfg.Database.Enabled {
		pool, err = bootstrap.OpenPool(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()
		ledger = postgres.NewDeploymentRepository(pool)
	}

	locker, err := bootstrap.NewLocker(cfg, pool)
	if err != nil {
		return err
	}

	retry := bootstrap.RetryPolicy(cfg.Retry)
	waiter := services.NewReadinessWaiter(client, cfg.Deploy.PollInterval, cfg.Deploy.ReadyTimeout, retry)
	cutover := services.NewCutoverService(client, client, waiter, locker, ledger, retry)

	result, err := cutover.Deploy(ctx, services.DeployRequest{
		ModelName:     cfg.Deploy.ModelName,
		RoleARN:       cfg.Deploy.RoleARN,
		InstanceType:  cfg.Deploy.InstanceType,
		InstanceCount: cfg.Deploy.InstanceCount,
	})
	if err != nil {
		return err
	}

	for _, cerr := range result.CleanupErrors {
		log.WithError(cerr).Warn("superseded resource left behind")
	}
	log.WithFields(log.Fields{
		"endpoint_name":     cfg.Deploy.ModelName,
		"endpoint_arn":      result.EndpointARN,
		"model_package_arn": result.ModelPackage.ARN,
		"resource_name":     result.ResourceName,
		"action":            result.Action,
		"deleted":           result.Deleted,
	}).Info("endpoint is serving the latest approved model")
	return nil
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
