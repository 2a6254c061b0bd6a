package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"sagemaker-deployer/internal/core/domain"
	output "sagemaker-deployer/internal/core/ports/output"
)

// CutoverService deploys the latest approved model package behind a stable
// endpoint name, then garbage-collects the models and endpoint configs that
// backed it before.
type CutoverService struct {
	registry    output.ModelRegistry
	control     output.ServingControlPlane
	waiter      *ReadinessWaiter
	locker      output.DeploymentLocker
	deployments output.DeploymentRepository
	retry       RetryPolicy

	now    func() time.Time
	suffix func() string

	// background runs started by Start
	mu         sync.Mutex
	closed     bool
	runs       sync.WaitGroup
	runCtx     context.Context
	cancelRuns context.CancelCauseFunc
}

func NewCutoverService(
	registry output.ModelRegistry,
	control output.ServingControlPlane,
	waiter *ReadinessWaiter,
	locker output.DeploymentLocker,
	deployments output.DeploymentRepository,
	retry RetryPolicy,
) *CutoverService {
	runCtx, cancelRuns := context.WithCancelCause(context.Background())
	return &CutoverService{
		registry:    registry,
		control:     control,
		waiter:      waiter,
		locker:      locker,
		deployments: deployments,
		retry:       retry,
		now:         time.Now,
		suffix:      domain.RandomSuffix,
		runCtx:      runCtx,
		cancelRuns:  cancelRuns,
	}
}

type DeployRequest struct {
	ModelName     string
	RoleARN       string
	InstanceType  string
	InstanceCount int
}

func (r DeployRequest) Validate() error {
	switch {
	case r.ModelName == "":
		return domain.ErrInvalidModelName
	case r.RoleARN == "":
		return domain.ErrInvalidRoleARN
	case r.InstanceType == "":
		return domain.ErrInvalidInstanceType
	case r.InstanceCount < 1:
		return domain.ErrInvalidInstanceCount
	}
	return domain.ValidateResourceName(r.ModelName)
}

type DeployResult struct {
	Deployment        *domain.Deployment
	ModelPackage      domain.ModelPackage
	ResourceName      string
	ModelARN          string
	EndpointConfigARN string
	EndpointARN       string
	Action            domain.EndpointAction
	Endpoint          *domain.Endpoint
	Deleted           []string
	CleanupErrors     []error
}

// Deploy runs one cutover synchronously. It holds the per-model lock for the
// whole run.
func (s *CutoverService) Deploy(ctx context.Context, req DeployRequest) (*DeployResult, error) {
	d, release, err := s.begin(ctx, req)
	if err != nil {
		return nil, err
	}
	defer s.release(ctx, req.ModelName, release)

	return s.run(ctx, req, d)
}

// Start acquires the lock and records the deployment, then runs the cutover in
// the background. The returned record is a snapshot taken before the run.
// After Shutdown it fails with domain.ErrShuttingDown.
func (s *CutoverService) Start(ctx context.Context, req DeployRequest) (*domain.Deployment, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, domain.ErrShuttingDown
	}
	s.runs.Add(1)
	s.mu.Unlock()

	d, release, err := s.begin(ctx, req)
	if err != nil {
		s.runs.Done()
		return nil, err
	}
	started := d.Clone()

	bg, cancel := context.WithCancelCause(context.WithoutCancel(ctx))
	stop := context.AfterFunc(s.runCtx, func() { cancel(context.Cause(s.runCtx)) })
	go func() {
		defer s.runs.Done()
		defer cancel(nil)
		defer stop()
		defer s.release(bg, req.ModelName, release)
		if _, err := s.run(bg, req, d); err != nil {
			log.WithError(err).WithField("deployment_id", d.ID).Error("background deployment failed")
		}
	}()

	return started, nil
}

// Shutdown interrupts background runs and waits until each has recorded its
// outcome and released its lock, or ctx is done. Interrupted runs are recorded
// as failed with domain.ErrShuttingDown.
func (s *CutoverService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancelRuns(domain.ErrShuttingDown)

	done := make(chan struct{})
	go func() {
		s.runs.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain deployments: %w", ctx.Err())
	}
}

func (s *CutoverService) begin(ctx context.Context, req DeployRequest) (*domain.Deployment, output.ReleaseFunc, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	release, err := s.locker.TryLock(ctx, req.ModelName)
	if err != nil {
		return nil, nil, fmt.Errorf("lock deployment of %s: %w", req.ModelName, err)
	}

	d, err := domain.NewDeployment(req.ModelName, req.InstanceType, req.InstanceCount)
	if err != nil {
		s.release(ctx, req.ModelName, release)
		return nil, nil, err
	}

	if s.deployments != nil {
		if err := s.deployments.Create(ctx, d); err != nil {
			s.release(ctx, req.ModelName, release)
			return nil, nil, fmt.Errorf("record deployment: %w", err)
		}
	}
	return d, release, nil
}

func (s *CutoverService) release(ctx context.Context, modelName string, release output.ReleaseFunc) {
	if err := release(context.WithoutCancel(ctx)); err != nil {
		log.WithError(err).WithField("model_name", modelName).Warn("release deployment lock failed")
	}
}

func (s *CutoverService) run(ctx context.Context, req DeployRequest, d *domain.Deployment) (*DeployResult, error) {
	logger := log.WithFields(log.Fields{
		"deployment_id": d.ID.String(),
		"model_name":    req.ModelName,
	})

	result := &DeployResult{Deployment: d}
	err := s.cutover(ctx, logger, req, d, result)

	outcome := "succeeded"
	if err != nil {
		outcome = "failed"
		d.MarkFailed(err.Error())
		logger.WithError(err).Error("deployment failed")
	} else {
		d.MarkSucceeded()
		logger.WithFields(log.Fields{
			"endpoint_arn": result.EndpointARN,
			"deleted":      len(result.Deleted),
		}).Info("deployment succeeded")
	}
	deploymentsTotal.WithLabelValues(req.ModelName, string(result.Action), outcome).Inc()

	s.record(ctx, logger, d)
	return result, err
}

// record persists the deployment's current state. Ledger failures never fail
// the cutover.
func (s *CutoverService) record(ctx context.Context, logger *log.Entry, d *domain.Deployment) {
	if s.deployments == nil {
		return
	}
	if err := s.deployments.Update(context.WithoutCancel(ctx), d); err != nil {
		logger.WithError(err).Warn("update deployment record failed")
	}
}

func (s *CutoverService) cutover(
	ctx context.Context,
	logger *log.Entry,
	req DeployRequest,
	d *domain.Deployment,
	result *DeployResult,
) error {
	// 1. Resolve the package to deploy. Nothing is mutated before this succeeds.
	pkg, err := s.ResolveLatestApproved(ctx, req.ModelName)
	if err != nil {
		return err
	}
	result.ModelPackage = pkg
	d.SetPackage(pkg.ARN)
	s.record(ctx, logger, d)
	logger.WithField("model_package_arn", pkg.ARN).Info("resolved latest approved model package")

	// 2. Snapshot what exists before creating anything
	snapshot, err := s.Snapshot(ctx, req.ModelName)
	if err != nil {
		return err
	}
	logger.WithFields(log.Fields{
		"models":           len(snapshot.Models),
		"endpoint_configs": len(snapshot.EndpointConfigs),
		"endpoints":        len(snapshot.Endpoints),
	}).Info("captured prior resources")

	// 3. New model and endpoint config share one unique name
	name := domain.NewResourceName(req.ModelName, s.now(), s.suffix())
	if err := domain.ValidateResourceName(name); err != nil {
		return err
	}
	result.ResourceName = name

	modelARN, err := s.control.CreateModel(ctx, name, req.RoleARN, []domain.ContainerDefinition{
		{ModelPackageName: pkg.ARN},
	})
	if err != nil {
		return fmt.Errorf("create model %s: %w", name, err)
	}
	result.ModelARN = modelARN
	logger.WithField("model_arn", modelARN).Info("created model")

	configARN, err := s.control.CreateEndpointConfig(ctx, name, []domain.ProductionVariant{
		{
			VariantName:   domain.DefaultVariantName,
			ModelName:     name,
			InstanceType:  req.InstanceType,
			InstanceCount: req.InstanceCount,
			InitialWeight: domain.DefaultVariantWeight,
		},
	})
	if err != nil {
		return fmt.Errorf("create endpoint config %s: %w", name, err)
	}
	result.EndpointConfigARN = configARN
	logger.WithField("endpoint_config_arn", configARN).Info("created endpoint config")

	// 4. Update in place when the stable endpoint exists, otherwise create it
	var endpointARN string
	if snapshot.HasEndpoint(req.ModelName) {
		result.Action = domain.EndpointActionUpdate
		endpointARN, err = s.control.UpdateEndpoint(ctx, req.ModelName, name)
	} else {
		result.Action = domain.EndpointActionCreate
		endpointARN, err = s.control.CreateEndpoint(ctx, req.ModelName, name)
	}
	d.SetResources(name, result.Action, endpointARN)
	s.record(ctx, logger, d)
	if err != nil {
		return fmt.Errorf("%s endpoint %s: %w", result.Action, req.ModelName, err)
	}
	result.EndpointARN = endpointARN
	logger.WithFields(log.Fields{
		"endpoint_arn": endpointARN,
		"action":       result.Action,
	}).Info("endpoint cutover requested")

	// 5. Wait for the endpoint to serve the new config
	start := time.Now()
	ep, err := s.waiter.Wait(ctx, req.ModelName, name)
	waitOutcome := "ready"
	if err != nil {
		waitOutcome = "failed"
	}
	readinessWaitSeconds.WithLabelValues(req.ModelName, waitOutcome).Observe(time.Since(start).Seconds())
	if err != nil {
		return err
	}
	result.Endpoint = ep

	// 6. Only now is it safe to remove what backed the endpoint before
	s.cleanup(ctx, logger, req.ModelName, name, snapshot, d, result)
	return nil
}

// ResolveLatestApproved returns the newest approved package of the model's group.
func (s *CutoverService) ResolveLatestApproved(ctx context.Context, modelName string) (domain.ModelPackage, error) {
	packages, err := retryRead(ctx, s.retry, "list model packages", func() ([]domain.ModelPackage, error) {
		return s.registry.ListModelPackages(ctx, output.ModelPackageFilter{
			GroupName:      modelName,
			ApprovalStatus: domain.ApprovalStatusApproved,
			SortBy:         output.SortByCreationTime,
			SortOrder:      output.SortOrderDescending,
		})
	})
	if err != nil {
		return domain.ModelPackage{}, fmt.Errorf("list model packages of %s: %w", modelName, err)
	}

	pkg, err := domain.LatestApproved(packages)
	if err != nil {
		return domain.ModelPackage{}, fmt.Errorf("model package group %s: %w", modelName, err)
	}
	return pkg, nil
}

// Snapshot lists the resources a deployment of modelName supersedes. The
// platform filters by substring, so results are narrowed to names this tool
// generates for modelName and to the endpoint named exactly modelName.
func (s *CutoverService) Snapshot(ctx context.Context, modelName string) (domain.Snapshot, error) {
	models, err := retryRead(ctx, s.retry, "list models", func() ([]domain.ServingModel, error) {
		return s.control.ListModels(ctx, modelName)
	})
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("list models of %s: %w", modelName, err)
	}

	configs, err := retryRead(ctx, s.retry, "list endpoint configs", func() ([]domain.EndpointConfig, error) {
		return s.control.ListEndpointConfigs(ctx, modelName)
	})
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("list endpoint configs of %s: %w", modelName, err)
	}

	endpoints, err := retryRead(ctx, s.retry, "list endpoints", func() ([]domain.Endpoint, error) {
		return s.control.ListEndpoints(ctx, modelName)
	})
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("list endpoints of %s: %w", modelName, err)
	}

	return domain.Snapshot{
		Models: lo.Filter(models, func(m domain.ServingModel, _ int) bool {
			return domain.IsGeneratedName(modelName, m.Name)
		}),
		EndpointConfigs: lo.Filter(configs, func(c domain.EndpointConfig, _ int) bool {
			return domain.IsGeneratedName(modelName, c.Name)
		}),
		Endpoints: lo.Filter(endpoints, func(e domain.Endpoint, _ int) bool {
			return e.Name == modelName
		}),
	}, nil
}

// cleanup deletes every snapshot model and endpoint config. Failures are
// recorded and do not stop the remaining deletions.
func (s *CutoverService) cleanup(
	ctx context.Context,
	logger *log.Entry,
	modelName string,
	current string,
	snapshot domain.Snapshot,
	d *domain.Deployment,
	result *DeployResult,
) {
	type target struct {
		kind   string
		name   string
		delete func(context.Context, string) error
	}

	targets := make([]target, 0, len(snapshot.Models)+len(snapshot.EndpointConfigs))
	for _, m := range snapshot.Models {
		targets = append(targets, target{kind: "model", name: m.Name, delete: s.control.DeleteModel})
	}
	for _, c := range snapshot.EndpointConfigs {
		targets = append(targets, target{kind: "endpoint_config", name: c.Name, delete: s.control.DeleteEndpointConfig})
	}

	for _, t := range targets {
		if t.name == current {
			continue
		}
		entry := logger.WithFields(log.Fields{"kind": t.kind, "name": t.name})
		if err := t.delete(ctx, t.name); err != nil {
			cleanupFailuresTotal.WithLabelValues(modelName, t.kind).Inc()
			d.RecordCleanupFailure(t.name, err.Error())
			result.CleanupErrors = append(result.CleanupErrors, fmt.Errorf("delete %s %s: %w", t.kind, t.name, err))
			entry.WithError(err).Warn("delete superseded resource failed")
			continue
		}
		d.RecordDeleted(t.name)
		result.Deleted = append(result.Deleted, t.name)
		entry.Info("deleted superseded resource")
	}
}
