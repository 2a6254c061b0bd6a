package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var deploymentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "sagemaker_deployer_deployments_total",
		Help: "Total number of endpoint cutover runs by model, endpoint action and result",
	},
	[]string{"model", "action", "result"},
)

var readinessWaitSeconds = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "sagemaker_deployer_readiness_wait_seconds",
		Help:    "Time spent waiting for an endpoint to reach InService",
		Buckets: []float64{30, 60, 120, 300, 600, 900, 1200, 1800, 3600},
	},
	[]string{"model", "result"},
)

var cleanupFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "sagemaker_deployer_cleanup_failures_total",
		Help: "Total number of superseded resources that could not be deleted",
	},
	[]string{"model", "kind"},
)

var registeredPackagesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "sagemaker_deployer_registered_packages_total",
		Help: "Total number of model packages registered",
	},
	[]string{"model"},
)

var stagedObjectsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "sagemaker_deployer_staged_objects_total",
		Help: "Total number of dataset objects written to the model bucket",
	},
	[]string{"model", "channel"},
)
