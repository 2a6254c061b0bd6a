package memory

import (
	"context"
	"sync"

	"sagemaker-deployer/internal/core/domain"
	output "sagemaker-deployer/internal/core/ports/output"
)

// Locker serializes deployments within one process only. Separate processes,
// such as two CLI runs, need the postgres or kubernetes backend.
type Locker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocker() *Locker {
	return &Locker{held: make(map[string]struct{})}
}

func (l *Locker) TryLock(_ context.Context, modelName string) (output.ReleaseFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[modelName]; ok {
		return nil, domain.ErrDeploymentInProgress
	}
	l.held[modelName] = struct{}{}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, modelName)
			l.mu.Unlock()
		})
		return nil
	}, nil
}

var _ output.DeploymentLocker = (*Locker)(nil)
