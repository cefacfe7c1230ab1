package jobs

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/gitgate/gitgate/pkg/config"
	"github.com/gitgate/gitgate/pkg/provision"
	"github.com/gitgate/gitgate/pkg/registry"
)

func init() {
	Register("provision-recheck", provisionRecheck{})
}

// provisionRecheck re-runs the startup provisioning pass on a schedule so
// repositories whose backing directories were removed at runtime get
// recreated. Disabled when no schedule is configured.
type provisionRecheck struct{}

// Spec implements Runner.
func (provisionRecheck) Spec(ctx context.Context) string {
	return config.FromContext(ctx).Jobs.ProvisionRecheck
}

// Func implements Runner.
func (provisionRecheck) Func(ctx context.Context) func() {
	logger := log.FromContext(ctx).WithPrefix("jobs.provision")
	reg := registry.FromContext(ctx)
	return func() {
		if reg == nil {
			return
		}

		checker := provision.NewChecker(reg.Storage(), logger)
		if err := checker.Ensure(ctx, reg.All()); err != nil {
			logger.Error("provision recheck failed", "err", err)
		}
	}
}
