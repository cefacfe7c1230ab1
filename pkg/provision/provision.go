// Package provision ensures configured repositories have backing storage.
package provision

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/gitgate/gitgate/pkg/proto"
	"github.com/gitgate/gitgate/pkg/storage"
)

// Checker creates missing bare repositories for registered repos. It must
// run to completion before the transport starts accepting connections; an
// unprovisioned repo would make the underlying git process fail.
type Checker struct {
	storage storage.Storage
	logger  *log.Logger
}

// NewChecker returns a new Checker.
func NewChecker(st storage.Storage, logger *log.Logger) *Checker {
	return &Checker{
		storage: st,
		logger:  logger.WithPrefix("provision"),
	}
}

// Ensure checks every repository's derived storage address and creates the
// missing ones. A creation failure is logged and the repo is skipped; the
// server continues with the reduced set. The aggregate error wraps
// proto.ErrProvisioningFailure per failed repo.
func (c *Checker) Ensure(ctx context.Context, repos []*proto.Repository) error {
	var errs []error
	for _, repo := range repos {
		name := repo.StorageName()
		ok, err := c.storage.Exists(ctx, name)
		if err != nil {
			c.logger.Error("failed to check repo directory", "repo", name, "err", err)
			errs = append(errs, fmt.Errorf("%w: %s: %s", proto.ErrProvisioningFailure, name, err))
			continue
		}
		if ok {
			continue
		}

		c.logger.Info("creating repo directory", "repo", name)
		if err := c.storage.Create(ctx, name); err != nil {
			c.logger.Error("failed to create repo directory", "repo", name, "err", err)
			errs = append(errs, fmt.Errorf("%w: %s: %s", proto.ErrProvisioningFailure, name, err))
		}
	}

	return errors.Join(errs...)
}
