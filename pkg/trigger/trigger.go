// Package trigger invokes per-repository success callbacks.
package trigger

import (
	"github.com/charmbracelet/log"
	"github.com/gitgate/gitgate/pkg/proto"
)

// Invoker runs a repository's success trigger for an operation kind. It
// must only be called after authorization succeeds.
type Invoker struct {
	logger *log.Logger
}

// NewInvoker returns a new Invoker.
func NewInvoker(logger *log.Logger) *Invoker {
	return &Invoker{
		logger: logger.WithPrefix("trigger"),
	}
}

// Invoke calls the repository's trigger for kind, if one is declared, with
// the repo, the kind, and the operation handle. A panicking trigger is
// caught and logged so a faulty integration cannot take down the
// authorization path.
func (i *Invoker) Invoke(kind proto.OperationKind, repo *proto.Repository, op proto.Op) {
	if repo == nil || repo.Triggers == nil {
		return
	}

	fn, ok := repo.Triggers[kind]
	if !ok || fn == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("trigger panicked", "repo", repo.Name, "kind", kind, "err", r)
		}
	}()

	i.logger.Info("on successful triggered", "repo", repo.Name, "kind", kind)
	fn(repo, kind, op)
}
