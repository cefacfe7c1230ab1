package hooks

import (
	"sync"

	"github.com/gitgate/gitgate/pkg/proto"
	"github.com/google/uuid"
)

// DecisionFunc resumes the underlying git process. It receives whether the
// hook was accepted and, on rejection, a reason.
type DecisionFunc func(accepted bool, reason string)

// Event is a single hook firing scoped to one repository. Events are
// ephemeral; they are created per firing and discarded once decided.
type Event struct {
	id   uuid.UUID
	repo *proto.Repository
	hook string
	args []HookArg

	once   sync.Once
	decide DecisionFunc
}

// ID returns the event's delivery ID.
func (e *Event) ID() uuid.UUID {
	return e.id
}

// Repo returns the repository the hook fired for.
func (e *Event) Repo() *proto.Repository {
	return e.repo
}

// Hook returns the hook name.
func (e *Event) Hook() string {
	return e.hook
}

// Args returns the hook arguments.
func (e *Event) Args() []HookArg {
	return e.args
}

// Cancelable reports whether the event's decision gates the git operation.
func (e *Event) Cancelable() bool {
	return Cancelable(e.hook)
}

// Accept resumes the git process. Exactly one decision wins; later calls to
// Accept or Reject are no-ops.
func (e *Event) Accept() {
	e.once.Do(func() {
		if e.decide != nil {
			e.decide(true, "")
		}
	})
}

// Reject aborts the git operation with a reason. Exactly one decision wins.
func (e *Event) Reject(reason string) {
	e.once.Do(func() {
		if e.decide != nil {
			e.decide(false, reason)
		}
	})
}
