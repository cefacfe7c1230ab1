package proto

import (
	"sync"
)

// Repository is a configured repository and its runtime state. Repositories
// are created at startup from static configuration, or dynamically through
// the registry, and live until process shutdown.
type Repository struct {
	// Name uniquely identifies the repository within the registry. The
	// on-disk storage address is always derived from it, never set
	// independently.
	Name string `yaml:"name"`

	// AnonymousRead allows unauthenticated read operations when true. It is
	// a required field; a nil value marks a malformed entry.
	AnonymousRead *bool `yaml:"anonymous_read"`

	// Users is the list of user bindings for this repository. Order is
	// irrelevant.
	Users []UserBinding `yaml:"users"`

	// Triggers maps operation kinds to success callbacks. Only attachable
	// through the API, not through configuration files.
	Triggers map[OperationKind]Trigger `yaml:"-"`

	mu           sync.Mutex
	lastSnapshot *OperationSnapshot
	hookChannel  any
}

// StorageName returns the derived storage address of the repository.
func (r *Repository) StorageName() string {
	return r.Name + ".git"
}

// AllowsAnonRead returns whether the repository allows unauthenticated
// reads. A missing AnonymousRead field counts as false.
func (r *Repository) AllowsAnonRead() bool {
	return r.AnonymousRead != nil && *r.AnonymousRead
}

// SetLastSnapshot records the metadata of a push attempt. Writes are
// last-write-wins across concurrent pushes; the lock only prevents torn
// reads.
func (r *Repository) SetLastSnapshot(s OperationSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSnapshot = &s
}

// LastSnapshot returns the metadata of the last recorded push, if any.
func (r *Repository) LastSnapshot() (OperationSnapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastSnapshot == nil {
		return OperationSnapshot{}, false
	}

	return *r.lastSnapshot, true
}

// SetHookChannel stores the repository's hook subscription handle. It is
// owned by the hook bridge; use the bridge to get the typed channel.
func (r *Repository) SetHookChannel(ch any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hookChannel = ch
}

// HookChannel returns the repository's hook subscription handle.
func (r *Repository) HookChannel() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hookChannel
}

// Bool returns a pointer to b. It is a convenience for building repository
// entries in code.
func Bool(b bool) *bool {
	return &b
}
