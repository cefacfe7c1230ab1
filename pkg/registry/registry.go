// Package registry holds the set of configured repositories.
package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gitgate/gitgate/pkg/proto"
	"github.com/gitgate/gitgate/pkg/storage"
	"github.com/gitgate/gitgate/pkg/utils"
)

// Registry is the owned, in-memory set of repositories. It is read-mostly
// after startup; lookups are linear because the set is small and static.
type Registry struct {
	storage storage.Storage
	logger  *log.Logger

	mu    sync.RWMutex
	repos []*proto.Repository
}

// New returns a new Registry backed by the given storage.
func New(st storage.Storage, logger *log.Logger) *Registry {
	return &Registry{
		storage: st,
		logger:  logger.WithPrefix("registry"),
	}
}

// Register adds a candidate repository to the registry. A repository missing
// its name or anonymous-read flag is skipped with a log message and
// proto.ErrInvalidConfig; registration of the remaining entries continues.
func (r *Registry) Register(repo *proto.Repository) error {
	if repo.Name == "" || repo.AnonymousRead == nil {
		r.logger.Error("bad repo entry, missing name or anonymous_read", "repo", repo.Name)
		return proto.ErrInvalidConfig
	}
	if err := utils.ValidateRepo(repo.Name); err != nil {
		r.logger.Error("bad repo name", "repo", repo.Name, "err", err)
		return fmt.Errorf("%w: %s", proto.ErrInvalidConfig, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookupLocked(repo.Name) != nil {
		r.logger.Error("repo already exists", "repo", repo.Name)
		return proto.ErrRepoExist
	}

	r.repos = append(r.repos, repo)

	return nil
}

// Lookup returns the repository whose derived storage address matches name.
// The name may be given with or without the `.git` suffix.
func (r *Registry) Lookup(name string) (*proto.Repository, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if repo := r.lookupLocked(name); repo != nil {
		return repo, nil
	}

	return nil, fmt.Errorf("%w: %s", proto.ErrRepoNotFound, name)
}

func (r *Registry) lookupLocked(name string) *proto.Repository {
	name = strings.TrimSuffix(name, ".git")
	for _, repo := range r.repos {
		if repo.Name == name {
			return repo
		}
	}

	return nil
}

// Create adds a new repository and provisions its backing storage if it does
// not exist yet. Duplicate names are rejected without mutation. Creating the
// same repository twice results in one registry entry and at most one
// storage-creation request.
func (r *Registry) Create(ctx context.Context, repo *proto.Repository) error {
	if err := r.Register(repo); err != nil {
		return err
	}

	r.logger.Info("creating repo", "repo", repo.Name)
	ok, err := r.storage.Exists(ctx, repo.StorageName())
	if err != nil {
		return fmt.Errorf("%w: %s: %s", proto.ErrProvisioningFailure, repo.Name, err)
	}
	if ok {
		return nil
	}

	if err := r.storage.Create(ctx, repo.StorageName()); err != nil {
		return fmt.Errorf("%w: %s: %s", proto.ErrProvisioningFailure, repo.Name, err)
	}

	return nil
}

// Storage returns the backing storage.
func (r *Registry) Storage() storage.Storage {
	return r.storage
}

// All returns a snapshot of the registered repositories.
func (r *Registry) All() []*proto.Repository {
	r.mu.RLock()
	defer r.mu.RUnlock()
	repos := make([]*proto.Repository, len(r.repos))
	copy(repos, r.repos)
	return repos
}
