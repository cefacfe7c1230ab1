package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	gitm "github.com/aymanbagabas/git-module"
)

// LocalStorage stores bare repositories on the local filesystem under a
// single root directory.
type LocalStorage struct {
	root string
}

var _ Storage = (*LocalStorage)(nil)

// NewLocalStorage creates a new LocalStorage rooted at root.
func NewLocalStorage(root string) *LocalStorage {
	return &LocalStorage{root: root}
}

// Root returns the storage root directory.
func (l *LocalStorage) Root() string {
	return l.root
}

// RepoPath returns the on-disk path for a storage address.
func (l *LocalStorage) RepoPath(name string) string {
	return filepath.Join(l.root, filepath.Base(name))
}

// Exists implements Storage.
func (l *LocalStorage) Exists(_ context.Context, name string) (bool, error) {
	info, err := os.Stat(l.RepoPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", name, err)
	}

	return info.IsDir(), nil
}

// Create implements Storage. It initializes a bare repository at the
// address.
func (l *LocalStorage) Create(_ context.Context, name string) error {
	path := l.RepoPath(name)
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("create storage root: %w", err)
	}

	if err := gitm.Init(path, gitm.InitOptions{Bare: true}); err != nil {
		return fmt.Errorf("init bare repository %s: %w", name, err)
	}

	return nil
}
