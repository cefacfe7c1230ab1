package proto

import (
	"testing"

	"github.com/gitgate/gitgate/pkg/access"
	"github.com/matryer/is"
)

func TestRequiredPermission(t *testing.T) {
	is := is.New(t)

	p, ok := RequiredPermission(OpFetch)
	is.True(ok)
	is.Equal(p, access.ReadPermission)

	p, ok = RequiredPermission(OpInfo)
	is.True(ok)
	is.Equal(p, access.ReadPermission)

	p, ok = RequiredPermission(OpPush)
	is.True(ok)
	is.Equal(p, access.WritePermission)

	_, ok = RequiredPermission(OperationKind("gc"))
	is.True(!ok)
}

func TestSnapshotRef(t *testing.T) {
	is := is.New(t)
	is.Equal(OperationSnapshot{Branch: "main"}.Ref(), "refs/heads/main")
	is.Equal(OperationSnapshot{}.Ref(), "")
}

func TestRepositorySnapshot(t *testing.T) {
	is := is.New(t)
	repo := &Repository{Name: "demo", AnonymousRead: Bool(false)}

	_, ok := repo.LastSnapshot()
	is.True(!ok)

	repo.SetLastSnapshot(OperationSnapshot{Status: "pending", Branch: "main"})
	snap, ok := repo.LastSnapshot()
	is.True(ok)
	is.Equal(snap.Branch, "main")

	// Last write wins.
	repo.SetLastSnapshot(OperationSnapshot{Status: "pending", Branch: "dev"})
	snap, _ = repo.LastSnapshot()
	is.Equal(snap.Branch, "dev")
}

func TestUserBindingHasPermission(t *testing.T) {
	is := is.New(t)
	u := UserBinding{Username: "alice", Permissions: []access.Permission{access.ReadPermission}}
	is.True(u.HasPermission(access.ReadPermission))
	is.True(!u.HasPermission(access.WritePermission))
}
