package registry

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/gitgate/gitgate/pkg/proto"
	"github.com/matryer/is"
)

type fakeStorage struct {
	existing map[string]bool
	created  []string
	failOn   map[string]error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		existing: make(map[string]bool),
		failOn:   make(map[string]error),
	}
}

func (s *fakeStorage) Exists(_ context.Context, name string) (bool, error) {
	return s.existing[name], nil
}

func (s *fakeStorage) Create(_ context.Context, name string) error {
	if err := s.failOn[name]; err != nil {
		return err
	}
	s.created = append(s.created, name)
	s.existing[name] = true
	return nil
}

func testRegistry(st *fakeStorage) *Registry {
	return New(st, log.New(io.Discard))
}

func TestRegisterValidation(t *testing.T) {
	is := is.New(t)
	reg := testRegistry(newFakeStorage())

	err := reg.Register(&proto.Repository{AnonymousRead: proto.Bool(false)})
	is.True(errors.Is(err, proto.ErrInvalidConfig)) // missing name

	err = reg.Register(&proto.Repository{Name: "demo"})
	is.True(errors.Is(err, proto.ErrInvalidConfig)) // missing anonymous_read

	is.NoErr(reg.Register(&proto.Repository{Name: "demo", AnonymousRead: proto.Bool(false)}))
	is.Equal(len(reg.All()), 1)
}

func TestRegisterDuplicate(t *testing.T) {
	is := is.New(t)
	reg := testRegistry(newFakeStorage())

	is.NoErr(reg.Register(&proto.Repository{Name: "demo", AnonymousRead: proto.Bool(false)}))
	err := reg.Register(&proto.Repository{Name: "demo", AnonymousRead: proto.Bool(true)})
	is.True(errors.Is(err, proto.ErrRepoExist))
	is.Equal(len(reg.All()), 1)
}

func TestLookupByStorageName(t *testing.T) {
	is := is.New(t)
	reg := testRegistry(newFakeStorage())
	is.NoErr(reg.Register(&proto.Repository{Name: "demo", AnonymousRead: proto.Bool(false)}))

	repo, err := reg.Lookup("demo")
	is.NoErr(err)
	is.Equal(repo.Name, "demo")

	repo, err = reg.Lookup("demo.git")
	is.NoErr(err)
	is.Equal(repo.Name, "demo")

	_, err = reg.Lookup("ghost")
	is.True(errors.Is(err, proto.ErrRepoNotFound))
}

func TestCreateProvisionsOnce(t *testing.T) {
	is := is.New(t)
	st := newFakeStorage()
	reg := testRegistry(st)

	is.NoErr(reg.Create(context.TODO(), &proto.Repository{Name: "demo", AnonymousRead: proto.Bool(false)}))
	is.Equal(st.created, []string{"demo.git"})

	// A second create is rejected before touching storage.
	err := reg.Create(context.TODO(), &proto.Repository{Name: "demo", AnonymousRead: proto.Bool(false)})
	is.True(errors.Is(err, proto.ErrRepoExist))
	is.Equal(len(st.created), 1)
}

func TestCreateExistingStorage(t *testing.T) {
	is := is.New(t)
	st := newFakeStorage()
	st.existing["demo.git"] = true
	reg := testRegistry(st)

	is.NoErr(reg.Create(context.TODO(), &proto.Repository{Name: "demo", AnonymousRead: proto.Bool(false)}))
	is.Equal(len(st.created), 0)
}

func TestCreateStorageFailure(t *testing.T) {
	is := is.New(t)
	st := newFakeStorage()
	st.failOn["demo.git"] = errors.New("disk full")
	reg := testRegistry(st)

	err := reg.Create(context.TODO(), &proto.Repository{Name: "demo", AnonymousRead: proto.Bool(false)})
	is.True(errors.Is(err, proto.ErrProvisioningFailure))
}
