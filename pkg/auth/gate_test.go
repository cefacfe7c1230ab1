package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/gitgate/gitgate/pkg/access"
	"github.com/gitgate/gitgate/pkg/proto"
	"github.com/gitgate/gitgate/pkg/registry"
	"github.com/gitgate/gitgate/pkg/storage"
	"github.com/gitgate/gitgate/pkg/trigger"
	"github.com/matryer/is"
)

type fakeOp struct {
	kind   proto.OperationKind
	repo   string
	header string

	accepted   bool
	rejected   bool
	rejectCode int
	rejectMsg  string
}

func (o *fakeOp) Kind() proto.OperationKind { return o.kind }
func (o *fakeOp) RepoName() string          { return o.repo }
func (o *fakeOp) Credentials() (string, bool) {
	return o.header, o.header != ""
}
func (o *fakeOp) Accept() { o.accepted = true }
func (o *fakeOp) Reject(code int, message string) {
	o.rejected = true
	o.rejectCode = code
	o.rejectMsg = message
}

func basicHeader(username, secret string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+secret))
}

func testGate(t *testing.T, repos ...*proto.Repository) *Gate {
	t.Helper()
	logger := log.New(io.Discard)
	reg := registry.New(storage.NewLocalStorage(t.TempDir()), logger)
	for _, repo := range repos {
		if err := reg.Register(repo); err != nil {
			t.Fatal(err)
		}
	}

	return NewGate(reg, trigger.NewInvoker(logger), logger)
}

func demoRepo(triggered *int) *proto.Repository {
	repo := &proto.Repository{
		Name:          "demo",
		AnonymousRead: proto.Bool(false),
		Users: []proto.UserBinding{
			{
				Username:    "alice",
				Credential:  HashCredential("s3cret"),
				Permissions: []access.Permission{access.ReadPermission, access.WritePermission},
			},
			{
				Username:    "bob",
				Credential:  "hunter2",
				Permissions: []access.Permission{access.ReadPermission},
			},
		},
	}
	if triggered != nil {
		repo.Triggers = map[proto.OperationKind]proto.Trigger{
			proto.OpPush: func(*proto.Repository, proto.OperationKind, proto.Op) {
				*triggered++
			},
		}
	}

	return repo
}

func TestAuthorizePushAccepted(t *testing.T) {
	is := is.New(t)
	var triggered int
	gate := testGate(t, demoRepo(&triggered))

	op := &fakeOp{kind: proto.OpPush, repo: "demo.git", header: basicHeader("alice", "s3cret")}
	is.NoErr(gate.Authorize(context.TODO(), op))
	is.True(op.accepted)
	is.True(!op.rejected)
	is.Equal(triggered, 1)
}

func TestAuthorizeDigestCredential(t *testing.T) {
	is := is.New(t)
	gate := testGate(t, demoRepo(nil))

	// The stored credential is a digest; the client still sends the plain
	// secret.
	op := &fakeOp{kind: proto.OpFetch, repo: "demo", header: basicHeader("alice", "s3cret")}
	is.NoErr(gate.Authorize(context.TODO(), op))
	is.True(op.accepted)
}

func TestAuthorizeWrongPassword(t *testing.T) {
	is := is.New(t)
	var triggered int
	gate := testGate(t, demoRepo(&triggered))

	op := &fakeOp{kind: proto.OpPush, repo: "demo.git", header: basicHeader("alice", "wrong")}
	err := gate.Authorize(context.TODO(), op)
	is.True(errors.Is(err, proto.ErrAuthenticationFailed))
	is.True(op.rejected)
	is.Equal(op.rejectCode, http.StatusForbidden)
	is.Equal(op.rejectMsg, "wrong username or password")
	is.Equal(triggered, 0)
}

func TestAuthorizeUnknownUserSameMessage(t *testing.T) {
	is := is.New(t)
	gate := testGate(t, demoRepo(nil))

	op := &fakeOp{kind: proto.OpPush, repo: "demo.git", header: basicHeader("mallory", "s3cret")}
	err := gate.Authorize(context.TODO(), op)
	is.True(errors.Is(err, proto.ErrAuthenticationFailed))
	// Unknown user and wrong password are indistinguishable.
	is.Equal(op.rejectMsg, "wrong username or password")
}

func TestAuthorizeUsernameMismatchSameSecret(t *testing.T) {
	is := is.New(t)
	gate := testGate(t, demoRepo(nil))

	// bob's secret presented under alice's name must not work.
	op := &fakeOp{kind: proto.OpFetch, repo: "demo", header: basicHeader("alice", "hunter2")}
	err := gate.Authorize(context.TODO(), op)
	is.True(errors.Is(err, proto.ErrAuthenticationFailed))
}

func TestAuthorizeNoCredentialsChallenges(t *testing.T) {
	is := is.New(t)
	gate := testGate(t, demoRepo(nil))

	op := &fakeOp{kind: proto.OpFetch, repo: "demo"}
	err := gate.Authorize(context.TODO(), op)
	is.True(errors.Is(err, proto.ErrAuthenticationRequired))
	// The transport owns the challenge; the gate must not write a response.
	is.True(!op.rejected)
	is.True(!op.accepted)
}

func TestAuthorizePermissionDenied(t *testing.T) {
	is := is.New(t)
	gate := testGate(t, demoRepo(nil))

	op := &fakeOp{kind: proto.OpPush, repo: "demo.git", header: basicHeader("bob", "hunter2")}
	err := gate.Authorize(context.TODO(), op)
	is.True(errors.Is(err, proto.ErrPermissionDenied))
	is.Equal(op.rejectCode, http.StatusForbidden)
	is.Equal(op.rejectMsg, "you don't have these permissions")
}

func TestAuthorizeRepoNotFound(t *testing.T) {
	is := is.New(t)
	gate := testGate(t, demoRepo(nil))

	op := &fakeOp{kind: proto.OpFetch, repo: "ghost.git", header: basicHeader("alice", "s3cret")}
	err := gate.Authorize(context.TODO(), op)
	is.True(errors.Is(err, proto.ErrRepoNotFound))
	is.Equal(op.rejectCode, http.StatusNotFound)
}

func TestAuthorizeAnonymousRead(t *testing.T) {
	is := is.New(t)
	var triggered int
	repo := &proto.Repository{
		Name:          "open",
		AnonymousRead: proto.Bool(true),
		Triggers: map[proto.OperationKind]proto.Trigger{
			proto.OpFetch: func(*proto.Repository, proto.OperationKind, proto.Op) {
				triggered++
			},
		},
	}
	gate := testGate(t, repo)

	op := &fakeOp{kind: proto.OpFetch, repo: "open.git"}
	is.NoErr(gate.Authorize(context.TODO(), op))
	is.True(op.accepted)
	is.Equal(triggered, 1)

	// Anonymous read never extends to pushes.
	push := &fakeOp{kind: proto.OpPush, repo: "open.git"}
	err := gate.Authorize(context.TODO(), push)
	is.True(errors.Is(err, proto.ErrAuthenticationRequired))
}

func TestAuthorizeMalformedHeader(t *testing.T) {
	is := is.New(t)
	gate := testGate(t, demoRepo(nil))

	op := &fakeOp{kind: proto.OpFetch, repo: "demo", header: "Basic not-base64!"}
	err := gate.Authorize(context.TODO(), op)
	is.True(errors.Is(err, proto.ErrAuthenticationFailed))
	is.Equal(op.rejectCode, http.StatusForbidden)
}
