package proto

import (
	"github.com/gitgate/gitgate/pkg/access"
)

// OperationKind is the kind of an inbound git operation.
type OperationKind string

const (
	// OpFetch is a fetch/clone (git-upload-pack).
	OpFetch OperationKind = "fetch"
	// OpInfo is a ref advertisement (info/refs).
	OpInfo OperationKind = "info"
	// OpPush is a push (git-receive-pack).
	OpPush OperationKind = "push"
)

// String returns the string representation of the operation kind.
func (k OperationKind) String() string {
	return string(k)
}

// RequiredPermission returns the permission an operation kind requires.
// The mapping is static: fetch and info require read, push requires write.
func RequiredPermission(kind OperationKind) (access.Permission, bool) {
	switch kind {
	case OpFetch, OpInfo:
		return access.ReadPermission, true
	case OpPush:
		return access.WritePermission, true
	default:
		return access.Permission(-1), false
	}
}

// OperationSnapshot records the metadata of the last push against a
// repository. It is overwritten on every push; no history is retained.
type OperationSnapshot struct {
	Status     string
	Repo       string
	Service    string
	WorkingDir string
	LastRef    string
	Commit     string
	Event      string
	Branch     string
}

// Ref returns the full ref name of the pushed branch, or an empty string
// when no branch was captured.
func (s OperationSnapshot) Ref() string {
	if s.Branch == "" {
		return ""
	}

	return "refs/heads/" + s.Branch
}

// Op is an inbound operation as exposed by the transport. The transport
// constructs one per request; the authorization gate decides its fate
// through the accept/reject primitives.
type Op interface {
	// Kind returns the operation kind.
	Kind() OperationKind
	// RepoName returns the storage name of the target repository.
	RepoName() string
	// Credentials returns the raw transport-level credentials, if any.
	Credentials() (string, bool)
	// Accept lets the operation proceed.
	Accept()
	// Reject refuses the operation with a status code and message.
	Reject(code int, message string)
}

// PushOp is an Op that additionally carries push metadata.
type PushOp interface {
	Op
	// Snapshot returns the push metadata captured from the request.
	Snapshot() OperationSnapshot
}

// Trigger is a success callback for an operation kind. It runs only after
// authorization succeeds.
type Trigger func(repo *Repository, kind OperationKind, op Op)
