package web

import (
	"io"
	"net/http"
	"sync"

	"github.com/gitgate/gitgate/pkg/proto"
)

// httpOp adapts an HTTP request into a transport operation. Accept and
// Reject race through a sync.Once; only the first call takes effect.
type httpOp struct {
	w    http.ResponseWriter
	r    *http.Request
	kind proto.OperationKind
	repo string

	snapshot proto.OperationSnapshot

	once     sync.Once
	accepted bool
}

var _ proto.PushOp = (*httpOp)(nil)

// Kind implements proto.Op.
func (o *httpOp) Kind() proto.OperationKind {
	return o.kind
}

// RepoName implements proto.Op.
func (o *httpOp) RepoName() string {
	return o.repo
}

// Credentials implements proto.Op. It exposes the raw Authorization
// header; parsing is the gate's business.
func (o *httpOp) Credentials() (string, bool) {
	header := o.r.Header.Get("Authorization")
	return header, header != ""
}

// Accept implements proto.Op.
func (o *httpOp) Accept() {
	o.once.Do(func() {
		o.accepted = true
	})
}

// Reject implements proto.Op. It writes the response immediately so the
// client never sees a half-serviced operation.
func (o *httpOp) Reject(code int, message string) {
	o.once.Do(func() {
		hdrNocache(o.w)
		o.w.WriteHeader(code)
		io.WriteString(o.w, message) //nolint:errcheck
	})
}

// Snapshot implements proto.PushOp.
func (o *httpOp) Snapshot() proto.OperationSnapshot {
	return o.snapshot
}

// Accepted reports whether the operation was accepted.
func (o *httpOp) Accepted() bool {
	return o.accepted
}
