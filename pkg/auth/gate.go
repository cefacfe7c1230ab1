package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gitgate/gitgate/pkg/access"
	"github.com/gitgate/gitgate/pkg/proto"
	"github.com/gitgate/gitgate/pkg/registry"
	"github.com/gitgate/gitgate/pkg/trigger"
)

// Gate authorizes inbound operations against the repository registry. On
// success it runs the repo's success trigger and accepts the operation; on
// failure it rejects it. Absent credentials are signalled back to the
// transport, which must challenge the caller instead of rejecting.
type Gate struct {
	registry *registry.Registry
	invoker  *trigger.Invoker
	logger   *log.Logger
}

// NewGate returns a new Gate.
func NewGate(reg *registry.Registry, inv *trigger.Invoker, logger *log.Logger) *Gate {
	return &Gate{
		registry: reg,
		invoker:  inv,
		logger:   logger.WithPrefix("auth"),
	}
}

// Authorize decides an operation's fate. It returns nil after accepting the
// operation, proto.ErrAuthenticationRequired when the transport should
// challenge the caller, and one of the proto error sentinels after
// rejecting it. Rejection messages never echo the offending credential and
// are identical for unknown users and wrong passwords.
func (g *Gate) Authorize(ctx context.Context, op proto.Op) error {
	kind := op.Kind()
	repo, err := g.registry.Lookup(op.RepoName())
	if err != nil {
		g.logger.Info("rejected, repo doesn't exist", "repo", op.RepoName(), "kind", kind)
		op.Reject(http.StatusNotFound, "repository not found")
		return err
	}

	required, ok := proto.RequiredPermission(kind)
	if !ok {
		op.Reject(http.StatusForbidden, "unsupported operation")
		return fmt.Errorf("unsupported operation kind: %s", kind)
	}

	if repo.AllowsAnonRead() && required == access.ReadPermission {
		g.logger.Info("anonymous read", "repo", repo.Name, "kind", kind)
		g.invoker.Invoke(kind, repo, op)
		op.Accept()
		return nil
	}

	header, ok := op.Credentials()
	if !ok || header == "" {
		g.logger.Info("no credentials, challenging", "repo", repo.Name, "kind", kind)
		return proto.ErrAuthenticationRequired
	}

	username, secret, err := ParseBasicAuth(header)
	if err != nil {
		g.logger.Info("rejected, malformed credentials", "repo", repo.Name, "kind", kind)
		op.Reject(http.StatusForbidden, proto.ErrAuthenticationFailed.Error())
		return proto.ErrAuthenticationFailed
	}

	g.logger.Info("authorizing", "username", username, "kind", kind, "repo", repo.Name)

	user, ok := findUser(repo, username, secret)
	if !ok {
		g.logger.Info("rejected, user doesn't exist or password is wrong", "username", username, "repo", repo.Name)
		op.Reject(http.StatusForbidden, proto.ErrAuthenticationFailed.Error())
		return proto.ErrAuthenticationFailed
	}

	if !user.HasPermission(required) {
		g.logger.Info("rejected, no permission", "username", username, "kind", kind, "repo", repo.Name)
		op.Reject(http.StatusForbidden, "you don't have these permissions")
		return proto.ErrPermissionDenied
	}

	g.logger.Info("authorized", "username", username, "kind", kind, "repo", repo.Name)
	g.invoker.Invoke(kind, repo, op)
	op.Accept()

	return nil
}

// findUser scans the repo's user list for a binding matching both the
// username and the secret. Every binding is checked so the outcome's timing
// does not depend on where a username sits in the list.
func findUser(repo *proto.Repository, username, secret string) (proto.UserBinding, bool) {
	var found proto.UserBinding
	var ok bool
	for _, u := range repo.Users {
		if u.Username == username && VerifyCredential(secret, u.Credential) && !ok {
			found = u
			ok = true
		}
	}

	return found, ok
}
