package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gitgate/gitgate/pkg/auth"
	"github.com/gitgate/gitgate/pkg/config"
	"github.com/gitgate/gitgate/pkg/hooks"
	"github.com/gitgate/gitgate/pkg/proto"
	"github.com/gitgate/gitgate/pkg/registry"
	"github.com/gitgate/gitgate/pkg/utils"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Service is a git smart-HTTP service.
type Service string

const (
	// UploadPackService is the upload-pack service.
	UploadPackService Service = "git-upload-pack"
	// ReceivePackService is the receive-pack service.
	ReceivePackService Service = "git-receive-pack"
)

// String returns the string representation of the service.
func (s Service) String() string {
	return string(s)
}

// Kind returns the operation kind the service maps to.
func (s Service) Kind() proto.OperationKind {
	if s == ReceivePackService {
		return proto.OpPush
	}

	return proto.OpFetch
}

// Options are the collaborators of the git routes.
type Options struct {
	// Registry is the repository registry.
	Registry *registry.Registry
	// Gate authorizes inbound operations.
	Gate *auth.Gate
	// Bridge routes hook events. Optional; without it push operations skip
	// the pre-receive/post-receive flow.
	Bridge *hooks.Bridge
	// GitHandler is the external smart-HTTP collaborator that services
	// accepted operations. It receives the original request with the
	// `repo`, `dir`, and `service` route vars set. When nil, accepted
	// operations answer 503.
	GitHandler http.Handler
}

// GitRoute is a route for git services.
type GitRoute struct {
	method  []string
	handler http.HandlerFunc
	path    string
}

var _ http.Handler = GitRoute{}

// ServeHTTP implements http.Handler.
func (g GitRoute) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var hasMethod bool
	for _, m := range g.method {
		if m == r.Method {
			hasMethod = true
			break
		}
	}

	if !hasMethod {
		renderMethodNotAllowed(w, r)
		return
	}

	g.handler(w, r)
}

var (
	//nolint:revive
	gitHttpReceiveCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gitgate",
		Subsystem: "http",
		Name:      "git_receive_pack_total",
		Help:      "The total number of git push requests",
	}, []string{"repo"})

	//nolint:revive
	gitHttpUploadCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gitgate",
		Subsystem: "http",
		Name:      "git_upload_pack_total",
		Help:      "The total number of git fetch/pull requests",
	}, []string{"repo"})
)

func withParams(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		cfg := config.FromContext(ctx)
		vars := mux.Vars(r)
		repo := vars["repo"]

		// Set service type
		switch {
		case strings.HasSuffix(r.URL.Path, UploadPackService.String()):
			vars["service"] = UploadPackService.String()
		case strings.HasSuffix(r.URL.Path, ReceivePackService.String()):
			vars["service"] = ReceivePackService.String()
		}

		repo = utils.SanitizeRepo(repo)
		vars["repo"] = repo
		vars["dir"] = filepath.Join(cfg.RepositoriesPath(), repo+".git")

		r = mux.SetURLVars(r, vars)
		h.ServeHTTP(w, r)
	})
}

// GitController registers the git routes with the router.
func GitController(_ context.Context, r *mux.Router, opts Options) {
	c := &gitController{
		registry: opts.Registry,
		gate:     opts.Gate,
		bridge:   opts.Bridge,
		backend:  opts.GitHandler,
	}
	if c.backend == nil {
		c.backend = UnavailableHandler()
	}

	basePrefix := "/{repo:.*}"
	for _, route := range []GitRoute{
		// Git services
		// These routes don't handle authentication/authorization.
		// This is handled through wrapping the handlers for each route.
		{
			method:  []string{http.MethodPost},
			handler: c.serviceRpc,
			path:    "/{service:(?:git-upload-pack|git-receive-pack)$}",
		},
		{
			method:  []string{http.MethodGet},
			handler: c.getInfoRefs,
			path:    "/info/refs",
		},
	} {
		// NOTE: withParams must always be the outermost wrapper, otherwise
		// the request vars will not be set.
		r.Handle(basePrefix+route.path, withParams(route))
	}
}

// UnavailableHandler returns a handler answering 503 for accepted
// operations with no configured git backend.
func UnavailableHandler() http.Handler {
	return http.HandlerFunc(renderServiceUnavailable)
}

type gitController struct {
	registry *registry.Registry
	gate     *auth.Gate
	bridge   *hooks.Bridge
	backend  http.Handler
}

// authorize adapts the request into a transport operation and runs it
// through the gate. It writes the challenge or rejection response itself
// and reports whether the operation was accepted.
func (c *gitController) authorize(w http.ResponseWriter, r *http.Request, kind proto.OperationKind) (*httpOp, bool) {
	ctx := r.Context()
	cfg := config.FromContext(ctx)
	repoName := mux.Vars(r)["repo"]

	op := &httpOp{
		w:    w,
		r:    r,
		kind: kind,
		repo: repoName + ".git",
	}

	if kind == proto.OpPush {
		// The snapshot is captured before authorization on purpose: it
		// reflects the push attempt even when authorization later fails.
		if repo, err := c.registry.Lookup(repoName); err == nil {
			snap := capturePushSnapshot(r, repo.StorageName(), mux.Vars(r)["dir"])
			op.snapshot = snap
			repo.SetLastSnapshot(snap)
		}
	}

	err := c.gate.Authorize(ctx, op)
	switch {
	case errors.Is(err, proto.ErrAuthenticationRequired):
		askCredentials(w, cfg.HTTP.Realm)
		renderUnauthorized(w, r)
		return op, false
	case err != nil:
		// The gate already rejected the operation through the op.
		return op, false
	}

	return op, op.Accepted()
}

//nolint:revive
func (c *gitController) serviceRpc(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)
	service := Service(mux.Vars(r)["service"])
	repoName := mux.Vars(r)["repo"]

	if !isSmart(r, service) {
		renderForbidden(w, r)
		return
	}

	switch service {
	case ReceivePackService:
		gitHttpReceiveCounter.WithLabelValues(repoName).Inc()
	case UploadPackService:
		gitHttpUploadCounter.WithLabelValues(repoName).Inc()
	}

	op, ok := c.authorize(w, r, service.Kind())
	if !ok {
		return
	}

	if service == ReceivePackService {
		args := hookArgs(op.snapshot)
		if !c.preReceive(w, r, repoName, args) {
			return
		}

		c.backend.ServeHTTP(w, r)

		if c.bridge != nil {
			if _, err := c.bridge.Dispatch(repoName, hooks.PostReceiveHook, args, nil); err != nil {
				logger.Debug("post-receive dispatch skipped", "repo", repoName, "err", err)
			}
		}
		return
	}

	c.backend.ServeHTTP(w, r)
}

func (c *gitController) getInfoRefs(w http.ResponseWriter, r *http.Request) {
	if _, ok := c.authorize(w, r, proto.OpInfo); !ok {
		return
	}

	hdrNocache(w)
	c.backend.ServeHTTP(w, r)
}

// preReceive flows a push through the repo's pre-receive hook listeners and
// blocks until one of them decides. With no listener the bridge accepts in
// the same call. It reports whether the push may proceed.
func (c *gitController) preReceive(w http.ResponseWriter, r *http.Request, repoName string, args []hooks.HookArg) bool {
	if c.bridge == nil {
		return true
	}

	ctx := r.Context()
	logger := log.FromContext(ctx)

	type decision struct {
		accepted bool
		reason   string
	}

	decided := make(chan decision, 1)
	_, err := c.bridge.Dispatch(repoName, hooks.PreReceiveHook, args, func(accepted bool, reason string) {
		decided <- decision{accepted: accepted, reason: reason}
	})
	if err != nil {
		// Repo not attached to the bridge; nothing can veto the push.
		logger.Debug("pre-receive dispatch skipped", "repo", repoName, "err", err)
		return true
	}

	d := <-decided
	if !d.accepted {
		logger.Info("push rejected by pre-receive listener", "repo", repoName, "reason", d.reason)
		renderForbidden(w, r)
		return false
	}

	return true
}

func hookArgs(snap proto.OperationSnapshot) []hooks.HookArg {
	if snap.Commit == "" && snap.LastRef == "" {
		return nil
	}

	return []hooks.HookArg{{
		OldSha:  snap.LastRef,
		NewSha:  snap.Commit,
		RefName: snap.Ref(),
	}}
}

func capturePushSnapshot(r *http.Request, repoName, dir string) proto.OperationSnapshot {
	snap := proto.OperationSnapshot{
		Status:     "pending",
		Repo:       repoName,
		Service:    ReceivePackService.String(),
		WorkingDir: dir,
		Event:      "push",
	}

	if oldSha, newSha, ref, ok := peekPushRef(r); ok {
		snap.LastRef = oldSha
		snap.Commit = newSha
		snap.Branch = strings.TrimPrefix(ref, "refs/heads/")
	}

	return snap
}

func askCredentials(w http.ResponseWriter, realm string) {
	w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Basic realm=%q charset="UTF-8"`, realm))
}

func isSmart(r *http.Request, service Service) bool {
	contentType := r.Header.Get("Content-Type")
	return strings.HasPrefix(contentType, fmt.Sprintf("application/x-%s-request", service))
}
