// Package hooks bridges git lifecycle hook firings into application events.
package hooks

// Git lifecycle hook names recognized by the bridge.
const (
	ApplypatchMsgHook    = "applypatch-msg"
	PreApplypatchHook    = "pre-applypatch"
	PostApplypatchHook   = "post-applypatch"
	PreCommitHook        = "pre-commit"
	PrepareCommitMsgHook = "prepare-commit-msg"
	CommitMsgHook        = "commit-msg"
	PostCommitHook       = "post-commit"
	PreRebaseHook        = "pre-rebase"
	PostCheckoutHook     = "post-checkout"
	PostMergeHook        = "post-merge"
	PreReceiveHook       = "pre-receive"
	UpdateHook           = "update"
	PostReceiveHook      = "post-receive"
	PostUpdateHook       = "post-update"
	PreAutoGCHook        = "pre-auto-gc"
	PostRewriteHook      = "post-rewrite"
)

// Catalogue is the fixed set of hook names the bridge subscribes to for
// every repository.
var Catalogue = []string{
	ApplypatchMsgHook,
	PreApplypatchHook,
	PostApplypatchHook,
	PreCommitHook,
	PrepareCommitMsgHook,
	CommitMsgHook,
	PostCommitHook,
	PreRebaseHook,
	PostCheckoutHook,
	PostMergeHook,
	PreReceiveHook,
	UpdateHook,
	PostReceiveHook,
	PostUpdateHook,
	PreAutoGCHook,
	PostRewriteHook,
}

// cancelable hooks gate an action before it completes; their events carry a
// meaningful accept/reject decision.
var cancelable = map[string]struct{}{
	ApplypatchMsgHook:    {},
	PreApplypatchHook:    {},
	PreCommitHook:        {},
	PrepareCommitMsgHook: {},
	CommitMsgHook:        {},
	PreRebaseHook:        {},
	PreReceiveHook:       {},
	UpdateHook:           {},
	PreAutoGCHook:        {},
}

// Cancelable reports whether a hook can block or abort the in-flight git
// operation pending an explicit decision.
func Cancelable(name string) bool {
	_, ok := cancelable[name]
	return ok
}

// Known reports whether name is part of the hook catalogue.
func Known(name string) bool {
	for _, hn := range Catalogue {
		if hn == name {
			return true
		}
	}

	return false
}

// HookArg is an argument to a git hook.
type HookArg struct {
	OldSha  string
	NewSha  string
	RefName string
}
