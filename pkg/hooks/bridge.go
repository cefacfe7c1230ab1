package hooks

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gitgate/gitgate/pkg/proto"
	"github.com/google/uuid"
)

// Listener receives hook events for a single repository. When an event is
// cancelable, the listener is responsible for eventually calling Accept or
// Reject; the bridge does not aggregate decisions across listeners.
type Listener func(*Event)

// Channel is one repository's hook subscription state. Listener tables are
// kept per repository so one tenant's listeners never see another tenant's
// events.
type Channel struct {
	repo *proto.Repository

	mu        sync.RWMutex
	listeners map[string][]Listener
}

// On registers a listener for a hook name on this repository.
func (c *Channel) On(hook string, l Listener) error {
	if !Known(hook) {
		return fmt.Errorf("unknown hook: %s", hook)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners[hook] = append(c.listeners[hook], l)

	return nil
}

// ListenerCount returns the number of listeners registered for a hook.
func (c *Channel) ListenerCount(hook string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.listeners[hook])
}

// Bridge routes native hook firings to per-repository channels and re-emits
// them as application events. When a cancelable hook fires with no listener
// registered, the bridge accepts it in the same call, preserving default git
// behavior for uninstrumented repositories.
type Bridge struct {
	logger *log.Logger

	mu       sync.RWMutex
	channels map[string]*Channel
}

// NewBridge returns a new Bridge.
func NewBridge(logger *log.Logger) *Bridge {
	return &Bridge{
		logger:   logger.WithPrefix("hooks"),
		channels: make(map[string]*Channel),
	}
}

// Attach wires a repository into the bridge and stores the resulting
// channel handle on the repository. Attaching twice returns the existing
// channel.
func (b *Bridge) Attach(repo *proto.Repository) *Channel {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.channels[repo.Name]; ok {
		return ch
	}

	ch := &Channel{
		repo:      repo,
		listeners: make(map[string][]Listener),
	}
	b.channels[repo.Name] = ch
	repo.SetHookChannel(ch)

	return ch
}

// Channel returns the channel for a repository name, with or without the
// `.git` suffix.
func (b *Bridge) Channel(name string) (*Channel, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ch, ok := b.channels[strings.TrimSuffix(name, ".git")]
	if !ok {
		return nil, fmt.Errorf("%w: %s", proto.ErrRepoNotFound, name)
	}

	return ch, nil
}

// Detach removes a repository's channel from the bridge.
func (b *Bridge) Detach(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.channels, strings.TrimSuffix(name, ".git"))
}

// Dispatch converts a native hook firing into an application event and
// delivers it to the target repository's listeners. With zero listeners, a
// cancelable event is accepted before Dispatch returns and a non-cancelable
// one is dropped. decide may be nil for hooks whose outcome nobody waits on.
func (b *Bridge) Dispatch(repoName, hook string, args []HookArg, decide DecisionFunc) (*Event, error) {
	if !Known(hook) {
		return nil, fmt.Errorf("unknown hook: %s", hook)
	}

	ch, err := b.Channel(repoName)
	if err != nil {
		return nil, err
	}

	ev := &Event{
		id:     uuid.New(),
		repo:   ch.repo,
		hook:   hook,
		args:   args,
		decide: decide,
	}

	ch.mu.RLock()
	listeners := make([]Listener, len(ch.listeners[hook]))
	copy(listeners, ch.listeners[hook])
	ch.mu.RUnlock()

	if len(listeners) == 0 {
		if ev.Cancelable() {
			b.logger.Debug("no listeners, auto-accepting", "repo", repoName, "hook", hook, "id", ev.id)
			ev.Accept()
		}
		return ev, nil
	}

	b.logger.Debug("delivering hook event", "repo", repoName, "hook", hook, "id", ev.id, "listeners", len(listeners))
	for _, l := range listeners {
		l(ev)
	}

	return ev, nil
}
