package hooks

import (
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/gitgate/gitgate/pkg/proto"
	"github.com/matryer/is"
)

func testRepo(name string) *proto.Repository {
	return &proto.Repository{Name: name, AnonymousRead: proto.Bool(false)}
}

func testBridge() *Bridge {
	return NewBridge(log.New(io.Discard))
}

type decision struct {
	accepted bool
	reason   string
}

func recordDecision(out *[]decision) DecisionFunc {
	return func(accepted bool, reason string) {
		*out = append(*out, decision{accepted: accepted, reason: reason})
	}
}

func TestDispatchAutoAcceptsWithoutListeners(t *testing.T) {
	is := is.New(t)
	b := testBridge()
	b.Attach(testRepo("demo"))

	var got []decision
	ev, err := b.Dispatch("demo", PreReceiveHook, nil, recordDecision(&got))
	is.NoErr(err)
	is.True(ev.Cancelable())
	// Zero listeners and a cancelable hook resolve before Dispatch returns.
	is.Equal(got, []decision{{accepted: true}})
}

func TestDispatchNonCancelableWithoutListeners(t *testing.T) {
	is := is.New(t)
	b := testBridge()
	b.Attach(testRepo("demo"))

	var got []decision
	_, err := b.Dispatch("demo", PostReceiveHook, nil, recordDecision(&got))
	is.NoErr(err)
	// Nothing gates a post-receive; the event is simply dropped.
	is.Equal(len(got), 0)
}

func TestDispatchDeliversToListeners(t *testing.T) {
	is := is.New(t)
	b := testBridge()
	ch := b.Attach(testRepo("demo"))

	var seen []*Event
	is.NoErr(ch.On(UpdateHook, func(ev *Event) {
		seen = append(seen, ev)
	}))

	args := []HookArg{{OldSha: "old", NewSha: "new", RefName: "refs/heads/main"}}
	var got []decision
	ev, err := b.Dispatch("demo", UpdateHook, args, recordDecision(&got))
	is.NoErr(err)
	is.Equal(len(seen), 1)
	is.Equal(seen[0].ID(), ev.ID())
	is.Equal(seen[0].Args(), args)
	// With a listener registered nothing is decided until it acts.
	is.Equal(len(got), 0)

	seen[0].Reject("not today")
	is.Equal(got, []decision{{accepted: false, reason: "not today"}})
}

func TestEventSingleDecision(t *testing.T) {
	is := is.New(t)
	b := testBridge()
	ch := b.Attach(testRepo("demo"))

	events := make(chan *Event, 1)
	is.NoErr(ch.On(PreReceiveHook, func(ev *Event) {
		events <- ev
	}))

	var got []decision
	_, err := b.Dispatch("demo", PreReceiveHook, nil, recordDecision(&got))
	is.NoErr(err)

	ev := <-events
	ev.Accept()
	ev.Reject("too late")
	ev.Accept()
	is.Equal(got, []decision{{accepted: true}})
}

func TestDispatchUnknownHook(t *testing.T) {
	is := is.New(t)
	b := testBridge()
	b.Attach(testRepo("demo"))

	_, err := b.Dispatch("demo", "post-merge-commit", nil, nil)
	is.True(err != nil)
}

func TestDispatchUnattachedRepo(t *testing.T) {
	is := is.New(t)
	b := testBridge()

	_, err := b.Dispatch("ghost", PreReceiveHook, nil, nil)
	is.True(errors.Is(err, proto.ErrRepoNotFound))
}

func TestChannelsAreIsolatedPerRepo(t *testing.T) {
	is := is.New(t)
	b := testBridge()
	chA := b.Attach(testRepo("a"))
	b.Attach(testRepo("b"))

	var aSeen int
	is.NoErr(chA.On(PreReceiveHook, func(ev *Event) {
		aSeen++
		ev.Accept()
	}))

	var got []decision
	_, err := b.Dispatch("b", PreReceiveHook, nil, recordDecision(&got))
	is.NoErr(err)
	// Repo b has no listeners of its own, so it auto-accepts and a's
	// listener never fires.
	is.Equal(aSeen, 0)
	is.Equal(got, []decision{{accepted: true}})
}

func TestAttachIsIdempotent(t *testing.T) {
	is := is.New(t)
	b := testBridge()
	repo := testRepo("demo")
	ch1 := b.Attach(repo)
	ch2 := b.Attach(repo)
	is.Equal(ch1, ch2)
	is.Equal(repo.HookChannel(), any(ch1))
}

func TestChannelLookupWithSuffix(t *testing.T) {
	is := is.New(t)
	b := testBridge()
	ch := b.Attach(testRepo("demo"))

	got, err := b.Channel("demo.git")
	is.NoErr(err)
	is.Equal(got, ch)

	b.Detach("demo.git")
	_, err = b.Channel("demo")
	is.True(errors.Is(err, proto.ErrRepoNotFound))
}

func TestOnUnknownHook(t *testing.T) {
	is := is.New(t)
	b := testBridge()
	ch := b.Attach(testRepo("demo"))
	is.True(ch.On("no-such-hook", func(*Event) {}) != nil)
}
