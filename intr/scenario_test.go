package intr

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentflare-ai/hvml-go/bus"
	"github.com/agentflare-ai/hvml-go/clock"
	"github.com/agentflare-ai/hvml-go/timer"
	"github.com/agentflare-ai/hvml-go/value"
	"github.com/agentflare-ai/hvml-go/vdom"
)

// literalOps is a test-only element standing in for whatever real element
// would normally produce a child-result (an expression, a content node):
// it sets its own frame's `?` to a fixed string and has no children.
type literalOps struct{}

func init() {
	RegisterElementOps("literal", func() ElementOps { return literalOps{} })
}

func (literalOps) AfterPushed(ctx context.Context, co *Coroutine, fr *Frame) (bool, error) {
	fr.SetResult(value.MakeString(fr.Element.GetAttribute("value")))
	return false, nil
}

func (literalOps) SelectChild(ctx context.Context, co *Coroutine, fr *Frame) (vdom.Element, error) {
	return nil, nil
}

func (literalOps) OnPopping(ctx context.Context, co *Coroutine, fr *Frame) error { return nil }

func (literalOps) Rerun(ctx context.Context, co *Coroutine, fr *Frame) (bool, error) {
	return false, nil
}

// TestEmptyDocumentTerminatesImmediately covers spec §8 scenario 1: a
// coroutine over a document with a single, childless root pushes exactly
// one frame, runs it to completion, and Drain retires it with nothing
// left on its stack.
func TestEmptyDocumentTerminatesImmediately(t *testing.T) {
	ctx := context.Background()
	h := NewHeap()

	doc := vdom.NewDocument(vdom.NewElement("hvml", nil))
	co := h.Spawn(func(id uint64) *Coroutine { return NewCoroutine(id, doc, nil) })

	Activate(co)
	require.Equal(t, 1, co.Stack.Depth())

	require.NoError(t, Drain(ctx, h))

	assert.True(t, co.Stack.Empty())
	assert.Empty(t, h.Coroutines())
}

// TestTimerFiredEventIncrementsCounter covers spec §8 scenario 2: a
// $TIMERS entry with a 50ms interval, observed on the coroutine's own
// bus, has incremented an observer-held counter to exactly 2 once 125ms
// of simulated time have passed (two fires: at 50ms and 100ms).
func TestTimerFiredEventIncrementsCounter(t *testing.T) {
	ctx := context.Background()
	mc := clock.NewMock(time.Unix(0, 0))
	co := NewCoroutine(1, vdom.NewDocument(vdom.NewElement("hvml", nil)), nil)
	svc := timer.NewService(mc, co.Observers)

	counter := 0
	fires := make(chan struct{}, 8)
	co.Observers.Register(&bus.Observer{
		Kind:        bus.ObservedEvent,
		Observed:    "t",
		MsgTypeAtom: "fired",
		Handle: func(ctx context.Context, msgType, subType string, payload value.Value) error {
			counter++
			fires <- struct{}{}
			return nil
		},
	})

	require.NoError(t, svc.Create(ctx, "t", 50*time.Millisecond, value.Undefined()))

	mc.Advance(50 * time.Millisecond)
	mc.Advance(50 * time.Millisecond)
	mc.Advance(25 * time.Millisecond) // total 125ms: exactly two fires due

	require.Eventually(t, func() bool { return len(fires) >= 2 }, time.Second, time.Millisecond)
	assert.Equal(t, 2, counter)
}

// TestMatchExclusivePropagatesToParent covers spec §8 scenario 3: the
// parent's child-result is "hello" after its first child runs; of two
// <match> children testing for="hello" and for="world" with
// exclusively, only the first matches and marks the parent.
func TestMatchExclusivePropagatesToParent(t *testing.T) {
	ctx := context.Background()
	h := NewHeap()

	root := vdom.NewElement("root", nil)
	root.AppendChild(vdom.NewElement("literal", map[string]string{"value": "hello"}))
	root.AppendChild(vdom.NewElement("match", map[string]string{"for": "'hello'", "exclusively": "true"}))
	root.AppendChild(vdom.NewElement("match", map[string]string{"for": "'world'", "exclusively": "true"}))

	doc := vdom.NewDocument(root)
	co := h.Spawn(func(id uint64) *Coroutine { return NewCoroutine(id, doc, nil) })

	Activate(co)
	rootFrame := co.Stack.Top()
	require.NotNil(t, rootFrame)

	require.NoError(t, Drain(ctx, h))

	assert.True(t, rootFrame.ResultFromChild(), "the exclusively-matched branch must mark the parent")
}

// TestReactiveIntervalChangeProducesSingleChangeAndRefires covers spec §8
// scenario 6: changing a running timer's interval from 100ms to 20ms
// fires exactly one change event on $TIMERS, and the timer's next fire
// lands within the new, shorter interval rather than the old one.
func TestReactiveIntervalChangeProducesSingleChangeAndRefires(t *testing.T) {
	ctx := context.Background()
	mc := clock.NewMock(time.Unix(0, 0))
	co := NewCoroutine(1, vdom.NewDocument(vdom.NewElement("hvml", nil)), nil)
	svc := timer.NewService(mc, co.Observers)

	require.NoError(t, svc.Create(ctx, "u", 100*time.Millisecond, value.Undefined()))

	changes := 0
	svc.Set().Observe(value.MsgChange, func(ctx context.Context, ev *value.MutationEvent) error {
		changes++
		return nil
	})

	fired := make(chan struct{}, 4)
	co.Observers.Register(&bus.Observer{
		Kind:        bus.ObservedEvent,
		Observed:    "u",
		MsgTypeAtom: "fired",
		Handle: func(ctx context.Context, msgType, subType string, payload value.Value) error {
			fired <- struct{}{}
			return nil
		},
	})

	require.NoError(t, svc.SetInterval(ctx, "u", 20*time.Millisecond))
	assert.Equal(t, 1, changes, "an interval change must fire exactly one change event")

	mc.Advance(20 * time.Millisecond) // within the new interval, well inside the old one
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer did not refire within its new, shorter interval")
	}
}
