package timer

import (
	"context"
	"testing"
	"time"

	"github.com/agentflare-ai/hvml-go/bus"
	"github.com/agentflare-ai/hvml-go/clock"
	"github.com/agentflare-ai/hvml-go/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOneshotFiresOnceAndRemovesItself(t *testing.T) {
	ctx := context.Background()
	mc := clock.NewMock(time.Unix(0, 0))
	reg := bus.NewRegistry()
	svc := NewService(mc, reg)

	fired := make(chan struct{}, 1)
	reg.Register(&bus.Observer{
		Kind:        bus.ObservedEvent,
		Observed:    "once",
		MsgTypeAtom: "fired",
		Handle: func(ctx context.Context, msgType, subType string, payload value.Value) error {
			fired <- struct{}{}
			return nil
		},
	})

	require.NoError(t, svc.CreateOneshot(ctx, "once", 5*time.Second, value.Undefined()))
	assert.Equal(t, 1, svc.Set().Length())

	mc.Advance(5 * time.Second)
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("oneshot timer never fired")
	}

	// give the firing goroutine's Destroy call a moment to land
	require.Eventually(t, func() bool {
		return svc.Set().Length() == 0
	}, time.Second, time.Millisecond)
}

func TestCreateRepeatingFiresMultipleTimes(t *testing.T) {
	ctx := context.Background()
	mc := clock.NewMock(time.Unix(0, 0))
	reg := bus.NewRegistry()
	svc := NewService(mc, reg)

	count := make(chan struct{}, 8)
	reg.Register(&bus.Observer{
		Kind:        bus.ObservedEvent,
		Observed:    "tick",
		MsgTypeAtom: "fired",
		Handle: func(ctx context.Context, msgType, subType string, payload value.Value) error {
			count <- struct{}{}
			return nil
		},
	})

	require.NoError(t, svc.Create(ctx, "tick", time.Second, value.Undefined()))

	mc.Advance(time.Second)
	mc.Advance(time.Second)

	require.Eventually(t, func() bool {
		return len(count) >= 2
	}, time.Second, time.Millisecond)
}

func TestDuplicateIDRejected(t *testing.T) {
	ctx := context.Background()
	mc := clock.NewMock(time.Unix(0, 0))
	svc := NewService(mc, bus.NewRegistry())

	require.NoError(t, svc.Create(ctx, "dup", time.Second, value.Undefined()))
	err := svc.Create(ctx, "dup", time.Second, value.Undefined())
	assert.Error(t, err)
}

func TestSetIntervalUpdatesTimersSetEntry(t *testing.T) {
	ctx := context.Background()
	mc := clock.NewMock(time.Unix(0, 0))
	svc := NewService(mc, bus.NewRegistry())

	require.NoError(t, svc.Create(ctx, "id1", time.Second, value.Undefined()))

	var changed *value.MutationEvent
	svc.Set().Observe(value.MsgChange, func(ctx context.Context, ev *value.MutationEvent) error {
		changed = ev
		return nil
	})

	require.NoError(t, svc.SetInterval(ctx, "id1", 2*time.Second))
	require.NotNil(t, changed)
	assert.Equal(t, 1, svc.Set().Length())

	after, ok := changed.After.(*value.Object)
	require.True(t, ok)
	iv, ok := after.Get("interval")
	require.True(t, ok)
	assert.Equal(t, int64(2000), value.ToInt64(iv))
}

func TestDestroyRemovesFromTimersSet(t *testing.T) {
	ctx := context.Background()
	mc := clock.NewMock(time.Unix(0, 0))
	svc := NewService(mc, bus.NewRegistry())

	require.NoError(t, svc.Create(ctx, "gone", time.Second, value.Undefined()))
	assert.Equal(t, 1, svc.Set().Length())

	svc.Destroy(ctx, "gone")
	assert.Equal(t, 0, svc.Set().Length())
}

func TestAttachPayloadDeliveredWithFiredMessage(t *testing.T) {
	ctx := context.Background()
	mc := clock.NewMock(time.Unix(0, 0))
	reg := bus.NewRegistry()
	svc := NewService(mc, reg)

	payload := value.MakeString("hello")
	got := make(chan value.Value, 1)
	reg.Register(&bus.Observer{
		Kind:        bus.ObservedEvent,
		Observed:    "withpayload",
		MsgTypeAtom: "fired",
		Handle: func(ctx context.Context, msgType, subType string, p value.Value) error {
			got <- p
			return nil
		},
	})

	require.NoError(t, svc.CreateOneshot(ctx, "withpayload", time.Second, payload))
	mc.Advance(time.Second)

	select {
	case p := <-got:
		assert.Equal(t, "hello", value.ToString(p))
	case <-time.After(time.Second):
		t.Fatal("fired message never delivered")
	}
}
