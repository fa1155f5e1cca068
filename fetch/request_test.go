package fetch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentflare-ai/hvml-go/intr"
	"github.com/agentflare-ai/hvml-go/vdom"
)

// TestBridgeCancelsOutstandingOnCoroutineTeardown covers spec §8 scenario
// 4: an async fetch is issued and tracked on the bridge, the owning
// coroutine's stack empties with no observers left, and draining the
// heap must cancel every request still outstanding for it exactly once.
func TestBridgeCancelsOutstandingOnCoroutineTeardown(t *testing.T) {
	ctx := context.Background()
	h := intr.NewHeap()
	b := NewBridge(h)

	doc := vdom.NewDocument(vdom.NewElement("hvml", nil))
	co := h.Spawn(func(id uint64) *intr.Coroutine {
		return intr.NewCoroutine(id, doc, nil)
	})
	intr.Activate(co)

	cancelCount := 0
	req := New(co, TypeAsync, Callbacks{
		OnCancel: func(ctx context.Context) { cancelCount++ },
	})
	req.Activate(ctx, h)
	b.Track(req)

	require.Len(t, b.Outstanding(co), 1)

	require.NoError(t, intr.Drain(ctx, h))

	assert.Empty(t, b.Outstanding(co), "bridge must drain the outstanding-id list on teardown")
	assert.Equal(t, 1, cancelCount, "teardown must cancel the request exactly once")
	assert.Equal(t, StateDone, req.State())

	// Draining again must not re-cancel an already-finished request.
	require.NoError(t, intr.Drain(ctx, h))
	assert.Equal(t, 1, cancelCount)
}

// TestBridgeForgetsRequestsThatCompleteNormally ensures a request that
// succeeds through its own completion path removes itself from the
// bridge without waiting for a teardown pass, so a later CancelAll never
// double-cancels it.
func TestBridgeForgetsRequestsThatCompleteNormally(t *testing.T) {
	ctx := context.Background()
	h := intr.NewHeap()
	b := NewBridge(h)

	doc := vdom.NewDocument(vdom.NewElement("hvml", nil))
	co := h.Spawn(func(id uint64) *intr.Coroutine {
		return intr.NewCoroutine(id, doc, nil)
	})

	cancelCount := 0
	req := New(co, TypeAsync, Callbacks{
		OnCancel: func(ctx context.Context) { cancelCount++ },
	})
	b.Track(req)
	require.Len(t, b.Outstanding(co), 1)

	req.Succeed(ctx, h, nil)

	assert.Empty(t, b.Outstanding(co))
	assert.Equal(t, 0, cancelCount)
}
