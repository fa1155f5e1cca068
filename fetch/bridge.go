package fetch

import (
	"context"
	"sync"

	"github.com/agentflare-ai/hvml-go/intr"
)

// Bridge tracks every in-flight request per owning coroutine so that
// teardown can find and cancel all of them at once (spec §8 scenario 4:
// "the bridge's outstanding-id list is non-empty; teardown cancels all
// ids"). NewBridge installs CancelAll as the heap's termination hook, so
// Drain calls it when a coroutine's stack empties with no observers
// left, the Go analogue of the original's per-coroutine request list
// walked at teardown.
type Bridge struct {
	mu   sync.Mutex
	byCo map[*intr.Coroutine][]*Request
}

// NewBridge creates an empty request tracker and registers its CancelAll
// as h's termination hook, so every coroutine h.Drain retires has its
// outstanding requests cancelled automatically (spec §8 scenario 4).
func NewBridge(h *intr.Heap) *Bridge {
	b := &Bridge{byCo: map[*intr.Coroutine][]*Request{}}
	if h != nil {
		h.OnTerminate(func(co *intr.Coroutine) {
			b.CancelAll(context.Background(), h, co)
		})
	}
	return b
}

// Track registers r as outstanding against its Owner coroutine. r
// remembers b so its own completion path (Succeed/Fail) can forget
// itself without waiting for a teardown pass to notice.
func (b *Bridge) Track(r *Request) {
	r.mu.Lock()
	r.bridge = b
	r.mu.Unlock()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.byCo[r.Owner] = append(b.byCo[r.Owner], r)
}

// Forget removes r from its owner's outstanding list once it has
// finished through its normal completion path (success or failure), so
// a later CancelAll never re-cancels a request that is already done.
func (b *Bridge) Forget(r *Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.byCo[r.Owner]
	for i, o := range list {
		if o == r {
			b.byCo[r.Owner] = append(list[:i], list[i+1:]...)
			if len(b.byCo[r.Owner]) == 0 {
				delete(b.byCo, r.Owner)
			}
			return
		}
	}
}

// Outstanding returns the requests still tracked for co, for tests and
// diagnostics.
func (b *Bridge) Outstanding(co *intr.Coroutine) []*Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Request, len(b.byCo[co]))
	copy(out, b.byCo[co])
	return out
}

// CancelAll cancels every request still outstanding for co and clears
// its entry, the action the scheduler performs when co's stack empties
// with no observers watching it (intr.Drain's teardown path).
func (b *Bridge) CancelAll(ctx context.Context, h *intr.Heap, co *intr.Coroutine) {
	b.mu.Lock()
	reqs := append([]*Request{}, b.byCo[co]...)
	delete(b.byCo, co)
	b.mu.Unlock()

	for _, r := range reqs {
		r.Cancel(ctx, h)
	}
}
