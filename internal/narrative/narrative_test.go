package narrative

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueDeduplicatesByID(t *testing.T) {
	q := NewQueue(10)
	assert.True(t, q.Enqueue(Request{ID: "r1", Kind: KindChronicle}))
	assert.False(t, q.Enqueue(Request{ID: "r1", Kind: KindChronicle}), "same id rejected")
	assert.Equal(t, 1, q.PendingCount())
}

func TestQueueSaturation(t *testing.T) {
	q := NewQueue(2)
	assert.True(t, q.Enqueue(Request{ID: "a"}))
	assert.True(t, q.Enqueue(Request{ID: "b"}))
	assert.False(t, q.Enqueue(Request{ID: "c"}), "saturated queue refuses")
}

func TestQueueDrainFIFO(t *testing.T) {
	q := NewQueue(10)
	q.Enqueue(Request{ID: "a"})
	q.Enqueue(Request{ID: "b"})
	q.Enqueue(Request{ID: "c"})

	batch := q.Drain(2)
	require.Len(t, batch, 2)
	assert.Equal(t, "a", batch[0].ID)
	assert.Equal(t, "b", batch[1].ID)
	assert.Equal(t, 1, q.PendingCount())
}

func TestResponsesCollected(t *testing.T) {
	q := NewQueue(10)
	q.Submit(Response{RequestID: "a"})
	q.Submit(Response{RequestID: "b"})

	got := q.CollectResponses()
	require.Len(t, got, 2)
	assert.Empty(t, q.CollectResponses(), "collection drains the inbox")
}

func TestNilClientUsesFallbacks(t *testing.T) {
	var c *Client // Unconfigured: narrative disabled.
	assert.False(t, c.Enabled())

	resp := c.Process(Request{
		ID:   "identity-f1",
		Kind: KindFactionIdentity,
		Payload: map[string]any{"worldSummary": "a small world"},
	})
	require.NotNil(t, resp.Identity)
	assert.NotEmpty(t, resp.Identity.Name)
	assert.LessOrEqual(t, len(resp.Identity.CoreLaws), 4)

	resp = c.Process(Request{
		ID:   "dialogue-d1",
		Kind: KindDialogue,
		Payload: map[string]any{"actionContext": "gathering"},
	})
	require.NotNil(t, resp.Dialogue)
	assert.Contains(t, resp.Dialogue.Gloss, "gathering")

	resp = c.Process(Request{
		ID:   "chronicle-f1-0",
		Kind: KindChronicle,
		Payload: map[string]any{"recentLogs": []string{"a war", "a harvest"}},
	})
	assert.NotEmpty(t, resp.Chronicle)
	assert.LessOrEqual(t, len(resp.Chronicle), 420)
}

func TestFallbackIdentityStable(t *testing.T) {
	req := Request{ID: "identity-f1", Kind: KindFactionIdentity}
	a := FallbackIdentity(req)
	b := FallbackIdentity(req)
	assert.Equal(t, a, b, "retries produce the same fallback")

	other := FallbackIdentity(Request{ID: "identity-f2"})
	assert.NotEmpty(t, other.Name)
}

func TestWorkerProcessesPending(t *testing.T) {
	q := NewQueue(10)
	q.Enqueue(Request{ID: "a", Kind: KindChronicle, Payload: map[string]any{}})
	q.Enqueue(Request{ID: "b", Kind: KindChronicle, Payload: map[string]any{}})

	w := NewWorker(q, nil)
	n := w.ProcessPending(10)
	assert.Equal(t, 2, n)
	assert.Equal(t, 0, q.PendingCount())
	assert.Len(t, q.CollectResponses(), 2)
}

// fakeFiller stamps a marker into every payload it sees.
type fakeFiller struct {
	filled int
}

func (f *fakeFiller) FillPayload(req *Request) {
	f.filled++
	if req.Payload == nil {
		req.Payload = map[string]any{}
	}
	req.Payload["recentLogs"] = []string{"a filled log"}
}

// fakeLimiter counts how many tasks pass through it.
type fakeLimiter struct {
	calls int
}

func (l *fakeLimiter) Run(task func() (any, error)) (any, error) {
	l.calls++
	return task()
}

// fakeCache is a plain map cache.
type fakeCache struct {
	entries map[string]any
	hits    int
}

func newFakeCache() *fakeCache { return &fakeCache{entries: map[string]any{}} }

func (c *fakeCache) Get(key string) (any, bool) {
	v, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return v, ok
}

func (c *fakeCache) Set(key string, value any) { c.entries[key] = value }

func TestWorkerFillsPayloadsBeforeProcessing(t *testing.T) {
	q := NewQueue(10)
	q.Enqueue(Request{ID: "chronicle-f1-0", Kind: KindChronicle, FactionID: "f1"})

	filler := &fakeFiller{}
	w := NewWorker(q, nil)
	w.Filler = filler
	require.Equal(t, 1, w.ProcessPending(10))
	assert.Equal(t, 1, filler.filled)

	resps := q.CollectResponses()
	require.Len(t, resps, 1)
	assert.Contains(t, resps[0].Chronicle, "a filled log", "the fallback saw the filled payload")
}

func TestWorkerRoutesCallsThroughLimiter(t *testing.T) {
	q := NewQueue(10)
	q.Enqueue(Request{ID: "a", Kind: KindChronicle, Payload: map[string]any{"recentLogs": []string{"x"}}})
	q.Enqueue(Request{ID: "b", Kind: KindDialogue, Payload: map[string]any{}})

	limiter := &fakeLimiter{}
	w := NewWorker(q, nil)
	w.Limiter = limiter
	w.ProcessPending(10)
	assert.Equal(t, 2, limiter.calls, "every collaborator call is limited")
}

func TestWorkerMemoizesRepeatableKinds(t *testing.T) {
	q := NewQueue(10)
	payload := map[string]any{"recentLogs": []string{"same content"}}
	q.Enqueue(Request{ID: "chronicle-f1-0", Kind: KindChronicle, FactionID: "f1", Payload: payload})
	q.Enqueue(Request{ID: "chronicle-f1-1", Kind: KindChronicle, FactionID: "f1", Payload: payload})

	limiter := &fakeLimiter{}
	cache := newFakeCache()
	w := NewWorker(q, nil)
	w.Limiter = limiter
	w.Cache = cache
	w.ProcessPending(10)

	assert.Equal(t, 1, limiter.calls, "identical chronicle content resolves from cache")
	assert.Equal(t, 1, cache.hits)

	resps := q.CollectResponses()
	require.Len(t, resps, 2)
	assert.Equal(t, "chronicle-f1-0", resps[0].RequestID)
	assert.Equal(t, "chronicle-f1-1", resps[1].RequestID, "cached answers carry the caller's request id")
}

func TestDialogueNeverCached(t *testing.T) {
	assert.Empty(t, cacheKey(Request{ID: "d", Kind: KindDialogue, Payload: map[string]any{}}))
	assert.NotEmpty(t, cacheKey(Request{ID: "c", Kind: KindChronicle, Payload: map[string]any{}}))
	assert.NotEmpty(t, cacheKey(Request{ID: "i", Kind: KindFactionIdentity, Payload: map[string]any{}}))
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, extractJSON(`{"a":1}`))
	assert.Equal(t, "no braces", extractJSON("no braces"))
}
