package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// PayloadFiller completes request payloads from a read-only projection of
// core state before the collaborator call.
type PayloadFiller interface {
	FillPayload(req *Request)
}

// Limiter serializes and spaces collaborator calls.
type Limiter interface {
	Run(task func() (any, error)) (any, error)
}

// ResponseCache memoizes collaborator answers by key.
type ResponseCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// Worker drains the request queue against the client and submits responses.
// It runs outside the tick; the core applies collected responses between
// ticks. The optional Filler, Limiter and Cache hooks are wired by the host.
type Worker struct {
	queue  *Queue
	client *Client

	Filler  PayloadFiller
	Limiter Limiter
	Cache   ResponseCache
}

// NewWorker wires a queue to a client. A nil client still works: fallbacks
// are produced synchronously.
func NewWorker(queue *Queue, client *Client) *Worker {
	return &Worker{queue: queue, client: client}
}

// ProcessPending answers up to max pending requests synchronously.
func (w *Worker) ProcessPending(max int) int {
	reqs := w.queue.Drain(max)
	for i := range reqs {
		req := reqs[i]
		if w.Filler != nil {
			w.Filler.FillPayload(&req)
		}
		w.queue.Submit(w.process(req))
	}
	return len(reqs)
}

// process answers one request, consulting the cache before spending a
// collaborator call.
func (w *Worker) process(req Request) Response {
	key := cacheKey(req)
	if key != "" && w.Cache != nil {
		if cached, ok := w.Cache.Get(key); ok {
			if resp, ok := cached.(Response); ok {
				resp.RequestID = req.ID
				return resp
			}
		}
	}
	resp := w.call(req)
	if key != "" && w.Cache != nil {
		w.Cache.Set(key, resp)
	}
	return resp
}

// call runs the collaborator invocation through the rate limiter when one is
// wired.
func (w *Worker) call(req Request) Response {
	if w.Limiter == nil {
		return w.client.Process(req)
	}
	result, _ := w.Limiter.Run(func() (any, error) {
		return w.client.Process(req), nil
	})
	if resp, ok := result.(Response); ok {
		return resp
	}
	return w.client.Process(req)
}

// cacheKey builds the memoization key for repeatable request kinds. Dialogue
// glosses are one-shot and never cached.
func cacheKey(req Request) string {
	switch req.Kind {
	case KindFactionIdentity, KindChronicle:
	default:
		return ""
	}
	payload, err := json.Marshal(req.Payload)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s|%s|%08x", req.Kind, req.FactionID, hashString(string(payload)))
}

// Run processes the queue on an interval until the context is cancelled.
func (w *Worker) Run(ctx context.Context, interval time.Duration, batch int) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := w.ProcessPending(batch); n > 0 {
				slog.Debug("narrative batch processed", "count", n)
			}
		}
	}
}
