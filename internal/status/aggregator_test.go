package status

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ncanzani/salesdeck/internal/backend"
)

var ctx = context.Background()

const healthyBody = `{"status":"ok","version":"1.0.0","env":"development"}`

// fakeBackend serves /health and /admin/stats with swappable bodies.
type fakeBackend struct {
	mu    sync.Mutex
	ts    *httptest.Server
	stats string
	down  bool
}

func newFakeBackend(t *testing.T, stats string) *fakeBackend {
	t.Helper()
	f := &fakeBackend{stats: stats}
	f.ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		stats, down := f.stats, f.down
		f.mu.Unlock()
		if down {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		switch r.URL.Path {
		case "/health":
			w.Write([]byte(healthyBody))
		case "/admin/stats":
			w.Write([]byte(stats))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(f.ts.Close)
	return f
}

func (f *fakeBackend) setStats(s string) {
	f.mu.Lock()
	f.stats = s
	f.mu.Unlock()
}

func (f *fakeBackend) setDown(down bool) {
	f.mu.Lock()
	f.down = down
	f.mu.Unlock()
}

func (f *fakeBackend) client() *backend.Client {
	return backend.New(f.ts.URL, 5*time.Second)
}

func TestRefreshHealthySystem(t *testing.T) {
	f := newFakeBackend(t, `{
		"queue": {"queued":2,"started":1,"finished":10,"failed":0,"deferred":0},
		"rag": {"catalog":120,"support_docs":40},
		"config": {"whatsapp_provider":"twilio","llm_model":"gpt-4o","env":"development"}
	}`)

	agg := New(f.client(), time.Minute)
	snap := agg.Refresh(ctx)

	sys := snap.System()
	if !sys.APIOK || !sys.QueueOK || !sys.RAGOK {
		t.Errorf("System() = %+v, want all true", sys)
	}
	if snap.Unreachable {
		t.Error("Unreachable = true, want false")
	}
	if snap.FailedJobsWarning() {
		t.Error("FailedJobsWarning() = true with 0 failed jobs")
	}
	if snap.Stats.RAG.Catalog != 120 || snap.Stats.RAG.SupportDocs != 40 {
		t.Errorf("unexpected rag stats: %+v", snap.Stats.RAG)
	}
	if snap.RefreshedAt.IsZero() {
		t.Error("RefreshedAt not set")
	}
}

func TestRefreshRAGError(t *testing.T) {
	f := newFakeBackend(t, `{
		"queue": {"queued":0,"started":0,"finished":0,"failed":0,"deferred":0},
		"rag": {"catalog":0,"support_docs":0,"error":"connection refused"},
		"config": {"whatsapp_provider":"twilio","llm_model":"gpt-4o","env":"development"}
	}`)

	snap := New(f.client(), time.Minute).Refresh(ctx)
	sys := snap.System()

	if sys.RAGOK {
		t.Error("RAGOK = true, want false")
	}
	if snap.Stats.RAG.Error != "connection refused" {
		t.Errorf("RAG.Error = %q, want %q", snap.Stats.RAG.Error, "connection refused")
	}
	// One subsystem's failure never bleeds into the others.
	if !sys.APIOK || !sys.QueueOK {
		t.Errorf("APIOK/QueueOK affected by rag error: %+v", sys)
	}
	if snap.Unreachable {
		t.Error("subsystem failure must not look like a transport failure")
	}
}

func TestSubsystemBooleansAreIndependent(t *testing.T) {
	tests := []struct {
		name  string
		stats string
		want  backend.SystemStatus
	}{
		{
			"all healthy",
			`{"queue":{"queued":0},"rag":{"catalog":1,"support_docs":1},"config":{}}`,
			backend.SystemStatus{APIOK: true, QueueOK: true, RAGOK: true},
		},
		{
			"queue error only",
			`{"queue":{"error":"Redis unavailable"},"rag":{"catalog":1,"support_docs":1},"config":{}}`,
			backend.SystemStatus{APIOK: true, QueueOK: false, RAGOK: true},
		},
		{
			"rag error only",
			`{"queue":{"queued":0},"rag":{"error":"ChromaDB unavailable"},"config":{}}`,
			backend.SystemStatus{APIOK: true, QueueOK: true, RAGOK: false},
		},
		{
			"both subsystems down",
			`{"queue":{"error":"x"},"rag":{"error":"y"},"config":{}}`,
			backend.SystemStatus{APIOK: true, QueueOK: false, RAGOK: false},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeBackend(t, tt.stats)
			snap := New(f.client(), time.Minute).Refresh(ctx)
			if got := snap.System(); got != tt.want {
				t.Errorf("System() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFailedJobsWarning(t *testing.T) {
	tests := []struct {
		name  string
		stats string
		want  bool
	}{
		{"no failures", `{"queue":{"failed":0},"rag":{},"config":{}}`, false},
		{"failures present", `{"queue":{"failed":3},"rag":{},"config":{}}`, true},
		{"queue down, counts unknown", `{"queue":{"failed":3,"error":"down"},"rag":{},"config":{}}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeBackend(t, tt.stats)
			snap := New(f.client(), time.Minute).Refresh(ctx)
			if got := snap.FailedJobsWarning(); got != tt.want {
				t.Errorf("FailedJobsWarning() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFailedRefreshKeepsLastGoodData(t *testing.T) {
	f := newFakeBackend(t, `{"queue":{"queued":7},"rag":{"catalog":5,"support_docs":2},"config":{}}`)
	agg := New(f.client(), time.Minute)

	first := agg.Refresh(ctx)
	if first.Unreachable {
		t.Fatal("setup: first refresh should succeed")
	}

	f.setDown(true)
	second := agg.Refresh(ctx)

	if !second.Unreachable {
		t.Error("Unreachable = false after failed refresh")
	}
	if second.LastError == "" {
		t.Error("LastError empty after failed refresh")
	}
	if second.Stats == nil || second.Stats.Queue.Queued != 7 {
		t.Errorf("last good stats lost: %+v", second.Stats)
	}
	if second.Health == nil {
		t.Error("last good health lost")
	}

	// Recovery clears the flag and replaces the pair wholesale.
	f.setDown(false)
	f.setStats(`{"queue":{"queued":1},"rag":{"catalog":5,"support_docs":2},"config":{}}`)
	third := agg.Refresh(ctx)
	if third.Unreachable || third.LastError != "" {
		t.Errorf("flag not cleared on recovery: %+v", third)
	}
	if third.Stats.Queue.Queued != 1 {
		t.Errorf("Queued = %d, want 1 after recovery", third.Stats.Queue.Queued)
	}
}

func TestRefreshBeforeAnySuccess(t *testing.T) {
	f := newFakeBackend(t, `{}`)
	f.setDown(true)

	snap := New(f.client(), time.Minute).Refresh(ctx)
	if !snap.Unreachable {
		t.Error("Unreachable = false")
	}
	if snap.Health != nil || snap.Stats != nil {
		t.Error("no data was ever fetched, snapshot should hold none")
	}
	sys := snap.System()
	if sys.APIOK || sys.QueueOK || sys.RAGOK {
		t.Errorf("System() = %+v, want all false with no data", sys)
	}
}

func TestStaleRefreshIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	var slow atomic.Bool

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wasSlow := slow.Load()
		if wasSlow {
			<-release
		}
		switch r.URL.Path {
		case "/health":
			w.Write([]byte(healthyBody))
		case "/admin/stats":
			if wasSlow {
				w.Write([]byte(`{"queue":{"queued":111},"rag":{},"config":{}}`))
			} else {
				w.Write([]byte(`{"queue":{"queued":222},"rag":{},"config":{}}`))
			}
		}
	}))
	defer ts.Close()

	agg := New(backend.New(ts.URL, 5*time.Second), time.Minute)

	// Start a refresh that blocks inside the server.
	slow.Store(true)
	done := make(chan Snapshot)
	go func() {
		done <- agg.Refresh(ctx)
	}()

	// Give the slow refresh time to take its sequence number, then let a
	// newer refresh complete first.
	time.Sleep(50 * time.Millisecond)
	slow.Store(false)
	newer := agg.Refresh(ctx)
	if newer.Stats.Queue.Queued != 222 {
		t.Fatalf("setup: newer refresh saw Queued = %d, want 222", newer.Stats.Queue.Queued)
	}

	// Unblock the old refresh; its completion must not overwrite newer data.
	close(release)
	settled := <-done
	if settled.Stats.Queue.Queued != 222 {
		t.Errorf("stale refresh overwrote newer data: Queued = %d, want 222", settled.Stats.Queue.Queued)
	}
	if agg.Snapshot().Stats.Queue.Queued != 222 {
		t.Errorf("stored snapshot lost newer data")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	f := newFakeBackend(t, `{"queue":{},"rag":{},"config":{}}`)
	agg := New(f.client(), 10*time.Millisecond)

	runCtx, cancel := context.WithCancel(ctx)
	var calls atomic.Int32
	done := make(chan struct{})
	go func() {
		agg.Run(runCtx, func(Snapshot) {
			calls.Add(1)
		})
		close(done)
	}()

	// The first call happens immediately, before any tick.
	deadline := time.After(2 * time.Second)
	for calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for ticked refreshes")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	// No more refreshes after the loop returned.
	n := calls.Load()
	time.Sleep(50 * time.Millisecond)
	if calls.Load() != n {
		t.Error("refreshes continued after cancellation")
	}
}
