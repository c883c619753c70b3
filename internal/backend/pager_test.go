package backend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
)

func TestLastPage(t *testing.T) {
	tests := []struct {
		total, pageSize, want int
	}{
		{45, 20, 3},
		{40, 20, 2},
		{41, 20, 3},
		{0, 20, 1},
		{5, 20, 1},
		{20, 20, 1},
		{100, 0, 1}, // degenerate page size never divides by zero
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_%d", tt.total, tt.pageSize), func(t *testing.T) {
			if got := LastPage(tt.total, tt.pageSize); got != tt.want {
				t.Errorf("LastPage(%d, %d) = %d, want %d", tt.total, tt.pageSize, got, tt.want)
			}
		})
	}
}

func TestPageNavigationBoundaries(t *testing.T) {
	// total=45, page_size=20: pages 1..3, next disabled exactly on page 3.
	for _, tt := range []struct {
		page               int
		wantPrev, wantNext bool
	}{
		{1, false, true},
		{2, true, true},
		{3, true, false},
	} {
		p := Page[Lead]{Total: 45, Page: tt.page, PageSize: 20}
		if p.HasPrev() != tt.wantPrev {
			t.Errorf("page %d: HasPrev = %v, want %v", tt.page, p.HasPrev(), tt.wantPrev)
		}
		if p.HasNext() != tt.wantNext {
			t.Errorf("page %d: HasNext = %v, want %v", tt.page, p.HasNext(), tt.wantNext)
		}
	}
}

// leadListServer serves /admin/leads backed by n fake leads, honoring page
// and page_size exactly as sent.
func leadListServer(t *testing.T, n int, gotParams *[]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		*gotParams = append(*gotParams, q.Get("page")+"/"+q.Get("page_size"))

		page, _ := strconv.Atoi(q.Get("page"))
		size, _ := strconv.Atoi(q.Get("page_size"))

		items := []Lead{}
		start := (page - 1) * size
		for i := start; i < start+size && i < n; i++ {
			items = append(items, Lead{ID: fmt.Sprintf("lead-%d", i+1), Phone: "+100", Stage: StageNew})
		}
		json.NewEncoder(w).Encode(Page[Lead]{Items: items, Total: n, Page: page, PageSize: size})
	}))
}

func TestLeadsPassesParamsVerbatim(t *testing.T) {
	var params []string
	ts := leadListServer(t, 45, &params)
	defer ts.Close()

	c := newTestClient(ts)

	p, err := c.Leads(ctx, 1, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Items) != 20 || p.Total != 45 {
		t.Errorf("page 1: got %d items, total %d; want 20 items, total 45", len(p.Items), p.Total)
	}

	p, err = c.Leads(ctx, 3, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Items) != 5 {
		t.Errorf("page 3: got %d items, want 5", len(p.Items))
	}

	// Out-of-range pages are the server's call; the client sends them as-is.
	p, err = c.Leads(ctx, 99, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Items) != 0 || p.Total != 45 {
		t.Errorf("page 99: got %d items, total %d; want 0 items, true total 45", len(p.Items), p.Total)
	}

	want := []string{"1/20", "3/20", "99/20"}
	for i, w := range want {
		if params[i] != w {
			t.Errorf("request %d params = %q, want %q", i, params[i], w)
		}
	}
}

func TestAllLeadsWalksEveryPage(t *testing.T) {
	var params []string
	ts := leadListServer(t, 45, &params)
	defer ts.Close()

	leads, err := newTestClient(ts).AllLeads(ctx, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(leads) != 45 {
		t.Fatalf("got %d leads, want 45", len(leads))
	}
	if len(params) != 3 {
		t.Errorf("made %d requests, want 3", len(params))
	}
	if leads[0].ID != "lead-1" || leads[44].ID != "lead-45" {
		t.Errorf("unexpected ordering: first %s, last %s", leads[0].ID, leads[44].ID)
	}
}

func TestConversationsDecodesMessages(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/conversations" {
			t.Errorf("path = %q, want /admin/conversations", r.URL.Path)
		}
		w.Write([]byte(`{
			"items": [{
				"id": "conv-1",
				"phone": "+5491155000001",
				"status": "active",
				"messages": [
					{"role":"user","content":"hola","timestamp":"2025-06-01T09:00:00Z"},
					{"role":"assistant","content":"buenas","timestamp":"2025-06-01T09:01:00Z"}
				],
				"created_at": "2025-06-01T09:00:00Z",
				"updated_at": "2025-06-01T09:01:00Z"
			}],
			"total": 1, "page": 1, "page_size": 20
		}`))
	}))
	defer ts.Close()

	p, err := newTestClient(ts).Conversations(ctx, 1, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(p.Items))
	}
	c := p.Items[0]
	if c.ContactName != "" {
		t.Errorf("ContactName = %q, want empty for absent field", c.ContactName)
	}
	if len(c.Messages) != 2 || c.Messages[1].Role != "assistant" {
		t.Errorf("unexpected messages: %+v", c.Messages)
	}
	if !c.UpdatedAt.After(c.CreatedAt) {
		t.Errorf("UpdatedAt %v not after CreatedAt %v", c.UpdatedAt, c.CreatedAt)
	}
}
