package backend

import (
	"context"
	"fmt"
	"net/url"
)

// Page is one page of a listed resource. The last page may be short; an
// out-of-range page comes back with empty Items and the true Total.
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// LastPage computes the 1-based index of the final page, never below 1.
func LastPage(total, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	last := (total + pageSize - 1) / pageSize
	if last < 1 {
		return 1
	}
	return last
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether a page after this one exists.
func (p Page[T]) HasNext() bool {
	return p.Page < LastPage(p.Total, p.PageSize)
}

// fetchPage requests one page of a list resource. page and pageSize are sent
// verbatim; clamping out-of-range values is the server's job.
func fetchPage[T any](ctx context.Context, c *Client, path string, page, pageSize int) (Page[T], error) {
	var p Page[T]
	q := url.Values{}
	q.Set("page", fmt.Sprint(page))
	q.Set("page_size", fmt.Sprint(pageSize))

	resp, err := c.get(ctx, path+"?"+q.Encode())
	if err != nil {
		return p, err
	}
	if err := decodeJSON(resp, &p); err != nil {
		return Page[T]{}, err
	}
	return p, nil
}

// Conversations lists one page of GET /admin/conversations.
func (c *Client) Conversations(ctx context.Context, page, pageSize int) (Page[Conversation], error) {
	return fetchPage[Conversation](ctx, c, "/admin/conversations", page, pageSize)
}

// Leads lists one page of GET /admin/leads.
func (c *Client) Leads(ctx context.Context, page, pageSize int) (Page[Lead], error) {
	return fetchPage[Lead](ctx, c, "/admin/leads", page, pageSize)
}

// AllLeads walks every page of the leads listing. Used by the CSV export,
// which needs the full record set.
func (c *Client) AllLeads(ctx context.Context, pageSize int) ([]Lead, error) {
	var all []Lead
	for page := 1; ; page++ {
		p, err := c.Leads(ctx, page, pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, p.Items...)
		if len(p.Items) == 0 || page >= LastPage(p.Total, p.PageSize) {
			return all, nil
		}
	}
}
