package ubereats

import (
	"context"
	"ubereats-scraper/internal/components/assert"
	"ubereats-scraper/internal/components/telemetry"
)

const (
	DefaultMaxPages         = 25
	DefaultFallbackPageSize = 20
)

type PagerOptions struct {
	// MaxPages is the most pages a single run may fetch.
	MaxPages int
	// FallbackPageSize decides whether to continue when a page carries no
	// pagination signal: a page at least this full is assumed to have a
	// successor.
	FallbackPageSize int
}

func (o PagerOptions) withDefaults() PagerOptions {
	if o.MaxPages <= 0 {
		o.MaxPages = DefaultMaxPages
	}
	if o.FallbackPageSize <= 0 {
		o.FallbackPageSize = DefaultFallbackPageSize
	}
	return o
}

// PageFetcher is satisfied by *Client.
type PageFetcher interface {
	FetchPage(ctx context.Context, creds Credentials, loc Location, cursor Cursor) (Page, error)
}

// Pager walks the feed one page at a time:
//
//	pager := NewPager(client, creds, loc, PagerOptions{}, tel)
//	for pager.Next(ctx) {
//		page := pager.Page()
//	}
//	if err := pager.Err(); err != nil {
//		...
//	}
type Pager struct {
	fetcher PageFetcher
	creds   Credentials
	loc     Location
	opts    PagerOptions
	tel     telemetry.API

	cursor  Cursor
	fetched int
	page    Page
	done    bool
	err     error
}

func NewPager(fetcher PageFetcher, creds Credentials, loc Location, opts PagerOptions, tel telemetry.API) *Pager {
	assert.NotNil(fetcher)
	if tel == nil {
		tel = telemetry.Nop{}
	}
	return &Pager{
		fetcher: fetcher,
		creds:   creds,
		loc:     loc,
		opts:    opts.withDefaults(),
		tel:     telemetry.NewScopedAPI("ubereats_pager", tel),
	}
}

// Next fetches the next page, it returns false once the feed is exhausted or
// an error occurred.
func (p *Pager) Next(ctx context.Context) bool {
	if p.done {
		return false
	}

	page, err := p.fetcher.FetchPage(ctx, p.creds, p.loc, p.cursor)
	if err != nil {
		p.err = err
		p.done = true
		return false
	}
	page.Index = p.fetched
	page.Cursor = p.cursor
	p.fetched++
	p.page = page

	more := p.hasMore(page)
	p.tel.ReportDebug(report_pager_next, page.Index, len(page.Entries), more)
	p.tel.ReportCount(report_pager_pages, int64(p.fetched))

	switch {
	case !more:
		p.done = true
	case p.fetched >= p.opts.MaxPages:
		p.done = true
		p.err = &PageCeilingError{Limit: p.opts.MaxPages}
	default:
		p.cursor = nextCursor(p.cursor, page)
	}
	return true
}

// Page is the page fetched by the last successful Next.
func (p *Pager) Page() Page {
	return p.page
}

// Err is nil when the feed ended on its own.
func (p *Pager) Err() error {
	return p.err
}

// Fetched counts the pages fetched so far.
func (p *Pager) Fetched() int {
	return p.fetched
}

func (p *Pager) hasMore(page Page) bool {
	if len(page.Entries) == 0 {
		return false
	}
	if page.HasMore != nil {
		return *page.HasMore
	}
	return len(page.Entries) >= p.opts.FallbackPageSize
}

// nextCursor advances past every item of the page, dropped carousels and
// banners included, so no store is requested twice.
func nextCursor(current Cursor, page Page) Cursor {
	next := Cursor{Offset: current.Offset + max(page.Items, len(page.Entries))}
	if page.NextCursor != "" {
		next.Token = page.NextCursor
	}
	return next
}
