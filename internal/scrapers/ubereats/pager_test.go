package ubereats

import (
	"context"
	"fmt"
	"testing"
	"ubereats-scraper/internal/components/telemetry"
	"ubereats-scraper/pkg/jsonval"

	"github.com/stretchr/testify/require"
)

// scriptedFetcher returns pages in order and remembers the cursors it was
// asked for.
type scriptedFetcher struct {
	pages   []Page
	errs    map[int]error
	cursors []Cursor
}

func (f *scriptedFetcher) FetchPage(_ context.Context, _ Credentials, _ Location, cursor Cursor) (Page, error) {
	i := len(f.cursors)
	f.cursors = append(f.cursors, cursor)
	if err := f.errs[i]; err != nil {
		return Page{}, err
	}
	if i >= len(f.pages) {
		return f.pages[len(f.pages)-1], nil
	}
	return f.pages[i], nil
}

func entries(n int) []jsonval.Value {
	out := make([]jsonval.Value, n)
	for i := range out {
		out[i] = jsonval.Of(map[string]any{"type": entryTypeStore})
	}
	return out
}

func boolPtr(b bool) *bool {
	return &b
}

func drain(t *testing.T, pager *Pager) []Page {
	t.Helper()
	var pages []Page
	for pager.Next(context.Background()) {
		pages = append(pages, pager.Page())
		require.LessOrEqual(t, len(pages), 100, "pager did not terminate")
	}
	return pages
}

func TestPagerTwoPages(t *testing.T) {
	fetcher := &scriptedFetcher{pages: []Page{
		{Entries: entries(3), HasMore: boolPtr(true), NextCursor: "t1"},
		{Entries: entries(2), HasMore: boolPtr(false)},
	}}
	tel := &telemetry.Recorder{}
	pager := NewPager(fetcher, Credentials{}, Location{}, PagerOptions{}, tel)

	pages := drain(t, pager)
	require.NoError(t, pager.Err())
	require.Len(t, pages, 2)
	require.Equal(t, 0, pages[0].Index)
	require.Equal(t, 1, pages[1].Index)
	require.Equal(t, 2, pager.Fetched())

	require.Equal(t, []Cursor{{}, {Offset: 3, Token: "t1"}}, fetcher.cursors)
	require.Equal(t, fetcher.cursors[1], pages[1].Cursor)

	counts := tel.Find("count", report_pager_pages)
	require.Len(t, counts, 2)
	require.EqualValues(t, 2, counts[1].Count)
}

func TestPagerTermination(t *testing.T) {
	testCases := []struct {
		name     string
		pages    []Page
		opts     PagerOptions
		expected int
	}{
		{
			name:     "empty first page",
			pages:    []Page{{HasMore: boolPtr(true)}},
			expected: 1,
		},
		{
			name: "empty page overrides has more",
			pages: []Page{
				{Entries: entries(5), HasMore: boolPtr(true)},
				{HasMore: boolPtr(true)},
			},
			expected: 2,
		},
		{
			name: "explicit has more beats page size",
			pages: []Page{
				{Entries: entries(1), HasMore: boolPtr(true)},
				{Entries: entries(50), HasMore: boolPtr(false)},
			},
			expected: 2,
		},
		{
			name: "full pages without signal continue",
			pages: []Page{
				{Entries: entries(4)},
				{Entries: entries(4)},
				{Entries: entries(3)},
			},
			opts:     PagerOptions{FallbackPageSize: 4},
			expected: 3,
		},
		{
			name: "default fallback page size",
			pages: []Page{
				{Entries: entries(DefaultFallbackPageSize)},
				{Entries: entries(DefaultFallbackPageSize - 1)},
			},
			expected: 2,
		},
		{
			name: "last allowed page without more",
			pages: []Page{
				{Entries: entries(1), HasMore: boolPtr(true)},
				{Entries: entries(1), HasMore: boolPtr(false)},
			},
			opts:     PagerOptions{MaxPages: 2},
			expected: 2,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			fetcher := &scriptedFetcher{pages: test.pages}
			pager := NewPager(fetcher, Credentials{}, Location{}, test.opts, nil)

			pages := drain(t, pager)
			require.NoError(t, pager.Err())
			require.Len(t, pages, test.expected)
			require.Len(t, fetcher.cursors, test.expected)
		})
	}
}

func TestPagerCeiling(t *testing.T) {
	fetcher := &scriptedFetcher{pages: []Page{
		{Entries: entries(1), HasMore: boolPtr(true)},
	}}
	pager := NewPager(fetcher, Credentials{}, Location{}, PagerOptions{MaxPages: 3}, nil)

	pages := drain(t, pager)
	require.Len(t, pages, 3)
	require.Len(t, fetcher.cursors, 3)

	var ceiling *PageCeilingError
	require.ErrorAs(t, pager.Err(), &ceiling)
	require.Equal(t, 3, ceiling.Limit)
	require.False(t, pager.Next(context.Background()))
}

func TestPagerOffsets(t *testing.T) {
	fetcher := &scriptedFetcher{pages: []Page{
		{Entries: entries(20)},
		{Entries: entries(20)},
		{Entries: entries(7)},
	}}
	pager := NewPager(fetcher, Credentials{}, Location{}, PagerOptions{}, nil)

	drain(t, pager)
	require.NoError(t, pager.Err())
	require.Equal(t, []Cursor{{Offset: 0}, {Offset: 20}, {Offset: 40}}, fetcher.cursors)
}

func TestPagerOffsetsCountEveryFeedItem(t *testing.T) {
	items := []string{
		`{"type":"CAROUSEL","carousel":{"stores":[]}}`,
		`{"type":"BANNER","title":"Free delivery"}`,
	}
	for i := 0; i < 18; i++ {
		items = append(items, storeJSON(fmt.Sprintf("Store %d", i)))
	}

	var pages []Page
	for _, body := range []string{
		feedJSON("true", "", items...),
		feedJSON("false", "", storeJSON("Last Store")),
	} {
		parsed, err := jsonval.Parse([]byte(body))
		require.NoError(t, err)
		pages = append(pages, decodePage(parsed))
	}
	require.Len(t, pages[0].Entries, 18)
	require.Equal(t, 20, pages[0].Items)

	fetcher := &scriptedFetcher{pages: pages}
	pager := NewPager(fetcher, Credentials{}, Location{}, PagerOptions{}, nil)

	drain(t, pager)
	require.NoError(t, pager.Err())
	require.Equal(t, []Cursor{{Offset: 0}, {Offset: 20}}, fetcher.cursors)
}

func TestPagerFetchError(t *testing.T) {
	failure := &AuthenticationExpiredError{Status: 401}
	fetcher := &scriptedFetcher{
		pages: []Page{{Entries: entries(1), HasMore: boolPtr(true)}},
		errs:  map[int]error{1: failure},
	}
	pager := NewPager(fetcher, Credentials{}, Location{}, PagerOptions{}, nil)

	pages := drain(t, pager)
	require.Len(t, pages, 1)
	require.ErrorIs(t, pager.Err(), error(failure))
	require.False(t, pager.Next(context.Background()))
	require.Len(t, fetcher.cursors, 2, fmt.Sprintf("cursors: %v", fetcher.cursors))
}
