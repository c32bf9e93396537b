package ubereats

import (
	"testing"
	"ubereats-scraper/internal/components/telemetry"
	"ubereats-scraper/internal/offers"
	"ubereats-scraper/pkg/jsonval"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func parsePage(t *testing.T, body string) Page {
	t.Helper()
	value, err := jsonval.Parse([]byte(body))
	require.NoError(t, err)
	return decodePage(value)
}

const fullStoreJSON = `{
	"type": "REGULAR_STORE",
	"store": {
		"storeUuid": "5f1c",
		"title": {"text": "Pizza Place"},
		"actionUrl": "/ca/store/pizza-place/5f1c",
		"rating": {"text": "4.6", "ratingValue": 4.6},
		"priceBucket": "$$",
		"meta": [
			{"text": "25-35 min", "badgeType": "ETD"},
			{"text": "$0 Delivery Fee", "badgeType": "FARE"},
			{"text": "Buy 1, get 1 free", "badgeType": "PROMOTION"},
			{"text": "N/A"}
		]
	}
}`

func TestExtractFullEntry(t *testing.T) {
	page := parsePage(t, feedJSON("", "", fullStoreJSON))
	listings := Extractor{BaseURL: "https://www.ubereats.com/"}.Extract(page)

	expected := []Listing{{
		Name:         "Pizza Place",
		Rating:       "4.6",
		DeliveryTime: "25-35 min",
		DeliveryCost: "$0 Delivery Fee",
		PriceRange:   "$$",
		StoreURL:     "https://www.ubereats.com/ca/store/pizza-place/5f1c",
		StoreUUID:    "5f1c",
		Badges: []string{
			"25-35 min",
			"$0 Delivery Fee",
			"[FARE]",
			"Buy 1, get 1 free",
			"[PROMOTION]",
		},
	}}
	if diff := cmp.Diff(expected, listings); diff != "" {
		t.Fatalf("listings mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "5f1c", listings[0].Offer().StoreUUID)
}

func TestExtractLastFareWins(t *testing.T) {
	page := parsePage(t, feedJSON("", "", `{"type":"REGULAR_STORE","store":{
		"title":{"text":"Sushi Bar"},
		"fareInfo":{"displayString":"$4.99 Delivery Fee"},
		"meta":[
			{"text":"$2.99 Delivery Fee","badgeType":"FARE"},
			{"text":"10-20 min","badgeType":"ETD"},
			{"text":"","badgeType":"FARE"},
			{"text":"$0 Delivery Fee over $15","badgeType":"FARE"},
			{"text":"40-50 min","badgeType":"ETD"}
		]
	}}`))
	listings := ExtractListings(page)

	require.Len(t, listings, 1)
	require.Equal(t, "$0 Delivery Fee over $15", listings[0].DeliveryCost)
	require.Equal(t, "10-20 min", listings[0].DeliveryTime)
}

func TestExtractNameOnly(t *testing.T) {
	page := parsePage(t, feedJSON("", "", storeJSON("Noodle Bar")))
	listings := ExtractListings(page)

	require.Len(t, listings, 1)
	listing := listings[0]
	require.Equal(t, "Noodle Bar", listing.Name)
	require.Equal(t, offers.NotAvailable, listing.Rating)
	require.Equal(t, offers.NotAvailable, listing.DeliveryTime)
	require.Equal(t, offers.NotAvailable, listing.DeliveryCost)
	require.Equal(t, offers.NotAvailable, listing.PriceRange)
	require.Empty(t, listing.StoreURL)
	require.Empty(t, listing.Badges)

	offer := listing.Offer()
	require.Equal(t, offers.Offer{
		DeliveryTime: offers.NotAvailable,
		DeliveryCost: offers.NotAvailable,
		Rating:       offers.NotAvailable,
		PriceRange:   offers.NotAvailable,
	}, offer)
}

func TestExtractFallbackShapes(t *testing.T) {
	testCases := []struct {
		name     string
		entry    string
		expected Listing
	}{
		{
			name:  "plain string title and numeric rating",
			entry: `{"type":"REGULAR_STORE","store":{"title":"Taco Stand","rating":{"ratingValue":4.50}}}`,
			expected: Listing{
				Name:         "Taco Stand",
				Rating:       "4.5",
				DeliveryTime: "N/A",
				DeliveryCost: "N/A",
				PriceRange:   "N/A",
			},
		},
		{
			name:  "flat fields",
			entry: `{"store":{"name":"Sushi Go","rating":4,"deliveryTime":"10 min","deliveryFee":"$2.49"}}`,
			expected: Listing{
				Name:         "Sushi Go",
				Rating:       "4",
				DeliveryTime: "10 min",
				DeliveryCost: "$2.49",
				PriceRange:   "N/A",
			},
		},
		{
			name:  "info objects",
			entry: `{"type":"REGULAR_STORE","store":{"title":{"text":"Deli"},"etdInfo":{"text":"5 min"},"fareInfo":{"displayString":"$1 fee"}}}`,
			expected: Listing{
				Name:         "Deli",
				Rating:       "N/A",
				DeliveryTime: "5 min",
				DeliveryCost: "$1 fee",
				PriceRange:   "N/A",
			},
		},
		{
			name:  "malformed attributes",
			entry: `{"type":"REGULAR_STORE","store":{"title":{"text":"  Cafe  "},"rating":[1,2],"meta":"oops","priceBucket":7}}`,
			expected: Listing{
				Name:         "Cafe",
				Rating:       "N/A",
				DeliveryTime: "N/A",
				DeliveryCost: "N/A",
				PriceRange:   "N/A",
			},
		},
		{
			name:  "absolute store url",
			entry: `{"type":"REGULAR_STORE","store":{"title":{"text":"Bakery"},"actionUrl":"https://example.com/bakery"}}`,
			expected: Listing{
				Name:         "Bakery",
				Rating:       "N/A",
				DeliveryTime: "N/A",
				DeliveryCost: "N/A",
				PriceRange:   "N/A",
				StoreURL:     "https://example.com/bakery",
			},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			listings := ExtractListings(parsePage(t, feedJSON("", "", test.entry)))
			if diff := cmp.Diff([]Listing{test.expected}, listings); diff != "" {
				t.Fatalf("listings mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractSkipsNamelessEntries(t *testing.T) {
	page := parsePage(t, feedJSON("", "",
		`{"type":"REGULAR_STORE","store":{"rating":{"text":"4.9"}}}`,
		`{"type":"REGULAR_STORE","store":{"title":{"text":""}}}`,
		storeJSON("Pho House"),
	))
	tel := &telemetry.Recorder{}
	listings := Extractor{Tel: tel}.Extract(page)

	require.Len(t, listings, 1)
	require.Equal(t, "Pho House", listings[0].Name)
	require.Len(t, tel.Find("debug", report_extract_missing_name), 2)
	require.Empty(t, tel.Find("warning", ""))
}

func TestDecodePageEmptyState(t *testing.T) {
	page := parsePage(t, `{"data":{"feedItems":[
		{"type":"REGULAR_STORE","store":{"title":{"text":"Ghost Kitchen"}}},
		{"type":"EMPTY_STATE","title":"No businesses available","subtitle":"Try another address"}
	]}}`)

	require.Empty(t, page.Entries)
	require.Equal(t, &EmptyState{
		Title:    "No businesses available",
		Subtitle: "Try another address",
	}, page.EmptyState)

	tel := &telemetry.Recorder{}
	require.Empty(t, Extractor{Tel: tel}.Extract(page))
	warnings := tel.Find("warning", report_extract_empty_state)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0].Params, "No businesses available")
}

func TestDecodePageSignals(t *testing.T) {
	testCases := []struct {
		name    string
		body    string
		entries int
		hasMore *bool
		cursor  string
	}{
		{
			name:    "pagination info",
			body:    feedJSON("false", "c-2", storeJSON("A")),
			entries: 1,
			hasMore: boolPtr(false),
			cursor:  "c-2",
		},
		{
			name:    "meta signals with numeric cursor",
			body:    `{"data":{"feedItems":[],"meta":{"hasMore":true,"nextCursor":40}}}`,
			hasMore: boolPtr(true),
			cursor:  "40",
		},
		{
			name:    "top level feed items",
			body:    `{"feedItems":[` + storeJSON("A") + `,` + storeJSON("B") + `]}`,
			entries: 2,
		},
		{
			name: "no feed items",
			body: `{"status":"success","data":{}}`,
		},
		{
			name:    "carousels are not stores",
			body:    feedJSON("", "", `{"type":"CAROUSEL","store":{"title":"x"}}`, `{"type":"BANNER"}`),
			entries: 0,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			page := parsePage(t, test.body)
			require.Len(t, page.Entries, test.entries)
			require.Equal(t, test.hasMore, page.HasMore)
			require.Equal(t, test.cursor, page.NextCursor)
		})
	}
}
