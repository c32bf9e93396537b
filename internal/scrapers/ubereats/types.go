package ubereats

import (
	"ubereats-scraper/internal/offers"
	"ubereats-scraper/pkg/jsonval"
)

// Cursor is the position of a page in the feed. The zero value is the first
// page.
type Cursor struct {
	Offset int
	// Token is the continuation token returned by the previous page, it takes
	// precedence over Offset when set.
	Token string
}

// EmptyState is the feed's way of saying that nothing delivers here.
type EmptyState struct {
	Title    string
	Subtitle string
}

// Page is one decoded feed response.
type Page struct {
	// Index is zero based.
	Index  int
	Cursor Cursor
	// Entries holds the store entries of the page, other feed items
	// (carousels, banners) are dropped while decoding.
	Entries []jsonval.Value
	// Items counts every feed item the response held, store or not. The
	// next page starts that many items further.
	Items int
	// HasMore is nil when the response carries no pagination signal.
	HasMore    *bool
	NextCursor string
	EmptyState *EmptyState
}

// Listing is a single store entry as shown in the feed.
type Listing struct {
	Name         string
	Rating       string
	DeliveryTime string
	DeliveryCost string

	PriceRange string
	StoreURL   string
	StoreUUID  string
	Badges     []string
}

func (l Listing) Offer() offers.Offer {
	return offers.Offer{
		DeliveryTime: l.DeliveryTime,
		DeliveryCost: l.DeliveryCost,
		Rating:       l.Rating,
		PriceRange:   l.PriceRange,
		Badges:       l.Badges,
		StoreURL:     l.StoreURL,
		StoreUUID:    l.StoreUUID,
	}
}
