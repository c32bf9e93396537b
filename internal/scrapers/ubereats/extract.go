package ubereats

import (
	"strings"
	"ubereats-scraper/internal/components/telemetry"
	"ubereats-scraper/internal/offers"
	"ubereats-scraper/pkg/jsonval"
)

// decodePage keeps the store entries of a feed response along with its
// pagination signals. An EMPTY_STATE entry empties the whole page.
func decodePage(body jsonval.Value) Page {
	var page Page

	var items []jsonval.Value
	for _, path := range feedItemsPaths {
		if v := path.Get(body); v.IsArray() {
			items = v.Array()
			break
		}
	}

	for _, path := range hasMorePaths {
		if b, ok := path.Get(body).Bool(); ok {
			page.HasMore = &b
			break
		}
	}
	page.NextCursor, _ = firstMatch(body, nextCursorRules)
	page.Items = len(items)

	for _, item := range items {
		kind := entryType.Get(item).StringOr("")
		switch {
		case kind == entryTypeEmptyState:
			title, _ := firstMatch(item, emptyStateTitleRules)
			subtitle, _ := firstMatch(item, emptyStateSubtitleRules)
			page.EmptyState = &EmptyState{Title: title, Subtitle: subtitle}
			page.Entries = nil
			return page
		case kind == entryTypeStore:
			page.Entries = append(page.Entries, item)
		case kind == "" && entryStore.Get(item).IsObject():
			page.Entries = append(page.Entries, item)
		}
	}
	return page
}

// Extractor turns the entries of a page into listings.
type Extractor struct {
	// BaseURL roots relative store links, DefaultBaseURL when empty.
	BaseURL string
	Tel     telemetry.API
}

// ExtractListings extracts with the default base url and no reporting.
func ExtractListings(page Page) []Listing {
	return Extractor{}.Extract(page)
}

// Extract never fails, absent or malformed attributes become "N/A" and
// entries without a name are skipped.
func (e Extractor) Extract(page Page) []Listing {
	tel := e.Tel
	if tel == nil {
		tel = telemetry.Nop{}
	}

	if page.EmptyState != nil {
		tel.ReportWarning(
			report_extract_empty_state,
			page.Index,
			page.EmptyState.Title,
			page.EmptyState.Subtitle,
		)
		return nil
	}

	listings := make([]Listing, 0, len(page.Entries))
	for i, entry := range page.Entries {
		listing, ok := e.extractEntry(entry)
		if !ok {
			tel.ReportDebug(report_extract_missing_name, page.Index, i)
			continue
		}
		listings = append(listings, listing)
	}
	return listings
}

func orNotAvailable(s string, ok bool) string {
	if !ok {
		return offers.NotAvailable
	}
	return s
}

func (e Extractor) extractEntry(entry jsonval.Value) (Listing, bool) {
	name, ok := firstMatch(entry, nameRules)
	if !ok {
		return Listing{}, false
	}

	listing := Listing{
		Name:         name,
		Rating:       orNotAvailable(firstMatch(entry, ratingRules)),
		DeliveryTime: orNotAvailable(firstMatch(entry, deliveryTimeRules)),
		DeliveryCost: orNotAvailable(firstMatch(entry, deliveryCostRules)),
		PriceRange:   orNotAvailable(firstMatch(entry, priceRangeRules)),
		Badges:       extractBadges(entry),
	}
	listing.StoreUUID, _ = firstMatch(entry, storeUUIDRules)
	if link, ok := firstMatch(entry, storeURLRules); ok {
		listing.StoreURL = e.storeURL(link)
	}
	return listing, true
}

func (e Extractor) storeURL(link string) string {
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	base := strings.TrimSuffix(e.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasPrefix(link, "/") {
		link = "/" + link
	}
	return base + link
}

// extractBadges lists every badge text in feed order, each followed by its
// `[TYPE]` tag. Delivery time tags are left out.
func extractBadges(entry jsonval.Value) []string {
	var badges []string
	for _, meta := range storeMeta.Get(entry).Array() {
		if !meta.IsObject() {
			continue
		}
		text := meta.Key("text").StringOr("")
		if text != "" && text != offers.NotAvailable {
			badges = append(badges, text)
		}
		badgeType := meta.Key("badgeType").StringOr("")
		if badgeType != "" && badgeType != badgeTypeETD {
			badges = append(badges, "["+badgeType+"]")
		}
	}
	return badges
}
