package ubereats

import (
	"strconv"
	"ubereats-scraper/pkg/jsonval"
)

// rule reads one attribute at path, the first rule of a list that yields a
// non-empty value wins.
type rule struct {
	path jsonval.Path
	read func(jsonval.Value) (string, bool)
}

func readText(v jsonval.Value) (string, bool) {
	s := v.StringOr("")
	return s, s != ""
}

// readTextOrNumber renders numbers in their shortest form, ex. 4.50 -> 4.5.
func readTextOrNumber(v jsonval.Value) (string, bool) {
	if s, ok := readText(v); ok {
		return s, true
	}
	n, ok := v.Number()
	if !ok {
		return "", false
	}
	f, err := strconv.ParseFloat(n, 64)
	if err != nil {
		return "", false
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}

func textRules(exprs ...string) []rule {
	rules := make([]rule, len(exprs))
	for i, expr := range exprs {
		rules[i] = rule{path: jsonval.MustPath(expr), read: readText}
	}
	return rules
}

func firstMatch(v jsonval.Value, rules []rule) (string, bool) {
	for _, r := range rules {
		if s, ok := r.read(r.path.Get(v)); ok {
			return s, true
		}
	}
	return "", false
}

const (
	entryTypeStore      = "REGULAR_STORE"
	entryTypeEmptyState = "EMPTY_STATE"
	badgeTypeETD        = "ETD"
	badgeTypeFare       = "FARE"
)

func readLastFare(meta jsonval.Value) (string, bool) {
	var fare string
	for _, badge := range meta.Array() {
		if badge.Key("badgeType").StringOr("") != badgeTypeFare {
			continue
		}
		if text, ok := readText(badge.Key("text")); ok {
			fare = text
		}
	}
	return fare, fare != ""
}

// rules applied to a single feed entry
var (
	nameRules = textRules(
		"store.title.text",
		"store.title",
		"store.name",
		"title.text",
		"title",
	)
	ratingRules = []rule{
		{path: jsonval.MustPath("store.rating.text"), read: readTextOrNumber},
		{path: jsonval.MustPath("store.rating.ratingValue"), read: readTextOrNumber},
		{path: jsonval.MustPath("store.rating"), read: readTextOrNumber},
	}
	deliveryTimeRules = textRules(
		"store.meta[badgeType=ETD].text",
		"store.etdInfo.text",
		"store.deliveryTime",
	)
	// a store can carry several FARE badges, the last one is the fee that
	// applies
	deliveryCostRules = append(
		[]rule{{path: jsonval.MustPath("store.meta"), read: readLastFare}},
		textRules("store.fareInfo.displayString", "store.deliveryFee")...,
	)
	priceRangeRules = textRules("store.priceBucket")
	storeURLRules   = textRules("store.actionUrl")
	storeUUIDRules  = textRules("store.storeUuid", "uuid")

	entryType  = jsonval.MustPath("type")
	entryStore = jsonval.MustPath("store")
	storeMeta  = jsonval.MustPath("store.meta")
)

// rules applied to a whole response
var (
	feedItemsPaths = []jsonval.Path{
		jsonval.MustPath("data.feedItems"),
		jsonval.MustPath("feedItems"),
	}
	hasMorePaths = []jsonval.Path{
		jsonval.MustPath("data.paginationInfo.hasMore"),
		jsonval.MustPath("data.meta.hasMore"),
		jsonval.MustPath("data.hasMore"),
	}
	nextCursorRules = []rule{
		{path: jsonval.MustPath("data.paginationInfo.cursor"), read: readTextOrNumber},
		{path: jsonval.MustPath("data.paginationInfo.nextCursor"), read: readTextOrNumber},
		{path: jsonval.MustPath("data.meta.nextCursor"), read: readTextOrNumber},
		{path: jsonval.MustPath("data.nextCursor"), read: readTextOrNumber},
	}
	emptyStateTitleRules    = textRules("title.text", "title")
	emptyStateSubtitleRules = textRules("subtitle.text", "subtitle")
)
