// Package offers groups the listings observed during a scrape by restaurant.
package offers

import "sort"

// NotAvailable stands in for any attribute the feed did not provide.
const NotAvailable = "N/A"

// Offer is one observed listing of a restaurant, without its name.
//
// The first three fields are always written, the rest only in extended
// output where every key is present even when empty. StoreUUID is only
// archived.
type Offer struct {
	DeliveryTime string `json:"Delivery Time"`
	DeliveryCost string `json:"Delivery Cost"`
	Rating       string `json:"Rating"`

	PriceRange string   `json:"Price Range"`
	Badges     []string `json:"Deals & Badges"`
	StoreURL   string   `json:"Store URL"`
	StoreUUID  string   `json:"-"`
}

type basicOffer struct {
	DeliveryTime string `json:"Delivery Time"`
	DeliveryCost string `json:"Delivery Cost"`
	Rating       string `json:"Rating"`
}

func (o Offer) basic() basicOffer {
	return basicOffer{
		DeliveryTime: o.DeliveryTime,
		DeliveryCost: o.DeliveryCost,
		Rating:       o.Rating,
	}
}

func (o Offer) extended() Offer {
	if o.Badges == nil {
		o.Badges = []string{}
	}
	return o
}

// Result maps a restaurant name to its offers in the order they were seen.
type Result map[string][]Offer

// Names returns the restaurant names sorted alphabetically.
func (r Result) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Aggregator accumulates offers across pages. Duplicates are kept since each
// one is a distinct listing (another branch, another promotional slot).
type Aggregator struct {
	result Result
}

func NewAggregator() *Aggregator {
	return &Aggregator{result: Result{}}
}

func (a *Aggregator) Add(name string, offer Offer) {
	a.result[name] = append(a.result[name], offer)
}

// Len counts the distinct restaurant names seen so far.
func (a *Aggregator) Len() int {
	return len(a.result)
}

// Result hands off the accumulated mapping, the Aggregator must not be used
// afterwards.
func (a *Aggregator) Result() Result {
	out := a.result
	a.result = nil
	return out
}
