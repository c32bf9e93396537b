package ubereats

import (
	"context"
	"fmt"
	"time"
	"ubereats-scraper/internal/components/chrono"
	"ubereats-scraper/internal/components/telemetry"
	"ubereats-scraper/internal/offers"
)

type ScrapeRequest struct {
	// Cookies is the raw `key=value; key=value` session cookie string.
	Cookies string
	City    string
	Region  string

	Client ClientOptions
	Pager  PagerOptions
	Tel    telemetry.API
	// Clock stamps the run, the system clock when nil.
	Clock chrono.API
}

type ScrapeStats struct {
	Location    Location
	Pages       int
	Listings    int
	Restaurants int
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Scrape fetches every page of the feed for a city and groups the listings
// by restaurant name. Credentials and region are validated before anything
// is sent. The result is only returned when pagination ended cleanly.
func Scrape(ctx context.Context, req ScrapeRequest) (offers.Result, ScrapeStats, error) {
	clock := req.Clock
	if clock == nil {
		clock = chrono.StandardImpl{}
	}
	tel := req.Tel
	if tel == nil {
		tel = telemetry.Nop{}
	}
	stats := ScrapeStats{StartedAt: clock.Now()}

	creds, err := ParseCookies(req.Cookies)
	if err != nil {
		return nil, stats, err
	}
	loc, err := ResolveLocation(req.City, req.Region)
	if err != nil {
		return nil, stats, err
	}
	stats.Location = loc

	client, err := NewClient(req.Client, tel)
	if err != nil {
		return nil, stats, fmt.Errorf("create client: %w", err)
	}

	ctx, span := tracer.Start(ctx, "Scrape")
	defer span.End()

	pager := NewPager(client, creds, loc, req.Pager, tel)
	extractor := Extractor{BaseURL: client.BaseURL(), Tel: tel}
	aggregator := offers.NewAggregator()
	for pager.Next(ctx) {
		for _, listing := range extractor.Extract(pager.Page()) {
			aggregator.Add(listing.Name, listing.Offer())
			stats.Listings++
		}
	}
	stats.Pages = pager.Fetched()
	if err := pager.Err(); err != nil {
		span.RecordError(err)
		return nil, stats, err
	}

	stats.Restaurants = aggregator.Len()
	result := aggregator.Result()
	stats.FinishedAt = clock.Now()
	tel.ReportCount(report_scrape_listings, int64(stats.Listings))
	return result, stats, nil
}
