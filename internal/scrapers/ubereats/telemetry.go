package ubereats

import "ubereats-scraper/lib/telemetry"

var tracer = telemetry.Tracer("ubereats.internal.scrapers.ubereats")

const (
	report_client_fetch_page    = "client.fetch-page"
	report_client_cache_key     = "client.cache-key"
	report_pager_next           = "pager.next"
	report_pager_pages          = "pager.pages"
	report_extract_empty_state  = "extract.empty-state"
	report_extract_missing_name = "extract.missing-name"
	report_scrape_listings      = "scrape.listings"
)
