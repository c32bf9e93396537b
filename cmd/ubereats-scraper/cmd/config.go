package cmd

import (
	"os"
	"strings"
	"time"
	"ubereats-scraper/internal/offers"
	"ubereats-scraper/internal/scrapers/ubereats"
	"ubereats-scraper/lib/configutil"
	"ubereats-scraper/lib/restyutil"
)

const (
	DefaultConfigFile = "ubereats.json5"
	CookiesEnv        = "UBER_EATS_COOKIES"
)

// Config is read from ubereats.json5 and ubereats.local.json5, fields left
// out take the defaults below.
type Config struct {
	// Cookies is only used when UBER_EATS_COOKIES is unset.
	Cookies string `json:"cookies"`
	BaseURL string `json:"base_url"`
	Output  string `json:"output"`

	TimeoutSeconds int `json:"timeout_seconds"`
	// Retries of -1 disables retrying.
	Retries           int     `json:"retries"`
	RetryWaitMs       int     `json:"retry_wait_ms"`
	RetryMaxWaitMs    int     `json:"retry_max_wait_ms"`
	RequestsPerSecond float64 `json:"requests_per_second"`

	MaxPages         int `json:"max_pages"`
	PageSize         int `json:"page_size"`
	FallbackPageSize int `json:"fallback_page_size"`

	DisableCloudflareBypass bool `json:"disable_cloudflare_bypass"`
}

func DefaultConfig() Config {
	client := ubereats.DefaultClientOptions()
	return Config{
		BaseURL:           client.BaseURL,
		Output:            offers.DefaultOutputFile,
		TimeoutSeconds:    int(client.Timeout / time.Second),
		Retries:           client.Retries,
		RetryWaitMs:       int(client.RetryWait / time.Millisecond),
		RetryMaxWaitMs:    int(client.RetryMaxWait / time.Millisecond),
		RequestsPerSecond: client.RequestsPerSecond,
		MaxPages:          ubereats.DefaultMaxPages,
		FallbackPageSize:  ubereats.DefaultFallbackPageSize,
	}
}

func LoadConfig(path string) (Config, error) {
	return configutil.ReadWithDefaults(path, DefaultConfig())
}

// ResolveCookies prefers the environment over the config file.
func (c Config) ResolveCookies() string {
	if env := strings.TrimSpace(os.Getenv(CookiesEnv)); env != "" {
		return env
	}
	return c.Cookies
}

func (c Config) ClientOptions(dump restyutil.InstrumentOutput) ubereats.ClientOptions {
	return ubereats.ClientOptions{
		BaseURL:           c.BaseURL,
		Timeout:           time.Duration(c.TimeoutSeconds) * time.Second,
		Retries:           c.Retries,
		RetryWait:         time.Duration(c.RetryWaitMs) * time.Millisecond,
		RetryMaxWait:      time.Duration(c.RetryMaxWaitMs) * time.Millisecond,
		RequestsPerSecond: c.RequestsPerSecond,
		PageSize:          c.PageSize,
		CloudflareBypass:  !c.DisableCloudflareBypass,
		Dump:              dump,
	}
}

func (c Config) PagerOptions() ubereats.PagerOptions {
	return ubereats.PagerOptions{
		MaxPages:         c.MaxPages,
		FallbackPageSize: c.FallbackPageSize,
	}
}
