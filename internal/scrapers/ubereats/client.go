package ubereats

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
	"ubereats-scraper/internal/components/assert"
	"ubereats-scraper/internal/components/telemetry"
	"ubereats-scraper/lib/restyutil"
	"ubereats-scraper/pkg/jsonval"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://www.ubereats.com"
	feedPath       = "/_p/api/getFeedV1"
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
)

type ClientOptions struct {
	BaseURL string
	// Timeout bounds each attempt, not the whole retried request.
	Timeout time.Duration
	// Retries is the number of attempts made after the first one, only
	// transport errors and 5xx responses are retried.
	Retries      int
	RetryWait    time.Duration
	RetryMaxWait time.Duration
	// RequestsPerSecond is shared by every attempt, retries included.
	RequestsPerSecond float64
	// PageSize is sent as a hint, the feed may ignore it. Zero leaves it out.
	PageSize         int
	CloudflareBypass bool
	// Dump receives every HTTP exchange when set.
	Dump restyutil.InstrumentOutput
}

func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		BaseURL:           DefaultBaseURL,
		Timeout:           30 * time.Second,
		Retries:           3,
		RetryWait:         time.Second,
		RetryMaxWait:      10 * time.Second,
		RequestsPerSecond: 1,
		CloudflareBypass:  true,
	}
}

func (o ClientOptions) withDefaults() ClientOptions {
	defaults := DefaultClientOptions()
	if o.BaseURL == "" {
		o.BaseURL = defaults.BaseURL
	}
	o.BaseURL = strings.TrimSuffix(o.BaseURL, "/")
	if o.Timeout <= 0 {
		o.Timeout = defaults.Timeout
	}
	if o.Retries < 0 {
		o.Retries = 0
	}
	if o.RetryWait <= 0 {
		o.RetryWait = defaults.RetryWait
	}
	if o.RetryMaxWait < o.RetryWait {
		o.RetryMaxWait = max(defaults.RetryMaxWait, o.RetryWait)
	}
	if o.RequestsPerSecond <= 0 {
		o.RequestsPerSecond = defaults.RequestsPerSecond
	}
	return o
}

// Client fetches pages of the delivery feed with a browser session.
type Client struct {
	http    *resty.Client
	baseURL string
	opts    ClientOptions

	tel telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("ubereats_client", tel)
	opts = opts.withDefaults()

	httpClient := resty.New()
	httpClient.SetBaseURL(opts.BaseURL)
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	httpClient.SetTimeout(opts.Timeout)
	httpClient.SetHeaders(map[string]string{
		"user-agent":           userAgent,
		"accept":               "application/json",
		"accept-language":      "en-US,en;q=0.9",
		"x-csrf-token":         "x",
		"x-uber-client-gitref": "web-eats-v2",
		"origin":               opts.BaseURL,
	})

	httpClient.
		SetRetryCount(opts.Retries).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(opts.RetryMaxWait).
		AddRetryCondition(shouldRetry)

	// burst of 1 keeps retries from firing back to back
	rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(httpClient, tel)
	restyutil.InstrumentClient(httpClient, tracer, opts.Dump)

	return &Client{
		http:    httpClient,
		baseURL: opts.BaseURL,
		opts:    opts,
		tel:     tel,
	}, nil
}

// BaseURL is where store links are rooted.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// shouldRetry retries transport errors (per attempt timeouts included) and
// 5xx responses, never a request whose context is done.
func shouldRetry(res *resty.Response, err error) bool {
	if res != nil && res.Request != nil && res.Request.Context().Err() != nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if err != nil {
		return true
	}
	return res != nil && res.StatusCode() >= http.StatusInternalServerError
}

type feedPageInfo struct {
	Offset    int    `json:"offset"`
	PageSize  int    `json:"pageSize,omitempty"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type feedRequest struct {
	CacheKey string       `json:"cacheKey"`
	PageInfo feedPageInfo `json:"pageInfo"`
	Cursor   string       `json:"cursor,omitempty"`
}

func feedQuery(loc Location) map[string]string {
	return map[string]string{
		"localeCode": loc.Region.Country,
		"city":       strings.ToLower(loc.City),
		"state":      loc.Region.Code,
	}
}

// FetchPage requests one page of the feed at `cursor`. Transport errors and
// 5xx responses are retried, everything else is returned as is.
func (c *Client) FetchPage(ctx context.Context, creds Credentials, loc Location, cursor Cursor) (Page, error) {
	ctx, span := tracer.Start(ctx, "FetchPage")
	defer span.End()
	span.SetAttributes(
		attribute.String("location", loc.String()),
		attribute.Int("offset", cursor.Offset),
	)

	cacheKey, fallback := buildCacheKey(creds.Location(), loc)
	if fallback != nil {
		c.tel.ReportWarning(report_client_cache_key, fallback, loc.String())
	}

	req := c.http.R().
		SetContext(ctx).
		SetHeader("cookie", creds.Header()).
		SetHeader("referer", fmt.Sprintf("%s/%s/", c.baseURL, loc.Region.Country)).
		SetQueryParams(feedQuery(loc)).
		SetBody(feedRequest{
			CacheKey: cacheKey,
			PageInfo: feedPageInfo{
				Offset:    cursor.Offset,
				PageSize:  c.opts.PageSize,
				StartTime: "0",
				EndTime:   "0",
			},
			Cursor: cursor.Token,
		})

	res, err := req.Post(feedPath)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			span.SetStatus(codes.Error, "cancelled")
			return Page{}, ctxErr
		}
		err = &FetchFailedError{Attempts: attempts(req), Err: err}
		c.tel.ReportBroken(report_client_fetch_page, err, loc.String())
		span.SetStatus(codes.Error, "fetch failed")
		return Page{}, err
	}

	status := res.StatusCode()
	span.SetAttributes(attribute.Int("status", status))
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		err = &AuthenticationExpiredError{Status: status}
	case status >= http.StatusInternalServerError:
		err = &FetchFailedError{Attempts: attempts(req), Err: statusError{status: status}}
	case !res.IsSuccess():
		err = &UnexpectedResponseError{Status: status}
	}
	if err != nil {
		c.tel.ReportBroken(report_client_fetch_page, err, loc.String())
		span.SetStatus(codes.Error, "bad status")
		return Page{}, err
	}

	body, err := jsonval.Parse(res.Body())
	if err != nil {
		err = &UnexpectedResponseError{Status: status, Err: fmt.Errorf("decode feed: %w", err)}
		c.tel.ReportBroken(report_client_fetch_page, err, loc.String())
		span.SetStatus(codes.Error, "undecodable body")
		return Page{}, err
	}

	page := decodePage(body)
	page.Cursor = cursor
	span.SetAttributes(attribute.Int("entries", len(page.Entries)))
	return page, nil
}

// attempts is at least 1 even when the request never left the client.
func attempts(req *resty.Request) int {
	return max(req.Attempt, 1)
}
