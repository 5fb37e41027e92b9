// Package source fetches navigation pages, collection pages and card images from the card list
// website. It never retries and never caches, callers decide what a failed fetch means for them.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"digicards/internal/components/assert"
	"digicards/internal/components/telemetry"
	"digicards/lib/restyutil"
	libtelemetry "digicards/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const DefaultBaseUrl = "https://world.digimoncard.com/cardlist/"

const (
	report_client_fetch       = "client.fetch"
	report_client_fetch_bytes = "client.fetch-bytes"
)

// ErrTransport is matched by every TransportError.
var ErrTransport = errors.New("transport error")

// TransportError is returned when a url could not be fetched, either because the connection
// failed or because the server answered with a non-2xx status.
type TransportError struct {
	Url    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s", e.Url, e.Err.Error())
	}
	return fmt.Sprintf("fetch %s: unexpected status %d", e.Url, e.Status)
}

func (e *TransportError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrTransport, e.Err}
	}
	return []error{ErrTransport}
}

// Page is a fetched document.
type Page struct {
	Url    *url.URL
	Status int
	Body   []byte
}

// OK reports whether the page was served with a 2xx status.
func (p Page) OK() bool {
	return p.Status >= 200 && p.Status < 300
}

// Fetcher is the contract the rest of the pipeline depends on.
//
// note: fault injection point
type Fetcher interface {
	// Fetch returns the page at `link` whatever its status code, an error is only returned
	// when no response was received.
	Fetch(ctx context.Context, link string) (Page, error)
	// FetchBytes returns the body at `link`, a non-2xx status is a TransportError.
	FetchBytes(ctx context.Context, link string) ([]byte, error)
}

type Options struct {
	BaseUrl string
	// Timeout bounds a single request, 0 means 30 seconds.
	Timeout time.Duration
	// RequestsPerSecond limits outgoing requests, 0 disables the limiter.
	RequestsPerSecond float64
	// CloudflareBypass wraps the transport so requests look like they come from a browser.
	CloudflareBypass bool
	UserAgent        string
	// DumpDir receives a copy of every document fetched when set, see restyutil.DumpDocuments.
	DumpDir string
}

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	tel telemetry.API
}

func NewClient(opts Options, tel telemetry.API) (*Client, error) {
	assert.NotNil("tel", tel)
	tel = telemetry.NewScopedAPI("source", tel)

	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
	}

	parsedBaseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	httpClient := resty.New()
	httpClient.SetTimeout(opts.Timeout)
	httpClient.SetRetryCount(0)
	httpClient.SetHeader("user-agent", opts.UserAgent)
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		// max burst >= rps just means that no requests will be dropped
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel)
	libtelemetry.TraceResty(httpClient, "digicards.source")

	if opts.DumpDir != "" {
		output, err := restyutil.NewFilesystemOutput(opts.DumpDir)
		if err != nil {
			return nil, fmt.Errorf("create dump dir: %w", err)
		}
		restyutil.DumpDocuments(httpClient, output)
	}

	return &Client{
		BaseUrl: parsedBaseUrl,
		Http:    httpClient,
		tel:     tel,
	}, nil
}

// Resolve resolves a link relative to the client's base url.
func (c *Client) Resolve(link string) (*url.URL, error) {
	parsed, err := url.Parse(link)
	if err != nil {
		return nil, err
	}
	return c.BaseUrl.ResolveReference(parsed), nil
}

func (c *Client) Fetch(ctx context.Context, link string) (Page, error) {
	endpoint, err := c.Resolve(link)
	if err != nil {
		return Page{}, &TransportError{Url: link, Err: err}
	}

	c.tel.ReportDebug(report_client_fetch, endpoint.String())

	res, err := c.Http.R().
		SetContext(ctx).
		Get(endpoint.String())
	if err != nil {
		c.tel.ReportBroken(
			report_client_fetch,
			fmt.Errorf("fetch: %w", err),
			endpoint.String(),
		)
		return Page{}, &TransportError{Url: endpoint.String(), Err: err}
	}

	return Page{
		Url:    endpoint,
		Status: res.StatusCode(),
		Body:   res.Body(),
	}, nil
}

func (c *Client) FetchBytes(ctx context.Context, link string) ([]byte, error) {
	page, err := c.Fetch(ctx, link)
	if err != nil {
		return nil, err
	}
	if !page.OK() {
		c.tel.ReportWarning(
			report_client_fetch_bytes,
			page.Url.String(),
			page.Status,
		)
		return nil, &TransportError{Url: page.Url.String(), Status: page.Status}
	}
	return page.Body, nil
}
