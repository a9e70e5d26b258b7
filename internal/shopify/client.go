package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bossnova23/shopify-tracker/internal/apperr"
	"github.com/bossnova23/shopify-tracker/internal/metrics"
)

const (
	DefaultTimeout = 10 * time.Second
	maxBodySize    = 1 << 20
)

// ErrInvalidPayload marks a response that is not the expected product JSON.
var ErrInvalidPayload = errors.New("invalid product payload")

type Image struct {
	Src string `json:"src"`
}

type Variant struct {
	Price string `json:"price"`
}

type Product struct {
	Handle      string    `json:"handle" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	UpdatedAt   string    `json:"updated_at"`
	PublishedAt string    `json:"published_at"`
	Images      []Image   `json:"images"`
	Variants    []Variant `json:"variants" validate:"min=1"`
}

// FirstImage returns the src of the first image, or "" when there is none.
func (p *Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].Src
}

func (p *Product) FirstPrice() string {
	if len(p.Variants) == 0 {
		return ""
	}
	return p.Variants[0].Price
}

type productEnvelope struct {
	Product *Product `json:"product" validate:"required"`
}

type Client struct {
	http *http.Client
}

var validate = validator.New()

// NewClient returns a client for storefront product endpoints. httpClient
// supplies the transport and is copied, so the caller's timeout is left
// alone; nil means a default client.
func NewClient(httpClient *http.Client, timeout time.Duration) *Client {
	hc := &http.Client{}
	if httpClient != nil {
		copied := *httpClient
		hc = &copied
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc.Timeout = timeout
	return &Client{http: hc}
}

// FetchProduct downloads and decodes the public product JSON for handle.
func (c *Client) FetchProduct(ctx context.Context, domain, handle string) (*Product, error) {
	endpoint := ProductURL(domain, handle)
	start := time.Now()

	product, err := c.fetch(ctx, endpoint)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.UpstreamFetchDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	slog.DebugContext(ctx, "fetched product json", "url", endpoint, "outcome", outcome, "duration", time.Since(start))

	return product, err
}

func (c *Client) fetch(ctx context.Context, endpoint string) (*Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidInput, "invalid product url", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamFetchFailed, "failed to reach store", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperr.New(apperr.KindUpstreamFetchFailed,
			fmt.Sprintf("store responded with status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamFetchFailed, "failed to read store response", err)
	}

	return decodeProduct(body)
}

func decodeProduct(body []byte) (*Product, error) {
	var env productEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamFetchFailed, "store returned invalid product json",
			fmt.Errorf("%w: %v", ErrInvalidPayload, err))
	}

	if err := validate.Struct(&env); err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamFetchFailed, "store returned an unexpected product shape",
			fmt.Errorf("%w: %s", ErrInvalidPayload, describe(err)))
	}
	return env.Product, nil
}

func describe(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err.Error()
	}
	fields := make([]string, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(fields, ", ")
}
