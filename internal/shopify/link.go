package shopify

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/bossnova23/shopify-tracker/internal/apperr"
)

// ProductLink identifies a product on a storefront.
type ProductLink struct {
	Domain string
	Handle string
}

// ParseProductLink extracts the store domain and product handle from a
// storefront product URL such as
// https://example.myshopify.com/collections/mugs/products/red-mug?variant=1.
// The scheme may be omitted.
func ParseProductLink(raw string) (ProductLink, error) {
	u, err := parseStoreURL(raw)
	if err != nil {
		return ProductLink{}, err
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	idx := -1
	for i, seg := range segments {
		if seg == "products" {
			idx = i
		}
	}
	if idx == -1 || idx+1 >= len(segments) {
		return ProductLink{}, apperr.New(apperr.KindInvalidInput,
			fmt.Sprintf("product link %q does not contain /products/<handle>", raw))
	}
	if idx+2 != len(segments) {
		return ProductLink{}, apperr.New(apperr.KindInvalidInput,
			fmt.Sprintf("product link %q has unexpected segments after the handle", raw))
	}

	handle := segments[idx+1]
	if handle == "" {
		return ProductLink{}, apperr.New(apperr.KindInvalidInput,
			fmt.Sprintf("product link %q has an empty handle", raw))
	}

	return ProductLink{Domain: strings.ToLower(u.Host), Handle: handle}, nil
}

// NormalizeDomain reduces a website address (with or without scheme, path or
// trailing slash) to the lowercased host stores are keyed by.
func NormalizeDomain(raw string) (string, error) {
	u, err := parseStoreURL(raw)
	if err != nil {
		return "", err
	}
	return strings.ToLower(u.Host), nil
}

// ProductURL is the public JSON endpoint for a product.
func ProductURL(domain, handle string) string {
	return "https://" + domain + "/products/" + url.PathEscape(handle) + "/products.json"
}

func parseStoreURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "url is required")
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidInput, fmt.Sprintf("invalid url %q", raw), err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, apperr.New(apperr.KindInvalidInput, fmt.Sprintf("unsupported url scheme %q", u.Scheme))
	}
	if u.Hostname() == "" {
		return nil, apperr.New(apperr.KindInvalidInput, fmt.Sprintf("url %q has no host", raw))
	}
	return u, nil
}
