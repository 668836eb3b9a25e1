package catalogapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/niksmo/naran-storefront/internal/core/domain"
	"github.com/niksmo/naran-storefront/internal/core/port"
)

var _ port.CatalogFetcher = (*Client)(nil)

var ErrUnexpectedStatus = errors.New("unexpected response status")

const errBodyLimit = 512

// Client reads the product list from the catalog backend.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client. A nil httpClient means [http.DefaultClient],
// which has no timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    httpClient,
	}
}

// FetchProducts makes a single GET <baseURL>/products request.
func (c *Client) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "Client.FetchProducts"
	log := slog.With("op", op)

	endpoint, err := url.JoinPath(c.baseURL, "products")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
		return nil, fmt.Errorf(
			"%s: %w: %d %s",
			op, ErrUnexpectedStatus, resp.StatusCode,
			strings.TrimSpace(string(body)),
		)
	}

	var ps []Product
	if err := json.NewDecoder(resp.Body).Decode(&ps); err != nil {
		return nil, fmt.Errorf("%s: failed to decode products: %w", op, err)
	}

	log.Debug("products fetched", "nProducts", len(ps))
	return toDomain(ps), nil
}
