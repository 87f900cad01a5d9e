package tabular

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/guestflow/platform/pkg/common/config"
	"github.com/guestflow/platform/pkg/common/httpclient"
	"github.com/guestflow/platform/pkg/fieldmap"
	"golang.org/x/oauth2"
)

var ErrMissingCredentials = errors.New("tabular API key and base id must be configured")

// Record is one row from the remote tabular API: an opaque record id plus
// a loosely-typed field map.
type Record struct {
	ID     string          `json:"id"`
	Fields fieldmap.Fields `json:"fields"`
}

type listResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

type Client struct {
	baseURL string
	baseID  string
	http    *http.Client
}

// NewClient builds a client for the remote tabular API. Missing
// credentials are a setup-level failure; nothing should partially run
// without them.
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg.TabularAPIKey == "" || cfg.TabularBaseID == "" {
		return nil, ErrMissingCredentials
	}

	base := httpclient.New(cfg.TabularTimeout)
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	authed := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cfg.TabularAPIKey,
		TokenType:   "Bearer",
	}))
	authed.Timeout = cfg.TabularTimeout

	return &Client{
		baseURL: cfg.TabularBaseURL,
		baseID:  cfg.TabularBaseID,
		http:    authed,
	}, nil
}

// ListRecords fetches the complete record set for a table, following the
// API's offset pagination until exhausted.
func (c *Client) ListRecords(ctx context.Context, table string) ([]Record, error) {
	var all []Record
	offset := ""

	for {
		page, next, err := c.listPage(ctx, table, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if next == "" {
			return all, nil
		}
		offset = next
	}
}

func (c *Client) listPage(ctx context.Context, table, offset string) ([]Record, string, error) {
	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, c.baseID, url.PathEscape(table))
	if offset != "" {
		endpoint += "?offset=" + url.QueryEscape(offset)
	}

	var parsed listResponse
	err := httpclient.Retry(ctx, 3, 200*time.Millisecond, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return &httpclient.StatusError{StatusCode: resp.StatusCode, URL: endpoint}
		}

		parsed = listResponse{}
		return json.NewDecoder(resp.Body).Decode(&parsed)
	})
	if err != nil {
		return nil, "", fmt.Errorf("listing records from %s: %w", table, err)
	}

	return parsed.Records, parsed.Offset, nil
}
