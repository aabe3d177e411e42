// Package facultyapi is the HTTP client for the remote CV data service. The
// service exposes query operations returning raw record lists; every record
// carries an opaque serialized attribute blob that this client never
// interprets.
package facultyapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/facultytools/vitae/internal/common"
	"github.com/facultytools/vitae/internal/config"
	"github.com/facultytools/vitae/internal/model"
	"github.com/facultytools/vitae/internal/service"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Client implements the RecordFetcher interface against the faculty data
// service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	retryOpts  service.RetryOptions
}

// Wire types. data_details arrives either as a JSON object or as a
// pre-serialized string depending on which service version produced the
// record; both flatten to the serialized form.
type recordList struct {
	Records []wireRecord `json:"records"`
}

type wireRecord struct {
	UserID      string          `json:"user_id"`
	SectionID   string          `json:"data_section_id"`
	DataDetails json.RawMessage `json:"data_details"`
}

type userList struct {
	Users []struct {
		ID string `json:"id"`
	} `json:"users"`
}

// NewClient creates a data service client from configuration. Authentication
// is either a static bearer token or OAuth2 client credentials.
func NewClient(ctx context.Context, cfg *config.Service) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid service config: %w", err)
	}

	var tokenSource oauth2.TokenSource
	if cfg.Token != "" {
		tokenSource = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	} else {
		creds := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		tokenSource = creds.TokenSource(ctx)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	httpClient.Timeout = cfg.Timeout

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: httpClient,
		retryOpts: service.RetryOptions{
			MaxAttempts:  cfg.RetryAttempts,
			InitialDelay: cfg.RetryDelay,
		},
	}, nil
}

// FetchRecords returns the raw records for one (user, section) pair.
func (c *Client) FetchRecords(ctx context.Context, userID, sectionID string) ([]model.RawRecord, error) {
	params := url.Values{}
	params.Set("user_id", userID)
	params.Set("section_id", sectionID)

	var list recordList
	if err := c.getJSON(ctx, "/records", params, &list); err != nil {
		return nil, fmt.Errorf("failed to fetch records for user %s section %s: %w", userID, sectionID, err)
	}
	return convertRecords(list.Records), nil
}

// FetchDeclarations returns the raw yearly-declaration records for a user.
// Year 0 means all years.
func (c *Client) FetchDeclarations(ctx context.Context, userID string, year int) ([]model.RawRecord, error) {
	params := url.Values{}
	params.Set("user_id", userID)
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}

	var list recordList
	if err := c.getJSON(ctx, "/declarations", params, &list); err != nil {
		return nil, fmt.Errorf("failed to fetch declarations for user %s: %w", userID, err)
	}
	return convertRecords(list.Records), nil
}

// ListUsers returns the user ids in a department scope.
func (c *Client) ListUsers(ctx context.Context, department string) ([]string, error) {
	params := url.Values{}
	if department != "" {
		params.Set("department", department)
	}

	var list userList
	if err := c.getJSON(ctx, "/users", params, &list); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	ids := make([]string, 0, len(list.Users))
	for _, u := range list.Users {
		ids = append(ids, u.ID)
	}
	return ids, nil
}

// getJSON performs one GET with retry on transport and server-side failures.
// Client-side failures (4xx) are not retried.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	return common.WithRetry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return &common.RetryableError{Err: err, Retryable: false}
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		switch {
		case resp.StatusCode == http.StatusOK:
			// fall through to decode
		case resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", common.ErrRateLimit, resp.Status)
		case resp.StatusCode >= 500:
			return fmt.Errorf("%w: %s", common.ErrServiceUnavailable, resp.Status)
		default:
			body, _ := io.ReadAll(resp.Body)
			return &common.RetryableError{
				Err:       fmt.Errorf("data service error: %d - %s", resp.StatusCode, string(body)),
				Retryable: false,
			}
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			// A malformed payload will not become valid on retry.
			return &common.RetryableError{
				Err:       fmt.Errorf("failed to decode response: %w", err),
				Retryable: false,
			}
		}
		return nil
	}, c.retryOpts)
}

func convertRecords(wire []wireRecord) []model.RawRecord {
	records := make([]model.RawRecord, 0, len(wire))
	for _, w := range wire {
		records = append(records, model.RawRecord{
			UserID:      w.UserID,
			SectionID:   w.SectionID,
			DataDetails: detailsText(w.DataDetails),
		})
	}
	return records
}

// detailsText normalizes the two data_details wire shapes to one serialized
// blob: a JSON string is unquoted, anything else keeps its JSON text.
func detailsText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}
