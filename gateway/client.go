package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"f0oster/adspyview/diff"
	"f0oster/adspyview/sddiff"

	"github.com/apex/log"
	"github.com/creasty/defaults"
)

// Config configures the HTTP gateway. BaseURL is the API root, e.g.
// http://localhost:8080/api.
type Config struct {
	BaseURL    string        `default:"http://localhost:8080/api"`
	Timeout    time.Duration `default:"15s"`
	HTTPClient *http.Client
}

// Client talks to the adSpy web API.
type Client struct {
	base string
	http *http.Client
}

var _ Gateway = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("apply client defaults: %w", err)
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API base %q: %w", cfg.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid API base %q: scheme must be http or https", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		base: strings.TrimRight(cfg.BaseURL, "/"),
		http: httpClient,
	}, nil
}

// BaseURL returns the API root requests are sent to.
func (c *Client) BaseURL() string {
	return c.base
}

func (c *Client) ListObjects(ctx context.Context, params ListParams) (*ObjectList, error) {
	if err := defaults.Set(&params); err != nil {
		return nil, fmt.Errorf("apply list defaults: %w", err)
	}

	q := url.Values{}
	if params.Type != "" {
		q.Set("type", params.Type)
	}
	if params.Search != "" {
		q.Set("search", params.Search)
	}
	q.Set("limit", strconv.Itoa(params.Limit))
	q.Set("offset", strconv.Itoa(params.Offset))

	var list ObjectList
	if err := c.do(ctx, http.MethodGet, c.base+"/objects?"+q.Encode(), nil, &list); err != nil {
		return nil, err
	}
	if list.Objects == nil {
		list.Objects = []ADObject{}
	}
	return &list, nil
}

func (c *Client) GetObject(ctx context.Context, id string) (*ADObject, error) {
	var obj ADObject
	if err := c.do(ctx, http.MethodGet, c.objectURL(id), nil, &obj); err != nil {
		return nil, err
	}
	return &obj, nil
}

func (c *Client) GetObjectTimeline(ctx context.Context, id string) ([]TimelineEntry, error) {
	timeline := []TimelineEntry{}
	if err := c.do(ctx, http.MethodGet, c.objectURL(id)+"/timeline", nil, &timeline); err != nil {
		return nil, err
	}
	if timeline == nil {
		timeline = []TimelineEntry{}
	}
	return timeline, nil
}

func (c *Client) GetVersionChanges(ctx context.Context, id string, usn int64) ([]diff.AttributeChange, error) {
	endpoint := fmt.Sprintf("%s/versions/%d/changes", c.objectURL(id), usn)
	changes := []diff.AttributeChange{}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &changes); err != nil {
		return nil, err
	}
	if changes == nil {
		changes = []diff.AttributeChange{}
	}
	return changes, nil
}

type sdDiffRequest struct {
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

func (c *Client) DiffSecurityDescriptors(ctx context.Context, oldValue, newValue string) (*sddiff.SDDiffResponse, error) {
	var resp sddiff.SDDiffResponse
	body := sdDiffRequest{OldValue: oldValue, NewValue: newValue}
	if err := c.do(ctx, http.MethodPost, c.base+"/sddiff", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetObjectTypes(ctx context.Context) ([]string, error) {
	types := []string{}
	if err := c.do(ctx, http.MethodGet, c.base+"/object-types", nil, &types); err != nil {
		return nil, err
	}
	if types == nil {
		types = []string{}
	}
	return types, nil
}

func (c *Client) objectURL(id string) string {
	return c.base + "/objects/" + url.PathEscape(id)
}

// do performs one request and decodes a 2xx JSON body into out. Every
// failure is returned as an *APIError carrying the endpoint.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	logger := log.WithFields(log.Fields{"method": method, "endpoint": endpoint})

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return TransportError(endpoint, fmt.Errorf("encode request body: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return TransportError(endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger.Debug("gateway request")
	resp, err := c.http.Do(req)
	if err != nil {
		logger.WithError(err).Warn("gateway request failed")
		return TransportError(endpoint, err)
	}
	defer resp.Body.Close()

	logger = logger.WithField("status", resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		apiErr := StatusError(endpoint, resp.StatusCode)
		logger.Warn(apiErr.Message)
		return apiErr
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.WithError(err).Warn("reading response body failed")
		return MalformedError(endpoint, resp.StatusCode, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		logger.WithError(err).Warn("decoding response body failed")
		return MalformedError(endpoint, resp.StatusCode, err)
	}

	logger.WithField("bytes", len(data)).Debug("gateway response")
	return nil
}
