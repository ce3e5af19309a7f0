package listsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/giantswarm/microerror"
)

// Row is a single item of a named list. Fields maps column names to their
// values rendered as strings; a column absent from the row reads as "".
type Row struct {
	ID     string
	Fields map[string]string
}

// Field returns the value of the named column, or "" when the column is
// missing from the row.
func (r Row) Field(name string) string {
	return r.Fields[name]
}

// Filter restricts Items to rows whose column contains the given value.
type Filter struct {
	Column   string
	Contains string
}

// Client provides access to the remote list service API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new list service client
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type itemPayload struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

type itemsResponse struct {
	Items []itemPayload `json:"items"`
}

// Items returns all rows of the named list, optionally restricted by filter.
func (c *Client) Items(ctx context.Context, list string, filter *Filter) ([]Row, error) {
	if c.baseURL == "" {
		return nil, microerror.Maskf(networkOrAuthFailureError, "list service URL not configured")
	}

	reqURL := fmt.Sprintf("%s/lists/%s/items", c.baseURL, url.PathEscape(list))
	if filter != nil {
		q := url.Values{}
		q.Set("filterColumn", filter.Column)
		q.Set("filterContains", filter.Contains)
		reqURL += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, microerror.Mask(err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, microerror.Maskf(networkOrAuthFailureError, "fetching list %s: %v", list, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, microerror.Maskf(networkOrAuthFailureError, "fetching list %s: status %d: %s", list, resp.StatusCode, string(body))
	}

	var result itemsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, microerror.Maskf(networkOrAuthFailureError, "decoding list %s: %v", list, err)
	}

	rows := make([]Row, 0, len(result.Items))
	for _, item := range result.Items {
		rows = append(rows, Row{
			ID:     item.ID,
			Fields: stringifyFields(item.Fields),
		})
	}

	return rows, nil
}

// AddItem appends a new row to the named list and returns its id.
func (c *Client) AddItem(ctx context.Context, list string, fields map[string]string) (string, error) {
	if c.baseURL == "" {
		return "", microerror.Maskf(networkOrAuthFailureError, "list service URL not configured")
	}

	payload, err := json.Marshal(map[string]any{"fields": fields})
	if err != nil {
		return "", microerror.Mask(err)
	}

	reqURL := fmt.Sprintf("%s/lists/%s/items", c.baseURL, url.PathEscape(list))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return "", microerror.Mask(err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", microerror.Maskf(networkOrAuthFailureError, "adding item to %s: %v", list, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", microerror.Maskf(networkOrAuthFailureError, "adding item to %s: status %d: %s", list, resp.StatusCode, string(body))
	}

	var created itemPayload
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", microerror.Maskf(networkOrAuthFailureError, "decoding created item: %v", err)
	}

	return created.ID, nil
}

// UpdateItem overwrites the given columns of an existing row.
func (c *Client) UpdateItem(ctx context.Context, list, id string, fields map[string]string) error {
	if c.baseURL == "" {
		return microerror.Maskf(networkOrAuthFailureError, "list service URL not configured")
	}

	payload, err := json.Marshal(map[string]any{"fields": fields})
	if err != nil {
		return microerror.Mask(err)
	}

	reqURL := fmt.Sprintf("%s/lists/%s/items/%s", c.baseURL, url.PathEscape(list), url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, reqURL, bytes.NewReader(payload))
	if err != nil {
		return microerror.Mask(err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return microerror.Maskf(networkOrAuthFailureError, "updating item %s in %s: %v", id, list, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return microerror.Maskf(networkOrAuthFailureError, "updating item %s in %s: status %d: %s", id, list, resp.StatusCode, string(body))
	}

	return nil
}

// Ping checks that the list service is reachable and the token is accepted.
func (c *Client) Ping(ctx context.Context) error {
	if c.baseURL == "" {
		return microerror.Maskf(networkOrAuthFailureError, "list service URL not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return microerror.Mask(err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return microerror.Maskf(networkOrAuthFailureError, "pinging list service: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return microerror.Maskf(networkOrAuthFailureError, "pinging list service: status %d", resp.StatusCode)
	}

	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
}

// stringifyFields renders every column value as a string. The service may
// return numbers or booleans for some columns; rows are normalized here so
// the rest of the agent only deals with strings.
func stringifyFields(fields map[string]any) map[string]string {
	out := make(map[string]string, len(fields))
	for name, value := range fields {
		out[name] = stringify(value)
	}
	return out
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
