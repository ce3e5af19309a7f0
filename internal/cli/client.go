package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mewada-madhusudan/cuddly-disco/internal/admin"
	"github.com/mewada-madhusudan/cuddly-disco/internal/api"
	"github.com/mewada-madhusudan/cuddly-disco/internal/output"
	"github.com/mewada-madhusudan/cuddly-disco/internal/store"
)

// client is a thin HTTP wrapper around the agent's local API.
type client struct {
	base string
	http *http.Client
}

// newClient builds a client for the configured agent address. The underlying
// http.Client carries no global timeout because installs and the event stream
// legitimately hold a request open for minutes; callers bound individual
// requests with their context.
func newClient() *client {
	return &client{
		base: strings.TrimRight(agentURL, "/"),
		http: &http.Client{},
	}
}

func (c *client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *client) delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

func (c *client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("cannot reach agent at %s: %w", c.base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// apiError extracts the agent's error message from a failed response.
func apiError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return errors.New(body.Error)
	}
	return fmt.Errorf("agent returned %s", resp.Status)
}

// watchProgress follows the agent's event stream and feeds transfer progress
// for one app into the bar. The bar is cosmetic, so stream errors are
// swallowed and the command's own response stays authoritative.
func (c *client) watchProgress(ctx context.Context, app string, bar *output.ProgressBar) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/catalog/events", nil)
	if err != nil {
		return
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var ev api.Event
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			continue
		}
		if ev.Type == api.EventProgress && ev.Progress != nil && strings.EqualFold(ev.Progress.App, app) {
			bar.SetPercent(ev.Progress.Percent)
		}
	}
}

// Response envelopes of the agent API.

type catalogResponse struct {
	Entries  []api.CatalogTile `json:"entries"`
	Source   string            `json:"source"`
	Reason   string            `json:"reason"`
	SyncedAt time.Time         `json:"syncedAt"`
}

type refreshResponse struct {
	Status   string    `json:"status"`
	Source   string    `json:"source"`
	Entries  int       `json:"entries"`
	Reason   string    `json:"reason"`
	SyncedAt time.Time `json:"syncedAt"`
}

type historyResponse struct {
	History []*store.SyncRecord `json:"history"`
}

type solutionsResponse struct {
	Solutions []admin.Solution `json:"solutions"`
}

type accessResponse struct {
	ID     string   `json:"id"`
	Access []string `json:"access"`
}

type fieldsResponse struct {
	Fields       []admin.Field `json:"fields"`
	LOBs         []string      `json:"lobs"`
	Environments []string      `json:"environments"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type mutationResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}
