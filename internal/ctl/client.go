// Package ctl implements the viewportctl command tree: a thin CLI over the
// viewportd HTTP API.
package ctl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"viewportd/pkg/types"
)

// Client is a minimal HTTP client for the daemon API.
type Client struct {
	base string
	hc   *http.Client
}

// NewClient builds a client for the daemon at base, e.g. http://127.0.0.1:8080.
// A nil http.Client gets a default with a 30s timeout.
func NewClient(base string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{base: base, hc: hc}
}

func (c *Client) do(method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var er types.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&er) == nil && er.Error != "" {
			return fmt.Errorf("%s %s: %s (status %d)", method, path, er.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) CreateSession(req types.CreateSessionRequest) (types.CreateSessionResponse, error) {
	var resp types.CreateSessionResponse
	err := c.do(http.MethodPost, "/sessions", req, &resp)
	return resp, err
}

func (c *Client) QueueSession(id string, priority int) error {
	return c.do(http.MethodPost, "/sessions/"+id+"/queue", types.QueueSessionRequest{Priority: priority}, nil)
}

func (c *Client) CancelSession(id string) error {
	return c.do(http.MethodDelete, "/sessions/"+id, nil, nil)
}

func (c *Client) SessionProgress(id string) (types.SessionProgressResponse, error) {
	var resp types.SessionProgressResponse
	err := c.do(http.MethodGet, "/sessions/"+id+"/progress", nil, &resp)
	return resp, err
}

func (c *Client) Viewports() ([]types.ViewportStatus, error) {
	var resp struct {
		Viewports []types.ViewportStatus `json:"viewports"`
	}
	err := c.do(http.MethodGet, "/viewports", nil, &resp)
	return resp.Viewports, err
}

func (c *Client) ActivateViewport(id string, immediate bool) error {
	path := "/viewports/" + id + "/activate"
	if immediate {
		path += "?immediate=1"
	}
	return c.do(http.MethodPost, path, nil, nil)
}

func (c *Client) DeactivateViewport(id string) error {
	return c.do(http.MethodPost, "/viewports/"+id+"/deactivate", nil, nil)
}

func (c *Client) PoolStats() (types.PoolStatsResponse, error) {
	var resp types.PoolStatsResponse
	err := c.do(http.MethodGet, "/pool/stats", nil, &resp)
	return resp, err
}

func (c *Client) RunPoolGC() (types.GCResponse, error) {
	var resp types.GCResponse
	err := c.do(http.MethodPost, "/pool/gc", nil, &resp)
	return resp, err
}

func (c *Client) Status() (types.StatusResponse, error) {
	var resp types.StatusResponse
	err := c.do(http.MethodGet, "/status", nil, &resp)
	return resp, err
}
