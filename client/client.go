// Package client reads benchmark results from a namesbench-server.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/bcspragu/namesbench"
	"github.com/bcspragu/namesbench/web"
)

type Client struct {
	scheme string
	addr   string
	http   *http.Client
}

// New returns a client for the server at addr, like "localhost:8080". scheme
// is "http" or "https".
func New(scheme, addr string) *Client {
	return &Client{
		scheme: scheme,
		addr:   addr,
		http:   &http.Client{},
	}
}

func (c *Client) url(path ...string) string {
	u := c.scheme + "://" + c.addr + "/api"
	for _, p := range path {
		u += "/" + url.PathEscape(p)
	}
	return u
}

func (c *Client) Runs() ([]*namesbench.Run, error) {
	req, err := http.NewRequest(http.MethodGet, c.url("runs"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to form request: %w", err)
	}

	var resp []*namesbench.Run
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("failed to load runs: %w", err)
	}
	return resp, nil
}

func (c *Client) Run(rID namesbench.RunID) (*web.RunDetails, error) {
	req, err := http.NewRequest(http.MethodGet, c.url("runs", string(rID)), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to form request: %w", err)
	}

	var resp web.RunDetails
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	return &resp, nil
}

func (c *Client) Game(gID namesbench.GameID) (*web.GameDetails, error) {
	req, err := http.NewRequest(http.MethodGet, c.url("games", string(gID)), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to form request: %w", err)
	}

	var resp web.GameDetails
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	return &resp, nil
}

func (c *Client) do(req *http.Request, resp interface{}) error {
	httpResp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		return handleError(httpResp)
	}

	if resp != nil {
		if err := json.NewDecoder(httpResp.Body).Decode(resp); err != nil {
			return fmt.Errorf("failed to decode response body: %w", err)
		}
	}

	return nil
}

// HTTPError is returned when the server responds with anything but a 200.
type HTTPError struct {
	StatusCode int
	Body       string
	err        error
}

func (h *HTTPError) Error() string {
	if h.err != nil {
		return fmt.Sprintf("[%d] failed to handle error: %v", h.StatusCode, h.err)
	}
	return fmt.Sprintf("[%d] error from server: %s", h.StatusCode, h.Body)
}

func handleError(resp *http.Response) error {
	dat, err := io.ReadAll(resp.Body)
	if err != nil {
		return &HTTPError{
			StatusCode: resp.StatusCode,
			err:        fmt.Errorf("failed to read error response body: %w", err),
		}
	}

	return &HTTPError{
		StatusCode: resp.StatusCode,
		Body:       string(bytes.TrimSpace(dat)),
	}
}
