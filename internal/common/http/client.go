// internal/common/http/client.go
package http

import (
	"net/http"
	"time"
)

// Client is a timeout-scoped HTTP client shared by the upload and
// analysis callers. Requests carry their own context via
// http.NewRequestWithContext.
type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}
