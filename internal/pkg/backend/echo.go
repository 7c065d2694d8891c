package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ds124wfegd/negative-web/internal/entity"
)

// Echo issues GET <path>?input=<text> and returns the message field of the
// JSON reply.
func (c *Client) Echo(ctx context.Context, endpoint entity.Endpoint, input string) (string, error) {
	path, ok := c.paths[endpoint]
	if !ok {
		return "", fmt.Errorf("%w: %q", entity.ErrUnknownEndpoint, endpoint)
	}

	query := url.Values{}
	query.Set("input", input)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path)+"?"+query.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("call %s: unexpected status %d", endpoint, resp.StatusCode)
	}

	var body entity.EchoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	if body.Message == nil {
		return "", entity.ErrMissingMessage
	}
	return *body.Message, nil
}
