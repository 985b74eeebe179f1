package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// url builds a complete URL by appending the path to the base URL.
func (c *SDKClient) url(path string) string {
	return c.BaseURL + path
}

// doRequest performs an HTTP request with the SDKClient's HTTP client. body is
// JSON encoded when non-nil. accessToken, when set, is sent as a bearer token.
func (c *SDKClient) doRequest(
	ctx context.Context,
	method, path string,
	body any,
	accessToken string,
) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	return c.send(c.HTTPClient, req)
}

// doWithoutJar is doRequest for calls carrying an explicit rotation
// credential. The jar's refresh_token cookie is not attached, so the server
// cannot pick it over the credential in the body. With storeCookies, cookies
// set by a 2xx response are still stored in the jar.
func (c *SDKClient) doWithoutJar(
	ctx context.Context,
	method, path string,
	body any,
	storeCookies bool,
) (*http.Response, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	detached := *c.HTTPClient
	detached.Jar = nil

	resp, err := c.send(&detached, req)
	if err != nil {
		return nil, err
	}
	if jar := c.HTTPClient.Jar; storeCookies && jar != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		jar.SetCookies(req.URL, resp.Cookies())
	}
	return resp, nil
}

func (c *SDKClient) send(client *http.Client, req *http.Request) (*http.Response, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// decodeEnvelope reads an envelope and returns its data. Any status other than
// expectedStatus is returned as an *APIError.
func decodeEnvelope[T any](resp *http.Response, expectedStatus int) (T, error) {
	defer resp.Body.Close()

	var zero T

	// Read body once for both error parsing and success decoding
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		if err := parseErrorResponse(resp, bodyBytes); err != nil {
			return zero, err
		}
		return zero, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var env Envelope[T]
	if err := json.Unmarshal(bodyBytes, &env); err != nil {
		return zero, fmt.Errorf("failed to decode response: %w", err)
	}

	return env.Data, nil
}
