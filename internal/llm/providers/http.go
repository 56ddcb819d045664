package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	llmerrors "github.com/ahrav/exam-grader/internal/llm/errors"
)

// maxResponseBytes bounds how much of a vendor response is read.
const maxResponseBytes = 8 << 20

// errorParser turns a non-2xx vendor response into an error.
type errorParser func(statusCode int, body []byte) *llmerrors.ProviderError

// postJSON marshals body, posts it to endpoint with the given headers plus
// any configured extra headers, and returns the response body of a 2xx reply.
// Transport errors are returned with the request URL stripped of its query
// string so credentials passed as URL parameters never reach logs.
func postJSON(
	ctx context.Context,
	client *http.Client,
	endpoint string,
	body any,
	headers map[string]string,
	extra map[string]string,
	parseErr errorParser,
) ([]byte, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", redactURLError(err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range extra {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", redactURLError(err))
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", llmerrors.ErrInvalidResponse, err)
	}

	if httpResp.StatusCode < http.StatusOK || httpResp.StatusCode >= http.StatusMultipleChoices {
		provErr := parseErr(httpResp.StatusCode, respBody)
		provErr.RetryAfter = retryAfterSeconds(httpResp.Header)
		return nil, provErr
	}

	return respBody, nil
}

// decodeBody unmarshals a 2xx vendor body into v.
func decodeBody(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: failed to parse response: %w", llmerrors.ErrInvalidResponse, err)
	}
	return nil
}

func redactURLError(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	if u, perr := url.Parse(urlErr.URL); perr == nil {
		u.RawQuery = ""
		urlErr.URL = u.String()
	}
	return err
}
