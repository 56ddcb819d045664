package providers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testOpenAIKey    = "sk-test-0123456789abcdefghij"
	testGoogleKey    = "AIzaSyA-0123456789abcdefghijklmnop"
	testAnthropicKey = "sk-ant-REDACTED"
)

// capturedRequest is what the fake vendor saw.
type capturedRequest struct {
	Method string
	Path   string
	Query  map[string][]string
	Header http.Header
	Body   map[string]any
}

// fakeVendor is an httptest server that records each request and answers
// with a fixed status and body.
type fakeVendor struct {
	*httptest.Server

	mu    sync.Mutex
	last  capturedRequest
	calls atomic.Int32
}

func newFakeVendor(t *testing.T, status int, body string, headers map[string]string) *fakeVendor {
	t.Helper()

	fv := &fakeVendor{}
	fv.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fv.calls.Add(1)

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var decoded map[string]any
		if len(raw) > 0 {
			require.NoError(t, json.Unmarshal(raw, &decoded))
		}

		fv.mu.Lock()
		fv.last = capturedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   decoded,
		}
		fv.mu.Unlock()

		for k, v := range headers {
			w.Header().Set(k, v)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(fv.Close)
	return fv
}

func (f *fakeVendor) Last() capturedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func (f *fakeVendor) Calls() int { return int(f.calls.Load()) }
