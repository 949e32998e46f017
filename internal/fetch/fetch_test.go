package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body><p>Read me.</p></body></html>"))
	}))
	defer server.Close()

	page, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL, page.URL)
	assert.Contains(t, page.Body, "<p>Read me.</p>")
	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.True(t, page.IsHTML())
}

func TestURL_InvalidURL(t *testing.T) {
	for _, raw := range []string{"not-a-valid-url", "ftp://example.com/file", "file:///etc/passwd"} {
		_, err := URL(context.Background(), raw, nil)
		require.Error(t, err, raw)

		var fetchErr *Error
		assert.ErrorAs(t, err, &fetchErr)
	}
}

func TestURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	page, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	require.NotNil(t, page)
	assert.Equal(t, http.StatusNotFound, page.StatusCode)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "404")
}

func TestURL_BodyTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", 64)))
	}))
	defer server.Close()

	_, err := URL(context.Background(), server.URL, &Options{MaxBytes: 32})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 32 bytes")

	page, err := URL(context.Background(), server.URL, &Options{MaxBytes: 64})
	require.NoError(t, err)
	assert.Len(t, page.Body, 64)
}

func TestURL_CustomHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "en", r.Header.Get("Accept-Language"))
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("plain words"))
	}))
	defer server.Close()

	page, err := URL(context.Background(), server.URL, &Options{Headers: map[string]string{"Accept-Language": "en"}})
	require.NoError(t, err)
	assert.False(t, page.IsHTML())
}

func TestPage_IsHTML(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"", true},
		{"text/html", true},
		{"application/xhtml+xml; charset=utf-8", true},
		{"text/plain; charset=utf-8", false},
		{"application/json", false},
		{"text/html;;bogus", true},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.want, (&Page{ContentType: tt.contentType}).IsHTML())
		})
	}
}
