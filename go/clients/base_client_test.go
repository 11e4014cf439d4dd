package clients

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseClient_HeadersAndQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "v", r.Header.Get("X-Client"))
		assert.Equal(t, "call", r.Header.Get("X-Call"))
		assert.Equal(t, "1", r.URL.Query().Get("a"))
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewBaseClient(srv.URL)
	c.SetHeader("X-Client", "v")

	body, err := c.Get(context.Background(), "/x", url.Values{"a": {"1"}}, map[string]string{"X-Call": "call"})
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}

func TestBaseClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("denied"))
	}))
	defer srv.Close()

	_, err := NewBaseClient(srv.URL).Delete(context.Background(), "/x", nil)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.Equal(t, "denied", string(statusErr.Body))
}

func TestBaseClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := NewBaseClient(srv.URL).Get(context.Background(), "/x", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestDecodeJSON(t *testing.T) {
	var v struct{ A int }
	require.NoError(t, DecodeJSON([]byte(`{"A":1}`), &v))
	assert.Equal(t, 1, v.A)

	err := DecodeJSON([]byte(`nope`), &v)
	assert.True(t, errors.Is(err, ErrDecode))
}
