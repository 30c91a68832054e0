package portal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientHandshake(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/portal.php", r.URL.Path)
		assert.Equal(t, "stb", r.URL.Query().Get("type"))
		assert.Equal(t, "handshake", r.URL.Query().Get("action"))
		assert.Contains(t, r.Header.Get("Cookie"), "mac=00:1A:79:12:34:56")
		assert.Contains(t, r.Header.Get("User-Agent"), "MAG200")

		_, _ = w.Write([]byte(`{"js":{"token":"abc"}}`))
	}))
	defer upstream.Close()

	c := NewClient(time.Second)

	body, err := c.Handshake(context.Background(), upstream.URL, "00:1A:79:12:34:56")
	require.NoError(t, err)
	assert.JSONEq(t, `{"js":{"token":"abc"}}`, string(body))
}

func TestClientChannels(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "itv", r.URL.Query().Get("type"))
		assert.Equal(t, "get_all_channels", r.URL.Query().Get("action"))
		assert.Contains(t, r.Header.Get("Cookie"), "token=tok")

		_, _ = w.Write([]byte(`{"js":{"data":[]}}`))
	}))
	defer upstream.Close()

	c := NewClient(time.Second)

	body, err := c.Channels(context.Background(), upstream.URL+"/", "00:1A:79:12:34:56", "tok")
	require.NoError(t, err)
	assert.JSONEq(t, `{"js":{"data":[]}}`, string(body))
}

func TestClientRetries(t *testing.T) {
	var calls int32

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer upstream.Close()

	c := NewClient(time.Second)

	body, err := c.Handshake(context.Background(), upstream.URL, "00:1A:79:12:34:56")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(body))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClientGivesUp(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	defer upstream.Close()

	c := NewClient(time.Second)

	_, err := c.Handshake(context.Background(), upstream.URL, "00:1A:79:12:34:56")
	assert.Error(t, err)
}
