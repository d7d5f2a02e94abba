package emailjs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/email/send", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "svc", body["service_id"])
		assert.Equal(t, "tpl", body["template_id"])
		assert.Equal(t, "pub", body["user_id"])
		assert.Equal(t, "priv", body["accessToken"])
		params, ok := body["template_params"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Jane", params["to_name"])

		w.Write([]byte("OK")) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient("svc", "tpl", "pub", WithBaseURL(srv.URL), WithPrivateKey("priv"))
	require.NoError(t, c.Send(context.Background(), map[string]string{"to_name": "Jane"}))
}

func TestSend_OmitsEmptyAccessToken(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, present := body["accessToken"]
		assert.False(t, present)
		w.Write([]byte("OK")) //nolint:errcheck
	}))
	defer srv.Close()

	require.NoError(t, NewClient("svc", "tpl", "pub", WithBaseURL(srv.URL)).Send(context.Background(), nil))
}

func TestSend_Rejected(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("The Public Key is invalid")) //nolint:errcheck
	}))
	defer srv.Close()

	err := NewClient("svc", "tpl", "bad", WithBaseURL(srv.URL)).Send(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 403")
	assert.Contains(t, err.Error(), "Public Key is invalid")
}

func TestSend_StatusErrorIsTyped(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := NewClient("svc", "tpl", "pub", WithBaseURL(srv.URL)).Send(context.Background(), nil)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
}
