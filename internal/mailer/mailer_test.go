package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civic-backend/internal/config"
)

func TestNewPicksLogMailerWithoutAPI(t *testing.T) {
	m := New(config.MailConfig{}, zerolog.Nop())
	_, ok := m.(*LogMailer)
	assert.True(t, ok)
	assert.NoError(t, m.Send(context.Background(), VerificationMessage("a@b.c", "http://x/verify/t")))
}

func TestHTTPMailerSend(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"m1"}`))
	}))
	defer srv.Close()

	m := New(config.MailConfig{APIURL: srv.URL, APIKey: "key-1", From: "civic@example.com"}, zerolog.Nop())
	err := m.Send(context.Background(), VerificationMessage("asha@example.com", "http://localhost:5000/api/auth/verify/tok"))
	require.NoError(t, err)

	assert.Equal(t, "civic@example.com", got.From)
	assert.Equal(t, "asha@example.com", got.To)
	assert.Equal(t, "Verify your email", got.Subject)
	assert.Contains(t, got.HTML, `href="http://localhost:5000/api/auth/verify/tok"`)
}

func TestHTTPMailerAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"invalid recipient"}`))
	}))
	defer srv.Close()

	m := NewHTTPMailer(config.MailConfig{APIURL: srv.URL}, zerolog.Nop())
	err := m.Send(context.Background(), Message{To: "nobody"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "invalid recipient")
}
