package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewBrevoServiceRequiresCredentials(t *testing.T) {
	require.Nil(t, NewBrevoService("", "a@b.c", "x"))

	var s *BrevoService
	require.NotPanics(t, func() { s.SendEmail("Sam", "sam@example.com", "hi", "<p>hi</p>") })
}

func TestSend(t *testing.T) {
	var got brevoPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "key", r.Header.Get("api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s := NewBrevoService("key", "noreply@example.com", "Marketplace")
	s.endpoint = srv.URL

	subject, body := BidAccepted("Tia", "Algebra", 40)
	require.NoError(t, s.Send(context.Background(), "", "tia@example.com", subject, body))
	require.Equal(t, "tia", got.To[0]["name"])
	require.Equal(t, "Your bid was accepted", got.Subject)
	require.Contains(t, got.HTMLContent, "$40.00")

	require.Error(t, s.Send(context.Background(), "x", "not-an-email", "s", "b"))
}

func TestSendReportsProviderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"bad key"}`))
	}))
	defer srv.Close()

	s := NewBrevoService("key", "noreply@example.com", "Marketplace")
	s.endpoint = srv.URL

	err := s.Send(context.Background(), "Tia", "tia@example.com", "s", "b")
	require.ErrorContains(t, err, "bad key")
}
