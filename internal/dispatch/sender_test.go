package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/outreach-tracker/internal/domain"
)

func testMessage() *domain.OutboundMessage {
	return &domain.OutboundMessage{
		TrackingID: "camp1_lead1_aaaa1111",
		CampaignID: "camp1",
		To:         "ada@acme.test",
		ToName:     "Ada Smith",
		Subject:    "hello",
		HTML:       "<body>hi</body>",
	}
}

func TestSend_Success(t *testing.T) {
	var got transmissionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"id": "msg-42"})
	}))
	defer srv.Close()

	s := NewHTTPSender(srv.URL, "test-key", 5*time.Second)
	res, err := s.Send(context.Background(), testMessage())
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "msg-42", res.MessageID)
	assert.Equal(t, "ada@acme.test", got.To)
	assert.Equal(t, "camp1_lead1_aaaa1111", got.TrackingID)
	assert.Equal(t, "camp1", got.CampaignID)
}

func TestSend_ProviderRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid recipient"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	s := NewHTTPSender(srv.URL, "test-key", 5*time.Second)
	res, err := s.Send(context.Background(), testMessage())
	require.NoError(t, err, "a definitive rejection is a result, not an error")

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "422")
	assert.Contains(t, res.Error, "invalid recipient")
}

func TestSend_RetriesTransientErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "try later", http.StatusServiceUnavailable)
			return
		}
		// The retried request must carry the full body again.
		var req transmissionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ada@acme.test", req.To)
		json.NewEncoder(w).Encode(map[string]string{"id": "msg-1"})
	}))
	defer srv.Close()

	s := NewHTTPSender(srv.URL, "test-key", 5*time.Second)
	res, err := s.Send(context.Background(), testMessage())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 3, calls)
}

func TestSend_NoAPIKey(t *testing.T) {
	s := NewHTTPSender("http://localhost:0", "", time.Second)
	_, err := s.Send(context.Background(), testMessage())
	assert.Error(t, err)
}

func TestSend_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	s := NewHTTPSender(srv.URL, "test-key", time.Second)
	_, err := s.Send(context.Background(), testMessage())
	assert.Error(t, err)
}
