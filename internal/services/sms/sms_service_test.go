package sms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSendSuccess(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/send", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(sendResponse{Status: 200, Message: "ok"})
	}))
	defer srv.Close()

	s := New(srv.URL, "key", "10004321", zap.NewNop())
	err := s.Send(context.Background(), "09123456789", "سلام")
	require.NoError(t, err)
	assert.Equal(t, "09123456789", got.Receptor)
	assert.Equal(t, "10004321", got.Sender)
}

func TestSendGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(sendResponse{Status: 422, Message: "invalid receptor"})
	}))
	defer srv.Close()

	s := New(srv.URL, "key", "10004321", zap.NewNop())
	err := s.Send(context.Background(), "bad", "msg")
	assert.Error(t, err)
}

func TestSendRetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(sendResponse{Status: 200})
	}))
	defer srv.Close()

	s := New(srv.URL, "key", "10004321", zap.NewNop())
	err := s.Send(context.Background(), "09123456789", "msg")
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestSendNetworkErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close() // nothing listening anymore

	s := New(url, "key", "10004321", zap.NewNop())
	err := s.Send(context.Background(), "09123456789", "msg")
	assert.Error(t, err)
}

func TestSendDisabledIsNoop(t *testing.T) {
	s := New("", "", "10004321", zap.NewNop())
	assert.False(t, s.Enabled())
	assert.NoError(t, s.Send(context.Background(), "09123456789", "msg"))
}
