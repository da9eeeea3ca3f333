package transcript

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/lox/transcriptfmt/internal/models"
)

func TestClient_Process_Success(t *testing.T) {
	var calls atomic.Int32
	var got models.TranscriptRequest
	var contentType, requestID string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		contentType = r.Header.Get("Content-Type")
		requestID = r.Header.Get("X-Request-ID")
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.Write([]byte("<html><body><h3>Topics</h3></body></html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zerolog.Nop())
	result := c.Process(context.Background(), "  https://youtu.be/abc \n")

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "https://youtu.be/abc", got.UserURL)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, result.ID, requestID)

	assert.True(t, result.Success)
	assert.Equal(t, "<html><body><h3>Topics</h3></body></html>", result.Content)
	assert.Empty(t, result.Error)
	assert.True(t, result.Valid())
}

func TestClient_Process_StatusFailure(t *testing.T) {
	tests := []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError}
	for _, code := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "<p>detail page</p>", code)
		}))

		result := NewClient(srv.URL, zerolog.Nop()).Process(context.Background(), "text")
		srv.Close()

		assert.False(t, result.Success)
		assert.Empty(t, result.Content)
		assert.Equal(t, code, result.StatusCode)
		assert.Equal(t, "API request failed with status "+strconv.Itoa(code), result.Error)
		assert.True(t, result.Valid())
	}
}

func TestClient_Process_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	result := NewClient(url, zerolog.Nop()).Process(context.Background(), "text")

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
	assert.Zero(t, result.StatusCode)
	assert.True(t, result.Valid())
}

func TestClient_Process_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	result := NewClient(srv.URL, zerolog.Nop()).Process(context.Background(), "text")

	assert.False(t, result.Success)
	assert.Equal(t, "empty response from processing endpoint", result.Error)
	assert.True(t, result.Valid())
}

func TestTransportError_FallbackMessage(t *testing.T) {
	te := transportError(errors.New(""))
	assert.Equal(t, "An unexpected error occurred", te.Error())

	te = transportError(nil)
	assert.Equal(t, "An unexpected error occurred", te.Error())

	cause := errors.New("dial tcp: connection refused")
	te = transportError(cause)
	assert.Equal(t, "dial tcp: connection refused", te.Error())
	assert.ErrorIs(t, te, cause)
}

func TestNewClient_DefaultEndpoint(t *testing.T) {
	c := NewClient("", zerolog.Nop())
	assert.Equal(t, "http://127.0.0.1:9010/transcript", c.Endpoint())
	assert.Zero(t, c.httpClient.Timeout)
}
