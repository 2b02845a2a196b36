package chatbotsvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elimuhq/elimu/core"
	"github.com/elimuhq/elimu/core/chat"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func newService(baseURL string) *httpService {
	conf := core.NewTestConfig()
	conf.Chatbot.BaseURL = baseURL
	conf.Chatbot.ApiKey = "test-key"
	conf.Chatbot.Model = "test-model"
	conf.Chatbot.Timeout = time.Second
	return NewHTTPService(conf, nopLogger{})
}

func TestComplete(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, completionsPath, r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req completionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "what is algebra?", req.Messages[0].Content)

		_ = json.NewEncoder(w).Encode(completionResponse{
			Choices: []struct {
				Message completionMessage `json:"message"`
			}{{Message: completionMessage{Role: "assistant", Content: "the study of symbols"}}},
		})
	}))
	defer upstream.Close()

	reply, err := newService(upstream.URL).Complete(context.Background(), "what is algebra?")
	require.NoError(t, err)
	assert.Equal(t, "the study of symbols", reply)
}

func TestCompleteFailuresAreUniform(t *testing.T) {
	t.Run("unconfigured", func(t *testing.T) {
		_, err := newService("").Complete(context.Background(), "hi")
		assert.Equal(t, chat.ErrUnavailable, err)
	})

	t.Run("upstream 500", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer upstream.Close()

		_, err := newService(upstream.URL).Complete(context.Background(), "hi")
		assert.Equal(t, chat.ErrUnavailable, err)
	})

	t.Run("garbage body", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer upstream.Close()

		_, err := newService(upstream.URL).Complete(context.Background(), "hi")
		assert.Equal(t, chat.ErrUnavailable, err)
	})

	t.Run("no choices", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))
		defer upstream.Close()

		_, err := newService(upstream.URL).Complete(context.Background(), "hi")
		assert.Equal(t, chat.ErrUnavailable, err)
	})

	t.Run("connection refused", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		upstream.Close() // dead endpoint

		_, err := newService(upstream.URL).Complete(context.Background(), "hi")
		assert.Equal(t, chat.ErrUnavailable, err)
	})
}
