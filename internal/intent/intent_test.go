package intent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/campus-ticketing/internal/config"
)

func TestFallback(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Result
	}{
		{"digits and event", "Book 2 tickets for Jazz Night", Result{Event: "Jazz Night", Tickets: 2, Intent: Book}},
		{"number word", "buy three tickets for Career Fair!", Result{Event: "Career Fair", Tickets: 3, Intent: Book}},
		{"default one ticket", "purchase a ticket for Spring Concert.", Result{Event: "Spring Concert", Tickets: 1, Intent: Book}},
		{"book without event", "book two", Result{Tickets: 2, Intent: Book}},
		{"show events", "Show me the upcoming events", Result{Tickets: 1, Intent: Show}},
		{"bare events", "events", Result{Tickets: 1, Intent: Show}},
		{"greeting", "hello there", Result{Tickets: 1, Intent: Greet}},
		{"word inside word is not a number", "book for someone special", Result{Event: "someone special", Tickets: 1, Intent: Book}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fallback(tt.text))
		})
	}
}

type stubCompleter struct {
	res Result
	err error
}

func (s stubCompleter) Complete(context.Context, string) (Result, error) {
	return s.res, s.err
}

func TestResolverEmptyText(t *testing.T) {
	r := NewResolver(nil, zap.NewNop())

	_, err := r.Resolve(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestResolverFallbackOnly(t *testing.T) {
	r := NewResolver(nil, zap.NewNop())

	res, err := r.Resolve(context.Background(), "book 2 for Jazz Night")
	require.NoError(t, err)
	assert.Equal(t, Result{Event: "Jazz Night", Tickets: 2, Intent: Book}, res)

	_, err = r.Resolve(context.Background(), "book 2 tickets")
	assert.ErrorIs(t, err, ErrUnparseable)
}

func TestResolverPrefersRemote(t *testing.T) {
	remote := stubCompleter{res: Result{Event: "Career Fair", Tickets: 4, Intent: Book}}
	r := NewResolver(remote, zap.NewNop())

	res, err := r.Resolve(context.Background(), "four seats at the fair please")
	require.NoError(t, err)
	assert.Equal(t, remote.res, res)
}

func TestResolverFillsMissingEventFromRules(t *testing.T) {
	remote := stubCompleter{res: Result{Tickets: 2, Intent: Book}}
	r := NewResolver(remote, zap.NewNop())

	res, err := r.Resolve(context.Background(), "book 2 for Jazz Night")
	require.NoError(t, err)
	assert.Equal(t, "Jazz Night", res.Event)
	assert.Equal(t, 2, res.Tickets)
}

func TestResolverFallsBackOnRemoteError(t *testing.T) {
	remote := stubCompleter{err: errors.New("upstream down")}
	r := NewResolver(remote, zap.NewNop())

	res, err := r.Resolve(context.Background(), "buy one ticket for Career Fair")
	require.NoError(t, err)
	assert.Equal(t, Result{Event: "Career Fair", Tickets: 1, Intent: Book}, res)

	_, err = r.Resolve(context.Background(), "buy one ticket")
	assert.ErrorIs(t, err, ErrUnparseable)
}

func newChatServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Zero(t, req.Temperature)

		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":"nope"}`))
			return
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(baseURL string) *ChatClient {
	return NewChatClient(config.LLMConfig{
		APIKey:  "test-key",
		BaseURL: baseURL + "/",
		Model:   "test-model",
		Timeout: 2 * time.Second,
	})
}

func TestChatClientParsesReply(t *testing.T) {
	srv := newChatServer(t, http.StatusOK,
		"Sure! Here you go:\n```json\n{\"event\": \" Jazz Night \", \"tickets\": 2.7, \"intent\": \"book\"}\n```")

	res, err := newTestClient(srv.URL).Complete(context.Background(), "two for jazz")
	require.NoError(t, err)
	assert.Equal(t, Result{Event: "Jazz Night", Tickets: 2, Intent: Book}, res)
}

func TestChatClientNormalisesBadFields(t *testing.T) {
	srv := newChatServer(t, http.StatusOK, `{"event": null, "tickets": -3, "intent": "dance"}`)

	res, err := newTestClient(srv.URL).Complete(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, Result{Tickets: 1, Intent: Greet}, res)
}

func TestChatClientErrors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		srv := newChatServer(t, http.StatusTooManyRequests, "")
		_, err := newTestClient(srv.URL).Complete(context.Background(), "hi")
		assert.Error(t, err)
	})

	t.Run("no json", func(t *testing.T) {
		srv := newChatServer(t, http.StatusOK, "I cannot help with that")
		_, err := newTestClient(srv.URL).Complete(context.Background(), "hi")
		assert.ErrorIs(t, err, errNoJSON)
	})
}

func TestNewChatClientDisabledWithoutKey(t *testing.T) {
	assert.Nil(t, NewChatClient(config.LLMConfig{BaseURL: "http://localhost"}))
}

func TestNormaliseTickets(t *testing.T) {
	assert.Equal(t, 3, normaliseTickets(float64(3)))
	assert.Equal(t, 5, normaliseTickets("5.9"))
	assert.Equal(t, 1, normaliseTickets("many"))
	assert.Equal(t, 1, normaliseTickets(0.5))
	assert.Equal(t, 1, normaliseTickets(nil))
}

func TestNewFromConfigWithoutKeyUsesRules(t *testing.T) {
	r := NewFromConfig(config.LLMConfig{}, zap.NewNop())
	assert.Nil(t, r.remote)

	res, err := r.Resolve(context.Background(), "list events")
	require.NoError(t, err)
	assert.Equal(t, Show, res.Intent)
}
