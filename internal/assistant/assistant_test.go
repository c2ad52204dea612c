package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPCompleter(t *testing.T) {
	var got generationRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer hf_token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`[{"generated_text":"  Make a chore wheel.  "}]`))
	}))
	defer srv.Close()

	c := NewHTTPCompleter(srv.URL, "hf_token", time.Second)
	text, err := c.Complete(context.Background(), "how do we split chores?")
	require.NoError(t, err)
	assert.Equal(t, "Make a chore wheel.", text)
	assert.Equal(t, "how do we split chores?", got.Inputs)
	assert.Equal(t, 500, got.Parameters.MaxLength)
	assert.False(t, got.Parameters.ReturnFullText)
}

func TestHTTPCompleter_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"upstream error", http.StatusServiceUnavailable, `{"error":"model loading"}`, "returned 503: {\"error\":\"model loading\"}"},
		{"no generations", http.StatusOK, `[]`, ErrEmptyCompletion.Error()},
		{"blank generation", http.StatusOK, `[{"generated_text":"  "}]`, ErrEmptyCompletion.Error()},
		{"unexpected shape", http.StatusOK, `{"not":"a list"}`, "decode completion"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPCompleter(srv.URL, "", time.Second).Complete(context.Background(), "hi")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

type stubCompleter struct {
	text   string
	err    error
	prompt string
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.text, s.err
}

func TestReply(t *testing.T) {
	ctx := context.Background()

	stub := &stubCompleter{text: "Try a rota."}
	reply, err := NewService(stub, time.Second).Reply(ctx, "  who cleans?  ")
	require.NoError(t, err)
	assert.Equal(t, "Try a rota.", reply.Response)
	assert.False(t, reply.Fallback)
	assert.True(t, strings.HasSuffix(stub.prompt, "who cleans?"))
	assert.True(t, strings.HasPrefix(stub.prompt, "You are RoomieBot"))

	failing := &stubCompleter{err: errors.New("upstream down")}
	reply, err = NewService(failing, time.Second).Reply(ctx, "we keep having a conflict")
	require.NoError(t, err)
	assert.True(t, reply.Fallback)
	assert.Contains(t, reply.Response, "Cool down first")

	reply, err = NewService(nil, 0).Reply(ctx, "how to split the bill")
	require.NoError(t, err)
	assert.True(t, reply.Fallback)
	assert.Contains(t, reply.Response, "Rent and utilities")

	_, err = NewService(nil, 0).Reply(ctx, "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestFallbackReply(t *testing.T) {
	assert.Contains(t, FallbackReply("Cleaning SCHEDULE please"), "Weekly rotation")
	assert.Contains(t, FallbackReply("there is an issue"), "Speak for yourself")
	assert.Contains(t, FallbackReply("money talk"), "shared fund")
	assert.Contains(t, FallbackReply("hello"), "What would you like to work on?")

	// first matching topic wins
	assert.Contains(t, FallbackReply("a chore conflict"), "Weekly rotation")
}

func TestChatHandler(t *testing.T) {
	h := NewHandler(NewService(nil, 0))

	rec := httptest.NewRecorder()
	h.Chat(rec, httptest.NewRequest(http.MethodPost, "/api/v1/assistant/chat", strings.NewReader(`{"message":"cleaning tips"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	var reply Reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.True(t, reply.Fallback)

	rec = httptest.NewRecorder()
	h.Chat(rec, httptest.NewRequest(http.MethodPost, "/api/v1/assistant/chat", strings.NewReader(`{"message":""}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	long := strings.Repeat("a", 2001)
	h.Chat(rec, httptest.NewRequest(http.MethodPost, "/api/v1/assistant/chat", strings.NewReader(`{"message":"`+long+`"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
