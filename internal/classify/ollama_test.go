package classify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anhofmann/dsar/internal/request"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ollamaStub serves a canned /api/generate response
func ollamaStub(t *testing.T, modelOutput string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `{"response": %q}`, modelOutput)
	}))
}

func TestOllamaClassifyParsesModelJSON(t *testing.T) {
	srv := ollamaStub(t, `Here is my analysis:
{"category": "completed", "summary": "data was deleted", "action_required": false, "confidence": 0.9}`)
	defer srv.Close()

	o := NewOllamaClassifier(srv.URL, "llama2", testLogger())
	cl, err := o.Classify(context.Background(), "your data has been deleted", "en")
	require.NoError(t, err)

	assert.Equal(t, CategoryCompleted, cl.Category)
	assert.Equal(t, 0.9, cl.Confidence)
	assert.Equal(t, "data was deleted", cl.Summary)
	assert.Equal(t, request.StatusCompleted, cl.SuggestedStatus)
}

func TestOllamaClassifyAcceptsLegacyAliases(t *testing.T) {
	cases := map[string]Category{
		"acknowledged": CategoryConfirmed,
		"needs_info":   CategoryNeedsClarification,
		"unknown":      CategoryOther,
	}
	for alias, want := range cases {
		srv := ollamaStub(t, fmt.Sprintf(`{"category": %q, "summary": "x", "action_required": true, "confidence": 0.5}`, alias))
		o := NewOllamaClassifier(srv.URL, "llama2", testLogger())
		cl, err := o.Classify(context.Background(), "some reply", "de")
		srv.Close()
		require.NoError(t, err)
		assert.Equal(t, want, cl.Category, "alias %s", alias)
	}
}

func TestOllamaClassifyFallsBackOnGarbage(t *testing.T) {
	srv := ollamaStub(t, "I am sorry, I cannot help with that.")
	defer srv.Close()

	o := NewOllamaClassifier(srv.URL, "llama2", testLogger())
	cl, err := o.Classify(context.Background(), "Ihre Daten wurden gelöscht.", "de")
	require.NoError(t, err)

	// The keyword fallback still reads the reply.
	assert.Equal(t, CategoryCompleted, cl.Category)
}

func TestOllamaClassifyFallsBackWhenUnreachable(t *testing.T) {
	o := NewOllamaClassifier("http://127.0.0.1:1", "llama2", testLogger())
	cl, err := o.Classify(context.Background(), "we are unable to comply", "en")
	require.NoError(t, err)
	assert.Equal(t, CategoryRejected, cl.Category)
}

func TestOllamaAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	assert.True(t, NewOllamaClassifier(srv.URL, "llama2", testLogger()).Available(context.Background()))
	assert.False(t, NewOllamaClassifier("http://127.0.0.1:1", "llama2", testLogger()).Available(context.Background()))
}
