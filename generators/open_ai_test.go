package generators

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/reusee/dscope"
	"github.com/reusee/metaloop/configs"
	"github.com/reusee/metaloop/modes"
)

func testOpenAI(t *testing.T, handler http.HandlerFunc, attempts int) Generator {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	var generator Generator
	dscope.New(
		modes.ForTest(t),
		dscope.Provide(configs.NewLoader(nil, "")),
		new(Module),
	).Fork(
		func() RetryPolicy {
			return RetryPolicy{
				MaxAttempts: attempts,
				Backoff:     time.Millisecond,
				MaxBackoff:  10 * time.Millisecond,
			}
		},
	).Call(func(
		newOpenAI NewOpenAI,
	) {
		generator = newOpenAI(GeneratorArgs{
			BaseURL: server.URL + "/v1",
			Model:   "test-model",
		}, "secret")
	})
	return generator
}

func writeStream(w http.ResponseWriter, chunks ...string) {
	w.Header().Set("Content-Type", "text/event-stream")
	for _, chunk := range chunks {
		bs, _ := json.Marshal(ChatCompletionStreamResponse{
			Choices: []ChatCompletionStreamChoice{
				{Delta: ChatCompletionStreamChoiceDelta{Content: chunk}},
			},
		})
		fmt.Fprintf(w, "data: %s\n\n", bs)
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
}

func TestOpenAIStream(t *testing.T) {
	g := testOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("got path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("bad auth header")
		}
		var req ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Error(err)
		}
		if req.Model != "test-model" || !req.Stream || len(req.Messages) != 2 {
			t.Errorf("bad request %+v", req)
		}
		writeStream(w, "def P", "(x = 1):", "\n")
	}, 1)

	text, err := g.Generate(t.Context(), []Message{
		System("sys"),
		User("hello"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if text != "def P(x = 1):\n" {
		t.Fatalf("got %q", text)
	}
}

func TestOpenAIJSONResponse(t *testing.T) {
	g := testOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ChatCompletionResponse{
			Choices: []ChatCompletionChoice{
				{Message: ChatCompletionMessage{Role: "assistant", Content: "ok"}},
			},
		})
	}, 1)
	text, err := g.Generate(t.Context(), []Message{User("hi")})
	if err != nil {
		t.Fatal(err)
	}
	if text != "ok" {
		t.Fatalf("got %q", text)
	}
}

func TestOpenAIRetry(t *testing.T) {
	var calls atomic.Int32
	g := testOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"error":{"message":"slow down"}}`)
			return
		}
		writeStream(w, "done")
	}, 5)
	text, err := g.Generate(t.Context(), []Message{User("hi")})
	if err != nil {
		t.Fatal(err)
	}
	if text != "done" || calls.Load() != 3 {
		t.Fatalf("got %q after %d calls", text, calls.Load())
	}
}

func TestOpenAIRetryExhausted(t *testing.T) {
	var calls atomic.Int32
	g := testOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, 3)
	_, err := g.Generate(t.Context(), []Message{User("hi")})
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("got %v", err)
	}
	if transportErr.Attempts != 3 || calls.Load() != 3 {
		t.Fatalf("attempts %d, calls %d", transportErr.Attempts, calls.Load())
	}
	if !errors.Is(err, ErrRetryable) {
		t.Fatal("expected wrapped retryable error")
	}
}

func TestOpenAINotRetryable(t *testing.T) {
	var calls atomic.Int32
	g := testOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"bad key"}}`)
	}, 5)
	_, err := g.Generate(t.Context(), []Message{User("hi")})
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("got %v", err)
	}
	if transportErr.Attempts != 1 || calls.Load() != 1 {
		t.Fatalf("attempts %d", transportErr.Attempts)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.HTTPStatusCode != http.StatusUnauthorized {
		t.Fatalf("got %v", err)
	}
}

func TestOpenAIEmptyOutputRetried(t *testing.T) {
	var calls atomic.Int32
	g := testOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			writeStream(w)
			return
		}
		writeStream(w, "x")
	}, 2)
	text, err := g.Generate(t.Context(), []Message{User("hi")})
	if err != nil {
		t.Fatal(err)
	}
	if text != "x" {
		t.Fatalf("got %q", text)
	}
}

func TestRetryPolicyDelay(t *testing.T) {
	p := RetryPolicy{Backoff: 5 * time.Second, MaxBackoff: time.Minute}
	if p.delay(0) != 5*time.Second || p.delay(1) != 10*time.Second || p.delay(2) != 20*time.Second {
		t.Fatal("bad backoff")
	}
	if p.delay(10) != time.Minute {
		t.Fatalf("got %v", p.delay(10))
	}
}

func TestRetryPolicyByMode(t *testing.T) {
	dscope.New(
		modes.ForTest(t),
		dscope.Provide(configs.NewLoader(nil, "")),
		new(Module),
	).Call(func(
		policy RetryPolicy,
	) {
		if policy.Backoff != time.Millisecond || policy.MaxAttempts != 3 {
			t.Fatalf("got %+v", policy)
		}
	})

	dscope.New(
		modes.ForProduction(),
		dscope.Provide(configs.NewLoader(nil, "")),
		new(Module),
	).Call(func(
		policy RetryPolicy,
	) {
		if policy.Backoff != 5*time.Second || policy.MaxAttempts != 5 {
			t.Fatalf("got %+v", policy)
		}
	})
}

func TestEndpoints(t *testing.T) {
	t.Setenv("OPENROUTER_BASE_URL", "")
	t.Setenv("OLLAMA_BASE_URL", "http://10.0.0.2:11434/v1")
	dscope.New(
		modes.ForTest(t),
		dscope.Provide(configs.NewLoader(nil, "")),
		new(Module),
	).Call(func(
		newOpenRouter NewOpenRouter,
		newOllama NewOllama,
	) {
		if got := newOpenRouter(GeneratorArgs{}).Args().BaseURL; got != openRouterEndpoint {
			t.Fatalf("got %v", got)
		}
		if got := newOpenRouter(GeneratorArgs{BaseURL: "http://x/v1"}).Args().BaseURL; got != "http://x/v1" {
			t.Fatalf("got %v", got)
		}
		if !newOpenRouter(GeneratorArgs{}).Args().IsOpenRouter {
			t.Fatal()
		}
		if got := newOllama(GeneratorArgs{}).Args().BaseURL; got != "http://10.0.0.2:11434/v1" {
			t.Fatalf("got %v", got)
		}
	})
}

func TestOpenAIErrorMessage(t *testing.T) {
	err := OpenAIError{
		StatusCode: http.StatusUnauthorized,
		Err:        errors.New("bad key"),
		Request:    ChatCompletionRequest{Model: "m"},
	}
	if err.Error() != "chat completion m: status 401: bad key" {
		t.Fatalf("got %v", err)
	}
}
