package gemini

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// recordingCaller succeeds for the keys listed in ok and fails for the rest.
type recordingCaller struct {
	ok    map[string]bool
	calls []string
}

func (c *recordingCaller) Call(ctx context.Context, endpoint, key string, req *Request) (*Response, error) {
	c.calls = append(c.calls, key)
	if c.ok[key] {
		return textResponse("answer from " + key), nil
	}
	return nil, &StatusError{Code: 429, Body: "quota"}
}

func textResponse(text string) *Response {
	return &Response{Candidates: []*Candidate{{Content: &Content{Parts: []*Part{{Text: text}}}}}}
}

func keyList(n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("key-%d", i+1)
	}
	return keys
}

func TestFallback(t *testing.T) {
	tests := []struct {
		name      string
		keys      []string
		ok        map[string]bool
		wantCalls []string
		wantText  string
		wantErr   error
	}{
		{
			name:      "first key succeeds",
			keys:      []string{"a", "b", "c"},
			ok:        map[string]bool{"a": true, "b": true},
			wantCalls: []string{"a"},
			wantText:  "answer from a",
		},
		{
			name:      "falls through to the last key",
			keys:      []string{"a", "b", "c"},
			ok:        map[string]bool{"c": true},
			wantCalls: []string{"a", "b", "c"},
			wantText:  "answer from c",
		},
		{
			name:      "all keys fail",
			keys:      []string{"a", "b"},
			wantCalls: []string{"a", "b"},
			wantErr:   ErrAllCredentialsFailed,
		},
		{
			name:    "no keys",
			keys:    nil,
			wantErr: ErrAllCredentialsFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := &recordingCaller{ok: tt.ok}
			resp, err := Fallback(context.Background(), caller, "http://example", &Request{}, tt.keys)
			assert.Equal(t, tt.wantCalls, caller.calls)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, resp)
				return
			}
			require.NoError(t, err)
			text, err := resp.Text()
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, text)
		})
	}
}

func TestFallback_TransportErrorMovesOn(t *testing.T) {
	var calls int
	caller := CallerFunc(func(ctx context.Context, endpoint, key string, req *Request) (*Response, error) {
		calls++
		if key == "broken" {
			return nil, errors.New("connection reset by peer")
		}
		return textResponse("ok"), nil
	})
	resp, err := Fallback(context.Background(), caller, "http://example", &Request{}, []string{"broken", "good"})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	text, _ := resp.Text()
	assert.Equal(t, "ok", text)
}

func TestFallback_HooksSeeEveryAttempt(t *testing.T) {
	caller := &recordingCaller{ok: map[string]bool{"c": true}}
	var indexes []int
	var failures int
	hook := func(index int, err error) {
		indexes = append(indexes, index)
		if err != nil {
			failures++
		}
	}
	_, err := Fallback(context.Background(), caller, "http://example", &Request{}, []string{"a", "b", "c"}, hook)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, indexes)
	assert.Equal(t, 2, failures)
}

func TestFallback_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	caller := &recordingCaller{ok: map[string]bool{"a": true}}
	_, err := Fallback(ctx, caller, "http://example", &Request{}, []string{"a"})
	assert.ErrorIs(t, err, ErrAllCredentialsFailed)
	assert.Empty(t, caller.calls)
}

func TestFallback_FirstSuccessStopsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 10).Draw(t, "n")
		k := rapid.IntRange(1, n).Draw(t, "k")
		keys := keyList(n)
		ok := map[string]bool{keys[k-1]: true}
		// keys after k may also be healthy, they must still not be contacted
		for i := k; i < n; i++ {
			ok[keys[i]] = rapid.Bool().Draw(t, fmt.Sprintf("healthy_%d", i))
		}
		caller := &recordingCaller{ok: ok}
		_, err := Fallback(context.Background(), caller, "http://example", &Request{}, keys)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(caller.calls) != k {
			t.Fatalf("expected %d attempts, got %d", k, len(caller.calls))
		}
		for i, key := range caller.calls {
			if key != keys[i] {
				t.Fatalf("attempt %d used %s, want %s", i, key, keys[i])
			}
		}
	})
}

func TestFallback_AllFailProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 10).Draw(t, "n")
		caller := &recordingCaller{}
		_, err := Fallback(context.Background(), caller, "http://example", &Request{}, keyList(n))
		if !errors.Is(err, ErrAllCredentialsFailed) {
			t.Fatalf("expected ErrAllCredentialsFailed, got %v", err)
		}
		if len(caller.calls) != n {
			t.Fatalf("expected %d attempts, got %d", n, len(caller.calls))
		}
	})
}

func TestWithTimeout(t *testing.T) {
	slow := CallerFunc(func(ctx context.Context, endpoint, key string, req *Request) (*Response, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
			return textResponse("late"), nil
		}
	})
	_, err := WithTimeout(slow, 10*time.Millisecond).Call(context.Background(), "", "k", &Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient(t *testing.T) {
	keys := []string{"a", "b"}
	caller := &recordingCaller{ok: map[string]bool{"b": true}}
	var attempts int
	client := NewClient(caller, keys,
		WithAttemptTimeout(time.Second),
		WithAttemptHook(func(int, error) { attempts++ }),
	)
	keys[0] = "mutated"

	assert.Equal(t, 2, client.KeyCount())
	resp, err := client.Generate(context.Background(), "http://example", &Request{})
	require.NoError(t, err)
	text, _ := resp.Text()
	assert.Equal(t, "answer from b", text)
	assert.Equal(t, []string{"a", "b"}, caller.calls)
	assert.Equal(t, 2, attempts)
}

func TestResponseText(t *testing.T) {
	_, err := (&Response{}).Text()
	assert.ErrorIs(t, err, ErrNoCandidates)

	_, err = (&Response{Candidates: []*Candidate{{}}}).Text()
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoCandidates)

	_, err = (&Response{Candidates: []*Candidate{{Content: &Content{}}}}).Text()
	assert.Error(t, err)

	text, err := textResponse("مرحبا").Text()
	require.NoError(t, err)
	assert.Equal(t, "مرحبا", text)
}
