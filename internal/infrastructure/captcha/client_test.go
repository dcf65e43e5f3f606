package captcha

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/johnwlockwood/knowledge-graph/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newProvider(t *testing.T, calls *atomic.Int64, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGate_DisabledIsOpenAndSilent(t *testing.T) {
	var calls atomic.Int64
	srv := newProvider(t, &calls, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false}`))
	})

	g, err := NewGate(config.VerificationConfig{
		Secret:  "", // disabled
		URL:     srv.URL,
		Timeout: time.Second,
	}, testLogger())
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}

	if g.Enabled() {
		t.Fatal("gate without secret should report disabled")
	}
	if !g.Verify(context.Background(), "", "1.2.3.4") {
		t.Fatal("disabled gate must verify true")
	}
	if calls.Load() != 0 {
		t.Fatalf("disabled gate made %d outbound calls, want 0", calls.Load())
	}
}

func TestGate_Verify(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    bool
	}{
		{
			name: "provider accepts",
			handler: func(w http.ResponseWriter, r *http.Request) {
				if err := r.ParseForm(); err != nil {
					t.Errorf("bad form: %v", err)
				}
				if r.PostForm.Get("secret") != "0xdeadbeef" {
					t.Errorf("secret = %q", r.PostForm.Get("secret"))
				}
				if r.PostForm.Get("response") != "tok-1" {
					t.Errorf("response = %q", r.PostForm.Get("response"))
				}
				if r.PostForm.Get("remoteip") != "1.2.3.4" {
					t.Errorf("remoteip = %q", r.PostForm.Get("remoteip"))
				}
				w.Write([]byte(`{"success": true}`))
			},
			want: true,
		},
		{
			name: "provider rejects",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"success": false, "error-codes": ["invalid-input-response"]}`))
			},
			want: false,
		},
		{
			name: "provider errors",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			want: false,
		},
		{
			name: "provider returns garbage",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`not json at all`))
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int64
			srv := newProvider(t, &calls, tt.handler)

			g, err := NewGate(config.VerificationConfig{
				Secret:  "0xdeadbeef",
				URL:     srv.URL,
				Timeout: 2 * time.Second,
			}, testLogger())
			if err != nil {
				t.Fatalf("NewGate: %v", err)
			}

			if got := g.Verify(context.Background(), "tok-1", "1.2.3.4"); got != tt.want {
				t.Errorf("Verify() = %v, want %v", got, tt.want)
			}
			if calls.Load() != 1 {
				t.Errorf("provider called %d times, want 1", calls.Load())
			}
		})
	}
}

func TestGate_TransportFailureIsFalse(t *testing.T) {
	g, err := NewGate(config.VerificationConfig{
		Secret:  "0xdeadbeef",
		URL:     "http://127.0.0.1:1", // nothing listens here
		Timeout: 500 * time.Millisecond,
	}, testLogger())
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}

	if g.Verify(context.Background(), "tok-1", "1.2.3.4") {
		t.Fatal("unreachable provider must verify false")
	}
}
