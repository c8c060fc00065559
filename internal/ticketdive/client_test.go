package ticketdive

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchArtistPage(t *testing.T) {
	var gotUserAgent, gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		gotPath = r.URL.Path
		switch r.URL.Path {
		case "/artist/known":
			w.Write([]byte("<html>artist page</html>"))
		case "/artist/missing":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer ts.Close()

	c := NewClient(ts.URL, 5*time.Second)
	ctx := context.Background()

	t.Run("success returns body", func(t *testing.T) {
		body, err := c.FetchArtistPage(ctx, "known")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if body != "<html>artist page</html>" {
			t.Errorf("unexpected body %q", body)
		}
		if gotPath != "/artist/known" {
			t.Errorf("unexpected request path %q", gotPath)
		}
		if gotUserAgent != UserAgent {
			t.Errorf("expected fixed User-Agent, got %q", gotUserAgent)
		}
	})

	t.Run("404 maps to ErrArtistNotFound", func(t *testing.T) {
		_, err := c.FetchArtistPage(ctx, "missing")
		if !errors.Is(err, ErrArtistNotFound) {
			t.Fatalf("expected ErrArtistNotFound, got %v", err)
		}
	})

	t.Run("other non-2xx maps to StatusError", func(t *testing.T) {
		_, err := c.FetchArtistPage(ctx, "broken")
		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("expected StatusError, got %v", err)
		}
		if statusErr.Code != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", statusErr.Code)
		}
	})

	t.Run("transport failure surfaces as error", func(t *testing.T) {
		dead := NewClient("http://127.0.0.1:1", time.Second)
		if _, err := dead.FetchArtistPage(ctx, "x"); err == nil {
			t.Fatal("expected a transport error")
		}
	})
}
