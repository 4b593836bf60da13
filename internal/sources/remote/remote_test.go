package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"charity/internal/sources"
)

func TestClientFetchesBothDocuments(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/site/"+sources.DonorsFile, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"name":"A","amount":10,"date":"2024-01-01","anonymous":false}]`))
	})
	mux.HandleFunc("/site/"+sources.SilentFile, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"silentDonations":[1]}`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c, err := New(ts.URL+"/site/", time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	donors, err := c.ReadDonors(context.Background())
	if err != nil || len(donors) != 1 {
		t.Fatalf("unexpected donors: %v (err=%v)", donors, err)
	}
	silent, err := c.ReadSilent(context.Background())
	if err != nil || len(silent) != 1 || silent[0].Units() != 1 {
		t.Fatalf("unexpected silent: %v (err=%v)", silent, err)
	}
}

func TestClientNon2xxIsError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	c, err := New(ts.URL, time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.ReadDonors(context.Background()); err == nil {
		t.Fatalf("expected error for 404")
	}
	if _, err := c.ReadSilent(context.Background()); err == nil {
		t.Fatalf("expected error for 404")
	}
}

func TestNewRejectsBadScheme(t *testing.T) {
	if _, err := New("ftp://example.org", time.Second); err == nil {
		t.Fatalf("expected scheme error")
	}
}
