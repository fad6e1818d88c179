package tilecache

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/paulmach/orb/maptile"
)

func TestHTTPFetcherURL(t *testing.T) {
	f := NewHTTPFetcher(HTTPConfig{URLTemplate: "https://tiles.example/{z}/{x}/{y}.png?k=1"})
	got := f.URL(maptile.New(12, 34, 7))
	if want := "https://tiles.example/7/12/34.png?k=1"; got != want {
		t.Errorf("URL = %q, want %q", got, want)
	}

	def := NewHTTPFetcher(HTTPConfig{})
	if got := def.URL(maptile.New(1, 2, 3)); got != "https://tile.openstreetmap.org/3/1/2.png" {
		t.Errorf("default URL = %q", got)
	}
}

func TestHTTPFetcherFetch(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, tileImage(color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff})); err != nil {
		t.Fatal(err)
	}
	body := buf.Bytes()

	var gotPath, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotUA = r.URL.Path, r.UserAgent()
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPConfig{
		URLTemplate: srv.URL + "/{z}/{x}/{y}.png",
		UserAgent:   "slippy-test",
	})
	img, err := f.Fetch(context.Background(), maptile.New(5, 6, 4))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotPath != "/4/5/6.png" {
		t.Errorf("path = %q, want /4/5/6.png", gotPath)
	}
	if gotUA != "slippy-test" {
		t.Errorf("User-Agent = %q, want slippy-test", gotUA)
	}
	if b := img.Bounds(); b.Dx() != 256 || b.Dy() != 256 {
		t.Errorf("bounds = %v, want 256x256", b)
	}
	r, g, bl, _ := img.At(10, 10).RGBA()
	if r>>8 != 0x10 || g>>8 != 0x20 || bl>>8 != 0x30 {
		t.Errorf("pixel = (%x,%x,%x), want (10,20,30)", r>>8, g>>8, bl>>8)
	}
}

func TestHTTPFetcherErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		notFound bool
	}{
		{"not found", http.StatusNotFound, "", true},
		{"gone", http.StatusGone, "", true},
		{"server error", http.StatusInternalServerError, "", false},
		{"bad image", http.StatusOK, "not an image", false},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(tt.body))
		}))

		f := NewHTTPFetcher(HTTPConfig{URLTemplate: srv.URL + "/{z}/{x}/{y}.png"})
		_, err := f.Fetch(context.Background(), maptile.New(0, 0, 3))
		srv.Close()

		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if got := errors.Is(err, ErrNotFound); got != tt.notFound {
			t.Errorf("%s: errors.Is(err, ErrNotFound) = %v, want %v (err: %v)", tt.name, got, tt.notFound, err)
		}
	}
}

func TestHTTPFetcherWithCache(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, tileImage(color.RGBA{B: 0xff, A: 0xff})); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	c := New(Config{}, NewHTTPFetcher(HTTPConfig{URLTemplate: srv.URL + "/{z}/{x}/{y}.png"}))
	defer c.Close()

	done := make(chan struct{}, 1)
	c.OnDownloadFinished(func() { done <- struct{}{} })

	key := maptile.New(7, 7, 4)
	c.TryGetImage(key)
	waitFor(t, done)
	if _, ok := c.TryGetImage(key); !ok {
		t.Error("tile not cached after HTTP download")
	}
}
