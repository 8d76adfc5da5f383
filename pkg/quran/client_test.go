package quran

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/teslashibe/alifbata/pkg/retry"
)

var noSleep = retry.SleeperFunc(func(ctx context.Context, d time.Duration) error { return nil })

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := NewClient(
		WithBaseURL(url),
		WithSleeper(noSleep),
		WithRetry(retry.Policy{MaxRetries: 2, InitialDelay: time.Millisecond, Multiplier: 2}),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func listHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"code":200,"message":"ok","data":[`)
	for n := 1; n <= LastSurah; n++ {
		if n > 1 {
			fmt.Fprint(w, ",")
		}
		fmt.Fprintf(w, `{"nomor":%d,"nama":"x","namaLatin":"Surah %d","jumlahAyat":5,"tempatTurun":"Mekah","arti":"a"}`, n, n)
	}
	fmt.Fprint(w, `]}`)
}

func TestJuz30(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(listHandler))
	defer server.Close()

	surahs, err := newTestClient(t, server.URL).Juz30(context.Background())
	if err != nil {
		t.Fatalf("Juz30: %v", err)
	}
	if len(surahs) != 37 {
		t.Fatalf("expected 37 surahs, got %d", len(surahs))
	}
	if surahs[0].Number != 78 || surahs[len(surahs)-1].Number != 114 {
		t.Errorf("unexpected range %d..%d", surahs[0].Number, surahs[len(surahs)-1].Number)
	}
	if !surahs[0].Meccan() {
		t.Error("expected Meccan surah")
	}
}

func TestSurah(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/surat/112" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"code":200,"message":"ok","data":{
			"nomor":112,"nama":"الإخلاص","namaLatin":"Al-Ikhlas","jumlahAyat":4,"tempatTurun":"Mekah","arti":"Ikhlas",
			"ayat":[{"nomorAyat":1,"teksArab":"قُلْ هُوَ اللّٰهُ اَحَدٌۚ","teksLatin":"qul huwallāhu aḥad","teksIndonesia":"Katakanlah (Muhammad), Dialah Allah, Yang Maha Esa.",
			"audio":{"01":"https://cdn.example/01/112001.mp3","02":"https://cdn.example/02/112001.mp3"}}]}}`)
	}))
	defer server.Close()

	got, err := newTestClient(t, server.URL).Surah(context.Background(), 112)
	if err != nil {
		t.Fatalf("Surah: %v", err)
	}
	if got.LatinName != "Al-Ikhlas" || got.VerseCount != 4 {
		t.Errorf("unexpected surah %+v", got.Surah)
	}
	if len(got.Verses) != 1 {
		t.Fatalf("expected 1 verse, got %d", len(got.Verses))
	}
	want := "https://cdn.example/01/112001.mp3"
	if diff := cmp.Diff(want, got.Verses[0].AudioURL()); diff != "" {
		t.Errorf("audio url (-want +got):\n%s", diff)
	}
}

func TestSurahInvalidNumber(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:0")
	for _, n := range []int{0, -1, 115} {
		if _, err := c.Surah(context.Background(), n); !errors.Is(err, ErrInvalidSurah) {
			t.Errorf("Surah(%d): expected ErrInvalidSurah, got %v", n, err)
		}
	}
}

func TestServerErrorRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "upstream busy", http.StatusServiceUnavailable)
			return
		}
		listHandler(w, r)
	}))
	defer server.Close()

	if _, err := newTestClient(t, server.URL).Surahs(context.Background()); err != nil {
		t.Fatalf("Surahs: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}
}

func TestForbiddenNotPermission(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Juz30(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 APIError, got %v", err)
	}
	if retry.IsPermission(err) || errors.Is(err, ErrNotFound) {
		t.Errorf("unexpected classification: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestNotFoundFailsFast(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Surah(context.Background(), 1)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 APIError, got %v", err)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if retry.IsPermission(err) {
		t.Error("404 should not read as a permission error")
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}
