// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package download

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type staticTokens string

func (s staticTokens) Token(context.Context) (string, error) { return string(s), nil }

type recorded struct {
	auth        string
	placeholder string
}

func newServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32, chan recorded) {
	t.Helper()
	var calls atomic.Int32
	seen := make(chan recorded, 16)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		seen <- recorded{auth: r.Header.Get("Authorization"), placeholder: r.Header.Get(PlaceholderHeader)}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &calls, seen
}

func TestDownload_WritesFile(t *testing.T) {
	server, calls, _ := newServer(t, http.StatusOK, "payload")
	d := New(staticTokens("tok"), "example.com", time.Second)
	dest := filepath.Join(t.TempDir(), "sub", "file.jpg")

	got, err := d.Download(context.Background(), server.URL+"/b1", dest)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if got != dest {
		t.Errorf("path = %q, want %q", got, dest)
	}
	data, err := os.ReadFile(dest)
	if err != nil || string(data) != "payload" {
		t.Errorf("file = %q, %v", data, err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d", calls.Load())
	}

	entries, _ := os.ReadDir(filepath.Dir(dest))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestDownload_MemoizedByPath(t *testing.T) {
	server, calls, _ := newServer(t, http.StatusOK, "payload")
	d := New(staticTokens("tok"), "example.com", time.Second)
	dest := filepath.Join(t.TempDir(), "file.jpg")

	for i := 0; i < 2; i++ {
		if _, err := d.Download(context.Background(), server.URL+"/b1", dest); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("network requests = %d, want 1", got)
	}
}

func TestDownload_ConcurrentSamePath(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		_, _ = w.Write([]byte("payload"))
	}))
	t.Cleanup(server.Close)

	d := New(staticTokens("tok"), "example.com", 5*time.Second)
	dest := filepath.Join(t.TempDir(), "file.jpg")

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := d.Download(context.Background(), server.URL+"/b1", dest)
			errs <- err
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Download() error = %v", err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("network requests = %d, want 1", got)
	}
}

func TestDownload_EmptyExistingFileIsRefetched(t *testing.T) {
	server, calls, _ := newServer(t, http.StatusOK, "payload")
	d := New(staticTokens("tok"), "example.com", time.Second)
	dest := filepath.Join(t.TempDir(), "file.jpg")
	if err := os.WriteFile(dest, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := d.Download(context.Background(), server.URL, dest); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 1 {
		t.Error("an empty file must not count as downloaded")
	}
}

func TestDownload_AuthHeaders(t *testing.T) {
	tests := []struct {
		name            string
		domain          string
		wantAuth        string
		wantPlaceholder string
	}{
		{"platform host gets credentials", "127.0.0.1", "Bearer tok", ""},
		{"foreign host gets placeholder", "example.com", "", PlaceholderValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _, seen := newServer(t, http.StatusOK, "x")
			d := New(staticTokens("tok"), tt.domain, time.Second)

			if _, err := d.Download(context.Background(), server.URL, filepath.Join(t.TempDir(), "f")); err != nil {
				t.Fatal(err)
			}
			got := <-seen
			if got.auth != tt.wantAuth {
				t.Errorf("Authorization = %q, want %q", got.auth, tt.wantAuth)
			}
			if got.placeholder != tt.wantPlaceholder {
				t.Errorf("%s = %q, want %q", PlaceholderHeader, got.placeholder, tt.wantPlaceholder)
			}
		})
	}
}

func TestTrustedHost(t *testing.T) {
	d := New(staticTokens("tok"), "Example.com.", time.Second)
	tests := map[string]bool{
		"example.com":         true,
		"EXAMPLE.COM":         true,
		"cdn.example.com":     true,
		"a.b.example.com":     true,
		"badexample.com":      false,
		"example.com.evil.io": false,
		"cdn.other.net":       false,
	}
	for host, want := range tests {
		if got := d.trustedHost(host); got != want {
			t.Errorf("trustedHost(%q) = %v, want %v", host, got, want)
		}
	}
}

func TestDownload_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrDownloadUnauthorized},
		{"forbidden", http.StatusForbidden, ErrDownloadUnauthorized},
		{"not found", http.StatusNotFound, ErrDownloadFailed},
		{"server error", http.StatusBadGateway, ErrDownloadFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _, _ := newServer(t, tt.status, "nope")
			d := New(staticTokens("tok"), "example.com", time.Second)
			dest := filepath.Join(t.TempDir(), "f")

			_, err := d.Download(context.Background(), server.URL+"/secret?sig=abc", dest)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), server.URL+"/secret") {
				t.Errorf("error should name the URL: %v", err)
			}
			if strings.Contains(err.Error(), "sig=abc") {
				t.Errorf("error must not leak the signature: %v", err)
			}
			if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
				t.Error("no file should be left after a failed download")
			}
		})
	}
}

func TestDownload_InvalidURL(t *testing.T) {
	d := New(staticTokens("tok"), "example.com", time.Second)
	_, err := d.Download(context.Background(), "not a url", filepath.Join(t.TempDir(), "f"))
	if !errors.Is(err, ErrDownloadFailed) {
		t.Errorf("error = %v", err)
	}
}
