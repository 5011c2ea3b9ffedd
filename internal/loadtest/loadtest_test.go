package loadtest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunCountsStatusCodes(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&hits, 1)
		if n%4 == 0 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	runner := NewRunner(srv.URL+"/api/", 3, 20)
	result := runner.Run(context.Background(), http.MethodGet, "/ping", nil)

	if result.TotalRequests != 20 {
		t.Fatalf("TotalRequests = %d", result.TotalRequests)
	}
	if result.SuccessCount != 15 || result.FailureCount != 5 {
		t.Fatalf("success %d, failure %d", result.SuccessCount, result.FailureCount)
	}
	if result.StatusCodes[http.StatusTooManyRequests] != 5 {
		t.Fatalf("StatusCodes = %v", result.StatusCodes)
	}
	if result.URL != srv.URL+"/api/ping" {
		t.Fatalf("URL = %q", result.URL)
	}
	if result.MinTime > result.P95Time || result.P95Time > result.MaxTime {
		t.Fatalf("latencies out of order: %s %s %s", result.MinTime, result.P95Time, result.MaxTime)
	}
}

func TestLoginSetsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/auth/login":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["password"] != "geheim123" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"code":101003,"message":"falsch"}`))
				return
			}
			_, _ = w.Write([]byte(`{"code":100000,"message":"ok","data":{"token":"abc"}}`))
		default:
			if r.Header.Get("Authorization") != "Bearer abc" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	runner := NewRunner(srv.URL+"/api", 2, 4)
	if err := runner.Login(context.Background(), "a@b.de", "falsch"); err == nil {
		t.Fatal("expected login error")
	}
	if err := runner.Login(context.Background(), "a@b.de", "geheim123"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	result := runner.Run(context.Background(), http.MethodGet, "/auth/me", nil)
	if result.SuccessCount != 4 {
		t.Fatalf("SuccessCount = %d, codes %v", result.SuccessCount, result.StatusCodes)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	result := NewRunner(srv.URL, 1, 1000).Run(ctx, http.MethodGet, "/", nil)
	if result.TotalRequests >= 1000 {
		t.Fatalf("TotalRequests = %d, run was not cancelled", result.TotalRequests)
	}
}

func TestPrint(t *testing.T) {
	r := &Result{Method: "GET", URL: "http://x/api/ping", TotalRequests: 2, StatusCodes: map[int]int{200: 2}}
	var sb strings.Builder
	r.Print(&sb)
	if !strings.Contains(sb.String(), "Status 200") {
		t.Fatalf("report misses status line:\n%s", sb.String())
	}
}
