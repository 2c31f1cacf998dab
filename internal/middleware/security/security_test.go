package security

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Header().Get("X-Frame-Options") != "SAMEORIGIN" {
		t.Fatalf("X-Frame-Options = %q", rr.Header().Get("X-Frame-Options"))
	}
	if !strings.Contains(rr.Header().Get("Content-Security-Policy"), "frame-ancestors 'self'") {
		t.Fatalf("CSP = %q", rr.Header().Get("Content-Security-Policy"))
	}
	if rr.Header().Get("Strict-Transport-Security") != "" {
		t.Fatal("HSTS must not be sent over plain HTTP")
	}
}

func TestChartFrameCSP(t *testing.T) {
	csp := ChartFrameCSP("https://go-echarts.github.io/go-echarts-assets/assets/")
	if !strings.Contains(csp, "script-src 'self' https://go-echarts.github.io 'unsafe-inline'") {
		t.Fatalf("CSP = %q", csp)
	}
	if strings.Contains(ChartFrameCSP("not a url"), "not a url") {
		t.Fatal("invalid host leaked into policy")
	}
}

func TestClientIP(t *testing.T) {
	d := NewDetector(nil)
	tests := []struct {
		name   string
		remote string
		xff    string
		xri    string
		want   string
	}{
		{"direct public", "203.0.113.9:1234", "", "", "203.0.113.9"},
		{"public peer ignores xff", "203.0.113.9:1234", "1.2.3.4", "", "203.0.113.9"},
		{"trusted proxy xff", "10.0.0.5:80", "198.51.100.7, 10.0.0.5", "", "198.51.100.7"},
		{"trusted proxy x-real-ip", "127.0.0.1:80", "", "198.51.100.8", "198.51.100.8"},
		{"trusted proxy garbage", "192.168.1.1:80", "nope", "", "192.168.1.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := d.ClientIP(r); got != tt.want {
				t.Fatalf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectorCountsButDoesNotBlock(t *testing.T) {
	d := NewDetector(nil)
	called := 0
	h := d.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called++ }))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/.env", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ui/budget?salary=100", nil))

	if called != 2 {
		t.Fatalf("handler called %d times", called)
	}
	if d.Suspicious() != 1 {
		t.Fatalf("suspicious = %d", d.Suspicious())
	}
}
