package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCSRFGenerator(t *testing.T) {
	gen := NewCSRFGenerator("secret")

	token, err := gen.GenerateToken("session-1")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	tests := []struct {
		name      string
		sessionID string
		token     string
		want      bool
	}{
		{name: "matching", sessionID: "session-1", token: token, want: true},
		{name: "other session", sessionID: "session-2", token: token, want: false},
		{name: "empty token", sessionID: "session-1", token: "", want: false},
		{name: "empty session", sessionID: "", token: token, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gen.ValidateToken(tt.sessionID, tt.token); got != tt.want {
				t.Errorf("ValidateToken() = %v, want %v", got, tt.want)
			}
		})
	}

	if NewCSRFGenerator("other").ValidateToken("session-1", token) {
		t.Error("token must not validate under a different secret")
	}
	if _, err := gen.GenerateToken(""); err == nil {
		t.Error("GenerateToken(\"\") should fail")
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Hour)
	defer rl.Stop()

	if !rl.Allow("1.2.3.4") || !rl.Allow("1.2.3.4") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("1.2.3.4") {
		t.Error("third request should be limited")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("other IPs have their own bucket")
	}
}

func TestRateLimiterRefills(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)
	defer rl.Stop()

	if !rl.Allow("ip") {
		t.Fatal("first request should pass")
	}
	if rl.Allow("ip") {
		t.Fatal("second request should be limited")
	}
	time.Sleep(20 * time.Millisecond)
	if !rl.Allow("ip") {
		t.Error("bucket should refill after the window")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		trusted bool
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded chain", trusted: true, headers: map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, remote: "1.1.1.1:80", want: "10.0.0.1"},
		{name: "real ip", trusted: true, headers: map[string]string{"X-Real-IP": "10.0.0.3"}, remote: "1.1.1.1:80", want: "10.0.0.3"},
		{name: "forwarded ignored without proxy", headers: map[string]string{"X-Forwarded-For": "10.0.0.1"}, remote: "1.1.1.1:80", want: "1.1.1.1"},
		{name: "real ip ignored without proxy", headers: map[string]string{"X-Real-IP": "10.0.0.3"}, remote: "1.1.1.1:80", want: "1.1.1.1"},
		{name: "remote addr", remote: "192.168.1.5:5000", want: "192.168.1.5"},
		{name: "remote addr behind proxy without headers", trusted: true, remote: "192.168.1.5:5000", want: "192.168.1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := GetClientIP(r, tt.trusted); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSessionCookies(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	expires := time.Now().Add(time.Hour)

	cookie := CreateSessionCookie(r, SessionCookieName, "abc", expires)
	if !cookie.HttpOnly || cookie.Secure {
		t.Errorf("plain http cookie flags wrong: %+v", cookie)
	}

	r.TLS = &tls.ConnectionState{}
	if !CreateSessionCookie(r, SessionCookieName, "abc", expires).Secure {
		t.Error("TLS request should get a Secure cookie")
	}

	del := CreateDeleteCookie(r, SessionCookieName)
	if del.MaxAge != -1 {
		t.Errorf("delete cookie MaxAge = %d", del.MaxAge)
	}

	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "xyz"})
	if got := SessionIDFromRequest(r); got != "xyz" {
		t.Errorf("SessionIDFromRequest() = %q", got)
	}
	if GenerateSessionID() == GenerateSessionID() {
		t.Error("session IDs should be unique")
	}
}
