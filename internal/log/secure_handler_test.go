package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

// TestSecureHandler_SanitizesSensitiveKeys tests key based masking.
func TestSecureHandler_SanitizesSensitiveKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		key      string
		value    string
		wantMask bool
	}{
		{name: "cookie", key: "cookie", value: "session=abc123", wantMask: true},
		{name: "Cookie uppercase", key: "Cookie", value: "session=abc123", wantMask: true},
		{name: "authorization", key: "authorization", value: "Basic dXNlcjpwYXNz", wantMask: true},
		{name: "headers", key: "headers", value: "X-Token: 1", wantMask: true},
		{name: "key containing token", key: "api_token", value: "abc", wantMask: true},
		{name: "source is kept", key: "source", value: "dontr.ru", wantMask: false},
		{name: "period is kept", key: "period", value: "week", wantMask: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewLogger(&buf, false, false)
			logger.Warn("message", tt.key, tt.value)

			out := buf.String()
			if tt.wantMask {
				if strings.Contains(out, tt.value) || !strings.Contains(out, MaskValue) {
					t.Errorf("value not masked: %s", out)
				}
				return
			}
			if !strings.Contains(out, tt.value) {
				t.Errorf("value was masked: %s", out)
			}
		})
	}
}

// TestSecureHandler_SanitizesValues tests value based masking.
func TestSecureHandler_SanitizesValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		leak  string
	}{
		{name: "bearer token", value: "Bearer abc.def", leak: "abc.def"},
		{name: "jwt", value: "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.sig", leak: "eyJzdWIiOiIxIn0"},
		{name: "url password", value: "https://www.liveinternet.ru/stat/dontr.ru/index.html?password=hunter2&period=week", leak: "hunter2"},
		{name: "url userinfo", value: "https://user:pw@example.com/stat/", leak: "user:pw"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			NewLogger(&buf, false, false).Warn("message", "value", tt.value)
			if strings.Contains(buf.String(), tt.leak) {
				t.Errorf("output leaks %q: %s", tt.leak, buf.String())
			}
		})
	}

	t.Run("plain url is unchanged", func(t *testing.T) {
		t.Parallel()

		u := "https://www.liveinternet.ru/stat/dontr.ru/index.html?period=week&graph=table&total=yes"
		if _, ok := maskURL(u); ok {
			t.Errorf("maskURL(%q) changed a URL without secrets", u)
		}
	})
}

// TestSecureHandler_LogLevels tests verbose switching.
func TestSecureHandler_LogLevels(t *testing.T) {
	t.Parallel()

	var quiet, verbose bytes.Buffer
	NewLogger(&quiet, false, false).Debug("hidden")
	NewLogger(&verbose, true, false).Debug("shown")

	if quiet.Len() != 0 {
		t.Errorf("debug logged without verbose: %s", quiet.String())
	}
	if !strings.Contains(verbose.String(), "shown") {
		t.Errorf("debug not logged with verbose: %s", verbose.String())
	}
}

// TestSecureHandler_WithAttrsAndGroup tests attribute and group handling.
func TestSecureHandler_WithAttrsAndGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, false, true).
		With("cookie", "session=abc").
		WithGroup("request")
	logger.Warn("message", slog.Group("auth", slog.String("scheme", "basic")), "source", "dontr.ru")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if entry["cookie"] != MaskValue {
		t.Errorf("cookie = %v", entry["cookie"])
	}
	req, ok := entry["request"].(map[string]any)
	if !ok {
		t.Fatalf("request group missing: %v", entry)
	}
	if req["source"] != "dontr.ru" {
		t.Errorf("request.source = %v", req["source"])
	}
	if auth, ok := req["auth"].(map[string]any); !ok || auth["scheme"] != "basic" {
		t.Errorf("request.auth = %v", req["auth"])
	}
}

// TestNewSecureHandler_NilHandler tests the nil fallback.
func TestNewSecureHandler_NilHandler(t *testing.T) {
	t.Parallel()

	if h := NewSecureHandler(nil); h.handler == nil {
		t.Error("handler is nil")
	}
}
