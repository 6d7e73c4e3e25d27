package logger

import (
	"log/slog"
	"testing"
)

const sampleJWT = "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJzdWIiOiJhbGljZSJ9.Zm9vYmFy"

func TestRedactSensitive(t *testing.T) {
	tests := []struct {
		name string
		attr slog.Attr
		want string
	}{
		{"password key", slog.String("password", "hunter2"), redactedValue},
		{"access_token key", slog.String("access_token", "abc"), redactedValue},
		{"authorization header", slog.String("Authorization", "Bearer abc"), redactedValue},
		{"passphrase key", slog.String("storage.passphrase", "pw"), redactedValue},
		{"jwt under neutral key", slog.String("value", sampleJWT), "eyJhb...mFy"},
		{"bearer under neutral key", slog.String("header", "Bearer " + sampleJWT), "Bearer eyJhb...mFy"},
		{"empty sensitive", slog.String("password", ""), ""},
		{"normal value", slog.String("union", "Alpha"), "Alpha"},
		{"path", slog.String("path", "/unions/3"), "/unions/3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := redactSensitive(tt.attr)
			if got.Value.String() != tt.want {
				t.Errorf("redactSensitive(%s=%q) = %q, want %q", tt.attr.Key, tt.attr.Value.String(), got.Value.String(), tt.want)
			}
		})
	}
}

func TestRedactSensitive_Group(t *testing.T) {
	attr := slog.Group("request", slog.String("token", "abc"), slog.String("method", "GET"))
	got := redactSensitive(attr).Value.Group()

	if got[0].Value.String() != redactedValue {
		t.Errorf("nested token = %q, want redacted", got[0].Value.String())
	}
	if got[1].Value.String() != "GET" {
		t.Errorf("nested method = %q, want GET", got[1].Value.String())
	}
}

func TestRedactString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{sampleJWT, "eyJhb...mFy"},
		{"Bearer short", "Bearer ***"},
		{"bearer " + sampleJWT, "bearer eyJhb...mFy"},
		{"not a token", "not a token"},
		{"eyJ.only.", "***"},
	}
	for _, tt := range tests {
		if got := RedactString(tt.in); got != tt.want {
			t.Errorf("RedactString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsSensitiveKey(t *testing.T) {
	for _, k := range []string{"password", "Token", "X-Authorization", "Cookie"} {
		if !IsSensitiveKey(k) {
			t.Errorf("IsSensitiveKey(%q) = false, want true", k)
		}
	}
	for _, k := range []string{"username", "path", "status"} {
		if IsSensitiveKey(k) {
			t.Errorf("IsSensitiveKey(%q) = true, want false", k)
		}
	}
}

func TestIsSensitiveValue(t *testing.T) {
	if !IsSensitiveValue(sampleJWT) {
		t.Error("JWT should be sensitive")
	}
	if !IsSensitiveValue("Bearer x1") {
		t.Error("bearer header should be sensitive")
	}
	if IsSensitiveValue("eyJ-no-dots") {
		t.Error("value without two dots is not a JWT")
	}
}
