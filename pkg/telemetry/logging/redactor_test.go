package logging

import (
	"log/slog"
	"testing"

	"mercator-hq/placement/pkg/config"
)

func TestNewRedactor(t *testing.T) {
	tests := []struct {
		name   string
		custom []config.RedactPattern
		want   int
	}{
		{name: "default patterns only", want: 3},
		{name: "with custom pattern", custom: []config.RedactPattern{{Name: "t", Pattern: "tok_[a-z]+", Replacement: "tok_***"}}, want: 4},
		{name: "invalid custom pattern skipped", custom: []config.RedactPattern{{Name: "bad", Pattern: "[unclosed"}}, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewRedactor(tt.custom).PatternCount(); got != tt.want {
				t.Errorf("PatternCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRedactor_RedactString(t *testing.T) {
	r := NewRedactor(nil)

	tests := []struct {
		input string
		want  string
	}{
		{input: "", want: ""},
		{input: "plain text", want: "plain text"},
		{input: "mail me at a.b@example.org", want: "mail me at ***@***"},
		{input: "Authorization: Bearer xyz123", want: "Authorization: Bearer ***"},
		{input: "api_key=pk_123", want: "api_key=***"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := r.RedactString(tt.input); got != tt.want {
				t.Errorf("RedactString(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRedactor_RedactAttr(t *testing.T) {
	r := NewRedactor(nil)

	tests := []struct {
		name string
		attr slog.Attr
		want string
	}{
		{name: "sensitive string", attr: slog.String("secret", "hunter22"), want: "hunt***"},
		{name: "short sensitive string", attr: slog.String("password", "abc"), want: "***"},
		{name: "sensitive suffix", attr: slog.String("admin_token", "abcdefgh"), want: "abcd***"},
		{name: "sensitive non-string", attr: slog.Int("api_key", 42), want: "***"},
		{name: "plain int", attr: slog.Int("tokens", 42), want: "42"},
		{name: "pattern in value", attr: slog.String("note", "x@y.io"), want: "***@***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.RedactAttr(tt.attr).Value.String(); got != tt.want {
				t.Errorf("RedactAttr() = %q, want %q", got, tt.want)
			}
		})
	}

	group := r.RedactAttr(slog.Group("visitor", slog.String("email", "a@b.co"), slog.String("id", "7")))
	attrs := group.Value.Group()
	if len(attrs) != 2 || attrs[0].Value.String() != "a@b.***" || attrs[1].Value.String() != "7" {
		t.Errorf("group redaction = %v", group)
	}
}
