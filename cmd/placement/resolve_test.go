package main

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"mercator-hq/placement/pkg/server"
)

func TestResolveCommand(t *testing.T) {
	configPath, contextPath, _ := setupWorkspace(t, testLayouts)

	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr bool
	}{
		{
			name: "logged in visitor gets substituted hero",
			args: []string{"--slot", "header", "--context", contextPath},
			want: []string{"--- hero (slot=header priority=5", "<p>Hi ana</p>"},
		},
		{
			name: "anonymous visitor gets plain header",
			args: []string{"--slot", "header"},
			want: []string{"plain-header", "<p>Welcome</p>"},
		},
		{
			name: "hook slot",
			args: []string{"--slot", "hook", "--hook", "before_footer"},
			want: []string{"before-footer", "<hr>"},
		},
		{
			name: "unmatched hook",
			args: []string{"--slot", "hook", "--hook", "after_footer"},
			want: []string{"hook/after_footer: no layouts"},
		},
		{
			name: "explain lists excluded candidates",
			args: []string{"--slot", "header", "--explain"},
			want: []string{"candidates:", "hero", "excluded  reason=no_match", "plain-header", "selected  priority=1 group=0"},
		},
		{
			name: "individual layout",
			args: []string{"--layout", "promo"},
			want: []string{"--- promo (slot=individual", "<b>promo</b>"},
		},
		{name: "unknown slot", args: []string{"--slot", "nowhere"}, wantErr: true},
		{name: "hook slot requires hook", args: []string{"--slot", "hook"}, wantErr: true},
		{name: "individual slot needs layout flag", args: []string{"--slot", "individual"}, wantErr: true},
		{name: "no slot or layout", args: nil, wantErr: true},
		{name: "slot and layout", args: []string{"--slot", "header", "--layout", "promo"}, wantErr: true},
		{name: "missing individual layout", args: []string{"--layout", "nope"}, wantErr: true},
		{name: "bad format", args: []string{"--slot", "header", "--format", "xml"}, wantErr: true},
		{name: "bad instant", args: []string{"--slot", "header", "--at", "tomorrow"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"resolve", "--config", configPath}, tt.args...)
			out, err := execute(t, args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolve error = %v, wantErr %v\n%s", err, tt.wantErr, out)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestResolveCommandJSON(t *testing.T) {
	configPath, contextPath, _ := setupWorkspace(t, testLayouts)

	out, err := execute(t, "resolve", "--config", configPath, "--slot", "header", "--context", contextPath, "--format", "json", "--explain")
	if err != nil {
		t.Fatalf("resolve error = %v", err)
	}

	var resp server.ResolveResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(resp.Fragments) != 1 || resp.Fragments[0].LayoutID != "hero" || resp.Fragments[0].Body != "<p>Hi ana</p>" {
		t.Errorf("fragments = %+v", resp.Fragments)
	}
	if len(resp.Trace) != 2 {
		t.Errorf("trace = %+v, want both header candidates", resp.Trace)
	}
}

func TestReadContext(t *testing.T) {
	_, contextPath, _ := setupWorkspace(t, testLayouts)

	rctx, err := readContext(nil, "")
	if err != nil || rctx != nil {
		t.Errorf("empty path = %v, %v", rctx, err)
	}

	rctx, err = readContext(strings.NewReader(loggedInContext), "-")
	if err != nil || rctx.Visitor == nil || rctx.Visitor.Nicename != "ana" {
		t.Errorf("stdin context = %+v, %v", rctx, err)
	}

	rctx, err = readContext(nil, contextPath)
	if err != nil || !rctx.LoggedIn() {
		t.Errorf("file context = %+v, %v", rctx, err)
	}

	if _, err := readContext(strings.NewReader("{"), "-"); err == nil {
		t.Error("malformed context should fail")
	}
	if _, err := readContext(nil, contextPath+".missing"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v", err)
	}
}
