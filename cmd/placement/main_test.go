package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
)

const testLayouts = `
- id: hero
  slot: header
  priority: 5
  conditions:
    - - root: user_status
        end: logged_in
        comparator: "==="
  body: "<p>Hi {user_nicename}</p>"
- id: plain-header
  slot: header
  priority: 1
  conditions:
    - - root: user_status
        end: logged_out
        comparator: "==="
  body: "<p>Welcome</p>"
- id: before-footer
  slot: hook
  hook_name: before_footer
  body: "<hr>"
- id: promo
  slot: individual
  body: "<b>promo</b>"
`

const loggedInContext = `{"page":"front_page","visitor":{"id":"7","nicename":"ana","roles":["subscriber"]}}`

// setupWorkspace writes a layout directory, a context file and a config
// pointing the file store at the layouts.
func setupWorkspace(t *testing.T, layouts string) (configPath, contextPath, layoutDir string) {
	t.Helper()
	dir := t.TempDir()
	layoutDir = filepath.Join(dir, "layouts")
	writeTestFile(t, filepath.Join(layoutDir, "layouts.yaml"), layouts)

	contextPath = filepath.Join(dir, "ctx.json")
	writeTestFile(t, contextPath, loggedInContext)

	configPath = filepath.Join(dir, "config.yaml")
	writeTestFile(t, configPath, `
store:
  backend: file
  file:
    path: `+layoutDir+`
telemetry:
  logging:
    level: error
`)
	return configPath, contextPath, layoutDir
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// resetFlags clears flag variables left over from a previous execution of
// the shared root command.
func resetFlags() {
	cfgFile, verbose = "", false
	resolveFlags = struct {
		slot    string
		hook    string
		context string
		layout  string
		at      string
		explain bool
		format  string
	}{}
	lintFlags = struct {
		dir    string
		strict bool
		format string
	}{}
	vocabularyFlags = struct {
		format string
		tags   bool
	}{}
	runFlags = struct {
		listenAddress string
		logLevel      string
		dryRun        bool
	}{}
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(bytes.NewReader(nil))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}
