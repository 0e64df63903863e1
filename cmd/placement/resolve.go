package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/placement/pkg/cli"
	"mercator-hq/placement/pkg/layout"
	"mercator-hq/placement/pkg/render"
	"mercator-hq/placement/pkg/request"
	"mercator-hq/placement/pkg/server"
)

var resolveFlags struct {
	slot    string
	hook    string
	context string
	layout  string
	at      string
	explain bool
	format  string
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve and render a slot for a request context",
	Long: `Resolve a slot against the configured store and print the rendered fragments.

The request context is read as JSON from --context (use "-" for stdin). Without
a context the request is treated as an anonymous visitor on an unknown page.

Examples:
  # Render the header slot for a context
  placement resolve --slot header --context ctx.json

  # Render an action hook and show why each candidate was kept or excluded
  placement resolve --slot hook --hook before_footer --context ctx.json --explain

  # Render one individual layout by id
  placement resolve --layout 42 --context ctx.json --format json

  # Evaluate expirations at a fixed instant
  placement resolve --slot footer --at 2026-01-01T00:00:00Z`,
	RunE: resolveSlot,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVar(&resolveFlags.slot, "slot", "", "slot to resolve")
	resolveCmd.Flags().StringVar(&resolveFlags.hook, "hook", "", "hook name (required for the hook slot)")
	resolveCmd.Flags().StringVar(&resolveFlags.context, "context", "", "request context JSON file, - for stdin")
	resolveCmd.Flags().StringVar(&resolveFlags.layout, "layout", "", "render one individual layout by id")
	resolveCmd.Flags().StringVar(&resolveFlags.at, "at", "", "evaluation instant (RFC 3339), defaults to now")
	resolveCmd.Flags().BoolVar(&resolveFlags.explain, "explain", false, "print the decision for every candidate")
	resolveCmd.Flags().StringVarP(&resolveFlags.format, "format", "f", "text", "output format (text, json)")
}

func resolveSlot(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(resolveFlags.format)
	if err != nil {
		return err
	}
	if resolveFlags.slot == "" && resolveFlags.layout == "" {
		return fmt.Errorf("either --slot or --layout must be specified")
	}
	if resolveFlags.slot != "" && resolveFlags.layout != "" {
		return fmt.Errorf("--slot and --layout are mutually exclusive")
	}

	var now time.Time
	if resolveFlags.at != "" {
		if now, err = time.Parse(time.RFC3339, resolveFlags.at); err != nil {
			return fmt.Errorf("invalid --at: %w", err)
		}
	}

	rctx, err := readContext(cmd.InOrStdin(), resolveFlags.context)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}
	logger, err := commandLogger(cfg, verbose)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return cli.NewCommandError("resolve", err)
	}
	defer a.Close(ctx)

	formatter := cli.NewFormatter(format)
	out := cmd.OutOrStdout()

	if resolveFlags.layout != "" {
		f, applied, err := a.renderer.RenderIndividual(ctx, resolveFlags.layout, rctx, now)
		if err != nil {
			return cli.NewCommandError("resolve", err)
		}
		resp := server.IndividualResponse{LayoutID: resolveFlags.layout, Applied: applied}
		if applied {
			resp.Fragment = &f
		}
		return formatter.FormatTo(out, individualView(resp))
	}

	slot, ok := layout.ParseSlot(resolveFlags.slot)
	switch {
	case !ok:
		return fmt.Errorf("unknown slot %q", resolveFlags.slot)
	case slot == layout.SlotIndividual:
		return fmt.Errorf("individual layouts are rendered with --layout")
	case slot == layout.SlotHook && resolveFlags.hook == "":
		return fmt.Errorf("--hook is required for the hook slot")
	}

	req := render.Request{Slot: slot, Hook: resolveFlags.hook, Context: rctx, Now: now}
	resp := resolveView{Slot: slot, Hook: resolveFlags.hook}
	if resolveFlags.explain {
		fragments, trace, err := a.renderer.Explain(ctx, req)
		if err != nil {
			return cli.NewCommandError("resolve", err)
		}
		resp.Fragments, resp.Trace = fragments, server.TraceSteps(trace)
	} else if resp.Fragments, err = a.renderer.Render(ctx, req); err != nil {
		return cli.NewCommandError("resolve", err)
	}
	if resp.Fragments == nil {
		resp.Fragments = []render.Fragment{}
	}
	return formatter.FormatTo(out, resp)
}

// readContext decodes a request context from a file, or from stdin for
// "-". An empty path yields a nil context.
func readContext(stdin io.Reader, path string) (*request.Context, error) {
	var (
		data []byte
		err  error
	)
	switch path {
	case "":
		return nil, nil
	case "-":
		data, err = io.ReadAll(stdin)
	default:
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read context: %w", err)
	}
	rctx, err := request.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode context: %w", err)
	}
	return rctx, nil
}

// resolveView prints a resolution as text or JSON.
type resolveView server.ResolveResponse

func (v resolveView) String() string {
	var b strings.Builder
	name := string(v.Slot)
	if v.Hook != "" {
		name += "/" + v.Hook
	}
	if len(v.Fragments) == 0 {
		fmt.Fprintf(&b, "%s: no layouts\n", name)
	}
	for _, f := range v.Fragments {
		writeFragment(&b, f)
	}
	if len(v.Trace) > 0 {
		b.WriteString("\ncandidates:\n")
		for _, st := range v.Trace {
			if st.Selected {
				group := "-"
				if st.Group != nil {
					group = fmt.Sprint(*st.Group)
				}
				fmt.Fprintf(&b, "  %-20s selected  priority=%d group=%s\n", st.LayoutID, st.Priority, group)
				continue
			}
			fmt.Fprintf(&b, "  %-20s excluded  reason=%s\n", st.LayoutID, st.Reason)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// individualView prints an individual render as text or JSON.
type individualView server.IndividualResponse

func (v individualView) String() string {
	if !v.Applied || v.Fragment == nil {
		return fmt.Sprintf("%s: conditions not met", v.LayoutID)
	}
	var b strings.Builder
	writeFragment(&b, *v.Fragment)
	return strings.TrimRight(b.String(), "\n")
}

func writeFragment(b *strings.Builder, f render.Fragment) {
	fmt.Fprintf(b, "--- %s (slot=%s priority=%d origin=%s)\n", f.LayoutID, f.Slot, f.Priority, f.Origin)
	if f.Sidebar != nil {
		fmt.Fprintf(b, "sidebar: %s %s\n", f.Sidebar.Action, f.Sidebar.Position)
	}
	if f.Inside != nil {
		fmt.Fprintf(b, "inside: %s %d\n", f.Inside.Anchor, f.Inside.Count)
	}
	b.WriteString(f.Body)
	b.WriteString("\n")
}
