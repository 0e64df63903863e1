// Placement is a conditional layout targeting and placement service.
//
// It stores reusable layouts, evaluates their display conditions against a
// request context, and renders the winning layouts for each site slot with
// magic tags substituted.
//
// Usage:
//
//	# Serve the render and admin API
//	placement run --config /etc/placement/config.yaml
//
//	# Resolve a slot for a request context from the command line
//	placement resolve --slot header --context ctx.json --explain
//
//	# Report problems in stored layouts
//	placement lint --dir ./layouts
//
//	# List targeting categories, end values and magic tags
//	placement vocabulary
package main

func main() {
	Execute()
}
