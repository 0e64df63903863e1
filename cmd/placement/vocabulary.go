package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/placement/pkg/cli"
	"mercator-hq/placement/pkg/server"
)

var vocabularyFlags struct {
	format string
	tags   bool
}

var vocabularyCmd = &cobra.Command{
	Use:     "vocabulary",
	Aliases: []string{"vocab"},
	Short:   "List targeting categories, slots and magic tags",
	Long: `List the rule categories and known end values, the available slots and
sidebar positions, and (with --tags) the magic tags each category offers.

The listing follows the configured capabilities, so enabling commerce or lms
adds their categories and tags.

Examples:
  placement vocabulary
  placement vocabulary --tags
  placement vocabulary --format json`,
	RunE: listVocabulary,
}

func init() {
	rootCmd.AddCommand(vocabularyCmd)

	vocabularyCmd.Flags().StringVarP(&vocabularyFlags.format, "format", "f", "text", "output format (text, json)")
	vocabularyCmd.Flags().BoolVar(&vocabularyFlags.tags, "tags", false, "include magic tags in text output")
}

func listVocabulary(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(vocabularyFlags.format)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}
	registry, err := buildRegistry(cfg.Engine)
	if err != nil {
		return err
	}

	v := server.DescribeVocabulary(registry, capabilities(cfg.Engine))
	if format == cli.FormatJSON {
		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), v)
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), vocabularyTable{v: v, tags: vocabularyFlags.tags})
}

// vocabularyTable lays the vocabulary out one row per category, slot,
// sidebar position and, optionally, tag group.
type vocabularyTable struct {
	v    server.Vocabulary
	tags bool
}

func (t vocabularyTable) Header() []string {
	return []string{"KIND", "KEY", "VALUES"}
}

func (t vocabularyTable) Rows() [][]string {
	var rows [][]string
	for _, c := range t.v.Categories {
		values := make([]string, 0, len(c.Options))
		for _, o := range c.Options {
			values = append(values, o.Value)
		}
		kind := "category"
		if c.Contributor != "" {
			kind = fmt.Sprintf("category (%s)", c.Contributor)
		}
		rows = append(rows, []string{kind, c.Key, join(values)})
	}
	for _, s := range t.v.Slots {
		rows = append(rows, []string{"slot", string(s), s.Mode().String()})
	}
	for _, p := range t.v.SidebarPositions {
		rows = append(rows, []string{"sidebar", p.Value, p.Label})
	}
	if t.tags {
		for _, g := range t.v.Tags {
			key := g.Root
			if g.End != "" {
				key += "=" + g.End
			}
			rows = append(rows, []string{"tags", key, join(g.Tags)})
		}
	}
	return rows
}

func join(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
