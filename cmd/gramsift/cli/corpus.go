package cli

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"gramsift/internal/config"
)

func newCorpusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Manage named corpora",
	}
	cmd.AddCommand(
		newCorpusListCmd(),
		newCorpusGetCmd(),
		newCorpusAddCmd(),
		newCorpusRemoveCmd(),
	)
	return cmd
}

func newCorpusListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all corpora",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openConfigStore(cmd)
			if err != nil {
				return err
			}
			corpora, err := store.ListCorpora(cmd.Context())
			if err != nil {
				return err
			}
			p := newPrinter(cmd)
			if p.isJSON() {
				return p.json(corpora)
			}
			var rows [][]string
			for _, name := range slices.Sorted(maps.Keys(corpora)) {
				c := corpora[name]
				rows = append(rows, []string{name, unitOrDefault(c.Unit), strings.Join(c.Patterns, " ")})
			}
			p.table([]string{"NAME", "UNIT", "PATTERNS"}, rows)
			return nil
		},
	}
}

func newCorpusGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Get corpus details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openConfigStore(cmd)
			if err != nil {
				return err
			}
			c, err := store.GetCorpus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if c == nil {
				return fmt.Errorf("%w: %q", config.ErrCorpusNotFound, args[0])
			}
			p := newPrinter(cmd)
			if p.isJSON() {
				return p.json(c)
			}
			poll := c.PollInterval
			if poll == "" {
				poll = "off"
			}
			p.kv([][2]string{
				{"Name", args[0]},
				{"Unit", unitOrDefault(c.Unit)},
				{"Patterns", strings.Join(c.Patterns, " ")},
				{"Poll", poll},
			})
			return nil
		},
	}
}

func newCorpusAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create or replace a corpus",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patterns, _ := cmd.Flags().GetStringSlice("pattern")
			unit, _ := cmd.Flags().GetString("unit")
			poll, _ := cmd.Flags().GetString("poll")

			name := args[0]
			if err := config.ValidateCorpusName(name); err != nil {
				return err
			}
			c := config.CorpusConfig{Patterns: patterns, Unit: unit, PollInterval: poll}
			if err := c.Validate(); err != nil {
				return err
			}
			store, err := openConfigStore(cmd)
			if err != nil {
				return err
			}
			if err := store.PutCorpus(cmd.Context(), name, c); err != nil {
				return err
			}
			newPrinter(cmd).linef("Saved corpus %q", name)
			return nil
		},
	}
	cmd.Flags().StringSlice("pattern", nil, "glob pattern of files to index (repeatable, required)")
	cmd.Flags().String("unit", "line", "document unit: line or file")
	cmd.Flags().String("poll", "", "re-index interval while watching, e.g. 30s")
	_ = cmd.MarkFlagRequired("pattern")
	return cmd
}

func newCorpusRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a corpus",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openConfigStore(cmd)
			if err != nil {
				return err
			}
			if err := store.DeleteCorpus(cmd.Context(), args[0]); err != nil {
				return err
			}
			newPrinter(cmd).linef("Removed corpus %q", args[0])
			return nil
		},
	}
}

func unitOrDefault(u string) string {
	if u == "" {
		return "line"
	}
	return u
}
