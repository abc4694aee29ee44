package cli

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"gramsift/internal/gramindex"
	"gramsift/internal/search"
	"gramsift/internal/verify"
)

// searchOutput is the JSON form of a search.
type searchOutput struct {
	Request search.Request `json:"request"`
	Query   string         `json:"query"`
	Hits    []verify.Hit   `json:"hits"`
	Stats   *search.Stats  `json:"stats"`
}

func newSearchCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <corpus> <pattern>",
		Short: "Search a corpus index with a regular expression",
		Long:  "Translate the pattern, fetch candidate documents from the corpus index, and verify each candidate with the pattern. With --plan, only report the translation and candidate count.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ix, _, err := openIndex(cmd, gramindex.NewLoader(logger), args[0])
			if err != nil {
				return err
			}
			// The translator must cut grams the way the index did.
			tr, err := newTranslator(cmd, cfg, ix.GramLength(), logger)
			if err != nil {
				return err
			}
			engine, err := search.NewEngine(ix, tr, logger)
			if err != nil {
				return err
			}

			limit, _ := cmd.Flags().GetInt("limit")
			req := search.Request{Pattern: args[1], CaseInsensitive: ignoreCase(cmd), Limit: limit}
			p := newPrinter(cmd)

			if planOnly, _ := cmd.Flags().GetBool("plan"); planOnly {
				plan, err := engine.Plan(req)
				if err != nil {
					return err
				}
				if p.isJSON() {
					return p.json(plan)
				}
				pairs := [][2]string{
					{"Pattern", strconv.Quote(req.Pattern)},
					{"Query", plan.Translation.String},
					{"Candidates", fmt.Sprintf("%d of %d", plan.Candidates, plan.Documents)},
					{"Selectivity", fmt.Sprintf("%.1f%%", 100*plan.Selectivity())},
				}
				if plan.Reason != "" {
					pairs = append(pairs, [2]string{"Fallback", plan.Reason})
				}
				p.kv(pairs)
				return nil
			}

			seq, stats := engine.Search(cmd.Context(), req)
			hits, err := search.Collect(seq, 0)
			if err != nil {
				return err
			}

			if p.isJSON() {
				return p.json(searchOutput{
					Request: req,
					Query:   tr.TranslateOrFallback(req.Pattern, req.CaseInsensitive).String,
					Hits:    hits,
					Stats:   stats,
				})
			}
			rows := make([][]string, len(hits))
			for i, h := range hits {
				rows[i] = []string{h.Doc.Location(), strconv.Quote(h.Match())}
			}
			p.table([]string{"LOCATION", "MATCH"}, rows)
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%d hits, %d candidates of %d documents\n",
				stats.Verified, stats.Candidates, stats.Documents)
			return nil
		},
	}
	addTranslateFlags(cmd, false)
	cmd.Flags().Int("limit", 0, "stop after this many hits (0 = no limit)")
	cmd.Flags().Bool("plan", false, "only show the translation and candidate count")
	return cmd
}
