package cli

import (
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"gramsift/internal/gramquery"
	"gramsift/internal/rxast"
	"gramsift/internal/translate"
)

func newTranslateCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate <pattern>...",
		Short: "Translate regular expressions to index queries",
		Long:  "Translate each pattern to the boolean gram query an inverted index can answer. Patterns that do not parse fall back to the match-all query.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			tr, err := newTranslator(cmd, cfg, 0, logger)
			if err != nil {
				return err
			}

			results := make([]*translate.Result, len(args))
			for i, pattern := range args {
				results[i] = tr.TranslateOrFallback(pattern, ignoreCase(cmd))
			}

			p := newPrinter(cmd)
			if p.isJSON() {
				return p.json(results)
			}
			rows := make([][]string, len(results))
			for i, r := range results {
				rows[i] = []string{strconv.Quote(r.Pattern), r.String, strconv.FormatBool(r.Fallback)}
			}
			p.table([]string{"PATTERN", "QUERY", "FALLBACK"}, rows)
			return nil
		},
	}
	addTranslateFlags(cmd, true)
	return cmd
}

// explanation is the JSON form of the explain command.
type explanation struct {
	Pattern  string           `json:"pattern"`
	Parsed   string           `json:"parsed"`
	Nodes    int              `json:"nodes"`
	Exact    []string         `json:"exact,omitempty"`
	Prefix   []string         `json:"prefix,omitempty"`
	Suffix   []string         `json:"suffix,omitempty"`
	Match    *gramquery.Query `json:"match"`
	Query    *gramquery.Query `json:"query"`
	String   string           `json:"string"`
	Size     int              `json:"size"`
	Depth    int              `json:"depth"`
	Grams    []string         `json:"grams"`
	Fallback bool             `json:"fallback"`
}

func newExplainCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain <pattern>",
		Short: "Show how a pattern is analyzed and translated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			tr, err := newTranslator(cmd, cfg, 0, logger)
			if err != nil {
				return err
			}

			pattern := args[0]
			node, err := rxast.Parse(pattern, ignoreCase(cmd))
			if err != nil {
				return err
			}
			info, err := tr.Analyze(pattern, ignoreCase(cmd))
			if err != nil {
				return err
			}
			res := tr.TranslateNode(node)

			e := explanation{
				Pattern:  pattern,
				Parsed:   node.String(),
				Nodes:    rxast.Count(node),
				Match:    info.Match(tr.Config().GramLength),
				Query:    res.Query,
				String:   res.String,
				Size:     gramquery.Size(res.Query),
				Depth:    gramquery.Depth(res.Query),
				Grams:    gramquery.Grams(res.Query),
				Fallback: res.Fallback,
			}
			if exact, ok := info.Exact(); ok {
				e.Exact = exact.Strings()
			} else {
				e.Prefix = info.Prefix().Strings()
				e.Suffix = info.Suffix().Strings()
			}

			p := newPrinter(cmd)
			if p.isJSON() {
				return p.json(e)
			}
			pairs := [][2]string{
				{"Pattern", strconv.Quote(e.Pattern)},
				{"Parsed", e.Parsed},
				{"Nodes", strconv.Itoa(e.Nodes)},
			}
			if exact, ok := info.Exact(); ok {
				pairs = append(pairs, [2]string{"Exact", exact.String()})
			} else {
				pairs = append(pairs,
					[2]string{"Prefix", info.Prefix().String()},
					[2]string{"Suffix", info.Suffix().String()})
			}
			pairs = append(pairs,
				[2]string{"Match", e.Match.String()},
				[2]string{"Query", e.Query.String()},
				[2]string{"Index query", e.String},
				[2]string{"Size", strconv.Itoa(e.Size)},
				[2]string{"Depth", strconv.Itoa(e.Depth)},
			)
			p.kv(pairs)
			return nil
		},
	}
	addTranslateFlags(cmd, true)
	return cmd
}
