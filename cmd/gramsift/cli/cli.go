// Package cli implements the gramsift subcommand tree.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"gramsift/internal/config"
	configfile "gramsift/internal/config/file"
	configmem "gramsift/internal/config/memory"
	"gramsift/internal/home"
	"gramsift/internal/logging"
	"gramsift/internal/translate"
)

// Env carries what main sets up for every subcommand.
type Env struct {
	Logger *slog.Logger
	// Levels receives the --log-level spec. It may be nil.
	Levels *logging.ComponentFilterHandler
}

// NewRootCommand returns the "gramsift" command with all subcommands wired in.
func NewRootCommand(env Env) *cobra.Command {
	logger := logging.Default(env.Logger)

	cmd := &cobra.Command{
		Use:           "gramsift",
		Short:         "Regex search over an n-gram index",
		Long:          "Translate regular expressions into n-gram index queries, build gram indexes over files, and search them with verification.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(outputFormat(cmd)); err != nil {
				return err
			}
			spec, _ := cmd.Flags().GetString("log-level")
			if env.Levels != nil && spec != "" {
				if err := env.Levels.Apply(spec); err != nil {
					return fmt.Errorf("--log-level: %w", err)
				}
			}
			return nil
		},
	}

	cmd.PersistentFlags().String("home", "", "home directory (default: platform config dir)")
	cmd.PersistentFlags().String("config-type", "json", "config store type: json or memory")
	cmd.PersistentFlags().String("log-level", "", `log levels, e.g. "debug" or "warn,search=debug"`)
	cmd.PersistentFlags().StringP("output", "o", formatTable, "output format: table or json")

	cmd.AddCommand(
		newTranslateCmd(logger),
		newExplainCmd(logger),
		newCorpusCmd(),
		newIndexCmd(logger),
		newSearchCmd(logger),
	)
	return cmd
}

func resolveHome(cmd *cobra.Command) (home.Dir, error) {
	flagValue, _ := cmd.Flags().GetString("home")
	if flagValue != "" {
		return home.New(flagValue), nil
	}
	return home.Default()
}

func openConfigStore(cmd *cobra.Command) (config.Store, error) {
	configType, _ := cmd.Flags().GetString("config-type")
	switch configType {
	case "memory":
		return configmem.NewStore(), nil
	case "json":
		hd, err := resolveHome(cmd)
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		return configfile.NewStore(hd.ConfigPath()), nil
	default:
		return nil, fmt.Errorf("unknown config store type: %q", configType)
	}
}

// loadConfig loads (bootstrapping if needed) and validates the config.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	store, err := openConfigStore(cmd)
	if err != nil {
		return nil, err
	}
	return config.LoadOrBootstrap(cmd.Context(), store)
}

// addTranslateFlags registers per-invocation overrides of the translator
// config. Unset flags keep the loaded values.
func addTranslateFlags(cmd *cobra.Command, withGramLength bool) {
	if withGramLength {
		cmd.Flags().Int("gram-length", 0, "runes per gram")
	}
	cmd.Flags().Int("max-exact", 0, "longest exact string tracked, in runes")
	cmd.Flags().Int("max-set", 0, "most strings in any affix set")
	cmd.Flags().Int("max-clauses", 0, "DNF clause budget of the canonical query")
	cmd.Flags().String("field", "", "field name prepended to each gram")
	cmd.Flags().BoolP("ignore-case", "i", false, "match without regard to case")
}

// newTranslator builds a translator from cfg with flag overrides applied.
// gramLen, when positive, wins over both.
func newTranslator(cmd *cobra.Command, cfg *config.Config, gramLen int, logger *slog.Logger) (*translate.Translator, error) {
	tc := cfg.Translate
	override := func(name string, dst *int) {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetInt(name)
		}
	}
	override("gram-length", &tc.GramLength)
	override("max-exact", &tc.MaxExactSize)
	override("max-set", &tc.MaxSetSize)
	override("max-clauses", &tc.MaxClauses)
	if gramLen > 0 {
		tc.GramLength = gramLen
		tc.MaxExactSize = max(tc.MaxExactSize, gramLen)
	}

	syn, err := cfg.Syntax.Syntax()
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("field") {
		syn.Field, _ = cmd.Flags().GetString("field")
	}
	return translate.New(tc, syn, logger)
}

func ignoreCase(cmd *cobra.Command) bool {
	ci, _ := cmd.Flags().GetBool("ignore-case")
	return ci
}
