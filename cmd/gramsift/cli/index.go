package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"gramsift/internal/config"
	"gramsift/internal/corpus"
	"gramsift/internal/gramindex"
	"gramsift/internal/home"
	"gramsift/internal/watch"
)

func newIndexCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build and inspect gram indexes",
	}
	cmd.AddCommand(
		newIndexBuildCmd(logger),
		newIndexInfoCmd(logger),
		newIndexListCmd(),
	)
	return cmd
}

// buildSummary is the JSON form of one index build.
type buildSummary struct {
	Corpus     string        `json:"corpus"`
	Path       string        `json:"path"`
	Files      int           `json:"files"`
	Documents  int           `json:"documents"`
	Grams      int           `json:"grams"`
	GramLength int           `json:"gramLength"`
	Duration   time.Duration `json:"duration"`
}

// builder rebuilds the index of one corpus.
type builder struct {
	name     string
	corpus   config.CorpusConfig
	gramLen  int
	path     string
	instance uuid.UUID
	logger   *slog.Logger
}

func (b *builder) build(ctx context.Context) (buildSummary, error) {
	start := time.Now()
	unit, err := b.corpus.ParsedUnit()
	if err != nil {
		return buildSummary{}, err
	}
	paths, err := corpus.Discover(b.corpus.Patterns)
	if err != nil {
		return buildSummary{}, fmt.Errorf("discover files: %w", err)
	}
	docs, err := corpus.Load(ctx, paths, unit)
	if err != nil {
		return buildSummary{}, err
	}
	ix, err := gramindex.BuildParallel(ctx, docs, b.gramLen)
	if err != nil {
		return buildSummary{}, err
	}
	if err := gramindex.Write(b.path, ix, b.instance); err != nil {
		return buildSummary{}, fmt.Errorf("write index: %w", err)
	}

	s := buildSummary{
		Corpus:     b.name,
		Path:       b.path,
		Files:      len(paths),
		Documents:  ix.Len(),
		Grams:      ix.Grams(),
		GramLength: ix.GramLength(),
		Duration:   time.Since(start),
	}
	b.logger.Info("index built",
		"corpus", s.Corpus,
		"files", s.Files,
		"docs", s.Documents,
		"grams", s.Grams,
		"duration", s.Duration)
	return s, nil
}

func newIndexBuildCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <corpus>",
		Short: "Build the gram index of a corpus",
		Long:  "Read the corpus files, index their grams, and write the index under the home directory. With --watch, keep running and rebuild when files change.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hd, err := resolveHome(cmd)
			if err != nil {
				return err
			}
			if err := hd.EnsureExists(); err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			name := args[0]
			cc, ok := cfg.Corpora[name]
			if !ok {
				return fmt.Errorf("%w: %q", config.ErrCorpusNotFound, name)
			}
			instance, err := hd.InstanceID()
			if err != nil {
				return err
			}

			b := &builder{
				name:     name,
				corpus:   cc,
				gramLen:  cfg.Translate.GramLength,
				path:     hd.IndexPath(name),
				instance: instance,
				logger:   logger.With("component", "index"),
			}
			summary, err := b.build(cmd.Context())
			if err != nil {
				return err
			}
			if err := printBuild(cmd, summary); err != nil {
				return err
			}

			if w, _ := cmd.Flags().GetBool("watch"); !w {
				return nil
			}
			poll, err := cc.ParsedPollInterval()
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()
			return watch.New(watch.Config{
				Patterns:     cc.Patterns,
				PollInterval: poll,
				Rebuild: func(ctx context.Context) error {
					_, err := b.build(ctx)
					return err
				},
				Logger: logger,
			}).Run(ctx)
		},
	}
	cmd.Flags().Bool("watch", false, "rebuild when corpus files change")
	return cmd
}

func printBuild(cmd *cobra.Command, s buildSummary) error {
	p := newPrinter(cmd)
	if p.isJSON() {
		return p.json(s)
	}
	p.kv([][2]string{
		{"Corpus", s.Corpus},
		{"Path", s.Path},
		{"Files", strconv.Itoa(s.Files)},
		{"Documents", strconv.Itoa(s.Documents)},
		{"Grams", strconv.Itoa(s.Grams)},
		{"Gram length", strconv.Itoa(s.GramLength)},
		{"Duration", s.Duration.Round(time.Millisecond).String()},
	})
	return nil
}

// indexInfo is the JSON form of an index description.
type indexInfo struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	ID         string    `json:"id"`
	Instance   string    `json:"instance"`
	BuiltAt    time.Time `json:"builtAt"`
	GramLength int       `json:"gramLength"`
	Documents  int       `json:"documents"`
	Grams      int       `json:"grams"`
}

func describe(name, path string, ix *gramindex.Index) indexInfo {
	return indexInfo{
		Name:       name,
		Path:       path,
		ID:         ix.ID().String(),
		Instance:   ix.Instance().String(),
		BuiltAt:    ix.BuiltAt(),
		GramLength: ix.GramLength(),
		Documents:  ix.Len(),
		Grams:      ix.Grams(),
	}
}

// openIndex loads the index of the named corpus from the home directory.
func openIndex(cmd *cobra.Command, loader *gramindex.Loader, name string) (*gramindex.Index, string, error) {
	hd, err := resolveHome(cmd)
	if err != nil {
		return nil, "", err
	}
	path := hd.IndexPath(name)
	ix, err := loader.Load(cmd.Context(), path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", fmt.Errorf("no index for corpus %q; run \"gramsift index build %s\"", name, name)
	}
	return ix, path, err
}

func newIndexInfoCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "info <corpus>",
		Short: "Describe the index of a corpus",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, path, err := openIndex(cmd, gramindex.NewLoader(logger), args[0])
			if err != nil {
				return err
			}
			info := describe(args[0], path, ix)
			p := newPrinter(cmd)
			if p.isJSON() {
				return p.json(info)
			}
			p.kv([][2]string{
				{"Name", info.Name},
				{"Path", info.Path},
				{"ID", info.ID},
				{"Instance", info.Instance},
				{"Built", info.BuiltAt.Format(time.RFC3339)},
				{"Gram length", strconv.Itoa(info.GramLength)},
				{"Documents", strconv.Itoa(info.Documents)},
				{"Grams", strconv.Itoa(info.Grams)},
			})
			return nil
		},
	}
}

func newIndexListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			hd, err := resolveHome(cmd)
			if err != nil {
				return err
			}
			infos, err := listIndexes(hd)
			if err != nil {
				return err
			}
			p := newPrinter(cmd)
			if p.isJSON() {
				return p.json(infos)
			}
			rows := make([][]string, len(infos))
			for i, info := range infos {
				rows[i] = []string{
					info.Name,
					strconv.Itoa(info.Documents),
					strconv.Itoa(info.Grams),
					info.BuiltAt.Format(time.RFC3339),
				}
			}
			p.table([]string{"NAME", "DOCUMENTS", "GRAMS", "BUILT"}, rows)
			return nil
		},
	}
}

func listIndexes(hd home.Dir) ([]indexInfo, error) {
	entries, err := os.ReadDir(hd.IndexDir())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var infos []indexInfo
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), home.IndexExt)
		if !ok || e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		path := filepath.Join(hd.IndexDir(), e.Name())
		ix, err := gramindex.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		infos = append(infos, describe(name, path, ix))
	}
	return infos, nil
}
