package corpus

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
)

// maxLineSize bounds a single line document.
const maxLineSize = 1 << 20

// Load reads the files at paths concurrently and splits them into
// documents. The result is ordered by path, then line.
func Load(ctx context.Context, paths []string, unit Unit) ([]Document, error) {
	sorted := slices.Clone(paths)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	perFile := make([][]Document, len(sorted))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range sorted {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			docs, err := loadFile(path, unit)
			if err != nil {
				return err
			}
			perFile[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slices.Concat(perFile...), nil
}

func loadFile(path string, unit Unit) ([]Document, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	switch unit {
	case UnitFile:
		return []Document{NewDocument(path, 0, string(data))}, nil
	case UnitLine:
		return splitLines(path, data)
	default:
		return nil, fmt.Errorf("load %s: %w: %v", path, ErrUnknownUnit, unit)
	}
}

func splitLines(path string, data []byte) ([]Document, error) {
	var docs []Document
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64<<10), maxLineSize)
	line := 0
	for sc.Scan() {
		line++
		docs = append(docs, NewDocument(path, line, strings.TrimSuffix(sc.Text(), "\r")))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("load %s line %d: %w", path, line+1, err)
	}
	return docs, nil
}

// FromStrings returns line documents for in-memory text, one per element.
// The source is the given name.
func FromStrings(source string, texts ...string) []Document {
	docs := make([]Document, len(texts))
	for i, t := range texts {
		docs[i] = NewDocument(source, i+1, t)
	}
	return docs
}
