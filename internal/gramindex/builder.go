package gramindex

import (
	"context"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"gramsift/internal/corpus"
	"gramsift/internal/gram"
)

// Builder accumulates documents into an index. It is not safe for
// concurrent use; see BuildParallel for a concurrent build.
type Builder struct {
	gramLen  int
	docs     []corpus.Document
	postings map[string][]uint64
}

// NewBuilder returns a builder for grams of gramLen runes.
func NewBuilder(gramLen int) *Builder {
	if gramLen < 1 {
		gramLen = gram.DefaultLength
	}
	return &Builder{gramLen: gramLen, postings: make(map[string][]uint64)}
}

// Add appends doc and returns its ordinal.
func (b *Builder) Add(doc corpus.Document) uint64 {
	ord := uint64(len(b.docs))
	b.docs = append(b.docs, doc)
	for g := range gram.Set(doc.Text, b.gramLen) {
		b.postings[g] = append(b.postings[g], ord)
	}
	return ord
}

// Build returns the index. The builder must not be used afterwards.
func (b *Builder) Build() *Index {
	ix := &Index{
		id:       uuid.Must(uuid.NewV7()),
		builtAt:  time.Now(),
		gramLen:  b.gramLen,
		docs:     b.docs,
		postings: b.postings,
	}
	b.docs, b.postings = nil, nil
	return ix
}

// BuildParallel indexes docs using one worker per CPU. Each worker indexes
// a contiguous range of ordinals, so concatenating shard postings in shard
// order keeps every posting list sorted.
func BuildParallel(ctx context.Context, docs []corpus.Document, gramLen int) (*Index, error) {
	if gramLen < 1 {
		gramLen = gram.DefaultLength
	}
	workers := max(1, min(runtime.GOMAXPROCS(0), len(docs)/1024))
	shardSize := (len(docs) + workers - 1) / max(workers, 1)
	shards := make([]map[string][]uint64, workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := range workers {
		lo := min(w*shardSize, len(docs))
		hi := min(lo+shardSize, len(docs))
		g.Go(func() error {
			local := make(map[string][]uint64)
			for ord := lo; ord < hi; ord++ {
				if ord%4096 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				for gr := range gram.Set(docs[ord].Text, gramLen) {
					local[gr] = append(local[gr], uint64(ord))
				}
			}
			shards[w] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	postings := make(map[string][]uint64)
	for _, shard := range shards {
		for gr, ords := range shard {
			postings[gr] = append(postings[gr], ords...)
		}
	}
	return &Index{
		id:       uuid.Must(uuid.NewV7()),
		builtAt:  time.Now(),
		gramLen:  gramLen,
		docs:     docs,
		postings: postings,
	}, nil
}
