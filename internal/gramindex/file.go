package gramindex

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"gramsift/internal/corpus"
	"gramsift/internal/format"
	"gramsift/internal/index/inverted"
)

// File layout:
//
//	header (4 bytes, format.TypeGramIndex, FlagComplete|FlagCompressed)
//	zstd stream of a msgpack envelope
//
// The envelope carries the posting table in the inverted package's
// encoding, so posting lists are delta coded before compression.
const fileVersion = 0x01

var ErrCorrupt = errors.New("corrupt index file")

type envelope struct {
	ID         string            `msgpack:"id"`
	Instance   string            `msgpack:"instance"`
	BuiltAt    int64             `msgpack:"built_at"`
	GramLength int               `msgpack:"gram_length"`
	Docs       []corpus.Document `msgpack:"docs"`
	Postings   []byte            `msgpack:"postings"`
}

// zstdDec is a package-level decoder, concurrent-safe, always available for reads.
var zstdDec *zstd.Decoder

func init() {
	var err error
	zstdDec, err = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		panic("zstd: init decoder: " + err.Error())
	}
}

// Write stores ix at path, stamped with the instance ID of the writer. The
// file is written to a temp file in the same directory and renamed into
// place, so readers never observe a partial index.
func Write(path string, ix *Index, instance uuid.UUID) error {
	entries := make([]inverted.Entry, 0, len(ix.postings))
	for g, ords := range ix.postings {
		entries = append(entries, inverted.Entry{Gram: g, Postings: ords})
	}
	table, err := inverted.EncodePostings(entries)
	if err != nil {
		return fmt.Errorf("encode postings: %w", err)
	}
	payload, err := msgpack.Marshal(&envelope{
		ID:         ix.id.String(),
		Instance:   instance.String(),
		BuiltAt:    ix.builtAt.UnixNano(),
		GramLength: ix.gramLen,
		Docs:       ix.docs,
		Postings:   table,
	})
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer func() { _ = enc.Close() }()

	hdr := format.Header{
		Type:    format.TypeGramIndex,
		Version: fileVersion,
		Flags:   format.FlagComplete | format.FlagCompressed,
	}.Encode()
	buf := enc.EncodeAll(payload, hdr[:])

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".gidx-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(buf); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Chmod(0o640); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

// Open reads the index stored at path.
func Open(path string) (*Index, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return decode(data)
}

func decode(data []byte) (*Index, error) {
	h, err := format.DecodeAndValidate(data, format.TypeGramIndex, fileVersion)
	if err != nil {
		return nil, err
	}
	payload := data[format.HeaderSize:]
	if h.Has(format.FlagCompressed) {
		payload, err = zstdDec.DecodeAll(payload, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
	}

	var env envelope
	if err := msgpack.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	id, err := uuid.Parse(env.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: index id: %w", ErrCorrupt, err)
	}
	instance, err := uuid.Parse(env.Instance)
	if err != nil {
		return nil, fmt.Errorf("%w: instance id: %w", ErrCorrupt, err)
	}
	if env.GramLength < 1 {
		return nil, fmt.Errorf("%w: gram length %d", ErrCorrupt, env.GramLength)
	}

	entries, err := inverted.DecodePostings(env.Postings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	postings := make(map[string][]uint64, len(entries))
	for _, e := range entries {
		if n := len(e.Postings); n > 0 && e.Postings[n-1] >= uint64(len(env.Docs)) {
			return nil, fmt.Errorf("%w: gram %q references document %d of %d", ErrCorrupt, e.Gram, e.Postings[n-1], len(env.Docs))
		}
		postings[e.Gram] = e.Postings
	}

	return &Index{
		id:       id,
		instance: instance,
		builtAt:  time.Unix(0, env.BuiltAt),
		gramLen:  env.GramLength,
		docs:     env.Docs,
		postings: postings,
	}, nil
}
