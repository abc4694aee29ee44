// Package corpus loads the text documents that a gram index is built over.
//
// A document is either a whole file or one line of a file. Document IDs are
// derived from the source path and line number, so rebuilding an index over
// unchanged files yields the same IDs.
package corpus

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// idNamespace scopes document IDs generated by gramsift.
var idNamespace = uuid.MustParse("6f1d3c2a-8b4e-5a7f-9c0d-2e3f4a5b6c7d")

var ErrUnknownUnit = errors.New("unknown document unit")

// Unit is how files are split into documents.
type Unit int

const (
	UnitLine Unit = iota // one document per line
	UnitFile             // one document per file
)

func (u Unit) String() string {
	switch u {
	case UnitLine:
		return "line"
	case UnitFile:
		return "file"
	default:
		return "unit(" + strconv.Itoa(int(u)) + ")"
	}
}

// ParseUnit parses "line" or "file".
func ParseUnit(s string) (Unit, error) {
	switch s {
	case "line", "":
		return UnitLine, nil
	case "file":
		return UnitFile, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, s)
	}
}

// Document is one searchable unit of text.
type Document struct {
	ID     uuid.UUID `msgpack:"id" json:"id"`
	Source string    `msgpack:"source" json:"source"`
	Line   int       `msgpack:"line" json:"line"` // 1-based; 0 for whole-file documents
	Text   string    `msgpack:"text" json:"text"`
}

// NewDocument returns a document with its deterministic ID.
func NewDocument(source string, line int, text string) Document {
	return Document{
		ID:     DocumentID(source, line),
		Source: source,
		Line:   line,
		Text:   text,
	}
}

// DocumentID returns the ID of the document at source:line.
func DocumentID(source string, line int) uuid.UUID {
	return uuid.NewSHA1(idNamespace, []byte(source+"\x00"+strconv.Itoa(line)))
}

// Location renders source:line, or just source for whole files.
func (d Document) Location() string {
	if d.Line == 0 {
		return d.Source
	}
	return d.Source + ":" + strconv.Itoa(d.Line)
}
