package corpus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.log"), "x")
	writeFile(t, filepath.Join(dir, "sub", "b.log"), "y")
	writeFile(t, filepath.Join(dir, "sub", "c.txt"), "z")

	got, err := Discover([]string{
		filepath.Join(dir, "**", "*.log"),
		filepath.Join(dir, "a.log"), // duplicate
	})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{filepath.Join(dir, "a.log"), filepath.Join(dir, "sub", "b.log")}
	if !slices.Equal(got, want) {
		t.Errorf("Discover = %q, want %q", got, want)
	}
}

func TestWatchDirsAndMatches(t *testing.T) {
	dirs := WatchDirs([]string{"/var/log/**/*.log", "/var/log/app.log", "/srv/data/*.txt"})
	if want := []string{"/var/log", "/srv/data"}; !slices.Equal(dirs, want) {
		t.Errorf("WatchDirs = %q, want %q", dirs, want)
	}

	patterns := []string{"/var/log/**/*.log"}
	if !Matches("/var/log/nginx/access.log", patterns) {
		t.Error("expected nested match")
	}
	if Matches("/var/log/nginx/access.txt", patterns) {
		t.Error("unexpected match")
	}
}

func TestLoadLines(t *testing.T) {
	dir := t.TempDir()
	b := filepath.Join(dir, "b.log")
	a := filepath.Join(dir, "a.log")
	writeFile(t, b, "third\r\n")
	writeFile(t, a, "first\nsecond\n")

	docs, err := Load(context.Background(), []string{b, a, a}, UnitLine)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var got []string
	for _, d := range docs {
		got = append(got, d.Location()+"="+d.Text)
	}
	want := []string{a + ":1=first", a + ":2=second", b + ":1=third"}
	if !slices.Equal(got, want) {
		t.Errorf("Load = %q, want %q", got, want)
	}
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "doc.txt")
	writeFile(t, p, "one\ntwo\n")

	docs, err := Load(context.Background(), []string{p}, UnitFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(docs) != 1 || docs[0].Text != "one\ntwo\n" || docs[0].Line != 0 {
		t.Errorf("Load = %+v", docs)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), []string{filepath.Join(t.TempDir(), "nope")}, UnitLine)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("got %v, want ErrNotExist", err)
	}
}

func TestDocumentIDDeterministic(t *testing.T) {
	a := NewDocument("/x.log", 3, "hello")
	b := NewDocument("/x.log", 3, "changed text")
	c := NewDocument("/x.log", 4, "hello")
	if a.ID != b.ID {
		t.Error("ID should depend only on source and line")
	}
	if a.ID == c.ID {
		t.Error("different lines share an ID")
	}
}

func TestParseUnit(t *testing.T) {
	if u, err := ParseUnit("file"); err != nil || u != UnitFile {
		t.Errorf("ParseUnit(file) = %v, %v", u, err)
	}
	if u, err := ParseUnit(""); err != nil || u != UnitLine {
		t.Errorf("ParseUnit(\"\") = %v, %v", u, err)
	}
	if _, err := ParseUnit("page"); !errors.Is(err, ErrUnknownUnit) {
		t.Errorf("ParseUnit(page) = %v", err)
	}
}
