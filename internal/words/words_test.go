package words

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	logx "wordbot/pkg/logx"
)

func seeded(seed uint64) *rand.Rand { return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }

func assertDistinct(t *testing.T, ws []string) {
	t.Helper()
	seen := map[string]bool{}
	for _, w := range ws {
		if w == "" {
			t.Fatalf("empty word in %q", ws)
		}
		if seen[w] {
			t.Fatalf("duplicate %q in %q", w, ws)
		}
		seen[w] = true
	}
}

func TestEmbeddedBatchesAreDistinct(t *testing.T) {
	t.Parallel()
	src := NewEmbedded(seeded(1))
	if src.Len() < 100 {
		t.Fatalf("embedded list too small: %d", src.Len())
	}
	for i := 0; i < 500; i++ {
		b, err := Fetch(context.Background(), src)
		if err != nil {
			t.Fatalf("Fetch error: %v", err)
		}
		if len(b) != BatchSize {
			t.Fatalf("len = %d, want %d", len(b), BatchSize)
		}
		assertDistinct(t, b)
	}
}

func TestEmbeddedListHasNoCommentsOrDuplicates(t *testing.T) {
	t.Parallel()
	src := NewEmbedded(seeded(2))
	all, err := src.Words(context.Background(), src.Len())
	if err != nil {
		t.Fatalf("Words error: %v", err)
	}
	assertDistinct(t, all)
	for _, w := range all {
		if strings.HasPrefix(w, "#") {
			t.Fatalf("comment leaked into list: %q", w)
		}
	}
}

func TestPickExactPoolReturnsPermutation(t *testing.T) {
	t.Parallel()
	p := newPool([]string{"a", "b", "c", "d", "e"}, seeded(3))
	got, err := p.pick(context.Background(), 5)
	if err != nil {
		t.Fatalf("pick error: %v", err)
	}
	assertDistinct(t, got)
}

func TestPickNotEnoughWords(t *testing.T) {
	t.Parallel()
	p := newPool([]string{"a", "b", "c"}, seeded(4))
	_, err := p.pick(context.Background(), BatchSize)
	if !errors.Is(err, ErrNotEnoughWords) {
		t.Fatalf("expected ErrNotEnoughWords, got %v", err)
	}
	if _, err := p.pick(context.Background(), 0); err == nil {
		t.Fatal("expected error for n=0")
	}
}

func TestPickHonorsContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewEmbedded(nil).Words(ctx, BatchSize); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestParseList(t *testing.T) {
	t.Parallel()
	in := "\ufeffسلام\n# comment\n\n  کتاب  \nسلام\nدریا\r\n"
	got, err := parseList(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parseList error: %v", err)
	}
	want := []string{"سلام", "کتاب", "دریا"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("parseList = %q, want %q", got, want)
	}
}

func TestParseListRejectsOverlongEntry(t *testing.T) {
	t.Parallel()
	in := "سلام\n" + strings.Repeat("ب", MaxWordLen) + "\n" + strings.Repeat("ب", MaxWordLen+1) + "\n"
	_, err := parseList(strings.NewReader(in))
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Fatalf("expected line 3 error, got %v", err)
	}
}

func TestNewBatch(t *testing.T) {
	t.Parallel()
	b, err := NewBatch([]string{"a", " b ", "c", "d", "e"})
	if err != nil {
		t.Fatalf("NewBatch error: %v", err)
	}
	if b[1] != "b" {
		t.Fatalf("word not trimmed: %q", b[1])
	}

	bad := [][]string{
		{"a", "b", "c", "d"},
		{"a", "b", "c", "d", "e", "f"},
		{"a", "b", "c", "d", "a"},
		{"a", "b", "", "d", "e"},
		{"a", "b", "c", "d", strings.Repeat("e", MaxWordLen+1)},
	}
	for _, ws := range bad {
		if _, err := NewBatch(ws); err == nil {
			t.Fatalf("expected error for %q", ws)
		}
	}
}

func writeList(t *testing.T, path string, words ...string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(strings.Join(words, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestFileSource(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "words.txt")
	writeList(t, path, "one", "two", "three", "four", "five", "six")

	src, err := NewFile(path, seeded(5), logx.Nop())
	if err != nil {
		t.Fatalf("NewFile error: %v", err)
	}
	if src.Len() != 6 {
		t.Fatalf("Len = %d, want 6", src.Len())
	}
	b, err := Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	assertDistinct(t, b)

	// A reload that would leave too few words keeps the previous list.
	writeList(t, path, "only", "two")
	if err := src.Reload(); !errors.Is(err, ErrNotEnoughWords) {
		t.Fatalf("Reload = %v, want ErrNotEnoughWords", err)
	}
	if src.Len() != 6 {
		t.Fatalf("Len after rejected reload = %d, want 6", src.Len())
	}

	writeList(t, path, "a", "b", "c", "d", "e", "f", "g")
	if err := src.Reload(); err != nil {
		t.Fatalf("Reload error: %v", err)
	}
	if src.Len() != 7 {
		t.Fatalf("Len after reload = %d, want 7", src.Len())
	}
}

func TestNewFileErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if _, err := NewFile(filepath.Join(dir, "missing.txt"), nil, logx.Nop()); err == nil {
		t.Fatal("expected error for missing file")
	}
	small := filepath.Join(dir, "small.txt")
	writeList(t, small, "a", "b", "a", "b", "c")
	if _, err := NewFile(small, nil, logx.Nop()); !errors.Is(err, ErrNotEnoughWords) {
		t.Fatalf("expected ErrNotEnoughWords, got %v", err)
	}
}

func TestFileWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	writeList(t, path, "1", "2", "3", "4", "5")
	src, err := NewFile(path, nil, logx.Nop())
	if err != nil {
		t.Fatalf("NewFile error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- src.Watch(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	// Give the watcher a moment to register the directory.
	time.Sleep(100 * time.Millisecond)
	writeList(t, path, "1", "2", "3", "4", "5", "6", "7", "8")

	deadline := time.Now().Add(5 * time.Second)
	for src.Len() != 8 {
		if time.Now().After(deadline) {
			t.Fatalf("watcher did not reload; Len = %d", src.Len())
		}
		time.Sleep(20 * time.Millisecond)
	}
}
