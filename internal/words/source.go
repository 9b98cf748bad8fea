// Package words supplies the vocabulary words for a daily post.
package words

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"sync"
	"unicode/utf8"
)

const (
	// BatchSize is the number of words in one daily post.
	BatchSize = 5
	// MaxWordLen caps one entry, in characters, so a post always fits one message.
	MaxWordLen = 64
)

var ErrNotEnoughWords = errors.New("not enough distinct words")

// Source produces n distinct words.
type Source interface {
	Words(ctx context.Context, n int) ([]string, error)
}

// pool is a deduplicated word list with a random picker.
type pool struct {
	mu    sync.Mutex
	rng   *rand.Rand
	words []string
}

func newPool(words []string, rng *rand.Rand) *pool {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &pool{rng: rng, words: words}
}

func (p *pool) set(words []string) {
	p.mu.Lock()
	p.words = words
	p.mu.Unlock()
}

func (p *pool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.words)
}

// pick returns n distinct words chosen uniformly (partial Fisher-Yates on an index permutation).
func (p *pool) pick(ctx context.Context, n int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, fmt.Errorf("word count must be > 0, got %d", n)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.words) < n {
		return nil, fmt.Errorf("%w: want %d, have %d", ErrNotEnoughWords, n, len(p.words))
	}
	idx := make([]int, len(p.words))
	for i := range idx {
		idx[i] = i
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		j := i + p.rng.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		out[i] = p.words[idx[i]]
	}
	return out, nil
}

// parseList reads one word per line. Blank lines and lines starting with '#'
// are skipped, surrounding whitespace is trimmed and duplicates are collapsed
// (first occurrence wins). An entry longer than MaxWordLen fails the whole list.
func parseList(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	seen := map[string]struct{}{}
	var out []string
	line := 0
	for sc.Scan() {
		line++
		w := strings.TrimSpace(strings.TrimPrefix(sc.Text(), "\ufeff"))
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		if n := utf8.RuneCountInString(w); n > MaxWordLen {
			return nil, fmt.Errorf("line %d: entry has %d characters, max %d", line, n, MaxWordLen)
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
