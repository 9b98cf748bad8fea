package words

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Batch is the ordered set of words sent in one post.
type Batch []string

// NewBatch validates words as a post: exactly BatchSize non-empty, distinct entries.
func NewBatch(words []string) (Batch, error) {
	if len(words) != BatchSize {
		return nil, fmt.Errorf("batch needs %d words, got %d", BatchSize, len(words))
	}
	seen := make(map[string]struct{}, len(words))
	out := make(Batch, 0, len(words))
	for i, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			return nil, fmt.Errorf("batch word %d is empty", i+1)
		}
		if utf8.RuneCountInString(w) > MaxWordLen {
			return nil, fmt.Errorf("batch word %d is longer than %d characters", i+1, MaxWordLen)
		}
		if _, dup := seen[w]; dup {
			return nil, fmt.Errorf("batch word %q repeated", w)
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out, nil
}

// Fetch asks src for a full batch and validates it.
func Fetch(ctx context.Context, src Source) (Batch, error) {
	if src == nil {
		return nil, errors.New("no word source")
	}
	ws, err := src.Words(ctx, BatchSize)
	if err != nil {
		return nil, err
	}
	return NewBatch(ws)
}
