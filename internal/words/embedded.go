package words

import (
	"context"
	_ "embed"
	"math/rand/v2"
	"strings"
)

//go:embed fa.txt
var faList string

// Embedded serves the built-in Persian vocabulary list.
type Embedded struct {
	p *pool
}

// NewEmbedded returns the built-in source. A nil rng seeds a random generator.
func NewEmbedded(rng *rand.Rand) *Embedded {
	words, err := parseList(strings.NewReader(faList))
	if err != nil {
		// strings.Reader never fails and no line exceeds the scanner buffer.
		panic(err)
	}
	return &Embedded{p: newPool(words, rng)}
}

func (e *Embedded) Words(ctx context.Context, n int) ([]string, error) { return e.p.pick(ctx, n) }

// Len returns the number of distinct words available.
func (e *Embedded) Len() int { return e.p.size() }
