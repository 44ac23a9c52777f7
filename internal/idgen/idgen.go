// Package idgen produces the human readable complaint identifiers read back
// to callers, e.g. CIV-482913-027.
package idgen

import (
	"fmt"
	"math/rand/v2"
	"time"
)

const (
	PrefixComplaint = "CIV"
	PrefixTemporary = "TMP"
)

// Generator builds IDs from the last six digits of the millisecond clock and a
// three digit random suffix. Uniqueness is probabilistic; the complaint
// store's unique index is what rejects a collision.
type Generator struct {
	now  func() time.Time
	intn func(n int) int
}

func New() *Generator {
	return &Generator{now: time.Now, intn: rand.IntN}
}

// NewWith is used by tests to pin the clock and the random source.
func NewWith(now func() time.Time, intn func(n int) int) *Generator {
	return &Generator{now: now, intn: intn}
}

func (g *Generator) Generate(prefix string) string {
	suffix := g.now().UnixMilli() % 1_000_000
	return fmt.Sprintf("%s-%06d-%03d", prefix, suffix, g.intn(1000))
}

// Complaint returns a persistent complaint ID.
func (g *Generator) Complaint() string { return g.Generate(PrefixComplaint) }

// Temporary returns an ID handed to callers when the complaint could not be
// stored. It is never written anywhere.
func (g *Generator) Temporary() string { return g.Generate(PrefixTemporary) }
