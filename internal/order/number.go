package order

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"
)

const numberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NumberGenerator builds human readable order numbers: ORD-YYYYMMDD-XXXX.
// Numbers are not checked against the store; a collision surfaces as a
// Conflict from the unique index when the order is inserted.
type NumberGenerator struct {
	Now  func() time.Time
	Rand io.Reader
	Loc  *time.Location
}

func NewNumberGenerator(loc *time.Location) *NumberGenerator {
	if loc == nil {
		loc = time.UTC
	}
	return &NumberGenerator{Now: time.Now, Rand: rand.Reader, Loc: loc}
}

func (g *NumberGenerator) Next() (string, error) {
	max := big.NewInt(int64(len(numberAlphabet)))
	suffix := make([]byte, 4)
	for i := range suffix {
		n, err := rand.Int(g.Rand, max)
		if err != nil {
			return "", fmt.Errorf("order number: %w", err)
		}
		suffix[i] = numberAlphabet[n.Int64()]
	}
	return fmt.Sprintf("ORD-%s-%s", g.Now().In(g.Loc).Format("20060102"), suffix), nil
}
