package entities

import (
	"fmt"
	"time"
)

const (
	QuotePrefix = "Q"
	OrderPrefix = "PO"
)

// RandSource yields uniform integers in [0, n). *rand.Rand from math/rand/v2
// satisfies it.
type RandSource interface {
	IntN(n int) int
}

// GenerateNumber formats <prefix><YYYYMMDD>-<000..999>. Collisions are not
// checked; the store id is the real key.
func GenerateNumber(prefix string, now time.Time, rng RandSource) string {
	return fmt.Sprintf("%s%s-%03d", prefix, now.Format("20060102"), rng.IntN(1000))
}

func GenerateQuoteNumber(now time.Time, rng RandSource) string {
	return GenerateNumber(QuotePrefix, now, rng)
}

func GenerateOrderNumber(now time.Time, rng RandSource) string {
	return GenerateNumber(OrderPrefix, now, rng)
}
