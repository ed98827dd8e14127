package util

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// NewID returns an opaque unique identifier.
func NewID() string {
	return uuid.NewString()
}

// Now returns the current UTC time. All persisted timestamps go through here
// so files stay timezone-independent.
func Now() time.Time {
	return time.Now().UTC()
}

// OrderNumber derives a human-readable order number from the creation
// instant. Two orders created within the same millisecond can collide; the
// window is accepted for a single-process deployment.
func OrderNumber(t time.Time) string {
	return fmt.Sprintf("ORD-%s-%d", t.Format("20060102"), t.UnixMilli()%1_000_000)
}

// Round2 rounds a currency amount to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
