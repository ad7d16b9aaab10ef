package domain

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces intent identifiers.
type IDGenerator interface {
	NewID() string
}

// IDGeneratorFunc adapts a plain function to IDGenerator.
type IDGeneratorFunc func() string

// NewID implements IDGenerator.
func (f IDGeneratorFunc) NewID() string {
	return f()
}

// DefaultIDGenerator is used by stacks without an injected generator.
var DefaultIDGenerator IDGenerator = TimeRandomGenerator{}

// TimeRandomGenerator combines the current second with 32 random bits and encodes
// the result in base 62. Ids are compact and not sequential.
type TimeRandomGenerator struct {
	// Now overrides the clock. Nil means time.Now.
	Now func() time.Time
}

// NewID implements IDGenerator.
func (g TimeRandomGenerator) NewID() string {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	v := uint64(now().Unix())<<32 | uint64(rand.Uint32())
	return EncodeBase62(v)
}

// UUIDGenerator issues time-ordered UUIDv7 ids without dashes.
// Its 74 random bits make collisions negligible across processes.
type UUIDGenerator struct{}

// NewID implements IDGenerator.
func (UUIDGenerator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return strings.ReplaceAll(id.String(), "-", "")
}

const base62Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// EncodeBase62 encodes v using digits, upper and lower case letters.
func EncodeBase62(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [11]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = base62Alphabet[v%62]
		v /= 62
	}
	return string(buf[i:])
}
