package ledger

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math/big"
	"sync"
	"time"
)

// Uint128 is a 128-bit ledger identifier or counter, split into high and
// low 64-bit halves.
type Uint128 struct {
	Hi uint64
	Lo uint64
}

// U128 builds a Uint128 from a small constant.
func U128(v uint64) Uint128 {
	return Uint128{Lo: v}
}

// IsZero reports whether the value is the all-zero identifier.
func (u Uint128) IsZero() bool {
	return u.Hi == 0 && u.Lo == 0
}

// BigInt returns the value as an arbitrary-precision integer.
func (u Uint128) BigInt() *big.Int {
	v := new(big.Int).SetUint64(u.Hi)
	v.Lsh(v, 64)
	return v.Or(v, new(big.Int).SetUint64(u.Lo))
}

// String renders the value in decimal, matching how identifiers are stored
// in NUMERIC columns.
func (u Uint128) String() string {
	return u.BigInt().String()
}

// ParseUint128 parses a decimal string produced by String.
func ParseUint128(s string) (Uint128, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 || v.BitLen() > 128 {
		return Uint128{}, fmt.Errorf("invalid 128-bit identifier %q", s)
	}
	lo := new(big.Int).And(v, new(big.Int).SetUint64(^uint64(0)))
	hi := new(big.Int).Rsh(v, 64)
	return Uint128{Hi: hi.Uint64(), Lo: lo.Uint64()}, nil
}

var idState struct {
	mu   sync.Mutex
	last Uint128
}

// NextID returns a unique, time-ordered 128-bit identifier: 48 bits of
// millisecond timestamp followed by 80 random bits. Identifiers are
// strictly increasing within the process and safe for concurrent callers.
func NextID() Uint128 {
	var buf [10]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(fmt.Sprintf("ledger: read random: %v", err))
	}

	millis := uint64(time.Now().UnixMilli()) & 0xFFFF_FFFF_FFFF
	id := Uint128{
		Hi: millis<<16 | uint64(binary.BigEndian.Uint16(buf[0:2])),
		Lo: binary.BigEndian.Uint64(buf[2:10]),
	}

	idState.mu.Lock()
	defer idState.mu.Unlock()

	// Clock went backwards or several calls landed in the same millisecond:
	// bump the previous identifier instead of risking a regression.
	if id.Hi < idState.last.Hi || (id.Hi == idState.last.Hi && id.Lo <= idState.last.Lo) {
		id = idState.last
		id.Lo++
		if id.Lo == 0 {
			id.Hi++
		}
	}
	idState.last = id
	return id
}
