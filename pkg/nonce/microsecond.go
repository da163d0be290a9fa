package nonce

import (
	"strconv"
	"sync/atomic"
	"time"
)

// MicrosecondNonce generates strictly increasing nonce values from an atomic
// counter seeded with a microsecond timestamp shifted left by 16 bits. The
// shift leaves 65536 increments per microsecond before a value could collide
// with one seeded at a later start time, so restarting the process always
// resumes above any nonce issued before.
type MicrosecondNonce struct {
	current uint64
}

func NewMicrosecondNonce(now time.Time) *MicrosecondNonce {
	return &MicrosecondNonce{
		current: uint64(now.UnixMicro()) << 16,
	}
}

// GetUint64 returns the next nonce. Every call increments the counter, so
// concurrent callers never observe the same value.
func (ng *MicrosecondNonce) GetUint64() uint64 {
	return atomic.AddUint64(&ng.current, 1)
}

// GetString returns the next nonce in its decimal string form.
func (ng *MicrosecondNonce) GetString() string {
	return strconv.FormatUint(ng.GetUint64(), 10)
}
