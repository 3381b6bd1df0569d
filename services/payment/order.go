package payment

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/google/uuid"
)

const (
	orderPrefix = "VISA"
	suffixSpace = 36 * 36 * 36 * 36
)

// orderSeq starts at a random point so two processes rarely share suffixes,
// and increments so one process never repeats within a millisecond.
var orderSeq atomic.Uint32

func init() {
	orderSeq.Store(rand.Uint32N(suffixSpace))
}

// GenerateOrderID returns a new order id, optionally derived from seed (usually
// the application id). Callers keep it for the whole attempt and only generate
// another one when the applicant starts over.
func GenerateOrderID(seed string) string {
	var b strings.Builder
	for _, r := range seed {
		if b.Len() == 8 {
			break
		}
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	prefix := b.String()
	if prefix == "" {
		prefix = strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	}
	n := orderSeq.Add(1) % suffixSpace
	suffix := strings.ToUpper(strconv.FormatUint(uint64(n), 36))
	suffix = strings.Repeat("0", 4-len(suffix)) + suffix
	return fmt.Sprintf("%s-%s-%d-%s", orderPrefix, prefix, time.Now().UnixMilli(), suffix)
}
