package clean

import (
	"math"
	"strconv"
	"strings"
)

// ParseCount coerces a free-text case count. Every character other than a
// digit, '-' or '.' is stripped ("1,234" -> 1234, "12 (est.)" -> 12), the rest
// is parsed as a float and truncated toward zero. Negative values are kept.
// ok is false when nothing parseable remained; the value is then 0.
func ParseCount(s string) (n int64, ok bool) {
	if s == "" {
		return 0, false
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= '0' && c <= '9') || c == '-' || c == '.' {
			b.WriteByte(c)
		}
	}
	digits := b.String()
	if digits == "" {
		return 0, false
	}
	if i, err := strconv.ParseInt(digits, 10, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(digits, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	f = math.Trunc(f)
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}
