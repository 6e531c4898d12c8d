package clean

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"

	"casetrend/internal/dataset"
	"casetrend/internal/schema"
)

// dedupe removes exact duplicates (same Date, Region and all four metrics),
// keeping the first occurrence and the original order. Rows are bucketed by
// an xxh3 fingerprint and compared field by field inside a bucket, so a hash
// collision can never merge two different rows.
func dedupe(in []dataset.Row) ([]dataset.Row, int) {
	if len(in) < 2 {
		return in, 0
	}
	buckets := make(map[uint64][]int, len(in))
	out := make([]dataset.Row, 0, len(in))
	dropped := 0
	var buf []byte

	for _, r := range in {
		buf = fingerprint(buf[:0], r)
		h := xxh3.Hash(buf)

		dup := false
		for _, idx := range buckets[h] {
			if compareRows(out[idx], r) == 0 {
				dup = true
				break
			}
		}
		if dup {
			dropped++
			continue
		}
		buckets[h] = append(buckets[h], len(out))
		out = append(out, r)
	}
	return out, dropped
}

func fingerprint(buf []byte, r dataset.Row) []byte {
	buf = binary.LittleEndian.AppendUint64(buf, uint64(r.Date.Unix()))
	buf = append(buf, r.Region...)
	buf = append(buf, 0x1f)
	for _, m := range schema.Metrics {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(r.Value(m)))
	}
	return buf
}
