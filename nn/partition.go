package nn

import "github.com/pkg/errors"

// Segment is a half-open index range [Start, End) into a dataset.
type Segment struct {
	Start, End int
}

func (s Segment) Len() int { return s.End - s.Start }

// SplitPartitions turns explicit boundary indexes into contiguous
// segments over a dataset of n samples. Boundaries must be strictly
// increasing and lie strictly inside (0, n).
func SplitPartitions(n int, boundaries []int) ([]Segment, error) {
	segs := make([]Segment, 0, len(boundaries)+1)
	start := 0
	for _, b := range boundaries {
		if b <= start || b >= n {
			return nil, errors.Errorf("partition boundary %d out of range (%d, %d)", b, start, n)
		}
		segs = append(segs, Segment{Start: start, End: b})
		start = b
	}
	return append(segs, Segment{Start: start, End: n}), nil
}

// ShardIndexes splits n samples as evenly as possible into parts
// contiguous segments; the first n%parts segments get the extra sample.
func ShardIndexes(n, parts int) []Segment {
	if parts > n {
		parts = n
	}
	segs := make([]Segment, parts)
	size := n / parts
	rem := n % parts
	start := 0
	for i := range segs {
		end := start + size
		if i < rem {
			end++
		}
		segs[i] = Segment{Start: start, End: end}
		start = end
	}
	return segs
}
