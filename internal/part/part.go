// Package part splits the atom population into contiguous, order-preserving
// chunks, one per worker rank.
package part

// Range is a half-open index interval [Lo, Hi) of globally indexed atoms.
type Range struct {
	Lo, Hi int
}

func (r Range) Len() int { return r.Hi - r.Lo }

func (r Range) Empty() bool { return r.Hi <= r.Lo }

// Split partitions [0, n) into p contiguous ranges whose sizes differ by at
// most one, larger chunks first. p may exceed n; the surplus ranges are
// empty and contribute nothing downstream.
func Split(n, p int) []Range {
	if p <= 0 {
		return nil
	}
	ranges := make([]Range, p)
	base := n / p
	rem := n % p
	lo := 0
	for i := 0; i < p; i++ {
		size := base
		if i < rem {
			size++
		}
		ranges[i] = Range{Lo: lo, Hi: lo + size}
		lo += size
	}
	return ranges
}
