// internal/index/query.go
package index

// SuffixQuery combines every value pushed at or after t, right-first:
// the trailing block closest to the end of the part is the leftmost
// operand and the block starting at t is folded in last,
// i.e. result = rest ⊕ v for each block v encountered walking left to
// right, where rest is the suffix of everything past it. Because the
// combiner need not be commutative, this argument order is load
// bearing and must not be swapped for `v ⊕ rest`.
func SuffixQuery[V any](dp *DataPart[V], t uint64) (V, uint64, bool) {
	var zero V
	_, globalEnd := dp.lines[0].GetRange()
	if t >= globalEnd {
		return zero, t, false
	}

	v, x, ok := dp.GreedyQuery(t)
	if !ok {
		return zero, t, false
	}
	if x >= globalEnd {
		return v, x, true
	}

	rest, end, ok := SuffixQuery(dp, x)
	if !ok {
		return v, x, true
	}
	return dp.combine(rest, v), end, true
}

// RangeQuery combines every value pushed in [l, r), left-first: the
// running total absorbed so far is the left operand of each combine,
// i.e. sum = sum ⊕ half for each aligned block half encountered walking
// from l towards r. This is the opposite fold direction from
// SuffixQuery and the two must not be unified into one helper.
//
// The chain must reach r exactly: a gap anywhere along the walk (not
// just at l) means the range is only partially populated, and the
// whole call reports failure rather than the partial sum accumulated
// up to the gap.
func RangeQuery[V any](dp *DataPart[V], l, r uint64) (V, bool) {
	var zero V
	var sum V
	have := false
	cur := l
	for cur < r {
		half, x, ok := dp.ConstrainedQuery(cur, r)
		if !ok {
			return zero, false
		}
		if have {
			sum = dp.combine(sum, half)
		} else {
			sum = half
			have = true
		}
		if x <= cur {
			// A query that fails to advance would loop forever; this
			// should not happen for a well-formed DataPart, but refuse
			// to spin rather than hang.
			return zero, false
		}
		cur = x
	}
	return sum, have
}
