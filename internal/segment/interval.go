// Package segment implements the half-open seat/segment overlap logic the
// booking flow depends on. A passenger occupies the stop-order interval
// [src_order, dst_order): the boarding stop is included, the alighting stop
// is not, so back-to-back segments on the same seat never conflict.
package segment

import "sort"

// Interval is one committed (seat, segment) tuple on a fixed bus and
// travel date.
type Interval struct {
	Seat     int
	SrcOrder int
	DstOrder int
}

// Overlaps reports whether [aSrc, aDst) and [bSrc, bDst) share at least
// one unit of travel.
func Overlaps(aSrc, aDst, bSrc, bDst int) bool {
	return aSrc < bDst && bSrc < aDst
}

// Index answers availability questions for one (bus, travel date). It is a
// derived view over booking rows, rebuilt per request, never stored.
type Index struct {
	intervals []Interval
}

func NewIndex(intervals []Interval) Index {
	return Index{intervals: intervals}
}

// IsFree reports whether the seat carries no committed interval
// overlapping [srcOrder, dstOrder).
func (ix Index) IsFree(seat, srcOrder, dstOrder int) bool {
	for _, iv := range ix.intervals {
		if iv.Seat != seat {
			continue
		}
		if Overlaps(srcOrder, dstOrder, iv.SrcOrder, iv.DstOrder) {
			return false
		}
	}
	return true
}

// BookedSeats returns the sorted, deduplicated seat numbers whose any
// interval overlaps [srcOrder, dstOrder).
func (ix Index) BookedSeats(srcOrder, dstOrder int) []int {
	seen := map[int]bool{}
	for _, iv := range ix.intervals {
		if seen[iv.Seat] {
			continue
		}
		if Overlaps(srcOrder, dstOrder, iv.SrcOrder, iv.DstOrder) {
			seen[iv.Seat] = true
		}
	}
	out := make([]int, 0, len(seen))
	for seat := range seen {
		out = append(out, seat)
	}
	sort.Ints(out)
	return out
}
