package segment

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOverlapsHalfOpen(t *testing.T) {
	cases := []struct {
		name                   string
		aSrc, aDst, bSrc, bDst int
		want                   bool
	}{
		{"identical", 1, 3, 1, 3, true},
		{"contained", 1, 4, 2, 3, true},
		{"partial left", 1, 3, 2, 4, true},
		{"partial right", 2, 4, 1, 3, true},
		{"touching at boundary is not overlap", 1, 3, 3, 6, false},
		{"touching at boundary reversed", 3, 6, 1, 3, false},
		{"disjoint", 1, 2, 4, 6, false},
		{"single hop inside", 2, 3, 1, 4, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Overlaps(tc.aSrc, tc.aDst, tc.bSrc, tc.bDst))
			// overlap is symmetric
			require.Equal(t, tc.want, Overlaps(tc.bSrc, tc.bDst, tc.aSrc, tc.aDst))
		})
	}
}

// Stops A(1), B(2), C(3), D(4); seat 7 already booked for [B,D) = [2,4).
// Requesting [A,C) = [1,3) conflicts, and so does [C,D) = [3,4), which
// lies inside the booked span. The seat is free again from D onward.
func TestIndexSeatSevenScenario(t *testing.T) {
	ix := NewIndex([]Interval{{Seat: 7, SrcOrder: 2, DstOrder: 4}})

	require.False(t, ix.IsFree(7, 1, 3))
	require.False(t, ix.IsFree(7, 3, 4))
	require.True(t, ix.IsFree(7, 4, 6))
	require.True(t, ix.IsFree(8, 1, 4), "other seats unaffected")
}

func TestIndexBackToBackSegments(t *testing.T) {
	ix := NewIndex([]Interval{{Seat: 5, SrcOrder: 1, DstOrder: 3}})

	require.True(t, ix.IsFree(5, 3, 6))

	ix = NewIndex([]Interval{
		{Seat: 5, SrcOrder: 1, DstOrder: 3},
		{Seat: 5, SrcOrder: 3, DstOrder: 6},
	})
	require.False(t, ix.IsFree(5, 2, 4))
	require.False(t, ix.IsFree(5, 5, 6))
	require.True(t, ix.IsFree(5, 6, 8))
}

func TestBookedSeatsForSegment(t *testing.T) {
	ix := NewIndex([]Interval{
		{Seat: 3, SrcOrder: 1, DstOrder: 2},
		{Seat: 9, SrcOrder: 2, DstOrder: 5},
		{Seat: 1, SrcOrder: 4, DstOrder: 6},
		{Seat: 9, SrcOrder: 6, DstOrder: 8},
	})

	require.Equal(t, []int{1, 9}, ix.BookedSeats(3, 5))
	require.Equal(t, []int{3, 9}, ix.BookedSeats(1, 3))
	require.Empty(t, ix.BookedSeats(8, 9))

	// idempotent over an unchanged index
	require.Equal(t, ix.BookedSeats(3, 5), ix.BookedSeats(3, 5))
}

func TestIsFreeMatchesPredicate(t *testing.T) {
	intervals := []Interval{
		{Seat: 2, SrcOrder: 1, DstOrder: 4},
		{Seat: 2, SrcOrder: 5, DstOrder: 7},
	}
	ix := NewIndex(intervals)

	for a := 1; a < 8; a++ {
		for b := a + 1; b <= 8; b++ {
			want := true
			for _, iv := range intervals {
				if a < iv.DstOrder && iv.SrcOrder < b {
					want = false
				}
			}
			require.Equalf(t, want, ix.IsFree(2, a, b), "segment [%d,%d)", a, b)
		}
	}
}
