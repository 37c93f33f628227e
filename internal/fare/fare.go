// Package fare computes segment fares from a variant's stop ordering.
// The tariff is distance-based over stop orders: longer segments always
// cost at least as much as any sub-segment.
package fare

import "sevaportal/internal/domain"

// StopOrders maps stop id to its dense 1-based order within one route
// variant.
type StopOrders map[int64]int

// Tariff holds the pricing constants in whole rupees.
type Tariff struct {
	Base   int64
	PerHop int64
}

// DefaultTariff matches the deployed pricing when no override is
// configured.
var DefaultTariff = Tariff{Base: 20, PerHop: 10}

// Amount prices the segment from src to dst within the variant described
// by orders. It fails with InvalidSegmentError when either stop is absent
// from the variant or src does not precede dst.
func Amount(orders StopOrders, srcID, dstID int64, t Tariff) (int64, error) {
	srcOrder, ok := orders[srcID]
	if !ok {
		return 0, domain.InvalidSegmentError{Msg: "source stop is not part of this route variant"}
	}
	dstOrder, ok := orders[dstID]
	if !ok {
		return 0, domain.InvalidSegmentError{Msg: "destination stop is not part of this route variant"}
	}
	if srcOrder >= dstOrder {
		return 0, domain.InvalidSegmentError{}
	}

	span := int64(dstOrder - srcOrder)
	return t.Base + t.PerHop*(span-1), nil
}
