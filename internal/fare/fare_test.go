package fare

import (
	"testing"

	"sevaportal/internal/domain"

	"github.com/stretchr/testify/require"
)

var orders = StopOrders{10: 1, 20: 2, 30: 3, 40: 4, 50: 5}

func TestAmountInvalidSegments(t *testing.T) {
	cases := []struct {
		name     string
		src, dst int64
	}{
		{"same stop", 20, 20},
		{"reversed", 40, 20},
		{"src not on variant", 99, 30},
		{"dst not on variant", 10, 99},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Amount(orders, tc.src, tc.dst, DefaultTariff)
			require.Error(t, err)
			require.True(t, domain.IsInvalidSegment(err))
		})
	}
}

func TestAmountMonotonicInSpan(t *testing.T) {
	prev := int64(-1)
	for _, dst := range []int64{20, 30, 40, 50} {
		amt, err := Amount(orders, 10, dst, DefaultTariff)
		require.NoError(t, err)
		require.Greater(t, amt, prev, "fare must grow with segment length")
		prev = amt
	}
}

func TestAmountSubSegmentNeverCostsMore(t *testing.T) {
	full, err := Amount(orders, 10, 50, DefaultTariff)
	require.NoError(t, err)

	for _, seg := range [][2]int64{{10, 20}, {20, 40}, {30, 50}, {10, 40}} {
		sub, err := Amount(orders, seg[0], seg[1], DefaultTariff)
		require.NoError(t, err)
		require.LessOrEqual(t, sub, full)
	}
}

func TestAmountUsesTariff(t *testing.T) {
	amt, err := Amount(orders, 10, 30, Tariff{Base: 100, PerHop: 7})
	require.NoError(t, err)
	require.Equal(t, int64(107), amt)
}
