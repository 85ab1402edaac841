package utils

import "math"

// RankList returns the 1-based ranks for count already sorted results.
// Ranks past math.MaxUint16 saturate.
func RankList(count int) []uint16 {
	ranks := make([]uint16, max(count, 0))
	for i := range ranks {
		ranks[i] = uint16(min(i+1, math.MaxUint16))
	}
	return ranks
}
