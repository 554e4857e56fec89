package schedule

import (
	"fmt"
	"sort"
)

// Ladder is an ascending, de-duplicated list of allowed intervals in days.
// A nil or empty Ladder means the geometric policy is used.
type Ladder []int

// NewLadder sorts and de-duplicates values. Every value must be positive.
func NewLadder(values []int) (Ladder, error) {
	if len(values) == 0 {
		return nil, nil
	}
	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)

	ladder := make(Ladder, 0, len(sorted))
	for _, v := range sorted {
		if v <= 0 {
			return nil, fmt.Errorf("interval ladder values must be positive, got %d", v)
		}
		if len(ladder) > 0 && ladder[len(ladder)-1] == v {
			continue
		}
		ladder = append(ladder, v)
	}
	return ladder, nil
}

// First returns the smallest rung, or 1 when the ladder is empty.
func (l Ladder) First() int {
	if len(l) == 0 {
		return 1
	}
	return l[0]
}

// NextLarger returns the smallest ladder value strictly greater than current.
// It saturates at the largest value. Returns 0 for an empty ladder.
func NextLarger(current int, ladder []int) int {
	if len(ladder) == 0 {
		return 0
	}
	for _, v := range ladder {
		if v > current {
			return v
		}
	}
	return ladder[len(ladder)-1]
}

// NextSmaller scans the ladder in ascending order and returns the last value
// not exceeding current. It saturates at the smallest value when every value
// exceeds current. Returns 0 for an empty ladder.
func NextSmaller(current int, ladder []int) int {
	if len(ladder) == 0 {
		return 0
	}
	found := 0
	for _, v := range ladder {
		if v > current {
			break
		}
		found = v
	}
	if found == 0 {
		return ladder[0]
	}
	return found
}
