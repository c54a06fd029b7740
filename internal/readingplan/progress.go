package readingplan

import (
	"math"
	"sort"
)

// ComputeProgress summarizes completed days as of plan day today.
// The streak ends at today, or at yesterday when today is not done yet.
func ComputeProgress(completed []int, today int) Progress {
	done := make(map[int]bool, len(completed))
	list := make([]int, 0, len(completed))
	for _, d := range completed {
		if d < 1 || d > TotalDays || done[d] {
			continue
		}
		done[d] = true
		list = append(list, d)
	}
	sort.Ints(list)

	streak := 0
	day := today
	if !done[day] {
		day--
	}
	for day >= 1 && done[day] {
		streak++
		day--
	}

	pct := float64(len(list)) / TotalDays * 100
	return Progress{
		CompletedDays:      len(list),
		TotalDays:          TotalDays,
		ProgressPercentage: math.Round(pct*10) / 10,
		CurrentStreak:      streak,
		CompletedList:      list,
	}
}
