package service

import (
	"sort"
	"time"

	"coursegen/model"
)

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AggregateDailyPerformance recomputes per-day improvement flags and streaks
// from raw samples. Samples sharing a calendar day collapse into the one with
// the highest score. A day counts when its score beats the previous day's
// (the first day is compared against zero). The streak is the run of
// consecutive calendar days that count; a gap or a non-counting day ends it.
// The result depends only on the input.
func AggregateDailyPerformance(samples []model.DailyPerformance) ([]model.DailyPerformance, model.StreakState) {
	byDay := make(map[time.Time]model.DailyPerformance, len(samples))
	for _, s := range samples {
		s.Date = Day(s.Date)
		if cur, ok := byDay[s.Date]; !ok || s.TotalScore > cur.TotalScore {
			byDay[s.Date] = s
		}
	}
	days := make([]model.DailyPerformance, 0, len(byDay))
	for _, s := range byDay {
		days = append(days, s)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })

	prevScore := 0.0
	for i := range days {
		days[i].Count = 0
		if days[i].TotalScore-prevScore > 0 {
			days[i].Count = 1
		}
		prevScore = days[i].TotalScore
	}

	var state model.StreakState
	current := 0
	for i, d := range days {
		if i > 0 && daysBetween(days[i-1].Date, d.Date) == 1 && d.Count == 1 {
			current++
			continue
		}
		if current > state.MaxStrick {
			state.MaxStrick = current
		}
		current = d.Count
	}
	if current > state.MaxStrick {
		state.MaxStrick = current
	}
	state.Strick = current
	return days, state
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

func sortSamples(samples []model.DailyPerformance) {
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].Date.Before(samples[j].Date) })
}
