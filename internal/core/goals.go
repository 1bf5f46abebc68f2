package core

import "math"

type GoalStatus string

const (
	GoalOnTrack        GoalStatus = "On Track"
	GoalNeedsAttention GoalStatus = "Needs Attention"
)

// GoalProgress measures how far a savings goal has come. One entry is
// produced per goal, in goal order, with no deduplication by name.
type GoalProgress struct {
	Name    string
	Target  Money
	Percent float64 // 0-100, rounded to two decimal places
	Status  GoalStatus
}

// EvaluateGoals computes progress for each goal against a reference
// amount, the current balance. Progress is clamped to [0, 100]; a zero
// target counts as already met. Goals at 50% or more are on track.
func EvaluateGoals(reference Money, goals []Goal) []GoalProgress {
	progress := make([]GoalProgress, 0, len(goals))
	for _, g := range goals {
		percent := 100.0
		if g.Target.Cents > 0 {
			percent = float64(reference.Cents) / float64(g.Target.Cents) * 100
			if percent < 0 {
				percent = 0
			}
			if percent > 100 {
				percent = 100
			}
			percent = math.Round(percent*100) / 100
		}

		status := GoalNeedsAttention
		if percent >= 50 {
			status = GoalOnTrack
		}

		progress = append(progress, GoalProgress{
			Name:    g.Name,
			Target:  g.Target,
			Percent: percent,
			Status:  status,
		})
	}
	return progress
}
