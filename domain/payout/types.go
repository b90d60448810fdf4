package payout

import (
	"forecastbonus/domain/core"
)

// TaskPayout is the bonus earned on one task.
type TaskPayout struct {
	TaskIndex  int     `json:"taskIndex" db:"task_index"`
	BonusRound int     `json:"bonusRound" db:"bonus_round"`
	Scored     bool    `json:"scored" db:"scored"`
	Score      int     `json:"score" db:"score"`
	Bonus      float64 `json:"bonus" db:"bonus"`
}

// Payout is the computed bonus of one assignment. Fingerprint hashes the
// assignment record it was computed from, so a later recomputation can show it
// scored the same data.
type Payout struct {
	ID            core.PayoutID     `json:"id" db:"id"`
	AssignmentID  core.AssignmentID `json:"assignmentId" db:"assignment_id"`
	Tasks         []TaskPayout      `json:"tasks" db:"-"`
	TotalScore    int               `json:"totalScore" db:"total_score"`
	TotalEarnings float64           `json:"totalEarnings" db:"total_earnings"`
	Currency      string            `json:"currency" db:"currency"`
	Fingerprint   core.Hash         `json:"fingerprint" db:"fingerprint"`
	ComputedAt    core.Timestamp    `json:"computedAt" db:"-"`
}

// Summary describes a batch of payouts.
type Summary struct {
	Count    int     `json:"count"`
	Total    float64 `json:"total"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
}
