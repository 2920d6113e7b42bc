// Package project defines contract work the team progresses over time.
// This package is PURE and must NOT import any infrastructure packages.
package project

// Active is the project currently in progress.
type Active struct {
	ID        string  `json:"id"`
	Progress  float64 `json:"progress"`
	Effort    float64 `json:"effort"`
	StartedAt int64   `json:"started_at"` // unix ms
}

// Advance adds work to the project and reports whether it is finished.
func (a *Active) Advance(amount float64) bool {
	if amount > 0 {
		a.Progress += amount
	}
	if a.Progress >= a.Effort {
		a.Progress = a.Effort
		return true
	}
	return false
}

// Remaining returns the effort left.
func (a Active) Remaining() float64 {
	if a.Progress >= a.Effort {
		return 0
	}
	return a.Effort - a.Progress
}

// Fraction returns completion in [0, 1].
func (a Active) Fraction() float64 {
	if a.Effort <= 0 {
		return 1
	}
	f := a.Progress / a.Effort
	if f > 1 {
		return 1
	}
	return f
}
