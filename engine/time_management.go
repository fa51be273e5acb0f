package engine

import (
	"time"

	mg "heron/heronmg"
)

// checkupMask throttles clock reads: the time manager is consulted once
// per 4096 nodes.
const checkupMask = 4095

// stabilityThreshold: once the best root move has survived this many
// consecutive iterations, the soft budget is allowed to end the search.
const stabilityThreshold = 4

// TimeHandler owns the per-search clock: a soft budget consulted between
// iterations and a hard budget consulted inside the tree. Only the main
// thread reads it.
type TimeHandler struct {
	start     time.Time
	soft      time.Duration
	hard      time.Duration
	limited   bool
	stability int
	lastBest  mg.Move
}

// Start derives the budgets from the go-command limits.
func (th *TimeHandler) Start(limits *Limits, us mg.Color, overheadMs int) {
	th.start = time.Now()
	th.stability = 0
	th.lastBest = mg.NoMove
	th.limited = false

	if limits.Infinite {
		return
	}
	if limits.MoveTime > 0 {
		budget := Max(limits.MoveTime-overheadMs, 1)
		th.soft = time.Duration(budget) * time.Millisecond
		th.hard = th.soft
		th.limited = true
		return
	}

	remaining := limits.WTime
	inc := limits.WInc
	if us == mg.Black {
		remaining = limits.BTime
		inc = limits.BInc
	}
	if remaining <= 0 {
		return
	}

	movesToGo := limits.MovesToGo
	if movesToGo <= 0 {
		movesToGo = 30
	}
	base := remaining/movesToGo + inc*3/4
	hard := Min(base*3, remaining/2)

	base = Max(base-overheadMs, 1)
	hard = Max(hard-overheadMs, 1)
	th.soft = time.Duration(base) * time.Millisecond
	th.hard = time.Duration(hard) * time.Millisecond
	th.limited = true
}

// Elapsed reports time since the search began.
func (th *TimeHandler) Elapsed() time.Duration { return time.Since(th.start) }

// HardExceeded is the in-tree stop condition.
func (th *TimeHandler) HardExceeded() bool {
	return th.limited && th.Elapsed() >= th.hard
}

// SoftExceeded is consulted at iteration boundaries: past the soft budget
// with a stable best move, or past the hard budget regardless.
func (th *TimeHandler) SoftExceeded() bool {
	if !th.limited {
		return false
	}
	elapsed := th.Elapsed()
	if th.stability >= stabilityThreshold {
		return elapsed >= th.soft
	}
	return elapsed >= th.hard
}

// UpdateStability tracks how long the best root move has held.
func (th *TimeHandler) UpdateStability(best mg.Move) {
	if best == th.lastBest {
		th.stability++
	} else {
		th.stability = 0
		th.lastBest = best
	}
}
