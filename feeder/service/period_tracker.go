package service

import (
	"fmt"

	"github.com/babylonlabs-io/oracle-feeder/types"
)

// PeriodTracker maps block heights to vote periods. The last block of each
// period is reserved for reveals, so prevotes are only sent before it.
type PeriodTracker struct {
	periodLength uint64

	lastHeight  uint64
	observed    bool
	regressions uint32
}

func NewPeriodTracker(periodLength uint64) (*PeriodTracker, error) {
	if periodLength < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPeriodLength, periodLength)
	}

	return &PeriodTracker{periodLength: periodLength}, nil
}

func (pt *PeriodTracker) PeriodLength() uint64 {
	return pt.periodLength
}

func (pt *PeriodTracker) VotePeriod(height uint64) uint64 {
	return height / pt.periodLength
}

func (pt *PeriodTracker) IsPrevoteWindow(height uint64) bool {
	return height%pt.periodLength <= pt.periodLength-2
}

// Observe records height as the latest chain height. Heights may repeat
// between iterations but never go backwards; a lower height is rejected and
// counted until Rebase accepts it.
func (pt *PeriodTracker) Observe(height uint64) (types.VotePeriodInfo, error) {
	if pt.observed && height < pt.lastHeight {
		pt.regressions++

		return types.VotePeriodInfo{}, fmt.Errorf("%w: from %d to %d (%d in a row)",
			ErrHeightRegressed, pt.lastHeight, height, pt.regressions)
	}

	return pt.accept(height), nil
}

// Regressions is the number of consecutive observations rejected by Observe.
func (pt *PeriodTracker) Regressions() uint32 {
	return pt.regressions
}

func (pt *PeriodTracker) LastHeight() uint64 {
	return pt.lastHeight
}

// Rebase makes height the new reference even if it is lower than the last
// observed one.
func (pt *PeriodTracker) Rebase(height uint64) types.VotePeriodInfo {
	return pt.accept(height)
}

func (pt *PeriodTracker) accept(height uint64) types.VotePeriodInfo {
	pt.lastHeight = height
	pt.observed = true
	pt.regressions = 0

	return types.VotePeriodInfo{
		Height:        height,
		Period:        pt.VotePeriod(height),
		PrevoteWindow: pt.IsPrevoteWindow(height),
	}
}
