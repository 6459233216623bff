package store

import "errors"

var (
	// ErrCorruptedHistoryDB For some reason, db on disk representation have changed
	ErrCorruptedHistoryDB = errors.New("submission history db is corrupted")

	// ErrDuplicateSubmission the same message for a denom and period was already recorded
	ErrDuplicateSubmission = errors.New("submission for given denom and period already exists")

	// ErrDenomNotFound no submission was ever recorded for the denom
	ErrDenomNotFound = errors.New("no submission recorded for denom")
)
