package transform

import (
	"fmt"

	"zipcaster/internal/domain"
)

// ModeMismatchError is returned when a battle's mode id is unknown or the
// payload lacks the block its mode requires.
type ModeMismatchError struct {
	ModeID int
	Reason string
}

func (e *ModeMismatchError) Error() string {
	return fmt.Sprintf("mode %d: %s", e.ModeID, e.Reason)
}

// MetadataReconstructionError reports a group whose win/lose totals do not
// agree with the judgements of its battles.
type MetadataReconstructionError struct {
	BattleID string
	Win      int
	Lose     int
	Reason   string
}

func (e *MetadataReconstructionError) Error() string {
	if e.BattleID == "" {
		return fmt.Sprintf("series reconstruction: %s (win=%d, lose=%d)", e.Reason, e.Win, e.Lose)
	}
	return fmt.Sprintf("series reconstruction at battle %s: %s (win=%d, lose=%d)", e.BattleID, e.Reason, e.Win, e.Lose)
}

// GroupError scopes a fatal error to one overview group.
type GroupError struct {
	Index int
	Kind  domain.MetadataKind
	Err   error
}

func (e *GroupError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("group %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("group %d (%s): %v", e.Index, e.Kind, e.Err)
}

func (e *GroupError) Unwrap() error { return e.Err }

// RecordError scopes an error to one detail payload. BattleID is empty when
// the id itself could not be decoded.
type RecordError struct {
	Index    int
	BattleID string
	Err      error
}

func (e *RecordError) Error() string {
	if e.BattleID == "" {
		return fmt.Sprintf("detail %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("detail %d (battle %s): %v", e.Index, e.BattleID, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }
