package session

import "fmt"

// ValidationError rejects an invalid command: bad or duplicate jersey
// number, unknown or out-of-range rating, missing manual-game fields.
// The message is shown to the user as-is.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// NotFoundError rejects an edit or delete of a record index that does not
// exist in the active game's player list.
type NotFoundError struct {
	Index int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("kein Spieler an Position %d", e.Index)
}
