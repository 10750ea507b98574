package export

// EmptyDataError rejects an export with nothing to write: no active game,
// zero players, or an empty store for the all-games scope.
type EmptyDataError struct {
	Scope string // "current" or "all"
}

func (e *EmptyDataError) Error() string {
	if e.Scope == "all" {
		return "Keine gespeicherten Spiele vorhanden"
	}
	return "Keine Daten zum Export vorhanden"
}
