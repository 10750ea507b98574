package dal

import "github.com/opencourt/scoutbook/internal/models"

// ScoutingDAL defines the interface for the persistence gateway. The whole
// store is one logical slot: Load reads it once at startup, Save replaces
// it wholesale after every mutation.
type ScoutingDAL interface {
	Load() (models.Store, error)
	Save(models.Store) error
	Clear() error
}
