package migrations

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// reservationFileName marks an in-progress apply/reset inside a migrations
// directory, the generalized disk counterpart of the teacher's
// internal/shadow.Reservation (which tracked an in-progress shadow DB prep
// session as a JSON file next to the working directory). This module
// reuses go-toml/v2 instead of encoding/json so every file this package
// writes (migration_lock.toml and this one) parses the same way.
const reservationFileName = ".migration_reservation.toml"

// LockReservation records that ApplyMigration or Reset started against
// this migrations directory and hasn't finished yet. A reservation still
// present on disk at the start of a later invocation means the previous
// one crashed or was killed mid-apply: DiagnoseMigrationHistory surfaces
// it as Stale so a caller doesn't assume a clean state from the
// in-database advisory lock alone (that lock is released automatically
// when its holding connection dies, but a file on disk isn't).
type LockReservation struct {
	Operation string    `toml:"operation"` // "apply_migration" or "reset"
	Migration string    `toml:"migration,omitempty"`
	StartedAt time.Time `toml:"started_at"`
}

func reservationPath(dir string) string {
	return filepath.Join(dir, reservationFileName)
}

// SaveReservation writes r to dir, overwriting any existing reservation.
func SaveReservation(dir string, r LockReservation) error {
	data, err := toml.Marshal(r)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return writeAtomic(reservationPath(dir), data)
}

// LoadReservation returns the current reservation for dir, or nil if none
// is present.
func LoadReservation(dir string) (*LockReservation, error) {
	data, err := os.ReadFile(reservationPath(dir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var r LockReservation
	if err := toml.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ClearReservation removes dir's reservation file, if any.
func ClearReservation(dir string) error {
	if err := os.Remove(reservationPath(dir)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
