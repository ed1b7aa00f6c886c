package domain

import "time"

// Deletion is the soft-delete state of an entity: either active or deleted at
// a known instant. Keeping it a tagged value rather than a raw bool/timestamp
// pair means callers cannot observe a deleted-at without the deleted flag.
// The storage layer maps it to the (is_deleted, deleted_at) column pair.
type Deletion struct {
	deleted bool
	at      time.Time
}

// Active is the zero Deletion value.
func Active() Deletion {
	return Deletion{}
}

// DeletedAt constructs the deleted state.
func DeletedAt(at time.Time) Deletion {
	return Deletion{deleted: true, at: at.UTC()}
}

// IsDeleted reports whether the entity has been soft-deleted.
func (d Deletion) IsDeleted() bool {
	return d.deleted
}

// At returns the deletion instant; the second result is false for active
// entities.
func (d Deletion) At() (time.Time, bool) {
	if !d.deleted {
		return time.Time{}, false
	}
	return d.at, true
}

// Columns splits the state into the (is_deleted, deleted_at) representation
// used by the database.
func (d Deletion) Columns() (bool, *time.Time) {
	if !d.deleted {
		return false, nil
	}
	at := d.at
	return true, &at
}

// DeletionFromColumns rebuilds the state from its database representation.
// A true flag with a missing timestamp is tolerated and maps to the zero
// instant rather than silently un-deleting the row.
func DeletionFromColumns(isDeleted bool, deletedAt *time.Time) Deletion {
	if !isDeleted {
		return Active()
	}
	if deletedAt == nil {
		return Deletion{deleted: true}
	}
	return DeletedAt(*deletedAt)
}
