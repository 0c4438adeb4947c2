package sqlite

import (
	"time"
)

// StorageTime is the form every timestamp takes before it is written or used
// as a query bound: UTC, millisecond precision. Text comparison of stored
// values then matches chronological order.
func StorageTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// StorageTimePtr applies StorageTime to an optional timestamp.
func StorageTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := StorageTime(*t)
	return &v
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func storageNow() time.Time {
	return StorageTime(time.Now())
}
