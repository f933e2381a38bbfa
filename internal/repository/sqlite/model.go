package sqlite

import "time"

// Entry is one row of the key-value cache
type Entry struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
