package sqlite

import (
	"clockedin/internal/repository/dbutil"
)

// ScanEntry scans a single cache entry from a database row
func ScanEntry(scanner dbutil.Scanner) (*Entry, error) {
	entry := &Entry{}
	var updatedAt string

	if err := scanner.Scan(&entry.Key, &entry.Value, &updatedAt); err != nil {
		return nil, err
	}

	t, err := dbutil.ParseTimeFromDB(updatedAt)
	if err != nil {
		return nil, err
	}
	entry.UpdatedAt = t
	return entry, nil
}

// ScanEntries scans multiple cache entries from database rows
func ScanEntries(rows dbutil.Rows) ([]*Entry, error) {
	return dbutil.ScanAll(rows, ScanEntry)
}
