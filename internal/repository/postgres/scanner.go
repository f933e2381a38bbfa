package postgres

import "clockedin/internal/repository/dbutil"

const (
	subjectColumns = "id, user_id, name, weekly_goal, is_archived, created_at"
	logColumns     = "id, user_id, subject_id, duration_minutes, created_at"
)

// ScanSubject scans a single subject row
func ScanSubject(scanner dbutil.Scanner) (*SubjectRow, error) {
	row := &SubjectRow{}
	err := scanner.Scan(&row.ID, &row.UserID, &row.Name, &row.WeeklyGoal, &row.IsArchived, &row.CreatedAt)
	if err != nil {
		return nil, err
	}
	return row, nil
}

// ScanSubjects scans multiple subject rows
func ScanSubjects(rows dbutil.Rows) ([]*SubjectRow, error) {
	return dbutil.ScanAll(rows, ScanSubject)
}

// ScanLog scans a single log row
func ScanLog(scanner dbutil.Scanner) (*LogRow, error) {
	row := &LogRow{}
	err := scanner.Scan(&row.ID, &row.UserID, &row.SubjectID, &row.DurationMinutes, &row.CreatedAt)
	if err != nil {
		return nil, err
	}
	return row, nil
}

// ScanLogs scans multiple log rows
func ScanLogs(rows dbutil.Rows) ([]*LogRow, error) {
	return dbutil.ScanAll(rows, ScanLog)
}
