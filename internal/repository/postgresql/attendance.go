package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kintai-hq/kintai-backend-go/internal/domain/attendance"
	"github.com/kintai-hq/kintai-backend-go/internal/pkg/database"
)

const uniqueViolationCode = "23505"

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `id, employee_id, date, check_in, lunch_start, lunch_end, check_out,
			   working_hours, total_hours, status, is_confirmed, confirmed_by, confirmed_at,
			   notes, created_at, updated_at`

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	err := row.Scan(
		&att.ID, &att.EmployeeID, &att.Date, &att.CheckIn, &att.LunchStart, &att.LunchEnd, &att.CheckOut,
		&att.WorkingHours, &att.TotalHours, &att.Status, &att.IsConfirmed, &att.ConfirmedBy, &att.ConfirmedAt,
		&att.Notes, &att.CreatedAt, &att.UpdatedAt,
	)
	return att, err
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendances (
			employee_id, date, check_in, lunch_start, lunch_end, check_out,
			working_hours, total_hours, status, is_confirmed, notes
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newAttendance.EmployeeID,
		newAttendance.Date,
		newAttendance.CheckIn,
		newAttendance.LunchStart,
		newAttendance.LunchEnd,
		newAttendance.CheckOut,
		newAttendance.WorkingHours,
		newAttendance.TotalHours,
		newAttendance.Status,
		newAttendance.IsConfirmed,
		newAttendance.Notes,
	).Scan(&newAttendance.ID, &newAttendance.CreatedAt, &newAttendance.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return attendance.Attendance{}, attendance.ErrDuplicateDailyRecord
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return newAttendance, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM attendances
		WHERE id = $1
	`, attendanceColumns)

	att, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	return att, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM attendances
		WHERE employee_id = $1
		  AND date = $2
		LIMIT 1
	`, attendanceColumns)

	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance by date: %w", err)
	}

	return &att, nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, att attendance.Attendance) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances
		SET date = $2,
			check_in = $3,
			lunch_start = $4,
			lunch_end = $5,
			check_out = $6,
			working_hours = $7,
			total_hours = $8,
			status = $9,
			notes = $10,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		att.ID,
		att.Date,
		att.CheckIn,
		att.LunchStart,
		att.LunchEnd,
		att.CheckOut,
		att.WorkingHours,
		att.TotalHours,
		att.Status,
		att.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}

	return nil
}

// Delete implements attendance.AttendanceRepository.
func (a *attendanceRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendances WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}

	return nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)

	// Build WHERE clause
	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.EmployeeID != nil {
		whereClause += fmt.Sprintf(" AND a.employee_id = $%d", argIndex)
		args = append(args, *filter.EmployeeID)
		argIndex++
	}

	if filter.Status != nil {
		whereClause += fmt.Sprintf(" AND a.status = $%d", argIndex)
		args = append(args, *filter.Status)
		argIndex++
	}

	if filter.StartDate != nil {
		whereClause += fmt.Sprintf(" AND a.date >= $%d", argIndex)
		args = append(args, *filter.StartDate)
		argIndex++
	}

	if filter.EndDate != nil {
		whereClause += fmt.Sprintf(" AND a.date <= $%d", argIndex)
		args = append(args, *filter.EndDate)
		argIndex++
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM attendances a %s`, whereClause)

	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Limit == 0 {
		filter.Limit = 20
	}
	offset := (filter.Page - 1) * filter.Limit

	orderBy := "a.date DESC"
	if filter.SortBy == "date" && filter.SortOrder == "asc" {
		orderBy = "a.date ASC"
	}

	query := fmt.Sprintf(`
		SELECT a.id, a.employee_id, a.date, a.check_in, a.lunch_start, a.lunch_end, a.check_out,
			   a.working_hours, a.total_hours, a.status, a.is_confirmed, a.confirmed_by, a.confirmed_at,
			   a.notes, a.created_at, a.updated_at,
			   e.full_name as employee_name
		FROM attendances a
		JOIN employees e ON a.employee_id = e.id
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, whereClause, orderBy, argIndex, argIndex+1)

	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	var attendances []attendance.Attendance
	for rows.Next() {
		var att attendance.Attendance
		var employeeName string
		err := rows.Scan(
			&att.ID, &att.EmployeeID, &att.Date, &att.CheckIn, &att.LunchStart, &att.LunchEnd, &att.CheckOut,
			&att.WorkingHours, &att.TotalHours, &att.Status, &att.IsConfirmed, &att.ConfirmedBy, &att.ConfirmedAt,
			&att.Notes, &att.CreatedAt, &att.UpdatedAt,
			&employeeName,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		att.EmployeeName = &employeeName
		attendances = append(attendances, att)
	}

	return attendances, total, rows.Err()
}

// GetMyAttendance implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetMyAttendance(ctx context.Context, employeeID string, filter attendance.MyAttendanceFilter) ([]attendance.Attendance, int64, error) {
	full := attendance.AttendanceFilter{
		EmployeeID: &employeeID,
		StartDate:  filter.StartDate,
		EndDate:    filter.EndDate,
		Status:     filter.Status,
		Page:       filter.Page,
		Limit:      filter.Limit,
		SortBy:     filter.SortBy,
		SortOrder:  filter.SortOrder,
	}
	return a.List(ctx, full)
}

// MonthlySummary implements attendance.AttendanceRepository.
func (a *attendanceRepository) MonthlySummary(ctx context.Context, employeeID string, start, end time.Time) (attendance.MonthlySummary, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT
			COUNT(*) FILTER (WHERE status <> 'absent') AS days_present,
			COUNT(*) FILTER (WHERE status = 'late') AS days_late,
			COUNT(*) FILTER (WHERE status = 'early_leave') AS days_early_leave,
			COUNT(*) FILTER (WHERE status = 'absent') AS days_absent,
			COALESCE(SUM(working_hours), 0) AS total_working_hours,
			COALESCE(SUM(total_hours), 0) AS total_hours,
			COUNT(*) FILTER (WHERE is_confirmed) AS confirmed_days
		FROM attendances
		WHERE employee_id = $1
		  AND date >= $2
		  AND date < $3
	`

	var summary attendance.MonthlySummary
	err := q.QueryRow(ctx, query, employeeID, start, end).Scan(
		&summary.DaysPresent,
		&summary.DaysLate,
		&summary.DaysEarlyLeave,
		&summary.DaysAbsent,
		&summary.TotalWorkingHours,
		&summary.TotalHours,
		&summary.ConfirmedDays,
	)
	if err != nil {
		return attendance.MonthlySummary{}, fmt.Errorf("failed to aggregate attendances: %w", err)
	}

	return summary, nil
}

// HasConfirmedInRange implements attendance.AttendanceRepository.
func (a *attendanceRepository) HasConfirmedInRange(ctx context.Context, employeeID string, start, end time.Time) (bool, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM attendances
			WHERE employee_id = $1
			  AND date >= $2
			  AND date < $3
			  AND is_confirmed
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, start, end).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check confirmed records: %w", err)
	}

	return exists, nil
}

// ConfirmRange implements attendance.AttendanceRepository.
func (a *attendanceRepository) ConfirmRange(ctx context.Context, employeeID string, start, end time.Time, confirmedBy string, confirmedAt time.Time) (int64, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances
		SET is_confirmed = TRUE,
			confirmed_by = $4,
			confirmed_at = $5,
			updated_at = NOW()
		WHERE employee_id = $1
		  AND date >= $2
		  AND date < $3
	`

	tag, err := q.Exec(ctx, query, employeeID, start, end, confirmedBy, confirmedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to confirm attendances: %w", err)
	}

	return tag.RowsAffected(), nil
}

// UnconfirmRange implements attendance.AttendanceRepository.
func (a *attendanceRepository) UnconfirmRange(ctx context.Context, employeeID string, start, end time.Time) (int64, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances
		SET is_confirmed = FALSE,
			confirmed_by = NULL,
			confirmed_at = NULL,
			updated_at = NOW()
		WHERE employee_id = $1
		  AND date >= $2
		  AND date < $3
	`

	tag, err := q.Exec(ctx, query, employeeID, start, end)
	if err != nil {
		return 0, fmt.Errorf("failed to unconfirm attendances: %w", err)
	}

	return tag.RowsAffected(), nil
}

// BulkCreateAbsences implements attendance.AttendanceRepository.
func (a *attendanceRepository) BulkCreateAbsences(ctx context.Context, absences []attendance.Attendance) error {
	if len(absences) == 0 {
		return nil
	}

	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendances (employee_id, date, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (employee_id, date) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, att := range absences {
		batch.Queue(query, att.EmployeeID, att.Date, att.Status)
	}

	var br pgx.BatchResults
	switch conn := q.(type) {
	case pgx.Tx:
		br = conn.SendBatch(ctx, batch)
	default:
		br = a.db.Pool.SendBatch(ctx, batch)
	}
	defer br.Close()

	for range absences {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert absence: %w", err)
		}
	}

	return nil
}
