package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kintai-hq/kintai-backend-go/internal/domain/attendance"
	"github.com/kintai-hq/kintai-backend-go/internal/domain/employee"
	"github.com/kintai-hq/kintai-backend-go/internal/domain/notification"
	"github.com/kintai-hq/kintai-backend-go/internal/pkg/clock"
)

// AttendanceJobs marks employees absent for work days they never
// checked in on.
type AttendanceJobs struct {
	attendanceRepo  attendance.AttendanceRepository
	employeeRepo    employee.EmployeeRepository
	notificationSvc notification.Service
	clock           clock.Clock
}

func NewAttendanceJobs(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	notificationSvc notification.Service,
	clk clock.Clock,
) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceRepo:  attendanceRepo,
		employeeRepo:    employeeRepo,
		notificationSvc: notificationSvc,
		clock:           clk,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("mark_absent_employees", 1*time.Hour, j.MarkAbsentEmployees)
}

// MarkAbsentEmployees backfills absent records for the previous local
// work day. The hourly tick only acts during the first hour after local
// midnight so each day is processed once.
func (j *AttendanceJobs) MarkAbsentEmployees(ctx context.Context) error {
	if j.clock.Now().Hour() != 0 {
		return nil
	}

	previousDay := j.clock.Today().AddDate(0, 0, -1)

	// Weekends are not work days.
	if wd := previousDay.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return nil
	}

	slog.Info("Cron: Starting mark-absent job", "date", previousDay.Format("2006-01-02"))

	employees, err := j.employeeRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active employees: %w", err)
	}

	var absences []attendance.Attendance
	for _, emp := range employees {
		record, err := j.attendanceRepo.GetByEmployeeAndDate(ctx, emp.ID, previousDay)
		if err != nil {
			return fmt.Errorf("failed to look up attendance for %s: %w", emp.ID, err)
		}
		if record != nil {
			continue
		}

		absences = append(absences, attendance.Attendance{
			EmployeeID: emp.ID,
			Date:       previousDay,
			Status:     attendance.StatusAbsent,
		})
	}

	if len(absences) == 0 {
		slog.Info("Cron: No absences to mark")
		return nil
	}

	if err := j.attendanceRepo.BulkCreateAbsences(ctx, absences); err != nil {
		return fmt.Errorf("failed to create absence records: %w", err)
	}

	for _, absence := range absences {
		_ = j.notificationSvc.QueueNotification(ctx, notification.CreateNotificationRequest{
			RecipientID: absence.EmployeeID,
			Type:        notification.TypeMarkedAbsent,
			Title:       "Marked absent",
			Message:     fmt.Sprintf("You were marked absent for %s.", absence.Date.Format("2006-01-02")),
		})
	}

	slog.Info("Cron: Marked employees absent", "count", len(absences))

	return nil
}
