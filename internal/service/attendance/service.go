package attendance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/kintai-hq/kintai-backend-go/internal/config"
	"github.com/kintai-hq/kintai-backend-go/internal/domain/approval"
	"github.com/kintai-hq/kintai-backend-go/internal/domain/attendance"
	"github.com/kintai-hq/kintai-backend-go/internal/domain/user"
	"github.com/kintai-hq/kintai-backend-go/internal/pkg/clock"
	"github.com/kintai-hq/kintai-backend-go/internal/pkg/validator"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	approval.ApprovalRepository
	clock clock.Clock
	rules config.AttendanceConfig
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	approvalRepo approval.ApprovalRepository,
	clk clock.Clock,
	rules config.AttendanceConfig,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		ApprovalRepository:   approvalRepo,
		clock:                clk,
		rules:                rules,
	}
}

// CheckIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, actor user.Actor) (attendance.AttendanceResponse, error) {
	today := a.clock.Today()

	existing, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, actor.EmployeeID, today)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to look up today's attendance: %w", err)
	}

	if existing != nil {
		if existing.Open() {
			// Repeated check-in on an open day is a benign no-op.
			return attendance.NewAttendanceResponse(*existing), nil
		}
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedOut
	}

	now := a.clock.Now()
	status := attendance.StatusNormal
	if now.Hour() >= a.rules.LateThresholdHour {
		status = attendance.StatusLate
	}

	data := attendance.Attendance{
		EmployeeID: actor.EmployeeID,
		Date:       today,
		CheckIn:    &now,
		Status:     status,
	}

	created, err := a.AttendanceRepository.Create(ctx, data)
	if err != nil {
		// Two concurrent check-ins can both pass the lookup above; the
		// UNIQUE (employee_id, date) constraint is the real guard.
		if errors.Is(err, attendance.ErrDuplicateDailyRecord) {
			return attendance.AttendanceResponse{}, attendance.ErrDuplicateDailyRecord
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return attendance.NewAttendanceResponse(created), nil
}

// StartLunch implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) StartLunch(ctx context.Context, actor user.Actor) (attendance.AttendanceResponse, error) {
	record, err := a.openRecordToday(ctx, actor)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if record.LunchStart != nil {
		return attendance.AttendanceResponse{}, attendance.ErrLunchAlreadyStarted
	}

	now := a.clock.Now()
	record.LunchStart = &now

	if err := a.AttendanceRepository.Update(ctx, *record); err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to update attendance record: %w", err)
	}

	return attendance.NewAttendanceResponse(*record), nil
}

// EndLunch implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) EndLunch(ctx context.Context, actor user.Actor) (attendance.AttendanceResponse, error) {
	record, err := a.openRecordToday(ctx, actor)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if record.LunchStart == nil {
		return attendance.AttendanceResponse{}, attendance.ErrLunchNotStarted
	}
	if record.LunchEnd != nil {
		return attendance.AttendanceResponse{}, attendance.ErrLunchAlreadyEnded
	}

	now := a.clock.Now()
	record.LunchEnd = &now

	if err := a.AttendanceRepository.Update(ctx, *record); err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to update attendance record: %w", err)
	}

	return attendance.NewAttendanceResponse(*record), nil
}

// CheckOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context, actor user.Actor) (attendance.AttendanceResponse, error) {
	record, err := a.openRecordToday(ctx, actor)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := a.clock.Now()
	if !now.After(*record.CheckIn) {
		return attendance.AttendanceResponse{}, validator.ValidationErrors{{
			Field:   "check_out",
			Message: "check-out must be after check-in",
		}}
	}

	record.CheckOut = &now
	working, total := attendance.ComputeHours(*record.CheckIn, now, record.LunchStart, record.LunchEnd)
	record.WorkingHours = &working
	record.TotalHours = &total

	// The early-leave determination overwrites the late status set at
	// check-in; only one of the two facts survives.
	if working < a.rules.FullWorkdayHours {
		record.Status = attendance.StatusEarlyLeave
	}

	if err := a.AttendanceRepository.Update(ctx, *record); err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to update attendance record: %w", err)
	}

	return attendance.NewAttendanceResponse(*record), nil
}

// openRecordToday fetches today's record and verifies it is still open.
func (a *AttendanceServiceImpl) openRecordToday(ctx context.Context, actor user.Actor) (*attendance.Attendance, error) {
	record, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, actor.EmployeeID, a.clock.Today())
	if err != nil {
		return nil, fmt.Errorf("failed to look up today's attendance: %w", err)
	}
	if record == nil || record.CheckIn == nil {
		return nil, attendance.ErrNotCheckedIn
	}
	if record.CheckOut != nil {
		return nil, attendance.ErrAlreadyCheckedOut
	}
	return record, nil
}

// GetMyAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, actor user.Actor, filter attendance.MyAttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if filter.Limit == 0 {
		filter.Limit = 20
	}
	if filter.Page == 0 {
		filter.Page = 1
	}

	records, total, err := a.AttendanceRepository.GetMyAttendance(ctx, actor.EmployeeID, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to get my attendance: %w", err)
	}

	return buildListResponse(records, total, filter.Page, filter.Limit), nil
}

// ListAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListAttendance(ctx context.Context, actor user.Actor, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if filter.Limit == 0 {
		filter.Limit = 20
	}
	if filter.Page == 0 {
		filter.Page = 1
	}

	records, total, err := a.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendances: %w", err)
	}

	return buildListResponse(records, total, filter.Page, filter.Limit), nil
}

func buildListResponse(records []attendance.Attendance, total int64, page, limit int) attendance.ListAttendanceResponse {
	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, att := range records {
		responses = append(responses, attendance.NewAttendanceResponse(att))
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        page,
		Limit:       limit,
		TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
		Attendances: responses,
	}
}

// GetMonthlySummary implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetMonthlySummary(ctx context.Context, actor user.Actor, year, month int) (attendance.MonthlySummaryResponse, error) {
	if !validator.IsValidMonth(month) {
		return attendance.MonthlySummaryResponse{}, validator.ValidationErrors{{
			Field:   "month",
			Message: "month must be between 1 and 12",
		}}
	}

	start, end := clock.MonthRange(year, time.Month(month), a.clock.Location())
	summary, err := a.AttendanceRepository.MonthlySummary(ctx, actor.EmployeeID, start, end)
	if err != nil {
		return attendance.MonthlySummaryResponse{}, fmt.Errorf("failed to aggregate month: %w", err)
	}

	return attendance.MonthlySummaryResponse{
		EmployeeID:        actor.EmployeeID,
		Year:              year,
		Month:             month,
		DaysPresent:       summary.DaysPresent,
		DaysLate:          summary.DaysLate,
		DaysEarlyLeave:    summary.DaysEarlyLeave,
		DaysAbsent:        summary.DaysAbsent,
		TotalWorkingHours: summary.TotalWorkingHours,
		TotalHours:        summary.TotalHours,
		ConfirmedDays:     summary.ConfirmedDays,
	}, nil
}

// GetAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetAttendance(ctx context.Context, actor user.Actor, id string) (attendance.AttendanceResponse, error) {
	record, err := a.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	if !actor.IsAdmin && record.EmployeeID != actor.EmployeeID {
		return attendance.AttendanceResponse{}, attendance.ErrNotRecordOwner
	}

	return attendance.NewAttendanceResponse(record), nil
}

// UpdateAttendance implements attendance.AttendanceService.
// Administrative backfill: punch times may be rewritten directly and the
// derived hours are recomputed, unless the record is frozen.
func (a *AttendanceServiceImpl) UpdateAttendance(ctx context.Context, actor user.Actor, req attendance.UpdateAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	record, err := a.AttendanceRepository.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	if !actor.IsAdmin && record.EmployeeID != actor.EmployeeID {
		return attendance.AttendanceResponse{}, attendance.ErrNotRecordOwner
	}

	if err := a.ensureUnlocked(ctx, record); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if err := a.applyUpdate(&record, req); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if err := validatePunchOrder(record); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if record.CheckIn != nil && record.CheckOut != nil {
		working, total := attendance.ComputeHours(*record.CheckIn, *record.CheckOut, record.LunchStart, record.LunchEnd)
		record.WorkingHours = &working
		record.TotalHours = &total
	} else {
		record.WorkingHours = nil
		record.TotalHours = nil
	}

	if err := a.AttendanceRepository.Update(ctx, record); err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to update attendance: %w", err)
	}

	updated, err := a.AttendanceRepository.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get updated attendance: %w", err)
	}

	return attendance.NewAttendanceResponse(updated), nil
}

// ensureUnlocked rejects writes to a confirmed record or to a record
// whose month is covered by a pending approval request.
func (a *AttendanceServiceImpl) ensureUnlocked(ctx context.Context, record attendance.Attendance) error {
	if record.IsConfirmed {
		return attendance.ErrAttendanceConfirmed
	}

	pending, err := a.ApprovalRepository.GetPendingByPeriod(ctx, record.EmployeeID, record.Date.Year(), int(record.Date.Month()))
	if err != nil {
		return fmt.Errorf("failed to look up pending approval request: %w", err)
	}
	if pending != nil {
		return attendance.ErrMonthPendingApproval
	}

	return nil
}

func (a *AttendanceServiceImpl) applyUpdate(record *attendance.Attendance, req attendance.UpdateAttendanceRequest) error {
	loc := a.clock.Location()

	if req.Date != nil && *req.Date != "" {
		parsed, _ := time.ParseInLocation("2006-01-02", *req.Date, loc)
		record.Date = parsed
	}

	if t := parseLocalTime(req.CheckIn, loc); t != nil {
		record.CheckIn = t
	}
	if t := parseLocalTime(req.LunchStart, loc); t != nil {
		record.LunchStart = t
	}
	if t := parseLocalTime(req.LunchEnd, loc); t != nil {
		record.LunchEnd = t
	}
	if t := parseLocalTime(req.CheckOut, loc); t != nil {
		record.CheckOut = t
	}

	if req.Status != nil && *req.Status != "" {
		record.Status = attendance.Status(*req.Status)
	}
	if req.Notes != nil {
		record.Notes = req.Notes
	}

	return nil
}

// parseLocalTime converts an already-validated RFC 3339 string into the
// organization's time zone. Nil and empty values mean "leave unchanged".
func parseLocalTime(value *string, loc *time.Location) *time.Time {
	if value == nil || *value == "" {
		return nil
	}
	t, ok := validator.IsValidDateTime(*value)
	if !ok {
		return nil
	}
	local := t.In(loc)
	return &local
}

// validatePunchOrder enforces the time ordering invariants after a
// manual edit.
func validatePunchOrder(record attendance.Attendance) error {
	var errs validator.ValidationErrors

	if record.CheckOut != nil {
		if record.CheckIn == nil {
			errs = append(errs, validator.ValidationError{
				Field:   "check_out",
				Message: "check-out requires a check-in",
			})
		} else if !record.CheckOut.After(*record.CheckIn) {
			errs = append(errs, validator.ValidationError{
				Field:   "check_out",
				Message: "check-out must be after check-in",
			})
		}
	}

	if (record.LunchStart == nil) != (record.LunchEnd == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "lunch_end",
			Message: "lunch start and end must both be set or both be empty",
		})
	} else if record.LunchStart != nil && !record.LunchEnd.After(*record.LunchStart) {
		errs = append(errs, validator.ValidationError{
			Field:   "lunch_end",
			Message: "lunch end must be after lunch start",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// DeleteAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) DeleteAttendance(ctx context.Context, actor user.Actor, id string) error {
	record, err := a.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.ErrAttendanceNotFound
		}
		return fmt.Errorf("failed to get attendance: %w", err)
	}

	if !actor.IsAdmin && record.EmployeeID != actor.EmployeeID {
		return attendance.ErrNotRecordOwner
	}

	if record.IsConfirmed {
		return attendance.ErrAttendanceConfirmed
	}

	if err := a.AttendanceRepository.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}

	return nil
}
