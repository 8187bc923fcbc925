package attendance

import (
	"time"

	"github.com/kintai-hq/kintai-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type UpdateAttendanceRequest struct {
	ID         string  `json:"-"`
	Date       *string `json:"date"`
	CheckIn    *string `json:"check_in"`
	LunchStart *string `json:"lunch_start"`
	LunchEnd   *string `json:"lunch_end"`
	CheckOut   *string `json:"check_out"`
	Status     *string `json:"status"`
	Notes      *string `json:"notes"`
}

func (r *UpdateAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "attendance id is required",
		})
	}

	if r.Date != nil && *r.Date != "" {
		if _, ok := validator.IsValidDate(*r.Date); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}

	for field, value := range map[string]*string{
		"check_in":    r.CheckIn,
		"lunch_start": r.LunchStart,
		"lunch_end":   r.LunchEnd,
		"check_out":   r.CheckOut,
	} {
		if value == nil || *value == "" {
			continue
		}
		if _, ok := validator.IsValidDateTime(*value); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: field + " must be an ISO8601 timestamp",
			})
		}
	}

	if r.Status != nil && *r.Status != "" && !validator.IsInSlice(*r.Status, AllStatuses()) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of normal, late, early_leave, absent",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type MyAttendanceFilter struct {
	StartDate *string
	EndDate   *string
	Status    *string
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

type AttendanceFilter struct {
	EmployeeID *string
	StartDate  *string
	EndDate    *string
	Status     *string
	Page       int
	Limit      int
	SortBy     string
	SortOrder  string
}

type AttendanceResponse struct {
	ID           string   `json:"id"`
	EmployeeID   string   `json:"employee_id"`
	EmployeeName *string  `json:"employee_name,omitempty"`
	Date         string   `json:"date"`
	CheckIn      *string  `json:"check_in"`
	LunchStart   *string  `json:"lunch_start"`
	LunchEnd     *string  `json:"lunch_end"`
	CheckOut     *string  `json:"check_out"`
	WorkingHours *float64 `json:"working_hours"`
	TotalHours   *float64 `json:"total_hours"`
	Status       string   `json:"status"`
	IsConfirmed  bool     `json:"is_confirmed"`
	ConfirmedBy  *string  `json:"confirmed_by,omitempty"`
	ConfirmedAt  *string  `json:"confirmed_at,omitempty"`
	Notes        *string  `json:"notes,omitempty"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Attendances []AttendanceResponse `json:"attendances"`
}

type MonthlySummaryResponse struct {
	EmployeeID        string  `json:"employee_id"`
	Year              int     `json:"year"`
	Month             int     `json:"month"`
	DaysPresent       int     `json:"days_present"`
	DaysLate          int     `json:"days_late"`
	DaysEarlyLeave    int     `json:"days_early_leave"`
	DaysAbsent        int     `json:"days_absent"`
	TotalWorkingHours float64 `json:"total_working_hours"`
	TotalHours        float64 `json:"total_hours"`
	ConfirmedDays     int     `json:"confirmed_days"`
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

// NewAttendanceResponse converts an Attendance entity to its response form.
func NewAttendanceResponse(att Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:           att.ID,
		EmployeeID:   att.EmployeeID,
		EmployeeName: att.EmployeeName,
		Date:         att.Date.Format("2006-01-02"),
		CheckIn:      formatTimePtr(att.CheckIn),
		LunchStart:   formatTimePtr(att.LunchStart),
		LunchEnd:     formatTimePtr(att.LunchEnd),
		CheckOut:     formatTimePtr(att.CheckOut),
		WorkingHours: att.WorkingHours,
		TotalHours:   att.TotalHours,
		Status:       string(att.Status),
		IsConfirmed:  att.IsConfirmed,
		ConfirmedBy:  att.ConfirmedBy,
		ConfirmedAt:  formatTimePtr(att.ConfirmedAt),
		Notes:        att.Notes,
		CreatedAt:    att.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    att.UpdatedAt.Format(time.RFC3339),
	}
}
