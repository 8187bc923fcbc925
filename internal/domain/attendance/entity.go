package attendance

import (
	"math"
	"time"
)

// Status classifies a daily attendance record. Check-out overwrites a
// Late status with EarlyLeave when the worked hours fall short; both
// facts are not kept at once.
type Status string

const (
	StatusNormal     Status = "normal"
	StatusLate       Status = "late"
	StatusEarlyLeave Status = "early_leave"
	StatusAbsent     Status = "absent"
)

func AllStatuses() []string {
	return []string{
		string(StatusNormal),
		string(StatusLate),
		string(StatusEarlyLeave),
		string(StatusAbsent),
	}
}

// Attendance is the single record per (employee, local work day).
// Date is local midnight in the organization's time zone.
type Attendance struct {
	ID           string
	EmployeeID   string
	Date         time.Time
	CheckIn      *time.Time
	LunchStart   *time.Time
	LunchEnd     *time.Time
	CheckOut     *time.Time
	WorkingHours *float64
	TotalHours   *float64
	Status       Status
	IsConfirmed  bool
	ConfirmedBy  *string
	ConfirmedAt  *time.Time
	Notes        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// DTO
	EmployeeName *string
}

// Open reports whether the record has a check-in without a check-out.
func (a *Attendance) Open() bool {
	return a.CheckIn != nil && a.CheckOut == nil
}

// ComputeHours derives total and working hours from the punch times,
// rounded to one decimal. Lunch counts only when both punches exist.
func ComputeHours(checkIn, checkOut time.Time, lunchStart, lunchEnd *time.Time) (working, total float64) {
	total = checkOut.Sub(checkIn).Hours()

	var lunch float64
	if lunchStart != nil && lunchEnd != nil {
		lunch = lunchEnd.Sub(*lunchStart).Hours()
		if lunch < 0 {
			lunch = 0
		}
	}

	working = roundHours(total - lunch)
	total = roundHours(total)
	return working, total
}

func roundHours(h float64) float64 {
	return math.Round(h*10) / 10
}

// MonthlySummary aggregates one employee's records for a month.
type MonthlySummary struct {
	EmployeeID        string
	Year              int
	Month             int
	DaysPresent       int
	DaysLate          int
	DaysEarlyLeave    int
	DaysAbsent        int
	TotalWorkingHours float64
	TotalHours        float64
	ConfirmedDays     int
}
