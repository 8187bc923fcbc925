package approval

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/kintai-hq/kintai-backend-go/internal/domain/approval"
	"github.com/kintai-hq/kintai-backend-go/internal/domain/attendance"
	"github.com/kintai-hq/kintai-backend-go/internal/domain/notification"
	"github.com/kintai-hq/kintai-backend-go/internal/domain/user"
	"github.com/kintai-hq/kintai-backend-go/internal/pkg/clock"
	"github.com/kintai-hq/kintai-backend-go/internal/pkg/database"
)

type ApprovalServiceImpl struct {
	approval.ApprovalRepository
	attendance.AttendanceRepository
	notificationSvc notification.Service
	transactor      database.Transactor
	clock           clock.Clock
}

func NewApprovalService(
	approvalRepo approval.ApprovalRepository,
	attendanceRepo attendance.AttendanceRepository,
	notificationSvc notification.Service,
	transactor database.Transactor,
	clk clock.Clock,
) approval.ApprovalService {
	return &ApprovalServiceImpl{
		ApprovalRepository:   approvalRepo,
		AttendanceRepository: attendanceRepo,
		notificationSvc:      notificationSvc,
		transactor:           transactor,
		clock:                clk,
	}
}

// FileRequest implements approval.ApprovalService.
func (s *ApprovalServiceImpl) FileRequest(ctx context.Context, actor user.Actor, req approval.FileRequestRequest) (approval.ApprovalResponse, error) {
	if err := req.Validate(); err != nil {
		return approval.ApprovalResponse{}, err
	}

	pending, err := s.ApprovalRepository.GetPendingByPeriod(ctx, actor.EmployeeID, req.Year, req.Month)
	if err != nil {
		return approval.ApprovalResponse{}, fmt.Errorf("failed to look up pending request: %w", err)
	}
	if pending != nil {
		return approval.ApprovalResponse{}, approval.ErrRequestAlreadyPending
	}

	start, end := clock.MonthRange(req.Year, time.Month(req.Month), s.clock.Location())
	confirmed, err := s.AttendanceRepository.HasConfirmedInRange(ctx, actor.EmployeeID, start, end)
	if err != nil {
		return approval.ApprovalResponse{}, fmt.Errorf("failed to check confirmed records: %w", err)
	}
	if confirmed {
		return approval.ApprovalResponse{}, approval.ErrMonthAlreadyConfirmed
	}

	// Stale returned or rejected requests for the same period are
	// replaced, not accumulated.
	if err := s.ApprovalRepository.DeleteSuperseded(ctx, actor.EmployeeID, req.Year, req.Month); err != nil {
		return approval.ApprovalResponse{}, fmt.Errorf("failed to delete superseded requests: %w", err)
	}

	request := approval.ApprovalRequest{
		EmployeeID:  actor.EmployeeID,
		Year:        req.Year,
		Month:       req.Month,
		Status:      approval.RequestStatusPending,
		RequestedAt: s.clock.Now(),
	}

	created, err := s.ApprovalRepository.Create(ctx, request)
	if err != nil {
		return approval.ApprovalResponse{}, fmt.Errorf("failed to create approval request: %w", err)
	}

	_ = s.notificationSvc.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: actor.EmployeeID,
		Type:        notification.TypeMonthRequestFiled,
		Title:       "Monthly confirmation filed",
		Message:     fmt.Sprintf("Your attendance for %04d-%02d was submitted for approval.", req.Year, req.Month),
		Data:        map[string]interface{}{"request_id": created.ID},
	})

	return approval.NewApprovalResponse(created), nil
}

// GetMyRequests implements approval.ApprovalService.
func (s *ApprovalServiceImpl) GetMyRequests(ctx context.Context, actor user.Actor, filter approval.RequestFilter) (approval.ListApprovalResponse, error) {
	filter.EmployeeID = &actor.EmployeeID
	return s.listRequests(ctx, filter)
}

// ListRequests implements approval.ApprovalService.
func (s *ApprovalServiceImpl) ListRequests(ctx context.Context, actor user.Actor, filter approval.RequestFilter) (approval.ListApprovalResponse, error) {
	if !actor.IsAdmin {
		return approval.ListApprovalResponse{}, user.ErrAdminPrivilegeRequired
	}
	return s.listRequests(ctx, filter)
}

func (s *ApprovalServiceImpl) listRequests(ctx context.Context, filter approval.RequestFilter) (approval.ListApprovalResponse, error) {
	if filter.Limit == 0 {
		filter.Limit = 20
	}
	if filter.Page == 0 {
		filter.Page = 1
	}

	requests, total, err := s.ApprovalRepository.List(ctx, filter)
	if err != nil {
		return approval.ListApprovalResponse{}, fmt.Errorf("failed to list approval requests: %w", err)
	}

	responses := make([]approval.ApprovalResponse, 0, len(requests))
	for _, req := range requests {
		responses = append(responses, approval.NewApprovalResponse(req))
	}

	return approval.ListApprovalResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Requests:   responses,
	}, nil
}

// Approve implements approval.ApprovalService. The bulk confirmation and
// the request-status write share one transaction so a failure leaves the
// month untouched.
func (s *ApprovalServiceImpl) Approve(ctx context.Context, actor user.Actor, requestID string) (approval.ApprovalResponse, error) {
	request, err := s.pendingRequestForAdmin(ctx, actor, requestID)
	if err != nil {
		return approval.ApprovalResponse{}, err
	}

	now := s.clock.Now()
	start, end := clock.MonthRange(request.Year, time.Month(request.Month), s.clock.Location())

	request.Status = approval.RequestStatusApproved
	request.ProcessedBy = &actor.EmployeeID
	request.ProcessedAt = &now
	request.ReturnReason = nil

	err = s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.AttendanceRepository.ConfirmRange(txCtx, request.EmployeeID, start, end, actor.EmployeeID, now); err != nil {
			return fmt.Errorf("failed to confirm attendance records: %w", err)
		}
		if err := s.ApprovalRepository.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to update approval request: %w", err)
		}
		return nil
	})
	if err != nil {
		return approval.ApprovalResponse{}, err
	}

	_ = s.notificationSvc.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: request.EmployeeID,
		SenderID:    &actor.EmployeeID,
		Type:        notification.TypeMonthApproved,
		Title:       "Monthly attendance approved",
		Message:     fmt.Sprintf("Your attendance for %04d-%02d was approved and is now locked.", request.Year, request.Month),
		Data:        map[string]interface{}{"request_id": request.ID},
	})

	return approval.NewApprovalResponse(request), nil
}

// Return implements approval.ApprovalService. Any confirmation already
// stamped on the month is cleared so the employee can correct and refile.
func (s *ApprovalServiceImpl) Return(ctx context.Context, actor user.Actor, requestID string, req approval.ReturnRequestRequest) (approval.ApprovalResponse, error) {
	if err := req.Validate(); err != nil {
		return approval.ApprovalResponse{}, err
	}

	request, err := s.pendingRequestForAdmin(ctx, actor, requestID)
	if err != nil {
		return approval.ApprovalResponse{}, err
	}

	now := s.clock.Now()
	start, end := clock.MonthRange(request.Year, time.Month(request.Month), s.clock.Location())

	request.Status = approval.RequestStatusReturned
	request.ProcessedBy = &actor.EmployeeID
	request.ProcessedAt = &now
	request.ReturnReason = &req.Reason

	err = s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.AttendanceRepository.UnconfirmRange(txCtx, request.EmployeeID, start, end); err != nil {
			return fmt.Errorf("failed to unconfirm attendance records: %w", err)
		}
		if err := s.ApprovalRepository.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to update approval request: %w", err)
		}
		return nil
	})
	if err != nil {
		return approval.ApprovalResponse{}, err
	}

	_ = s.notificationSvc.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: request.EmployeeID,
		SenderID:    &actor.EmployeeID,
		Type:        notification.TypeMonthReturned,
		Title:       "Monthly attendance returned",
		Message:     fmt.Sprintf("Your attendance for %04d-%02d was returned: %s", request.Year, request.Month, req.Reason),
		Data:        map[string]interface{}{"request_id": request.ID},
	})

	return approval.NewApprovalResponse(request), nil
}

// Reject implements approval.ApprovalService. Rejection closes the
// request without touching attendance data.
func (s *ApprovalServiceImpl) Reject(ctx context.Context, actor user.Actor, requestID string) (approval.ApprovalResponse, error) {
	request, err := s.pendingRequestForAdmin(ctx, actor, requestID)
	if err != nil {
		return approval.ApprovalResponse{}, err
	}

	now := s.clock.Now()
	request.Status = approval.RequestStatusRejected
	request.ProcessedBy = &actor.EmployeeID
	request.ProcessedAt = &now

	if err := s.ApprovalRepository.Update(ctx, request); err != nil {
		return approval.ApprovalResponse{}, fmt.Errorf("failed to update approval request: %w", err)
	}

	_ = s.notificationSvc.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: request.EmployeeID,
		SenderID:    &actor.EmployeeID,
		Type:        notification.TypeMonthRejected,
		Title:       "Monthly attendance rejected",
		Message:     fmt.Sprintf("Your attendance request for %04d-%02d was rejected.", request.Year, request.Month),
		Data:        map[string]interface{}{"request_id": request.ID},
	})

	return approval.NewApprovalResponse(request), nil
}

func (s *ApprovalServiceImpl) pendingRequestForAdmin(ctx context.Context, actor user.Actor, requestID string) (approval.ApprovalRequest, error) {
	if !actor.IsAdmin {
		return approval.ApprovalRequest{}, user.ErrAdminPrivilegeRequired
	}

	request, err := s.ApprovalRepository.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, approval.ErrApprovalNotFound) {
			return approval.ApprovalRequest{}, approval.ErrApprovalNotFound
		}
		return approval.ApprovalRequest{}, fmt.Errorf("failed to get approval request: %w", err)
	}

	if request.Processed() {
		return approval.ApprovalRequest{}, approval.ErrRequestAlreadyProcessed
	}

	return request, nil
}
