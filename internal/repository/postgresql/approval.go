package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kintai-hq/kintai-backend-go/internal/domain/approval"
	"github.com/kintai-hq/kintai-backend-go/internal/pkg/database"
)

type approvalRepository struct {
	db *database.DB
}

func NewApprovalRepository(db *database.DB) approval.ApprovalRepository {
	return &approvalRepository{db: db}
}

// Create implements approval.ApprovalRepository.
func (r *approvalRepository) Create(ctx context.Context, request approval.ApprovalRequest) (approval.ApprovalRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO approval_requests (employee_id, year, month, status, requested_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		request.EmployeeID,
		request.Year,
		request.Month,
		request.Status,
		request.RequestedAt,
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)

	if err != nil {
		return approval.ApprovalRequest{}, fmt.Errorf("failed to create approval request: %w", err)
	}

	return request, nil
}

// GetByID implements approval.ApprovalRepository.
func (r *approvalRepository) GetByID(ctx context.Context, id string) (approval.ApprovalRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ar.id, ar.employee_id, ar.year, ar.month, ar.status,
			   ar.requested_at, ar.processed_by, ar.processed_at, ar.return_reason,
			   ar.created_at, ar.updated_at,
			   e.full_name as employee_name
		FROM approval_requests ar
		JOIN employees e ON ar.employee_id = e.id
		WHERE ar.id = $1
	`

	var req approval.ApprovalRequest
	var employeeName string

	err := q.QueryRow(ctx, query, id).Scan(
		&req.ID, &req.EmployeeID, &req.Year, &req.Month, &req.Status,
		&req.RequestedAt, &req.ProcessedBy, &req.ProcessedAt, &req.ReturnReason,
		&req.CreatedAt, &req.UpdatedAt,
		&employeeName,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return approval.ApprovalRequest{}, approval.ErrApprovalNotFound
		}
		return approval.ApprovalRequest{}, fmt.Errorf("failed to get approval request: %w", err)
	}

	req.EmployeeName = &employeeName

	return req, nil
}

// GetPendingByPeriod implements approval.ApprovalRepository.
func (r *approvalRepository) GetPendingByPeriod(ctx context.Context, employeeID string, year, month int) (*approval.ApprovalRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, year, month, status,
			   requested_at, processed_by, processed_at, return_reason,
			   created_at, updated_at
		FROM approval_requests
		WHERE employee_id = $1
		  AND year = $2
		  AND month = $3
		  AND status = 'pending'
		LIMIT 1
	`

	var req approval.ApprovalRequest
	err := q.QueryRow(ctx, query, employeeID, year, month).Scan(
		&req.ID, &req.EmployeeID, &req.Year, &req.Month, &req.Status,
		&req.RequestedAt, &req.ProcessedBy, &req.ProcessedAt, &req.ReturnReason,
		&req.CreatedAt, &req.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pending request: %w", err)
	}

	return &req, nil
}

// DeleteSuperseded implements approval.ApprovalRepository. Only returned
// and rejected requests are superseded; approved ones are history.
func (r *approvalRepository) DeleteSuperseded(ctx context.Context, employeeID string, year, month int) error {
	q := GetQuerier(ctx, r.db)

	query := `
		DELETE FROM approval_requests
		WHERE employee_id = $1
		  AND year = $2
		  AND month = $3
		  AND status IN ('returned', 'rejected')
	`

	if _, err := q.Exec(ctx, query, employeeID, year, month); err != nil {
		return fmt.Errorf("failed to delete superseded requests: %w", err)
	}

	return nil
}

// Update implements approval.ApprovalRepository.
func (r *approvalRepository) Update(ctx context.Context, request approval.ApprovalRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE approval_requests
		SET status = $2,
			processed_by = $3,
			processed_at = $4,
			return_reason = $5,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		request.ID,
		request.Status,
		request.ProcessedBy,
		request.ProcessedAt,
		request.ReturnReason,
	)
	if err != nil {
		return fmt.Errorf("failed to update approval request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return approval.ErrApprovalNotFound
	}

	return nil
}

// List implements approval.ApprovalRepository.
func (r *approvalRepository) List(ctx context.Context, filter approval.RequestFilter) ([]approval.ApprovalRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	// Build WHERE clause
	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.EmployeeID != nil {
		whereClause += fmt.Sprintf(" AND ar.employee_id = $%d", argIndex)
		args = append(args, *filter.EmployeeID)
		argIndex++
	}

	if filter.Status != nil {
		whereClause += fmt.Sprintf(" AND ar.status = $%d", argIndex)
		args = append(args, *filter.Status)
		argIndex++
	}

	if filter.Year != nil {
		whereClause += fmt.Sprintf(" AND ar.year = $%d", argIndex)
		args = append(args, *filter.Year)
		argIndex++
	}

	if filter.Month != nil {
		whereClause += fmt.Sprintf(" AND ar.month = $%d", argIndex)
		args = append(args, *filter.Month)
		argIndex++
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM approval_requests ar %s`, whereClause)

	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count approval requests: %w", err)
	}

	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Limit == 0 {
		filter.Limit = 20
	}
	offset := (filter.Page - 1) * filter.Limit

	query := fmt.Sprintf(`
		SELECT ar.id, ar.employee_id, ar.year, ar.month, ar.status,
			   ar.requested_at, ar.processed_by, ar.processed_at, ar.return_reason,
			   ar.created_at, ar.updated_at,
			   e.full_name as employee_name
		FROM approval_requests ar
		JOIN employees e ON ar.employee_id = e.id
		%s
		ORDER BY ar.requested_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIndex, argIndex+1)

	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list approval requests: %w", err)
	}
	defer rows.Close()

	var requests []approval.ApprovalRequest
	for rows.Next() {
		var req approval.ApprovalRequest
		var employeeName string
		err := rows.Scan(
			&req.ID, &req.EmployeeID, &req.Year, &req.Month, &req.Status,
			&req.RequestedAt, &req.ProcessedBy, &req.ProcessedAt, &req.ReturnReason,
			&req.CreatedAt, &req.UpdatedAt,
			&employeeName,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan approval request: %w", err)
		}
		req.EmployeeName = &employeeName
		requests = append(requests, req)
	}

	return requests, total, rows.Err()
}
