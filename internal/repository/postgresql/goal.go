package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kintai-hq/kintai-backend-go/internal/domain/goal"
	"github.com/kintai-hq/kintai-backend-go/internal/pkg/database"
)

type goalRepository struct {
	db *database.DB
}

func NewGoalRepository(db *database.DB) goal.GoalRepository {
	return &goalRepository{db: db}
}

// Create implements goal.GoalRepository.
func (r *goalRepository) Create(ctx context.Context, g goal.Goal) (goal.Goal, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO goals (
			owner_id, title, description, progress, grade, deadline,
			level, action_plan, status, current_approver_id, history
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		g.OwnerID,
		g.Title,
		g.Description,
		g.Progress,
		g.Grade,
		g.Deadline,
		g.Level,
		g.ActionPlan,
		g.Status,
		g.CurrentApproverID,
		g.History,
	).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)

	if err != nil {
		return goal.Goal{}, fmt.Errorf("failed to create goal: %w", err)
	}

	return g, nil
}

// GetByID implements goal.GoalRepository.
func (r *goalRepository) GetByID(ctx context.Context, id string) (goal.Goal, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT g.id, g.owner_id, g.title, g.description, g.progress, g.grade, g.deadline,
			   g.level, g.action_plan, g.status, g.current_approver_id, g.history,
			   g.created_at, g.updated_at,
			   o.full_name as owner_name,
			   a.full_name as approver_name
		FROM goals g
		JOIN employees o ON g.owner_id = o.id
		LEFT JOIN employees a ON g.current_approver_id = a.id
		WHERE g.id = $1
	`

	var g goal.Goal
	var ownerName string

	err := q.QueryRow(ctx, query, id).Scan(
		&g.ID, &g.OwnerID, &g.Title, &g.Description, &g.Progress, &g.Grade, &g.Deadline,
		&g.Level, &g.ActionPlan, &g.Status, &g.CurrentApproverID, &g.History,
		&g.CreatedAt, &g.UpdatedAt,
		&ownerName,
		&g.ApproverName,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return goal.Goal{}, goal.ErrGoalNotFound
		}
		return goal.Goal{}, fmt.Errorf("failed to get goal: %w", err)
	}

	g.OwnerName = &ownerName

	return g, nil
}

// Update implements goal.GoalRepository.
func (r *goalRepository) Update(ctx context.Context, g goal.Goal) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE goals
		SET title = $2,
			description = $3,
			progress = $4,
			grade = $5,
			deadline = $6,
			level = $7,
			action_plan = $8,
			status = $9,
			current_approver_id = $10,
			history = $11,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		g.ID,
		g.Title,
		g.Description,
		g.Progress,
		g.Grade,
		g.Deadline,
		g.Level,
		g.ActionPlan,
		g.Status,
		g.CurrentApproverID,
		g.History,
	)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return goal.ErrGoalNotFound
	}

	return nil
}

// Delete implements goal.GoalRepository.
func (r *goalRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM goals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return goal.ErrGoalNotFound
	}

	return nil
}

// List implements goal.GoalRepository.
func (r *goalRepository) List(ctx context.Context, filter goal.GoalFilter) ([]goal.Goal, int64, error) {
	q := GetQuerier(ctx, r.db)

	// Build WHERE clause
	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.OwnerID != nil {
		whereClause += fmt.Sprintf(" AND g.owner_id = $%d", argIndex)
		args = append(args, *filter.OwnerID)
		argIndex++
	}

	if filter.ApproverID != nil {
		whereClause += fmt.Sprintf(" AND g.current_approver_id = $%d", argIndex)
		args = append(args, *filter.ApproverID)
		argIndex++
	}

	if filter.Status != nil {
		whereClause += fmt.Sprintf(" AND g.status = $%d", argIndex)
		args = append(args, *filter.Status)
		argIndex++
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM goals g %s`, whereClause)

	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count goals: %w", err)
	}

	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Limit == 0 {
		filter.Limit = 20
	}
	offset := (filter.Page - 1) * filter.Limit

	query := fmt.Sprintf(`
		SELECT g.id, g.owner_id, g.title, g.description, g.progress, g.grade, g.deadline,
			   g.level, g.action_plan, g.status, g.current_approver_id, g.history,
			   g.created_at, g.updated_at,
			   o.full_name as owner_name,
			   a.full_name as approver_name
		FROM goals g
		JOIN employees o ON g.owner_id = o.id
		LEFT JOIN employees a ON g.current_approver_id = a.id
		%s
		ORDER BY g.created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIndex, argIndex+1)

	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	var goals []goal.Goal
	for rows.Next() {
		var g goal.Goal
		var ownerName string
		err := rows.Scan(
			&g.ID, &g.OwnerID, &g.Title, &g.Description, &g.Progress, &g.Grade, &g.Deadline,
			&g.Level, &g.ActionPlan, &g.Status, &g.CurrentApproverID, &g.History,
			&g.CreatedAt, &g.UpdatedAt,
			&ownerName,
			&g.ApproverName,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan goal: %w", err)
		}
		g.OwnerName = &ownerName
		goals = append(goals, g)
	}

	return goals, total, rows.Err()
}
