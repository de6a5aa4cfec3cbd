package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sitecrew/sitecrew/internal/shared"
)

// Repository defines task persistence.
type Repository interface {
	Create(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	ResolveUserRole(ctx context.Context, userID int64) (string, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Create inserts a task.
func (r *PGRepository) Create(ctx context.Context, task *Task) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO tasks (id, site, title, status, creator_id, assignee_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		task.ID, task.Site, task.Title, string(task.Status), task.CreatorID, task.AssigneeID, task.CreatedAt, task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("tasks: create: %w", err)
	}
	return nil
}

// FindByID returns a task with creator and assignee roles resolved.
func (r *PGRepository) FindByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT t.id, t.site, t.title, t.status, t.creator_id, rc.name, t.assignee_id, ra.name, t.created_at, t.updated_at
		 FROM tasks t
		 JOIN users uc ON uc.id = t.creator_id JOIN roles rc ON rc.id = uc.role_id
		 JOIN users ua ON ua.id = t.assignee_id JOIN roles ra ON ra.id = ua.role_id
		 WHERE t.id = $1`, id)

	var t Task
	var status string
	err := row.Scan(&t.ID, &t.Site, &t.Title, &status, &t.CreatorID, &t.CreatorRole, &t.AssigneeID, &t.AssigneeRole, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("tasks: find by id: %w", err)
	}
	t.Status = Status(status)
	return &t, nil
}

// UpdateStatus moves a task to a new status.
func (r *PGRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tasks SET status = $2, updated_at = NOW() WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("tasks: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ResolveUserRole returns the role name of a user, for assignment checks.
func (r *PGRepository) ResolveUserRole(ctx context.Context, userID int64) (string, error) {
	var name string
	err := r.pool.QueryRow(ctx,
		`SELECT r.name FROM users u JOIN roles r ON r.id = u.role_id WHERE u.id = $1`, userID).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shared.ErrNotFound
		}
		return "", fmt.Errorf("tasks: resolve user role: %w", err)
	}
	return name, nil
}

var _ Repository = (*PGRepository)(nil)
