package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fjacquet/finance-advisor/internal/apperror"
	"fjacquet/finance-advisor/internal/models"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// SQLiteGoalStore persists goals in a SQLite database. Amounts are stored as
// decimal strings so no precision is lost.
type SQLiteGoalStore struct {
	db *sql.DB
}

// NewSQLiteGoalStore opens (creating if needed) the database at dbPath and
// applies pending migrations.
func NewSQLiteGoalStore(dbPath string) (*SQLiteGoalStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteGoalStore{db: db}, nil
}

func (s *SQLiteGoalStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (s *SQLiteGoalStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteGoalStore) Create(ctx context.Context, goal models.Goal) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO goals (id, name, description, target_amount, current_amount, deadline, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		goal.ID, goal.Name, goal.Description,
		goal.TargetAmount.String(), goal.CurrentAmount.String(),
		goal.Deadline.String(), formatTime(goal.CreatedAt), formatTime(goal.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}

func (s *SQLiteGoalStore) Get(ctx context.Context, id string) (models.Goal, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, target_amount, current_amount, deadline, created_at, updated_at
		FROM goals WHERE id = ?`, id)
	goal, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Goal{}, &apperror.NotFoundError{Resource: "goal", ID: id}
	}
	if err != nil {
		return models.Goal{}, err
	}

	contributions, err := s.contributions(ctx, id)
	if err != nil {
		return models.Goal{}, err
	}
	goal.Contributions = contributions
	return goal, nil
}

// List returns all goals ordered by creation time, then id.
func (s *SQLiteGoalStore) List(ctx context.Context) ([]models.Goal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, target_amount, current_amount, deadline, created_at, updated_at
		FROM goals ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	goals := []models.Goal{}
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}

	for i := range goals {
		if goals[i].Contributions, err = s.contributions(ctx, goals[i].ID); err != nil {
			return nil, err
		}
	}
	return goals, nil
}

func (s *SQLiteGoalStore) Update(ctx context.Context, goal models.Goal) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE goals SET name = ?, description = ?, target_amount = ?, current_amount = ?, deadline = ?, updated_at = ?
		WHERE id = ?`,
		goal.Name, goal.Description, goal.TargetAmount.String(), goal.CurrentAmount.String(),
		goal.Deadline.String(), formatTime(goal.UpdatedAt), goal.ID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &apperror.NotFoundError{Resource: "goal", ID: goal.ID}
	}
	return nil
}

// AddContribution records c and updates the goal balance in one transaction.
func (s *SQLiteGoalStore) AddContribution(ctx context.Context, id string, c models.Contribution) (models.Goal, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Goal{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT current_amount FROM goals WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Goal{}, &apperror.NotFoundError{Resource: "goal", ID: id}
	}
	if err != nil {
		return models.Goal{}, fmt.Errorf("read goal balance: %w", err)
	}
	balance, err := decimal.NewFromString(current)
	if err != nil {
		return models.Goal{}, fmt.Errorf("corrupt balance for goal %s: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO goal_contributions (goal_id, amount, note, created_at) VALUES (?, ?, ?, ?)`,
		id, c.Amount.String(), c.Note, formatTime(c.CreatedAt)); err != nil {
		return models.Goal{}, fmt.Errorf("insert contribution: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE goals SET current_amount = ?, updated_at = ? WHERE id = ?`,
		balance.Add(c.Amount).String(), formatTime(c.CreatedAt), id); err != nil {
		return models.Goal{}, fmt.Errorf("update goal balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Goal{}, fmt.Errorf("commit contribution: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *SQLiteGoalStore) contributions(ctx context.Context, goalID string) ([]models.Contribution, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT amount, note, created_at FROM goal_contributions WHERE goal_id = ? ORDER BY id`, goalID)
	if err != nil {
		return nil, fmt.Errorf("list contributions: %w", err)
	}
	defer rows.Close()

	var out []models.Contribution
	for rows.Next() {
		var amount, note, createdAt string
		if err := rows.Scan(&amount, &note, &createdAt); err != nil {
			return nil, fmt.Errorf("scan contribution: %w", err)
		}
		c := models.Contribution{Note: note}
		if c.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("corrupt contribution amount: %w", err)
		}
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGoal(row rowScanner) (models.Goal, error) {
	var (
		goal                 models.Goal
		target, current      string
		deadline             string
		createdAt, updatedAt string
	)
	if err := row.Scan(&goal.ID, &goal.Name, &goal.Description, &target, &current, &deadline, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Goal{}, err
		}
		return models.Goal{}, fmt.Errorf("scan goal: %w", err)
	}

	var err error
	if goal.TargetAmount, err = decimal.NewFromString(target); err != nil {
		return models.Goal{}, fmt.Errorf("corrupt target for goal %s: %w", goal.ID, err)
	}
	if goal.CurrentAmount, err = decimal.NewFromString(current); err != nil {
		return models.Goal{}, fmt.Errorf("corrupt balance for goal %s: %w", goal.ID, err)
	}
	if goal.Deadline, err = models.ParseDate(deadline); err != nil {
		return models.Goal{}, fmt.Errorf("corrupt deadline for goal %s: %w", goal.ID, err)
	}
	if goal.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Goal{}, err
	}
	if goal.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.Goal{}, err
	}
	return goal, nil
}

// timeLayout is fixed-width so that timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt timestamp %q: %w", s, err)
	}
	return t, nil
}
