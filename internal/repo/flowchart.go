package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/crucial707/flowchart-api/internal/models"
)

// ========================
// REPOSITORY STRUCT
// ========================

// FlowchartRepo persists flowchart documents. Every read, update and delete
// is scoped by owner in the same SQL statement, so a flowchart owned by
// another user is indistinguishable from one that does not exist. Ids are
// opaque text, a malformed id simply matches no row.
type FlowchartRepo struct {
	DB *sql.DB
}

func NewFlowchartRepo(db *sql.DB) *FlowchartRepo {
	return &FlowchartRepo{DB: db}
}

const flowchartColumns = "id, user_id, title, description, data, created_at, updated_at"

// ========================
// CREATE FLOWCHART
// ========================

func (r *FlowchartRepo) Create(ctx context.Context, ownerID, title string, description *string, data []byte) (models.Flowchart, error) {
	var f models.Flowchart
	now := time.Now().UTC()
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO flowcharts (id, user_id, title, description, data, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)
		 RETURNING `+flowchartColumns,
		uuid.NewString(), ownerID, title, description, data, now,
	).Scan(
		&f.ID,
		&f.UserID,
		&f.Title,
		&f.Description,
		&f.Data,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	return f, err
}

// ========================
// GET BY ID AND OWNER
// ========================

func (r *FlowchartRepo) GetByIDAndOwner(ctx context.Context, id, ownerID string) (models.Flowchart, error) {
	var f models.Flowchart
	err := r.DB.QueryRowContext(ctx,
		`SELECT `+flowchartColumns+`
		 FROM flowcharts
		 WHERE id = $1 AND user_id = $2`,
		id, ownerID,
	).Scan(
		&f.ID,
		&f.UserID,
		&f.Title,
		&f.Description,
		&f.Data,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return f, ErrNotFound
	}
	return f, err
}

// ========================
// LIST BY OWNER
// ========================

// ListByOwner returns the owner's flowcharts, most recently updated first.
func (r *FlowchartRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Flowchart, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+flowchartColumns+`
		 FROM flowcharts
		 WHERE user_id = $1
		 ORDER BY updated_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flowcharts := []models.Flowchart{}
	for rows.Next() {
		var f models.Flowchart
		if err := rows.Scan(&f.ID, &f.UserID, &f.Title, &f.Description, &f.Data, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		flowcharts = append(flowcharts, f)
	}
	return flowcharts, rows.Err()
}

// ========================
// UPDATE BY ID AND OWNER
// ========================

// UpdateByIDAndOwner applies only the fields present in the patch and always
// bumps updated_at, in a single statement. Returns ErrNotFound when the
// flowchart does not exist or belongs to someone else.
func (r *FlowchartRepo) UpdateByIDAndOwner(ctx context.Context, id, ownerID string, patch models.FlowchartPatch) (models.Flowchart, error) {
	set := make([]string, 0, 4)
	args := make([]interface{}, 0, 6)
	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.DescriptionSet {
		add("description", patch.Description)
	}
	if patch.Data != nil {
		add("data", []byte(patch.Data))
	}
	add("updated_at", time.Now().UTC())

	args = append(args, id, ownerID)
	query := fmt.Sprintf(
		`UPDATE flowcharts SET %s WHERE id = $%d AND user_id = $%d RETURNING %s`,
		strings.Join(set, ", "), len(args)-1, len(args), flowchartColumns,
	)

	var f models.Flowchart
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(
		&f.ID,
		&f.UserID,
		&f.Title,
		&f.Description,
		&f.Data,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return f, ErrNotFound
	}
	return f, err
}

// ========================
// DELETE BY ID AND OWNER
// ========================

func (r *FlowchartRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID string) error {
	result, err := r.DB.ExecContext(ctx,
		`DELETE FROM flowcharts WHERE id = $1 AND user_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
