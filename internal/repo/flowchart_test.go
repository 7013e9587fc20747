package repo

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/crucial707/flowchart-api/internal/models"
)

func flowchartRows(id, ownerID, title string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "user_id", "title", "description", "data", "created_at", "updated_at"}).
		AddRow(id, ownerID, title, nil, []byte(`{"nodes":[]}`), now, now)
}

func TestFlowchartRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO flowcharts`).
		WithArgs(sqlmock.AnyArg(), "u1", "Flow1", nil, []byte(`{"nodes":[]}`), sqlmock.AnyArg()).
		WillReturnRows(flowchartRows("f1", "u1", "Flow1"))

	repo := NewFlowchartRepo(db)
	f, err := repo.Create(context.Background(), "u1", "Flow1", nil, []byte(`{"nodes":[]}`))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if f.ID != "f1" || f.UserID != "u1" || f.Title != "Flow1" {
		t.Errorf("unexpected flowchart: %+v", f)
	}
	if string(f.Data) != `{"nodes":[]}` {
		t.Errorf("data not preserved: %s", f.Data)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFlowchartRepo_GetByIDAndOwner_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// Same outcome whether the id is missing or owned by another user.
	mock.ExpectQuery(`SELECT id, user_id, title, description, data, created_at, updated_at`).
		WithArgs("f1", "intruder").
		WillReturnError(sql.ErrNoRows)

	repo := NewFlowchartRepo(db)
	_, err = repo.GetByIDAndOwner(context.Background(), "f1", "intruder")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFlowchartRepo_ListByOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "user_id", "title", "description", "data", "created_at", "updated_at"}).
		AddRow("f2", "u1", "Newest", nil, []byte(`{}`), now, now).
		AddRow("f1", "u1", "Oldest", nil, []byte(`{}`), now.Add(-time.Hour), now.Add(-time.Hour))

	mock.ExpectQuery(`SELECT id, user_id, title, description, data, created_at, updated_at[\s\S]*ORDER BY updated_at DESC`).
		WithArgs("u1").
		WillReturnRows(rows)

	repo := NewFlowchartRepo(db)
	flowcharts, err := repo.ListByOwner(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(flowcharts) != 2 || flowcharts[0].Title != "Newest" {
		t.Errorf("unexpected flowcharts: %+v", flowcharts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFlowchartRepo_ListByOwner_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, user_id, title, description, data, created_at, updated_at`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "description", "data", "created_at", "updated_at"}))

	repo := NewFlowchartRepo(db)
	flowcharts, err := repo.ListByOwner(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if flowcharts == nil || len(flowcharts) != 0 {
		t.Errorf("expected empty non-nil slice, got: %#v", flowcharts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFlowchartRepo_UpdateByIDAndOwner_TitleOnly(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// Patch with only title set: SET clause must contain title and updated_at, nothing else.
	mock.ExpectQuery(`UPDATE flowcharts SET title = \$1, updated_at = \$2 WHERE id = \$3 AND user_id = \$4`).
		WithArgs("new title", sqlmock.AnyArg(), "f1", "u1").
		WillReturnRows(flowchartRows("f1", "u1", "new title"))

	title := "new title"
	repo := NewFlowchartRepo(db)
	f, err := repo.UpdateByIDAndOwner(context.Background(), "f1", "u1", models.FlowchartPatch{Title: &title})
	if err != nil {
		t.Fatalf("UpdateByIDAndOwner: %v", err)
	}
	if f.Title != "new title" {
		t.Errorf("unexpected flowchart: %+v", f)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFlowchartRepo_UpdateByIDAndOwner_AllFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`UPDATE flowcharts SET title = \$1, description = \$2, data = \$3, updated_at = \$4 WHERE id = \$5 AND user_id = \$6`).
		WithArgs("t", "d", []byte(`{"nodes":[1]}`), sqlmock.AnyArg(), "f1", "u1").
		WillReturnRows(flowchartRows("f1", "u1", "t"))

	title, desc := "t", "d"
	repo := NewFlowchartRepo(db)
	_, err = repo.UpdateByIDAndOwner(context.Background(), "f1", "u1", models.FlowchartPatch{
		Title:          &title,
		Description:    &desc,
		DescriptionSet: true,
		Data:           []byte(`{"nodes":[1]}`),
	})
	if err != nil {
		t.Fatalf("UpdateByIDAndOwner: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFlowchartRepo_UpdateByIDAndOwner_ClearDescription(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// Description present but nil writes NULL rather than leaving the column alone.
	mock.ExpectQuery(`UPDATE flowcharts SET description = \$1, updated_at = \$2 WHERE id = \$3 AND user_id = \$4`).
		WithArgs(nil, sqlmock.AnyArg(), "f1", "u1").
		WillReturnRows(flowchartRows("f1", "u1", "Flow1"))

	repo := NewFlowchartRepo(db)
	_, err = repo.UpdateByIDAndOwner(context.Background(), "f1", "u1", models.FlowchartPatch{DescriptionSet: true})
	if err != nil {
		t.Fatalf("UpdateByIDAndOwner: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFlowchartRepo_UpdateByIDAndOwner_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`UPDATE flowcharts SET`).
		WithArgs("x", sqlmock.AnyArg(), "f1", "other").
		WillReturnError(sql.ErrNoRows)

	title := "x"
	repo := NewFlowchartRepo(db)
	_, err = repo.UpdateByIDAndOwner(context.Background(), "f1", "other", models.FlowchartPatch{Title: &title})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFlowchartRepo_DeleteByIDAndOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM flowcharts WHERE id = \$1 AND user_id = \$2`).
		WithArgs("f1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewFlowchartRepo(db)
	if err := repo.DeleteByIDAndOwner(context.Background(), "f1", "u1"); err != nil {
		t.Fatalf("DeleteByIDAndOwner: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFlowchartRepo_DeleteByIDAndOwner_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM flowcharts`).
		WithArgs("f1", "other").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewFlowchartRepo(db)
	err = repo.DeleteByIDAndOwner(context.Background(), "f1", "other")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
