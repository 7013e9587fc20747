package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/crucial707/flowchart-api/internal/config"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:       "test-secret-for-integration",
		TokenTTLMinutes: 1440,
	}
}

// TestAPI_RegisterCreateList walks the main path end to end against the full
// router: register a user, create a flowchart with the issued token, then
// list flowcharts and find exactly that record.
func TestAPI_RegisterCreateList(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	userCols := []string{"id", "email", "username", "hashed_password", "created_at"}
	flowchartCols := []string{"id", "user_id", "title", "description", "data", "created_at", "updated_at"}

	// Register: uniqueness pre-check, then insert.
	mock.ExpectQuery(`SELECT id, email, username, hashed_password, created_at`).
		WithArgs("a@x.com", "a").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "a@x.com", "a", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("u1", "a@x.com", "a", "hashed", now))

	// POST /api/flowcharts: auth middleware resolves the user, then insert.
	mock.ExpectQuery(`SELECT id, email, username, hashed_password, created_at`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("u1", "a@x.com", "a", "hashed", now))
	mock.ExpectQuery(`INSERT INTO flowcharts`).
		WithArgs(sqlmock.AnyArg(), "u1", "Flow1", nil, []byte(`{"nodes":[]}`), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(flowchartCols).
			AddRow("f1", "u1", "Flow1", nil, []byte(`{"nodes":[]}`), now, now))

	// GET /api/flowcharts: auth middleware again, then owner-scoped list.
	mock.ExpectQuery(`SELECT id, email, username, hashed_password, created_at`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("u1", "a@x.com", "a", "hashed", now))
	mock.ExpectQuery(`SELECT id, user_id, title, description, data, created_at, updated_at`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(flowchartCols).
			AddRow("f1", "u1", "Flow1", nil, []byte(`{"nodes":[]}`), now, now))

	srv := httptest.NewServer(newRouter(db, testConfig()))
	defer srv.Close()

	// 1) Register
	registerBody := `{"email":"a@x.com","username":"a","password":"p"}`
	registerResp, err := http.Post(srv.URL+"/api/auth/register", "application/json", strings.NewReader(registerBody))
	if err != nil {
		t.Fatalf("register request: %v", err)
	}
	defer registerResp.Body.Close()
	if registerResp.StatusCode != http.StatusCreated {
		t.Fatalf("register status: got %d, want 201", registerResp.StatusCode)
	}
	var tokenOut struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.NewDecoder(registerResp.Body).Decode(&tokenOut); err != nil || tokenOut.AccessToken == "" {
		t.Fatalf("register response: %v", err)
	}
	if tokenOut.TokenType != "bearer" {
		t.Errorf("token_type: got %q, want bearer", tokenOut.TokenType)
	}

	// 2) Create a flowchart with the token
	createBody := `{"title":"Flow1","data":{"nodes":[]}}`
	req, _ := http.NewRequest("POST", srv.URL+"/api/flowcharts", bytes.NewReader([]byte(createBody)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tokenOut.AccessToken)
	createResp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	defer createResp.Body.Close()
	if createResp.StatusCode != http.StatusCreated {
		t.Fatalf("create status: got %d, want 201", createResp.StatusCode)
	}
	var created struct {
		ID     string `json:"id"`
		UserID string `json:"user_id"`
		Title  string `json:"title"`
	}
	if err := json.NewDecoder(createResp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.ID == "" || created.UserID != "u1" || created.Title != "Flow1" {
		t.Errorf("unexpected record: %+v", created)
	}

	// 3) List flowcharts with the token
	req, _ = http.NewRequest("GET", srv.URL+"/api/flowcharts", nil)
	req.Header.Set("Authorization", "Bearer "+tokenOut.AccessToken)
	listResp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("list request: %v", err)
	}
	defer listResp.Body.Close()
	if listResp.StatusCode != http.StatusOK {
		t.Fatalf("list status: got %d, want 200", listResp.StatusCode)
	}
	var list []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	if err := json.NewDecoder(listResp.Body).Decode(&list); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(list) != 1 || list[0].ID != created.ID {
		t.Errorf("unexpected list: %+v", list)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAPI_FlowchartsRequireAuth(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	srv := httptest.NewServer(newRouter(db, testConfig()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/flowcharts")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("GET /api/flowcharts without token: got %d, want 401", resp.StatusCode)
	}
}

// TestAPI_Health is a quick smoke test for the health endpoint.
func TestAPI_Health(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	srv := httptest.NewServer(newRouter(db, testConfig()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /health status: got %d, want 200", resp.StatusCode)
	}
}

// TestAPI_Ready checks that /ready pings the DB and returns 200 when DB is reachable.
func TestAPI_Ready(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	mock.ExpectPing()

	srv := httptest.NewServer(newRouter(db, testConfig()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ready")
	if err != nil {
		t.Fatalf("ready request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /ready status: got %d, want 200", resp.StatusCode)
	}
}
