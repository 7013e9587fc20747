package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Connect opens a Postgres connection pool and verifies it with a ping.
func Connect(host, port, name, user, password string, maxOpen, maxIdle int) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s dbname=%s user=%s password=%s sslmode=disable",
		host, port, name, user, password,
	)

	database, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if maxOpen > 0 {
		database.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		database.SetMaxIdleConns(maxIdle)
	}

	if err := database.Ping(); err != nil {
		return nil, err
	}

	return database, nil
}
