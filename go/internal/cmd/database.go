package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/arena/go/internal/dbconfig"
)

func setupDatabase(ctx context.Context) (*sql.DB, error) {
	dbConfig, err := dbconfig.Load()
	if err != nil {
		return nil, err
	}

	database, err := sql.Open("postgres", dbConfig.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}
	dbConfig.Apply(database)

	if err := database.PingContext(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("user", dbConfig.User).
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Int("max_open_conns", dbConfig.MaxOpenConns).
		Msg("Connected to database")
	return database, nil
}
