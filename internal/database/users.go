// AquaScope - Water Quality Monitoring and Alerting API
// Copyright 2026 AquaScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aquascope/aquascope

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/aquascope/aquascope/internal/models"
)

// CreateUser inserts a new account and returns it with generated fields
// populated. Returns ErrDuplicateEmail when the email is already taken.
func (db *DB) CreateUser(ctx context.Context, email, passwordHash, name, role string) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO users (email, password, name, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		email, passwordHash, name, role, now, now)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("user insert id: %w", err)
	}

	return &models.User{
		ID:        id,
		Email:     email,
		Password:  passwordHash,
		Name:      name,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// GetUserByEmail looks up an account by email. Returns ErrNotFound when
// no account exists; callers in the login path must still burn a bcrypt
// comparison to keep timing uniform.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	return db.scanUser(db.conn.QueryRowContext(ctx, `
		SELECT id, email, password, name, role, created_at, updated_at
		FROM users WHERE email = ?`, email))
}

// GetUserByID looks up an account by primary key.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	return db.scanUser(db.conn.QueryRowContext(ctx, `
		SELECT id, email, password, name, role, created_at, updated_at
		FROM users WHERE id = ?`, id))
}

// UpdateUser updates the mutable profile fields and returns the fresh
// row. Returns ErrDuplicateEmail when the new email collides.
func (db *DB) UpdateUser(ctx context.Context, id int64, email, name string) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, `
		UPDATE users SET email = ?, name = ?, updated_at = ?
		WHERE id = ?`,
		email, name, time.Now().UTC(), id)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update user affected rows: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return db.GetUserByID(ctx, id)
}

func (db *DB) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
