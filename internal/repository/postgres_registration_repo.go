package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresDesignerRepo はPostgreSQLを使用したデザイナーリポジトリ。
type PostgresDesignerRepo struct {
	db *sql.DB
}

// NewPostgresDesignerRepo はPostgresDesignerRepoを生成する。
func NewPostgresDesignerRepo(db *sql.DB) *PostgresDesignerRepo {
	return &PostgresDesignerRepo{db: db}
}

// FindIDByUserID はユーザーIDに紐づくデザイナーIDを返す。
// 見つからない場合は空文字列とnilを返す。
func (r *PostgresDesignerRepo) FindIDByUserID(ctx context.Context, userID string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM designers WHERE user_id = $1`,
		userID,
	).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to find designer by user ID: %w", err)
	}
	return id, nil
}

// PostgresCustomerRepo はPostgreSQLを使用した顧客プロジェクトリポジトリ。
type PostgresCustomerRepo struct {
	db *sql.DB
}

// NewPostgresCustomerRepo はPostgresCustomerRepoを生成する。
func NewPostgresCustomerRepo(db *sql.DB) *PostgresCustomerRepo {
	return &PostgresCustomerRepo{db: db}
}

// ExistsByUserID はユーザーIDに紐づく顧客プロジェクトが存在するかを返す。
func (r *PostgresCustomerRepo) ExistsByUserID(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM customers WHERE user_id = $1)`,
		userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check customer project: %w", err)
	}
	return exists, nil
}

// compile-time interface check
var _ DesignerRepository = (*PostgresDesignerRepo)(nil)
var _ CustomerRepository = (*PostgresCustomerRepo)(nil)
