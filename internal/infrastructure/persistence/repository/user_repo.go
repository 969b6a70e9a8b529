package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/garagehub/returns-workflow/internal/application/port"
	"github.com/garagehub/returns-workflow/internal/domain/entity"
)

// UserRepository implements port.UserRepository
type UserRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) port.UserRepository {
	return &UserRepository{db: db, logger: logger}
}

const userColumns = `id, company_id, name, email, role_id, chat_id, is_active, created_at`

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM user_mgmt WHERE id = ?`

	var user entity.User
	var chatID sql.NullString
	err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.CompanyID,
		&user.Name,
		&user.Email,
		&user.RoleID,
		&chatID,
		&user.IsActive,
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get user", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.ChatID = chatID.String
	return &user, nil
}

// GetByRole returns all users of a company holding the given role
func (r *UserRepository) GetByRole(ctx context.Context, companyID int64, roleID string) ([]entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM user_mgmt WHERE company_id = ? AND role_id = ? ORDER BY id ASC`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, companyID, roleID)
	if err != nil {
		r.logger.Error("Failed to get users by role",
			zap.Int64("company_id", companyID),
			zap.String("role_id", roleID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get users by role: %w", err)
	}
	defer rows.Close()

	var users []entity.User
	for rows.Next() {
		var user entity.User
		var chatID sql.NullString
		if err := rows.Scan(
			&user.ID,
			&user.CompanyID,
			&user.Name,
			&user.Email,
			&user.RoleID,
			&chatID,
			&user.IsActive,
			&user.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		user.ChatID = chatID.String
		users = append(users, user)
	}
	return users, rows.Err()
}

// Verify interface compliance
var _ port.UserRepository = (*UserRepository)(nil)

// RoleRepository implements port.RoleRepository
type RoleRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *sql.DB, logger *zap.Logger) port.RoleRepository {
	return &RoleRepository{db: db, logger: logger}
}

// GetByID retrieves a role by ID
func (r *RoleRepository) GetByID(ctx context.Context, id string) (*entity.Role, error) {
	query := `
		SELECT id, company_id, name, is_privileged, created_at
		FROM role_master
		WHERE id = ?
	`

	var role entity.Role
	err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&role.ID,
		&role.CompanyID,
		&role.Name,
		&role.IsPrivileged,
		&role.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get role", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return &role, nil
}

// Verify interface compliance
var _ port.RoleRepository = (*RoleRepository)(nil)
