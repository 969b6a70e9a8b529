package entity

import "time"

// User is the subset of user_mgmt the workflow engine reads: identity, role
// membership for notification fan-out, and an optional chat ID for push
// delivery.
type User struct {
	ID        string    `json:"id"`
	CompanyID int64     `json:"company_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	RoleID    string    `json:"role_id"`
	ChatID    string    `json:"chat_id,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Role is one row of role_master. IsPrivileged marks the super-admin role
// whose holders may use override approval where a workflow level enables it.
type Role struct {
	ID           string    `json:"id"`
	CompanyID    int64     `json:"company_id"`
	Name         string    `json:"name"`
	IsPrivileged bool      `json:"is_privileged"`
	CreatedAt    time.Time `json:"created_at"`
}
