// internal/domain/models/operator.go
package models

import "time"

// Operator statuses.
const (
	OperatorActive   = "active"
	OperatorDisabled = "disabled"
)

// Operator is a dashboard account. Operators sign in with email + password
// and are the only principals allowed to read or change the roster.
type Operator struct {
	ID           string     `bson:"-" json:"id"`
	Email        string     `bson:"email" json:"email"` // lowercase, unique
	Name         string     `bson:"name,omitempty" json:"name,omitempty"`
	PasswordHash string     `bson:"password_hash" json:"-"`
	Status       string     `bson:"status" json:"status"` // active | disabled
	LastLoginAt  *time.Time `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
	CreatedAt    *time.Time `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt    *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// Active reports whether the operator may sign in.
func (o Operator) Active() bool { return o.Status == OperatorActive }
