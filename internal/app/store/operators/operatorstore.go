// internal/app/store/operators/operatorstore.go
package operatorstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dalemusser/influencerhub/internal/app/store/docstore"
	"github.com/dalemusser/influencerhub/internal/app/system/authutil"
	"github.com/dalemusser/influencerhub/internal/app/system/normalize"
	"github.com/dalemusser/influencerhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/validate"
	"github.com/google/uuid"
)

// Collection holds operator accounts.
const Collection = "operators"

// IndexEmail is the unique index on email.
const IndexEmail = "uniq_operators_email"

var (
	// ErrDuplicateEmail is returned when an operator with the email exists.
	ErrDuplicateEmail = errors.New("an operator with this email already exists")
	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrDisabled is returned by Authenticate for a disabled account.
	ErrDisabled = errors.New("operator account is disabled")
	// ErrNotFound is returned when no operator has the id.
	ErrNotFound = errors.New("operator not found")

	errBadEmail  = errors.New("a valid email is required")
	errBadStatus = errors.New(`status must be "active"|"disabled"`)
)

type Store struct {
	c docstore.Collection
}

func New(db docstore.Store) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Create validates and hashes the password, then inserts an active operator.
func (s *Store) Create(ctx context.Context, email, name, password string) (models.Operator, error) {
	email = normalize.Email(email)
	if !validate.SimpleEmailValid(email) {
		return models.Operator{}, errBadEmail
	}
	if err := authutil.ValidatePassword(password); err != nil {
		return models.Operator{}, err
	}
	hash, err := authutil.HashPassword(password)
	if err != nil {
		return models.Operator{}, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.c.Insert(ctx, docstore.Doc{
		"email":         email,
		"name":          normalize.Name(name),
		"password_hash": hash,
		"status":        models.OperatorActive,
		"created_at":    docstore.ServerTime,
		"updated_at":    docstore.ServerTime,
	})
	if errors.Is(err, docstore.ErrDuplicate) {
		return models.Operator{}, ErrDuplicateEmail
	}
	if err != nil {
		return models.Operator{}, fmt.Errorf("create operator: %w", err)
	}

	op, _, err := s.GetByID(ctx, id)
	return op, err
}

// GetByID returns the operator and true, or false when none has the id.
func (s *Store) GetByID(ctx context.Context, id string) (models.Operator, bool, error) {
	snap, err := s.c.Get(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return models.Operator{}, false, nil
	}
	if err != nil {
		return models.Operator{}, false, err
	}
	op, err := decode(snap)
	if err != nil {
		return models.Operator{}, false, err
	}
	return op, true, nil
}

// GetByEmail looks up an operator by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.Operator, bool, error) {
	snaps, err := s.c.Find(ctx, docstore.Query{
		Where:   docstore.Equal("email", normalize.Email(email)),
		OrderBy: "email",
		Index:   IndexEmail,
		Limit:   1,
	})
	if err != nil {
		return models.Operator{}, false, err
	}
	if len(snaps) == 0 {
		return models.Operator{}, false, nil
	}
	op, err := decode(snaps[0])
	if err != nil {
		return models.Operator{}, false, err
	}
	return op, true, nil
}

// Authenticate checks the credentials. Unknown email and wrong password both
// yield ErrInvalidCredentials; a correct password on a disabled account
// yields ErrDisabled.
func (s *Store) Authenticate(ctx context.Context, email, password string) (models.Operator, error) {
	op, ok, err := s.GetByEmail(ctx, email)
	if err != nil {
		return models.Operator{}, err
	}
	if !ok {
		// Burn comparable time so unknown emails are not distinguishable.
		authutil.CheckPassword(password, dummyHash())
		return models.Operator{}, ErrInvalidCredentials
	}
	if !authutil.CheckPassword(password, op.PasswordHash) {
		return models.Operator{}, ErrInvalidCredentials
	}
	if !op.Active() {
		return models.Operator{}, ErrDisabled
	}
	return op, nil
}

// TouchLogin records a successful sign-in.
func (s *Store) TouchLogin(ctx context.Context, id string) error {
	err := s.c.Merge(ctx, id, docstore.Doc{"last_login_at": docstore.ServerTime})
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// SetPassword replaces the operator's password.
func (s *Store) SetPassword(ctx context.Context, id, password string) error {
	if err := authutil.ValidatePassword(password); err != nil {
		return err
	}
	hash, err := authutil.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	err = s.c.Merge(ctx, id, docstore.Doc{"password_hash": hash, "updated_at": docstore.ServerTime})
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// SetStatus enables or disables the operator.
func (s *Store) SetStatus(ctx context.Context, id, status string) error {
	if status != models.OperatorActive && status != models.OperatorDisabled {
		return errBadStatus
	}
	err := s.c.Merge(ctx, id, docstore.Doc{"status": status, "updated_at": docstore.ServerTime})
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

var (
	dummyOnce sync.Once
	dummy     string
)

// dummyHash is compared against for unknown emails.
func dummyHash() string {
	dummyOnce.Do(func() {
		dummy, _ = authutil.HashPassword(uuid.NewString())
	})
	return dummy
}

func decode(snap docstore.Snapshot) (models.Operator, error) {
	var op models.Operator
	if err := snap.Decode(&op); err != nil {
		return models.Operator{}, fmt.Errorf("decode operator %s: %w", snap.ID(), err)
	}
	op.ID = snap.ID()
	return op, nil
}
