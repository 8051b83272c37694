package customer

import (
	"context"
	"fmt"

	"customer-engine/internal/pkg/apperrors"
)

type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

var (
	ErrNotFound error = &kindError{msg: "customer not found", kind: apperrors.ErrNotFound}

	ErrAlreadyExists error = &kindError{msg: "customer already exists", kind: apperrors.ErrAlreadyExists}

	ErrPasswordTooWeak error = &kindError{msg: "password too weak", kind: apperrors.ErrValidation}

	ErrProMemberNotFound error = &kindError{msg: "no customers in membership segment", kind: apperrors.ErrNotFound}
)

// NotFoundError reports which lookup key produced no match.
type NotFoundError struct {
	Field string
	Value any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no customer found with %s: %v", e.Field, e.Value)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

type AlreadyExistsError struct {
	Email string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("customer with email %q already exists", e.Email)
}

func (e *AlreadyExistsError) Unwrap() error { return ErrAlreadyExists }

// PasswordTooWeakError keeps the rejected value for the caller but never prints it.
type PasswordTooWeakError struct {
	Password string
}

func (e *PasswordTooWeakError) Error() string {
	return fmt.Sprintf("password is too weak: it must be at least %d characters long", MinPasswordLength)
}

func (e *PasswordTooWeakError) Unwrap() error { return ErrPasswordTooWeak }

type ProMemberNotFoundError struct {
	ProMember bool
}

func (e *ProMemberNotFoundError) Error() string {
	if e.ProMember {
		return "no pro members found"
	}
	return "no non pro members found"
}

func (e *ProMemberNotFoundError) Unwrap() error { return ErrProMemberNotFound }

func newFieldError(field, message string) error {
	return apperrors.NewValidationError(field, message)
}

// CustomerRepository is a plain record store. Implementations must reject a Save
// that would leave two customers sharing an email with an error matching ErrAlreadyExists.
type CustomerRepository interface {
	FindAll(ctx context.Context) ([]*Customer, error)

	FindByID(ctx context.Context, customerID int64) (*Customer, error)

	FindByEmail(ctx context.Context, email string) (*Customer, error)

	// Save inserts when CustomerID is zero and assigns the new id, otherwise replaces by id.
	Save(ctx context.Context, customer *Customer) error

	DeleteByID(ctx context.Context, customerID int64) error
}

type consistentReadKey struct{}

// WithConsistentRead marks ctx so that reads made with it skip any cache in
// front of the store. Read-modify-write paths use it to load their base record.
func WithConsistentRead(ctx context.Context) context.Context {
	return context.WithValue(ctx, consistentReadKey{}, true)
}

func ConsistentReadRequested(ctx context.Context) bool {
	v, _ := ctx.Value(consistentReadKey{}).(bool)
	return v
}
