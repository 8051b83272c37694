package customer

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MinPasswordLength = 15
	MaxAge            = 150
)

type Customer struct {
	CustomerID  int64     `json:"customerId"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Age         int       `json:"age"`
	DateOfBirth time.Time `json:"dateOfBirth"`
	Email       string    `json:"email"`
	Password    string    `json:"-"`
	IsProMember bool      `json:"isProMember"`
}

func NewCustomer(firstName, lastName string, age int, dateOfBirth time.Time, email, password string, isProMember bool) *Customer {
	return &Customer{
		FirstName:   firstName,
		LastName:    lastName,
		Age:         age,
		DateOfBirth: NormalizeDate(dateOfBirth),
		Email:       email,
		Password:    password,
		IsProMember: isProMember,
	}
}

// Clone returns a shallow copy; Customer holds no reference fields.
func (c *Customer) Clone() *Customer {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// NormalizeDate drops the clock part so dates of birth compare as calendar days.
func NormalizeDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func SameDate(a, b time.Time) bool {
	return NormalizeDate(a).Equal(NormalizeDate(b))
}

// HasText reports whether s holds anything besides whitespace.
func HasText(s string) bool {
	return strings.TrimSpace(s) != ""
}

func IsStrongPassword(password string) bool {
	return utf8.RuneCountInString(password) >= MinPasswordLength
}

// Validate checks the field rules a stored customer must satisfy.
func (c *Customer) Validate(now time.Time) error {
	if !HasText(c.FirstName) {
		return newFieldError("firstName", "first name cannot be empty")
	}
	if !HasText(c.LastName) {
		return newFieldError("lastName", "last name cannot be empty")
	}
	if c.Age < 0 {
		return newFieldError("age", "age cannot be negative")
	}
	if c.Age > MaxAge {
		return newFieldError("age", fmt.Sprintf("age cannot exceed %d", MaxAge))
	}
	if c.DateOfBirth.IsZero() || !c.DateOfBirth.Before(now) {
		return newFieldError("dateOfBirth", "date of birth must be in the past")
	}
	if !HasText(c.Email) {
		return newFieldError("email", "email cannot be empty")
	}
	if !IsStrongPassword(c.Password) {
		return &PasswordTooWeakError{Password: c.Password}
	}
	return nil
}
