package event

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CustomerEventPayload mirrors a stored customer without its password.
type CustomerEventPayload struct {
	CustomerID  int64     `json:"customerId"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Age         int       `json:"age"`
	DateOfBirth time.Time `json:"dateOfBirth"`
	Email       string    `json:"email"`
	IsProMember bool      `json:"isProMember"`
}

type CustomerCreatedEvent struct {
	EventID   string               `json:"eventId"`
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}

type CustomerUpdatedEvent struct {
	EventID       string               `json:"eventId"`
	Timestamp     time.Time            `json:"timestamp"`
	ChangedFields []string             `json:"changedFields"`
	Payload       CustomerEventPayload `json:"payload"`
}

type CustomerDeletedEvent struct {
	EventID    string    `json:"eventId"`
	Timestamp  time.Time `json:"timestamp"`
	CustomerID int64     `json:"customerId"`
	Email      string    `json:"email,omitempty"`
}

func NewCustomerCreatedEvent(payload CustomerEventPayload) CustomerCreatedEvent {
	return CustomerCreatedEvent{
		EventID:   uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

func NewCustomerUpdatedEvent(payload CustomerEventPayload, changedFields []string) CustomerUpdatedEvent {
	return CustomerUpdatedEvent{
		EventID:       uuid.NewString(),
		Timestamp:     time.Now().UTC(),
		ChangedFields: changedFields,
		Payload:       payload,
	}
}

func NewCustomerDeletedEvent(customerID int64, email string) CustomerDeletedEvent {
	return CustomerDeletedEvent{
		EventID:    uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		CustomerID: customerID,
		Email:      email,
	}
}

// NoopEventPublisher drops every event. Used when RabbitMQ is disabled.
type NoopEventPublisher struct{}

var _ EventPublisher = NoopEventPublisher{}

func (NoopEventPublisher) PublishCustomerCreated(context.Context, CustomerCreatedEvent) error {
	return nil
}

func (NoopEventPublisher) PublishCustomerUpdated(context.Context, CustomerUpdatedEvent) error {
	return nil
}

func (NoopEventPublisher) PublishCustomerDeleted(context.Context, CustomerDeletedEvent) error {
	return nil
}
