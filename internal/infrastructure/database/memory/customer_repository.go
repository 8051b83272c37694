package memory

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"customer-engine/internal/domain/customer"
	"customer-engine/internal/pkg/apperrors"
)

// CustomerRepository keeps customers in insertion order. Ids come from a
// counter that only grows, so a deleted id is never handed out again.
type CustomerRepository struct {
	mu      sync.RWMutex
	records []*customer.Customer
	nextID  int64
	logger  *slog.Logger
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(logger *slog.Logger) *CustomerRepository {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		records: make([]*customer.Customer, 0),
		nextID:  1,
		logger:  logger.With("component", "MemoryCustomerRepository"),
	}
}

func (r *CustomerRepository) FindAll(ctx context.Context) ([]*customer.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customers := make([]*customer.Customer, 0, len(r.records))
	for _, rec := range r.records {
		customers = append(customers, rec.Clone())
	}
	r.logger.DebugContext(ctx, "Finished finding customers", slog.Int("count", len(customers)))
	return customers, nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(customerID); i >= 0 {
		return r.records[i].Clone(), nil
	}
	r.logger.DebugContext(ctx, "Customer not found", slog.Int64("customerID", customerID))
	return nil, customer.ErrNotFound
}

func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.records {
		if rec.Email == email {
			return rec.Clone(), nil
		}
	}
	r.logger.DebugContext(ctx, "Customer not found by email")
	return nil, customer.ErrNotFound
}

func (r *CustomerRepository) Save(ctx context.Context, cust *customer.Customer) error {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.records {
		if rec.Email == cust.Email && rec.CustomerID != cust.CustomerID {
			r.logger.WarnContext(ctx, "Rejected save due to duplicate email", slog.Int64("ownerID", rec.CustomerID))
			return &customer.AlreadyExistsError{Email: cust.Email}
		}
	}

	if cust.CustomerID == 0 {
		cust.CustomerID = r.nextID
		r.nextID++
		r.records = append(r.records, cust.Clone())
		r.logger.InfoContext(ctx, "Customer inserted successfully", slog.Int64("customerID", cust.CustomerID))
		return nil
	}

	i := r.indexOf(cust.CustomerID)
	if i < 0 {
		r.logger.WarnContext(ctx, "Update target missing, customer likely deleted", slog.Int64("customerID", cust.CustomerID))
		return customer.ErrNotFound
	}
	r.records[i] = cust.Clone()
	r.logger.InfoContext(ctx, "Customer updated successfully", slog.Int64("customerID", cust.CustomerID))
	return nil
}

func (r *CustomerRepository) DeleteByID(ctx context.Context, customerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(customerID)
	if i < 0 {
		return customer.ErrNotFound
	}
	r.records = append(r.records[:i], r.records[i+1:]...)
	r.logger.InfoContext(ctx, "Customer deleted successfully", slog.Int64("customerID", customerID))
	return nil
}

// indexOf must be called with mu held.
func (r *CustomerRepository) indexOf(customerID int64) int {
	for i, rec := range r.records {
		if rec.CustomerID == customerID {
			return i
		}
	}
	return -1
}
