package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"customer-engine/internal/domain/customer"
	"customer-engine/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

const customerColumns = `id, first_name, last_name, age, date_of_birth, email, password, is_pro_member`

const (
	findAllCustomersQuery = `
        SELECT ` + customerColumns + `
        FROM customers
        ORDER BY id ASC`

	findCustomerByIDQuery = `
        SELECT ` + customerColumns + `
        FROM customers
        WHERE id = $1`

	findCustomerByEmailQuery = `
        SELECT ` + customerColumns + `
        FROM customers
        WHERE email = $1
        ORDER BY id ASC
        LIMIT 1`

	insertCustomerQuery = `
        INSERT INTO customers (first_name, last_name, age, date_of_birth, email, password, is_pro_member)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id`

	updateCustomerQuery = `
        UPDATE customers
        SET first_name = $1,
            last_name = $2,
            age = $3,
            date_of_birth = $4,
            email = $5,
            password = $6,
            is_pro_member = $7
        WHERE id = $8`

	deleteCustomerQuery = `DELETE FROM customers WHERE id = $1`
)

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		db:     db,
		logger: logger.With("component", "CustomerRepository"),
	}
}

func (r *CustomerRepository) FindAll(ctx context.Context) ([]*customer.Customer, error) {
	r.logger.DebugContext(ctx, "Attempting to find all customers")
	startTime := time.Now()

	rows, err := r.db.Query(ctx, findAllCustomersQuery)
	if err != nil {
		observeQuery("FindAllCustomers", startTime, err)
		r.logger.ErrorContext(ctx, "Failed to query customers", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query customers: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	customers := make([]*customer.Customer, 0)
	for rows.Next() {
		cust, err := scanCustomer(rows)
		if err != nil {
			observeQuery("FindAllCustomers", startTime, err)
			r.logger.ErrorContext(ctx, "Failed to scan customer row", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed to scan customer row: %w", apperrors.ErrDatabase, err)
		}
		customers = append(customers, cust)
	}

	err = rows.Err()
	observeQuery("FindAllCustomers", startTime, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error iterating customer rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: error iterating customer rows: %w", apperrors.ErrDatabase, err)
	}

	r.logger.DebugContext(ctx, "Finished finding customers", slog.Int("count", len(customers)))
	return customers, nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	logCtx := r.logger.With(slog.Int64("customerID", customerID))
	logCtx.DebugContext(ctx, "Attempting to find customer by ID")
	startTime := time.Now()

	cust, err := scanCustomer(r.db.QueryRow(ctx, findCustomerByIDQuery, customerID))
	observeQuery("FindCustomerByID", startTime, err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logCtx.WarnContext(ctx, "Customer not found")
			return nil, customer.ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Failed to query/scan customer by ID", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get customer by ID: %w", apperrors.ErrDatabase, err)
	}

	logCtx.DebugContext(ctx, "Customer found successfully")
	return cust, nil
}

func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	r.logger.DebugContext(ctx, "Attempting to find customer by email")
	startTime := time.Now()

	cust, err := scanCustomer(r.db.QueryRow(ctx, findCustomerByEmailQuery, email))
	observeQuery("FindCustomerByEmail", startTime, err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.DebugContext(ctx, "No customer holds the given email")
			return nil, customer.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query/scan customer by email", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get customer by email: %w", apperrors.ErrDatabase, err)
	}

	return cust, nil
}

func (r *CustomerRepository) Save(ctx context.Context, cust *customer.Customer) error {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}

	if cust.CustomerID == 0 {
		return r.createCustomer(ctx, cust)
	}
	return r.updateCustomer(ctx, cust)
}

func (r *CustomerRepository) createCustomer(ctx context.Context, cust *customer.Customer) error {
	r.logger.InfoContext(ctx, "Attempting to insert new customer")
	startTime := time.Now()

	var id int64
	err := r.db.QueryRow(ctx, insertCustomerQuery,
		cust.FirstName,
		cust.LastName,
		cust.Age,
		customer.NormalizeDate(cust.DateOfBirth),
		cust.Email,
		cust.Password,
		cust.IsProMember,
	).Scan(&id)
	observeQuery("InsertCustomer", startTime, err)

	if err != nil {
		translatedErr := translateDBError(err, r.logger)
		if errors.Is(translatedErr, apperrors.ErrAlreadyExists) {
			r.logger.WarnContext(ctx, "Failed to insert customer due to unique constraint violation")
			return &customer.AlreadyExistsError{Email: cust.Email}
		}
		r.logger.ErrorContext(ctx, "Failed to insert customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to insert customer: %w", apperrors.ErrDatabase, err)
	}

	cust.CustomerID = id
	r.logger.InfoContext(ctx, "Customer inserted successfully", slog.Int64("customerID", cust.CustomerID))
	return nil
}

func (r *CustomerRepository) updateCustomer(ctx context.Context, cust *customer.Customer) error {
	logCtx := r.logger.With(slog.Int64("customerID", cust.CustomerID))
	logCtx.InfoContext(ctx, "Attempting to update customer")
	startTime := time.Now()

	cmdTag, err := r.db.Exec(ctx, updateCustomerQuery,
		cust.FirstName,
		cust.LastName,
		cust.Age,
		customer.NormalizeDate(cust.DateOfBirth),
		cust.Email,
		cust.Password,
		cust.IsProMember,
		cust.CustomerID,
	)
	observeQuery("UpdateCustomer", startTime, err)

	if err != nil {
		translatedErr := translateDBError(err, logCtx)
		if errors.Is(translatedErr, apperrors.ErrAlreadyExists) {
			logCtx.WarnContext(ctx, "Failed to update customer due to unique constraint violation")
			return &customer.AlreadyExistsError{Email: cust.Email}
		}
		logCtx.ErrorContext(ctx, "Failed to update customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to update customer: %w", apperrors.ErrDatabase, err)
	}

	if cmdTag.RowsAffected() == 0 {
		logCtx.WarnContext(ctx, "Update affected zero rows, customer likely not found")
		return customer.ErrNotFound
	}

	logCtx.InfoContext(ctx, "Customer updated successfully")
	return nil
}

func (r *CustomerRepository) DeleteByID(ctx context.Context, customerID int64) error {
	logCtx := r.logger.With(slog.Int64("customerID", customerID))
	logCtx.InfoContext(ctx, "Attempting to delete customer")
	startTime := time.Now()

	cmdTag, err := r.db.Exec(ctx, deleteCustomerQuery, customerID)
	observeQuery("DeleteCustomer", startTime, err)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to execute delete customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to delete customer: %w", apperrors.ErrDatabase, err)
	}

	if cmdTag.RowsAffected() == 0 {
		logCtx.WarnContext(ctx, "Delete affected zero rows, customer likely not found")
		return customer.ErrNotFound
	}

	logCtx.InfoContext(ctx, "Customer deleted successfully")
	return nil
}

func scanCustomer(row pgx.Row) (*customer.Customer, error) {
	var cust customer.Customer
	err := row.Scan(
		&cust.CustomerID,
		&cust.FirstName,
		&cust.LastName,
		&cust.Age,
		&cust.DateOfBirth,
		&cust.Email,
		&cust.Password,
		&cust.IsProMember,
	)
	if err != nil {
		return nil, err
	}
	cust.DateOfBirth = customer.NormalizeDate(cust.DateOfBirth)
	return &cust, nil
}
