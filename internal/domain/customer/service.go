package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"customer-engine/internal/event"
	"customer-engine/internal/infrastructure/monitoring"
	"customer-engine/internal/pkg/apperrors"
)

const (
	customerNotFound = "Customer not found by repository"
	callingFindAll   = "Calling repository FindAll"
)

// UpdateParams carries a partial update. Zero values mean "leave unchanged",
// except ProMember which is always compared, and Password where nil means absent.
type UpdateParams struct {
	FirstName   string
	LastName    string
	Age         int
	DateOfBirth time.Time
	Email       string
	Password    *string
	ProMember   bool
}

type CustomerService interface {
	FindAll(ctx context.Context) ([]*Customer, error)
	FindByID(ctx context.Context, customerID int64) (*Customer, error)
	FindByName(ctx context.Context, firstName, lastName string) ([]*Customer, error)
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	FindByDob(ctx context.Context, dob time.Time) ([]*Customer, error)
	FindByAge(ctx context.Context, age int) ([]*Customer, error)
	FindAllProMembers(ctx context.Context) ([]*Customer, error)
	FindAllNonProMembers(ctx context.Context) ([]*Customer, error)
	SortByDob(ctx context.Context, oldestFirst bool) ([]*Customer, error)
	SortByName(ctx context.Context, byLastName bool) ([]*Customer, error)
	CountAll(ctx context.Context) (int64, error)
	CountProMembers(ctx context.Context) (int64, error)
	CountNonProMembers(ctx context.Context) (int64, error)
	AddNew(ctx context.Context, customer *Customer) (*Customer, error)
	Update(ctx context.Context, customerID int64, params UpdateParams) (*Customer, error)
	DeleteByID(ctx context.Context, customerID int64) error
	DeleteByEmail(ctx context.Context, email string) error
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo   CustomerRepository
	pub    event.EventPublisher
	logger *slog.Logger
	now    func() time.Time
}

func NewCustomerService(repo CustomerRepository, eventPublisher event.EventPublisher, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerService, using default stderr handler")
	}

	if eventPublisher == nil {
		logger.Warn("Warning: No event publisher provided to NewCustomerService, events will be dropped")
		eventPublisher = event.NoopEventPublisher{}
	}

	return &customerService{
		repo:   repo,
		pub:    eventPublisher,
		logger: logger.With(slog.String("component", "customerService")),
		now:    time.Now,
	}
}

func NewCustomerEventPayload(cust *Customer) event.CustomerEventPayload {
	if cust == nil {
		return event.CustomerEventPayload{}
	}
	return event.CustomerEventPayload{
		CustomerID:  cust.CustomerID,
		FirstName:   cust.FirstName,
		LastName:    cust.LastName,
		Age:         cust.Age,
		DateOfBirth: cust.DateOfBirth,
		Email:       cust.Email,
		IsProMember: cust.IsProMember,
	}
}

func (s *customerService) FindAll(ctx context.Context) ([]*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to list all customers")

	customers, err := s.loadAll(ctx, "list customers")
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Successfully retrieved customers", slog.Int("count", len(customers)))
	return customers, nil
}

func (s *customerService) FindByID(ctx context.Context, customerID int64) (*Customer, error) {
	logCtx := s.logger.With(slog.Int64("customerID", customerID))
	logCtx.InfoContext(ctx, "Attempting to get customer by ID")

	customer, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logCtx.WarnContext(ctx, customerNotFound)
			return nil, &NotFoundError{Field: "id", Value: customerID}
		}
		logCtx.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}

	logCtx.InfoContext(ctx, "Successfully retrieved customer")
	return customer, nil
}

func (s *customerService) FindByName(ctx context.Context, firstName, lastName string) ([]*Customer, error) {
	logCtx := s.logger.With(slog.String("firstName", firstName), slog.String("lastName", lastName))
	logCtx.InfoContext(ctx, "Attempting to find customers by name")

	customers, err := s.filter(ctx, "find customers by name", func(c *Customer) bool {
		return c.FirstName == firstName && c.LastName == lastName
	})
	if err != nil {
		return nil, err
	}
	if len(customers) == 0 {
		logCtx.WarnContext(ctx, "No customer matched the given name")
		return nil, &NotFoundError{Field: "name", Value: firstName + " " + lastName}
	}

	logCtx.InfoContext(ctx, "Successfully found customers by name", slog.Int("count", len(customers)))
	return customers, nil
}

func (s *customerService) FindByEmail(ctx context.Context, email string) (*Customer, error) {
	logCtx := s.logger.With(slog.String("email", email))
	logCtx.InfoContext(ctx, "Attempting to find customer by email")

	customers, err := s.filter(ctx, "find customer by email", func(c *Customer) bool {
		return c.Email == email
	})
	if err != nil {
		return nil, err
	}
	if len(customers) == 0 {
		logCtx.WarnContext(ctx, "No customer matched the given email")
		return nil, &NotFoundError{Field: "email", Value: email}
	}
	if len(customers) > 1 {
		logCtx.ErrorContext(ctx, "Email uniqueness violated in store, returning first match", slog.Int("matches", len(customers)))
	}

	logCtx.InfoContext(ctx, "Successfully found customer by email", slog.Int64("customerID", customers[0].CustomerID))
	return customers[0], nil
}

func (s *customerService) FindByDob(ctx context.Context, dob time.Time) ([]*Customer, error) {
	logCtx := s.logger.With(slog.String("dateOfBirth", dob.Format(time.DateOnly)))
	logCtx.InfoContext(ctx, "Attempting to find customers by date of birth")

	customers, err := s.filter(ctx, "find customers by date of birth", func(c *Customer) bool {
		return SameDate(c.DateOfBirth, dob)
	})
	if err != nil {
		return nil, err
	}
	if len(customers) == 0 {
		logCtx.WarnContext(ctx, "No customer matched the given date of birth")
		return nil, &NotFoundError{Field: "date of birth", Value: dob.Format(time.DateOnly)}
	}

	logCtx.InfoContext(ctx, "Successfully found customers by date of birth", slog.Int("count", len(customers)))
	return customers, nil
}

func (s *customerService) FindByAge(ctx context.Context, age int) ([]*Customer, error) {
	logCtx := s.logger.With(slog.Int("age", age))
	logCtx.InfoContext(ctx, "Attempting to find customers by age")

	customers, err := s.filter(ctx, "find customers by age", func(c *Customer) bool {
		return c.Age == age
	})
	if err != nil {
		return nil, err
	}
	if len(customers) == 0 {
		logCtx.WarnContext(ctx, "No customer matched the given age")
		return nil, &NotFoundError{Field: "age", Value: age}
	}

	logCtx.InfoContext(ctx, "Successfully found customers by age", slog.Int("count", len(customers)))
	return customers, nil
}

func (s *customerService) FindAllProMembers(ctx context.Context) ([]*Customer, error) {
	return s.findByMembership(ctx, true)
}

func (s *customerService) FindAllNonProMembers(ctx context.Context) ([]*Customer, error) {
	return s.findByMembership(ctx, false)
}

func (s *customerService) findByMembership(ctx context.Context, proMember bool) ([]*Customer, error) {
	logCtx := s.logger.With(slog.Bool("proMember", proMember))
	logCtx.InfoContext(ctx, "Attempting to find customers by membership")

	customers, err := s.filter(ctx, "find customers by membership", func(c *Customer) bool {
		return c.IsProMember == proMember
	})
	if err != nil {
		return nil, err
	}
	if len(customers) == 0 {
		logCtx.WarnContext(ctx, "No customer in membership segment")
		return nil, &ProMemberNotFoundError{ProMember: proMember}
	}

	logCtx.InfoContext(ctx, "Successfully found customers by membership", slog.Int("count", len(customers)))
	return customers, nil
}

// SortByDob orders by date of birth. oldestFirst=true sorts by descending date
// value, so the most recent date of birth comes first.
func (s *customerService) SortByDob(ctx context.Context, oldestFirst bool) ([]*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to sort customers by date of birth", slog.Bool("oldestFirst", oldestFirst))

	customers, err := s.loadAll(ctx, "sort customers by date of birth")
	if err != nil {
		return nil, err
	}

	sort.SliceStable(customers, func(i, j int) bool {
		if oldestFirst {
			return customers[i].DateOfBirth.After(customers[j].DateOfBirth)
		}
		return customers[i].DateOfBirth.Before(customers[j].DateOfBirth)
	})
	return customers, nil
}

func (s *customerService) SortByName(ctx context.Context, byLastName bool) ([]*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to sort customers by name", slog.Bool("byLastName", byLastName))

	customers, err := s.loadAll(ctx, "sort customers by name")
	if err != nil {
		return nil, err
	}

	key := func(c *Customer) string { return c.FirstName }
	if byLastName {
		key = func(c *Customer) string { return c.LastName }
	}
	sort.SliceStable(customers, func(i, j int) bool {
		return key(customers[i]) < key(customers[j])
	})
	return customers, nil
}

func (s *customerService) CountAll(ctx context.Context) (int64, error) {
	customers, err := s.loadAll(ctx, "count customers")
	if err != nil {
		return 0, err
	}
	return int64(len(customers)), nil
}

func (s *customerService) CountProMembers(ctx context.Context) (int64, error) {
	return s.countMembership(ctx, true)
}

func (s *customerService) CountNonProMembers(ctx context.Context) (int64, error) {
	return s.countMembership(ctx, false)
}

func (s *customerService) countMembership(ctx context.Context, proMember bool) (int64, error) {
	customers, err := s.filter(ctx, "count customers by membership", func(c *Customer) bool {
		return c.IsProMember == proMember
	})
	if err != nil {
		return 0, err
	}
	return int64(len(customers)), nil
}

func (s *customerService) AddNew(ctx context.Context, customer *Customer) (*Customer, error) {
	if customer == nil {
		return nil, fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}
	logCtx := s.logger.With(slog.String("email", customer.Email))
	logCtx.InfoContext(ctx, "Attempting to create new customer")

	newCustomer := customer.Clone()
	newCustomer.CustomerID = 0
	newCustomer.DateOfBirth = NormalizeDate(newCustomer.DateOfBirth)

	logCtx.InfoContext(ctx, "Calling repository FindByEmail to check uniqueness")
	if err := s.ensureEmailAvailable(ctx, newCustomer.Email, 0); err != nil {
		return nil, err
	}

	if err := newCustomer.Validate(s.now()); err != nil {
		logCtx.WarnContext(ctx, "Validation failed for new customer", slog.Any("error", err))
		s.recordRejection(err)
		return nil, err
	}

	logCtx.InfoContext(ctx, "Calling repository Save")
	if err := s.repo.Save(ctx, newCustomer); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			logCtx.WarnContext(ctx, "Repository rejected duplicate email on insert")
			s.recordRejection(err)
			return nil, err
		}
		logCtx.ErrorContext(ctx, "Repository failed to save new customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new customer: %w", err)
	}
	logCtx = logCtx.With(slog.Int64("customerID", newCustomer.CustomerID))
	monitoring.RecordCustomerCreated()

	logCtx.InfoContext(ctx, "Successfully saved new customer, publishing creation event")
	if pubErr := s.pub.PublishCustomerCreated(ctx, event.NewCustomerCreatedEvent(NewCustomerEventPayload(newCustomer))); pubErr != nil {
		logCtx.ErrorContext(ctx, "Customer created, but FAILED to publish creation event", slog.Any("error", pubErr))
	}

	logCtx.InfoContext(ctx, "Successfully created new customer")
	return newCustomer, nil
}

// Update checks every supplied field against a working copy and persists only
// when all of them pass, so a rejected update leaves the stored record untouched.
func (s *customerService) Update(ctx context.Context, customerID int64, params UpdateParams) (*Customer, error) {
	logCtx := s.logger.With(slog.Int64("customerID", customerID))
	logCtx.InfoContext(ctx, "Attempting to update customer")

	logCtx.InfoContext(ctx, "Calling repository FindByID to get current customer data")
	current, err := s.repo.FindByID(WithConsistentRead(ctx), customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logCtx.WarnContext(ctx, "Customer not found by repository for update")
			return nil, &NotFoundError{Field: "id", Value: customerID}
		}
		logCtx.ErrorContext(ctx, "Repository error finding customer for update", slog.Any("error", err))
		return nil, fmt.Errorf("cannot find customer %d to update: %w", customerID, err)
	}

	working := current.Clone()
	var changed []string

	if HasText(params.FirstName) && params.FirstName != working.FirstName {
		working.FirstName = params.FirstName
		changed = append(changed, "firstName")
	}
	if HasText(params.LastName) && params.LastName != working.LastName {
		working.LastName = params.LastName
		changed = append(changed, "lastName")
	}
	if params.Age > MaxAge {
		logCtx.WarnContext(ctx, "Business rule failed: age out of range", slog.Int("age", params.Age))
		err := newFieldError("age", fmt.Sprintf("age cannot exceed %d", MaxAge))
		s.recordRejection(err)
		return nil, err
	}
	if params.Age > 0 && params.Age != working.Age {
		working.Age = params.Age
		changed = append(changed, "age")
	}
	if !params.DateOfBirth.IsZero() && params.DateOfBirth.Before(s.now()) {
		dob := NormalizeDate(params.DateOfBirth)
		if !dob.Equal(working.DateOfBirth) {
			working.DateOfBirth = dob
			changed = append(changed, "dateOfBirth")
		}
	}
	if HasText(params.Email) && params.Email != working.Email {
		if err := s.ensureEmailAvailable(ctx, params.Email, customerID); err != nil {
			return nil, err
		}
		working.Email = params.Email
		changed = append(changed, "email")
	}
	if params.Password != nil && *params.Password != working.Password {
		if !IsStrongPassword(*params.Password) {
			logCtx.WarnContext(ctx, "Business rule failed: new password is too weak")
			err := &PasswordTooWeakError{Password: *params.Password}
			s.recordRejection(err)
			return nil, err
		}
		working.Password = *params.Password
		changed = append(changed, "password")
	}
	if params.ProMember != working.IsProMember {
		working.IsProMember = params.ProMember
		changed = append(changed, "isProMember")
	}

	if len(changed) == 0 {
		logCtx.InfoContext(ctx, "No field change needed, skipping save")
		return current, nil
	}
	logCtx = logCtx.With(slog.Any("changedFields", changed))
	logCtx.InfoContext(ctx, "Fields updated in working copy, preparing to save")

	if err := s.repo.Save(ctx, working); err != nil {
		switch {
		case errors.Is(err, ErrAlreadyExists):
			logCtx.WarnContext(ctx, "Repository rejected duplicate email on update")
			s.recordRejection(err)
			return nil, err
		case errors.Is(err, ErrNotFound):
			logCtx.ErrorContext(ctx, "Customer disappeared before save completed")
			return nil, &NotFoundError{Field: "id", Value: customerID}
		}
		logCtx.ErrorContext(ctx, "Repository failed to save updated customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save updated customer %d: %w", customerID, err)
	}
	monitoring.RecordCustomerUpdated()

	logCtx.InfoContext(ctx, "Successfully updated customer in repository, publishing update event")
	if pubErr := s.pub.PublishCustomerUpdated(ctx, event.NewCustomerUpdatedEvent(NewCustomerEventPayload(working), changed)); pubErr != nil {
		logCtx.ErrorContext(ctx, "Customer updated, but FAILED to publish update event", slog.Any("error", pubErr))
	}

	logCtx.InfoContext(ctx, "Successfully updated customer")
	return working, nil
}

func (s *customerService) DeleteByID(ctx context.Context, customerID int64) error {
	logCtx := s.logger.With(slog.Int64("customerID", customerID))
	logCtx.InfoContext(ctx, "Attempting to delete customer by ID")

	return s.delete(ctx, logCtx, customerID, "")
}

func (s *customerService) DeleteByEmail(ctx context.Context, email string) error {
	logCtx := s.logger.With(slog.String("email", email))
	logCtx.InfoContext(ctx, "Attempting to delete customer by email")

	logCtx.InfoContext(ctx, "Calling repository FindByEmail")
	customer, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logCtx.WarnContext(ctx, customerNotFound)
			return &NotFoundError{Field: "email", Value: email}
		}
		logCtx.ErrorContext(ctx, "Repository error finding customer by email", slog.Any("error", err))
		return fmt.Errorf("failed to find customer by email %q: %w", email, err)
	}

	return s.delete(ctx, logCtx.With(slog.Int64("customerID", customer.CustomerID)), customer.CustomerID, email)
}

func (s *customerService) delete(ctx context.Context, logCtx *slog.Logger, customerID int64, email string) error {
	logCtx.InfoContext(ctx, "Calling repository DeleteByID")
	if err := s.repo.DeleteByID(ctx, customerID); err != nil {
		if errors.Is(err, ErrNotFound) {
			logCtx.InfoContext(ctx, "Customer already absent, nothing to delete")
			return nil
		}
		logCtx.ErrorContext(ctx, "Repository error deleting customer", slog.Any("error", err))
		return fmt.Errorf("failed to delete customer %d: %w", customerID, err)
	}
	monitoring.RecordCustomerDeleted()

	if pubErr := s.pub.PublishCustomerDeleted(ctx, event.NewCustomerDeletedEvent(customerID, email)); pubErr != nil {
		logCtx.ErrorContext(ctx, "Customer deleted, but FAILED to publish deletion event", slog.Any("error", pubErr))
	}

	logCtx.InfoContext(ctx, "Successfully deleted customer")
	return nil
}

// ensureEmailAvailable fails when email belongs to a customer other than ownerID.
func (s *customerService) ensureEmailAvailable(ctx context.Context, email string, ownerID int64) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		s.logger.ErrorContext(ctx, "Repository error checking email uniqueness", slog.Any("error", err))
		return fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if existing.CustomerID == ownerID {
		return nil
	}

	s.logger.WarnContext(ctx, "Business rule failed: email already in use", slog.String("email", email), slog.Int64("ownerID", existing.CustomerID))
	alreadyExists := &AlreadyExistsError{Email: email}
	s.recordRejection(alreadyExists)
	return alreadyExists
}

func (s *customerService) loadAll(ctx context.Context, op string) ([]*Customer, error) {
	s.logger.DebugContext(ctx, callingFindAll, slog.String("operation", op))
	customers, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing customers", slog.String("operation", op), slog.Any("error", err))
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	if customers == nil {
		customers = make([]*Customer, 0)
	}
	return customers, nil
}

func (s *customerService) filter(ctx context.Context, op string, keep func(*Customer) bool) ([]*Customer, error) {
	customers, err := s.loadAll(ctx, op)
	if err != nil {
		return nil, err
	}

	matched := make([]*Customer, 0, len(customers))
	for _, c := range customers {
		if keep(c) {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

func (s *customerService) recordRejection(err error) {
	var validationErr *apperrors.ValidationError
	switch {
	case errors.Is(err, ErrAlreadyExists):
		monitoring.RecordWriteRejected("email_taken")
	case errors.Is(err, ErrPasswordTooWeak):
		monitoring.RecordWriteRejected("weak_password")
	case errors.As(err, &validationErr):
		monitoring.RecordWriteRejected("invalid_" + validationErr.Field)
	}
}
