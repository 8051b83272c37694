package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"customer-engine/internal/api/handler/dto"
	"customer-engine/internal/domain/customer"
	"customer-engine/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
)

type CustomerHandler struct {
	service customer.CustomerService
	logger  *slog.Logger
}

func NewCustomerHandler(s customer.CustomerService, l *slog.Logger) *CustomerHandler {
	if s == nil {
		panic("customer service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &CustomerHandler{
		service: s,
		logger:  l.With("component", "CustomerHandler"),
	}
}

func getCustomerIDFromURL(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "customerID")
	if idStr == "" {
		return 0, fmt.Errorf("%w: customerID not found in URL path", apperrors.ErrInvalidArgument)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid customerID format in URL path: %s", apperrors.ErrInvalidArgument, idStr)
	}
	return id, nil
}

func getPathString(r *http.Request, name string) (string, error) {
	raw := chi.URLParam(r, name)
	value, err := url.PathUnescape(raw)
	if err != nil || strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%w: %s is missing or malformed in URL path", apperrors.ErrInvalidArgument, name)
	}
	return value, nil
}

func getBoolQuery(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: query parameter %s must be true or false", apperrors.ErrInvalidArgument, name)
	}
	return b, nil
}

func (h *CustomerHandler) logServiceError(ctx context.Context, msg string, err error) {
	level := slog.LevelError
	if isClientError(err) {
		level = slog.LevelWarn
	}
	h.logger.Log(ctx, level, msg, slog.Any("error", err))
}

func (h *CustomerHandler) respondCustomers(w http.ResponseWriter, r *http.Request, op string, customers []*customer.Customer, err error) {
	if err != nil {
		h.logServiceError(r.Context(), "Service failed to "+op, err)
		respondError(w, err)
		return
	}
	h.logger.InfoContext(r.Context(), "Customers retrieved successfully", slog.String("operation", op), slog.Int("count", len(customers)))
	respondJSON(w, http.StatusOK, dto.NewCustomerListResponse(customers))
}

func (h *CustomerHandler) respondCount(w http.ResponseWriter, r *http.Request, op string, count int64, err error) {
	if err != nil {
		h.logServiceError(r.Context(), "Service failed to "+op, err)
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.CountResponse{Count: count})
}

// ListCustomers handles GET /api/v1/customers
// @Summary List customers
// @Description Returns every stored customer in store order. An empty store yields an empty list.
// @Tags Customers
// @Produce json
// @Success 200 {array} dto.CustomerResponse "List of customers"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers [get]
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received list customers request")
	customers, err := h.service.FindAll(r.Context())
	h.respondCustomers(w, r, "list customers", customers, err)
}

// GetCustomer handles GET /api/v1/customers/{customerID}
// @Summary Retrieve customer details
// @Description Retrieves a specific customer by id.
// @Tags Customers
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 200 {object} dto.CustomerResponse "Customer details retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID format"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID} [get]
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.DebugContext(r.Context(), "Calling customer service FindByID", slog.Int64("customerID", customerID))
	domainCustomer, err := h.service.FindByID(r.Context(), customerID)
	if err != nil {
		h.logServiceError(r.Context(), "Service failed to get customer", err)
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer retrieved successfully", slog.Int64("customerID", customerID))
	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(domainCustomer))
}

// FindCustomersByName handles GET /api/v1/customers/search/name
// @Summary Find customers by name
// @Description Returns customers whose first and last name both match exactly.
// @Tags Customers
// @Produce json
// @Param firstName query string true "First name"
// @Param lastName query string true "Last name"
// @Success 200 {array} dto.CustomerResponse "Matching customers"
// @Failure 404 {object} dto.ErrorResponse "No customer with that name"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/search/name [get]
func (h *CustomerHandler) FindCustomersByName(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	customers, err := h.service.FindByName(r.Context(), q.Get("firstName"), q.Get("lastName"))
	h.respondCustomers(w, r, "find customers by name", customers, err)
}

// FindCustomerByEmail handles GET /api/v1/customers/search/email/{email}
// @Summary Find a customer by email
// @Tags Customers
// @Produce json
// @Param email path string true "Email address"
// @Success 200 {object} dto.CustomerResponse "Customer holding the email"
// @Failure 400 {object} dto.ErrorResponse "Missing email"
// @Failure 404 {object} dto.ErrorResponse "No customer with that email"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/search/email/{email} [get]
func (h *CustomerHandler) FindCustomerByEmail(w http.ResponseWriter, r *http.Request) {
	email, err := getPathString(r, "email")
	if err != nil {
		respondError(w, err)
		return
	}

	domainCustomer, err := h.service.FindByEmail(r.Context(), email)
	if err != nil {
		h.logServiceError(r.Context(), "Service failed to find customer by email", err)
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(domainCustomer))
}

// FindCustomersByDob handles GET /api/v1/customers/search/dob/{dob}
// @Summary Find customers by date of birth
// @Tags Customers
// @Produce json
// @Param dob path string true "Date of birth (YYYY-MM-DD)"
// @Success 200 {array} dto.CustomerResponse "Customers born on that date"
// @Failure 400 {object} dto.ErrorResponse "Malformed date"
// @Failure 404 {object} dto.ErrorResponse "No customer born on that date"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/search/dob/{dob} [get]
func (h *CustomerHandler) FindCustomersByDob(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "dob")
	dob, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		respondError(w, fmt.Errorf("%w: dob must be formatted as YYYY-MM-DD, got %q", apperrors.ErrInvalidArgument, raw))
		return
	}
	customers, err := h.service.FindByDob(r.Context(), dob)
	h.respondCustomers(w, r, "find customers by date of birth", customers, err)
}

// FindCustomersByAge handles GET /api/v1/customers/search/age/{age}
// @Summary Find customers by age
// @Tags Customers
// @Produce json
// @Param age path int true "Age in years"
// @Success 200 {array} dto.CustomerResponse "Customers of that age"
// @Failure 400 {object} dto.ErrorResponse "Malformed age"
// @Failure 404 {object} dto.ErrorResponse "No customer of that age"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/search/age/{age} [get]
func (h *CustomerHandler) FindCustomersByAge(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "age")
	age, err := strconv.Atoi(raw)
	if err != nil {
		respondError(w, fmt.Errorf("%w: age must be an integer, got %q", apperrors.ErrInvalidArgument, raw))
		return
	}
	customers, err := h.service.FindByAge(r.Context(), age)
	h.respondCustomers(w, r, "find customers by age", customers, err)
}

// ListProMembers handles GET /api/v1/customers/pro-members
// @Summary List pro members
// @Tags Customers
// @Produce json
// @Success 200 {array} dto.CustomerResponse "Pro members"
// @Failure 404 {object} dto.ErrorResponse "No pro members"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/pro-members [get]
func (h *CustomerHandler) ListProMembers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.FindAllProMembers(r.Context())
	h.respondCustomers(w, r, "list pro members", customers, err)
}

// ListNonProMembers handles GET /api/v1/customers/non-pro-members
// @Summary List non pro members
// @Tags Customers
// @Produce json
// @Success 200 {array} dto.CustomerResponse "Non pro members"
// @Failure 404 {object} dto.ErrorResponse "No non pro members"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/non-pro-members [get]
func (h *CustomerHandler) ListNonProMembers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.FindAllNonProMembers(r.Context())
	h.respondCustomers(w, r, "list non pro members", customers, err)
}

// SortCustomersByDob handles GET /api/v1/customers/sorted/dob
// @Summary Sort customers by date of birth
// @Description oldestFirst=true orders by descending date value, so the most recent date of birth comes first. Ties keep store order.
// @Tags Customers
// @Produce json
// @Param oldestFirst query bool false "Descending date order"
// @Success 200 {array} dto.CustomerResponse "Sorted customers"
// @Failure 400 {object} dto.ErrorResponse "Malformed flag"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/sorted/dob [get]
func (h *CustomerHandler) SortCustomersByDob(w http.ResponseWriter, r *http.Request) {
	oldestFirst, err := getBoolQuery(r, "oldestFirst")
	if err != nil {
		respondError(w, err)
		return
	}
	customers, err := h.service.SortByDob(r.Context(), oldestFirst)
	h.respondCustomers(w, r, "sort customers by date of birth", customers, err)
}

// SortCustomersByName handles GET /api/v1/customers/sorted/name
// @Summary Sort customers by name
// @Tags Customers
// @Produce json
// @Param byLastName query bool false "Sort by last name instead of first name"
// @Success 200 {array} dto.CustomerResponse "Sorted customers"
// @Failure 400 {object} dto.ErrorResponse "Malformed flag"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/sorted/name [get]
func (h *CustomerHandler) SortCustomersByName(w http.ResponseWriter, r *http.Request) {
	byLastName, err := getBoolQuery(r, "byLastName")
	if err != nil {
		respondError(w, err)
		return
	}
	customers, err := h.service.SortByName(r.Context(), byLastName)
	h.respondCustomers(w, r, "sort customers by name", customers, err)
}

// CountCustomers handles GET /api/v1/customers/count
// @Summary Count customers
// @Tags Customers
// @Produce json
// @Success 200 {object} dto.CountResponse "Number of customers"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/count [get]
func (h *CustomerHandler) CountCustomers(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.CountAll(r.Context())
	h.respondCount(w, r, "count customers", count, err)
}

// CountProMembers handles GET /api/v1/customers/count/pro-members
// @Summary Count pro members
// @Tags Customers
// @Produce json
// @Success 200 {object} dto.CountResponse "Number of pro members"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/count/pro-members [get]
func (h *CustomerHandler) CountProMembers(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.CountProMembers(r.Context())
	h.respondCount(w, r, "count pro members", count, err)
}

// CountNonProMembers handles GET /api/v1/customers/count/non-pro-members
// @Summary Count non pro members
// @Tags Customers
// @Produce json
// @Success 200 {object} dto.CountResponse "Number of non pro members"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/count/non-pro-members [get]
func (h *CustomerHandler) CountNonProMembers(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.CountNonProMembers(r.Context())
	h.respondCount(w, r, "count non pro members", count, err)
}

// CreateCustomer handles POST /api/v1/customers
// @Summary Create a new customer
// @Description Registers a customer. The email must be unused and the password at least 15 characters long.
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body dto.CreateCustomerRequest true "Customer creation request"
// @Success 201 {object} dto.CustomerResponse "Customer successfully created"
// @Failure 400 {object} dto.ErrorResponse "Invalid payload or password too weak"
// @Failure 409 {object} dto.ErrorResponse "Email already in use"
// @Failure 500 {object} dto.ErrorResponse "Internal server error during creation"
// @Router /customers [post]
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received create customer request")

	var req dto.CreateCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		h.logger.WarnContext(r.Context(), "Request validation failed", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.DebugContext(r.Context(), "Calling customer service AddNew")
	createdCustomer, err := h.service.AddNew(r.Context(), req.ToDomain())
	if err != nil {
		h.logServiceError(r.Context(), "Service failed to create customer", err)
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer created successfully", slog.Int64("customerID", createdCustomer.CustomerID))
	w.Header().Set("Location", fmt.Sprintf("/api/v1/customers/%d", createdCustomer.CustomerID))
	respondJSON(w, http.StatusCreated, dto.NewCustomerResponse(createdCustomer))
}

// UpdateCustomer handles PATCH /api/v1/customers/{customerID}
// @Summary Update a customer
// @Description Applies the supplied fields. Empty strings and a zero age leave values unchanged, a date of birth that is not in the past is ignored, and isProMember is always applied. If any supplied field is rejected nothing is stored.
// @Tags Customers
// @Accept json
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Param request body dto.UpdateCustomerRequest true "Fields to change"
// @Success 200 {object} dto.CustomerResponse "Customer after the update"
// @Failure 400 {object} dto.ErrorResponse "Invalid payload or password too weak"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 409 {object} dto.ErrorResponse "Email already in use by another customer"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID} [patch]
func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	var req dto.UpdateCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		h.logger.WarnContext(r.Context(), "Request validation failed", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.DebugContext(r.Context(), "Calling customer service Update", slog.Int64("customerID", customerID))
	updated, err := h.service.Update(r.Context(), customerID, req.ToParams())
	if err != nil {
		h.logServiceError(r.Context(), "Service failed to update customer", err)
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer updated successfully", slog.Int64("customerID", customerID))
	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(updated))
}

// DeleteCustomer handles DELETE /api/v1/customers/{customerID}
// @Summary Delete a customer by id
// @Description Removes the customer. Deleting an id that does not exist is not an error.
// @Tags Customers
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 204 "Customer deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID format"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID} [delete]
func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	if err := h.service.DeleteByID(r.Context(), customerID); err != nil {
		h.logServiceError(r.Context(), "Service failed to delete customer", err)
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer deleted", slog.Int64("customerID", customerID))
	w.WriteHeader(http.StatusNoContent)
}

// DeleteCustomerByEmail handles DELETE /api/v1/customers/by-email/{email}
// @Summary Delete a customer by email
// @Tags Customers
// @Param email path string true "Email address"
// @Success 204 "Customer deleted"
// @Failure 400 {object} dto.ErrorResponse "Missing email"
// @Failure 404 {object} dto.ErrorResponse "No customer with that email"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/by-email/{email} [delete]
func (h *CustomerHandler) DeleteCustomerByEmail(w http.ResponseWriter, r *http.Request) {
	email, err := getPathString(r, "email")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.service.DeleteByEmail(r.Context(), email); err != nil {
		h.logServiceError(r.Context(), "Service failed to delete customer by email", err)
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer deleted by email")
	w.WriteHeader(http.StatusNoContent)
}
