package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"customer-engine/internal/api/handler"
	"customer-engine/internal/api/handler/dto"
	"customer-engine/internal/domain/customer"
	"customer-engine/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCustomerService struct {
	mock.Mock
}

func (_m *MockCustomerService) list(method string, args ...interface{}) ([]*customer.Customer, error) {
	ret := _m.MethodCalled(method, args...)
	var r0 []*customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockCustomerService) one(method string, args ...interface{}) (*customer.Customer, error) {
	ret := _m.MethodCalled(method, args...)
	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockCustomerService) count(method string, args ...interface{}) (int64, error) {
	ret := _m.MethodCalled(method, args...)
	return ret.Get(0).(int64), ret.Error(1)
}

func (_m *MockCustomerService) FindAll(ctx context.Context) ([]*customer.Customer, error) {
	return _m.list("FindAll", ctx)
}

func (_m *MockCustomerService) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	return _m.one("FindByID", ctx, customerID)
}

func (_m *MockCustomerService) FindByName(ctx context.Context, firstName, lastName string) ([]*customer.Customer, error) {
	return _m.list("FindByName", ctx, firstName, lastName)
}

func (_m *MockCustomerService) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	return _m.one("FindByEmail", ctx, email)
}

func (_m *MockCustomerService) FindByDob(ctx context.Context, dob time.Time) ([]*customer.Customer, error) {
	return _m.list("FindByDob", ctx, dob)
}

func (_m *MockCustomerService) FindByAge(ctx context.Context, age int) ([]*customer.Customer, error) {
	return _m.list("FindByAge", ctx, age)
}

func (_m *MockCustomerService) FindAllProMembers(ctx context.Context) ([]*customer.Customer, error) {
	return _m.list("FindAllProMembers", ctx)
}

func (_m *MockCustomerService) FindAllNonProMembers(ctx context.Context) ([]*customer.Customer, error) {
	return _m.list("FindAllNonProMembers", ctx)
}

func (_m *MockCustomerService) SortByDob(ctx context.Context, oldestFirst bool) ([]*customer.Customer, error) {
	return _m.list("SortByDob", ctx, oldestFirst)
}

func (_m *MockCustomerService) SortByName(ctx context.Context, byLastName bool) ([]*customer.Customer, error) {
	return _m.list("SortByName", ctx, byLastName)
}

func (_m *MockCustomerService) CountAll(ctx context.Context) (int64, error) {
	return _m.count("CountAll", ctx)
}

func (_m *MockCustomerService) CountProMembers(ctx context.Context) (int64, error) {
	return _m.count("CountProMembers", ctx)
}

func (_m *MockCustomerService) CountNonProMembers(ctx context.Context) (int64, error) {
	return _m.count("CountNonProMembers", ctx)
}

func (_m *MockCustomerService) AddNew(ctx context.Context, cust *customer.Customer) (*customer.Customer, error) {
	return _m.one("AddNew", ctx, cust)
}

func (_m *MockCustomerService) Update(ctx context.Context, customerID int64, params customer.UpdateParams) (*customer.Customer, error) {
	return _m.one("Update", ctx, customerID, params)
}

func (_m *MockCustomerService) DeleteByID(ctx context.Context, customerID int64) error {
	ret := _m.Called(ctx, customerID)
	return ret.Error(0)
}

func (_m *MockCustomerService) DeleteByEmail(ctx context.Context, email string) error {
	ret := _m.Called(ctx, email)
	return ret.Error(0)
}

func newTestHandler() (*MockCustomerService, *handler.CustomerHandler) {
	mockService := new(MockCustomerService)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return mockService, handler.NewCustomerHandler(mockService, logger)
}

func withURLParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorDetail {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func sampleCustomer() *customer.Customer {
	c := customer.NewCustomer("Anna", "Zeller", 34, time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC), "anna@x.com", "a-sufficiently-long-pw", true)
	c.CustomerID = 7
	return c
}

func TestNewCustomerHandler_PanicsOnNil(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Panics(t, func() { handler.NewCustomerHandler(nil, logger) })
	assert.Panics(t, func() { handler.NewCustomerHandler(new(MockCustomerService), nil) })
}

func TestCreateCustomer(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockService, h := newTestHandler()
		body := `{"firstName":"Anna","lastName":"Zeller","age":34,"dateOfBirth":"1990-04-12","email":"anna@x.com","password":"a-sufficiently-long-pw","isProMember":true}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/customers", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		mockService.On("AddNew", mock.Anything, mock.MatchedBy(func(c *customer.Customer) bool {
			return c.Email == "anna@x.com" && c.CustomerID == 0 && c.IsProMember
		})).Return(sampleCustomer(), nil)

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "/api/v1/customers/7", rec.Header().Get("Location"))
		assert.NotContains(t, rec.Body.String(), "a-sufficiently-long-pw")
		var resp dto.CustomerResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(7), resp.CustomerID)
		assert.Equal(t, "1990-04-12", resp.DateOfBirth)
		mockService.AssertExpectations(t)
	})

	t.Run("invalid payload", func(t *testing.T) {
		mockService, h := newTestHandler()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/customers", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "VALIDATION_FAILED", decodeError(t, rec).Code)
		mockService.AssertNotCalled(t, "AddNew", mock.Anything, mock.Anything)
	})

	t.Run("malformed json", func(t *testing.T) {
		mockService, h := newTestHandler()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/customers", strings.NewReader(`{"firstName":`))
		rec := httptest.NewRecorder()

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_ARGUMENT", decodeError(t, rec).Code)
		mockService.AssertNotCalled(t, "AddNew", mock.Anything, mock.Anything)
	})

	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{"duplicate email", &customer.AlreadyExistsError{Email: "anna@x.com"}, http.StatusConflict, "ALREADY_EXISTS"},
		{"weak password", &customer.PasswordTooWeakError{Password: "short"}, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"storage failure", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockService, h := newTestHandler()
			body := `{"firstName":"Anna","lastName":"Zeller","age":34,"dateOfBirth":"1990-04-12","email":"anna@x.com","password":"short"}`
			req := httptest.NewRequest(http.MethodPost, "/api/v1/customers", strings.NewReader(body))
			rec := httptest.NewRecorder()
			mockService.On("AddNew", mock.Anything, mock.Anything).Return(nil, tc.serviceErr)

			h.CreateCustomer(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			detail := decodeError(t, rec)
			assert.Equal(t, tc.wantCode, detail.Code)
			assert.NotContains(t, detail.Message, "short")
			mockService.AssertExpectations(t)
		})
	}
}

func TestGetCustomer(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockService, h := newTestHandler()
		mockService.On("FindByID", mock.Anything, int64(7)).Return(sampleCustomer(), nil)

		req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/v1/customers/7", nil), "customerID", "7")
		rec := httptest.NewRecorder()
		h.GetCustomer(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.CustomerResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Zeller", resp.LastName)
		mockService.AssertExpectations(t)
	})

	t.Run("invalid customer ID", func(t *testing.T) {
		for _, raw := range []string{"abc", "0", "-3"} {
			mockService, h := newTestHandler()
			req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/v1/customers/"+raw, nil), "customerID", raw)
			rec := httptest.NewRecorder()
			h.GetCustomer(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code, raw)
			mockService.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
		}
	})

	t.Run("customer not found", func(t *testing.T) {
		mockService, h := newTestHandler()
		mockService.On("FindByID", mock.Anything, int64(2)).Return(nil, &customer.NotFoundError{Field: "id", Value: int64(2)})

		req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/v1/customers/2", nil), "customerID", "2")
		rec := httptest.NewRecorder()
		h.GetCustomer(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Code)
		mockService.AssertExpectations(t)
	})
}

func TestListCustomers(t *testing.T) {
	t.Run("empty store yields empty array", func(t *testing.T) {
		mockService, h := newTestHandler()
		mockService.On("FindAll", mock.Anything).Return([]*customer.Customer{}, nil)

		rec := httptest.NewRecorder()
		h.ListCustomers(rec, httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("storage failure hides details", func(t *testing.T) {
		mockService, h := newTestHandler()
		mockService.On("FindAll", mock.Anything).Return(nil, errors.New("pq: password authentication failed"))

		rec := httptest.NewRecorder()
		h.ListCustomers(rec, httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "pq:")
	})
}

func TestFindCustomersByName(t *testing.T) {
	mockService, h := newTestHandler()
	mockService.On("FindByName", mock.Anything, "Anna", "Zeller").Return([]*customer.Customer{sampleCustomer()}, nil)

	rec := httptest.NewRecorder()
	h.FindCustomersByName(rec, httptest.NewRequest(http.MethodGet, "/api/v1/customers/search/name?firstName=Anna&lastName=Zeller", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp []dto.CustomerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, int64(7), resp[0].CustomerID)
	mockService.AssertExpectations(t)
}

func TestFindCustomerByEmail(t *testing.T) {
	t.Run("escaped email is decoded", func(t *testing.T) {
		mockService, h := newTestHandler()
		mockService.On("FindByEmail", mock.Anything, "anna+1@x.com").Return(sampleCustomer(), nil)

		req := withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), "email", "anna%2B1@x.com")
		rec := httptest.NewRecorder()
		h.FindCustomerByEmail(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockService, h := newTestHandler()
		mockService.On("FindByEmail", mock.Anything, "nobody@x.com").Return(nil, customer.ErrNotFound)

		req := withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), "email", "nobody@x.com")
		rec := httptest.NewRecorder()
		h.FindCustomerByEmail(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestFindCustomersByDob(t *testing.T) {
	t.Run("parses date", func(t *testing.T) {
		mockService, h := newTestHandler()
		dob := time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)
		mockService.On("FindByDob", mock.Anything, dob).Return([]*customer.Customer{sampleCustomer()}, nil)

		req := withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), "dob", "1990-04-12")
		rec := httptest.NewRecorder()
		h.FindCustomersByDob(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("malformed date", func(t *testing.T) {
		mockService, h := newTestHandler()
		req := withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), "dob", "12/04/1990")
		rec := httptest.NewRecorder()
		h.FindCustomersByDob(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "FindByDob", mock.Anything, mock.Anything)
	})
}

func TestFindCustomersByAge(t *testing.T) {
	t.Run("no match is 404", func(t *testing.T) {
		mockService, h := newTestHandler()
		mockService.On("FindByAge", mock.Anything, 99).Return(nil, &customer.NotFoundError{Field: "age", Value: 99})

		req := withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), "age", "99")
		rec := httptest.NewRecorder()
		h.FindCustomersByAge(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non numeric age", func(t *testing.T) {
		_, h := newTestHandler()
		req := withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), "age", "thirty")
		rec := httptest.NewRecorder()
		h.FindCustomersByAge(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMembershipListings(t *testing.T) {
	mockService, h := newTestHandler()
	mockService.On("FindAllProMembers", mock.Anything).Return([]*customer.Customer{sampleCustomer()}, nil)
	mockService.On("FindAllNonProMembers", mock.Anything).Return(nil, &customer.ProMemberNotFoundError{ProMember: false})

	rec := httptest.NewRecorder()
	h.ListProMembers(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ListNonProMembers(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no non pro members found", decodeError(t, rec).Message)
	mockService.AssertExpectations(t)
}

func TestSortEndpoints(t *testing.T) {
	t.Run("flags default to false", func(t *testing.T) {
		mockService, h := newTestHandler()
		mockService.On("SortByDob", mock.Anything, false).Return([]*customer.Customer{}, nil)
		mockService.On("SortByName", mock.Anything, false).Return([]*customer.Customer{}, nil)

		rec := httptest.NewRecorder()
		h.SortCustomersByDob(rec, httptest.NewRequest(http.MethodGet, "/sorted/dob", nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		h.SortCustomersByName(rec, httptest.NewRequest(http.MethodGet, "/sorted/name", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("flags are parsed", func(t *testing.T) {
		mockService, h := newTestHandler()
		mockService.On("SortByDob", mock.Anything, true).Return([]*customer.Customer{}, nil)
		mockService.On("SortByName", mock.Anything, true).Return([]*customer.Customer{}, nil)

		rec := httptest.NewRecorder()
		h.SortCustomersByDob(rec, httptest.NewRequest(http.MethodGet, "/sorted/dob?oldestFirst=true", nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		h.SortCustomersByName(rec, httptest.NewRequest(http.MethodGet, "/sorted/name?byLastName=1", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("malformed flag", func(t *testing.T) {
		mockService, h := newTestHandler()
		rec := httptest.NewRecorder()
		h.SortCustomersByDob(rec, httptest.NewRequest(http.MethodGet, "/sorted/dob?oldestFirst=maybe", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "SortByDob", mock.Anything, mock.Anything)
	})
}

func TestCountEndpoints(t *testing.T) {
	mockService, h := newTestHandler()
	mockService.On("CountAll", mock.Anything).Return(int64(4), nil)
	mockService.On("CountProMembers", mock.Anything).Return(int64(2), nil)
	mockService.On("CountNonProMembers", mock.Anything).Return(int64(0), errors.New("boom"))

	rec := httptest.NewRecorder()
	h.CountCustomers(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.JSONEq(t, `{"count":4}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.CountProMembers(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.JSONEq(t, `{"count":2}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.CountNonProMembers(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	mockService.AssertExpectations(t)
}

func TestUpdateCustomer(t *testing.T) {
	t.Run("success passes partial fields", func(t *testing.T) {
		mockService, h := newTestHandler()
		updated := sampleCustomer()
		updated.LastName = "Smith"
		mockService.On("Update", mock.Anything, int64(7), mock.MatchedBy(func(p customer.UpdateParams) bool {
			return p.LastName == "Smith" && p.FirstName == "" && p.Password == nil && p.ProMember
		})).Return(updated, nil)

		req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"lastName":"Smith","isProMember":true}`))
		req = withURLParams(req, "customerID", "7")
		rec := httptest.NewRecorder()
		h.UpdateCustomer(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.CustomerResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Smith", resp.LastName)
		mockService.AssertExpectations(t)
	})

	t.Run("explicit password is forwarded", func(t *testing.T) {
		mockService, h := newTestHandler()
		mockService.On("Update", mock.Anything, int64(7), mock.MatchedBy(func(p customer.UpdateParams) bool {
			return p.Password != nil && *p.Password == "tiny"
		})).Return(nil, &customer.PasswordTooWeakError{Password: "tiny"})

		req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"password":"tiny"}`))
		req = withURLParams(req, "customerID", "7")
		rec := httptest.NewRecorder()
		h.UpdateCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.NotContains(t, rec.Body.String(), "tiny")
		mockService.AssertExpectations(t)
	})

	t.Run("email conflict", func(t *testing.T) {
		mockService, h := newTestHandler()
		mockService.On("Update", mock.Anything, int64(7), mock.Anything).Return(nil, &customer.AlreadyExistsError{Email: "ben@x.com"})

		req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"email":"ben@x.com"}`))
		req = withURLParams(req, "customerID", "7")
		rec := httptest.NewRecorder()
		h.UpdateCustomer(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		mockService, h := newTestHandler()
		req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"nickname":"x"}`))
		req = withURLParams(req, "customerID", "7")
		rec := httptest.NewRecorder()
		h.UpdateCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed date of birth", func(t *testing.T) {
		mockService, h := newTestHandler()
		req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"dateOfBirth":"yesterday"}`))
		req = withURLParams(req, "customerID", "7")
		rec := httptest.NewRecorder()
		h.UpdateCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "dateOfBirth", decodeError(t, rec).Field)
		mockService.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDeleteCustomer(t *testing.T) {
	t.Run("by id", func(t *testing.T) {
		mockService, h := newTestHandler()
		mockService.On("DeleteByID", mock.Anything, int64(7)).Return(nil)

		req := withURLParams(httptest.NewRequest(http.MethodDelete, "/", nil), "customerID", "7")
		rec := httptest.NewRecorder()
		h.DeleteCustomer(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
		mockService.AssertExpectations(t)
	})

	t.Run("by id storage failure", func(t *testing.T) {
		mockService, h := newTestHandler()
		mockService.On("DeleteByID", mock.Anything, int64(7)).Return(apperrors.WrapDatabaseError(errors.New("down"), "delete"))

		req := withURLParams(httptest.NewRequest(http.MethodDelete, "/", nil), "customerID", "7")
		rec := httptest.NewRecorder()
		h.DeleteCustomer(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("by email not found", func(t *testing.T) {
		mockService, h := newTestHandler()
		mockService.On("DeleteByEmail", mock.Anything, "gone@x.com").Return(&customer.NotFoundError{Field: "email", Value: "gone@x.com"})

		req := withURLParams(httptest.NewRequest(http.MethodDelete, "/", nil), "email", "gone@x.com")
		rec := httptest.NewRecorder()
		h.DeleteCustomerByEmail(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("by email success", func(t *testing.T) {
		mockService, h := newTestHandler()
		mockService.On("DeleteByEmail", mock.Anything, "anna@x.com").Return(nil)

		req := withURLParams(httptest.NewRequest(http.MethodDelete, "/", nil), "email", "anna@x.com")
		rec := httptest.NewRecorder()
		h.DeleteCustomerByEmail(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
