package dto

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"customer-engine/internal/domain/customer"
	"customer-engine/internal/pkg/apperrors"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type CreateCustomerRequest struct {
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	Age         int    `json:"age" validate:"gte=0,lte=150"`
	DateOfBirth string `json:"dateOfBirth" validate:"required,datetime=2006-01-02" example:"1990-04-12"`
	Email       string `json:"email" validate:"required"`
	Password    string `json:"password" validate:"required"`
	IsProMember bool   `json:"isProMember"`
}

func (r *CreateCustomerRequest) Validate() error {
	return validateStruct(r)
}

// ToDomain assumes Validate has passed.
func (r *CreateCustomerRequest) ToDomain() *customer.Customer {
	dob, _ := time.Parse(time.DateOnly, r.DateOfBirth)
	return customer.NewCustomer(r.FirstName, r.LastName, r.Age, dob, r.Email, r.Password, r.IsProMember)
}

// UpdateCustomerRequest is a partial update. Empty strings and a zero age
// leave the stored value alone; isProMember is always applied.
type UpdateCustomerRequest struct {
	FirstName   string  `json:"firstName,omitempty"`
	LastName    string  `json:"lastName,omitempty"`
	Age         int     `json:"age,omitempty" validate:"gte=0,lte=150"`
	DateOfBirth string  `json:"dateOfBirth,omitempty" validate:"omitempty,datetime=2006-01-02" example:"1990-04-12"`
	Email       string  `json:"email,omitempty"`
	Password    *string `json:"password,omitempty"`
	IsProMember bool    `json:"isProMember"`
}

func (r *UpdateCustomerRequest) Validate() error {
	return validateStruct(r)
}

func (r *UpdateCustomerRequest) ToParams() customer.UpdateParams {
	var dob time.Time
	if r.DateOfBirth != "" {
		dob, _ = time.Parse(time.DateOnly, r.DateOfBirth)
	}
	return customer.UpdateParams{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Age:         r.Age,
		DateOfBirth: dob,
		Email:       r.Email,
		Password:    r.Password,
		ProMember:   r.IsProMember,
	}
}

// CustomerResponse is the public view of a customer. It has no password field.
type CustomerResponse struct {
	CustomerID  int64  `json:"customerId"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Age         int    `json:"age"`
	DateOfBirth string `json:"dateOfBirth" example:"1990-04-12"`
	Email       string `json:"email"`
	IsProMember bool   `json:"isProMember"`
}

func NewCustomerResponse(cust *customer.Customer) CustomerResponse {
	if cust == nil {
		return CustomerResponse{}
	}
	return CustomerResponse{
		CustomerID:  cust.CustomerID,
		FirstName:   cust.FirstName,
		LastName:    cust.LastName,
		Age:         cust.Age,
		DateOfBirth: cust.DateOfBirth.Format(time.DateOnly),
		Email:       cust.Email,
		IsProMember: cust.IsProMember,
	}
}

func NewCustomerListResponse(customers []*customer.Customer) []CustomerResponse {
	resp := make([]CustomerResponse, len(customers))
	for i, cust := range customers {
		resp[i] = NewCustomerResponse(cust)
	}
	return resp
}

type CountResponse struct {
	Count int64 `json:"count"`
}

type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.NewValidationError("", err.Error())
	}
	fe := fieldErrs[0]
	return apperrors.NewValidationError(fe.Field(), messageFor(fe))
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "datetime":
		return "must be a date formatted as YYYY-MM-DD"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	default:
		return "invalid value"
	}
}
