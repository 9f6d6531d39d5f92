package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type CustomerType string

const (
	CustomerPerson     CustomerType = "PERSON"
	CustomerBusiness   CustomerType = "BUSINESS"
	CustomerGovernment CustomerType = "GOVERNMENT"
)

// Label is the human readable category shown in the review queue
func (t CustomerType) Label() string {
	switch t {
	case CustomerPerson:
		return "Individual"
	case CustomerBusiness:
		return "Business"
	case CustomerGovernment:
		return "Government"
	}
	return string(t)
}

// CustomerDetail is the type-specific payload of a customer. Only the variant
// types in this file implement it.
type CustomerDetail interface {
	CustomerType() CustomerType
	DisplayName() string
	isCustomerDetail()
}

type PersonDetail struct {
	FirstName   string     `json:"first_name" validate:"required"`
	MiddleName  string     `json:"middle_name,omitempty"`
	LastName    string     `json:"last_name" validate:"required"`
	NationalID  string     `json:"national_id,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Phone       string     `json:"phone,omitempty"`
}

func (PersonDetail) CustomerType() CustomerType { return CustomerPerson }
func (PersonDetail) isCustomerDetail()          {}

func (d PersonDetail) DisplayName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{d.FirstName, d.MiddleName, d.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

type BusinessDetail struct {
	BusinessName       string `json:"business_name" validate:"required"`
	RegistrationNumber string `json:"registration_number,omitempty"`
	TIN                string `json:"tin,omitempty"`
	ContactPerson      string `json:"contact_person,omitempty"`
	Phone              string `json:"phone,omitempty"`
}

func (BusinessDetail) CustomerType() CustomerType { return CustomerBusiness }
func (BusinessDetail) isCustomerDetail()          {}
func (d BusinessDetail) DisplayName() string      { return strings.TrimSpace(d.BusinessName) }

type GovernmentDetail struct {
	AgencyName    string `json:"agency_name" validate:"required"`
	Ministry      string `json:"ministry,omitempty"`
	ContactPerson string `json:"contact_person,omitempty"`
	Phone         string `json:"phone,omitempty"`
}

func (GovernmentDetail) CustomerType() CustomerType { return CustomerGovernment }
func (GovernmentDetail) isCustomerDetail()          {}
func (d GovernmentDetail) DisplayName() string      { return strings.TrimSpace(d.AgencyName) }

type Customer struct {
	EntityHeader
	CustomerType CustomerType `json:"customer_type"`
	// Detail is nil only for orphaned rows loaded from storage.
	Detail CustomerDetail `json:"-"`
}

// NewCustomer builds a draft customer, rejecting a detail that does not match
// the discriminant.
func NewCustomer(t CustomerType, detail CustomerDetail) (*Customer, error) {
	if detail == nil {
		return nil, fmt.Errorf("customer detail is required")
	}
	if detail.CustomerType() != t {
		return nil, fmt.Errorf("customer type %s does not match %s detail", t, detail.CustomerType())
	}
	return &Customer{
		EntityHeader: EntityHeader{Type: EntityCustomer, Status: StatusDraft},
		CustomerType: t,
		Detail:       detail,
	}, nil
}

func (c Customer) MarshalJSON() ([]byte, error) {
	type header EntityHeader
	return json.Marshal(struct {
		header
		CustomerType CustomerType   `json:"customer_type"`
		Detail       CustomerDetail `json:"detail"`
	}{header(c.EntityHeader), c.CustomerType, c.Detail})
}

// CustomerRequest is the body for creating or updating a customer. Exactly
// one of the variant payloads must be present and it must match CustomerType.
type CustomerRequest struct {
	CustomerType CustomerType      `json:"customer_type" validate:"required,oneof=PERSON BUSINESS GOVERNMENT"`
	Person       *PersonDetail     `json:"person,omitempty" validate:"omitempty"`
	Business     *BusinessDetail   `json:"business,omitempty" validate:"omitempty"`
	Government   *GovernmentDetail `json:"government,omitempty" validate:"omitempty"`
}

// Detail returns the single populated variant
func (r *CustomerRequest) Detail() (CustomerDetail, error) {
	var found []CustomerDetail
	if r.Person != nil {
		found = append(found, *r.Person)
	}
	if r.Business != nil {
		found = append(found, *r.Business)
	}
	if r.Government != nil {
		found = append(found, *r.Government)
	}
	if len(found) != 1 {
		return nil, fmt.Errorf("exactly one customer detail must be provided, got %d", len(found))
	}
	if found[0].CustomerType() != r.CustomerType {
		return nil, fmt.Errorf("customer_type %s does not match provided %s detail", r.CustomerType, found[0].CustomerType())
	}
	return found[0], nil
}
