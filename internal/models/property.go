package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PropertyType string

const (
	PropertyLand     PropertyType = "LAND"
	PropertyBuilding PropertyType = "BUILDING"
)

func (t PropertyType) Label() string {
	switch t {
	case PropertyLand:
		return "Land"
	case PropertyBuilding:
		return "Building"
	}
	return string(t)
}

// PropertyDetail is the type-specific payload of a property.
type PropertyDetail interface {
	PropertyType() PropertyType
	DisplayName() string
	isPropertyDetail()
}

type LandDetail struct {
	ParcelNumber string          `json:"parcel_number" validate:"required"`
	AreaSqm      decimal.Decimal `json:"area_sqm"`
	LandUse      string          `json:"land_use,omitempty"`
	Location     string          `json:"location,omitempty"`
}

func (LandDetail) PropertyType() PropertyType { return PropertyLand }
func (LandDetail) isPropertyDetail()          {}

func (d LandDetail) DisplayName() string {
	name := strings.TrimSpace(d.ParcelNumber)
	if loc := strings.TrimSpace(d.Location); loc != "" && name != "" {
		return name + " – " + loc
	}
	return name
}

type BuildingDetail struct {
	BuildingName string          `json:"building_name,omitempty"`
	PlotNumber   string          `json:"plot_number" validate:"required"`
	Floors       int             `json:"floors" validate:"gte=0"`
	FloorAreaSqm decimal.Decimal `json:"floor_area_sqm"`
	Location     string          `json:"location,omitempty"`
}

func (BuildingDetail) PropertyType() PropertyType { return PropertyBuilding }
func (BuildingDetail) isPropertyDetail()          {}

func (d BuildingDetail) DisplayName() string {
	if name := strings.TrimSpace(d.BuildingName); name != "" {
		return name
	}
	return strings.TrimSpace(d.PlotNumber)
}

type Property struct {
	EntityHeader
	PropertyType    PropertyType    `json:"property_type"`
	OwnerCustomerID *uuid.UUID      `json:"owner_customer_id,omitempty"`
	AssessedValue   decimal.Decimal `json:"assessed_value"`
	// Detail is nil only for orphaned rows loaded from storage.
	Detail PropertyDetail `json:"-"`
}

// NewProperty builds a draft property, rejecting a detail that does not match
// the discriminant.
func NewProperty(t PropertyType, detail PropertyDetail) (*Property, error) {
	if detail == nil {
		return nil, fmt.Errorf("property detail is required")
	}
	if detail.PropertyType() != t {
		return nil, fmt.Errorf("property type %s does not match %s detail", t, detail.PropertyType())
	}
	return &Property{
		EntityHeader: EntityHeader{Type: EntityProperty, Status: StatusDraft},
		PropertyType: t,
		Detail:       detail,
	}, nil
}

func (p Property) MarshalJSON() ([]byte, error) {
	type header EntityHeader
	return json.Marshal(struct {
		header
		PropertyType    PropertyType    `json:"property_type"`
		OwnerCustomerID *uuid.UUID      `json:"owner_customer_id,omitempty"`
		AssessedValue   decimal.Decimal `json:"assessed_value"`
		Detail          PropertyDetail  `json:"detail"`
	}{header(p.EntityHeader), p.PropertyType, p.OwnerCustomerID, p.AssessedValue, p.Detail})
}

type PropertyPhoto struct {
	ID          uuid.UUID `json:"id"`
	PropertyID  uuid.UUID `json:"property_id"`
	StorageKey  string    `json:"storage_key"`
	URL         string    `json:"url,omitempty"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	UploadedBy  uuid.UUID `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// PropertyRequest is the body for creating or updating a property.
type PropertyRequest struct {
	PropertyType    PropertyType    `json:"property_type" validate:"required,oneof=LAND BUILDING"`
	OwnerCustomerID *uuid.UUID      `json:"owner_customer_id,omitempty"`
	AssessedValue   decimal.Decimal `json:"assessed_value"`
	Land            *LandDetail     `json:"land,omitempty" validate:"omitempty"`
	Building        *BuildingDetail `json:"building,omitempty" validate:"omitempty"`
}

// Detail returns the single populated variant
func (r *PropertyRequest) Detail() (PropertyDetail, error) {
	var found []PropertyDetail
	if r.Land != nil {
		found = append(found, *r.Land)
	}
	if r.Building != nil {
		found = append(found, *r.Building)
	}
	if len(found) != 1 {
		return nil, fmt.Errorf("exactly one property detail must be provided, got %d", len(found))
	}
	if found[0].PropertyType() != r.PropertyType {
		return nil, fmt.Errorf("property_type %s does not match provided %s detail", r.PropertyType, found[0].PropertyType())
	}
	return found[0], nil
}
