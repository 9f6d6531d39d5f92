package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"land-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CustomerRepository struct {
	DB *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{DB: db}
}

const customerSelect = `
	SELECT c.id, c.reference_id, c.customer_type, c.status, c.created_by, c.approved_by,
	       c.rejection_feedback, c.submitted_by, c.submitted_at, c.created_at, c.updated_at,
	       p.first_name, p.middle_name, p.last_name, p.national_id, p.date_of_birth, p.phone,
	       b.business_name, b.registration_number, b.tin, b.contact_person, b.phone,
	       g.agency_name, g.ministry, g.contact_person, g.phone
	FROM customers c
	LEFT JOIN customer_person_details p ON p.customer_id = c.id
	LEFT JOIN customer_business_details b ON b.customer_id = c.id
	LEFT JOIN customer_government_details g ON g.customer_id = c.id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (*models.Customer, error) {
	c := &models.Customer{}
	c.Type = models.EntityCustomer

	var (
		pFirst, pMiddle, pLast, pNationalID, pPhone *string
		pDOB                                        *time.Time
		bName, bReg, bTIN, bContact, bPhone         *string
		gName, gMinistry, gContact, gPhone          *string
	)

	err := row.Scan(&c.ID, &c.ReferenceID, &c.CustomerType, &c.Status, &c.CreatedBy, &c.ApprovedBy,
		&c.RejectionFeedback, &c.SubmittedBy, &c.SubmittedAt, &c.CreatedAt, &c.UpdatedAt,
		&pFirst, &pMiddle, &pLast, &pNationalID, &pDOB, &pPhone,
		&bName, &bReg, &bTIN, &bContact, &bPhone,
		&gName, &gMinistry, &gContact, &gPhone)
	if err != nil {
		return nil, err
	}

	// Only the variant matching the discriminant is attached. Anything else
	// leaves Detail nil so callers can spot orphaned rows.
	switch c.CustomerType {
	case models.CustomerPerson:
		if pFirst != nil {
			c.Detail = models.PersonDetail{
				FirstName: *pFirst, MiddleName: deref(pMiddle), LastName: deref(pLast),
				NationalID: deref(pNationalID), DateOfBirth: pDOB, Phone: deref(pPhone),
			}
		}
	case models.CustomerBusiness:
		if bName != nil {
			c.Detail = models.BusinessDetail{
				BusinessName: *bName, RegistrationNumber: deref(bReg), TIN: deref(bTIN),
				ContactPerson: deref(bContact), Phone: deref(bPhone),
			}
		}
	case models.CustomerGovernment:
		if gName != nil {
			c.Detail = models.GovernmentDetail{
				AgencyName: *gName, Ministry: deref(gMinistry),
				ContactPerson: deref(gContact), Phone: deref(gPhone),
			}
		}
	}

	return c, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Create inserts the customer row and its detail row. Call inside a
// transaction so a failed detail insert does not leave a bare customer.
func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	q := conn(ctx, r.DB)
	err := q.QueryRow(ctx,
		`INSERT INTO customers (customer_type, status, created_by)
		 VALUES ($1, $2, $3)
		 RETURNING id, reference_id, created_at, updated_at`,
		c.CustomerType, c.Status, c.CreatedBy,
	).Scan(&c.ID, &c.ReferenceID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return r.insertDetail(ctx, c.ID, c.Detail)
}

func (r *CustomerRepository) insertDetail(ctx context.Context, id uuid.UUID, detail models.CustomerDetail) error {
	q := conn(ctx, r.DB)
	var err error
	switch d := detail.(type) {
	case models.PersonDetail:
		_, err = q.Exec(ctx,
			`INSERT INTO customer_person_details
			 (customer_id, first_name, middle_name, last_name, national_id, date_of_birth, phone)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			id, d.FirstName, d.MiddleName, d.LastName, d.NationalID, d.DateOfBirth, d.Phone)
	case models.BusinessDetail:
		_, err = q.Exec(ctx,
			`INSERT INTO customer_business_details
			 (customer_id, business_name, registration_number, tin, contact_person, phone)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			id, d.BusinessName, d.RegistrationNumber, d.TIN, d.ContactPerson, d.Phone)
	case models.GovernmentDetail:
		_, err = q.Exec(ctx,
			`INSERT INTO customer_government_details
			 (customer_id, agency_name, ministry, contact_person, phone)
			 VALUES ($1, $2, $3, $4, $5)`,
			id, d.AgencyName, d.Ministry, d.ContactPerson, d.Phone)
	default:
		return fmt.Errorf("unsupported customer detail %T", detail)
	}
	if err != nil {
		return fmt.Errorf("failed to store customer detail: %w", err)
	}
	return nil
}

// Get returns one customer with its detail
func (r *CustomerRepository) Get(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	c, err := scanCustomer(conn(ctx, r.DB).QueryRow(ctx, customerSelect+` WHERE c.id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

// List returns customers newest first, optionally restricted to one status
func (r *CustomerRepository) List(ctx context.Context, status models.EntityStatus, limit, offset int) ([]*models.Customer, error) {
	query := customerSelect
	args := []any{}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" WHERE c.status=$%d", len(args))
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY c.created_at DESC, c.id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	return r.query(ctx, query, args...)
}

// ListSubmitted returns up to limit SUBMITTED customers, oldest submission first
func (r *CustomerRepository) ListSubmitted(ctx context.Context, limit int) ([]*models.Customer, error) {
	return r.query(ctx,
		customerSelect+` WHERE c.status='SUBMITTED' ORDER BY c.submitted_at, c.id LIMIT $1`, limit)
}

func (r *CustomerRepository) query(ctx context.Context, query string, args ...any) ([]*models.Customer, error) {
	rows, err := conn(ctx, r.DB).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// UpdateDetail replaces the type and detail of a customer that is still
// editable (DRAFT or REJECTED). Returns ErrStaleStatus otherwise.
func (r *CustomerRepository) UpdateDetail(ctx context.Context, c *models.Customer) error {
	q := conn(ctx, r.DB)
	err := q.QueryRow(ctx,
		`UPDATE customers SET customer_type=$2, updated_at=NOW()
		 WHERE id=$1 AND status IN ('DRAFT', 'REJECTED')
		 RETURNING updated_at`,
		c.ID, c.CustomerType,
	).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(notFound(err), ErrNotFound) {
			return ErrStaleStatus
		}
		return fmt.Errorf("failed to update customer: %w", err)
	}

	for _, stmt := range detailDeletes(models.EntityCustomer) {
		if _, err := q.Exec(ctx, stmt, c.ID); err != nil {
			return fmt.Errorf("failed to clear customer detail: %w", err)
		}
	}
	return r.insertDetail(ctx, c.ID, c.Detail)
}
