// Package repository provides read access to the customer, appointment and
// equipment data the analytics engine scores.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backflow_portal_backend/internal/analytics/domain"
	"backflow_portal_backend/platform/apperr"
	"backflow_portal_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	tenantNotFoundMessage = "organization not found"
	defaultSatisfaction   = 4.0
	daysPerYear           = 365.25
)

// Repo implements Reader with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	now  func() time.Time
	log  *logger.Logger
}

// New creates a new analytics repository.
func New(pool *pgxpool.Pool, log *logger.Logger) *Repo {
	return &Repo{pool: pool, now: time.Now, log: log}
}

// Compile-time check that Repo implements Reader.
var _ Reader = (*Repo)(nil)

// ListTenants returns every organization ordered by name.
func (r *Repo) ListTenants(ctx context.Context) ([]Tenant, error) {
	query := `
		SELECT id, name, COALESCE(notification_email, '')
		FROM organizations
		ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, r.fail("list tenants", err)
	}
	defer rows.Close()

	tenants := make([]Tenant, 0)
	for rows.Next() {
		var t Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.NotificationEmail); err != nil {
			return nil, r.fail("scan tenant", err)
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail("iterate tenants", err)
	}
	return tenants, nil
}

// GetTenant retrieves one organization.
func (r *Repo) GetTenant(ctx context.Context, tenantID uuid.UUID) (Tenant, error) {
	query := `
		SELECT id, name, COALESCE(notification_email, '')
		FROM organizations
		WHERE id = $1`

	var t Tenant
	err := r.pool.QueryRow(ctx, query, tenantID).Scan(&t.ID, &t.Name, &t.NotificationEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tenant{}, apperr.NotFound(tenantNotFoundMessage)
		}
		return Tenant{}, r.fail("get tenant", err)
	}
	return t, nil
}

// ListCustomerBehavior aggregates appointment and invoice history per customer.
func (r *Repo) ListCustomerBehavior(ctx context.Context, tenantID uuid.UUID) ([]domain.CustomerBehavior, error) {
	query := `
		WITH visit_stats AS (
			SELECT a.customer_id,
				COUNT(*) FILTER (WHERE a.status = 'completed') AS completed,
				COUNT(*) FILTER (WHERE a.status = 'cancelled') AS cancelled,
				COUNT(*) AS total,
				MAX(a.scheduled_at) FILTER (WHERE a.status = 'completed') AS last_service_at,
				MIN(a.scheduled_at) FILTER (WHERE a.status = 'completed') AS first_service_at,
				COALESCE(AVG(a.service_value) FILTER (WHERE a.status = 'completed'), 0)::float8 AS avg_value,
				AVG(a.customer_rating)::float8 AS avg_rating,
				COALESCE(ARRAY_AGG(DISTINCT a.service_type) FILTER (WHERE a.status = 'completed'), '{}') AS service_types,
				ARRAY_AGG(DISTINCT CASE
					WHEN EXTRACT(HOUR FROM a.scheduled_at) < 12 THEN 'morning'
					WHEN EXTRACT(HOUR FROM a.scheduled_at) < 17 THEN 'afternoon'
					ELSE 'evening'
				END) AS time_slots
			FROM appointments a
			WHERE a.organization_id = $1
			GROUP BY a.customer_id
		),
		invoice_stats AS (
			SELECT i.customer_id,
				COUNT(*) AS invoices,
				COUNT(*) FILTER (
					WHERE (i.paid_at IS NULL AND i.due_date < CURRENT_DATE)
						OR i.paid_at::date > i.due_date
				) AS late_invoices
			FROM invoices i
			WHERE i.organization_id = $1
			GROUP BY i.customer_id
		)
		SELECT c.id, c.name, COALESCE(c.phone, ''),
			COALESCE(v.completed, 0), COALESCE(v.cancelled, 0), COALESCE(v.total, 0),
			v.last_service_at, v.first_service_at,
			COALESCE(v.avg_value, 0), v.avg_rating,
			COALESCE(v.service_types, '{}'), COALESCE(v.time_slots, '{}'),
			COALESCE(inv.invoices, 0), COALESCE(inv.late_invoices, 0)
		FROM customers c
		LEFT JOIN visit_stats v ON v.customer_id = c.id
		LEFT JOIN invoice_stats inv ON inv.customer_id = c.id
		WHERE c.organization_id = $1
		ORDER BY c.name ASC`

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, r.fail("list customer behavior", err)
	}
	defer rows.Close()

	now := r.now()
	customers := make([]domain.CustomerBehavior, 0)
	for rows.Next() {
		var row behaviorRow
		if err := rows.Scan(
			&row.ID, &row.Name, &row.Phone,
			&row.Completed, &row.Cancelled, &row.Total,
			&row.LastServiceAt, &row.FirstServiceAt,
			&row.AvgValue, &row.AvgRating,
			&row.ServiceTypes, &row.TimeSlots,
			&row.Invoices, &row.LateInvoices,
		); err != nil {
			return nil, r.fail("scan customer behavior", err)
		}
		customers = append(customers, row.toDomain(now))
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail("iterate customer behavior", err)
	}
	return customers, nil
}

// ListEquipment returns active equipment for a tenant.
func (r *Repo) ListEquipment(ctx context.Context, tenantID uuid.UUID) ([]domain.Equipment, error) {
	query := `
		SELECT id, equipment_type, acquired_at, usage_reading::float8, last_maintenance_at
		FROM equipment
		WHERE organization_id = $1 AND retired_at IS NULL
		ORDER BY acquired_at ASC`

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, r.fail("list equipment", err)
	}
	defer rows.Close()

	now := r.now()
	items := make([]domain.Equipment, 0)
	for rows.Next() {
		var (
			eq              domain.Equipment
			acquiredAt      time.Time
			lastMaintenance *time.Time
		)
		if err := rows.Scan(&eq.ID, &eq.Type, &acquiredAt, &eq.UsageReading, &lastMaintenance); err != nil {
			return nil, r.fail("scan equipment", err)
		}
		eq.AgeYears = yearsBetween(acquiredAt, now)
		if lastMaintenance != nil {
			eq.LastMaintenance = *lastMaintenance
		}
		items = append(items, eq)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail("iterate equipment", err)
	}
	return items, nil
}

// AverageServiceValue returns the mean completed appointment value over the last year.
func (r *Repo) AverageServiceValue(ctx context.Context, tenantID uuid.UUID) (float64, error) {
	query := `
		SELECT COALESCE(AVG(service_value), 0)::float8
		FROM appointments
		WHERE organization_id = $1
			AND status = 'completed'
			AND scheduled_at >= now() - INTERVAL '1 year'`

	var avg float64
	if err := r.pool.QueryRow(ctx, query, tenantID).Scan(&avg); err != nil {
		return 0, r.fail("average service value", err)
	}
	return avg, nil
}

// fail logs a failed query and wraps err with the operation name.
func (r *Repo) fail(op string, err error) error {
	if r.log != nil {
		r.log.DatabaseError(op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

type behaviorRow struct {
	ID             uuid.UUID
	Name           string
	Phone          string
	Completed      int
	Cancelled      int
	Total          int
	LastServiceAt  *time.Time
	FirstServiceAt *time.Time
	AvgValue       float64
	AvgRating      *float64
	ServiceTypes   []string
	TimeSlots      []string
	Invoices       int
	LateInvoices   int
}

func (row behaviorRow) toDomain(now time.Time) domain.CustomerBehavior {
	b := domain.CustomerBehavior{
		CustomerID:          row.ID,
		CustomerName:        row.Name,
		ContactPhone:        row.Phone,
		AverageServiceValue: row.AvgValue,
		TotalServices:       row.Completed,
		CancellationRate:    cancellationRate(row.Cancelled, row.Total),
		PaymentHistory:      paymentCategory(row.Invoices, row.LateInvoices),
		SatisfactionScore:   defaultSatisfaction,
		PreferredTimeSlots:  make([]domain.TimeSlot, 0, len(row.TimeSlots)),
		ServiceTypes:        make([]domain.ServiceType, 0, len(row.ServiceTypes)),
	}
	if row.AvgRating != nil {
		b.SatisfactionScore = *row.AvgRating
	}
	if row.LastServiceAt != nil {
		b.LastServiceDate = *row.LastServiceAt
	}
	if row.FirstServiceAt != nil {
		b.AppointmentFrequency = visitsPerYear(row.Completed, *row.FirstServiceAt, now)
	}
	for _, slot := range row.TimeSlots {
		b.PreferredTimeSlots = append(b.PreferredTimeSlots, domain.TimeSlot(slot))
	}
	for _, st := range row.ServiceTypes {
		b.ServiceTypes = append(b.ServiceTypes, domain.ServiceType(st))
	}
	return b
}

// visitsPerYear spreads completed visits over the customer's tenure, counting
// at least one year so new customers are not inflated.
func visitsPerYear(completed int, firstService, now time.Time) float64 {
	years := yearsBetween(firstService, now)
	if years < 1 {
		years = 1
	}
	return float64(completed) / years
}

func cancellationRate(cancelled, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(cancelled) / float64(total)
}

func paymentCategory(invoices, late int) domain.PaymentHistory {
	if invoices == 0 {
		return domain.PaymentGood
	}
	ratio := float64(late) / float64(invoices)
	switch {
	case ratio == 0:
		return domain.PaymentExcellent
	case ratio <= 0.1:
		return domain.PaymentGood
	case ratio <= 0.3:
		return domain.PaymentFair
	default:
		return domain.PaymentPoor
	}
}

func yearsBetween(from, to time.Time) float64 {
	if to.Before(from) {
		return 0
	}
	return to.Sub(from).Hours() / 24 / daysPerYear
}
