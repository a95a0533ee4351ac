package repository

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/rand"
	"strings"
	"time"

	"backflow_portal_backend/internal/analytics/domain"

	"github.com/google/uuid"
	"github.com/jaswdr/faker"
)

const (
	demoCustomersPerTenant = 40
	demoEquipmentPerTenant = 12
)

var demoNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("backflow-portal-demo"))

var demoEquipmentTypes = []string{"Service Vehicle", "Test Kit", "Safety Equipment", "Pressure Gauge"}

// DemoSource fabricates reproducible sample data. The same seed and tenant
// always produce the same records.
type DemoSource struct {
	seed    int64
	tenants int
	now     func() time.Time
}

// DemoOption configures a DemoSource.
type DemoOption func(*DemoSource)

// WithDemoClock pins the reference time used for dates.
func WithDemoClock(now func() time.Time) DemoOption {
	return func(d *DemoSource) { d.now = now }
}

// WithDemoTenants sets how many tenants ListTenants returns.
func WithDemoTenants(n int) DemoOption {
	return func(d *DemoSource) { d.tenants = n }
}

// NewDemoSource creates a fabricated data source.
func NewDemoSource(seed int64, opts ...DemoOption) *DemoSource {
	d := &DemoSource{seed: seed, tenants: 3, now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Compile-time check that DemoSource implements Reader.
var _ Reader = (*DemoSource)(nil)

// DemoTenantID returns the ID of the i-th demo tenant.
func DemoTenantID(i int) uuid.UUID {
	return uuid.NewSHA1(demoNamespace, []byte(fmt.Sprintf("tenant-%d", i)))
}

// ListTenants returns the fixed demo tenants.
func (d *DemoSource) ListTenants(ctx context.Context) ([]Tenant, error) {
	tenants := make([]Tenant, 0, d.tenants)
	for i := 0; i < d.tenants; i++ {
		t, err := d.GetTenant(ctx, DemoTenantID(i))
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, nil
}

// GetTenant fabricates an organization for any ID.
func (d *DemoSource) GetTenant(ctx context.Context, tenantID uuid.UUID) (Tenant, error) {
	if err := ctx.Err(); err != nil {
		return Tenant{}, err
	}
	fake := faker.NewWithSeed(rand.NewSource(d.tenantSeed(tenantID, "tenant")))
	name := fake.Company().Name() + " Backflow"
	return Tenant{
		ID:                tenantID,
		Name:              name,
		NotificationEmail: "alerts@" + slug(name) + ".example.com",
	}, nil
}

// ListCustomerBehavior fabricates customer histories for a tenant.
func (d *DemoSource) ListCustomerBehavior(ctx context.Context, tenantID uuid.UUID) ([]domain.CustomerBehavior, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.customers(tenantID)
}

// ListEquipment fabricates the tenant's equipment roster.
func (d *DemoSource) ListEquipment(ctx context.Context, tenantID uuid.UUID) ([]domain.Equipment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(d.tenantSeed(tenantID, "equipment")))
	now := d.now()
	items := make([]domain.Equipment, 0, demoEquipmentPerTenant)
	for i := 0; i < demoEquipmentPerTenant; i++ {
		id, err := demoID(rng, "equipment")
		if err != nil {
			return nil, err
		}
		equipmentType := demoEquipmentTypes[rng.Intn(len(demoEquipmentTypes))]
		usage := float64(rng.Intn(5000))
		if equipmentType == "Service Vehicle" {
			usage = float64(rng.Intn(120000))
		}
		items = append(items, domain.Equipment{
			ID:              id,
			Type:            equipmentType,
			AgeYears:        round1(rng.Float64() * 10),
			UsageReading:    usage,
			LastMaintenance: now.AddDate(0, 0, -rng.Intn(400)),
		})
	}
	return items, nil
}

// AverageServiceValue averages the fabricated customers' ticket values.
func (d *DemoSource) AverageServiceValue(ctx context.Context, tenantID uuid.UUID) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	customers, err := d.customers(tenantID)
	if err != nil {
		return 0, err
	}
	if len(customers) == 0 {
		return 0, nil
	}
	var sum float64
	for _, c := range customers {
		sum += c.AverageServiceValue
	}
	return math.Round(sum/float64(len(customers))*100) / 100, nil
}

func (d *DemoSource) customers(tenantID uuid.UUID) ([]domain.CustomerBehavior, error) {
	seed := d.tenantSeed(tenantID, "customers")
	rng := rand.New(rand.NewSource(seed))
	fake := faker.NewWithSeed(rand.NewSource(seed))
	now := d.now()

	customers := make([]domain.CustomerBehavior, 0, demoCustomersPerTenant)
	for i := 0; i < demoCustomersPerTenant; i++ {
		id, err := demoID(rng, "customer")
		if err != nil {
			return nil, err
		}
		customers = append(customers, domain.CustomerBehavior{
			CustomerID:           id,
			CustomerName:         fake.Person().Name(),
			ContactPhone:         fake.Phone().Number(),
			AppointmentFrequency: round1(0.2 + rng.Float64()*2.8),
			AverageServiceValue:  math.Round((85+rng.Float64()*315)*100) / 100,
			LastServiceDate:      now.AddDate(0, 0, -rng.Intn(540)),
			TotalServices:        1 + rng.Intn(20),
			CancellationRate:     math.Round(rng.Float64()*40) / 100,
			PaymentHistory:       pickPayment(rng),
			SatisfactionScore:    round1(1 + rng.Float64()*4),
			PreferredTimeSlots:   pickSlots(rng),
			ServiceTypes:         pickServiceTypes(rng),
		})
	}
	return customers, nil
}

func demoID(r io.Reader, kind string) (uuid.UUID, error) {
	id, err := uuid.NewRandomFromReader(r)
	if err != nil {
		return uuid.Nil, fmt.Errorf("demo %s id: %w", kind, err)
	}
	return id, nil
}

// tenantSeed derives a per-tenant, per-stream seed so streams are reproducible
// and independent of call order.
func (d *DemoSource) tenantSeed(tenantID uuid.UUID, stream string) int64 {
	derived := uuid.NewSHA1(tenantID, []byte(stream))
	return d.seed ^ int64(binary.BigEndian.Uint64(derived[:8]))
}

func pickPayment(rng *rand.Rand) domain.PaymentHistory {
	switch n := rng.Intn(100); {
	case n < 40:
		return domain.PaymentExcellent
	case n < 75:
		return domain.PaymentGood
	case n < 90:
		return domain.PaymentFair
	default:
		return domain.PaymentPoor
	}
}

func pickSlots(rng *rand.Rand) []domain.TimeSlot {
	all := []domain.TimeSlot{domain.SlotMorning, domain.SlotAfternoon, domain.SlotEvening}
	out := make([]domain.TimeSlot, 0, len(all))
	for _, slot := range all {
		if rng.Intn(2) == 0 {
			out = append(out, slot)
		}
	}
	if len(out) == 0 {
		out = append(out, all[rng.Intn(len(all))])
	}
	return out
}

func pickServiceTypes(rng *rand.Rand) []domain.ServiceType {
	out := []domain.ServiceType{domain.ServiceAnnualTest}
	for _, st := range []domain.ServiceType{domain.ServiceRepair, domain.ServiceInstallation, domain.ServiceInspection} {
		if rng.Intn(3) == 0 {
			out = append(out, st)
		}
	}
	return out
}

func slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "-") {
				b.WriteByte('-')
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
