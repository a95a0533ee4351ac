package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"backflow_portal_backend/internal/analytics/domain"
	"backflow_portal_backend/internal/analytics/repository"
	"backflow_portal_backend/internal/events"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

type fakeTenants struct {
	tenants []repository.Tenant
}

func (f *fakeTenants) ListTenants(context.Context) ([]repository.Tenant, error) {
	return f.tenants, nil
}

func (f *fakeTenants) GetTenant(_ context.Context, id uuid.UUID) (repository.Tenant, error) {
	for _, t := range f.tenants {
		if t.ID == id {
			return t, nil
		}
	}
	return repository.Tenant{}, errors.New("not found")
}

type fakeInsights struct {
	report *domain.PredictiveInsights
	err    error
}

func (f *fakeInsights) GeneratePredictiveInsights(context.Context, uuid.UUID, string) (*domain.PredictiveInsights, error) {
	return f.report, f.err
}

type recordingBus struct {
	mu        sync.Mutex
	published []events.Event
	failWith  error
}

func (b *recordingBus) PublishSync(_ context.Context, e events.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failWith != nil {
		return b.failWith
	}
	b.published = append(b.published, e)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

type fakeEnqueuer struct {
	payloads []TenantScanPayload
}

func (f *fakeEnqueuer) EnqueueTenantScan(_ context.Context, p TenantScanPayload) error {
	f.payloads = append(f.payloads, p)
	return nil
}

func newRedisDeduper(t *testing.T) (*RedisDeduper, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisDeduper(client, time.Hour), mr
}

func sampleReport() *domain.PredictiveInsights {
	return &domain.PredictiveInsights{
		ChurnRisk: []domain.ChurnPrediction{
			{CustomerID: uuid.New(), RiskLevel: domain.RiskHigh, ChurnProbability: 0.9},
			{CustomerID: uuid.New(), RiskLevel: domain.RiskMedium, ChurnProbability: 0.5},
		},
		MaintenanceAlerts: []domain.MaintenanceAlert{
			{EquipmentID: uuid.New(), EquipmentType: "Service Vehicle", RiskLevel: domain.RiskCritical},
			{EquipmentID: uuid.New(), EquipmentType: "Test Kit", RiskLevel: domain.RiskHigh},
		},
	}
}

func TestScanTenantPublishesHighAndCriticalOnly(t *testing.T) {
	dedupe, _ := newRedisDeduper(t)
	bus := &recordingBus{}
	scanner := NewAlertScanner(&fakeTenants{}, &fakeInsights{report: sampleReport()}, dedupe, bus, nil)

	result, err := scanner.ScanTenant(context.Background(), uuid.New(), "30d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ChurnAlerts != 1 || result.MaintenanceAlerts != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(bus.published) != 2 {
		t.Fatalf("expected two events, got %d", len(bus.published))
	}
	if _, ok := bus.published[0].(events.ChurnRiskDetected); !ok {
		t.Fatalf("expected churn event first, got %T", bus.published[0])
	}
	if _, ok := bus.published[1].(events.MaintenanceAlertRaised); !ok {
		t.Fatalf("expected maintenance event second, got %T", bus.published[1])
	}
}

func TestScanTenantSuppressesRepeatsWithinTTL(t *testing.T) {
	dedupe, mr := newRedisDeduper(t)
	bus := &recordingBus{}
	tenantID := uuid.New()
	scanner := NewAlertScanner(&fakeTenants{}, &fakeInsights{report: sampleReport()}, dedupe, bus, nil)

	if _, err := scanner.ScanTenant(context.Background(), tenantID, "30d"); err != nil {
		t.Fatalf("first scan: %v", err)
	}
	second, err := scanner.ScanTenant(context.Background(), tenantID, "30d")
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if second.Suppressed != 2 || second.ChurnAlerts != 0 {
		t.Fatalf("expected repeats to be suppressed, got %+v", second)
	}

	mr.FastForward(2 * time.Hour)
	third, err := scanner.ScanTenant(context.Background(), tenantID, "30d")
	if err != nil {
		t.Fatalf("third scan: %v", err)
	}
	if third.ChurnAlerts != 1 || third.MaintenanceAlerts != 1 {
		t.Fatalf("expected alerts again after TTL, got %+v", third)
	}
}

func TestScanTenantReleasesKeyWhenPublishFails(t *testing.T) {
	dedupe, _ := newRedisDeduper(t)
	bus := &recordingBus{failWith: errors.New("smtp down")}
	tenantID := uuid.New()
	scanner := NewAlertScanner(&fakeTenants{}, &fakeInsights{report: sampleReport()}, dedupe, bus, nil)

	if _, err := scanner.ScanTenant(context.Background(), tenantID, "30d"); err == nil {
		t.Fatal("expected publish error")
	}

	bus.failWith = nil
	result, err := scanner.ScanTenant(context.Background(), tenantID, "30d")
	if err != nil {
		t.Fatalf("retry scan: %v", err)
	}
	if result.ChurnAlerts != 1 {
		t.Fatalf("expected retry to deliver churn alert, got %+v", result)
	}
}

func TestScanTenantPropagatesInsightsError(t *testing.T) {
	scanner := NewAlertScanner(&fakeTenants{}, &fakeInsights{err: errors.New("db down")}, nil, &recordingBus{}, nil)
	if _, err := scanner.ScanTenant(context.Background(), uuid.New(), "30d"); err == nil {
		t.Fatal("expected error")
	}
}

func TestFanOutEnqueuesEveryTenant(t *testing.T) {
	tenants := &fakeTenants{tenants: []repository.Tenant{{ID: uuid.New()}, {ID: uuid.New()}, {ID: uuid.New()}}}
	enqueuer := &fakeEnqueuer{}
	scanner := NewAlertScanner(tenants, &fakeInsights{}, nil, nil, nil)

	n, err := scanner.FanOut(context.Background(), enqueuer, "30d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 || len(enqueuer.payloads) != 3 {
		t.Fatalf("expected 3 enqueued scans, got %d", n)
	}
	if enqueuer.payloads[1].TenantID != tenants.tenants[1].ID.String() {
		t.Fatalf("unexpected payload %+v", enqueuer.payloads[1])
	}
}

func TestHandleTenantScanSkipsRetryOnBadPayload(t *testing.T) {
	w := &Worker{scanner: NewAlertScanner(&fakeTenants{}, &fakeInsights{report: sampleReport()}, nil, nil, nil)}

	task, err := NewTenantScanTask(TenantScanPayload{TenantID: "not-a-uuid"})
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if err := w.handleTenantScan(context.Background(), task); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}

	task, _ = NewTenantScanTask(TenantScanPayload{TenantID: uuid.NewString()})
	if err := w.handleTenantScan(context.Background(), task); err != nil {
		t.Fatalf("expected valid payload to scan, got %v", err)
	}
}

func TestParseTenantScanPayloadDefaultsTimeframe(t *testing.T) {
	task, _ := NewTenantScanTask(TenantScanPayload{TenantID: "abc"})
	payload, err := ParseTenantScanPayload(task)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Timeframe != defaultScanTimeframe {
		t.Fatalf("expected default timeframe, got %q", payload.Timeframe)
	}
}

func TestParseRedisURLAppliesInsecureTLS(t *testing.T) {
	opt, err := parseRedisURL("redis://localhost:6379/2", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opt.DB != 2 || opt.TLSConfig == nil || !opt.TLSConfig.InsecureSkipVerify {
		t.Fatalf("unexpected options: db=%d tls=%v", opt.DB, opt.TLSConfig)
	}
}
