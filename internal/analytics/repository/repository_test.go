package repository

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"backflow_portal_backend/internal/analytics/domain"
	"backflow_portal_backend/platform/logger"

	"github.com/google/uuid"
)

func TestPaymentCategory(t *testing.T) {
	cases := []struct {
		invoices, late int
		want           domain.PaymentHistory
	}{
		{0, 0, domain.PaymentGood},
		{10, 0, domain.PaymentExcellent},
		{10, 1, domain.PaymentGood},
		{10, 3, domain.PaymentFair},
		{10, 5, domain.PaymentPoor},
	}
	for _, tc := range cases {
		if got := paymentCategory(tc.invoices, tc.late); got != tc.want {
			t.Fatalf("%d/%d late: expected %s, got %s", tc.late, tc.invoices, tc.want, got)
		}
	}
}

func TestVisitsPerYearCountsAtLeastOneYear(t *testing.T) {
	now := time.Date(2026, time.October, 14, 0, 0, 0, 0, time.UTC)
	if got := visitsPerYear(2, now.AddDate(0, -3, 0), now); got != 2 {
		t.Fatalf("expected 2 visits per year for new customer, got %v", got)
	}
	got := visitsPerYear(4, now.Add(-4*365.25*24*time.Hour), now)
	if got < 0.999 || got > 1.001 {
		t.Fatalf("expected one visit per year, got %v", got)
	}
}

func TestBehaviorRowToDomainDefaults(t *testing.T) {
	now := time.Date(2026, time.October, 14, 0, 0, 0, 0, time.UTC)
	row := behaviorRow{
		ID:        uuid.New(),
		Name:      "Jane Doe",
		Cancelled: 1,
		Total:     4,
		TimeSlots: []string{"morning"},
	}
	b := row.toDomain(now)
	if b.SatisfactionScore != defaultSatisfaction {
		t.Fatalf("expected default satisfaction, got %v", b.SatisfactionScore)
	}
	if b.CancellationRate != 0.25 {
		t.Fatalf("expected cancellation rate 0.25, got %v", b.CancellationRate)
	}
	if !b.LastServiceDate.IsZero() || b.AppointmentFrequency != 0 {
		t.Fatal("expected zero recency and frequency without completed visits")
	}
	if len(b.PreferredTimeSlots) != 1 || b.PreferredTimeSlots[0] != domain.SlotMorning {
		t.Fatalf("unexpected time slots: %v", b.PreferredTimeSlots)
	}
}

func TestFailLogsDatabaseError(t *testing.T) {
	var buf bytes.Buffer
	repo := New(nil, logger.NewWithHandler(slog.NewJSONHandler(&buf, nil)))
	boom := errors.New("connection reset by peer")

	err := repo.fail("list equipment", boom)
	if !errors.Is(err, boom) || err.Error() != "list equipment: connection reset by peer" {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`"msg":"database_error"`, `"operation":"list equipment"`, `"error":"connection reset by peer"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in log output %s", want, out)
		}
	}
}

func TestFailWithoutLoggerStillWraps(t *testing.T) {
	boom := errors.New("timeout")
	if err := New(nil, nil).fail("get tenant", boom); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
