package service

import (
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/lease-engine/internal/config"
	"github.com/segyhp/lease-engine/internal/domain"
	"github.com/segyhp/lease-engine/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Redis:     config.RedisConfig{CacheTTL: 10 * time.Minute},
		Scheduler: config.SchedulerConfig{Timezone: "UTC", BatchSize: 2},
		Business: config.BusinessConfig{
			DefaultTermMonths: 12,
			OverpaymentPolicy: string(domain.OverpaymentReject),
			ExpiringSoonDays:  30,
		},
		Storage: config.StorageConfig{Root: "/documents", MaxUploadBytes: 1024},
	}
}

func testLogger() *slog.Logger {
	return logger.NewWithWriter(io.Discard, "error", "json")
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func activeLease(start time.Time, end *time.Time) *domain.Lease {
	return &domain.Lease{
		ID:               uuid.New(),
		CompanyID:        uuid.New(),
		UnitID:           uuid.New(),
		TenantID:         uuid.New(),
		StartDate:        start,
		EndDate:          end,
		RentAmount:       decimal.RequireFromString("1000.00"),
		PaymentFrequency: domain.FrequencyMonthly,
		PaymentDay:       1,
		Status:           domain.LeaseStatusActive,
	}
}

func pendingPayment(amount string, due time.Time) *domain.Payment {
	a := decimal.RequireFromString(amount)
	return &domain.Payment{
		ID:              uuid.New(),
		LeaseID:         uuid.New(),
		Amount:          a,
		DueDate:         due,
		Status:          domain.PaymentStatusPending,
		PaidAmount:      decimal.Zero,
		RemainingAmount: a,
	}
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
