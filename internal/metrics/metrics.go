package metrics

import (
	"context"
	"database/sql"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	Runtime   *RuntimeMetrics
	Database  *DatabaseMetrics
	Messaging *MessagingMetrics

	meter metric.Meter

	usersRegistered     metric.Int64Counter
	reservationUpdates  metric.Int64Counter
	loansCreated        metric.Int64Counter
	reservationsDeleted metric.Int64Counter
	reservationsListed  metric.Int64Counter

	logger *slog.Logger
}

func New(ctx context.Context, serviceName string, logger *slog.Logger) (*Metrics, error) {
	meter := otel.Meter(serviceName)

	runtime, err := NewRuntimeMetrics(ctx, meter)
	if err != nil {
		return nil, err
	}

	database, err := NewDatabaseMetrics(meter)
	if err != nil {
		return nil, err
	}

	messaging, err := NewMessagingMetrics(meter)
	if err != nil {
		return nil, err
	}

	m := &Metrics{
		Runtime:   runtime,
		Database:  database,
		Messaging: messaging,
		meter:     meter,
		logger:    logger,
	}

	m.usersRegistered, err = meter.Int64Counter(
		"library.users.registered",
		metric.WithDescription("Total number of users registered"),
		metric.WithUnit("{user}"),
	)
	if err != nil {
		return nil, err
	}

	m.reservationUpdates, err = meter.Int64Counter(
		"library.reservations.status_updated",
		metric.WithDescription("Total number of reservation status transitions"),
		metric.WithUnit("{reservation}"),
	)
	if err != nil {
		return nil, err
	}

	m.loansCreated, err = meter.Int64Counter(
		"library.loans.created",
		metric.WithDescription("Total number of loans created from confirmed reservations"),
		metric.WithUnit("{loan}"),
	)
	if err != nil {
		return nil, err
	}

	m.reservationsDeleted, err = meter.Int64Counter(
		"library.reservations.deleted",
		metric.WithDescription("Total number of reservations deleted"),
		metric.WithUnit("{reservation}"),
	)
	if err != nil {
		return nil, err
	}

	m.reservationsListed, err = meter.Int64Counter(
		"library.reservations.list_viewed",
		metric.WithDescription("Total number of times the reservations list was viewed"),
		metric.WithUnit("{view}"),
	)
	if err != nil {
		return nil, err
	}

	logger.Info("metrics collectors initialized successfully")

	return m, nil
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{
		Runtime:   &RuntimeMetrics{},
		Database:  &DatabaseMetrics{},
		Messaging: &MessagingMetrics{},
	}
}

// RegisterDB starts observing connection pool stats for the given database.
func (m *Metrics) RegisterDB(db *sql.DB) error {
	if m == nil || m.meter == nil {
		return nil
	}
	return m.Database.RegisterDB(db, m.meter)
}

func (m *Metrics) RecordUserRegistration(ctx context.Context) {
	if m != nil && m.usersRegistered != nil {
		m.usersRegistered.Add(ctx, 1)
	}
}

func (m *Metrics) RecordReservationStatusUpdate(ctx context.Context) {
	if m != nil && m.reservationUpdates != nil {
		m.reservationUpdates.Add(ctx, 1)
	}
}

func (m *Metrics) RecordLoanCreated(ctx context.Context) {
	if m != nil && m.loansCreated != nil {
		m.loansCreated.Add(ctx, 1)
	}
}

func (m *Metrics) RecordReservationDeleted(ctx context.Context) {
	if m != nil && m.reservationsDeleted != nil {
		m.reservationsDeleted.Add(ctx, 1)
	}
}

func (m *Metrics) RecordReservationsListViewed(ctx context.Context) {
	if m != nil && m.reservationsListed != nil {
		m.reservationsListed.Add(ctx, 1)
	}
}
