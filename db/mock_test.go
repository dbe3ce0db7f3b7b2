package db

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

var testEventDate = time.Date(2026, 9, 1, 20, 0, 0, 0, time.UTC)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return &DB{Conn: sqlx.NewDb(sqlDB, "postgres")}, mock
}

func eventRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "description", "venue", "event_date", "total_tickets", "booked_tickets",
		"base_price", "current_price", "price_floor", "price_ceiling", "pricing_rules",
		"is_active", "booking_seq", "created_at", "updated_at",
	})
}

func addEventRow(rows *sqlmock.Rows, id int64, total, booked int, seq int64) *sqlmock.Rows {
	return rows.AddRow(
		id, "Concert", "", "Arena", testEventDate, total, booked,
		"100.00", "100.00", "50.00", "200.00",
		[]byte(`{"timeBased":{"enabled":false,"weight":"0.4","rules":[]},"demandBased":{"enabled":false,"weight":"0.3","threshold":10,"multiplier":"0.15"},"inventoryBased":{"enabled":false,"weight":"0.3","threshold":"20","multiplier":"0.25"}}`),
		true, seq, testEventDate.Add(-30*24*time.Hour), testEventDate.Add(-30*24*time.Hour),
	)
}
