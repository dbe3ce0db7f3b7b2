package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dynamictickets/clock"
	"dynamictickets/entities"
	ticketsHttp "dynamictickets/http"
	"dynamictickets/pricing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "secret-key"

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type bookingServiceMock struct {
	requests []entities.CreateBookingRequest
	booking  entities.Booking
	err      error
}

func (m *bookingServiceMock) CreateBooking(_ context.Context, req entities.CreateBookingRequest) (entities.Booking, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return entities.Booking{}, m.err
	}
	return m.booking, nil
}

type bookingRepoMock struct {
	bookings []entities.Booking
	recent   []entities.RecentBooking
}

func (m *bookingRepoMock) GetByID(_ context.Context, id int64) (entities.Booking, error) {
	for _, b := range m.bookings {
		if b.ID == id {
			return b, nil
		}
	}
	return entities.Booking{}, entities.ErrBookingNotFound
}

func (m *bookingRepoMock) ListByEvent(_ context.Context, eventID int64) ([]entities.Booking, error) {
	var out []entities.Booking
	for _, b := range m.bookings {
		if b.EventID == eventID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *bookingRepoMock) ListByUser(_ context.Context, email string) ([]entities.Booking, error) {
	var out []entities.Booking
	for _, b := range m.bookings {
		if b.UserEmail == email {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *bookingRepoMock) RecentBookings(context.Context, int64, time.Time) ([]entities.RecentBooking, error) {
	return m.recent, nil
}

type eventRepoMock struct {
	events  map[int64]entities.Event
	created []entities.Event
}

func (m *eventRepoMock) Create(_ context.Context, event entities.Event) (entities.Event, error) {
	event.ID = int64(len(m.events) + 1)
	m.events[event.ID] = event
	m.created = append(m.created, event)
	return event, nil
}

func (m *eventRepoMock) GetByID(_ context.Context, id int64) (entities.Event, error) {
	e, ok := m.events[id]
	if !ok {
		return entities.Event{}, entities.ErrEventNotFound
	}
	return e, nil
}

func (m *eventRepoMock) List(context.Context) ([]entities.Event, error) {
	var out []entities.Event
	for _, e := range m.events {
		out = append(out, e)
	}
	return out, nil
}

type eventSalesMock struct {
	sales map[int64]entities.EventSales
}

func (m *eventSalesMock) GetByEventID(_ context.Context, eventID int64) (entities.EventSales, error) {
	return m.sales[eventID], nil
}

func (m *eventSalesMock) GetAll(context.Context) ([]entities.EventSales, error) {
	var out []entities.EventSales
	for _, s := range m.sales {
		out = append(out, s)
	}
	return out, nil
}

type testServer struct {
	e          *echo.Echo
	bookings   *bookingServiceMock
	bookingRep *bookingRepoMock
	events     *eventRepoMock
	sales      *eventSalesMock
}

func newTestServer() testServer {
	s := testServer{
		bookings:   &bookingServiceMock{},
		bookingRep: &bookingRepoMock{},
		events:     &eventRepoMock{events: map[int64]entities.Event{}},
		sales:      &eventSalesMock{sales: map[int64]entities.EventSales{}},
	}
	s.e = ticketsHttp.NewHttpRouter(ticketsHttp.Dependencies{
		Bookings:    s.bookings,
		BookingRepo: s.bookingRep,
		EventRepo:   s.events,
		EventSales:  s.sales,
		Clock:       clock.NewFixed(now),
		APIKey:      testAPIKey,
	})
	return s
}

func (s testServer) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func testEvent() entities.Event {
	return entities.Event{
		ID:            1,
		Name:          "Concert",
		Venue:         "Arena",
		EventDate:     now.Add(10 * 24 * time.Hour),
		TotalTickets:  100,
		BookedTickets: 40,
		BasePrice:     decimal.NewFromInt(100),
		CurrentPrice:  decimal.NewFromInt(100),
		PriceFloor:    decimal.NewFromInt(80),
		PriceCeiling:  decimal.NewFromInt(200),
		PricingRules:  pricing.DefaultRules(),
		IsActive:      true,
	}
}

func TestPostBooking(t *testing.T) {
	s := newTestServer()
	s.bookings.booking = entities.Booking{
		ID:               7,
		EventID:          1,
		UserEmail:        "jane@example.com",
		Quantity:         2,
		UnitPrice:        decimal.RequireFromString("112.5"),
		PricePaid:        decimal.NewFromInt(225),
		BookingReference: "BK1-0001ABCD",
		CreatedAt:        now,
	}

	rec := s.do(http.MethodPost, "/bookings", `{"eventId": 1, "userEmail": "jane@example.com", "quantity": 2}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "112.50", resp["unitPrice"])
	assert.Equal(t, "225.00", resp["pricePaid"])
	assert.Equal(t, "BK1-0001ABCD", resp["bookingReference"])
	assert.EqualValues(t, 7, resp["id"])

	require.Len(t, s.bookings.requests, 1)
	assert.Equal(t, entities.CreateBookingRequest{EventID: 1, UserEmail: "jane@example.com", Quantity: 2}, s.bookings.requests[0])
}

func TestPostBooking_InvalidRequest(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "missing_event", body: `{"userEmail": "jane@example.com", "quantity": 1}`},
		{name: "negative_event", body: `{"eventId": -1, "userEmail": "jane@example.com", "quantity": 1}`},
		{name: "bad_email", body: `{"eventId": 1, "userEmail": "not-an-email", "quantity": 1}`},
		{name: "display_name_email", body: `{"eventId": 1, "userEmail": "Jane <jane@example.com>", "quantity": 1}`},
		{name: "zero_quantity", body: `{"eventId": 1, "userEmail": "jane@example.com", "quantity": 0}`},
		{name: "malformed_json", body: `{"eventId": `},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer()

			rec := s.do(http.MethodPost, "/bookings", tc.body, nil)

			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Empty(t, s.bookings.requests)
		})
	}
}

func TestPostBooking_ErrorMapping(t *testing.T) {
	testCases := []struct {
		name           string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "not_found",
			err:            entities.ErrEventNotFound,
			expectedStatus: http.StatusNotFound,
			expectedBody:   "Event not found",
		},
		{
			name:           "inactive",
			err:            entities.ErrEventInactive,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Event is no longer active",
		},
		{
			name:           "passed",
			err:            entities.ErrEventPassed,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Event has already passed",
		},
		{
			name:           "capacity",
			err:            entities.CapacityExceededError{Requested: 5, Available: 2},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Not enough tickets available. Requested: 5, Available: 2",
		},
		{
			name:           "transient",
			err:            entities.TransientStoreError{Err: errors.New("lock timeout")},
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "invariant",
			err:            entities.InvariantViolationError{EventID: 1, Detail: "booked 11 > total 10"},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "unknown",
			err:            errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer()
			s.bookings.err = tc.err

			rec := s.do(http.MethodPost, "/bookings", `{"eventId": 1, "userEmail": "jane@example.com", "quantity": 5}`, nil)

			assert.Equal(t, tc.expectedStatus, rec.Code)
			if tc.expectedBody != "" {
				assert.Contains(t, rec.Body.String(), tc.expectedBody)
			}
			if tc.expectedStatus == http.StatusServiceUnavailable {
				assert.Equal(t, "1", rec.Header().Get("Retry-After"))
			}
		})
	}
}

func TestGetBookings(t *testing.T) {
	s := newTestServer()
	s.bookingRep.bookings = []entities.Booking{
		{ID: 1, EventID: 1, UserEmail: "a@example.com", Quantity: 1, UnitPrice: decimal.NewFromInt(10), PricePaid: decimal.NewFromInt(10)},
		{ID: 2, EventID: 2, UserEmail: "b@example.com", Quantity: 2, UnitPrice: decimal.NewFromInt(10), PricePaid: decimal.NewFromInt(20)},
		{ID: 3, EventID: 1, UserEmail: "b@example.com", Quantity: 3, UnitPrice: decimal.NewFromInt(10), PricePaid: decimal.NewFromInt(30)},
	}

	t.Run("by_event", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/bookings?eventId=1", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp, 2)
		assert.EqualValues(t, 1, resp[0]["id"])
		assert.EqualValues(t, 3, resp[1]["id"])
	})

	t.Run("by_event_invalid_id", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/bookings?eventId=abc", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("by_user", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/bookings/user/b@example.com", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp, 2)
	})

	t.Run("by_user_empty", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/bookings/user/nobody@example.com", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("by_id", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/bookings/2", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "20.00", resp["pricePaid"])
	})

	t.Run("by_id_not_found", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/bookings/99", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPostEvent(t *testing.T) {
	body := `{
		"name": "Concert",
		"venue": "Arena",
		"eventDate": "2026-06-01T20:00:00Z",
		"totalTickets": 100,
		"basePrice": 50,
		"priceFloor": 60,
		"priceCeiling": 150
	}`

	t.Run("missing_api_key", func(t *testing.T) {
		s := newTestServer()

		rec := s.do(http.MethodPost, "/events", body, nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, s.events.created)
	})

	t.Run("wrong_api_key", func(t *testing.T) {
		s := newTestServer()

		rec := s.do(http.MethodPost, "/events", body, map[string]string{"X-API-Key": "nope"})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("created", func(t *testing.T) {
		s := newTestServer()

		rec := s.do(http.MethodPost, "/events", body, map[string]string{"X-API-Key": testAPIKey})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		require.Len(t, s.events.created, 1)
		created := s.events.created[0]
		assert.Equal(t, "60.00", created.CurrentPrice.StringFixed(2), "base price is clamped to the floor")
		assert.True(t, created.IsActive)
		assert.Equal(t, 0, created.BookedTickets)
		assert.Equal(t, pricing.DefaultRules(), created.PricingRules)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "60.00", resp["currentPrice"])
		assert.Equal(t, "50.00", resp["basePrice"])
	})

	t.Run("invalid", func(t *testing.T) {
		s := newTestServer()

		rec := s.do(http.MethodPost, "/events", `{
			"name": "Concert",
			"venue": "Arena",
			"eventDate": "2026-06-01T20:00:00Z",
			"totalTickets": 100,
			"basePrice": 50,
			"priceFloor": 200,
			"priceCeiling": 150
		}`, map[string]string{"X-API-Key": testAPIKey})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, s.events.created)
	})
}

func TestGetEvent(t *testing.T) {
	s := newTestServer()
	s.events.events[1] = testEvent()

	rec := s.do(http.MethodGet, "/events/1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		ID               int64  `json:"id"`
		AvailableTickets int    `json:"availableTickets"`
		CurrentPrice     string `json:"currentPrice"`
		PricingBreakdown struct {
			BasePrice    string `json:"basePrice"`
			CurrentPrice string `json:"currentPrice"`
			Adjustments  struct {
				TimeBased struct {
					DaysUntilEvent int `json:"daysUntilEvent"`
				} `json:"timeBased"`
			} `json:"adjustments"`
			RespectsFloor bool `json:"respectsFloor"`
		} `json:"pricingBreakdown"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.EqualValues(t, 1, resp.ID)
	assert.Equal(t, 60, resp.AvailableTickets)
	assert.Equal(t, "100.00", resp.CurrentPrice)
	assert.Equal(t, "100.00", resp.PricingBreakdown.BasePrice)
	assert.Equal(t, 10, resp.PricingBreakdown.Adjustments.TimeBased.DaysUntilEvent)
	// 10 days out: time rule 30d gives 0, nothing else triggers.
	assert.Equal(t, "100.00", resp.PricingBreakdown.CurrentPrice)
	assert.True(t, resp.PricingBreakdown.RespectsFloor)
}

func TestGetEvent_NotFound(t *testing.T) {
	s := newTestServer()

	rec := s.do(http.MethodGet, "/events/42", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalytics(t *testing.T) {
	s := newTestServer()
	s.events.events[1] = testEvent()
	s.sales.sales[1] = entities.EventSales{
		EventID:     1,
		TicketsSold: 3,
		Revenue:     decimal.NewFromInt(350),
		Bookings: map[string]entities.EventSalesLine{
			"BK1-0001AAAA": {Quantity: 1, PricePaid: decimal.NewFromInt(100)},
			"BK1-0002BBBB": {Quantity: 2, PricePaid: decimal.NewFromInt(250)},
		},
	}

	t.Run("event", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/analytics/events/1", "", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		assert.JSONEq(t, `{
			"event": {
				"id": 1,
				"name": "Concert",
				"eventDate": "2026-03-11T12:00:00Z",
				"venue": "Arena",
				"totalTickets": 100,
				"bookedTickets": 40,
				"remainingTickets": 60,
				"occupancyRate": "40.00",
				"basePrice": "100.00",
				"currentPrice": "100.00",
				"priceFloor": "80.00",
				"priceCeiling": "200.00"
			},
			"analytics": {
				"total": 2,
				"totalTicketsSold": 3,
				"totalRevenue": "350.00",
				"averagePrice": "175.00"
			}
		}`, rec.Body.String())
	})

	t.Run("event_not_found", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/analytics/events/9", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("summary", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/analytics/summary", "", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		assert.JSONEq(t, `{
			"events": {
				"total": 1,
				"active": 1,
				"totalCapacity": 100,
				"totalBooked": 40,
				"remainingCapacity": 60,
				"occupancyRate": "40.00"
			},
			"bookings": {
				"total": 2,
				"totalTicketsSold": 3,
				"totalRevenue": "350.00",
				"averagePrice": "175.00"
			}
		}`, rec.Body.String())
	})
}

func TestHealth(t *testing.T) {
	s := newTestServer()

	rec := s.do(http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
