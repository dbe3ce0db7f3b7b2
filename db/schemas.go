package db

var schema = `
CREATE TABLE IF NOT EXISTS events (
	id BIGSERIAL PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	venue VARCHAR(255) NOT NULL,
	event_date TIMESTAMPTZ NOT NULL,
	total_tickets INT NOT NULL CHECK (total_tickets >= 0),
	booked_tickets INT NOT NULL DEFAULT 0 CHECK (booked_tickets >= 0 AND booked_tickets <= total_tickets),
	base_price NUMERIC(10, 2) NOT NULL,
	current_price NUMERIC(10, 2) NOT NULL,
	price_floor NUMERIC(10, 2) NOT NULL,
	price_ceiling NUMERIC(10, 2) NOT NULL,
	pricing_rules JSONB NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	booking_seq BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CHECK (price_floor <= price_ceiling)
);

CREATE TABLE IF NOT EXISTS bookings (
	id BIGSERIAL PRIMARY KEY,
	event_id BIGINT NOT NULL REFERENCES events (id),
	user_email VARCHAR(255) NOT NULL,
	quantity INT NOT NULL CHECK (quantity >= 1),
	unit_price NUMERIC(10, 2) NOT NULL,
	price_paid NUMERIC(10, 2) NOT NULL,
	booking_reference VARCHAR(64) NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS bookings_event_id_created_at_idx ON bookings (event_id, created_at);
CREATE INDEX IF NOT EXISTS bookings_user_email_idx ON bookings (user_email);

CREATE TABLE IF NOT EXISTS read_model_event_sales (
	event_id BIGINT PRIMARY KEY,
	payload JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS published_events (
	event_id UUID PRIMARY KEY,
	published_at TIMESTAMPTZ NOT NULL,
	event_name VARCHAR(255) NOT NULL,
	event_payload JSONB NOT NULL
);
`
