package db

import "context"

// Schema for the clinic core. Referential integrity between domain tables is
// checked at write time by the engines rather than by foreign keys: the store
// must allow hard-deleting appointments that bills still reference, and
// hard-deleting bills whose items become orphaned.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	phone TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL CHECK (role IN ('Admin', 'Doctor', 'Nurse', 'Receptionist')),
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS specializations (
	id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	is_active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS departments (
	id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	extension_number TEXT NOT NULL DEFAULT '',
	is_active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS doctors (
	id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	user_id BIGINT NOT NULL UNIQUE,
	specialization_id BIGINT NOT NULL,
	department_id BIGINT,
	license_number TEXT NOT NULL UNIQUE,
	years_of_experience INT NOT NULL DEFAULT 0 CHECK (years_of_experience >= 0),
	is_active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS patients (
	id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	patient_code TEXT UNIQUE,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	date_of_birth DATE NOT NULL,
	gender TEXT NOT NULL CHECK (gender IN ('Male', 'Female', 'Other')),
	blood_group TEXT CHECK (blood_group IN ('A+', 'A-', 'B+', 'B-', 'AB+', 'AB-', 'O+', 'O-') OR blood_group IS NULL),
	phone TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	emergency_contact_name TEXT NOT NULL DEFAULT '',
	emergency_contact_phone TEXT NOT NULL DEFAULT '',
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	modified_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS appointments (
	id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	patient_id BIGINT NOT NULL,
	doctor_id BIGINT NOT NULL,
	appointment_date DATE NOT NULL,
	appointment_time TEXT NOT NULL,
	status TEXT NOT NULL CHECK (status IN ('Scheduled', 'Completed', 'Cancelled', 'NoShow')),
	notes TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (doctor_id, appointment_date, appointment_time)
);

CREATE TABLE IF NOT EXISTS bills (
	id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	appointment_id BIGINT NOT NULL,
	bill_date TIMESTAMPTZ NOT NULL DEFAULT now(),
	total_amount NUMERIC(10,2) NOT NULL CHECK (total_amount >= 0),
	payment_status TEXT NOT NULL DEFAULT 'Unpaid' CHECK (payment_status IN ('Unpaid', 'PartiallyPaid', 'Paid')),
	payment_method TEXT NOT NULL DEFAULT '',
	paid_amount NUMERIC(10,2) NOT NULL DEFAULT 0.00 CHECK (paid_amount >= 0),
	created_by BIGINT
);

CREATE TABLE IF NOT EXISTS bill_items (
	id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	bill_id BIGINT NOT NULL,
	service_type TEXT NOT NULL,
	description TEXT NOT NULL,
	quantity INT NOT NULL DEFAULT 1 CHECK (quantity > 0),
	unit_price NUMERIC(10,2) NOT NULL CHECK (unit_price >= 0),
	medicine_id BIGINT,
	test_id BIGINT,
	CHECK (medicine_id IS NULL OR test_id IS NULL)
);

CREATE TABLE IF NOT EXISTS medical_tests (
	id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	test_code TEXT NOT NULL UNIQUE,
	test_name TEXT NOT NULL,
	department_id BIGINT,
	cost NUMERIC(10,2) NOT NULL DEFAULT 0.00 CHECK (cost >= 0),
	normal_range_min DOUBLE PRECISION,
	normal_range_max DOUBLE PRECISION,
	unit TEXT NOT NULL DEFAULT '',
	preparation_instructions TEXT NOT NULL DEFAULT '',
	estimated_duration_minutes INT NOT NULL DEFAULT 0,
	is_active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS medicines (
	id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	medicine_code TEXT NOT NULL UNIQUE,
	medicine_name TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	unit_price NUMERIC(10,2) NOT NULL DEFAULT 0.00 CHECK (unit_price >= 0),
	is_active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS outbox_events (
	id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	event_id TEXT NOT NULL,
	aggregate_type TEXT NOT NULL,
	aggregate_id TEXT NOT NULL,
	event_type TEXT NOT NULL,
	payload JSONB NOT NULL,
	traceparent TEXT NOT NULL DEFAULT '',
	tracestate TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	published_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS provider_events (
	id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	provider TEXT NOT NULL,
	provider_event_id TEXT NOT NULL,
	event_type TEXT NOT NULL,
	payload JSONB NOT NULL,
	received_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (provider, provider_event_id)
);
`

// Migrate applies the schema. Statements are idempotent, so this runs on
// every startup.
func Migrate(ctx context.Context, pool *Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
