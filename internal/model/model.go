// Package model holds the persisted domain records. The shapes mirror the
// clinic schema one to one; engines own validation and lifecycle rules.
package model

import (
	"time"

	"github.com/md-rashed-zaman/clinicore/internal/money"
)

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	RoleAdmin        = "Admin"
	RoleDoctor       = "Doctor"
	RoleNurse        = "Nurse"
	RoleReceptionist = "Receptionist"
)

func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleNurse, RoleReceptionist:
		return true
	}
	return false
}

type Specialization struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

type Department struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	Location        string `json:"location"`
	ExtensionNumber string `json:"extension_number"`
	IsActive        bool   `json:"is_active"`
}

type Doctor struct {
	ID                int64  `json:"id"`
	UserID            int64  `json:"user_id"`
	SpecializationID  int64  `json:"specialization_id"`
	DepartmentID      *int64 `json:"department_id,omitempty"`
	LicenseNumber     string `json:"license_number"`
	YearsOfExperience int    `json:"years_of_experience"`
	IsActive          bool   `json:"is_active"`
}

// DoctorSummary is the joined row the directory search returns for list views.
type DoctorSummary struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Specialization    string `json:"specialization"`
	Department        string `json:"department"`
	LicenseNumber     string `json:"license_number"`
	YearsOfExperience int    `json:"years_of_experience"`
}

type Patient struct {
	ID                    int64      `json:"id"`
	Code                  string     `json:"code"`
	FirstName             string     `json:"first_name"`
	LastName              string     `json:"last_name"`
	DateOfBirth           string     `json:"date_of_birth"`
	Gender                string     `json:"gender"`
	BloodGroup            string     `json:"blood_group,omitempty"`
	Phone                 string     `json:"phone,omitempty"`
	Email                 string     `json:"email,omitempty"`
	Address               string     `json:"address,omitempty"`
	EmergencyContactName  string     `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string     `json:"emergency_contact_phone,omitempty"`
	IsActive              bool       `json:"is_active"`
	CreatedAt             time.Time  `json:"created_at"`
	ModifiedAt            *time.Time `json:"modified_at,omitempty"`
}

const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

func ValidGender(g string) bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

var bloodGroups = map[string]bool{
	"A+": true, "A-": true, "B+": true, "B-": true,
	"AB+": true, "AB-": true, "O+": true, "O-": true,
}

func ValidBloodGroup(b string) bool { return bloodGroups[b] }

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "Scheduled"
	StatusCompleted AppointmentStatus = "Completed"
	StatusCancelled AppointmentStatus = "Cancelled"
	StatusNoShow    AppointmentStatus = "NoShow"
)

// Valid reports whether s is one of the four appointment statuses. Any valid
// status may follow any other; there is no transition table.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

type Appointment struct {
	ID        int64             `json:"id"`
	PatientID int64             `json:"patient_id"`
	DoctorID  int64             `json:"doctor_id"`
	Date      string            `json:"date"`
	Time      string            `json:"time"`
	Status    AppointmentStatus `json:"status"`
	Notes     string            `json:"notes,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// AppointmentView carries the display names list views need.
type AppointmentView struct {
	Appointment
	PatientName string `json:"patient_name"`
	DoctorName  string `json:"doctor_name"`
}

type PaymentStatus string

const (
	PaymentUnpaid        PaymentStatus = "Unpaid"
	PaymentPartiallyPaid PaymentStatus = "PartiallyPaid"
	PaymentPaid          PaymentStatus = "Paid"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentUnpaid, PaymentPartiallyPaid, PaymentPaid:
		return true
	}
	return false
}

type Bill struct {
	ID            int64         `json:"id"`
	AppointmentID int64         `json:"appointment_id"`
	BillDate      time.Time     `json:"bill_date"`
	Total         money.Amount  `json:"total_amount"`
	Paid          money.Amount  `json:"paid_amount"`
	Status        PaymentStatus `json:"payment_status"`
	Method        string        `json:"payment_method,omitempty"`
	CreatedBy     *int64        `json:"created_by,omitempty"`
}

type BillItem struct {
	ID          int64        `json:"id"`
	BillID      int64        `json:"bill_id"`
	ServiceType string       `json:"service_type"`
	Description string       `json:"description"`
	Quantity    int          `json:"quantity"`
	UnitPrice   money.Amount `json:"unit_price"`
	MedicineID  *int64       `json:"medicine_id,omitempty"`
	TestID      *int64       `json:"test_id,omitempty"`
}

type MedicalTest struct {
	ID                       int64        `json:"id"`
	Code                     string       `json:"code"`
	Name                     string       `json:"name"`
	DepartmentID             *int64       `json:"department_id,omitempty"`
	Cost                     money.Amount `json:"cost"`
	NormalRangeMin           *float64     `json:"normal_range_min,omitempty"`
	NormalRangeMax           *float64     `json:"normal_range_max,omitempty"`
	Unit                     string       `json:"unit,omitempty"`
	PreparationInstructions  string       `json:"preparation_instructions,omitempty"`
	EstimatedDurationMinutes int          `json:"estimated_duration_minutes,omitempty"`
	IsActive                 bool         `json:"is_active"`
}

type Medicine struct {
	ID        int64        `json:"id"`
	Code      string       `json:"code"`
	Name      string       `json:"name"`
	Category  string       `json:"category,omitempty"`
	UnitPrice money.Amount `json:"unit_price"`
	IsActive  bool         `json:"is_active"`
}
