package transfer

import "time"

// Snapshot is the wholesale JSON backup of the clinic database. Rows are
// exported verbatim, ids included, so an import reproduces the exact state
// the export saw, orphans and all.
type Snapshot struct {
	ExportedAt      time.Time           `json:"exported_at"`
	Users           []UserRow           `json:"users"`
	Specializations []SpecializationRow `json:"specializations"`
	Departments     []DepartmentRow     `json:"departments"`
	Doctors         []DoctorRow         `json:"doctors"`
	Patients        []PatientRow        `json:"patients"`
	Appointments    []AppointmentRow    `json:"appointments"`
	Bills           []BillRow           `json:"bills"`
	BillItems       []BillItemRow       `json:"bill_items"`
	MedicalTests    []MedicalTestRow    `json:"medical_tests"`
	Medicines       []MedicineRow       `json:"medicines"`
}

type UserRow struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type SpecializationRow struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

type DepartmentRow struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	Location        string `json:"location"`
	ExtensionNumber string `json:"extension_number"`
	IsActive        bool   `json:"is_active"`
}

type DoctorRow struct {
	ID                int64  `json:"id"`
	UserID            int64  `json:"user_id"`
	SpecializationID  int64  `json:"specialization_id"`
	DepartmentID      *int64 `json:"department_id"`
	LicenseNumber     string `json:"license_number"`
	YearsOfExperience int    `json:"years_of_experience"`
	IsActive          bool   `json:"is_active"`
}

type PatientRow struct {
	ID                    int64      `json:"id"`
	PatientCode           *string    `json:"patient_code"`
	FirstName             string     `json:"first_name"`
	LastName              string     `json:"last_name"`
	DateOfBirth           string     `json:"date_of_birth"`
	Gender                string     `json:"gender"`
	BloodGroup            *string    `json:"blood_group"`
	Phone                 string     `json:"phone"`
	Email                 string     `json:"email"`
	Address               string     `json:"address"`
	EmergencyContactName  string     `json:"emergency_contact_name"`
	EmergencyContactPhone string     `json:"emergency_contact_phone"`
	IsActive              bool       `json:"is_active"`
	CreatedAt             time.Time  `json:"created_at"`
	ModifiedAt            *time.Time `json:"modified_at"`
}

type AppointmentRow struct {
	ID        int64     `json:"id"`
	PatientID int64     `json:"patient_id"`
	DoctorID  int64     `json:"doctor_id"`
	Date      string    `json:"appointment_date"`
	Time      string    `json:"appointment_time"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

type BillRow struct {
	ID            int64     `json:"id"`
	AppointmentID int64     `json:"appointment_id"`
	BillDate      time.Time `json:"bill_date"`
	TotalAmount   string    `json:"total_amount"`
	PaymentStatus string    `json:"payment_status"`
	PaymentMethod string    `json:"payment_method"`
	PaidAmount    string    `json:"paid_amount"`
	CreatedBy     *int64    `json:"created_by"`
}

type BillItemRow struct {
	ID          int64  `json:"id"`
	BillID      int64  `json:"bill_id"`
	ServiceType string `json:"service_type"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	MedicineID  *int64 `json:"medicine_id"`
	TestID      *int64 `json:"test_id"`
}

type MedicalTestRow struct {
	ID                       int64    `json:"id"`
	TestCode                 string   `json:"test_code"`
	TestName                 string   `json:"test_name"`
	DepartmentID             *int64   `json:"department_id"`
	Cost                     string   `json:"cost"`
	NormalRangeMin           *float64 `json:"normal_range_min"`
	NormalRangeMax           *float64 `json:"normal_range_max"`
	Unit                     string   `json:"unit"`
	PreparationInstructions  string   `json:"preparation_instructions"`
	EstimatedDurationMinutes int      `json:"estimated_duration_minutes"`
	IsActive                 bool     `json:"is_active"`
}

type MedicineRow struct {
	ID           int64  `json:"id"`
	MedicineCode string `json:"medicine_code"`
	MedicineName string `json:"medicine_name"`
	Category     string `json:"category"`
	UnitPrice    string `json:"unit_price"`
	IsActive     bool   `json:"is_active"`
}
