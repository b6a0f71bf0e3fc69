package transfer

import (
	"context"

	"github.com/jackc/pgx/v5"
)

func exportUsers(ctx context.Context, tx pgx.Tx) ([]UserRow, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, username, password_hash, first_name, last_name, email, phone, role, is_active, created_at
		FROM users ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []UserRow{}
	for rows.Next() {
		var r UserRow
		if err := rows.Scan(&r.ID, &r.Username, &r.PasswordHash, &r.FirstName, &r.LastName,
			&r.Email, &r.Phone, &r.Role, &r.IsActive, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func importUsers(ctx context.Context, tx pgx.Tx, rows []UserRow) error {
	for _, r := range rows {
		if _, err := tx.Exec(ctx, `
			INSERT INTO users (id, username, password_hash, first_name, last_name, email, phone, role, is_active, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, r.ID, r.Username, r.PasswordHash, r.FirstName, r.LastName,
			r.Email, r.Phone, r.Role, r.IsActive, r.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func exportSpecializations(ctx context.Context, tx pgx.Tx) ([]SpecializationRow, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, name, description, is_active FROM specializations ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SpecializationRow{}
	for rows.Next() {
		var r SpecializationRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.IsActive); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func importSpecializations(ctx context.Context, tx pgx.Tx, rows []SpecializationRow) error {
	for _, r := range rows {
		if _, err := tx.Exec(ctx, `
			INSERT INTO specializations (id, name, description, is_active)
			VALUES ($1, $2, $3, $4)
		`, r.ID, r.Name, r.Description, r.IsActive); err != nil {
			return err
		}
	}
	return nil
}

func exportDepartments(ctx context.Context, tx pgx.Tx) ([]DepartmentRow, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, name, description, location, extension_number, is_active FROM departments ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []DepartmentRow{}
	for rows.Next() {
		var r DepartmentRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.Location, &r.ExtensionNumber, &r.IsActive); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func importDepartments(ctx context.Context, tx pgx.Tx, rows []DepartmentRow) error {
	for _, r := range rows {
		if _, err := tx.Exec(ctx, `
			INSERT INTO departments (id, name, description, location, extension_number, is_active)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, r.ID, r.Name, r.Description, r.Location, r.ExtensionNumber, r.IsActive); err != nil {
			return err
		}
	}
	return nil
}

func exportDoctors(ctx context.Context, tx pgx.Tx) ([]DoctorRow, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, user_id, specialization_id, department_id, license_number, years_of_experience, is_active
		FROM doctors ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []DoctorRow{}
	for rows.Next() {
		var r DoctorRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.SpecializationID, &r.DepartmentID,
			&r.LicenseNumber, &r.YearsOfExperience, &r.IsActive); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func importDoctors(ctx context.Context, tx pgx.Tx, rows []DoctorRow) error {
	for _, r := range rows {
		if _, err := tx.Exec(ctx, `
			INSERT INTO doctors (id, user_id, specialization_id, department_id, license_number, years_of_experience, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, r.ID, r.UserID, r.SpecializationID, r.DepartmentID,
			r.LicenseNumber, r.YearsOfExperience, r.IsActive); err != nil {
			return err
		}
	}
	return nil
}

func exportPatients(ctx context.Context, tx pgx.Tx) ([]PatientRow, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, patient_code, first_name, last_name, date_of_birth::text, gender, blood_group,
			phone, email, address, emergency_contact_name, emergency_contact_phone,
			is_active, created_at, modified_at
		FROM patients ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []PatientRow{}
	for rows.Next() {
		var r PatientRow
		if err := rows.Scan(&r.ID, &r.PatientCode, &r.FirstName, &r.LastName, &r.DateOfBirth, &r.Gender,
			&r.BloodGroup, &r.Phone, &r.Email, &r.Address, &r.EmergencyContactName,
			&r.EmergencyContactPhone, &r.IsActive, &r.CreatedAt, &r.ModifiedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func importPatients(ctx context.Context, tx pgx.Tx, rows []PatientRow) error {
	for _, r := range rows {
		if _, err := tx.Exec(ctx, `
			INSERT INTO patients
				(id, patient_code, first_name, last_name, date_of_birth, gender, blood_group,
				phone, email, address, emergency_contact_name, emergency_contact_phone,
				is_active, created_at, modified_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		`, r.ID, r.PatientCode, r.FirstName, r.LastName, r.DateOfBirth, r.Gender, r.BloodGroup,
			r.Phone, r.Email, r.Address, r.EmergencyContactName, r.EmergencyContactPhone,
			r.IsActive, r.CreatedAt, r.ModifiedAt); err != nil {
			return err
		}
	}
	return nil
}

func exportAppointments(ctx context.Context, tx pgx.Tx) ([]AppointmentRow, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, patient_id, doctor_id, appointment_date::text, appointment_time, status, notes, created_at
		FROM appointments ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []AppointmentRow{}
	for rows.Next() {
		var r AppointmentRow
		if err := rows.Scan(&r.ID, &r.PatientID, &r.DoctorID, &r.Date, &r.Time, &r.Status, &r.Notes, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func importAppointments(ctx context.Context, tx pgx.Tx, rows []AppointmentRow) error {
	for _, r := range rows {
		if _, err := tx.Exec(ctx, `
			INSERT INTO appointments (id, patient_id, doctor_id, appointment_date, appointment_time, status, notes, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, r.ID, r.PatientID, r.DoctorID, r.Date, r.Time, r.Status, r.Notes, r.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func exportBills(ctx context.Context, tx pgx.Tx) ([]BillRow, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, appointment_id, bill_date, total_amount::text, payment_status, payment_method, paid_amount::text, created_by
		FROM bills ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []BillRow{}
	for rows.Next() {
		var r BillRow
		if err := rows.Scan(&r.ID, &r.AppointmentID, &r.BillDate, &r.TotalAmount,
			&r.PaymentStatus, &r.PaymentMethod, &r.PaidAmount, &r.CreatedBy); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func importBills(ctx context.Context, tx pgx.Tx, rows []BillRow) error {
	for _, r := range rows {
		if _, err := tx.Exec(ctx, `
			INSERT INTO bills (id, appointment_id, bill_date, total_amount, payment_status, payment_method, paid_amount, created_by)
			VALUES ($1, $2, $3, $4::numeric, $5, $6, $7::numeric, $8)
		`, r.ID, r.AppointmentID, r.BillDate, r.TotalAmount,
			r.PaymentStatus, r.PaymentMethod, r.PaidAmount, r.CreatedBy); err != nil {
			return err
		}
	}
	return nil
}

func exportBillItems(ctx context.Context, tx pgx.Tx) ([]BillItemRow, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, bill_id, service_type, description, quantity, unit_price::text, medicine_id, test_id
		FROM bill_items ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []BillItemRow{}
	for rows.Next() {
		var r BillItemRow
		if err := rows.Scan(&r.ID, &r.BillID, &r.ServiceType, &r.Description,
			&r.Quantity, &r.UnitPrice, &r.MedicineID, &r.TestID); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func importBillItems(ctx context.Context, tx pgx.Tx, rows []BillItemRow) error {
	for _, r := range rows {
		if _, err := tx.Exec(ctx, `
			INSERT INTO bill_items (id, bill_id, service_type, description, quantity, unit_price, medicine_id, test_id)
			VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8)
		`, r.ID, r.BillID, r.ServiceType, r.Description,
			r.Quantity, r.UnitPrice, r.MedicineID, r.TestID); err != nil {
			return err
		}
	}
	return nil
}

func exportMedicalTests(ctx context.Context, tx pgx.Tx) ([]MedicalTestRow, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, test_code, test_name, department_id, cost::text, normal_range_min, normal_range_max,
			unit, preparation_instructions, estimated_duration_minutes, is_active
		FROM medical_tests ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []MedicalTestRow{}
	for rows.Next() {
		var r MedicalTestRow
		if err := rows.Scan(&r.ID, &r.TestCode, &r.TestName, &r.DepartmentID, &r.Cost,
			&r.NormalRangeMin, &r.NormalRangeMax, &r.Unit, &r.PreparationInstructions,
			&r.EstimatedDurationMinutes, &r.IsActive); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func importMedicalTests(ctx context.Context, tx pgx.Tx, rows []MedicalTestRow) error {
	for _, r := range rows {
		if _, err := tx.Exec(ctx, `
			INSERT INTO medical_tests
				(id, test_code, test_name, department_id, cost, normal_range_min, normal_range_max,
				unit, preparation_instructions, estimated_duration_minutes, is_active)
			VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9, $10, $11)
		`, r.ID, r.TestCode, r.TestName, r.DepartmentID, r.Cost,
			r.NormalRangeMin, r.NormalRangeMax, r.Unit, r.PreparationInstructions,
			r.EstimatedDurationMinutes, r.IsActive); err != nil {
			return err
		}
	}
	return nil
}

func exportMedicines(ctx context.Context, tx pgx.Tx) ([]MedicineRow, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, medicine_code, medicine_name, category, unit_price::text, is_active
		FROM medicines ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []MedicineRow{}
	for rows.Next() {
		var r MedicineRow
		if err := rows.Scan(&r.ID, &r.MedicineCode, &r.MedicineName, &r.Category, &r.UnitPrice, &r.IsActive); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func importMedicines(ctx context.Context, tx pgx.Tx, rows []MedicineRow) error {
	for _, r := range rows {
		if _, err := tx.Exec(ctx, `
			INSERT INTO medicines (id, medicine_code, medicine_name, category, unit_price, is_active)
			VALUES ($1, $2, $3, $4, $5::numeric, $6)
		`, r.ID, r.MedicineCode, r.MedicineName, r.Category, r.UnitPrice, r.IsActive); err != nil {
			return err
		}
	}
	return nil
}
