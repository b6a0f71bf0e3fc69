package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/clinicore/internal/db"
	"github.com/md-rashed-zaman/clinicore/internal/model"
	"github.com/md-rashed-zaman/clinicore/internal/sequence"
)

// DirectoryRepository persists the registry entities: staff users, doctors,
// patients, departments and specializations.
type DirectoryRepository struct {
	pool *db.Pool
}

func NewDirectoryRepository(pool *db.Pool) *DirectoryRepository {
	return &DirectoryRepository{pool: pool}
}

func (r *DirectoryRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// --- users ---

func (r *DirectoryRepository) CreateUser(ctx context.Context, u model.User, passwordHash string) (model.User, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, password_hash, first_name, last_name, email, phone, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, is_active, created_at
	`, u.Username, passwordHash, u.FirstName, u.LastName, u.Email, u.Phone, u.Role).
		Scan(&u.ID, &u.IsActive, &u.CreatedAt)
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

func (r *DirectoryRepository) GetUser(ctx context.Context, id int64) (model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx, `
		SELECT id, username, first_name, last_name, email, phone, role, is_active, created_at
		FROM users
		WHERE id = $1
	`, id).Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.Role, &u.IsActive, &u.CreatedAt)
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

func (r *DirectoryRepository) ListUsers(ctx context.Context, activeOnly bool) ([]model.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, username, first_name, last_name, email, phone, role, is_active, created_at
		FROM users
		WHERE NOT $1 OR is_active
		ORDER BY last_name, first_name
	`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.Role, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *DirectoryRepository) DeactivateUser(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *DirectoryRepository) UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error) {
	var taken bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 AND id <> $2)
	`, username, excludeID).Scan(&taken)
	return taken, err
}

func (r *DirectoryRepository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var taken bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)
	`, email, excludeID).Scan(&taken)
	return taken, err
}

// --- specializations / departments ---

func (r *DirectoryRepository) CreateSpecialization(ctx context.Context, s model.Specialization) (model.Specialization, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO specializations (name, description)
		VALUES ($1, $2)
		RETURNING id, is_active
	`, s.Name, s.Description).Scan(&s.ID, &s.IsActive)
	if err != nil {
		return model.Specialization{}, err
	}
	return s, nil
}

func (r *DirectoryRepository) ListSpecializations(ctx context.Context, activeOnly bool) ([]model.Specialization, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, is_active
		FROM specializations
		WHERE NOT $1 OR is_active
		ORDER BY name
	`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Specialization
	for rows.Next() {
		var s model.Specialization
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.IsActive); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *DirectoryRepository) DeactivateSpecialization(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE specializations SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *DirectoryRepository) SpecializationExists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM specializations WHERE id = $1 AND is_active)
	`, id).Scan(&ok)
	return ok, err
}

func (r *DirectoryRepository) CreateDepartment(ctx context.Context, d model.Department) (model.Department, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO departments (name, description, location, extension_number)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_active
	`, d.Name, d.Description, d.Location, d.ExtensionNumber).Scan(&d.ID, &d.IsActive)
	if err != nil {
		return model.Department{}, err
	}
	return d, nil
}

func (r *DirectoryRepository) ListDepartments(ctx context.Context, activeOnly bool) ([]model.Department, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, location, extension_number, is_active
		FROM departments
		WHERE NOT $1 OR is_active
		ORDER BY name
	`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Department
	for rows.Next() {
		var d model.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.Location, &d.ExtensionNumber, &d.IsActive); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *DirectoryRepository) DeactivateDepartment(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE departments SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *DirectoryRepository) DepartmentExists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM departments WHERE id = $1 AND is_active)
	`, id).Scan(&ok)
	return ok, err
}

// --- doctors ---

func (r *DirectoryRepository) CreateDoctor(ctx context.Context, d model.Doctor) (model.Doctor, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO doctors (user_id, specialization_id, department_id, license_number, years_of_experience)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_active
	`, d.UserID, d.SpecializationID, d.DepartmentID, d.LicenseNumber, d.YearsOfExperience).
		Scan(&d.ID, &d.IsActive)
	if err != nil {
		return model.Doctor{}, err
	}
	return d, nil
}

func (r *DirectoryRepository) UpdateDoctor(ctx context.Context, d model.Doctor) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE doctors
		SET specialization_id = $2,
			department_id = $3,
			license_number = $4,
			years_of_experience = $5
		WHERE id = $1
	`, d.ID, d.SpecializationID, d.DepartmentID, d.LicenseNumber, d.YearsOfExperience)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *DirectoryRepository) GetDoctor(ctx context.Context, id int64) (model.Doctor, error) {
	var d model.Doctor
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, specialization_id, department_id, license_number, years_of_experience, is_active
		FROM doctors
		WHERE id = $1
	`, id).Scan(&d.ID, &d.UserID, &d.SpecializationID, &d.DepartmentID, &d.LicenseNumber, &d.YearsOfExperience, &d.IsActive)
	if err != nil {
		return model.Doctor{}, err
	}
	return d, nil
}

func (r *DirectoryRepository) DeactivateDoctor(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE doctors SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SearchDoctors matches active doctors whose user name or license number
// contains q. An empty q lists all active doctors.
func (r *DirectoryRepository) SearchDoctors(ctx context.Context, q string) ([]model.DoctorSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT d.id,
			u.first_name || ' ' || u.last_name,
			s.name,
			COALESCE(dep.name, ''),
			d.license_number,
			d.years_of_experience
		FROM doctors d
		JOIN users u ON d.user_id = u.id
		JOIN specializations s ON d.specialization_id = s.id
		LEFT JOIN departments dep ON d.department_id = dep.id
		WHERE d.is_active
			AND ($1 = '' OR u.first_name ILIKE '%' || $1 || '%'
				OR u.last_name ILIKE '%' || $1 || '%'
				OR d.license_number ILIKE '%' || $1 || '%')
		ORDER BY u.last_name, u.first_name
	`, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.DoctorSummary
	for rows.Next() {
		var d model.DoctorSummary
		if err := rows.Scan(&d.ID, &d.Name, &d.Specialization, &d.Department, &d.LicenseNumber, &d.YearsOfExperience); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *DirectoryRepository) LicenseTaken(ctx context.Context, license string, excludeID int64) (bool, error) {
	var taken bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM doctors WHERE license_number = $1 AND id <> $2)
	`, license, excludeID).Scan(&taken)
	return taken, err
}

func (r *DirectoryRepository) UserActive(ctx context.Context, userID int64) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE id = $1 AND is_active)
	`, userID).Scan(&ok)
	return ok, err
}

func (r *DirectoryRepository) UserIsDoctor(ctx context.Context, userID int64, excludeDoctorID int64) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM doctors WHERE user_id = $1 AND id <> $2)
	`, userID, excludeDoctorID).Scan(&ok)
	return ok, err
}

// --- patients ---

// CreatePatient inserts the patient and assigns the sequential display code
// in the same transaction, so no reader ever observes a code-less patient.
func (r *DirectoryRepository) CreatePatient(ctx context.Context, p model.Patient) (model.Patient, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.Patient{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO patients
			(first_name, last_name, date_of_birth, gender, blood_group, phone, email,
			address, emergency_contact_name, emergency_contact_phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, is_active, created_at
	`, p.FirstName, p.LastName, p.DateOfBirth, p.Gender, nullIfEmpty(p.BloodGroup), p.Phone, p.Email,
		p.Address, p.EmergencyContactName, p.EmergencyContactPhone).
		Scan(&p.ID, &p.IsActive, &p.CreatedAt)
	if err != nil {
		return model.Patient{}, err
	}

	p.Code = sequence.PatientCode(p.ID)
	if _, err := tx.Exec(ctx, `
		UPDATE patients SET patient_code = $2 WHERE id = $1
	`, p.ID, p.Code); err != nil {
		return model.Patient{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Patient{}, err
	}
	return p, nil
}

func (r *DirectoryRepository) UpdatePatient(ctx context.Context, p model.Patient) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE patients
		SET first_name = $2,
			last_name = $3,
			date_of_birth = $4,
			gender = $5,
			blood_group = $6,
			phone = $7,
			email = $8,
			address = $9,
			emergency_contact_name = $10,
			emergency_contact_phone = $11,
			modified_at = now()
		WHERE id = $1
	`, p.ID, p.FirstName, p.LastName, p.DateOfBirth, p.Gender, nullIfEmpty(p.BloodGroup),
		p.Phone, p.Email, p.Address, p.EmergencyContactName, p.EmergencyContactPhone)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *DirectoryRepository) GetPatient(ctx context.Context, id int64) (model.Patient, error) {
	var p model.Patient
	var code, bloodGroup *string
	var modifiedAt *time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT id, patient_code, first_name, last_name, date_of_birth::text, gender, blood_group,
			phone, email, address, emergency_contact_name, emergency_contact_phone,
			is_active, created_at, modified_at
		FROM patients
		WHERE id = $1
	`, id).Scan(&p.ID, &code, &p.FirstName, &p.LastName, &p.DateOfBirth, &p.Gender, &bloodGroup,
		&p.Phone, &p.Email, &p.Address, &p.EmergencyContactName, &p.EmergencyContactPhone,
		&p.IsActive, &p.CreatedAt, &modifiedAt)
	if err != nil {
		return model.Patient{}, err
	}
	if code != nil {
		p.Code = *code
	}
	if bloodGroup != nil {
		p.BloodGroup = *bloodGroup
	}
	p.ModifiedAt = modifiedAt
	return p, nil
}

func (r *DirectoryRepository) DeactivatePatient(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE patients SET is_active = FALSE, modified_at = now() WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SearchPatients matches active patients whose name or display code contains
// q. An empty q lists all active patients.
func (r *DirectoryRepository) SearchPatients(ctx context.Context, q string) ([]model.Patient, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, patient_code, first_name, last_name, date_of_birth::text, gender, blood_group,
			phone, email, address, emergency_contact_name, emergency_contact_phone,
			is_active, created_at, modified_at
		FROM patients
		WHERE is_active
			AND ($1 = '' OR first_name ILIKE '%' || $1 || '%'
				OR last_name ILIKE '%' || $1 || '%'
				OR patient_code ILIKE '%' || $1 || '%')
		ORDER BY last_name, first_name
	`, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Patient
	for rows.Next() {
		var p model.Patient
		var code, bloodGroup *string
		var modifiedAt *time.Time
		if err := rows.Scan(&p.ID, &code, &p.FirstName, &p.LastName, &p.DateOfBirth, &p.Gender, &bloodGroup,
			&p.Phone, &p.Email, &p.Address, &p.EmergencyContactName, &p.EmergencyContactPhone,
			&p.IsActive, &p.CreatedAt, &modifiedAt); err != nil {
			return nil, err
		}
		if code != nil {
			p.Code = *code
		}
		if bloodGroup != nil {
			p.BloodGroup = *bloodGroup
		}
		p.ModifiedAt = modifiedAt
		out = append(out, p)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
