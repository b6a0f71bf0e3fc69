// Package directory manages the clinic registry: staff accounts, doctor
// profiles, patient records and the supporting lookup tables.
package directory

import (
	"context"
	"log/slog"
	"strings"

	"github.com/md-rashed-zaman/clinicore/internal/clinicerr"
	"github.com/md-rashed-zaman/clinicore/internal/model"
	"github.com/md-rashed-zaman/clinicore/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	repo   *storage.DirectoryRepository
	logger *slog.Logger
}

func NewService(repo *storage.DirectoryRepository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// --- users ---

func (s *Service) CreateUser(ctx context.Context, u model.User, password string) (model.User, error) {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.TrimSpace(u.Email)
	if err := validateUser(u, password); err != nil {
		return model.User{}, err
	}

	if taken, err := s.repo.UsernameTaken(ctx, u.Username, 0); err != nil {
		return model.User{}, clinicerr.Storage(err, "username lookup failed")
	} else if taken {
		return model.User{}, clinicerr.Conflict("username %q is already taken", u.Username)
	}
	if taken, err := s.repo.EmailTaken(ctx, u.Email, 0); err != nil {
		return model.User{}, clinicerr.Storage(err, "email lookup failed")
	} else if taken {
		return model.User{}, clinicerr.Conflict("email %q is already registered", u.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, clinicerr.Storage(err, "password hashing failed")
	}

	created, err := s.repo.CreateUser(ctx, u, string(hash))
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return model.User{}, clinicerr.Conflict("username or email is already taken")
		}
		return model.User{}, clinicerr.Storage(err, "create user failed")
	}
	s.logger.Info("user created", "user_id", created.ID, "role", created.Role)
	return created, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (model.User, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		if storage.IsNotFound(err) {
			return model.User{}, clinicerr.NotFound("user %d not found", id)
		}
		return model.User{}, clinicerr.Storage(err, "get user failed")
	}
	return u, nil
}

func (s *Service) ListUsers(ctx context.Context, activeOnly bool) ([]model.User, error) {
	users, err := s.repo.ListUsers(ctx, activeOnly)
	if err != nil {
		return nil, clinicerr.Storage(err, "list users failed")
	}
	return users, nil
}

func (s *Service) DeactivateUser(ctx context.Context, id int64) error {
	if err := s.repo.DeactivateUser(ctx, id); err != nil {
		if storage.IsNotFound(err) {
			return clinicerr.NotFound("user %d not found", id)
		}
		return clinicerr.Storage(err, "deactivate user failed")
	}
	s.logger.Info("user deactivated", "user_id", id)
	return nil
}

// --- specializations / departments ---

func (s *Service) CreateSpecialization(ctx context.Context, sp model.Specialization) (model.Specialization, error) {
	sp.Name = strings.TrimSpace(sp.Name)
	if sp.Name == "" {
		return model.Specialization{}, clinicerr.Validation("name is required")
	}
	created, err := s.repo.CreateSpecialization(ctx, sp)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return model.Specialization{}, clinicerr.Conflict("specialization %q already exists", sp.Name)
		}
		return model.Specialization{}, clinicerr.Storage(err, "create specialization failed")
	}
	return created, nil
}

func (s *Service) ListSpecializations(ctx context.Context, activeOnly bool) ([]model.Specialization, error) {
	out, err := s.repo.ListSpecializations(ctx, activeOnly)
	if err != nil {
		return nil, clinicerr.Storage(err, "list specializations failed")
	}
	return out, nil
}

func (s *Service) DeactivateSpecialization(ctx context.Context, id int64) error {
	if err := s.repo.DeactivateSpecialization(ctx, id); err != nil {
		if storage.IsNotFound(err) {
			return clinicerr.NotFound("specialization %d not found", id)
		}
		return clinicerr.Storage(err, "deactivate specialization failed")
	}
	return nil
}

func (s *Service) CreateDepartment(ctx context.Context, d model.Department) (model.Department, error) {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return model.Department{}, clinicerr.Validation("name is required")
	}
	created, err := s.repo.CreateDepartment(ctx, d)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return model.Department{}, clinicerr.Conflict("department %q already exists", d.Name)
		}
		return model.Department{}, clinicerr.Storage(err, "create department failed")
	}
	return created, nil
}

func (s *Service) ListDepartments(ctx context.Context, activeOnly bool) ([]model.Department, error) {
	out, err := s.repo.ListDepartments(ctx, activeOnly)
	if err != nil {
		return nil, clinicerr.Storage(err, "list departments failed")
	}
	return out, nil
}

func (s *Service) DeactivateDepartment(ctx context.Context, id int64) error {
	if err := s.repo.DeactivateDepartment(ctx, id); err != nil {
		if storage.IsNotFound(err) {
			return clinicerr.NotFound("department %d not found", id)
		}
		return clinicerr.Storage(err, "deactivate department failed")
	}
	return nil
}

// --- doctors ---

func (s *Service) RegisterDoctor(ctx context.Context, d model.Doctor) (model.Doctor, error) {
	d.LicenseNumber = strings.TrimSpace(d.LicenseNumber)
	if err := validateDoctor(d); err != nil {
		return model.Doctor{}, err
	}

	if active, err := s.repo.UserActive(ctx, d.UserID); err != nil {
		return model.Doctor{}, clinicerr.Storage(err, "user lookup failed")
	} else if !active {
		return model.Doctor{}, clinicerr.Validation("user %d does not exist or is inactive", d.UserID)
	}
	if exists, err := s.repo.UserIsDoctor(ctx, d.UserID, 0); err != nil {
		return model.Doctor{}, clinicerr.Storage(err, "doctor lookup failed")
	} else if exists {
		return model.Doctor{}, clinicerr.Conflict("user %d already has a doctor profile", d.UserID)
	}
	if ok, err := s.repo.SpecializationExists(ctx, d.SpecializationID); err != nil {
		return model.Doctor{}, clinicerr.Storage(err, "specialization lookup failed")
	} else if !ok {
		return model.Doctor{}, clinicerr.Validation("specialization %d does not exist", d.SpecializationID)
	}
	if d.DepartmentID != nil {
		if ok, err := s.repo.DepartmentExists(ctx, *d.DepartmentID); err != nil {
			return model.Doctor{}, clinicerr.Storage(err, "department lookup failed")
		} else if !ok {
			return model.Doctor{}, clinicerr.Validation("department %d does not exist", *d.DepartmentID)
		}
	}
	if taken, err := s.repo.LicenseTaken(ctx, d.LicenseNumber, 0); err != nil {
		return model.Doctor{}, clinicerr.Storage(err, "license lookup failed")
	} else if taken {
		return model.Doctor{}, clinicerr.Conflict("license number %q is already registered", d.LicenseNumber)
	}

	created, err := s.repo.CreateDoctor(ctx, d)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return model.Doctor{}, clinicerr.Conflict("license number %q is already registered", d.LicenseNumber)
		}
		return model.Doctor{}, clinicerr.Storage(err, "create doctor failed")
	}
	s.logger.Info("doctor registered", "doctor_id", created.ID, "user_id", created.UserID)
	return created, nil
}

func (s *Service) UpdateDoctor(ctx context.Context, d model.Doctor) error {
	d.LicenseNumber = strings.TrimSpace(d.LicenseNumber)
	if d.ID <= 0 {
		return clinicerr.Validation("doctor id is required")
	}
	if err := validateDoctor(d); err != nil {
		return err
	}
	if ok, err := s.repo.SpecializationExists(ctx, d.SpecializationID); err != nil {
		return clinicerr.Storage(err, "specialization lookup failed")
	} else if !ok {
		return clinicerr.Validation("specialization %d does not exist", d.SpecializationID)
	}
	if d.DepartmentID != nil {
		if ok, err := s.repo.DepartmentExists(ctx, *d.DepartmentID); err != nil {
			return clinicerr.Storage(err, "department lookup failed")
		} else if !ok {
			return clinicerr.Validation("department %d does not exist", *d.DepartmentID)
		}
	}
	if taken, err := s.repo.LicenseTaken(ctx, d.LicenseNumber, d.ID); err != nil {
		return clinicerr.Storage(err, "license lookup failed")
	} else if taken {
		return clinicerr.Conflict("license number %q is already registered", d.LicenseNumber)
	}

	if err := s.repo.UpdateDoctor(ctx, d); err != nil {
		if storage.IsNotFound(err) {
			return clinicerr.NotFound("doctor %d not found", d.ID)
		}
		if storage.IsUniqueViolation(err) {
			return clinicerr.Conflict("license number %q is already registered", d.LicenseNumber)
		}
		return clinicerr.Storage(err, "update doctor failed")
	}
	return nil
}

func (s *Service) GetDoctor(ctx context.Context, id int64) (model.Doctor, error) {
	d, err := s.repo.GetDoctor(ctx, id)
	if err != nil {
		if storage.IsNotFound(err) {
			return model.Doctor{}, clinicerr.NotFound("doctor %d not found", id)
		}
		return model.Doctor{}, clinicerr.Storage(err, "get doctor failed")
	}
	return d, nil
}

func (s *Service) DeactivateDoctor(ctx context.Context, id int64) error {
	if err := s.repo.DeactivateDoctor(ctx, id); err != nil {
		if storage.IsNotFound(err) {
			return clinicerr.NotFound("doctor %d not found", id)
		}
		return clinicerr.Storage(err, "deactivate doctor failed")
	}
	s.logger.Info("doctor deactivated", "doctor_id", id)
	return nil
}

func (s *Service) SearchDoctors(ctx context.Context, q string) ([]model.DoctorSummary, error) {
	out, err := s.repo.SearchDoctors(ctx, strings.TrimSpace(q))
	if err != nil {
		return nil, clinicerr.Storage(err, "search doctors failed")
	}
	return out, nil
}

// --- patients ---

func (s *Service) RegisterPatient(ctx context.Context, p model.Patient) (model.Patient, error) {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	if err := validatePatient(p); err != nil {
		return model.Patient{}, err
	}

	created, err := s.repo.CreatePatient(ctx, p)
	if err != nil {
		if storage.IsCheckViolation(err) {
			return model.Patient{}, clinicerr.Validation("patient record violates a data constraint")
		}
		return model.Patient{}, clinicerr.Storage(err, "create patient failed")
	}
	s.logger.Info("patient registered", "patient_id", created.ID, "patient_code", created.Code)
	return created, nil
}

func (s *Service) UpdatePatient(ctx context.Context, p model.Patient) error {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	if p.ID <= 0 {
		return clinicerr.Validation("patient id is required")
	}
	if err := validatePatient(p); err != nil {
		return err
	}
	if err := s.repo.UpdatePatient(ctx, p); err != nil {
		if storage.IsNotFound(err) {
			return clinicerr.NotFound("patient %d not found", p.ID)
		}
		if storage.IsCheckViolation(err) {
			return clinicerr.Validation("patient record violates a data constraint")
		}
		return clinicerr.Storage(err, "update patient failed")
	}
	return nil
}

func (s *Service) GetPatient(ctx context.Context, id int64) (model.Patient, error) {
	p, err := s.repo.GetPatient(ctx, id)
	if err != nil {
		if storage.IsNotFound(err) {
			return model.Patient{}, clinicerr.NotFound("patient %d not found", id)
		}
		return model.Patient{}, clinicerr.Storage(err, "get patient failed")
	}
	return p, nil
}

func (s *Service) DeactivatePatient(ctx context.Context, id int64) error {
	if err := s.repo.DeactivatePatient(ctx, id); err != nil {
		if storage.IsNotFound(err) {
			return clinicerr.NotFound("patient %d not found", id)
		}
		return clinicerr.Storage(err, "deactivate patient failed")
	}
	s.logger.Info("patient deactivated", "patient_id", id)
	return nil
}

func (s *Service) SearchPatients(ctx context.Context, q string) ([]model.Patient, error) {
	out, err := s.repo.SearchPatients(ctx, strings.TrimSpace(q))
	if err != nil {
		return nil, clinicerr.Storage(err, "search patients failed")
	}
	return out, nil
}
