package directory

import (
	"strings"
	"time"

	"github.com/md-rashed-zaman/clinicore/internal/clinicerr"
	"github.com/md-rashed-zaman/clinicore/internal/model"
)

const minPasswordLen = 8

func validateUser(u model.User, password string) error {
	if strings.TrimSpace(u.Username) == "" {
		return clinicerr.Validation("username is required")
	}
	if strings.TrimSpace(u.FirstName) == "" || strings.TrimSpace(u.LastName) == "" {
		return clinicerr.Validation("first and last name are required")
	}
	if !validEmail(u.Email) {
		return clinicerr.Validation("invalid email address")
	}
	if !model.ValidRole(u.Role) {
		return clinicerr.Validation("invalid role %q", u.Role)
	}
	if len(password) < minPasswordLen {
		return clinicerr.Validation("password must be at least %d characters", minPasswordLen)
	}
	return nil
}

func validateDoctor(d model.Doctor) error {
	if d.UserID <= 0 {
		return clinicerr.Validation("user_id is required")
	}
	if d.SpecializationID <= 0 {
		return clinicerr.Validation("specialization_id is required")
	}
	if strings.TrimSpace(d.LicenseNumber) == "" {
		return clinicerr.Validation("license_number is required")
	}
	if d.YearsOfExperience < 0 {
		return clinicerr.Validation("years_of_experience cannot be negative")
	}
	return nil
}

func validatePatient(p model.Patient) error {
	if strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.LastName) == "" {
		return clinicerr.Validation("first and last name are required")
	}
	if _, err := time.Parse("2006-01-02", p.DateOfBirth); err != nil {
		return clinicerr.Validation("date_of_birth must be YYYY-MM-DD")
	}
	if !model.ValidGender(p.Gender) {
		return clinicerr.Validation("invalid gender %q", p.Gender)
	}
	if p.BloodGroup != "" && !model.ValidBloodGroup(p.BloodGroup) {
		return clinicerr.Validation("invalid blood group %q", p.BloodGroup)
	}
	if p.Email != "" && !validEmail(p.Email) {
		return clinicerr.Validation("invalid email address")
	}
	return nil
}

// validEmail is a cheap shape check; deliverability is not our problem.
func validEmail(s string) bool {
	s = strings.TrimSpace(s)
	at := strings.Index(s, "@")
	if at <= 0 || at == len(s)-1 {
		return false
	}
	domain := s[at+1:]
	return strings.Contains(domain, ".") && !strings.ContainsAny(s, " \t")
}
