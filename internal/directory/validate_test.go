package directory

import (
	"testing"

	"github.com/md-rashed-zaman/clinicore/internal/clinicerr"
	"github.com/md-rashed-zaman/clinicore/internal/model"
)

func TestValidateUser(t *testing.T) {
	base := model.User{
		Username:  "asha",
		FirstName: "Asha",
		LastName:  "Rahman",
		Email:     "asha@clinic.example",
		Role:      model.RoleReceptionist,
	}

	if err := validateUser(base, "long-enough-pw"); err != nil {
		t.Fatalf("valid user rejected: %v", err)
	}

	cases := []struct {
		name     string
		mutate   func(*model.User)
		password string
	}{
		{"missing username", func(u *model.User) { u.Username = " " }, "long-enough-pw"},
		{"missing name", func(u *model.User) { u.FirstName = "" }, "long-enough-pw"},
		{"bad email", func(u *model.User) { u.Email = "not-an-email" }, "long-enough-pw"},
		{"bad role", func(u *model.User) { u.Role = "Janitor" }, "long-enough-pw"},
		{"short password", func(u *model.User) {}, "short"},
	}
	for _, tc := range cases {
		u := base
		tc.mutate(&u)
		err := validateUser(u, tc.password)
		if !clinicerr.IsValidation(err) {
			t.Fatalf("%s: want validation error, got %v", tc.name, err)
		}
	}
}

func TestValidatePatient(t *testing.T) {
	base := model.Patient{
		FirstName:   "Nadia",
		LastName:    "Karim",
		DateOfBirth: "1990-04-12",
		Gender:      model.GenderFemale,
	}

	if err := validatePatient(base); err != nil {
		t.Fatalf("valid patient rejected: %v", err)
	}

	p := base
	p.DateOfBirth = "12/04/1990"
	if !clinicerr.IsValidation(validatePatient(p)) {
		t.Fatal("non ISO date must be rejected")
	}

	p = base
	p.Gender = "unknown"
	if !clinicerr.IsValidation(validatePatient(p)) {
		t.Fatal("unknown gender must be rejected")
	}

	p = base
	p.BloodGroup = "C+"
	if !clinicerr.IsValidation(validatePatient(p)) {
		t.Fatal("unknown blood group must be rejected")
	}

	p = base
	p.BloodGroup = "O-"
	if err := validatePatient(p); err != nil {
		t.Fatalf("valid blood group rejected: %v", err)
	}
}

func TestValidateDoctor(t *testing.T) {
	d := model.Doctor{UserID: 1, SpecializationID: 2, LicenseNumber: "BMDC-1234"}
	if err := validateDoctor(d); err != nil {
		t.Fatalf("valid doctor rejected: %v", err)
	}
	d.YearsOfExperience = -1
	if !clinicerr.IsValidation(validateDoctor(d)) {
		t.Fatal("negative experience must be rejected")
	}
	d = model.Doctor{UserID: 1, SpecializationID: 2}
	if !clinicerr.IsValidation(validateDoctor(d)) {
		t.Fatal("missing license must be rejected")
	}
}
