package model

// Profile is the role-specific half of a signup. Exactly one implementation
// exists per role, so a user can never carry another role's fields.
type Profile interface {
	Role() UserRole
	ApplyTo(u *User)
}

type PatientProfile struct {
	Age              int
	Disease          string
	HospitalAdmitted string
	EmergencyContact EmergencyContact
}

func (PatientProfile) Role() UserRole { return RolePatient }

func (p PatientProfile) ApplyTo(u *User) {
	age := p.Age
	u.Role = RolePatient
	u.Age = &age
	u.Disease = p.Disease
	u.HospitalAdmitted = p.HospitalAdmitted
	u.EmergencyContact = p.EmergencyContact
	clearDoctor(u)
}

type DoctorProfile struct {
	Specialization  string
	WorkingHospital string
	ShiftTiming     ShiftTiming
	LicenseNumber   string
}

func (DoctorProfile) Role() UserRole { return RoleDoctor }

func (d DoctorProfile) ApplyTo(u *User) {
	u.Role = RoleDoctor
	u.Specialization = d.Specialization
	u.WorkingHospital = d.WorkingHospital
	u.ShiftTiming = d.ShiftTiming
	u.LicenseNumber = d.LicenseNumber
	clearPatient(u)
}

func clearPatient(u *User) {
	u.Age = nil
	u.Disease = ""
	u.HospitalAdmitted = ""
	u.EmergencyContact = EmergencyContact{}
}

func clearDoctor(u *User) {
	u.Specialization = ""
	u.WorkingHospital = ""
	u.ShiftTiming = ShiftTiming{}
	u.LicenseNumber = ""
}
