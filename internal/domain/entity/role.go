package entity

// Role classifies a Profile.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// ParseRole returns the Role named by s and whether s named a known role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RolePatient, RoleDoctor, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

func (r Role) String() string {
	return string(r)
}

// RoleFlags is the result of RoleGate.
type RoleFlags struct {
	IsAdmin  bool `json:"is_admin"`
	IsDoctor bool `json:"is_doctor"`
}

// RoleGate derives the navigation flags for a resolved profile. A nil profile
// has no privileges.
func RoleGate(profile *Profile) RoleFlags {
	if profile == nil {
		return RoleFlags{}
	}
	return RoleFlags{
		IsAdmin:  profile.Role == RoleAdmin,
		IsDoctor: profile.IsDoctor,
	}
}
