package users

import (
	"encoding/json"
	"strings"

	"github.com/studyhub/portal/ids"
)

// RoleType is the portal role a user acts under
type RoleType string

const (
	RoleAdmin     RoleType = "admin"
	RoleStudent   RoleType = "student"
	RoleMentor    RoleType = "mentor"
	RoleDeveloper RoleType = "developer"
)

// Known reports whether the role is one the portal has UI for
func (r RoleType) Known() bool {
	switch r {
	case RoleAdmin, RoleStudent, RoleMentor, RoleDeveloper:
		return true
	}
	return false
}

// Payload is a user as the backend sends it, before normalization
type Payload struct {
	ID           ids.ID   `json:"id"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	Role         string   `json:"role"`
	IsSuperuser  bool     `json:"is_superuser"`
	IsStaff      bool     `json:"is_staff"`
	Skills       []string `json:"skills"`
	Availability string   `json:"availability"`
	College      string   `json:"college"`
	Branch       string   `json:"branch"`
	Bio          string   `json:"bio"`
	IsMentor     bool     `json:"is_mentor"`
}

// User is the normalized identity held by the session
type User struct {
	ID           ids.ID   `json:"id"`
	Username     string   `json:"username"`
	Email        string   `json:"email,omitempty"`
	FirstName    string   `json:"first_name,omitempty"`
	LastName     string   `json:"last_name,omitempty"`
	Role         RoleType `json:"role"`
	Skills       []string `json:"skills,omitempty"`
	Availability string   `json:"availability,omitempty"`
	College      string   `json:"college,omitempty"`
	Branch       string   `json:"branch,omitempty"`
	Bio          string   `json:"bio,omitempty"`
	IsMentor     bool     `json:"is_mentor,omitempty"`
}

// DeriveRole applies the backend's role precedence:
// superuser → admin, explicit role, staff → mentor, otherwise student.
func DeriveRole(p Payload) RoleType {
	if p.IsSuperuser {
		return RoleAdmin
	}
	if role := strings.ToLower(strings.TrimSpace(p.Role)); role != "" {
		return RoleType(role)
	}
	if p.IsStaff {
		return RoleMentor
	}
	return RoleStudent
}

// Normalize converts a backend payload into a User
func Normalize(p Payload) *User {
	return &User{
		ID:           p.ID,
		Username:     p.Username,
		Email:        p.Email,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Role:         DeriveRole(p),
		Skills:       p.Skills,
		Availability: p.Availability,
		College:      p.College,
		Branch:       p.Branch,
		Bio:          p.Bio,
		IsMentor:     p.IsMentor,
	}
}

// NormalizeJSON decodes and normalizes a raw user object
func NormalizeJSON(raw json.RawMessage) (*User, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return Normalize(p), nil
}

// DisplayName prefers the full name and falls back to the username
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// The helpers below only decide which actions the client offers. They are not an
// authorization boundary: the backend must enforce every permission itself.

// IsAdmin reports whether the user should see admin actions
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// CanMentor reports whether mentoring actions should be offered
func (u *User) CanMentor() bool {
	return u != nil && (u.Role == RoleMentor || u.Role == RoleAdmin || u.IsMentor)
}

// CanBecomeMentor reports whether the "become a mentor" action should be offered
func (u *User) CanBecomeMentor() bool {
	return u != nil && !u.CanMentor()
}

// CanCreateClub reports whether club creation should be offered
func (u *User) CanCreateClub() bool {
	return u != nil && (u.Role == RoleAdmin || u.Role == RoleMentor || u.Role == RoleDeveloper)
}

// HasSkill matches a skill case-insensitively
func (u *User) HasSkill(skill string) bool {
	if u == nil {
		return false
	}
	for _, s := range u.Skills {
		if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(skill)) {
			return true
		}
	}
	return false
}
