package users_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/studyhub/portal/ids"
	"github.com/studyhub/portal/users"
)

func TestDeriveRole(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    users.RoleType
	}{
		{
			name:    "superuser wins over explicit role and staff",
			payload: `{"id": 1, "is_superuser": true, "is_staff": true, "role": "student"}`,
			want:    users.RoleAdmin,
		},
		{
			name:    "explicit role wins over staff",
			payload: `{"id": 2, "is_staff": true, "role": "Developer"}`,
			want:    users.RoleDeveloper,
		},
		{
			name:    "staff without role is a mentor",
			payload: `{"id": 3, "is_staff": true}`,
			want:    users.RoleMentor,
		},
		{
			name:    "plain user defaults to student",
			payload: `{"id": "4"}`,
			want:    users.RoleStudent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := users.NormalizeJSON(json.RawMessage(tt.payload))
			require.NoError(t, err)
			require.Equal(t, tt.want, user.Role)
		})
	}
}

func TestBlankRoleFallsThrough(t *testing.T) {
	require.Equal(t, users.RoleMentor, users.DeriveRole(users.Payload{Role: "  ", IsStaff: true}))
}

func TestNormalizeCopiesProfile(t *testing.T) {
	user, err := users.NormalizeJSON(json.RawMessage(`{
		"id": 12, "username": "asha", "first_name": "Asha", "last_name": "Rao",
		"skills": ["Go", "React"], "availability": "weekends", "college": "NIT", "branch": "CSE"
	}`))
	require.NoError(t, err)

	require.True(t, ids.Equal(user.ID, ids.MustParse("12")))
	require.Equal(t, "Asha Rao", user.DisplayName())
	require.Equal(t, "weekends", user.Availability)
	require.True(t, user.HasSkill("react"))
	require.False(t, user.HasSkill("rust"))
}

func TestRoleHelpers(t *testing.T) {
	student := &users.User{Role: users.RoleStudent}
	mentor := &users.User{Role: users.RoleMentor}
	admin := &users.User{Role: users.RoleAdmin}

	require.True(t, student.CanBecomeMentor())
	require.False(t, student.CanCreateClub())
	require.True(t, mentor.CanMentor())
	require.True(t, mentor.CanCreateClub())
	require.True(t, admin.IsAdmin())

	var nobody *users.User
	require.False(t, nobody.CanMentor())
	require.Equal(t, "", nobody.DisplayName())
	require.False(t, users.RoleType("guest").Known())
}
