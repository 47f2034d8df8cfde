package domain

// Role describes one of the backend's account roles.
type Role struct {
	ID       string
	Label    string
	Rank     int
	HexColor string
}

// Roles ordered by rank: ROOT implies ADMIN implies USER.
var Roles = map[string]Role{
	"ROOT":  {ID: "ROOT", Label: "root", Rank: 3, HexColor: "#E67E22"},
	"ADMIN": {ID: "ADMIN", Label: "administrator", Rank: 2, HexColor: "#9B59B6"},
	"USER":  {ID: "USER", Label: "user", Rank: 1, HexColor: "#2ECC71"},
}

// ValidRoleID returns true if the given ID is a known role.
func ValidRoleID(id string) bool {
	_, ok := Roles[id]
	return ok
}

// RoleImplies reports whether holding role grants everything required.
// Unknown roles imply nothing.
func RoleImplies(role, required string) bool {
	have, ok := Roles[role]
	if !ok {
		return false
	}
	want, ok := Roles[required]
	if !ok {
		return false
	}
	return have.Rank >= want.Rank
}
