package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Role is a fixed label assigned to a user account.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleSpecialist    Role = "specialist"
)

// Authority is a capability checked by route-level authorization.
type Authority string

const (
	AuthorityCatalogWrite  Authority = "catalog:write"
	AuthorityCatalogDelete Authority = "catalog:delete"
	AuthorityCommentsWrite Authority = "comments:write"
	AuthorityUsersManage   Authority = "users:manage"
)

var roleAuthorities = map[Role][]Authority{
	RoleAdministrator: {
		AuthorityCatalogWrite,
		AuthorityCatalogDelete,
		AuthorityCommentsWrite,
		AuthorityUsersManage,
	},
	RoleSpecialist: {
		AuthorityCatalogWrite,
		AuthorityCommentsWrite,
	},
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleAuthorities[r]
	return ok
}

// Authorities returns the capabilities granted by r. Unknown roles grant nothing.
func (r Role) Authorities() []Authority {
	return append([]Authority(nil), roleAuthorities[r]...)
}

// ParseRole converts a label into a Role, case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// ParseRoles parses a space-separated list of role names, as carried in the
// access token "roles" claim. Duplicates are collapsed.
func ParseRoles(s string) ([]Role, error) {
	fields := strings.Fields(s)
	roles := make([]Role, 0, len(fields))
	seen := make(map[Role]struct{}, len(fields))
	for _, f := range fields {
		r, err := ParseRole(f)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		roles = append(roles, r)
	}
	return roles, nil
}

// RolesString joins role names with a single space.
func RolesString(roles []Role) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, " ")
}

// AuthoritiesOf returns the sorted union of authorities granted by roles.
func AuthoritiesOf(roles []Role) []Authority {
	set := make(map[Authority]struct{})
	for _, r := range roles {
		for _, a := range roleAuthorities[r] {
			set[a] = struct{}{}
		}
	}
	out := make([]Authority, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// User models an account that can authenticate against the API.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Enabled      bool      `json:"enabled"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Usable reports whether the account may authenticate: enabled with at least one role.
func (u *User) Usable() bool {
	return u.Enabled && len(u.Roles) > 0
}

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID      string      `json:"id"`
	Username    string      `json:"username"`
	Roles       []Role      `json:"roles"`
	Authorities []Authority `json:"authorities"`
}

// NewPrincipal builds the request principal for u.
func NewPrincipal(u *User) Principal {
	return Principal{
		UserID:      u.ID,
		Username:    u.Username,
		Roles:       append([]Role(nil), u.Roles...),
		Authorities: AuthoritiesOf(u.Roles),
	}
}

// HasAuthority reports whether p holds a.
func (p Principal) HasAuthority(a Authority) bool {
	for _, have := range p.Authorities {
		if have == a {
			return true
		}
	}
	return false
}
