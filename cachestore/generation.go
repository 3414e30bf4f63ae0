package cachestore

import "strings"

// Logical store roles. One generation per role is current at any time.
const (
	RoleStatic  = "static"
	RoleDynamic = "dynamic"
	RoleMedia   = "media"
)

// Roles lists every logical role in a stable order.
func Roles() []string {
	return []string{RoleStatic, RoleDynamic, RoleMedia}
}

// GenerationName builds the versioned store name for a role, e.g.
// "static-v3".
func GenerationName(role, version string) string {
	return role + "-" + version
}

// CurrentGenerations returns the store names that are current for the
// given version.
func CurrentGenerations(version string) []string {
	names := make([]string, 0, 3)
	for _, role := range Roles() {
		names = append(names, GenerationName(role, version))
	}
	return names
}

// GenerationRole extracts the role from a generation name, or "" when
// the name does not follow the {role}-{version} scheme.
func GenerationRole(name string) string {
	for _, role := range Roles() {
		if strings.HasPrefix(name, role+"-") {
			return role
		}
	}
	return ""
}
