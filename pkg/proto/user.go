package proto

import (
	"github.com/gitgate/gitgate/pkg/access"
)

// UserBinding grants a user a set of permissions on a single repository.
// The username is unique within the owning repository's user list, not
// globally. The credential is either the plaintext secret or its hex SHA-256
// digest. Bindings are immutable once loaded.
type UserBinding struct {
	Username    string              `yaml:"username"`
	Credential  string              `yaml:"credential"`
	Permissions []access.Permission `yaml:"permissions"`
}

// HasPermission returns whether the binding grants the given permission.
func (u UserBinding) HasPermission(p access.Permission) bool {
	for _, perm := range u.Permissions {
		if perm == p {
			return true
		}
	}

	return false
}
