package access

import (
	"encoding"
	"errors"
)

// Permission is a capability granted to a user on a repository.
type Permission int // nolint: revive

const (
	// ReadPermission allows fetching from the repo and listing its refs.
	ReadPermission Permission = iota

	// WritePermission allows pushing to the repo.
	WritePermission
)

// String returns the string representation of the permission.
func (p Permission) String() string {
	switch p {
	case ReadPermission:
		return "read"
	case WritePermission:
		return "write"
	default:
		return "unknown"
	}
}

// ParsePermission parses a permission string. It accepts both the long form
// and the single-letter form used in repository configuration files.
func ParsePermission(s string) Permission {
	switch s {
	case "read", "R":
		return ReadPermission
	case "write", "W":
		return WritePermission
	default:
		return Permission(-1)
	}
}

var (
	_ encoding.TextMarshaler   = Permission(0)
	_ encoding.TextUnmarshaler = (*Permission)(nil)
)

// ErrInvalidPermission is returned when an invalid permission is provided.
var ErrInvalidPermission = errors.New("invalid permission")

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Permission) UnmarshalText(text []byte) error {
	perm := ParsePermission(string(text))
	if perm < 0 {
		return ErrInvalidPermission
	}

	*p = perm

	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (p Permission) MarshalText() (text []byte, err error) {
	return []byte(p.String()), nil
}
