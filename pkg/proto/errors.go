package proto

import (
	"errors"
)

var (
	// ErrInvalidConfig is returned when a repository entry is missing a
	// required field.
	ErrInvalidConfig = errors.New("invalid repository configuration")
	// ErrRepoNotFound is returned when a repository is not found.
	ErrRepoNotFound = errors.New("repository not found")
	// ErrRepoExist is returned when a repository already exists.
	ErrRepoExist = errors.New("repository already exists")
	// ErrAuthenticationRequired is returned when an operation needs
	// credentials and none were supplied. The transport should challenge the
	// caller rather than reject outright.
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrAuthenticationFailed is returned when the supplied credentials
	// match no user. The message is shared between the unknown-user and
	// wrong-password cases on purpose.
	ErrAuthenticationFailed = errors.New("wrong username or password")
	// ErrPermissionDenied is returned when an authenticated user lacks the
	// permission an operation requires.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrProvisioningFailure is returned when creating a repository's
	// backing storage fails.
	ErrProvisioningFailure = errors.New("storage provisioning failed")
)
