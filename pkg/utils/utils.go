// Package utils holds name sanitation helpers shared by the registry and
// the transport.
package utils

import (
	"fmt"
	"path"
	"strings"
	"unicode"
)

// SanitizeRepo cleans a repository name taken from an untrusted source. It
// strips any `.git` suffix and collapses path traversal so the result can
// be joined under the repositories directory.
func SanitizeRepo(repo string) string {
	// path, not filepath: request paths are slash separated on every OS.
	repo = strings.TrimPrefix(repo, "/")
	repo = path.Clean("/" + repo)
	repo = strings.TrimSuffix(repo, ".git")
	return repo[1:]
}

// ValidateUsername returns an error if the given username is invalid.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	if !unicode.IsLetter(rune(username[0])) {
		return fmt.Errorf("username must start with a letter")
	}

	for _, r := range username {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' {
			return fmt.Errorf("username can only contain letters, numbers, and hyphens")
		}
	}

	return nil
}

// ValidateRepo returns an error if the given repository name is invalid.
func ValidateRepo(repo string) error {
	if repo == "" {
		return fmt.Errorf("repo cannot be empty")
	}

	for _, r := range repo {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' && r != '.' && r != '/' {
			return fmt.Errorf("repo can only contain letters, numbers, hyphens, underscores, periods, and slashes")
		}
	}

	return nil
}
