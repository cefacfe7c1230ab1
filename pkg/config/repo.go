package config

import (
	"fmt"

	"github.com/gitgate/gitgate/pkg/access"
	"github.com/gitgate/gitgate/pkg/proto"
	"github.com/gitgate/gitgate/pkg/utils"
)

// Repository converts a configuration entry into a repository. Unknown
// permission strings make the entry invalid.
func (rc RepoConfig) Repository() (*proto.Repository, error) {
	users := make([]proto.UserBinding, 0, len(rc.Users))
	for _, uc := range rc.Users {
		if err := utils.ValidateUsername(uc.Username); err != nil {
			return nil, fmt.Errorf("%w: repo %q: %s", proto.ErrInvalidConfig, rc.Name, err)
		}
		perms := make([]access.Permission, 0, len(uc.Permissions))
		for _, ps := range uc.Permissions {
			p := access.ParsePermission(ps)
			if p < 0 {
				return nil, fmt.Errorf("%w: repo %q user %q: %q", proto.ErrInvalidConfig, rc.Name, uc.Username, ps)
			}
			perms = append(perms, p)
		}
		users = append(users, proto.UserBinding{
			Username:    uc.Username,
			Credential:  uc.Credential,
			Permissions: perms,
		})
	}

	return &proto.Repository{
		Name:          rc.Name,
		AnonymousRead: rc.AnonymousRead,
		Users:         users,
	}, nil
}
