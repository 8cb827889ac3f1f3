// Package seed creates fixed accounts for local development.
package seed

import (
	"context"
	"errors"
	"fmt"

	"heartbridge/internal/apperrors"
	"heartbridge/internal/logger"
	"heartbridge/internal/models"
	"heartbridge/internal/service"
)

// DeveloperPassword is shared by every seeded developer account
const DeveloperPassword = "dev123"

// Developer describes one seeded account
type Developer struct {
	Nickname string
	Role     models.Role
}

// Developers are dev1..dev5, alternating parent and child
var Developers = []Developer{
	{"dev1", models.RoleParent},
	{"dev2", models.RoleChild},
	{"dev3", models.RoleParent},
	{"dev4", models.RoleChild},
	{"dev5", models.RoleParent},
}

// Result lists what a seeding run changed
type Result struct {
	Created  []string
	Existing []string
}

// SeedDevelopers creates any missing developer account and makes every one of
// them an admin. Existing accounts keep their password and role. Failures for
// one account do not stop the others; they are joined into the returned error.
func SeedDevelopers(ctx context.Context, auth *service.AuthService) (Result, error) {
	var (
		result Result
		errs   []error
	)
	for _, dev := range Developers {
		_, err := auth.Register(ctx, service.RegisterInput{
			Nickname: dev.Nickname,
			Password: DeveloperPassword,
			Role:     dev.Role,
		})
		switch {
		case err == nil:
			result.Created = append(result.Created, dev.Nickname)
		case errors.Is(err, apperrors.ErrDuplicateNickname):
			result.Existing = append(result.Existing, dev.Nickname)
		default:
			errs = append(errs, fmt.Errorf("create %s: %w", dev.Nickname, err))
			continue
		}

		if err := auth.GrantAdmin(ctx, dev.Nickname); err != nil {
			errs = append(errs, fmt.Errorf("grant admin to %s: %w", dev.Nickname, err))
			continue
		}
		logger.Info().Str("nickname", dev.Nickname).Str("role", string(dev.Role)).Msg("Developer account ready")
	}
	return result, errors.Join(errs...)
}
