package app

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/seedbotics/fieldgate/internal/config"
	"github.com/seedbotics/fieldgate/internal/domain/user"
	"github.com/seedbotics/fieldgate/internal/storage"
	"github.com/seedbotics/fieldgate/pkg/logger"
)

// seed upserts demo fixtures into the store. Fixture passwords are hashed
// here; the plaintext never reaches the store. Re-running against a populated
// store refreshes the same records, so restarts are harmless.
func seed(ctx context.Context, store storage.Store, data *config.SeedData, log *logger.Logger) error {
	for _, su := range data.Users {
		u := su.User
		if u.Role == "" {
			u.Role = user.RoleFarmer
		}
		if su.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash seed password for %s: %w", u.ID, err)
			}
			u.PasswordHash = string(hash)
		}
		if _, err := store.PutUser(ctx, u); err != nil {
			return fmt.Errorf("seed user %s: %w", u.ID, err)
		}
	}

	for _, f := range data.Farms {
		if _, err := store.PutFarm(ctx, f); err != nil {
			return fmt.Errorf("seed farm %s: %w", f.ID, err)
		}
	}
	for _, r := range data.Robots {
		if _, err := store.PutRobot(ctx, r); err != nil {
			return fmt.Errorf("seed robot %s: %w", r.ID, err)
		}
	}
	for _, s := range data.Sessions {
		if _, err := store.PutSession(ctx, s); err != nil {
			return fmt.Errorf("seed session %s: %w", s.ID, err)
		}
	}
	for _, al := range data.Alerts {
		if _, err := store.PutAlert(ctx, al); err != nil {
			return fmt.Errorf("seed alert %s: %w", al.ID, err)
		}
	}

	log.WithFields(map[string]any{
		"users":  len(data.Users),
		"farms":  len(data.Farms),
		"robots": len(data.Robots),
	}).Info("demo data seeded")
	return nil
}
