package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/platinummonkey/ideagrave/pkg/auth"
	"github.com/platinummonkey/ideagrave/pkg/observability"
	"github.com/platinummonkey/ideagrave/pkg/storage"
	"gopkg.in/yaml.v3"
)

// Store is what seeding needs from the credential store
type Store interface {
	GetUserByIdentity(ctx context.Context, identity string) (*auth.User, error)
	CreateUser(ctx context.Context, u *auth.User) error
}

// Account is an account to create at boot
type Account struct {
	Identity    string    `yaml:"username"`
	Password    string    `yaml:"password"`
	Role        auth.Role `yaml:"role"`
	DisplayName string    `yaml:"displayName"`
}

type usersFile struct {
	Users []Account `yaml:"users"`
}

// LoadFile reads accounts from a YAML file of the form
//
//	users:
//	  - username: root@example.com
//	    password: change-me
//	    role: superadmin
func LoadFile(path string) ([]Account, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var uf usersFile
	if err := yaml.Unmarshal(data, &uf); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return uf.Users, nil
}

// Seeder creates missing accounts. It is the only path that can create a
// superadmin.
type Seeder struct {
	store  Store
	hasher auth.Hasher
	logger *observability.Logger
}

// NewSeeder creates a seeder
func NewSeeder(store Store, hasher auth.Hasher, logger *observability.Logger) *Seeder {
	return &Seeder{store: store, hasher: hasher, logger: logger}
}

// Seed creates each account whose identity is not taken yet. Seeded accounts
// are verified. Entries without identity or password are skipped.
func (s *Seeder) Seed(ctx context.Context, accounts ...Account) (int, error) {
	created := 0
	for _, a := range accounts {
		identity := auth.NormalizeIdentity(a.Identity)
		if identity == "" || a.Password == "" {
			continue
		}

		role := a.Role
		if role == "" {
			role = auth.RoleUser
		}
		if !role.Valid() {
			return created, fmt.Errorf("seed account %s: unknown role %q", identity, role)
		}

		if _, err := s.store.GetUserByIdentity(ctx, identity); err == nil {
			s.logger.WithField("identity", identity).Debug("seed account exists, skipping")
			continue
		} else if !errors.Is(err, storage.ErrNotFound) {
			return created, err
		}

		hash, err := s.hasher.Hash(a.Password)
		if err != nil {
			return created, fmt.Errorf("seed account %s: %w", identity, err)
		}

		u := &auth.User{
			Identity:     identity,
			DisplayName:  a.DisplayName,
			PasswordHash: hash,
			Verified:     true,
			Role:         role,
		}
		if strings.Contains(identity, "@") {
			u.Email = identity
		}

		if err := s.store.CreateUser(ctx, u); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				continue
			}
			return created, fmt.Errorf("seed account %s: %w", identity, err)
		}

		created++
		s.logger.WithFields(map[string]interface{}{
			"identity": identity,
			"role":     string(role),
		}).Info("seeded account")
	}
	return created, nil
}
