package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/seedbotics/fieldgate/internal/domain/user"
	"github.com/seedbotics/fieldgate/internal/storage"
)

// DemoTokenPrefix marks demo-mode bearer tokens. The remainder of the token is
// the user id of a seeded account.
const DemoTokenPrefix = "demo_token_"

// ErrUnresolvable reports a token outside the resolver's scheme.
var ErrUnresolvable = errors.New("token not resolvable")

// DemoResolver resolves prefix tokens against seeded accounts. It exists for
// local development and demos only; deployments use the JWT resolver.
type DemoResolver struct {
	users storage.UserStore
}

// NewDemoResolver builds a resolver backed by the given user store.
func NewDemoResolver(users storage.UserStore) *DemoResolver {
	return &DemoResolver{users: users}
}

// Resolve maps demo_token_<userID> to the stored account.
func (r *DemoResolver) Resolve(ctx context.Context, token string) (Identity, error) {
	if !strings.HasPrefix(token, DemoTokenPrefix) {
		return Identity{}, ErrUnresolvable
	}
	userID := strings.TrimPrefix(token, DemoTokenPrefix)
	u, err := r.users.GetUser(ctx, userID)
	if err != nil {
		return Identity{}, ErrUnresolvable
	}
	return identityFor(u), nil
}

func identityFor(u user.User) Identity {
	return Identity{UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// DemoIssuer mints prefix tokens matching the demo resolver. Expiry is
// nominal; demo tokens stay valid while the seeded account exists.
type DemoIssuer struct{}

var _ Issuer = DemoIssuer{}

// Issue returns a demo token for the user.
func (DemoIssuer) Issue(u user.User) (string, time.Time, error) {
	return DemoTokenPrefix + u.ID, time.Now().UTC().Add(365 * 24 * time.Hour), nil
}
