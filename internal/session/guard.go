package session

import (
	"fmt"
	"slices"

	"github.com/desertthunder/mrx/internal/shared"
)

// Principal is the view of the session a guard needs.
type Principal interface {
	IsAuthenticated() bool
	Role() Role
}

// Allow reports whether p is authenticated and, when roles are given, holds one of them.
func Allow(p Principal, roles ...Role) bool {
	if p == nil || !p.IsAuthenticated() {
		return false
	}
	return len(roles) == 0 || slices.Contains(roles, p.Role())
}

// Check is [Allow] with a reason: [shared.ErrNotAuthenticated] or [shared.ErrForbidden].
func Check(p Principal, roles ...Role) error {
	if p == nil || !p.IsAuthenticated() {
		return shared.ErrNotAuthenticated
	}
	if len(roles) > 0 && !slices.Contains(roles, p.Role()) {
		return fmt.Errorf("%w: requires %v, signed in as %s", shared.ErrForbidden, roles, p.Role())
	}
	return nil
}

// Require is the route guard: on failure it redirects to the entry point and returns the reason.
func Require(s *Store, roles ...Role) error {
	if err := Check(s, roles...); err != nil {
		s.mu.RLock()
		nav := s.navigator
		s.mu.RUnlock()
		nav.Redirect(RootPath)
		return err
	}
	return nil
}
