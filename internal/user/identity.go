package user

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/shorty"
	"github.com/dmitrymomot/shorty/pkg/logger"
	"github.com/dmitrymomot/shorty/pkg/reqcache"
)

// TokenCookie holds the login token issued at sign-in.
const TokenCookie = "login_token"

// VisitorName is the username of anonymous callers. No account may take it.
const VisitorName = "visitor"

// Identity is the caller of the current request.
type Identity struct {
	Username string
	ID       int64
	Role     Role
}

// Visitor is the identity of anonymous callers.
func Visitor() Identity {
	return Identity{Username: VisitorName, Role: RoleVisitor}
}

// IsVisitor reports whether the caller is not signed in.
func (i Identity) IsVisitor() bool { return i.Role == RoleVisitor }

// IsRoot reports whether the caller has the root role.
func (i Identity) IsRoot() bool { return i.Role == RoleRoot }

// CanManage reports whether i may edit or delete something created by ownerID.
func (i Identity) CanManage(ownerID int64) bool {
	return i.IsRoot() || (!i.IsVisitor() && i.ID == ownerID)
}

// IdentityFinder looks up the owner of a login token.
type IdentityFinder interface {
	FindIdentityByToken(ctx context.Context, token string) (Identity, error)
}

// ResolveIdentity is the request-scoped provider for Identity. It never fails:
// a missing cookie, an unknown token or a storage error all yield Visitor.
//
//	shorty.Provide(c, shorty.ScopeRequest, user.ResolveIdentity)
func ResolveIdentity(r *shorty.Resolver) (Identity, error) {
	req, err := r.Request()
	if err != nil {
		return Visitor(), nil
	}

	token, err := req.Cookie(TokenCookie)
	if err != nil || token == "" {
		return Visitor(), nil
	}

	finder, err := shorty.Inject[IdentityFinder](r)
	if err != nil {
		req.LogError("identity finder unavailable", slog.Any("error", err))
		return Visitor(), nil
	}

	id, err := finder.FindIdentityByToken(r.Context(), token)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			req.LogWarn("identity lookup failed", slog.Any("error", err))
		}
		return Visitor(), nil
	}
	return id, nil
}

// CurrentIdentity returns the memoized identity of the request.
func CurrentIdentity(c shorty.Context) (Identity, error) {
	return shorty.Dep[Identity](c)
}

// LogExtractor adds the caller to log records once the identity has been
// resolved for the request. It never triggers resolution itself.
func LogExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		cache, ok := reqcache.FromContext(ctx)
		if !ok {
			return slog.Attr{}, false
		}
		id, ok := reqcache.Lookup[Identity](cache)
		if !ok || id.IsVisitor() {
			return slog.Attr{}, false
		}
		return slog.Group("user", slog.Int64("id", id.ID), slog.String("role", id.Role.String())), true
	}
}
