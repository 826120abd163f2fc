package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/rossfinn/minimart/internal/domain"
	"github.com/rossfinn/minimart/internal/service"
)

// Cookie names. The session cookie authenticates a user; the cart cookie
// carries the anonymous owner key for shoppers who have not signed in.
const (
	SessionCookieName = "mm_session"
	CartCookieName    = "mm_cart"
)

const cartCookieTTL = 30 * 24 * time.Hour

// Context keys for values set by WithIdentity.
const (
	identityContextKey = "identity"
	userContextKey     = "user"
)

// CookieConfig controls attributes on the cookies we set.
type CookieConfig struct {
	Domain string
	Secure bool
}

// WithIdentity resolves the caller's shopping identity on every request.
//
// A valid session cookie wins: the caller is authenticated and their user ID
// is the cart owner key. If the request also carries an anonymous cart
// cookie, the anonymous cart is reconciled into the user's cart right here,
// and the cookie is cleared, so a shopper who filled a cart before signing in
// keeps their items.
//
// Without a session, the caller is anonymous. A missing cart cookie gets a
// freshly minted key so each browser session owns its own cart.
func WithIdentity(users domain.UserService, carts domain.CartService, cookies CookieConfig, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if user := resolveUser(c, users); user != nil {
				c.Set(userContextKey, user)
				c.Set(identityContextKey, domain.Authenticated(user.OwnerKey()))

				if anonKey := anonKeyFromCookie(c); anonKey != "" {
					err := carts.Reconcile(c.Request().Context(), anonKey, user.OwnerKey())
					if err != nil {
						// The user can still shop with their own cart; log and
						// keep the cookie so a later request can retry.
						log.Error().Err(err).Str("user_id", user.ID.String()).
							Msg("failed to reconcile anonymous cart")
					} else {
						clearCookie(c, CartCookieName, cookies)
					}
				}
				return next(c)
			}

			anonKey := anonKeyFromCookie(c)
			if anonKey == "" {
				anonKey = service.NewAnonymousKey()
				setCookie(c, &http.Cookie{
					Name:    CartCookieName,
					Value:   anonKey,
					Expires: time.Now().Add(cartCookieTTL),
				}, cookies)
			}
			c.Set(identityContextKey, domain.Anonymous(anonKey))
			return next(c)
		}
	}
}

func resolveUser(c echo.Context, users domain.UserService) *domain.User {
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	user, err := users.GetBySessionToken(c.Request().Context(), cookie.Value)
	if err != nil {
		return nil
	}
	return user
}

func anonKeyFromCookie(c echo.Context) string {
	cookie, err := c.Cookie(CartCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// CallerIdentity returns the identity set by WithIdentity. Handlers outside
// the middleware chain get a zero identity.
func CallerIdentity(c echo.Context) domain.Identity {
	if id, ok := c.Get(identityContextKey).(domain.Identity); ok {
		return id
	}
	return domain.Identity{}
}

// CurrentUser returns the authenticated user, or nil for anonymous callers.
func CurrentUser(c echo.Context) *domain.User {
	if user, ok := c.Get(userContextKey).(*domain.User); ok {
		return user
	}
	return nil
}

// RequireAuth rejects anonymous callers with 401.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentUser(c) == nil {
				return domain.Unauthorized("middleware.require_auth", "Sign in required")
			}
			return next(c)
		}
	}
}

// RequireBackOffice rejects callers whose role may not manage the catalog.
func RequireBackOffice() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return domain.Unauthorized("middleware.require_back_office", "Sign in required")
			}
			if !user.Role.BackOffice() {
				return domain.Forbidden("middleware.require_back_office", "Back-office role required")
			}
			return next(c)
		}
	}
}

// SetSessionCookie sets the login session cookie.
func SetSessionCookie(c echo.Context, token string, ttl time.Duration, cookies CookieConfig) {
	setCookie(c, &http.Cookie{
		Name:    SessionCookieName,
		Value:   token,
		Expires: time.Now().Add(ttl),
	}, cookies)
}

// ClearSessionCookie expires the login session cookie.
func ClearSessionCookie(c echo.Context, cookies CookieConfig) {
	clearCookie(c, SessionCookieName, cookies)
}

// ClearCartCookie expires the anonymous cart cookie.
func ClearCartCookie(c echo.Context, cookies CookieConfig) {
	clearCookie(c, CartCookieName, cookies)
}

func setCookie(c echo.Context, cookie *http.Cookie, cfg CookieConfig) {
	cookie.Path = "/"
	cookie.Domain = cfg.Domain
	cookie.Secure = cfg.Secure
	cookie.HttpOnly = true
	cookie.SameSite = http.SameSiteLaxMode
	c.SetCookie(cookie)
}

func clearCookie(c echo.Context, name string, cfg CookieConfig) {
	setCookie(c, &http.Cookie{
		Name:    name,
		Value:   "",
		MaxAge:  -1,
		Expires: time.Unix(0, 0),
	}, cfg)
}
