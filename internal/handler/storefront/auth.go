package storefront

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rossfinn/minimart/internal/domain"
	"github.com/rossfinn/minimart/internal/handler"
	"github.com/rossfinn/minimart/internal/middleware"
	"github.com/rossfinn/minimart/internal/service"
)

type userResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:          u.ID.String(),
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
		CreatedAt:   u.CreatedAt,
	}
}

type signupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

func (h *Handler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("storefront.signup", "malformed request body")
	}

	user, err := h.users.Signup(c.Request().Context(), domain.SignupParams{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return err
	}
	return handler.OK(c, http.StatusCreated, toUserResponse(user))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login opens a session and sets the session cookie. Cart reconciliation is
// not done here; the identity middleware picks up the anonymous cart cookie
// on the next request and merges then.
func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("storefront.login", "malformed request body")
	}

	user, token, err := h.users.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	middleware.SetSessionCookie(c, token, service.SessionTTL, h.cookies)

	// Reconcile eagerly so the first post-login cart view is already merged.
	if anonCookie, err := c.Cookie(middleware.CartCookieName); err == nil && anonCookie.Value != "" {
		if err := h.carts.Reconcile(c.Request().Context(), anonCookie.Value, user.OwnerKey()); err != nil {
			h.log.Error().Err(err).Str("user_id", user.ID.String()).
				Msg("failed to reconcile anonymous cart at login")
		} else {
			middleware.ClearCartCookie(c, h.cookies)
		}
	}

	return handler.OK(c, http.StatusOK, toUserResponse(user))
}

func (h *Handler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.users.Logout(c.Request().Context(), cookie.Value); err != nil {
			return err
		}
	}
	middleware.ClearSessionCookie(c, h.cookies)
	return handler.OK(c, http.StatusOK, map[string]bool{"logged_out": true})
}

// AuthStatus reports whether the caller is signed in, and as whom.
func (h *Handler) AuthStatus(c echo.Context) error {
	if user := middleware.CurrentUser(c); user != nil {
		return handler.OK(c, http.StatusOK, map[string]any{
			"authenticated": true,
			"user":          toUserResponse(user),
		})
	}
	return handler.OK(c, http.StatusOK, map[string]any{"authenticated": false})
}
