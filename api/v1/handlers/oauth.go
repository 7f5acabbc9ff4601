package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/undertheriver/sgsg/api/v1/database"
	"github.com/undertheriver/sgsg/api/v1/middleware"
	"github.com/undertheriver/sgsg/api/v1/models"
)

const (
	stateCookieName       = "oauth_state"
	redirectURICookieName = "redirect_uri"
	authCookieMaxAge      = 180 // seconds

	googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

var errUnauthorizedRedirect = errors.New("unauthorized redirect URI")

// OAuthOptions configures the social login flow.
type OAuthOptions struct {
	GoogleClientID         string
	GoogleClientSecret     string
	RedirectBaseURL        string
	AuthorizedRedirectURIs []string
	DefaultRedirectURL     string
}

// OAuthHandler runs the OAuth2 login flow: it redirects to the
// provider, handles the callback, mints an application token and sends
// the client on to its requested target.
type OAuthHandler struct {
	DB                 *pgxpool.Pool
	Auth               *middleware.AuthMiddleware
	OAuth              *oauth2.Config
	DefaultRedirectURL string

	allowedRedirects []*url.URL
}

func NewOAuthHandler(db *pgxpool.Pool, auth *middleware.AuthMiddleware, opts OAuthOptions) (*OAuthHandler, error) {
	allowed := make([]*url.URL, 0, len(opts.AuthorizedRedirectURIs))
	for _, raw := range opts.AuthorizedRedirectURIs {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid authorized redirect URI %q: %w", raw, err)
		}
		allowed = append(allowed, u)
	}

	return &OAuthHandler{
		DB:   db,
		Auth: auth,
		OAuth: &oauth2.Config{
			ClientID:     opts.GoogleClientID,
			ClientSecret: opts.GoogleClientSecret,
			RedirectURL:  strings.TrimSuffix(opts.RedirectBaseURL, "/") + "/oauth2/callback/google",
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
		DefaultRedirectURL: opts.DefaultRedirectURL,
		allowedRedirects:   allowed,
	}, nil
}

// Authorize starts the login flow. The client's requested post-login
// redirect target is kept in a short-lived cookie until the callback.
func (h *OAuthHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	if redirectURI := r.URL.Query().Get("redirect_uri"); redirectURI != "" {
		setAuthCookie(w, redirectURICookieName, redirectURI)
	}

	state := uuid.NewString()
	setAuthCookie(w, stateCookieName, state)

	http.Redirect(w, r, h.OAuth.AuthCodeURL(state), http.StatusFound)
}

// Callback handles the provider redirect after a successful login.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		SendError(ww, fmt.Sprintf("Authentication failed: %s", errParam), http.StatusBadRequest)
		return
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		SendError(ww, "Invalid OAuth state", http.StatusBadRequest)
		return
	}

	token, err := h.OAuth.Exchange(ctx, r.URL.Query().Get("code"))
	if err != nil {
		log.Error().Err(err).Msg("oauth code exchange failed")
		SendError(ww, "Failed to exchange authorization code", http.StatusInternalServerError)
		return
	}

	userinfo, err := h.fetchUserInfo(ctx, token)
	if err != nil {
		log.Error().Err(err).Msg("oauth userinfo fetch failed")
		SendError(ww, "Failed to fetch user profile", http.StatusInternalServerError)
		return
	}

	user := &models.User{
		Name:  userinfo.Name,
		Email: userinfo.Email,
	}
	if userinfo.Picture != "" {
		user.ProfileImageURL = &userinfo.Picture
	}

	if err := database.UpsertUser(ctx, h.DB, user); err != nil {
		log.Error().Err(err).Str("email", user.Email).Msg("user upsert failed")
		SendError(ww, "Unable to process request at this time", http.StatusInternalServerError)
		return
	}

	targetURL, err := h.determineTargetURL(r, user.ID, user.Role)
	if err != nil {
		if errors.Is(err, errUnauthorizedRedirect) {
			SendError(ww, "Unauthorized redirect URI", http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Msg("failed to build redirect target")
		SendError(ww, "Unable to process request at this time", http.StatusInternalServerError)
		return
	}

	h.finishLogin(ww, r, targetURL)
}

// determineTargetURL resolves the post-login destination: the cookie's
// redirect target when present and allow-listed, the configured default
// otherwise. The minted token is appended as a query parameter.
func (h *OAuthHandler) determineTargetURL(r *http.Request, userID int64, role models.UserRole) (string, error) {
	target := h.DefaultRedirectURL
	if c, err := r.Cookie(redirectURICookieName); err == nil && c.Value != "" {
		if !h.isAuthorizedRedirect(c.Value) {
			return "", errUnauthorizedRedirect
		}
		target = c.Value
	}

	// A principal without a granted role still logs in as a plain user.
	if role == "" {
		role = models.RoleUser
	}

	token, err := h.Auth.GenerateToken(userID, role)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid redirect target %q: %w", target, err)
	}

	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// finishLogin clears the transient auth cookies and issues the
// redirect. When something upstream already wrote a response the
// redirect is skipped; that race is expected, not an error.
func (h *OAuthHandler) finishLogin(ww chimiddleware.WrapResponseWriter, r *http.Request, targetURL string) {
	if ww.BytesWritten() > 0 {
		log.Debug().Str("target", targetURL).Msg("response already committed, unable to redirect")
		return
	}

	clearAuthCookie(ww, stateCookieName)
	clearAuthCookie(ww, redirectURICookieName)

	http.Redirect(ww, r, targetURL, http.StatusFound)
}

// isAuthorizedRedirect reports whether the candidate matches an
// allow-list entry on host (case-insensitive) and port (exact). A URI
// without an explicit port resolves to the scheme default before
// comparison, on both sides.
func (h *OAuthHandler) isAuthorizedRedirect(candidate string) bool {
	u, err := url.Parse(candidate)
	if err != nil {
		return false
	}

	for _, allowed := range h.allowedRedirects {
		if strings.EqualFold(allowed.Hostname(), u.Hostname()) && portOrDefault(allowed) == portOrDefault(u) {
			return true
		}
	}

	return false
}

func portOrDefault(u *url.URL) string {
	if p := u.Port(); p != "" {
		return p
	}
	switch strings.ToLower(u.Scheme) {
	case "https":
		return "443"
	case "http":
		return "80"
	default:
		return ""
	}
}

func (h *OAuthHandler) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*models.GoogleUserInfo, error) {
	client := h.OAuth.Client(ctx, token)
	resp, err := client.Get(googleUserinfoURL)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request returned status %d", resp.StatusCode)
	}

	var userinfo models.GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userinfo); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}

	if userinfo.Email == "" {
		return nil, errors.New("userinfo response missing email")
	}

	return &userinfo, nil
}

func setAuthCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   authCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearAuthCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
