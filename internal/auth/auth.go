package auth

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	SessionCookieName  = "session-token"
	UserInfoCookieName = "user-info"

	issuer = "shadequote"
)

var (
	// ErrNotConfigured means the admin credential or the session secret is missing.
	ErrNotConfigured = errors.New("admin credentials are not configured")
	// ErrInvalidCredentials means the username or password did not match.
	ErrInvalidCredentials = errors.New("invalid username or password")

	signingMethod = jwt.SigningMethodHS256
)

// Options configures the single shared admin credential.
type Options struct {
	Username     string
	Password     string
	Secret       string
	TTL          time.Duration
	SecureCookie bool
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// Service checks the admin credential and issues signed session tokens.
type Service struct {
	username     string
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	secure       bool
	now          func() time.Time
}

// NewService hashes the configured password once so it is never compared in plain text.
func NewService(opts Options) (*Service, error) {
	s := &Service{
		username: opts.Username,
		secret:   []byte(opts.Secret),
		ttl:      opts.TTL,
		secure:   opts.SecureCookie,
		now:      opts.Now,
	}
	if s.ttl <= 0 {
		s.ttl = 24 * time.Hour
	}
	if s.now == nil {
		s.now = time.Now
	}
	if opts.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		s.passwordHash = hash
	}
	return s, nil
}

func (s *Service) configured() bool {
	return s.username != "" && len(s.passwordHash) > 0 && len(s.secret) > 0
}

// Login validates the credential and returns a session token.
func (s *Service) Login(username, password string) (string, error) {
	if !s.configured() {
		return "", ErrNotConfigured
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		return "", ErrInvalidCredentials
	}

	return s.mint(username)
}

func (s *Service) mint(username string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		ID:        uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// Verify returns the username carried by a valid, unexpired token.
func (s *Service) Verify(token string) (string, bool) {
	if len(s.secret) == 0 || token == "" {
		return "", false
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}

// SetSessionCookies writes the HttpOnly session cookie and the readable user-info cookie.
func (s *Service) SetSessionCookies(w http.ResponseWriter, username, token string) {
	expires := s.now().Add(s.ttl)
	info, _ := json.Marshal(map[string]string{"username": username})

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     UserInfoCookieName,
		Value:    url.QueryEscape(string(info)),
		Path:     "/",
		Expires:  expires,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookies expires both session cookies.
func (s *Service) ClearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{SessionCookieName, UserInfoCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: name == SessionCookieName,
			Secure:   s.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// Authenticated reports the username of a request carrying a valid session cookie.
func (s *Service) Authenticated(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return "", false
	}
	return s.Verify(cookie.Value)
}
