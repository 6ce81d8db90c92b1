package api

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"resortdesk/internal/config"
	"resortdesk/internal/models"
	"resortdesk/internal/service"
)

const (
	apiKeyHeaderDefault   = "x-api-key"
	apiExtraHeaderDefault = "x-api-extra"
	clientKeyUnknown      = "unknown"

	permReadReservations  = models.PermReadReservations
	permWriteReservations = models.PermWriteReservations
	permReadDashboard     = models.PermReadDashboard
	permWriteStaff        = models.PermWriteStaff
	permReadCart          = models.PermReadCart
	permWriteCart         = models.PermWriteCart
	permApplyLeave        = models.PermApplyLeave
)

var (
	errUnauthenticated  = errors.New("authentication required")
	errPermissionDenied = errors.New("permission denied")
)

// sessionHandler receives the resolved principal explicitly.
type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *models.Session)

// Authenticator turns request credentials into a session. It accepts a
// bearer token issued by /auth/login or a configured API key pair.
type Authenticator struct {
	cfg             config.APIAuthConfig
	tokens          *service.AuthService
	clientsByAPIKey map[string]config.APIClientKey
}

func NewAuthenticator(cfg config.APIAuthConfig, tokens *service.AuthService) *Authenticator {
	m := make(map[string]config.APIClientKey, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		m[k.Key] = k
	}
	return &Authenticator{cfg: cfg, tokens: tokens, clientsByAPIKey: m}
}

// Authenticate resolves the principal for r. With auth disabled every
// request runs as an anonymous admin.
func (a *Authenticator) Authenticate(r *http.Request) (*models.Session, error) {
	if !a.cfg.Enabled {
		return &models.Session{
			UserID:      "anonymous",
			Name:        "anonymous",
			Role:        models.RoleAdmin,
			Permissions: models.PermissionsFor(models.RoleAdmin),
		}, nil
	}

	if raw, ok := bearerToken(r); ok {
		if a.tokens == nil {
			return nil, errUnauthenticated
		}
		sess, err := a.tokens.ParseToken(raw)
		if err != nil {
			return nil, errUnauthenticated
		}
		return sess, nil
	}

	apiKey := strings.TrimSpace(r.Header.Get(a.apiKeyHeader()))
	extra := strings.TrimSpace(r.Header.Get(a.extraHeader()))
	if apiKey == "" || extra == "" {
		return nil, errUnauthenticated
	}

	client, ok := a.clientsByAPIKey[apiKey]
	if !ok {
		return nil, errUnauthenticated
	}
	if subtle.ConstantTimeCompare([]byte(client.Extra), []byte(extra)) != 1 {
		return nil, errUnauthenticated
	}
	return clientSession(client), nil
}

// clientSession builds the principal for an API key. An explicit permission
// list wins; otherwise the role's permissions apply. A client with neither
// gets no permissions.
func clientSession(client config.APIClientKey) *models.Session {
	sess := &models.Session{
		UserID: "api:" + client.Name,
		Name:   client.Name,
		Role:   client.Role,
	}
	for _, p := range client.Permissions {
		if p = strings.TrimSpace(p); p != "" {
			sess.Permissions = append(sess.Permissions, p)
		}
	}
	if len(sess.Permissions) == 0 && models.ValidRole(client.Role) {
		sess.Permissions = models.PermissionsFor(client.Role)
	}
	return sess
}

func (a *Authenticator) apiKeyHeader() string {
	h := strings.TrimSpace(strings.ToLower(a.cfg.HeaderAPIKey))
	if h == "" {
		return apiKeyHeaderDefault
	}
	return h
}

func (a *Authenticator) extraHeader() string {
	h := strings.TrimSpace(strings.ToLower(a.cfg.HeaderExtra))
	if h == "" {
		return apiExtraHeaderDefault
	}
	return h
}

func bearerToken(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(h[7:])
	return token, token != ""
}

// withSession authenticates, checks perm (empty means any signed-in
// principal) and merges the stored session state before calling h.
func (s *HTTPServer) withSession(perm string, h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.auth.Authenticate(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		if perm != "" && !sess.Can(perm) {
			writeError(w, http.StatusForbidden, errPermissionDenied.Error())
			return
		}
		if s.svc.Sessions != nil {
			sess = s.svc.Sessions.Load(r.Context(), sess)
		}
		h(w, r, sess)
	}
}
