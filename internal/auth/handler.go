package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/2beens/fitcoach/internal/coaching/roster"
	"github.com/2beens/fitcoach/internal/telemetry/tracing"
	"github.com/2beens/fitcoach/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=auth_test

// ClientGate admits a signed-in client account: it makes sure a client profile exists
// and rejects inactive or expired clients.
type ClientGate interface {
	AdmitClient(ctx context.Context, userID, email string) error
}

type authenticator interface {
	VerifyCredentials(ctx context.Context, creds Credentials) (*Identity, error)
	Login(ctx context.Context, identity Identity, createdAt time.Time) (string, error)
	Logout(ctx context.Context, token string) (bool, error)
}

type Handler struct {
	service authenticator
	gate    ClientGate
}

func NewHandler(service authenticator, gate ClientGate) *Handler {
	return &Handler{
		service: service,
		gate:    gate,
	}
}

type loginResponse struct {
	Token    string   `json:"token"`
	Identity Identity `json:"user"`
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header, or "".
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.login")
	defer span.End()

	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "login failed", http.StatusBadRequest)
		span.SetStatus(codes.Error, "bad-request")
		return
	}
	if creds.Email == "" || creds.Password == "" {
		http.Error(w, "email and password required", http.StatusBadRequest)
		span.SetStatus(codes.Error, "bad-request")
		return
	}

	identity, err := h.service.VerifyCredentials(ctx, creds)
	if err != nil {
		if errors.Is(err, ErrWrongPassword) {
			log.Tracef("failed login attempt for: %s", creds.Email)
			http.Error(w, "wrong credentials", http.StatusUnauthorized)
			span.SetStatus(codes.Error, "wrong-credentials")
			return
		}
		log.Errorf("login, verify credentials: %s", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		span.RecordError(err)
		span.SetStatus(codes.Error, "verify-failed")
		return
	}

	if !identity.IsCoach() {
		if err := h.gate.AdmitClient(ctx, identity.UserID, identity.Email); err != nil {
			if errors.Is(err, roster.ErrClientInactive) || errors.Is(err, roster.ErrSubscriptionExpired) {
				http.Error(w, err.Error(), http.StatusForbidden)
				span.SetStatus(codes.Error, "client-rejected")
				return
			}
			log.Errorf("login, admit client %s: %s", identity.UserID, err)
			http.Error(w, "login failed", http.StatusInternalServerError)
			span.RecordError(err)
			span.SetStatus(codes.Error, "admit-failed")
			return
		}
	}

	token, err := h.service.Login(ctx, *identity, time.Now())
	if err != nil {
		log.Errorf("login failed, issue token: %s", err)
		http.Error(w, "issue token error", http.StatusInternalServerError)
		span.RecordError(err)
		span.SetStatus(codes.Error, "token-failed")
		return
	}

	span.SetAttributes(attribute.String("user.role", identity.Role))
	span.SetStatus(codes.Ok, "ok")
	pkg.WriteJSON(w, loginResponse{Token: token, Identity: *identity}, http.StatusOK)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.logout")
	defer span.End()

	token := BearerToken(r)
	if token == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	loggedOut, err := h.service.Logout(ctx, token)
	if err != nil {
		log.Tracef("[failed logout] => %s: %s", r.URL.Path, err)
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	if !loggedOut {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	pkg.WriteTextResponseOK(w, "logged-out")
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFrom(r.Context())
	if identity == nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	pkg.WriteJSON(w, identity, http.StatusOK)
}
