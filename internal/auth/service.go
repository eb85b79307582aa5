package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/fitcoach/internal/coaching/roster"
	"github.com/2beens/fitcoach/internal/coaching/store"
	"github.com/2beens/fitcoach/internal/telemetry/tracing"
	"github.com/2beens/fitcoach/pkg"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	sessionKeyPrefix = "fitcoach-session||"
	tokensSetKey     = "fitcoach-sessions"
)

var (
	ErrWrongPassword  = errors.New("wrong credentials")
	ErrInvalidToken   = errors.New("invalid token")
	ErrSessionExpired = errors.New("session expired")
)

// Coach is the single coach account. It is configured, not stored.
type Coach struct {
	Email        string
	PasswordHash string
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func (i Identity) IsCoach() bool {
	return i.Role == roster.RoleCoach
}

// UsersRepo holds client sign-in accounts.
type UsersRepo interface {
	AddUser(ctx context.Context, user store.User) error
	GetUserByEmail(ctx context.Context, email string) (*store.User, error)
}

type claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type Service struct {
	coach       *Coach
	users       UsersRepo
	redisClient *redis.Client
	ttl         time.Duration
	jwtSecret   []byte
	// injectable for tests
	NewIDFunc        func() string
	HashPasswordFunc func(password string) (string, error)
}

func NewAuthService(
	coach *Coach,
	users UsersRepo,
	jwtSecret string,
	ttl time.Duration,
	redisClient *redis.Client,
) *Service {
	return &Service{
		coach:            coach,
		users:            users,
		redisClient:      redisClient,
		ttl:              ttl,
		jwtSecret:        []byte(jwtSecret),
		NewIDFunc:        uuid.NewString,
		HashPasswordFunc: pkg.HashPassword,
	}
}

// IsCoach reports whether email is the configured coach address.
func (s *Service) IsCoach(email string) bool {
	if s.coach == nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(email), strings.TrimSpace(s.coach.Email))
}

// VerifyCredentials checks an email/password pair against the coach account and the client
// accounts. It does not open a session.
func (s *Service) VerifyCredentials(ctx context.Context, creds Credentials) (_ *Identity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "authService.verifyCredentials")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if email == "" || creds.Password == "" {
		return nil, ErrWrongPassword
	}

	if s.IsCoach(email) {
		if !pkg.CheckPasswordHash(creds.Password, s.coach.PasswordHash) {
			return nil, ErrWrongPassword
		}
		return &Identity{
			UserID: roster.CoachSenderID,
			Email:  email,
			Role:   roster.RoleCoach,
		}, nil
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrWrongPassword
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !pkg.CheckPasswordHash(creds.Password, user.PasswordHash) {
		return nil, ErrWrongPassword
	}

	return &Identity{
		UserID: user.ID,
		Email:  user.Email,
		Role:   roster.RoleClient,
	}, nil
}

// Login opens a session for identity and returns a signed token for it.
func (s *Service) Login(ctx context.Context, identity Identity, createdAt time.Time) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "authService.login")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	sessionID := s.NewIDFunc()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: identity.Email,
		Role:  identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(createdAt),
			ExpiresAt: jwt.NewNumericDate(createdAt.Add(s.ttl)),
		},
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	sessionKey := sessionKeyPrefix + sessionID
	if err := s.redisClient.Set(ctx, sessionKey, createdAt.Unix(), s.ttl).Err(); err != nil {
		return "", err
	}

	// add session to the list of sessions
	if err := s.redisClient.SAdd(ctx, tokensSetKey, sessionID).Err(); err != nil {
		return "", err
	}

	return signed, nil
}

func (s *Service) parse(token string) (*claims, error) {
	parsed, err := jwt.ParseWithClaims(
		token,
		&claims{},
		func(*jwt.Token) (any, error) {
			return s.jwtSecret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err)
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || c.ID == "" || c.Subject == "" {
		return nil, ErrInvalidToken
	}
	return c, nil
}

// Authenticate resolves a bearer token to its identity. The token must be well signed,
// unexpired, and its session must still be open.
func (s *Service) Authenticate(ctx context.Context, token string) (_ *Identity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "authService.authenticate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	c, err := s.parse(token)
	if err != nil {
		return nil, err
	}

	createdAtUnixStr, err := s.redisClient.Get(ctx, sessionKeyPrefix+c.ID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}
	createdAtUnix, err := strconv.ParseInt(createdAtUnixStr, 10, 64)
	if err != nil {
		return nil, err
	}
	if createdAtUnix <= 0 || time.Since(time.Unix(createdAtUnix, 0)) > s.ttl {
		return nil, ErrSessionExpired
	}

	return &Identity{
		UserID: c.Subject,
		Email:  c.Email,
		Role:   c.Role,
	}, nil
}

// Logout closes the session of token. It reports whether an open session was closed.
func (s *Service) Logout(ctx context.Context, token string) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "authService.logout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	c, err := s.parse(token)
	if err != nil {
		return false, err
	}

	deleted, err := s.redisClient.Del(ctx, sessionKeyPrefix+c.ID).Result()
	if err != nil {
		return false, err
	}

	// remove session from the list of sessions
	if err := s.redisClient.SRem(ctx, tokensSetKey, c.ID).Err(); err != nil {
		return false, err
	}

	return deleted > 0, nil
}

// Register creates a client sign-in account.
func (s *Service) Register(ctx context.Context, email, password string, createdAt time.Time) (_ store.User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "authService.register")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	email = strings.ToLower(strings.TrimSpace(email))
	if s.IsCoach(email) {
		return store.User{}, fmt.Errorf("%w: %s", store.ErrUserExists, email)
	}

	hash, err := s.HashPasswordFunc(password)
	if err != nil {
		return store.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := store.User{
		ID:           s.NewIDFunc(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    createdAt,
	}
	if err := s.users.AddUser(ctx, user); err != nil {
		return store.User{}, err
	}

	return user, nil
}

// ScanAndClean will run through all sessions, check the TTL, and clean them if old
func (s *Service) ScanAndClean(ctx context.Context) {
	sessionIDs, err := s.redisClient.SMembers(ctx, tokensSetKey).Result()
	if err != nil {
		log.Errorf("!!! auth service, scan and clean, get sessions: %s", err)
		return
	}

	if len(sessionIDs) == 0 {
		log.Debugln("=> auth service, scan and clean abort, no sessions")
		return
	}

	log.Debugf("=> auth service, scan and clean [%d sessions] start ...", len(sessionIDs))
	var toRemove []string
	for _, sessionID := range sessionIDs {
		createdAtUnixStr, err := s.redisClient.Get(ctx, sessionKeyPrefix+sessionID).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				// expired by redis already, only the set entry is left
				toRemove = append(toRemove, sessionID)
				continue
			}
			log.Errorf("=> auth service, scan and clean session %s: %s", sessionID, err)
			continue
		}

		createdAtUnix, err := strconv.ParseInt(createdAtUnixStr, 10, 64)
		if err != nil {
			log.Errorf("=> auth service, scan and clean session %s: %s", sessionID, err)
			continue
		}

		if time.Since(time.Unix(createdAtUnix, 0)) > s.ttl {
			toRemove = append(toRemove, sessionID)
		}
	}

	for _, sessionID := range toRemove {
		if err := s.redisClient.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
			log.Errorf("=> auth service, clean session %s: %s", sessionID, err)
			continue
		}
		if err := s.redisClient.SRem(ctx, tokensSetKey, sessionID).Err(); err != nil {
			log.Errorf("=> auth service, clean session %s: %s", sessionID, err)
			continue
		}
	}
}
