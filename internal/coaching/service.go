package coaching

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/2beens/fitcoach/internal/coaching/ai"
	"github.com/2beens/fitcoach/internal/coaching/day"
	"github.com/2beens/fitcoach/internal/coaching/edit"
	"github.com/2beens/fitcoach/internal/coaching/resolve"
	"github.com/2beens/fitcoach/internal/coaching/roster"
	"github.com/2beens/fitcoach/internal/coaching/store"
	"github.com/2beens/fitcoach/internal/telemetry/metrics"
	"github.com/2beens/fitcoach/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// names shorter than this are not sent for spelling correction
const minCorrectionLength = 4

var (
	ErrEmptyPlan      = errors.New("no exercises found in plan text")
	ErrInvalidTargets = errors.New("targets must not be negative")
)

// Registrar creates the sign-in account of a new client.
type Registrar interface {
	Register(ctx context.Context, email, password string, createdAt time.Time) (store.User, error)
}

type Service struct {
	store          store.Store
	cache          *Cache
	aiCoach        *ai.Coach
	registrar      Registrar
	metricsManager *metrics.Manager
	// injectable for tests
	NowFunc func() time.Time
}

func NewService(
	store store.Store,
	aiCoach *ai.Coach,
	registrar Registrar,
	metricsManager *metrics.Manager,
) *Service {
	return &Service{
		store:          store,
		cache:          NewCache(metricsManager),
		aiCoach:        aiCoach,
		registrar:      registrar,
		metricsManager: metricsManager,
		NowFunc:        time.Now,
	}
}

func (s *Service) Cache() *Cache {
	return s.cache
}

func (s *Service) storeFailed(op string, err error) {
	var storeErr *store.StoreError
	if errors.As(err, &storeErr) {
		s.metricsManager.CounterStoreErrors.WithLabelValues(op).Inc()
	}
}

// clientState returns the cached state of clientID, loading profile and records when they are
// not cached yet.
func (s *Service) clientState(ctx context.Context, clientID string) (*ClientState, error) {
	if state, ok := s.cache.Get(clientID); ok && state.History != nil {
		return state, nil
	}

	profile, err := s.store.GetClient(ctx, clientID)
	if err != nil {
		s.storeFailed("getClient", err)
		return nil, err
	}
	records, err := s.store.ListRecordsForClient(ctx, clientID)
	if err != nil {
		s.storeFailed("listRecords", err)
		return nil, err
	}

	state := &ClientState{
		Profile: *profile,
		History: resolve.NewHistory(records),
	}
	if cached, ok := s.cache.Get(clientID); ok {
		state.Messages = cached.Messages
	}
	s.cache.Put(state)

	log.Debugf("coaching service, loaded %d records of client %s", len(records), clientID)
	return state, nil
}

func (s *Service) resolve(state *ClientState, date day.Date) resolve.EffectiveView {
	start := time.Now()
	view := resolve.Effective(date, state.History, state.Profile.Targets)
	s.metricsManager.HistResolveDuration.Observe(time.Since(start).Seconds())
	return view
}

// Effective returns the effective view of date for a client.
func (s *Service) Effective(ctx context.Context, clientID string, date day.Date) (_ resolve.EffectiveView, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "coachingService.effective")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("client.id", clientID), attribute.String("date", string(date)))

	state, err := s.clientState(ctx, clientID)
	if err != nil {
		return resolve.EffectiveView{}, err
	}

	return s.resolve(state, date), nil
}

// UpdateDay applies change to the effective record of date and persists the whole record.
// The cache is updated before the write. Whether the write succeeds or fails, the client's
// records are then re-read from the store.
func (s *Service) UpdateDay(ctx context.Context, clientID string, date day.Date, change edit.Change) (_ resolve.EffectiveView, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "coachingService.updateDay")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("client.id", clientID),
		attribute.String("date", string(date)),
		attribute.String("change.kind", string(change.Kind)),
	)

	state, err := s.clientState(ctx, clientID)
	if err != nil {
		return resolve.EffectiveView{}, err
	}

	record, err := edit.Apply(s.resolve(state, date), change)
	if err != nil {
		return resolve.EffectiveView{}, err
	}

	prev, cached := s.cache.PutRecord(clientID, record)
	if err := s.store.UpsertDay(ctx, clientID, date, record); err != nil {
		s.storeFailed("upsertDay", err)
		if cached {
			s.reconcileFailedWrite(ctx, clientID, date, prev)
		}
		return resolve.EffectiveView{}, err
	}
	s.metricsManager.CounterDayUpserts.WithLabelValues(string(change.Kind)).Inc()

	if records, err := s.store.ListRecordsForClient(ctx, clientID); err != nil {
		log.Warnf("coaching service, re-fetch records of %s after write: %s", clientID, err)
	} else {
		s.cache.ReplaceRecords(clientID, records)
	}

	state, err = s.clientState(ctx, clientID)
	if err != nil {
		return resolve.EffectiveView{}, err
	}
	return s.resolve(state, date), nil
}

// reconcileFailedWrite brings the cached History back in line with the store after a failed
// day write. When the store cannot be re-read only the record of date is reverted; writes to
// other dates made meanwhile are kept.
func (s *Service) reconcileFailedWrite(ctx context.Context, clientID string, date day.Date, prev *ClientState) {
	records, err := s.store.ListRecordsForClient(ctx, clientID)
	if err == nil {
		s.cache.ReplaceRecords(clientID, records)
		return
	}
	s.storeFailed("listRecords", err)
	log.Warnf("coaching service, re-fetch records of %s after failed write: %s", clientID, err)

	if old, ok := prev.History.Record(date); ok {
		s.cache.RevertRecord(clientID, date, &old)
	} else {
		s.cache.RevertRecord(clientID, date, nil)
	}
}

// ApplyPlanText turns a coach's free text plan into the exercise names of date.
func (s *Service) ApplyPlanText(ctx context.Context, clientID string, date day.Date, text string) (resolve.EffectiveView, error) {
	names := s.aiCoach.ParseFreeTextPlan(ctx, text)
	if len(names) == 0 {
		return resolve.EffectiveView{}, ErrEmptyPlan
	}
	return s.UpdateDay(ctx, clientID, date, edit.ExerciseNames(names))
}

func (s *Service) Insight(ctx context.Context, clientID string, date day.Date) (string, error) {
	view, err := s.Effective(ctx, clientID, date)
	if err != nil {
		return "", err
	}
	return s.aiCoach.CoachInsight(ctx, view.Record), nil
}

func (s *Service) Tips(ctx context.Context, exerciseName string) ai.Tips {
	return s.aiCoach.ExerciseTips(ctx, exerciseName)
}

// Correction suggests a spelling fix for an exercise name of at least 4 characters.
func (s *Service) Correction(ctx context.Context, exerciseName string) *string {
	if utf8.RuneCountInString(strings.TrimSpace(exerciseName)) < minCorrectionLength {
		return nil
	}
	return s.aiCoach.SpellingCorrection(ctx, exerciseName)
}

func (s *Service) Progression(ctx context.Context, clientID string) (Progression, error) {
	state, err := s.clientState(ctx, clientID)
	if err != nil {
		return Progression{}, err
	}
	return BuildProgression(state.History), nil
}

// ListClients reads the client list from the store and refreshes the cache with it.
func (s *Service) ListClients(ctx context.Context) (_ []roster.ClientProfile, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "coachingService.listClients")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	profiles, err := s.store.ListClients(ctx)
	if err != nil {
		s.storeFailed("listClients", err)
		return nil, err
	}
	s.cache.ReplaceClients(profiles)

	return s.cache.Profiles(), nil
}

func (s *Service) GetClient(ctx context.Context, clientID string) (*roster.ClientProfile, error) {
	if state, ok := s.cache.Get(clientID); ok {
		p := state.Profile
		return &p, nil
	}

	profile, err := s.store.GetClient(ctx, clientID)
	if err != nil {
		s.storeFailed("getClient", err)
		return nil, err
	}
	s.cache.UpdateProfile(*profile)
	return profile, nil
}

// CheckAccess fails for clients that may not use the service right now.
func (s *Service) CheckAccess(ctx context.Context, clientID string) error {
	profile, err := s.GetClient(ctx, clientID)
	if err != nil {
		return err
	}
	return profile.CheckAccess(s.NowFunc())
}

// CreateClient opens the sign-in account and the profile of a new client.
func (s *Service) CreateClient(ctx context.Context, newClient roster.NewClient) (_ roster.ClientProfile, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "coachingService.createClient")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := newClient.Validate(); err != nil {
		return roster.ClientProfile{}, err
	}

	now := s.NowFunc()
	user, err := s.registrar.Register(ctx, newClient.Email, newClient.Password, now)
	if err != nil {
		return roster.ClientProfile{}, fmt.Errorf("register account: %w", err)
	}

	profile := roster.NewClientProfile(user.ID, user.Email, now)
	if name := strings.TrimSpace(newClient.Name); name != "" {
		profile.Name = name
	}
	profile.SubscriptionExpiresAt = roster.LicenseExpiry(now, newClient.LicenseDays)

	if err := s.store.CreateClient(ctx, profile); err != nil {
		s.storeFailed("createClient", err)
		return roster.ClientProfile{}, err
	}
	s.cache.UpdateProfile(profile)

	log.Printf("new client created: %s [%s]", profile.ID, profile.Email)
	return profile, nil
}

func (s *Service) UpdateTargets(ctx context.Context, clientID string, targets day.Targets) (roster.ClientProfile, error) {
	if !targets.Valid() {
		return roster.ClientProfile{}, ErrInvalidTargets
	}
	if err := s.store.UpdateTargets(ctx, clientID, targets); err != nil {
		s.storeFailed("updateTargets", err)
		return roster.ClientProfile{}, err
	}
	return s.refreshProfile(ctx, clientID)
}

// UpdateStatus sets the active flag and, with a positive ExtendDays, a new subscription expiry.
func (s *Service) UpdateStatus(ctx context.Context, clientID string, update roster.StatusUpdate) (roster.ClientProfile, error) {
	expiresAt := roster.LicenseExpiry(s.NowFunc(), update.ExtendDays)
	if err := s.store.UpdateClientStatus(ctx, clientID, update.IsActive, expiresAt); err != nil {
		s.storeFailed("updateStatus", err)
		return roster.ClientProfile{}, err
	}
	return s.refreshProfile(ctx, clientID)
}

func (s *Service) refreshProfile(ctx context.Context, clientID string) (roster.ClientProfile, error) {
	profile, err := s.store.GetClient(ctx, clientID)
	if err != nil {
		s.storeFailed("getClient", err)
		return roster.ClientProfile{}, err
	}
	s.cache.UpdateProfile(*profile)
	return *profile, nil
}

// DeleteClient removes the profile, records and messages of a client. The account stays.
func (s *Service) DeleteClient(ctx context.Context, clientID string) error {
	if err := s.store.DeleteClient(ctx, clientID); err != nil {
		s.storeFailed("deleteClient", err)
		return err
	}
	s.cache.Remove(clientID)
	log.Printf("client deleted: %s", clientID)
	return nil
}

// AdmitClient makes sure a signed-in client account has a profile and may use the service.
func (s *Service) AdmitClient(ctx context.Context, userID, email string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "coachingService.admitClient")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := s.store.UpsertClientRole(ctx, userID, email); err != nil {
		s.storeFailed("upsertClientRole", err)
		return err
	}
	profile, err := s.refreshProfile(ctx, userID)
	if err != nil {
		return err
	}
	return profile.CheckAccess(s.NowFunc())
}

// SendMessage appends a chat message to a client's conversation.
func (s *Service) SendMessage(ctx context.Context, clientID, senderID, text string) (roster.Message, error) {
	msg, err := roster.NewMessage(clientID, senderID, text, s.NowFunc())
	if err != nil {
		return roster.Message{}, err
	}
	if err := s.store.AppendMessage(ctx, msg); err != nil {
		s.storeFailed("appendMessage", err)
		return roster.Message{}, err
	}

	if state, ok := s.cache.Get(clientID); ok {
		profile := state.Profile
		if msg.FromCoach() {
			profile.HasUnreadCoachMsg = true
		} else {
			profile.HasUnreadClientMsg = true
		}
		s.cache.UpdateProfile(profile)
		if state.Messages != nil {
			s.cache.SetMessages(clientID, append(append([]roster.Message{}, state.Messages...), msg))
		}
	}

	return msg, nil
}

// Messages lists a client's conversation and marks it read for the reading party.
func (s *Service) Messages(ctx context.Context, clientID string, readerIsCoach bool) ([]roster.Message, error) {
	messages, err := s.store.ListMessages(ctx, clientID)
	if err != nil {
		s.storeFailed("listMessages", err)
		return nil, err
	}
	if err := s.store.MarkMessagesRead(ctx, clientID, readerIsCoach); err != nil {
		s.storeFailed("markMessagesRead", err)
		return nil, err
	}

	if state, ok := s.cache.Get(clientID); ok {
		profile := state.Profile
		if readerIsCoach {
			profile.HasUnreadClientMsg = false
		} else {
			profile.HasUnreadCoachMsg = false
		}
		s.cache.UpdateProfile(profile)
		s.cache.SetMessages(clientID, messages)
	}

	if messages == nil {
		messages = []roster.Message{}
	}
	return messages, nil
}
