package coaching

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/fitcoach/internal/auth"
	"github.com/2beens/fitcoach/internal/coaching/ai"
	"github.com/2beens/fitcoach/internal/coaching/day"
	"github.com/2beens/fitcoach/internal/coaching/edit"
	"github.com/2beens/fitcoach/internal/coaching/resolve"
	"github.com/2beens/fitcoach/internal/coaching/roster"
	"github.com/2beens/fitcoach/internal/coaching/store"
	"github.com/2beens/fitcoach/internal/telemetry/tracing"
	"github.com/2beens/fitcoach/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=coaching_test

type service interface {
	Effective(ctx context.Context, clientID string, date day.Date) (resolve.EffectiveView, error)
	UpdateDay(ctx context.Context, clientID string, date day.Date, change edit.Change) (resolve.EffectiveView, error)
	ApplyPlanText(ctx context.Context, clientID string, date day.Date, text string) (resolve.EffectiveView, error)
	Insight(ctx context.Context, clientID string, date day.Date) (string, error)
	Tips(ctx context.Context, exerciseName string) ai.Tips
	Correction(ctx context.Context, exerciseName string) *string
	Progression(ctx context.Context, clientID string) (Progression, error)

	ListClients(ctx context.Context) ([]roster.ClientProfile, error)
	GetClient(ctx context.Context, clientID string) (*roster.ClientProfile, error)
	CheckAccess(ctx context.Context, clientID string) error
	CreateClient(ctx context.Context, newClient roster.NewClient) (roster.ClientProfile, error)
	UpdateTargets(ctx context.Context, clientID string, targets day.Targets) (roster.ClientProfile, error)
	UpdateStatus(ctx context.Context, clientID string, update roster.StatusUpdate) (roster.ClientProfile, error)
	DeleteClient(ctx context.Context, clientID string) error

	SendMessage(ctx context.Context, clientID, senderID, text string) (roster.Message, error)
	Messages(ctx context.Context, clientID string, readerIsCoach bool) ([]roster.Message, error)
}

type ListClientsResponse struct {
	Clients []roster.ClientProfile `json:"clients"`
	Total   int                    `json:"total"`
}

type DeleteClientResponse struct {
	DeletedID string `json:"deletedId"`
}

type TextRequest struct {
	Text string `json:"text"`
}

type InsightResponse struct {
	Insight string `json:"insight"`
}

type MessagesResponse struct {
	Messages []roster.Message `json:"messages"`
}

type CorrectionResponse struct {
	Correction *string `json:"correction"`
}

type Handler struct {
	service service
}

func NewHandler(coachingService service) *Handler {
	return &Handler{
		service: coachingService,
	}
}

// writeError maps service errors to a status code. Unexpected errors are logged.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, store.ErrClientNotFound):
		http.Error(w, "client not found", http.StatusNotFound)
	case errors.Is(err, store.ErrUserExists):
		http.Error(w, "user already exists", http.StatusConflict)
	case errors.Is(err, roster.ErrClientInactive), errors.Is(err, roster.ErrSubscriptionExpired):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, edit.ErrInvalidChange),
		errors.Is(err, day.ErrInvalidDate),
		errors.Is(err, ErrEmptyPlan),
		errors.Is(err, ErrInvalidTargets),
		errors.Is(err, roster.ErrEmptyMessage):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Errorf("coaching handler, %s: %s", op, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// coachOnly returns the identity of a coach caller and writes 401/403 for anyone else.
func coachOnly(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	identity := auth.IdentityFrom(r.Context())
	if identity == nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return nil, false
	}
	if !identity.IsCoach() {
		http.Error(w, "coach only", http.StatusForbidden)
		return nil, false
	}
	return identity, true
}

// authorize checks the caller may access the client in the {id} path variable: the coach may
// access every client, a client only itself and only while its account is usable.
func (handler *Handler) authorize(w http.ResponseWriter, r *http.Request) (*auth.Identity, string, bool) {
	identity := auth.IdentityFrom(r.Context())
	if identity == nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return nil, "", false
	}

	clientID := mux.Vars(r)["id"]
	if clientID == "" {
		http.Error(w, "error, client id empty", http.StatusBadRequest)
		return nil, "", false
	}

	if identity.IsCoach() {
		return identity, clientID, true
	}
	if identity.UserID != clientID {
		http.Error(w, "no can do", http.StatusForbidden)
		return nil, "", false
	}
	if err := handler.service.CheckAccess(r.Context(), clientID); err != nil {
		writeError(w, "check access", err)
		return nil, "", false
	}

	return identity, clientID, true
}

func dateVar(w http.ResponseWriter, r *http.Request) (day.Date, bool) {
	date, err := day.ParseDate(mux.Vars(r)["date"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	return date, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Tracef("coaching handler, decode %s body: %s", r.URL.Path, err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (handler *Handler) HandleListClients(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "coachingHandler.listClients")
	defer span.End()

	if _, ok := coachOnly(w, r); !ok {
		return
	}

	clients, err := handler.service.ListClients(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(w, "list clients", err)
		return
	}
	if clients == nil {
		clients = []roster.ClientProfile{}
	}

	pkg.WriteJSON(w, ListClientsResponse{Clients: clients, Total: len(clients)}, http.StatusOK)
}

func (handler *Handler) HandleCreateClient(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "coachingHandler.createClient")
	defer span.End()

	if _, ok := coachOnly(w, r); !ok {
		return
	}

	var newClient roster.NewClient
	if !decodeBody(w, r, &newClient) {
		return
	}
	if err := newClient.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	profile, err := handler.service.CreateClient(ctx, newClient)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(w, "create client", err)
		return
	}

	pkg.WriteJSON(w, profile, http.StatusCreated)
}

func (handler *Handler) HandleGetClient(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "coachingHandler.getClient")
	defer span.End()

	_, clientID, ok := handler.authorize(w, r)
	if !ok {
		return
	}

	profile, err := handler.service.GetClient(ctx, clientID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(w, "get client", err)
		return
	}

	pkg.WriteJSON(w, profile, http.StatusOK)
}

func (handler *Handler) HandleDeleteClient(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "coachingHandler.deleteClient")
	defer span.End()

	if _, ok := coachOnly(w, r); !ok {
		return
	}
	clientID := mux.Vars(r)["id"]

	if err := handler.service.DeleteClient(ctx, clientID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(w, "delete client", err)
		return
	}

	pkg.WriteJSON(w, DeleteClientResponse{DeletedID: clientID}, http.StatusOK)
}

func (handler *Handler) HandleUpdateTargets(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "coachingHandler.updateTargets")
	defer span.End()

	if _, ok := coachOnly(w, r); !ok {
		return
	}

	var targets day.Targets
	if !decodeBody(w, r, &targets) {
		return
	}

	profile, err := handler.service.UpdateTargets(ctx, mux.Vars(r)["id"], targets)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(w, "update targets", err)
		return
	}

	pkg.WriteJSON(w, profile, http.StatusOK)
}

func (handler *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "coachingHandler.updateStatus")
	defer span.End()

	if _, ok := coachOnly(w, r); !ok {
		return
	}

	var update roster.StatusUpdate
	if !decodeBody(w, r, &update) {
		return
	}

	profile, err := handler.service.UpdateStatus(ctx, mux.Vars(r)["id"], update)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(w, "update status", err)
		return
	}

	pkg.WriteJSON(w, profile, http.StatusOK)
}

func (handler *Handler) HandleGetDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "coachingHandler.getDay")
	defer span.End()

	_, clientID, ok := handler.authorize(w, r)
	if !ok {
		return
	}
	date, ok := dateVar(w, r)
	if !ok {
		return
	}

	view, err := handler.service.Effective(ctx, clientID, date)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(w, "get day", err)
		return
	}

	pkg.WriteJSON(w, view, http.StatusOK)
}

func (handler *Handler) HandlePatchDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "coachingHandler.patchDay")
	defer span.End()

	identity, clientID, ok := handler.authorize(w, r)
	if !ok {
		return
	}
	date, ok := dateVar(w, r)
	if !ok {
		return
	}

	var change edit.Change
	if !decodeBody(w, r, &change) {
		return
	}
	if change.IsPlanned() && !identity.IsCoach() {
		http.Error(w, "planned values are set by the coach", http.StatusForbidden)
		return
	}

	view, err := handler.service.UpdateDay(ctx, clientID, date, change)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(w, "update day", err)
		return
	}

	pkg.WriteJSON(w, view, http.StatusOK)
}

func (handler *Handler) HandlePlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "coachingHandler.plan")
	defer span.End()

	if _, ok := coachOnly(w, r); !ok {
		return
	}
	date, ok := dateVar(w, r)
	if !ok {
		return
	}

	var req TextRequest
	if !decodeBody(w, r, &req) {
		return
	}

	view, err := handler.service.ApplyPlanText(ctx, mux.Vars(r)["id"], date, req.Text)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(w, "apply plan", err)
		return
	}

	pkg.WriteJSON(w, view, http.StatusOK)
}

func (handler *Handler) HandleInsight(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "coachingHandler.insight")
	defer span.End()

	_, clientID, ok := handler.authorize(w, r)
	if !ok {
		return
	}
	date, ok := dateVar(w, r)
	if !ok {
		return
	}

	insight, err := handler.service.Insight(ctx, clientID, date)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(w, "insight", err)
		return
	}

	pkg.WriteJSON(w, InsightResponse{Insight: insight}, http.StatusOK)
}

func (handler *Handler) HandleProgression(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "coachingHandler.progression")
	defer span.End()

	_, clientID, ok := handler.authorize(w, r)
	if !ok {
		return
	}

	progression, err := handler.service.Progression(ctx, clientID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(w, "progression", err)
		return
	}

	pkg.WriteJSON(w, progression, http.StatusOK)
}

func (handler *Handler) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "coachingHandler.listMessages")
	defer span.End()

	identity, clientID, ok := handler.authorize(w, r)
	if !ok {
		return
	}

	messages, err := handler.service.Messages(ctx, clientID, identity.IsCoach())
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(w, "list messages", err)
		return
	}

	pkg.WriteJSON(w, MessagesResponse{Messages: messages}, http.StatusOK)
}

func (handler *Handler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "coachingHandler.sendMessage")
	defer span.End()

	identity, clientID, ok := handler.authorize(w, r)
	if !ok {
		return
	}

	var req TextRequest
	if !decodeBody(w, r, &req) {
		return
	}

	senderID := identity.UserID
	if identity.IsCoach() {
		senderID = roster.CoachSenderID
	}

	msg, err := handler.service.SendMessage(ctx, clientID, senderID, req.Text)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(w, "send message", err)
		return
	}

	pkg.WriteJSON(w, msg, http.StatusCreated)
}

func (handler *Handler) HandleTips(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "coachingHandler.tips")
	defer span.End()

	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "error, name empty", http.StatusBadRequest)
		return
	}

	pkg.WriteJSON(w, handler.service.Tips(ctx, name), http.StatusOK)
}

func (handler *Handler) HandleCorrection(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "coachingHandler.correction")
	defer span.End()

	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "error, name empty", http.StatusBadRequest)
		return
	}

	pkg.WriteJSON(w, CorrectionResponse{Correction: handler.service.Correction(ctx, name)}, http.StatusOK)
}
