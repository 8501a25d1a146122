// Package api exposes the battle loop over a JSON HTTP API.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/fennwald/emberquest/internal/game/battle"
	"github.com/fennwald/emberquest/internal/game/character"
	"github.com/fennwald/emberquest/internal/game/fault"
)

// BattleService is the battle orchestration surface the API depends on.
type BattleService interface {
	Start(ctx context.Context, userID int64, location string) (*battle.Session, error)
	Current(ctx context.Context, userID int64) (*battle.Session, error)
	SubmitAction(ctx context.Context, userID int64, action battle.Action) (*battle.Outcome, error)
	Flee(ctx context.Context, userID int64) (*battle.Outcome, error)
}

// CharacterService covers character creation and lookup.
type CharacterService interface {
	Create(ctx context.Context, c *character.Character) (*character.Character, error)
	GetByUser(ctx context.Context, userID int64) (*character.Character, error)
}

// StarterGranter seeds a fresh character's runtime profile.
type StarterGranter interface {
	GrantStarterKit(userID, characterID int64) error
}

// HealthChecker reports backing-store reachability for the health endpoint.
type HealthChecker interface {
	Health(ctx context.Context, timeout time.Duration) error
}

// Handler bundles the HTTP handlers and their dependencies.
type Handler struct {
	battles         BattleService
	characters      CharacterService
	starter         StarterGranter
	health          HealthChecker
	defaultLocation string
	logger          *zap.Logger
}

// NewHandler wires an API Handler.
//
// Precondition: all dependencies must be non-nil; defaultLocation must be
// a configured location.
func NewHandler(battles BattleService, characters CharacterService, starter StarterGranter, health HealthChecker, defaultLocation string, logger *zap.Logger) *Handler {
	return &Handler{
		battles:         battles,
		characters:      characters,
		starter:         starter,
		health:          health,
		defaultLocation: defaultLocation,
		logger:          logger,
	}
}

// Router builds the gorilla/mux router with all API routes registered.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/character", h.handleCreateCharacter).Methods(http.MethodPost)
	apiRouter.HandleFunc("/character", h.handleGetCharacter).Methods(http.MethodGet)
	apiRouter.HandleFunc("/battle/start", h.handleStart).Methods(http.MethodPost)
	apiRouter.HandleFunc("/battle/action", h.handleAction).Methods(http.MethodPost)
	apiRouter.HandleFunc("/battle/flee", h.handleFlee).Methods(http.MethodPost)
	apiRouter.HandleFunc("/battle", h.handleCurrent).Methods(http.MethodGet)
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.health.Health(r.Context(), 2*time.Second); err != nil {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createCharacterRequest struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
}

func (h *Handler) handleCreateCharacter(w http.ResponseWriter, r *http.Request) {
	var req createCharacterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, fault.Validationf("invalid_body", "decoding request: %v", err))
		return
	}
	if req.UserID <= 0 || req.Name == "" {
		h.writeError(w, fault.Validationf("invalid_body", "user_id and name are required"))
		return
	}

	c := character.New(req.Name)
	c.UserID = req.UserID
	created, err := h.characters.Create(r.Context(), c)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.starter.GrantStarterKit(created.UserID, created.ID); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, characterView(created))
}

func (h *Handler) handleGetCharacter(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	c, err := h.characters.GetByUser(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, characterView(c))
}

type startBattleRequest struct {
	UserID   int64  `json:"user_id"`
	Location string `json:"location"`
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startBattleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, fault.Validationf("invalid_body", "decoding request: %v", err))
		return
	}
	if req.UserID <= 0 {
		h.writeError(w, fault.Validationf("invalid_body", "user_id is required"))
		return
	}
	location := req.Location
	if location == "" {
		location = h.defaultLocation
	}

	sess, err := h.battles.Start(r.Context(), req.UserID, location)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, sessionView(sess))
}

type actionRequest struct {
	UserID int64  `json:"user_id"`
	Action string `json:"action"`
	Name   string `json:"name"`
}

func (h *Handler) handleAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, fault.Validationf("invalid_body", "decoding request: %v", err))
		return
	}
	if req.UserID <= 0 {
		h.writeError(w, fault.Validationf("invalid_body", "user_id is required"))
		return
	}

	out, err := h.battles.SubmitAction(r.Context(), req.UserID, battle.Action{
		Type: battle.ActionType(req.Action),
		Name: req.Name,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, outcomeView(out))
}

type fleeRequest struct {
	UserID int64 `json:"user_id"`
}

func (h *Handler) handleFlee(w http.ResponseWriter, r *http.Request) {
	var req fleeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, fault.Validationf("invalid_body", "decoding request: %v", err))
		return
	}
	if req.UserID <= 0 {
		h.writeError(w, fault.Validationf("invalid_body", "user_id is required"))
		return
	}

	out, err := h.battles.Flee(r.Context(), req.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, outcomeView(out))
}

func (h *Handler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	sess, err := h.battles.Current(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sessionView(sess))
}

func userIDParam(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("user_id")
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fault.Validationf("invalid_user_id", "user_id query parameter must be a positive integer")
	}
	return userID, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps the error taxonomy onto HTTP status codes: validation
// errors to 400, missing resources to 404, concurrency conflicts to 409,
// everything else to 500 with the detail kept server-side.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case fault.IsValidation(err):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case fault.IsNotFound(err):
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case fault.IsConflict(err):
		h.writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		h.logger.Error("request failed",
			zap.Error(err),
		)
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn("encoding response",
			zap.Error(err),
		)
	}
}
