package account

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"accounts-core/internal/token"
)

// Handler exposes the HTTP endpoints for account operations. It performs the
// policy checks (token verification, superuser gate, delete-target
// resolution) before delegating to the service, which never re-checks.
type Handler struct {
	svc    *Service
	tokens *token.Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, tokens *token.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, tokens: tokens, logger: logger}
}

// tokenPayload is the request body carrying a bearer token.
type tokenPayload struct {
	Token string `json:"token"`
}

// adminCreateRequest nests the token alongside the new user's fields.
type adminCreateRequest struct {
	Token tokenPayload `json:"token"`
	User  CreateInput  `json:"user"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/register. No auth; the superuser flag cannot be
// set on this path.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req CreateInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		h.writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	u, err := h.svc.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			h.writeError(w, http.StatusBadRequest, ErrEmailTaken.Error())
			return
		}
		h.logger.Warnw("register failed", "err", err)
		h.writeError(w, http.StatusInternalServerError, "register failed")
		return
	}
	h.writeJSON(w, http.StatusOK, u)
}

// AdminCreate handles POST /api/users/create. Requires a valid token whose
// claims assert superuser; may set the superuser flag on the new account.
func (h *Handler) AdminCreate(w http.ResponseWriter, r *http.Request) {
	var req adminCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.User.Email) == "" {
		h.writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.tokens.RequireValidToken(r.Context(), req.Token.Token); err != nil {
		h.writeError(w, http.StatusForbidden, "token is not valid")
		return
	}
	claims, err := h.tokens.Decode(req.Token.Token)
	if err != nil {
		h.writeError(w, http.StatusForbidden, "token is not valid")
		return
	}
	if err := token.RequireSuperuser(claims); err != nil {
		h.writeError(w, http.StatusForbidden, "you are not root")
		return
	}
	u, err := h.svc.Create(r.Context(), req.User)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			h.writeError(w, http.StatusBadRequest, ErrEmailTaken.Error())
			return
		}
		h.logger.Warnw("admin create failed", "err", err)
		h.writeError(w, http.StatusInternalServerError, "create failed")
		return
	}
	h.writeJSON(w, http.StatusOK, u)
}

// List handles POST /api/users. Requires a valid token; skip/limit come from
// query params with limit defaulting to 100.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var req tokenPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.tokens.RequireValidToken(r.Context(), req.Token); err != nil {
		h.writeError(w, http.StatusForbidden, "token is not valid")
		return
	}
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 100)
	users, err := h.svc.List(r.Context(), skip, limit)
	if err != nil {
		h.logger.Warnw("list users failed", "err", err)
		h.writeError(w, http.StatusInternalServerError, "list failed")
		return
	}
	h.writeJSON(w, http.StatusOK, users)
}

// GetByID handles POST /api/users/{user_id}. A valid token is always
// required to read a single user.
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("user_id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var req tokenPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.tokens.RequireValidToken(r.Context(), req.Token); err != nil {
		h.writeError(w, http.StatusForbidden, "token is not valid")
		return
	}
	u, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.writeError(w, http.StatusNotFound, ErrNotFound.Error())
			return
		}
		h.logger.Warnw("get user failed", "err", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "get failed")
		return
	}
	h.writeJSON(w, http.StatusOK, u)
}

// Auth handles POST /api/auth: a credentials check that returns the user.
// Unknown email and wrong password are indistinguishable to the caller.
func (h *Handler) Auth(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	u, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrAuthenticationDenied) {
			h.writeError(w, http.StatusForbidden, ErrAuthenticationDenied.Error())
			return
		}
		h.logger.Warnw("authenticate failed", "err", err)
		h.writeError(w, http.StatusInternalServerError, "authenticate failed")
		return
	}
	h.writeJSON(w, http.StatusOK, u)
}

// Token handles POST /api/token (login). Unknown email is 404; a failed
// password check is the sentinel {"access":"reject"} rather than an error.
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	tok, ok, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.writeError(w, http.StatusNotFound, ErrNotFound.Error())
			return
		}
		h.logger.Warnw("login failed", "err", err)
		h.writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if !ok {
		h.writeJSON(w, http.StatusOK, map[string]string{"access": "reject"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"token": tok})
}

// Access handles POST /api/access: a bare token check.
func (h *Handler) Access(w http.ResponseWriter, r *http.Request) {
	var req tokenPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.tokens.RequireValidToken(r.Context(), req.Token); err != nil {
		h.writeError(w, http.StatusForbidden, "token is not valid")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"access": "success"})
}

// Delete handles POST /api/users/delete. The optional user_id query param
// names the target; without it the caller deletes their own account. Only
// deleting someone else requires superuser.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	var req tokenPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.tokens.RequireValidToken(r.Context(), req.Token); err != nil {
		h.writeError(w, http.StatusForbidden, "token is not valid")
		return
	}
	claims, err := h.tokens.Decode(req.Token)
	if err != nil {
		h.writeError(w, http.StatusForbidden, "token is not valid")
		return
	}
	var target *int64
	if v := r.URL.Query().Get("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid user id")
			return
		}
		target = &id
	}
	id, err := token.ResolveDeleteTarget(claims, target)
	if err != nil {
		h.writeError(w, http.StatusForbidden, "you are not root")
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.logger.Warnw("delete user failed", "err", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, ErrDeleteFailed.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
