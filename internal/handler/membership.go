package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/majidsadri/mireva/internal/auth"
	"github.com/majidsadri/mireva/internal/model"
	"github.com/majidsadri/mireva/internal/store"
	ws "github.com/majidsadri/mireva/internal/websocket"
)

// MembershipHandler serves pantry sharing: browsing pantries, join
// requests, member management and switching the active pantry.
type MembershipHandler struct {
	pantryStore  *store.PantryStore
	joinStore    *store.JoinRequestStore
	sessionStore *store.SessionStore
	userStore    *store.UserStore
	notifier     JoinNotifier
	hub          *ws.Hub
	logger       *slog.Logger
}

// JoinNotifier emails owners about new join requests and requesters about
// the outcome.
type JoinNotifier interface {
	Configured() bool
	SendJoinRequest(toEmail, requesterName, pantryName string) error
	SendJoinDecision(toEmail, pantryName string, approved bool) error
}

func NewMembershipHandler(ps *store.PantryStore, js *store.JoinRequestStore, ss *store.SessionStore, us *store.UserStore, hub *ws.Hub, logger *slog.Logger) *MembershipHandler {
	return &MembershipHandler{pantryStore: ps, joinStore: js, sessionStore: ss, userStore: us, hub: hub, logger: logger}
}

// WithNotifier enables email notifications. A nil or unconfigured notifier
// disables them.
func (h *MembershipHandler) WithNotifier(n JoinNotifier) *MembershipHandler {
	h.notifier = n
	return h
}

func (h *MembershipHandler) notify(send func(JoinNotifier) error, attrs ...any) {
	if h.notifier == nil || !h.notifier.Configured() {
		return
	}
	if err := send(h.notifier); err != nil {
		h.logger.Warn("send notification", append(attrs, "error", err)...)
	}
}

func (h *MembershipHandler) ListPantries(w http.ResponseWriter, r *http.Request) {
	listings, err := h.pantryStore.ListAvailable(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list pantries", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list pantries")
		return
	}
	if listings == nil {
		listings = []model.PantryListing{}
	}
	writeJSON(w, http.StatusOK, listings)
}

func (h *MembershipHandler) loadPantry(w http.ResponseWriter, r *http.Request) (*model.Pantry, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	p, err := h.pantryStore.GetByID(id)
	if err != nil {
		h.logger.Error("get pantry", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to get pantry")
		return nil, false
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "pantry not found")
		return nil, false
	}
	return p, true
}

func (h *MembershipHandler) RequestJoin(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	p, ok := h.loadPantry(w, r)
	if !ok {
		return
	}

	member, err := h.pantryStore.GetMember(p.ID, userID)
	if err != nil {
		h.logger.Error("get member", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to request access")
		return
	}
	if member != nil {
		writeError(w, http.StatusConflict, "already a member of this pantry")
		return
	}
	pending, err := h.joinStore.GetPending(p.ID, userID)
	if err != nil {
		h.logger.Error("get pending request", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to request access")
		return
	}
	if pending != nil {
		writeError(w, http.StatusConflict, "a request is already pending")
		return
	}

	req, err := h.joinStore.Create(p.ID, userID)
	if err != nil {
		h.logger.Error("create join request", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to request access")
		return
	}

	h.hub.Broadcast(p.ID, ws.NewMessage("join_request", "created", req.ID, map[string]any{"user_id": userID}))
	h.notifyOwner(p, userID)
	writeJSON(w, http.StatusCreated, req)
}

func (h *MembershipHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.joinStore.ListPending(auth.PantryID(r.Context()))
	if err != nil {
		h.logger.Error("list join requests", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list requests")
		return
	}
	if requests == nil {
		requests = []model.JoinRequestDetail{}
	}
	writeJSON(w, http.StatusOK, requests)
}

func (h *MembershipHandler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, true)
}

func (h *MembershipHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, false)
}

func (h *MembershipHandler) decide(w http.ResponseWriter, r *http.Request, approve bool) {
	ac, _ := auth.FromContext(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.joinStore.GetByID(id)
	if err != nil {
		h.logger.Error("get join request", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to decide request")
		return
	}
	if existing == nil || existing.PantryID != ac.PantryID {
		writeError(w, http.StatusNotFound, "request not found")
		return
	}
	if existing.Status != model.JoinPending {
		writeError(w, http.StatusConflict, "request already "+existing.Status)
		return
	}

	req, err := h.joinStore.Decide(id, approve, ac.UserID)
	if err != nil {
		h.logger.Error("decide join request", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to decide request")
		return
	}

	h.hub.Broadcast(ac.PantryID, ws.NewMessage("join_request", req.Status, req.ID, map[string]any{"user_id": req.UserID}))
	h.notifyRequester(ac.PantryID, req)
	writeJSON(w, http.StatusOK, req)
}

func (h *MembershipHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.pantryStore.ListMembers(auth.PantryID(r.Context()))
	if err != nil {
		h.logger.Error("list members", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list members")
		return
	}
	if members == nil {
		members = []model.PantryMemberDetail{}
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *MembershipHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	userID, err := strconv.ParseInt(r.PathValue("user_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user_id")
		return
	}
	if userID == ac.UserID {
		writeError(w, http.StatusBadRequest, "the owner cannot be removed")
		return
	}

	member, err := h.pantryStore.GetMember(ac.PantryID, userID)
	if err != nil {
		h.logger.Error("get member", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove member")
		return
	}
	if member == nil {
		writeError(w, http.StatusNotFound, "member not found")
		return
	}
	if err := h.pantryStore.RemoveMember(ac.PantryID, userID); err != nil {
		h.logger.Error("remove member", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove member")
		return
	}

	h.hub.DisconnectUser(ac.PantryID, userID)
	h.hub.Broadcast(ac.PantryID, ws.NewMessage("member", "removed", userID, nil))
	w.WriteHeader(http.StatusNoContent)
}

func (h *MembershipHandler) Switch(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	p, ok := h.loadPantry(w, r)
	if !ok {
		return
	}

	member, err := h.pantryStore.GetMember(p.ID, ac.UserID)
	if err != nil {
		h.logger.Error("get member", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to switch pantry")
		return
	}
	if member == nil {
		writeError(w, http.StatusForbidden, "not a member of this pantry")
		return
	}
	if err := h.sessionStore.UpdatePantry(ac.SessionID, p.ID); err != nil {
		h.logger.Error("update session pantry", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to switch pantry")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pantry": p, "role": member.Role})
}

func (h *MembershipHandler) notifyOwner(p *model.Pantry, requesterID int64) {
	if h.notifier == nil || !h.notifier.Configured() {
		return
	}
	owner, err := h.userStore.GetByID(p.OwnerID)
	if err != nil || owner == nil {
		h.logger.Warn("load pantry owner", "error", err, "pantry_id", p.ID)
		return
	}
	requester, err := h.userStore.GetByID(requesterID)
	if err != nil || requester == nil {
		h.logger.Warn("load requester", "error", err, "user_id", requesterID)
		return
	}
	h.notify(func(n JoinNotifier) error {
		return n.SendJoinRequest(owner.Email, requester.Name, p.Name)
	}, "pantry_id", p.ID, "kind", "join_request")
}

func (h *MembershipHandler) notifyRequester(pantryID int64, req *model.JoinRequest) {
	if h.notifier == nil || !h.notifier.Configured() {
		return
	}
	p, err := h.pantryStore.GetByID(pantryID)
	if err != nil || p == nil {
		h.logger.Warn("load pantry", "error", err, "pantry_id", pantryID)
		return
	}
	requester, err := h.userStore.GetByID(req.UserID)
	if err != nil || requester == nil {
		h.logger.Warn("load requester", "error", err, "user_id", req.UserID)
		return
	}
	h.notify(func(n JoinNotifier) error {
		return n.SendJoinDecision(requester.Email, p.Name, req.Status == model.JoinApproved)
	}, "pantry_id", pantryID, "kind", "join_decision")
}
