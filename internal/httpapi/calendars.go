package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/techappsUT/planer/internal/apperr"
	"github.com/techappsUT/planer/internal/domain/calendar"
	"github.com/techappsUT/planer/internal/domain/sharelink"
	"github.com/techappsUT/planer/internal/tenancy"
)

type createCalendarRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description"`
}

func (s *Server) createCalendar(w http.ResponseWriter, r *http.Request) {
	user, ok := tenancy.UserFrom(r.Context())
	if !ok {
		writeError(w, r, apperr.Unauthorized("missing user context"))
		return
	}
	clientID, ok := tenancy.ClientIDFrom(r.Context())
	if !ok {
		writeError(w, r, apperr.Unauthorized("missing tenant context"))
		return
	}

	var req createCalendarRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	c := calendar.NewCalendar(user.ID(), clientID, req.Name, req.Description)
	if err := s.calendars.Create(r.Context(), c); err != nil {
		writeError(w, r, apperr.Internal(err))
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) getCalendar(w http.ResponseWriter, r *http.Request) {
	clientID, id, err := s.tenantAndCalendarID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.calendars.FindByID(r.Context(), clientID, id)
	if err != nil {
		writeError(w, r, notFoundOr500(err, "calendar not found"))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) deleteCalendar(w http.ResponseWriter, r *http.Request) {
	clientID, id, err := s.tenantAndCalendarID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.calendars.Delete(r.Context(), clientID, id); err != nil {
		writeError(w, r, apperr.Internal(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type columnOrderDTO struct {
	ID    uuid.UUID `json:"id"`
	Order int       `json:"order"`
}

func (s *Server) reorderColumns(w http.ResponseWriter, r *http.Request) {
	_, calendarID, err := s.tenantAndCalendarID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req []columnOrderDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, apperr.BadRequest("invalid request body"))
		return
	}
	positions := make([]int, len(req))
	for i, c := range req {
		positions[i] = c.Order
	}
	if !calendar.ValidateDenseOrder(len(req), positions) {
		writeError(w, r, apperr.BadRequest("column order must be a dense 0..n-1 permutation"))
		return
	}

	ordered := make([]*calendar.KanbanColumn, len(req))
	for i, c := range req {
		ordered[i] = calendar.ReconstructKanbanColumn(c.ID, calendarID, "", c.Order, nil, nil)
	}
	if err := s.calendars.ReorderColumns(r.Context(), calendarID, ordered); err != nil {
		writeError(w, r, apperr.Internal(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createShareLinkRequest struct {
	Permission sharelink.Permission `json:"permission" validate:"required"`
	Label      *string              `json:"label"`
	ExpiresAt  *time.Time           `json:"expiresAt"`
}

type issuedTokenResponse struct {
	ShareLink *sharelink.ShareLink `json:"shareLink"`
	RawToken  string               `json:"rawToken"`
}

func (s *Server) createShareLink(w http.ResponseWriter, r *http.Request) {
	_, calendarID, err := s.tenantAndCalendarID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req createShareLinkRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	issued, err := s.links.Create(r.Context(), calendarID, req.Permission, req.Label, req.ExpiresAt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, issuedTokenResponse{ShareLink: issued.Link, RawToken: issued.RawToken})
}

func (s *Server) revokeShareLink(w http.ResponseWriter, r *http.Request) {
	_, calendarID, err := s.tenantAndCalendarID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	linkID, err := uuid.Parse(chi.URLParam(r, "linkId"))
	if err != nil {
		writeError(w, r, apperr.BadRequest("invalid share link id"))
		return
	}

	if _, err := s.links.Get(r.Context(), calendarID, linkID); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.links.Revoke(r.Context(), linkID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) regenerateShareLink(w http.ResponseWriter, r *http.Request) {
	_, calendarID, err := s.tenantAndCalendarID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	linkID, err := uuid.Parse(chi.URLParam(r, "linkId"))
	if err != nil {
		writeError(w, r, apperr.BadRequest("invalid share link id"))
		return
	}

	old, err := s.links.Get(r.Context(), calendarID, linkID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	issued, err := s.links.Regenerate(r.Context(), old)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, issuedTokenResponse{ShareLink: issued.Link, RawToken: issued.RawToken})
}

func (s *Server) tenantAndCalendarID(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	clientID, ok := tenancy.ClientIDFrom(r.Context())
	if !ok {
		return uuid.UUID{}, uuid.UUID{}, apperr.Unauthorized("missing tenant context")
	}
	id, err := uuid.Parse(chi.URLParam(r, "calendarId"))
	if err != nil {
		return uuid.UUID{}, uuid.UUID{}, apperr.BadRequest("invalid calendar id")
	}
	return clientID, id, nil
}
