package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/techappsUT/planer/internal/apperr"
	"github.com/techappsUT/planer/internal/domain/publication"
	"github.com/techappsUT/planer/internal/store"
	"github.com/techappsUT/planer/internal/store/postgres"
	"github.com/techappsUT/planer/internal/tenancy"
)

type publicationMediaDTO struct {
	MediaID  uuid.UUID              `json:"mediaId"`
	Order    int                    `json:"order"`
	CropData map[string]interface{} `json:"cropData"`
}

type createPublicationRequest struct {
	ContentID       uuid.UUID                  `json:"contentId" validate:"required"`
	SocialAccountID uuid.UUID                  `json:"socialAccountId" validate:"required"`
	Format          publication.Format         `json:"format" validate:"required"`
	PublishAt       time.Time                  `json:"publishAt" validate:"required"`
	CustomCaption   *string                    `json:"customCaption"`
	PlatformConfig  publication.PlatformConfig `json:"platformConfig"`
	Media           []publicationMediaDTO      `json:"media"`
}

func (s *Server) createPublication(w http.ResponseWriter, r *http.Request) {
	clientID, ok := tenancy.ClientIDFrom(r.Context())
	if !ok {
		writeError(w, r, apperr.Unauthorized("missing tenant context"))
		return
	}

	var req createPublicationRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	account, err := s.accounts.FindByID(r.Context(), clientID, req.SocialAccountID)
	if err != nil {
		writeError(w, r, apperr.NotFound("social account not found"))
		return
	}
	if !account.EligibleForPublishing() {
		writeError(w, r, apperr.BadRequest("social account is disconnected"))
		return
	}

	// Publication.platform is always the account's own platform (spec §3);
	// there is no independent user-supplied platform field to cross-check.
	p := publication.NewPublication(req.ContentID, req.SocialAccountID, account.Platform(), req.Format, req.PublishAt, req.CustomCaption, req.PlatformConfig)

	media := make([]*publication.PublicationMedia, 0, len(req.Media))
	for _, m := range req.Media {
		media = append(media, publication.NewPublicationMedia(p.ID(), m.MediaID, m.Order, m.CropData))
	}

	if err := s.publications.Create(r.Context(), p, media); err != nil {
		writeError(w, r, apperr.Internal(err))
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) listPublications(w http.ResponseWriter, r *http.Request) {
	clientID, ok := tenancy.ClientIDFrom(r.Context())
	if !ok {
		writeError(w, r, apperr.Unauthorized("missing tenant context"))
		return
	}

	q := r.URL.Query()
	filter := store.ListFilter{Page: 1, Limit: 20}
	if v := q.Get("platform"); v != "" {
		filter.Platform = &v
	}
	if v := q.Get("status"); v != "" {
		filter.Status = &v
	}
	if v := q.Get("contentId"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			filter.ContentID = &id
		}
	}
	if v := q.Get("calendarId"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			filter.CalendarID = &id
		}
	}
	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Page = n
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}

	rows, total, err := s.publications.List(r.Context(), clientID, filter)
	if err != nil {
		writeError(w, r, apperr.Internal(err))
		return
	}
	writeJSON(w, http.StatusOK, listEnvelope(rows, total, filter.Page, filter.Limit))
}

func (s *Server) getPublication(w http.ResponseWriter, r *http.Request) {
	clientID, id, err := s.tenantAndID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.publications.FindByID(r.Context(), clientID, id)
	if err != nil {
		writeError(w, r, notFoundOr500(err, "publication not found"))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type updatePublicationRequest struct {
	PublishAt      time.Time                  `json:"publishAt"`
	CustomCaption  *string                    `json:"customCaption"`
	PlatformConfig publication.PlatformConfig `json:"platformConfig"`
	Media          []publicationMediaDTO      `json:"media"`
}

func (s *Server) updatePublication(w http.ResponseWriter, r *http.Request) {
	clientID, id, err := s.tenantAndID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	p, err := s.publications.FindByID(r.Context(), clientID, id)
	if err != nil {
		writeError(w, r, notFoundOr500(err, "publication not found"))
		return
	}

	var req updatePublicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, apperr.BadRequest("invalid request body"))
		return
	}

	if err := p.UpdateSchedule(req.PublishAt, req.CustomCaption, req.PlatformConfig); err != nil {
		writeError(w, r, apperr.BadRequest(err.Error()))
		return
	}

	media := make([]*publication.PublicationMedia, 0, len(req.Media))
	for _, m := range req.Media {
		media = append(media, publication.NewPublicationMedia(p.ID(), m.MediaID, m.Order, m.CropData))
	}

	if err := s.publications.Update(r.Context(), p, media); err != nil {
		writeError(w, r, apperr.Internal(err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) deletePublication(w http.ResponseWriter, r *http.Request) {
	clientID, id, err := s.tenantAndID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	p, err := s.publications.FindByID(r.Context(), clientID, id)
	if err != nil {
		writeError(w, r, notFoundOr500(err, "publication not found"))
		return
	}
	if !p.CanDelete() {
		writeError(w, r, apperr.BadRequest("publication cannot be deleted while PUBLISHING"))
		return
	}

	if err := s.publications.Delete(r.Context(), clientID, id); err != nil {
		writeError(w, r, apperr.Internal(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) tenantAndID(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	clientID, ok := tenancy.ClientIDFrom(r.Context())
	if !ok {
		return uuid.UUID{}, uuid.UUID{}, apperr.Unauthorized("missing tenant context")
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.UUID{}, uuid.UUID{}, apperr.BadRequest("invalid id")
	}
	return clientID, id, nil
}

func notFoundOr500(err error, message string) error {
	if errors.Is(err, postgres.ErrNotFound) {
		return apperr.NotFound(message)
	}
	return apperr.Internal(err)
}
