package httpapi

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/techappsUT/planer/internal/apperr"
)

const commenterCookieName = "planer_commenter_id"
const commenterCookieLifetime = 90 * 24 * time.Hour

func (s *Server) getSharedCalendar(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	view, err := s.shares.GetSharedCalendar(r.Context(), token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) listComments(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	q := r.URL.Query()
	limit := 20
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	var cursor *time.Time
	if v := q.Get("cursor"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			cursor = &t
		}
	}
	var publicationID *uuid.UUID
	if v := q.Get("publicationId"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			publicationID = &id
		}
	}

	page, err := s.shares.GetComments(r.Context(), token, cursor, limit, publicationID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

type createCommentRequest struct {
	AuthorName    string     `json:"authorName" validate:"required,max=200"`
	AuthorEmail   *string    `json:"authorEmail" validate:"omitempty,email"`
	Body          string     `json:"body" validate:"required,max=5000"`
	PublicationID *uuid.UUID `json:"publicationId"`
}

func (s *Server) createComment(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	commenterID := s.commenterID(w, r)

	var req createCommentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := s.shares.CreateComment(r.Context(), token, commenterID, req.AuthorName, req.AuthorEmail, req.Body, req.PublicationID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

type updateCommentRequest struct {
	Body string `json:"body" validate:"required,max=5000"`
}

func (s *Server) updateComment(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	commenterID := s.commenterID(w, r)

	commentID, err := uuid.Parse(chi.URLParam(r, "commentId"))
	if err != nil {
		writeError(w, r, apperr.BadRequest("invalid comment id"))
		return
	}

	var req updateCommentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := s.shares.UpdateComment(r.Context(), token, commentID, commenterID, req.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) deleteComment(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	commenterID := s.commenterID(w, r)

	commentID, err := uuid.Parse(chi.URLParam(r, "commentId"))
	if err != nil {
		writeError(w, r, apperr.BadRequest("invalid comment id"))
		return
	}

	if err := s.shares.DeleteComment(r.Context(), token, commentID, commenterID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// commenterID implements spec §4.8's commenter-identity cookie: read an
// existing planer_commenter_id cookie, or mint 128 random bits and set it,
// 90 days, http-only, same-site-strict, secure in production.
func (s *Server) commenterID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(commenterCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	id := hex.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     commenterCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(commenterCookieLifetime.Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	return id
}
