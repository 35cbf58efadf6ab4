package httpapi

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/techappsUT/planer/internal/apperr"
	"github.com/techappsUT/planer/internal/domain/content"
	"github.com/techappsUT/planer/internal/tenancy"
)

type createContentRequest struct {
	CalendarID *uuid.UUID `json:"calendarId"`
	Caption    string     `json:"caption" validate:"max=2200"`
}

func (s *Server) createContent(w http.ResponseWriter, r *http.Request) {
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

	var req createContentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	c := content.NewContent(user.ID(), clientID, req.CalendarID, req.Caption)

	if c.CalendarID() != nil {
		cal, err := s.calendars.FindByID(r.Context(), clientID, *c.CalendarID())
		if err != nil {
			writeError(w, r, apperr.BadRequest("calendar not found"))
			return
		}
		if err := c.ValidateCalendarOwnership(cal.ClientID()); err != nil {
			writeError(w, r, apperr.BadRequest(err.Error()))
			return
		}
	}

	if err := s.contents.Create(r.Context(), c); err != nil {
		writeError(w, r, apperr.Internal(err))
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) getContent(w http.ResponseWriter, r *http.Request) {
	clientID, id, err := s.tenantAndContentID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.contents.FindByID(r.Context(), clientID, id)
	if err != nil {
		writeError(w, r, notFoundOr500(err, "content not found"))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) deleteContent(w http.ResponseWriter, r *http.Request) {
	clientID, id, err := s.tenantAndContentID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	hasPublications, err := s.contents.HasNonErrorPublications(r.Context(), id)
	if err != nil {
		writeError(w, r, apperr.Internal(err))
		return
	}
	if hasPublications {
		writeError(w, r, apperr.BadRequest("content has active publications and cannot be deleted"))
		return
	}
	if err := s.contents.Delete(r.Context(), clientID, id); err != nil {
		writeError(w, r, apperr.Internal(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// uploadMedia implements spec §4.9's direct-upload flow: the server
// receives the file directly (multipart), uploads it to the object
// store itself, and registers the resulting media row. The size checked
// against the policy is the one the server measured while parsing the
// upload; the MIME type is the Content-Type header the client sent with
// the file part, and is not sniffed from the bytes.
func (s *Server) uploadMedia(w http.ResponseWriter, r *http.Request) {
	clientID, contentID, err := s.tenantAndContentID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	c, err := s.contents.FindByID(r.Context(), clientID, contentID)
	if err != nil {
		writeError(w, r, notFoundOr500(err, "content not found"))
		return
	}

	count, err := s.contents.CountMedia(r.Context(), c.ID())
	if err != nil {
		writeError(w, r, apperr.Internal(err))
		return
	}
	if count >= s.maxMediaPerContent {
		writeError(w, r, apperr.BadRequest("content already holds MAX_MEDIA_PER_CONTENT items"))
		return
	}

	if err := r.ParseMultipartForm(content.MaxVideoSize + (1 << 20)); err != nil {
		writeError(w, r, apperr.BadRequest("invalid multipart upload"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, apperr.BadRequest("missing file field"))
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	mediaType := content.MediaImage
	if strings.HasPrefix(mimeType, "video/") {
		mediaType = content.MediaVideo
	}
	if err := content.ValidateMediaPolicy(mediaType, mimeType, header.Size); err != nil {
		writeError(w, r, apperr.BadRequest(err.Error()))
		return
	}

	key := fmt.Sprintf("clients/%s/contents/%s/%s%s", clientID, contentID, uuid.New(), filepath.Ext(header.Filename))
	publicURL, err := s.objects.UploadFile(r.Context(), key, file, mimeType)
	if err != nil {
		writeError(w, r, apperr.Internal(err))
		return
	}

	m := content.NewMedia(c.ID(), publicURL, key, mediaType, mimeType, header.Size, count).
		WithDimensions(formInt(r, "width"), formInt(r, "height"), formFloat(r, "duration"), formString(r, "thumbnail_url"))
	if err := s.contents.AddMedia(r.Context(), m); err != nil {
		writeError(w, r, apperr.Internal(err))
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) deleteMedia(w http.ResponseWriter, r *http.Request) {
	_, contentID, err := s.tenantAndContentID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	mediaID, err := uuid.Parse(chi.URLParam(r, "mediaId"))
	if err != nil {
		writeError(w, r, apperr.BadRequest("invalid media id"))
		return
	}

	inUse, err := s.contents.MediaReferencedByPublication(r.Context(), mediaID)
	if err != nil {
		writeError(w, r, apperr.Internal(err))
		return
	}
	if inUse {
		writeError(w, r, apperr.BadRequest("media is referenced by a publication"))
		return
	}

	if err := s.contents.DeleteMedia(r.Context(), contentID, mediaID); err != nil {
		writeError(w, r, apperr.Internal(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) tenantAndContentID(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	clientID, ok := tenancy.ClientIDFrom(r.Context())
	if !ok {
		return uuid.UUID{}, uuid.UUID{}, apperr.Unauthorized("missing tenant context")
	}
	id, err := uuid.Parse(chi.URLParam(r, "contentId"))
	if err != nil {
		return uuid.UUID{}, uuid.UUID{}, apperr.BadRequest("invalid content id")
	}
	return clientID, id, nil
}

// formInt/formFloat/formString read optional client-reported media
// metadata off the multipart form. The server never decodes the
// uploaded file itself (no image/video codec in the dependency tree),
// so width/height/duration/thumbnail are accepted as caller-supplied
// hints; malformed values are treated as absent rather than rejected.
func formInt(r *http.Request, field string) *int {
	v := strings.TrimSpace(r.FormValue(field))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

func formFloat(r *http.Request, field string) *float64 {
	v := strings.TrimSpace(r.FormValue(field))
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

func formString(r *http.Request, field string) *string {
	v := strings.TrimSpace(r.FormValue(field))
	if v == "" {
		return nil
	}
	return &v
}
