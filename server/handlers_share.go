package server

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"

	apperrors "github.com/jrsteele09/chatcraft-server/internal/errors"
	"github.com/jrsteele09/chatcraft-server/share"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const shareContentType = "application/json"

// PutShareHandler stores the JSON body under {user}/{id}.
func (s *Server) PutShareHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, id := r.PathValue("user"), r.PathValue("id")
		if !validShareNames(w, user, id) {
			return
		}

		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != shareContentType {
			writeMessage(w, http.StatusBadRequest, "expected Content-Type application/json")
			return
		}

		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.GetShareMaxBytes()))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if apperrors.As(err, &tooLarge) {
				writeError(w, errors.Wrapf(apperrors.ErrBodyTooLarge, "share exceeds %d bytes", tooLarge.Limit))
				return
			}
			writeError(w, errors.Wrap(apperrors.ErrInvalidRequest, "failed to read body"))
			return
		}
		if !json.Valid(data) {
			writeMessage(w, http.StatusBadRequest, "body is not valid JSON")
			return
		}

		err = s.shares.Put(r.Context(), user, id, share.Object{
			ContentType: shareContentType,
			Data:        data,
			Uploaded:    s.now().UTC(),
		})
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Str("key", share.Key(user, id)).Msg("Failed to store share")
			writeError(w, err)
			return
		}
		s.metrics.RecordShareOperation("put")

		writeJSON(w, http.StatusCreated, messageResponse{
			Message: "Chat shared successfully",
			URL:     s.origin(r) + routeShareBase + share.Key(user, id),
		})
	}
}

// GetShareHandler serves a share to anyone.
func (s *Server) GetShareHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, id := r.PathValue("user"), r.PathValue("id")
		if !validShareNames(w, user, id) {
			return
		}

		obj, err := s.shares.Get(r.Context(), user, id)
		if err != nil {
			if !apperrors.Is(err, share.ErrNotFound) {
				zerolog.Ctx(r.Context()).Error().Err(err).Str("key", share.Key(user, id)).Msg("Failed to read share")
			}
			writeShareError(w, err)
			return
		}
		s.metrics.RecordShareOperation("get")

		contentType := obj.ContentType
		if contentType == "" {
			contentType = shareContentType
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(obj.Data)
	}
}

func (s *Server) DeleteShareHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, id := r.PathValue("user"), r.PathValue("id")
		if !validShareNames(w, user, id) {
			return
		}

		if err := s.shares.Delete(r.Context(), user, id); err != nil {
			if !apperrors.Is(err, share.ErrNotFound) {
				zerolog.Ctx(r.Context()).Error().Err(err).Str("key", share.Key(user, id)).Msg("Failed to delete share")
			}
			writeShareError(w, err)
			return
		}
		s.metrics.RecordShareOperation("delete")
		writeMessage(w, http.StatusOK, "Chat deleted successfully")
	}
}

func (s *Server) ListSharesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := r.PathValue("user")
		if err := share.ValidateName(user); err != nil {
			writeError(w, err)
			return
		}

		infos, err := s.shares.List(r.Context(), user)
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Str("user", user).Msg("Failed to list shares")
			writeError(w, err)
			return
		}
		s.metrics.RecordShareOperation("list")
		writeJSON(w, http.StatusOK, infos)
	}
}

func validShareNames(w http.ResponseWriter, user, id string) bool {
	for _, name := range []string{user, id} {
		if err := share.ValidateName(name); err != nil {
			writeError(w, err)
			return false
		}
	}
	return true
}

func writeShareError(w http.ResponseWriter, err error) {
	if apperrors.Is(err, share.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "share not found")
		return
	}
	writeError(w, err)
}
