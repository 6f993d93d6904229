package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/pathwise/pathwise-gateway/internal/backend"
	"github.com/pathwise/pathwise-gateway/internal/progress"

	"github.com/go-chi/chi/v5"
)

// ownAttempt checks that the attempt referenced in the URL belongs to the
// caller before any storage access.
func ownAttempt(store *progress.Store, w http.ResponseWriter, r *http.Request) (progress.Attempt, bool) {
	a, err := store.GetAttempt(r.Context(), chi.URLParam(r, "attemptID"), userID(r))
	if err == progress.ErrNotFound {
		http.Error(w, "attempt not found", 404)
		return progress.Attempt{}, false
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return progress.Attempt{}, false
	}
	return a, true
}

// DownloadURLHandler returns the presigned URL for one stored artifact, for
// clients that fetch storage directly.
func DownloadURLHandler(client *backend.Client, store *progress.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, ok := ownAttempt(store, w, r)
		if !ok {
			return
		}
		fileType := chi.URLParam(r, "fileType")
		url, err := client.DownloadURL(r.Context(), a.ID, fileType)
		if err != nil {
			writeBackendErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"quiz_attempt_id": a.ID,
			"file_type":       fileType,
			"signed_url":      url,
		})
	}
}

// DownloadHandler streams one stored artifact through the gateway, so the
// browser never sees the presigned URL.
func DownloadHandler(client *backend.Client, store *progress.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, ok := ownAttempt(store, w, r)
		if !ok {
			return
		}
		fileType := chi.URLParam(r, "fileType")
		url, err := client.DownloadURL(r.Context(), a.ID, fileType)
		if err != nil {
			writeBackendErr(w, err)
			return
		}
		body, contentType, err := client.FetchSigned(r.Context(), url)
		if err != nil {
			writeBackendErr(w, err)
			return
		}
		defer body.Close()
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.Header().Set("Content-Disposition", `attachment; filename="`+fileType+`"`)
		_, _ = io.Copy(w, body)
	}
}
