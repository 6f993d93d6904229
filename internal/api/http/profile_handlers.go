package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pathwise/pathwise-gateway/internal/progress"
)

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

// ProfileSummaryHandler returns the dashboard aggregate for the signed-in
// user: attempt counts, average and best scores, topics quizzed and viewed.
func ProfileSummaryHandler(store *progress.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := store.Summary(r.Context(), userID(r))
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		_ = json.NewEncoder(w).Encode(sum)
	}
}

// ListAttemptsHandler pages through the user's quiz history, most recent
// first.
func ListAttemptsHandler(store *progress.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListAttempts(r.Context(), userID(r), queryInt(r, "limit"), queryInt(r, "offset"))
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if list == nil {
			list = []progress.Attempt{}
		}
		_ = json.NewEncoder(w).Encode(list)
	}
}

// GetAttemptHandler returns one recorded attempt with its per-question
// results.
func GetAttemptHandler(store *progress.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, ok := ownAttempt(store, w, r)
		if !ok {
			return
		}
		_ = json.NewEncoder(w).Encode(a)
	}
}

// RecentTopicsHandler lists the user's most recently viewed topics.
func RecentTopicsHandler(store *progress.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topics, err := store.RecentTopics(r.Context(), userID(r), queryInt(r, "limit"))
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if topics == nil {
			topics = []progress.TopicView{}
		}
		_ = json.NewEncoder(w).Encode(topics)
	}
}
