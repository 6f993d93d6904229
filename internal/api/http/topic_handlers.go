package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/pathwise/pathwise-gateway/internal/auth"
	"github.com/pathwise/pathwise-gateway/internal/backend"
	"github.com/pathwise/pathwise-gateway/internal/content"
	"github.com/pathwise/pathwise-gateway/internal/progress"

	"github.com/go-chi/chi/v5"
)

// SearchTopicHandler fetches a generated topic overview and, for signed-in
// users, records the view for the profile dashboard.
func SearchTopicHandler(client *backend.Client, store *progress.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topic := chi.URLParam(r, "topic")
		if topic == "" {
			http.Error(w, "topic required", 400)
			return
		}
		t, err := client.SearchTopic(r.Context(), topic)
		if err != nil {
			writeBackendErr(w, err)
			return
		}
		if id, ok := auth.IdentityFrom(r.Context()); ok {
			if err := store.RecordTopicView(r.Context(), id.ID, t.Name); err != nil {
				// A lost view record should not fail the content fetch.
				log.Printf("record topic view: %v", err)
			}
		}
		_ = json.NewEncoder(w).Encode(t)
	}
}

// TopicResourcesHandler fetches one kind of learning resource (videos,
// articles or documentation) for a topic, optionally narrowed to a subtopic.
func TopicResourcesHandler(client *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := content.ParseResourceKind(chi.URLParam(r, "kind"))
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		topic := chi.URLParam(r, "topic")
		if topic == "" {
			http.Error(w, "topic required", 400)
			return
		}
		subtopic := r.URL.Query().Get("subtopic")
		list, err := client.TopicResources(r.Context(), kind, topic, subtopic)
		if err != nil {
			writeBackendErr(w, err)
			return
		}
		if list == nil {
			list = []content.Resource{}
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"topic":     topic,
			"kind":      kind,
			"resources": list,
		})
	}
}
