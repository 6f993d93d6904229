package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/pathwise/pathwise-gateway/internal/content"
)

// The search endpoint returns a JSON string whose content is itself JSON,
// sometimes wrapped in markdown fences.
func TestSearchTopicDoubleDecodes(t *testing.T) {
	inner := `{"Go":{"Short Description":"A compiled language.","Need to Learn Go":"It is fast.","Subtopics":["goroutines"],"Road Map":["basics"],"Key Takeaways":["simple"],"FAQ":[{"question":"q","answer":"a"}],"Related Topics":["Rust"]}}`
	mux := http.NewServeMux()
	mux.HandleFunc("/gemini-search/search", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["search_query"] != "Go" {
			t.Fatalf("search_query = %q", req["search_query"])
		}
		_ = json.NewEncoder(w).Encode("```json\n" + inner + "\n```")
	})
	c, srv := testClient(mux)
	defer srv.Close()

	topic, err := c.SearchTopic(context.Background(), "Go")
	if err != nil {
		t.Fatal(err)
	}
	if topic.Name != "Go" || topic.ShortDescription != "A compiled language." {
		t.Fatalf("topic = %+v", topic)
	}
	if topic.NeedToLearn != "It is fast." {
		t.Fatalf("need-to-learn section lost: %+v", topic)
	}
	if len(topic.FAQ) != 1 || topic.FAQ[0].Question != "q" {
		t.Fatalf("faq = %+v", topic.FAQ)
	}
}

func TestTopicResourcesFiltersUnusable(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/gemini-search/generate-topic-videos", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"videos": []map[string]string{
				{"title": "Intro", "url": "https://example.com/v1", "channel": "GoTime"},
				{"title": "No link"},
			},
		})
	})
	c, srv := testClient(mux)
	defer srv.Close()

	list, err := c.TopicResources(context.Background(), content.ResourceVideo, "Go", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d resources, want 1", len(list))
	}
	if list[0].Kind != content.ResourceVideo || list[0].Channel != "GoTime" {
		t.Fatalf("resource = %+v", list[0])
	}
}
