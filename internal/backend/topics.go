package backend

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pathwise/pathwise-gateway/internal/content"
)

type searchRequest struct {
	SearchQuery string `json:"search_query"`
}

// SearchTopic fetches a generated topic overview. The endpoint returns a
// JSON-encoded string whose content is itself JSON keyed by topic name.
func (c *Client) SearchTopic(ctx context.Context, topic string) (content.Topic, error) {
	var payload string
	if err := c.postJSON(ctx, "/gemini-search/search", searchRequest{SearchQuery: topic}, &payload); err != nil {
		return content.Topic{}, fmt.Errorf("search topic: %w", err)
	}
	t, err := content.ParseTopicPayload(stripFences(payload), topic)
	if err != nil {
		return content.Topic{}, fmt.Errorf("search topic: %w", err)
	}
	return t, nil
}

type resourceRequest struct {
	TopicName    string `json:"topic_name"`
	SubtopicName string `json:"subtopic_name,omitempty"`
}

// resourcePath maps a kind to its endpoint suffix and response key.
func resourcePath(kind content.ResourceKind) string {
	switch kind {
	case content.ResourceVideo:
		return "videos"
	case content.ResourceArticle:
		return "articles"
	default:
		return "documentation"
	}
}

// TopicResources fetches generated learning resources of one kind for a topic
// (optionally narrowed to a subtopic). Entries without a link are dropped.
func (c *Client) TopicResources(ctx context.Context, kind content.ResourceKind, topic, subtopic string) ([]content.Resource, error) {
	seg := resourcePath(kind)
	var raw map[string]json.RawMessage
	req := resourceRequest{TopicName: topic, SubtopicName: subtopic}
	if err := c.postJSON(ctx, "/gemini-search/generate-topic-"+seg, req, &raw); err != nil {
		return nil, fmt.Errorf("generate %s: %w", seg, err)
	}
	var list []content.Resource
	if body, ok := raw[seg]; ok {
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, fmt.Errorf("decode %s: %w", seg, err)
		}
	}
	out := list[:0]
	for _, r := range list {
		r.Kind = kind
		if r.Usable() {
			out = append(out, r)
		}
	}
	return out, nil
}
