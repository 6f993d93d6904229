// Package content models the generated learning material the backend returns:
// topic overviews with their fixed sub-sections, and learning resources.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Topic is one generated topic overview. The backend emits a fixed section
// set; the "Need to Learn <topic>" key embeds the topic name, so parsing
// matches it by prefix.
type Topic struct {
	Name             string   `json:"name"`
	ShortDescription string   `json:"short_description"`
	NeedToLearn      string   `json:"need_to_learn"`
	SubTopics        []string `json:"subtopics"`
	RoadMap          []string `json:"road_map"`
	KeyTakeaways     []string `json:"key_takeaways"`
	FAQ              []QA     `json:"faq"`
	RelatedTopics    []string `json:"related_topics"`
}

type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

const needToLearnPrefix = "need to learn"

// ParseTopicPayload decodes the search endpoint's double-encoded payload: the
// response body is a JSON string which itself holds a JSON object keyed by
// topic name.
func ParseTopicPayload(payload, topic string) (Topic, error) {
	var byTopic map[string]map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &byTopic); err != nil {
		return Topic{}, fmt.Errorf("topic payload is not JSON: %w", err)
	}
	if len(byTopic) == 0 {
		return Topic{}, errors.New("topic payload is empty")
	}

	sections, ok := byTopic[topic]
	name := topic
	if !ok {
		// Single-key payloads are accepted under whatever name the
		// generator chose.
		if len(byTopic) != 1 {
			return Topic{}, fmt.Errorf("topic %q not present in payload", topic)
		}
		for k, v := range byTopic {
			name, sections = k, v
		}
	}

	t := Topic{Name: name}
	for key, raw := range sections {
		switch normalizeKey(key) {
		case "short description":
			t.ShortDescription = asString(raw)
		case "subtopics", "sub topics":
			t.SubTopics = asStringList(raw)
		case "road map", "roadmap":
			t.RoadMap = asStringList(raw)
		case "key takeaways":
			t.KeyTakeaways = asStringList(raw)
		case "faq", "faqs":
			t.FAQ = asFAQ(raw)
		case "related topics":
			t.RelatedTopics = asStringList(raw)
		default:
			if strings.HasPrefix(normalizeKey(key), needToLearnPrefix) {
				t.NeedToLearn = asString(raw)
			}
		}
	}
	if t.ShortDescription == "" && len(t.SubTopics) == 0 && len(t.RoadMap) == 0 {
		return Topic{}, fmt.Errorf("topic %q has no recognizable sections", topic)
	}
	return t, nil
}

func normalizeKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}

func asString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	// Generators occasionally emit a list where prose was expected.
	if list := asStringList(raw); len(list) > 0 {
		return strings.Join(list, " ")
	}
	return ""
}

func asStringList(raw json.RawMessage) []string {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return []string{s}
	}
	return nil
}

func asFAQ(raw json.RawMessage) []QA {
	var qa []QA
	if err := json.Unmarshal(raw, &qa); err == nil {
		return qa
	}
	// Fallback shape: {"question": "answer", ...}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err == nil {
		out := make([]QA, 0, len(m))
		for q, a := range m {
			out = append(out, QA{Question: q, Answer: a})
		}
		return out
	}
	return nil
}
