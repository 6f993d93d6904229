package content

import "fmt"

// ResourceKind discriminates the resource union.
type ResourceKind string

const (
	ResourceVideo         ResourceKind = "video"
	ResourceArticle       ResourceKind = "article"
	ResourceDocumentation ResourceKind = "documentation"
)

// ParseResourceKind validates a client-supplied kind string.
func ParseResourceKind(s string) (ResourceKind, error) {
	switch ResourceKind(s) {
	case ResourceVideo, ResourceArticle, ResourceDocumentation:
		return ResourceKind(s), nil
	}
	return "", fmt.Errorf("unknown resource kind %q", s)
}

// Resource is one learning resource, tagged by Kind. Only the fields relevant
// to the kind are populated.
type Resource struct {
	Kind        ResourceKind `json:"kind"`
	Title       string       `json:"title"`
	URL         string       `json:"url"`
	Description string       `json:"description,omitempty"`

	// video
	Channel  string `json:"channel,omitempty"`
	Duration string `json:"duration,omitempty"`

	// article / documentation
	Author string `json:"author,omitempty"`
	Source string `json:"source,omitempty"`
}

// Usable filters out entries the generator returned without a link.
func (r Resource) Usable() bool {
	return r.Title != "" && r.URL != ""
}
