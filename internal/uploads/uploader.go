package uploads

import (
	"context"

	"github.com/pathwise/pathwise-gateway/internal/backend"
	"github.com/pathwise/pathwise-gateway/internal/export"
)

// Marker records that an attempt's artifact batch has settled. Implemented by
// the progress store; the flag is single-shot per attempt.
type Marker interface {
	MarkArtifactsUploaded(ctx context.Context, attemptID string) (bool, error)
}

// Uploader pushes one attempt's artifact set to backend storage.
type Uploader struct {
	client *backend.Client
	marker Marker
}

func NewUploader(client *backend.Client, marker Marker) *Uploader {
	return &Uploader{client: client, marker: marker}
}

// UploadAll uploads every artifact concurrently and, once the whole batch has
// settled, records the uploaded flag for the attempt. The returned bool
// reports whether this call was the one that set the flag; repeat calls for
// the same attempt leave it untouched.
func (u *Uploader) UploadAll(ctx context.Context, attemptID string, arts []export.Artifact) (Result, bool, error) {
	tasks := make([]Task, len(arts))
	for i, a := range arts {
		a := a
		tasks[i] = Task{
			Name: a.FileType,
			Run: func(ctx context.Context) error {
				return u.client.UploadArtifact(ctx, attemptID, a.FileType, a.ContentType, a.Data)
			},
		}
	}
	res := Run(ctx, tasks)

	marked, err := u.marker.MarkArtifactsUploaded(ctx, attemptID)
	if err != nil {
		return res, false, err
	}
	return res, marked, nil
}
