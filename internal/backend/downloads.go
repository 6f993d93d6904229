package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

// UploadArtifact stores one export file under the attempt it belongs to, as a
// multipart form with the file blob and quiz_attempt_id.
func (c *Client) UploadArtifact(ctx context.Context, attemptID, filename, contentType string, data []byte) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := fw.Write(data); err != nil {
		return err
	}
	if err := mw.WriteField("quiz_attempt_id", attemptID); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/quiz-downloads/upload", &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := c.doRaw(req)
	if err != nil {
		return fmt.Errorf("upload %s: %w", filename, err)
	}
	resp.Body.Close()
	return nil
}

type downloadURLResponse struct {
	Status    string `json:"status"`
	SignedURL string `json:"signed_url"`
}

// DownloadURL asks the backend for a presigned URL to one stored artifact.
func (c *Client) DownloadURL(ctx context.Context, attemptID, fileType string) (string, error) {
	q := url.Values{}
	q.Set("quiz_attempt_id", attemptID)
	q.Set("file_type", fileType)
	var out downloadURLResponse
	if err := c.getJSON(ctx, "/quiz-downloads/get-quiz-download-url?"+q.Encode(), &out); err != nil {
		return "", fmt.Errorf("download url: %w", err)
	}
	if out.SignedURL == "" {
		return "", errors.New("backend returned no signed url")
	}
	return out.SignedURL, nil
}

// FetchSigned streams the artifact behind a presigned URL. The URL is
// self-authorizing, so no session cookie is attached. The caller closes the
// reader.
func (c *Client) FetchSigned(ctx context.Context, signedURL string) (io.ReadCloser, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, signedURL, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, "", readError(resp)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}
