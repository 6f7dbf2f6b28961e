// Package upload sends meal and profile images to the image host.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrEmptyImage   = errors.New("upload: empty image")
	ErrUploadFailed = errors.New("upload: image host rejected the image")
)

// MaxImageSize is the largest image accepted before contacting the host.
const MaxImageSize = 5 << 20

type Client struct {
	endpoint string
	key      string
	http     *http.Client
}

func NewClient(endpoint, key string, timeout time.Duration) *Client {
	return &Client{endpoint: endpoint, key: key, http: &http.Client{Timeout: timeout}}
}

type hostResponse struct {
	Success bool `json:"success"`
	Data    struct {
		URL        string `json:"url"`
		DisplayURL string `json:"display_url"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload posts the image as the "image" form field and returns the hosted URL.
func (c *Client) Upload(ctx context.Context, filename string, image io.Reader) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(image, MaxImageSize+1))
	if err != nil {
		return "", fmt.Errorf("upload: read image: %w", err)
	}
	if len(raw) == 0 {
		return "", ErrEmptyImage
	}
	if len(raw) > MaxImageSize {
		return "", fmt.Errorf("%w: image larger than %d bytes", ErrUploadFailed, MaxImageSize)
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("image", filepath.Base(filename))
	if err != nil {
		return "", fmt.Errorf("upload: build form: %w", err)
	}
	if _, err := part.Write(raw); err != nil {
		return "", fmt.Errorf("upload: build form: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("upload: build form: %w", err)
	}

	target := c.endpoint + "?" + url.Values{"key": {c.key}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, &buf)
	if err != nil {
		return "", fmt.Errorf("upload: build request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()

	var body hostResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("upload: decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !body.Success {
		log.Warn().Int("status", resp.StatusCode).Str("message", body.Error.Message).Msg("upload: image host rejected upload")
		return "", fmt.Errorf("%w: %s", ErrUploadFailed, body.Error.Message)
	}

	hosted := body.Data.DisplayURL
	if hosted == "" {
		hosted = body.Data.URL
	}
	log.Info().Str("file", filename).Int("bytes", len(raw)).Msg("upload: image stored")
	return hosted, nil
}
