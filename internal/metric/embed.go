package metric

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"facesort/internal/fingerprint"
	"facesort/internal/loader"
)

const defaultEmbedURL = "http://localhost:8000"

// EmbedClient computes face identity embeddings using an external embedding
// server. The model behind the endpoint is the server's business; the
// pipeline only consumes the returned vector.
type EmbedClient struct {
	baseURL string
	client  *http.Client
}

func NewEmbedClient(baseURL string) *EmbedClient {
	if baseURL == "" {
		baseURL = defaultEmbedURL
	}
	return &EmbedClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{},
	}
}

// embedResponse represents the response from the embedding server.
type embedResponse struct {
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	Model     string    `json:"model"`
}

// ComputeEmbedding posts the image to the embedding server and returns the
// face embedding vector.
func (c *EmbedClient) ComputeEmbedding(ctx context.Context, imageData []byte) ([]float32, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embed/face", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding server error (status %d): %s", resp.StatusCode, string(body))
	}

	var embResp embedResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(embResp.Embedding) == 0 {
		return nil, errors.New("empty embedding returned")
	}
	return embResp.Embedding, nil
}

// scoreIdentity fetches the face embedding for one image. An unreachable or
// unconfigured embedding server is a configuration error that aborts the
// run.
func scoreIdentity(ctx context.Context, r *Registry, file loader.ImageFile) (fingerprint.Fingerprint, error) {
	if r.embed == nil {
		return fingerprint.Fingerprint{}, errors.New("identity metric requires an embedding server (set FACESORT_EMBED_URL)")
	}
	embedding, err := r.embed.ComputeEmbedding(ctx, file.Data)
	if err != nil {
		return fingerprint.Fingerprint{}, fmt.Errorf("failed to embed %s: %w", file.Path, err)
	}
	return fingerprint.Vector(embedding), nil
}
