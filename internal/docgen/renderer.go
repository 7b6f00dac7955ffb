package docgen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"strings"
	"time"
)

// Renderer calls the external document-rendering engine over HTTP. The
// engine receives the flat placeholder map and returns the rendered file
// in one of three shapes:
//
//  1. JSON envelope with an embedded base64 file,
//  2. JSON envelope with a URL the file can be fetched from,
//  3. the raw file bytes with a non-JSON content type.
//
// Anything else is a descriptive error. There is no retry here; the
// pipeline records the failure against the batch item and moves on.
type Renderer struct {
	baseURL string
	client  *http.Client
}

func NewRenderer() *Renderer {
	return &Renderer{
		baseURL: os.Getenv("RENDERER_URL"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// NewRendererWithURL is used by tests to point at a mock engine.
func NewRendererWithURL(baseURL string) *Renderer {
	return &Renderer{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// RenderResult is a rendered document ready for the blob store.
type RenderResult struct {
	Filename string
	Mime     string
	Content  []byte
}

type renderEnvelope struct {
	Filename   string `json:"filename"`
	FileBase64 string `json:"file_base64"`
	FileURL    string `json:"file_url"`
}

// Render posts the payload for one document instance and normalizes the
// engine's response.
func (r *Renderer) Render(ctx context.Context, template string, payload map[string]any) (*RenderResult, error) {
	body, err := json.Marshal(map[string]any{
		"template": template,
		"fields":   payload,
	})
	if err != nil {
		return nil, fmt.Errorf("encode render request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/render", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render call failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("renderer returned %s: %s", res.Status, strings.TrimSpace(string(snippet)))
	}

	ct := res.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(ct)

	if mediaType == "application/json" {
		var env renderEnvelope
		if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
			return nil, fmt.Errorf("decode renderer envelope: %w", err)
		}
		switch {
		case env.FileBase64 != "":
			content, err := base64.StdEncoding.DecodeString(env.FileBase64)
			if err != nil {
				return nil, fmt.Errorf("decode base64 file: %w", err)
			}
			return &RenderResult{Filename: env.Filename, Mime: "application/pdf", Content: content}, nil
		case env.FileURL != "":
			return r.fetch(ctx, env.FileURL, env.Filename)
		default:
			return nil, fmt.Errorf("renderer JSON response carries neither file_base64 nor file_url")
		}
	}

	// Raw binary response.
	if mediaType == "" || mediaType == "text/html" {
		return nil, fmt.Errorf("unexpected renderer content type %q", ct)
	}
	content, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read rendered file: %w", err)
	}
	return &RenderResult{
		Filename: filenameFrom(res.Header.Get("Content-Disposition")),
		Mime:     mediaType,
		Content:  content,
	}, nil
}

// fetch downloads a rendered file the engine handed back by URL.
func (r *Renderer) fetch(ctx context.Context, url, filename string) (*RenderResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	res, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rendered file: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch rendered file: %s", res.Status)
	}
	content, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	mediaType, _, _ := mime.ParseMediaType(res.Header.Get("Content-Type"))
	if mediaType == "" {
		mediaType = "application/pdf"
	}
	return &RenderResult{Filename: filename, Mime: mediaType, Content: content}, nil
}

// filenameFrom pulls the filename out of a Content-Disposition header,
// empty when absent; the pipeline falls back to the instance name.
func filenameFrom(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}
