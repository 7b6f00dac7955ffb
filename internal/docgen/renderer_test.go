package docgen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_JSONBase64(t *testing.T) {
	pdf := []byte("%PDF-1.7 fake")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/render", r.URL.Path)

		var in struct {
			Template string         `json:"template"`
			Fields   map[string]any `json:"fields"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "demand", in.Template)
		assert.Equal(t, "PI-1", in.Fields["case_number"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"filename":    "demand.pdf",
			"file_base64": base64.StdEncoding.EncodeToString(pdf),
		})
	}))
	defer srv.Close()

	got, err := NewRendererWithURL(srv.URL).Render(context.Background(), "demand", map[string]any{"case_number": "PI-1"})
	require.NoError(t, err)
	assert.Equal(t, "demand.pdf", got.Filename)
	assert.Equal(t, "application/pdf", got.Mime)
	assert.Equal(t, pdf, got.Content)
}

func TestRender_JSONFileURL(t *testing.T) {
	pdf := []byte("%PDF-1.7 via url")
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/render", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"filename": "lor.pdf",
			"file_url": srv.URL + "/files/lor.pdf",
		})
	})
	mux.HandleFunc("/files/lor.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(pdf)
	})

	got, err := NewRendererWithURL(srv.URL).Render(context.Background(), "lor", nil)
	require.NoError(t, err)
	assert.Equal(t, "lor.pdf", got.Filename)
	assert.Equal(t, "application/pdf", got.Mime)
	assert.Equal(t, pdf, got.Content)
}

func TestRender_RawBinary(t *testing.T) {
	docx := []byte("PK fake docx")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
		w.Header().Set("Content-Disposition", `attachment; filename="lor.docx"`)
		_, _ = w.Write(docx)
	}))
	defer srv.Close()

	got, err := NewRendererWithURL(srv.URL).Render(context.Background(), "lor", nil)
	require.NoError(t, err)
	assert.Equal(t, "lor.docx", got.Filename)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", got.Mime)
	assert.Equal(t, docx, got.Content)
}

func TestRender_ErrorStatusIncludesSnippet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "template not found", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	_, err := NewRendererWithURL(srv.URL).Render(context.Background(), "missing", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template not found")
}

func TestRender_RejectsHTMLErrorPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>login</html>"))
	}))
	defer srv.Close()

	_, err := NewRendererWithURL(srv.URL).Render(context.Background(), "demand", nil)
	assert.Error(t, err)
}

func TestRender_JSONWithoutFileIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"filename":"x.pdf"}`))
	}))
	defer srv.Close()

	_, err := NewRendererWithURL(srv.URL).Render(context.Background(), "demand", nil)
	assert.Error(t, err)
}
