package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/veltalldev/photo-gallery/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postGenerate(t *testing.T, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/generate", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestGenerateEndpoint_Success(t *testing.T) {
	var submitted struct {
		Origin string `json:"origin"`
		Batch  struct {
			Runs  int `json:"runs"`
			Graph struct {
				Nodes map[string]map[string]any `json:"nodes"`
				Edges []models.Edge             `json:"edges"`
			} `json:"graph"`
			Data [][]models.BatchDatum `json:"data"`
		} `json:"batch"`
	}
	upstreamHandler = func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/queue/default/enqueue_batch", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&submitted))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"batch_id": "batch-7"}`))
	}

	resp := postGenerate(t, `{
		"image_name": "source.png",
		"additional_prompt": "in winter",
		"quantity": 3,
		"seed": 5,
		"use_random_seed": false,
		"metadata": {"prompt": "a red barn", "steps": 25}
	}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload models.GenerationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, 45, payload.EstimatedTime)
	assert.Equal(t, "batch-7", payload.BatchID)
	assert.Equal(t, "Generation started for 3 images", payload.Message)

	assert.Equal(t, 3, submitted.Batch.Runs)
	assert.Len(t, submitted.Batch.Graph.Nodes, 10)
	assert.Len(t, submitted.Batch.Graph.Edges, 13)
	assert.Equal(t, "photo_gallery", submitted.Origin)

	// Documented incrementing seed policy: 5, 6, 7
	require.NotEmpty(t, submitted.Batch.Data)
	seedItems := submitted.Batch.Data[0][0].Items
	require.Len(t, seedItems, 3)
	assert.Equal(t, []any{float64(5), float64(6), float64(7)}, seedItems)
}

func TestGenerateEndpoint_QuantityValidation(t *testing.T) {
	called := false
	upstreamHandler = func(w http.ResponseWriter, r *http.Request) { called = true }

	for _, quantity := range []string{"0", "11", "-1"} {
		resp := postGenerate(t, `{"image_name": "a.png", "quantity": `+quantity+`, "metadata": {}}`)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "quantity %s", quantity)
	}
	assert.False(t, called, "validation failures must not reach the downstream service")
}

func TestGenerateEndpoint_MissingMetadata(t *testing.T) {
	resp := postGenerate(t, `{"image_name": "a.png", "quantity": 1}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGenerateEndpoint_Upstream422Passthrough(t *testing.T) {
	upstreamHandler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte("graph validation failed"))
	}

	resp := postGenerate(t, `{"image_name": "a.png", "quantity": 1, "metadata": {}}`)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var payload map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Contains(t, payload["detail"], "graph validation failed")
}

func TestMetadataEndpoint_Passthrough(t *testing.T) {
	upstreamHandler = func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/images/i/pic.png/metadata", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"prompt": "a castle", "core_metadata": {"positive_prompt": "a castle"}}`))
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/api/metadata/pic.png", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var meta map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&meta))
	assert.Equal(t, "a castle", meta["prompt"])
}

func TestMetadataEndpoint_UpstreamErrorPassthrough(t *testing.T) {
	upstreamHandler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("no such image"))
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/api/metadata/ghost.png", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var payload map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Contains(t, payload["detail"], "no such image")
}
