// Package proxy holds the HTTP clients for the downstream InvokeAI queue
// service. Every call uses a fresh client with a bounded timeout and is
// never retried; failures surface immediately to the caller.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/veltalldev/photo-gallery/config"
	"github.com/veltalldev/photo-gallery/models"
	"github.com/veltalldev/photo-gallery/util"

	"github.com/sirupsen/logrus"
)

const requestTimeout = 30 * time.Second

// UpstreamError reports a non-success response from the downstream service,
// preserving its status and body for diagnosis and status passthrough
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("downstream service returned %d: %s", e.StatusCode, e.Body)
}

func invokeAIBaseURL() string {
	return config.GetConfig(nil).InvokeAI.BaseURL
}

// doRequest performs one downstream call and returns the status and body.
// Transport-level failures (unreachable, timeout) come back as errors.
func doRequest(ctx context.Context, method, url string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, util.HandleError(fmt.Errorf("failed to create request: %w", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: requestTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, util.HandleError(fmt.Errorf("failed to reach InvokeAI: %w", err), logrus.Fields{"url": url})
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, util.HandleError(fmt.Errorf("failed to read InvokeAI response: %w", err))
	}
	return resp.StatusCode, respBody, nil
}

// FetchImageMetadata retrieves the stored generation metadata for an image
// and returns the downstream JSON body verbatim
func FetchImageMetadata(ctx context.Context, imageName string) ([]byte, error) {
	url := fmt.Sprintf("%s/api/v1/images/i/%s/metadata", invokeAIBaseURL(), imageName)

	util.LogDebug("Fetching image metadata from InvokeAI", logrus.Fields{
		"imageName": imageName,
	})

	status, body, err := doRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		util.LogWarning("InvokeAI metadata lookup failed", logrus.Fields{
			"statusCode": status,
			"imageName":  imageName,
		})
		return nil, &UpstreamError{StatusCode: status, Body: string(body)}
	}
	return body, nil
}

// EnqueueBatch submits a batch to the downstream queue and returns the
// batch identifier assigned by the service
func EnqueueBatch(ctx context.Context, batchReq models.EnqueueBatchRequest) (*models.EnqueueBatchResponse, error) {
	conf := config.GetConfig(nil)
	url := fmt.Sprintf("%s/api/v1/queue/%s/enqueue_batch", conf.InvokeAI.BaseURL, conf.InvokeAI.QueueID)

	payload, err := json.Marshal(batchReq)
	if err != nil {
		return nil, util.HandleError(fmt.Errorf("failed to marshal batch request: %w", err))
	}

	status, body, err := doRequest(ctx, http.MethodPost, url, payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		util.LogWarning("InvokeAI rejected batch", logrus.Fields{
			"statusCode": status,
			"graphId":    batchReq.Batch.Graph.ID,
		})
		return nil, &UpstreamError{StatusCode: status, Body: string(body)}
	}

	var enqueueResp models.EnqueueBatchResponse
	if err := json.Unmarshal(body, &enqueueResp); err != nil || enqueueResp.BatchID == "" {
		enqueueResp.BatchID = "unknown"
	}
	return &enqueueResp, nil
}
