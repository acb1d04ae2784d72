package models

import (
	"encoding/json"
	"fmt"
)

// GenerationRequest asks for more images like an existing one. The metadata
// blob of the source image is supplied by the client and drives the job graph.
type GenerationRequest struct {
	ImageName        string    `json:"image_name"`
	AdditionalPrompt string    `json:"additional_prompt"`
	Quantity         int       `json:"quantity"`
	Seed             *int64    `json:"seed"`
	UseRandomSeed    bool      `json:"use_random_seed"`
	Metadata         *Metadata `json:"metadata"`
}

// UnmarshalJSON applies request defaults for absent fields
func (r *GenerationRequest) UnmarshalJSON(data []byte) error {
	type alias GenerationRequest
	aux := alias{
		Quantity:      1,
		UseRandomSeed: true,
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = GenerationRequest(aux)
	return nil
}

// Validate rejects malformed requests before any downstream work begins
func (r *GenerationRequest) Validate() error {
	if r.ImageName == "" {
		return fmt.Errorf("image_name is required")
	}
	if r.Quantity < 1 || r.Quantity > 10 {
		return fmt.Errorf("quantity must be between 1 and 10, got %d", r.Quantity)
	}
	if r.Metadata == nil {
		return fmt.Errorf("metadata is required")
	}
	return nil
}

// GenerationResponse reports the enqueued batch back to the client
type GenerationResponse struct {
	EstimatedTime int    `json:"estimated_time"`
	BatchID       string `json:"batch_id"`
	Message       string `json:"message"`
}
