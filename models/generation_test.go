package models

import (
	"encoding/json"
	"testing"
)

func TestGenerationRequest_UnmarshalDefaults(t *testing.T) {
	var req GenerationRequest
	body := `{"image_name": "a.png", "metadata": {}}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("Failed to unmarshal request: %v", err)
	}
	if req.Quantity != 1 {
		t.Errorf("Expected default quantity 1, got %d", req.Quantity)
	}
	if !req.UseRandomSeed {
		t.Error("Expected use_random_seed to default to true")
	}
	if req.AdditionalPrompt != "" {
		t.Errorf("Expected empty additional prompt, got %q", req.AdditionalPrompt)
	}
	if req.Seed != nil {
		t.Errorf("Expected nil seed, got %v", *req.Seed)
	}
}

func TestGenerationRequest_UnmarshalExplicitValues(t *testing.T) {
	var req GenerationRequest
	body := `{"image_name": "a.png", "quantity": 4, "seed": 99, "use_random_seed": false, "metadata": {}}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("Failed to unmarshal request: %v", err)
	}
	if req.Quantity != 4 {
		t.Errorf("Expected quantity 4, got %d", req.Quantity)
	}
	if req.UseRandomSeed {
		t.Error("Expected use_random_seed false")
	}
	if req.Seed == nil || *req.Seed != 99 {
		t.Errorf("Expected seed 99, got %v", req.Seed)
	}
}

func TestGenerationRequest_Validate(t *testing.T) {
	meta := &Metadata{}
	cases := []struct {
		name    string
		req     GenerationRequest
		wantErr bool
	}{
		{"valid", GenerationRequest{ImageName: "a.png", Quantity: 1, Metadata: meta}, false},
		{"max quantity", GenerationRequest{ImageName: "a.png", Quantity: 10, Metadata: meta}, false},
		{"quantity too low", GenerationRequest{ImageName: "a.png", Quantity: 0, Metadata: meta}, true},
		{"quantity too high", GenerationRequest{ImageName: "a.png", Quantity: 11, Metadata: meta}, true},
		{"missing image name", GenerationRequest{Quantity: 1, Metadata: meta}, true},
		{"missing metadata", GenerationRequest{ImageName: "a.png", Quantity: 1}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.wantErr && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestMetadata_MistypedValueFailsDecode(t *testing.T) {
	var meta Metadata
	if err := json.Unmarshal([]byte(`{"steps": "twenty"}`), &meta); err == nil {
		t.Error("Expected decode error for mistyped steps value")
	}
	if err := json.Unmarshal([]byte(`{"model": "not-an-object"}`), &meta); err == nil {
		t.Error("Expected decode error for mistyped model value")
	}
}

func TestModelRef_ZeroMarshalsEmpty(t *testing.T) {
	payload, err := json.Marshal(ModelRef{})
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	if string(payload) != "{}" {
		t.Errorf("Expected zero ModelRef to marshal as {}, got %s", payload)
	}
}
