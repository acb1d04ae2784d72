package models

// ModelRef identifies a model or VAE in the downstream service. It is opaque
// to this service and passed through as-is; the zero value marshals to {}.
type ModelRef struct {
	Key  string `json:"key,omitempty"`
	Hash string `json:"hash,omitempty"`
	Name string `json:"name,omitempty"`
	Base string `json:"base,omitempty"`
	Type string `json:"type,omitempty"`
}

// IsZero reports whether the reference carries no identifying information
func (m ModelRef) IsZero() bool {
	return m == ModelRef{}
}

// Metadata is the generation metadata recorded with a source image. Every
// key is optional; zero values fall back to documented defaults when the job
// graph is built. CoreMetadata holds the same fields as a nested fallback
// location, which is where InvokeAI stores them for gallery images.
type Metadata struct {
	Prompt              string    `json:"prompt"`
	PositivePrompt      string    `json:"positive_prompt"`
	NegativePrompt      string    `json:"negative_prompt"`
	NegativeStylePrompt string    `json:"negative_style_prompt"`
	Model               *ModelRef `json:"model"`
	VAE                 *ModelRef `json:"vae"`
	Scheduler           string    `json:"scheduler"`
	Steps               int       `json:"steps"`
	CFGScale            float64   `json:"cfg_scale"`
	Width               int       `json:"width"`
	Height              int       `json:"height"`
	BoardID             string    `json:"board_id"`
	CoreMetadata        *Metadata `json:"core_metadata"`
}
