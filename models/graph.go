package models

// Node type identifiers understood by the downstream queue service
const (
	NodeTypeModelLoader    = "sdxl_model_loader"
	NodeTypeCompelPrompt   = "sdxl_compel_prompt"
	NodeTypeCollect        = "collect"
	NodeTypeNoise          = "noise"
	NodeTypeDenoiseLatents = "denoise_latents"
	NodeTypeVAELoader      = "vae_loader"
	NodeTypeCoreMetadata   = "core_metadata"
	NodeTypeLatentsToImage = "l2i"
)

// Node is implemented by every node kind that can appear in a Graph
type Node interface {
	isNode()
}

// NodeBase carries the fields shared by all graph nodes. Embedding it
// flattens these fields into the node's JSON object.
type NodeBase struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	IsIntermediate bool   `json:"is_intermediate"`
	UseCache       bool   `json:"use_cache"`
}

func (NodeBase) isNode() {}

// ModelLoaderNode loads the main model checkpoint
type ModelLoaderNode struct {
	NodeBase
	Model ModelRef `json:"model"`
}

// CompelPromptNode encodes a prompt into conditioning
type CompelPromptNode struct {
	NodeBase
	Prompt string `json:"prompt"`
	Style  string `json:"style"`
}

// CollectNode gathers conditioning items into a collection
type CollectNode struct {
	NodeBase
}

// NoiseNode produces the initial noise tensor
type NoiseNode struct {
	NodeBase
	Seed   int64 `json:"seed"`
	Width  int   `json:"width"`
	Height int   `json:"height"`
	UseCPU bool  `json:"use_cpu"`
}

// DenoiseLatentsNode runs the denoising loop
type DenoiseLatentsNode struct {
	NodeBase
	CFGScale             float64 `json:"cfg_scale"`
	CFGRescaleMultiplier float64 `json:"cfg_rescale_multiplier"`
	Scheduler            string  `json:"scheduler"`
	Steps                int     `json:"steps"`
	DenoisingStart       float64 `json:"denoising_start"`
	DenoisingEnd         float64 `json:"denoising_end"`
}

// VAELoaderNode loads the VAE used to decode latents
type VAELoaderNode struct {
	NodeBase
	VAEModel ModelRef `json:"vae_model"`
}

// CoreMetadataNode records generation parameters alongside the output image
type CoreMetadataNode struct {
	NodeBase
	GenerationMode       string   `json:"generation_mode"`
	CFGScale             float64  `json:"cfg_scale"`
	CFGRescaleMultiplier float64  `json:"cfg_rescale_multiplier"`
	Width                int      `json:"width"`
	Height               int      `json:"height"`
	NegativePrompt       string   `json:"negative_prompt"`
	Model                ModelRef `json:"model"`
	Steps                int      `json:"steps"`
	RandDevice           string   `json:"rand_device"`
	Scheduler            string   `json:"scheduler"`
	VAE                  ModelRef `json:"vae"`
}

// BoardRef targets a gallery board for the decoded output
type BoardRef struct {
	BoardID string `json:"board_id"`
}

// LatentsToImageNode decodes latents into the final image
type LatentsToImageNode struct {
	NodeBase
	FP32  bool     `json:"fp32"`
	Board BoardRef `json:"board"`
}

// EdgeEndpoint names one side of an edge: a node and a field on it
type EdgeEndpoint struct {
	NodeID string `json:"node_id"`
	Field  string `json:"field"`
}

// Edge wires an output field of one node to an input field of another
type Edge struct {
	Source      EdgeEndpoint `json:"source"`
	Destination EdgeEndpoint `json:"destination"`
}

// Graph is one inference pipeline: a fixed topology of nodes and edges,
// rebuilt fresh for every request and submitted exactly once
type Graph struct {
	ID    string          `json:"id"`
	Nodes map[string]Node `json:"nodes"`
	Edges []Edge          `json:"edges"`
}

// BatchDatum overrides one node field with per-run values
type BatchDatum struct {
	NodePath  string `json:"node_path"`
	FieldName string `json:"field_name"`
	Items     []any  `json:"items"`
}

// Batch couples a graph with the number of runs and per-run overrides
type Batch struct {
	Graph Graph          `json:"graph"`
	Runs  int            `json:"runs"`
	Data  [][]BatchDatum `json:"data"`
}

// EnqueueBatchRequest is the downstream submission envelope
type EnqueueBatchRequest struct {
	Prepend     bool   `json:"prepend"`
	Batch       Batch  `json:"batch"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

// EnqueueBatchResponse is the subset of the downstream reply we care about
type EnqueueBatchResponse struct {
	BatchID string `json:"batch_id"`
}
