package svc

import (
	"fmt"
	"math/rand"

	"github.com/veltalldev/photo-gallery/models"
	"github.com/veltalldev/photo-gallery/util"
)

// Defaults applied when the source metadata omits a value
const (
	DefaultDimension = 1024
	DefaultCFGScale  = 7.5
	DefaultSteps     = 20
	DefaultScheduler = "dpmpp_2m"

	nodeIDLength  = 8
	maxRandomSeed = 1000000
)

// fallbackVAE is used when the source metadata carries no VAE reference
var fallbackVAE = models.ModelRef{
	Key:  "6415a9ec-819b-49ca-9a0d-44ac478703a6",
	Hash: "blake3:9b7c3120af571e8d93fa82d50ef3b5f15727507d0edaae822424951937a008a3",
	Name: "sdxl-vae-fp16-fix",
	Base: "sdxl",
	Type: "vae",
}

// graphParams is the fully resolved parameter set for one graph build.
// Every field is concrete; defaulting happens in resolveParams.
type graphParams struct {
	Prompt              string
	NegativePrompt      string
	NegativeStylePrompt string
	Model               models.ModelRef
	VAE                 models.ModelRef
	Scheduler           string
	Steps               int
	CFGScale            float64
	Width               int
	Height              int
	BoardID             string
	Seeds               []int64
}

// ResolvePrompt picks the positive prompt out of the metadata, checking
// prompt, positive_prompt and core_metadata.positive_prompt in that order,
// then appends the additional prompt with a ", " separator when present.
func ResolvePrompt(meta models.Metadata, additionalPrompt string) string {
	prompt := meta.Prompt
	if prompt == "" {
		prompt = meta.PositivePrompt
	}
	if prompt == "" && meta.CoreMetadata != nil {
		prompt = meta.CoreMetadata.PositivePrompt
	}
	if additionalPrompt != "" {
		return fmt.Sprintf("%s, %s", prompt, additionalPrompt)
	}
	return prompt
}

// GenerateSeeds produces one seed per run. With useRandomSeed each seed is
// drawn independently from [1, 1000000]. Otherwise seeds increment from the
// base (the given seed, or 1 when nil): base, base+1, ... base+quantity-1.
// The incrementing policy is part of the public contract.
func GenerateSeeds(quantity int, useRandomSeed bool, seed *int64) []int64 {
	seeds := make([]int64, quantity)
	if useRandomSeed {
		for i := range seeds {
			seeds[i] = rand.Int63n(maxRandomSeed) + 1
		}
		return seeds
	}
	base := int64(1)
	if seed != nil {
		base = *seed
	}
	for i := range seeds {
		seeds[i] = base + int64(i)
	}
	return seeds
}

// resolveModel picks the model reference from the metadata, falling back to
// core_metadata, then to the zero reference
func resolveModel(meta models.Metadata) models.ModelRef {
	if meta.Model != nil && !meta.Model.IsZero() {
		return *meta.Model
	}
	if meta.CoreMetadata != nil && meta.CoreMetadata.Model != nil {
		return *meta.CoreMetadata.Model
	}
	return models.ModelRef{}
}

func resolveParams(meta models.Metadata, req models.GenerationRequest) graphParams {
	p := graphParams{
		Prompt:              ResolvePrompt(meta, req.AdditionalPrompt),
		NegativePrompt:      meta.NegativePrompt,
		NegativeStylePrompt: meta.NegativeStylePrompt,
		Model:               resolveModel(meta),
		VAE:                 fallbackVAE,
		Scheduler:           meta.Scheduler,
		Steps:               meta.Steps,
		CFGScale:            meta.CFGScale,
		Width:               meta.Width,
		Height:              meta.Height,
		BoardID:             meta.BoardID,
		Seeds:               GenerateSeeds(req.Quantity, req.UseRandomSeed, req.Seed),
	}
	if meta.VAE != nil {
		p.VAE = *meta.VAE
	}
	if p.Scheduler == "" {
		p.Scheduler = DefaultScheduler
	}
	if p.Steps == 0 {
		p.Steps = DefaultSteps
	}
	if p.CFGScale == 0 {
		p.CFGScale = DefaultCFGScale
	}
	if p.Width == 0 {
		p.Width = DefaultDimension
	}
	if p.Height == 0 {
		p.Height = DefaultDimension
	}
	return p
}

func nodeID(nodeType string) string {
	return fmt.Sprintf("%s:%s", nodeType, util.RandomID(nodeIDLength))
}

// BuildBatch constructs the job graph and per-run override data for one
// generation request. The topology is invariant: ten nodes, thirteen edges.
// Only leaf parameter values and generated identifiers vary between calls.
func BuildBatch(meta models.Metadata, req models.GenerationRequest) models.Batch {
	p := resolveParams(meta, req)

	modelLoader := nodeID(models.NodeTypeModelLoader)
	posCond := nodeID(models.NodeTypeCompelPrompt)
	posCondCollect := nodeID(models.NodeTypeCollect)
	negCond := nodeID(models.NodeTypeCompelPrompt)
	negCondCollect := nodeID(models.NodeTypeCollect)
	noise := nodeID(models.NodeTypeNoise)
	denoise := nodeID(models.NodeTypeDenoiseLatents)
	vae := nodeID(models.NodeTypeVAELoader)
	coreMetadata := nodeID(models.NodeTypeCoreMetadata)
	canvasOutput := nodeID(models.NodeTypeLatentsToImage)

	intermediate := func(id, nodeType string) models.NodeBase {
		return models.NodeBase{ID: id, Type: nodeType, IsIntermediate: true, UseCache: true}
	}

	graph := models.Graph{
		ID: fmt.Sprintf("sdxl_graph:%s", util.RandomID(nodeIDLength)),
		Nodes: map[string]models.Node{
			modelLoader: models.ModelLoaderNode{
				NodeBase: intermediate(modelLoader, models.NodeTypeModelLoader),
				Model:    p.Model,
			},
			posCond: models.CompelPromptNode{
				NodeBase: intermediate(posCond, models.NodeTypeCompelPrompt),
				Prompt:   p.Prompt,
				Style:    p.Prompt,
			},
			posCondCollect: models.CollectNode{
				NodeBase: intermediate(posCondCollect, models.NodeTypeCollect),
			},
			negCond: models.CompelPromptNode{
				NodeBase: intermediate(negCond, models.NodeTypeCompelPrompt),
				Prompt:   p.NegativePrompt,
				Style:    p.NegativeStylePrompt,
			},
			negCondCollect: models.CollectNode{
				NodeBase: intermediate(negCondCollect, models.NodeTypeCollect),
			},
			noise: models.NoiseNode{
				NodeBase: intermediate(noise, models.NodeTypeNoise),
				Seed:     p.Seeds[0],
				Width:    p.Width,
				Height:   p.Height,
				UseCPU:   true,
			},
			denoise: models.DenoiseLatentsNode{
				NodeBase:             intermediate(denoise, models.NodeTypeDenoiseLatents),
				CFGScale:             p.CFGScale,
				CFGRescaleMultiplier: 0,
				Scheduler:            p.Scheduler,
				Steps:                p.Steps,
				DenoisingStart:       0,
				DenoisingEnd:         1,
			},
			vae: models.VAELoaderNode{
				NodeBase: intermediate(vae, models.NodeTypeVAELoader),
				VAEModel: p.VAE,
			},
			coreMetadata: models.CoreMetadataNode{
				NodeBase:             intermediate(coreMetadata, models.NodeTypeCoreMetadata),
				GenerationMode:       "sdxl_txt2img",
				CFGScale:             p.CFGScale,
				CFGRescaleMultiplier: 0,
				Width:                p.Width,
				Height:               p.Height,
				NegativePrompt:       p.NegativePrompt,
				Model:                p.Model,
				Steps:                p.Steps,
				RandDevice:           "cpu",
				Scheduler:            p.Scheduler,
				VAE:                  p.VAE,
			},
			canvasOutput: models.LatentsToImageNode{
				// The decoded image is the one node that is kept and never cached
				NodeBase: models.NodeBase{ID: canvasOutput, Type: models.NodeTypeLatentsToImage},
				FP32:     false,
				Board:    models.BoardRef{BoardID: p.BoardID},
			},
		},
		Edges: []models.Edge{
			edge(modelLoader, "unet", denoise, "unet"),
			edge(modelLoader, "clip", posCond, "clip"),
			edge(modelLoader, "clip", negCond, "clip"),
			edge(modelLoader, "clip2", posCond, "clip2"),
			edge(modelLoader, "clip2", negCond, "clip2"),
			edge(posCond, "conditioning", posCondCollect, "item"),
			edge(negCond, "conditioning", negCondCollect, "item"),
			edge(posCondCollect, "collection", denoise, "positive_conditioning"),
			edge(negCondCollect, "collection", denoise, "negative_conditioning"),
			edge(noise, "noise", denoise, "noise"),
			edge(denoise, "latents", canvasOutput, "latents"),
			edge(vae, "vae", canvasOutput, "vae"),
			edge(coreMetadata, "metadata", canvasOutput, "metadata"),
		},
	}

	seedItems := make([]any, len(p.Seeds))
	for i, s := range p.Seeds {
		seedItems[i] = s
	}
	promptItems := []any{p.Prompt}

	return models.Batch{
		Graph: graph,
		Runs:  req.Quantity,
		Data: [][]models.BatchDatum{
			{
				{NodePath: noise, FieldName: "seed", Items: seedItems},
				{NodePath: coreMetadata, FieldName: "seed", Items: seedItems},
			},
			{
				{NodePath: posCond, FieldName: "prompt", Items: promptItems},
				{NodePath: coreMetadata, FieldName: "positive_prompt", Items: promptItems},
				{NodePath: posCond, FieldName: "style", Items: promptItems},
				{NodePath: coreMetadata, FieldName: "positive_style_prompt", Items: promptItems},
			},
		},
	}
}

func edge(srcNode, srcField, dstNode, dstField string) models.Edge {
	return models.Edge{
		Source:      models.EdgeEndpoint{NodeID: srcNode, Field: srcField},
		Destination: models.EdgeEndpoint{NodeID: dstNode, Field: dstField},
	}
}
