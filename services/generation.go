package svc

import (
	"context"
	"fmt"

	"github.com/veltalldev/photo-gallery/config"
	"github.com/veltalldev/photo-gallery/models"
	"github.com/veltalldev/photo-gallery/proxy"
	"github.com/veltalldev/photo-gallery/util"

	"github.com/sirupsen/logrus"
)

// GenerationService turns a generation request into a submitted batch
type GenerationService interface {
	// Generate builds the job graph for the request and enqueues it
	// downstream, returning the batch handle for the client.
	Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResponse, error)
}

type generationService struct{}

var GenSvc = &generationService{}

func GetGenSvc() GenerationService { return GenSvc }

func (s *generationService) Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResponse, error) {
	batch := BuildBatch(*req.Metadata, req)

	util.LogInfo("Submitting generation batch", logrus.Fields{
		"imageName": req.ImageName,
		"quantity":  req.Quantity,
		"graphId":   batch.Graph.ID,
	})

	resp, err := proxy.EnqueueBatch(ctx, models.EnqueueBatchRequest{
		Prepend:     false,
		Batch:       batch,
		Origin:      "photo_gallery",
		Destination: "gallery",
	})
	if err != nil {
		return nil, err
	}

	conf := config.GetConfig(nil)
	return &models.GenerationResponse{
		EstimatedTime: conf.InvokeAI.EstimatedSecondsPerImage * req.Quantity,
		BatchID:       resp.BatchID,
		Message:       fmt.Sprintf("Generation started for %d images", req.Quantity),
	}, nil
}
