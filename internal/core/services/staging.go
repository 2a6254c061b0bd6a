package services

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"sagemaker-deployer/internal/core/domain"
	output "sagemaker-deployer/internal/core/ports/output"
)

// StagingService copies prepared datasets into the model's bucket prefix,
// one channel (train, validation, ...) per directory.
type StagingService struct {
	store output.ObjectStore
}

func NewStagingService(store output.ObjectStore) *StagingService {
	return &StagingService{store: store}
}

// StageObject names one source, either a remote object or a local file.
type StageObject struct {
	SourceBucket string
	SourceKey    string
	SourcePath   string
	Channel      string
	FileName     string
}

func (o StageObject) validate() error {
	remote := o.SourceBucket != "" || o.SourceKey != ""
	local := o.SourcePath != ""
	if remote == local || o.Channel == "" {
		return domain.ErrInvalidStageObject
	}
	if remote && (o.SourceBucket == "" || o.SourceKey == "") {
		return domain.ErrInvalidStageObject
	}
	return nil
}

func (o StageObject) fileName() string {
	switch {
	case o.FileName != "":
		return o.FileName
	case o.SourcePath != "":
		return filepath.Base(o.SourcePath)
	default:
		return path.Base(o.SourceKey)
	}
}

type StageRequest struct {
	ModelName string
	Bucket    string
	Objects   []StageObject
}

type StageResult struct {
	URIs     []string
	Channels map[string]string
}

// ObjectKey is where a channel file lives inside the bucket
func ObjectKey(modelName, channel, fileName string) string {
	return path.Join(modelName, channel, fileName)
}

// ChannelURI is the prefix a training job reads a channel from
func ChannelURI(bucket, modelName, channel string) string {
	return fmt.Sprintf("s3://%s/%s/%s/", bucket, modelName, channel)
}

func (s *StagingService) Stage(ctx context.Context, req StageRequest) (*StageResult, error) {
	if req.ModelName == "" {
		return nil, domain.ErrInvalidModelName
	}
	if req.Bucket == "" {
		return nil, domain.ErrInvalidBucket
	}
	for _, obj := range req.Objects {
		if err := obj.validate(); err != nil {
			return nil, err
		}
	}

	result := &StageResult{Channels: make(map[string]string)}
	for _, obj := range req.Objects {
		key := ObjectKey(req.ModelName, obj.Channel, obj.fileName())
		if err := s.stageOne(ctx, req.Bucket, key, obj); err != nil {
			return result, err
		}

		uri := fmt.Sprintf("s3://%s/%s", req.Bucket, key)
		result.URIs = append(result.URIs, uri)
		result.Channels[obj.Channel] = ChannelURI(req.Bucket, req.ModelName, obj.Channel)
		stagedObjectsTotal.WithLabelValues(req.ModelName, obj.Channel).Inc()
		log.WithFields(log.Fields{
			"model_name": req.ModelName,
			"channel":    obj.Channel,
			"uri":        uri,
		}).Info("staged dataset object")
	}
	return result, nil
}

func (s *StagingService) stageOne(ctx context.Context, bucket, key string, obj StageObject) error {
	if obj.SourcePath != "" {
		f, err := os.Open(obj.SourcePath)
		if err != nil {
			return fmt.Errorf("open %s: %w", obj.SourcePath, err)
		}
		defer f.Close()

		if err := s.store.Upload(ctx, bucket, key, f); err != nil {
			return fmt.Errorf("upload %s: %w", obj.SourcePath, err)
		}
		return nil
	}

	data, err := s.store.Download(ctx, obj.SourceBucket, obj.SourceKey)
	if err != nil {
		return fmt.Errorf("download s3://%s/%s: %w", obj.SourceBucket, obj.SourceKey, err)
	}
	if err := s.store.Put(ctx, bucket, key, data); err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}
