package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/abhibongale/presto/pkg/model"
)

// uploadAPI is the slice of the S3 upload manager the archiver uses.
type uploadAPI interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Archiver writes one JSON object per finalized summary to
// s3://<bucket>/<prefix><stage_execution_id>.json.
type S3Archiver struct {
	uploader uploadAPI
	bucket   string
	prefix   string
	logger   *slog.Logger
}

// NewS3Archiver resolves AWS credentials from the default chain and returns
// an archiver for the given bucket. Region overrides the environment when
// non-empty.
func NewS3Archiver(ctx context.Context, bucket, prefix, region string, logger *slog.Logger) (*S3Archiver, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &S3Archiver{
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   prefix,
		logger:   logger.With("component", "archive"),
	}, nil
}

func (a *S3Archiver) Archive(ctx context.Context, stageExecutionID string, summary *model.StageExecutionSummary) error {
	body, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary %s: %w", stageExecutionID, err)
	}

	key := path.Join(a.prefix, stageExecutionID+".json")
	_, err = a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(a.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String("application/json"),
		StorageClass: types.StorageClassStandardIa,
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}

	a.logger.Debug("archived summary", "bucket", a.bucket, "key", key, "bytes", len(body))
	return nil
}
