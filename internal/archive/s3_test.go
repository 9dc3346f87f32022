package archive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/abhibongale/presto/internal/logging"
	"github.com/abhibongale/presto/pkg/model"
)

type fakeUploader struct {
	bucket string
	key    string
	body   []byte
	err    error
}

func (f *fakeUploader) Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.bucket = *input.Bucket
	f.key = *input.Key
	var err error
	f.body, err = io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	return &manager.UploadOutput{}, nil
}

func testArchiver(up uploadAPI, prefix string) *S3Archiver {
	return &S3Archiver{
		uploader: up,
		bucket:   "stage-summaries",
		prefix:   prefix,
		logger:   logging.Nop(),
	}
}

func TestS3Archiver_Archive(t *testing.T) {
	fake := &fakeUploader{}
	a := testArchiver(fake, "prod")

	stats := model.ZeroStageExecutionStats(3)
	stats.TotalTasks = 2
	summary := model.NewStageExecutionSummary(model.StageFinished, stats, nil, nil)

	if err := a.Archive(context.Background(), "3.0", summary); err != nil {
		t.Fatalf("Archive() error: %v", err)
	}

	if fake.bucket != "stage-summaries" {
		t.Errorf("bucket = %q", fake.bucket)
	}
	if fake.key != "prod/3.0.json" {
		t.Errorf("key = %q, want prod/3.0.json", fake.key)
	}

	var got model.StageExecutionSummary
	if err := json.Unmarshal(fake.body, &got); err != nil {
		t.Fatalf("uploaded body is not valid JSON: %v", err)
	}
	if got.State != model.StageFinished || got.Stats.TotalTasks != 2 {
		t.Errorf("uploaded summary = state %s, %d tasks", got.State, got.Stats.TotalTasks)
	}
}

func TestS3Archiver_NoPrefix(t *testing.T) {
	fake := &fakeUploader{}
	a := testArchiver(fake, "")

	summary := model.NewStageExecutionSummary(model.StageFinished, model.ZeroStageExecutionStats(1), nil, nil)
	if err := a.Archive(context.Background(), "1.0", summary); err != nil {
		t.Fatal(err)
	}
	if fake.key != "1.0.json" {
		t.Errorf("key = %q, want 1.0.json", fake.key)
	}
}

func TestS3Archiver_UploadError(t *testing.T) {
	fake := &fakeUploader{err: errors.New("access denied")}
	a := testArchiver(fake, "prod")

	summary := model.NewStageExecutionSummary(model.StageFinished, model.ZeroStageExecutionStats(1), nil, nil)
	if err := a.Archive(context.Background(), "1.0", summary); err == nil {
		t.Error("expected upload error to propagate")
	}
}

func TestNop(t *testing.T) {
	if err := (Nop{}).Archive(context.Background(), "1.0", nil); err != nil {
		t.Errorf("Nop.Archive() error: %v", err)
	}
}
