package services

import (
	"bytes"
	goContext "context"
	"fmt"
	"os"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"
)

// ArchiveService spools result payloads that could not be delivered to the
// collector into object storage, so they can be replayed later. The whole
// service is inert unless MINIO_ENDPOINT is configured.
type ArchiveService struct {
	context.DefaultService

	client *minio.Client

	endpoint  string
	accessKey string
	secretKey string
	bucket    string
	useSSL    bool
}

const ARCHIVE_SVC = "archive_svc"

func (svc ArchiveService) Id() string {
	return ARCHIVE_SVC
}

func (svc *ArchiveService) Configure(ctx *context.Context) error {
	svc.endpoint = os.Getenv("MINIO_ENDPOINT")
	svc.accessKey = os.Getenv("MINIO_ACCESS_KEY")
	svc.secretKey = os.Getenv("MINIO_SECRET_KEY")
	svc.bucket = os.Getenv("MINIO_BUCKET")
	if svc.bucket == "" {
		svc.bucket = "failed-submissions"
	}
	svc.useSSL = os.Getenv("MINIO_USE_SSL") == "true"

	return svc.DefaultService.Configure(ctx)
}

func (svc *ArchiveService) Start() error {
	if svc.endpoint == "" {
		log.Info().Msg("MINIO_ENDPOINT not set, failed submission archiving disabled")
		return nil
	}

	client, err := minio.New(svc.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(svc.accessKey, svc.secretKey, ""),
		Secure: svc.useSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create minio client: %w", err)
	}
	svc.client = client

	ctx := goContext.Background()
	exists, err := client.BucketExists(ctx, svc.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", svc.bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, svc.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", svc.bucket, err)
		}
	}

	log.Info().Str("bucket", svc.bucket).Msg("Failed submission archive ready")
	return nil
}

func (svc *ArchiveService) Enabled() bool {
	return svc.client != nil
}

// ArchiveFailedSubmission stores one undeliverable payload under
// {variant}/{exercise_id}.json. Best effort, failures are only logged by the
// caller.
func (svc *ArchiveService) ArchiveFailedSubmission(ctx goContext.Context, variant, exerciseID string, payload []byte) error {
	if svc.client == nil {
		return nil
	}

	objectName := fmt.Sprintf("%s/%s.json", variant, exerciseID)
	_, err := svc.client.PutObject(ctx, svc.bucket, objectName,
		bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{
			ContentType: "application/json",
			UserMetadata: map[string]string{
				"archived-at": time.Now().UTC().Format(time.RFC3339),
			},
		})
	if err != nil {
		return fmt.Errorf("failed to archive submission %s: %w", objectName, err)
	}
	return nil
}
