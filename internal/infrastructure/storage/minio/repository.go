package minio

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/CombiRx-Discovery/pkg/errors"
	"github.com/turtacn/CombiRx-Discovery/pkg/types/common"
	"github.com/turtacn/CombiRx-Discovery/pkg/types/discovery"
)

// ResultKey is the object key layout for a run's result document.
func ResultKey(runID common.ID) string {
	return "runs/" + runID.String() + "/result.json"
}

// RequestKey is the object key layout for a run's input datasets.  Async
// submissions park the full request here until a worker picks the run up.
func RequestKey(runID common.ID) string {
	return "runs/" + runID.String() + "/request.json"
}

// ArtifactRepository persists full run documents as JSON objects.
type ArtifactRepository interface {
	SaveRunResult(ctx context.Context, result *discovery.RunResult) (string, error)
	LoadRunResult(ctx context.Context, runID common.ID) (*discovery.RunResult, error)
	SaveRunRequest(ctx context.Context, runID common.ID, req *discovery.RunRequest) (string, error)
	LoadRunRequest(ctx context.Context, runID common.ID) (*discovery.RunRequest, error)
	DeleteRunArtifacts(ctx context.Context, runID common.ID) error
	ResultExists(ctx context.Context, runID common.ID) (bool, error)
	PresignResultURL(ctx context.Context, runID common.ID) (string, error)
}

type minioArtifactRepo struct {
	client *MinIOClient
	log    logging.Logger
}

func NewArtifactRepository(client *MinIOClient, log logging.Logger) ArtifactRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &minioArtifactRepo{client: client, log: log}
}

func (r *minioArtifactRepo) SaveRunResult(ctx context.Context, result *discovery.RunResult) (string, error) {
	if result == nil || result.RunID.IsZero() {
		return "", appErrors.New(appErrors.ErrCodeArtifactFailed, "result has no run id")
	}
	data, err := json.Marshal(result)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to encode run result")
	}

	key := ResultKey(result.RunID)
	started := time.Now()
	_, err = r.client.API().PutObject(ctx, r.client.Bucket(), key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrCodeArtifactFailed, "failed to store run result")
	}

	r.log.Info("stored run result artifact",
		logging.String("key", key),
		logging.Int("bytes", len(data)),
		logging.Duration("elapsed", time.Since(started)))
	return key, nil
}

func (r *minioArtifactRepo) LoadRunResult(ctx context.Context, runID common.ID) (*discovery.RunResult, error) {
	key := ResultKey(runID)
	obj, err := r.client.API().GetObject(ctx, r.client.Bucket(), key, minio.GetObjectOptions{})
	if err != nil {
		return nil, wrapObjectErr(err, key)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, wrapObjectErr(err, key)
	}

	var result discovery.RunResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to decode run result")
	}
	return &result, nil
}

func (r *minioArtifactRepo) SaveRunRequest(ctx context.Context, runID common.ID, req *discovery.RunRequest) (string, error) {
	if req == nil || runID.IsZero() {
		return "", appErrors.New(appErrors.ErrCodeArtifactFailed, "request has no run id")
	}
	data, err := json.Marshal(req)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to encode run request")
	}

	key := RequestKey(runID)
	_, err = r.client.API().PutObject(ctx, r.client.Bucket(), key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrCodeArtifactFailed, "failed to store run request")
	}

	r.log.Debug("stored run request artifact",
		logging.String("key", key),
		logging.Int("bytes", len(data)))
	return key, nil
}

func (r *minioArtifactRepo) LoadRunRequest(ctx context.Context, runID common.ID) (*discovery.RunRequest, error) {
	key := RequestKey(runID)
	obj, err := r.client.API().GetObject(ctx, r.client.Bucket(), key, minio.GetObjectOptions{})
	if err != nil {
		return nil, wrapObjectErr(err, key)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, wrapObjectErr(err, key)
	}

	var req discovery.RunRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to decode run request")
	}
	return &req, nil
}

func (r *minioArtifactRepo) DeleteRunArtifacts(ctx context.Context, runID common.ID) error {
	prefix := "runs/" + runID.String() + "/"
	for obj := range r.client.API().ListObjects(ctx, r.client.Bucket(), minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return appErrors.Wrap(obj.Err, appErrors.ErrCodeArtifactFailed, "failed to list run artifacts")
		}
		if err := r.client.API().RemoveObject(ctx, r.client.Bucket(), obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return appErrors.Wrap(err, appErrors.ErrCodeArtifactFailed, "failed to delete "+obj.Key)
		}
	}
	r.log.Info("deleted run artifacts", logging.String("prefix", prefix))
	return nil
}

func (r *minioArtifactRepo) ResultExists(ctx context.Context, runID common.ID) (bool, error) {
	key := ResultKey(runID)
	_, err := r.client.API().StatObject(ctx, r.client.Bucket(), key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, appErrors.Wrap(err, appErrors.ErrCodeArtifactFailed, "failed to stat "+key)
	}
	return true, nil
}

func (r *minioArtifactRepo) PresignResultURL(ctx context.Context, runID common.ID) (string, error) {
	key := ResultKey(runID)
	u, err := r.client.API().PresignedGetObject(ctx, r.client.Bucket(), key, r.client.PresignExpiry(), nil)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrCodeArtifactFailed, "failed to presign "+key)
	}
	return u.String(), nil
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == 404
}

func wrapObjectErr(err error, key string) error {
	if isNotFound(err) {
		return appErrors.Wrap(err, appErrors.ErrCodeNotFound, "run result not found: "+key)
	}
	return appErrors.Wrap(err, appErrors.ErrCodeArtifactFailed, "failed to read "+key)
}

//Personal.AI order the ending
