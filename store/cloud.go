package store

import (
	"bytes"
	"context"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/keketerr"
)

// bucketKey splits an AssetPath's Path() of the form "bucket/key" into
// its two halves, mirroring fetch.bucketKey for the write direction.
func bucketKey(path assetpath.AssetPath) (bucket, key string, ok bool) {
	parts := path.Parts()
	if len(parts) < 2 {
		return "", "", false
	}
	key = parts[1]
	for _, p := range parts[2:] {
		key += "/" + p
	}
	return parts[0], key, true
}

// S3 stores s3://bucket/key paths via aws-sdk-go's s3.PutObjectWithContext,
// the write-direction mirror of fetch.S3.
type S3 struct {
	svc *s3.S3
}

func NewS3() (*S3, error) {
	sess, err := session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, keketerr.Wrapf(keketerr.ErrStoreFailure, "s3 session: %v", err)
	}
	return &S3{svc: s3.New(sess)}, nil
}

func (s *S3) SaveBytes(path assetpath.AssetPath, data []byte) (Bundle, error) {
	bucket, key, ok := bucketKey(path)
	if !ok {
		return nil, keketerr.Wrapf(keketerr.ErrStoreFailure, "s3 store %q: expected bucket/key path", path)
	}
	_, err := s.svc.PutObjectWithContext(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return nil, keketerr.Wrapf(keketerr.ErrStoreFailure, "s3 store s3://%s/%s: %v", bucket, key, err)
	}
	return Bundle{Into{FullPath: "s3://" + bucket + "/" + key}}, nil
}

// GCS stores gs://bucket/object paths, the cloud.google.com/go/storage
// analogue of store.S3.
type GCS struct {
	client *storage.Client
}

func NewGCS(ctx context.Context) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, keketerr.Wrapf(keketerr.ErrStoreFailure, "gcs client: %v", err)
	}
	return &GCS{client: client}, nil
}

func (g *GCS) SaveBytes(path assetpath.AssetPath, data []byte) (Bundle, error) {
	bucket, object, ok := bucketKey(path)
	if !ok {
		return nil, keketerr.Wrapf(keketerr.ErrStoreFailure, "gcs store %q: expected bucket/object path", path)
	}
	ctx := context.Background()
	w := g.client.Bucket(bucket).Object(object).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, keketerr.Wrapf(keketerr.ErrStoreFailure, "gcs store gs://%s/%s: %v", bucket, object, err)
	}
	if err := w.Close(); err != nil {
		return nil, keketerr.Wrapf(keketerr.ErrStoreFailure, "gcs store gs://%s/%s: %v", bucket, object, err)
	}
	return Bundle{Into{FullPath: "gs://" + bucket + "/" + object}}, nil
}
