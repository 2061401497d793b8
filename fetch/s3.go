package fetch

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/components"
	"github.com/keket-go/keket/keketerr"
)

// FromS3 marks an entity as having been fetched from Amazon S3.
type FromS3 struct {
	Bucket string
	Key    string
}

// S3 fetches s3://bucket/key paths via aws-sdk-go's
// s3.GetObjectWithContext. It is synchronous — the SDK call blocks the
// calling goroutine — so callers wrap it in fetch.Deferred for async
// semantics.
type S3 struct {
	svc *s3.S3
}

// NewS3 creates a client from the default credential chain (shared
// config file, environment, instance profile).
func NewS3() (*S3, error) {
	sess, err := session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, keketerr.Wrapf(keketerr.ErrFetchFailure, "s3 session: %v", err)
	}
	return &S3{svc: s3.New(sess)}, nil
}

// bucketKey splits an AssetPath's Path() of the form "bucket/key" into
// its two halves, failing if there is no '/' separator.
func bucketKey(path assetpath.AssetPath) (bucket, key string, ok bool) {
	parts := path.Parts()
	if len(parts) < 2 {
		return "", "", false
	}
	return parts[0], joinParts(parts[1:]), true
}

func joinParts(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += "/" + p
	}
	return out
}

func (s *S3) LoadBytes(path assetpath.AssetPath) (Bundle, error) {
	bucket, key, ok := bucketKey(path)
	if !ok {
		return nil, keketerr.Wrapf(keketerr.ErrFetchFailure, "s3 fetch %q: expected bucket/key path", path)
	}
	obj, err := s.svc.GetObjectWithContext(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, keketerr.Wrapf(keketerr.ErrFetchFailure, "s3 fetch s3://%s/%s: %v", bucket, key, err)
	}
	defer obj.Body.Close()
	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, keketerr.Wrapf(keketerr.ErrFetchFailure, "s3 read s3://%s/%s: %v", bucket, key, err)
	}
	return Bundle{
		components.BytesReadyToProcess{Bytes: data},
		FromS3{Bucket: bucket, Key: key},
	}, nil
}
