package fetch

import (
	"context"
	"io"

	"cloud.google.com/go/storage"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/components"
	"github.com/keket-go/keket/keketerr"
)

// FromGCS marks an entity as having been fetched from Google Cloud
// Storage.
type FromGCS struct {
	Bucket string
	Object string
}

// GCS fetches gs://bucket/object paths, the cloud.google.com/go/storage
// analogue of fetch.S3. Also synchronous: wrap in fetch.Deferred for
// async semantics.
type GCS struct {
	client *storage.Client
}

func NewGCS(ctx context.Context) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, keketerr.Wrapf(keketerr.ErrFetchFailure, "gcs client: %v", err)
	}
	return &GCS{client: client}, nil
}

func (g *GCS) LoadBytes(path assetpath.AssetPath) (Bundle, error) {
	bucket, object, ok := bucketKey(path)
	if !ok {
		return nil, keketerr.Wrapf(keketerr.ErrFetchFailure, "gcs fetch %q: expected bucket/object path", path)
	}
	ctx := context.Background()
	r, err := g.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, keketerr.Wrapf(keketerr.ErrFetchFailure, "gcs fetch gs://%s/%s: %v", bucket, object, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, keketerr.Wrapf(keketerr.ErrFetchFailure, "gcs read gs://%s/%s: %v", bucket, object, err)
	}
	return Bundle{
		components.BytesReadyToProcess{Bytes: data},
		FromGCS{Bucket: bucket, Object: object},
	}, nil
}
