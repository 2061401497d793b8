package fetch

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/Azure/azure-storage-blob-go/azblob"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/components"
	"github.com/keket-go/keket/keketerr"
)

// FromAzureBlob marks an entity as having been fetched from Azure Blob
// Storage.
type FromAzureBlob struct {
	Container string
	Blob      string
}

// AzureBlob fetches az://container/blob paths, the azure-storage-blob-go
// analogue of fetch.S3 and fetch.GCS. Synchronous, same as its siblings.
type AzureBlob struct {
	account    string
	serviceURL azblob.ServiceURL
}

// NewAzureBlob builds a client against account using the shared-key
// credential cred.
func NewAzureBlob(account string, cred azblob.Credential) (*AzureBlob, error) {
	u, err := url.Parse(fmt.Sprintf("https://%s.blob.core.windows.net", account))
	if err != nil {
		return nil, keketerr.Wrapf(keketerr.ErrFetchFailure, "azure blob url: %v", err)
	}
	pipeline := azblob.NewPipeline(cred, azblob.PipelineOptions{})
	return &AzureBlob{account: account, serviceURL: azblob.NewServiceURL(*u, pipeline)}, nil
}

func (a *AzureBlob) LoadBytes(path assetpath.AssetPath) (Bundle, error) {
	container, blob, ok := bucketKey(path)
	if !ok {
		return nil, keketerr.Wrapf(keketerr.ErrFetchFailure, "azure blob fetch %q: expected container/blob path", path)
	}
	ctx := context.Background()
	blobURL := a.serviceURL.NewContainerURL(container).NewBlobURL(blob)
	resp, err := blobURL.Download(ctx, 0, azblob.CountToEnd, azblob.BlobAccessConditions{}, false, azblob.ClientProvidedKeyOptions{})
	if err != nil {
		return nil, keketerr.Wrapf(keketerr.ErrFetchFailure, "azure blob fetch az://%s/%s: %v", container, blob, err)
	}
	body := resp.Body(azblob.RetryReaderOptions{})
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, keketerr.Wrapf(keketerr.ErrFetchFailure, "azure blob read az://%s/%s: %v", container, blob, err)
	}
	return Bundle{
		components.BytesReadyToProcess{Bytes: data},
		FromAzureBlob{Container: container, Blob: blob},
	}, nil
}
