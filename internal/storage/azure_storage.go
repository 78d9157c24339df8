package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// azureStorage fetches images the analysis service stored in Azure Blob
// Storage. URLs on any other host fall through to the HTTP fetcher.
type azureStorage struct {
	client   *azblob.Client
	host     string
	fallback ImageFetcher
	maxSize  int64
}

// NewAzureStorage creates an ImageFetcher backed by a shared-key blob client
func NewAzureStorage(accountName, accountKey string, fallback ImageFetcher, maxSize int64) (ImageFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid azure credentials: %w", err)
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", accountName)
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	return &azureStorage{
		client:   client,
		host:     fmt.Sprintf("%s.blob.core.windows.net", accountName),
		fallback: fallback,
		maxSize:  maxSize,
	}, nil
}

func (s *azureStorage) FetchImage(ctx context.Context, blobURL string) ([]byte, error) {
	parsedURL, err := url.Parse(blobURL)
	if err != nil {
		return nil, fmt.Errorf("invalid blob URL: %w", err)
	}
	if !strings.EqualFold(parsedURL.Host, s.host) {
		return s.fallback.FetchImage(ctx, blobURL)
	}

	parts, err := azblob.ParseURL(blobURL)
	if err != nil {
		return nil, fmt.Errorf("invalid blob URL: %w", err)
	}
	if parts.ContainerName == "" || parts.BlobName == "" {
		return nil, fmt.Errorf("blob URL must name a container and a blob: %s", blobURL)
	}

	downloadResponse, err := s.client.DownloadStream(ctx, parts.ContainerName, parts.BlobName, nil)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}

	retryReader := downloadResponse.Body
	defer retryReader.Close()

	data, err := io.ReadAll(io.LimitReader(retryReader, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, fmt.Errorf("image exceeds %d bytes", s.maxSize)
	}
	return data, nil
}
