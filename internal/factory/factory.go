package factory

import (
	"fmt"
	"time"

	"go-trick-analyzer/internal/storage"
)

// StorageType represents different types of storage backends
type StorageType string

const (
	// HTTPStorage fetches remote images over plain HTTP(S)
	HTTPStorage StorageType = "http"
	// AzureStorage fetches remote images from Azure blob storage
	AzureStorage StorageType = "azure"
)

// StorageTypes lists every supported storage type
var StorageTypes = []string{string(HTTPStorage), string(AzureStorage)}

// StorageOptions carries what the storage implementations need
type StorageOptions struct {
	FetchTimeout time.Duration
	MaxImageSize int64
	AzureAccount string
	AzureKey     string
}

// StorageFactory creates storage implementations
type StorageFactory interface {
	CreateStorage(storageType StorageType) (storage.ImageFetcher, error)
}

// storageFactory implements StorageFactory
type storageFactory struct {
	opts StorageOptions
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(opts StorageOptions) StorageFactory {
	return &storageFactory{opts: opts}
}

// CreateStorage creates a storage implementation based on the specified type
func (f *storageFactory) CreateStorage(storageType StorageType) (storage.ImageFetcher, error) {
	httpFetcher := storage.NewHTTPImageFetcher(f.opts.FetchTimeout, f.opts.MaxImageSize)

	switch storageType {
	case HTTPStorage, "":
		return httpFetcher, nil
	case AzureStorage:
		if f.opts.AzureAccount == "" || f.opts.AzureKey == "" {
			return nil, fmt.Errorf("azure storage requires an account name and key")
		}
		return storage.NewAzureStorage(f.opts.AzureAccount, f.opts.AzureKey, httpFetcher, f.opts.MaxImageSize)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}
