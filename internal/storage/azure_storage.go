package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// BlobStorage retrieves images and persists model artifacts in Azure blob storage
type BlobStorage interface {
	GetImage(ctx context.Context, blobURL string) ([]byte, error)
	UploadArtifact(ctx context.Context, container, name string, data []byte) error
	DownloadArtifact(ctx context.Context, container, name string) ([]byte, error)
}

type azureStorage struct {
	client *azblob.Client
}

func NewAzureStorage(accountName string, accountKey string) (BlobStorage, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, err
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, err
	}

	return &azureStorage{client: client}, nil
}

func (s *azureStorage) GetImage(ctx context.Context, blobURL string) ([]byte, error) {
	parsedURL, err := url.Parse(blobURL)
	if err != nil {
		return nil, fmt.Errorf("invalid blob URL: %w", err)
	}

	containerName := parsedURL.Path[1:] // Remove leading slash
	blobName := parsedURL.Query().Get("blob")

	downloadResponse, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}

	retryReader := downloadResponse.Body
	defer retryReader.Close()

	return io.ReadAll(retryReader)
}

func (s *azureStorage) UploadArtifact(ctx context.Context, container, name string, data []byte) error {
	_, err := s.client.UploadBuffer(ctx, container, name, data, nil)
	if err != nil {
		return fmt.Errorf("artifact upload failed: %w", err)
	}
	return nil
}

func (s *azureStorage) DownloadArtifact(ctx context.Context, container, name string) ([]byte, error) {
	downloadResponse, err := s.client.DownloadStream(ctx, container, name, nil)
	if err != nil {
		return nil, fmt.Errorf("artifact download failed: %w", err)
	}
	body := downloadResponse.Body
	defer body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return nil, fmt.Errorf("artifact read failed: %w", err)
	}
	return buf.Bytes(), nil
}
