package libs

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"farmconnect/models"
	"farmconnect/utils"
)

// ImageStore persists an uploaded image and returns its public URL.
type ImageStore interface {
	Save(ctx context.Context, r io.Reader, filename, folder string) (string, error)
}

// DiskStore serves uploads from the local upload directory.
type DiskStore struct {
	Storage *utils.LocalStorage
}

func (s DiskStore) Save(_ context.Context, r io.Reader, filename, folder string) (string, error) {
	return s.Storage.Save(r, filename, folder)
}

// SaveUploadedImage checks the type and size of header and hands its content
// to store.
func SaveUploadedImage(ctx context.Context, store ImageStore, header *multipart.FileHeader, maxSize int64, folder string) (string, error) {
	if err := utils.ValidateImage(header.Filename, header.Size, maxSize); err != nil {
		return "", models.Validationf("%s", err.Error())
	}

	f, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	url, err := store.Save(ctx, f, header.Filename, folder)
	if err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return url, nil
}
