package libs

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CloudinaryStore uploads listing images to Cloudinary.
type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStore prefers the separate credentials and falls back to
// CLOUDINARY_URL.
func NewCloudinaryStore(cloudName, apiKey, apiSecret, cloudinaryURL string) (*CloudinaryStore, error) {
	if cloudName != "" && apiKey != "" && apiSecret != "" {
		cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
		if err != nil {
			return nil, fmt.Errorf("cloudinary init from params: %w", err)
		}
		return &CloudinaryStore{cld: cld}, nil
	}

	if cloudinaryURL == "" {
		return nil, fmt.Errorf("cloudinary environment variables not set")
	}
	log.Debug().Str("url", maskURL(cloudinaryURL)).Msg("Using CLOUDINARY_URL")

	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init from url: %w", err)
	}
	return &CloudinaryStore{cld: cld}, nil
}

func (s *CloudinaryStore) Save(ctx context.Context, r io.Reader, filename, folder string) (string, error) {
	publicID := strings.TrimSuffix(uuid.NewString()+"_"+path.Base(filename), path.Ext(filename))

	resp, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID: publicID,
		Folder:   folder,
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("cloudinary response is nil")
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}

	log.Info().Str("public_id", resp.PublicID).Msg("Image uploaded to Cloudinary")

	if resp.SecureURL != "" {
		return resp.SecureURL, nil
	}
	if resp.URL != "" {
		return resp.URL, nil
	}
	return "", fmt.Errorf("both SecureURL and URL are empty")
}

func (s *CloudinaryStore) Delete(ctx context.Context, publicID string) error {
	result, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("delete from cloudinary: %w", err)
	}
	if result.Result != "ok" {
		return fmt.Errorf("cloudinary deletion failed: %s", result.Result)
	}
	return nil
}

func maskURL(url string) string {
	if len(url) < 20 {
		return "***"
	}
	return url[:10] + "..." + url[len(url)-10:]
}
