package utils

import (
	"errors"
	"fmt"

	"visapoint/config"

	"github.com/cloudinary/cloudinary-go/v2"
)

// ErrCloudinaryNotConfigured is returned when neither CLOUDINARY_URL nor the
// split credentials are present.
var ErrCloudinaryNotConfigured = errors.New("cloudinary credentials not configured")

// NewCloudinary builds the upload client for applicant documents. URLs it
// hands back are always https.
func NewCloudinary(cfg config.Config) (*cloudinary.Cloudinary, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)
	switch {
	case cfg.CloudinaryURL != "":
		cld, err = cloudinary.NewFromURL(cfg.CloudinaryURL)
	case cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "":
		cld, err = cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	default:
		return nil, ErrCloudinaryNotConfigured
	}
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	return cld, nil
}
