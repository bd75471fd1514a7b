package cloudinary

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultFolder = "kasku/proofs"

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Store keeps payment proof images on Cloudinary. Proofs are immutable once
// stored: every upload gets a fresh public id and overwriting is disabled, so
// a re-uploaded proof never destroys the one it replaces.
type Store struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
}

// New constructs a proof store backed by Cloudinary.
func New(cfg Config, logger zerolog.Logger) (*Store, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	folder := strings.Trim(cfg.Folder, "/")
	if folder == "" {
		folder = defaultFolder
	}

	return &Store{
		client: cld,
		folder: folder,
		logger: logger.With().Str("component", "proof_store").Logger(),
	}, nil
}

// Upload stores the proof and returns its secure URL.
func (s *Store) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	params := uploader.UploadParams{
		Folder:       s.folder,
		PublicID:     proofPublicID(name),
		ResourceType: "auto",
		Overwrite:    api.Bool(false),
		Tags:         api.CldAPIArray{"payment-proof"},
	}

	result, err := s.client.Upload.Upload(ctx, reader, params)
	if err != nil {
		return "", fmt.Errorf("failed to store proof: %w", err)
	}

	s.logger.Info().
		Str("public_id", result.PublicID).
		Int("bytes", result.Bytes).
		Msg("payment proof stored")

	return result.SecureURL, nil
}

// proofPublicID slugs the payment-derived file name and appends a random
// suffix so uploads for the same payment never collide.
func proofPublicID(name string) string {
	slug := strings.TrimSuffix(name, filepath.Ext(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, slug)
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "proof"
	}

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return slug + "-" + suffix
}
