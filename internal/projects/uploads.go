package projects

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"cairn/research-portal/portal-backend/pkg/chain"
	"cairn/research-portal/portal-backend/pkg/storage"
)

// MaxUploadSize bounds a single output file
const MaxUploadSize = 32 << 20

// Uploads stores output files in object storage and derives their content ids
type Uploads struct {
	service *Service
	objects storage.S3Client
	ipfs    storage.IPFSClient
	bucket  string
	linkTTL time.Duration
	logger  *zap.Logger
}

func NewUploads(service *Service, objects storage.S3Client, ipfs storage.IPFSClient, bucket string, logger *zap.Logger) *Uploads {
	return &Uploads{
		service: service,
		objects: objects,
		ipfs:    ipfs,
		bucket:  bucket,
		linkTTL: 7 * 24 * time.Hour,
		logger:  logger,
	}
}

// Upload stores a file for the caller's project and returns the data bag to
// submit with AddOutputs
func (u *Uploads) Upload(ctx context.Context, caller, projectID, fileName string, body io.Reader) (*OutputData, error) {
	fileName = path.Base(strings.TrimSpace(fileName))
	if fileName == "" || fileName == "." || fileName == "/" {
		return nil, fmt.Errorf("%w: file name is required", ErrValidation)
	}

	p, err := u.service.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !chain.SameAddress(p.OwnerID, caller) {
		return nil, fmt.Errorf("%w: only the owner uploads outputs", ErrForbidden)
	}
	if p.Status == StatusArchived {
		return nil, fmt.Errorf("%w: project is archived", ErrClosed)
	}

	data, err := io.ReadAll(io.LimitReader(body, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > MaxUploadSize {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrValidation, MaxUploadSize)
	}

	cid, err := u.ipfs.PinFile(ctx, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to pin file: %w", err)
	}

	key := path.Join("projects", p.ID, cid, fileName)
	if err := u.objects.Upload(ctx, u.bucket, key, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	url, err := u.objects.GetPresignedURL(ctx, u.bucket, key, u.linkTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to link upload: %w", err)
	}

	u.logger.Info("Output file stored",
		zap.String("project_id", p.ID),
		zap.String("key", key),
		zap.Int("size", len(data)))

	return &OutputData{URL: url, IPFSCID: cid, FileName: fileName}, nil
}

// Open streams a stored object back. Only keys inside the uploads bucket
// are served.
func (u *Uploads) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	if bucket != u.bucket {
		return nil, storage.ErrObjectNotFound
	}
	return u.objects.Download(ctx, bucket, strings.TrimPrefix(key, "/"))
}
