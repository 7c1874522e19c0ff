package storage

import (
	"context"
	"crypto/sha256"
	"encoding/base32"
	"io"
	"strings"
)

type IPFSClient interface {
	PinFile(ctx context.Context, body io.Reader) (string, error)
	UnpinFile(ctx context.Context, cid string) error
}

// cidPrefix is CIDv1 + raw codec + sha2-256 multihash header
var cidPrefix = []byte{0x01, 0x55, 0x12, 0x20}

var cidEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// localIPFSClient derives content identifiers locally without a pinning service
type localIPFSClient struct{}

func NewIPFSClient() IPFSClient {
	return &localIPFSClient{}
}

func (c *localIPFSClient) PinFile(ctx context.Context, body io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, body); err != nil {
		return "", err
	}
	return ContentID(h.Sum(nil)), nil
}

func (c *localIPFSClient) UnpinFile(ctx context.Context, cid string) error {
	return nil
}

// ContentID encodes a sha2-256 digest as a base32 CIDv1 string
func ContentID(digest []byte) string {
	raw := append(append([]byte{}, cidPrefix...), digest...)
	return "b" + strings.ToLower(cidEncoding.EncodeToString(raw))
}
