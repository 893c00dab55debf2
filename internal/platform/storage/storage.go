// Package storage turns normalized document keys into URLs a browser can open.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
)

// Resolver builds a download URL for an object key.
type Resolver interface {
	URL(ctx context.Context, key string) (string, error)
}

type Config struct {
	Backend          string
	PublicBaseURL    string
	Bucket           string
	ConnectionString string
	URLTTL           time.Duration
}

// New creates the resolver selected by cfg.Backend.
func New(cfg Config, logger *slog.Logger) (Resolver, error) {
	switch cfg.Backend {
	case "", "public":
		return NewPublic(cfg.PublicBaseURL, cfg.Bucket)
	case "azure":
		return NewAzure(cfg, logger)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedBackend, cfg.Backend)
}

type public struct {
	base *url.URL
}

// NewPublic resolves keys under base/bucket without signing.
func NewPublic(baseURL, bucket string) (Resolver, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse storage base url: %w", err)
	}
	if bucket = strings.Trim(bucket, "/"); bucket != "" {
		base = base.JoinPath(bucket)
	}
	return &public{base: base}, nil
}

func (p *public) URL(_ context.Context, key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	return p.base.JoinPath(strings.Split(key, "/")...).String(), nil
}

type azure struct {
	client    *azblob.Client
	container string
	ttl       time.Duration
	logger    *slog.Logger
}

// NewAzure issues short-lived read-only SAS URLs for blobs in cfg.Bucket. The
// connection string must carry an account key for signing.
func NewAzure(cfg Config, logger *slog.Logger) (Resolver, error) {
	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	ttl := cfg.URLTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &azure{
		client:    client,
		container: cfg.Bucket,
		ttl:       ttl,
		logger:    logger.With("system", "storage"),
	}, nil
}

func (a *azure) URL(_ context.Context, key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}

	blobClient := a.client.
		ServiceClient().
		NewContainerClient(a.container).
		NewBlobClient(key)

	signed, err := blobClient.GetSASURL(sas.BlobPermissions{Read: true}, time.Now().Add(a.ttl), nil)
	if err != nil {
		a.logger.Warn("sas url failed", "key", key, "error", err)
		return "", fmt.Errorf("sign blob %s: %w", key, err)
	}
	return signed, nil
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}
