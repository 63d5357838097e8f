// Package asset resolves and stores the binary files block props
// reference. The gateway reads from a fixed package root; uploads land
// in a separate writable root served under /uploads.
package asset

import (
	stderrors "errors"
	"io"
	"os"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// ErrAssetNotFound is returned when the resolved file is missing.
	ErrAssetNotFound = stderrors.New("asset: asset not found")

	// ErrPathTraversalRejected is returned when a relative asset path
	// would resolve outside the gateway's root.
	ErrPathTraversalRejected = stderrors.New("asset: path traversal rejected")

	// ErrUnsupportedAsset is returned for uploads that are not images.
	ErrUnsupportedAsset = stderrors.New("asset: unsupported asset type")
)

// Gateway streams assets from a package root and accepts uploads into
// an uploads root. Both roots are independent filesystems so a
// read-only package root stays read-only.
type Gateway struct {
	packages billy.Filesystem
	uploads  billy.Filesystem
	logger   *zap.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger attaches a logger. Defaults to zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(g *Gateway) { g.logger = logger }
}

// NewGateway returns a gateway over the given roots.
func NewGateway(packages, uploads billy.Filesystem, opts ...Option) *Gateway {
	g := &Gateway{
		packages: packages,
		uploads:  uploads,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewGatewayAt returns a gateway rooted at OS directories.
func NewGatewayAt(packagesRoot, uploadsRoot string, opts ...Option) *Gateway {
	return NewGateway(osfs.New(packagesRoot), osfs.New(uploadsRoot), opts...)
}

// Resolve joins rel onto the package root and opens the file for
// streaming. The returned size feeds the Content-Length header. The
// caller owns the reader and must close it.
func (g *Gateway) Resolve(rel string) (io.ReadCloser, int64, error) {
	cleaned, err := cleanRel(rel)
	if err != nil {
		return nil, 0, err
	}

	// Uploaded assets are referenced by their public /uploads path.
	fsys := g.packages
	if rest, ok := strings.CutPrefix(cleaned, "uploads/"); ok {
		fsys, cleaned = g.uploads, rest
	}

	info, err := fsys.Stat(cleaned)
	if err != nil || info.IsDir() {
		return nil, 0, errors.Wrap(ErrAssetNotFound, rel)
	}

	f, err := fsys.Open(cleaned)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, errors.Wrap(ErrAssetNotFound, rel)
		}
		return nil, 0, errors.Wrapf(err, "failed to open asset %q", rel)
	}
	return f, info.Size(), nil
}

// cleanRel normalizes a relative asset path with the same traversal
// rule the document store applies to logical paths.
func cleanRel(rel string) (string, error) {
	rel = strings.ReplaceAll(rel, "\\", "/")
	rel = strings.TrimPrefix(rel, "./")
	if rel == "" {
		return "", errors.Wrap(ErrAssetNotFound, "empty asset path")
	}
	if path.IsAbs(rel) {
		return "", ErrPathTraversalRejected
	}

	cleaned := path.Clean(rel)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrPathTraversalRejected
	}
	return cleaned, nil
}
