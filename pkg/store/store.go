// Package store persists content trees keyed by a logical document
// path and a declared format. Two backends implement the same Store
// contract: DirStore keeps one file per document under a root
// filesystem, BoltStore keeps the same bytes in a bbolt bucket.
//
// The store does no cross-document coordination: each (path, format)
// pair is an independent resource and concurrent saves to the same
// pair are last-write-wins.
package store

import (
	stderrors "errors"
	"path"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/pagemason/pagemason/pkg/document"
)

var (
	// ErrPathTraversalRejected is returned when a logical path would
	// resolve outside the store's root, via absolute paths or ".."
	// segments.
	ErrPathTraversalRejected = stderrors.New("store: path traversal rejected")

	// ErrUnsupportedFormat is returned for formats other than html and
	// json.
	ErrUnsupportedFormat = stderrors.New("store: unsupported format")
)

// CatalogSource yields the catalog loaded trees bind to. The theme
// registry implements it, so a catalog hot-swap reaches the store
// without rebuilding it; StaticCatalog serves fixed-catalog callers.
type CatalogSource interface {
	Catalog() *document.Catalog
}

type staticCatalog struct {
	catalog *document.Catalog
}

func (s staticCatalog) Catalog() *document.Catalog { return s.catalog }

// StaticCatalog wraps a fixed catalog as a CatalogSource.
func StaticCatalog(catalog *document.Catalog) CatalogSource {
	return staticCatalog{catalog: catalog}
}

// Store loads and saves content trees. Load of a nonexistent document
// bootstraps a tree with a single default root block instead of
// failing, so the first open of a new path needs no special casing.
type Store interface {
	Load(docPath string, format document.Format) (*document.Tree, error)
	Save(docPath string, format document.Format, tree *document.Tree) error
	List(prefix string) ([]string, error)
}

// Option configures a store backend.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger attaches a logger. Defaults to zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// cleanPath normalizes a logical document path and rejects anything
// that would escape the store root once joined onto it.
func cleanPath(p string) (string, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	if p == "" {
		return "", errors.New("store: empty document path")
	}
	if path.IsAbs(p) {
		return "", ErrPathTraversalRejected
	}

	cleaned := path.Clean(p)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrPathTraversalRejected
	}
	return cleaned, nil
}

func checkFormat(format document.Format) error {
	if !document.ValidFormat(string(format)) {
		return errors.Wrap(ErrUnsupportedFormat, string(format))
	}
	return nil
}

// recordKey is the storage key for a (path, format) pair and doubles
// as the relative file name in the dir backend.
func recordKey(logical string, format document.Format) string {
	return logical + "." + string(format)
}

// encodeTree serializes a tree in the requested format: rendered
// markup for html, a structural snapshot for json. Saving re-binds
// the tree to the format, so a format conversion writes a snapshot
// that records the format it is stored under, not the one the tree
// was loaded with.
func encodeTree(tree *document.Tree, format document.Format) ([]byte, error) {
	tree.SetFormat(format)
	switch format {
	case document.FormatHTML:
		out, err := document.ToMarkup(tree)
		if err != nil {
			return nil, err
		}
		return []byte(out), nil
	case document.FormatJSON:
		return document.ToSnapshot(tree)
	default:
		return nil, errors.Wrap(ErrUnsupportedFormat, string(format))
	}
}

// decodeTree is the inverse of encodeTree. The html format goes
// through the markup parser and block mapper; json decodes the
// snapshot directly, bypassing both.
func decodeTree(data []byte, catalog *document.Catalog, logical string, format document.Format, logger *zap.Logger) (*document.Tree, error) {
	switch format {
	case document.FormatHTML:
		return document.FromMarkup(string(data), catalog, logical, format, document.WithLogger(logger))
	case document.FormatJSON:
		return document.FromSnapshot(data, catalog, logical, document.WithLogger(logger))
	default:
		return nil, errors.Wrap(ErrUnsupportedFormat, string(format))
	}
}

// stripRecordExt converts a record key back to its logical path, or
// returns false for files that are not document records.
func stripRecordExt(name string) (string, bool) {
	ext := path.Ext(name)
	if ext == "" || !document.ValidFormat(ext[1:]) {
		return "", false
	}
	return strings.TrimSuffix(name, ext), true
}
