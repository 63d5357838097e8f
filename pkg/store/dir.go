package store

import (
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/pagemason/pagemason/pkg/document"
)

// DirStore persists documents as files named <path>.<format> under a
// root filesystem. Production wiring hands it an osfs chroot; tests
// use memfs.
type DirStore struct {
	fs       billy.Filesystem
	catalogs CatalogSource
	logger   *zap.Logger
}

var _ Store = (*DirStore)(nil)

// NewDirStore returns a store rooted at the given filesystem.
func NewDirStore(fsys billy.Filesystem, catalogs CatalogSource, opts ...Option) *DirStore {
	o := buildOptions(opts)
	return &DirStore{
		fs:       fsys,
		catalogs: catalogs,
		logger:   o.logger,
	}
}

// NewDirStoreAt is a convenience for a store rooted at a directory on
// the OS filesystem.
func NewDirStoreAt(root string, catalogs CatalogSource, opts ...Option) *DirStore {
	return NewDirStore(osfs.New(root), catalogs, opts...)
}

func (s *DirStore) Load(docPath string, format document.Format) (*document.Tree, error) {
	logical, err := cleanPath(docPath)
	if err != nil {
		return nil, err
	}
	if err := checkFormat(format); err != nil {
		return nil, err
	}

	data, err := util.ReadFile(s.fs, recordKey(logical, format))
	if err != nil {
		if os.IsNotExist(err) {
			// First-open bootstrap: a fresh tree with one default root block.
			s.logger.Debug("bootstrapping new document", zap.String("path", logical))
			return document.NewTree(s.catalogs.Catalog(), logical, format, document.WithLogger(s.logger)), nil
		}
		return nil, errors.Wrapf(err, "failed to read document %q", logical)
	}

	return decodeTree(data, s.catalogs.Catalog(), logical, format, s.logger)
}

func (s *DirStore) Save(docPath string, format document.Format, tree *document.Tree) error {
	logical, err := cleanPath(docPath)
	if err != nil {
		return err
	}
	if err := checkFormat(format); err != nil {
		return err
	}

	data, err := encodeTree(tree, format)
	if err != nil {
		return err
	}

	name := recordKey(logical, format)
	if dir := path.Dir(name); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create directory for %q", logical)
		}
	}
	if err := util.WriteFile(s.fs, name, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write document %q", logical)
	}

	s.logger.Debug(
		"saved document",
		zap.String("path", logical),
		zap.String("format", string(format)),
		zap.Int("bytes", len(data)),
	)
	return nil
}

func (s *DirStore) List(prefix string) ([]string, error) {
	seen := map[string]struct{}{}

	err := util.Walk(s.fs, "/", func(name string, info fs.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		logical, ok := stripRecordExt(strings.TrimPrefix(name, "/"))
		if !ok {
			return nil
		}
		if prefix == "" || strings.HasPrefix(logical, prefix) {
			seen[logical] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to walk document root")
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}
