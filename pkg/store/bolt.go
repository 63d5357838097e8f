package store

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/pagemason/pagemason/pkg/document"
)

var documentsBucket = []byte("documents")

// BoltStore persists document records in a single bbolt bucket keyed
// by "<path>.<format>". It holds the whole document history of a site
// in one file, which suits deployments without a writable directory
// tree.
type BoltStore struct {
	db       *bolt.DB
	catalogs CatalogSource
	logger   *zap.Logger
}

var _ Store = (*BoltStore)(nil)

// NewBoltStore opens (or creates) the database file and ensures the
// documents bucket exists. The caller owns the store and must Close it.
func NewBoltStore(file string, catalogs CatalogSource, opts ...Option) (*BoltStore, error) {
	o := buildOptions(opts)

	db, err := bolt.Open(file, 0o600, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open document database %q", file)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(documentsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to create documents bucket")
	}

	return &BoltStore{db: db, catalogs: catalogs, logger: o.logger}, nil
}

func (s *BoltStore) Close() error {
	return errors.Wrap(s.db.Close(), "failed to close document database")
}

func (s *BoltStore) Load(docPath string, format document.Format) (*document.Tree, error) {
	logical, err := cleanPath(docPath)
	if err != nil {
		return nil, err
	}
	if err := checkFormat(format); err != nil {
		return nil, err
	}

	var data []byte
	err = s.db.View(func(tx *bolt.Tx) error {
		if value := tx.Bucket(documentsBucket).Get([]byte(recordKey(logical, format))); value != nil {
			data = make([]byte, len(value))
			copy(data, value)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read document %q", logical)
	}

	if data == nil {
		s.logger.Debug("bootstrapping new document", zap.String("path", logical))
		return document.NewTree(s.catalogs.Catalog(), logical, format, document.WithLogger(s.logger)), nil
	}
	return decodeTree(data, s.catalogs.Catalog(), logical, format, s.logger)
}

func (s *BoltStore) Save(docPath string, format document.Format, tree *document.Tree) error {
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

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(documentsBucket).Put([]byte(recordKey(logical, format)), data)
	})
	return errors.Wrapf(err, "failed to write document %q", logical)
}

func (s *BoltStore) List(prefix string) ([]string, error) {
	seen := map[string]struct{}{}

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(documentsBucket).ForEach(func(key, _ []byte) error {
			logical, ok := stripRecordExt(string(key))
			if !ok {
				return nil
			}
			if prefix == "" || strings.HasPrefix(logical, prefix) {
				seen[logical] = struct{}{}
			}
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list documents")
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}
