// Package theme loads directory-backed block collections. A theme is
// a folder under the themes root; each subfolder holds one block's
// markup source (index.html) and an optional block.toml descriptor.
// The theme folder itself may carry a theme.toml manifest with a
// display name and an engine version constraint.
package theme

import (
	stderrors "errors"
	"os"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrThemeNotFound is returned when the named theme directory does not
// exist under the themes root.
var ErrThemeNotFound = stderrors.New("theme: theme not found")

// sourceFile is the markup source each block folder must contain.
const sourceFile = "index.html"

// Block is one entry of a theme: the raw markup source and the folder
// it came from. The folder name doubles as the block's id suffix.
type Block struct {
	Source string `json:"source"`
	Folder string `json:"folder"`
}

// Dir reads themes from a root filesystem.
type Dir struct {
	fs     billy.Filesystem
	root   string
	logger *zap.Logger
}

// Option configures a Dir.
type Option func(*Dir)

// WithLogger attaches a logger. Defaults to zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(d *Dir) { d.logger = logger }
}

// NewDir returns a theme directory over the given filesystem.
func NewDir(fsys billy.Filesystem, opts ...Option) *Dir {
	d := &Dir{fs: fsys, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewDirAt returns a theme directory rooted at an OS path. Root is
// retained so the dev watcher can register it with fsnotify.
func NewDirAt(root string, opts ...Option) *Dir {
	d := NewDir(osfs.New(root), opts...)
	d.root = root
	return d
}

// Root returns the OS path the directory was opened at, when known.
func (d *Dir) Root() string { return d.root }

// Themes lists the available theme names in sorted order. Hidden
// entries and plain files are skipped.
func (d *Dir) Themes() ([]string, error) {
	entries, err := d.fs.ReadDir("/")
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to read themes root")
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// LoadTheme returns the blocks of the named theme in sorted folder
// order. Only subdirectories count as blocks: descriptor files such as
// index.ts or theme.toml and hidden entries are excluded. Folders
// without a markup source are skipped with a log line rather than
// failing the whole theme.
func (d *Dir) LoadTheme(name string) ([]Block, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	info, err := d.fs.Stat(name)
	if err != nil || !info.IsDir() {
		return nil, errors.Wrap(ErrThemeNotFound, name)
	}

	entries, err := d.fs.ReadDir(name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read theme %q", name)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	blocks := make([]Block, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		source, err := util.ReadFile(d.fs, d.fs.Join(name, entry.Name(), sourceFile))
		if err != nil {
			if os.IsNotExist(err) {
				d.logger.Debug(
					"skipping block folder without markup source",
					zap.String("theme", name),
					zap.String("folder", entry.Name()),
				)
				continue
			}
			return nil, errors.Wrapf(err, "failed to read block source %q/%q", name, entry.Name())
		}

		blocks = append(blocks, Block{Source: string(source), Folder: entry.Name()})
	}
	return blocks, nil
}

// validateName keeps theme lookups inside the themes root. A name is a
// single path segment; anything else reads as a theme that does not
// exist.
func validateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) {
		return errors.Wrap(ErrThemeNotFound, name)
	}
	return nil
}
