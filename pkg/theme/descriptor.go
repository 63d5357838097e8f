package theme

import (
	"os"

	"github.com/go-git/go-billy/v5/util"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

const (
	manifestFile   = "theme.toml"
	descriptorFile = "block.toml"
)

// Manifest is a theme's optional theme.toml: a display name and a
// semver constraint on the engine version the theme was authored for.
type Manifest struct {
	Name   string `toml:"name"`
	Engine string `toml:"engine"`
}

// Descriptor is a block folder's optional block.toml. Everything in it
// overrides what the markup source implies: the display name, whether
// the block nests children, the default props and a match expression
// evaluated against parsed nodes (see matcher.go).
type Descriptor struct {
	DisplayName string         `toml:"display_name"`
	Container   bool           `toml:"container"`
	Match       string         `toml:"match"`
	Props       map[string]any `toml:"props"`
}

// manifest reads a theme's theme.toml. A missing file is not an
// error; the zero manifest applies.
func (d *Dir) manifest(name string) (*Manifest, error) {
	data, err := util.ReadFile(d.fs, d.fs.Join(name, manifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return &Manifest{}, nil
		}
		return nil, errors.Wrapf(err, "failed to read manifest of theme %q", name)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "failed to parse manifest of theme %q", name)
	}
	return &m, nil
}

// descriptor reads a block folder's block.toml. A missing file yields
// the zero descriptor.
func (d *Dir) descriptor(name, folder string) (*Descriptor, error) {
	data, err := util.ReadFile(d.fs, d.fs.Join(name, folder, descriptorFile))
	if err != nil {
		if os.IsNotExist(err) {
			return &Descriptor{}, nil
		}
		return nil, errors.Wrapf(err, "failed to read descriptor of block %q/%q", name, folder)
	}

	var desc Descriptor
	if err := toml.Unmarshal(data, &desc); err != nil {
		return nil, errors.Wrapf(err, "failed to parse descriptor of block %q/%q", name, folder)
	}
	return &desc, nil
}
