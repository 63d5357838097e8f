package theme

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/pagemason/pagemason/internal/version"
	"github.com/pagemason/pagemason/pkg/document"
	"github.com/pagemason/pagemason/pkg/markup"
)

// dataBlockAttr marks rendered theme blocks so re-mapping classifies
// them back to their definition without heuristics.
const dataBlockAttr = "data-block"

// BuildCatalog loads a theme and turns every block into a registered
// document.Definition. Theme blocks register before the core builtins
// so they win classification; registration order within the theme
// follows the sorted folder order LoadTheme returns.
//
// A broken block (bad descriptor, bad match expression, empty source)
// does not sink the theme: healthy blocks still register and the
// failures come back aggregated in the returned error alongside the
// usable catalog.
func (d *Dir) BuildCatalog(name string) (*document.Catalog, error) {
	blocks, err := d.LoadTheme(name)
	if err != nil {
		return nil, err
	}

	manifest, err := d.manifest(name)
	if err != nil {
		return nil, err
	}
	if err := checkEngineConstraint(manifest.Engine); err != nil {
		return nil, errors.Wrapf(err, "theme %q is incompatible with this engine", name)
	}

	catalog := document.NewCatalog()

	var buildErr error
	for _, block := range blocks {
		def, err := d.buildDefinition(name, block)
		if err != nil {
			buildErr = multierr.Append(buildErr, err)
			continue
		}
		if err := catalog.Register(def); err != nil {
			buildErr = multierr.Append(buildErr, err)
			continue
		}
		d.logger.Debug(
			"registered theme block",
			zap.String("theme", name),
			zap.String("block", def.ID),
		)
	}

	if err := document.RegisterBuiltins(catalog); err != nil {
		return nil, err
	}
	return catalog, buildErr
}

// buildDefinition derives a block definition from a theme block: the
// first element of the markup source becomes the render template,
// data-* attributes on it seed the default props, and block.toml
// overrides display name, container flag, props and the matcher.
func (d *Dir) buildDefinition(name string, block Block) (*document.Definition, error) {
	id := name + "/" + block.Folder

	template := firstElement(markup.Parse(block.Source))
	if template == nil {
		return nil, errors.Errorf("theme: block %q has no element in its markup source", id)
	}

	desc, err := d.descriptor(name, block.Folder)
	if err != nil {
		return nil, err
	}

	defaults := templateProps(template)
	for k, v := range desc.Props {
		defaults[k] = v
	}

	match := func(n *markup.Node) bool {
		v, _ := n.Attr(dataBlockAttr)
		return v == id
	}
	if desc.Match != "" {
		if match, err = compileMatcher(desc.Match); err != nil {
			return nil, errors.Wrapf(err, "theme: block %q", id)
		}
	}

	displayName := desc.DisplayName
	if displayName == "" {
		displayName = block.Folder
	}

	return &document.Definition{
		ID:           id,
		DisplayName:  displayName,
		DefaultProps: defaults,
		Container:    desc.Container,
		Match:        match,
		Extract: func(n *markup.Node) document.Props {
			props := document.Props{}
			for _, a := range n.Attrs {
				if a.Key == dataBlockAttr || !strings.HasPrefix(a.Key, "data-") {
					continue
				}
				key := strings.TrimPrefix(a.Key, "data-")
				props[key] = coercePropValue(defaults, key, a.Value)
			}
			return props
		},
		Render: renderTemplate(template, id, desc.Container),
	}, nil
}

// renderTemplate renders an instance by cloning the template element,
// stamping the block id and props as data-* attributes, and attaching
// either the rendered children (containers) or the template's own
// preview content (leaves).
func renderTemplate(template *markup.Node, id string, container bool) func(document.Props, []*markup.Node) (*markup.Node, error) {
	return func(props document.Props, children []*markup.Node) (*markup.Node, error) {
		el := template.CloneShallow()
		setAttr(el, dataBlockAttr, id)

		keys := make([]string, 0, len(props))
		for k := range props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			setAttr(el, "data-"+k, fmt.Sprint(props[k]))
		}

		if container {
			return el.Append(children...), nil
		}
		for _, c := range template.Children {
			el.Append(c.Clone())
		}
		return el, nil
	}
}

// coercePropValue converts a data-* attribute string back to the type
// the block's default declares for the key. Rendering stamps every
// prop through fmt.Sprint, so numeric and boolean descriptor props
// need the inverse conversion to re-map to their original values.
// Keys without a typed default stay strings.
func coercePropValue(defaults document.Props, key, value string) any {
	switch defaults[key].(type) {
	case int:
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	case int64:
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	case float64:
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	case bool:
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return value
}

// templateProps reads the template element's data-* attributes as the
// block's implicit default props.
func templateProps(template *markup.Node) document.Props {
	props := document.Props{}
	for _, a := range template.Attrs {
		if a.Key == dataBlockAttr || !strings.HasPrefix(a.Key, "data-") {
			continue
		}
		props[strings.TrimPrefix(a.Key, "data-")] = a.Value
	}
	return props
}

func firstElement(root *markup.Node) *markup.Node {
	for _, c := range root.Children {
		if c.Type == markup.ElementNode {
			return c
		}
	}
	return nil
}

// setAttr overwrites an attribute in place to keep the template's
// attribute order stable across repeated render cycles.
func setAttr(n *markup.Node, key, value string) {
	for i, a := range n.Attrs {
		if a.Key == key {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, markup.Attribute{Key: key, Value: value})
}

// checkEngineConstraint validates a manifest's engine constraint
// against the build version. An empty constraint always passes; an
// unparseable build version (dev builds) passes too, since there is
// nothing meaningful to check against.
func checkEngineConstraint(constraint string) error {
	if constraint == "" {
		return nil
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return errors.Wrapf(err, "invalid engine constraint %q", constraint)
	}

	current, err := version.Current()
	if err != nil {
		return nil
	}
	if !c.Check(current) {
		return errors.Errorf("engine version %s does not satisfy constraint %q", current, constraint)
	}
	return nil
}
