package dartgen

import (
	"path"
	"strings"

	"github.com/hupe1980/assetsync/internal/assets"
	"github.com/hupe1980/assetsync/internal/naming"
)

// builder carries the registries shared across one Build call. Part files
// share the library namespace, so class names are unique library-wide.
type builder struct {
	opts       Options
	classes    *naming.Registry
	collisions []naming.Collision
}

// Build derives the class hierarchy for every category below root.
func Build(root *assets.Node, opts Options) *Library {
	opts = opts.withDefaults()

	b := &builder{
		opts:    opts,
		classes: naming.NewRegistry("library classes"),
	}
	b.classes.Claim(opts.ClassName, "aggregator")

	lib := &Library{
		ClassName:    opts.ClassName,
		AssetsPrefix: opts.AssetsPrefix,
		FinalClasses: opts.FinalClasses,
	}

	members := naming.NewRegistry(opts.ClassName)
	files := naming.NewRegistry("part files")

	for _, dir := range root.Dirs() {
		prop, c := members.Claim(naming.Identifier(dir.Name), dir.Name)
		b.record(c)

		stem, c := files.Claim(naming.FileName(dir.Name), dir.Name)
		b.record(c)

		rootClass, c := b.classes.Claim(naming.CategoryClass(dir.Name), dir.RelPath)
		b.record(c)

		cat := &Category{
			Dir:      dir.Name,
			Property: prop,
			File:     stem + PartSuffix,
			Root:     rootClass,
		}
		cat.Classes = b.buildClass(dir, rootClass, nil)

		lib.Categories = append(lib.Categories, cat)
	}

	lib.Collisions = b.collisions

	return lib
}

// buildClass appends the class for dir and then all descendant classes to
// out, so a class always precedes its nested classes.
func (b *builder) buildClass(dir *assets.Node, className string, out []*Class) []*Class {
	class := &Class{Name: className, Dir: dir.RelPath}
	out = append(out, class)

	members := naming.NewRegistry(className)

	type nested struct {
		node *assets.Node
		name string
	}

	var children []nested

	for _, sub := range dir.Dirs() {
		nestedName, c := b.classes.Claim(className+naming.TypeSegment(sub.Name), sub.RelPath)
		b.record(c)

		prop, c := members.Claim(naming.Identifier(sub.Name), sub.Name)
		b.record(c)

		class.Properties = append(class.Properties, Property{
			Name:   prop,
			Kind:   PropertyClass,
			Type:   nestedName,
			Source: sub.Name,
		})

		children = append(children, nested{node: sub, name: nestedName})
	}

	for _, f := range dir.Files() {
		ext := path.Ext(f.Name)

		prop, c := members.Claim(naming.Identifier(strings.TrimSuffix(f.Name, ext)), f.Name)
		b.record(c)

		class.Properties = append(class.Properties, Property{
			Name:   prop,
			Kind:   PropertyString,
			Value:  path.Join(b.opts.AssetsPrefix, f.RelPath),
			SVG:    strings.EqualFold(ext, ".svg"),
			Source: f.Name,
		})
	}

	for _, child := range children {
		out = b.buildClass(child.node, child.name, out)
	}

	return out
}

func (b *builder) record(c *naming.Collision) {
	if c != nil {
		b.collisions = append(b.collisions, *c)
	}
}

// AssetPaths returns every string property value in the library in
// emission order.
func (l *Library) AssetPaths() []string {
	var out []string

	for _, cat := range l.Categories {
		for _, cls := range cat.Classes {
			for _, p := range cls.Properties {
				if p.Kind == PropertyString {
					out = append(out, p.Value)
				}
			}
		}
	}

	return out
}

// ClassCount returns the number of generated classes, excluding the
// aggregator.
func (l *Library) ClassCount() int {
	n := 0
	for _, cat := range l.Categories {
		n += len(cat.Classes)
	}

	return n
}
