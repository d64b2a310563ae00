// Package dartgen turns an asset snapshot into Dart accessor classes.
//
// Generation happens in three independent steps:
//
//  1. Build derives an in-memory Library (classes and properties) from an
//     assets.Node tree.
//  2. Render serializes the Library into one part file per category plus
//     an aggregator library file.
//  3. Emit writes rendered files into the output directory and deletes
//     Dart files a previous pass produced but the current one did not.
package dartgen

import "github.com/hupe1980/assetsync/internal/naming"

// LibraryFile is the file name of the aggregator library.
const LibraryFile = "assets.dart"

// PartSuffix is appended to each category file stem.
const PartSuffix = ".g.dart"

// PropertyKind distinguishes nested-class properties from asset paths.
type PropertyKind string

// Property kinds.
const (
	PropertyClass  PropertyKind = "class"
	PropertyString PropertyKind = "string"
)

// Property is a single member of a generated class.
type Property struct {
	// Name is the Dart identifier.
	Name string `json:"name"`
	// Kind is PropertyClass or PropertyString.
	Kind PropertyKind `json:"kind"`
	// Type is the nested class name for PropertyClass.
	Type string `json:"type,omitempty"`
	// Value is the logical asset path for PropertyString.
	Value string `json:"value,omitempty"`
	// SVG marks vector assets. The marker is advisory only.
	SVG bool `json:"svg,omitempty"`
	// Source is the raw filesystem segment the property was derived from.
	Source string `json:"source"`
}

// Class is a generated class mirroring one directory.
type Class struct {
	// Name is the Dart class name.
	Name string `json:"name"`
	// Dir is the forward-slash directory path relative to the asset root.
	Dir string `json:"dir"`
	// Properties in declaration order: nested classes first, then files.
	Properties []Property `json:"properties,omitempty"`
}

// Category is one immediate child directory of the asset root.
type Category struct {
	// Dir is the raw directory name.
	Dir string `json:"dir"`
	// Property is the aggregator member name.
	Property string `json:"property"`
	// File is the part file name, e.g. "images.g.dart".
	File string `json:"file"`
	// Root is the name of the category's top-level class.
	Root string `json:"root"`
	// Classes holds the category's classes in pre-order.
	Classes []*Class `json:"classes"`
}

// Library is the complete generated accessor layer.
type Library struct {
	// ClassName is the public aggregator class.
	ClassName string `json:"className"`
	// AssetsPrefix is the logical path prefix of every asset value.
	AssetsPrefix string `json:"assetsPrefix"`
	// FinalClasses emits Dart 3 "final class" declarations.
	FinalClasses bool `json:"finalClasses"`
	// Categories in enumeration order.
	Categories []*Category `json:"categories"`
	// Collisions lists every name clash resolved while building.
	Collisions []naming.Collision `json:"collisions,omitempty"`
}

// File is a rendered output file.
type File struct {
	Name    string
	Content []byte
}

// Options configures Build.
type Options struct {
	// ClassName of the aggregator. Defaults to "Assets".
	ClassName string
	// AssetsPrefix for logical asset paths. Defaults to "assets".
	AssetsPrefix string
	// FinalClasses emits "final class" (Dart >= 3.0).
	FinalClasses bool
}

func (o Options) withDefaults() Options {
	if o.ClassName == "" {
		o.ClassName = "Assets"
	}

	if o.AssetsPrefix == "" {
		o.AssetsPrefix = "assets"
	}

	return o
}
