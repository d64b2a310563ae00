// Package assets reads an asset directory tree into an in-memory snapshot.
//
// A snapshot is rebuilt from the live filesystem on every pass and is never
// cached. Density-variant directories such as "2.0x" are left out of the
// tree entirely: they hold scaled siblings of their parent's files and do not
// get classes or manifest entries of their own.
package assets

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// variantDir matches density-variant directory names (case-sensitive).
var variantDir = regexp.MustCompile(`^\d\.\dx$`)

// Kind distinguishes directories from files.
type Kind string

// Node kinds.
const (
	KindDir  Kind = "directory"
	KindFile Kind = "file"
)

// Node is a directory or file below the asset root.
type Node struct {
	// Name is the raw filesystem segment.
	Name string `json:"name"`
	// Kind is either KindDir or KindFile.
	Kind Kind `json:"kind"`
	// RelPath is the forward-slash path from the asset root. The root
	// itself has an empty RelPath.
	RelPath string `json:"path"`
	// Children holds directory contents in enumeration order.
	Children []*Node `json:"children,omitempty"`
}

// IsDir reports whether n is a directory.
func (n *Node) IsDir() bool { return n.Kind == KindDir }

// Dirs returns the child directories of n in order.
func (n *Node) Dirs() []*Node {
	return n.filter(KindDir)
}

// Files returns the child files of n in order.
func (n *Node) Files() []*Node {
	return n.filter(KindFile)
}

func (n *Node) filter(k Kind) []*Node {
	var out []*Node

	for _, c := range n.Children {
		if c.Kind == k {
			out = append(out, c)
		}
	}

	return out
}

// IsVariantDir reports whether name is a density-variant directory name.
func IsVariantDir(name string) bool {
	return variantDir.MatchString(name)
}

// IsHidden reports whether name is a dotfile.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// Scan walks root and returns its snapshot. Each directory is enumerated
// exactly once. Dotfiles and variant directories are skipped.
func Scan(root string) (*Node, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("reading asset root: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("asset root %s is not a directory", root)
	}

	node := &Node{Name: filepath.Base(root), Kind: KindDir}
	if err := scanDir(root, node); err != nil {
		return nil, err
	}

	return node, nil
}

func scanDir(dir string, node *Node) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	for _, e := range entries {
		name := e.Name()
		rel := path.Join(node.RelPath, name)

		isDir := e.IsDir()
		if e.Type()&os.ModeSymlink != 0 {
			// Symlinks take the kind of their target.
			target, statErr := os.Stat(filepath.Join(dir, name))
			if statErr != nil {
				continue
			}

			isDir = target.IsDir()
		}

		if isDir {
			if IsVariantDir(name) {
				continue
			}

			child := &Node{Name: name, Kind: KindDir, RelPath: rel}
			if err := scanDir(filepath.Join(dir, name), child); err != nil {
				return err
			}

			node.Children = append(node.Children, child)

			continue
		}

		if IsHidden(name) {
			continue
		}

		node.Children = append(node.Children, &Node{Name: name, Kind: KindFile, RelPath: rel})
	}

	return nil
}

// Walk visits n and all its descendants in pre-order. Returning false from
// fn skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}

	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// DirPaths returns the RelPath of every directory below n (excluding n
// itself) in discovery order.
func DirPaths(n *Node) []string {
	var out []string

	Walk(n, func(c *Node) bool {
		if c != n && c.IsDir() {
			out = append(out, c.RelPath)
		}

		return c.IsDir()
	})

	return out
}

// CountFiles returns the number of files below n.
func CountFiles(n *Node) int {
	count := 0

	Walk(n, func(c *Node) bool {
		if !c.IsDir() {
			count++
		}

		return true
	})

	return count
}

// Find resolves a forward-slash relative path inside the tree.
func Find(root *Node, rel string) *Node {
	if rel == "" || rel == "." {
		return root
	}

	cur := root

	for _, seg := range strings.Split(rel, "/") {
		var next *Node

		for _, c := range cur.Children {
			if c.Name == seg {
				next = c
				break
			}
		}

		if next == nil {
			return nil
		}

		cur = next
	}

	return cur
}
