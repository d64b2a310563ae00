// Package watch monitors a Flutter asset tree for changes. It walks the
// asset root recursively, filters editor noise and delivers each relevant
// change as an Event; debouncing is left to the caller.
package watch
