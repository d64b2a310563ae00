// Package output writes generated files and encodes structured results.
//
//   - Files (writer.go): [FileWriter] writes atomically through a temp file
//     and rename, and skips content that is already on disk.
//
//   - Formats (format.go): a [Registry] of named encoders used for
//     machine-readable command output. JSON and YAML are built in.
package output
