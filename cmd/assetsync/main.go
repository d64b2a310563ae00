// assetsync generates typed Dart accessors for the assets of a Flutter
// project and keeps pubspec.yaml in step with the asset directory.
package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/hupe1980/assetsync/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Stderr))
}
