package dartgen

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

const fileHeader = `// GENERATED CODE - DO NOT MODIFY BY HAND
// Generated by assetsync. Run "assetsync sync" to regenerate.`

const partTemplate = `{{header}}
// Source: {{.Source}}

part of '{{.Library}}';
{{range .Classes}}
{{$.Modifier}}class {{.Name}} {
  const {{.Name}}();
{{- if .Properties}}
{{range .Properties}}
  {{decl .}}
{{- end}}
{{- end}}
}
{{end}}`

const libraryTemplate = `{{header}}
{{- if .Categories}}
{{range .Categories}}
part '{{.File}}';
{{- end}}
{{- end}}

{{.Modifier}}class {{.ClassName}} {
  {{.ClassName}}._();
{{- if .Categories}}
{{range .Categories}}
  static const {{.Property}} = {{.Root}}();
{{- end}}
{{- end}}
}
`

var templates = template.Must(template.New("dart").Funcs(template.FuncMap{
	"header": func() string { return fileHeader },
	"decl":   declaration,
}).Parse(`{{define "part"}}` + partTemplate + `{{end}}{{define "library"}}` + libraryTemplate + `{{end}}`))

var dartEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `$`, `\$`)

// Render serializes lib into the aggregator file followed by one part file
// per category.
func Render(lib *Library) ([]File, error) {
	modifier := ""
	if lib.FinalClasses {
		modifier = "final "
	}

	files := make([]File, 0, len(lib.Categories)+1)

	var buf bytes.Buffer

	if err := templates.ExecuteTemplate(&buf, "library", struct {
		*Library
		Modifier string
	}{lib, modifier}); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", LibraryFile, err)
	}

	files = append(files, File{Name: LibraryFile, Content: bytes.Clone(buf.Bytes())})

	for _, cat := range lib.Categories {
		buf.Reset()

		data := struct {
			Source   string
			Library  string
			Modifier string
			Classes  []*Class
		}{
			Source:   lib.AssetsPrefix + "/" + cat.Dir,
			Library:  LibraryFile,
			Modifier: modifier,
			Classes:  cat.Classes,
		}

		if err := templates.ExecuteTemplate(&buf, "part", data); err != nil {
			return nil, fmt.Errorf("rendering %s: %w", cat.File, err)
		}

		files = append(files, File{Name: cat.File, Content: bytes.Clone(buf.Bytes())})
	}

	return files, nil
}

// declaration returns the Dart field declaration for p.
func declaration(p Property) string {
	if p.Kind == PropertyClass {
		return fmt.Sprintf("final %s %s = const %s();", p.Type, p.Name, p.Type)
	}

	decl := fmt.Sprintf("final String %s = '%s';", p.Name, dartEscaper.Replace(p.Value))
	if p.SVG {
		decl += " // svg"
	}

	return decl
}
