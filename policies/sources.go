package policies

import (
	"embed"
	"strings"
	"text/template"
)

//go:embed sources/*.star
var sourcesFS embed.FS

var sources = template.Must(template.ParseFS(sourcesFS, "sources/*.star"))

func render(name string, data any) string {
	buf := new(strings.Builder)
	if err := sources.ExecuteTemplate(buf, name, data); err != nil {
		panic(err)
	}
	return buf.String()
}
