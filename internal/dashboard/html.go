package dashboard

import (
	_ "embed"
	"html/template"
	"strings"
)

//go:embed static/index.html
var indexHTML string

//go:embed static/app.css
var appCSS []byte

var indexTemplate = template.Must(template.New("index").Funcs(template.FuncMap{
	"upper": strings.ToUpper,
}).Parse(indexHTML))
