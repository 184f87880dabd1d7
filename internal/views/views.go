package views

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Layout wraps every page; BareLayout is the full-viewport builder page.
const (
	Layout     = "layouts/main"
	BareLayout = "layouts/bare"
)

// NewEngine returns the html engine over the embedded templates.
func NewEngine() *html.Engine {
	return html.NewFileSystem(http.FS(mustSub(templateFS, "templates")), ".html")
}

// StaticFS serves the embedded css and js.
func StaticFS() http.FileSystem {
	return http.FS(mustSub(staticFS, "static"))
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
