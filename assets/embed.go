//go:build !dev

package assets

import (
	"embed"
	"net/http"
)

//go:embed *.html
var assets embed.FS

var FS = http.FS(assets)
