package api

import (
	"embed"
	"io/fs"
	"net/http"
	"os"
)

//go:generate sh -c "GOOS=js GOARCH=wasm go build -o web/static/topsis.wasm ../../cmd/topsis-web"
//go:generate sh -c "cp \"$(go env GOROOT)/lib/wasm/wasm_exec.js\" web/static/"

//go:embed web/index.html web/static
var webFS embed.FS

// Files the page needs to run the form controller.
var wasmBundle = []string{"wasm_exec.js", "topsis.wasm"}

func indexHandler(w http.ResponseWriter, r *http.Request) {
	page, err := webFS.ReadFile("web/index.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func staticFS(dir string) fs.FS {
	if dir != "" {
		return os.DirFS(dir)
	}
	sub, _ := fs.Sub(webFS, "web/static")
	return sub
}

// staticHandler serves /static/* from dir, or from the embedded assets when
// dir is empty.
func staticHandler(dir string) http.Handler {
	return http.StripPrefix("/static/", http.FileServer(http.FS(staticFS(dir))))
}

// MissingWasmBundle lists the controller files that /static/* cannot serve.
// The embedded assets only carry them after go generate ./internal/api.
func MissingWasmBundle(dir string) []string {
	fsys := staticFS(dir)
	var missing []string
	for _, name := range wasmBundle {
		if _, err := fs.Stat(fsys, name); err != nil {
			missing = append(missing, name)
		}
	}
	return missing
}
