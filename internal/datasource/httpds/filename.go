package httpds

import (
	"mime"
	"net/http"
	"path"
	"strings"
)

// contentTypeExt maps export media types to the extension the parser
// dispatch understands.
var contentTypeExt = map[string]string{
	"text/csv":                  ".csv",
	"application/csv":           ".csv",
	"text/tab-separated-values": ".tsv",
	"application/json":          ".json",
	"application/x-ndjson":      ".json",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": ".xlsx",
}

// FilenameFromResponse names the payload of resp: the Content-Disposition
// filename when present, else the last URL path segment. When the chosen name
// has no extension, one is derived from Content-Type.
func FilenameFromResponse(resp *http.Response) string {
	name := ""
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			name = path.Base(strings.ReplaceAll(params["filename"], `\`, "/"))
		}
	}
	if (name == "" || name == "." || name == "/") && resp.Request != nil && resp.Request.URL != nil {
		name = path.Base(resp.Request.URL.Path)
	}
	if name == "." || name == "/" {
		name = ""
	}
	if path.Ext(name) == "" {
		if mt, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil {
			name += contentTypeExt[mt]
		}
	}
	return name
}
