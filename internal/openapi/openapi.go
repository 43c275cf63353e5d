// Package openapi serves the embedded OpenAPI document describing the
// NLDI HTTP surface, with content negotiation over json/yaml/html.
package openapi

import (
	_ "embed"
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/internetofwater/nldi-go/internal/nldierrors"
)

//go:embed openapi.json
var rawJSON []byte

// Format is a supported ?f= value for GET /openapi.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHTML Format = "html"
)

// Render returns the document bytes and the content type to serve it with,
// for the requested format. An unsupported format is an InvalidInput so
// the router can fall through to its 406 path instead.
func Render(f Format) ([]byte, string, error) {
	switch f {
	case FormatJSON, "":
		return rawJSON, "application/json", nil
	case FormatYAML:
		var doc any
		if err := json.Unmarshal(rawJSON, &doc); err != nil {
			return nil, "", nldierrors.Wrap(nldierrors.Internal, "decode embedded openapi document", err)
		}
		out, err := yaml.Marshal(doc)
		if err != nil {
			return nil, "", nldierrors.Wrap(nldierrors.Internal, "encode openapi document as yaml", err)
		}
		return out, "application/yaml", nil
	case FormatHTML:
		return []byte(htmlWrapper), "text/html", nil
	default:
		return nil, "", nldierrors.New(nldierrors.InvalidInput, "unsupported format: "+string(f))
	}
}

const htmlWrapper = `<!DOCTYPE html>
<html>
<head><title>NLDI API</title></head>
<body>
<div id="swagger-ui"></div>
<script>
window.onload = function() {
  fetch("openapi?f=json").then(r => r.json()).then(spec => {
    document.getElementById("swagger-ui").innerText = JSON.stringify(spec, null, 2);
  });
};
</script>
</body>
</html>`
