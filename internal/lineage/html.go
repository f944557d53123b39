package lineage

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"sort"

	"github.com/crabwalk-labs/crabwalk/internal/model"
)

// HTMLFileName is the default name for the HTML lineage page.
const HTMLFileName = "lineage.html"

type htmlUnit struct {
	Name     string
	Path     string
	Deps     []string
	External []string
}

type htmlPage struct {
	Diagram string
	Units   []htmlUnit
}

var pageTemplate = template.Must(template.New("lineage").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Lineage</title>
<script type="module">
import mermaid from 'https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.esm.min.mjs';
mermaid.initialize({ startOnLoad: true });
</script>
<style>
body { font-family: -apple-system, 'Segoe UI', sans-serif; margin: 2rem; color: #222; }
h1 { font-size: 1.4rem; }
table { border-collapse: collapse; margin-top: 1rem; }
th, td { border: 1px solid #ccc; padding: 0.4rem 0.8rem; text-align: left; vertical-align: top; }
th { background: #f5f5f5; }
.external { color: #888; }
</style>
</head>
<body>
<h1>Unit lineage</h1>
<pre class="mermaid">
{{.Diagram}}</pre>
<table>
<tr><th>Unit</th><th>File</th><th>Depends on</th><th>External references</th></tr>
{{range .Units}}<tr>
<td>{{.Name}}</td>
<td>{{.Path}}</td>
<td>{{range .Deps}}{{.}}<br>{{end}}</td>
<td class="external">{{range .External}}{{.}}<br>{{end}}</td>
</tr>
{{end}}</table>
</body>
</html>
`))

// HTML renders a self-contained lineage page: the mermaid diagram plus
// a per-unit dependency table separating unit and external references.
func HTML(models []*model.Model) ([]byte, error) {
	known := make(map[string]struct{}, len(models))
	for _, m := range models {
		known[m.Name] = struct{}{}
	}

	page := htmlPage{Diagram: Mermaid(models)}
	for _, m := range models {
		unit := htmlUnit{Name: m.Name, Path: m.Path}
		for _, dep := range sortedDeps(m) {
			if _, ok := known[dep]; ok {
				unit.Deps = append(unit.Deps, dep)
			} else {
				unit.External = append(unit.External, dep)
			}
		}
		page.Units = append(page.Units, unit)
	}
	sort.Slice(page.Units, func(i, j int) bool { return page.Units[i].Name < page.Units[j].Name })

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("rendering lineage page: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteHTML writes the lineage page to path.
func WriteHTML(path string, models []*model.Model) error {
	data, err := HTML(models)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
