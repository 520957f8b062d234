package web

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/bcspragu/namesbench"
	"github.com/bcspragu/namesbench/httperr"
)

var tmplFuncs = template.FuncMap{
	"score": func(s *namesbench.Summary) string {
		if s == nil {
			return "-"
		}
		return fmt.Sprintf("%.2f", s.Score)
	},
}

const indexTmpl = `<!DOCTYPE html>
<html>
<head><title>namesbench</title></head>
<body>
<h1>Runs</h1>
{{range .}}
<h2>{{.Run.Model}} ({{.Run.Provider}}) {{.Run.Grid}}</h2>
<p>Started {{.Run.CreatedAt.Format "2006-01-02 15:04:05"}}, base seed {{.Run.BaseSeed}}, results in <code>{{.Run.OutDir}}</code></p>
<table>
<tr><th>Game</th><th>Seed</th><th>Status</th><th>Score</th></tr>
{{range .Games}}<tr><td><a href="/api/games/{{.ID}}">{{.Index}}</a></td><td>{{.Seed}}</td><td>{{.Status}}</td><td>{{score .Summary}}</td></tr>
{{end}}</table>
{{else}}
<p>No runs yet.</p>
{{end}}
</body>
</html>
`

func (s *Srv) serveIndex(w http.ResponseWriter, r *http.Request) error {
	runs, err := s.db.Runs()
	if err != nil {
		return httperr.Internal("failed to load runs: %w", err)
	}

	var rds []*RunDetails
	for _, run := range runs {
		rd, err := s.runDetails(run.ID)
		if err != nil {
			return err
		}
		rds = append(rds, rd)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, rds); err != nil {
		return httperr.Internal("failed to render page: %w", err)
	}
	return nil
}
