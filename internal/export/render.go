package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"html/template"
	"strconv"
	"time"

	"dashboard-versioning-api/internal/version"

	"github.com/iancoleman/orderedmap"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type versionSummary struct {
	ID        string    `json:"id"`
	Version   string    `json:"version"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	IsActive  bool      `json:"is_active"`
}

// renderArtifact produces the export payload for formats rendered
// server-side. pdf and png return nil bytes: those jobs complete with a
// download locator only.
func renderArtifact(vs VersionSource, dashboardID string, cfg ExportConfig) ([]byte, string, error) {
	switch cfg.Format {
	case "pdf", "png":
		return nil, "", nil
	}

	versions, err := vs.GetVersionHistory(dashboardID)
	if err != nil {
		return nil, "", err
	}

	var active *version.DashboardVersion
	for i := range versions {
		if versions[i].IsActive {
			active = &versions[i]
			break
		}
	}

	widgets := []version.Widget{}
	layout := []version.LayoutItem{}
	settings := map[string]any{}
	if active != nil {
		if err := json.Unmarshal(active.Widgets, &widgets); err != nil {
			return nil, "", err
		}
		if err := json.Unmarshal(active.Layout, &layout); err != nil {
			return nil, "", err
		}
		if err := json.Unmarshal(active.Settings, &settings); err != nil {
			return nil, "", err
		}
	}

	history := make([]versionSummary, 0, len(versions))
	if cfg.IncludeVersionHistory {
		for _, v := range versions {
			history = append(history, versionSummary{
				ID:        v.ID,
				Version:   v.Version,
				Name:      v.Name,
				CreatedAt: v.CreatedAt,
				IsActive:  v.IsActive,
			})
		}
	}

	switch cfg.Format {
	case "json":
		return renderJSON(dashboardID, active, widgets, layout, settings, history, cfg)
	case "csv":
		return renderCSV(widgets)
	case "xlsx":
		return renderXLSX(widgets, history, cfg)
	case "html":
		return renderHTML(dashboardID, active, widgets, cfg)
	}
	return nil, "", ErrInvalidExportFormat
}

func renderJSON(dashboardID string, active *version.DashboardVersion, widgets []version.Widget, layout []version.LayoutItem, settings map[string]any, history []versionSummary, cfg ExportConfig) ([]byte, string, error) {
	// ordered document so exports are diffable run to run
	doc := orderedmap.New()
	doc.Set("dashboard_id", dashboardID)
	doc.Set("generated_at", time.Now().UTC().Format(time.RFC3339))
	if cfg.Watermark != "" {
		doc.Set("watermark", cfg.Watermark)
	}
	if active != nil {
		doc.Set("version", active.Version)
		doc.Set("version_name", active.Name)
	}
	doc.Set("widgets", widgets)
	doc.Set("layout", layout)
	doc.Set("settings", settings)
	if cfg.IncludeVersionHistory {
		doc.Set("version_history", history)
	}

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, "", err
	}
	return b, "application/json", nil
}

func renderCSV(widgets []version.Widget) ([]byte, string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"id", "type", "title", "x", "y", "w", "h"}); err != nil {
		return nil, "", err
	}
	for _, wd := range widgets {
		row := []string{
			wd.ID,
			wd.Type,
			wd.Title,
			strconv.Itoa(wd.Position.X),
			strconv.Itoa(wd.Position.Y),
			strconv.Itoa(wd.Position.W),
			strconv.Itoa(wd.Position.H),
		}
		if err := w.Write(row); err != nil {
			return nil, "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "text/csv", nil
}

func renderXLSX(widgets []version.Widget, history []versionSummary, cfg ExportConfig) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Widgets"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E2E8F0"}},
	})

	headers := []string{"id", "type", "title", "x", "y", "w", "h"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, "", err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, "", err
		}
	}
	_ = f.SetCellStyle(sheet, "A1", "G1", headerStyle)

	for r, wd := range widgets {
		values := []any{wd.ID, wd.Type, wd.Title, wd.Position.X, wd.Position.Y, wd.Position.W, wd.Position.H}
		for c, v := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, "", err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, "", err
			}
		}
	}

	if cfg.IncludeVersionHistory {
		const historySheet = "Versions"
		if _, err := f.NewSheet(historySheet); err != nil {
			return nil, "", err
		}
		historyHeaders := []string{"id", "version", "name", "created_at", "active"}
		for i, h := range historyHeaders {
			cell, err := excelize.CoordinatesToCellName(i+1, 1)
			if err != nil {
				return nil, "", err
			}
			if err := f.SetCellValue(historySheet, cell, h); err != nil {
				return nil, "", err
			}
		}
		_ = f.SetCellStyle(historySheet, "A1", "E1", headerStyle)

		for r, v := range history {
			values := []any{v.ID, v.Version, v.Name, v.CreatedAt.Format(time.RFC3339), v.IsActive}
			for c, val := range values {
				cell, err := excelize.CoordinatesToCellName(c+1, r+2)
				if err != nil {
					return nil, "", err
				}
				if err := f.SetCellValue(historySheet, cell, val); err != nil {
					return nil, "", err
				}
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}
	return buf.Bytes(), xlsxContentType, nil
}

var htmlExportTemplate = template.Must(template.New("export").Parse(`<!DOCTYPE html>
<html>
<head><title>Dashboard {{.DashboardID}}</title></head>
<body>
<h1>Dashboard {{.DashboardID}}{{if .Version}} &mdash; v{{.Version}}{{end}}</h1>
{{if .Watermark}}<p class="watermark">{{.Watermark}}</p>{{end}}
<table border="1">
<tr><th>id</th><th>type</th><th>title</th><th>x</th><th>y</th><th>w</th><th>h</th></tr>
{{range .Widgets}}<tr><td>{{.ID}}</td><td>{{.Type}}</td><td>{{.Title}}</td><td>{{.Position.X}}</td><td>{{.Position.Y}}</td><td>{{.Position.W}}</td><td>{{.Position.H}}</td></tr>
{{end}}</table>
</body>
</html>
`))

func renderHTML(dashboardID string, active *version.DashboardVersion, widgets []version.Widget, cfg ExportConfig) ([]byte, string, error) {
	data := struct {
		DashboardID string
		Version     string
		Watermark   string
		Widgets     []version.Widget
	}{
		DashboardID: dashboardID,
		Watermark:   cfg.Watermark,
		Widgets:     widgets,
	}
	if active != nil {
		data.Version = active.Version
	}

	var buf bytes.Buffer
	if err := htmlExportTemplate.Execute(&buf, data); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "text/html", nil
}
