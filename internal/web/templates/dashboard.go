package templates

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/equipviz/internal/core"
	"github.com/JonMunkholm/equipviz/internal/history"
)

// DashboardData is everything the dashboard page shows.
type DashboardData struct {
	View         core.View
	History      []history.Entry
	HistoryError string
	Leaderboard  []core.EfficiencyEntry
	Search       string
}

var medals = []string{"🥇", "🥈", "🥉"}

// Dashboard renders the full page.
func Dashboard(d DashboardData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, pageHead); err != nil {
			return err
		}

		if err := uploadForm(ctx, w); err != nil {
			return err
		}

		if !d.View.Loaded() {
			if _, err := io.WriteString(w, `<p class="empty">Upload a CSV or XLSX file to begin.</p>`); err != nil {
				return err
			}
		} else if err := loadedView(ctx, w, d); err != nil {
			return err
		}

		if err := historyPanel(w, d); err != nil {
			return err
		}

		_, err := io.WriteString(w, pageTail)
		return err
	})
}

func uploadForm(_ context.Context, w io.Writer) error {
	_, err := io.WriteString(w, `<form id="upload" method="post" action="/api/upload" enctype="multipart/form-data">`+
		`<input type="file" name="file" accept=".csv,.xlsx" required> <button type="submit">Analyze</button></form>`+
		`<div id="alerts"></div>`)
	return err
}

func loadedView(ctx context.Context, w io.Writer, d DashboardData) error {
	s := d.View.Summary

	fmt.Fprintf(w, `<h3>%s</h3><div class="kpis">`, templ.EscapeString(d.View.Source))
	cards := []templ.Component{
		KPICard("Total Units", strconv.Itoa(s.UnitCount), "#3b82f6"),
		KPICard("Avg Pressure", FormatOptional(s.AvgPressure, "bar"), "#10b981"),
		KPICard("Max Temp", FormatOptional(s.MaxTemperature, "°C"), "#ef4444"),
		KPICard("Avg Flowrate", FormatOptional(s.AvgFlowrate, ""), "#f59e0b"),
	}
	for _, c := range cards {
		if err := c.Render(ctx, w); err != nil {
			return err
		}
	}
	io.WriteString(w, `</div>`)

	io.WriteString(w, `<div class="panel"><h4>Type Distribution</h4><ul id="distribution">`)
	for _, c := range s.Categories {
		fmt.Fprintf(w, `<li data-type="%s">%s: <span>0</span></li>`,
			templ.EscapeString(c.Category), templ.EscapeString(c.Category))
	}
	io.WriteString(w, `</ul></div>`)

	io.WriteString(w, `<div class="panel"><h4>Leaderboard</h4><ol>`)
	for i, e := range d.Leaderboard {
		medal := ""
		if i < len(medals) {
			medal = medals[i]
		}
		fmt.Fprintf(w, `<li><strong>%s %s</strong><br><small>Efficiency: %.2f</small></li>`,
			templ.EscapeString(e.Name), medal, e.Ratio)
	}
	io.WriteString(w, `</ol></div>`)

	fmt.Fprintf(w, `<form method="get" action="/"><input type="search" name="search" value="%s" placeholder="Search equipment"></form>`,
		templ.EscapeString(d.Search))
	io.WriteString(w, `<table><thead><tr><th>Name</th><th>Type</th><th>Pressure</th><th>Temperature</th><th>Flowrate</th></tr></thead><tbody>`)
	for _, r := range d.View.Search(d.Search) {
		class := ""
		if r.Overheated() {
			class = ` class="hot"`
		}
		fmt.Fprintf(w, `<tr><td>%s</td><td>%s</td><td>%g bar</td><td%s>%g °C</td><td>%g</td></tr>`,
			templ.EscapeString(r.Name), templ.EscapeString(r.Type), r.Pressure, class, r.Temperature, r.Flowrate)
	}
	_, err := io.WriteString(w, `</tbody></table>`)
	return err
}

func historyPanel(w io.Writer, d DashboardData) error {
	io.WriteString(w, `<div class="panel"><h4>Recent Uploads</h4>`)
	if d.HistoryError != "" {
		fmt.Fprintf(w, `<p class="warn">%s</p>`, templ.EscapeString(d.HistoryError))
	}
	io.WriteString(w, `<ol>`)
	for _, e := range d.History {
		fmt.Fprintf(w, `<li>%s<br><small>%s · %d units · %s bar</small></li>`,
			templ.EscapeString(e.SourceName), templ.EscapeString(e.UploadTime()), e.UnitCount, pressureOrZero(e.AvgPressure))
	}
	_, err := io.WriteString(w, `</ol></div>`)
	return err
}

func pressureOrZero(v *float64) string {
	if v == nil {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", *v)
}

const pageHead = `<!DOCTYPE html>
<html lang="en"><head><meta charset="utf-8"><title>Chemical Equipment Visualizer</title>
<style>
body{font-family:system-ui,sans-serif;background:#f8fafc;margin:2rem}
.kpis{display:flex;gap:1rem}.card,.panel{background:#fff;padding:1rem;border-radius:8px;margin:.5rem 0}
.hot{color:#dc2626;font-weight:bold}.alert-error{background:#fee2e2;padding:.75rem;border-radius:6px}
table{width:100%;border-collapse:collapse;background:#fff}td,th{padding:.4rem;border-bottom:1px solid #e2e8f0}
</style></head><body><h1>Chemical Equipment Visualizer</h1>
`

const pageTail = `<script>
document.getElementById("upload").addEventListener("submit", async (ev) => {
  ev.preventDefault();
  const res = await fetch("/api/upload", {method: "POST", body: new FormData(ev.target), headers: {"Accept": "text/html"}});
  if (res.ok) { location.reload(); return; }
  document.getElementById("alerts").innerHTML = await res.text();
});
const list = document.getElementById("distribution");
if (list) {
  const src = new EventSource("/api/frames");
  src.addEventListener("frame", (ev) => {
    const f = JSON.parse(ev.data);
    for (const s of f.slices) {
      const li = list.querySelector('[data-type="' + CSS.escape(s.category) + '"] span');
      if (!li) continue;
      li.textContent = s.count + (f.percentages_visible ? " (" + s.percent.toFixed(1) + "%)" : "");
    }
  });
  src.addEventListener("complete", () => src.close());
}
</script></body></html>
`
