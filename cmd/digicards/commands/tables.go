package commands

import (
	"fmt"
	"os"
	"time"

	"digicards/internal/assets"
	"digicards/internal/catalog"
	"digicards/internal/ingest"
	"digicards/internal/store"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)
	return t
}

func formatRun(run ingest.Run) string {
	return fmt.Sprintf("%s (%s)", run.Id, run.Duration.Round(time.Millisecond))
}

func printBuild(run ingest.Run, report catalog.BuildReport) {
	t := newTable("Collections " + formatRun(run))
	t.AppendHeader(table.Row{"Collection", "Name", "Written", "Duplicates", "Failed", "Status"})

	for _, c := range report.Collections {
		status := "ok"
		switch {
		case c.Err != nil:
			status = c.Err.Error()
		case c.Empty:
			status = "no card list"
		}
		t.AppendRow(table.Row{
			c.Collection.Abbreviation,
			c.Collection.Name,
			c.Written,
			c.Duplicates,
			c.Failed,
			status,
		})
	}

	t.AppendFooter(table.Row{
		"",
		fmt.Sprintf("%d failed, %d empty", report.FailedCollections, report.EmptyCollections),
		report.Written,
		report.Duplicates,
		report.Failed,
		"",
	})
	t.Render()
}

func printFill(report store.FillReport) {
	t := newTable("Fill")
	t.AppendHeader(table.Row{"Inserted", "Duplicates"})
	t.AppendRow(table.Row{report.Inserted, report.Duplicates})
	t.Render()
}

func percent(part, total int64) string {
	if total == 0 {
		return "100%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)*100/float64(total))
}

func printImages(report assets.Report) {
	t := newTable("Images")
	t.AppendHeader(table.Row{"Total", "Submitted", "Succeeded", "Failed", "Skipped", "No image"})
	t.AppendRow(table.Row{
		report.Total,
		report.Submitted,
		report.Succeeded,
		report.Failed,
		fmt.Sprintf("%d (%s)", report.Skipped, percent(report.Skipped, report.Total)),
		report.NoImage,
	})
	t.Render()

	if len(report.Failures) == 0 {
		return
	}
	failures := newTable("Failed images")
	failures.AppendHeader(table.Row{"Card", "Error"})
	for _, f := range report.Failures {
		failures.AppendRow(table.Row{f.CardNumber, f.Err.Error()})
	}
	failures.Render()
}

func printCollections(statuses []ingest.CollectionStatus) {
	t := newTable("Collections")
	t.AppendHeader(table.Row{"Collection", "Name", "Known", "Cards"})
	for _, s := range statuses {
		known := ""
		if s.Known {
			known = "yes"
		}
		t.AppendRow(table.Row{s.Collection.Abbreviation, s.Collection.Name, known, s.Cards})
	}
	t.Render()
}
