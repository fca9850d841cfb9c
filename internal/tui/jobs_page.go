package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tidwall/gjson"

	"github.com/driftstream/driftstream-cli/internal/api"
)

// jobsPage lists replication jobs in a table.
type jobsPage struct {
	styles Styles
	table  table.Model
	jobs   []api.Job
}

func newJobsPage(styles Styles) jobsPage {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 5},
			{Title: "Name", Width: 26},
			{Title: "Active", Width: 7},
			{Title: "Source", Width: 20},
			{Title: "Destination", Width: 20},
			{Title: "Streams", Width: 8},
			{Title: "Frequency", Width: 10},
			{Title: "Last Run", Width: 10},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	return jobsPage{styles: styles, table: t}
}

func (p *jobsPage) setSize(width, height int) {
	p.table.SetHeight(height - 2)
}

func (p *jobsPage) setJobs(jobs []api.Job) {
	p.jobs = jobs
	rows := make([]table.Row, 0, len(jobs))
	for _, job := range jobs {
		active := "no"
		if job.Activate {
			active = "yes"
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", job.ID),
			job.Name,
			active,
			fmt.Sprintf("%s (%s)", job.Source.Name, job.Source.Type),
			fmt.Sprintf("%s (%s)", job.Destination.Name, job.Destination.Type),
			fmt.Sprintf("%d", streamCount(job.StreamsConfig)),
			job.Frequency,
			job.LastRunState,
		})
	}
	p.table.SetRows(rows)
}

func streamCount(streamsConfig string) int {
	if streamsConfig == "" {
		return 0
	}
	count := 0
	gjson.Get(streamsConfig, "selected_streams").ForEach(func(_, namespace gjson.Result) bool {
		count += len(namespace.Array())
		return true
	})
	return count
}

func (p jobsPage) Update(msg tea.Msg) (jobsPage, tea.Cmd) {
	var cmd tea.Cmd
	p.table, cmd = p.table.Update(msg)
	return p, cmd
}

func (p jobsPage) View() string {
	if len(p.jobs) == 0 {
		return p.styles.Muted.Render("\n  No jobs found. Press 'n' to create one.\n")
	}
	return p.table.View()
}
