package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/driftstream/driftstream-cli/internal/api"
)

// entityPage lists sources or destinations in a table.
type entityPage struct {
	kind     string
	styles   Styles
	table    table.Model
	entities []api.Entity
}

func newEntityPage(styles Styles, kind string) entityPage {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 5},
			{Title: "Name", Width: 30},
			{Title: "Connector", Width: 12},
			{Title: "Version", Width: 10},
			{Title: "Jobs", Width: 6},
			{Title: "Created By", Width: 14},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	return entityPage{kind: kind, styles: styles, table: t}
}

func (p *entityPage) setSize(width, height int) {
	p.table.SetHeight(height - 2)
}

func (p *entityPage) setEntities(entities []api.Entity) {
	p.entities = entities
	rows := make([]table.Row, 0, len(entities))
	for _, entity := range entities {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", entity.ID),
			entity.Name,
			entity.Type,
			entity.Version,
			fmt.Sprintf("%d", len(entity.Jobs)),
			entity.CreatedBy,
		})
	}
	p.table.SetRows(rows)
}

// selected returns the entity under the cursor, nil when the list is empty.
func (p *entityPage) selected() *api.Entity {
	index := p.table.Cursor()
	if index < 0 || index >= len(p.entities) {
		return nil
	}
	return &p.entities[index]
}

func (p entityPage) Update(msg tea.Msg) (entityPage, tea.Cmd) {
	var cmd tea.Cmd
	p.table, cmd = p.table.Update(msg)
	return p, cmd
}

func (p entityPage) View() string {
	if len(p.entities) == 0 {
		return p.styles.Muted.Render(fmt.Sprintf("\n  No %ss found\n", p.kind))
	}
	return p.table.View()
}
