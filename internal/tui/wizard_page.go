package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/driftstream/driftstream-cli/internal/api"
	"github.com/driftstream/driftstream-cli/internal/drafts"
	"github.com/driftstream/driftstream-cli/internal/store"
	"github.com/driftstream/driftstream-cli/internal/streamsel"
	"github.com/driftstream/driftstream-cli/internal/wizard"
)

// wizardDoneMsg closes the wizard page. Exactly one of job and draft is
// set on success paths; both nil means the flow was cancelled.
type wizardDoneMsg struct {
	job   *api.Job
	draft *drafts.Draft
}

type (
	streamsLoadedMsg *streamsel.Catalog
	wizardErrMsg     struct{ err error }
	jobCreatedMsg    *api.Job
	draftSavedMsg    *drafts.Draft
)

// row is one line of the stream selection list: a namespace header or a
// stream beneath it.
type row struct {
	namespace string
	stream    string // "" for namespace headers
	syncMode  streamsel.SyncMode
}

// wizardPage drives job creation inside the console. Existing connectors
// are picked from the lists; defining new connectors is the CLI flow's
// job.
type wizardPage struct {
	state  *store.Store
	drafts *drafts.Store
	styles Styles
	wiz    *wizard.Wizard

	width  int
	height int

	cursor     int
	busy       bool
	errText    string
	confirming bool

	// Schema step state.
	catalog    *streamsel.Catalog
	search     textinput.Model
	searching  bool
	chip       int
	rows       []row
	listOffset int

	// Config step state.
	nameInput  textinput.Model
	freqValue  textinput.Model
	freqUnit   int
	focusIndex int
}

func newWizardPage(state *store.Store, draftStore *drafts.Store, styles Styles, width, height int) *wizardPage {
	search := textinput.New()
	search.Placeholder = "Search streams..."
	search.CharLimit = 60
	search.Width = 30

	nameInput := textinput.New()
	nameInput.Placeholder = "Job name"
	nameInput.CharLimit = 80
	nameInput.Width = 40
	nameInput.Focus()

	freqValue := textinput.New()
	freqValue.SetValue("1")
	freqValue.CharLimit = 4
	freqValue.Width = 6

	return &wizardPage{
		state:     state,
		drafts:    draftStore,
		styles:    styles,
		wiz:       wizard.New(state.Services()),
		width:     width,
		height:    height,
		search:    search,
		nameInput: nameInput,
		freqValue: freqValue,
		freqUnit:  2, // days
	}
}

func (p *wizardPage) setSize(width, height int) {
	p.width = width
	p.height = height
}

func (p *wizardPage) Init() tea.Cmd {
	return nil
}

func (p *wizardPage) discoverStreams() tea.Cmd {
	return func() tea.Msg {
		catalog, err := p.wiz.DiscoverStreams(context.Background())
		if err != nil {
			return wizardErrMsg{err}
		}
		return streamsLoadedMsg(catalog)
	}
}

func (p *wizardPage) createJob() tea.Cmd {
	return func() tea.Msg {
		job, err := p.wiz.Create(context.Background())
		if err != nil {
			return wizardErrMsg{err}
		}
		_ = p.wiz.DeleteDraft(p.drafts)
		return jobCreatedMsg(job)
	}
}

func (p *wizardPage) saveDraft() tea.Cmd {
	return func() tea.Msg {
		draft, err := p.wiz.SaveDraft(p.drafts)
		if err != nil {
			return wizardErrMsg{err}
		}
		return draftSavedMsg(draft)
	}
}

func (p *wizardPage) Update(msg tea.Msg) (*wizardPage, tea.Cmd) {
	switch msg := msg.(type) {
	case streamsLoadedMsg:
		p.busy = false
		p.catalog = msg
		p.rebuildRows()
		return p, nil

	case wizardErrMsg:
		p.busy = false
		p.errText = msg.err.Error()
		return p, nil

	case jobCreatedMsg:
		return p, func() tea.Msg { return wizardDoneMsg{job: msg} }

	case draftSavedMsg:
		return p, func() tea.Msg { return wizardDoneMsg{draft: msg} }

	case tea.KeyMsg:
		if p.busy {
			return p, nil
		}
		return p.handleKey(msg)
	}
	return p, nil
}

func (p *wizardPage) handleKey(msg tea.KeyMsg) (*wizardPage, tea.Cmd) {
	key := msg.String()

	// Cancel confirmation only guards the first step; later steps go back.
	if p.confirming {
		switch key {
		case "y", "enter":
			return p, func() tea.Msg { return wizardDoneMsg{} }
		default:
			p.confirming = false
			return p, nil
		}
	}

	if key == "ctrl+s" {
		return p, p.saveDraft()
	}
	if key == "esc" && !p.searching {
		if p.wiz.AtStart() {
			p.confirming = true
			return p, nil
		}
		p.wiz.Back()
		p.cursor = 0
		p.errText = ""
		return p, nil
	}

	switch p.wiz.Step() {
	case wizard.StepSource:
		return p.updatePick(key, p.state.Sources(), func(entity *api.Entity) error {
			return p.wiz.UseExistingSource(entity)
		}, nil)
	case wizard.StepDestination:
		return p.updatePick(key, p.state.Destinations(), func(entity *api.Entity) error {
			return p.wiz.UseExistingDestination(entity)
		}, func() tea.Cmd {
			p.busy = true
			return p.discoverStreams()
		})
	case wizard.StepSchema:
		return p.updateSchema(msg)
	case wizard.StepConfig:
		return p.updateConfig(msg)
	}
	return p, nil
}

func (p *wizardPage) updatePick(key string, entities []api.Entity, pick func(*api.Entity) error, after func() tea.Cmd) (*wizardPage, tea.Cmd) {
	switch key {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(entities)-1 {
			p.cursor++
		}
	case "enter":
		if len(entities) == 0 {
			p.errText = "nothing to select; create a connector with the CLI first"
			return p, nil
		}
		entity := entities[p.cursor]
		if err := pick(&entity); err != nil {
			p.errText = err.Error()
			return p, nil
		}
		p.cursor = 0
		p.errText = ""
		if after != nil {
			return p, after()
		}
	}
	return p, nil
}

// visibleRows applies the search and chip filter before rendering.
func (p *wizardPage) rebuildRows() {
	p.rows = p.rows[:0]
	if p.catalog == nil {
		return
	}

	filter := streamsel.Filter{Search: p.search.Value()}
	if chip := streamsel.Chips[p.chip]; chip != streamsel.ChipAll {
		filter.Chips = []streamsel.FilterChip{chip}
	}
	visible := filter.Apply(p.catalog)

	grouped := make(map[string][]streamsel.StreamData)
	for _, sd := range visible {
		grouped[sd.Stream.Namespace] = append(grouped[sd.Stream.Namespace], sd)
	}
	for _, namespace := range p.catalog.Namespaces() {
		streams := grouped[namespace]
		if len(streams) == 0 {
			continue
		}
		p.rows = append(p.rows, row{namespace: namespace})
		for _, sd := range streams {
			p.rows = append(p.rows, row{
				namespace: namespace,
				stream:    sd.Stream.Name,
				syncMode:  sd.SyncMode,
			})
		}
	}
	if p.cursor >= len(p.rows) {
		p.cursor = 0
	}
}

func (p *wizardPage) updateSchema(msg tea.KeyMsg) (*wizardPage, tea.Cmd) {
	key := msg.String()

	if p.searching {
		switch key {
		case "enter", "esc":
			p.searching = false
			p.search.Blur()
		default:
			var cmd tea.Cmd
			p.search, cmd = p.search.Update(msg)
			p.rebuildRows()
			return p, cmd
		}
		p.rebuildRows()
		return p, nil
	}

	switch key {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.rows)-1 {
			p.cursor++
		}
	case "/":
		p.searching = true
		p.search.Focus()
	case "tab":
		p.chip = (p.chip + 1) % len(streamsel.Chips)
		p.rebuildRows()
	case "a":
		state := p.catalog.GlobalState()
		p.catalog.SetAll(!state.Checked)
		p.rebuildRows()
	case " ":
		if p.cursor < len(p.rows) {
			r := p.rows[p.cursor]
			if r.stream == "" {
				state := p.catalog.NamespaceState(r.namespace)
				p.catalog.SetNamespace(r.namespace, !state.Checked)
			} else if p.catalog.IsSelected(r.namespace, r.stream) {
				p.catalog.Deselect(r.namespace, r.stream)
			} else {
				p.catalog.Select(r.namespace, r.stream)
			}
			p.rebuildRows()
		}
	case "m":
		if p.cursor < len(p.rows) {
			r := p.rows[p.cursor]
			if r.stream != "" {
				mode := streamsel.SyncModeCDC
				if r.syncMode == streamsel.SyncModeCDC {
					mode = streamsel.SyncModeFullRefresh
				}
				p.catalog.SetSyncMode(r.namespace, r.stream, mode)
				p.rebuildRows()
			}
		}
	case "enter":
		if err := p.wiz.ConfirmSchema(); err != nil {
			p.errText = err.Error()
			return p, nil
		}
		p.errText = ""
		p.cursor = 0
		p.focusIndex = 0
		p.nameInput.Focus()
	}
	return p, nil
}

func (p *wizardPage) updateConfig(msg tea.KeyMsg) (*wizardPage, tea.Cmd) {
	key := msg.String()

	switch key {
	case "tab", "shift+tab":
		p.focusIndex = (p.focusIndex + 1) % 3
		p.nameInput.Blur()
		p.freqValue.Blur()
		switch p.focusIndex {
		case 0:
			p.nameInput.Focus()
		case 1:
			p.freqValue.Focus()
		}
		return p, nil
	case "left", "right":
		if p.focusIndex == 2 {
			if key == "right" {
				p.freqUnit = (p.freqUnit + 1) % len(wizard.FrequencyUnits)
			} else {
				p.freqUnit = (p.freqUnit + len(wizard.FrequencyUnits) - 1) % len(wizard.FrequencyUnits)
			}
			return p, nil
		}
	case "enter":
		p.wiz.SetJobName(strings.TrimSpace(p.nameInput.Value()))
		value, err := strconv.Atoi(strings.TrimSpace(p.freqValue.Value()))
		if err != nil {
			p.errText = "frequency value must be a number"
			return p, nil
		}
		if err := p.wiz.SetFrequency(value, wizard.FrequencyUnits[p.freqUnit]); err != nil {
			p.errText = err.Error()
			return p, nil
		}
		p.busy = true
		p.errText = ""
		return p, p.createJob()
	}

	var cmd tea.Cmd
	switch p.focusIndex {
	case 0:
		p.nameInput, cmd = p.nameInput.Update(msg)
	case 1:
		p.freqValue, cmd = p.freqValue.Update(msg)
	}
	return p, cmd
}

func (p *wizardPage) View() string {
	title := fmt.Sprintf("New job - step %d of 4", int(p.wiz.Step())+1)
	header := p.styles.Title.Render(title)

	var body string
	switch p.wiz.Step() {
	case wizard.StepSource:
		body = p.viewPick("Select a source", p.state.Sources())
	case wizard.StepDestination:
		body = p.viewPick("Select a destination", p.state.Destinations())
	case wizard.StepSchema:
		body = p.viewSchema()
	case wizard.StepConfig:
		body = p.viewConfig()
	}

	var footer string
	switch {
	case p.busy:
		footer = p.styles.Muted.Render("working...")
	case p.confirming:
		footer = p.styles.Error.Render("Discard this job? (y/n)")
	case p.errText != "":
		footer = p.styles.Error.Render(p.errText)
	default:
		footer = p.styles.Help.Render(p.helpLine())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (p *wizardPage) helpLine() string {
	switch p.wiz.Step() {
	case wizard.StepSchema:
		return "space select  a all  m sync mode  / search  tab filter  enter continue  ctrl+s save draft  esc back"
	case wizard.StepConfig:
		return "tab fields  left/right unit  enter create  ctrl+s save draft  esc back"
	default:
		return "up/down move  enter select  ctrl+s save draft  esc cancel"
	}
}

func (p *wizardPage) viewPick(prompt string, entities []api.Entity) string {
	var b strings.Builder
	b.WriteString("\n" + prompt + "\n\n")
	if len(entities) == 0 {
		b.WriteString(p.styles.Muted.Render("  none available\n"))
		return b.String()
	}
	for i, entity := range entities {
		line := fmt.Sprintf("  %s (%s %s)", entity.Name, entity.Type, entity.Version)
		if i == p.cursor {
			line = p.styles.Selected.Render("> " + strings.TrimPrefix(line, "  "))
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (p *wizardPage) viewSchema() string {
	if p.catalog == nil {
		return "\n" + p.styles.Muted.Render("  discovering streams...")
	}

	var chips []string
	for i, chip := range streamsel.Chips {
		if i == p.chip {
			chips = append(chips, p.styles.ChipOn.Render("["+string(chip)+"]"))
		} else {
			chips = append(chips, p.styles.ChipOff.Render(string(chip)))
		}
	}

	var b strings.Builder
	b.WriteString("\n" + p.search.View() + "   " + strings.Join(chips, " ") + "\n\n")

	global := p.catalog.GlobalState()
	b.WriteString(fmt.Sprintf("%s All streams (%d selected)\n", checkboxMark(global), p.catalog.SelectedCount()))

	maxRows := p.height - 8
	if maxRows < 5 {
		maxRows = 5
	}
	start := 0
	if p.cursor >= maxRows {
		start = p.cursor - maxRows + 1
	}
	for i := start; i < len(p.rows) && i < start+maxRows; i++ {
		r := p.rows[i]
		var line string
		if r.stream == "" {
			state := p.catalog.NamespaceState(r.namespace)
			line = fmt.Sprintf("%s %s", checkboxMark(state), r.namespace)
		} else {
			mark := "[ ]"
			if p.catalog.IsSelected(r.namespace, r.stream) {
				mark = "[x]"
			}
			line = fmt.Sprintf("  %s %s  %s", mark, r.stream, p.styles.Muted.Render(string(r.syncMode)))
		}
		if i == p.cursor {
			line = p.styles.Selected.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func checkboxMark(state streamsel.CheckState) string {
	switch {
	case state.Checked:
		return "[x]"
	case state.Partial:
		return "[~]"
	default:
		return "[ ]"
	}
}

func (p *wizardPage) viewConfig() string {
	unit := wizard.FrequencyUnits[p.freqUnit]
	unitView := unit
	if p.focusIndex == 2 {
		unitView = p.styles.Selected.Render("< " + unit + " >")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  Job name:  " + p.nameInput.View() + "\n\n")
	b.WriteString("  Run every: " + p.freqValue.View() + " " + unitView + "\n\n")
	b.WriteString(p.styles.Muted.Render("  The job is created paused; resume it from the jobs page.\n"))
	return b.String()
}
