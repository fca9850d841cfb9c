package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/driftstream/driftstream-cli/internal/api"
	"github.com/driftstream/driftstream-cli/internal/drafts"
	"github.com/driftstream/driftstream-cli/internal/store"
)

type page int

const (
	pageSources page = iota
	pageDestinations
	pageJobs
	pageWizard
)

var pageNames = []string{"Sources", "Destinations", "Jobs", "New Job"}

// Messages produced by background commands.
type (
	sourcesLoadedMsg      []api.Entity
	destinationsLoadedMsg []api.Entity
	jobsLoadedMsg         []api.Job
	errMsg                struct{ err error }
	statusMsg             string
)

// App is the root console model: a tab bar over the entity pages and the
// job-creation flow.
type App struct {
	state  *store.Store
	drafts *drafts.Store
	styles Styles

	page    page
	width   int
	height  int
	loading bool
	spin    spinner.Model

	sources      entityPage
	destinations entityPage
	jobs         jobsPage
	wizard       *wizardPage

	status string
	err    error
}

// Run starts the console and blocks until the user quits.
func Run(services *api.Services, draftStore *drafts.Store) error {
	app := NewApp(services, draftStore)
	_, err := tea.NewProgram(app, tea.WithAltScreen()).Run()
	return err
}

// NewApp builds the console model.
func NewApp(services *api.Services, draftStore *drafts.Store) *App {
	styles := DefaultStyles()
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(colorAccent)

	return &App{
		state:        store.New(services),
		drafts:       draftStore,
		styles:       styles,
		spin:         spin,
		loading:      true,
		sources:      newEntityPage(styles, "source"),
		destinations: newEntityPage(styles, "destination"),
		jobs:         newJobsPage(styles),
	}
}

// Init kicks off the initial data load.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spin.Tick, a.loadSources(), a.loadDestinations(), a.loadJobs())
}

func (a *App) loadSources() tea.Cmd {
	return func() tea.Msg {
		sources, err := a.state.FetchSources(context.Background())
		if err != nil {
			return errMsg{err}
		}
		return sourcesLoadedMsg(sources)
	}
}

func (a *App) loadDestinations() tea.Cmd {
	return func() tea.Msg {
		destinations, err := a.state.FetchDestinations(context.Background())
		if err != nil {
			return errMsg{err}
		}
		return destinationsLoadedMsg(destinations)
	}
}

func (a *App) loadJobs() tea.Cmd {
	return func() tea.Msg {
		jobs, err := a.state.FetchJobs(context.Background())
		if err != nil {
			return errMsg{err}
		}
		return jobsLoadedMsg(jobs)
	}
}

// Update handles messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.sources.setSize(msg.Width, msg.Height-4)
		a.destinations.setSize(msg.Width, msg.Height-4)
		a.jobs.setSize(msg.Width, msg.Height-4)
		if a.wizard != nil {
			a.wizard.setSize(msg.Width, msg.Height-4)
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case sourcesLoadedMsg:
		a.sources.setEntities([]api.Entity(msg))
		a.loading = a.state.Loading()
		return a, nil

	case destinationsLoadedMsg:
		a.destinations.setEntities([]api.Entity(msg))
		a.loading = a.state.Loading()
		return a, nil

	case jobsLoadedMsg:
		a.jobs.setJobs([]api.Job(msg))
		a.loading = a.state.Loading()
		return a, nil

	case errMsg:
		a.err = msg.err
		a.loading = a.state.Loading()
		return a, nil

	case statusMsg:
		a.status = string(msg)
		return a, nil

	case wizardDoneMsg:
		a.page = pageJobs
		a.wizard = nil
		if msg.job != nil {
			a.status = fmt.Sprintf("Created job '%s'", msg.job.Name)
			return a, a.loadJobs()
		}
		if msg.draft != nil {
			a.status = fmt.Sprintf("Saved draft %s", msg.draft.ID)
		}
		return a, nil

	case tea.KeyMsg:
		// The wizard owns all keys while it is open.
		if a.page == pageWizard && a.wizard != nil {
			if msg.String() == "ctrl+c" {
				return a, tea.Quit
			}
			var cmd tea.Cmd
			a.wizard, cmd = a.wizard.Update(msg)
			return a, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return a, tea.Quit
		case "1":
			a.page = pageSources
		case "2":
			a.page = pageDestinations
		case "3":
			a.page = pageJobs
		case "n":
			a.wizard = newWizardPage(a.state, a.drafts, a.styles, a.width, a.height-4)
			a.page = pageWizard
			return a, a.wizard.Init()
		case "r":
			a.err = nil
			a.status = ""
			a.loading = true
			return a, tea.Batch(a.loadSources(), a.loadDestinations(), a.loadJobs())
		}
	}

	var cmd tea.Cmd
	switch a.page {
	case pageSources:
		a.sources, cmd = a.sources.Update(msg)
	case pageDestinations:
		a.destinations, cmd = a.destinations.Update(msg)
	case pageJobs:
		a.jobs, cmd = a.jobs.Update(msg)
	}
	return a, cmd
}

// View renders the tab bar, the active page, and the status line.
func (a *App) View() string {
	var tabs string
	for i, name := range pageNames {
		if page(i) == a.page {
			tabs += a.styles.TabActive.Render(name)
		} else {
			tabs += a.styles.Tab.Render(name)
		}
	}
	header := a.styles.Title.Render("DriftStream") + tabs

	var body string
	switch a.page {
	case pageSources:
		body = a.sources.View()
	case pageDestinations:
		body = a.destinations.View()
	case pageJobs:
		body = a.jobs.View()
	case pageWizard:
		if a.wizard != nil {
			body = a.wizard.View()
		}
	}

	var footer string
	switch {
	case a.loading:
		footer = a.spin.View() + " loading..."
	case a.err != nil:
		footer = a.styles.Error.Render("Error: " + a.err.Error())
	case a.status != "":
		footer = a.styles.Status.Render(a.status)
	default:
		footer = a.styles.Help.Render("1/2/3 pages  n new job  r refresh  q quit")
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}
