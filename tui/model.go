package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/poiesic/claimdesk/session"
)

// snapshotMsg delivers a controller snapshot to the model.
type snapshotMsg struct {
	snapshot session.Snapshot
}

// Model is the bubbletea model of the search box.
type Model struct {
	ctrl        *session.Controller
	input       textinput.Model
	snapshot    session.Snapshot
	events      chan session.Snapshot
	unsubscribe func()
	keys        KeyMap
	styles      Styles
	width       int
}

// NewModel creates a search box driven by ctrl. Call Close when the
// program exits to stop receiving snapshots.
func NewModel(ctrl *session.Controller) Model {
	input := textinput.New()
	input.Placeholder = "Search claims and variations"
	input.Prompt = "> "
	input.Focus()

	events := make(chan session.Snapshot, 1)
	unsubscribe := ctrl.Subscribe(func(snapshot session.Snapshot) {
		deliverLatest(events, snapshot)
	})

	styles := DefaultStyles()
	input.PromptStyle = styles.Prompt

	return Model{
		ctrl:        ctrl,
		input:       input,
		snapshot:    ctrl.Snapshot(),
		events:      events,
		unsubscribe: unsubscribe,
		keys:        DefaultKeyMap,
		styles:      styles,
	}
}

// deliverLatest puts snapshot on the channel, replacing any snapshot the
// model has not consumed yet.
func deliverLatest(events chan session.Snapshot, snapshot session.Snapshot) {
	for {
		select {
		case events <- snapshot:
			return
		default:
		}
		select {
		case <-events:
		default:
		}
	}
}

// listenForSnapshot returns a tea.Cmd that blocks until a snapshot
// arrives, then delivers it as a snapshotMsg.
func listenForSnapshot(events <-chan session.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snapshot, ok := <-events
		if !ok {
			return nil
		}
		return snapshotMsg{snapshot: snapshot}
	}
}

// Close stops the subscription to the controller.
func (model Model) Close() {
	model.unsubscribe()
}

// Snapshot returns the state the model is currently drawing.
func (model Model) Snapshot() session.Snapshot {
	return model.snapshot
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, listenForSnapshot(model.events))
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case snapshotMsg:
		if message.snapshot.Version >= model.snapshot.Version {
			model.snapshot = message.snapshot
		}
		return model, listenForSnapshot(model.events)

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.input.Width = max(message.Width-4, 10)
		return model, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(message, model.keys.Quit):
			return model, tea.Quit
		case key.Matches(message, model.keys.Hide):
			model.ctrl.Hide()
			return model, nil
		case key.Matches(message, model.keys.Show):
			model.ctrl.Show()
			return model, nil
		}
	}

	previous := model.input.Value()
	var cmd tea.Cmd
	model.input, cmd = model.input.Update(message)
	if value := model.input.Value(); value != previous {
		model.ctrl.SetQuery(value)
	}
	return model, cmd
}

// View implements tea.Model.
func (model Model) View() string {
	var b strings.Builder
	b.WriteString(model.input.View())
	b.WriteString("\n")

	if model.snapshot.PanelOpen() {
		b.WriteString(model.renderPanel())
		b.WriteString("\n")
	}

	b.WriteString(model.styles.Help.Render(fmt.Sprintf("%s %s • %s %s • %s %s",
		model.keys.Hide.Help().Key, model.keys.Hide.Help().Desc,
		model.keys.Show.Help().Key, model.keys.Show.Help().Desc,
		model.keys.Quit.Help().Key, model.keys.Quit.Help().Desc,
	)))
	return b.String()
}

func (model Model) renderPanel() string {
	snapshot := model.snapshot
	var lines []string

	switch snapshot.State {
	case session.StateLoading:
		lines = append(lines, model.styles.Muted.Render("Searching..."))
	case session.StateError:
		lines = append(lines, model.styles.Error.Render("Search failed: "+errorText(snapshot.Err)))
	case session.StateSuccess:
		if !snapshot.HasResults() {
			lines = append(lines, model.styles.Muted.Render("No results"))
		}
		for _, result := range snapshot.Results {
			lines = append(lines, fmt.Sprintf("%s  %s  %s",
				model.styles.Module.Render("["+result.Module+"]"),
				model.styles.Title.Render(result.Title),
				model.styles.Status.Render(string(result.Status)),
			))
		}
		if snapshot.Err != nil {
			lines = append(lines, model.styles.Error.Render("Some results are missing: "+errorText(snapshot.Err)))
		}
	}

	panel := model.styles.Panel
	if model.width > 0 {
		panel = panel.Width(model.width - 2)
	}
	return panel.Render(strings.Join(lines, "\n"))
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

// Run starts an interactive search box on the terminal and blocks until
// the user quits.
func Run(ctrl *session.Controller, opts ...tea.ProgramOption) error {
	model := NewModel(ctrl)
	defer model.Close()

	_, err := tea.NewProgram(model, opts...).Run()
	return err
}
