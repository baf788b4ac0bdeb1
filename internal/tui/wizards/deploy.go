// Package wizards contains the interactive flows built on the tui components.
package wizards

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/LuiseFreese/mermaid-sub004/internal/tui"
	"github.com/LuiseFreese/mermaid-sub004/internal/tui/components"
	"github.com/LuiseFreese/mermaid-sub004/pkg/mdv"
)

// DeployInputs is what the deploy wizard collects from the user.
type DeployInputs struct {
	DiagramPath string
	Request     mdv.DeploymentRequest
}

type deployStep int

const (
	stepPath deployStep = iota
	stepForm
	stepCDM
	stepDone
)

var wizardPrefixPattern = regexp.MustCompile(`^[a-z][a-z0-9]{1,7}$`)

// DeployWizard walks the user through the inputs needed for a deployment:
// the diagram file, the environment and solution coordinates, and whether
// matched entities should be integrated as canonical templates. Credentials
// are never collected here; they come from the environment.
type DeployWizard struct {
	step      deployStep
	path      components.TextField
	completer *components.PathCompleter
	pathErr   error
	form      components.Form
	cdm       components.Selector
	inputs    DeployInputs
	cancelled bool
}

// NewDeployWizard creates the wizard, prefilled from defaults so values
// resolved from config files or flags only need confirming.
func NewDeployWizard(defaults DeployInputs) DeployWizard {
	path := components.NewTextField("Diagram file", "schema.mmd").
		WithRequired(true).
		WithValue(defaults.DiagramPath)

	form := components.NewForm("Target environment",
		components.NewTextField("Environment URL", "https://org.crm.dynamics.com").
			WithRequired(true).
			WithValidator(validateEnvironmentURL).
			WithValue(defaults.Request.EnvironmentURL),
		components.NewTextField("Solution unique name", "MySolution").
			WithRequired(true).
			WithValue(defaults.Request.SolutionUniqueName),
		components.NewTextField("Publisher unique name", "MyPublisher").
			WithRequired(true).
			WithValue(defaults.Request.PublisherUniqueName),
		components.NewTextField("Publisher prefix", "contoso").
			WithRequired(true).
			WithValidator(validatePrefix).
			WithValue(defaults.Request.PublisherPrefix),
	)

	options := []components.Option{
		{Label: "No", Description: "Create every entity as a custom table", Value: "no"},
		{Label: "Yes", Description: "Reuse standard tables (account, contact, ...) where entities match", Value: "yes"},
	}
	cdm := components.NewSelector("Integrate matching standard entities?", options)

	return DeployWizard{
		path:      path,
		completer: components.NewPathCompleter(false).WithExtensions(".mmd", ".mermaid"),
		form:      form,
		cdm:       cdm,
		inputs:    defaults,
	}
}

func validateEnvironmentURL(value string) error {
	if value == "" {
		return nil
	}
	if !strings.HasPrefix(value, "https://") {
		return fmt.Errorf("must start with https://")
	}
	return nil
}

func validatePrefix(value string) error {
	if value == "" {
		return nil
	}
	if !wizardPrefixPattern.MatchString(value) {
		return fmt.Errorf("2-8 lowercase letters or digits, starting with a letter")
	}
	return nil
}

// Init implements tea.Model.
func (w DeployWizard) Init() tea.Cmd {
	return w.path.Focus()
}

// Update implements tea.Model.
func (w DeployWizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyCtrlC {
		w.cancelled = true
		return w, tea.Quit
	}

	switch w.step {
	case stepPath:
		return w.updatePath(msg)
	case stepForm:
		return w.updateForm(msg)
	case stepCDM:
		return w.updateCDM(msg)
	}
	return w, nil
}

func (w DeployWizard) updatePath(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyTab:
			w.path.SetValue(w.completer.Next(w.path.Value()))
			return w, nil
		case tea.KeyEsc:
			w.cancelled = true
			return w, tea.Quit
		case tea.KeyEnter:
			if err := w.path.Validate(); err != nil {
				return w, nil
			}
			value := strings.TrimSpace(w.path.Value())
			if _, err := os.Stat(value); err != nil {
				w.pathErr = fmt.Errorf("cannot read %s", value)
				return w, nil
			}
			w.pathErr = nil
			w.inputs.DiagramPath = value
			w.step = stepForm
			return w, w.form.Init()
		}
		w.completer.Reset()
	}

	var cmd tea.Cmd
	w.path, cmd = w.path.Update(msg)
	return w, cmd
}

func (w DeployWizard) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := w.form.Update(msg)
	w.form = model.(components.Form)

	if w.form.Cancelled() {
		w.cancelled = true
		return w, tea.Quit
	}
	if w.form.Submitted() {
		w.inputs.Request.EnvironmentURL = strings.TrimRight(strings.TrimSpace(w.form.FieldValue(0)), "/")
		w.inputs.Request.SolutionUniqueName = strings.TrimSpace(w.form.FieldValue(1))
		w.inputs.Request.PublisherUniqueName = strings.TrimSpace(w.form.FieldValue(2))
		w.inputs.Request.PublisherPrefix = strings.TrimSpace(w.form.FieldValue(3))
		w.step = stepCDM
		// Swallow the form's quit command; the wizard continues.
		return w, nil
	}
	return w, cmd
}

func (w DeployWizard) updateCDM(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := w.cdm.Update(msg)
	w.cdm = model.(components.Selector)

	if w.cdm.Cancelled() {
		w.cancelled = true
		return w, tea.Quit
	}
	if w.cdm.Submitted() {
		w.inputs.Request.IntegrateCDM = w.cdm.Value() == "yes"
		w.step = stepDone
		return w, tea.Quit
	}
	return w, cmd
}

// View implements tea.Model.
func (w DeployWizard) View() string {
	switch w.step {
	case stepPath:
		var b strings.Builder
		b.WriteString(tui.TitleStyle.Render("Deploy a schema"))
		b.WriteString("\n\n")
		b.WriteString(w.path.View())
		if w.pathErr != nil {
			b.WriteString("\n")
			b.WriteString(tui.ErrorStyle.Render(w.pathErr.Error()))
		}
		b.WriteString(tui.HelpStyle.Render("\ntab complete path • enter continue • esc cancel"))
		return b.String()
	case stepForm:
		return w.form.View()
	case stepCDM:
		return w.cdm.View()
	case stepDone:
		return w.summary()
	}
	return ""
}

func (w DeployWizard) summary() string {
	integrate := "no"
	if w.inputs.Request.IntegrateCDM {
		integrate = "yes"
	}
	lines := []string{
		tui.TitleStyle.Render("Ready to deploy"),
		fmt.Sprintf("  Diagram      %s", w.inputs.DiagramPath),
		fmt.Sprintf("  Environment  %s", w.inputs.Request.EnvironmentURL),
		fmt.Sprintf("  Solution     %s", w.inputs.Request.SolutionUniqueName),
		fmt.Sprintf("  Publisher    %s (%s)", w.inputs.Request.PublisherUniqueName, w.inputs.Request.PublisherPrefix),
		fmt.Sprintf("  Standard entities  %s", integrate),
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}

// Result returns the collected inputs. The second return is false when the
// wizard was cancelled or never completed.
func (w DeployWizard) Result() (DeployInputs, bool) {
	if w.cancelled || w.step != stepDone {
		return DeployInputs{}, false
	}
	return w.inputs, true
}

// RunDeployWizard runs the wizard on the terminal and returns the inputs.
// The second return is false when the user cancelled.
func RunDeployWizard(defaults DeployInputs) (DeployInputs, bool, error) {
	program := tea.NewProgram(NewDeployWizard(defaults))
	model, err := program.Run()
	if err != nil {
		return DeployInputs{}, false, fmt.Errorf("wizard failed: %w", err)
	}
	inputs, ok := model.(DeployWizard).Result()
	return inputs, ok, nil
}
