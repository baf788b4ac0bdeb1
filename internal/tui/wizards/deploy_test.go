package wizards

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/LuiseFreese/mermaid-sub004/pkg/mdv"
)

func press(t *testing.T, w DeployWizard, key tea.KeyType) DeployWizard {
	t.Helper()
	model, _ := w.Update(tea.KeyMsg{Type: key})
	return model.(DeployWizard)
}

func writeDiagram(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.mmd")
	if err := os.WriteFile(path, []byte("erDiagram\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func validDefaults(diagram string) DeployInputs {
	return DeployInputs{
		DiagramPath: diagram,
		Request: mdv.DeploymentRequest{
			EnvironmentURL:      "https://contoso.crm.dynamics.com",
			SolutionUniqueName:  "CustomerSolution",
			PublisherUniqueName: "ContosoPublisher",
			PublisherPrefix:     "ctso",
		},
	}
}

func TestDeployWizard_AcceptsPrefilledDefaults(t *testing.T) {
	diagram := writeDiagram(t)
	w := NewDeployWizard(validDefaults(diagram))
	w.Init()

	// Enter on the path step, then once per form field, then the selector.
	w = press(t, w, tea.KeyEnter)
	if w.step != stepForm {
		t.Fatalf("expected stepForm after path, got %d", w.step)
	}
	for i := 0; i < 4; i++ {
		w = press(t, w, tea.KeyEnter)
	}
	if w.step != stepCDM {
		t.Fatalf("expected stepCDM after form, got %d", w.step)
	}
	w = press(t, w, tea.KeyEnter)

	inputs, ok := w.Result()
	if !ok {
		t.Fatal("expected completed wizard")
	}
	if inputs.DiagramPath != diagram {
		t.Errorf("DiagramPath = %q, want %q", inputs.DiagramPath, diagram)
	}
	if inputs.Request.SolutionUniqueName != "CustomerSolution" {
		t.Errorf("SolutionUniqueName = %q", inputs.Request.SolutionUniqueName)
	}
	if inputs.Request.IntegrateCDM {
		t.Error("expected IntegrateCDM=false for the default option")
	}
}

func TestDeployWizard_SelectingYesEnablesIntegration(t *testing.T) {
	diagram := writeDiagram(t)
	w := NewDeployWizard(validDefaults(diagram))
	w.Init()

	w = press(t, w, tea.KeyEnter)
	for i := 0; i < 4; i++ {
		w = press(t, w, tea.KeyEnter)
	}
	w = press(t, w, tea.KeyDown)
	w = press(t, w, tea.KeyEnter)

	inputs, ok := w.Result()
	if !ok {
		t.Fatal("expected completed wizard")
	}
	if !inputs.Request.IntegrateCDM {
		t.Error("expected IntegrateCDM=true after selecting yes")
	}
}

func TestDeployWizard_MissingDiagramBlocksPathStep(t *testing.T) {
	defaults := validDefaults(filepath.Join(t.TempDir(), "absent.mmd"))
	w := NewDeployWizard(defaults)
	w.Init()

	w = press(t, w, tea.KeyEnter)
	if w.step != stepPath {
		t.Fatalf("expected to stay on path step, got %d", w.step)
	}
	if w.pathErr == nil {
		t.Error("expected a path error for a missing file")
	}
	if !strings.Contains(w.View(), "cannot read") {
		t.Error("expected the error in the view")
	}
}

func TestDeployWizard_InvalidPrefixBlocksForm(t *testing.T) {
	diagram := writeDiagram(t)
	defaults := validDefaults(diagram)
	defaults.Request.PublisherPrefix = "BadPrefix"
	w := NewDeployWizard(defaults)
	w.Init()

	w = press(t, w, tea.KeyEnter)
	for i := 0; i < 4; i++ {
		w = press(t, w, tea.KeyEnter)
	}
	if w.step != stepForm {
		t.Fatalf("expected form to reject invalid prefix, got step %d", w.step)
	}
	if _, ok := w.Result(); ok {
		t.Error("expected incomplete result")
	}
}

func TestDeployWizard_TabCompletesDiagramPath(t *testing.T) {
	dir := t.TempDir()
	diagram := filepath.Join(dir, "schema.mmd")
	if err := os.WriteFile(diagram, []byte("erDiagram\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	defaults := DeployInputs{DiagramPath: dir + string(filepath.Separator)}
	w := NewDeployWizard(defaults)
	w.Init()

	w = press(t, w, tea.KeyTab)
	if got := w.path.Value(); got != diagram {
		t.Errorf("tab completion = %q, want %q", got, diagram)
	}
}

func TestDeployWizard_EscCancels(t *testing.T) {
	w := NewDeployWizard(DeployInputs{})
	w.Init()

	w = press(t, w, tea.KeyEsc)
	if !w.cancelled {
		t.Error("expected cancelled after esc")
	}
	if _, ok := w.Result(); ok {
		t.Error("expected no result after cancel")
	}
}

func TestDeployWizard_CtrlCCancelsAnywhere(t *testing.T) {
	diagram := writeDiagram(t)
	w := NewDeployWizard(validDefaults(diagram))
	w.Init()

	w = press(t, w, tea.KeyEnter)
	w = press(t, w, tea.KeyCtrlC)
	if !w.cancelled {
		t.Error("expected cancelled after ctrl+c")
	}
}
