package jobs

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/driftstream/driftstream-cli/internal/mock"
	"github.com/driftstream/driftstream-cli/internal/wizard"
)

func TestStepSourceValidationKeepsFlowAlive(t *testing.T) {
	ctx := context.Background()
	services := mock.NewServices()
	w := wizard.New(services)

	// An empty name re-runs the step instead of aborting the flow.
	reader := bufio.NewReader(strings.NewReader("new\n\n"))
	if err := stepSource(ctx, services, w, reader, nil); err != nil {
		t.Fatalf("stepSource() = %v, want nil", err)
	}
	if w.Step() != wizard.StepSource {
		t.Errorf("step = %s, want source", w.Step())
	}

	// Same for a missing connector type.
	reader = bufio.NewReader(strings.NewReader("new\nMy PG\n\n"))
	if err := stepSource(ctx, services, w, reader, nil); err != nil {
		t.Fatalf("stepSource() = %v, want nil", err)
	}
	if w.Step() != wizard.StepSource {
		t.Errorf("step = %s, want source", w.Step())
	}
}

func TestStepSourceFlowControlPropagates(t *testing.T) {
	ctx := context.Background()
	services := mock.NewServices()
	w := wizard.New(services)

	reader := bufio.NewReader(strings.NewReader("new\nsave\n"))
	if err := stepSource(ctx, services, w, reader, nil); err != errSaveDraft {
		t.Fatalf("stepSource() = %v, want the save-draft signal", err)
	}

	reader = bufio.NewReader(strings.NewReader("new\ncancel\n"))
	if err := stepSource(ctx, services, w, reader, nil); err != errCancel {
		t.Fatalf("stepSource() = %v, want the cancel signal", err)
	}
}

func TestStepDestinationValidationKeepsFlowAlive(t *testing.T) {
	ctx := context.Background()
	services := mock.NewServices()
	w := wizard.New(services)

	sources, err := services.Sources.List(ctx)
	if err != nil {
		t.Fatalf("failed to list sources: %v", err)
	}
	if err := w.UseExistingSource(&sources[0]); err != nil {
		t.Fatalf("UseExistingSource() failed: %v", err)
	}

	reader := bufio.NewReader(strings.NewReader("new\n\n"))
	if err := stepDestination(ctx, services, w, reader, nil); err != nil {
		t.Fatalf("stepDestination() = %v, want nil", err)
	}
	if w.Step() != wizard.StepDestination {
		t.Errorf("step = %s, want destination", w.Step())
	}
}
