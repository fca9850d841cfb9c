package destinations

import (
	"bufio"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/driftstream/driftstream-cli/internal/mock"
	"github.com/driftstream/driftstream-cli/internal/schemaform"
)

func TestMain(m *testing.M) {
	mock.Latency = 0
	os.Exit(m.Run())
}

func TestFindDestination(t *testing.T) {
	ctx := context.Background()
	services := mock.NewServices()

	byID, err := findDestination(ctx, services.Destinations, "2")
	if err != nil {
		t.Fatalf("lookup by id failed: %v", err)
	}
	if byID.ID != 2 {
		t.Errorf("lookup by id returned destination %d, want 2", byID.ID)
	}

	byName, err := findDestination(ctx, services.Destinations, byID.Name)
	if err != nil {
		t.Fatalf("lookup by name failed: %v", err)
	}
	if byName.ID != byID.ID {
		t.Errorf("lookup by name returned destination %d, want %d", byName.ID, byID.ID)
	}

	if _, err := findDestination(ctx, services.Destinations, "no such destination"); err == nil {
		t.Fatalf("expected error for unknown destination")
	}
}

func TestChooseVersion(t *testing.T) {
	ctx := context.Background()
	services := mock.NewServices()

	// An explicit version wins without prompting.
	version, err := chooseVersion(ctx, services.Destinations, "s3", "v0.2.0", nil)
	if err != nil || version != "v0.2.0" {
		t.Fatalf("chooseVersion() = %q, %v", version, err)
	}

	// Empty input takes the first advertised version.
	reader := bufio.NewReader(strings.NewReader("\n"))
	version, err = chooseVersion(ctx, services.Destinations, "s3", "", reader)
	if err != nil || version != "latest" {
		t.Fatalf("chooseVersion() = %q, %v", version, err)
	}

	reader = bufio.NewReader(strings.NewReader("v0.1.0\n"))
	version, err = chooseVersion(ctx, services.Destinations, "s3", "", reader)
	if err != nil || version != "v0.1.0" {
		t.Fatalf("chooseVersion() = %q, %v", version, err)
	}
}

func TestPromptConfigValidatesInput(t *testing.T) {
	ctx := context.Background()
	services := mock.NewServices()

	// Both required s3 fields supplied as argument overrides.
	prompter := schemaform.NewPrompter(bufio.NewReader(strings.NewReader("")), []string{
		"--s3_bucket=sales-lake",
		"--s3_region=us-east-1",
	})
	config, err := promptConfig(ctx, services.Destinations, "s3", "latest", prompter, nil)
	if err != nil {
		t.Fatalf("promptConfig() failed: %v", err)
	}
	if !strings.Contains(config, `"s3_bucket":"sales-lake"`) {
		t.Errorf("config missing supplied value: %s", config)
	}

	// A missing required field fails validation instead of producing a config.
	prompter = schemaform.NewPrompter(bufio.NewReader(strings.NewReader("")), []string{
		"--s3_bucket=sales-lake",
	})
	if _, err := promptConfig(ctx, services.Destinations, "s3", "latest", prompter, nil); err == nil {
		t.Fatalf("expected validation failure for incomplete config")
	}
}

func TestDeleteDestinationWithJobsNeedsConfirmation(t *testing.T) {
	ctx := context.Background()
	services := mock.NewServices()

	// "AWS S3 Data Lake" has a dependent job; refusing keeps it.
	if err := DeleteDestination(ctx, services.Destinations, "AWS S3 Data Lake", false, strings.NewReader("no\n")); err != nil {
		t.Fatalf("DeleteDestination() failed: %v", err)
	}
	if _, err := findDestination(ctx, services.Destinations, "AWS S3 Data Lake"); err != nil {
		t.Fatalf("destination was deleted despite the refused confirmation")
	}

	// Confirming deletes it.
	if err := DeleteDestination(ctx, services.Destinations, "AWS S3 Data Lake", false, strings.NewReader("y\n")); err != nil {
		t.Fatalf("DeleteDestination() failed: %v", err)
	}
	if _, err := findDestination(ctx, services.Destinations, "AWS S3 Data Lake"); err == nil {
		t.Fatalf("destination still present after a confirmed delete")
	}
}

func TestDeleteDestinationForceSkipsPrompt(t *testing.T) {
	ctx := context.Background()
	services := mock.NewServices()

	if err := DeleteDestination(ctx, services.Destinations, "AWS Glue Analytics", true, strings.NewReader("")); err != nil {
		t.Fatalf("DeleteDestination() failed: %v", err)
	}
	if _, err := findDestination(ctx, services.Destinations, "AWS Glue Analytics"); err == nil {
		t.Fatalf("destination still present after --force delete")
	}
}
