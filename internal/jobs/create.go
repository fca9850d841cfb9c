package jobs

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/driftstream/driftstream-cli/internal/api"
	"github.com/driftstream/driftstream-cli/internal/drafts"
	"github.com/driftstream/driftstream-cli/internal/schemaform"
	"github.com/driftstream/driftstream-cli/internal/streamsel"
	"github.com/driftstream/driftstream-cli/internal/wizard"
)

// CreateJob walks the job-creation flow on the terminal: source,
// destination, stream selection, then name and schedule. Progress can be
// saved as a draft at every step.
func CreateJob(ctx context.Context, services *api.Services, draftStore *drafts.Store, args []string) error {
	return runWizard(ctx, services, draftStore, wizard.New(services), args)
}

// EditJob re-opens the flow seeded from an existing job, starting at the
// stream selection. Saving posts an update instead of creating a new job.
func EditJob(ctx context.Context, services *api.Services, draftStore *drafts.Store, nameOrID string, args []string) error {
	job, err := findJob(ctx, services.Jobs, nameOrID)
	if err != nil {
		return err
	}
	fmt.Printf("Editing job '%s'\n", job.Name)
	return runWizard(ctx, services, draftStore, wizard.Edit(services, job), args)
}

// ResumeDraft re-enters the flow from a saved draft.
func ResumeDraft(ctx context.Context, services *api.Services, draftStore *drafts.Store, draftID string, args []string) error {
	draft, err := draftStore.Get(draftID)
	if err != nil {
		return err
	}
	w := wizard.Resume(services, draft)
	fmt.Printf("Resuming draft '%s' at the %s step\n", draft.Name, w.Step())
	return runWizard(ctx, services, draftStore, w, args)
}

func runWizard(ctx context.Context, services *api.Services, draftStore *drafts.Store, w *wizard.Wizard, args []string) error {
	reader := bufio.NewReader(os.Stdin)

	for w.Step() != wizard.StepDone {
		var err error
		switch w.Step() {
		case wizard.StepSource:
			err = stepSource(ctx, services, w, reader, args)
		case wizard.StepDestination:
			err = stepDestination(ctx, services, w, reader, args)
		case wizard.StepSchema:
			err = stepSchema(ctx, w, reader)
		case wizard.StepConfig:
			err = stepConfig(ctx, w, reader)
		}
		if err == nil {
			continue
		}
		if err == errSaveDraft {
			draft, err := w.SaveDraft(draftStore)
			if err != nil {
				return err
			}
			fmt.Printf("Draft saved (ID: %s). Resume with 'jobs resume %s'\n", draft.ID, draft.ID)
			return nil
		}
		if err == errCancel {
			if !w.AtStart() {
				w.Back()
				continue
			}
			fmt.Print("Discard this job? (yes/no): ")
			answer, _ := reader.ReadString('\n')
			answer = strings.TrimSpace(strings.ToLower(answer))
			if answer == "yes" || answer == "y" {
				fmt.Println("Job creation cancelled")
				return nil
			}
			continue
		}
		return err
	}

	if err := w.DeleteDraft(draftStore); err != nil {
		return err
	}
	return nil
}

var (
	errSaveDraft = fmt.Errorf("save draft")
	errCancel    = fmt.Errorf("cancel")
)

// readLine reads trimmed input, translating the flow-control words.
func readLine(reader *bufio.Reader) (string, error) {
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	switch strings.ToLower(line) {
	case "save":
		return "", errSaveDraft
	case "back", "cancel":
		return "", errCancel
	}
	return line, nil
}

func stepSource(ctx context.Context, services *api.Services, w *wizard.Wizard, reader *bufio.Reader, args []string) error {
	fmt.Println("\nStep 1 of 4: Source")
	sources, err := services.Sources.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to get sources: %v", err)
	}

	if len(sources) > 0 {
		fmt.Println("Existing sources:")
		for i, source := range sources {
			fmt.Printf("  %d) %s (%s)\n", i+1, source.Name, source.Type)
		}
	}
	fmt.Print("Pick a source number, or 'new' ('save' to save a draft, 'cancel' to abort): ")
	answer, err := readLine(reader)
	if err != nil {
		return err
	}

	if answer != "new" && answer != "" {
		index, convErr := strconv.Atoi(answer)
		if convErr != nil || index < 1 || index > len(sources) {
			fmt.Println("Invalid choice")
			return nil
		}
		return w.UseExistingSource(&sources[index-1])
	}

	base, err := promptEndpoint(ctx, reader, args, "Source",
		"postgres/mysql/mongodb/oracle",
		func(ctx context.Context, connectorType string) ([]string, error) {
			return services.Sources.Versions(ctx, connectorType)
		},
		func(ctx context.Context, connectorType, version string) ([]byte, error) {
			return services.Sources.Spec(ctx, connectorType, version)
		})
	if err == errSaveDraft || err == errCancel {
		return err
	}
	if err != nil {
		// Validation failures re-run the step instead of aborting the flow.
		fmt.Println(err)
		return nil
	}

	fmt.Println("Testing connection...")
	if err := w.TestAndAdvanceSource(ctx, *base); err != nil {
		fmt.Printf("Connection test failed: %v\n", err)
		return nil
	}
	fmt.Println("Connection test passed")
	return nil
}

func stepDestination(ctx context.Context, services *api.Services, w *wizard.Wizard, reader *bufio.Reader, args []string) error {
	fmt.Println("\nStep 2 of 4: Destination")
	destinations, err := services.Destinations.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to get destinations: %v", err)
	}

	if len(destinations) > 0 {
		fmt.Println("Existing destinations:")
		for i, destination := range destinations {
			fmt.Printf("  %d) %s (%s)\n", i+1, destination.Name, destination.Type)
		}
	}
	fmt.Print("Pick a destination number, or 'new' ('save'/'back'): ")
	answer, err := readLine(reader)
	if err != nil {
		return err
	}

	if answer != "new" && answer != "" {
		index, convErr := strconv.Atoi(answer)
		if convErr != nil || index < 1 || index > len(destinations) {
			fmt.Println("Invalid choice")
			return nil
		}
		return w.UseExistingDestination(&destinations[index-1])
	}

	base, err := promptEndpoint(ctx, reader, args, "Destination",
		"s3/iceberg",
		func(ctx context.Context, connectorType string) ([]string, error) {
			return services.Destinations.Versions(ctx, connectorType)
		},
		func(ctx context.Context, connectorType, version string) ([]byte, error) {
			return services.Destinations.Spec(ctx, connectorType, version)
		})
	if err == errSaveDraft || err == errCancel {
		return err
	}
	if err != nil {
		fmt.Println(err)
		return nil
	}

	fmt.Println("Testing connection...")
	if err := w.TestAndAdvanceDestination(ctx, *base); err != nil {
		fmt.Printf("Connection test failed: %v\n", err)
		return nil
	}
	fmt.Println("Connection test passed")
	return nil
}

func promptEndpoint(ctx context.Context, reader *bufio.Reader, args []string, label, typeHint string,
	versions func(context.Context, string) ([]string, error),
	spec func(context.Context, string, string) ([]byte, error)) (*api.EntityBase, error) {

	prompter := schemaform.NewPrompter(reader, args)

	fmt.Printf("%s Name: ", label)
	name, err := readLine(reader)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("%s name is required", strings.ToLower(label))
	}

	fmt.Printf("Connector Type (%s): ", typeHint)
	connectorType, err := readLine(reader)
	if err != nil {
		return nil, err
	}
	if connectorType == "" {
		return nil, fmt.Errorf("connector type is required")
	}
	connectorType = strings.ToLower(connectorType)

	version := "latest"
	if available, err := versions(ctx, connectorType); err == nil && len(available) > 0 {
		fmt.Printf("Version (%s) [%s]: ", strings.Join(available, "/"), available[0])
		answer, err := readLine(reader)
		if err != nil {
			return nil, err
		}
		if answer == "" {
			answer = available[0]
		}
		version = answer
	}

	raw, err := spec(ctx, connectorType, version)
	if err != nil {
		return nil, fmt.Errorf("failed to get spec: %v", err)
	}
	schema := schemaform.Parse(raw, nil)
	data, err := prompter.Fill(schema, nil)
	if err != nil {
		return nil, err
	}
	if errs := schema.Validate(data); len(errs) > 0 {
		for field, message := range errs.Flat() {
			fmt.Printf("  %s: %s\n", field, message)
		}
		return nil, fmt.Errorf("configuration is incomplete")
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %v", err)
	}

	return &api.EntityBase{
		Name: name, Type: connectorType, Version: version, Config: string(encoded),
	}, nil
}

func stepSchema(ctx context.Context, w *wizard.Wizard, reader *bufio.Reader) error {
	fmt.Println("\nStep 3 of 4: Streams")
	fmt.Println("Discovering streams...")
	catalog, err := w.DiscoverStreams(ctx)
	if err != nil {
		return fmt.Errorf("failed to discover streams: %v", err)
	}

	printCatalog(catalog)

	for {
		fmt.Print("streams> ")
		line, err := readLine(reader)
		if err != nil {
			return err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "all":
			catalog.SetAll(true)
		case "none":
			catalog.SetAll(false)
		case "ns":
			if len(fields) != 3 || (fields[2] != "on" && fields[2] != "off") {
				fmt.Println("Usage: ns <namespace> on|off")
				continue
			}
			catalog.SetNamespace(fields[1], fields[2] == "on")
		case "add":
			if len(fields) != 3 {
				fmt.Println("Usage: add <namespace> <stream>")
				continue
			}
			catalog.Select(fields[1], fields[2])
		case "rm":
			if len(fields) != 3 {
				fmt.Println("Usage: rm <namespace> <stream>")
				continue
			}
			catalog.Deselect(fields[1], fields[2])
		case "mode":
			if len(fields) != 4 {
				fmt.Println("Usage: mode <namespace> <stream> cdc|full_refresh")
				continue
			}
			catalog.SetSyncMode(fields[1], fields[2], streamsel.SyncMode(fields[3]))
		case "list":
			printCatalog(catalog)
		case "done":
			if err := w.ConfirmSchema(); err != nil {
				fmt.Println(err)
				continue
			}
			return nil
		default:
			fmt.Println("Commands: all, none, ns, add, rm, mode, list, done, save, back")
		}
	}
}

func printCatalog(catalog *streamsel.Catalog) {
	grouped := catalog.Grouped()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)

	fmt.Println()
	fmt.Fprintln(w, "\tNamespace\tStream\tSync Mode")
	fmt.Fprintln(w, "\t---------\t------\t---------")
	for _, namespace := range catalog.Namespaces() {
		state := catalog.NamespaceState(namespace)
		fmt.Fprintf(w, "%s\t%s\t\t\n", checkbox(state), namespace)
		for _, sd := range grouped[namespace] {
			mark := " "
			if catalog.IsSelected(namespace, sd.Stream.Name) {
				mark = "x"
			}
			fmt.Fprintf(w, "[%s]\t%s\t%s\t%s\n", mark, namespace, sd.Stream.Name, sd.SyncMode)
		}
	}
	_ = w.Flush()
	fmt.Printf("\n%d stream(s) selected\n", catalog.SelectedCount())
}

func checkbox(state streamsel.CheckState) string {
	switch {
	case state.Checked:
		return "[x]"
	case state.Partial:
		return "[~]"
	default:
		return "[ ]"
	}
}

func stepConfig(ctx context.Context, w *wizard.Wizard, reader *bufio.Reader) error {
	fmt.Println("\nStep 4 of 4: Job configuration")

	fmt.Print("Job Name: ")
	name, err := readLine(reader)
	if err != nil {
		return err
	}
	if name != "" {
		w.SetJobName(name)
	}

	fmt.Printf("Frequency [%s]: ", w.Frequency())
	frequency, err := readLine(reader)
	if err != nil {
		return err
	}
	if frequency != "" {
		value, unit, err := wizard.ParseFrequency(frequency)
		if err != nil {
			fmt.Println(err)
			return nil
		}
		if err := w.SetFrequency(value, unit); err != nil {
			fmt.Println(err)
			return nil
		}
	}

	job, err := w.Create(ctx)
	if err != nil {
		fmt.Println(err)
		return nil
	}
	if w.Editing() {
		fmt.Printf("Successfully updated job '%s'\n", job.Name)
		return nil
	}
	fmt.Printf("Successfully created job '%s' (ID: %d). The job starts paused; resume it with 'jobs resume-schedule %d'\n",
		job.Name, job.ID, job.ID)
	return nil
}

// ListDrafts prints the saved drafts.
func ListDrafts(draftStore *drafts.Store) error {
	all, err := draftStore.List()
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Println("No drafts found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)

	fmt.Println()
	fmt.Fprintln(w, "ID\tName\tSource\tDestination\tSaved")
	fmt.Fprintln(w, "--\t----\t------\t-----------\t-----")
	for _, draft := range all {
		source, destination := "-", "-"
		if draft.Source != nil {
			source = fmt.Sprintf("%s (%s)", draft.Source.Name, draft.Source.Type)
		}
		if draft.Destination != nil {
			destination = fmt.Sprintf("%s (%s)", draft.Destination.Name, draft.Destination.Type)
		}
		name := draft.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", draft.ID, name, source, destination, draft.SavedAt)
	}
	_ = w.Flush()
	fmt.Println()
	return nil
}

// DeleteDraft removes a saved draft.
func DeleteDraft(draftStore *drafts.Store, draftID string) error {
	if err := draftStore.Delete(draftID); err != nil {
		return err
	}
	fmt.Printf("Deleted draft %s\n", draftID)
	return nil
}
