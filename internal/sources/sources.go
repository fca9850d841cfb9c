// Package sources implements the source connector commands.
package sources

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/driftstream/driftstream-cli/internal/api"
	"github.com/driftstream/driftstream-cli/internal/schemaform"
)

// ListSources lists all sources with their associated jobs.
func ListSources(ctx context.Context, svc api.SourceService) error {
	sources, err := svc.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to get sources: %v", err)
	}

	if len(sources) == 0 {
		fmt.Println("No sources found")
		return nil
	}

	sort.Slice(sources, func(i, j int) bool {
		return sources[i].Name < sources[j].Name
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)

	fmt.Println()
	fmt.Fprintln(w, "ID\tName\tConnector\tVersion\tJobs\tCreated By")
	fmt.Fprintln(w, "--\t----\t---------\t-------\t----\t----------")

	for _, source := range sources {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\n",
			source.ID,
			source.Name,
			source.Type,
			source.Version,
			len(source.Jobs),
			source.CreatedBy)
	}

	_ = w.Flush()
	fmt.Println()
	return nil
}

// ShowSource displays details of a specific source.
func ShowSource(ctx context.Context, svc api.SourceService, nameOrID string) error {
	source, err := findSource(ctx, svc, nameOrID)
	if err != nil {
		return err
	}

	fmt.Printf("\nSource: %s\n", source.Name)
	fmt.Println("----------------------------------------")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "ID:\t%d\n", source.ID)
	fmt.Fprintf(w, "Connector:\t%s\n", source.Type)
	fmt.Fprintf(w, "Version:\t%s\n", source.Version)
	fmt.Fprintf(w, "Created:\t%s by %s\n", source.CreatedAt, source.CreatedBy)
	if source.UpdatedAt != "" {
		fmt.Fprintf(w, "Updated:\t%s by %s\n", source.UpdatedAt, source.UpdatedBy)
	}
	_ = w.Flush()

	fmt.Println("\nConfiguration:")
	fmt.Println(indentJSON(schemaform.Redact(source.Config)))

	if len(source.Jobs) > 0 {
		fmt.Println("\nAssociated jobs:")
		jw := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(jw, "ID\tName\tActive\tDestination\tLast Run")
		fmt.Fprintln(jw, "--\t----\t------\t-----------\t--------")
		for _, job := range source.Jobs {
			fmt.Fprintf(jw, "%d\t%s\t%t\t%s (%s)\t%s\n",
				job.ID, job.Name, job.Activate,
				job.DestinationName, job.DestinationType, job.LastRunState)
		}
		_ = jw.Flush()
	}
	fmt.Println()
	return nil
}

// AddSource creates a new source. The connector configuration is collected
// from the connector's spec, the connection is tested, and the source is
// created only after the test passes.
func AddSource(ctx context.Context, svc api.SourceService, args []string) error {
	reader := bufio.NewReader(os.Stdin)
	prompter := schemaform.NewPrompter(reader, args)

	name := prompter.Arg("name")
	if name == "" {
		fmt.Print("Source Name: ")
		name, _ = reader.ReadString('\n')
		name = strings.TrimSpace(name)
	}
	if name == "" {
		return fmt.Errorf("source name is required")
	}

	connectorType := prompter.Arg("type")
	if connectorType == "" {
		fmt.Print("Connector Type (postgres/mysql/mongodb/oracle): ")
		connectorType, _ = reader.ReadString('\n')
		connectorType = strings.TrimSpace(connectorType)
	}
	if connectorType == "" {
		return fmt.Errorf("connector type is required")
	}
	connectorType = strings.ToLower(connectorType)

	version, err := chooseVersion(ctx, svc, connectorType, prompter.Arg("version"), reader)
	if err != nil {
		return err
	}

	config, err := promptConfig(ctx, svc, connectorType, version, prompter, nil)
	if err != nil {
		return err
	}

	fmt.Println("Testing connection...")
	result, err := svc.TestConnection(ctx, api.TestRequest{
		Type: connectorType, Version: version, Config: config,
	})
	if err != nil {
		return fmt.Errorf("connection test failed: %v", err)
	}
	if !result.Succeeded() {
		return fmt.Errorf("%s", result.FailureMessage())
	}
	fmt.Println("Connection test passed")

	created, err := svc.Create(ctx, api.EntityBase{
		Name: name, Type: connectorType, Version: version, Config: config,
	})
	if err != nil {
		return fmt.Errorf("failed to create source: %v", err)
	}

	fmt.Printf("Successfully created source '%s' (ID: %d)\n", created.Name, created.ID)
	return nil
}

// ModifySource updates an existing source. The current configuration seeds
// the prompts, and the connection is re-tested before saving.
func ModifySource(ctx context.Context, svc api.SourceService, nameOrID string, args []string) error {
	source, err := findSource(ctx, svc, nameOrID)
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	prompter := schemaform.NewPrompter(reader, args)

	name := prompter.Arg("name")
	if name == "" {
		fmt.Printf("New Name [%s]: ", source.Name)
		name, _ = reader.ReadString('\n')
		name = strings.TrimSpace(name)
		if name == "" {
			name = source.Name
		}
	}

	version, err := chooseVersion(ctx, svc, source.Type, prompter.Arg("version"), reader)
	if err != nil {
		return err
	}

	var current schemaform.FormData
	_ = json.Unmarshal([]byte(source.Config), &current)

	config, err := promptConfig(ctx, svc, source.Type, version, prompter, current)
	if err != nil {
		return err
	}

	fmt.Println("Testing connection...")
	result, err := svc.TestConnection(ctx, api.TestRequest{
		Type: source.Type, Version: version, Config: config,
	})
	if err != nil {
		return fmt.Errorf("connection test failed: %v", err)
	}
	if !result.Succeeded() {
		return fmt.Errorf("%s", result.FailureMessage())
	}

	updated, err := svc.Update(ctx, source.ID, api.EntityBase{
		Name: name, Type: source.Type, Version: version, Config: config,
	})
	if err != nil {
		return fmt.Errorf("failed to update source: %v", err)
	}

	fmt.Printf("Successfully updated source '%s'\n", updated.Name)
	return nil
}

// DeleteSource removes a source. When jobs depend on it, the jobs are
// listed and a confirmation is read from in; --force skips the prompt.
func DeleteSource(ctx context.Context, svc api.SourceService, nameOrID string, force bool, in io.Reader) error {
	source, err := findSource(ctx, svc, nameOrID)
	if err != nil {
		return err
	}

	if len(source.Jobs) > 0 && !force {
		fmt.Printf("Source '%s' is used by %d job(s):\n", source.Name, len(source.Jobs))
		for _, job := range source.Jobs {
			fmt.Printf("  - %s (ID: %d)\n", job.Name, job.ID)
		}
		fmt.Print("Deleting it will break these jobs. Continue? (yes/no): ")
		reader := bufio.NewReader(in)
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "yes" && answer != "y" {
			fmt.Println("Delete cancelled")
			return nil
		}
	}

	if err := svc.Delete(ctx, source.ID); err != nil {
		return fmt.Errorf("failed to delete source: %v", err)
	}

	fmt.Printf("Successfully deleted source '%s'\n", source.Name)
	return nil
}

// TestSource re-runs the connection test of an existing source.
func TestSource(ctx context.Context, svc api.SourceService, nameOrID string) error {
	source, err := findSource(ctx, svc, nameOrID)
	if err != nil {
		return err
	}

	fmt.Printf("Testing connection to '%s'...\n", source.Name)
	result, err := svc.TestConnection(ctx, api.TestRequest{
		Type: source.Type, Version: source.Version, Config: source.Config,
	})
	if err != nil {
		return fmt.Errorf("connection test failed: %v", err)
	}
	if !result.Succeeded() {
		return fmt.Errorf("%s", result.FailureMessage())
	}
	fmt.Println("Connection test passed")
	return nil
}

// ShowVersions lists the available versions of a connector.
func ShowVersions(ctx context.Context, svc api.SourceService, connectorType string) error {
	versions, err := svc.Versions(ctx, strings.ToLower(connectorType))
	if err != nil {
		return fmt.Errorf("failed to get versions: %v", err)
	}
	if len(versions) == 0 {
		fmt.Println("No versions found")
		return nil
	}
	fmt.Printf("Available versions for %s:\n", strings.ToLower(connectorType))
	for _, version := range versions {
		fmt.Printf("  %s\n", version)
	}
	return nil
}

// ShowSpec prints a connector's configuration form.
func ShowSpec(ctx context.Context, svc api.SourceService, connectorType, version string) error {
	raw, err := svc.Spec(ctx, strings.ToLower(connectorType), version)
	if err != nil {
		return fmt.Errorf("failed to get spec: %v", err)
	}

	schema := schemaform.Parse(raw, nil)
	if schema.Malformed {
		fmt.Println("No schema properties provided")
		return nil
	}

	fmt.Printf("\nConfiguration for %s %s:\n", strings.ToLower(connectorType), version)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "Field\tType\tRequired\tDefault\tDescription")
	fmt.Fprintln(w, "-----\t----\t--------\t-------\t-----------")
	printSpecFields(w, schema.Fields, "")
	_ = w.Flush()
	fmt.Println()
	return nil
}

// ShowStreams discovers and prints a source's streams grouped by
// namespace.
func ShowStreams(ctx context.Context, svc api.SourceService, nameOrID string) error {
	source, err := findSource(ctx, svc, nameOrID)
	if err != nil {
		return err
	}

	fmt.Printf("Discovering streams for '%s'...\n", source.Name)
	catalog, err := svc.DiscoverStreams(ctx, source.Name, source.Type, source.Version, source.Config)
	if err != nil {
		return fmt.Errorf("failed to discover streams: %v", err)
	}

	grouped := catalog.Grouped()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)

	fmt.Println()
	fmt.Fprintln(w, "Namespace\tStream\tSync Mode\tSupported Modes")
	fmt.Fprintln(w, "---------\t------\t---------\t---------------")
	for _, namespace := range catalog.Namespaces() {
		for _, sd := range grouped[namespace] {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				namespace,
				sd.Stream.Name,
				sd.SyncMode,
				strings.Join(sd.Stream.SupportedSyncModes, ", "))
		}
	}
	_ = w.Flush()
	fmt.Println()
	return nil
}

func findSource(ctx context.Context, svc api.SourceService, nameOrID string) (*api.Entity, error) {
	sources, err := svc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get sources: %v", err)
	}
	if id, err := strconv.ParseInt(nameOrID, 10, 64); err == nil {
		for i := range sources {
			if sources[i].ID == id {
				return &sources[i], nil
			}
		}
	}
	for i := range sources {
		if sources[i].Name == nameOrID {
			return &sources[i], nil
		}
	}
	return nil, fmt.Errorf("source '%s' not found", nameOrID)
}

func chooseVersion(ctx context.Context, svc api.SourceService, connectorType, version string, reader *bufio.Reader) (string, error) {
	if version != "" {
		return version, nil
	}
	versions, err := svc.Versions(ctx, connectorType)
	if err != nil || len(versions) == 0 {
		return "latest", nil
	}
	fmt.Printf("Version (%s) [%s]: ", strings.Join(versions, "/"), versions[0])
	answer, _ := reader.ReadString('\n')
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return versions[0], nil
	}
	return answer, nil
}

func promptConfig(ctx context.Context, svc api.SourceService, connectorType, version string, prompter *schemaform.Prompter, current schemaform.FormData) (string, error) {
	raw, err := svc.Spec(ctx, connectorType, version)
	if err != nil {
		return "", fmt.Errorf("failed to get spec: %v", err)
	}

	schema := schemaform.Parse(raw, nil)
	data, err := prompter.Fill(schema, current)
	if err != nil {
		return "", err
	}
	if errs := schema.Validate(data); len(errs) > 0 {
		for field, message := range errs.Flat() {
			fmt.Printf("  %s: %s\n", field, message)
		}
		return "", fmt.Errorf("configuration is incomplete")
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %v", err)
	}
	return string(encoded), nil
}

func printSpecFields(w *tabwriter.Writer, fields []schemaform.Field, prefix string) {
	for _, field := range fields {
		if field.Hidden {
			continue
		}
		name := field.Name
		if prefix != "" {
			name = prefix + "." + name
		}
		required := ""
		if field.Required {
			required = "yes"
		}
		defaultValue := ""
		if field.Default != nil {
			defaultValue = fmt.Sprintf("%v", field.Default)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			name, field.Kind, required, defaultValue, field.Title)
		if field.Kind == schemaform.KindObject && field.Object != nil {
			printSpecFields(w, field.Object.Fields, name)
		}
	}
}

func indentJSON(raw string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(raw), "  ", "  "); err != nil {
		return "  " + raw
	}
	return "  " + buf.String()
}
