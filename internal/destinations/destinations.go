// Package destinations implements the destination connector commands.
package destinations

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

// ListDestinations lists all destinations with their associated jobs.
func ListDestinations(ctx context.Context, svc api.DestinationService) error {
	destinations, err := svc.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to get destinations: %v", err)
	}

	if len(destinations) == 0 {
		fmt.Println("No destinations found")
		return nil
	}

	sort.Slice(destinations, func(i, j int) bool {
		return destinations[i].Name < destinations[j].Name
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)

	fmt.Println()
	fmt.Fprintln(w, "ID\tName\tConnector\tVersion\tJobs\tCreated By")
	fmt.Fprintln(w, "--\t----\t---------\t-------\t----\t----------")

	for _, destination := range destinations {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\n",
			destination.ID,
			destination.Name,
			destination.Type,
			destination.Version,
			len(destination.Jobs),
			destination.CreatedBy)
	}

	_ = w.Flush()
	fmt.Println()
	return nil
}

// ShowDestination displays details of a specific destination.
func ShowDestination(ctx context.Context, svc api.DestinationService, nameOrID string) error {
	destination, err := findDestination(ctx, svc, nameOrID)
	if err != nil {
		return err
	}

	fmt.Printf("\nDestination: %s\n", destination.Name)
	fmt.Println("----------------------------------------")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "ID:\t%d\n", destination.ID)
	fmt.Fprintf(w, "Connector:\t%s\n", destination.Type)
	fmt.Fprintf(w, "Version:\t%s\n", destination.Version)
	fmt.Fprintf(w, "Created:\t%s by %s\n", destination.CreatedAt, destination.CreatedBy)
	if destination.UpdatedAt != "" {
		fmt.Fprintf(w, "Updated:\t%s by %s\n", destination.UpdatedAt, destination.UpdatedBy)
	}
	_ = w.Flush()

	fmt.Println("\nConfiguration:")
	fmt.Println(indentJSON(schemaform.Redact(destination.Config)))

	if len(destination.Jobs) > 0 {
		fmt.Println("\nAssociated jobs:")
		jw := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(jw, "ID\tName\tActive\tSource\tLast Run")
		fmt.Fprintln(jw, "--\t----\t------\t------\t--------")
		for _, job := range destination.Jobs {
			fmt.Fprintf(jw, "%d\t%s\t%t\t%s (%s)\t%s\n",
				job.ID, job.Name, job.Activate,
				job.SourceName, job.SourceType, job.LastRunState)
		}
		_ = jw.Flush()
	}
	fmt.Println()
	return nil
}

// AddDestination creates a new destination. The configuration is collected
// from the connector's spec and the connection must test clean before the
// destination is created.
func AddDestination(ctx context.Context, svc api.DestinationService, args []string) error {
	reader := bufio.NewReader(os.Stdin)
	prompter := schemaform.NewPrompter(reader, args)

	name := prompter.Arg("name")
	if name == "" {
		fmt.Print("Destination Name: ")
		name, _ = reader.ReadString('\n')
		name = strings.TrimSpace(name)
	}
	if name == "" {
		return fmt.Errorf("destination name is required")
	}

	connectorType := prompter.Arg("type")
	if connectorType == "" {
		fmt.Print("Connector Type (s3/iceberg): ")
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
		return fmt.Errorf("failed to create destination: %v", err)
	}

	fmt.Printf("Successfully created destination '%s' (ID: %d)\n", created.Name, created.ID)
	return nil
}

// ModifyDestination updates an existing destination with a re-test before
// saving.
func ModifyDestination(ctx context.Context, svc api.DestinationService, nameOrID string, args []string) error {
	destination, err := findDestination(ctx, svc, nameOrID)
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	prompter := schemaform.NewPrompter(reader, args)

	name := prompter.Arg("name")
	if name == "" {
		fmt.Printf("New Name [%s]: ", destination.Name)
		name, _ = reader.ReadString('\n')
		name = strings.TrimSpace(name)
		if name == "" {
			name = destination.Name
		}
	}

	version, err := chooseVersion(ctx, svc, destination.Type, prompter.Arg("version"), reader)
	if err != nil {
		return err
	}

	var current schemaform.FormData
	_ = json.Unmarshal([]byte(destination.Config), &current)

	config, err := promptConfig(ctx, svc, destination.Type, version, prompter, current)
	if err != nil {
		return err
	}

	fmt.Println("Testing connection...")
	result, err := svc.TestConnection(ctx, api.TestRequest{
		Type: destination.Type, Version: version, Config: config,
	})
	if err != nil {
		return fmt.Errorf("connection test failed: %v", err)
	}
	if !result.Succeeded() {
		return fmt.Errorf("%s", result.FailureMessage())
	}

	updated, err := svc.Update(ctx, destination.ID, api.EntityBase{
		Name: name, Type: destination.Type, Version: version, Config: config,
	})
	if err != nil {
		return fmt.Errorf("failed to update destination: %v", err)
	}

	fmt.Printf("Successfully updated destination '%s'\n", updated.Name)
	return nil
}

// DeleteDestination removes a destination. When jobs depend on it, a
// confirmation is read from in; --force skips the prompt.
func DeleteDestination(ctx context.Context, svc api.DestinationService, nameOrID string, force bool, in io.Reader) error {
	destination, err := findDestination(ctx, svc, nameOrID)
	if err != nil {
		return err
	}

	if len(destination.Jobs) > 0 && !force {
		fmt.Printf("Destination '%s' is used by %d job(s):\n", destination.Name, len(destination.Jobs))
		for _, job := range destination.Jobs {
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

	if err := svc.Delete(ctx, destination.ID); err != nil {
		return fmt.Errorf("failed to delete destination: %v", err)
	}

	fmt.Printf("Successfully deleted destination '%s'\n", destination.Name)
	return nil
}

// TestDestination re-runs the connection test of an existing destination.
func TestDestination(ctx context.Context, svc api.DestinationService, nameOrID string) error {
	destination, err := findDestination(ctx, svc, nameOrID)
	if err != nil {
		return err
	}

	fmt.Printf("Testing connection to '%s'...\n", destination.Name)
	result, err := svc.TestConnection(ctx, api.TestRequest{
		Type: destination.Type, Version: destination.Version, Config: destination.Config,
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
func ShowVersions(ctx context.Context, svc api.DestinationService, connectorType string) error {
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
func ShowSpec(ctx context.Context, svc api.DestinationService, connectorType, version string) error {
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

func findDestination(ctx context.Context, svc api.DestinationService, nameOrID string) (*api.Entity, error) {
	destinations, err := svc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get destinations: %v", err)
	}
	if id, err := strconv.ParseInt(nameOrID, 10, 64); err == nil {
		for i := range destinations {
			if destinations[i].ID == id {
				return &destinations[i], nil
			}
		}
	}
	for i := range destinations {
		if destinations[i].Name == nameOrID {
			return &destinations[i], nil
		}
	}
	return nil, fmt.Errorf("destination '%s' not found", nameOrID)
}

func chooseVersion(ctx context.Context, svc api.DestinationService, connectorType, version string, reader *bufio.Reader) (string, error) {
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

func promptConfig(ctx context.Context, svc api.DestinationService, connectorType, version string, prompter *schemaform.Prompter, current schemaform.FormData) (string, error) {
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
