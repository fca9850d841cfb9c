// Package jobs implements the replication job commands.
package jobs

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/tidwall/gjson"

	"github.com/driftstream/driftstream-cli/internal/api"
	"github.com/driftstream/driftstream-cli/internal/wizard"
)

// ListJobs lists all jobs.
func ListJobs(ctx context.Context, svc api.JobService) error {
	jobs, err := svc.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to get jobs: %v", err)
	}

	if len(jobs) == 0 {
		fmt.Println("No jobs found")
		return nil
	}

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].Name < jobs[j].Name
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)

	fmt.Println()
	fmt.Fprintln(w, "ID\tName\tActive\tSource\tDestination\tStreams\tFrequency\tLast Run")
	fmt.Fprintln(w, "--\t----\t------\t------\t-----------\t-------\t---------\t--------")

	for _, job := range jobs {
		fmt.Fprintf(w, "%d\t%s\t%t\t%s (%s)\t%s (%s)\t%d\t%s\t%s\n",
			job.ID,
			job.Name,
			job.Activate,
			job.Source.Name, job.Source.Type,
			job.Destination.Name, job.Destination.Type,
			selectedStreamCount(job.StreamsConfig),
			job.Frequency,
			job.LastRunState)
	}

	_ = w.Flush()
	fmt.Println()
	return nil
}

// selectedStreamCount counts the selected streams across all namespaces of
// a streams_config document.
func selectedStreamCount(streamsConfig string) int {
	if streamsConfig == "" {
		return 0
	}
	count := 0
	gjson.Get(streamsConfig, "selected_streams").ForEach(func(_, namespace gjson.Result) bool {
		count += len(namespace.Array())
		return true
	})
	return count
}

// ShowJob displays details of a specific job.
func ShowJob(ctx context.Context, svc api.JobService, nameOrID string) error {
	job, err := findJob(ctx, svc, nameOrID)
	if err != nil {
		return err
	}

	fmt.Printf("\nJob: %s\n", job.Name)
	fmt.Println("----------------------------------------")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "ID:\t%d\n", job.ID)
	fmt.Fprintf(w, "Active:\t%t\n", job.Activate)
	fmt.Fprintf(w, "Source:\t%s (%s %s)\n", job.Source.Name, job.Source.Type, job.Source.Version)
	fmt.Fprintf(w, "Destination:\t%s (%s %s)\n", job.Destination.Name, job.Destination.Type, job.Destination.Version)
	fmt.Fprintf(w, "Frequency:\t%s\n", job.Frequency)
	fmt.Fprintf(w, "Streams:\t%d selected\n", selectedStreamCount(job.StreamsConfig))
	if job.LastRunState != "" {
		fmt.Fprintf(w, "Last Run:\t%s at %s\n", job.LastRunState, job.LastRunTime)
	}
	fmt.Fprintf(w, "Created:\t%s by %s\n", job.CreatedAt, job.CreatedBy)
	if job.UpdatedAt != "" {
		fmt.Fprintf(w, "Updated:\t%s by %s\n", job.UpdatedAt, job.UpdatedBy)
	}
	_ = w.Flush()
	fmt.Println()
	return nil
}

// ModifyJob updates a job's name or frequency.
func ModifyJob(ctx context.Context, svc api.JobService, nameOrID string, args []string) error {
	job, err := findJob(ctx, svc, nameOrID)
	if err != nil {
		return err
	}

	name := job.Name
	frequency := job.Frequency
	hasChanges := false

	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "--name="):
			name = strings.TrimPrefix(arg, "--name=")
			hasChanges = true
		case strings.HasPrefix(arg, "--frequency="):
			frequency = strings.TrimPrefix(arg, "--frequency=")
			hasChanges = true
		}
	}

	if !hasChanges {
		reader := bufio.NewReader(os.Stdin)
		fmt.Printf("Modifying job '%s' (press Enter to keep current value):\n", job.Name)

		fmt.Printf("New Name [%s]: ", job.Name)
		newName, _ := reader.ReadString('\n')
		if newName = strings.TrimSpace(newName); newName != "" {
			name = newName
			hasChanges = true
		}

		fmt.Printf("Frequency [%s]: ", job.Frequency)
		newFrequency, _ := reader.ReadString('\n')
		if newFrequency = strings.TrimSpace(newFrequency); newFrequency != "" {
			frequency = newFrequency
			hasChanges = true
		}
	}

	if !hasChanges {
		fmt.Println("No changes made")
		return nil
	}

	if _, _, err := wizard.ParseFrequency(frequency); err != nil {
		return err
	}

	updated, err := svc.Update(ctx, job.ID, api.JobBase{
		Name:          name,
		Source:        job.Source,
		Destination:   job.Destination,
		StreamsConfig: job.StreamsConfig,
		Frequency:     frequency,
		Activate:      job.Activate,
	})
	if err != nil {
		return fmt.Errorf("failed to update job: %v", err)
	}

	fmt.Printf("Successfully updated job '%s'\n", updated.Name)
	return nil
}

// DeleteJob removes a job after confirmation; --force skips the prompt.
func DeleteJob(ctx context.Context, svc api.JobService, nameOrID string, force bool) error {
	job, err := findJob(ctx, svc, nameOrID)
	if err != nil {
		return err
	}

	if !force {
		fmt.Printf("Delete job '%s'? This cannot be undone. (yes/no): ", job.Name)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "yes" && answer != "y" {
			fmt.Println("Delete cancelled")
			return nil
		}
	}

	if err := svc.Delete(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to delete job: %v", err)
	}

	fmt.Printf("Successfully deleted job '%s'\n", job.Name)
	return nil
}

// RunJob triggers a sync and waits for the run to show up in the task
// history. The backend registers the task asynchronously, so the fetch is
// retried a few times before giving up on the wait.
func RunJob(ctx context.Context, svc api.JobService, nameOrID string) error {
	job, err := findJob(ctx, svc, nameOrID)
	if err != nil {
		return err
	}

	if err := svc.Run(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to start job: %v", err)
	}
	fmt.Printf("Started job '%s'\n", job.Name)

	tasks, err := waitForTasks(ctx, svc, job.ID)
	if err != nil || len(tasks) == 0 {
		fmt.Println("Run accepted; task history is not available yet")
		return nil
	}

	latest := tasks[0]
	fmt.Printf("Latest run: %s (started %s)\n", latest.Status, latest.StartTime)
	return nil
}

// waitForTasks polls the task history until it is non-empty, with a short
// constant backoff capped at a handful of attempts.
func waitForTasks(ctx context.Context, svc api.JobService, id int64) ([]api.JobTask, error) {
	var tasks []api.JobTask
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Second), 4), ctx)

	err := backoff.Retry(func() error {
		var err error
		tasks, err = svc.Tasks(ctx, id)
		if err != nil {
			return backoff.Permanent(err)
		}
		if len(tasks) == 0 {
			return fmt.Errorf("no tasks yet")
		}
		return nil
	}, policy)
	return tasks, err
}

// ActivateJob resumes or pauses a job's schedule.
func ActivateJob(ctx context.Context, svc api.JobService, nameOrID string, activate bool) error {
	job, err := findJob(ctx, svc, nameOrID)
	if err != nil {
		return err
	}

	if err := svc.Activate(ctx, job.ID, activate); err != nil {
		return fmt.Errorf("failed to update job schedule: %v", err)
	}

	if activate {
		fmt.Printf("Successfully resumed job '%s'\n", job.Name)
	} else {
		fmt.Printf("Successfully paused job '%s'\n", job.Name)
	}
	return nil
}

// ShowTasks prints a job's run history.
func ShowTasks(ctx context.Context, svc api.JobService, nameOrID string) error {
	job, err := findJob(ctx, svc, nameOrID)
	if err != nil {
		return err
	}

	tasks, err := svc.Tasks(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("failed to get job tasks: %v", err)
	}
	if len(tasks) == 0 {
		fmt.Println("No runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)

	fmt.Println()
	fmt.Fprintln(w, "Started\tRuntime\tStatus\tLog File")
	fmt.Fprintln(w, "-------\t-------\t------\t--------")
	for _, task := range tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			task.StartTime, task.Runtime, task.Status, task.FilePath)
	}
	_ = w.Flush()
	fmt.Println()
	return nil
}

// ShowTaskLogs prints the log lines of one run.
func ShowTaskLogs(ctx context.Context, svc api.JobService, nameOrID, filePath string) error {
	job, err := findJob(ctx, svc, nameOrID)
	if err != nil {
		return err
	}

	logs, err := svc.TaskLogs(ctx, job.ID, filePath)
	if err != nil {
		return fmt.Errorf("failed to get task logs: %v", err)
	}
	if len(logs) == 0 {
		fmt.Println("No log entries found")
		return nil
	}

	for _, entry := range logs {
		fmt.Printf("%s  %-5s  %s\n", entry.Time, strings.ToUpper(entry.Level), entry.Message)
	}
	return nil
}

func findJob(ctx context.Context, svc api.JobService, nameOrID string) (*api.Job, error) {
	jobs, err := svc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get jobs: %v", err)
	}
	if id, err := strconv.ParseInt(nameOrID, 10, 64); err == nil {
		for i := range jobs {
			if jobs[i].ID == id {
				return &jobs[i], nil
			}
		}
	}
	for i := range jobs {
		if jobs[i].Name == nameOrID {
			return &jobs[i], nil
		}
	}
	return nil, fmt.Errorf("job '%s' not found", nameOrID)
}
