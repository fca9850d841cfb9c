package main

import (
	"github.com/spf13/cobra"

	"github.com/driftstream/driftstream-cli/internal/jobs"
)

// jobsCmd represents the jobs command
var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage replication jobs",
	Long: `Commands for managing replication jobs including the guided creation flow, drafts, ` +
		`scheduling, and run history.`,
}

// listJobsCmd represents the list command
var listJobsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all jobs",
	Long:  `Display a formatted list of all jobs with their endpoints, stream counts and last run state. Use --saved to list drafts instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		saved, _ := cmd.Flags().GetBool("saved")
		if saved {
			return jobs.ListDrafts(getDraftStore())
		}
		return jobs.ListJobs(cmd.Context(), getServices().Jobs)
	},
}

// showJobCmd represents the show command
var showJobCmd = &cobra.Command{
	Use:   "show [job-name]",
	Short: "Show job details",
	Long:  `Display detailed information about a specific job.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return jobs.ShowJob(cmd.Context(), getServices().Jobs, args[0])
	},
}

// createJobCmd represents the create command
var createJobCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a job",
	Long: `Create a job through the guided flow: pick or create a source, pick or create a destination, ` +
		`select streams, then name and schedule the job. Type 'save' at any prompt to save a draft.`,
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return jobs.CreateJob(cmd.Context(), getServices(), getDraftStore(), args)
	},
}

// editJobCmd represents the edit command
var editJobCmd = &cobra.Command{
	Use:   "edit [job-name]",
	Short: "Edit a job through the guided flow",
	Long: `Re-open the guided flow for an existing job, starting at the stream selection. ` +
		`The job's connectors, selection, name and schedule are carried over.`,
	Args:               cobra.MinimumNArgs(1),
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return jobs.EditJob(cmd.Context(), getServices(), getDraftStore(), args[0], args[1:])
	},
}

// modifyJobCmd represents the modify command
var modifyJobCmd = &cobra.Command{
	Use:                "modify [job-name]",
	Aliases:            []string{"settings"},
	Short:              "Modify a job",
	Long:               `Modify a job's name or frequency.`,
	Args:               cobra.MinimumNArgs(1),
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return jobs.ModifyJob(cmd.Context(), getServices().Jobs, args[0], args[1:])
	},
}

// deleteJobCmd represents the delete command
var deleteJobCmd = &cobra.Command{
	Use:   "delete [job-name]",
	Short: "Delete a job",
	Long:  `Delete a job after confirmation.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		return jobs.DeleteJob(cmd.Context(), getServices().Jobs, args[0], force)
	},
}

// runJobCmd represents the run command
var runJobCmd = &cobra.Command{
	Use:   "run [job-name]",
	Short: "Trigger a sync now",
	Long:  `Start a sync of the job immediately and wait for the run to appear in the task history.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return jobs.RunJob(cmd.Context(), getServices().Jobs, args[0])
	},
}

// pauseJobCmd represents the pause command
var pauseJobCmd = &cobra.Command{
	Use:   "pause [job-name]",
	Short: "Pause a job's schedule",
	Long:  `Deactivate a job so it no longer runs on its schedule.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return jobs.ActivateJob(cmd.Context(), getServices().Jobs, args[0], false)
	},
}

// resumeScheduleCmd represents the resume-schedule command
var resumeScheduleCmd = &cobra.Command{
	Use:     "resume-schedule [job-name]",
	Aliases: []string{"activate"},
	Short:   "Resume a job's schedule",
	Long:    `Reactivate a paused job.`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return jobs.ActivateJob(cmd.Context(), getServices().Jobs, args[0], true)
	},
}

// jobTasksCmd represents the tasks command
var jobTasksCmd = &cobra.Command{
	Use:     "tasks [job-name]",
	Aliases: []string{"history"},
	Short:   "Show a job's run history",
	Long:    `Display the runs of a job with their runtime, status and log file.`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return jobs.ShowTasks(cmd.Context(), getServices().Jobs, args[0])
	},
}

// jobLogsCmd represents the logs command
var jobLogsCmd = &cobra.Command{
	Use:   "logs [job-name] [log-file]",
	Short: "Show the logs of a run",
	Long:  `Display the log lines of one job run, identified by the log file from the task history.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return jobs.ShowTaskLogs(cmd.Context(), getServices().Jobs, args[0], args[1])
	},
}

// draftsCmd represents the drafts command
var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "List saved drafts",
	Long:  `Display job drafts saved from the creation flow.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return jobs.ListDrafts(getDraftStore())
	},
}

// resumeDraftCmd represents the resume command
var resumeDraftCmd = &cobra.Command{
	Use:                "resume [draft-id]",
	Short:              "Resume a draft",
	Long:               `Re-enter the job creation flow from a saved draft.`,
	Args:               cobra.MinimumNArgs(1),
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return jobs.ResumeDraft(cmd.Context(), getServices(), getDraftStore(), args[0], args[1:])
	},
}

// deleteDraftCmd represents the delete-draft command
var deleteDraftCmd = &cobra.Command{
	Use:   "delete-draft [draft-id]",
	Short: "Delete a draft",
	Long:  `Remove a saved job draft.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return jobs.DeleteDraft(getDraftStore(), args[0])
	},
}

func init() {
	deleteJobCmd.Flags().Bool("force", false, "Delete without confirmation")
	listJobsCmd.Flags().Bool("saved", false, "List saved drafts instead of jobs")

	jobsCmd.AddCommand(listJobsCmd)
	jobsCmd.AddCommand(showJobCmd)
	jobsCmd.AddCommand(createJobCmd)
	jobsCmd.AddCommand(editJobCmd)
	jobsCmd.AddCommand(modifyJobCmd)
	jobsCmd.AddCommand(deleteJobCmd)
	jobsCmd.AddCommand(runJobCmd)
	jobsCmd.AddCommand(pauseJobCmd)
	jobsCmd.AddCommand(resumeScheduleCmd)
	jobsCmd.AddCommand(jobTasksCmd)
	jobsCmd.AddCommand(jobLogsCmd)
	jobsCmd.AddCommand(draftsCmd)
	jobsCmd.AddCommand(resumeDraftCmd)
	jobsCmd.AddCommand(deleteDraftCmd)
}
