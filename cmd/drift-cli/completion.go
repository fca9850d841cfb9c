package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

// entityNameCompletion completes source or destination names from the
// cached lists.
func entityNameCompletion(list func() ([]string, error)) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		names, err := list()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		var filtered []string
		for _, name := range names {
			if strings.HasPrefix(name, toComplete) {
				filtered = append(filtered, name)
			}
		}
		return filtered, cobra.ShellCompDirectiveNoFileComp
	}
}

func sourceNames() ([]string, error) {
	sources, err := getServices().Sources.List(context.Background())
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(sources))
	for _, source := range sources {
		names = append(names, source.Name)
	}
	return names, nil
}

func destinationNames() ([]string, error) {
	destinations, err := getServices().Destinations.List(context.Background())
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(destinations))
	for _, destination := range destinations {
		names = append(names, destination.Name)
	}
	return names, nil
}

func jobNames() ([]string, error) {
	jobs, err := getServices().Jobs.List(context.Background())
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(jobs))
	for _, job := range jobs {
		names = append(names, job.Name)
	}
	return names, nil
}

// setupCustomCompletions registers name completion on the commands that
// take an entity or job argument.
func setupCustomCompletions() {
	sourceCompletion := entityNameCompletion(sourceNames)
	for _, cmd := range []*cobra.Command{showSourceCmd, modifySourceCmd, deleteSourceCmd, testSourceCmd, sourceStreamsCmd} {
		cmd.ValidArgsFunction = sourceCompletion
	}

	destinationCompletion := entityNameCompletion(destinationNames)
	for _, cmd := range []*cobra.Command{showDestinationCmd, modifyDestinationCmd, deleteDestinationCmd, testDestinationCmd} {
		cmd.ValidArgsFunction = destinationCompletion
	}

	jobCompletion := entityNameCompletion(jobNames)
	for _, cmd := range []*cobra.Command{showJobCmd, editJobCmd, modifyJobCmd, deleteJobCmd, runJobCmd, pauseJobCmd, resumeScheduleCmd, jobTasksCmd, jobLogsCmd} {
		cmd.ValidArgsFunction = jobCompletion
	}
}
