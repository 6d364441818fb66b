package cli

import (
	"fmt"
	"strings"

	"medapp-cli/internal/patients"

	"github.com/spf13/cobra"
)

func newPatientsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "patients",
		Aliases: []string{"patient"},
		Short:   "Find patients",
	}
	cmd.AddCommand(newPatientsListCmd(app))
	cmd.AddCommand(newPatientsSearchCmd(app))
	cmd.AddCommand(newPatientsEditCmd(app))
	cmd.AddCommand(newPatientsOpenCmd(app))
	return cmd
}

func newPatientsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List patients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := app.directory()
			if err != nil {
				return writeErr(cmd, err)
			}
			list, err := dir.All(app.context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, patientListOutput(list), "medapp history <patient-id>")
		},
	}
}

func newPatientsSearchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search patients by name, id, phone or email",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := strings.Join(args, " ")
			dir, err := app.directory()
			if err != nil {
				return writeErr(cmd, err)
			}
			found, ok, err := dir.Search(app.context(), q)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !ok {
				return writeErr(cmd, fmt.Errorf("query must be at least %d characters", patients.MinQueryLen))
			}
			if found == nil {
				found = patientListOutput{}
			}
			return writeOut(cmd, app, patientListOutput(found))
		},
	}
}

func newPatientsEditCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "edit <patient-id>",
		Short: "Open the patient editor in the browser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.remoteClient()
			if err != nil {
				return writeErr(cmd, err)
			}
			id := strings.TrimSpace(args[0])
			if !yes {
				ok, err := confirmPrompt(cmd, "Edit the information of patient "+id+"?")
				if err != nil {
					return writeErr(cmd, err)
				}
				if !ok {
					return writeErr(cmd, declinedError{what: "edit patient " + id})
				}
			}
			url := c.EditPatientURL(id)
			if err := app.OpenURL(url); err != nil {
				return writeErr(cmd, fmt.Errorf("open %s: %w", url, err))
			}
			return writeOut(cmd, app, map[string]any{"url": url, "opened": true})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")
	return cmd
}

func newPatientsOpenCmd(app *App) *cobra.Command {
	var noBrowser bool
	cmd := &cobra.Command{
		Use:   "open <patient-id>",
		Short: "Open the patient's page in the browser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.remoteClient()
			if err != nil {
				return writeErr(cmd, err)
			}
			url := c.PatientURL(strings.TrimSpace(args[0]))
			if !noBrowser {
				if err := app.OpenURL(url); err != nil {
					return writeErr(cmd, fmt.Errorf("open %s: %w", url, err))
				}
			}
			return writeOut(cmd, app, map[string]any{"url": url, "opened": !noBrowser})
		},
	}
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Print the URL without opening it")
	return cmd
}
