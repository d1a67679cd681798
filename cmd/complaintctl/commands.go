package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/complaintdesk/portal/internal/config"
	"github.com/complaintdesk/portal/internal/models"
	"github.com/complaintdesk/portal/internal/services"
	"github.com/complaintdesk/portal/internal/upstream"
	"github.com/spf13/cobra"
)

var submitForm models.ComplaintForm

var submitCmd = &cobra.Command{
	Use:   "submit [description]",
	Short: "Submit a complaint",
	Long: `Submit a complaint to the persistence API.

Blank category, priority, department or type are filled in by the analyzer
before the complaint is posted. Values given on the command line are kept.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSubmit,
}

var submitDomain string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <text>",
	Short: "Classify complaint text without submitting it",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

var listFilter services.ListFilter

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List complaints",
	RunE:  runList,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dashboard statistics",
	RunE:  runStats,
}

var statusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Change the status of a complaint",
	Long: `Change the status of a complaint.

Valid statuses: ` + strings.Join(models.Statuses(), ", ") + `
Matching is case-insensitive.`,
	Args: cobra.ExactArgs(2),
	RunE: runStatus,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the persistence API and the analyzer",
	RunE:  runHealth,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a config file with default settings",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

var configInitForce bool

func init() {
	f := submitCmd.Flags()
	f.StringVar(&submitForm.Title, "title", "", "Complaint title")
	f.StringVar(&submitForm.Description, "description", "", "Complaint description")
	f.StringVar(&submitForm.Category, "category", "", "Category")
	f.StringVar(&submitForm.Priority, "priority", "", "Priority (Low, Medium, High, Critical)")
	f.StringVar(&submitForm.Department, "department", "", "Department")
	f.StringVar(&submitForm.Type, "type", "", "Complaint type")
	f.StringVar(&submitForm.ContactInfo, "contact", "", "Contact information")
	f.StringVar(&submitForm.UserType, "user-type", models.DefaultUserType, "Submitter role")
	f.StringVar(&submitDomain, "domain", services.FallbackDomain, "Deployment domain")

	lf := listCmd.Flags()
	lf.StringVar(&listFilter.Status, "status", "", "Filter by status")
	lf.StringVar(&listFilter.Priority, "priority", "", "Filter by priority")
	lf.StringVar(&listFilter.Category, "category", "", "Filter by category")
	lf.StringVarP(&listFilter.Search, "search", "s", "", "Search title and description")

	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, timeout)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	form := submitForm
	if len(args) == 1 {
		form.Description = args[0]
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	result, err := submission.Submit(ctx, form, submitDomain)
	if err != nil {
		return cliError(err, "Failed to submit complaint")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Complaint submitted successfully")
	return renderComplaint(out, result.Complaint)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	analysis, _, err := submission.AnalyzeText(ctx, args[0])
	if err != nil {
		return cliError(err, "Analysis Error")
	}
	return renderAnalysis(cmd.OutOrStdout(), analysis)
}

func runList(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	list, err := complaints.List(ctx, true)
	if err != nil {
		return cliError(err, "Failed to load complaints")
	}
	list = services.Newest(services.Filter(list, listFilter), -1)
	return renderComplaints(cmd.OutOrStdout(), list)
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	stats, err := services.NewDashboardService(complaints).Stats(ctx, true)
	if err != nil {
		return cliError(err, "Failed to load complaints")
	}
	return renderStats(cmd.OutOrStdout(), stats)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	updated, err := complaints.UpdateStatus(ctx, args[0], args[1])
	if err != nil {
		return cliError(err, "Failed to update status")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Status updated to %s\n", updated.Status)
	return nil
}

func runHealth(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	report := client.Health(ctx)
	if err := renderHealth(cmd.OutOrStdout(), report); err != nil {
		return err
	}
	if report.Status != upstream.StatusHealthy {
		return fmt.Errorf("upstream is %s", report.Status)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := "config.yaml"
	if len(args) == 1 {
		path = args[0]
	}
	if !configInitForce {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	if err := config.DefaultConfig().Save(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

// cliError turns service errors into the same messages the web portal shows.
func cliError(err error, prefix string) error {
	switch {
	case errors.Is(err, services.ErrDescriptionRequired):
		return errors.New("Please enter a complaint description")
	case errors.Is(err, services.ErrInvalidStatus):
		return err
	case errors.Is(err, services.ErrBackendUnavailable):
		return errors.New("Backend unavailable")
	}
	return fmt.Errorf("%s: %s", prefix, upstream.UserMessage(err, err.Error()))
}
