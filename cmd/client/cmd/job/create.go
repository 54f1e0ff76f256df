package job

import (
	"fmt"

	"github.com/spf13/cobra"

	"fibertrace/internal/app/client"
	"fibertrace/internal/domain/job"
)

var (
	jobName          string
	jobDescription   string
	estimatedMinutes int64
	estimatedCost    float64
	nodeIDs          []string
	routeIDs         []string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new installation job",
	Long: `Creates a job in pending state. The identifier is allocated
locally (JOB-001, JOB-002, ...) and may be reassigned by the server
if another device claimed the same number first.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}
		if jobName == "" {
			return fmt.Errorf("--name is required")
		}

		j, err := app.Jobs().Create(job.CreateParams{
			Name:                     jobName,
			Description:              jobDescription,
			EstimatedDurationSeconds: estimatedMinutes * 60,
			EstimatedCost:            estimatedCost,
			NodeIDs:                  nodeIDs,
			RouteIDs:                 routeIDs,
		})
		if err != nil {
			return fmt.Errorf("failed to create job: %w", err)
		}

		fmt.Printf("Created job %s (%s)\n", j.ID, j.Name)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVarP(&jobName, "name", "n", "", "job name")
	createCmd.Flags().StringVarP(&jobDescription, "description", "d", "", "job description")
	createCmd.Flags().Int64Var(&estimatedMinutes, "estimate", 0, "estimated duration in minutes")
	createCmd.Flags().Float64Var(&estimatedCost, "cost", 0, "estimated cost")
	createCmd.Flags().StringSliceVar(&nodeIDs, "node", nil, "node id involved in the job (repeatable)")
	createCmd.Flags().StringSliceVar(&routeIDs, "route", nil, "route id involved in the job (repeatable)")

	JobCmd.AddCommand(createCmd)
}
