package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/s0up4200/lmsctl/lms"
)

var (
	assignNodeUID       string
	assignQualification int
	assignActivity      int
	listAssignments     bool
)

// assignCmd represents the assign command
var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Assign a qualification or activity to a node",
	Long: `Assign training to a user or group node, identified by its UID.

Use --list to show the node's current assignments instead.`,
	Example: `  lmsctl assign --node-uid 0f8fad5b-d9cb-469f-a165-70867728950e --qualification 42
  lmsctl assign --node-uid 0f8fad5b-d9cb-469f-a165-70867728950e --list`,
	RunE: runAssign,
}

func init() {
	assignCmd.Flags().StringVar(&assignNodeUID, "node-uid", "", "UID of the node receiving the training")
	assignCmd.Flags().IntVar(&assignQualification, "qualification", 0, "qualification ID to assign")
	assignCmd.Flags().IntVar(&assignActivity, "activity", 0, "activity ID to assign")
	assignCmd.Flags().BoolVar(&listAssignments, "list", false, "list current assignments")
	_ = assignCmd.MarkFlagRequired("node-uid")
	assignCmd.MarkFlagsMutuallyExclusive("qualification", "activity", "list")
	assignCmd.MarkFlagsOneRequired("qualification", "activity", "list")

	rootCmd.AddCommand(assignCmd)
}

func runAssign(cmd *cobra.Command, args []string) error {
	nodeUID, err := uuid.Parse(assignNodeUID)
	if err != nil {
		return fmt.Errorf("invalid --node-uid: %w", err)
	}

	ctx := commandContext(cmd)

	var assignments []lms.AssignmentInfo
	switch {
	case listAssignments:
		assignments, err = client.GetAssignments(ctx, nodeUID)
	case assignQualification != 0:
		assignments, err = client.AssignQualification(ctx, nodeUID, assignQualification)
	default:
		assignments, err = client.AssignActivity(ctx, nodeUID, assignActivity)
	}
	if err != nil {
		return fmt.Errorf("assignment failed: %s", describeError(err))
	}

	return render(cmd.OutOrStdout(), "assignments", assignments, formatAssignment)
}

func formatAssignment(a lms.AssignmentInfo) string {
	switch {
	case a.Qualification != nil:
		return fmt.Sprintf("qualification %d for node %d", a.Qualification.QualificationID, a.NodeID)
	case a.Activity != nil:
		return fmt.Sprintf("activity %d for node %d", a.Activity.ActivityID, a.NodeID)
	default:
		return fmt.Sprintf("node %d", a.NodeID)
	}
}
