package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/lmsctl/filter"
	"github.com/s0up4200/lmsctl/lms"
)

var (
	filterExpr  string
	contextNode int
	skipUsers   bool
	search      string
	parentID    int
	registry    string
	nodeType    string
	nodeSubType string
)

func init() {
	nodesCmd.Flags().IntVar(&contextNode, "context", 0, "list below this node (0 lists from the root)")
	nodesCmd.Flags().BoolVar(&skipUsers, "skip-users", false, "leave user nodes out")
	nodesCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression or preset name")

	nodeCmd.Flags().IntVar(&parentID, "parent", 0, "parent node ID (0 searches the whole directory)")
	nodeCmd.Flags().StringVar(&nodeType, "type", lms.NodeTypeOrganization.String(), "node type")
	nodeCmd.Flags().StringVar(&nodeSubType, "subtype", "", "node subtype")

	qualsCmd.Flags().IntVar(&contextNode, "context", 0, "list below this node")
	qualsCmd.Flags().StringVar(&search, "search", "", "search by name, including child registries")
	qualsCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression or preset name")

	activitiesCmd.Flags().IntVar(&parentID, "parent", 0, "node the registry belongs to")
	activitiesCmd.Flags().StringVar(&registry, "registry", "", "registry name")
	activitiesCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression or preset name")
	_ = activitiesCmd.MarkFlagRequired("parent")
	_ = activitiesCmd.MarkFlagRequired("registry")

	rootCmd.AddCommand(nodesCmd, nodeCmd, qualsCmd, activitiesCmd)
}

// nodesCmd represents the nodes command
var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "List directory nodes",
	Example: `  lmsctl nodes --skip-users
  lmsctl nodes --context 12 --filter 'subType == "Site" and icontains(name, "north")'`,
	RunE: runNodes,
}

func runNodes(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	nodes, err := client.GetNodes(ctx, contextNode, skipUsers)
	if err != nil {
		return fmt.Errorf("failed to list nodes: %s", describeError(err))
	}

	nodes, err = applyFilter(ctx, filter.NodeEnv, cfg.Filter.Nodes, filterExpr, nodes)
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), "nodes", nodes, formatNode)
}

// nodeCmd represents the node command
var nodeCmd = &cobra.Command{
	Use:   "node NAME",
	Short: "Look up a single node by name and type",
	Example: `  lmsctl node "Acme Corp"
  lmsctl node Springfield --parent 4 --type OrganizationalUnit --subtype Site`,
	Args: cobra.ExactArgs(1),
	RunE: runNode,
}

func runNode(cmd *cobra.Command, args []string) error {
	typ, err := lms.ParseNodeType(nodeType)
	if err != nil {
		return err
	}
	sub, err := lms.ParseNodeSubType(nodeSubType)
	if err != nil {
		return err
	}

	node, err := client.GetNode(commandContext(cmd), parentID, args[0], typ, sub)
	if err != nil {
		return fmt.Errorf("failed to look up node %q: %s", args[0], describeError(err))
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, node)
	}
	fmt.Fprintln(out, formatNode(node))
	return nil
}

// qualsCmd represents the quals command
var qualsCmd = &cobra.Command{
	Use:     "quals",
	Aliases: []string{"qualifications"},
	Short:   "List qualifications",
	Example: `  lmsctl quals --context 12
  lmsctl quals --search forklift --filter 'requirementCount > 2'`,
	RunE: runQuals,
}

func runQuals(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	var (
		quals []*lms.QualificationInfo
		err   error
	)
	if search != "" {
		quals, err = client.SearchQualifications(ctx, contextNode, search)
	} else {
		quals, err = client.GetQualifications(ctx, contextNode)
	}
	if err != nil {
		return fmt.Errorf("failed to list qualifications: %s", describeError(err))
	}

	quals, err = applyFilter(ctx, filter.QualificationEnv, cfg.Filter.Qualifications, filterExpr, quals)
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), "qualifications", quals, formatQualification)
}

// activitiesCmd represents the activities command
var activitiesCmd = &cobra.Command{
	Use:   "activities",
	Short: "List the activities in a registry",
	Example: `  lmsctl activities --parent 4 --registry "Safety Training"
  lmsctl activities --parent 4 --registry "Safety Training" --filter 'not sunset'`,
	RunE: runActivities,
}

func runActivities(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	activities, err := client.GetActivities(ctx, parentID, registry)
	if err != nil {
		return fmt.Errorf("failed to list activities: %s", describeError(err))
	}

	activities, err = applyFilter(ctx, filter.ActivityEnv, cfg.Filter.Activities, filterExpr, activities)
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), "activities", activities, formatActivity)
}

// applyFilter keeps the items matching expression, which may name one of
// presets. An empty expression keeps everything.
func applyFilter[T any](ctx context.Context, env filter.EnvFunc[T], presets map[string]string, expression string, items []T) ([]T, error) {
	if strings.TrimSpace(expression) == "" {
		return items, nil
	}

	registered := filter.NewPresets[T](filter.NewExprCompiler(env, filter.WithCache(len(presets)+1)))
	if err := registered.RegisterAll(presets); err != nil {
		return nil, fmt.Errorf("invalid filter preset: %w", err)
	}

	f, err := registered.Resolve(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}

	logger.Debug().Str("filter", f.Expression()).Int("items", len(items)).Msg("Applying filter")
	return filter.NewConcurrentEvaluator[T]().Evaluate(ctx, f, items)
}

func render[T any](out io.Writer, noun string, items []T, format func(T) string) error {
	if jsonOutput {
		if items == nil {
			items = []T{}
		}
		return writeJSON(out, items)
	}

	if len(items) == 0 {
		fmt.Fprintf(out, "No %s found.\n", noun)
		return nil
	}

	fmt.Fprintf(out, "\nFound %d %s:\n", len(items), noun)
	fmt.Fprintln(out, strings.Repeat("-", 80))
	for _, item := range items {
		fmt.Fprintf(out, "• %s\n", format(item))
	}
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatNode(n *lms.NodeInfo) string {
	kind := n.TypeID.String()
	if sub := n.SubTypeID.String(); sub != "" {
		kind += "/" + sub
	}
	return fmt.Sprintf("%s (ID: %d, %s, parent %d)", n.Name, n.NodeID, kind, n.ParentID)
}

func formatQualification(q *lms.QualificationInfo) string {
	s := fmt.Sprintf("%s (ID: %d, %d requirements)", q.Name, q.QualificationID, len(q.RequirementIDs))
	if q.SKU != "" {
		s += " SKU " + q.SKU
	}
	return s
}

func formatActivity(a *lms.ActivityInfo) string {
	s := fmt.Sprintf("%s (ID: %d)", a.Name, a.ActivityID)
	if a.ExternalID != "" {
		s += fmt.Sprintf(" [%s %s]", a.ExternalID, a.ExternalVersion)
	}
	return s
}
