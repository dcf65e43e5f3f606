package ui

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/johnwlockwood/knowledge-graph/internal/cli/types"
)

// PrintStreamStart prints the session banner from the first stream frame.
func PrintStreamStart(start types.StreamStart) {
	fmt.Println()
	fmt.Printf("%s %s\n", Styles.Bold.Render("Subject:"), Styles.Subject.Render(start.Subject))
	fmt.Printf("%s %s\n", Styles.Bold.Render("Model:  "), start.Model)
	fmt.Printf("%s %s\n", Styles.Bold.Render("Session:"), start.ID)
	fmt.Println()
}

// PrintNode prints one streamed node.
func PrintNode(node types.Node) {
	fmt.Printf("  %s %s\n", Styles.NodeLabel.Render("●"), node.Label)
}

// PrintEdge prints one streamed edge.
func PrintEdge(edge types.Edge) {
	fmt.Printf("  %s %d %s %d\n",
		Styles.EdgeLabel.Render("──"),
		edge.Source,
		Styles.EdgeLabel.Render(fmt.Sprintf("─%s→", edge.Label)),
		edge.Target,
	)
}

// PrintUser prints one streamed synthetic user.
func PrintUser(user types.User) {
	fmt.Printf("  %s %s (%d)\n", Styles.NodeLabel.Render("●"), user.Name, user.Age)
}

// PrintGraphSummary prints a boxed summary after a completed generation.
func PrintGraphSummary(subject, model string, nodes, edges int) {
	content := fmt.Sprintf("%s\n\nNodes: %d\nEdges: %d\nModel: %s",
		Styles.Subject.Render(subject),
		nodes, edges, model,
	)
	fmt.Println(Styles.SummaryBox.Render(content))
}

// PrintGraphResult prints a complete one-shot generation result.
func PrintGraphResult(result *types.GraphResult, asJSON bool) error {
	if asJSON {
		data, err := sonic.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	created := time.UnixMilli(result.CreatedAt).Format("2006-01-02 15:04:05")
	fmt.Println()
	fmt.Printf("%s %s\n", Styles.Bold.Render("Subject:"), Styles.Subject.Render(result.Subject))
	fmt.Printf("%s %s\n", Styles.Bold.Render("Created:"), created)
	fmt.Println()

	PrintBold("NODES")
	for _, node := range result.Graph.Nodes {
		PrintNode(node)
	}
	fmt.Println()

	PrintBold("EDGES")
	for _, edge := range result.Graph.Edges {
		PrintEdge(edge)
	}
	fmt.Println()

	PrintGraphSummary(result.Subject, result.Model, len(result.Graph.Nodes), len(result.Graph.Edges))
	return nil
}
