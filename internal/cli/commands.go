package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AHorihuela/juno-sub001/internal/client"
	"github.com/AHorihuela/juno-sub001/internal/memory"
)

// daemon is a helper that connects to a running junomem daemon.
func daemon() (*client.Client, error) {
	c := client.New()
	if !c.Healthy() {
		return nil, fmt.Errorf("junomem daemon is not running (start it with 'junomem serve')")
	}
	return c, nil
}

// --- remember command ---

var (
	rememberUsefulness float64
	rememberType       string
	rememberSource     string
)

var rememberCmd = &cobra.Command{
	Use:   "remember [text]",
	Short: "Store a memory item in the running daemon",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRemember,
}

func init() {
	rememberCmd.Flags().Float64VarP(&rememberUsefulness, "usefulness", "u", 5, "Usefulness hint, 0-10")
	rememberCmd.Flags().StringVarP(&rememberType, "type", "t", "", "Item type (command, clipboard, highlight)")
	rememberCmd.Flags().StringVar(&rememberSource, "source", "cli", "Item source")

	recallCmd.Flags().IntVarP(&recallLimit, "limit", "n", 5, "Maximum number of results")
}

func runRemember(cmd *cobra.Command, args []string) error {
	c, err := daemon()
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]any{
		"content":    strings.Join(args, " "),
		"usefulness": rememberUsefulness,
		"metadata": memory.ItemMetadata{
			Type:   rememberType,
			Source: rememberSource,
		},
	})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	data, err := c.Post("/api/memory/items", body)
	if err != nil {
		return fmt.Errorf("add memory item: %w", err)
	}

	var item memory.MemoryItem
	if err := json.Unmarshal(data, &item); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	fmt.Printf("remembered %s [%.3f]\n", item.ID, item.RelevanceScore)
	return nil
}

// --- recall command ---

var recallLimit int

var recallCmd = &cobra.Command{
	Use:   "recall [command]",
	Short: "Find memories relevant to a command",
	Long:  "Score every stored memory item against the given command text and print the most relevant ones, best first.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRecall,
}

func runRecall(cmd *cobra.Command, args []string) error {
	c, err := daemon()
	if err != nil {
		return err
	}

	command := strings.Join(args, " ")
	path := fmt.Sprintf("/api/memory/relevant?command=%s&limit=%d", url.QueryEscape(command), recallLimit)
	data, err := c.Get(path)
	if err != nil {
		return fmt.Errorf("find relevant memories: %w", err)
	}

	var resp struct {
		Count int                  `json:"count"`
		Items []*memory.MemoryItem `json:"items"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.Count == 0 {
		fmt.Println("No relevant memories found.")
		return nil
	}

	for i, it := range resp.Items {
		content := it.Content
		if len(content) > 120 {
			content = content[:120] + "..."
		}
		fmt.Printf("%d. [%.3f] %s\n", i+1, it.RelevanceScore, content)
		fmt.Printf("   tier=%s accessed=%d\n", it.Metadata.Tier, it.AccessCount)
	}
	return nil
}

// --- stats command ---

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show memory store statistics",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	c, err := daemon()
	if err != nil {
		return err
	}

	data, err := c.Get("/api/memory/stats")
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	var stats memory.Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	fmt.Printf("items: %d (working %d, short-term %d, long-term %d)\n",
		stats.TotalItems,
		stats.ItemsByTier[memory.TierWorking],
		stats.ItemsByTier[memory.TierShortTerm],
		stats.ItemsByTier[memory.TierLongTerm])
	fmt.Printf("average relevance: %.3f\n", stats.AverageRelevanceScore)
	ops := stats.Operations
	fmt.Printf("operations: %d added, %d accessed, %d deleted, %d promoted, %d demoted, %d expired\n",
		ops.Additions, ops.Accesses, ops.Deletions, ops.Promotions, ops.Demotions, ops.Expirations)
	return nil
}

// --- usage command ---

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show AI token usage",
	RunE:  runUsage,
}

func runUsage(cmd *cobra.Command, args []string) error {
	c, err := daemon()
	if err != nil {
		return err
	}

	data, err := c.Get("/api/usage")
	if err != nil {
		return fmt.Errorf("get usage: %w", err)
	}

	var record memory.UsageRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	fmt.Printf("total tokens: %d (this session: %d)\n", record.TotalTokens, record.SessionTokens)

	if len(record.ModelUsage) > 0 {
		models := make([]string, 0, len(record.ModelUsage))
		for m := range record.ModelUsage {
			models = append(models, m)
		}
		sort.Strings(models)
		fmt.Println("by model:")
		for _, m := range models {
			fmt.Printf("  %s: %d\n", m, record.ModelUsage[m])
		}
	}
	return nil
}
