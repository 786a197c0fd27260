// Package chat implements the financial advisor chat commands.
package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"fjacquet/finance-advisor/cmd/root"
	"fjacquet/finance-advisor/internal/aiclient"
	"fjacquet/finance-advisor/internal/apperror"
	"fjacquet/finance-advisor/internal/logging"
	"fjacquet/finance-advisor/internal/models"
	"fjacquet/finance-advisor/internal/validation"

	"github.com/spf13/cobra"
)

const maxSearchResults = 20

var (
	historyFile string
	topK        int
)

// Cmd represents the chat command
var Cmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Ask the financial advisor a question",
	Long: `Ask a question and get an answer grounded on the built-in financial
knowledge corpus. With --history the conversation is read from and saved back
to a JSON file, which must not be readable by other users.

Requires ai.enabled in the configuration.`,
	Args: cobra.MinimumNArgs(1),
	RunE: run,
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the financial knowledge corpus",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	Cmd.Flags().StringVar(&historyFile, "history", "", "JSON file holding the conversation history")
	searchCmd.Flags().IntVarP(&topK, "top", "k", 0, "Number of results (default: knowledge.top_k)")
	Cmd.AddCommand(searchCmd)
}

func run(cmd *cobra.Command, args []string) error {
	c, err := root.RequireContainer()
	if err != nil {
		return err
	}
	adv := c.GetAdvisor()
	if adv == nil {
		return &apperror.CapabilityError{
			Capability: aiclient.CapabilityCompletion,
			Provider:   "none",
			Kind:       apperror.CapabilityKindUnavailable,
			Err:        errors.New("chat requires ai.enabled"),
		}
	}

	history, err := loadHistory(historyFile)
	if err != nil {
		return err
	}

	reply, err := adv.Chat(root.Context(cmd), strings.Join(args, " "), history)
	if err != nil {
		return err
	}

	if historyFile != "" {
		if err := saveHistory(historyFile, reply.History); err != nil {
			return err
		}
		c.GetLogger().Debug("Saved chat history",
			logging.F(logging.FieldFile, historyFile),
			logging.F(logging.FieldCount, len(reply.History)))
	}
	return root.WriteResult(cmd, reply)
}

// loadHistory returns no turns when path is empty or does not exist yet.
func loadHistory(path string) ([]models.ChatTurn, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err := validation.IsPrivateFile(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chat history: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	var history []models.ChatTurn
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, apperror.NewValidationError("history", path, fmt.Sprintf("invalid JSON: %v", err))
	}
	return history, nil
}

func saveHistory(path string, history []models.ChatTurn) error {
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("encode chat history: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write chat history: %w", err)
	}
	return nil
}

type searchResult struct {
	Query   string                `json:"query" yaml:"query"`
	Results []models.SearchResult `json:"results" yaml:"results"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	c, err := root.RequireContainer()
	if err != nil {
		return err
	}
	k := topK
	if k == 0 {
		k = c.GetConfig().Knowledge.TopK
	}
	if k < 1 || k > maxSearchResults {
		return apperror.NewValidationError("top", fmt.Sprint(k), fmt.Sprintf("must be between 1 and %d", maxSearchResults))
	}

	query := strings.Join(args, " ")
	results, err := c.GetKnowledgeIndex().Search(root.Context(cmd), query, k)
	if err != nil {
		return err
	}
	return root.WriteResult(cmd, searchResult{Query: query, Results: results})
}
