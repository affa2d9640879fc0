package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mnemo-labs/mnemo-cli/internal/adapters/driven/ai"
)

// Known configuration keys, shown by `settings show`.
var settingsKeys = []string{
	"data.dir",
	"chunk.size",
	"chunk.overlap",
	"search.rrf_k",
	"search.fts_weight",
	"search.semantic_weight",
	"embedding.provider",
	"embedding.model",
	"embedding.base_url",
	"embedding.api_key",
	"embedding.dimensions",
	"llm.provider",
	"llm.model",
	"llm.base_url",
	"llm.api_key",
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure storage, chunking, retrieval, and provider
settings. Values are stored in the mnemo config file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Set a configuration value and persist it immediately.

Examples:
  mnemo settings set embedding.provider ollama
  mnemo settings set embedding.model nomic-embed-text
  mnemo settings set llm.provider anthropic
  mnemo settings set chunk.size 1000`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	RunE:  runSettingsPath,
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check provider connectivity",
	Long: `Build the configured embedding and LLM providers and ping their
endpoints, reporting which are reachable.`,
	RunE: runSettingsCheck,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsPathCmd)
	settingsCmd.AddCommand(settingsCheckCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	section := ""
	for _, key := range settingsKeys {
		keySection := key[:strings.Index(key, ".")]
		if keySection != section {
			if section != "" {
				cmd.Println()
			}
			section = keySection
			cmd.Printf("[%s]\n", section)
		}

		value, ok := configStore.Get(key)
		display := "(not set)"
		if ok {
			display = fmt.Sprintf("%v", value)
			if strings.HasSuffix(key, "api_key") {
				display = maskAPIKey(display)
			}
		}
		cmd.Printf("  %s = %s\n", key, display)
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, raw := args[0], args[1]

	// Store numerics as numbers so readers get the types they expect.
	var value any = raw
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		value = n
	} else if f, err := strconv.ParseFloat(raw, 64); err == nil {
		value = f
	} else if b, err := strconv.ParseBool(raw); err == nil {
		value = b
	}

	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}

	cmd.Printf("Set %s.\n", key)
	return nil
}

func runSettingsPath(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}
	cmd.Println(configStore.Path())
	return nil
}

func runSettingsCheck(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	if err := ai.ValidateEmbedding(configStore); err != nil {
		cmd.Printf("embedding: unavailable (%v)\n", err)
	} else {
		cmd.Println("embedding: ok")
	}

	if err := ai.ValidateLLM(configStore); err != nil {
		cmd.Printf("llm: unavailable (%v)\n", err)
	} else {
		cmd.Println("llm: ok")
	}

	return nil
}

// maskAPIKey hides all but the last four characters of a key.
func maskAPIKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
