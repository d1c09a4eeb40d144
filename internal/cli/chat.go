package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/petalrow/bloom/internal/consult"
	"github.com/petalrow/bloom/internal/extract"
)

func init() {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive shopping session",
		Long:  "Chat with the assistant. Preferences accumulate across turns; say things like \"remove the budget\" or \"start over\" to adjust them. Type 'filters' to inspect the active filters, 'reset' to clear them, 'exit' to leave.",
		Args:  cobra.NoArgs,
		Run:   runChat,
	}
	RootCmd.AddCommand(cmd)
}

func runChat(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}

	ex, err := extract.NewOpenAIExtractor(extract.OpenAIConfig{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
	})
	if err != nil {
		exitErr("init extractor", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		exitErr("open catalog", err)
	}
	defer store.Close()

	c := consult.New(ex, store)
	c.SetLimit(cfg.ResultLimit)

	fmt.Println("Welcome to bloom. What kind of flowers are you looking for?")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case "exit", "quit":
			fmt.Println("Goodbye!")
			return
		case "reset":
			c.Reset()
			fmt.Println("Filters cleared.")
			continue
		case "filters":
			b, _ := json.MarshalIndent(c.Filters(), "", "  ")
			fmt.Println(string(b))
			continue
		}

		resp, err := c.Ask(cmd.Context(), line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(resp.Message)
	}
}
