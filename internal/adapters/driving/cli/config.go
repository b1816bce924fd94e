package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docrag/internal/config"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "View and change configuration",
	Long:        `Read and write keys in config.toml. Run 'docrag config keys' for the full list.`,
	Annotations: map[string]string{skipBootstrap: "true"},
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one key, or every stored key",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Store a configuration value",
	Long: `Store a configuration value. Lists are comma separated:
  docrag config set chunking.strategies structure,window`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Store the embedding API key without echoing it",
	Args:  cobra.NoArgs,
	RunE:  runConfigSetKey,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List every recognised key",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		for _, k := range config.Keys() {
			cmd.Println(k)
		}
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := loadConfigStore()
		if err != nil {
			return err
		}
		cmd.Println(store.Path())
		return nil
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration and ping the embedding provider",
	Args:  cobra.NoArgs,
	RunE:  runConfigCheck,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSetKeyCmd)
	configCmd.AddCommand(configKeysCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configCheckCmd)
	rootCmd.AddCommand(configCmd)
}

func loadConfigStore() (driven.ConfigStore, error) {
	if configStore != nil {
		return configStore, nil
	}
	if openConfig == nil {
		return nil, errNoConfig
	}
	store, err := openConfig()
	if err != nil {
		return nil, err
	}
	configStore = store
	return store, nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	store, err := loadConfigStore()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		v, ok := store.Get(args[0])
		if !ok {
			return fmt.Errorf("%s is not set", args[0])
		}
		cmd.Println(displayValue(args[0], v))
		return nil
	}

	keys := store.Keys()
	if len(keys) == 0 {
		cmd.Println("No configuration stored; defaults apply.")
		return nil
	}
	for _, k := range keys {
		v, _ := store.Get(k)
		cmd.Printf("%s = %s\n", k, displayValue(k, v))
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	store, err := loadConfigStore()
	if err != nil {
		return err
	}
	if err := config.Set(store, args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("Set %s\n", args[0])
	return nil
}

func runConfigSetKey(cmd *cobra.Command, _ []string) error {
	store, err := loadConfigStore()
	if err != nil {
		return err
	}

	cmd.Print("API key: ")
	key := readPassword(cmd)
	cmd.Println()
	if key == "" {
		return errors.New("no key entered")
	}
	if err := config.Set(store, config.KeyEmbedAPIKey, key); err != nil {
		return err
	}
	cmd.Printf("Stored %s (%s)\n", config.KeyEmbedAPIKey, maskAPIKey(key))
	return nil
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	store, err := loadConfigStore()
	if err != nil {
		return err
	}
	settings, err := config.NewLoader(store).Load()
	if err != nil {
		return err
	}
	cmd.Println("Configuration is valid.")

	if aiValidator == nil {
		return nil
	}
	if !settings.Embedding.IsConfigured() {
		cmd.Println("Embedding provider is not configured.")
		return nil
	}
	if err := aiValidator.ValidateEmbedding(&settings.Embedding); err != nil {
		return fmt.Errorf("embedding provider %s: %w", settings.Embedding.Provider, err)
	}
	cmd.Printf("Embedding provider %s is reachable.\n", settings.Embedding.Provider)
	return nil
}

func displayValue(key string, v any) string {
	if config.IsSecret(key) {
		if s, ok := v.(string); ok {
			return maskAPIKey(s)
		}
	}
	switch list := v.(type) {
	case []string:
		return strings.Join(list, ",")
	case []any:
		parts := make([]string, len(list))
		for i, item := range list {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v)
}

// readPassword reads without echo from a terminal, or a line from cmd's input otherwise.
func readPassword(cmd *cobra.Command) string {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	input, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
