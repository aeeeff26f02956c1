package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/chainreaction/internal/api/response"
	"github.com/mcoot/chainreaction/internal/model"
)

func newPresetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Board preset commands",
	}

	cmd.AddCommand(newPresetListCmd())
	cmd.AddCommand(newPresetGetCmd())
	cmd.AddCommand(newPresetPutCmd())
	cmd.AddCommand(newPresetDeleteCmd())
	cmd.AddCommand(newPresetSchemaCmd())

	return cmd
}

func newPresetListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List board presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.PresetList
			if err := client.Get("/api/v1/presets", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newPresetGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Show a board preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result model.Preset
			if err := client.Get(presetPath(args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(&result)
			return nil
		},
	}
}

func newPresetPutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put <name> <file>",
		Short: "Create or replace a board preset from a JSON file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}

			var p model.Preset
			if err := json.Unmarshal(data, &p); err != nil {
				return fmt.Errorf("invalid preset file: %w", err)
			}

			var result model.Preset
			if err := client.Put(presetPath(args[0]), &p, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(&result)
			return nil
		},
	}
}

func newPresetDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a board preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(presetPath(args[0])); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Preset deleted")
			return nil
		},
	}
}

func newPresetSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema for preset files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result json.RawMessage
			if err := client.Get("/api/v1/presets/schema", &result); err != nil {
				return err
			}

			NewOutput("json").Print(result)
			return nil
		},
	}
}

func presetPath(name string) string {
	return "/api/v1/presets/" + url.PathEscape(name)
}
