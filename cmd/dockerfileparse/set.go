package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tim-vk/dockerfile-parse/pkg/dockerfile"
	"github.com/tim-vk/dockerfile-parse/pkg/logger"
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Rewrite a single property of a Dockerfile in place",
}

var setBaseImageCmd = &cobra.Command{
	Use:   "base-image PATH IMAGE[:TAG]",
	Short: "Set the base image of a Dockerfile's last FROM",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, image := args[0], args[1]
		parser, err := dockerfile.NewParser(dockerfile.WithPath(path))
		if err != nil {
			return fmt.Errorf("create parser: %w", err)
		}

		repo, tag, hasTag := strings.Cut(image, ":")
		if err := parser.SetBaseimage(repo); err != nil {
			return fmt.Errorf("set base image: %w", err)
		}
		if hasTag {
			if err := parser.SetBasetag(tag); err != nil {
				return fmt.Errorf("set base tag: %w", err)
			}
		}
		return nil
	},
}

var setCmdCmd = &cobra.Command{
	Use:   "cmd PATH COMMAND",
	Short: "Set or add the CMD instruction of a Dockerfile's final stage",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, command := args[0], args[1]
		parser, err := dockerfile.NewParser(dockerfile.WithPath(path))
		if err != nil {
			return fmt.Errorf("create parser: %w", err)
		}
		if err := parser.SetCmd(command); err != nil {
			return fmt.Errorf("set cmd: %w", err)
		}
		return nil
	},
}

func setKVCommand(use, short, keyword string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " PATH KEY=VALUE",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, kv := args[0], args[1]
			key, value, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("expected KEY=VALUE, got %q", kv)
			}

			parser, err := dockerfile.NewParser(dockerfile.WithPath(path))
			if err != nil {
				return fmt.Errorf("create parser: %w", err)
			}

			var handle *dockerfile.KVHandle
			switch keyword {
			case "LABEL":
				handle = parser.Labels()
			case "ENV":
				handle = parser.Envs()
			case "ARG":
				handle = parser.Args()
			}

			logger.WithPath(path).Debugf("setting %s %s=%s", keyword, key, value)

			if err := handle.SetOne(key, value); err != nil {
				return fmt.Errorf("set %s: %w", keyword, err)
			}
			return nil
		},
	}
}

func init() {
	setCmd.AddCommand(setBaseImageCmd)
	setCmd.AddCommand(setCmdCmd)
	setCmd.AddCommand(setKVCommand("label", "Set a LABEL binding", "LABEL"))
	setCmd.AddCommand(setKVCommand("env", "Set an ENV binding", "ENV"))
	setCmd.AddCommand(setKVCommand("arg", "Set an ARG binding", "ARG"))
}
