package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tim-vk/dockerfile-parse/pkg/dockerfile"
	"github.com/tim-vk/dockerfile-parse/pkg/logger"
)

var addCmd = &cobra.Command{
	Use:   "add PATH KEYWORD VALUE",
	Short: "Append a new instruction to the end of a Dockerfile",
	Long: `Add appends a new instruction to the end of a Dockerfile. For
LABEL, ENV, and ARG, VALUE may be given as KEY=VALUE and is written as a
single-binding key=value instruction; any other keyword writes VALUE
verbatim after KEYWORD.

Examples:
  dockerfileparse add Dockerfile RUN "apt-get update"
  dockerfileparse add Dockerfile LABEL version=1.0`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, keyword, value := args[0], args[1], args[2]

		parser, err := dockerfile.NewParser(dockerfile.WithPath(path))
		if err != nil {
			return fmt.Errorf("create parser: %w", err)
		}
		logger.WithPath(path).Debugf("adding %s instruction", keyword)

		upper := strings.ToUpper(keyword)
		if upper == "LABEL" || upper == "ENV" || upper == "ARG" {
			if key, val, ok := strings.Cut(value, "="); ok {
				if err := parser.AddKeyValueInstruction(keyword, key, val); err != nil {
					return fmt.Errorf("add %s: %w", keyword, err)
				}
				return nil
			}
		}

		if err := parser.AddInstruction(keyword, value); err != nil {
			return fmt.Errorf("add %s: %w", keyword, err)
		}
		return nil
	},
}
