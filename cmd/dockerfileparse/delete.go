package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tim-vk/dockerfile-parse/pkg/dockerfile"
	"github.com/tim-vk/dockerfile-parse/pkg/logger"
)

var deleteCmd = &cobra.Command{
	Use:   "delete PATH KEYWORD [KEY]",
	Short: "Delete an instruction, or one binding of a LABEL/ENV/ARG instruction",
	Long: `Delete removes every instruction matching KEYWORD from a Dockerfile.
If KEY is given, only the matching binding (LABEL/ENV/ARG) or FROM image
is removed instead of every instruction of that keyword.

Examples:
  dockerfileparse delete Dockerfile LABEL maintainer
  dockerfileparse delete Dockerfile EXPOSE`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, keyword := args[0], args[1]
		key := ""
		if len(args) == 3 {
			key = args[2]
		}

		parser, err := dockerfile.NewParser(dockerfile.WithPath(path))
		if err != nil {
			return fmt.Errorf("create parser: %w", err)
		}
		logger.WithPath(path).Debugf("deleting %s %s", keyword, key)

		if err := parser.DeleteInstructions(keyword, key); err != nil {
			return fmt.Errorf("delete %s: %w", keyword, err)
		}
		return nil
	},
}
