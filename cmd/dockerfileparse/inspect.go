package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tim-vk/dockerfile-parse/pkg/dockerfile"
	"github.com/tim-vk/dockerfile-parse/pkg/logger"
	"github.com/tim-vk/dockerfile-parse/pkg/version"
)

var (
	inspectOutput    string
	inspectStructure bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect PATH",
	Short: "Print a summary of a Dockerfile's base image, labels, envs, and args",
	Long: `Inspect parses a Dockerfile and prints its base image, base tag,
parent images, CMD, and LABEL/ENV/ARG bindings from the final stage.

With --structure, it instead prints the file's full instruction-by-
instruction structure as an ordered array, one single-key object per
instruction or comment, in file order.

Examples:
  dockerfileparse inspect Dockerfile
  dockerfileparse inspect --output yaml Dockerfile
  dockerfileparse inspect --structure --output json Dockerfile`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("dockerfile not found at %s: %w", path, err)
		}

		logger.WithPath(path).Info("parsing")

		parser, err := dockerfile.NewParser(dockerfile.WithPath(path))
		if err != nil {
			return fmt.Errorf("create parser: %w", err)
		}

		if directive, ok, derr := parser.SyntaxDirective(); derr == nil && ok && !version.KnownSyntax(directive) {
			logger.WithPath(path).Warnf("syntax directive %q is outside %s; buildkit-only instructions may not parse as expected", directive, version.SupportedSyntax)
		}

		var out interface{}
		if inspectStructure {
			out, err = parser.JSON()
		} else {
			out, err = parser.Summary()
		}
		if err != nil {
			return fmt.Errorf("inspect %s: %w", path, err)
		}

		switch inspectOutput {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		case "yaml", "":
			enc := yaml.NewEncoder(os.Stdout)
			defer enc.Close()
			return enc.Encode(out)
		default:
			return fmt.Errorf("unknown output format: %s", inspectOutput)
		}
	},
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectOutput, "output", "o", "yaml", "Output format: yaml or json")
	inspectCmd.Flags().BoolVar(&inspectStructure, "structure", false, "Print the full ordered instruction/comment structure instead of the summary")
}

var digestCmd = &cobra.Command{
	Use:   "digest PATH",
	Short: "Print the content digest and fingerprint of a Dockerfile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		parser, err := dockerfile.NewParser(dockerfile.WithPath(path))
		if err != nil {
			return fmt.Errorf("create parser: %w", err)
		}

		d, err := parser.Digest()
		if err != nil {
			return fmt.Errorf("digest %s: %w", path, err)
		}

		fp, err := parser.Fingerprint()
		if err != nil {
			return fmt.Errorf("fingerprint %s: %w", path, err)
		}

		fmt.Printf("digest:      %s\n", d.String())
		fmt.Printf("fingerprint: %s\n", fp)
		return nil
	},
}
