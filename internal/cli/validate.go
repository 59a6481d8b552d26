package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/nerdneilsfield/go-md-translator/internal/config"
	"github.com/nerdneilsfield/go-md-translator/internal/frontmatter"
	"github.com/spf13/cobra"
)

// newValidateCommand 创建前置元数据校验命令
func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file> [file...]",
		Short: "校验 Markdown 文件的前置元数据",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				if err := frontmatter.Validate(path); err != nil {
					failed++
					color.New(color.FgRed).Fprintf(out, "✗ %s: %v\n", path, err)
					continue
				}
				color.New(color.FgGreen).Fprintf(out, "✓ %s\n", path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d file(s) failed validation", failed, len(args))
			}
			return nil
		},
	}
}

// newInitConfigCommand 创建默认配置文件生成命令
func newInitConfigCommand() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "生成默认配置文件",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.SaveConfig(config.NewDefaultConfig(), path); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			target := path
			if target == "" {
				target = "$HOME/.md-translator.yaml"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", target)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "path", "p", "", "配置文件路径 (默认 $HOME/.md-translator.yaml)")
	return cmd
}
