package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/wonder-codes/echo-repo/internal/services"
	"github.com/wonder-codes/echo-repo/internal/utils"
)

var (
	genRepo        string
	genPath        string
	genIncludes    []string
	genIncludeFile string
	genFile        string
	genRender      bool
	genOut         string
)

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&genRepo, "repo", "", "repository to document, e.g. https://github.com/owner/repo")
	generateCmd.Flags().StringVar(&genPath, "path", "", "local directory to read sources from")
	generateCmd.Flags().StringSliceVar(&genIncludes, "include", nil, "glob under --path to include (supports **); repeatable")
	generateCmd.Flags().StringVar(&genIncludeFile, "include-file", "", "file with one --include pattern per line (# comments allowed)")
	generateCmd.Flags().StringVar(&genFile, "file", "", "single file to document, - for stdin")
	generateCmd.Flags().BoolVar(&genRender, "render", false, "render the Markdown for the terminal")
	generateCmd.Flags().StringVar(&genOut, "out", "", "write the README to this file instead of stdout")
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one README and store it in the history",
	Example: `  echorepo generate --repo https://github.com/acme/widget
  echorepo generate --path . --include '**/*.go' --render
  cat main.py | echorepo generate --file -`,
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := readInlineCode(cmd.InOrStdin())
		if err != nil {
			return err
		}

		svc, err := services.NewServices(cmd.Context(), cfg, services.NewKeyringService(), logger)
		if err != nil {
			return err
		}
		defer svc.Close()

		readme, err := svc.Readmes.Generate(cmd.Context(), services.GenerateRequest{
			Code:                code,
			RepositoryReference: genRepo,
		})
		if err != nil {
			return err
		}
		logger.Info().Str("id", readme.ID).Str("title", readme.Title).Msg("readme stored")

		if genOut != "" {
			if err := os.WriteFile(genOut, []byte(readme.Content), 0o644); err != nil {
				return errors.Wrap(err, "write readme")
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "README written to %s\n", genOut)
			return nil
		}
		return printMarkdown(cmd.OutOrStdout(), readme.Content, genRender)
	},
}

// readInlineCode gathers the inline code selected by --file or --path. It
// returns "" when only --repo is used.
func readInlineCode(stdin io.Reader) (string, error) {
	switch {
	case genFile == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", errors.Wrap(err, "read stdin")
		}
		return string(b), nil
	case genFile != "":
		b, err := os.ReadFile(genFile)
		if err != nil {
			return "", errors.Wrapf(err, "read %s", genFile)
		}
		return string(b), nil
	case genPath != "" || len(genIncludes) > 0 || genIncludeFile != "":
		patterns := append([]string(nil), genIncludes...)
		if genIncludeFile != "" {
			lines, err := utils.ReadIncludePatterns(genIncludeFile)
			if err != nil {
				return "", errors.Wrapf(err, "read %s", genIncludeFile)
			}
			patterns = append(patterns, lines...)
		}
		root := genPath
		if root == "" {
			root = "."
		}
		return services.CollectLocalSources(root, patterns, cfg.SourceExtensions)
	default:
		return "", nil
	}
}

// printMarkdown writes md to w, rendered for the terminal when asked and w
// is one.
func printMarkdown(w io.Writer, md string, render bool) error {
	if render && isTTY(w) {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
		if err == nil {
			if out, err := r.Render(md); err == nil {
				md = out
			}
		}
	}
	_, err := io.WriteString(w, md)
	if err == nil && !strings.HasSuffix(md, "\n") {
		_, err = io.WriteString(w, "\n")
	}
	return err
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
