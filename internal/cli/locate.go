package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/langpatch/pkg/anchor"
	"github.com/matzehuels/langpatch/pkg/langs"
	"github.com/matzehuels/langpatch/pkg/patch"
	"github.com/matzehuels/langpatch/pkg/registry"
)

// locateCommand creates the locate command that finds the insertion line of
// a single definition and optionally patches it.
func (c *CLI) locateCommand() *cobra.Command {
	var (
		showStack bool
		add       []string
		write     bool
	)

	cmd := &cobra.Command{
		Use:   "locate <file> [class]",
		Short: "Print the line after which declarations are inserted",
		Long: `Print the line after which declarations are inserted.

The class defaults to the name derived from the definition's directory
(packages/py-numpy/package.py → PyNumpy). With --add the patched text is
printed to stdout, or written back to the file with --write. Languages
already declared by a generated line are not added again.`,
		Example: `  langpatch locate packages/zlib/package.py
  langpatch locate package.py Zlib --stack
  langpatch locate packages/zlib/package.py --add c,cxx --write`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			class := registry.ClassName(filepath.Base(filepath.Dir(path)))
			if len(args) == 2 {
				class = args[1]
			}
			set, err := parseLanguages(add)
			if err != nil {
				return err
			}
			if write && set.Empty() {
				return fmt.Errorf("--write requires --add")
			}
			return c.runLocate(cmd, path, class, set, showStack, write)
		},
	}

	cmd.Flags().BoolVar(&showStack, "stack", false, "print the statements enclosing the last version() call")
	cmd.Flags().StringSliceVarP(&add, "add", "a", nil, "language tags to declare (c, cxx, fortran)")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the patched definition back to the file")
	_ = cmd.RegisterFlagCompletionFunc("add", completeLanguageTags)

	return cmd
}

func (c *CLI) runLocate(cmd *cobra.Command, path, class string, set langs.Set, showStack, write bool) error {
	logger := loggerFromContext(cmd.Context())
	out := cmd.OutOrStdout()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read definition: %w", err)
	}

	a, err := (&anchor.Locator{Policy: anchor.DefaultPolicy}).Locate(data, class)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("located anchor", "file", path, "class", class, "line", a.Line, "versions", a.Versions)

	if set.Empty() {
		fmt.Fprintln(out, a.Line)
		if showStack {
			printStack(out, a.Stack)
		}
		return nil
	}

	src := string(data)
	missing := set.Without(patch.Declared(src))
	if missing.Empty() {
		if write {
			printInfo(out, "%s already declares %s", path, set)
			return nil
		}
		_, err := io.WriteString(out, src)
		return err
	}

	patched, err := patch.Insert(src, a.Line, patch.Declarations(missing))
	if err != nil {
		return err
	}
	if !write {
		_, err := io.WriteString(out, patched)
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(patched), info.Mode().Perm()); err != nil {
		return fmt.Errorf("write definition: %w", err)
	}
	printSuccess(out, "Declared %s after line %d", missing, a.Line)
	printFile(out, path)
	return nil
}

// parseLanguages converts language tags into a set.
func parseLanguages(tags []string) (langs.Set, error) {
	var set langs.Set
	for _, t := range tags {
		l, ok := langs.FromTag(t)
		if !ok {
			return 0, fmt.Errorf("unknown language %q (want c, cxx or fortran)", t)
		}
		set = set.Add(l)
	}
	return set, nil
}

func printStack(w io.Writer, stack []anchor.Span) {
	for i, s := range stack {
		printDetail(w, "%*s%s %d-%d", 2*i, "", s.Kind, s.StartLine, s.EndLine)
	}
}
