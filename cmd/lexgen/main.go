// Command lexgen compiles a YAML lexer grammar into Go transition tables.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/KromDaniel/lexgen/internal/compiler"
	"github.com/KromDaniel/lexgen/pkg/lexgen"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	logger := newLogger(stderr)
	cmd := newRootCmd(stdout, stderr, logger)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		logger.Error("lexgen failed", "error", err)
		return 1
	}
	return 0
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return attr
		},
	}))
}

type compileFlags struct {
	ignoreCase   bool
	noLiteralDFA bool
	verbose      bool
}

func (f *compileFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.ignoreCase, "ignore-case", false, "Match every regular expression case-insensitively")
	cmd.Flags().BoolVar(&f.noLiteralDFA, "no-literal-dfa", false, "Build string literals as NFA chains instead of the literal table")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Log construction decisions")
}

func newRootCmd(stdout, stderr io.Writer, logger *slog.Logger) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lexgen",
		Short: "Lexer table generator",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SilenceUsage = true
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.AddCommand(
		newBuildCmd(stdout, stderr, logger),
		newCheckCmd(stdout, stderr),
		newDumpCmd(stdout, stderr),
	)
	return rootCmd
}

func newBuildCmd(stdout, stderr io.Writer, logger *slog.Logger) *cobra.Command {
	var (
		flags  compileFlags
		output string
		pkg    string
		prefix string
	)
	cmd := &cobra.Command{
		Use:   "build <grammar.yaml>",
		Short: "Compile a grammar and write its tables as Go source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := lexgen.Compile(lexgen.Options{
				GrammarFile:  args[0],
				OutputFile:   output,
				Package:      pkg,
				Prefix:       prefix,
				IgnoreCase:   flags.ignoreCase,
				NoLiteralDFA: flags.noLiteralDFA,
				Verbose:      flags.verbose,
				LogOutput:    stderr,
			})
			if res != nil {
				printDiagnostics(stderr, res)
			}
			if err != nil {
				return err
			}
			if output == "" {
				return res.Render(stdout)
			}
			logger.Info("wrote tables", "file", output, "warnings", len(res.Warnings()))
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&pkg, "package", "tokens", "Go package of the generated file")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Prefix of generated identifiers (default \"Lexer\")")
	return cmd
}

func newCheckCmd(stdout, stderr io.Writer) *cobra.Command {
	var flags compileFlags
	cmd := &cobra.Command{
		Use:   "check <grammar.yaml>",
		Short: "Compile a grammar and report its diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := lexgen.Compile(lexgen.Options{
				GrammarFile:  args[0],
				IgnoreCase:   flags.ignoreCase,
				NoLiteralDFA: flags.noLiteralDFA,
				Verbose:      flags.verbose,
				LogOutput:    stderr,
			})
			if res == nil {
				return err
			}
			printDiagnostics(stdout, res)
			if err != nil {
				return err
			}
			t := res.Tables
			fmt.Fprintf(stdout, "%s: %d lexical states, %d token kinds, %d warnings\n",
				args[0], len(t.LexStateNames()), t.NumOrdinals(), len(res.Warnings()))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newDumpCmd(stdout, stderr io.Writer) *cobra.Command {
	var flags compileFlags
	cmd := &cobra.Command{
		Use:   "dump <grammar.yaml>",
		Short: "Compile a grammar and print its tables in readable form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := lexgen.Compile(lexgen.Options{
				GrammarFile:  args[0],
				IgnoreCase:   flags.ignoreCase,
				NoLiteralDFA: flags.noLiteralDFA,
				Verbose:      flags.verbose,
				LogOutput:    stderr,
			})
			if res != nil {
				printDiagnostics(stderr, res)
			}
			if err != nil {
				return err
			}
			dumpTables(stdout, res.Tables)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func dumpTables(w io.Writer, t *compiler.Tables) {
	for o := 0; o < t.NumOrdinals(); o++ {
		fmt.Fprintf(w, "ordinal %d %s kind=%s state=%s", o, t.Label(o), t.Kind(o), t.LexStateNames()[t.LexStateOf(o)])
		if next := t.NextLexState(o); next != compiler.NoState {
			fmt.Fprintf(w, " next=%s", t.LexStateNames()[next])
		}
		if a := t.Action(o); a != "" {
			fmt.Fprintf(w, " action=%s", a)
		}
		fmt.Fprintln(w)
	}

	for _, st := range t.States() {
		fmt.Fprintf(w, "\nlex state %s: initial=%d initMatch=%d anyChar=%d mixed=%t loop=%t\n",
			st.Name, st.InitialSet, st.InitMatch, st.CanMatchAnyChar, st.Mixed, st.CanLoop)
		for i, s := range st.States {
			m := st.Moves[i]
			fmt.Fprintf(w, "  state %d: ascii=%#x,%#x method=%d next=%d kind=%d\n",
				s.ID, m.ASCII[0], m.ASCII[1], m.Method, s.NextSet, s.MatchKind)
		}
		for _, c := range st.CompositeMoves {
			fmt.Fprintf(w, "  composite %d: members=%v\n", c.ID, c.Members)
		}
		if lt := st.Literals; lt != nil {
			for _, o := range lt.Ordinals() {
				image, _ := lt.Image(o)
				fmt.Fprintf(w, "  literal %q ordinal=%d substring=%t\n", image, o, lt.IsSubstring(o))
			}
		}
	}
	fmt.Fprintf(w, "\n%d vectors, %d non-ASCII methods\n", len(t.Vectors()), len(t.Methods()))
}

func printDiagnostics(w io.Writer, res *lexgen.Result) {
	for _, d := range res.Diagnostics {
		fmt.Fprintln(w, d.Error())
	}
}
