package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/creative-commoners/silverstripe-composer-update-checker/pkg/checker"
	"github.com/creative-commoners/silverstripe-composer-update-checker/pkg/repository"
)

// dependentsCommand creates the dependents command.
func (c *CLI) dependentsCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "dependents <vendor/package>",
		Short: "Show which packages constrain a package",
		Long: `Show every package that declares a constraint on the given package, and the
strictest of those constraints. The package does not need to be installed.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completePackages,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}

			l, err := c.load(cmd.Context())
			if err != nil {
				return err
			}
			deps, err := l.Dependents(args[0])
			if err != nil {
				return err
			}
			repo, err := l.Repository()
			if err != nil {
				return err
			}
			strictest, ok := checker.StrictestConstraint(repo, args[0])
			return writeDependents(cmd.OutOrStdout(), args[0], deps, strictest, ok, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table or json")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

type dependentOutput struct {
	Name       string `json:"name"`
	Version    string `json:"version,omitempty"`
	Constraint string `json:"constraint"`
	Kind       string `json:"kind"`
}

func writeDependents(w io.Writer, name string, deps []repository.Dependent, strictest string, constrained bool, format string) error {
	out := make([]dependentOutput, len(deps))
	for i, d := range deps {
		out[i] = dependentOutput{
			Name:       d.Package.PrettyName,
			Version:    d.Package.PrettyVersion,
			Constraint: d.Link.Constraint,
			Kind:       string(d.Link.Kind),
		}
	}
	if format == formatJSON {
		var s *string
		if constrained {
			s = &strictest
		}
		return writeJSON(w, struct {
			Package    string            `json:"package"`
			Strictest  *string           `json:"strictest"`
			Dependents []dependentOutput `json:"dependents"`
		}{name, s, out})
	}

	if len(deps) == 0 {
		printInfo(w, "Nothing depends on %s", StyleHighlight.Render(name))
		return nil
	}

	rows := make([][]string, len(out))
	for i, d := range out {
		rows[i] = []string{d.Name, orNone(d.Version), d.Constraint, d.Kind}
	}
	printTable(w, []string{"Dependent", "Version", "Constraint", "Kind"}, rows)
	printSuccess(w, "Strictest constraint on %s: %s", StyleHighlight.Render(name), StyleValue.Render(strictest))
	return nil
}
