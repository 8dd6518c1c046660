package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/creative-commoners/silverstripe-composer-update-checker/pkg/checker"
	"github.com/creative-commoners/silverstripe-composer-update-checker/pkg/errors"
)

// Output formats for list and dependents.
const (
	formatTable = "table"
	formatJSON  = "json"
)

type listOpts struct {
	types  []string
	format string
}

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	opts := listOpts{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List packages and the strictest constraint on each",
		Long: `List the root package and every installed package, each with the strictest
version constraint any dependent declares on it. Packages nothing depends on
are listed as unconstrained.`,
		Example: `  # Every package
  update-checker list --dir /var/www/site

  # Only vendor modules, as JSON
  update-checker list --type silverstripe-vendormodule --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			allowed := c.cfg.AllowedTypes
			if cmd.Flags().Changed("type") {
				allowed = opts.types
			}

			l, err := c.load(cmd.Context())
			if err != nil {
				return err
			}
			listing, err := l.GetPackages(allowed)
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("Listed packages", "types", typesLabel(allowed), "count", listing.Len())
			return writeListing(cmd.OutOrStdout(), listing, opts.format)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.types, "type", "t", nil, "package types to include (repeatable, comma-separated)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatTable, "output format: table or json")
	_ = cmd.RegisterFlagCompletionFunc("type", c.completeTypes)
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

func validateFormat(format string) error {
	switch format {
	case formatTable, formatJSON:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want %s or %s)", format, formatTable, formatJSON)
}

func writeListing(w io.Writer, listing *checker.Listing, format string) error {
	if format == formatJSON {
		return writeJSON(w, listing)
	}

	if listing.Len() == 0 {
		printInfo(w, "No packages match")
		return nil
	}

	rows := make([][]string, 0, listing.Len())
	constrained := 0
	for _, e := range listing.Entries() {
		constraint := iconNone
		if e.Constrained {
			constraint = e.Constraint
			constrained++
		}
		rows = append(rows, []string{e.Package.PrettyName, orNone(e.Package.PrettyVersion), e.Package.Type, constraint})
	}
	printTable(w, []string{"Package", "Version", "Type", "Constraint"}, rows)
	printDetail(w, "%d packages, %d constrained", listing.Len(), constrained)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode output")
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// typesLabel renders a type filter for messages.
func typesLabel(types []string) string {
	if types == nil {
		return "all types"
	}
	if len(types) == 0 {
		return "no types"
	}
	return strings.Join(types, ", ")
}
