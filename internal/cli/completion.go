package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/creative-commoners/silverstripe-composer-update-checker/pkg/repository"
)

// shell describes how to generate and install completions for one shell.
type shell struct {
	name    string
	install string // Where a generated script goes to persist across sessions
	gen     func(root *cobra.Command, w io.Writer) error
}

var shells = []shell{
	{
		name:    "bash",
		install: "/etc/bash_completion.d/" + appName,
		gen:     func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
	},
	{
		name:    "zsh",
		install: `"${fpath[1]}/_` + appName + `"`,
		gen:     func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
	},
	{
		name:    "fish",
		install: "~/.config/fish/completions/" + appName + ".fish",
		gen:     func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	},
	{
		name:    "powershell",
		install: appName + ".ps1, sourced from your profile",
		gen:     func(root *cobra.Command, w io.Writer) error { return root.GenPowerShellCompletionWithDesc(w) },
	},
}

func shellNames() []string {
	names := make([]string, len(shells))
	for i, s := range shells {
		names[i] = s.name
	}
	return names
}

// completionCommand creates the completion command.
func (c *CLI) completionCommand() *cobra.Command {
	var long strings.Builder
	long.WriteString("Generate a shell completion script for " + appName + ".\n\n")
	long.WriteString("Package names for 'dependents' and types for 'list --type' are completed from\n")
	long.WriteString("the project in --dir (or the configured base path).\n\n")
	long.WriteString("To persist completions, write the script to:\n")
	for _, s := range shells {
		fmt.Fprintf(&long, "  %-11s %s\n", s.name, s.install)
	}

	return &cobra.Command{
		Use:                   "completion [" + strings.Join(shellNames(), "|") + "]",
		Short:                 "Generate shell completion scripts",
		Long:                  long.String(),
		DisableFlagsInUseLine: true,
		ValidArgs:             shellNames(),
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			i := slices.IndexFunc(shells, func(s shell) bool { return s.name == args[0] })
			return shells[i].gen(cmd.Root(), cmd.OutOrStdout())
		},
	}
}

// completePackages completes the first argument with installed package names.
func (c *CLI) completePackages(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	repo, err := c.completionRepository(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var names []string
	for _, p := range repo.Packages() {
		if strings.HasPrefix(p.Name, strings.ToLower(toComplete)) {
			names = append(names, p.PrettyName)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// completeTypes completes --type with the package types present in the project.
func (c *CLI) completeTypes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	repo, err := c.completionRepository(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var types []string
	for _, p := range repo.Packages() {
		if strings.HasPrefix(p.Type, toComplete) && !slices.Contains(types, p.Type) {
			types = append(types, p.Type)
		}
	}
	slices.Sort(types)
	return types, cobra.ShellCompDirectiveNoFileComp
}

func completeFormats(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return []string{formatTable, formatJSON}, cobra.ShellCompDirectiveNoFileComp
}

// completionRepository loads the project for a completion request.
// Completion runs without the root pre-run hook, so the config is set up
// here, and logging is quieted so it cannot garble the shell's output.
func (c *CLI) completionRepository(cmd *cobra.Command) (repository.Repository, error) {
	if cmd.Context() == nil {
		cmd.SetContext(context.Background())
	}
	if err := c.setup(cmd, nil); err != nil {
		return nil, err
	}
	c.SetLogLevel(log.ErrorLevel)

	l := c.newLoader(cmd.Context())
	if err := l.OnAfterBuild(cmd.Context()); err != nil {
		return nil, err
	}
	return l.Repository()
}
