package cli

import (
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/creative-commoners/silverstripe-composer-update-checker/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve package listings over HTTP",
		Long: `Load the project once and serve its package listings as JSON until
interrupted. See GET /packages, /packages/{vendor}/{name} and
/packages/{vendor}/{name}/dependents.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if cmd.Flags().Changed("addr") {
				c.cfg.Addr = addr
			}

			l, err := c.load(ctx)
			if err != nil {
				return err
			}

			logger := loggerFromContext(ctx)
			logger.Info("Serving packages", "types", typesLabel(c.cfg.AllowedTypes))
			srv := server.New(l, server.Options{
				AllowedTypes: c.cfg.AllowedTypes,
				Logger:       logger,
			})
			if err := srv.ListenAndServe(ctx, c.cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")

	return cmd
}
