package cli

import (
	"github.com/spf13/cobra"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/app"
)

func newServeCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the compliance engine API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := getCLIContext(cmd)
			if err != nil {
				return err
			}
			if port > 0 {
				cc.cfg.Server.Port = port
			}

			a, err := app.New(cmd.Context(), cc.cfg, cc.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Run(cmd.Context())
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (overrides config)")
	return cmd
}
