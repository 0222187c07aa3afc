package main

import (
	"strings"

	"github.com/spf13/cobra"

	"shelver/internal/daemon"
	"shelver/internal/logging"
	"shelver/internal/preflight"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bindFlag string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the plan API over HTTP",
		Long: `Serve the plan API over HTTP.

Routes: GET /healthz, POST /v1/plan, POST /v1/execute, GET /v1/history and
GET /v1/history/{id}. When api.token is set, /v1 requests need
"Authorization: Bearer <token>". Only one server may run per state
directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			for _, result := range preflight.Failed(preflight.RunAll(cmd.Context(), cfg, false)) {
				logger.Warn("preflight check failed",
					logging.String("check", result.Name),
					logging.String("detail", result.Detail),
					logging.String(logging.FieldEventType, "preflight_failed"),
				)
			}

			rt, err := buildRuntime(cfg, logger, serviceOptions{planner: true, executor: true, history: true})
			if err != nil {
				return err
			}
			defer rt.Close()

			bind := cfg.API.Bind
			if strings.TrimSpace(bindFlag) != "" {
				bind = strings.TrimSpace(bindFlag)
			}
			d, err := daemon.New(daemon.Options{
				Bind:     bind,
				Token:    cfg.API.Token,
				LockPath: cfg.ServerLockPath(),
			}, rt.service, logger)
			if err != nil {
				return err
			}
			return d.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&bindFlag, "bind", "", "Listen address (overrides api.bind)")
	return cmd
}
