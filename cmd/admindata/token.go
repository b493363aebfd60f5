package main

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/totegamma/admindata/internal/config"
	"github.com/totegamma/admindata/internal/domain"
	"github.com/totegamma/admindata/jwt"
)

func newTokenCmd(configPath *string) *cobra.Command {
	var (
		role string
		ttl  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue a session token signed with the configured secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch role {
			case domain.RoleAdmin, domain.RoleEditor, domain.RoleViewer:
			default:
				return errors.Errorf("unknown role %q", role)
			}
			conf, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			token, err := jwt.Create(jwt.NewClaims(args[0], role, ttl), conf.Server.SessionSecret)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", domain.RoleEditor, "admin, editor or viewer")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}
