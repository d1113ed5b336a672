package command

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"todolist-api/internal/auth"
)

func userCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User commands",
	}
	cmd.AddCommand(
		userCreateCommand(),
	)
	return cmd
}

func userCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create user",
		Long: "Registers the provided username with a password. Passwords may be\n" +
			"provided via stdin or through the interactive prompt.",

		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (runErr error) {
			cfg, logger, store, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			svc := auth.NewService(
				store,
				auth.NewHasher(cfg.Auth.BcryptCost),
				auth.NewCodec([]byte(cfg.Auth.SecretKey), cfg.Auth.TokenTTL),
			)

			name := args[0]
			passwd, err := prompt("password: ", true)
			if err != nil {
				return err
			}
			user, err := svc.Register(cmd.Context(), name, string(passwd))
			if err != nil {
				return err
			}

			logger.InfoContext(cmd.Context(), "created user",
				slog.String("name", user.Name),
				slog.Int64("id", user.ID),
			)
			return nil
		},
	}
}
