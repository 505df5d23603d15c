package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"report-service/internal/auth"
	"report-service/internal/config"
	"report-service/internal/db"
	"report-service/internal/logger"
	"report-service/internal/model"
	"report-service/internal/repository"
	"report-service/internal/service"
)

func newAdminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
	}
	cmd.AddCommand(newAdminCreateCommand())
	return cmd
}

func newAdminCreateCommand() *cobra.Command {
	var input service.CreateAdminInput
	var role string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			log := logger.New(cfg.Environment)

			database, err := db.New(cfg, log)
			if err != nil {
				return err
			}
			defer closeDatabase(database, log)

			settingsRepo := repository.NewSettingsRepository(database)
			authService := service.NewAuthService(
				repository.NewAdminRepository(database),
				settingsRepo,
				auth.NewParser(cfg.Auth.AccessSecret),
				cfg.Auth.AccessTTL,
			)

			input.Role = model.AdminRole(role)
			admin, err := authService.CreateAdmin(cmd.Context(), input)
			if err != nil {
				return err
			}

			log.Info().Str("id", admin.ID.String()).Str("email", admin.Email).Str("role", string(admin.Role)).Msg("admin created")
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Email, "email", "", "login e-mail")
	cmd.Flags().StringVar(&input.Name, "name", "", "display name")
	cmd.Flags().StringVar(&role, "role", string(model.AdminRoleCounselor), "ADMIN or COUNSELOR")
	cmd.Flags().StringVar(&input.Password, "password", "", "initial password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
