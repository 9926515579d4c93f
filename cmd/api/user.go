package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gorica/clinic-api/internal/model"
	"github.com/gorica/clinic-api/internal/repository/postgres"
	authService "github.com/gorica/clinic-api/internal/service/auth"
	"github.com/gorica/clinic-api/pkg/auth"
	"github.com/gorica/clinic-api/pkg/security"
)

// userCmd manages staff accounts without going through the HTTP API.
func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage staff accounts",
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a staff account",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			name, _ := cmd.Flags().GetString("name")
			role, _ := cmd.Flags().GetString("role")

			svc, closeDB, err := newAuthService(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			user, err := svc.CreateUser(cmd.Context(), &model.RegisterRequest{
				Username: username,
				Password: password,
				Name:     name,
				Role:     model.Role(role),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s user %q (%s)\n", user.Role, user.Username, user.ID)
			return nil
		},
	}
	addCmd.Flags().String("username", "", "Login name (at least 3 characters)")
	addCmd.Flags().String("password", "", "Initial password")
	addCmd.Flags().String("name", "", "Display name")
	addCmd.Flags().String("role", string(model.RoleDoctor), "doctor or esthetician")
	_ = addCmd.MarkFlagRequired("username")
	_ = addCmd.MarkFlagRequired("password")
	_ = addCmd.MarkFlagRequired("name")
	cmd.AddCommand(addCmd)

	passwdCmd := &cobra.Command{
		Use:   "passwd",
		Short: "Reset a staff account's password",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")

			svc, closeDB, err := newAuthService(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := svc.ChangePassword(cmd.Context(), &model.ChangePasswordRequest{
				Username:    username,
				NewPassword: password,
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Password updated for %q\n", username)
			return nil
		},
	}
	passwdCmd.Flags().String("username", "", "Login name")
	passwdCmd.Flags().String("password", "", "New password")
	_ = passwdCmd.MarkFlagRequired("username")
	_ = passwdCmd.MarkFlagRequired("password")
	cmd.AddCommand(passwdCmd)

	return cmd
}

func newAuthService(cmd *cobra.Command) (*authService.Service, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	lg := setupLogger(cfg)

	db, err := openDB(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, err
	}

	svc := authService.NewService(
		postgres.NewUserRepository(db),
		auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, jwtExpiry(cfg)),
		security.NewBcryptHasher(cfg.Auth.BcryptCost),
		security.PasswordPolicy{Strict: cfg.Auth.StrictPasswords},
		lg,
	)
	return svc, func() { db.Close() }, nil
}
