// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rotaflex Contributors

package main

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/rotaflex/rotaflex/internal/auth"
	authpg "github.com/rotaflex/rotaflex/internal/auth/postgres"
	"github.com/rotaflex/rotaflex/internal/config"
	"github.com/rotaflex/rotaflex/internal/store"
)

// NewUserCmd creates the user subcommand tree.
func NewUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	cmd.AddCommand(
		newUserRegisterCmd(),
		newUserLoginCmd(),
		newUserDetailsCmd(),
		newUserUpdateCmd(),
		newUserResetRequestCmd(),
		newUserResetCmd(),
	)

	return cmd
}

// services bundles the dependencies a user subcommand needs.
type services struct {
	accounts *auth.Service
	resets   *auth.PasswordResetService
	pool     *pgxpool.Pool
}

func (s *services) close() {
	s.pool.Close()
}

// buildServices connects to the database and wires the account and reset
// services. The caller must close the returned bundle.
func buildServices(ctx context.Context, cfg config.Config) (*services, error) {
	if err := cfg.ValidateDatabase(); err != nil {
		return nil, err
	}
	if err := cfg.ValidateSecret(); err != nil {
		return nil, err
	}

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	accountRepo := authpg.NewAccountRepository(pool)
	roleRepo := authpg.NewRoleRepository(pool)
	tokenRepo := authpg.NewResetTokenRepository(pool)
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)

	issuer, err := auth.NewTokenIssuer([]byte(cfg.JWT.Secret), cfg.JWT.TTL, cfg.JWT.Issuer)
	if err != nil {
		pool.Close()
		return nil, err
	}

	accounts, err := auth.NewService(accountRepo, roleRepo, hasher, issuer)
	if err != nil {
		pool.Close()
		return nil, err
	}
	resets, err := auth.NewPasswordResetService(accountRepo, roleRepo, tokenRepo, hasher)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &services{accounts: accounts, resets: resets, pool: pool}, nil
}

// withServices loads config, builds the service bundle, and guarantees
// cleanup after fn runs.
func withServices(cmd *cobra.Command, fn func(ctx context.Context, svc *services) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), defaultCommandTimeout)
	defer cancel()

	svc, err := buildServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.close()

	return fn(ctx, svc)
}

// profileFlags registers the account profile flags shared by register and
// update.
func profileFlags(cmd *cobra.Command, p *auth.Profile) {
	cmd.Flags().StringVar(&p.Username, "username", "", "first name")
	cmd.Flags().StringVar(&p.Surname, "surname", "", "surname")
	cmd.Flags().StringVar(&p.Email, "email", "", "email address")
	cmd.Flags().StringVar(&p.CPF, "cpf", "", "CPF (11 digits)")
	cmd.Flags().StringVar(&p.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&p.PostalCode, "postal-code", "", "postal code (CEP)")
	cmd.Flags().StringVar(&p.Street, "street", "", "street")
	cmd.Flags().StringVar(&p.Number, "number", "", "street number")
	cmd.Flags().StringVar(&p.Complement, "complement", "", "address complement")
	cmd.Flags().StringVar(&p.District, "district", "", "district")
	cmd.Flags().StringVar(&p.City, "city", "", "city")
	cmd.Flags().StringVar(&p.State, "state", "", "state")
	cmd.Flags().StringVar(&p.Gender, "gender", "", "gender")
	cmd.Flags().BoolVar(&p.AlertOptIn, "alerts", false, "opt in to alerts")
}

func newUserRegisterCmd() *cobra.Command {
	var profile auth.Profile
	var password string
	var roleID int64

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account or reactivate a deactivated one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd, func(ctx context.Context, svc *services) error {
				result, err := svc.accounts.Register(ctx, auth.RegisterRequest{
					Profile:  profile,
					Password: password,
					RoleID:   roleID,
				})
				if err != nil {
					return err
				}
				cmd.Printf("%s: %s\n", result.Outcome, result.Account.ID)
				return nil
			})
		},
	}

	profileFlags(cmd, &profile)
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().Int64Var(&roleID, "role", auth.RoleAdministrative.ID(), "role id (1 = ADMIN, 2 = ADMINISTRATIVO)")
	return cmd
}

func newUserLoginCmd() *cobra.Command {
	var username, cpf, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and print a session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (username == "") == (cpf == "") {
				return oops.Code("LOGIN_INVALID").
					Wrapf(auth.ErrBadRequest, "exactly one of --username or --cpf is required")
			}
			return withServices(cmd, func(ctx context.Context, svc *services) error {
				var token string
				var err error
				if username != "" {
					token, err = svc.accounts.Authenticate(ctx, username, password)
				} else {
					token, err = svc.accounts.AuthenticateCPF(ctx, cpf, password)
				}
				if err != nil {
					return err
				}
				cmd.Println(token)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "first name to authenticate as")
	cmd.Flags().StringVar(&cpf, "cpf", "", "CPF to authenticate as")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func newUserDetailsCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "details",
		Short: "Print account details as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd, func(ctx context.Context, svc *services) error {
				account, err := svc.accounts.GetDetails(ctx, username)
				if err != nil {
					return err
				}
				// Never print the password hash.
				account.PasswordHash = ""
				out, err := json.MarshalIndent(account, "", "  ")
				if err != nil {
					return oops.Code("DETAILS_ENCODE_FAILED").Wrap(err)
				}
				cmd.Println(string(out))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "first name to look up")
	return cmd
}

func newUserUpdateCmd() *cobra.Command {
	var profile auth.Profile
	var id string
	var roleCode int

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update an account's profile and role",
		RunE: func(cmd *cobra.Command, _ []string) error {
			accountID, err := ulid.Parse(id)
			if err != nil {
				return oops.Code("ACCOUNT_ID_INVALID").
					With("id", id).
					Wrapf(auth.ErrBadRequest, "invalid account id")
			}
			return withServices(cmd, func(ctx context.Context, svc *services) error {
				if err := svc.accounts.UpdateProfile(ctx, accountID, auth.UpdateRequest{
					Profile:  profile,
					RoleCode: roleCode,
				}); err != nil {
					return err
				}
				cmd.Println("updated")
				return nil
			})
		},
	}

	profileFlags(cmd, &profile)
	cmd.Flags().StringVar(&id, "id", "", "account id")
	cmd.Flags().IntVar(&roleCode, "role-code", 0, "role code (1 = ADMIN, 2 = ADMINISTRATIVO)")
	return cmd
}

func newUserResetRequestCmd() *cobra.Command {
	var identifier string

	cmd := &cobra.Command{
		Use:   "reset-request",
		Short: "Create a password reset token",
		Long: `Creates a single-use password reset token for the account matching
the identifier. Identifiers containing "@" are treated as emails,
anything else as a CPF.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd, func(ctx context.Context, svc *services) error {
				result, err := svc.resets.RequestReset(ctx, identifier)
				if err != nil {
					return err
				}
				out, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return oops.Code("RESET_ENCODE_FAILED").Wrap(err)
				}
				cmd.Println(string(out))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&identifier, "identifier", "", "email or CPF of the account")
	return cmd
}

func newUserResetCmd() *cobra.Command {
	var token, password string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Consume a reset token and set a new password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd, func(ctx context.Context, svc *services) error {
				if err := svc.resets.ConsumeReset(ctx, token, password); err != nil {
					return err
				}
				cmd.Println("password updated")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "reset token value")
	cmd.Flags().StringVar(&password, "password", "", "new password")
	return cmd
}
