// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rotaflex Contributors

//go:build integration

package store_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/rotaflex/rotaflex/internal/auth"
	authpg "github.com/rotaflex/rotaflex/internal/auth/postgres"
	"github.com/rotaflex/rotaflex/internal/store"
)

// setupPostgres starts a PostgreSQL container, connects a pool, and applies
// all embedded migrations.
func setupPostgres() (*pgxpool.Pool, func(), error) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("rotaflex_test"),
		postgres.WithUsername("rotaflex"),
		postgres.WithPassword("rotaflex"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, nil, err
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		return nil, nil, err
	}
	if err := migrator.Up(); err != nil {
		return nil, nil, err
	}
	if err := migrator.Close(); err != nil {
		return nil, nil, err
	}

	pool, err := store.Connect(ctx, connStr)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}

	return pool, cleanup, nil
}

func testProfile(cpf string) auth.Profile {
	return auth.Profile{
		Username: "Maria",
		Surname:  "Silva",
		Email:    "maria@example.com",
		CPF:      cpf,
	}
}

var _ = Describe("Postgres repositories", func() {
	var pool *pgxpool.Pool
	var cleanup func()

	BeforeEach(func() {
		var err error
		pool, cleanup, err = setupPostgres()
		Expect(err).NotTo(HaveOccurred())

		ctx := context.Background()
		roles := authpg.NewRoleRepository(pool)
		for _, rt := range auth.RoleTypes() {
			Expect(roles.Ensure(ctx, &auth.Role{ID: rt.ID(), Name: rt.Name()})).To(Succeed())
		}
	})

	AfterEach(func() {
		cleanup()
	})

	Describe("AccountRepository", func() {
		It("round-trips an account through create and lookups", func() {
			ctx := context.Background()
			accounts := authpg.NewAccountRepository(pool)

			account, err := auth.NewAccount(testProfile("12345678901"), "$2a$12$hash", auth.RoleAdmin.ID())
			Expect(err).NotTo(HaveOccurred())
			Expect(accounts.Create(ctx, account)).To(Succeed())

			byCPF, err := accounts.GetByCPF(ctx, "12345678901")
			Expect(err).NotTo(HaveOccurred())
			Expect(byCPF.ID).To(Equal(account.ID))

			byName, err := accounts.GetByUsername(ctx, "maria")
			Expect(err).NotTo(HaveOccurred())
			Expect(byName.ID).To(Equal(account.ID))

			byEmail, err := accounts.GetByEmail(ctx, "MARIA@EXAMPLE.COM")
			Expect(err).NotTo(HaveOccurred())
			Expect(byEmail.ID).To(Equal(account.ID))
		})

		It("rejects a duplicate CPF with a conflict error", func() {
			ctx := context.Background()
			accounts := authpg.NewAccountRepository(pool)

			first, err := auth.NewAccount(testProfile("12345678901"), "$2a$12$hash", auth.RoleAdmin.ID())
			Expect(err).NotTo(HaveOccurred())
			Expect(accounts.Create(ctx, first)).To(Succeed())

			second, err := auth.NewAccount(testProfile("12345678901"), "$2a$12$hash", auth.RoleAdmin.ID())
			Expect(err).NotTo(HaveOccurred())
			err = accounts.Create(ctx, second)
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, auth.ErrConflict)).To(BeTrue())
		})

		It("persists profile updates and password changes independently", func() {
			ctx := context.Background()
			accounts := authpg.NewAccountRepository(pool)

			account, err := auth.NewAccount(testProfile("12345678901"), "$2a$12$hash", auth.RoleAdmin.ID())
			Expect(err).NotTo(HaveOccurred())
			Expect(accounts.Create(ctx, account)).To(Succeed())

			account.City = "Curitiba"
			account.RoleID = auth.RoleAdministrative.ID()
			Expect(accounts.Update(ctx, account)).To(Succeed())

			Expect(accounts.UpdatePassword(ctx, account.ID, "$2a$12$newhash")).To(Succeed())

			got, err := accounts.GetByID(ctx, account.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.City).To(Equal("Curitiba"))
			Expect(got.RoleID).To(Equal(auth.RoleAdministrative.ID()))
			Expect(got.PasswordHash).To(Equal("$2a$12$newhash"))
		})

		It("reports a missing account as not found", func() {
			ctx := context.Background()
			accounts := authpg.NewAccountRepository(pool)

			_, err := accounts.GetByCPF(ctx, "00000000000")
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, auth.ErrNotFound)).To(BeTrue())
		})
	})

	Describe("ResetTokenRepository", func() {
		It("stores, retrieves, and marks tokens used", func() {
			ctx := context.Background()
			accounts := authpg.NewAccountRepository(pool)
			tokens := authpg.NewResetTokenRepository(pool)

			account, err := auth.NewAccount(testProfile("12345678901"), "$2a$12$hash", auth.RoleAdmin.ID())
			Expect(err).NotTo(HaveOccurred())
			Expect(accounts.Create(ctx, account)).To(Succeed())

			value, err := auth.GenerateResetToken()
			Expect(err).NotTo(HaveOccurred())

			token, err := auth.NewResetToken(account.ID, value, time.Now().Add(auth.ResetTokenExpiry))
			Expect(err).NotTo(HaveOccurred())
			Expect(tokens.Create(ctx, token)).To(Succeed())

			got, err := tokens.GetByToken(ctx, value)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.AccountID).To(Equal(account.ID))
			Expect(got.Used).To(BeFalse())

			Expect(tokens.MarkUsed(ctx, got.ID)).To(Succeed())

			got, err = tokens.GetByToken(ctx, value)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Used).To(BeTrue())
		})
	})
})
