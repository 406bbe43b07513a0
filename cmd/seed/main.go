// Command seed populates a Postgres database with demo accounts so the
// platform can be exercised locally: a handful of investors and
// entrepreneurs with profiles, plus a pending collaboration request and a
// short conversation between the first two.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/business-nexus/backend/internal/auth"
	"github.com/business-nexus/backend/internal/domain"
	"github.com/business-nexus/backend/internal/storage"
)

func main() {
	var (
		dsn      = flag.String("dsn", os.Getenv("DATABASE_URL"), "postgres connection string")
		password = flag.String("password", "demo-password", "password assigned to every demo account")
	)
	flag.Parse()

	if *dsn == "" {
		fmt.Fprintln(os.Stderr, "a postgres DSN is required (flag -dsn or DATABASE_URL)")
		os.Exit(1)
	}

	store, err := storage.OpenGorm(*dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := seed(ctx, store, *password); err != nil {
		fmt.Fprintf(os.Stderr, "seeding failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("demo data seeded")
}

type demoAccount struct {
	user    domain.NewUser
	profile domain.ProfilePatch
}

func seed(ctx context.Context, store storage.Store, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	accounts := []demoAccount{
		{
			user: domain.NewUser{
				FirstName: "Maya", LastName: "Chen",
				Email: "maya@demo.nexus", PasswordHash: hash,
				Role: domain.RoleInvestor, Location: "San Francisco, CA",
				Bio: "Early-stage investor focused on developer tools.",
			},
			profile: domain.ProfilePatch{
				Company:             ptr("Chen Capital"),
				Title:               ptr("Managing Partner"),
				InvestmentInterests: ptr([]string{"devtools", "fintech", "climate"}),
				PortfolioCompanies: ptr([]domain.PortfolioCompany{
					{Name: "Shiplog", Industry: "devtools"},
					{Name: "Greenwatt", Industry: "climate"},
				}),
			},
		},
		{
			user: domain.NewUser{
				FirstName: "Diego", LastName: "Alvarez",
				Email: "diego@demo.nexus", PasswordHash: hash,
				Role: domain.RoleEntrepreneur, Location: "Austin, TX",
				Bio: "Building logistics software for small manufacturers.",
			},
			profile: domain.ProfilePatch{
				Company:       ptr("Factoryline"),
				Title:         ptr("Founder & CEO"),
				Industry:      ptr("logistics"),
				Stage:         ptr("seed"),
				Founded:       ptr(2024),
				Employees:     ptr(6),
				FundingAmount: ptr(750000),
				FundingUse:    ptr("Hiring two engineers and expanding pilot deployments."),
				EquityOffered: ptr(8),
				Skills:        ptr([]string{"go", "operations", "sales"}),
			},
		},
		{
			user: domain.NewUser{
				FirstName: "Priya", LastName: "Raman",
				Email: "priya@demo.nexus", PasswordHash: hash,
				Role: domain.RoleEntrepreneur, Location: "Toronto, ON",
				Bio: "Founder working on consumer health tracking.",
			},
			profile: domain.ProfilePatch{
				Company:  ptr("Pulsewell"),
				Title:    ptr("Co-founder"),
				Industry: ptr("healthtech"),
				Stage:    ptr("pre-seed"),
			},
		},
	}

	users := make([]domain.User, 0, len(accounts))
	for _, account := range accounts {
		user, err := store.CreateUser(ctx, account.user)
		if err != nil {
			return fmt.Errorf("create user %s: %w", account.user.Email, err)
		}
		if _, err := store.UpsertProfile(ctx, user.ID, account.profile); err != nil {
			return fmt.Errorf("create profile for %s: %w", account.user.Email, err)
		}
		users = append(users, user)
	}

	if _, err := store.CreateRequest(ctx, users[0].ID, users[1].ID, "Loved your pilot numbers, let's talk."); err != nil {
		return fmt.Errorf("create demo request: %w", err)
	}

	conversation := []struct {
		from, to int64
		content  string
	}{
		{users[0].ID, users[1].ID, "Hi Diego, saw Factoryline on the entrepreneur board."},
		{users[1].ID, users[0].ID, "Thanks for reaching out! Happy to share our deck."},
		{users[0].ID, users[1].ID, "Great, send it over whenever."},
	}
	for _, m := range conversation {
		if _, err := store.CreateMessage(ctx, m.from, m.to, m.content); err != nil {
			return fmt.Errorf("create demo message: %w", err)
		}
	}

	return nil
}

func ptr[T any](v T) *T { return &v }
