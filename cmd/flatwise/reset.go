package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmynk/flatwise/internal/auth"
	"github.com/mmynk/flatwise/internal/models"
	"github.com/mmynk/flatwise/internal/service"
	"github.com/mmynk/flatwise/internal/storage"
	"github.com/mmynk/flatwise/internal/storage/sqlite"
)

const seedPassword = "flatwise-demo"

func resetCmd() *cobra.Command {
	var force, seed bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all data, optionally loading demo data",
		Long: `Reset removes every user, flat, item and ledger entry.

With --seed it then creates the flat "Olympus" with two members and a shared
TV so the API has something to show. Seeded users log in with the password
"` + seedPassword + `".`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force {
				ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout())
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Reset canceled.")
					return nil
				}
			}

			store, err := sqlite.New(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer store.Close()

			if err := store.Reset(cmd.Context()); err != nil {
				return fmt.Errorf("failed to reset database: %w", err)
			}
			slog.Info("Database reset", "database", cfg.Database.Path)

			if seed {
				if err := seedDemo(cmd.Context(), store, cfg.Security.BcryptCost); err != nil {
					return fmt.Errorf("failed to seed database: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")
	cmd.Flags().BoolVar(&seed, "seed", false, "load demo data after the reset")
	return cmd
}

func confirm(in io.Reader, out io.Writer) (bool, error) {
	fmt.Fprint(out, "This will delete all data. Are you sure you want to continue? [y/N]: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read input: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// seedDemo goes through the services so seeded data obeys the same rules as API calls.
func seedDemo(ctx context.Context, store storage.Store, bcryptCost int) error {
	authenticator := auth.NewPasswordAuthenticator(store, bcryptCost)
	flats := service.NewFlatService(store, nil)
	items := service.NewItemService(store, nil)

	yann, err := authenticator.Register(ctx, auth.Registration{FirstName: "Yann", LastName: "Wallis", Email: "yann@example.com"}, seedPassword)
	if err != nil {
		return err
	}
	ilias, err := authenticator.Register(ctx, auth.Registration{FirstName: "Ilias", LastName: "Trichopoulos", Email: "ilias@example.com"}, seedPassword)
	if err != nil {
		return err
	}

	purchased := models.Date(2025, 1, 1)
	flat, err := flats.Create(ctx, yann, "Olympus", yann.ID)
	if err != nil {
		return err
	}
	if _, err := flats.MoveIn(ctx, ilias, flat.ID, ilias.ID, nil, purchased); err != nil {
		return err
	}

	tv, err := items.Create(ctx, yann, &models.Item{
		Name:               "TV",
		InitialValue:       1000,
		PurchaseDate:       purchased,
		YearlyDepreciation: 0.2,
	})
	if err != nil {
		return err
	}

	slog.Info("Seeded demo data", "flat", flat.ID, "item", tv.ID, "users", len(tv.Users))
	return nil
}
