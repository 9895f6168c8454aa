package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/segyhp/lease-engine/internal/app"
	"github.com/segyhp/lease-engine/internal/config"
	"github.com/segyhp/lease-engine/internal/domain"
	"github.com/segyhp/lease-engine/internal/repository"
	"github.com/segyhp/lease-engine/pkg/logger"
)

// cli carries what every subcommand shares. Connections open lazily so
// argument errors surface before anything is dialled.
type cli struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "leasectl",
		Short:         "Operate the lease engine from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
			return nil
		},
	}

	root.AddCommand(
		c.migrateCmd(),
		c.generateScheduleCmd(),
		c.terminateCmd(),
		c.renewCmd(),
		c.recordPaymentCmd(),
		c.markOverdueCmd(),
		c.expireCmd(),
		c.sweepOverdueCmd(),
	)
	return root
}

func (c *cli) withApp(ctx context.Context, fn func(a *app.App) error) error {
	a, err := app.New(ctx, c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func (c *cli) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	withMigrator := func(ctx context.Context, fn func(m *repository.Migrator) error) error {
		db, err := sqlx.ConnectContext(ctx, "postgres", c.cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		m, err := repository.NewMigrator(db)
		if err != nil {
			return err
		}
		return fn(m)
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cmd.Context(), func(m *repository.Migrator) error {
					applied, err := m.Up(cmd.Context())
					if err != nil {
						return err
					}
					if len(applied) == 0 {
						fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
						return nil
					}
					for _, version := range applied {
						fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", version)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show which migrations have been applied",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cmd.Context(), func(m *repository.Migrator) error {
					statuses, err := m.Status(cmd.Context())
					if err != nil {
						return err
					}
					for _, s := range statuses {
						state := "pending"
						if s.Applied {
							state = "applied"
						}
						fmt.Fprintf(cmd.OutOrStdout(), "%s_%s\t%s\n", s.Version, s.Name, state)
					}
					return nil
				})
			},
		},
	)
	return cmd
}

func (c *cli) generateScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate-schedule <lease-id>",
		Short: "Create the missing payments of an active lease",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("lease", args[0])
			if err != nil {
				return err
			}
			return c.withApp(cmd.Context(), func(a *app.App) error {
				result, err := a.Leases.GenerateSchedule(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printJSON(cmd, result)
			})
		},
	}
}

func (c *cli) terminateCmd() *cobra.Command {
	var reason, date string

	cmd := &cobra.Command{
		Use:   "terminate <lease-id>",
		Short: "Terminate a lease and release its unit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("lease", args[0])
			if err != nil {
				return err
			}
			var on *time.Time
			if date != "" {
				d, err := parseDate(date)
				if err != nil {
					return err
				}
				on = &d
			}
			return c.withApp(cmd.Context(), func(a *app.App) error {
				result, err := a.Leases.TerminateLease(cmd.Context(), id, reason, on)
				if err != nil {
					return err
				}
				return printJSON(cmd, result)
			})
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "termination reason")
	cmd.Flags().StringVar(&date, "date", "", "termination date (YYYY-MM-DD, default today)")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}

func (c *cli) renewCmd() *cobra.Command {
	var endDate, rent string

	cmd := &cobra.Command{
		Use:   "renew <lease-id>",
		Short: "Renew a lease into a new draft lease",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("lease", args[0])
			if err != nil {
				return err
			}
			end, err := parseDate(endDate)
			if err != nil {
				return err
			}
			var newRent *decimal.Decimal
			if rent != "" {
				r, err := decimal.NewFromString(rent)
				if err != nil || !r.IsPositive() {
					return fmt.Errorf("invalid rent %q", rent)
				}
				newRent = &r
			}
			return c.withApp(cmd.Context(), func(a *app.App) error {
				result, err := a.Leases.RenewLease(cmd.Context(), id, end, newRent)
				if err != nil {
					return err
				}
				return printJSON(cmd, result)
			})
		},
	}

	cmd.Flags().StringVar(&endDate, "end-date", "", "end date of the renewal (YYYY-MM-DD)")
	cmd.Flags().StringVar(&rent, "rent", "", "new rent amount, defaults to the current rent")
	_ = cmd.MarkFlagRequired("end-date")
	return cmd
}

func (c *cli) recordPaymentCmd() *cobra.Command {
	var amount, method, reference string

	cmd := &cobra.Command{
		Use:   "record-payment <payment-id>",
		Short: "Record money received against a payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("payment", args[0])
			if err != nil {
				return err
			}
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q", amount)
			}
			rec := domain.PaymentRecord{Amount: value, Method: method}
			if reference != "" {
				rec.Reference = &reference
			}
			return c.withApp(cmd.Context(), func(a *app.App) error {
				payment, err := a.Payments.RecordPayment(cmd.Context(), id, rec)
				if err != nil {
					return err
				}
				return printJSON(cmd, payment)
			})
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "amount received")
	cmd.Flags().StringVar(&method, "method", domain.PaymentMethodBankTransfer, "payment method")
	cmd.Flags().StringVar(&reference, "reference", "", "transaction reference")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func (c *cli) markOverdueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mark-overdue <payment-id>...",
		Short: "Mark past due pending payments overdue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]uuid.UUID, 0, len(args))
			for _, arg := range args {
				id, err := parseID("payment", arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			return c.withApp(cmd.Context(), func(a *app.App) error {
				result, err := a.Payments.BulkMarkOverdue(cmd.Context(), ids)
				if err != nil {
					return err
				}
				return printJSON(cmd, result)
			})
		},
	}
}

func (c *cli) expireCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expire",
		Short: "Expire active leases whose end date has passed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app.App) error {
				n, err := a.Leases.ExpireEndedLeases(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "expired %d leases\n", n)
				return nil
			})
		},
	}
}

func (c *cli) sweepOverdueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-overdue",
		Short: "Mark every pending payment past its due date overdue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app.App) error {
				n, err := a.Payments.SweepOverdue(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "marked %d payments overdue\n", n)
				return nil
			})
		},
	}
}

func parseID(kind, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q", kind, raw)
	}
	return id, nil
}

func parseDate(raw string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return d, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
