package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ivanoskov/finance_tracker/internal/app"
	"github.com/ivanoskov/finance_tracker/internal/model"
	"github.com/ivanoskov/finance_tracker/internal/service"
)

type opener func(ctx context.Context) (*app.App, error)

type cli struct {
	open opener
	app  *app.App
}

func newRootCmd(open opener) *cobra.Command {
	c := &cli{open: open}

	root := &cobra.Command{
		Use:           "finance",
		Short:         "Track income and expenses locally or in Supabase",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if c.app == nil {
				return nil
			}
			return c.app.Close()
		},
	}

	root.AddCommand(
		c.listCmd(),
		c.addCmd(),
		c.deleteCmd(),
		c.reportCmd(),
		c.chartCmd(),
		c.demoCmd(),
		c.resetCmd(),
		c.clearCmd(),
		c.modeCmd(),
		c.loginCmd(),
		c.signupCmd(),
		c.logoutCmd(),
		c.profileCmd(),
	)
	return root
}

func (c *cli) symbol() string {
	return c.app.Config.CurrencySymbol
}

func (c *cli) listCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			txns, err := c.app.Store.List(cmd.Context())
			if err != nil {
				return err
			}
			txns = service.SortByDateDesc(txns)
			if limit > 0 && len(txns) > limit {
				txns = txns[:limit]
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tTYPE\tCATEGORY\tAMOUNT\tDESCRIPTION")
			for _, t := range txns {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					t.ID, t.Date, t.Type, t.Category,
					service.SignedAmount(c.symbol(), t.Amount, t.Type == model.Income),
					t.Description)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n transactions")
	return cmd
}

func (c *cli) addCmd() *cobra.Command {
	var typ, category, amount, description, date string
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add a transaction",
		Example: `  finance add --type expense --category Food --amount 500 --description "Lunch" --date 2025-01-10`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			candidate, err := model.ParseCandidate(amount, description, category, typ, date)
			if err != nil {
				return err
			}
			created, err := c.app.Store.Create(cmd.Context(), candidate)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s: %s %s (%s)\n",
				created.ID,
				service.SignedAmount(c.symbol(), created.Amount, created.Type == model.Income),
				created.Description, created.Category)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&typ, "type", "t", string(model.Expense), "income or expense")
	f.StringVarP(&category, "category", "c", "", "category, e.g. "+strings.Join(model.ExpenseCategories[:3], ", "))
	f.StringVarP(&amount, "amount", "a", "", "positive amount")
	f.StringVarP(&description, "description", "d", "", "what it was for")
	f.StringVar(&date, "date", "", "YYYY-MM-DD, defaults to today")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func (c *cli) reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Show totals and spending by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			txns, err := c.app.Store.List(cmd.Context())
			if err != nil {
				return err
			}
			r := service.BuildReport(txns)
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Income:   %s\n", service.FormatAmount(c.symbol(), r.Totals.Income))
			fmt.Fprintf(out, "Expenses: %s\n", service.FormatAmount(c.symbol(), r.Totals.Expenses))
			fmt.Fprintf(out, "Balance:  %s\n", service.FormatAmount(c.symbol(), r.Totals.Balance))
			if len(r.Breakdown) == 0 {
				return nil
			}

			fmt.Fprintln(out, "\nSpending by category:")
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, g := range r.Breakdown {
				fmt.Fprintf(w, "  %s\t%s\t%.1f%%\t%s\n", g.Name, service.FormatAmount(c.symbol(), g.Total), g.Share, g.Color)
			}
			return w.Flush()
		},
	}
}

func (c *cli) chartCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render report charts as PNG files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			txns, err := c.app.Store.List(cmd.Context())
			if err != nil {
				return err
			}
			images, err := c.app.Charts.RenderReport(cmd.Context(), service.BuildReport(txns))
			if err != nil {
				return err
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}

			for name, data := range map[string][]byte{
				"categories.png": images.Categories,
				"totals.png":     images.Totals,
				"balance.png":    images.Balance,
			} {
				if data == nil {
					continue
				}
				path := filepath.Join(dir, name)
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", name, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Wrote", path)
			}
			if images.Count() == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to draw")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "out", "o", ".", "output directory")
	return cmd
}

func (c *cli) demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "demo [on|off]",
		Short:     "Switch demo mode; off signs out of demo data",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 1 {
				var err error
				if args[0] == "on" {
					err = c.app.Demo.Set(ctx, true)
				} else {
					err = c.app.Demo.Clear(ctx)
				}
				if err != nil {
					return err
				}
			}
			return c.printMode(cmd)
		},
	}
}

func (c *cli) resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the sample transactions on this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Local.ResetToSampleData(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Device data restored to the sample transactions")
			return nil
		},
	}
}

func (c *cli) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all transactions stored on this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Local.ClearAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Device data cleared")
			return nil
		},
	}
}

func (c *cli) modeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mode",
		Short: "Show which backend serves requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.printMode(cmd)
		},
	}
}

func (c *cli) printMode(cmd *cobra.Command) error {
	session, err := c.app.Resolver.Session(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "backend: %s\ndemo: %t\n", c.app.Store.Mode(cmd.Context()), session.DemoMode)
	return nil
}
