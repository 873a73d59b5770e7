package client

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/easysholi/listsync/internal/config"
	"github.com/easysholi/listsync/internal/logger"
	"github.com/easysholi/listsync/models"
)

type rootFlags struct {
	configPath string
	profileID  string
	offline    bool
}

// NewRootCommand builds the CLI. The app is constructed once in the root
// PersistentPreRunE and torn down after the subcommand returns, so every
// invocation hydrates the queue and snapshots before doing anything.
func NewRootCommand(version string, log *logger.Logger) *cobra.Command {
	flags := &rootFlags{}
	var app *App

	root := &cobra.Command{
		Use:   "listsync",
		Short: "Offline-first shared shopping list client",
		Long: `listsync keeps a shared shopping list usable without connectivity.

Mutations always land locally first; while offline (or when the remote
store rejects a write) they are queued durably and replayed on the next
reconnect, merging with whatever changed remotely in the meantime.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.GetClientConfig(flags.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			app, err = NewApp(cmd.Context(), cfg, flags.offline, log)
			if err != nil {
				return err
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app == nil {
				return nil
			}
			return app.Close()
		},
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to a JSON config file")
	root.PersistentFlags().StringVarP(&flags.profileID, "profile", "p", "", "profile id owning the list")
	root.PersistentFlags().BoolVar(&flags.offline, "offline", false, "skip all network access")

	root.AddCommand(
		newProfilesCommand(&app),
		newListCommand(&app, flags),
		newSyncCommand(&app),
		newStatusCommand(&app),
		newWatchCommand(&app),
	)

	return root
}

func newProfilesCommand(app **App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Manage shared profiles",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List known profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles, err := (*app).Services().Profiles.List(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME")
			for _, profile := range profiles {
				fmt.Fprintf(w, "%s\t%s\n", profile.ID, profile.Name)
			}
			return w.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "create NAME",
		Short: "Create a new profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := (*app).Services().Profiles.Create(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created profile %s (%s)\n", profile.Name, profile.ID)
			return nil
		},
	})

	return cmd
}

func newListCommand(app **App, flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Work with the active shopping list",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// root PersistentPreRunE is overridden by ours: chain it
			if parent := cmd.Root().PersistentPreRunE; parent != nil {
				if err := parent(cmd, args); err != nil {
					return err
				}
			}
			if flags.profileID == "" {
				return fmt.Errorf("--profile is required")
			}
			return (*app).Services().Session.Load(cmd.Context(), flags.profileID, false)
		},
	}

	var tagFilter string
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the list",
		RunE: func(cmd *cobra.Command, args []string) error {
			session := (*app).Services().Session
			session.SetTagFilter(tagFilter)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tQTY\tTAG\tDONE")
			for _, item := range session.FilteredItems() {
				done := " "
				if item.Completed {
					done = "x"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
					item.ID, item.Name, item.Quantity, item.TagID, done)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d items, %d done\n",
				session.TotalCount(), session.CompletedCount())
			return nil
		},
	}
	show.Flags().StringVarP(&tagFilter, "tag", "t", "", "only show items with this tag")
	cmd.AddCommand(show)

	var quantity int
	var tagID string
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Add an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outcome, err := (*app).Services().Session.AddItem(cmd.Context(), args[0], quantity, tagID)
			return reportOutcome(cmd, outcome, err)
		},
	}
	add.Flags().IntVarP(&quantity, "quantity", "q", 1, "item quantity")
	add.Flags().StringVarP(&tagID, "tag", "t", "", "tag id")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "done ITEM_ID",
		Short: "Toggle an item's completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outcome, err := (*app).Services().Session.ToggleCompleted(cmd.Context(), args[0])
			return reportOutcome(cmd, outcome, err)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "qty ITEM_ID COUNT",
		Short: "Change an item's quantity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}

			outcome, err := (*app).Services().Session.UpdateItem(
				cmd.Context(), args[0], models.ItemPatch{Quantity: &count})
			return reportOutcome(cmd, outcome, err)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm ITEM_ID",
		Short: "Remove an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outcome, err := (*app).Services().Session.DeleteItem(cmd.Context(), args[0])
			return reportOutcome(cmd, outcome, err)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "drop",
		Short: "Delete the profile's list remotely and locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := (*app).Services().Session.Drop(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "list deleted")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove all completed items",
		RunE: func(cmd *cobra.Command, args []string) error {
			outcome, err := (*app).Services().Session.ClearCompleted(cmd.Context())
			return reportOutcome(cmd, outcome, err)
		},
	})

	return cmd
}

func newSyncCommand(app **App) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Drain the pending mutation queue now",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := (*app).Services().Synchronizer.Drain(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "synced: %d applied, %d failed\n",
				report.Succeeded, report.Failed)
			for _, syncErr := range report.Errors {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", syncErr.Action, syncErr.Error)
			}
			if !report.Clean() {
				return fmt.Errorf("%d mutations still queued", (*app).Services().Synchronizer.Pending())
			}
			return nil
		},
	}
}

func newStatusCommand(app **App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show connectivity and queue state",
		RunE: func(cmd *cobra.Command, args []string) error {
			sync := (*app).Services().Synchronizer

			state := "offline"
			if (*app).Online() {
				state = "online"
			}

			fmt.Fprintf(cmd.OutOrStdout(), "connectivity: %s\n", state)
			fmt.Fprintf(cmd.OutOrStdout(), "pending mutations: %d\n", sync.Pending())
			if last := sync.LastSyncTime(); !last.IsZero() {
				fmt.Fprintf(cmd.OutOrStdout(), "last sync: %s\n", last.Format("2006-01-02 15:04:05"))
			}
			for _, syncErr := range sync.Errors() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", syncErr.Action, syncErr.Error)
			}
			return nil
		},
	}
}

func newWatchCommand(app **App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run in the background, probing connectivity and syncing",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			(*app).StartBackground(ctx)

			fmt.Fprintln(cmd.OutOrStdout(), "watching, press Ctrl+C to stop")
			<-ctx.Done()

			return nil
		},
	}
}

func reportOutcome(cmd *cobra.Command, outcome models.Outcome, err error) error {
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), outcome.String())
	return nil
}
