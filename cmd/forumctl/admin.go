package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/forum-inscriptions-api/internal/catalog"
	"github.com/noah-isme/forum-inscriptions-api/internal/dashboard"
	"github.com/noah-isme/forum-inscriptions-api/internal/models"
)

func newLoginCmd(opts *options) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Open an admin session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd.Context())
			defer cancel()

			ctrl := a.dashboard()
			defer ctrl.Close()
			if err := ctrl.Login(ctx, email, password); err != nil {
				return err
			}
			fmt.Fprintln(opts.out, "logged in")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", os.Getenv("FORUM_ADMIN_PASSWORD"), "admin password")
	return cmd
}

func newLogoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Close the admin session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd.Context())
			defer cancel()

			if err := a.client.Logout(ctx); err != nil {
				a.logger.Debug("server logout failed", zap.Error(err))
			}
			ctrl := a.dashboard()
			defer ctrl.Close()
			return ctrl.Logout()
		},
	}
}

func newListCmd(opts *options) *cobra.Command {
	var view dashboard.View
	var status, sortKey string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registrations with counters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd.Context())
			defer cancel()

			view.Status = models.Status(status)
			view.Sort = dashboard.SortKey(sortKey)
			if view.Status != "" && !view.Status.Valid() {
				return errors.New(a.catalog.Messages.Admin.InvalidStatus)
			}
			if !dashboard.ValidSort(view.Sort) {
				return fmt.Errorf("unknown sort %q", sortKey)
			}

			ctrl := a.dashboard()
			defer ctrl.Close()
			if err := ctrl.Load(ctx); err != nil {
				return err
			}
			ctrl.SetView(view)

			printStats(opts, ctrl.Stats())
			if ctrl.Empty() {
				fmt.Fprintln(opts.out, a.catalog.Messages.Admin.EmptyState)
				return nil
			}
			return printRecords(opts, ctrl.Visible())
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only show this workflow status")
	cmd.Flags().StringVar(&view.Search, "search", "", "match name, code or unit")
	cmd.Flags().StringVar(&sortKey, "sort", string(dashboard.SortDateDesc), "date_desc, date_asc, nom_asc, nom_desc or statut")
	return cmd
}

func newSetStatusCmd(opts *options) *cobra.Command {
	var status, comment string
	cmd := &cobra.Command{
		Use:   "set-status ID",
		Short: "Change the status and comment of a registration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd.Context())
			defer cancel()

			ctrl := a.dashboard()
			defer ctrl.Close()
			if err := ctrl.Load(ctx); err != nil {
				return err
			}
			if !ctrl.OpenEdit(args[0]) {
				return errors.New(a.catalog.Messages.Admin.NotFound)
			}
			if status != "" {
				ctrl.SetEditStatus(models.Status(status))
			}
			if cmd.Flags().Changed("comment") {
				ctrl.SetEditComment(comment)
			}
			if err := ctrl.SaveEdit(ctx); err != nil {
				return err
			}
			fmt.Fprintln(opts.out, a.catalog.Messages.Admin.StatusUpdated)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "new workflow status")
	cmd.Flags().StringVar(&comment, "comment", "", "admin comment; empty clears it")
	return cmd
}

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a registration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd.Context())
			defer cancel()

			ctrl := a.dashboard()
			defer ctrl.Close()
			if err := ctrl.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(opts.out, a.catalog.Messages.Admin.Deleted)
			return nil
		},
	}
}

func newExportCmd(opts *options) *cobra.Command {
	var view dashboard.View
	var status, sortKey, format, dir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download registrations as csv, xlsx or pdf",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd.Context())
			defer cancel()

			view.Status = models.Status(status)
			view.Sort = dashboard.SortKey(sortKey)
			file, err := a.client.Export(ctx, view, format)
			if err != nil {
				return err
			}
			path := filepath.Join(dir, filepath.Base(file.Filename))
			if err := os.WriteFile(path, file.Body, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintln(opts.out, path)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only export this workflow status")
	cmd.Flags().StringVar(&view.Search, "search", "", "match name, code or unit")
	cmd.Flags().StringVar(&sortKey, "sort", "", "sort key")
	cmd.Flags().StringVar(&format, "format", "csv", "csv, xlsx or pdf")
	cmd.Flags().StringVarP(&dir, "output", "o", ".", "directory to write the file to")
	return cmd
}

func printStats(opts *options, stats models.Stats) {
	fmt.Fprintf(opts.out, "total %d | reçues %d | demandées %d | acceptées %d | refusées %d | transmises %d\n",
		stats.Total, stats.Received, stats.RequestSent, stats.Accepted, stats.Refused, stats.Transmitted)
}

func printRecords(opts *options, records []models.Inscription) error {
	tw := tabwriter.NewWriter(opts.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNOM PRÉNOM\tCP\tAFFECTATION\tSTATUT\tINSCRIT LE\tCOMMENTAIRE")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.FullName, r.Code, r.Unit, r.Status, catalog.FormatDate(r.CreatedAt), r.CommentText())
	}
	return tw.Flush()
}
