package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"homebudget/internal/amqp"
	"homebudget/internal/cli"
	apphttp "homebudget/internal/http"
	"homebudget/internal/log"
	"homebudget/internal/sheets/google"
	"homebudget/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the budget as a JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port == "" {
				port = a.cfg.Port
			}
			res, cleanup, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			srv := apphttp.NewServer(":"+port, res.Service, apphttp.Options{
				ReportCacheSize: a.cfg.ReportCacheSize,
				ReportCacheTTL:  a.cfg.ReportCacheTTL,
				Logger:          a.logger.WithComponent(log.ComponentHTTP),
			})
			srv.ReadTimeout = 10 * time.Second
			srv.WriteTimeout = 30 * time.Second
			srv.IdleTimeout = 60 * time.Second
			srv.MaxHeaderBytes = 1 << 16

			_, done := cli.GracefulShutdown(cmd.Context(), a.logger, shutdownTimeout, srv.Shutdown)

			a.logger.Info("Starting homebudget server",
				"port", port,
				"backend", a.cfg.Backend,
				"budget", res.Location,
				"events", res.Events != nil)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve on port %s: %w", port, err)
			}
			<-done
			a.logger.Info("Server stopped gracefully")
			return nil
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides port)")
	return cmd
}

func newEventsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Print budget change events published by other homebudget processes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.AMQP.URL == "" {
				return errors.New("no broker configured: set amqp.url")
			}
			client, err := amqp.NewClient(a.cfg.AMQP.URL, a.cfg.AMQP.Exchange, a.cfg.AMQP.Queue)
			if err != nil {
				return fmt.Errorf("connect to broker: %w", err)
			}
			defer client.Close()

			ctx, done := cli.GracefulShutdown(cmd.Context(), a.logger, 5*time.Second, nil)
			logger := a.logger.WithComponent(log.ComponentAMQP)
			logger.Info("Waiting for change events", "queue", a.cfg.AMQP.Queue)

			err = client.ConsumeBudgetChanged(ctx, func(msg *amqp.BudgetChangedMessage) error {
				fmt.Fprintf(a.stdout, "%s %s %s %d\n",
					msg.Timestamp.Format(time.RFC3339), msg.Entity, msg.Op, msg.EntityID)
				logger.Debug("Change event received",
					log.FieldEntity, msg.Entity,
					log.FieldOperation, msg.Op,
					"message_id", msg.ID)
				return nil
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			<-done
			return nil
		},
	}
}

func newSyncCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Keep an external copy of the budget up to date",
	}

	var f reportFlags
	var spreadsheetID, tab string
	sheetsCmd := &cobra.Command{
		Use:   "sheets",
		Short: "Re-export the report to Google Sheets on every change event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := f.selection(cmd)
			if err != nil {
				return err
			}
			if spreadsheetID == "" {
				spreadsheetID = a.cfg.Sheets.SpreadsheetID
			}
			if tab == "" {
				tab = a.cfg.Sheets.Tab
			}
			if spreadsheetID == "" {
				return errors.New("no spreadsheet id: set sheets.spreadsheet_id or --spreadsheet-id")
			}
			if a.cfg.AMQP.URL == "" {
				return errors.New("no broker configured: set amqp.url")
			}

			res, cleanup, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			if res.Events == nil {
				return errors.New("broker unreachable: cannot receive change events")
			}

			w := worker.NewSheetsSync(res.Service, func(ctx context.Context) (worker.Sink, error) {
				exp, err := google.NewFromEnv(ctx, spreadsheetID, tab)
				if err != nil {
					return nil, err
				}
				return exp, nil
			}, sel, a.cfg.Sheets.SyncDebounce, a.logger)

			ctx, done := cli.GracefulShutdown(cmd.Context(), a.logger, 5*time.Second, nil)
			a.logger.Info("Syncing report to Google Sheets",
				log.FieldReportShape, sel.Shape(),
				"tab", tab,
				"queue", a.cfg.AMQP.Queue)
			err = w.Run(ctx, res.Events)
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			<-done
			synced, failed := w.Stats()
			fmt.Fprintf(a.stdout, "Stopped after %d exports (%d failed)\n", synced, failed)
			return nil
		},
	}
	f.register(sheetsCmd)
	sheetsCmd.Flags().StringVar(&spreadsheetID, "spreadsheet-id", "", "target spreadsheet (overrides sheets.spreadsheet_id)")
	sheetsCmd.Flags().StringVar(&tab, "tab", "", "target tab (overrides sheets.tab)")

	cmd.AddCommand(sheetsCmd)
	return cmd
}
