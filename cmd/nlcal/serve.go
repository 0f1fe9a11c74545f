package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/nlcal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			p, err := loadProfile()
			if err != nil {
				return err
			}
			st, err := openStore(ctx, p)
			if err != nil {
				return err
			}
			svc, err := newCalendarService(p, st)
			if err != nil {
				st.Close()
				return err
			}

			s, err := server.NewServer(ctx, p, st, svc)
			if err != nil {
				st.Close()
				return err
			}
			if err := s.Start(ctx); err != nil {
				st.Close()
				return err
			}
			printGreetings(cmd, p.Version, s.Addr(), p.LLMProvider, p.LLMModel)

			<-ctx.Done()
			s.Shutdown(context.WithoutCancel(ctx))
			return nil
		},
	}
	cmd.Flags().String("addr", "", "address of server")
	cmd.Flags().Int("port", 8081, "port of server")
	for _, name := range []string{"addr", "port"} {
		if err := viper.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			panic(err)
		}
	}
	return cmd
}

func printGreetings(cmd *cobra.Command, version, addr, provider, model string) {
	slog.Info("nlcal started", slog.String("version", version), slog.String("addr", addr))
	fmt.Fprintf(cmd.OutOrStdout(), "nlcal %s listening on http://%s (%s/%s)\n", version, addr, provider, model)
}
