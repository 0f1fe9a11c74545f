package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/nlcal/server/service/calendar"
	"github.com/hrygo/nlcal/store"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved calendar entries",
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
			defer st.Close()

			find := &store.FindEntry{}
			if v, _ := cmd.Flags().GetString("from"); v != "" {
				find.FromDate = &v
			}
			if v, _ := cmd.Flags().GetString("to"); v != "" {
				find.ToDate = &v
			}
			if v, _ := cmd.Flags().GetInt("limit"); v > 0 {
				find.Limit = &v
			}

			entries, err := calendar.NewService(nil, st, nil, slog.Default()).List(ctx, find)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), viper.GetString("output"), entries, func(w io.Writer) error {
				return printEntries(w, entries)
			})
		},
	}
	cmd.Flags().String("from", "", "first date to include, YYYY-MM-DD")
	cmd.Flags().String("to", "", "last date to include, YYYY-MM-DD")
	cmd.Flags().Int("limit", 0, "maximum number of entries")
	return cmd
}
