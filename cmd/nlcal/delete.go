package main

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hrygo/nlcal/server/service/calendar"
)

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved calendar entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 32)
			if err != nil || id < 1 {
				return errors.Errorf("invalid entry id %q", args[0])
			}

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

			if err := calendar.NewService(nil, st, nil, slog.Default()).Delete(ctx, int32(id)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry %d\n", id)
			return nil
		},
	}
}
