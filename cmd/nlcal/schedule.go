package main

import (
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/nlcal/server/service/calendar"
	"github.com/hrygo/nlcal/store"
)

func newScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule <text...>",
		Short: "Extract a calendar entry from a request",
		Example: `  nlcal schedule "dentist next monday at 9:30"
  nlcal schedule --save --now 2024-06-12T14:30:00+02:00 lunch with Bob on friday`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := loadProfile()
			if err != nil {
				return err
			}
			ref, err := reference(p)
			if err != nil {
				return err
			}

			save, _ := cmd.Flags().GetBool("save")
			var st *store.Store
			if save {
				st, err = openStore(ctx, p)
				if err != nil {
					return err
				}
				defer st.Close()
			}

			svc, err := newCalendarService(p, st)
			if err != nil {
				return err
			}
			result, err := svc.Schedule(ctx, calendar.Request{
				Text:      strings.Join(args, " "),
				Reference: ref,
				Save:      save,
			})
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), viper.GetString("output"), result, func(w io.Writer) error {
				return printSchedule(w, result)
			})
		},
	}
	cmd.Flags().Bool("save", false, "save the entry to the calendar store")
	return cmd
}
