package main

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hrygo/nlcal/plugin/ai/aitime"
	"github.com/hrygo/nlcal/server/service/calendar"
)

func newWhenCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "when <text...>",
		Short:   "Extract and resolve only the date a request refers to",
		Example: `  nlcal when "the day after tomorrow"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile()
			if err != nil {
				return err
			}
			ref, err := reference(p)
			if err != nil {
				return err
			}
			svc, err := newCalendarService(p, nil)
			if err != nil {
				return err
			}
			result, err := svc.ResolveWhen(cmd.Context(), strings.Join(args, " "), ref)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), viper.GetString("output"), result, func(w io.Writer) error {
				return printWhen(w, result)
			})
		},
	}
}

// resolveOutput is what resolve prints.
type resolveOutput struct {
	When aitime.When         `json:"when"`
	Date aitime.ResolvedDate `json:"date"`
}

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a symbolic date without calling the model",
		Example: `  nlcal resolve --kind next_week --weekday monday
  nlcal resolve --kind month_day --month 2 --day 29 --now 2025-01-10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadProfile()
			if err != nil {
				return err
			}
			ref, err := reference(p)
			if err != nil {
				return err
			}
			when, err := whenFromFlags(cmd.Flags())
			if err != nil {
				return err
			}

			svc := calendar.NewService(nil, nil, nil, slog.Default())
			date, err := svc.Resolve(when, ref)
			if err != nil {
				return err
			}
			out := resolveOutput{When: when, Date: date}
			return render(cmd.OutOrStdout(), viper.GetString("output"), out, func(w io.Writer) error {
				return printDate(w, when, date)
			})
		},
	}

	flags := cmd.Flags()
	flags.String("kind", "", "one of: "+strings.Join(aitime.KindNames(), ", "))
	flags.String("weekday", "", "weekday for next_week and this_week")
	flags.Int("days", 0, "day offset for in_exact_days")
	flags.Int("year", 0, "year for absolute_date")
	flags.Int("month", 0, "month for month_day and absolute_date")
	flags.Int("day", 0, "day of month for month_day and absolute_date")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}

// whenFromFlags builds the When named by --kind from the flags that kind uses.
func whenFromFlags(flags *pflag.FlagSet) (aitime.When, error) {
	kindName, _ := flags.GetString("kind")
	kind, err := aitime.ParseKind(kindName)
	if err != nil {
		return aitime.When{}, err
	}

	requireFlags := func(names ...string) error {
		for _, name := range names {
			if !flags.Changed(name) {
				return errors.Errorf("--kind %s requires --%s", kind, name)
			}
		}
		return nil
	}
	days, _ := flags.GetInt("days")
	year, _ := flags.GetInt("year")
	month, _ := flags.GetInt("month")
	day, _ := flags.GetInt("day")

	switch kind {
	case aitime.KindNextWeek, aitime.KindThisWeek:
		if err := requireFlags("weekday"); err != nil {
			return aitime.When{}, err
		}
		name, _ := flags.GetString("weekday")
		wd, err := aitime.ParseWeekday(name)
		if err != nil {
			return aitime.When{}, err
		}
		if kind == aitime.KindNextWeek {
			return aitime.NextWeek(wd), nil
		}
		return aitime.ThisWeek(wd), nil
	case aitime.KindInExactDays:
		return aitime.InExactDays(days), nil
	case aitime.KindMonthDay:
		if err := requireFlags("month", "day"); err != nil {
			return aitime.When{}, err
		}
		return aitime.MonthDay(time.Month(month), day), nil
	case aitime.KindAbsoluteDate:
		if err := requireFlags("year", "month", "day"); err != nil {
			return aitime.When{}, err
		}
		return aitime.AbsoluteDate(year, time.Month(month), day), nil
	default:
		return aitime.When{}, errors.Errorf("unsupported kind %s", kind)
	}
}
