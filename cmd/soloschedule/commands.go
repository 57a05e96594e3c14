package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"soloschedule/internal/database"
	"soloschedule/internal/earnings"
	"soloschedule/internal/interval"
	"soloschedule/internal/models"
	"soloschedule/internal/service"
	"soloschedule/internal/timegrid"

	"github.com/spf13/cobra"
)

const annotationWrites = "writes"

func writes(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationWrites] = "true"
	return cmd
}

func newRootCmd(a *app) *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:           "soloschedule",
		Short:         "Appointment book for a single practitioner",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.init(cmd.Context(), cfgPath); err != nil {
				return err
			}
			if cmd.Annotations[annotationWrites] == "true" {
				return a.backup(cmd.Context())
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default $CONFIG_PATH or configs/config.yaml)")

	root.AddCommand(
		newSlotsCmd(a),
		newBookCmd(a),
		newEditCmd(a),
		newStatusCmd(a),
		newPaidCmd(a),
		newBlockCmd(a),
		newUnblockCmd(a),
		newDayCmd(a),
		newScheduleCmd(a),
		newServicesCmd(a),
		newEarningsCmd(a),
		newBackupCmd(a),
	)
	return root
}

func parseTime(flag, value string) (timegrid.TimeOfDay, error) {
	t, err := timegrid.Parse(value)
	if err != nil {
		return 0, fmt.Errorf("--%s: %w", flag, err)
	}
	return t, nil
}

func (a *app) dateOrToday(date string) string {
	if date == "" {
		return a.scheduler.Today()
	}
	return date
}

func newSlotsCmd(a *app) *cobra.Command {
	var date, serviceName, bookingID string
	var minutes int

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List start times for a service (--service) or a blockout (--minutes)",
		RunE: func(cmd *cobra.Command, args []string) error {
			date = a.dateOrToday(date)
			var list service.SlotList
			var err error
			switch {
			case serviceName != "":
				list, err = a.bookings.EnumerateStarts(cmd.Context(), date, serviceName, bookingID)
			case minutes > 0:
				list, err = a.blockouts.EnumerateStarts(cmd.Context(), date, minutes)
			default:
				return errors.New("either --service or --minutes is required")
			}
			if err != nil {
				return err
			}
			printSlots(cmd.OutOrStdout(), list)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&serviceName, "service", "", "service name")
	cmd.Flags().StringVar(&bookingID, "booking", "", "booking being edited, excluded from conflicts")
	cmd.Flags().IntVar(&minutes, "minutes", 0, "blockout length in minutes")
	return cmd
}

func newBookCmd(a *app) *cobra.Command {
	var date, at, client, serviceName string

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Create a booking",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseTime("time", at)
			if err != nil {
				return err
			}
			b, err := a.bookings.CommitBooking(cmd.Context(), service.BookingRequest{
				Client:  client,
				Service: serviceName,
				Date:    a.dateOrToday(date),
				Time:    start,
			})
			if err != nil {
				return err
			}
			printBooking(cmd.OutOrStdout(), b)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&at, "time", "", "start time HH:MM")
	cmd.Flags().StringVar(&client, "client", "", "client name")
	cmd.Flags().StringVar(&serviceName, "service", "", "service name")
	_ = cmd.MarkFlagRequired("time")
	_ = cmd.MarkFlagRequired("client")
	_ = cmd.MarkFlagRequired("service")
	return writes(cmd)
}

func newEditCmd(a *app) *cobra.Command {
	var date, at, client, serviceName string
	var reschedule bool

	cmd := &cobra.Command{
		Use:   "edit BOOKING_ID",
		Short: "Edit or reschedule a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := a.bookings.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			req := service.BookingRequest{
				ID:         current.ID,
				Client:     client,
				Service:    current.Service,
				Date:       current.Date,
				Time:       current.Time,
				Reschedule: reschedule,
			}
			if serviceName != "" {
				req.Service = serviceName
			}
			if date != "" {
				req.Date = date
			}
			if at != "" {
				if req.Time, err = parseTime("time", at); err != nil {
					return err
				}
			}
			b, err := a.bookings.CommitBooking(cmd.Context(), req)
			if err != nil {
				return err
			}
			printBooking(cmd.OutOrStdout(), b)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "new date YYYY-MM-DD")
	cmd.Flags().StringVar(&at, "time", "", "new start time HH:MM")
	cmd.Flags().StringVar(&client, "client", "", "new client name")
	cmd.Flags().StringVar(&serviceName, "service", "", "new service name")
	cmd.Flags().BoolVar(&reschedule, "reschedule", false, "reschedule: keep the client, reset the status")
	return writes(cmd)
}

func newStatusCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "status BOOKING_ID STATUS",
		Short:     "Set a booking status (" + strings.Join(models.Statuses, ", ") + ")",
		Args:      cobra.ExactArgs(2),
		ValidArgs: models.Statuses,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.bookings.UpdateStatus(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			printBooking(cmd.OutOrStdout(), b)
			return nil
		},
	}
	return writes(cmd)
}

func newPaidCmd(a *app) *cobra.Command {
	var set bool

	cmd := &cobra.Command{
		Use:   "paid BOOKING_ID",
		Short: "Toggle the paid flag, or set it with --set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var b models.Booking
			var err error
			if cmd.Flags().Changed("set") {
				b, err = a.bookings.SetPaid(cmd.Context(), args[0], set)
			} else {
				b, err = a.bookings.TogglePaid(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			printBooking(cmd.OutOrStdout(), b)
			return nil
		},
	}
	cmd.Flags().BoolVar(&set, "set", false, "paid value to set")
	return writes(cmd)
}

func newBlockCmd(a *app) *cobra.Command {
	var date, at, blockType string
	var minutes int

	cmd := &cobra.Command{
		Use:   "block",
		Short: "Block time on a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseTime("time", at)
			if err != nil {
				return err
			}
			bl, err := a.blockouts.CommitBlockout(cmd.Context(), a.dateOrToday(date), blockType, start, minutes)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Blocked %s-%s (%s)\n", bl.Start, bl.End, bl.Type)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&at, "time", "", "start time HH:MM")
	cmd.Flags().IntVar(&minutes, "minutes", 60, "length in minutes")
	cmd.Flags().StringVar(&blockType, "type", models.BlockBreak, "type ("+strings.Join(models.BlockTypes, ", ")+")")
	_ = cmd.MarkFlagRequired("time")
	return writes(cmd)
}

func newUnblockCmd(a *app) *cobra.Command {
	var date, from, to, blockType string

	cmd := &cobra.Command{
		Use:   "unblock",
		Short: "Delete a blockout",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseTime("start", from)
			if err != nil {
				return err
			}
			end, err := timegrid.ParseEnd(to)
			if err != nil {
				return fmt.Errorf("--end: %w", err)
			}
			date = a.dateOrToday(date)
			if err := a.blockouts.DeleteBlockout(cmd.Context(), date, start, end, blockType); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %s-%s (%s)\n", date, start, end, blockType)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&from, "start", "", "start time HH:MM")
	cmd.Flags().StringVar(&to, "end", "", "end time HH:MM, 24:00 for midnight")
	cmd.Flags().StringVar(&blockType, "type", models.BlockBreak, "blockout type")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return writes(cmd)
}

func newDayCmd(a *app) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "day",
		Short: "Show the agenda of a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := a.scheduler.Day(cmd.Context(), a.dateOrToday(date))
			if err != nil {
				return err
			}
			printDay(cmd.OutOrStdout(), view)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date YYYY-MM-DD (default today)")
	return cmd
}

func newScheduleCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Show or edit the weekly availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			weekly, err := a.schedule.Weekly(cmd.Context())
			if err != nil {
				return err
			}
			printWeekly(cmd.OutOrStdout(), weekly)
			return nil
		},
	}

	show := func(cmd *cobra.Command, weekday string, ranges []interval.Interval) {
		printRanges(cmd.OutOrStdout(), weekday, ranges)
	}

	add := &cobra.Command{
		Use:   "add WEEKDAY",
		Short: "Append a range after the last one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ranges, err := a.schedule.AddRange(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			show(cmd, args[0], ranges)
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set WEEKDAY INDEX START END",
		Short: "Replace one range",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}
			start, err := parseTime("start", args[2])
			if err != nil {
				return err
			}
			end, err := parseTime("end", args[3])
			if err != nil {
				return err
			}
			ranges, err := a.schedule.SetRange(cmd.Context(), args[0], index, start, end)
			if err != nil {
				return err
			}
			show(cmd, args[0], ranges)
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove WEEKDAY INDEX",
		Short: "Remove one range",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}
			ranges, err := a.schedule.RemoveRange(cmd.Context(), args[0], index)
			if err != nil {
				return err
			}
			show(cmd, args[0], ranges)
			return nil
		},
	}

	toggle := &cobra.Command{
		Use:       "toggle WEEKDAY on|off",
		Short:     "Turn a weekday on or off",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var on bool
			switch args[1] {
			case "on":
				on = true
			case "off":
			default:
				return fmt.Errorf("expected on or off, got %q", args[1])
			}
			ranges, err := a.schedule.ToggleDay(cmd.Context(), args[0], on)
			if err != nil {
				return err
			}
			show(cmd, args[0], ranges)
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear [WEEKDAY]",
		Short: "Clear one weekday, or the whole week",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return a.schedule.ClearAll(cmd.Context())
			}
			return a.schedule.ClearDay(cmd.Context(), args[0])
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Restore the default weekly schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.schedule.ResetDefault(cmd.Context()); err != nil {
				return err
			}
			weekly, err := a.schedule.Weekly(cmd.Context())
			if err != nil {
				return err
			}
			printWeekly(cmd.OutOrStdout(), weekly)
			return nil
		},
	}

	cmd.AddCommand(writes(add), writes(set), writes(remove), writes(toggle), writes(clearCmd), writes(reset))
	return cmd
}

func newServicesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "services",
		Short: "List or edit the bookable services",
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := a.catalog.List(cmd.Context())
			if err != nil {
				return err
			}
			printServices(cmd.OutOrStdout(), services)
			return nil
		},
	}

	var duration int
	var price float64
	set := &cobra.Command{
		Use:   "set NAME",
		Short: "Add or replace a service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.catalog.Upsert(cmd.Context(), models.Service{Name: args[0], Duration: duration, Price: price})
			if err != nil {
				return err
			}
			printServices(cmd.OutOrStdout(), []models.Service{svc})
			return nil
		},
	}
	set.Flags().IntVar(&duration, "duration", 60, "duration in minutes")
	set.Flags().Float64Var(&price, "price", 0, "price")

	remove := &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.catalog.Remove(cmd.Context(), args[0])
		},
	}

	cmd.AddCommand(writes(set), writes(remove))
	return cmd
}

func newEarningsCmd(a *app) *cobra.Command {
	var filter earnings.Filter
	var export bool

	cmd := &cobra.Command{
		Use:   "earnings",
		Short: "Show the earnings ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			if export {
				path, err := a.earnings.Export(cmd.Context(), filter)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %s\n", path)
				return nil
			}
			summary, err := a.earnings.Summary(cmd.Context(), filter)
			if err != nil {
				return err
			}
			printEarnings(cmd.OutOrStdout(), summary)
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.From, "from", "", "first date YYYY-MM-DD")
	cmd.Flags().StringVar(&filter.To, "to", "", "last date YYYY-MM-DD")
	cmd.Flags().BoolVar(&export, "export", false, "write an xlsx workbook to the exports directory")
	return cmd
}

func newBackupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Back up the sqlite store now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.db == nil {
				return errors.New("backups need the sqlite storage driver")
			}
			cfg := a.cfg.Backup
			cfg.Enabled = true
			path, err := database.NewBackupService(a.db, cfg, a.logger).Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", path)
			return nil
		},
	}
}
