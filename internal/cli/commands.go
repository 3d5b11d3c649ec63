package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"hrms-backend/internal/attendance"
	"hrms-backend/internal/staging"
)

func newProcessAttendanceCommand(opts *RootOptions) *cobra.Command {
	var (
		po          attendance.ProcessOptions
		keepPending bool
	)
	cmd := &cobra.Command{
		Use:   "process-attendance",
		Short: "Aggregate raw punches into attendance records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if keepPending {
				mark := false
				po.MarkProcessed = &mark
			}
			res, err := opts.svc.Attendance.Process(cmd.Context(), opts.Actor, po)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts, res, func(w io.Writer) {
				fmt.Fprintf(w, "window %s .. %s\n", res.DateFrom, res.DateTo)
				fmt.Fprintf(w, "upserted=%d skipped_confirmed=%d skipped_unmatched=%d skipped_rejected=%d\n",
					res.Upserted, res.SkippedConfirmed, res.SkippedUnmatched, res.SkippedRejected)
				fmt.Fprintf(w, "raw_marked_processed=%d anomalies=%d auto_approved=%d\n",
					res.RawMarkedProcessed, res.AnomaliesDetected, res.AutoApproved)
			})
		},
	}
	cmd.Flags().StringVar(&po.DateFrom, "from", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&po.DateTo, "to", "", "last day (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&po.AutoApprove, "auto-approve", false, "approve clean records after processing")
	cmd.Flags().BoolVar(&keepPending, "keep-pending", false, "do not mark raw punches as processed")
	return cmd
}

func newPromoteStagingCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "promote-staging",
		Short: "Promote staging rows that appear in raw attendance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			progress := func(stages []staging.Stage, current int) {
				if opts.Format == "json" || current < 0 || current >= len(stages) {
					return
				}
				s := stages[current]
				fmt.Fprintf(cmd.ErrOrStderr(), "[%s] %s %s\n", s.Status, s.Name, s.Details)
			}
			res, err := opts.svc.Staging.PromoteFromRawAttendance(cmd.Context(), opts.Actor, progress)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts, res, func(w io.Writer) {
				fmt.Fprintf(w, "matched=%d promoted=%d removed=%d retained=%d\n", res.Matched, res.Promoted, res.Removed, res.Retained)
				if res.Halted {
					fmt.Fprintf(w, "halted: %s\n", res.HaltReason)
				}
				for _, f := range res.Failures {
					fmt.Fprintf(w, "  failed %s: %s\n", f.EmployeeID, f.Reason)
				}
			})
		},
	}
}

func newImportRawCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import-raw <file>",
		Short: "Import a terminal export (txt, csv, xls, xlsx)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := opts.svc.Raw.Import(cmd.Context(), opts.Actor, filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts, res, func(w io.Writer) {
				fmt.Fprintf(w, "inserted=%d rejected=%d\n", res.Inserted, len(res.Rejected))
				for _, e := range res.Rejected {
					fmt.Fprintf(w, "  line %d: %s\n", e.Line, e.Error)
				}
			})
		},
	}
}

func newNextIDCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "next-id <key>",
		Short: "Issue the next ID from a sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := opts.svc.Sequences.Next(cmd.Context(), opts.Actor, args[0])
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts, map[string]string{"id": id}, func(w io.Writer) {
				fmt.Fprintln(w, id)
			})
		},
	}
}

func newValidateIDsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate-ids <key>",
		Short: "Check issued IDs against a sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := opts.svc.Sequences.Validate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := emit(cmd.OutOrStdout(), opts, v, func(w io.Writer) {
				fmt.Fprintf(w, "pattern %s\n", v.Pattern)
				fmt.Fprintf(w, "total=%d invalid=%d duplicates=%d max=%d next=%d\n",
					v.Total, v.InvalidCount, v.DuplicateCount, v.MaxValue, v.NextValue)
				for _, s := range v.InvalidSamples {
					fmt.Fprintf(w, "  invalid %s\n", s)
				}
				for _, d := range v.DuplicateSamples {
					fmt.Fprintf(w, "  duplicate %s x%d\n", d.Value, d.Count)
				}
			}); err != nil {
				return err
			}
			if !v.Success {
				return fmt.Errorf("sequence %s failed validation", v.Key)
			}
			return nil
		},
	}
}
