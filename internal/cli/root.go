// Package cli は運用コマンド hrmsctl
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"hrms-backend/internal/attendance"
	"hrms-backend/internal/rawattendance"
	"hrms-backend/internal/sequences"
	"hrms-backend/internal/staging"
)

var validFormats = []string{"text", "json"}

type AttendanceProcessor interface {
	Process(ctx context.Context, actor string, opts attendance.ProcessOptions) (*attendance.ProcessResult, error)
}

type StagingPromoter interface {
	PromoteFromRawAttendance(ctx context.Context, actor string, progress staging.ProgressFunc) (*staging.BatchResult, error)
}

type RawImporter interface {
	Import(ctx context.Context, actor, filename string, r io.Reader) (*rawattendance.ImportResult, error)
}

type SequenceIssuer interface {
	Next(ctx context.Context, actor, key string) (string, error)
	Validate(ctx context.Context, key string) (*sequences.Validation, error)
}

// Services はコマンドが使う業務サービス
type Services struct {
	Attendance AttendanceProcessor
	Staging    StagingPromoter
	Raw        RawImporter
	Sequences  SequenceIssuer
}

// Loader は設定ファイルからサービスを組み立てる。close は終了時に呼ぶ
type Loader func(ctx context.Context, configPath string) (svc *Services, closeFn func(), err error)

type RootOptions struct {
	ConfigPath string
	Actor      string
	Format     string

	svc *Services
}

func NewRootCommand(load Loader, defaultConfig string) *cobra.Command {
	opts := &RootOptions{}
	var closeFn func()

	cmd := &cobra.Command{
		Use:           "hrmsctl",
		Short:         "HRMS operations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(validFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
			}
			svc, c, err := load(cmd.Context(), opts.ConfigPath)
			if err != nil {
				return err
			}
			opts.svc, closeFn = svc, c
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if closeFn != nil {
				closeFn()
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", defaultConfig, "config file")
	cmd.PersistentFlags().StringVar(&opts.Actor, "actor", "hrmsctl", "actor recorded in audit logs")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newProcessAttendanceCommand(opts))
	cmd.AddCommand(newPromoteStagingCommand(opts))
	cmd.AddCommand(newImportRawCommand(opts))
	cmd.AddCommand(newNextIDCommand(opts))
	cmd.AddCommand(newValidateIDsCommand(opts))
	return cmd
}

// emit は json なら整形して、text なら text() の結果を出す
func emit(w io.Writer, opts *RootOptions, v any, text func(io.Writer)) error {
	if opts.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}
