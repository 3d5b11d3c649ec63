// Package app はサーバと CLI で共通のサービス組み立て
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"hrms-backend/internal/attendance"
	"hrms-backend/internal/audit"
	"hrms-backend/internal/employees"
	"hrms-backend/internal/masterdata"
	"hrms-backend/internal/notify"
	"hrms-backend/internal/platform/auth"
	"hrms-backend/internal/platform/db"
	"hrms-backend/internal/platform/ids"
	"hrms-backend/internal/platform/realtime"
	"hrms-backend/internal/rawattendance"
	"hrms-backend/internal/rbac"
	"hrms-backend/internal/recruitment"
	"hrms-backend/internal/sequences"
	"hrms-backend/internal/staging"
)

const hubBuffer = 64

type App struct {
	Config   *db.Config
	Location *time.Location

	Hub    *realtime.Hub
	Matrix *rbac.Matrix

	Auth        *auth.Service
	Audit       *audit.Service
	Employees   *employees.Service
	Staging     *staging.Service
	Raw         *rawattendance.Service
	Attendance  *attendance.Service
	Recruitment *recruitment.Service
	MasterData  *masterdata.Service
	Sequences   *sequences.Service
}

// New は DB 接続から全サービスを組み立て、権限マトリクスを読み込む
func New(ctx context.Context, cfg *db.Config, conn *sql.DB) (*App, error) {
	loc, err := time.LoadLocation(cfg.Attendance.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("タイムゾーンの読み込み失敗 %q: %w", cfg.Attendance.TimeZone, err)
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret が未設定")
	}

	clock := ids.RealClock{}
	idgen := ids.NewULIDGen()
	hub := realtime.NewHub(hubBuffer)

	auditSvc := audit.NewService(audit.NewStore(conn), clock, idgen)

	matrix := rbac.NewMatrix(rbac.NewStore(conn))
	if err := matrix.Load(ctx); err != nil {
		return nil, fmt.Errorf("権限マトリクスの読み込み失敗: %w", err)
	}

	empStore := employees.NewStore(conn)
	empSvc := employees.NewService(empStore, clock, idgen, auditSvc, hub)

	rawStore := rawattendance.NewStore(conn)
	rawSvc := rawattendance.NewService(rawattendance.Deps{
		Repo:       rawStore,
		Tx:         rawattendance.NewTransactor(conn),
		Directory:  empSvc,
		Candidates: empStore,
		Clock:      clock,
		IDs:        idgen,
		Audit:      auditSvc,
		Publisher:  hub,
		Location:   loc,
	})

	mailer := notify.New(cfg.Mail, cfg.Attendance.DigestRecipients)
	if !mailer.Enabled() {
		log.Printf("[INFO] mail host not configured; anomaly digests are disabled")
	}
	a := cfg.Attendance
	attSvc := attendance.NewService(attendance.Deps{
		Repo:      attendance.NewStore(conn),
		Tx:        attendance.NewTransactor(conn),
		Index:     rawSvc,
		Notifier:  mailer,
		Clock:     clock,
		IDs:       idgen,
		Audit:     auditSvc,
		Publisher: hub,
		Location:  loc,
		Defaults: attendance.Defaults{
			WorkStart:    a.WorkStart,
			GraceMinutes: a.GraceMinutes,
			HalfDayHours: a.HalfDayHours,
			MaxHours:     a.MaxHours,
			WindowDays:   a.DefaultWindowDay,
		},
	})

	return &App{
		Config:   cfg,
		Location: loc,
		Hub:      hub,
		Matrix:   matrix,
		Auth:     auth.NewService(auth.NewStore(conn), []byte(cfg.Auth.JWTSecret), cfg.Auth.TTL()),
		Audit:    auditSvc,

		Employees: empSvc,
		Staging: staging.NewService(staging.Deps{
			Repo:      staging.NewStore(conn),
			Employees: empStore,
			Tx:        staging.NewTransactor(conn),
			Raw:       rawStore,
			Clock:     clock,
			IDs:       idgen,
			Audit:     auditSvc,
			Publisher: hub,
		}),
		Raw:        rawSvc,
		Attendance: attSvc,
		Recruitment: recruitment.NewService(recruitment.Deps{
			Repo:      recruitment.NewStore(conn),
			Tx:        recruitment.NewTransactor(conn),
			Clock:     clock,
			IDs:       idgen,
			Audit:     auditSvc,
			Publisher: hub,
		}),
		MasterData: masterdata.NewService(masterdata.Deps{
			Repo:      masterdata.NewStore(conn),
			Tx:        masterdata.NewTransactor(conn),
			Clock:     clock,
			IDs:       idgen,
			Audit:     auditSvc,
			Publisher: hub,
		}),
		Sequences: sequences.NewService(sequences.NewStore(conn), sequences.NewTransactor(conn), clock, idgen, auditSvc),
	}, nil
}

// Guard は権限キーから gin ミドルウェアを作る
func (a *App) Guard(permission string) gin.HandlerFunc {
	return rbac.RequirePermission(a.Matrix, permission)
}

// Allow はセッションのロールが permission を持つか判定する
func (a *App) Allow(c *gin.Context, permission string) bool {
	sess, ok := auth.SessionFrom(c)
	return ok && a.Matrix.HasPermission(sess.Role, permission)
}

// RegisterRoutes は /api/v1 配下に全 API を登録する
func (a *App) RegisterRoutes(api *gin.RouterGroup) {
	auth.RegisterPublicRoutes(api, a.Auth)

	priv := api.Group("")
	priv.Use(auth.RequireAuth(a.Auth.Secret()))

	auth.RegisterRoutes(priv, a.Auth)
	rbac.RegisterRoutes(priv, a.Matrix, a.Audit)
	audit.RegisterRoutes(priv, a.Audit, a.Guard("settings.read"))
	realtime.RegisterRoutes(priv, a.Hub, a.Allow)

	employees.RegisterRoutes(priv, a.Employees, a.Guard)
	staging.RegisterRoutes(priv, a.Staging, a.Guard)
	rawattendance.RegisterRoutes(priv, a.Raw, a.Guard)
	attendance.RegisterRoutes(priv, a.Attendance, a.Guard)
	recruitment.RegisterRoutes(priv, a.Recruitment, a.Guard)
	masterdata.RegisterRoutes(priv, a.MasterData, a.Guard)
	sequences.RegisterRoutes(priv, a.Sequences, a.Guard)
}
