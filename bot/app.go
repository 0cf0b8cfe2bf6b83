// Package bot assembles the support bot: dialog registry, handoff service,
// questionnaires, file relay and all Telegram routes.
package bot

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/skillsdiff/supportbot/core/config"
	"github.com/skillsdiff/supportbot/core/logger"
	coretelegram "github.com/skillsdiff/supportbot/core/telegram"
	"github.com/skillsdiff/supportbot/core/telegram/router"
	"github.com/skillsdiff/supportbot/core/telegram/state"
	"github.com/skillsdiff/supportbot/dialog"
	"github.com/skillsdiff/supportbot/filerelay"
	"github.com/skillsdiff/supportbot/intake"
	"github.com/skillsdiff/supportbot/journal"
	"github.com/skillsdiff/supportbot/support"

	tele "gopkg.in/telebot.v4"
)

// Config wraps the core configuration for the cmd runner.
type Config struct {
	coreconfig.Config
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config { return &c.Config }

// LoadConfig reads and validates the bot configuration.
func LoadConfig(path string) (*Config, error) {
	cfg, err := coreconfig.Load(path)
	if err != nil {
		return nil, err
	}
	return &Config{Config: *cfg}, nil
}

// App owns the bot's long-lived components.
type App struct {
	cfg *coreconfig.Config
	db  *sqlx.DB

	dialogs *dialog.Manager
	states  state.Manager
	rec     journal.Recorder

	// Built in OnStart once the bot instance exists.
	svc   *support.Service
	forms *intake.Flow
	files *filerelay.Flow
}

// New assembles the application. db may be nil when the journal is disabled.
func New(cfg *coreconfig.Config, db *sqlx.DB) *App {
	rec := journal.Nop()
	if cfg.Support.Journal && db != nil {
		rec = journal.NewPostgres(db)
	}

	return &App{
		cfg:     cfg,
		db:      db,
		dialogs: dialog.NewManager(),
		states:  state.NewMemoryManager(),
		rec:     rec,
	}
}

// TelegramRunOptions builds the full route table and lifecycle hooks.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	if a.cfg == nil {
		return coretelegram.RunOptions{}, fmt.Errorf("bot: nil config")
	}

	reg := coretelegram.NewRegistry()
	a.registerCommands(reg)
	a.registerButtons(reg)
	if err := a.registerCallbacks(reg); err != nil {
		return coretelegram.RunOptions{}, err
	}
	reg.SetTextFallback(a.handleRelay)

	var routes []coretelegram.Route
	routes = append(routes, router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminIDs: a.cfg.Support.AdminIDs,
		OnAdminReject: func(c tele.Context) error {
			return c.Send(txtNoAccess)
		},
	})...)
	routes = append(routes, router.TextRoutes(a.states, reg, router.TextOptions{})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))

	return coretelegram.RunOptions{
		Config:      a.cfg,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg, nil),
		Routes:      routes,
		OnStart:     a.onStart,
	}, nil
}

func (a *App) onStart(ctx context.Context, rt coretelegram.Runtime) error {
	msgr := support.NewBotMessenger(rt.Bot)
	groupID := a.cfg.Support.GroupID

	a.svc = support.NewService(a.dialogs, msgr, a.rec, groupID, support.Keyboards{
		UserInDialog:  leaveMenu(),
		AdminInDialog: closeMenu(),
		MainMenu:      startMenu(),
		AdminBack:     backMenu(),
	})
	a.forms = intake.NewFlow(a.states, msgr, groupID, startMenu())
	a.files = filerelay.NewFlow(a.states, msgr, groupID, adminMenu())

	sweeper := dialog.NewSweeper(
		a.dialogs,
		a.cfg.Support.DialogTimeout,
		a.cfg.Support.CleanupInterval,
		a.svc.RecordStale,
	)
	go sweeper.Run(ctx)

	logger.Support.LogAttrs(ctx, slog.LevelInfo, "support.ready",
		slog.Int64("group_id", groupID),
		slog.Int("admins", len(a.cfg.Support.AdminIDs)),
		slog.Bool("journal", a.cfg.Support.Journal && a.db != nil),
	)
	return nil
}
