package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/recruit-tracker/internal/ai"
	"github.com/spigell/recruit-tracker/internal/ai/gemini"
	"github.com/spigell/recruit-tracker/internal/logger"
	"github.com/spigell/recruit-tracker/internal/secrets"
	"github.com/spigell/recruit-tracker/internal/snapshot"
	"github.com/spigell/recruit-tracker/internal/tracker"
)

// session holds everything a command needs: config, logger, the tracker and
// the optional snapshot it was loaded from.
type session struct {
	ctx     context.Context
	config  *Config
	logger  *zap.Logger
	tracker *tracker.Tracker
	db      *snapshot.DB
}

// openSession builds the session or exits. Commands have nothing to do without it.
func openSession(ctx context.Context) *session {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	s := &session{
		ctx:    ctx,
		config: config,
		logger: logger,
	}

	s.tracker = tracker.New(tracker.Options{
		Logger:        logger,
		Drafter:       newDrafter(ctx, config.AI, logger),
		ScheduleDelay: config.Schedule.Delay,
	})

	if config.DB == "" {
		logger.Debug("no database configured, working in memory")
		return s
	}

	s.db, err = snapshot.Open(ctx, config.DB)
	if err != nil {
		logger.Fatal("opening the database", zap.Error(err), zap.String("db", config.DB))
	}

	records, err := s.db.Load(ctx)
	if err != nil {
		logger.Fatal("loading candidates", zap.Error(err))
	}
	if err := s.tracker.Load(records); err != nil {
		logger.Fatal("loading candidates", zap.Error(err))
	}

	logger.Debug("candidates loaded", zap.String("db", config.DB), zap.Int("count", len(records)))
	return s
}

// save writes the current list back to the database, if there is one.
func (s *session) save() {
	if s.db == nil {
		return
	}
	// A cancelled command context must not lose completed changes.
	if err := s.db.Save(context.WithoutCancel(s.ctx), s.tracker.List()); err != nil {
		s.logger.Fatal("saving candidates", zap.Error(err), zap.String("db", s.config.DB))
	}
}

func (s *session) close() {
	if err := s.db.Close(); err != nil {
		s.logger.Warn("closing the database", zap.Error(err))
	}
	_ = s.logger.Sync()
}

func (s *session) parseID(arg string) int64 {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		s.logger.Fatal("invalid candidate id", zap.String("id", arg))
	}
	return id
}

// newDrafter returns the Gemini drafter when AI is enabled and usable, the template otherwise.
func newDrafter(ctx context.Context, cfg *AIConfig, lg *zap.Logger) ai.Drafter {
	if cfg == nil || !cfg.Enabled || cfg.Gemini == nil {
		return ai.TemplateDrafter{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		Env:  "GEMINI_API_KEY",
		File: cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		lg.Warn("ai drafting disabled", zap.Error(err),
			zap.String("hint", "set ai.gemini.api-key-file, RECRUIT_GEMINI_API_KEY_FILE or GEMINI_API_KEY"),
		)
		return ai.TemplateDrafter{}
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		lg.Warn("ai drafting disabled", zap.Error(err))
		return ai.TemplateDrafter{}
	}

	drafterLogger := logger.WithCommonFields(lg, "gemini", generator.Model())
	return gemini.NewDrafter(generator, drafterLogger, cfg.Gemini.MaxLogLength)
}
