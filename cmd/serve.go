package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/abhisek/talkie/internal/api"
	"github.com/abhisek/talkie/internal/coach"
	"github.com/abhisek/talkie/internal/content"
	"github.com/abhisek/talkie/internal/llm"
	"github.com/abhisek/talkie/internal/logger"
	"github.com/abhisek/talkie/internal/session"
	"github.com/abhisek/talkie/internal/speech"
	"github.com/abhisek/talkie/internal/store"
	"github.com/abhisek/talkie/internal/telemetry"
	"github.com/abhisek/talkie/internal/tutor"
)

const defaultAddr = ":8080"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log, err := newLogger(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		shutdownTracing := telemetry.Setup(ctx, log, telemetry.ConfigFromEnv())
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(flushCtx); err != nil {
				log.Warn("otel shutdown", "error", err)
			}
		}()

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		bank, err := loadBank()
		if err != nil {
			return err
		}
		log.Info("content loaded", "version", bank.Version, "name", bank.Name)

		sessions, closeSessions, err := session.Open(ctx, session.ConfigFromEnv())
		if err != nil {
			return fmt.Errorf("open session store: %w", err)
		}
		defer closeSessions()

		speechCfg := speech.ConfigFromEnv()
		if err := os.MkdirAll(speechCfg.Dir, 0o755); err != nil {
			return fmt.Errorf("create audio dir: %w", err)
		}
		janitor := speech.NewJanitor(speechCfg.Dir, speechCfg.MaxAge, log)
		if err := janitor.Start(); err != nil {
			return fmt.Errorf("start audio janitor: %w", err)
		}
		defer janitor.Stop()

		t := tutor.New(newLedger(st, log), st, bank, sessions,
			tutor.WithCoach(coach.New(newProvider(ctx, st, log), log)),
			tutor.WithSpeech(speech.New(speechCfg)),
			tutor.WithLogger(log),
		)

		if isProd(cmd) {
			gin.SetMode(gin.ReleaseMode)
		}
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = envOr("TALKIE_ADDR", defaultAddr)
		}
		srv := api.NewServer(addr, api.Config{
			Tutor:        t,
			Logger:       log,
			AllowOrigins: splitList(os.Getenv("TALKIE_CORS_ORIGINS")),
			AudioDir:     speechCfg.Dir,
		})
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides TALKIE_ADDR, default "+defaultAddr+")")
}

func loadBank() (*content.Bank, error) {
	path := os.Getenv("TALKIE_CONTENT_PACK")
	if path == "" {
		return content.Default(), nil
	}
	b, err := content.Load(path)
	if err != nil {
		return nil, fmt.Errorf("content pack %s: %w", path, err)
	}
	return b, nil
}

// newProvider returns nil when no LLM is configured; the coach then falls
// back to canned replies.
func newProvider(ctx context.Context, st *store.Store, log *logger.Logger) llm.Provider {
	cfg, ok := llm.Resolve()
	if !ok {
		log.Warn("no LLM provider configured, coach replies will be canned")
		return nil
	}
	p, err := llm.NewProvider(ctx, cfg, st.LLMEventRepo(), log)
	if err != nil {
		log.Warn("LLM provider unavailable, coach replies will be canned", "provider", cfg.Provider, "error", err)
		return nil
	}
	log.Info("LLM provider ready", "provider", cfg.Provider, "model", p.ModelID())
	return p
}

func isProd(cmd *cobra.Command) bool {
	m, _ := cmd.Flags().GetString("log-mode")
	if m == "" {
		m = os.Getenv("TALKIE_LOG_MODE")
	}
	m = strings.ToLower(strings.TrimSpace(m))
	return m == "prod" || m == "production"
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
