// Package app wires the grievance core together: config, the sqlite
// lifecycle store, the Anthropic-backed classifier and the escalation
// sweep. The surrounding application (routing, auth, UI) consumes Core;
// Main runs the core standalone with just the sweep active.
package app

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/slack-go/slack"

	"grievancedesk/internal/classifier"
	"grievancedesk/internal/config"
	"grievancedesk/internal/domain"
	"grievancedesk/internal/escalate"
	"grievancedesk/internal/httpx"
	"grievancedesk/internal/storage/sqlite"
)

// Core bundles the engines the surrounding application calls into.
type Core struct {
	Config  config.Config
	Store   *sqlite.Store
	Service classifier.Service
}

// NewSession opens a classification session for one composition stream.
// onResult may be nil.
func (c *Core) NewSession(onResult func(domain.ClassificationResult)) *classifier.Session {
	return classifier.NewSession(c.Service, classifier.SessionOptions{
		Debounce:    c.Config.Debounce(),
		CallTimeout: c.Config.ClassifyTimeout(),
		OnResult:    onResult,
	})
}

// Build loads configuration and constructs the core.
func Build() (*Core, error) {
	cfg := config.LoadConfig()
	appliedHTTPTimeout := httpx.Configure(cfg.ExternalHTTPTimeoutSeconds)
	log.Printf(
		"Config loaded. Timezone=%s Debounce=%s ClassifyTimeout=%s ExternalHTTPTimeout=%s SlackConfigured=%t",
		cfg.Timezone,
		cfg.Debounce(),
		cfg.ClassifyTimeout(),
		appliedHTTPTimeout,
		cfg.SlackConfigured(),
	)

	store, err := sqlite.Open(cfg.DBPath, nil)
	if err != nil {
		return nil, err
	}
	log.Printf("Database initialized at %s", cfg.DBPath)

	service := classifier.NewAnthropicService(cfg.AnthropicAPIKey, cfg.AnthropicModel, httpx.Client())

	return &Core{Config: cfg, Store: store, Service: service}, nil
}

func Main() {
	core, err := Build()
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	defer core.Store.Close()

	if core.Config.SlackConfigured() {
		api := slack.New(core.Config.SlackBotToken)
		notifier := escalate.NewSlackNotifier(api, core.Config.EscalationChannelID)
		escalate.StartScheduler(core.Config.EscalationSchedule, core.Config.Location, core.Store, notifier)
	} else {
		log.Println("Escalation notifications disabled (Slack not configured)")
	}

	log.Println("Grievance core running...")
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("Shutting down")
}
