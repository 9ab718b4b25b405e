// signald is the sports-betting signal engine daemon. It runs the
// three-wave scheduler against an odds/score adapter, serves health, status,
// signal lookup and a WebSocket feed over HTTP, and exposes Prometheus
// metrics. The parlay and risk façades are not exposed over HTTP.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	osignal "os/signal"
	"syscall"
	"time"

	"github.com/beatvegas/signal-engine/internal/bus"
	"github.com/beatvegas/signal-engine/internal/edge"
	"github.com/beatvegas/signal-engine/internal/metrics"
	"github.com/beatvegas/signal-engine/internal/orchestrator"
	"github.com/beatvegas/signal-engine/internal/risk"
	"github.com/beatvegas/signal-engine/internal/scheduler"
	"github.com/beatvegas/signal-engine/internal/signal"
	"github.com/beatvegas/signal-engine/internal/store"
	"github.com/beatvegas/signal-engine/internal/teams"
	"github.com/beatvegas/signal-engine/internal/ws"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

var (
	httpAddr  = flag.String("http", ":8080", "HTTP server address for the status API")
	redisAddr = flag.String("redis", "", "Redis address for the cross-process bus (or REDIS_URL env); empty uses the in-process bus")
	mongoURI  = flag.String("mongo", "", "MongoDB connection URI (or MONGODB_URI env); empty uses an in-memory store")
	mongoDB   = flag.String("mongo-db", "signalengine", "MongoDB database name")
	verbose   = flag.Bool("verbose", false, "Verbose logging")
)

func main() {
	flag.Parse()

	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Println("Starting signal engine daemon")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	osignal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	d, err := newDaemon(ctx)
	if err != nil {
		log.Fatalf("failed to initialize daemon: %v", err)
	}

	go d.startHTTP()

	if err := d.runtime.Start(ctx); err != nil {
		log.Fatalf("failed to start runtime: %v", err)
	}

	log.Printf("signal engine running (http=%s)", *httpAddr)
	log.Println("Press Ctrl+C to stop")

	<-sigCh
	log.Println("Shutting down...")

	d.runtime.Shutdown()
	cancel()

	log.Println("Goodbye!")
}

type daemon struct {
	runtime *orchestrator.Runtime
	signals *signal.Manager
	metrics *metrics.EngineMetrics
	db      store.Store
	hub     *ws.Hub
}

func newDaemon(ctx context.Context) (*daemon, error) {
	em := metrics.New()

	messageBus, err := newBus()
	if err != nil {
		return nil, err
	}

	db, err := newStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureIndexes(ctx, db); err != nil {
		log.Printf("warning: failed to ensure indexes: %v", err)
	}

	signals := signal.NewManager(time.Now)
	tilt := risk.NewDetector(time.Now)
	profiles := &storeProfileStore{db: db}
	gradingRecords := &storeGradingRecords{db: db}

	sched := scheduler.New(
		scheduler.DefaultConfig(),
		noopGameFetcher,
		waveOneHandler(em, signals),
		waveHandler(em, "2"),
		waveHandler(em, "3"),
		log.Default(),
	)
	sched.OnError(func(wave int, gameID string, err error) {
		em.RecordSweep(waveLabel(wave), 0, 1)
		if *verbose {
			log.Printf("wave %d game %s failed: %v", wave, gameID, err)
		}
	})

	rt := orchestrator.New(orchestrator.Config{
		Bus:            messageBus,
		Signals:        signals,
		Tilt:           tilt,
		Profiles:       profiles,
		GradingRecords: gradingRecords,
		Scheduler:      sched,
		Teams:          teams.NewRegistry(),
	})

	hub := ws.NewHub()
	hub.BridgeBus(messageBus)
	go hub.Run(ctx)

	return &daemon{runtime: rt, signals: signals, metrics: em, db: db, hub: hub}, nil
}

func newBus() (bus.Bus, error) {
	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_URL")
	}
	if addr == "" {
		log.Println("no redis address configured, using the in-process bus")
		return bus.NewInProcessBus(nil), nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	return bus.NewRedisBus(client, log.Default()), nil
}

func newStore(ctx context.Context) (store.Store, error) {
	uri := *mongoURI
	if uri == "" {
		uri = os.Getenv("MONGODB_URI")
	}
	if uri == "" {
		log.Println("no mongo URI configured, using the in-memory store")
		return store.NewMemoryStore(), nil
	}
	return store.NewMongoStore(ctx, uri, *mongoDB)
}

// noopGameFetcher stands in for the odds-adapter contract of §6: given
// (sport, region, markets) it would return the games in the requested
// commence-time window. No concrete provider is wired here; an operator
// supplies one by replacing this fetcher with an adapter against their odds
// feed before the scheduler is started.
func noopGameFetcher(ctx context.Context, from, to time.Time) ([]scheduler.GameCandidate, error) {
	return nil, nil
}

func waveHandler(em *metrics.EngineMetrics, wave string) scheduler.WaveHandler {
	return func(ctx context.Context, game scheduler.GameCandidate) error {
		em.RecordSweep(wave, 1, 0)
		return nil
	}
}

// waveOneHandler is Wave 1's entry point: a game candidate surfacing for
// the first time mints a new signal in DISCOVERED state. Later waves only
// append snapshots/runs to a signal that already exists, so ID minting
// happens here and nowhere else.
func waveOneHandler(em *metrics.EngineMetrics, signals *signal.Manager) scheduler.WaveHandler {
	return func(ctx context.Context, game scheduler.GameCandidate) error {
		signals.CreateSignal(signal.NewSignalID(), game.GameID, signal.IntentTruthMode, signal.MarketKeySpread)
		em.RecordSweep("1", 1, 0)
		return nil
	}
}

func waveLabel(wave int) string {
	switch wave {
	case 1:
		return "1"
	case 2:
		return "2"
	case 3:
		return "3"
	default:
		return "unknown"
	}
}

// storeProfileStore adapts the document store's user_risk_profiles
// collection to the orchestrator.ProfileStore capability.
type storeProfileStore struct {
	db store.Store
}

func (s *storeProfileStore) Profile(ctx context.Context, userID string) (risk.UserProfile, bool, error) {
	doc, err := s.db.Collection(store.CollectionUserRiskProfiles).FindOne(ctx, map[string]interface{}{"user_id": userID})
	if err == store.ErrNotFound {
		return risk.UserProfile{}, false, nil
	}
	if err != nil {
		return risk.UserProfile{}, false, err
	}

	profile := risk.UserProfile{UserID: userID}
	if v, ok := doc["bankroll"].(float64); ok {
		profile.Bankroll = decimal.NewFromFloat(v)
	}
	if v, ok := doc["starting_bankroll"].(float64); ok {
		profile.StartingBankroll = decimal.NewFromFloat(v)
	}
	if v, ok := doc["avg_bet_size"].(float64); ok {
		profile.AvgBetSize = decimal.NewFromFloat(v)
	}
	if v, ok := doc["unit_size"].(float64); ok {
		profile.UnitSize = decimal.NewFromFloat(v)
	}
	if v, ok := doc["recent_loss_streak"].(float64); ok {
		profile.RecentLossStreak = int(v)
	}
	return profile, true, nil
}

// storeGradingRecords adapts the document store's grading_records
// collection to the orchestrator.GradingRecords capability. FindByKey
// looks up by idempotency_key; Store is a plain insert, relying on the
// FindByKey check in Runtime.RecordPickOutcome (rather than a unique-index
// constraint violation) to make re-grading idempotent.
type storeGradingRecords struct {
	db store.Store
}

func (s *storeGradingRecords) FindByKey(ctx context.Context, key string) (edge.GradingRecord, bool, error) {
	doc, err := s.db.Collection(store.CollectionGradingRecords).FindOne(ctx, map[string]interface{}{"idempotency_key": key})
	if err == store.ErrNotFound {
		return edge.GradingRecord{}, false, nil
	}
	if err != nil {
		return edge.GradingRecord{}, false, err
	}

	rec := edge.GradingRecord{IdempotencyKey: key}
	if v, ok := doc["pick_id"].(string); ok {
		rec.PickID = v
	}
	if v, ok := doc["source"].(string); ok {
		rec.Source = v
	}
	if v, ok := doc["settlement_rules_version"].(string); ok {
		rec.SettlementRulesVersion = v
	}
	if v, ok := doc["clv_rules_version"].(string); ok {
		rec.ClvRulesVersion = v
	}
	if v, ok := doc["result"].(string); ok {
		rec.Result = edge.Result(v)
	}
	if v, ok := doc["graded_at"].(time.Time); ok {
		rec.GradedAt = v
	}
	if v, ok := doc["degraded"].(bool); ok {
		rec.Degraded = v
	}
	if v, ok := doc["admin_override_note"].(string); ok {
		rec.AdminOverrideNote = v
	}
	return rec, true, nil
}

func (s *storeGradingRecords) Store(ctx context.Context, rec edge.GradingRecord) error {
	return s.db.Collection(store.CollectionGradingRecords).InsertOne(ctx, map[string]interface{}{
		"idempotency_key":          rec.IdempotencyKey,
		"pick_id":                  rec.PickID,
		"source":                   rec.Source,
		"settlement_rules_version": rec.SettlementRulesVersion,
		"clv_rules_version":        rec.ClvRulesVersion,
		"result":                   string(rec.Result),
		"graded_at":                rec.GradedAt,
		"degraded":                 rec.Degraded,
		"admin_override_note":      rec.AdminOverrideNote,
	})
}

func (d *daemon) startHTTP() {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"running": d.runtime.IsRunning(),
		})
	})

	mux.HandleFunc("/signals/", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[len("/signals/"):]
		w.Header().Set("Content-Type", "application/json")
		sig, ok := d.signals.Get(id)
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "signal not found"})
			return
		}
		json.NewEncoder(w).Encode(sig)
	})

	mux.Handle("/metrics", d.metrics.Handler())
	mux.HandleFunc("/ws", d.hub.ServeWS)

	server := &http.Server{
		Addr:         *httpAddr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Printf("HTTP server listening on %s", *httpAddr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Printf("HTTP server error: %v", err)
	}
}
