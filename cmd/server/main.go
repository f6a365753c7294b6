package main

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"

	"hyligotchi/db/migrations"
	httpadapter "hyligotchi/internal/adapter/http"
	metricsinmem "hyligotchi/internal/adapter/metrics/inmemory"
	"hyligotchi/internal/adapter/remote"
	gormrepo "hyligotchi/internal/adapter/repo/gorm"
	"hyligotchi/internal/adapter/repo/memory"
	"hyligotchi/internal/app/action"
	"hyligotchi/internal/app/balance"
	"hyligotchi/internal/app/petsync"
	"hyligotchi/internal/app/ports"
	"hyligotchi/internal/config"
	"hyligotchi/internal/domain/pet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		hlog.Fatalf("load config: %v", err)
	}
	level, _ := config.ParseLogLevel(cfg.LogLevel)
	hlog.SetLevel(level)
	if cfg.Identity == "" {
		hlog.Fatal("HYLIGOTCHI_IDENTITY is required")
	}

	httpClient, err := remote.NewHertzClient(cfg.RequestTimeout)
	if err != nil {
		hlog.Fatalf("build http client: %v", err)
	}
	opts := remote.Options{Timeout: cfg.RequestTimeout, ReadRetries: cfg.ReadRetries}
	petClient := remote.NewPetClient(httpClient, cfg.APIURL, cfg.Identity, opts)
	indexer := remote.NewIndexerClient(httpClient, cfg.IndexerURL, opts)

	ctx := context.Background()
	if sc, err := petClient.GetConfig(ctx); err != nil {
		hlog.Warnf("fetch server config: %v", err)
	} else {
		hlog.Infof("pet contract: %s", sc.ContractName)
	}

	food := balance.NewFoodCache(indexer)
	medicine := balance.NewMedicineCache(indexer)
	engine := petsync.NewEngine(petClient, cfg.Identity, petsync.Options{
		PollInterval: cfg.PollInterval,
		Balances:     []petsync.BalanceRefresher{food, medicine},
	})
	engine.Subscribe(func(snap pet.Snapshot, phase petsync.Phase) {
		hlog.Debugf("pet %s: phase=%s hunger=%d happiness=%d health=%s", cfg.Identity, phase, snap.Hunger, snap.Happiness, snap.HealthStatus)
	})

	kpi := metricsinmem.NewRecorder()
	journal := mustBuildJournal(ctx, cfg)
	uc := &action.UseCase{
		Engine:   engine,
		Client:   petClient,
		Food:     food,
		Medicine: medicine,
		Metrics:  kpi,
		Journal:  journal,
		Now:      time.Now,
	}

	mustLoad(ctx, engine)
	for _, c := range []*balance.Cache{food, medicine} {
		if err := c.Fetch(ctx, cfg.Identity); err != nil {
			hlog.Warnf("initial %s balance fetch: %v", c.Name(), err)
		}
	}
	engine.Start(ctx)

	h := httpadapter.Handler{
		ActionUC: uc,
		Pet:      engine,
		Balances: []httpadapter.BalanceView{food, medicine},
		Journal:  journal,
		KPI:      kpi,

		CORSOrigins: cfg.CORSOrigins,
	}
	s := server.Default(server.WithHostPorts(cfg.ListenAddr))
	h.RegisterRoutes(s)

	hlog.Infof("hyligotchi bridge listening on %s (identity: %s, api: %s)", cfg.ListenAddr, cfg.Identity, cfg.APIURL)
	s.Spin()
	engine.Stop()
	<-engine.Done()
}

// mustLoad retries the first load so the bridge can start before the node is
// reachable.
func mustLoad(ctx context.Context, engine *petsync.Engine) {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := engine.Load(ctx)
		if err != nil {
			hlog.Warnf("initial load: %v", err)
		}
		return struct{}{}, err
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(5))
	if err != nil {
		hlog.Fatalf("load pet state: %v", err)
	}
}

func mustBuildJournal(ctx context.Context, cfg config.Config) ports.ActionLogRepository {
	if cfg.DBDSN == "" {
		return memory.NewActionLogRepo(memory.NewStore(cfg.JournalRetain))
	}
	db, err := gormrepo.OpenPostgres(cfg.DBDSN, gormrepo.PoolOptions{MaxOpenConns: 4, MaxIdleConns: 2, ConnMaxLifetime: 30 * time.Minute})
	if err != nil {
		hlog.Fatalf("open journal db: %v", err)
	}
	if err := gormrepo.ApplyMigrations(ctx, db, migrations.FS); err != nil {
		hlog.Fatalf("apply journal migrations: %v", err)
	}
	return gormrepo.NewActionLogRepo(db, cfg.JournalRetain)
}
