package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"mapbench/bench"
	"mapbench/datagen"
	"mapbench/my"
	"mapbench/pg"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cfg bench.Config

var (
	cfgFile      string
	flagDB       string
	flagWorkload string
	verbose      bool

	flagHost     string
	flagPort     int
	flagUser     string
	flagPassword string
	flagDBName   string

	flagQueries       int
	flagDuration      time.Duration
	flagWarmup        int
	flagPoolSize      int
	flagPoolTimeout   time.Duration
	flagRateLimit     int
	flagCooldown      time.Duration
	flagSafetyTimeout time.Duration
	flagSeed          int64

	flagConcurrency int
	flagLevels      []int

	flagRows    int
	flagBatch   int
	flagLoaders int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mapbench",
	Short: "Load-testing toolkit for the versioned map-tile store",
	Long: `mapbench seeds synthetic map data and drives concurrent read/write
workloads against PostgreSQL or MySQL, reporting latency and throughput
statistics per concurrency level.

Examples:
  mapbench seed  --db pg --rows 100000
  mapbench run   --db pg --concurrency 10 --queries 500
  mapbench sweep --db pg --levels 1,5,10,20 --duration 10s
  mapbench sweep --db mysql --workload jsonset --levels 4,8,16`,
	SilenceUsage:      true,
	PersistentPreRunE: mergeConfig,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one benchmark at a fixed concurrency level",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runBench([]int{flagConcurrency})
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run benchmarks across escalating concurrency levels",
	RunE: func(cmd *cobra.Command, _ []string) error {
		levels := cfg.Levels
		if cmd.Flags().Changed("levels") {
			levels = flagLevels
		}
		return runBench(levels)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the schema and load synthetic rows",
	RunE:  runSeed,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "YAML config file")
	pf.StringVar(&flagDB, "db", "pg", "database: pg or mysql")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pf.StringVar(&flagHost, "host", "", "database host")
	pf.IntVar(&flagPort, "port", 0, "database port")
	pf.StringVar(&flagUser, "user", "", "database user")
	pf.StringVar(&flagPassword, "password", "", "database password")
	pf.StringVar(&flagDBName, "dbname", "", "database name")

	for _, cmd := range []*cobra.Command{runCmd, sweepCmd} {
		f := cmd.Flags()
		f.StringVar(&flagWorkload, "workload", "map", "workload: map or jsonset (mysql only)")
		f.IntVar(&flagQueries, "queries", 0, "queries per worker (count mode)")
		f.DurationVar(&flagDuration, "duration", 0, "duration per level (duration mode)")
		f.IntVar(&flagWarmup, "warmup", 0, "warmup queries before measuring")
		f.IntVar(&flagPoolSize, "pool-size", 0, "connection pool size")
		f.DurationVar(&flagPoolTimeout, "pool-timeout", 0, "pool acquire timeout")
		f.IntVar(&flagRateLimit, "rate-limit", 0, "max queries/sec, 0 = uncapped")
		f.DurationVar(&flagCooldown, "cooldown", 0, "pause between sweep levels")
		f.DurationVar(&flagSafetyTimeout, "safety-timeout", 0, "max wait for workers to join")
		f.Int64Var(&flagSeed, "seed", 0, "sampling RNG seed")
	}
	runCmd.Flags().IntVar(&flagConcurrency, "concurrency", 10, "concurrent workers")
	sweepCmd.Flags().IntSliceVar(&flagLevels, "levels", nil, "concurrency levels to test")

	sf := seedCmd.Flags()
	sf.IntVar(&flagRows, "rows", 0, "rows to load")
	sf.IntVar(&flagBatch, "batch", 10_000, "rows per insert batch")
	sf.IntVar(&flagLoaders, "loaders", 8, "parallel insert workers")
	sf.Int64Var(&flagSeed, "seed", 0, "generator RNG seed")

	rootCmd.AddCommand(runCmd, sweepCmd, seedCmd)
}

// mergeConfig layers defaults, the optional YAML file, and changed flags.
func mergeConfig(cmd *cobra.Command, _ []string) error {
	cfg = bench.DefaultConfig()
	if cfgFile != "" {
		var err error
		cfg, err = bench.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
	}

	conn := &cfg.Postgres
	if flagDB == "mysql" {
		conn = &cfg.MySQL
	}
	f := cmd.Flags()
	if f.Changed("host") {
		conn.Host = flagHost
	}
	if f.Changed("port") {
		conn.Port = flagPort
	}
	if f.Changed("user") {
		conn.User = flagUser
	}
	if f.Changed("password") {
		conn.Password = flagPassword
	}
	if f.Changed("dbname") {
		conn.Database = flagDBName
	}
	if f.Changed("queries") {
		cfg.Queries = flagQueries
	}
	if f.Changed("duration") {
		cfg.Duration = bench.Duration(flagDuration)
		cfg.Queries = 0
	}
	if f.Changed("warmup") {
		cfg.Warmup = flagWarmup
	}
	if f.Changed("pool-size") {
		cfg.PoolSize = flagPoolSize
	}
	if f.Changed("pool-timeout") {
		cfg.PoolTimeout = bench.Duration(flagPoolTimeout)
	}
	if f.Changed("rate-limit") {
		cfg.RateLimit = flagRateLimit
	}
	if f.Changed("cooldown") {
		cfg.Cooldown = bench.Duration(flagCooldown)
	}
	if f.Changed("safety-timeout") {
		cfg.SafetyTimeout = bench.Duration(flagSafetyTimeout)
	}
	if f.Changed("seed") {
		cfg.Seed = flagSeed
	}
	if f.Changed("rows") {
		cfg.SeedRows = flagRows
	}
	return nil
}

func newLogger() *zap.Logger {
	zc := zap.NewDevelopmentConfig()
	if !verbose {
		zc.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	log, err := zc.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// workload bundles what a benchmark needs from one database binding.
type workload struct {
	dial     func(context.Context) (bench.Conn, error)
	exec     bench.Executor
	samplers bench.SamplerFactory
	cleanup  func()
}

func buildWorkload() (*workload, error) {
	now := time.Now()
	tileSamplers := bench.TileSamplers(datagen.Tiles(), datagen.VersionBounds(20, cfg.Seed, now), cfg.Seed)

	switch flagDB {
	case "pg", "postgres":
		if flagWorkload != "map" {
			return nil, fmt.Errorf("workload %q is not supported on postgres", flagWorkload)
		}
		return &workload{
			dial:     pg.Dialer(cfg.Postgres),
			exec:     pg.Executor{},
			samplers: tileSamplers,
		}, nil

	case "mysql":
		db, err := my.Open(cfg.MySQL, cfg.PoolSize)
		if err != nil {
			return nil, fmt.Errorf("mysql connect: %w", err)
		}
		w := &workload{dial: my.Dialer(db), cleanup: func() { db.Close() }}
		switch flagWorkload {
		case "map":
			w.exec = my.SnapshotExecutor{}
			w.samplers = tileSamplers
		case "jsonset":
			w.exec = my.JSONExecutor{}
			w.samplers = bench.KeySamplers(int64(cfg.SeedRows), cfg.Seed)
		default:
			db.Close()
			return nil, fmt.Errorf("unknown workload %q", flagWorkload)
		}
		return w, nil

	default:
		return nil, fmt.Errorf("unknown db %q", flagDB)
	}
}

func runBench(levels []int) error {
	cfg.Levels = levels
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := newLogger()
	defer func() { _ = log.Sync() }()

	ctx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stopSignals()

	w, err := buildWorkload()
	if err != nil {
		return err
	}
	if w.cleanup != nil {
		defer w.cleanup()
	}

	log.Info("opening connection pool",
		zap.Int("size", cfg.PoolSize),
		zap.Duration("acquire_timeout", time.Duration(cfg.PoolTimeout)))
	pool, err := bench.NewPool(ctx, cfg.PoolSize, time.Duration(cfg.PoolTimeout), w.dial)
	if err != nil {
		return err
	}
	defer func() { _ = pool.Shutdown(context.Background()) }()

	runner := bench.NewRunner(pool, w.exec, w.samplers, log)
	runner.Warmup = cfg.Warmup
	runner.RateLimit = cfg.RateLimit
	runner.SafetyTimeout = time.Duration(cfg.SafetyTimeout)
	runner.ShowProgress = true

	sweep := &bench.Sweep{
		Runner:   runner,
		Cooldown: time.Duration(cfg.Cooldown),
		OnLevel:  bench.PrintStats,
		Log:      log,
	}
	result, err := sweep.Run(ctx, cfg.Levels, cfg.Stop())
	if err != nil {
		return err
	}
	if len(result.Levels) > 1 {
		bench.PrintSweep(result)
	}
	return nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	log := newLogger()
	defer func() { _ = log.Sync() }()

	ctx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stopSignals()

	gen := datagen.New(cfg.Seed, time.Now())

	switch flagDB {
	case "pg", "postgres":
		pool, err := pg.ConnectPool(ctx, cfg.Postgres, int32(flagLoaders+2))
		if err != nil {
			return fmt.Errorf("postgres connect: %w", err)
		}
		defer pool.Close()
		if err := pg.CreateSchema(ctx, pool); err != nil {
			return err
		}
		n, err := pg.Seed(ctx, pool, gen, cfg.SeedRows, flagBatch, flagLoaders, log)
		if err != nil {
			return err
		}
		log.Info("seed complete", zap.Int64("inserted", n))
		return nil

	case "mysql":
		db, err := my.Open(cfg.MySQL, flagLoaders+2)
		if err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		defer db.Close()
		if err := my.CreateSchema(ctx, db); err != nil {
			return err
		}
		n, err := my.Seed(ctx, db, gen, cfg.SeedRows, flagBatch, flagLoaders, log)
		if err != nil {
			return err
		}
		if err := my.CreatePlayers(ctx, db, cfg.SeedRows, log); err != nil {
			return err
		}
		log.Info("seed complete", zap.Int64("inserted", n))
		return nil

	default:
		return fmt.Errorf("unknown db %q", flagDB)
	}
}
