package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/any-hub/zipserve/internal/archive"
	"github.com/any-hub/zipserve/internal/cache"
	"github.com/any-hub/zipserve/internal/config"
	"github.com/any-hub/zipserve/internal/locale"
	"github.com/any-hub/zipserve/internal/logging"
	"github.com/any-hub/zipserve/internal/metrics"
	"github.com/any-hub/zipserve/internal/serve"
	"github.com/any-hub/zipserve/internal/server"
	"github.com/any-hub/zipserve/internal/server/routes"
	"github.com/any-hub/zipserve/internal/version"
)

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath  string
	checkOnly   bool
	showVersion bool
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}
	os.Exit(run(opts))
}

// run 根据解析到的 CLI 选项执行业务流程，并返回退出码，方便测试。
func run(opts cliOptions) int {
	if opts.showVersion {
		printVersion()
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return 1
	}

	logger, err := logging.InitLogger(cfg.Global)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	if opts.checkOnly {
		fields := logging.BaseFields("check_config", opts.configPath)
		fields["archives"] = len(cfg.Archive)
		fields["indexed_archives"] = cfg.IndexedArchives()
		fields["cache_backend"] = cfg.Global.CacheBackend
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	// 启动顺序：配置 → 归档集合 → 缓存后端 → 响应构建器 → Fiber server，
	// 所有请求共享同一份归档句柄与缓存实例。
	svc, err := buildService(cfg, logger)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化服务失败: %v\n", err)
		return 1
	}
	defer svc.close(logger)

	fields := logging.BaseFields("startup", opts.configPath)
	fields["archives"] = len(cfg.Archive)
	fields["indexed_archives"] = cfg.IndexedArchives()
	fields["cache_backend"] = cfg.Global.CacheBackend
	fields["listen_port"] = cfg.Global.ListenPort
	fields["version"] = version.Full()
	logger.WithFields(fields).Info("配置加载完成")

	if err := startHTTPServer(cfg, svc, logger); err != nil {
		fmt.Fprintf(stdErr, "HTTP 服务启动失败: %v\n", err)
		return 1
	}
	return 0
}

// service 持有进程级共享的组件。
type service struct {
	set      *archive.Set
	registry *archive.Registry
	store    cache.ClosableStore
	metrics  *metrics.Recorder
	handler  *serve.Handler
}

func buildService(cfg *config.Config, logger *logrus.Logger) (*service, error) {
	entries := make([]archive.Entry, 0, len(cfg.Archive))
	for _, a := range cfg.Archive {
		entries = append(entries, archive.Entry{ID: a.Path, FirstPath: a.FirstPath})
	}
	set, err := archive.NewSet(entries)
	if err != nil {
		return nil, err
	}

	store, err := cache.NewFromConfig(cfg.Global)
	if err != nil {
		return nil, fmt.Errorf("初始化缓存失败: %w", err)
	}
	pingCache(store, cfg.Global.RedisTimeout.DurationValue(), logger)

	recorder := metrics.New()
	registry := archive.NewRegistry(nil)
	reader := archive.NewReader(set, registry, logger, recorder)
	client := cache.NewClient(store, logger, recorder)

	g := cfg.Global
	builder := serve.NewBuilder(client, reader, serve.Options{
		MaxAge:              g.MaxAge.DurationValue(),
		Public:              g.Public,
		CookieName:          g.LangCookie,
		UnknownTypeFallback: g.UnknownTypeFallback,
	}, logger)
	resolver := locale.NewResolver(g.DefaultLang, g.Langs)

	return &service{
		set:      set,
		registry: registry,
		store:    store,
		metrics:  recorder,
		handler:  serve.NewHandler(resolver, builder, logger, recorder),
	}, nil
}

// pingCache 对远程缓存做一次探测；失败只记录告警，读写会按未命中降级。
func pingCache(store cache.Store, timeout time.Duration, logger *logrus.Logger) {
	pinger, ok := store.(routes.Pinger)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := pinger.Ping(ctx); err != nil {
		logger.WithError(err).WithField("action", "cache_ping").Warn("cache backend unreachable")
	}
}

func (s *service) close(logger *logrus.Logger) {
	if err := errors.Join(s.registry.Close(), s.store.Close()); err != nil {
		logger.WithError(err).WithField("action", "shutdown").Warn("资源释放失败")
	}
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("zipserve", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFlag string
		checkOnly  bool
		showVer    bool
	)

	fs.StringVar(&configFlag, "config", "", "配置文件路径（默认 ./config.toml，可被 ZIPSERVE_CONFIG 覆盖）")
	fs.BoolVar(&checkOnly, "check-config", false, "仅校验配置后退出")
	fs.BoolVar(&showVer, "version", false, "显示版本信息")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	path := os.Getenv("ZIPSERVE_CONFIG")
	if configFlag != "" {
		path = configFlag
	}
	if path == "" {
		path = "config.toml"
	}

	return cliOptions{
		configPath:  path,
		checkOnly:   checkOnly,
		showVersion: showVer,
	}, nil
}

func newApp(cfg *config.Config, svc *service, logger *logrus.Logger) (*fiber.App, error) {
	app, err := server.NewApp(server.AppOptions{
		Logger:     logger,
		Handler:    svc.handler,
		ListenPort: cfg.Global.ListenPort,
	})
	if err != nil {
		return nil, err
	}

	diag := routes.Diagnostics{
		Archives: svc.set,
		Registry: svc.registry,
		Metrics:  svc.metrics,
		Version:  version.Full(),
	}
	if pinger, ok := svc.store.(routes.Pinger); ok {
		diag.Cache = pinger
	}
	routes.RegisterDiagnostics(app, diag)
	return app, nil
}

// printVersion 输出注入的版本 + 提交信息。
func printVersion() {
	fmt.Fprintln(stdOut, version.Full())
}

func startHTTPServer(cfg *config.Config, svc *service, logger *logrus.Logger) error {
	app, err := newApp(cfg, svc, logger)
	if err != nil {
		return err
	}

	port := cfg.Global.ListenPort
	logger.WithFields(logrus.Fields{
		"action": "listen",
		"port":   port,
	}).Info("Fiber 服务启动")

	return app.Listen(fmt.Sprintf(":%d", port))
}
