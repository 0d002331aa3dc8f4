package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BaSui01/creativeflow"
	"github.com/BaSui01/creativeflow/config"
	"github.com/BaSui01/creativeflow/generation"
	"github.com/BaSui01/creativeflow/internal/ctxkeys"
	"github.com/BaSui01/creativeflow/internal/server"
	"github.com/BaSui01/creativeflow/internal/telemetry"
	"github.com/BaSui01/creativeflow/types"
)

// =============================================================================
// 🧰 公共参数与运行环境
// =============================================================================

type commonFlags struct {
	configPath string
	backend    string
	catalog    string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "Path to config file")
	fs.StringVar(&c.backend, "backend", creativeflow.BackendAsync, "Backend: async or gemini")
	fs.StringVar(&c.catalog, "catalog", "", "Path to entity catalog (YAML)")
}

type briefFlags struct {
	brand, product, talent string
	archetype, style       string
	prompt, negative       string
	variations             int
	seed                   int64
	noWait                 bool
}

func (b *briefFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&b.brand, "brand", "", "Brand id")
	fs.StringVar(&b.product, "product", "", "Product id")
	fs.StringVar(&b.talent, "talent", "", "Talent id")
	fs.StringVar(&b.archetype, "archetype", "", "Prompt archetype")
	fs.StringVar(&b.style, "style", "", "Style preset")
	fs.StringVar(&b.prompt, "prompt", "", "Custom prompt")
	fs.StringVar(&b.negative, "negative", "", "Negative prompt")
	fs.IntVar(&b.variations, "variations", 0, "Number of variations")
	fs.Int64Var(&b.seed, "seed", -1, "Seed, -1 for random")
	fs.BoolVar(&b.noWait, "no-wait", false, "Do not poll after submission")
}

func (b *briefFlags) seedPtr() *int64 {
	if b.seed < 0 {
		return nil
	}
	s := b.seed
	return &s
}

func (b *briefFlags) brief() generation.Brief {
	return generation.Brief{
		BrandID:        b.brand,
		ProductID:      b.product,
		TalentID:       b.talent,
		Archetype:      b.archetype,
		Style:          types.StylePreset(b.style),
		CustomPrompt:   b.prompt,
		NegativePrompt: b.negative,
		Variations:     b.variations,
		Seed:           b.seedPtr(),
	}
}

// session 是一次命令执行所需的全部依赖
type session struct {
	cfg     *config.Config
	logger  *zap.Logger
	stack   *creativeflow.Stack
	otel    *telemetry.Providers
	metrics *server.Manager
	catalog *creativeflow.Catalog
	ctx     context.Context
	cancel  context.CancelFunc
	stdout  io.Writer
	stderr  io.Writer
	backend string
}

func setup(common commonFlags, stdout, stderr io.Writer) (*session, error) {
	loader := config.NewLoader().WithValidator((*config.Config).Validate)
	if common.configPath != "" {
		loader = loader.WithConfigPath(common.configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}

	logger := initLogger(cfg.Log)
	logger.Debug("config loaded", zap.Any("config", cfg.Redacted()))

	otelProviders, err := telemetry.Init(cfg.Telemetry, logger, telemetry.WithSyncExport())
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
	}

	stack, err := creativeflow.New(cfg, logger)
	if err != nil {
		_ = otelProviders.Shutdown(context.Background())
		return nil, err
	}

	rt := &session{
		cfg:     cfg,
		logger:  logger,
		stack:   stack,
		otel:    otelProviders,
		stdout:  stdout,
		stderr:  stderr,
		backend: common.backend,
	}

	if common.catalog != "" {
		rt.catalog, err = creativeflow.LoadCatalog(common.catalog)
		if err != nil {
			rt.close()
			return nil, err
		}
	}

	if stack.Metrics != nil && cfg.Metrics.ListenAddr != "" {
		srvCfg := server.DefaultConfig()
		srvCfg.Addr = cfg.Metrics.ListenAddr
		rt.metrics = server.NewMetricsManager(stack.Metrics.Handler(), srvCfg, logger)
		if err := rt.metrics.Start(); err != nil {
			logger.Warn("failed to start metrics server", zap.Error(err))
			rt.metrics = nil
		}
	}

	requestID := uuid.NewString()
	rt.logger = logger.With(zap.String("request_id", requestID))
	base := ctxkeys.WithRequestID(context.Background(), requestID)
	rt.ctx, rt.cancel = signal.NotifyContext(base, os.Interrupt, syscall.SIGTERM)
	return rt, nil
}

func (rt *session) close() {
	if rt.cancel != nil {
		rt.cancel()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if rt.metrics != nil {
		_ = rt.metrics.Shutdown(shutdownCtx)
	}
	if err := rt.otel.Shutdown(shutdownCtx); err != nil {
		rt.logger.Debug("telemetry shutdown", zap.Error(err))
	}
	if err := rt.stack.Close(); err != nil {
		rt.logger.Warn("failed to close job store", zap.Error(err))
	}
	_ = rt.logger.Sync()
}

func (rt *session) client() (generation.JobClient, error) {
	return rt.stack.Client(rt.backend)
}

func (rt *session) composer() (*generation.Composer, error) {
	if rt.catalog == nil {
		return nil, errors.New("--catalog is required")
	}
	return rt.stack.Composer(rt.catalog), nil
}

func (rt *session) print(v any) int {
	enc := json.NewEncoder(rt.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return rt.fail(err)
	}
	return exitOK
}

func (rt *session) fail(err error) int {
	fmt.Fprintf(rt.stderr, "Error: %v\n", err)
	return exitError
}

// printJob 输出作业快照. 作业失败时仍然输出快照，并返回错误码.
func (rt *session) printJob(job *generation.Job, err error) int {
	if job != nil {
		rt.print(job)
	}
	if err != nil {
		return rt.fail(err)
	}
	return exitOK
}

// start 解析参数并构建运行环境；返回 nil 时 code 为退出码
func start(fs *flag.FlagSet, common *commonFlags, args []string, stdout, stderr io.Writer) (*session, int) {
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return nil, exitUsage
	}
	rt, err := setup(*common, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return nil, exitError
	}
	return rt, exitOK
}

// =============================================================================
// 🖼️ image 命令
// =============================================================================

func runImage(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("image", flag.ContinueOnError)
	var common commonFlags
	var bf briefFlags
	common.register(fs)
	bf.register(fs)
	formats := fs.String("formats", types.FormatSquare.Name, "Comma-separated output formats")

	rt, code := start(fs, &common, args, stdout, stderr)
	if rt == nil {
		return code
	}
	defer rt.close()

	outputs, err := parseFormats(*formats)
	if err != nil {
		return rt.fail(err)
	}

	var req *generation.ImageRequest
	if rt.catalog != nil {
		brief := bf.brief()
		brief.OutputFormats = outputs
		composer, _ := rt.composer()
		if req, _, err = composer.ComposeImage(rt.ctx, brief); err != nil {
			return rt.fail(err)
		}
	} else {
		if bf.prompt == "" {
			return rt.fail(errors.New("--prompt is required without --catalog"))
		}
		req = &generation.ImageRequest{
			BrandID:        bf.brand,
			ProductID:      bf.product,
			TalentID:       bf.talent,
			Prompt:         bf.prompt,
			NegativePrompt: bf.negative,
			StylePreset:    types.StylePreset(bf.style),
			OutputFormats:  outputs,
			Variations:     bf.variations,
			Seed:           bf.seedPtr(),
		}
	}

	client, err := rt.client()
	if err != nil {
		return rt.fail(err)
	}
	if bf.noWait {
		return rt.printJob(client.SubmitImage(rt.ctx, req))
	}
	return rt.printJob(generation.GenerateImageAndWait(rt.ctx, client, req, nil))
}

// =============================================================================
// 🎬 video 命令
// =============================================================================

func runVideo(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("video", flag.ContinueOnError)
	var common commonFlags
	var bf briefFlags
	common.register(fs)
	bf.register(fs)
	duration := fs.Int("duration", 15, "Duration in seconds")
	aspect := fs.String("aspect", "9:16", "Aspect ratio")

	rt, code := start(fs, &common, args, stdout, stderr)
	if rt == nil {
		return code
	}
	defer rt.close()

	var req *generation.VideoRequest
	var err error
	if rt.catalog != nil {
		brief := bf.brief()
		brief.DurationSeconds = *duration
		brief.AspectRatio = *aspect
		composer, _ := rt.composer()
		if req, _, err = composer.ComposeVideo(rt.ctx, brief); err != nil {
			return rt.fail(err)
		}
	} else {
		if bf.prompt == "" {
			return rt.fail(errors.New("--prompt is required without --catalog"))
		}
		req = &generation.VideoRequest{
			BrandID:         bf.brand,
			ProductID:       bf.product,
			TalentID:        bf.talent,
			Prompt:          bf.prompt,
			NegativePrompt:  bf.negative,
			StylePreset:     types.StylePreset(bf.style),
			DurationSeconds: *duration,
			AspectRatio:     *aspect,
			Variations:      bf.variations,
			Seed:            bf.seedPtr(),
		}
	}

	client, err := rt.client()
	if err != nil {
		return rt.fail(err)
	}
	if bf.noWait {
		return rt.printJob(client.SubmitVideo(rt.ctx, req))
	}
	return rt.printJob(generation.GenerateVideoAndWait(rt.ctx, client, req, nil))
}

// =============================================================================
// 🔍 status / cancel 命令
// =============================================================================

func runStatus(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	wait := fs.Bool("wait", false, "Poll until the job is terminal")
	video := fs.Bool("video", false, "Force the video polling budget with --wait (default: from the job)")

	rt, code := start(fs, &common, args, stdout, stderr)
	if rt == nil {
		return code
	}
	defer rt.close()

	if fs.NArg() != 1 {
		return rt.fail(errors.New("usage: creativeflow status [--wait] <job-id>"))
	}
	jobID := fs.Arg(0)

	client, err := rt.client()
	if err != nil {
		return rt.fail(err)
	}
	if !*wait {
		return rt.printJob(client.GetJobStatus(rt.ctx, jobID))
	}

	var opts *generation.PollOptions
	if pd, ok := client.(interface {
		PollingFor(types.ContentType) generation.PollOptions
	}); ok && *video {
		o := pd.PollingFor(types.ContentVideo)
		opts = &o
	}
	return rt.printJob(client.PollToCompletion(rt.ctx, jobID, opts))
}

func runCancel(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("cancel", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)

	rt, code := start(fs, &common, args, stdout, stderr)
	if rt == nil {
		return code
	}
	defer rt.close()

	if fs.NArg() != 1 {
		return rt.fail(errors.New("usage: creativeflow cancel <job-id>"))
	}
	client, err := rt.client()
	if err != nil {
		return rt.fail(err)
	}
	res, err := client.CancelJob(rt.ctx, fs.Arg(0))
	if err != nil {
		return rt.fail(err)
	}
	return rt.print(res)
}

// =============================================================================
// ✍️ prompt 命令
// =============================================================================

func runPrompt(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("prompt", flag.ContinueOnError)
	var common commonFlags
	var bf briefFlags
	common.register(fs)
	bf.register(fs)
	list := fs.Bool("list", false, "List archetypes and exit")
	video := fs.Bool("video", false, "Assemble a video prompt")

	rt, code := start(fs, &common, args, stdout, stderr)
	if rt == nil {
		return code
	}
	defer rt.close()

	if *list {
		for _, name := range rt.stack.Assembler.Archetypes() {
			a, _ := rt.stack.Assembler.Archetype(name)
			fmt.Fprintf(stdout, "%-18s %s\n", name, a.ContentType)
		}
		return exitOK
	}

	composer, err := rt.composer()
	if err != nil {
		return rt.fail(err)
	}
	brief := bf.brief()
	if *video {
		_, res, err := composer.ComposeVideo(rt.ctx, brief)
		if err != nil {
			return rt.fail(err)
		}
		return rt.print(res)
	}
	_, res, err := composer.ComposeImage(rt.ctx, brief)
	if err != nil {
		return rt.fail(err)
	}
	return rt.print(res)
}

// =============================================================================
// 🔧 辅助函数
// =============================================================================

func parseFormats(list string) ([]types.OutputFormat, error) {
	var out []types.OutputFormat
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		f, ok := types.OutputFormatByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown output format %q", name)
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, errors.New("at least one output format is required")
	}
	return out, nil
}
