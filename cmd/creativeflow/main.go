// =============================================================================
// CreativeFlow 命令行入口
// =============================================================================
// 提交图像/视频生成作业、查询与取消作业、预览组装后的提示词
//
// 使用方法:
//
//	creativeflow image  --catalog catalog.yaml --brand b1 --product p1   # 生成图像并等待
//	creativeflow video  --brand b1 --prompt "..." --duration 15          # 生成视频并等待
//	creativeflow status <job-id>                                        # 查询作业状态
//	creativeflow cancel <job-id>                                        # 取消作业
//	creativeflow prompt --catalog catalog.yaml --brand b1               # 预览提示词
//	creativeflow version                                                # 显示版本信息
// =============================================================================

package main

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/creativeflow/config"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// exit codes
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// =============================================================================
// 🎯 主函数
// =============================================================================

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return exitUsage
	}

	switch args[0] {
	case "image":
		return runImage(args[1:], stdout, stderr)
	case "video":
		return runVideo(args[1:], stdout, stderr)
	case "status":
		return runStatus(args[1:], stdout, stderr)
	case "cancel":
		return runCancel(args[1:], stdout, stderr)
	case "prompt":
		return runPrompt(args[1:], stdout, stderr)
	case "version":
		printVersion(stdout)
		return exitOK
	case "help", "-h", "--help":
		printUsage(stdout)
		return exitOK
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", args[0])
		printUsage(stderr)
		return exitUsage
	}
}

// =============================================================================
// 📋 版本和帮助
// =============================================================================

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "CreativeFlow %s\n", Version)
	fmt.Fprintf(w, "  Build Time: %s\n", BuildTime)
	fmt.Fprintf(w, "  Git Commit: %s\n", GitCommit)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `CreativeFlow - marketing image and video generation client

Usage:
  creativeflow <command> [options]

Commands:
  image     Submit an image generation job
  video     Submit a video generation job
  status    Show a job's status (--wait polls until terminal)
  cancel    Cancel a job
  prompt    Assemble and print a prompt without submitting
  version   Show version information
  help      Show this help message

Common options:
  --config <path>    Path to configuration file (YAML)
  --backend <name>   async (default) or gemini
  --catalog <path>   YAML catalog of brands, products and talents

Image/video options:
  --brand <id>        Brand id (required)
  --product <id>      Product id
  --talent <id>       Talent id
  --archetype <name>  Prompt archetype (needs --catalog)
  --style <preset>    minimal, bold, lifestyle, promotional
  --prompt <text>     Custom prompt (required without --catalog)
  --formats <list>    image: comma-separated names or WxH (default instagram_square)
  --duration <sec>    video: 1-300 seconds (default 15)
  --aspect <ratio>    video: 16:9, 9:16, 1:1 or 4:5 (default 9:16)
  --variations <n>    Number of variations (1-4)
  --seed <n>          Seed for reproducible output
  --no-wait           Return after submission without polling

Environment:
  Every config key can be set as CREATIVEFLOW_<SECTION>_<KEY>,
  e.g. CREATIVEFLOW_ASYNC_BASE_URL, CREATIVEFLOW_ASYNC_API_KEY.

Examples:
  creativeflow image --catalog catalog.yaml --brand aurora --product coldbrew --style bold
  creativeflow image --backend gemini --brand aurora --prompt "a can on marble" --formats story
  creativeflow video --catalog catalog.yaml --brand aurora --talent mia --duration 30
  creativeflow status --wait job-123
  creativeflow cancel job-123`)
}

// =============================================================================
// 🔧 日志初始化
// =============================================================================

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	encoding := "json"
	if cfg.Format == "console" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       encoding == "console",
		Encoding:          encoding,
		EncoderConfig:     encoderConfig,
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     !cfg.EnableCaller,
		DisableStacktrace: !cfg.EnableStacktrace,
	}

	logger, err := zapConfig.Build()
	if err != nil {
		// 回退到基本 logger
		logger, _ = zap.NewProduction()
	}
	return logger
}
