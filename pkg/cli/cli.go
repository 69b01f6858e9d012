package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/xyproto/env/v2"
	"gopkg.in/yaml.v3"

	"github.com/zurustar/ruscal/pkg/logger"
	"github.com/zurustar/ruscal/pkg/script"
	"github.com/zurustar/ruscal/pkg/vm"
)

// 環境変数名
const (
	EnvEncoding  = "RUSCAL_ENCODING"
	EnvLogLevel  = "RUSCAL_LOG_LEVEL"
	EnvLogFormat = "RUSCAL_LOG_FORMAT"
	EnvMaxDepth  = "RUSCAL_MAX_DEPTH"
	EnvTimeout   = "RUSCAL_TIMEOUT"
	EnvConfig    = "RUSCAL_CONFIG"
)

// デフォルト値
const (
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

// Config はコマンドライン引数、環境変数、設定ファイルから解析された設定を保持する。
// 優先順位は フラグ > 環境変数 > 設定ファイル > デフォルト
type Config struct {
	ScriptPath  string        // スクリプトのパス（"-" は標準入力、空なら対話モードか標準入力）
	Encoding    string        // スクリプトの文字エンコーディング
	LogLevel    string        // ログレベル（debug, info, warn, error）
	LogFormat   string        // ログ形式（text, json）
	MaxDepth    int           // 関数呼び出しの深さの上限（0は無制限）
	Timeout     time.Duration // タイムアウト時間（0は無制限）
	ConfigPath  string        // YAML設定ファイルのパス
	DumpAST     bool          // 構文木を表示して終了
	Interactive bool          // 対話モードを強制
	ShowHelp    bool          // ヘルプ表示フラグ
}

// fileConfig はYAML設定ファイルの内容。指定されなかった項目は nil
type fileConfig struct {
	Encoding  *string `yaml:"encoding"`
	LogLevel  *string `yaml:"log_level"`
	LogFormat *string `yaml:"log_format"`
	MaxDepth  *int    `yaml:"max_depth"`
	Timeout   *int    `yaml:"timeout"` // 秒
}

// boolFlags は値を取らないフラグ
var boolFlags = []string{"-h", "--help", "-help", "--dump-ast", "-dump-ast", "-i", "--interactive", "-interactive"}

// ParseArgs コマンドライン引数を解析してConfigを返す
func ParseArgs(args []string) (*Config, error) {
	// 引数を並べ替え：フラグを前に、位置引数を後ろに
	reorderedArgs := reorderArgs(args)

	fs := flag.NewFlagSet("ruscal", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		flagEncoding  string
		flagLogLevel  string
		flagLogFormat string
		flagMaxDepth  int
		flagTimeout   int
	)

	config := &Config{}

	fs.StringVar(&flagEncoding, "encoding", "", "スクリプトの文字エンコーディング")
	fs.StringVar(&flagEncoding, "e", "", "スクリプトの文字エンコーディング（短縮形）")
	fs.StringVar(&flagLogLevel, "log-level", "", "ログレベル（debug, info, warn, error）")
	fs.StringVar(&flagLogLevel, "l", "", "ログレベル（短縮形）")
	fs.StringVar(&flagLogFormat, "log-format", "", "ログ形式（text, json）")
	fs.IntVar(&flagMaxDepth, "max-depth", 0, "関数呼び出しの深さの上限")
	fs.IntVar(&flagTimeout, "timeout", 0, "タイムアウト時間（秒）")
	fs.IntVar(&flagTimeout, "t", 0, "タイムアウト時間（秒）（短縮形）")
	fs.StringVar(&config.ConfigPath, "config", "", "YAML設定ファイル")
	fs.StringVar(&config.ConfigPath, "c", "", "YAML設定ファイル（短縮形）")
	fs.BoolVar(&config.DumpAST, "dump-ast", false, "構文木を表示して終了")
	fs.BoolVar(&config.Interactive, "interactive", false, "対話モード")
	fs.BoolVar(&config.Interactive, "i", false, "対話モード（短縮形）")
	fs.BoolVar(&config.ShowHelp, "help", false, "ヘルプを表示")
	fs.BoolVar(&config.ShowHelp, "h", false, "ヘルプを表示（短縮形）")

	if err := fs.Parse(reorderedArgs); err != nil {
		return nil, err
	}
	if config.ShowHelp {
		return config, nil
	}

	// 明示的に指定されたフラグ
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})

	// デフォルト値
	config.Encoding = script.DefaultEncoding
	config.LogLevel = DefaultLogLevel
	config.LogFormat = DefaultLogFormat
	config.MaxDepth = vm.MaxStackDepth
	timeoutSec := 0

	// 設定ファイル（フラグ、環境変数の順にパスを探す）
	env.Load()
	if config.ConfigPath == "" {
		config.ConfigPath = env.Str(EnvConfig)
	}
	if config.ConfigPath != "" {
		fc, err := loadConfigFile(config.ConfigPath)
		if err != nil {
			return nil, err
		}
		if fc.Encoding != nil {
			config.Encoding = *fc.Encoding
		}
		if fc.LogLevel != nil {
			config.LogLevel = *fc.LogLevel
		}
		if fc.LogFormat != nil {
			config.LogFormat = *fc.LogFormat
		}
		if fc.MaxDepth != nil {
			config.MaxDepth = *fc.MaxDepth
		}
		if fc.Timeout != nil {
			timeoutSec = *fc.Timeout
		}
	}

	// 環境変数からの設定（コマンドラインフラグが優先）
	if env.Has(EnvEncoding) {
		config.Encoding = env.Str(EnvEncoding)
	}
	if env.Has(EnvLogLevel) {
		config.LogLevel = strings.ToLower(env.Str(EnvLogLevel))
	}
	if env.Has(EnvLogFormat) {
		config.LogFormat = strings.ToLower(env.Str(EnvLogFormat))
	}
	if env.Has(EnvMaxDepth) {
		n, err := envInt(EnvMaxDepth)
		if err != nil {
			return nil, err
		}
		config.MaxDepth = n
	}
	if env.Has(EnvTimeout) {
		n, err := envInt(EnvTimeout)
		if err != nil {
			return nil, err
		}
		timeoutSec = n
	}

	// コマンドラインフラグ
	if set["encoding"] || set["e"] {
		config.Encoding = flagEncoding
	}
	if set["log-level"] || set["l"] {
		config.LogLevel = strings.ToLower(flagLogLevel)
	}
	if set["log-format"] {
		config.LogFormat = strings.ToLower(flagLogFormat)
	}
	if set["max-depth"] {
		config.MaxDepth = flagMaxDepth
	}
	if set["timeout"] || set["t"] {
		timeoutSec = flagTimeout
	}

	// 位置引数（スクリプトのパス）
	switch fs.NArg() {
	case 0:
	case 1:
		config.ScriptPath = fs.Arg(0)
	default:
		return nil, fmt.Errorf("too many arguments: %s", strings.Join(fs.Args(), " "))
	}

	// タイムアウトの検証
	if timeoutSec < 0 {
		return nil, fmt.Errorf("timeout must be non-negative, got %d", timeoutSec)
	}
	config.Timeout = time.Duration(timeoutSec) * time.Second

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate 設定値を検証する
func (c *Config) Validate() error {
	if !slices.Contains(logger.Levels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}
	if !slices.Contains(logger.Formats, c.LogFormat) {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.LogFormat)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max depth must be non-negative, got %d", c.MaxDepth)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative, got %s", c.Timeout)
	}
	if _, err := script.LookupEncoding(c.Encoding); err != nil {
		return err
	}
	return nil
}

// loadConfigFile YAML設定ファイルを読み込む。未知のキーはエラー
func loadConfigFile(path string) (*fileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	fc := &fileConfig{}
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return fc, nil
}

func envInt(name string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(env.Str(name)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return n, nil
}

// reorderArgs 引数を並べ替えて、フラグを前に、位置引数を後ろに配置する
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// "--" 以降はすべて位置引数
		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}

		// フラグかどうかを判定（-または--で始まる。"-" 単体は標準入力）
		if len(arg) > 1 && arg[0] == '-' {
			flags = append(flags, arg)

			// 次の引数が値である可能性をチェック
			// （-t 5 のような場合）
			if strings.Contains(arg, "=") || slices.Contains(boolFlags, arg) {
				continue
			}
			if i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			// 位置引数
			positional = append(positional, arg)
		}
	}

	// フラグを前に、位置引数を後ろに配置
	result := append(flags, "--")
	return append(result, positional...)
}

// PrintHelp ヘルプメッセージを表示
func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, `ruscal - a small scripting language interpreter

Usage:
  ruscal [options] [script]

Arguments:
  script        実行するスクリプトのパス。"-" は標準入力
                省略時、標準入力が端末なら対話モード、そうでなければ標準入力を実行

Options:
  -e, --encoding <name>       スクリプトの文字エンコーディング（デフォルト: utf-8）
                              例: utf-8, shift_jis, euc-jp, utf-16le, windows-1252
  -l, --log-level <level>     ログレベル: debug, info, warn, error（デフォルト: warn）
  --log-format <format>       ログ形式: text, json（デフォルト: text）
  --max-depth <n>             関数呼び出しの深さの上限、0は無制限（デフォルト: %d）
  -t, --timeout <seconds>     指定秒数後に実行を中断（デフォルト: 無制限）
  -c, --config <file>         YAML設定ファイル
  --dump-ast                  構文木を表示して終了
  -i, --interactive           対話モード
  -h, --help                  このヘルプを表示

Environment Variables:
  RUSCAL_ENCODING=<name>      文字エンコーディング
  RUSCAL_LOG_LEVEL=<level>    ログレベル
  RUSCAL_LOG_FORMAT=<format>  ログ形式
  RUSCAL_MAX_DEPTH=<n>        関数呼び出しの深さの上限
  RUSCAL_TIMEOUT=<seconds>    タイムアウト時間（秒）
  RUSCAL_CONFIG=<file>        YAML設定ファイル

Config File (YAML):
  encoding: shift_jis
  log_level: info
  log_format: json
  max_depth: 500
  timeout: 10

Examples:
  ruscal hello.rcl                    スクリプトを実行
  echo 'print(1 + 2)' | ruscal -      標準入力から実行
  ruscal --dump-ast hello.rcl         構文木を表示
  ruscal -e sjis legacy.rcl           Shift_JISのスクリプトを実行
  ruscal                              対話モード
`, vm.MaxStackDepth)
}
