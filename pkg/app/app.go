package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/zurustar/ruscal/pkg/cli"
	"github.com/zurustar/ruscal/pkg/compiler"
	"github.com/zurustar/ruscal/pkg/compiler/ast"
	"github.com/zurustar/ruscal/pkg/logger"
	"github.com/zurustar/ruscal/pkg/repl"
	"github.com/zurustar/ruscal/pkg/script"
	"github.com/zurustar/ruscal/pkg/term"
	"github.com/zurustar/ruscal/pkg/vm"
)

// 終了ステータス
const (
	ExitOK          = 0
	ExitFault       = 1 // 実行時エラー
	ExitSyntaxError = 2 // 構文エラー
	ExitUsage       = 3 // 引数・設定の誤り
	ExitInputError  = 4 // スクリプトを読み込めない
)

// Application はアプリケーションのメインロジックを管理する
type Application struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	config *cli.Config
	log    *slog.Logger

	// 標準入力が端末かどうか（テストで差し替える）
	isTerminal func() bool
}

// New Applicationを作成
func New(stdin io.Reader, stdout, stderr io.Writer) *Application {
	app := &Application{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}
	app.isTerminal = func() bool {
		f, ok := app.stdin.(*os.File)
		return ok && term.IsTerminal(f)
	}
	return app
}

// Run アプリケーションを実行し、終了ステータスを返す
func (app *Application) Run(args []string) int {
	// 1. コマンドライン引数の解析
	config, err := cli.ParseArgs(args)
	if err != nil {
		fmt.Fprintf(app.stderr, "ruscal: %v\nRun 'ruscal --help' for usage.\n", err)
		return ExitUsage
	}
	app.config = config

	if app.config.ShowHelp {
		cli.PrintHelp(app.stdout)
		return ExitOK
	}

	// 2. ロガーの初期化（ログは標準エラー出力へ）
	if err := logger.InitLogger(app.config.LogLevel, app.config.LogFormat, app.stderr); err != nil {
		fmt.Fprintf(app.stderr, "ruscal: failed to initialize logger: %v\n", err)
		return ExitUsage
	}
	app.log = logger.GetLogger()

	app.log.Debug("Application started", "script", app.config.ScriptPath, "encoding", app.config.Encoding)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ip := vm.New(
		vm.WithOutput(app.stdout),
		vm.WithLogger(app.log),
		vm.WithMaxDepth(app.config.MaxDepth),
	)

	// 3. 対話モード
	if app.config.ScriptPath == "" && (app.config.Interactive || app.isTerminal()) {
		return app.runREPL(ctx, ip)
	}

	// 4. スクリプトの読み込み
	s, err := app.loadScript()
	if err != nil {
		app.log.Error("Failed to load script", "path", app.config.ScriptPath, "error", err)
		fmt.Fprintf(app.stderr, "ruscal: %v\n", err)
		return ExitInputError
	}
	app.log.Debug("Script loaded", "name", s.Name, "size", s.Size)

	// 5. 構文解析
	program, err := compiler.CompileScript(s)
	if err != nil {
		app.log.Debug("Compilation failed", "name", s.Name, "error", err)
		fmt.Fprintln(app.stderr, err)
		return ExitSyntaxError
	}
	app.log.Debug("Script compiled", "statements", len(program.Statements))

	if app.config.DumpAST {
		fmt.Fprint(app.stdout, program.String())
		return ExitOK
	}

	// 6. 実行
	if status := app.execute(ctx, ip, s, program); status != ExitOK {
		return status
	}

	if app.config.Interactive {
		return app.runREPL(ctx, ip)
	}
	return ExitOK
}

// loadScript パスのスクリプトを読み込む。パスが空か "-" なら標準入力
func (app *Application) loadScript() (*script.Script, error) {
	loader := script.NewLoader(app.config.Encoding)
	if app.config.ScriptPath == "" || app.config.ScriptPath == "-" {
		return loader.LoadReader(script.StdinName, app.stdin)
	}
	return loader.LoadFile(app.config.ScriptPath)
}

// execute プログラムを実行する。実行時エラーは位置と前後の行を表示する
func (app *Application) execute(ctx context.Context, ip *vm.Interpreter, s *script.Script, program *ast.Program) int {
	if app.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, app.config.Timeout)
		defer cancel()
	}

	v, err := ip.Run(ctx, program)
	if err != nil {
		var re *vm.RuntimeError
		if errors.As(err, &re) {
			app.log.Error("Runtime fault", "type", re.Type, "line", re.Line, "column", re.Column)
			fmt.Fprintf(app.stderr, "%s: %v\n", s.Name, re)
			if re.Line > 0 {
				fmt.Fprint(app.stderr, compiler.GenerateErrorContext(s.Content, re.Line, re.Column))
			}
		} else {
			fmt.Fprintf(app.stderr, "%s: %v\n", s.Name, err)
		}
		return ExitFault
	}

	app.log.Debug("Program finished", "value", v)
	return ExitOK
}

// runREPL 対話モードを実行する
func (app *Application) runREPL(ctx context.Context, ip *vm.Interpreter) int {
	var reader repl.LineReader
	if app.isTerminal() {
		ln, closeFn := repl.OpenLiner(repl.HistoryPath())
		defer closeFn()
		reader = ln
	} else {
		reader = newPlainReader(app.stdin, app.stdout)
	}

	app.log.Debug("Interactive mode started")
	if err := repl.New(reader, ip, app.stdout, app.stderr).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(app.stderr, "ruscal: %v\n", err)
		return ExitFault
	}
	return ExitOK
}

// plainReader は端末でない入力から1行ずつ読む
type plainReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func newPlainReader(r io.Reader, out io.Writer) *plainReader {
	return &plainReader{scanner: bufio.NewScanner(r), out: out}
}

func (p *plainReader) Prompt(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return p.scanner.Text(), nil
}

func (p *plainReader) AppendHistory(string) {}
