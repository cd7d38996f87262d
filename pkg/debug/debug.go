package debug

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// callerSkip is the number of frames between a hook's Run and the logging call site.
const callerSkip = 4

type CustomTimeHook struct {
	WithColor bool
	Format    string
	now       func() time.Time
}

func (t CustomTimeHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	now := time.Now
	if t.now != nil {
		now = t.now
	}

	format := t.Format
	if format == "" {
		// milisecond precision with no timezone
		format = "2006-01-02T15:04:05.0000Z"
	}

	str := now().Format(format)
	if t.WithColor {
		str = color.New(color.Faint).Sprint(str)
	}
	e.Str("time", str)
}

type CustomCallerHook struct {
	WithColor bool
	Skip      int
}

func (c CustomCallerHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	pc, file, line, ok := runtime.Caller(callerSkip + c.Skip)
	if !ok {
		return
	}

	funcd := runtime.FuncForPC(pc)
	if funcd == nil {
		return
	}

	pkg, _ := GetPackageAndFuncFromFuncName(funcd.Name())

	e.Str("caller", FormatCaller(pkg, file, line, c.WithColor))
}

func GetPackageAndFuncFromFuncName(pc string) (pkg, function string) {
	funcName := pc
	lastSlash := strings.LastIndexByte(funcName, '/')
	if lastSlash < 0 {
		lastSlash = 0
	}

	firstDot := strings.IndexByte(funcName[lastSlash:], '.') + lastSlash
	if firstDot < lastSlash {
		return funcName, ""
	}

	pkg = funcName[:firstDot]
	fname := funcName[firstDot+1:]

	if strings.Contains(pkg, ".(") {
		splt := strings.Split(pkg, ".(")
		pkg = splt[0]
		fname = "(" + splt[1] + "." + fname
	}

	return pkg, fname
}

func FormatCaller(pkg, path string, number int, colorize bool) string {
	p := FileNameOfPath(path)
	if colorize {
		p = color.New(color.Bold).Sprint(p)
		num := color.New(color.FgHiRed, color.Bold).Sprintf("%d", number)
		sep := color.New(color.Faint).Sprint(":")

		return fmt.Sprintf("%s%s%s%s%s", pkg, sep, p, sep, num)
	}

	return fmt.Sprintf("%s:%s:%d", pkg, p, number)
}

func FileNameOfPath(path string) string {
	tot := strings.Split(path, "/")
	if len(tot) > 1 {
		return tot[len(tot)-1]
	}

	return path
}

// LoggerOptions configures NewLogger.
type LoggerOptions struct {
	Level   string
	Color   bool
	Console bool
	Caller  bool
}

// NewLogger builds the logger the CLI attaches to its context. Console output is the
// human readable zerolog writer; otherwise lines are JSON.
func NewLogger(w io.Writer, opts LoggerOptions) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return zerolog.Nop(), errors.Errorf("parsing log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	out := w
	if opts.Console {
		out = zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    !opts.Color,
			PartsOrder: []string{"time", "level", "caller", "message"},
			// the time hook formats the timestamp itself
			FormatTimestamp: func(i any) string { return fmt.Sprint(i) },
		}
	}

	logger := zerolog.New(out).Level(level).Hook(CustomTimeHook{WithColor: opts.Console && opts.Color})
	if opts.Caller {
		logger = logger.Hook(CustomCallerHook{WithColor: opts.Console && opts.Color})
	}
	return logger, nil
}
