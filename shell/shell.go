package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/c4lab/connectx/config"
	"github.com/c4lab/connectx/game"
	"github.com/c4lab/connectx/search"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errNoGame            = errors.New("please start a game first with the `new` command")
)

// Options to configure the interactve shell
type ShellOptions struct {
	// autorespond makes the engine answer every human move.
	autorespond bool
	color       bool
}

func NewShellOptions() *ShellOptions {
	return &ShellOptions{autorespond: true, color: true}
}

func (opts *ShellOptions) Show(key string) (bool, string) {
	switch key {
	case "autorespond":
		return true, strconv.FormatBool(opts.autorespond)
	case "color":
		return true, strconv.FormatBool(opts.color)
	default:
		return false, "No such option: " + key
	}
}

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) Int(key string) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return 0, errors.New(key + " not found in options")
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

// extractFields splits a line into a command, its arguments and its
// -options. Every option takes exactly one value.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := CmdOptions{}
	for idx := 1; idx < len(fields); idx++ {
		if strings.HasPrefix(fields[idx], "-") && len(fields[idx]) > 1 {
			if idx == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			opt := fields[idx][1:]
			options[opt] = append(options[opt], fields[idx+1])
			idx++
			continue
		}
		args = append(args, fields[idx])
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

type ShellController struct {
	l       *readline.Instance
	out     io.Writer
	config  *config.Config
	options *ShellOptions

	game   *game.Game
	solver *search.Solver
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func writeln(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func (sc *ShellController) showMessage(msg string) {
	writeln(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

func NewShellController(cfg *config.Config) *ShellController {
	sc := newShellController(cfg, nil)
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mconnectx>\033[0m ",
		HistoryFile:     "/tmp/connectx_readline.tmp",
		AutoComplete:    NewShellCompleter(sc),
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})

	if err != nil {
		panic(err)
	}
	sc.l = l
	sc.out = l.Stderr()
	return sc
}

func newShellController(cfg *config.Config, out io.Writer) *ShellController {
	return &ShellController{config: cfg, out: out, options: NewShellOptions()}
}

// displayWriter decides whether boards come out coloured.
func (sc *ShellController) displayWriter() io.Writer {
	if !sc.options.color {
		return nil
	}
	return sc.out
}

func (sc *ShellController) handle(ctx context.Context, line string) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "new", "n":
		return sc.newGame(ctx, cmd)
	case "show", "s", "b":
		return sc.show(cmd)
	case "play", "p":
		return sc.play(ctx, cmd)
	case "aiplay", "ai", "a":
		return sc.aiplay(ctx, cmd)
	case "rank", "r":
		return sc.rank(ctx, cmd)
	case "undo", "u":
		return sc.undo(cmd)
	case "load", "l":
		return sc.load(cmd)
	case "set":
		return sc.set(cmd)
	case "autoplay":
		return sc.autoplay(ctx, cmd)
	case "analyze-log":
		return sc.analyzeLog(cmd)
	case "help", "h":
		return sc.help(cmd)
	default:
		msg := fmt.Sprintf("command %v not found", strconv.Quote(cmd.cmd))
		log.Info().Msg(msg)
		return nil, errors.New(msg)
	}
}

// Execute runs one shell line and returns what the shell would print.
func (sc *ShellController) Execute(ctx context.Context, line string) (string, error) {
	resp, err := sc.handle(ctx, strings.TrimSpace(line))
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", nil
	}
	return resp.message, nil
}

func (sc *ShellController) Loop(ctx context.Context, sig chan os.Signal) {

	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)

		if line == "exit" {
			sig <- syscall.SIGINT
			break
		} else if line == "" {
			continue
		} else {
			resp, err := sc.handle(ctx, line)
			if err != nil {
				sc.showError(err)
			} else if resp != nil {
				sc.showMessage(resp.message)
			}
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}
