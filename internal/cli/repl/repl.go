package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-shellwords"
)

// DefaultPrompt is printed before every line.
const DefaultPrompt = "> "

var (
	// ErrUnterminatedQuote is returned by Split for an unbalanced quote or a
	// trailing backslash.
	ErrUnterminatedQuote = errors.New("unterminated quote")
	// ErrShellOperator is returned by Split for ; & | < and > outside quotes.
	ErrShellOperator = errors.New("shell operators are not supported")
)

// Executor runs one tokenized input line.
type Executor func(ctx context.Context, tokens []string) error

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	exec      Executor
	prompt    string
	input     io.Reader
	output    io.Writer
	completer *Completer
	history   *History
}

// Option configures a REPL.
type Option func(*REPL)

// WithPrompt sets the prompt string.
func WithPrompt(prompt string) Option {
	return func(r *REPL) { r.prompt = prompt }
}

// WithIO sets the input and output streams.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithCommands registers command names for completion and help.
func WithCommands(names ...string) Option {
	return func(r *REPL) { r.completer = NewCompleter(names...) }
}

// WithHistory replaces the in-memory history.
func WithHistory(h *History) Option {
	return func(r *REPL) { r.history = h }
}

// New creates a new REPL instance.
func New(exec Executor, opts ...Option) *REPL {
	r := &REPL{
		exec:      exec,
		prompt:    DefaultPrompt,
		input:     os.Stdin,
		output:    os.Stdout,
		completer: NewCompleter(),
		history:   NewHistory(""),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reads lines until EOF, exit/quit or ctx is done. Executor errors are
// printed and the loop continues. When ctx ends during a read, Run returns
// at once and the pending read is abandoned.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.history.Load(); err != nil {
		fmt.Fprintf(r.output, "Warning: cannot load history: %v\n", err)
	}
	defer func() {
		if err := r.history.Save(); err != nil {
			fmt.Fprintf(r.output, "Warning: cannot save history: %v\n", err)
		}
	}()

	next, lines := r.readLines()
	defer close(next)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(r.output, r.prompt)

		next <- struct{}{}
		var in readResult
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.output)
			return ctx.Err()
		case in = <-lines:
		}

		if in.err != nil && !errors.Is(in.err, io.EOF) {
			return in.err
		}
		eof := errors.Is(in.err, io.EOF)

		line := strings.TrimSpace(in.line)
		if line == "" {
			if eof {
				fmt.Fprintln(r.output)
				return nil
			}
			continue
		}

		r.history.Add(line)

		if line == cmdExit || line == cmdQuit {
			return nil
		}

		if err := r.execute(ctx, line); err != nil {
			fmt.Fprintf(r.output, "Error: %v\n", err)
		}
		if eof {
			return nil
		}
	}
}

type readResult struct {
	line string
	err  error
}

// readLines reads one line from the input for every value sent on next.
// Closing next stops the reader once its current read returns.
func (r *REPL) readLines() (chan<- struct{}, <-chan readResult) {
	next := make(chan struct{})
	lines := make(chan readResult, 1)

	go func() {
		reader := bufio.NewReader(r.input)
		for range next {
			line, err := reader.ReadString('\n')
			lines <- readResult{line: line, err: err}
		}
	}()
	return next, lines
}

func (r *REPL) execute(ctx context.Context, line string) error {
	tokens, err := Split(line)
	if err != nil {
		return err
	}

	if len(tokens) > 0 && tokens[0] == cmdHelp {
		r.help(tokens[1:])
		return nil
	}

	if r.exec == nil {
		return nil
	}
	return r.exec(ctx, tokens)
}

// help lists every command, or those starting with the given prefix.
func (r *REPL) help(args []string) {
	names := r.completer.Commands()
	if len(args) > 0 {
		names = r.completer.Complete(args[0])
		if len(names) == 0 {
			fmt.Fprintf(r.output, "No commands match %q\n", args[0])
			return
		}
	}

	fmt.Fprintln(r.output, "Commands:")
	for _, cmd := range names {
		fmt.Fprintf(r.output, "  %s\n", cmd)
	}
}

// Split breaks a line into tokens the way a POSIX shell would, without
// expanding variables or running commands. Pipes, redirects and command
// separators are rejected.
func Split(line string) ([]string, error) {
	p := shellwords.NewParser()
	tokens, err := p.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnterminatedQuote, err)
	}
	if p.Position >= 0 {
		return nil, fmt.Errorf("%w: %q", ErrShellOperator, string([]rune(line)[p.Position:]))
	}
	return tokens, nil
}
