package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// errNoOutput is returned when the asker has nowhere to print the question.
	errNoOutput = errors.New("prompt output is not set")

	// errNoInput is returned when an interactive asker has no reply stream.
	errNoInput = errors.New("prompt input is not set")
)

// Asker poses interactive questions on a terminal-like reader/writer pair.
// In non-interactive mode every confirmation proceeds and every input takes
// its default, matching the orchestrators' documented behavior.
type Asker struct {
	// in supplies user replies, one per line. A single buffered reader per
	// asker: buffering per question would swallow pending reply lines.
	in *bufio.Reader
	// out receives the rendered questions.
	out io.Writer
	// interactive disables auto-proceed when true.
	interactive bool
}

// New creates an Asker over the given streams.
func New(in io.Reader, out io.Writer, interactive bool) *Asker {
	asker := &Asker{out: out, interactive: interactive}
	if in != nil {
		asker.in = bufio.NewReader(in)
	}

	return asker
}

// Confirm asks a yes/no question and reports the answer.
// Non-interactive askers always answer yes. An empty reply means yes.
func (a *Asker) Confirm(ctx context.Context, question string) (bool, error) {
	if !a.interactive {
		return true, nil
	}

	reply, err := a.ask(ctx, question+" [Y/n] ")
	if err != nil {
		return false, err
	}

	switch strings.ToLower(reply) {
	case "", "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Input asks for a free-form value, returning the default on empty reply.
// Non-interactive askers always return the default.
func (a *Asker) Input(ctx context.Context, question, defaultValue string) (string, error) {
	if !a.interactive {
		return defaultValue, nil
	}

	label := question
	if defaultValue != "" {
		label = fmt.Sprintf("%s (%s)", question, defaultValue)
	}

	reply, err := a.ask(ctx, label+": ")
	if err != nil {
		return "", err
	}

	if reply == "" {
		return defaultValue, nil
	}

	return reply, nil
}

// ask prints the question and reads one trimmed reply line, honoring context
// cancellation while the read is pending.
func (a *Asker) ask(ctx context.Context, question string) (string, error) {
	if a.out == nil {
		return "", errNoOutput
	}

	if a.in == nil {
		return "", errNoInput
	}

	if _, err := fmt.Fprint(a.out, question); err != nil {
		return "", err
	}

	type result struct {
		line string
		err  error
	}

	replies := make(chan result, 1)

	go func() {
		line, err := a.in.ReadString('\n')
		replies <- result{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		_, _ = fmt.Fprintln(a.out)
		return "", ctx.Err()
	case res := <-replies:
		if res.err != nil && !errors.Is(res.err, io.EOF) {
			return "", res.err
		}

		return strings.TrimSpace(res.line), nil
	}
}
