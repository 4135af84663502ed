package resolver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// MaxAttempts is how many answers the prompt accepts before falling back to
// the backend default.
const MaxAttempts = 3

// Prompter asks a question and returns one line of input without the newline.
// io.EOF means no more input; ErrInterrupted means the user gave up.
type Prompter interface {
	Prompt(ctx context.Context, question string) (string, error)
}

// LinePrompter reads answers line by line from In and writes questions to Out.
// Reads happen on a background goroutine so an interrupt (context
// cancellation) returns immediately even while blocked on the terminal.
type LinePrompter struct {
	In  io.Reader
	Out io.Writer

	once  sync.Once
	lines chan lineResult
}

type lineResult struct {
	text string
	err  error
}

func (p *LinePrompter) start() {
	p.lines = make(chan lineResult)
	go func() {
		defer close(p.lines)
		sc := bufio.NewScanner(p.In)
		for sc.Scan() {
			p.lines <- lineResult{text: strings.TrimRight(sc.Text(), "\r")}
		}
		err := sc.Err()
		if err == nil {
			err = io.EOF
		}
		p.lines <- lineResult{err: err}
	}()
}

// Prompt writes question and waits for a line or cancellation.
func (p *LinePrompter) Prompt(ctx context.Context, question string) (string, error) {
	p.once.Do(p.start)
	fmt.Fprint(p.Out, question)

	select {
	case <-ctx.Done():
		return "", ErrInterrupted
	case r, ok := <-p.lines:
		if !ok {
			return "", io.EOF
		}
		return r.text, r.err
	}
}

// ParseChoice turns an answer into a 1-based ordinal within 1..n.
// Blank input picks 1. Anything but a plain base-10 integer is rejected.
func ParseChoice(input string, n int) (int, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 1, n >= 1
	}
	choice, err := strconv.Atoi(input)
	if err != nil || choice < 1 || choice > n {
		return 0, false
	}
	return choice, true
}

// Select picks one entry.
//
// With no entries it reports ok=false. A single entry is chosen without
// prompting. Without a Prompter several entries also report ok=false.
// Otherwise the numbered list is printed and up to MaxAttempts
// answers are read; when all of them are invalid Select reports ok=false so
// the caller falls back to the backend default. A failed read (including
// EOF) counts as a blank answer.
func (r *Resolver) Select(ctx context.Context, entries []Entry) (Entry, bool, error) {
	switch len(entries) {
	case 0:
		return Entry{}, false, nil
	case 1:
		return entries[0], true, nil
	}
	if r.Prompter == nil {
		return Entry{}, false, nil
	}

	out := r.out()
	fmt.Fprint(out, "\nByobu sessions...\n\n")

	for attempt := 0; attempt < MaxAttempts; attempt++ {
		for i, e := range entries {
			fmt.Fprintf(out, "  %d. %s\n", i+1, e.Label)
		}

		input, err := r.Prompter.Prompt(ctx, fmt.Sprintf("\nChoose 1-%d [1]: ", len(entries)))
		if errors.Is(err, ErrInterrupted) || ctx.Err() != nil {
			fmt.Fprintln(out)
			return Entry{}, false, ErrInterrupted
		}
		if err != nil {
			input = ""
		}

		if choice, ok := ParseChoice(input, len(entries)); ok {
			return entries[choice-1], true, nil
		}
		r.Metrics.RecordPromptRetry(ctx)
		fmt.Fprint(r.errOut(), "\nERROR: Invalid input\n")
	}
	return Entry{}, false, nil
}
