package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
)

// Prompter reads answers for the interactive menu. Prompt returns io.EOF
// when input ends or the user aborts.
type Prompter interface {
	Prompt(prompt string) (string, error)
	Confirm(question string, def bool) (bool, error)
	Close() error
}

// newPrompter returns a liner prompter when stdin is the process terminal
// and a line reader otherwise.
func newPrompter(stdin io.Reader, out io.Writer) Prompter {
	if f, ok := stdin.(*os.File); ok && f == os.Stdin && terminalWidth(out) > 0 && liner.TerminalSupported() {
		state := liner.NewLiner()
		state.SetCtrlCAborts(true)

		return &linerPrompter{state: state}
	}

	if stdin == nil {
		stdin = strings.NewReader("")
	}

	return &linePrompter{r: bufio.NewReader(stdin), out: out}
}

// linerPrompter edits lines with history on a terminal.
type linerPrompter struct {
	state *liner.State
}

func (p *linerPrompter) Prompt(prompt string) (string, error) {
	line, err := p.state.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", io.EOF
	}

	if err != nil {
		return "", err
	}

	if strings.TrimSpace(line) != "" {
		p.state.AppendHistory(line)
	}

	return line, nil
}

func (p *linerPrompter) Confirm(question string, def bool) (bool, error) {
	return confirm(p.Prompt, question, def)
}

func (p *linerPrompter) Close() error {
	return p.state.Close()
}

// linePrompter reads plain lines, for pipes and tests.
type linePrompter struct {
	r   *bufio.Reader
	out io.Writer
}

func (p *linePrompter) Prompt(prompt string) (string, error) {
	_, _ = fmt.Fprint(p.out, prompt)

	line, err := p.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r"), nil
		}

		_, _ = fmt.Fprintln(p.out)

		return "", err
	}

	return strings.TrimRight(line, "\r\n"), nil
}

func (p *linePrompter) Confirm(question string, def bool) (bool, error) {
	return confirm(p.Prompt, question, def)
}

func (*linePrompter) Close() error {
	return nil
}

func confirm(prompt func(string) (string, error), question string, def bool) (bool, error) {
	hint := " [y/N]: "
	if def {
		hint = " [Y/n]: "
	}

	for {
		answer, err := prompt(question + hint)
		if err != nil {
			return false, err
		}

		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}
