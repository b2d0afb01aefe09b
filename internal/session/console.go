package session

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/willfong/bankmgr/internal/ui"
	"github.com/willfong/bankmgr/internal/utils"
	"golang.org/x/term"
)

const invalidNumberMsg = "Invalid number. Please try again."

// Console reads one answer per prompt from the input and writes prompts
// through the UI.
type Console struct {
	in    *bufio.Reader
	ui    *ui.UI
	fd    int
	isTTY bool
}

// NewConsole creates a Console. Password prompts are masked when in is a terminal.
func NewConsole(in io.Reader, u *ui.UI) *Console {
	c := &Console{
		in: bufio.NewReader(in),
		ui: u,
		fd: -1,
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		c.fd = int(f.Fd())
		c.isTTY = true
	}
	return c
}

// Prompt writes label and returns the next non-blank line, trimmed.
// Blank lines are skipped without repeating the label.
// It returns io.EOF once the input is exhausted.
func (c *Console) Prompt(label string) (string, error) {
	c.ui.Print(label)
	for {
		line, err := c.in.ReadString('\n')
		line = strings.TrimSpace(line)
		if line != "" {
			return line, nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				// Finish the dangling prompt line
				c.ui.Println("")
			}
			return "", err
		}
	}
}

// PromptSecret reads a password. On a terminal the input is not echoed.
func (c *Console) PromptSecret(label string) (string, error) {
	// Anything already buffered came from the line reader and must be
	// consumed from there first.
	if !c.isTTY || c.in.Buffered() > 0 {
		return c.Prompt(label)
	}

	c.ui.Print(label)
	for {
		b, err := term.ReadPassword(c.fd)
		c.ui.Println("")
		if err != nil {
			return "", err
		}
		if s := strings.TrimSpace(string(b)); s != "" {
			return s, nil
		}
	}
}

// PromptInt reads a whole number, re-prompting until one parses.
func (c *Console) PromptInt(label string) (int, error) {
	for {
		s, err := c.Prompt(label)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(s)
		if err == nil {
			return n, nil
		}
		c.ui.Println(c.ui.Warning(invalidNumberMsg))
	}
}

// PromptAmount reads a money amount, re-prompting until one parses.
func (c *Console) PromptAmount(label string) (decimal.Decimal, error) {
	for {
		s, err := c.Prompt(label)
		if err != nil {
			return decimal.Zero, err
		}
		d, err := utils.ParseAmount(s)
		if err == nil {
			return d, nil
		}
		c.ui.Println(c.ui.Warning(invalidNumberMsg))
	}
}
