// Package console implements the interactive terminal helpers.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// ErrNoOptions is returned when a menu has nothing to choose from.
var ErrNoOptions = errors.New("no options available")

// Menu prompts for numbered choices on a line-oriented reader.
type Menu struct {
	in  *bufio.Reader
	out io.Writer

	title   *color.Color
	option  *color.Color
	warning *color.Color
}

// NewMenu reads answers from in and prints prompts to out.
func NewMenu(in io.Reader, out io.Writer) *Menu {
	return &Menu{
		in:      bufio.NewReader(in),
		out:     out,
		title:   color.New(color.FgCyan, color.Bold),
		option:  color.New(color.FgWhite),
		warning: color.New(color.FgRed),
	}
}

// Select prints options numbered from 1 and returns the chosen one. Invalid
// answers re-prompt; end of input is an error.
func (m *Menu) Select(title string, options []string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("%s: %w", title, ErrNoOptions)
	}

	m.title.Fprintf(m.out, "\n--- %s ---\n", title)
	for i, opt := range options {
		m.option.Fprintf(m.out, "[%d] %s\n", i+1, opt)
	}

	for {
		fmt.Fprint(m.out, "Digite o número da sua escolha: ")
		line, err := m.in.ReadString('\n')
		answer := strings.TrimSpace(line)
		if answer == "" && err != nil {
			if errors.Is(err, io.EOF) {
				return "", fmt.Errorf("%s: input closed", title)
			}
			return "", fmt.Errorf("%s: read answer: %w", title, err)
		}

		choice, convErr := strconv.Atoi(answer)
		switch {
		case convErr != nil:
			m.warning.Fprintln(m.out, "Entrada inválida. Por favor, digite um número.")
		case choice < 1 || choice > len(options):
			m.warning.Fprintln(m.out, "Opção inválida. Tente novamente.")
		default:
			return options[choice-1], nil
		}
	}
}
