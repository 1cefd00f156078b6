// Package terminal runs a hot-seat game of Connect Four on a text stream.
package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gookit/color"

	"github.com/iamasit07/connect-four/internal/domain"
)

const prompt = "Column (1-7), r to restart, q to quit: "

// Options controls rendering
type Options struct {
	Color bool // paint disks with ANSI colors
}

// Run plays until q is entered or in is exhausted. Both players type into
// the same stream and the prompt names whose turn it is.
func Run(in io.Reader, out io.Writer, opts Options) error {
	engine := domain.NewEngine()
	scanner := bufio.NewScanner(in)

	for {
		if err := render(out, engine.State(), opts); err != nil {
			return err
		}
		if _, err := fmt.Fprint(out, prompt); err != nil {
			return err
		}

		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		input := strings.ToLower(strings.TrimSpace(scanner.Text()))
		switch input {
		case "":
			continue
		case "q", "quit":
			return nil
		case "r", "restart":
			engine.Restart()
			continue
		}

		if err := play(engine, input); err != nil {
			fmt.Fprintf(out, "Invalid move: %v\n", err)
		}
	}
}

// play reports why a move would be ignored by the board instead of letting
// it pass silently
func play(engine *domain.Engine, input string) error {
	n, err := strconv.Atoi(input)
	if err != nil {
		return errors.New("enter a column number, r or q")
	}
	col := n - 1

	state := engine.State()
	switch {
	case !domain.IsValidColumn(col):
		return domain.ErrColumnOutOfRange
	case state.IsOver:
		return domain.ErrGameOver
	case state.Grid.IsColumnFull(col):
		return domain.ErrColumnFull
	}

	_, err = engine.ApplyMove(col)
	return err
}

func render(out io.Writer, state domain.State, opts Options) error {
	board := state.Grid.String()
	if opts.Color {
		board = colorBoard(state.Grid)
	}

	_, err := fmt.Fprintf(out, "\n%s%s\n", board, statusLine(state))
	return err
}

func colorBoard(g domain.Grid) string {
	var sb strings.Builder
	for row := 0; row < domain.Rows; row++ {
		for col := 0; col < domain.Columns; col++ {
			if col > 0 {
				sb.WriteByte(' ')
			}
			switch g.Cell(row, col) {
			case domain.Player1:
				sb.WriteString(color.Red.Sprint("●"))
			case domain.Player2:
				sb.WriteString(color.Yellow.Sprint("●"))
			default:
				sb.WriteString(color.Gray.Sprint("."))
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(color.Bold.Sprint("1 2 3 4 5 6 7"))
	sb.WriteByte('\n')
	return sb.String()
}

func statusLine(state domain.State) string {
	switch {
	case !state.IsOver:
		return fmt.Sprintf("Player %d Turn", state.CurrentPlayer)
	case state.Winner != domain.Empty:
		return fmt.Sprintf("Player %d Wins", state.Winner)
	default:
		return "Game Over!"
	}
}
