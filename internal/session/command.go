package session

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/vancomm/minesweeper-engine/internal/board"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadArguments   = errors.New("invalid arguments")
)

// Maps known commands to the accepted numbers of arguments
var commandNargs = map[string][]int{
	"g": {0},
	"o": {2},
	"f": {2},
	"c": {2},
	"r": {0},
	"n": {0, 2},
}

func parseInts(twoStrings []string) (a int, b int, err error) {
	if a, err = strconv.Atoi(twoStrings[0]); err != nil {
		return 0, 0, fmt.Errorf("%w: first argument must be an int", ErrBadArguments)
	}
	if b, err = strconv.Atoi(twoStrings[1]); err != nil {
		return 0, 0, fmt.Errorf("%w: second argument must be an int", ErrBadArguments)
	}
	return
}

// ParseCommand turns one line of the text protocol into an Action:
//
//	o x y   open a cell
//	f x y   toggle a flag
//	c x y   chord around a numbered cell
//	r       give up and reveal the mines
//	n       new game, optionally "n size mines"
//	g       get the current state
func ParseCommand(c string) (Action, error) {
	parts := strings.Fields(c)
	if len(parts) == 0 {
		return Action{}, ErrUnknownCommand
	}
	nargs, ok := commandNargs[parts[0]]
	if !ok {
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownCommand, parts[0])
	}
	if !slices.Contains(nargs, len(parts)-1) {
		return Action{}, fmt.Errorf("%w: %q takes %v arguments", ErrBadArguments, parts[0], nargs)
	}

	switch parts[0] {
	case "g":
		return Action{Kind: Noop}, nil
	case "r":
		return Action{Kind: Forfeit}, nil
	case "n":
		a := Action{Kind: Reset}
		if len(parts) == 3 {
			size, mines, err := parseInts(parts[1:])
			if err != nil {
				return Action{}, err
			}
			a.Params = &board.Params{Size: size, MineCount: mines}
		}
		return a, nil
	}

	x, y, err := parseInts(parts[1:])
	if err != nil {
		return Action{}, err
	}
	a := Action{Point: board.Point{X: x, Y: y}}
	switch parts[0] {
	case "o":
		a.Kind = Open
	case "f":
		a.Kind = Flag
	case "c":
		a.Kind = Chord
	}
	return a, nil
}

func byPiece(s string, sep string) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		i := 0
		found := true
		var piece string
		for found {
			piece, s, found = strings.Cut(s, sep)
			if !yield(i, piece) {
				return
			}
			i += 1
		}
	}
}

// Execute runs a newline-separated batch of commands. It stops after the
// command that ends the game, and at the first error.
func (s *Session) Execute(text string) ([]Result, error) {
	var results []Result
	for _, c := range byPiece(strings.TrimSpace(text), "\n") {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		a, err := ParseCommand(c)
		if err != nil {
			return results, fmt.Errorf("command %q: %w", c, err)
		}
		res, err := s.Dispatch(a)
		if err != nil {
			return results, fmt.Errorf("command %q: %w", c, err)
		}
		results = append(results, res)
		if s.Finished() {
			break
		}
	}
	return results, nil
}
