package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	cl "openarbitrage/internal/cli"
	"openarbitrage/internal/game"
	"openarbitrage/internal/journal"
)

const actions = "[b]uy, [s]ell, [t]ravel, [r]epay, a[d]vance day, [q]uit"

// player runs the interactive loop over a local state.
type player struct {
	in    *bufio.Reader
	out   io.Writer
	state *game.State

	journal  *journal.Store
	saves    *cl.Saves
	saveName string
}

func newPlayer(in io.Reader, out io.Writer, state *game.State) *player {
	return &player{in: bufio.NewReader(in), out: out, state: state}
}

func (p *player) run() error {
	for {
		renderState(p.out, p.state)
		if p.state.Status.Terminal() {
			p.finish()
			return nil
		}

		choice, err := p.prompt("Choose action ("+actions+")", "d")
		if err != nil {
			return p.stop(err)
		}
		if strings.EqualFold(choice, "q") {
			fmt.Fprintln(p.out, "Goodbye!")
			return nil
		}

		cmd, err := p.readCommand(strings.ToLower(choice))
		if err != nil {
			if errors.Is(err, io.EOF) {
				return p.stop(err)
			}
			fprintWarn(p.out, err.Error())
			continue
		}
		if err := p.state.Apply(cmd); err != nil {
			fprintError(p.out, err.Error())
			continue
		}
		if err := p.record(cmd); err != nil {
			fprintWarn(p.out, err.Error())
		}
	}
}

// readCommand asks for the arguments of one action. Bad input is reported once
// and the caller re-prompts from the action menu.
func (p *player) readCommand(choice string) (game.Command, error) {
	switch choice {
	case "b", "s":
		name, err := p.prompt("Item name", "")
		if err != nil {
			return nil, err
		}
		qty, err := p.promptInt("Quantity", "1")
		if err != nil {
			return nil, err
		}
		if choice == "b" {
			return game.Buy{ItemName: name, Quantity: qty}, nil
		}
		return game.Sell{ItemName: name, Quantity: qty}, nil
	case "t":
		fmt.Fprintln(p.out, "Cities:")
		for i, city := range p.state.Cities {
			fmt.Fprintf(p.out, "  [%d] %s\n", i, city)
		}
		dest, err := p.promptInt("Destination index", "")
		if err != nil {
			return nil, err
		}
		return game.Travel{DestinationIndex: dest}, nil
	case "r":
		text, err := p.prompt("Repay amount", "")
		if err != nil {
			return nil, err
		}
		amount, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("enter a valid number")
		}
		return game.RepayLoan{Amount: amount}, nil
	case "d":
		days, err := p.promptInt("Days to advance", "1")
		if err != nil {
			return nil, err
		}
		return game.AdvanceDay{Days: days}, nil
	default:
		return nil, fmt.Errorf("unknown command %q", choice)
	}
}

func (p *player) record(cmd game.Command) error {
	if p.journal != nil {
		if err := p.journal.Push(cmd); err != nil {
			return fmt.Errorf("journal: %w", err)
		}
	}
	if p.saves != nil {
		if err := p.saves.Save(p.saveName, p.state); err != nil {
			return fmt.Errorf("save %q: %w", p.saveName, err)
		}
	}
	return nil
}

func (p *player) finish() {
	msg := fmt.Sprintf("Game finished: %s (net worth %s)", p.state.Status, money(p.state.NetWorth()))
	if p.state.Status == game.StatusWon {
		fprintSuccess(p.out, msg)
	} else {
		fprintError(p.out, msg)
	}
}

// stop ends the loop quietly when input runs out.
func (p *player) stop(err error) error {
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(p.out)
		return nil
	}
	return err
}

func (p *player) prompt(label, defaultValue string) (string, error) {
	if defaultValue != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, defaultValue)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}
	text, err := p.in.ReadString('\n')
	text = strings.TrimSpace(text)
	if err != nil && (!errors.Is(err, io.EOF) || text == "") {
		return "", err
	}
	if text == "" {
		text = defaultValue
	}
	return text, nil
}

func (p *player) promptInt(label, defaultValue string) (int, error) {
	text, err := p.prompt(label, defaultValue)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("enter a whole number")
	}
	return v, nil
}
