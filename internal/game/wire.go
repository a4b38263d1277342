package game

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CommandRequest is the transport shape of a command: {type, args}.
type CommandRequest struct {
	Type string         `json:"type"`
	Args map[string]any `json:"args,omitempty"`
}

// ParseCommand turns a transport request into a Command, filling the documented
// defaults for missing arguments. Range checks are left to Apply.
func ParseCommand(typ string, args map[string]any) (Command, error) {
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "buy", "sell":
		raw, ok := args["item_name"]
		if !ok {
			return nil, fmt.Errorf("%w: item_name required", ErrInvalidArgument)
		}
		name := fmt.Sprint(raw)
		qty, err := intArg(args, "quantity", 0)
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(strings.TrimSpace(typ), "buy") {
			return Buy{ItemName: name, Quantity: qty}, nil
		}
		return Sell{ItemName: name, Quantity: qty}, nil
	case "travel":
		dest, err := intArg(args, "destination_index", -1)
		if err != nil {
			return nil, err
		}
		return Travel{DestinationIndex: dest}, nil
	case "advance_day":
		days, err := intArg(args, "days", 1)
		if err != nil {
			return nil, err
		}
		return AdvanceDay{Days: days}, nil
	case "repay":
		amount, err := floatArg(args, "amount", 0)
		if err != nil {
			return nil, err
		}
		return RepayLoan{Amount: amount}, nil
	default:
		return nil, fmt.Errorf("%w: type %q", ErrUnsupportedCommand, typ)
	}
}

func (r CommandRequest) Command() (Command, error) {
	return ParseCommand(r.Type, r.Args)
}

// Request is the inverse of ParseCommand. SetSeed has no transport form.
func Request(cmd Command) (CommandRequest, error) {
	switch c := cmd.(type) {
	case Buy:
		return CommandRequest{Type: c.Name(), Args: map[string]any{"item_name": c.ItemName, "quantity": c.Quantity}}, nil
	case Sell:
		return CommandRequest{Type: c.Name(), Args: map[string]any{"item_name": c.ItemName, "quantity": c.Quantity}}, nil
	case Travel:
		return CommandRequest{Type: c.Name(), Args: map[string]any{"destination_index": c.DestinationIndex}}, nil
	case AdvanceDay:
		return CommandRequest{Type: c.Name(), Args: map[string]any{"days": c.Days}}, nil
	case RepayLoan:
		return CommandRequest{Type: c.Name(), Args: map[string]any{"amount": c.Amount}}, nil
	default:
		return CommandRequest{}, fmt.Errorf("%w: %T", ErrUnsupportedCommand, cmd)
	}
}

func intArg(args map[string]any, key string, fallback int) (int, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return fallback, nil
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidArgument, key)
		}
		return int(f), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidArgument, key)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidArgument, key)
	}
}

func floatArg(args map[string]any, key string, fallback float64) (float64, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return fallback, nil
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be a number", ErrInvalidArgument, key)
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be a number", ErrInvalidArgument, key)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: %s must be a number", ErrInvalidArgument, key)
	}
}
