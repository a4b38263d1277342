package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"openarbitrage/internal/game"
	"openarbitrage/internal/market"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

const recentEvents = 5

var (
	accent  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	warn    = color.New(color.FgYellow, color.Bold)
	danger  = color.New(color.FgRed, color.Bold)
	neutral = color.New(color.FgHiWhite)
)

func printSuccess(msg string) { fprintSuccess(os.Stdout, msg) }
func printWarn(msg string)    { fprintWarn(os.Stdout, msg) }
func printInfo(msg string)    { neutral.Fprintln(os.Stdout, msg) }

func fprintSuccess(w io.Writer, msg string) { success.Fprintln(w, msg) }
func fprintWarn(w io.Writer, msg string)    { warn.Fprintln(w, msg) }
func fprintError(w io.Writer, msg string)   { danger.Fprintln(w, msg) }

func renderState(w io.Writer, s *game.State) {
	renderSnapshot(w, s.Snapshot(), s.CurrentCity(), s.NetWorth())
}

func renderView(w io.Writer, v game.View) {
	renderSnapshot(w, v.State, v.City, v.NetWorth)
	neutral.Fprintf(w, "Session %s\n", v.SessionID)
}

func renderSnapshot(w io.Writer, snap game.Snapshot, city string, netWorth float64) {
	accent.Fprintln(w, "\n== POSITION ==")
	fmt.Fprintf(w, "%5s %-14s %14s %14s %14s %-8s\n", "DAY", "CITY", "CASH", "LOAN", "NET WORTH", "STATUS")
	fmt.Fprintf(w, "%5d %-14s %14s %14s %14s %-8s\n",
		snap.Day,
		city,
		money(snap.Cash),
		money(snap.Loan.Balance),
		colorizeMoney(netWorth),
		snap.Status,
	)

	fmt.Fprintln(w)
	accent.Fprintln(w, "Market")
	fmt.Fprintf(w, "%-6s %12s %12s %9s\n", "ITEM", "PRICE", "DELTA", "DELTA%")
	for _, it := range snap.Market {
		delta := it.Value - it.LastValue
		pct := 0.0
		if it.LastValue != 0 {
			pct = delta / it.LastValue * 100
		}
		fmt.Fprintf(w, "%-6s %12s %12s %9s\n", it.Name, money(it.Value), colorizeMoney(delta), colorizePercent(pct))
	}

	fmt.Fprintln(w)
	capacity := "unlimited"
	if snap.Inventory.Capacity > 0 {
		capacity = humanize.Comma(int64(snap.Inventory.Capacity))
	}
	accent.Fprintf(w, "Inventory (capacity %s)\n", capacity)
	if len(snap.Inventory.Holdings) == 0 {
		neutral.Fprintln(w, "Nothing held.")
	} else {
		fmt.Fprintf(w, "%-6s %8s\n", "ITEM", "QTY")
		for _, h := range snap.Inventory.Holdings {
			fmt.Fprintf(w, "%-6s %8s\n", h.Item, humanize.Comma(int64(h.Quantity)))
		}
	}

	if n := len(snap.EventLog); n > 0 {
		renderEvents(w, "Recent Events", snap.EventLog[max(0, n-recentEvents):])
	}
	fmt.Fprintln(w)
}

func renderEvents(w io.Writer, title string, events []game.Event) {
	fmt.Fprintln(w)
	accent.Fprintln(w, title)
	fmt.Fprintf(w, "%5s %-17s %-14s %s\n", "DAY", "KIND", "CITY", "DETAILS")
	for _, e := range events {
		fmt.Fprintf(w, "%5d %-17s %-14s %s\n", e.Day, e.Kind, e.City, formatDetails(e.Details))
	}
}

func formatDetails(details map[string]any) string {
	parts := make([]string, 0, len(details))
	for _, k := range sortedKeys(details) {
		parts = append(parts, k+"="+formatValue(details[k]))
	}
	return strings.Join(parts, ", ")
}

func formatValue(v any) string {
	switch x := v.(type) {
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e9 {
			return humanize.Comma(int64(x))
		}
		return humanize.FormatFloat("#,###.##", x)
	case map[string]float64:
		parts := make([]string, 0, len(x))
		for _, k := range sortedKeys(anyMap(x)) {
			parts = append(parts, k+":"+humanize.FormatFloat("#,###.##", x[k]))
		}
		return "{" + strings.Join(parts, " ") + "}"
	case map[string]int:
		parts := make([]string, 0, len(x))
		for _, k := range sortedKeys(anyMap(x)) {
			parts = append(parts, fmt.Sprintf("%s:%d", k, x[k]))
		}
		return "{" + strings.Join(parts, " ") + "}"
	default:
		return fmt.Sprint(v)
	}
}

func anyMap[V any](m map[string]V) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// renderSimulation summarises per-item price series; start holds the items as
// they were before the run.
func renderSimulation(w io.Writer, start []market.Item, history [][]float64) {
	steps := 0
	if len(history) > 0 {
		steps = len(history[0])
	}
	accent.Fprintf(w, "\n== SIMULATION (%d steps) ==\n", steps)
	fmt.Fprintf(w, "%-6s %12s %12s %12s %12s %9s\n", "ITEM", "START", "END", "LOW", "HIGH", "CHANGE%")
	for i, it := range start {
		first := it.Value
		end, low, high := first, first, first
		for _, v := range history[i] {
			end = v
			low = math.Min(low, v)
			high = math.Max(high, v)
		}
		pct := 0.0
		if first != 0 {
			pct = (end - first) / first * 100
		}
		fmt.Fprintf(w, "%-6s %12s %12s %12s %12s %9s\n", it.Name, money(first), money(end), money(low), money(high), colorizePercent(pct))
	}
	fmt.Fprintln(w)
}

func money(v float64) string {
	if v < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -v)
	}
	return "$" + humanize.FormatFloat("#,###.##", v)
}

func colorizeMoney(v float64) string {
	text := money(v)
	if v > 0 {
		text = "+" + text
	}
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func colorizePercent(v float64) string {
	text := fmt.Sprintf("%+.2f%%", v)
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}
