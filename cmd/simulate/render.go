package simulate

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func Render(w io.Writer, r Report) {
	signals := newTable(w, "SIGNALS")
	signals.AppendHeader(table.Row{"#", "Symbol", "Direction", "Conf", "Action", "Qty", "Entry", "Reason"})
	for i, res := range r.Results {
		signals.AppendRow(table.Row{
			i + 1, res.Signal.Symbol, res.Signal.Direction, fmt.Sprintf("%.2f", res.Signal.Confidence),
			res.Action, num(res.Quantity), num(res.EntryPrice), res.Reason,
		})
	}
	signals.SetColumnConfigs([]table.ColumnConfig{
		{Number: 8, WidthMax: 60, Align: text.AlignLeft},
	})
	signals.Render()
	fmt.Fprintln(w)

	positions := newTable(w, "POSITIONS")
	positions.AppendHeader(table.Row{"ID", "Symbol", "Status", "Entry", "Exit", "Qty", "Realized", "Unrealized", "Reasons"})
	for _, p := range append(r.Closed, r.Summary.Positions...) {
		exit := "-"
		if p.ExitPrice != nil {
			exit = num(*p.ExitPrice)
		}
		positions.AppendRow(table.Row{
			shortID(p.ID), p.Symbol, p.Status, num(p.EntryPrice), exit, num(p.OriginalQuantity),
			num(p.RealizedPnL), num(p.UnrealizedPnL), fmt.Sprint(p.ExitReasons),
		})
	}
	positions.Render()
	fmt.Fprintln(w)

	s := r.Summary
	summary := newTable(w, "PORTFOLIO")
	summary.AppendRows([]table.Row{
		{"Initial balance", num(s.InitialBalance)},
		{"Balance", num(s.Balance)},
		{"Realized PnL", num(s.TotalRealizedPnL)},
		{"Unrealized PnL", num(s.TotalUnrealizedPnL)},
		{"Fees", num(s.TotalFees)},
		{"Return", fmt.Sprintf("%.2f%%", s.PortfolioReturnPct)},
		{"Win rate", fmt.Sprintf("%.0f%%", s.WinRate*100)},
		{"Exposure", fmt.Sprintf("%.2f%%", s.ExposureRatio*100)},
		{"Open / closed", fmt.Sprintf("%d / %d", s.ActivePositions, s.ClosedPositions)},
		{"History records", len(r.History)},
	})
	summary.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 18, WidthMax: 18, Align: text.AlignLeft},
		{Number: 2, WidthMin: 20, Align: text.AlignRight},
	})
	summary.Render()
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)
	return t
}

func num(v float64) string {
	if v == 0 {
		return "-"
	}
	return fmt.Sprintf("%.4f", v)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Elapsed formats the virtual time a scenario covered.
func Elapsed(s *Scenario) time.Duration {
	var total time.Duration
	for _, step := range s.Steps {
		total += time.Duration(step.Advance)
	}
	return total
}
