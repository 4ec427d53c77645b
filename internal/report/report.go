// Package report renders planning results as console tables and JSON documents.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/elektrokombinacija/aasipp/internal/core"
	"github.com/elektrokombinacija/aasipp/internal/store"
)

// Mode controls the table output format.
type Mode int

const (
	ASCII    Mode = iota // Box-drawing terminal tables
	Markdown             // GitHub-flavoured Markdown tables
)

func newTable(m Mode) table.Writer {
	w := table.NewWriter()
	if m == ASCII {
		w.SetStyle(table.StyleLight)
	}
	// Footers carry sentences; keep their case.
	w.Style().Format.Footer = text.FormatDefault
	return w
}

func render(w io.Writer, t table.Writer, m Mode) error {
	out := t.Render()
	if m == Markdown {
		out = t.RenderMarkdown()
	}
	_, err := fmt.Fprintln(w, out)
	return err
}

func rightAligned(cols ...int) []table.ColumnConfig {
	cfgs := make([]table.ColumnConfig, len(cols))
	for i, c := range cols {
		cfgs[i] = table.ColumnConfig{Number: c, Align: text.AlignRight}
	}
	return cfgs
}

func verdict(found bool) string {
	if found {
		return "solved"
	}
	return "failed"
}

// Summary writes the run totals followed by one row per agent.
func Summary(w io.Writer, res *core.SearchResult, m Mode) error {
	head := newTable(m)
	head.AppendHeader(table.Row{"Run", "Result", "Solved", "Tries", "Reschedules", "Makespan", "Flowtime", "Runtime"})
	head.AppendRow(table.Row{
		res.RunID, verdict(res.PathFound), fmt.Sprintf("%d/%d", res.AgentsSolved, res.Agents),
		res.Tries, res.Reschedules,
		fmt.Sprintf("%.3f", res.Makespan), fmt.Sprintf("%.3f", res.Flowtime),
		res.Runtime.Round(time.Microsecond),
	})
	if err := render(w, head, m); err != nil {
		return err
	}

	agents := newTable(m)
	agents.AppendHeader(table.Row{"Agent", "Result", "Cost", "Expanded", "Generated", "Reopened", "Sections", "Runtime", "Error"})
	for _, ar := range res.Results {
		errText := ""
		if ar.Err != nil {
			errText = ar.Err.Error()
		}
		agents.AppendRow(table.Row{
			ar.AgentID, verdict(ar.PathFound), fmt.Sprintf("%.3f", ar.Cost),
			ar.Expanded, ar.Generated, ar.Reopened, len(ar.Sections),
			ar.Runtime.Round(time.Microsecond), errText,
		})
	}
	agents.SetColumnConfigs(rightAligned(3, 4, 5, 6, 7))
	if len(res.Conflicts) > 0 {
		c := res.Conflicts[0]
		agents.AppendFooter(table.Row{"", "", "", "", "", "", "", "conflicts",
			fmt.Sprintf("%d, first %d-%d at t=%.2f", len(res.Conflicts), c.A, c.B, c.Time)})
	}
	return render(w, agents, m)
}

// Runs writes stored runs, most recent first.
func Runs(w io.Writer, runs []store.Run, m Mode) error {
	t := newTable(m)
	t.AppendHeader(table.Row{"ID", "Name", "Result", "Solved", "Tries", "Makespan", "Flowtime", "Runtime", "Created"})
	for _, r := range runs {
		t.AppendRow(table.Row{
			r.ID, r.Name, verdict(r.PathFound), fmt.Sprintf("%d/%d", r.AgentsSolved, r.Agents), r.Tries,
			fmt.Sprintf("%.3f", r.Makespan), fmt.Sprintf("%.3f", r.Flowtime),
			r.Runtime.Round(time.Microsecond), r.CreatedAt.Format(time.RFC3339),
		})
	}
	t.SetColumnConfigs(rightAligned(5, 6, 7))
	t.AppendFooter(table.Row{"", "", "", "", "", "", "", "total", len(runs)})
	return render(w, t, m)
}

// BenchRow is one instance of a benchmark batch.
type BenchRow struct {
	Name   string
	Result *core.SearchResult
}

// Bench writes one row per instance and the success rate.
func Bench(w io.Writer, rows []BenchRow, m Mode) error {
	t := newTable(m)
	t.AppendHeader(table.Row{"Instance", "Result", "Solved", "Tries", "Makespan", "Flowtime", "Runtime"})
	solved := 0
	var total time.Duration
	for _, r := range rows {
		res := r.Result
		if res.PathFound {
			solved++
		}
		total += res.Runtime
		t.AppendRow(table.Row{
			r.Name, verdict(res.PathFound), fmt.Sprintf("%d/%d", res.AgentsSolved, res.Agents), res.Tries,
			fmt.Sprintf("%.3f", res.Makespan), fmt.Sprintf("%.3f", res.Flowtime), res.Runtime.Round(time.Microsecond),
		})
	}
	t.SetColumnConfigs(rightAligned(4, 5, 6, 7))
	t.AppendFooter(table.Row{"total", fmt.Sprintf("%d/%d", solved, len(rows)), "", "", "", "", total.Round(time.Microsecond)})
	return render(w, t, m)
}

// Document is the JSON form of a solved instance.
type Document struct {
	Name      string          `json:"name"`
	RunID     string          `json:"run_id"`
	Width     int             `json:"width"`
	Height    int             `json:"height"`
	PathFound bool            `json:"path_found"`
	Tries     int             `json:"tries"`
	Makespan  float64         `json:"makespan"`
	Flowtime  float64         `json:"flowtime"`
	RuntimeMS float64         `json:"runtime_ms"`
	Order     []core.AgentID  `json:"order"`
	Agents    []AgentDocument `json:"agents"`
	Conflicts []ConflictDoc   `json:"conflicts,omitempty"`
}

// AgentDocument is one agent and its trajectory.
type AgentDocument struct {
	ID        core.AgentID `json:"id"`
	Start     [2]int       `json:"start"`
	Goal      [2]int       `json:"goal"`
	Size      float64      `json:"size"`
	PathFound bool         `json:"path_found"`
	Error     string       `json:"error,omitempty"`
	Cost      float64      `json:"cost"`
	Expanded  int          `json:"expanded"`
	Sections  []SectionDoc `json:"sections"`
}

// SectionDoc is one straight-line piece of a trajectory.
type SectionDoc struct {
	From [2]float64 `json:"from"`
	To   [2]float64 `json:"to"`
	T0   float64    `json:"t0"`
	T1   float64    `json:"t1"`
}

// ConflictDoc is one detected conflict.
type ConflictDoc struct {
	A    core.AgentID `json:"a"`
	B    core.AgentID `json:"b"`
	Time float64      `json:"time"`
	At   [2]float64   `json:"at"`
}

// NewDocument builds the JSON document of a result.
func NewDocument(inst *core.Instance, res *core.SearchResult) *Document {
	doc := &Document{
		Name:      inst.Name,
		RunID:     res.RunID,
		Width:     inst.Grid.Width,
		Height:    inst.Grid.Height,
		PathFound: res.PathFound,
		Tries:     res.Tries,
		Makespan:  res.Makespan,
		Flowtime:  res.Flowtime,
		RuntimeMS: float64(res.Runtime.Microseconds()) / 1000,
		Order:     res.Order,
	}
	for _, a := range inst.Task.Agents {
		ad := AgentDocument{
			ID:    a.ID,
			Start: [2]int{a.Start.I, a.Start.J},
			Goal:  [2]int{a.Goal.I, a.Goal.J},
			Size:  a.Radius(),
		}
		if ar := res.ResultByID(a.ID); ar != nil {
			ad.PathFound = ar.PathFound
			ad.Cost = ar.Cost
			ad.Expanded = ar.Expanded
			if ar.Err != nil {
				ad.Error = ar.Err.Error()
			}
			for _, s := range ar.Sections {
				ad.Sections = append(ad.Sections, SectionDoc{
					From: [2]float64{s.From.I, s.From.J},
					To:   [2]float64{s.To.I, s.To.J},
					T0:   s.T0,
					T1:   s.T1,
				})
			}
		}
		doc.Agents = append(doc.Agents, ad)
	}
	for _, c := range res.Conflicts {
		doc.Conflicts = append(doc.Conflicts, ConflictDoc{A: c.A, B: c.B, Time: c.Time, At: [2]float64{c.Pos.I, c.Pos.J}})
	}
	return doc
}

// WriteJSON writes the indented JSON document of a result.
func WriteJSON(w io.Writer, inst *core.Instance, res *core.SearchResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(inst, res)); err != nil {
		return fmt.Errorf("encoding result JSON: %w", err)
	}
	return nil
}
