// Package presenter is the terminal front end. Navigation is a two-page state machine
// (Input, Report) whose transitions are pure functions on State values.
package presenter

import (
	"errors"
	"strings"

	"StockLens/internal/model"
)

// DefaultSymbol pre-fills the Input page.
const DefaultSymbol = "2330.TW"

// Page is a node of the navigation state machine.
type Page int

const (
	PageInput Page = iota
	PageReport
)

func (p Page) String() string {
	switch p {
	case PageInput:
		return "input"
	case PageReport:
		return "report"
	default:
		return "unknown"
	}
}

// ErrTransition is returned for a trigger that is not valid on the current page.
var ErrTransition = errors.New("presenter: transition not allowed from this page")

// State is the whole presentation state. A Report page holds either a report, an error, or
// neither while the report is being built.
type State struct {
	Page   Page
	Symbol string
	Report *model.UnifiedReport
	Err    error
}

// Initial returns the Input page with the default symbol.
func Initial() State {
	return State{Page: PageInput, Symbol: DefaultSymbol}
}

// Pending reports whether the Report page is waiting for a result.
func (s State) Pending() bool {
	return s.Page == PageReport && s.Report == nil && s.Err == nil
}

// Submit moves Input -> Report for the entered symbol. Blank input keeps the current symbol.
func (s State) Submit(input string) (State, error) {
	if s.Page != PageInput {
		return s, ErrTransition
	}
	symbol := strings.ToUpper(strings.TrimSpace(input))
	if symbol == "" {
		symbol = s.Symbol
	}
	return State{Page: PageReport, Symbol: symbol}, nil
}

// Show attaches the build result to a pending Report page.
func (s State) Show(report *model.UnifiedReport, err error) (State, error) {
	if !s.Pending() {
		return s, ErrTransition
	}
	s.Report, s.Err = report, err
	return s, nil
}

// Retry clears a failed result so the report is built again.
func (s State) Retry() (State, error) {
	if s.Page != PageReport || s.Err == nil {
		return s, ErrTransition
	}
	return State{Page: PageReport, Symbol: s.Symbol}, nil
}

// Back returns Report -> Input, keeping the symbol for editing.
func (s State) Back() (State, error) {
	if s.Page != PageReport {
		return s, ErrTransition
	}
	return State{Page: PageInput, Symbol: s.Symbol}, nil
}
