package presenter

import (
	"context"
	"errors"
	"fmt"
	"io"

	"StockLens/internal/model"
	"StockLens/internal/report"
)

// Run drives the state machine until the user quits or ctx ends.
func Run(ctx context.Context, builder report.Builder, p Prompter, out io.Writer) error {
	state := Initial()
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		next, err := step(ctx, state, builder, p, out)
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			return err
		}
		state = next
	}
}

func step(ctx context.Context, s State, builder report.Builder, p Prompter, out io.Writer) (State, error) {
	switch s.Page {
	case PageInput:
		symbol, err := p.Symbol(s.Symbol)
		if err != nil {
			return s, err
		}
		return s.Submit(symbol)

	case PageReport:
		if s.Pending() {
			fmt.Fprintln(out, Render(s))
			rep, err := builder.Build(ctx, s.Symbol)
			if s, err = s.Show(rep, err); err != nil {
				return s, err
			}
		}
		fmt.Fprintln(out, Render(s))

		action, err := p.Next(s.Err != nil && model.Retryable(s.Err))
		if err != nil {
			return s, err
		}
		switch action {
		case ActionRetry:
			return s.Retry()
		case ActionQuit:
			return s, ErrQuit
		default:
			return s.Back()
		}
	}
	return s, fmt.Errorf("presenter: unknown page %v", s.Page)
}
