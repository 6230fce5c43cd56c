package presenter

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"StockLens/internal/model"
)

// Action is the user's choice on the Report page.
type Action int

const (
	ActionBack Action = iota
	ActionRetry
	ActionQuit
)

const (
	optionBack  = "⬅️ 回上一頁 / 重新輸入"
	optionRetry = "🔁 重試"
	optionQuit  = "離開"
)

// Prompter collects user input for the two pages.
type Prompter interface {
	Symbol(current string) (string, error)
	Next(canRetry bool) (Action, error)
}

// ErrQuit is returned by prompters when the user aborts input.
var ErrQuit = errors.New("presenter: quit")

// SurveyPrompter prompts on the terminal.
type SurveyPrompter struct {
	Opts []survey.AskOpt
}

func (p SurveyPrompter) Symbol(current string) (string, error) {
	var symbol string
	prompt := &survey.Input{
		Message: "1️⃣ 輸入股票代碼 (例: 2330.TW, 00878.TW)",
		Default: current,
	}
	validate := survey.WithValidator(func(val interface{}) error {
		s, _ := val.(string)
		if s == "" {
			return nil
		}
		if _, err := model.NormalizeSymbol(s); err != nil {
			return fmt.Errorf("代碼格式錯誤: %s", s)
		}
		return nil
	})
	if err := survey.AskOne(prompt, &symbol, append([]survey.AskOpt{validate}, p.Opts...)...); err != nil {
		return "", mapInterrupt(err)
	}
	return symbol, nil
}

func (p SurveyPrompter) Next(canRetry bool) (Action, error) {
	options := []string{optionBack}
	if canRetry {
		options = append(options, optionRetry)
	}
	options = append(options, optionQuit)

	var choice string
	prompt := &survey.Select{Message: "下一步", Options: options, Default: optionBack}
	if err := survey.AskOne(prompt, &choice, p.Opts...); err != nil {
		return ActionQuit, mapInterrupt(err)
	}
	switch choice {
	case optionRetry:
		return ActionRetry, nil
	case optionQuit:
		return ActionQuit, nil
	default:
		return ActionBack, nil
	}
}

func mapInterrupt(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrQuit
	}
	return err
}
