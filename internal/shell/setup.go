package shell

import (
	"context"
	"strings"

	"virtuallet/internal/core"
)

const (
	defaultIncomeDescription = "pocket money"
	defaultIncomeAmount      = "100"
	defaultOverdraft         = "200"
)

// Initializer stores the first-run configuration.
type Initializer interface {
	Initialize(ctx context.Context, description string, incomeAmount, overdraft core.Money) error
}

// Setup is the first-run wizard.
type Setup struct {
	ledger  Initializer
	console *Console
}

func NewSetup(ledger Initializer, console *Console) *Setup {
	return &Setup{ledger: ledger, console: console}
}

// Run asks for the income description, income amount and overdraft, then
// initializes the ledger. Empty answers take the default.
func (s *Setup) Run(ctx context.Context) error {
	s.console.Println(banner)
	s.console.Println(msgSetupWelcome)

	description, err := s.askOrDefault(ctx, msgSetupDescription, defaultIncomeDescription)
	if err != nil {
		return err
	}
	income, err := s.askAmount(ctx, msgSetupIncome, defaultIncomeAmount, false)
	if err != nil {
		return err
	}
	overdraft, err := s.askAmount(ctx, msgSetupOverdraft, defaultOverdraft, true)
	if err != nil {
		return err
	}

	if err := s.ledger.Initialize(ctx, description, income, overdraft); err != nil {
		return err
	}

	s.console.Println(msgSetupComplete)
	return nil
}

func (s *Setup) askOrDefault(ctx context.Context, question, def string) (string, error) {
	answer, err := s.console.Prompt(ctx, question+" ["+def+"]: ")
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// askAmount re-prompts until the answer is a valid amount. Zero is accepted
// only when allowZero is set.
func (s *Setup) askAmount(ctx context.Context, question, def string, allowZero bool) (core.Money, error) {
	for {
		answer, err := s.askOrDefault(ctx, question, def)
		if err != nil {
			return core.Money{}, err
		}

		amount, err := core.ParseAmount(answer)
		switch {
		case err != nil:
			s.console.Println(msgZeroOrInvalid)
		case amount.Cents < 0:
			s.console.Println(msgNonNegative)
		case amount.Cents == 0 && !allowZero:
			s.console.Println(msgZeroOrInvalid)
		default:
			return amount, nil
		}
	}
}
