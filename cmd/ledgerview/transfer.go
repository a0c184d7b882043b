package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/voidshard/ledgerview/pkg/domain"
	"github.com/voidshard/ledgerview/pkg/session"
	"github.com/voidshard/ledgerview/pkg/transfer"
)

type transferCmd struct {
	To          string `required:"" help:"Recipient account number."`
	Amount      string `required:"" help:"Amount to send."`
	Description string `help:"Note to attach to the transfer."`
	PIN         string `name:"pin" required:"" help:"Your 4 digit PIN."`
	FallbackPIN string `name:"fallback-pin" env:"LEDGERVIEW_FALLBACK_PIN" help:"PIN accepted for accounts without one (testing only)."`
}

// validate rejects flags that the input cleaners would have to rewrite. Nobody
// sees the cleaned value before it is sent, so it has to match what was typed.
func (c *transferCmd) validate() error {
	to := strings.TrimSpace(c.To)
	if transfer.CleanAccountNumber(to) != to || len(to) != domain.AccountNumberLength {
		return fmt.Errorf("--to must be exactly %d digits, got %q", domain.AccountNumberLength, c.To)
	}

	amount := strings.TrimSpace(c.Amount)
	if amount == "" || transfer.CleanAmount(amount) != amount {
		return fmt.Errorf("--amount must be a positive number, got %q", c.Amount)
	}

	pin := strings.TrimSpace(c.PIN)
	if transfer.CleanPIN(pin) != pin || len(pin) != 4 {
		return fmt.Errorf("--pin must be 4 digits")
	}
	return nil
}

func (c *transferCmd) Run(g *globals) error {
	if err := c.validate(); err != nil {
		return err
	}

	log := g.newLogger()
	ctx, cancel, err := g.deadline(log)
	if err != nil {
		return err
	}
	defer cancel()

	s, err := g.openSession(log, &session.Config{Transfer: &transfer.Config{FallbackPIN: c.FallbackPIN}})
	if err != nil {
		return err
	}
	defer s.Close()

	m := s.Transfer
	if err := m.LoadProfile(ctx); err != nil {
		log.Warn().Err(err).Msg("could not load bank profile")
	}

	m.SetRecipient(strings.TrimSpace(c.To))
	m.SetAmount(strings.TrimSpace(c.Amount))
	m.SetDescription(c.Description)
	if err := m.Open(); err != nil {
		return err
	}
	m.EnterPIN(strings.TrimSpace(c.PIN))

	state, err := m.Confirm(ctx)
	var verr *transfer.ValidationError
	if errors.As(err, &verr) {
		return err
	}
	if errors.Is(err, transfer.ErrPINNotConfigured) {
		return errors.New(m.Status().Message)
	}
	if err != nil {
		return err
	}

	status := m.Status()
	switch state {
	case transfer.Succeeded:
		fmt.Printf("Transfer completed. Reference %s\n", status.Last.ReferenceID)
		return nil
	default:
		return errors.New(status.Message)
	}
}
