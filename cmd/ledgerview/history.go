package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/voidshard/ledgerview/pkg/domain"
	"github.com/voidshard/ledgerview/pkg/history"
	"github.com/voidshard/ledgerview/pkg/session"
)

type historyCmd struct {
	Filter   string `default:"all" help:"Only show [all today this-month this-year]."`
	PageSize int    `name:"page-size" default:"5" help:"Records per page."`
	Pages    int    `default:"1" help:"Number of pages to show."`
}

func (h *historyCmd) Run(g *globals) error {
	filter, err := domain.ParseFilter(h.Filter)
	if err != nil {
		return err
	}

	log := g.newLogger()
	ctx, cancel, err := g.deadline(log)
	if err != nil {
		return err
	}
	defer cancel()

	s, err := g.openSession(log, &session.Config{History: &history.Config{PageSize: h.PageSize}})
	if err != nil {
		return err
	}
	defer s.Close()

	<-s.History.Navigate(ctx)

	s.History.SetFilter(filter)
	for i := 1; i < h.Pages; i++ {
		if !s.History.LoadMore() {
			break
		}
	}

	view := s.History.View()
	switch view.Outcome {
	case history.OutcomeEmpty:
		fmt.Println("No bank account is set up for this user yet.")
		return nil
	case history.OutcomeFailed:
		log.Warn().Err(view.Err).Msg("could not reach the ledger service, showing last known transactions")
	}

	render(view)
	return nil
}

func render(view history.View) {
	fmt.Printf("Account: %s  Balance: %s\n", view.Account, view.BalanceText())
	if len(view.Displayed) == 0 {
		fmt.Println("No transactions.")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Date", "Reference", "Counterparty", "Description", "Amount", "Status"})
	for _, t := range view.Displayed {
		acc, holder := domain.Counterparty(t, view.Account)
		if holder != "" {
			acc = fmt.Sprintf("%s (%s)", holder, acc)
		}
		table.Append([]string{
			t.OccurredAt.Format("2006-01-02 15:04"),
			t.ReferenceID,
			acc,
			t.Description,
			domain.SignFor(t, view.Account) + t.Amount.StringFixed(2),
			string(t.Status),
		})
	}
	table.SetFooter([]string{"", "", "", "", fmt.Sprintf("%d of %d", len(view.Displayed), view.Total), string(view.Filter)})
	table.Render()

	if view.HasMore {
		fmt.Println("More available, use --pages to show more.")
	}
}
