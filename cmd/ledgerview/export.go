package main

import (
	"fmt"

	"github.com/voidshard/ledgerview/pkg/history"
	"github.com/voidshard/ledgerview/pkg/logger"
)

type exportCmd struct {
	Out string `default:"jsonfile:out.json" help:"Where to write [jsonfile:/path/file.json es8:http://myelasticsearch:9200]"`
}

func (e *exportCmd) Run(g *globals) error {
	log := g.newLogger()
	ctx, cancel, err := g.deadline(log)
	if err != nil {
		return err
	}
	defer cancel()

	out, err := getStore(e.Out, log)
	if err != nil {
		return err
	}

	s, err := g.openSession(log, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	<-s.History.Navigate(ctx)
	view := s.History.View()
	if view.Outcome == history.OutcomeFailed {
		return view.Err
	}

	txns := s.Ledger.Current()
	err = out.Write(txns)
	if err != nil {
		return err
	}

	ctxLog := logger.FromContext(ctx)
	ctxLog.Info().Int("count", len(txns)).Str("out", e.Out).Msg("exported transactions")
	fmt.Printf("exported %d transactions\n", len(txns))
	return nil
}
