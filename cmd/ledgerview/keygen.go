package main

import (
	"fmt"

	"github.com/voidshard/ledgerview/pkg/crypto"
)

type keygenCmd struct{}

func (k *keygenCmd) Run(g *globals) error {
	key, err := crypto.NewRandomKey()
	if err != nil {
		return err
	}
	sig, err := crypto.NewRandomKey()
	if err != nil {
		return err
	}

	fmt.Printf("LEDGERVIEW_KEY=%s\nLEDGERVIEW_SIG=%s\n", key, sig)
	return nil
}
