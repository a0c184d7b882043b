/*Basic command structure*/
package main

import (
	"github.com/alecthomas/kong"
)

// globals holds options shared by every command
type globals struct {
	API      string `name:"api" env:"LEDGERVIEW_API" default:"http://localhost:8080/api/v1" help:"Base URL of the account / ledger service."`
	User     string `name:"user" env:"LEDGERVIEW_USER" help:"Identity of the logged in user."`
	Token    string `name:"token" env:"LEDGERVIEW_TOKEN" help:"Bearer token issued at login."`
	Store    string `name:"store" env:"LEDGERVIEW_STORE" default:"jsonfile:ledgerview.json" help:"Where to keep the last known ledger [jsonfile:/path/file.json es8:http://myelasticsearch:9200], empty for nowhere."`
	Key      string `name:"key" env:"LEDGERVIEW_KEY" help:"Encryption key for the store (see keygen)."`
	Sig      string `name:"sig" env:"LEDGERVIEW_SIG" help:"Signing key for the store (see keygen)."`
	Retries  int    `name:"retries" default:"5" help:"Attempts per read request before giving up."`
	Timeout  string `name:"timeout" default:"30s" help:"Overall time limit for the command."`
	LogLevel string `name:"log-level" default:"info" help:"Log level [debug info warn error]."`
}

// cli commands / args available
var cli struct {
	Globals globals `embed:""`

	History  historyCmd  `cmd:"" help:"Show transaction history."`
	Transfer transferCmd `cmd:"" help:"Send money to another account."`
	Export   exportCmd   `cmd:"" help:"Fetch the ledger and write it out for analysis."`
	Keygen   keygenCmd   `cmd:"" help:"Print a new encryption key & signing key for the store."`
}

func main() {
	ctx := kong.Parse(&cli)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
