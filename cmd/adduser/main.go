// Command adduser creates an administrator account in the configured
// database. It accepts the server's configuration flags plus -e/--email
// and -n/--name; the password is always read from the terminal.
package main

import (
	"bufio"
	"context"
	"io"
	"log"
	"os"

	"github.com/dmitrijs2005/complaintdesk/internal/adminctl"
	"github.com/dmitrijs2005/complaintdesk/internal/flagx"
	"github.com/dmitrijs2005/complaintdesk/internal/server"
	"github.com/dmitrijs2005/complaintdesk/internal/server/config"
	"github.com/spf13/pflag"
)

func main() {
	var email, name string

	fs := pflag.NewFlagSet("adduser", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVarP(&email, "email", "e", "", "administrator email")
	fs.StringVarP(&name, "name", "n", "", "administrator display name")
	if err := fs.Parse(flagx.FilterFlagSet(os.Args[1:], fs)); err != nil {
		log.Fatalf("flags: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseDSN == config.MemoryDSN {
		log.Fatalf("adduser needs a persistent database, got %s", cfg.DatabaseDSN)
	}

	ctx := context.Background()
	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	term := adminctl.Terminal{
		In:  bufio.NewReader(os.Stdin),
		Out: os.Stdout,
		Fd:  int(os.Stdin.Fd()),
	}
	if _, err := adminctl.AddUser(ctx, app.Auth(), term, email, name); err != nil {
		app.Close()
		log.Fatalf("%v", err)
	}
}
