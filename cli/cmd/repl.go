package cmd

import (
	"context"

	"github.com/ardnew/knit/cli/cmd/repl"
	"github.com/ardnew/knit/format"
	"github.com/ardnew/knit/log"
)

// Repl starts an interactive session that parses each line entered.
type Repl struct {
	Format string `default:"json" help:"Initial input format" placeholder:"NAME" short:"f"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	f, err := format.Lookup(r.Format)
	if err != nil {
		return ErrSelectFormat.Wrap(err)
	}

	return repl.Run(ctx, f, kongVar(ctx, CacheIdentifier), log.Default())
}
