package cmd

import (
	"context"
	"fmt"
	"runtime"

	"github.com/ardnew/knit/pkg"
)

// Version prints the program version.
type Version struct {
	Verbose bool `help:"Include Go toolchain and platform" short:"v"`
}

// Run executes the version command.
func (v *Version) Run(ctx context.Context) error {
	con := consoleFrom(ctx)

	line := pkg.Name + " " + pkg.Version()
	if v.Verbose {
		line += fmt.Sprintf(" (%s %s/%s)", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	}

	if _, err := fmt.Fprintln(con.Out, line); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
