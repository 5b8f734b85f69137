package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/nrtkbb/automove/cmd/history"
	"github.com/nrtkbb/automove/cmd/migrate"
	"github.com/nrtkbb/automove/cmd/organize"
	"github.com/nrtkbb/automove/cmd/testdata"
	"github.com/nrtkbb/automove/cmd/version"
)

var commands = []subcommands.Command{
	&organize.Command{},
	&history.Command{},
	&migrate.Command{},
	&version.Command{},
	&testdata.Command{},
}

// normalizeArgs turns the bare `automove [flags] SRC DEST [MONTHS]` form into
// an organize invocation. No top-level flags exist besides help, so leading
// flags belong to organize. A first argument naming a command is that command
// unless it and the next argument are both existing directories.
func normalizeArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	if strings.HasPrefix(args[0], "-") {
		switch strings.TrimLeft(args[0], "-") {
		case "h", "help":
			return args
		}
		return append([]string{"organize"}, args...)
	}
	if isCommand(args[0]) && !(len(args) >= 2 && isDir(args[0]) && isDir(args[1])) {
		return args
	}
	return append([]string{"organize"}, args...)
}

func isCommand(name string) bool {
	switch name {
	case "help", "flags", "commands":
		return true
	}
	for _, c := range commands {
		if c.Name() == name {
			return true
		}
	}
	return false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func main() {
	// Register subcommands
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	for _, c := range commands {
		subcommands.Register(c, "")
	}

	flag.CommandLine.Parse(normalizeArgs(os.Args[1:]))
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
