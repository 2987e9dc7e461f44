package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/OhanaFS/mincrypt/cmd/mincrypt/cmd"
)

var subcommands = map[string]*flag.FlagSet{
	cmd.EncryptCmd.Name(): cmd.EncryptCmd,
	cmd.DecryptCmd.Name(): cmd.DecryptCmd,
	cmd.VerifyCmd.Name():  cmd.VerifyCmd,
	cmd.KeygenCmd.Name():  cmd.KeygenCmd,
	cmd.InspectCmd.Name(): cmd.InspectCmd,
	cmd.DumpCmd.Name():    cmd.DumpCmd,
	cmd.BenchCmd.Name():   cmd.BenchCmd,
	cmd.VersionCmd.Name(): cmd.VersionCmd,
}

func run() int {
	var command *flag.FlagSet

	subcommandNames := []string{}
	for name := range subcommands {
		subcommandNames = append(subcommandNames, name)
	}
	sort.Strings(subcommandNames)

	if len(os.Args) < 2 {
		logrus.Fatalf("You must specify a subcommand. Valid subcommands are: %s", strings.Join(subcommandNames, ", "))
	}

	command = subcommands[os.Args[1]]
	if command == nil {
		logrus.Fatalf("unknown subcommand '%s'. Available commands are: %s", os.Args[1], strings.Join(subcommandNames, ", "))
	}

	command.Parse(os.Args[2:])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command.Name() {
	case cmd.EncryptCmd.Name():
		return cmd.RunEncryptCmd(ctx)
	case cmd.DecryptCmd.Name():
		return cmd.RunDecryptCmd(ctx)
	case cmd.VerifyCmd.Name():
		return cmd.RunVerifyCmd(ctx)
	case cmd.KeygenCmd.Name():
		return cmd.RunKeygenCmd()
	case cmd.InspectCmd.Name():
		return cmd.RunInspectCmd()
	case cmd.DumpCmd.Name():
		return cmd.RunDumpCmd()
	case cmd.BenchCmd.Name():
		return cmd.RunBenchCmd(ctx)
	case cmd.VersionCmd.Name():
		return cmd.RunVersionCmd()
	}

	return 0
}

func main() {
	logrus.SetOutput(os.Stderr)
	os.Exit(run())
}
