package main

import (
	"github.com/alecthomas/kong"

	"github.com/raidlog/raidlog/pkg/cmdutil"
)

const (
	programName = "raidlogctl"
	programDesc = "Append-only mirrored block-log control and recovery tool"
)

func main() {
	ctx := kong.Parse(&cli,
		kong.Name(programName),
		kong.Description(programDesc),
		kong.UsageOnError(),
		kong.NamedMapper("blockdevicefile", cmdutil.BlockDeviceFileMapper()),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
