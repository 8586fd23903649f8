package main

import (
	"fmt"
	"os"

	"github.com/raidlog/raidlog/pkg/appendlog"
	"github.com/raidlog/raidlog/pkg/blockdev"
	"github.com/raidlog/raidlog/pkg/cmdutil"
	"github.com/raidlog/raidlog/pkg/reader"
	"github.com/raidlog/raidlog/pkg/sector"
)

type formatCmd struct {
	Device string `arg:"" required:"" type:"blockdevicefile" help:"Path to the loopback image or raw partition to format"`
	Yes    bool   `optional:"" short:"y" help:"Skip the confirmation prompt"`
}

type appendCmd struct {
	Device      string `arg:"" required:"" type:"blockdevicefile" help:"Path to a previously formatted device"`
	Header      uint8  `optional:"" default:"0" help:"Caller tag byte stored in each data sector"`
	PayloadFile string `required:"" short:"f" type:"existingfile" help:"File whose bytes are chunked into PayloadSize slices and appended"`
}

type readCmd struct {
	Device string `arg:"" required:"" type:"blockdevicefile" help:"Path to a formatted device"`
	Output string `optional:"" default:"table" enum:"table,json,csv,openmetrics" help:"Output format; one of [table, json, csv, openmetrics]"`
}

type diagCmd struct {
	Device string `arg:"" required:"" type:"blockdevicefile" help:"Path to a formatted device"`
}

var cli struct {
	Format formatCmd `cmd:"" help:"Format a device: write a fresh supersector to all mirrors"`
	Append appendCmd `cmd:"" help:"Append a file's contents to the log as one batch"`
	Read   readCmd   `cmd:"" help:"Recover and dump the log's data sectors"`
	Diag   diagCmd   `cmd:"" help:"Dump raw supersector/geometry state for debugging"`
}

func (c *formatCmd) Run() error {
	dev := blockdev.NewFileDevice(c.Device)
	store, err := appendlog.Open(dev)
	if err != nil {
		return fmt.Errorf("opening %s: %w", c.Device, err)
	}
	defer store.Close()

	if _, err := store.Head(); err == nil && !c.Yes {
		ok, err := cmdutil.ConfirmDestructive(c.Device, "format")
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("format of %s aborted", c.Device)
		}
	}

	if err := store.InitLog(); err != nil {
		return fmt.Errorf("formatting %s: %w", c.Device, err)
	}
	fmt.Printf("Formatted %s (%d mirrors, stride %d)\n", c.Device, 3, store.Geometry().Stride)
	return nil
}

func (c *appendCmd) Run() error {
	raw, err := os.ReadFile(c.PayloadFile)
	if err != nil {
		return fmt.Errorf("reading %s: %w", c.PayloadFile, err)
	}
	if rem := len(raw) % sector.PayloadSize; rem != 0 {
		raw = append(raw, make([]byte, sector.PayloadSize-rem)...)
	}

	dev := blockdev.NewFileDevice(c.Device)
	store, err := appendlog.Open(dev)
	if err != nil {
		return fmt.Errorf("opening %s: %w", c.Device, err)
	}
	defer store.Close()

	if err := store.Append(c.Header, raw); err != nil {
		return fmt.Errorf("appending to %s: %w", c.Device, err)
	}
	head, err := store.Head()
	if err != nil {
		return err
	}
	fmt.Printf("Appended %d bytes to %s, head now %d\n", len(raw), c.Device, head)
	return nil
}

func (c *readCmd) Run() error {
	dev := blockdev.NewFileDevice(c.Device)
	records, meta, err := reader.Read(dev)
	if err != nil {
		return fmt.Errorf("reading %s: %w", c.Device, err)
	}

	switch c.Output {
	case "json":
		return outputJSON(records, meta)
	case "csv":
		return outputCSV(records, meta)
	case "openmetrics":
		return outputMetrics(c.Device, records, meta)
	default:
		return outputTable(records, meta)
	}
}

func (c *diagCmd) Run() error {
	dev := blockdev.NewFileDevice(c.Device)
	return diagDump(c.Device, dev)
}
