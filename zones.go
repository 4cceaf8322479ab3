package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/TweakySolution/libzbc/zbd"
)

func zonesCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "zones <device>",
		Short: "List the zones of a zoned block device (read-only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runZones(args[0], verbose)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose mode")
	return cmd
}

func runZones(path string, verbose bool) error {
	log := newLogger(verbose)
	defer log.Sync()

	dev, err := zbd.Open(path, zbd.Options{Logger: log})
	if err != nil {
		if errors.Is(err, zbd.ErrNotZoned) {
			return fmt.Errorf("open %s failed (not a zoned block device)", path)
		}
		return errors.Wrapf(err, "open %s failed", path)
	}
	defer dev.Close()

	printDeviceInfo(dev.Info())

	zones, err := dev.ReportZones()
	if err != nil {
		return errors.Wrap(err, "report zones failed")
	}

	fmt.Printf("%d zones:\n", len(zones))
	fmt.Printf("  %5s  %-26s  %-17s  %12s  %10s  %12s\n",
		"zone", "type", "cond", "start", "length", "wp")
	for i, z := range zones {
		wp := "-"
		if !z.Conventional() {
			wp = fmt.Sprintf("%d", z.WritePointer)
		}
		fmt.Printf("  %5d  %-26s  %-17s  %12d  %10d  %12s\n",
			i, z.Type, z.Condition, z.Start, z.Length, wp)
	}
	return nil
}
