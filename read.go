package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/TweakySolution/libzbc/readzone"
	"github.com/TweakySolution/libzbc/zbd"
	"github.com/TweakySolution/libzbc/zoneview"
)

type readOptions struct {
	device  string
	zone    int
	ioSize  int64
	direct  bool
	vio     bool
	nio     uint64
	ofst    int64
	file    string
	showUI  bool
	verbose bool
}

func readCmd() *cobra.Command {
	var opts readOptions
	cmd := &cobra.Command{
		Use:   "read [flags] <device> <zone no> <I/O size (B)>",
		Short: "Read a zone up to the current write pointer",
		Long: "Read a zone up to the current write pointer, or until the requested\n" +
			"number of I/Os is executed. With -f the zone content is written to a\n" +
			"file, or to standard output when the file is \"-\".",
		Args: cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			opts.device = args[0]

			zidx, err := strconv.Atoi(args[1])
			if err != nil || zidx < 0 {
				return fmt.Errorf("invalid zone number %q", args[1])
			}
			opts.zone = zidx

			opts.ioSize, err = parseSize(args[2])
			if err != nil || opts.ioSize <= 0 {
				return fmt.Errorf("invalid I/O size %q", args[2])
			}
			if opts.ofst < 0 {
				return fmt.Errorf("invalid sector offset %d", opts.ofst)
			}
			return runRead(opts)
		},
	}

	cmd.Flags().BoolVar(&opts.direct, "dio", false, "use direct I/Os")
	cmd.Flags().BoolVar(&opts.vio, "vio", false, "use the vector I/O interface")
	cmd.Flags().Uint64Var(&opts.nio, "nio", 0, "limit the number of I/Os (0 = unbounded)")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "write the zone content to a file, or to standard output if \"-\"")
	cmd.Flags().Int64Var(&opts.ofst, "ofst", 0, "sector offset from the start sector of the zone")
	cmd.Flags().BoolVar(&opts.showUI, "ui", false, "show a fullscreen read progress view")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose mode")

	return cmd
}

func runRead(opts readOptions) error {
	log := newLogger(opts.verbose)
	defer log.Sync()

	dev, err := zbd.Open(opts.device, zbd.Options{Direct: opts.direct, Logger: log})
	if err != nil {
		if errors.Is(err, zbd.ErrNotZoned) {
			return fmt.Errorf("open %s failed (not a zoned block device)", opts.device)
		}
		return errors.Wrapf(err, "open %s failed", opts.device)
	}
	defer dev.Close()

	info := dev.Info()
	printDeviceInfo(info)

	zones, err := dev.ReportZones()
	if err != nil {
		return errors.Wrap(err, "report zones failed")
	}

	zone, err := readzone.TargetZone(zones, opts.zone)
	if err != nil {
		return err
	}
	printTargetZone(zone, opts.zone, len(zones))

	buf, err := readzone.NewIOBuffer(opts.ioSize, info.LogicalBlockSize)
	if err != nil {
		return err
	}
	defer buf.Close()

	var sink *readzone.Sink
	if opts.file != "" {
		sink, err = readzone.OpenSink(opts.file)
		if err != nil {
			return err
		}
		if sink.Stdout() {
			fmt.Printf("Writing target zone %d to standard output, %d B I/Os\n",
				opts.zone, opts.ioSize)
		} else {
			fmt.Printf("Writing target zone %d to file %q, %d B I/Os\n",
				opts.zone, opts.file, opts.ioSize)
		}
	} else if opts.nio == 0 {
		fmt.Printf("Reading target zone %d, %d B I/Os\n", opts.zone, opts.ioSize)
	} else {
		fmt.Printf("Reading target zone %d, %d I/Os of %d B\n",
			opts.zone, opts.nio, opts.ioSize)
	}

	// The handlers only raise the flag; the loop observes it at the top
	// of each iteration and never interrupts an in-flight read.
	var abort atomic.Bool
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sigCh)
	go func() {
		for range sigCh {
			abort.Store(true)
		}
	}()

	cfg := readzone.Config{
		Vectored:     opts.vio,
		IOLimit:      opts.nio,
		SectorOffset: opts.ofst,
		Abort:        &abort,
		Logger:       log,
	}
	if sink != nil {
		cfg.Sink = sink
	}

	var ui *zoneview.UI
	if opts.showUI && (sink == nil || !sink.Stdout()) {
		ui, err = zoneview.NewUI()
		if err != nil {
			return errors.Wrap(err, "ui init")
		}
		go func() {
			<-ui.Stopped()
			abort.Store(true)
		}()
		cfg.Observer = uiObserver(ui, zone, opts)
	}

	sess := readzone.NewSession(dev, zone, buf, cfg)
	rep, reason, runErr := sess.Run()

	if ui != nil {
		ui.Close()
	}

	fmt.Print(rep.String())
	log.Debug("run complete: " + reason.String())

	if sink != nil {
		if cerr := sink.Close(runErr == nil); cerr != nil && runErr == nil {
			runErr = errors.Wrap(cerr, "close output")
		}
	}
	return runErr
}

func printDeviceInfo(info zbd.Info) {
	fmt.Printf("Device %s:\n", info.Path)
	if info.Model != "" {
		fmt.Printf("    Model: %s\n", info.Model)
	}
	fmt.Printf("    Logical block size: %d B\n", info.LogicalBlockSize)
	if info.PhysicalBlockSize > 0 {
		fmt.Printf("    Physical block size: %d B\n", info.PhysicalBlockSize)
	}
	fmt.Printf("    Capacity: %d sectors (%s)\n",
		info.CapacitySectors, human(info.CapacitySectors<<zbd.SectorShift))
	fmt.Printf("    Zones: %d of %d sectors\n", info.NrZones, info.ZoneSectors)
}

func printTargetZone(zone zbd.Zone, idx, total int) {
	if zone.Conventional() {
		fmt.Printf("Target zone: Conventional zone %d / %d, sector %d, %d sectors\n",
			idx, total, zone.Start, zone.Length)
		return
	}
	fmt.Printf("Target zone: Zone %d / %d, type 0x%x (%s), cond 0x%x (%s), sector %d, %d sectors, wp %d\n",
		idx, total,
		uint8(zone.Type), zone.Type,
		uint8(zone.Condition), zone.Condition,
		zone.Start, zone.Length, zone.WritePointer)
}

// uiObserver wires the read loop into the progress view: it marks the
// tracker, rebuilds the status block, and redraws.
func uiObserver(ui *zoneview.UI, zone zbd.Zone, opts readOptions) func(offset, transferred int64) {
	readable := readzone.ReadableSectors(zone)
	tracker := zoneview.NewTracker(readable, int64(zone.Length))
	start := time.Now()

	ui.SetTitle(fmt.Sprintf("READ – ZONE %d  %s", opts.zone, opts.device))
	ui.SetSummaryLines([]string{
		fmt.Sprintf("Zone: %s, %s  sector %d, %d sectors, wp %d",
			zone.Type, zone.Condition, zone.Start, zone.Length, zone.WritePointer),
		fmt.Sprintf("I/O unit: %d B  vectored: %v  direct: %v",
			opts.ioSize, opts.vio, opts.direct),
	})
	ui.SetLegend([]string{
		"Legend:  █ read   ░ pending   ■ beyond write pointer | Q to quit",
	})
	ui.LayoutAndDraw()

	var bytes, ios uint64
	return func(offset, transferred int64) {
		tracker.MarkRange(offset-transferred, transferred)
		bytes += uint64(transferred) << zbd.SectorShift
		ios++

		elapsed := time.Since(start).Truncate(time.Second)
		var rate, eta string
		if secs := time.Since(start).Seconds(); secs > 0 {
			bps := float64(bytes) / secs
			rate = human(int64(bps)) + "/s"
			if bps > 0 {
				remain := (readable - offset) << zbd.SectorShift
				eta = time.Duration(float64(remain) / bps * float64(time.Second)).
					Truncate(time.Second).String()
			}
		}
		ui.SetStatusLines([]string{
			fmt.Sprintf("Offset: %d / %d sectors", offset, readable),
			fmt.Sprintf("Read: %s (%d I/Os)", human(int64(bytes)), ios),
			fmt.Sprintf("Elapsed: %s   Rate: %s   ETA: %s", elapsed, rate, eta),
		})
		w, _ := ui.Size()
		ui.SetZoneMap(tracker.MapLines(w, ui.MapRows()))
		ui.LayoutAndDraw()
	}
}
