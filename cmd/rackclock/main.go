package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	_ "time/tzdata"

	"github.com/calvinmclean/rackclock/host"
	"github.com/calvinmclean/rackclock/ui"
)

func main() {
	cfg := host.ConfigFromEnv()
	flag.StringVar(&cfg.SerialPort, "port", cfg.SerialPort, "Serial port of the firmware, or \"None\" to run simulated hardware. Default is the first USB serial port")
	flag.StringVar(&cfg.BaudRate, "baud", cfg.BaudRate, "Serial baud rate")
	flag.StringVar(&cfg.FollowInterval, "follow", cfg.FollowInterval, "Push this computer's time to the clock on an interval like \"1m\"")
	flag.StringVar(&cfg.Timezone, "tz", cfg.Timezone, "Timezone used by sync and follow")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if os.Getenv("ENABLE_UI") == "true" {
		runUI(ctx, cfg)
		return
	}

	runCLI(ctx, cfg)
}

func runUI(ctx context.Context, cfg host.Config) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	clockUI := ui.NewClockUI()

	var c *host.Controller
	defer func() {
		if c != nil {
			c.Close()
		}
	}()

	connect := func(cfg host.Config) (io.Writer, error) {
		var err error
		c, err = host.New(cfg)
		if err != nil {
			return nil, err
		}

		r, w := io.Pipe()

		// read from Stdin also
		go func() {
			_, _ = io.Copy(w, os.Stdin)
		}()

		go func() {
			err := c.Run(ctx, r, io.MultiWriter(os.Stdout, clockUI))
			if err != nil {
				panic(err)
			}
		}()

		return w, nil
	}

	clockUI.Run(ctx, &cfg, connect)
	cancel()
}

func runCLI(ctx context.Context, cfg host.Config) {
	c, err := host.New(cfg)
	if err != nil {
		panic(err)
	}
	defer c.Close()

	err = c.Run(ctx, os.Stdin, os.Stdout)
	if err != nil {
		panic(err)
	}
}
