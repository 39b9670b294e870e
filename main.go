package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"yt-audio/cmd"
	"yt-audio/internal/config"
	"yt-audio/internal/logging"
	"yt-audio/internal/metrics"
	"yt-audio/internal/player"
)

func main() {
	// ─── Step 1: Parse CLI arguments ───
	args, err := cmd.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Println("[ERROR]", err)
		cmd.PrintUsageAndExit()
	}

	// ─── Step 2: Load config and logger ───
	cfg, err := config.Load(args.ConfigPath)
	if err != nil {
		fmt.Println("[ERROR]", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Logging)

	app, err := cmd.NewApp(cfg, logger, metrics.NewMetrics(prometheus.DefaultRegisterer))
	if err != nil {
		fmt.Println("[ERROR]", err)
		os.Exit(1)
	}

	// ─── Step 3: Check dependencies ───
	if err := app.Checker().Check(os.Stdout); err != nil {
		os.Exit(1)
	}

	if args.Platform != "" {
		if err := app.UsePlatform(args.Platform); err != nil {
			fmt.Println("[ERROR]", err)
			os.Exit(1)
		}
	}

	p := app.NewPlayer(args.URL)
	defer p.Close()

	// ─── Step 4: Report session errors as they happen ───
	sub := p.Subscribe()
	go func() {
		for {
			select {
			case e := <-sub.Error:
				fmt.Printf("\n[ERROR] %s: %v\n> ", e.Operation, e.Err)
			case <-sub.Done:
				return
			}
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Println("[INFO] URL:", args.URL)
	if args.StartSet() {
		play(p, args.Start)
	}

	// ─── Step 5: Read commands until exit or signal ───
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	fmt.Println("[INFO] Enter a start time in seconds, 'stop', 'status' or 'exit'")
	for {
		fmt.Print("> ")
		select {
		case <-ctx.Done():
			fmt.Println("\n[INFO] Stopping...")
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			command, err := cmd.ParseCommand(line)
			if err != nil {
				fmt.Println("[ERROR]", err)
				continue
			}
			switch command.Kind {
			case cmd.CommandPlay:
				play(p, command.Offset)
			case cmd.CommandStop:
				p.Stop()
				fmt.Println("[INFO] Stopped.")
			case cmd.CommandStatus:
				fmt.Printf("[INFO] %s %s / %s\n", p.State(), p.Position().Round(time.Second), p.Duration())
			case cmd.CommandExit:
				fmt.Println("[INFO] Done.")
				return
			}
		}
	}
}

func play(p *player.Player, offset time.Duration) {
	if err := p.Play(offset); err != nil {
		fmt.Println("[ERROR]", err)
		return
	}
	fmt.Printf("[INFO] Playing %q from %s\n", p.Title(), offset)
}
