package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"yt-audio/internal/player"
)

// CommandKind identifies an interactive command.
type CommandKind int

const (
	CommandPlay CommandKind = iota
	CommandStop
	CommandStatus
	CommandExit
)

// Command is one parsed line of interactive input.
type Command struct {
	Kind   CommandKind
	Offset time.Duration // CommandPlay only
}

// ParseCommand parses a prompt line. A bare number plays from that second.
func ParseCommand(line string) (Command, error) {
	line = strings.ToLower(strings.TrimSpace(line))

	switch line {
	case "exit", "quit", "q":
		return Command{Kind: CommandExit}, nil
	case "stop", "s":
		return Command{Kind: CommandStop}, nil
	case "status", "":
		return Command{Kind: CommandStatus}, nil
	}

	secs, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return Command{}, fmt.Errorf("unknown command %q", line)
	}
	offset, err := player.OffsetFromSeconds(secs)
	if err != nil {
		return Command{}, err
	}
	return Command{Kind: CommandPlay, Offset: offset}, nil
}
