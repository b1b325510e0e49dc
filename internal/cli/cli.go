// Package cli parses lectern command-line arguments.
package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandCapture Command = "capture"
	CommandProcess Command = "process"
	CommandStop    Command = "stop"
	CommandCancel  Command = "cancel"
	CommandStatus  Command = "status"
	CommandChat    Command = "chat"
	CommandQuiz    Command = "quiz"
	CommandExport  Command = "export"
	CommandList    Command = "list"
	CommandDevices Command = "devices"
	CommandDoctor  Command = "doctor"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

// positionalArity maps commands to their required positional argument count.
var positionalArity = map[Command]int{
	CommandCapture: 0,
	CommandProcess: 1,
	CommandStop:    0,
	CommandCancel:  0,
	CommandStatus:  0,
	CommandChat:    1,
	CommandQuiz:    0,
	CommandExport:  0,
	CommandList:    0,
	CommandDevices: 0,
	CommandDoctor:  0,
	CommandVersion: 0,
	CommandHelp:    0,
}

// positionalName names each command's positional, for error messages.
var positionalName = map[Command]string{
	CommandProcess: "FILE",
	CommandChat:    "QUESTION",
}

type Parsed struct {
	Command    Command
	Positional string
	ConfigPath string
	ShowHelp   bool
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}
	positionals := []string{}
	haveCommand := false

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
			return parsed, nil
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			if !haveCommand {
				cmd := Command(arg)
				if _, ok := positionalArity[cmd]; !ok {
					return Parsed{}, fmt.Errorf("unknown command: %s", arg)
				}
				parsed.Command = cmd
				parsed.ShowHelp = cmd == CommandHelp
				haveCommand = true
				continue
			}
			positionals = append(positionals, arg)
		}
	}

	if haveCommand {
		want := positionalArity[parsed.Command]
		switch {
		case len(positionals) < want:
			return Parsed{}, fmt.Errorf("%s requires a %s argument", parsed.Command, positionalName[parsed.Command])
		case len(positionals) > want && want > 0:
			// A multi-word question is a common slip; join it instead of failing.
			if parsed.Command == CommandChat {
				positionals = []string{strings.Join(positionals, " ")}
				break
			}
			return Parsed{}, fmt.Errorf("unexpected arguments after %s", parsed.Command)
		case len(positionals) > want:
			return Parsed{}, fmt.Errorf("unexpected arguments after %s", parsed.Command)
		}
		if want > 0 {
			parsed.Positional = positionals[0]
		}
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] <command> [args]

Commands:
  capture          Record a lecture from the microphone until stop/cancel
  process FILE     Submit an audio file for processing
  stop             Stop the active recording and process it
  cancel           Cancel the active recording and discard the audio
  status           Print pipeline state (and elapsed time while recording)
  chat QUESTION    Ask a question about the latest processed lecture
  quiz             Print the quiz for the latest processed lecture
  export           Write the notes document (Markdown + HTML)
  list             List processed lectures in the library
  devices          List available input devices
  doctor           Run configuration and environment checks
  version          Print version information
  help             Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/lectern/config.yaml)
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
