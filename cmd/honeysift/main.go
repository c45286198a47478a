package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mtokuda/honeysift/internal/cli"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	prog := filepath.Base(os.Args[0])
	if len(os.Args) < 2 {
		printRootHelp(os.Stderr, prog)
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	cmd := os.Args[1]
	args := normalizeSubcommandHelpArgs(os.Args[2:])

	switch cmd {
	case "classify":
		err = cli.ClassifyCommand(ctx, args)
	case "analyze":
		err = cli.AnalyzeCommand(ctx, args)
	case "insights":
		err = cli.InsightsCommand(ctx, args)
	case "train":
		err = cli.TrainCommand(ctx, args)
	case "history":
		err = cli.HistoryCommand(ctx, args)
	case "help", "-h", "--help":
		printRootHelp(os.Stdout, prog)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		printRootHelp(os.Stderr, prog)
		return 2
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func normalizeSubcommandHelpArgs(args []string) []string {
	// Support: `honeysift <subcommand> help`
	if len(args) > 0 && args[0] == "help" {
		return []string{"-h"}
	}
	return args
}

func printRootHelp(w io.Writer, prog string) {
	fmt.Fprintf(w, "%s: SSH honeypot command intent analysis\n\n", prog)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  %s <command> [args]\n\n", prog)

	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  classify   Classify ad-hoc commands by attacker intent.")
	fmt.Fprintln(w, "  analyze    Run one analysis cycle over the honeypot log.")
	fmt.Fprintln(w, "  insights   Show the latest persisted insight report.")
	fmt.Fprintln(w, "  train      Refit the model from labeled JSONL data.")
	fmt.Fprintln(w, "  history    List recent analysis cycles.")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Examples:")
	fmt.Fprintf(w, "  %s classify 'sudo -l' 'ls -la'\n", prog)
	fmt.Fprintf(w, "  %s analyze -config honeysift.yaml\n", prog)
	fmt.Fprintf(w, "  %s insights -json\n", prog)
	fmt.Fprintf(w, "  %s train -data labeled.jsonl\n\n", prog)

	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  HONEYSIFT_LOG_PATH        Honeypot command log (default: log_files/cmd_audits.log)")
	fmt.Fprintln(w, "  HONEYSIFT_MODEL_PATH      Model artifact path")
	fmt.Fprintln(w, "  HONEYSIFT_ANALYTICS_DIR   Insight snapshot directory")
	fmt.Fprintln(w, "  HONEYSIFT_MIN_COMMANDS    Minimum commands per analysis cycle")
	fmt.Fprintln(w, "  HONEYSIFT_MAX_SNAPSHOTS   Retained snapshot files")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Help:")
	fmt.Fprintf(w, "  %s <command> -h\n", prog)
}
