package honeylog

import (
	"bufio"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
)

// linePattern matches the command lines the SSH honeypot appends to its audit
// log. The command text may contain anything except the delimiting quote; the
// source address is captured but carried along only as metadata.
var linePattern = regexp.MustCompile(`Command b'([^']*)'executed by (\d+\.\d+\.\d+\.\d+)`)

// Entry is one extracted command line.
type Entry struct {
	Command  string
	SourceIP string
}

// Parser extracts attacker commands from an append-only honeypot session log.
type Parser struct {
	path string
	log  *slog.Logger
}

func NewParser(path string, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{path: path, log: logger}
}

// Parse returns the entries in file order. Non-matching lines are skipped
// silently. A missing log file yields an empty result without noise; any
// other read failure is logged and also yields an empty result, so callers
// never branch on a parse error.
func (p *Parser) Parse() []Entry {
	f, err := os.Open(p.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			p.log.Error("open honeypot log", "path", p.path, "error", err)
		}
		return nil
	}
	defer f.Close()

	var out []Entry
	s := bufio.NewScanner(f)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	for s.Scan() {
		m := linePattern.FindStringSubmatch(s.Text())
		if m == nil {
			continue
		}
		out = append(out, Entry{Command: m[1], SourceIP: m[2]})
	}
	if err := s.Err(); err != nil {
		p.log.Error("scan honeypot log", "path", p.path, "error", err)
		return nil
	}
	return out
}

// Commands projects the command strings out of entries, preserving order.
func Commands(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Command
	}
	return out
}
