// Package dict compiles the verb, actor, agent, discard and issue
// dictionaries into the immutable in-memory tables consumed by the coder.
//
// All dictionaries share a line-oriented format: blank lines and lines
// beginning with '#' or '<!' are skipped, ' #' starts an in-line comment,
// and '<!-- ... -->' comments may span lines. Malformed entries are logged
// and skipped; compilation never aborts on a bad entry.
package dict

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// lineReader yields cleaned, non-empty dictionary lines
type lineReader struct {
	scanner *bufio.Scanner
	lineno  int
}

func newLineReader(f *os.File) *lineReader {
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &lineReader{scanner: sc}
}

// next returns the next content line, or ok=false at EOF
func (r *lineReader) next() (string, bool) {
	for r.scanner.Scan() {
		r.lineno++
		line := r.scanner.Text()
		if line == "" || line[0] == '#' || strings.HasPrefix(line, "<!") {
			if !strings.HasPrefix(line, "<!--") || strings.Contains(line, "-->") {
				continue
			}
			// multi-line comment: skip to the closing delimiter
			for r.scanner.Scan() {
				r.lineno++
				if strings.Contains(r.scanner.Text(), "-->") {
					break
				}
			}
			continue
		}
		if idx := strings.LastIndex(line, " #"); idx >= 0 {
			line = line[:idx]
		}
		if open := strings.Index(line, "<!--"); open >= 0 {
			if close := strings.Index(line, "-->"); close > open {
				line = line[:open] + line[close+3:]
			} else {
				line = line[:open]
				for r.scanner.Scan() {
					r.lineno++
					if strings.Contains(r.scanner.Text(), "-->") {
						break
					}
				}
			}
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		return line, true
	}
	return "", false
}

// openDict opens a required dictionary file; a missing file is fatal to startup
func openDict(path, kind string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s dictionary: %w", kind, err)
	}
	return f, nil
}

// nopLogger is used when the caller does not supply a logger
func nopLogger(log *zap.SugaredLogger) *zap.SugaredLogger {
	if log == nil {
		return zap.NewNop().Sugar()
	}
	return log
}
