// Package dbconfig parses the command-line flags shared by the REPL shell
// and the consistency checker, grounded on the teacher's flag-based
// internal/config.Config.
package dbconfig

import "flag"

// Config holds the store's two behavioral switches plus the file it opens.
type Config struct {
	Path           string
	BufferValues   bool
	InMemoryValues bool
}

// Parse reads os.Args via the flag package, matching the teacher's
// STORE_FILE/RESTORE flag idiom. args should be the program's argument
// list after the binary name (flag.CommandLine.Parse semantics).
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("blockkv", flag.ContinueOnError)
	path := fs.String("db", "./test.db", "database file path")
	bufferValues := fs.Bool("buffer-values", false, "store values as raw bytes instead of UTF-8 strings")
	inMemoryValues := fs.Bool("in-memory-values", true, "cache values in the index instead of re-reading them from disk")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := &Config{
		Path:           *path,
		BufferValues:   *bufferValues,
		InMemoryValues: *inMemoryValues,
	}

	if positional := fs.Args(); len(positional) > 0 {
		cfg.Path = positional[0]
	}

	return cfg, nil
}
