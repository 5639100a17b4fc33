// blockkv-shell is an interactive line-command REPL over a store package
// database, analogous to a redis-cli session against a single embedded
// file. See SPEC_FULL.md's REPL section for the command grammar.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/jkasperson/blockkv/internal/dbconfig"
	"github.com/jkasperson/blockkv/store"
)

func main() {
	cfg, err := dbconfig.Parse(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	db, err := store.Open(cfg.Path, store.Config{BufferValues: cfg.BufferValues, InMemoryValues: cfg.InMemoryValues}, logger)
	if err != nil {
		logger.Sugar().Fatalw("open failed", "path", cfg.Path, "error", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	fmt.Printf("blockkv-shell: %s (%d keys loaded)\n", cfg.Path, db.Size())
	fmt.Println("commands: has get set del clear size keys vals entries quit")

	done := make(chan struct{})
	go runREPL(db, done)

	select {
	case <-ctx.Done():
		fmt.Println("\nsignal received, closing")
	case <-done:
	}
}

func runREPL(db *store.Store, done chan<- struct{}) {
	defer close(done)
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			if quit := dispatch(db, line); quit {
				return
			}
		}
		fmt.Print("> ")
	}
}

// dispatch runs one REPL line and reports whether the shell should exit.
func dispatch(db *store.Store, line string) (quit bool) {
	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "quit", "exit":
		return true

	case "has":
		if len(args) != 1 {
			fmt.Println("Syntax error")
			return false
		}
		if db.Has(args[0]) {
			fmt.Println("yes")
		} else {
			fmt.Println("no")
		}

	case "get":
		if len(args) != 1 {
			fmt.Println("Syntax error")
			return false
		}
		v, err := db.Get(args[0])
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				fmt.Println("<not found>")
				return false
			}
			fmt.Println("error:", err)
			return false
		}
		fmt.Println(v.AsString())

	case "set":
		if len(args) < 2 {
			fmt.Println("Syntax error")
			return false
		}
		value := strings.Join(args[1:], " ")
		if err := db.Set(args[0], value); err != nil {
			fmt.Println("error:", err)
			return false
		}
		fmt.Println("OK")

	case "del", "delete":
		if len(args) != 1 {
			fmt.Println("Syntax error")
			return false
		}
		if err := db.Delete(args[0]); err != nil {
			fmt.Println("error:", err)
			return false
		}
		fmt.Println("OK")

	case "clear":
		if len(args) != 0 {
			fmt.Println("Syntax error")
			return false
		}
		if err := db.Clear(); err != nil {
			fmt.Println("error:", err)
			return false
		}
		fmt.Println("OK")

	case "size":
		if len(args) != 0 {
			fmt.Println("Syntax error")
			return false
		}
		fmt.Println(db.Size())

	case "keys":
		if len(args) != 0 {
			fmt.Println("Syntax error")
			return false
		}
		for _, k := range db.Keys() {
			fmt.Println(k)
		}

	case "vals", "values":
		if len(args) != 0 {
			fmt.Println("Syntax error")
			return false
		}
		values, err := db.Values()
		if err != nil {
			fmt.Println("error:", err)
			return false
		}
		for _, v := range values {
			fmt.Println(v.AsString())
		}

	case "l", "list", "entries":
		if len(args) != 0 {
			fmt.Println("Syntax error")
			return false
		}
		entries, err := db.Entries()
		if err != nil {
			fmt.Println("error:", err)
			return false
		}
		for i, e := range entries {
			fmt.Println(strconv.Itoa(i)+":", e.Key, "=", e.Value.AsString())
		}

	default:
		fmt.Printf("Unknown command: %s\n", cmd)
	}
	return false
}
