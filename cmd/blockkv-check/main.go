// blockkv-check drives sustained concurrent set/get/delete traffic
// against a store and reports any observed inconsistency. It is a
// correctness fuzzer, not a benchmark: throughput is incidental.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jkasperson/blockkv/internal/checker"
	"github.com/jkasperson/blockkv/internal/dbconfig"
	"github.com/jkasperson/blockkv/store"
)

const (
	insertState = "insert"
	getState    = "get"
	updateState = "update"
	removeState = "remove"
	afterState  = "getAfter"
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
	sugar := logger.Sugar()

	db, err := store.Open(cfg.Path, store.Config{BufferValues: cfg.BufferValues, InMemoryValues: cfg.InMemoryValues}, logger)
	if err != nil {
		sugar.Fatalw("open failed", "path", cfg.Path, "error", err)
	}
	defer db.Close()

	sv := checker.NewSupervisor(logger)

	insert := checker.NewState(insertState, 2, logger)
	insert.SetStep(func(r checker.Round) (checker.Round, error) {
		if err := db.Set(r.Key, r.Want); err != nil {
			return checker.Round{}, err
		}
		r.Next = getState
		return r, nil
	})
	sv.Add(insert)

	get := checker.NewState(getState, 2, logger)
	get.SetStep(func(r checker.Round) (checker.Round, error) {
		v, err := db.Get(r.Key)
		if err != nil {
			return checker.Round{}, err
		}
		r.Got = v.AsString()
		if rand.Intn(2) == 0 {
			r.Next = updateState
		} else {
			r.Next = removeState
		}
		return r, nil
	})
	get.SetVerify(func(before, after checker.Round) error {
		if before.Want != after.Got {
			return fmt.Errorf("get mismatch for %s: want=%v got=%v", after.Key, before.Want, after.Got)
		}
		return nil
	})
	sv.Add(get)

	update := checker.NewState(updateState, 2, logger)
	update.SetStep(func(r checker.Round) (checker.Round, error) {
		newValue := r.Key + "-updated-" + uuid.NewString()
		if err := db.Set(r.Key, newValue); err != nil {
			return checker.Round{}, err
		}
		r.Want = newValue
		r.Next = afterState
		return r, nil
	})
	sv.Add(update)

	remove := checker.NewState(removeState, 2, logger)
	remove.SetStep(func(r checker.Round) (checker.Round, error) {
		if err := db.Delete(r.Key); err != nil {
			return checker.Round{}, err
		}
		r.Want = nil
		r.Next = afterState
		return r, nil
	})
	sv.Add(remove)

	after := checker.NewState(afterState, 2, logger)
	after.SetStep(func(r checker.Round) (checker.Round, error) {
		v, err := db.Get(r.Key)
		if err != nil {
			if r.Want == nil {
				r.Got = nil
				return r, nil
			}
			return checker.Round{}, err
		}
		r.Got = v.AsString()
		return r, nil
	})
	after.SetVerify(func(before, after checker.Round) error {
		if before.Want == nil {
			if after.Got != nil {
				return fmt.Errorf("delete did not take effect for %s, got=%v", after.Key, after.Got)
			}
			return nil
		}
		if before.Want != after.Got {
			return fmt.Errorf("post-update mismatch for %s: want=%v got=%v", after.Key, before.Want, after.Got)
		}
		return nil
	})
	sv.Add(after)

	counter := 0
	sv.SetSource(func() (checker.Round, error) {
		time.Sleep(10 * time.Millisecond)
		counter++
		key := "check-" + strconv.Itoa(counter) + "-" + uuid.NewString()
		return checker.Round{Next: insertState, Key: key, Want: key + "-value-" + uuid.NewString()}, nil
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	sugar.Infow("blockkv-check running", "path", cfg.Path)
	if err := sv.Run(ctx); err != nil {
		sugar.Fatalw("checker stopped", "error", err)
	}
}
