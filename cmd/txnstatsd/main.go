// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// txnstatsd runs the whole pipeline in one process: the CSV importer, the
// stream aggregator, the retention archiver, and the HTTP query surface.
// Each hot-store role gets its own client so the aggregator's blocking
// group reads never head-of-line block the query path.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"txnstats/internal/aggregate"
	"txnstats/internal/api"
	"txnstats/internal/archive"
	"txnstats/internal/coldstore"
	"txnstats/internal/config"
	"txnstats/internal/hotstore"
	"txnstats/internal/importer"
	"txnstats/internal/stats"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Configuration failure")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.WithField("log_level", cfg.LogLevel).Warn("Unknown log level, keeping info")
	}

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("Startup failure")
	}
}

func run(cfg config.Settings, log *logrus.Logger) error {
	redisOpts := hotstore.Options{
		Addr:     cfg.Redis.Addr(),
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
	}

	// One hot-store client per role: producer, consumer, archiver, query.
	producer := hotstore.NewGoRedisClient(redisOpts)
	consumer := hotstore.NewGoRedisClient(redisOpts)
	archiver := hotstore.NewGoRedisClient(redisOpts)
	query := hotstore.NewGoRedisClient(redisOpts)
	defer func() {
		for _, c := range []*hotstore.GoRedisClient{producer, consumer, archiver, query} {
			_ = c.Close()
		}
	}()

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStartup()
	if err := producer.Ping(startupCtx); err != nil {
		return err
	}

	// Separate cold-store clients for the writer and the reader.
	coldWriter, err := coldstore.Connect(startupCtx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
	if err != nil {
		return err
	}
	coldReader, err := coldstore.Connect(startupCtx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
	if err != nil {
		return err
	}

	imp, err := importer.New(cfg.CSVPath, producer, cfg.BatchSize, log)
	if err != nil {
		return err
	}
	agg := aggregate.New(consumer, aggregate.Options{}, log)
	arch := archive.New(archiver, coldWriter, archive.Options{}, log)
	svc := stats.New(query, coldReader, 0, log)
	server := api.NewServer(svc, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	spawn := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).WithField("task", name).Error("Background task crashed")
			}
		}()
	}
	spawn("csv-importer", imp.Run)
	spawn("aggregator", agg.Run)
	spawn("archiver", arch.Run)

	if err := server.ListenAndServe(ctx, cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("HTTP server failed")
		stop()
	}
	wg.Wait()

	closeCtx, cancelClose := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelClose()
	_ = coldWriter.Close(closeCtx)
	_ = coldReader.Close(closeCtx)

	log.Info("Shutdown complete")
	return nil
}
