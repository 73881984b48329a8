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

// Package config loads the process configuration from environment
// variables, with an optional .env file merged first for local and docker
// parity. A missing required variable is a startup-fatal error that names
// the variable.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// RedisSettings configures every hot-store client role.
type RedisSettings struct {
	Host            string
	Port            int
	Username        string
	Password        string
	DecodeResponses bool
}

// Addr returns the host:port dial address.
func (r RedisSettings) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// MongoSettings configures the cold-store client.
type MongoSettings struct {
	URI        string
	Database   string
	Collection string
}

// Settings is the full application configuration.
type Settings struct {
	Redis     RedisSettings
	Mongo     MongoSettings
	CSVPath   string
	BatchSize int
	LogLevel  string
	HTTPAddr  string
}

// Load reads the configuration. A .env file in the working directory is
// merged into the environment first (existing variables win, matching
// godotenv semantics).
func Load() (Settings, error) {
	// Best effort: absence of .env is not an error.
	_ = godotenv.Load()

	var s Settings
	var err error

	if s.Redis.Host, err = required("REDIS_HOST"); err != nil {
		return Settings{}, err
	}
	if s.Redis.Port, err = intEnv("REDIS_PORT", 6379); err != nil {
		return Settings{}, err
	}
	s.Redis.Username = os.Getenv("REDIS_USERNAME")
	s.Redis.Password = os.Getenv("REDIS_PASSWORD")
	s.Redis.DecodeResponses = boolEnv("REDIS_DECODE_RESPONSES", true)

	if s.Mongo.URI, err = required("MONGODB_URI"); err != nil {
		return Settings{}, err
	}
	if s.Mongo.Database, err = required("MONGODB_DATABASE"); err != nil {
		return Settings{}, err
	}
	if s.Mongo.Collection, err = required("MONGODB_COLLECTION"); err != nil {
		return Settings{}, err
	}

	s.CSVPath = getEnv("CSV_PATH", "sorted_transactions.csv")
	if s.BatchSize, err = intEnv("BATCH_SIZE", 10); err != nil {
		return Settings{}, err
	}
	s.LogLevel = getEnv("LOG_LEVEL", "info")
	s.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	return s, nil
}

func required(name string) (string, error) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return "", fmt.Errorf("missing required environment variable: %s", name)
	}
	return v, nil
}

func getEnv(name, def string) string {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		return v
	}
	return def
}

func intEnv(name string, def int) (int, error) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %q", name, v)
	}
	return n, nil
}

func boolEnv(name string, def bool) bool {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return def
	}
	switch v {
	case "1", "true", "yes", "on", "True", "TRUE":
		return true
	}
	return false
}
