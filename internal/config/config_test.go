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

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("MONGODB_DATABASE", "txnstats")
	t.Setenv("MONGODB_COLLECTION", "daily_stats")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)
	s, err := Load()
	require.NoError(t, err)
	require.Equal(t, "localhost:6379", s.Redis.Addr())
	require.True(t, s.Redis.DecodeResponses)
	require.Equal(t, 10, s.BatchSize)
	require.Equal(t, "info", s.LogLevel)
	require.Equal(t, ":8080", s.HTTPAddr)
}

func TestLoadMissingRequiredNamesVariable(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("MONGODB_DATABASE", "")
	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "MONGODB_DATABASE")
}

func TestLoadOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("REDIS_PORT", "7000")
	t.Setenv("BATCH_SIZE", "4")
	t.Setenv("REDIS_DECODE_RESPONSES", "false")
	t.Setenv("LOG_LEVEL", "debug")
	s, err := Load()
	require.NoError(t, err)
	require.Equal(t, 7000, s.Redis.Port)
	require.Equal(t, 4, s.BatchSize)
	require.False(t, s.Redis.DecodeResponses)
	require.Equal(t, "debug", s.LogLevel)
}

func TestLoadRejectsBadInteger(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("BATCH_SIZE", "ten")
	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "BATCH_SIZE")
}
