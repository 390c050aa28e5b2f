/*
 * Copyright 2025 payrail.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package utils holds shared helpers: a logrus-backed named logger registry
// and environment lookup utilities.
package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

type Logger = logrus.Logger

var (
	defaultConsoleLevel = logrus.InfoLevel
	loggerRegistryMu    sync.RWMutex
	loggerRegistry      = map[string]*logrus.Logger{}
)

// EnvDefaultString returns the environment value for key, or def when unset.
func EnvDefaultString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// EnvDefaultBool returns the environment value for key parsed as a bool, or
// def when unset or unparsable.
func EnvDefaultBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

type nameFormatter struct {
	loggerName      string
	timestampFormat string
}

func (f *nameFormatter) Format(e *logrus.Entry) ([]byte, error) {
	level := strings.ToUpper(e.Level.String())
	line := fmt.Sprintf("%s %-5s [%s] %s\n",
		e.Time.Format(f.timestampFormat), level, f.loggerName, e.Message)
	return []byte(line), nil
}

func parseLevel(s string) (logrus.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return logrus.TraceLevel, true
	case "debug":
		return logrus.DebugLevel, true
	case "info":
		return logrus.InfoLevel, true
	case "warn", "warning":
		return logrus.WarnLevel, true
	case "error":
		return logrus.ErrorLevel, true
	default:
		return logrus.InfoLevel, false
	}
}

// NewLogger returns the named logger, creating and registering it on first
// use. The initial level comes from LOG_LEVEL_<NAME>, then LOG_LEVEL, then
// the package default.
func NewLogger(name string) *logrus.Logger {
	loggerRegistryMu.RLock()
	l, ok := loggerRegistry[name]
	loggerRegistryMu.RUnlock()
	if ok {
		return l
	}

	loggerRegistryMu.Lock()
	defer loggerRegistryMu.Unlock()
	if l, ok = loggerRegistry[name]; ok {
		return l
	}

	l = logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&nameFormatter{
		loggerName:      name,
		timestampFormat: "2006-01-02 15:04:05.000",
	})

	level := defaultConsoleLevel
	if s := EnvDefaultString("LOG_LEVEL_"+strings.ToUpper(name), EnvDefaultString("LOG_LEVEL", "")); s != "" {
		if parsed, ok := parseLevel(s); ok {
			level = parsed
		}
	}
	l.SetLevel(level)

	loggerRegistry[name] = l
	return l
}

// SetLoggerLevel adjusts the level of a registered logger at runtime.
func SetLoggerLevel(name, level string) {
	loggerRegistryMu.RLock()
	l, ok := loggerRegistry[name]
	loggerRegistryMu.RUnlock()
	if !ok {
		return
	}
	if parsed, ok := parseLevel(level); ok {
		l.SetLevel(parsed)
	}
}
