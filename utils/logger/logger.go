/*
 * Copyright 2025 Olake By Datazip
 *
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

// Package logger wraps zerolog behind the small package-level surface
// used throughout surreal-sync (Infof/Debugf/Warnf/Errorf/Fatal, ...),
// so call sites never import zerolog directly.
package logger

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu  sync.RWMutex
	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		With().Timestamp().Logger().Level(zerolog.InfoLevel)
)

// Init configures the global logger level from LOG_LEVEL (debug, info,
// warn, error; default info). Call once at process startup.
func Init() {
	level := zerolog.InfoLevel
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if parsed, err := zerolog.ParseLevel(raw); err == nil {
			level = parsed
		}
	}
	mu.Lock()
	log = log.Level(level)
	mu.Unlock()
}

// SetLevel overrides the active log level, e.g. from a --verbose flag.
func SetLevel(level zerolog.Level) {
	mu.Lock()
	log = log.Level(level)
	mu.Unlock()
}

func current() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := log
	return &l
}

func Debugf(format string, args ...interface{}) {
	current().Debug().Msgf(format, args...)
}

func Infof(format string, args ...interface{}) {
	current().Info().Msgf(format, args...)
}

func Warnf(format string, args ...interface{}) {
	current().Warn().Msgf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	current().Error().Msgf(format, args...)
}

func Fatalf(format string, args ...interface{}) {
	current().Fatal().Msgf(format, args...)
}

func Info(args ...interface{}) {
	current().Info().Msg(sprint(args...))
}

func Warn(args ...interface{}) {
	current().Warn().Msg(sprint(args...))
}

func Error(args ...interface{}) {
	current().Error().Msg(sprint(args...))
}

func Fatal(args ...interface{}) {
	current().Fatal().Msg(sprint(args...))
}

func sprint(args ...interface{}) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if err, ok := a.(error); ok {
			parts[i] = err.Error()
		} else if str, ok := a.(string); ok {
			parts[i] = str
		} else {
			parts[i] = fmt.Sprintf("%v", a)
		}
	}
	s := ""
	for i, p := range parts {
		if i > 0 {
			s += " "
		}
		s += p
	}
	return s
}
