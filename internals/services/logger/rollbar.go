// file: internals/services/logger/rollbar.go
package logsvc

import (
	"log"
	"sync/atomic"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
)

var enabled atomic.Bool

// Init configures error reporting. Reporting stays off without a token;
// the std log line is written either way.
func Init(token, env, build string) {
	if token == "" {
		rollbar.SetEnabled(false)
		enabled.Store(false)
		log.Println("[Rollbar] disabled (no token)")
		return
	}
	rollbar.SetToken(token)
	rollbar.SetEnvironment(env)
	rollbar.SetCodeVersion(build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(true)
	enabled.Store(true)
	log.Printf("[Rollbar] enabled env=%s build=%s", env, build)
}

func Enabled() bool { return enabled.Load() }

// Error reports err with its tag and extra fields.
func Error(tag string, err error, extras map[string]interface{}) {
	if err == nil {
		return
	}
	log.Printf("[%s] %+v", tag, err)
	if !enabled.Load() {
		return
	}
	fields := map[string]interface{}{"tag": tag}
	for k, v := range extras {
		fields[k] = v
	}
	rollbar.Error(err, fields)
}

func Warn(tag, msg string, extras map[string]interface{}) {
	log.Printf("[%s] %s", tag, msg)
	if !enabled.Load() {
		return
	}
	fields := map[string]interface{}{"tag": tag}
	for k, v := range extras {
		fields[k] = v
	}
	rollbar.Warning(tag+": "+msg, fields)
}

// Close flushes queued reports; call on shutdown.
func Close() {
	if enabled.Load() {
		rollbar.Close()
	}
}
