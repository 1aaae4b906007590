// Package logging provides a pluggable structured-logging pipeline.
//
// # Overview
//
// A log call runs through a fixed pipeline:
//
//	payload -> Enrich -> Hook -> Serialize -> console sink -> file sink
//
// Enrich turns a string or structured payload into a Record and stamps it
// with "timestamp" (ISO-8601 UTC, milliseconds), "severity" and, for error
// calls, "error". The Hook is a caller-supplied transform for cross-cutting
// fields. Serialize produces one JSON line which is written to stdout (or
// stderr for Error records) and appended to an hour-bucketed file.
//
// # Usage
//
//	mgr := logging.NewManager()
//	defer mgr.Close()
//
//	mgr.Configure(logging.Options{
//	    Hook:    logging.Chain(logging.StaticFields(map[string]string{"service": "billing"})),
//	    Console: logging.ConsoleOptions{Enabled: true},
//	    File:    logging.FileOptions{Enabled: true, BasePath: "/var/log/billing"},
//	})
//
//	log := mgr.CreateLogger(map[string]any{"app": "billing"})
//	log.Info("started")
//	log.Error("charge failed", err)
//
// Output:
//
//	{"error":{"message":"card declined"},"message":"charge failed","service":"billing","severity":"Error","timestamp":"2024-03-05T10:15:00.000Z"}
//
// # Live Configuration
//
// Options are held in an atomic cell owned by the Manager. Configure swaps
// the whole value; Loggers read the cell on every call, so a Logger created
// before a Configure call honors the new options on its next call.
//
// # File Rotation
//
// Files are named {year}_{month}_{day}_{hour}.log from local wall-clock time
// without zero padding. Rotation is only a naming effect: old files are never
// compacted or removed.
//
// File writes are fire-and-forget. A single goroutine appends queued lines;
// a full queue drops the line and a failed append is discarded. Logging never
// blocks on or fails because of the filesystem. Use Manager.Flush to wait for
// queued lines and Manager.Close on shutdown.
//
// # Errors
//
// The only error a Logger returns is a serialization error: a payload or
// hook result the JSON encoder rejects.
package logging
