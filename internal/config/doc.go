// Package config loads the YAML run file used by the jobpool command.
//
// Example:
//
//	pool:
//	  workers: 4
//	  verbose: true
//	  retry:
//	    attempts: 3
//	    initial: 50ms
//	run:
//	  mode: terminate
//	  durations: [100ms, 200ms, 400ms, 300ms]
//	  repeat: 5
//	  fail_every: 3
//	  stop_after: 250ms
//	log:
//	  format: json
//
// Fields left out of the file take the values of their `default` struct tags.
package config
