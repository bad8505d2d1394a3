// Package processor contains the glue of the denglish worker. It resolves
// the configuration into engines, assembles the pipeline, and runs jobs
// from a file, stdin, a batch file or the HTTP server. This package serves
// as the main coordinator between all other components.
package processor
