// Package logger provides structured logging on top of zerolog.
//
// It supports console and JSON output, an optional rotating log file,
// and component-scoped loggers with map-based structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//	  output: "file"
//	  file:
//	    path: "logs/voxscribe.log"
//	    max_size: 100
//
// # Usage
//
//	log := logger.Init(cfg.Logging, "voxscribe").WithComponent("pipeline")
//	log.Info("stage finished", logger.StageFields("diarization", d))
package logger
