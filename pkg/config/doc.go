// Package config loads typed configuration from environment variables and
// optional YAML files.
//
// Load parses struct fields tagged for github.com/caarlos0/env and, when a
// file is given with WithFile, overlays the keys present in that file. The
// default .env file is loaded once through github.com/joho/godotenv before
// the first parse. Values resolve in this order, last wins:
//
//	envDefault tag < environment variable < YAML file
//
// Successful results are cached per type and options, so repeated Load calls
// for the same configuration are cheap and consistent:
//
//	type Watcher struct {
//	    Driver string `env:"DRIVER" envDefault:"mongo" yaml:"driver"`
//	}
//
//	var cfg Watcher
//	if err := config.Load(&cfg, config.WithPrefix("CONNWATCH_"), config.WithFile("connwatch.yaml")); err != nil {
//	    return err
//	}
//
// Errors wrap ErrParsingConfig or ErrReadingFile and work with errors.Is.
package config
