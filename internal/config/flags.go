package config

import (
	"flag"
	"os"
	"time"

	"github.com/epavlov/todolite/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-k string   identity provider API key
//	-d string   DSN of the hosted todos database
//	-b string   S3 bucket for image attachments
//	-s string   local cache database path
//	-i int      session refresh interval in seconds
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-k", "-d", "-b", "-s", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIKey, "k", cfg.APIKey, "identity provider API key")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "todos database DSN")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket for image attachments")
	fs.StringVar(&cfg.CacheDBPath, "s", cfg.CacheDBPath, "local cache database path")
	refreshInterval := fs.Int("i", int(cfg.SessionRefreshInterval.Seconds()), "session refresh interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.SessionRefreshInterval = time.Duration(*refreshInterval) * time.Second
}
