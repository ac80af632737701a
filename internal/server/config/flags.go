package config

import (
	"flag"
	"os"
	"time"

	"github.com/zeroshare/zeroshare/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":3000")
//	-d string   PostgreSQL DSN, or "memory"
//	-s string   storage backend: fs, s3 or memory
//	-f string   uploads directory (fs backend)
//	-u string   S3 user
//	-p string   S3 password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-m int      max upload size, megabytes
//	-x int      file expiry, hours
//	-n int      max downloads per object
//	-w int      sweep interval, minutes
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes
//     using flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers and converted to
//     time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-f", "-u", "-p", "-b", "-g", "-e", "-m", "-x", "-n", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.StorageBackend, "s", config.StorageBackend, "storage backend (fs, s3, memory)")
	fs.StringVar(&config.UploadDir, "f", config.UploadDir, "uploads directory")

	fs.StringVar(&config.S3User, "u", config.S3User, "S3 user")
	fs.StringVar(&config.S3Password, "p", config.S3Password, "S3 password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	maxUploadMB := fs.Int64("m", config.MaxUploadSize/(1024*1024), "max upload size (in megabytes)")
	fileExpiryHours := fs.Int("x", int(config.FileExpiry.Hours()), "file expiry (in hours)")
	fs.IntVar(&config.MaxDownloads, "n", config.MaxDownloads, "max downloads per object")
	sweepIntervalMinutes := fs.Int("w", int(config.SweepInterval.Minutes()), "sweep interval (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.MaxUploadSize = *maxUploadMB * 1024 * 1024
	config.FileExpiry = time.Duration(*fileExpiryHours) * time.Hour
	config.SweepInterval = time.Duration(*sweepIntervalMinutes) * time.Minute
}
