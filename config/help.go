package config

import "fmt"

const HelpMessage = `ride-booking-system

Usage:
  ridebooking [flags]

Flags:
  -config-path string   path to a YAML config file (optional, env vars win)
  -help                 print this message and exit

Configuration is read from environment variables; see config/config.go for
the full list. The most common ones:

  SERVER_PORT                  HTTP port (default 3000)
  STORAGE_BACKEND              "memory" or "postgres" (default memory)
  DATABASE_HOST/PORT/...       postgres connection settings
  RABBITMQ_ENABLED             publish lifecycle events to RabbitMQ
  SWEEPER_INTERVAL             expiry sweep period (default 10m)
  SWEEPER_GRACE                grace after scheduled time (default 20m)
  SWEEPER_ACCEPTED_RETENTION   accepted booking retention (default 48h)
  AUTH_JWT_SECRET              HS256 signing secret
`

func PrintHelp() {
	fmt.Printf("%s", HelpMessage)
}
