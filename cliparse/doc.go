/*
Package cliparse handles configuration parsing from CLI flags and
environment variables.

Configuration is loaded once at process start and passed explicitly to
the components that need it, so nothing in the core reads the
environment ad hoc.

# Precedence

 1. CLI flags (-p, -d, -t, -ip-salt)
 2. Environment variables (PORT, DATABASE_URL, DATABASE_TYPE, IP_HASH_SALT)
 3. Defaults (port 3000, sqlite)

A .env file in the working directory is loaded into the environment
before parsing, which keeps local development free of exported shell
variables.

# Required Settings

  - DATABASE_URL: connection string for postgres, or a file path/DSN for sqlite
  - IP_HASH_SALT: secret salt for the voter network fingerprint digest
*/
package cliparse
