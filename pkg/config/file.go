package config

import "fmt"

// newConfigFile returns the YAML for a config file with the given values
// and documentation comments.
func newConfigFile(cfg *Config) string {
	return fmt.Sprintf(`# The name of the server.
name: %q

# The HTTP server configuration.
http:
  # The address on which the HTTP server will listen.
  listen_addr: %q

  # The path to the TLS private key. Without TLS the server runs plain HTTP
  # and basic-auth credentials cross the wire unencrypted.
  tls_key_path: %q

  # The path to the TLS certificate.
  tls_cert_path: %q

  # The public URL of the HTTP server.
  # This is the address clients use to clone repositories.
  public_url: %q

  # The URL of the upstream git smart-HTTP backend that services accepted
  # operations. Leave empty when embedding gitgate and injecting the backend
  # handler programmatically.
  backend_url: %q

  # The basic-auth realm presented in authentication challenges.
  realm: %q

# The stats server configuration.
stats:
  # Enable the stats server.
  enabled: %v

  # The address on which the stats server will listen.
  listen_addr: %q

# The log configuration.
log:
  # The log format to use. Valid values are "json", "logfmt", and "text".
  format: %q

  # The time format for the log "ts" field.
  # Format must be described in Golang's time format.
  time_format: %q

# The cron jobs configuration.
jobs:
  # Cron spec for re-checking that every repository has backing storage.
  # Empty disables the job.
  provision_recheck: %q

# The repositories served by this instance.
# Each entry requires a name and an anonymous_read flag. Users carry a
# credential (plaintext or hex SHA-256 digest) and a permissions list.
repos: []
#  - name: "demo"
#    anonymous_read: false
#    users:
#      - username: "alice"
#        credential: "2bb80d537b1da3e38bd30361aa855686bde0eacd7162fef6a25fe97bf527a25b"
#        permissions: ["read", "write"]
`,
		cfg.Name,
		cfg.HTTP.ListenAddr,
		cfg.HTTP.TLSKeyPath,
		cfg.HTTP.TLSCertPath,
		cfg.HTTP.PublicURL,
		cfg.HTTP.BackendURL,
		cfg.HTTP.Realm,
		cfg.Stats.Enabled,
		cfg.Stats.ListenAddr,
		cfg.Log.Format,
		cfg.Log.TimeFormat,
		cfg.Jobs.ProvisionRecheck,
	)
}
