// internal/config/model.go
//
// Typed configuration model.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                            – dotenv values,
//   • `conf/global.yaml`                         – primary static file,
//   • `LUNCHROTA_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *after* unmarshalling, so the rest of the app
// never sees Vault URIs—only plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

//
// HTTP section
//

// HTTP holds web-server tunables.  BaseURL is the public origin embedded in
// emailed confirmation and rating links, which may differ from ListenAddr
// behind a reverse proxy.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
	BaseURL    string `koanf:"base_url"    validate:"required,url"`
}

//
// Database section
//

// Database holds the DSN and its secret.
//
// The *template* (`DSN`) is kept in YAML so operators can tweak host, port,
// or flags without touching Vault.  The *secret* portion (`Password`) is a
// `vault:` URI in YAML and injected at runtime, keeping credentials out of
// flat files and git history.
type Database struct {
	DSN      string `koanf:"dsn"      validate:"required"`
	Password string `koanf:"password" validate:"required"`
}

//
// Mail section
//

// Mail configures the transactional-email provider.  DryRun short-circuits
// every send into a log line; keep it on in development.
type Mail struct {
	APIKey    string `koanf:"api_key"`
	Endpoint  string `koanf:"endpoint"`
	FromEmail string `koanf:"from_email" validate:"required,email"`
	FromName  string `koanf:"from_name"`
	DryRun    bool   `koanf:"dry_run"`
}

//
// Schedule section
//

// Schedule holds cadence-engine tunables.  TickMinutes is how often the
// scheduler checks for due jobs; job due-ness itself is wall-clock based, so
// a shorter tick only tightens delivery latency.
type Schedule struct {
	TickMinutes int `koanf:"tick_minutes" validate:"min=1,max=60"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or LUNCHROTA_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string // LUNCHROTA_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Mail     Mail     `koanf:"mail"`
	Schedule Schedule `koanf:"schedule"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}
