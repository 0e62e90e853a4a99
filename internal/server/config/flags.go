package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/volunteerhub/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":2000")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      session token validity, minutes
//	-k int      bcrypt cost
//	-u string   public base URL for verification links
//	-m string   mail transport (log, smtp, ses)
//	-f string   mail sender address
//
// Notes:
//   - os.Args is filtered down to the flags declared here (flagx.FlagNames),
//     so -c/-config and flags of other components do not break parsing.
//   - Duration flags are accepted as integers in minutes and then converted
//     to time.Duration values; they apply only when passed explicitly.
//   - SMTP and SES credentials are deliberately not exposed as flags; use the
//     JSON file or the environment.
func parseFlags(config *Config) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.IntVar(&config.BcryptCost, "k", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.BaseURL, "u", config.BaseURL, "public base URL")
	fs.StringVar(&config.MailTransport, "m", config.MailTransport, "mail transport: log, smtp or ses")
	fs.StringVar(&config.MailFrom, "f", config.MailFrom, "mail sender address")

	args := flagx.FilterArgs(os.Args[1:], flagx.FlagNames(fs))

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// -t only overrides earlier layers when given; its minute granularity
	// would otherwise truncate durations like "90s" from JSON or env.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
		}
	})
}
