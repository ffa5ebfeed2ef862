// Package cli is the command line interface of tempita.
//
// The default command renders a template file with variables from the
// command line:
//
//	tempita page.tmpl title=Home yaml:items='[a, b]'
//	tempita --html -o index.html page.tmpl --vars site.yaml
//	echo '{{x * 2}}' | tempita - yaml:x=21
//
// The parse and lex commands print the syntax tree and tokens of a
// template.
//
// # Configuration
//
// Flag defaults are read from config.yaml (or config.json) in the user
// configuration directory, such as ~/.config/tempita on Linux. Keys are
// flag names, with nested mappings joined by hyphens:
//
//	log:
//	  level: debug
//	  format: json
//
// # Logging
//
// Log records are written to stderr. The --log-level, --log-format,
// --log-time-layout, --[no-]log-caller and --[no-]log-pretty flags apply
// before any other flag is parsed.
//
// # Profiling
//
// Binaries built with the pprof tag accept --pprof-mode and --pprof-dir.
// See package [github.com/ardnew/tempita/profile].
package cli
