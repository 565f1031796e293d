// Package cli implements the signkey command-line interface.
//
// Commands are Cobra commands that load config, apply flag overrides, and
// hand off to the expect and signer packages for the actual work:
//
//	signkey [generate]   - Run the key generator and answer its password prompts
//	signkey inspect      - Show the ID and key of a generated public key
//	signkey config       - Print the effective configuration as YAML
//	signkey init         - Write a .signkey.yaml with the defaults
//	signkey version      - Print build information
//	signkey completion   - Generate shell completion scripts
//
// # Output Streams
//
// Stdout carries only the generator's transcript so it can be piped or
// redirected. The spinner, the public key summary, warnings and errors go
// to stderr.
//
// # Exit Codes
//
// 0 on success, 1 when signkey itself fails, and the generator's own status
// when the prompts were answered but the generator exited non-zero.
package cli
