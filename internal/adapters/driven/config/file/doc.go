// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under ~/.medreport.
//
// Adapters:
//   - ConfigStore: TOML configuration with API keys overlaid from the environment
//   - PromptStore: user-editable prompt templates, optionally watched for edits
package file
