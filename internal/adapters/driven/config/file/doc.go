// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - SettingsStore: YAML or TOML application settings with API keys from the environment
//   - PromptStore: user-editable prompt templates under ~/.repochat/prompts
package file
