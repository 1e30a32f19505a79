// Package config loads the optional cocopp configuration file.
//
// The file tunes what the command line alone cannot: which commands build
// the reports, whether they run locally or in a container, extra long
// options understood by custom generators, and file logging. Both YAML
// (gopkg.in/yaml.v3) and JSON with comments (github.com/tidwall/jsonc) are
// accepted.
package config
