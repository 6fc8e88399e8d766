package assets

import _ "embed"

// DefaultWorld is the YAML description of the built-in map.
//
//go:embed world.yaml
var DefaultWorld []byte
