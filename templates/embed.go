package templates

import "embed"

//go:embed privacy_policy.html
var FS embed.FS
