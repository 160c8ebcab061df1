// Package migrations embeds the schema SQL so integration fixtures and
// tooling can apply it without a checkout.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
