// Package all registers all CLI commands.
package all

import (
	_ "github.com/robotalks/pt.go/pkg/cli/cmds/rotation"
	_ "github.com/robotalks/pt.go/pkg/cli/cmds/tasks"
)
