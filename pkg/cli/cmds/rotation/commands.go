package rotation

import (
	"fmt"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/pt.go/pkg/cli/sh"
	"github.com/robotalks/pt.go/pkg/l1/msgs"
)

// FormatStatus prints the rotation status.
func FormatStatus(st *msgs.RotationStatus) string {
	if st.Rotation == nil {
		return fmt.Sprintf("scale %s, no reading", st.Scale)
	}
	r := st.Rotation
	return fmt.Sprintf("scale %s, x %.2f y %.2f z %.2f dps, avg z %.2f dps, leds %05b",
		st.Scale, r.X, r.Y, r.Z, r.AverageZ, r.Leds)
}

var (
	// RotationCmd queries the rotation.
	RotationCmd = ishell.Cmd{
		Name:    "rotation",
		Aliases: []string{"rot"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			reply, err := sh.Execute(c, &msgs.RotationQuery{})
			if err != nil {
				c.Err(err)
				return
			}
			if sh.ShellFrom(c).OutputJSON {
				sh.PrintJSON(c, reply)
				return
			}
			st, ok := reply.(*msgs.RotationStatus)
			if !ok {
				c.Err(fmt.Errorf("unexpected reply %s", sh.FormatMsg(reply)))
				return
			}
			c.Println(FormatStatus(st))
		}),
	}
)

func init() {
	sh.AddCmds(&RotationCmd)
}
