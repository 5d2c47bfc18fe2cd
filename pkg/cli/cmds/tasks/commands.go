package tasks

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/pt.go/pkg/cli/sh"
	"github.com/robotalks/pt.go/pkg/l1/msgs"
	"github.com/robotalks/pt.go/pkg/pt"
)

// FormatTaskList prints tasks as a table.
func FormatTaskList(list *msgs.TaskList) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTATUS\tSTATE\tRUNS")
	for _, task := range list.Tasks {
		status, state := "running", fmt.Sprintf("%d", task.State)
		if !task.Running {
			status = "failed"
			if task.Result {
				status = "done"
			}
		}
		if pt.State(task.State) == pt.Terminated {
			state = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", task.Name, status, state, task.Invocations)
	}
	w.Flush()
	return buf.String()
}

func controlCmd(action msgs.TaskAction) func(c *ishell.Context) {
	return sh.MustBeConnected(func(c *ishell.Context) {
		if len(c.Args) != 1 {
			c.Err(fmt.Errorf("NAME required"))
			return
		}
		sh.DoCommand(c, &msgs.TaskControl{Name: c.Args[0], Action: action})
	})
}

var (
	// TaskListCmd lists tasks.
	TaskListCmd = ishell.Cmd{
		Name:    "tasks.list",
		Aliases: []string{"tl"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			reply, err := sh.Execute(c, &msgs.TaskListQuery{})
			if err != nil {
				c.Err(err)
				return
			}
			if sh.ShellFrom(c).OutputJSON {
				sh.PrintJSON(c, reply)
				return
			}
			list, ok := reply.(*msgs.TaskList)
			if !ok {
				c.Err(fmt.Errorf("unexpected reply %s", sh.FormatMsg(reply)))
				return
			}
			c.Print(FormatTaskList(list))
		}),
	}

	// TaskRestartCmd restarts a task.
	TaskRestartCmd = ishell.Cmd{
		Name:    "tasks.restart",
		Aliases: []string{"tr"},
		Help:    "NAME",
		Func:    controlCmd(msgs.TaskActionRestart),
	}

	// TaskStopCmd stops a task.
	TaskStopCmd = ishell.Cmd{
		Name:    "tasks.stop",
		Aliases: []string{"ts"},
		Help:    "NAME",
		Func:    controlCmd(msgs.TaskActionStop),
	}
)

func init() {
	sh.AddCmds(
		&TaskListCmd,
		&TaskRestartCmd,
		&TaskStopCmd,
	)
}
