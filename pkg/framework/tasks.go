package framework

import (
	"fmt"
	"sort"

	"github.com/golang/glog"

	"github.com/robotalks/pt.go/pkg/pt"
)

// ErrUnknownTask indicates no task is registered with the name.
type ErrUnknownTask struct {
	Name string
}

// Error implements error.
func (e *ErrUnknownTask) Error() string {
	return fmt.Sprintf("unknown task %q", e.Name)
}

// Tasks drives a fixed set of named protothreads. It is a Controller:
// every Control invokes each running task once, in the order tasks were
// added. A terminated task is skipped until restarted.
type Tasks struct {
	PriorityLevel int

	entries   []*taskEntry
	names     map[string]*taskEntry
	listeners []TaskListener
}

type taskEntry struct {
	name        string
	task        pt.Task
	running     bool
	invocations uint64
}

// NewTasks creates Tasks added to a loop at priorityLevel.
func NewTasks(priorityLevel int) *Tasks {
	return &Tasks{PriorityLevel: priorityLevel, names: make(map[string]*taskEntry)}
}

// Add registers a task. Tasks are long-lived: they are added during setup
// and never removed. Names must be unique.
func (s *Tasks) Add(name string, task pt.Task) *Tasks {
	if s.names == nil {
		s.names = make(map[string]*taskEntry)
	}
	if _, exist := s.names[name]; exist {
		panic(fmt.Sprintf("task %q already added", name))
	}
	e := &taskEntry{name: name, task: task, running: task.IsRunning()}
	s.entries = append(s.entries, e)
	s.names[name] = e
	return s
}

// Subscribe adds a listener for task termination.
func (s *Tasks) Subscribe(ln TaskListener) *Tasks {
	s.listeners = append(s.listeners, ln)
	return s
}

// AddToLoop implements LoopAdder.
func (s *Tasks) AddToLoop(l *Loop) {
	l.AddController(s.PriorityLevel, s)
}

// Control implements Controller.
func (s *Tasks) Control(cc ControlContext) error {
	for _, e := range s.entries {
		if e.task.IsRunning() {
			if !e.running {
				glog.V(1).Infof("task %s restarted", e.name)
				e.running = true
			}
			e.invocations++
			glog.V(4).Infof("task %s run #%d", e.name, e.invocations)
			e.task.Run()
		}
		if e.running && !e.task.IsRunning() {
			e.running = false
			status := e.status()
			glog.V(1).Infof("task %s terminated, result %v", e.name, status.Result)
			for _, ln := range s.listeners {
				ln.TaskTerminated(cc, status)
			}
		}
	}
	return nil
}

// Restart restarts the named task from the beginning of its body.
func (s *Tasks) Restart(name string) error {
	e, err := s.lookup(name)
	if err != nil {
		return err
	}
	e.task.Restart()
	return nil
}

// Stop terminates the named task.
func (s *Tasks) Stop(name string) error {
	e, err := s.lookup(name)
	if err != nil {
		return err
	}
	e.task.Stop()
	return nil
}

// Status returns the status of the named task.
func (s *Tasks) Status(name string) (TaskStatus, error) {
	e, err := s.lookup(name)
	if err != nil {
		return TaskStatus{}, err
	}
	return e.status(), nil
}

// List returns the status of all tasks, sorted by name.
func (s *Tasks) List() []TaskStatus {
	list := make([]TaskStatus, 0, len(s.entries))
	for _, e := range s.entries {
		list = append(list, e.status())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

func (s *Tasks) lookup(name string) (*taskEntry, error) {
	if e := s.names[name]; e != nil {
		return e, nil
	}
	return nil, &ErrUnknownTask{Name: name}
}

func (e *taskEntry) status() TaskStatus {
	st := TaskStatus{
		Name:        e.name,
		Running:     e.task.IsRunning(),
		Invocations: e.invocations,
	}
	if s, ok := e.task.(interface{ State() pt.State }); ok {
		st.State = s.State()
	} else if !st.Running {
		st.State = pt.Terminated
	}
	if r, ok := e.task.(interface{ Result() bool }); ok {
		st.Result = r.Result()
	}
	return st
}
