package msgs

import (
	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/pt.go/pkg/framework"
)

// TaskListQuery lists the tasks running on the controller.
type TaskListQuery struct {
}

// NewMessage implements Message.
func (m *TaskListQuery) NewMessage() fx.Message { return &TaskListQuery{} }

// TypeID implements SerializableMessage.
func (m *TaskListQuery) TypeID() uint32 { return TaskListQueryTypeID }

// Serializable implements SerializableMessage.
func (m *TaskListQuery) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *TaskListQuery) ProtoMessage() {}

// Reset implements proto.Message.
func (m *TaskListQuery) Reset() { *m = TaskListQuery{} }

// String implements proto.Message.
func (m *TaskListQuery) String() string { return proto.CompactTextString(m) }

// TaskInfo describes a task.
type TaskInfo struct {
	Name        string `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	Running     bool   `protobuf:"varint,2,opt,name=running,proto3" json:"running,omitempty"`
	State       uint32 `protobuf:"varint,3,opt,name=state,proto3" json:"state,omitempty"`
	Result      bool   `protobuf:"varint,4,opt,name=result,proto3" json:"result,omitempty"`
	Invocations uint64 `protobuf:"varint,5,opt,name=invocations,proto3" json:"invocations,omitempty"`
}

// NewTaskInfo creates TaskInfo from the status.
func NewTaskInfo(st fx.TaskStatus) *TaskInfo {
	return &TaskInfo{
		Name:        st.Name,
		Running:     st.Running,
		State:       uint32(st.State),
		Result:      st.Result,
		Invocations: st.Invocations,
	}
}

// ProtoMessage implements proto.Message.
func (m *TaskInfo) ProtoMessage() {}

// Reset implements proto.Message.
func (m *TaskInfo) Reset() { *m = TaskInfo{} }

// String implements proto.Message.
func (m *TaskInfo) String() string { return proto.CompactTextString(m) }

// TaskList is the reply of TaskListQuery.
type TaskList struct {
	Tasks []*TaskInfo `protobuf:"bytes,1,rep,name=tasks,proto3" json:"tasks,omitempty"`
}

// NewMessage implements Message.
func (m *TaskList) NewMessage() fx.Message { return &TaskList{} }

// TypeID implements SerializableMessage.
func (m *TaskList) TypeID() uint32 { return TaskListTypeID }

// Serializable implements SerializableMessage.
func (m *TaskList) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *TaskList) ProtoMessage() {}

// Reset implements proto.Message.
func (m *TaskList) Reset() { *m = TaskList{} }

// String implements proto.Message.
func (m *TaskList) String() string { return proto.CompactTextString(m) }

// TaskAction is the action of TaskControl.
type TaskAction int32

// Task actions.
const (
	TaskActionNone TaskAction = iota
	TaskActionRestart
	TaskActionStop
)

// String implements fmt.Stringer.
func (a TaskAction) String() string {
	switch a {
	case TaskActionRestart:
		return "restart"
	case TaskActionStop:
		return "stop"
	}
	return "none"
}

// TaskControl restarts or stops a task. Replied with CommandOK.
type TaskControl struct {
	Name   string     `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	Action TaskAction `protobuf:"varint,2,opt,name=action,proto3" json:"action,omitempty"`
}

// NewMessage implements Message.
func (m *TaskControl) NewMessage() fx.Message { return &TaskControl{} }

// TypeID implements SerializableMessage.
func (m *TaskControl) TypeID() uint32 { return TaskControlTypeID }

// Serializable implements SerializableMessage.
func (m *TaskControl) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *TaskControl) ProtoMessage() {}

// Reset implements proto.Message.
func (m *TaskControl) Reset() { *m = TaskControl{} }

// String implements proto.Message.
func (m *TaskControl) String() string { return proto.CompactTextString(m) }

// TaskTerminated is the event emitted when a task terminates.
type TaskTerminated struct {
	Task *TaskInfo `protobuf:"bytes,1,opt,name=task,proto3" json:"task,omitempty"`
}

// NewMessage implements Message.
func (m *TaskTerminated) NewMessage() fx.Message { return &TaskTerminated{} }

// TypeID implements SerializableMessage.
func (m *TaskTerminated) TypeID() uint32 { return TaskTerminatedTypeID }

// Serializable implements SerializableMessage.
func (m *TaskTerminated) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *TaskTerminated) ProtoMessage() {}

// Reset implements proto.Message.
func (m *TaskTerminated) Reset() { *m = TaskTerminated{} }

// String implements proto.Message.
func (m *TaskTerminated) String() string { return proto.CompactTextString(m) }
