// Package msgs defines the L1 messages exchanged between an L1
// controller and L2 clients, and their wire envelope.
//
// Every packet is a protobuf encoded Typed carrying a 32-bit type id, a
// sequence and the encoded message. The type id is laid out as
//
//	K GGGGGGGGGGGGGGG R IIIIIIIIIIIIIII
//
// K is set for events sent by the controller, otherwise the message is a
// command or the reply to one (R set). G is the group of related
// messages and I the id within the group. Replies carry the sequence of
// their command.
//
// Groups:
//
//	0x0000  generic replies: CommandOK, CommandErr
//	0x0003  tasks: TaskListQuery, TaskControl, TaskTerminated
//	0x0004  rotation: RotationQuery, Rotation
//	0x7f00+ custom messages registered with RegisterType
package msgs
