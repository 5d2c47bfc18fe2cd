package msgs

import (
	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/pt.go/pkg/framework"
)

// RotationQuery queries the latest rotation reading.
type RotationQuery struct {
}

// NewMessage implements Message.
func (m *RotationQuery) NewMessage() fx.Message { return &RotationQuery{} }

// TypeID implements SerializableMessage.
func (m *RotationQuery) TypeID() uint32 { return RotationQueryTypeID }

// Serializable implements SerializableMessage.
func (m *RotationQuery) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *RotationQuery) ProtoMessage() {}

// Reset implements proto.Message.
func (m *RotationQuery) Reset() { *m = RotationQuery{} }

// String implements proto.Message.
func (m *RotationQuery) String() string { return proto.CompactTextString(m) }

// RotationStatus is the reply of RotationQuery.
type RotationStatus struct {
	Rotation *Rotation `protobuf:"bytes,1,opt,name=rotation,proto3" json:"rotation,omitempty"`
	Scale    string    `protobuf:"bytes,2,opt,name=scale,proto3" json:"scale,omitempty"`
}

// NewMessage implements Message.
func (m *RotationStatus) NewMessage() fx.Message { return &RotationStatus{} }

// TypeID implements SerializableMessage.
func (m *RotationStatus) TypeID() uint32 { return RotationStatusTypeID }

// Serializable implements SerializableMessage.
func (m *RotationStatus) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *RotationStatus) ProtoMessage() {}

// Reset implements proto.Message.
func (m *RotationStatus) Reset() { *m = RotationStatus{} }

// String implements proto.Message.
func (m *RotationStatus) String() string { return proto.CompactTextString(m) }

// Rotation is the event of a rotation reading, emitted when the LEDs change.
// Rates are in degrees per second.
type Rotation struct {
	X        float32 `protobuf:"fixed32,1,opt,name=x,proto3" json:"x,omitempty"`
	Y        float32 `protobuf:"fixed32,2,opt,name=y,proto3" json:"y,omitempty"`
	Z        float32 `protobuf:"fixed32,3,opt,name=z,proto3" json:"z,omitempty"`
	AverageZ float32 `protobuf:"fixed32,4,opt,name=average_z,json=averageZ,proto3" json:"average_z,omitempty"`
	Leds     uint32  `protobuf:"varint,5,opt,name=leds,proto3" json:"leds,omitempty"`
}

// NewMessage implements Message.
func (m *Rotation) NewMessage() fx.Message { return &Rotation{} }

// TypeID implements SerializableMessage.
func (m *Rotation) TypeID() uint32 { return RotationTypeID }

// Serializable implements SerializableMessage.
func (m *Rotation) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *Rotation) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Rotation) Reset() { *m = Rotation{} }

// String implements proto.Message.
func (m *Rotation) String() string { return proto.CompactTextString(m) }
