package mqtt

import (
	"context"
	"io"

	"github.com/golang/glog"

	"github.com/robotalks/pt.go/pkg/l1"
)

// packetBacklog is the number of received packets buffered before
// dropping.
const packetBacklog = 16

// ReadWriter implements PacketReadWriter over a pair of topics.
type ReadWriter struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	packetCh chan []byte
}

// NewPacketReadWriter creates the ReadWriter.
func NewPacketReadWriter(q *Queue) *ReadWriter {
	return &ReadWriter{Queue: q, packetCh: make(chan []byte, packetBacklog)}
}

// WithTopics sets the topics.
func (p *ReadWriter) WithTopics(sub, pub string) *ReadWriter {
	p.SubTopic, p.PubTopic = sub, pub
	return p
}

// ForConnector receives on <type>/<id>/msg and sends to <type>/<id>/cmd.
func (p *ReadWriter) ForConnector(ref l1.ControllerRef) *ReadWriter {
	return p.WithTopics(ref.Name()+"/msg", ref.Name()+"/cmd")
}

// ForController receives on <type>/<id>/cmd and sends to <type>/<id>/msg.
func (p *ReadWriter) ForController(ref l1.ControllerRef) *ReadWriter {
	return p.WithTopics(ref.Name()+"/cmd", ref.Name()+"/msg")
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	if pkt, ok := <-p.packetCh; ok {
		return pkt, nil
	}
	return nil, io.EOF
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	token := p.Queue.Pub(p.PubTopic, pkt)
	token.Wait()
	return token.Error()
}

// Run implements Runnable. Packets are received until ctx is done.
func (p *ReadWriter) Run(ctx context.Context) error {
	sub := p.Queue.Sub(p.SubTopic, p.received)
	defer sub.Close()
	defer close(p.packetCh)
	<-ctx.Done()
	return ctx.Err()
}

// received must not block the MQTT client.
func (p *ReadWriter) received(topic string, payload []byte) {
	select {
	case p.packetCh <- payload:
	default:
		glog.Warningf("mqtt: %s backlog full, packet dropped", topic)
	}
}
