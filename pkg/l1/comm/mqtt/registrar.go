package mqtt

import (
	"context"
	"encoding/json"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	fx "github.com/robotalks/pt.go/pkg/framework"
	"github.com/robotalks/pt.go/pkg/l1"
	"github.com/robotalks/pt.go/pkg/l1/comm"
)

// unregisterTimeout bounds clearing the meta topic on exit.
const unregisterTimeout = time.Second

// Registrar registers the controller in the MQTT registry: the meta
// topic <type>/<id>/meta is retained while the controller is online,
// commands arrive on <type>/<id>/cmd and events go to <type>/<id>/msg.
type Registrar struct {
	Queue *Queue
	Info  l1.ControllerInfo

	meta      []byte
	registrar *comm.Registrar
}

// NewRegistrar creates a Registrar.
func NewRegistrar(brokerURL string, info l1.ControllerInfo) (*Registrar, error) {
	meta, err := json.Marshal(&info.Meta)
	if err != nil {
		return nil, err
	}
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	r := &Registrar{Info: info, meta: meta}
	// the broker clears the meta if the connection is lost.
	opts.SetBinaryWill(topicPrefix+r.metaTopic(), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("robo:" + info.Ref.Name())
	}
	r.Queue = NewQueue(opts, topicPrefix)
	r.Queue.OnConnect = func(*Queue) { r.publishMeta(r.meta) }
	r.registrar = comm.NewRegistrar(NewPacketReadWriter(r.Queue).ForController(info.Ref))
	return r, nil
}

func (r *Registrar) metaTopic() string {
	return r.Info.Ref.Name() + "/meta"
}

func (r *Registrar) publishMeta(meta []byte) paho.Token {
	return r.Queue.PubWith(r.metaTopic(), meta, 1, true)
}

// SendEvent implements Registrar.
func (r *Registrar) SendEvent(ctx context.Context, msg fx.Message) error {
	return r.registrar.SendEvent(ctx, msg)
}

// AddToLoop implements LoopAdder.
func (r *Registrar) AddToLoop(loop *fx.Loop) {
	loop.Add(r.registrar)
	loop.AddRunnable(r)
}

// Run implements Runnable. It connects and unregisters when ctx is done.
func (r *Registrar) Run(ctx context.Context) error {
	glog.Infof("registering %s", r.Info.Ref.Name())
	if token := r.Queue.Connect(); token.Wait() && token.Error() != nil {
		glog.Warningf("mqtt connect: %v", token.Error())
	}
	<-ctx.Done()
	if token := r.publishMeta(nil); !token.WaitTimeout(unregisterTimeout) {
		glog.Warningf("unregister %s timeout", r.Info.Ref.Name())
	}
	r.Queue.Close()
	return nil
}
