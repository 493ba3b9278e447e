package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	WorkerType = "LWEXT"
	WorkerHost = "chrome-extension://ekbbplmjjgoobhdlffmgeokalelnmjjc"

	MsgTypeRegister    = "REGISTER"
	MsgTypeHeartbeat   = "HEARTBEAT"
	MsgTypeJobAssigned = "JOB_ASSIGNED"
	MsgTypeJob         = "JOB"
)

type RegisterMessage struct {
	WorkerID   WorkerIdentity `json:"workerID"`
	MsgType    string         `json:"msgType"`
	WorkerType string         `json:"workerType"`
	Message    RegisterBody   `json:"message"`
}

type RegisterBody struct {
	ID     string         `json:"id"`
	Type   string         `json:"type"`
	Worker RegisterWorker `json:"worker"`
}

type RegisterWorker struct {
	Host         string          `json:"host"`
	Identity     WorkerIdentity  `json:"identity"`
	OwnerAddress AccountIdentity `json:"ownerAddress"`
	Type         string          `json:"type"`
}

type HeartbeatMessage struct {
	Message    HeartbeatBody  `json:"message"`
	MsgType    string         `json:"msgType"`
	WorkerType string         `json:"workerType"`
	WorkerID   WorkerIdentity `json:"workerID"`
}

type HeartbeatBody struct {
	Worker   HeartbeatWorker `json:"Worker"`
	Capacity Capacity        `json:"Capacity"`
}

type HeartbeatWorker struct {
	Identity     WorkerIdentity  `json:"Identity"`
	OwnerAddress AccountIdentity `json:"ownerAddress"`
	Type         string          `json:"type"`
	Host         string          `json:"Host"`
}

type JobAssignedMessage struct {
	WorkerID   WorkerIdentity `json:"workerID"`
	MsgType    string         `json:"msgType"`
	WorkerType string         `json:"workerType"`
	Message    JobAck         `json:"message"`
}

type JobAck struct {
	Status bool   `json:"Status"`
	Ref    string `json:"Ref"`
}

func NewRegisterMessage(worker WorkerIdentity, account AccountIdentity, correlationID string) RegisterMessage {
	return RegisterMessage{
		WorkerID:   worker,
		MsgType:    MsgTypeRegister,
		WorkerType: WorkerType,
		Message: RegisterBody{
			ID:   correlationID,
			Type: MsgTypeRegister,
			Worker: RegisterWorker{
				Host:         WorkerHost,
				Identity:     worker,
				OwnerAddress: account,
				Type:         WorkerType,
			},
		},
	}
}

func NewHeartbeatMessage(worker WorkerIdentity, account AccountIdentity, capacity Capacity) HeartbeatMessage {
	return HeartbeatMessage{
		Message: HeartbeatBody{
			Worker: HeartbeatWorker{
				Identity:     worker,
				OwnerAddress: account,
				Type:         WorkerType,
				Host:         WorkerHost,
			},
			Capacity: capacity,
		},
		MsgType:    MsgTypeHeartbeat,
		WorkerType: WorkerType,
		WorkerID:   worker,
	}
}

func NewJobAssignedMessage(worker WorkerIdentity, ref string) JobAssignedMessage {
	return JobAssignedMessage{
		WorkerID:   worker,
		MsgType:    MsgTypeJobAssigned,
		WorkerType: WorkerType,
		Message:    JobAck{Status: true, Ref: ref},
	}
}

type InboundKind int

const (
	InboundResponse InboundKind = iota
	InboundJob
)

// Inbound is a decoded server frame. Raw always holds the original payload.
type Inbound struct {
	Kind   InboundKind
	JobRef string
	Raw    json.RawMessage
}

type inboundEnvelope struct {
	Data json.RawMessage `json:"data"`
}

type inboundJob struct {
	MsgType string `json:"MsgType"`
	UUID    string `json:"UUID"`
}

// ParseInbound classifies a frame. Jobs arrive as {"data":{"MsgType":"JOB",
// "UUID":...}}; data may also be a JSON document encoded as a string.
// Anything else is a generic response.
func ParseInbound(payload []byte) (Inbound, error) {
	inbound := Inbound{Kind: InboundResponse, Raw: json.RawMessage(payload)}

	var envelope inboundEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return inbound, fmt.Errorf("decode inbound message: %w", err)
	}

	data := bytes.TrimSpace(envelope.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return inbound, nil
	}

	if data[0] == '"' {
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			return inbound, nil
		}
		data = []byte(encoded)
	}

	var job inboundJob
	if err := json.Unmarshal(data, &job); err != nil {
		return inbound, nil
	}
	if job.MsgType == MsgTypeJob {
		inbound.Kind = InboundJob
		inbound.JobRef = job.UUID
	}

	return inbound, nil
}
