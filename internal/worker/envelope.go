// Package worker implements the six pure worker contracts of spec §4.2
// (add, sub, mul, div, xsum, xprod, plus the sub_list/div_list chord-body
// forms) and the wire envelopes of spec §6.3 that carry their arguments
// and replies across the broker.
package worker

import (
	"github.com/arithflow/arithflow/internal/errs"
	"github.com/arithflow/arithflow/internal/workflow"
)

// TaskEnvelope is a published task per spec §6.3.
type TaskEnvelope struct {
	CorrID string         `json:"corr_id"`
	Topic  workflow.Topic `json:"topic"`
	Params Params         `json:"params"`
}

// Params is the parameter record carried by a TaskEnvelope. Which fields
// are populated depends on Topic and on whether this call is a plain
// binary call, a chain continuation, or a chord body; unused fields are
// simply zero/nil and omitted on the wire, except is_left_fixed, which is
// always sent.
type Params struct {
	X              *float64  `json:"x,omitempty"`
	Y              *float64  `json:"y,omitempty"`
	Result         *float64  `json:"result,omitempty"`
	IsLeftFixed    bool      `json:"is_left_fixed"`
	ChildrenResult []float64 `json:"children_result,omitempty"`
	Constants      []float64 `json:"constants,omitempty"`
	XList          []float64 `json:"x_list,omitempty"`
}

// ReplyEnvelope is a worker's response, published to the result backend
// under CorrID, per spec §6.3: either Value is set, or Error is.
type ReplyEnvelope struct {
	CorrID string      `json:"corr_id"`
	Value  *float64    `json:"value,omitempty"`
	Error  *ReplyError `json:"error,omitempty"`
}

// ReplyError carries a machine-readable Kind name (see internal/errs) and
// a human-readable message.
type ReplyError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// NewReply builds the ReplyEnvelope for corrID from a Dispatch outcome,
// shared by every transport binding that runs a contract and needs to
// publish its result.
func NewReply(corrID string, v float64, err error) ReplyEnvelope {
	if err != nil {
		return ReplyEnvelope{CorrID: corrID, Error: toReplyError(err)}
	}
	return ReplyEnvelope{CorrID: corrID, Value: &v}
}

func toReplyError(err error) *ReplyError {
	if ae, ok := err.(*errs.Error); ok {
		return &ReplyError{Kind: ae.Kind().Name(), Message: ae.Error()}
	}
	return &ReplyError{Kind: errs.Internal.Name(), Message: err.Error()}
}
