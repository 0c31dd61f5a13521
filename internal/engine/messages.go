package engine

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
)

// The actor speaks protobuf well-known types only:
//
//	*wrapperspb.UInt32Value  advance the world by N ticks
//	*structpb.Struct         {x, y} sets the goal, {clear: true} removes it
//	*emptypb.Empty           asks for Stats, answered with a *structpb.Struct

// Advance builds the message that runs n ticks.
func Advance(n uint32) *wrapperspb.UInt32Value {
	return wrapperspb.UInt32(n)
}

// SetGoal builds the message that makes flockers seek p.
func SetGoal(p geometry.Vector2D) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"x": structpb.NewNumberValue(p.X),
		"y": structpb.NewNumberValue(p.Y),
	}}
}

// ClearGoal builds the message that stops goal seeking.
func ClearGoal() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"clear": structpb.NewBoolValue(true),
	}}
}

// StatsRequest builds the stats query.
func StatsRequest() *emptypb.Empty {
	return &emptypb.Empty{}
}

// parseGoal decodes a goal message. It returns nil, nil for a clear request.
func parseGoal(msg *structpb.Struct) (*geometry.Vector2D, error) {
	fields := msg.GetFields()
	if fields["clear"].GetBoolValue() {
		return nil, nil
	}
	x, okX := fields["x"].GetKind().(*structpb.Value_NumberValue)
	y, okY := fields["y"].GetKind().(*structpb.Value_NumberValue)
	if !okX || !okY {
		return nil, fmt.Errorf("goal message needs numeric x and y, got %v", msg.AsMap())
	}
	return &geometry.Vector2D{X: x.NumberValue, Y: y.NumberValue}, nil
}

// Stats is the answer to a StatsRequest.
type Stats struct {
	Tick      uint64
	Flockers  int
	Prey      int
	Predators int
	Captured  int
}

func (s Stats) toProto() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"tick":      structpb.NewNumberValue(float64(s.Tick)),
		"flockers":  structpb.NewNumberValue(float64(s.Flockers)),
		"prey":      structpb.NewNumberValue(float64(s.Prey)),
		"predators": structpb.NewNumberValue(float64(s.Predators)),
		"captured":  structpb.NewNumberValue(float64(s.Captured)),
	}}
}

// ParseStats decodes the reply to a StatsRequest.
func ParseStats(msg proto.Message) (Stats, error) {
	st, ok := msg.(*structpb.Struct)
	if !ok {
		return Stats{}, fmt.Errorf("unexpected stats reply %T", msg)
	}
	f := st.GetFields()
	return Stats{
		Tick:      uint64(f["tick"].GetNumberValue()),
		Flockers:  int(f["flockers"].GetNumberValue()),
		Prey:      int(f["prey"].GetNumberValue()),
		Predators: int(f["predators"].GetNumberValue()),
		Captured:  int(f["captured"].GetNumberValue()),
	}, nil
}
