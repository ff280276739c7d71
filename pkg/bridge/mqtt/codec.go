package mqtt

import (
	"fmt"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/golang/protobuf/ptypes"
	structpb "github.com/golang/protobuf/ptypes/struct"

	"github.com/espfly/fclink/pkg/power"
	"github.com/espfly/fclink/pkg/telemetry"
)

// Status payload fields.
const (
	FieldTimestamp    = "timestamp"
	FieldVoltage      = "voltage"
	FieldVoltageMilli = "voltage_mv"
	FieldLevel        = "level"
	FieldMinVoltage   = "min_voltage"
	FieldMaxVoltage   = "max_voltage"
	FieldCurrent      = "current"
	FieldState        = "state"
	FieldStateName    = "state_name"
)

func numberValue(v float64) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_NumberValue{NumberValue: v}}
}

func stringValue(s string) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: s}}
}

// EncodeStatus encodes a report as a protobuf Struct.
func EncodeStatus(s telemetry.Status) ([]byte, error) {
	ts, err := ptypes.TimestampProto(s.Time)
	if err != nil {
		return nil, err
	}
	b := s.Battery
	msg := &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldTimestamp:    stringValue(ptypes.TimestampString(ts)),
		FieldVoltage:      numberValue(float64(b.Voltage)),
		FieldVoltageMilli: numberValue(float64(b.VoltageMilli)),
		FieldLevel:        numberValue(float64(b.Level)),
		FieldMinVoltage:   numberValue(float64(b.MinVoltage)),
		FieldMaxVoltage:   numberValue(float64(b.MaxVoltage)),
		FieldCurrent:      numberValue(float64(b.Current)),
		FieldState:        numberValue(float64(b.State)),
		FieldStateName:    stringValue(b.State.String()),
	}}
	return proto.Marshal(msg)
}

// DecodeStatus decodes a payload of EncodeStatus.
func DecodeStatus(data []byte) (telemetry.Status, error) {
	var msg structpb.Struct
	if err := proto.Unmarshal(data, &msg); err != nil {
		return telemetry.Status{}, err
	}
	number := func(name string) (float64, error) {
		if v, ok := msg.Fields[name].GetKind().(*structpb.Value_NumberValue); ok {
			return v.NumberValue, nil
		}
		return 0, fmt.Errorf("status field %s missing", name)
	}
	var (
		s    telemetry.Status
		vals [7]float64
		err  error
	)
	for i, name := range []string{
		FieldVoltage, FieldVoltageMilli, FieldLevel, FieldMinVoltage,
		FieldMaxVoltage, FieldCurrent, FieldState,
	} {
		if vals[i], err = number(name); err != nil {
			return s, err
		}
	}
	if s.Time, err = time.Parse(time.RFC3339Nano, msg.Fields[FieldTimestamp].GetStringValue()); err != nil {
		return s, err
	}
	s.Battery = power.BatteryState{
		Voltage:      float32(vals[0]),
		VoltageMilli: uint16(vals[1]),
		Level:        uint8(vals[2]),
		MinVoltage:   float32(vals[3]),
		MaxVoltage:   float32(vals[4]),
		Current:      float32(vals[5]),
		State:        power.ChargeState(vals[6]),
	}
	return s, nil
}
