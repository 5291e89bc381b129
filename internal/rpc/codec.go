// Package rpc defines the DirectorySync gRPC service: its wire messages,
// their protobuf schema, the service descriptor and a client stub.
package rpc

import (
	"fmt"
	"reflect"

	"google.golang.org/grpc/encoding"
	grpcproto "google.golang.org/grpc/encoding/proto"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// CodecName is the content subtype every call travels in. It replaces grpc's
// stock proto codec: generated messages (health checks) still go through
// proto.Marshal, and the DirectorySync structs are encoded against schema.
const CodecName = grpcproto.Name

type protoCodec struct{}

func (protoCodec) Name() string { return CodecName }

func (protoCodec) Marshal(v any) ([]byte, error) {
	if m, ok := v.(proto.Message); ok {
		return proto.Marshal(m)
	}

	rv, md, err := schema.descriptor(v)
	if err != nil {
		return nil, err
	}
	msg := dynamicpb.NewMessage(md)
	fill(msg, rv)
	return proto.Marshal(msg)
}

func (protoCodec) Unmarshal(data []byte, v any) error {
	if m, ok := v.(proto.Message); ok {
		return proto.Unmarshal(data, m)
	}

	rv, md, err := schema.descriptor(v)
	if err != nil {
		return err
	}
	msg := dynamicpb.NewMessage(md)
	if err := proto.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("rpc: decoding %s: %w", md.Name(), err)
	}
	rv.SetZero()
	extract(msg, rv)
	return nil
}

func init() {
	encoding.RegisterCodec(protoCodec{})
}

// fill copies a wire struct into m. Zero scalars are left unset.
func fill(m protoreflect.Message, rv reflect.Value) {
	fields := m.Descriptor().Fields()
	t := rv.Type()

	for i := range t.NumField() {
		tag, ok, _ := parseTag(t.Field(i))
		if !ok {
			continue
		}
		fd := fields.ByNumber(protoreflect.FieldNumber(tag.number))
		fv := rv.Field(i)

		switch {
		case fd.IsList():
			if fv.Len() == 0 {
				continue
			}
			list := m.Mutable(fd).List()
			for j := range fv.Len() {
				if fd.Kind() == protoreflect.MessageKind {
					el := list.NewElement()
					fill(el.Message(), fv.Index(j))
					list.Append(el)
				} else {
					list.Append(scalarValue(fv.Index(j)))
				}
			}
		case fd.Kind() == protoreflect.MessageKind:
			fill(m.Mutable(fd).Message(), fv)
		default:
			if !fv.IsZero() {
				m.Set(fd, scalarValue(fv))
			}
		}
	}
}

// extract is the inverse of fill.
func extract(m protoreflect.Message, rv reflect.Value) {
	fields := m.Descriptor().Fields()
	t := rv.Type()

	for i := range t.NumField() {
		tag, ok, _ := parseTag(t.Field(i))
		if !ok {
			continue
		}
		fd := fields.ByNumber(protoreflect.FieldNumber(tag.number))
		fv := rv.Field(i)

		switch {
		case fd.IsList():
			list := m.Get(fd).List()
			if list.Len() == 0 {
				continue
			}
			out := reflect.MakeSlice(fv.Type(), list.Len(), list.Len())
			for j := range list.Len() {
				if fd.Kind() == protoreflect.MessageKind {
					extract(list.Get(j).Message(), out.Index(j))
				} else {
					setScalar(out.Index(j), list.Get(j))
				}
			}
			fv.Set(out)
		case fd.Kind() == protoreflect.MessageKind:
			extract(m.Get(fd).Message(), fv)
		default:
			setScalar(fv, m.Get(fd))
		}
	}
}

func scalarValue(v reflect.Value) protoreflect.Value {
	if v.Kind() == reflect.Bool {
		return protoreflect.ValueOfBool(v.Bool())
	}
	return protoreflect.ValueOfString(v.String())
}

func setScalar(dst reflect.Value, v protoreflect.Value) {
	if dst.Kind() == reflect.Bool {
		dst.SetBool(v.Bool())
		return
	}
	dst.SetString(v.String())
}
