package rpc

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

const (
	protoPackage = "carddav"
	protoFile    = "carddav/directory_sync.proto"
)

// schema is the protobuf view of the DirectorySync service, built once from
// the DirectorySyncServer method set and the proto tags of the messages.
var schema = mustBuildSchema()

type wireSchema struct {
	file     protoreflect.FileDescriptor
	messages map[reflect.Type]protoreflect.MessageDescriptor
}

func mustBuildSchema() *wireSchema {
	s, err := buildSchema()
	if err != nil {
		panic(fmt.Sprintf("rpc: building descriptors: %v", err))
	}
	return s
}

func buildSchema() (*wireSchema, error) {
	api := reflect.TypeOf((*DirectorySyncServer)(nil)).Elem()

	svc := &descriptorpb.ServiceDescriptorProto{Name: proto.String(serviceShortName())}
	var types []reflect.Type
	seen := map[reflect.Type]bool{}

	for i := range api.NumMethod() {
		m := api.Method(i)
		in, out := m.Type.In(1).Elem(), m.Type.Out(0).Elem()
		svc.Method = append(svc.Method, &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(m.Name),
			InputType:  proto.String(qualified(in)),
			OutputType: proto.String(qualified(out)),
		})
		types = collect(in, seen, types)
		types = collect(out, seen, types)
	}

	fdp := &descriptorpb.FileDescriptorProto{
		Name:    proto.String(protoFile),
		Package: proto.String(protoPackage),
		Syntax:  proto.String("proto3"),
		Service: []*descriptorpb.ServiceDescriptorProto{svc},
	}
	for _, t := range types {
		mp, err := messageProto(t)
		if err != nil {
			return nil, err
		}
		fdp.MessageType = append(fdp.MessageType, mp)
	}

	fd, err := protodesc.NewFile(fdp, new(protoregistry.Files))
	if err != nil {
		return nil, err
	}

	s := &wireSchema{file: fd, messages: make(map[reflect.Type]protoreflect.MessageDescriptor, len(types))}
	for _, t := range types {
		s.messages[t] = fd.Messages().ByName(protoreflect.Name(t.Name()))
	}
	return s, nil
}

// descriptor returns the message descriptor for a pointer to a wire struct.
func (s *wireSchema) descriptor(v any) (reflect.Value, protoreflect.MessageDescriptor, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return reflect.Value{}, nil, fmt.Errorf("rpc: cannot encode %T", v)
	}
	md, ok := s.messages[rv.Type().Elem()]
	if !ok {
		return reflect.Value{}, nil, fmt.Errorf("rpc: %T is not a DirectorySync message", v)
	}
	return rv.Elem(), md, nil
}

func serviceShortName() string {
	return strings.TrimPrefix(ServiceName, protoPackage+".")
}

func qualified(t reflect.Type) string {
	return "." + protoPackage + "." + t.Name()
}

func collect(t reflect.Type, seen map[reflect.Type]bool, acc []reflect.Type) []reflect.Type {
	if seen[t] {
		return acc
	}
	seen[t] = true
	acc = append(acc, t)
	for i := range t.NumField() {
		ft := t.Field(i).Type
		if ft.Kind() == reflect.Slice {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct {
			acc = collect(ft, seen, acc)
		}
	}
	return acc
}

type protoTag struct {
	number int32
	name   string
}

func parseTag(f reflect.StructField) (protoTag, bool, error) {
	raw, ok := f.Tag.Lookup("proto")
	if !ok {
		return protoTag{}, false, nil
	}
	num, name, ok := strings.Cut(raw, ",")
	if !ok || name == "" {
		return protoTag{}, false, fmt.Errorf("field %s: malformed proto tag %q", f.Name, raw)
	}
	n, err := strconv.ParseInt(num, 10, 32)
	if err != nil || n < 1 {
		return protoTag{}, false, fmt.Errorf("field %s: bad field number %q", f.Name, num)
	}
	return protoTag{number: int32(n), name: name}, true, nil
}

func messageProto(t reflect.Type) (*descriptorpb.DescriptorProto, error) {
	mp := &descriptorpb.DescriptorProto{Name: proto.String(t.Name())}

	for i := range t.NumField() {
		sf := t.Field(i)
		tag, ok, err := parseTag(sf)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.Name(), err)
		}
		if !ok {
			continue
		}

		fp := &descriptorpb.FieldDescriptorProto{
			Name:   proto.String(tag.name),
			Number: proto.Int32(tag.number),
			Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		}

		ft := sf.Type
		if ft.Kind() == reflect.Slice {
			fp.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
			ft = ft.Elem()
		}

		switch ft.Kind() {
		case reflect.String:
			fp.Type = descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum()
		case reflect.Bool:
			fp.Type = descriptorpb.FieldDescriptorProto_TYPE_BOOL.Enum()
		case reflect.Struct:
			fp.Type = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum()
			fp.TypeName = proto.String(qualified(ft))
		default:
			return nil, fmt.Errorf("%s.%s: unsupported kind %s", t.Name(), sf.Name, ft.Kind())
		}

		mp.Field = append(mp.Field, fp)
	}
	return mp, nil
}
