package kafka

import (
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"

	"github.com/surrealdb/surreal-sync/errs"
)

// loadMessageDescriptor compiles protoFile at runtime and returns the
// descriptor for messageType (a bare message name, or fully-qualified
// with its package), per §4.2.6 "decoding payloads via a runtime-parsed
// protobuf schema."
func loadMessageDescriptor(protoFile, messageType string) (*desc.MessageDescriptor, error) {
	parser := protoparse.Parser{
		ImportPaths:           []string{"."},
		IncludeSourceCodeInfo: false,
	}
	fds, err := parser.ParseFiles(protoFile)
	if err != nil {
		return nil, errs.New(errs.Configuration, "kafka.parse_proto", err)
	}
	for _, fd := range fds {
		if md := fd.FindMessage(messageType); md != nil {
			return md, nil
		}
		for _, md := range fd.GetMessageTypes() {
			if md.GetName() == messageType {
				return md, nil
			}
		}
	}
	return nil, errs.New(errs.Configuration, "kafka.find_message",
		fmt.Errorf("message type %q not found in %s", messageType, protoFile))
}

// decodeProto unmarshals raw protobuf bytes into a generic
// map[string]any using the dynamic message built from md, so the
// value converter can treat it the same way as any other structured
// document.
func decodeProto(md *desc.MessageDescriptor, raw []byte) (map[string]any, error) {
	msg := dynamic.NewMessage(md)
	if err := msg.Unmarshal(raw); err != nil {
		return nil, err
	}
	jsonBytes, err := msg.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return decodeJSONObject(jsonBytes)
}
