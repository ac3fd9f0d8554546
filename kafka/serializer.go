package kafka

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
)

// Serializer encodes message payloads before publishing.
type Serializer interface {
	Serialize(data interface{}) ([]byte, error)
}

// Deserializer decodes consumed message payloads.
type Deserializer interface {
	Deserialize(data []byte, target interface{}) error
}

// JSONSerializer encodes payloads as JSON. Strings and byte slices pass through.
type JSONSerializer struct{}

func (j *JSONSerializer) Serialize(data interface{}) ([]byte, error) {
	switch v := data.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("JSONSerializer: failed to serialize: %w", err)
	}
	return b, nil
}

// JSONDeserializer decodes JSON payloads.
type JSONDeserializer struct{}

func (j *JSONDeserializer) Deserialize(data []byte, target interface{}) error {
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("JSONDeserializer: failed to deserialize: %w", err)
	}
	return nil
}

// StringSerializer encodes payloads as text, formatting non-string values with %v.
type StringSerializer struct{}

func (s *StringSerializer) Serialize(data interface{}) ([]byte, error) {
	switch v := data.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return []byte(fmt.Sprintf("%v", v)), nil
	}
}

// StringDeserializer decodes payloads into a *string or *[]byte.
type StringDeserializer struct{}

func (s *StringDeserializer) Deserialize(data []byte, target interface{}) error {
	switch t := target.(type) {
	case *string:
		*t = string(data)
	case *[]byte:
		*t = data
	default:
		return fmt.Errorf("StringDeserializer: target must be *string or *[]byte, got %T", target)
	}
	return nil
}

// GobSerializer encodes payloads with encoding/gob. Both sides must be Go
// programs sharing the payload types.
type GobSerializer struct{}

func (g *GobSerializer) Serialize(data interface{}) ([]byte, error) {
	if b, ok := data.([]byte); ok {
		return b, nil
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return nil, fmt.Errorf("GobSerializer: failed to encode: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDeserializer decodes gob payloads.
type GobDeserializer struct{}

func (g *GobDeserializer) Deserialize(data []byte, target interface{}) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(target); err != nil {
		return fmt.Errorf("GobDeserializer: failed to decode: %w", err)
	}
	return nil
}

// BytesSerializer accepts only []byte payloads.
type BytesSerializer struct{}

func (b *BytesSerializer) Serialize(data interface{}) ([]byte, error) {
	v, ok := data.([]byte)
	if !ok {
		return nil, fmt.Errorf("BytesSerializer: requires []byte input, got %T", data)
	}
	return v, nil
}

// BytesDeserializer hands out the raw payload; the target must be a *[]byte.
type BytesDeserializer struct{}

func (b *BytesDeserializer) Deserialize(data []byte, target interface{}) error {
	p, ok := target.(*[]byte)
	if !ok {
		return fmt.Errorf("BytesDeserializer: requires *[]byte target, got %T", target)
	}
	*p = data
	return nil
}

// defaultSerializers returns the serializer pair of a Config.DataType.
// Unknown types fall back to JSON.
func defaultSerializers(dataType string) (Serializer, Deserializer) {
	switch dataType {
	case "string":
		return &StringSerializer{}, &StringDeserializer{}
	case "gob":
		return &GobSerializer{}, &GobDeserializer{}
	case "bytes":
		return &BytesSerializer{}, &BytesDeserializer{}
	default:
		return &JSONSerializer{}, &JSONDeserializer{}
	}
}

// SetDefaultSerializers sets the serializers of Config.DataType where none is configured.
func (k *KafkaClient) SetDefaultSerializers() {
	k.mu.Lock()
	defer k.mu.Unlock()

	s, d := defaultSerializers(k.cfg.DataType)
	if k.serializer == nil {
		k.serializer = s
	}
	if k.deserializer == nil {
		k.deserializer = d
	}
}
