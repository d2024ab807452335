package cache

import "encoding"

// Encode turns a supported value into bytes.
func Encode(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return append([]byte(nil), v...), nil
	case encoding.BinaryMarshaler:
		return v.MarshalBinary()
	default:
		return nil, ErrInvalidValue
	}
}

// Decode writes raw bytes into a supported destination.
func Decode(raw []byte, value interface{}) error {
	switch v := value.(type) {
	case *string:
		*v = string(raw)
	case *[]byte:
		*v = append([]byte(nil), raw...)
	case encoding.BinaryUnmarshaler:
		return v.UnmarshalBinary(raw)
	default:
		return ErrInvalidValue
	}
	return nil
}
