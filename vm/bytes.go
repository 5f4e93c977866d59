package vm

import "unsafe"

// AsInt8 views b as the foreign signed byte type. The result aliases b; no
// bytes are copied or converted.
func AsInt8(b []byte) []int8 {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Slice((*int8)(unsafe.Pointer(unsafe.SliceData(b))), len(b))
}

// AsBytes is the inverse of AsInt8.
func AsBytes(b []int8) []byte {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(b))), len(b))
}
