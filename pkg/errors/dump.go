package errors

import "errors"

// DumpInfo carries the flattened error chain for log output.
type DumpInfo struct {
	TopMessage string
	Code       string
	Chain      []string
}

// Dump flattens an error chain into loggable fields.
func Dump(err error) DumpInfo {
	info := DumpInfo{}
	if err == nil {
		return info
	}
	info.TopMessage = err.Error()
	if typed := As(err); typed != nil {
		info.Code = string(typed.Code())
	}
	for cur := err; cur != nil; cur = errors.Unwrap(cur) {
		info.Chain = append(info.Chain, cur.Error())
	}
	return info
}
