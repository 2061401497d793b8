package protocol

import "reflect"

var (
	stringType = reflect.TypeOf(String{})
	rawType    = reflect.TypeOf(Raw{})
)
